package service

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"golang.org/x/crypto/bcrypt"

	"github.com/ATU2119/Reservation-System/internal/db"
	"github.com/ATU2119/Reservation-System/internal/domain"
	"github.com/ATU2119/Reservation-System/internal/store"
)

// stubRepo embeds a real store and lets tests inject failures.
type stubRepo struct {
	*store.Store
	addItemErr error
	lookupErr  error
}

func (r *stubRepo) AddItem(ctx context.Context, name string, description *string, available bool) (*domain.Item, error) {
	if r.addItemErr != nil {
		return nil, r.addItemErr
	}
	return r.Store.AddItem(ctx, name, description, available)
}

func (r *stubRepo) UserByUsername(ctx context.Context, username string) (*domain.User, error) {
	if r.lookupErr != nil {
		return nil, r.lookupErr
	}
	return r.Store.UserByUsername(ctx, username)
}

func newTestService(t *testing.T) (*ReservationService, *store.Store) {
	t.Helper()
	logger := zaptest.NewLogger(t)
	st := store.New(db.Location{Path: filepath.Join(t.TempDir(), "reservations.db")}, logger)
	return NewReservationService(st, logger), st
}

func TestBootstrapLoadsDemoData(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()

	require.NoError(t, svc.Bootstrap(ctx))

	jane, err := st.UserByUsername(ctx, "jane_doe")
	require.NoError(t, err)
	require.NotNil(t, jane)
	assert.Equal(t, int64(1), jane.ID)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(jane.PasswordHash), []byte("secure_password")))

	for _, name := range []string{"alice", "bob"} {
		u, err := st.UserByUsername(ctx, name)
		require.NoError(t, err)
		assert.NotNil(t, u, name)
	}

	hall, err := st.ItemByName(ctx, "Banquet Hall")
	require.NoError(t, err)
	require.NotNil(t, hall)
	require.NotNil(t, hall.Description)
	assert.Equal(t, "Spacious hall for events", *hall.Description)
	assert.True(t, hall.Available)

	reservations, err := st.FetchReservations(ctx)
	require.NoError(t, err)
	require.Len(t, reservations, 2)
	assert.Equal(t, int64(1), reservations[0].UserID)
	assert.Equal(t, "2024-06-01", reservations[0].StartDate)
	assert.Equal(t, int64(2), reservations[1].ItemID)
	assert.Equal(t, "2024-06-16", reservations[1].EndDate)
}

func TestBootstrapTwiceReportsConflicts(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()

	require.NoError(t, svc.Bootstrap(ctx))
	require.NoError(t, svc.Bootstrap(ctx))

	reservations, err := st.FetchReservations(ctx)
	require.NoError(t, err)
	assert.Len(t, reservations, 4)

	res, err := st.AddUser(ctx, "alice", "alice@example.com", "x")
	require.NoError(t, err)
	assert.Equal(t, store.UserConflict, res.Status)
}

func TestBootstrapPropagatesStoreError(t *testing.T) {
	_, st := newTestService(t)
	boom := errors.New("disk full")
	svc := NewReservationService(&stubRepo{Store: st, addItemErr: boom}, zaptest.NewLogger(t))

	err := svc.Bootstrap(context.Background())
	assert.ErrorIs(t, err, boom)
}

func TestRunChecksPass(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	require.NoError(t, svc.Bootstrap(ctx))

	var out bytes.Buffer
	require.NoError(t, svc.RunChecks(ctx, &out))

	assert.Equal(t,
		"Test passed: User 'alice' found.\n"+
			"Test passed: Item 'Conference Room A' found.\n"+
			"Test passed: Reservation found for user_id 1.\n",
		out.String())
}

func TestRunChecksFailOnEmptySchema(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()
	require.NoError(t, st.InitializeSchema(ctx))

	var out bytes.Buffer
	err := svc.RunChecks(ctx, &out)

	assert.ErrorIs(t, err, ErrCheckFailed)
	assert.Equal(t, "Test failed: User 'alice' was not found in the database.\n", out.String())
}

func TestRunChecksFailOnMissingReservation(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()
	require.NoError(t, st.InitializeSchema(ctx))

	_, err := st.AddUser(ctx, "alice", "alice@example.com", "h")
	require.NoError(t, err)
	_, err = st.AddItem(ctx, "Conference Room A", nil, true)
	require.NoError(t, err)

	var out bytes.Buffer
	err = svc.RunChecks(ctx, &out)

	assert.ErrorIs(t, err, ErrCheckFailed)
	assert.Contains(t, out.String(), "Test passed: Item 'Conference Room A' found.")
	assert.Contains(t, out.String(), "Test failed: No reservations found for user_id 1.")
}

func TestRunChecksPropagatesLookupError(t *testing.T) {
	_, st := newTestService(t)
	require.NoError(t, st.InitializeSchema(context.Background()))
	boom := errors.New("locked")
	svc := NewReservationService(&stubRepo{Store: st, lookupErr: boom}, zaptest.NewLogger(t))

	var out bytes.Buffer
	err := svc.RunChecks(context.Background(), &out)

	assert.ErrorIs(t, err, boom)
	assert.Empty(t, out.String())
}
