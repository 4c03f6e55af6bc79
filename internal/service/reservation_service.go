package service

import (
	"context"
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/ATU2119/Reservation-System/internal/auth"
	"github.com/ATU2119/Reservation-System/internal/domain"
	"github.com/ATU2119/Reservation-System/internal/store"
)

// ErrCheckFailed is wrapped by the error RunChecks returns when a check fails.
var ErrCheckFailed = errors.New("self-check failed")

// reservationRepository is the subset of store.Store that ReservationService requires.
type reservationRepository interface {
	InitializeSchema(ctx context.Context) error
	AddUser(ctx context.Context, username, email, passwordHash string) (store.AddUserResult, error)
	AddItem(ctx context.Context, name string, description *string, available bool) (*domain.Item, error)
	MakeReservation(ctx context.Context, userID, itemID int64, startDate, endDate string) (*domain.Reservation, error)
	UserByUsername(ctx context.Context, username string) (*domain.User, error)
	ItemByName(ctx context.Context, name string) (*domain.Item, error)
	ReservationsByUser(ctx context.Context, userID int64) ([]*domain.Reservation, error)
}

type demoUser struct {
	username string
	email    string
	password string
}

type demoItem struct {
	name        string
	description string
}

type demoReservation struct {
	userID    int64
	itemID    int64
	startDate string
	endDate   string
}

var (
	primaryUser = demoUser{"jane_doe", "jane@example.com", "secure_password"}

	demoUsers = []demoUser{
		{"alice", "alice@example.com", "password_123"},
		{"bob", "bob@example.com", "password_abc"},
	}

	demoItems = []demoItem{
		{"Conference Room A", "A large room for meetings"},
		{"Banquet Hall", "Spacious hall for events"},
	}

	demoReservations = []demoReservation{
		{1, 1, "2024-06-01", "2024-06-02"},
		{2, 2, "2024-06-15", "2024-06-16"},
	}
)

type ReservationService struct {
	repo   reservationRepository
	logger *zap.Logger
}

func NewReservationService(repo reservationRepository, logger *zap.Logger) *ReservationService {
	return &ReservationService{repo: repo, logger: logger}
}

// Bootstrap creates the schema and loads the demonstration users, items and
// reservations. Re-running it against the same file reports the user conflicts
// and adds another copy of the items and reservations.
func (s *ReservationService) Bootstrap(ctx context.Context) error {
	if err := s.repo.InitializeSchema(ctx); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}

	if err := s.addUser(ctx, primaryUser); err != nil {
		return err
	}
	for _, u := range demoUsers {
		if err := s.addUser(ctx, u); err != nil {
			return err
		}
	}

	for _, it := range demoItems {
		description := it.description
		if _, err := s.repo.AddItem(ctx, it.name, &description, true); err != nil {
			return err
		}
	}

	for _, r := range demoReservations {
		if _, err := s.repo.MakeReservation(ctx, r.userID, r.itemID, r.startDate, r.endDate); err != nil {
			return err
		}
	}

	s.logger.Info("demonstration data loaded",
		zap.Int("users", len(demoUsers)+1),
		zap.Int("items", len(demoItems)),
		zap.Int("reservations", len(demoReservations)))
	return nil
}

func (s *ReservationService) addUser(ctx context.Context, u demoUser) error {
	hash, err := auth.HashPassword(u.password)
	if err != nil {
		return fmt.Errorf("failed to hash password for %s: %w", u.username, err)
	}

	res, err := s.repo.AddUser(ctx, u.username, u.email, hash)
	if err != nil {
		return err
	}
	if res.Status == store.UserConflict {
		s.logger.Info("demonstration user already present", zap.String("username", u.username))
	}
	return nil
}

type check struct {
	pass string
	fail string
	run  func(ctx context.Context) (bool, error)
}

// RunChecks verifies the demonstration data is readable, printing one line per
// check to w. It stops at the first failing check.
func (s *ReservationService) RunChecks(ctx context.Context, w io.Writer) error {
	checks := []check{
		{
			pass: "Test passed: User 'alice' found.",
			fail: "Test failed: User 'alice' was not found in the database.",
			run: func(ctx context.Context) (bool, error) {
				user, err := s.repo.UserByUsername(ctx, "alice")
				return user != nil, err
			},
		},
		{
			pass: "Test passed: Item 'Conference Room A' found.",
			fail: "Test failed: Item 'Conference Room A' was not found.",
			run: func(ctx context.Context) (bool, error) {
				item, err := s.repo.ItemByName(ctx, "Conference Room A")
				return item != nil, err
			},
		},
		{
			pass: "Test passed: Reservation found for user_id 1.",
			fail: "Test failed: No reservations found for user_id 1.",
			run: func(ctx context.Context) (bool, error) {
				reservations, err := s.repo.ReservationsByUser(ctx, 1)
				return len(reservations) > 0, err
			},
		},
	}

	for _, c := range checks {
		ok, err := c.run(ctx)
		if err != nil {
			return err
		}
		if !ok {
			if _, err := fmt.Fprintln(w, c.fail); err != nil {
				return err
			}
			return fmt.Errorf("%w: %s", ErrCheckFailed, c.fail)
		}
		if _, err := fmt.Fprintln(w, c.pass); err != nil {
			return err
		}
	}
	return nil
}
