package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/ATU2119/Reservation-System/internal/domain"
)

const userColumns = `id, username, email, password_hash, created_at`

type AddUserStatus int

const (
	UserAdded AddUserStatus = iota
	// UserConflict means the username or email is already taken. No row was written.
	UserConflict
)

func (s AddUserStatus) String() string {
	switch s {
	case UserAdded:
		return "added"
	case UserConflict:
		return "conflict"
	default:
		return fmt.Sprintf("AddUserStatus(%d)", int(s))
	}
}

// AddUserResult reports the outcome of AddUser. User is set only when Status
// is UserAdded; Reason carries the constraint message on conflict.
type AddUserResult struct {
	Status AddUserStatus
	User   *domain.User
	Reason string
}

// AddUser inserts a user. A duplicate username or email is not an error: it
// comes back as UserConflict with a nil error and nothing is written.
func (s *Store) AddUser(ctx context.Context, username, email, passwordHash string) (AddUserResult, error) {
	var res AddUserResult
	err := s.withDB(ctx, func(conn *sqlx.DB) error {
		result, err := conn.ExecContext(ctx, `
			INSERT INTO Users (username, email, password_hash) VALUES (?, ?, ?)
		`, username, email, passwordHash)
		if isUniqueViolation(err) {
			s.logger.Warn("error adding user",
				zap.String("username", username),
				zap.String("email", email),
				zap.Error(err))
			res = AddUserResult{Status: UserConflict, Reason: err.Error()}
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to add user: %w", err)
		}

		id, err := result.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to get last insert id: %w", err)
		}

		user, err := getUser(ctx, conn, `WHERE id = ?`, id)
		if err != nil {
			return err
		}
		res = AddUserResult{Status: UserAdded, User: user}
		return nil
	})
	if err != nil {
		return AddUserResult{}, err
	}

	if res.Status == UserAdded {
		s.logger.Info("user added successfully", zap.String("username", username), zap.Int64("id", res.User.ID))
	}
	return res, nil
}

// UserByID returns nil, nil when no user has the given id.
func (s *Store) UserByID(ctx context.Context, id int64) (*domain.User, error) {
	var user *domain.User
	err := s.withDB(ctx, func(conn *sqlx.DB) error {
		var err error
		user, err = getUser(ctx, conn, `WHERE id = ?`, id)
		return err
	})
	return user, err
}

func (s *Store) UserByUsername(ctx context.Context, username string) (*domain.User, error) {
	var user *domain.User
	err := s.withDB(ctx, func(conn *sqlx.DB) error {
		var err error
		user, err = getUser(ctx, conn, `WHERE username = ?`, username)
		return err
	})
	return user, err
}

func getUser(ctx context.Context, conn *sqlx.DB, where string, arg any) (*domain.User, error) {
	user := &domain.User{}
	err := conn.GetContext(ctx, user, `SELECT `+userColumns+` FROM Users `+where, arg)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}
