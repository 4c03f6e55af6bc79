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

// Dates are cast to TEXT so the driver hands back the literal value instead of
// parsing DATE columns into time.Time.
const reservationColumns = `id, user_id, item_id,
	CAST(start_date AS TEXT) AS start_date,
	CAST(end_date AS TEXT) AS end_date,
	created_at`

// MakeReservation inserts a reservation as given. It does not check that the
// user or item exist, that startDate precedes endDate, or that the item is
// free; with foreign keys enforced a dangling reference yields
// ErrMissingReference.
func (s *Store) MakeReservation(ctx context.Context, userID, itemID int64, startDate, endDate string) (*domain.Reservation, error) {
	var reservation *domain.Reservation
	err := s.withDB(ctx, func(conn *sqlx.DB) error {
		result, err := conn.ExecContext(ctx, `
			INSERT INTO Reservations (user_id, item_id, start_date, end_date) VALUES (?, ?, ?, ?)
		`, userID, itemID, startDate, endDate)
		if isForeignKeyViolation(err) {
			return fmt.Errorf("failed to make reservation: %w: %v", ErrMissingReference, err)
		}
		if err != nil {
			return fmt.Errorf("failed to make reservation: %w", err)
		}

		id, err := result.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to get last insert id: %w", err)
		}

		reservation, err = getReservation(ctx, conn, id)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Debug("reservation made",
		zap.Int64("id", reservation.ID),
		zap.Int64("user_id", userID),
		zap.Int64("item_id", itemID))
	return reservation, nil
}

// ReservationByID returns nil, nil when no reservation has the given id.
func (s *Store) ReservationByID(ctx context.Context, id int64) (*domain.Reservation, error) {
	var reservation *domain.Reservation
	err := s.withDB(ctx, func(conn *sqlx.DB) error {
		var err error
		reservation, err = getReservation(ctx, conn, id)
		return err
	})
	return reservation, err
}

// FetchReservations returns every reservation in insertion order. An empty
// table yields an empty slice.
func (s *Store) FetchReservations(ctx context.Context) ([]*domain.Reservation, error) {
	reservations := []*domain.Reservation{}
	err := s.withDB(ctx, func(conn *sqlx.DB) error {
		if err := conn.SelectContext(ctx, &reservations, `
			SELECT `+reservationColumns+` FROM Reservations ORDER BY id ASC
		`); err != nil {
			return fmt.Errorf("failed to fetch reservations: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return reservations, nil
}

// ReservationsByUser returns the user's reservations in insertion order.
func (s *Store) ReservationsByUser(ctx context.Context, userID int64) ([]*domain.Reservation, error) {
	reservations := []*domain.Reservation{}
	err := s.withDB(ctx, func(conn *sqlx.DB) error {
		if err := conn.SelectContext(ctx, &reservations, `
			SELECT `+reservationColumns+` FROM Reservations WHERE user_id = ? ORDER BY id ASC
		`, userID); err != nil {
			return fmt.Errorf("failed to list reservations for user %d: %w", userID, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return reservations, nil
}

func getReservation(ctx context.Context, conn *sqlx.DB, id int64) (*domain.Reservation, error) {
	reservation := &domain.Reservation{}
	err := conn.GetContext(ctx, reservation, `
		SELECT `+reservationColumns+` FROM Reservations WHERE id = ?
	`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get reservation: %w", err)
	}
	return reservation, nil
}
