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

const itemColumns = `id, name, description, availability`

// AddItem inserts an item without any uniqueness or validation checks. A nil
// description is stored as NULL.
func (s *Store) AddItem(ctx context.Context, name string, description *string, available bool) (*domain.Item, error) {
	var item *domain.Item
	err := s.withDB(ctx, func(conn *sqlx.DB) error {
		result, err := conn.ExecContext(ctx, `
			INSERT INTO Items (name, description, availability) VALUES (?, ?, ?)
		`, name, description, available)
		if err != nil {
			return fmt.Errorf("failed to add item: %w", err)
		}

		id, err := result.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to get last insert id: %w", err)
		}

		item, err = getItem(ctx, conn, `WHERE id = ?`, id)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Debug("item added", zap.String("name", name), zap.Int64("id", item.ID))
	return item, nil
}

// ItemByID returns nil, nil when no item has the given id.
func (s *Store) ItemByID(ctx context.Context, id int64) (*domain.Item, error) {
	var item *domain.Item
	err := s.withDB(ctx, func(conn *sqlx.DB) error {
		var err error
		item, err = getItem(ctx, conn, `WHERE id = ?`, id)
		return err
	})
	return item, err
}

// ItemByName returns the earliest item with the given name. Names are not
// unique.
func (s *Store) ItemByName(ctx context.Context, name string) (*domain.Item, error) {
	var item *domain.Item
	err := s.withDB(ctx, func(conn *sqlx.DB) error {
		var err error
		item, err = getItem(ctx, conn, `WHERE name = ? ORDER BY id ASC LIMIT 1`, name)
		return err
	})
	return item, err
}

func getItem(ctx context.Context, conn *sqlx.DB, where string, arg any) (*domain.Item, error) {
	item := &domain.Item{}
	err := conn.GetContext(ctx, item, `SELECT `+itemColumns+` FROM Items `+where, arg)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get item: %w", err)
	}
	return item, nil
}
