package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/ATU2119/Reservation-System/internal/db"
)

// ErrMissingReference is returned when foreign keys are enforced and a
// reservation names a user or item that does not exist.
var ErrMissingReference = errors.New("referenced user or item does not exist")

// Store is the data-access layer over one reservations database file. Every
// operation opens its own connection and closes it before returning.
type Store struct {
	loc    db.Location
	logger *zap.Logger
}

// New returns a Store bound to loc. Nothing is opened until an operation runs.
func New(loc db.Location, logger *zap.Logger) *Store {
	return &Store{loc: loc, logger: logger}
}

// InitializeSchema creates the Users, Items and Reservations tables if they
// are missing, creating the database file as needed. Cancelling ctx stops the
// migration run between migrations, never inside one.
func (s *Store) InitializeSchema(ctx context.Context) error {
	if err := db.Migrate(ctx, s.loc); err != nil {
		return err
	}
	s.logger.Info("database and tables created", zap.String("path", s.loc.Path))
	return nil
}

func (s *Store) withDB(ctx context.Context, fn func(conn *sqlx.DB) error) (err error) {
	conn, err := db.Open(ctx, s.loc)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := conn.Close(); cerr != nil {
			s.logger.Error("failed to close database", zap.Error(cerr))
			if err == nil {
				err = fmt.Errorf("failed to close database: %w", cerr)
			}
		}
	}()

	return fn(conn)
}

func hasConstraintCode(err error, code int) bool {
	var se *sqlite.Error
	return errors.As(err, &se) && se.Code() == code
}

func isUniqueViolation(err error) bool {
	return hasConstraintCode(err, sqlite3.SQLITE_CONSTRAINT_UNIQUE)
}

func isForeignKeyViolation(err error) bool {
	return hasConstraintCode(err, sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY)
}
