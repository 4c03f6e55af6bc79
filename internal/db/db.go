package db

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

const driverName = "sqlite"

// Location identifies the database file every operation connects to.
type Location struct {
	Path string
	// ForeignKeys turns on SQLite foreign-key enforcement for each connection.
	ForeignKeys bool
}

// DSN builds the modernc.org/sqlite connection string. The file is created if
// it does not exist. Path segments are percent-escaped so characters such as
// '#', '?' and '%' name the file literally instead of being read as URI syntax.
func (l Location) DSN() string {
	fk := 0
	if l.ForeignKeys {
		fk = 1
	}
	return fmt.Sprintf("file:%s?mode=rwc&_pragma=foreign_keys(%d)", escapePath(l.Path), fk)
}

func escapePath(p string) string {
	segments := strings.Split(p, "/")
	for i, seg := range segments {
		segments[i] = url.PathEscape(seg)
	}
	return strings.Join(segments, "/")
}

// Open opens a single-connection handle on loc. Callers close it when done.
func Open(ctx context.Context, loc Location) (*sqlx.DB, error) {
	conn, err := sqlx.Open(driverName, loc.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	conn.SetMaxOpenConns(1)

	if err := conn.PingContext(ctx); err != nil {
		if cerr := conn.Close(); cerr != nil {
			return nil, fmt.Errorf("failed to ping database: %w (also failed to close db: %v)", err, cerr)
		}
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return conn, nil
}

// Migrate applies every embedded up migration not yet recorded in
// schema_migrations. It is a no-op when the schema is current. Cancelling ctx
// stops the run after the migration in progress finishes.
func Migrate(ctx context.Context, loc Location) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	conn, err := sql.Open(driverName, loc.DSN())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}

	m, err := newMigrator(conn)
	if err != nil {
		if cerr := conn.Close(); cerr != nil {
			return fmt.Errorf("failed to prepare migrations: %w (also failed to close db: %v)", err, cerr)
		}
		return fmt.Errorf("failed to prepare migrations: %w", err)
	}

	done := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			m.GracefulStop <- true
		case <-done:
		}
	}()

	upErr := m.Up()
	close(done)
	// Closing the migrator closes conn as well.
	srcErr, dbErr := m.Close()

	if upErr != nil && !errors.Is(upErr, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrations: %w", upErr)
	}
	if srcErr != nil {
		return fmt.Errorf("failed to close migration source: %w", srcErr)
	}
	if dbErr != nil {
		return fmt.Errorf("failed to close database: %w", dbErr)
	}
	return nil
}

func newMigrator(conn *sql.DB) (*migrate.Migrate, error) {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return nil, fmt.Errorf("failed to read migrations directory: %w", err)
	}

	driver, err := migratesqlite.WithInstance(conn, &migratesqlite.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to create migrations table: %w", err)
	}

	return migrate.NewWithInstance("iofs", src, driverName, driver)
}
