package storage

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// memoryDSN opens a private in-memory database. The store lives only as long
// as its single connection.
const memoryDSN = ":memory:?_busy_timeout=5000&_foreign_keys=on"

// SQLiteStorage implements the claim store on an in-memory SQLite database.
type SQLiteStorage struct {
	db *sql.DB
}

// NewSQLiteStorage opens a fresh in-memory SQLite store and applies migrations.
func NewSQLiteStorage(ctx context.Context) (*SQLiteStorage, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite3", memoryDSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Every connection to :memory: is its own database, so pin exactly one.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	s := &SQLiteStorage{db: db}
	if err := s.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection, discarding all claims.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}
