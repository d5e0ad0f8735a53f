package store

import (
	"database/sql"
	"fmt"

	"go.uber.org/zap"
)

// OpenInMemory creates a migrated Store backed by an in-memory database.
// This is only intended for use in tests.
func OpenInMemory() (*Store, error) {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Every new connection would get its own empty database
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	logger := zap.NewNop()
	if err := migrateUp(db, logger); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return &Store{db: db, logger: logger}, nil
}
