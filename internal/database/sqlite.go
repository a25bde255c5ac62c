package database

import (
	"database/sql"
	"fmt"

	"bcl-go/internal/bcl"
	"bcl-go/internal/database/migrations"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// NewSQLiteDatabase opens a docbase snapshot. The snapshot must have been
// created by InitSnapshot and be at the current schema version.
// path can be a file path or ":memory:" for an in-memory database.
func NewSQLiteDatabase(path, schema string) (*DocbaseDatabase, error) {
	db, err := OpenConnection(path)
	if err != nil {
		return nil, err
	}
	if err := migrations.CheckStatus(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("checking snapshot %s: %w: %w", path, bcl.ErrDatabase, err)
	}

	d := NewDocbaseDatabase(db, "sqlite3", schema)
	d.path = path
	return d, nil
}

// InitSnapshot creates, or upgrades, the snapshot schema at path.
func InitSnapshot(path string) error {
	db, err := OpenConnection(path)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := migrations.MigrateUp(db); err != nil {
		return fmt.Errorf("initializing snapshot %s: %w", path, err)
	}
	return nil
}

// OpenConnection opens and configures a SQLite database connection.
// This is exported for use in tests that need a properly configured SQLite
// connection. path can be a file path or ":memory:".
func OpenConnection(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w: %w", bcl.ErrDatabase, err)
	}
	if path == ":memory:" {
		// every connection would get its own empty database
		db.SetMaxOpenConns(1)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w: %w", bcl.ErrDatabase, err)
	}

	return db, nil
}
