package storage

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/eugenenazirov/parcel-planner/internal/packing"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS boxes (
	position INTEGER PRIMARY KEY,
	name TEXT NOT NULL UNIQUE,
	length REAL NOT NULL,
	width REAL NOT NULL,
	height REAL NOT NULL,
	weight REAL NOT NULL
)`

// SQLiteStorage persists the catalog in a SQLite database. Box order is kept
// through the position column.
type SQLiteStorage struct {
	db *sql.DB
}

// OpenSQLite opens (or creates) the database at dsn, applies the schema and
// seeds the default catalog when the table is empty.
func OpenSQLite(ctx context.Context, dsn string) (*SQLiteStorage, error) {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// An in-memory database lives only as long as its connection.
	db.SetMaxOpenConns(1)

	s, err := NewSQLiteStorage(ctx, db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	var count int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM boxes").Scan(&count); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to count boxes: %w", err)
	}
	if count == 0 {
		if err := s.ReplaceBoxes(ctx, defaultBoxes); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to seed catalog: %w", err)
		}
	}
	return s, nil
}

// NewSQLiteStorage wraps an open database and ensures the schema exists.
func NewSQLiteStorage(ctx context.Context, db *sql.DB) (*SQLiteStorage, error) {
	if _, err := db.ExecContext(ctx, schemaSQL); err != nil {
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}
	return &SQLiteStorage{db: db}, nil
}

// ListBoxes returns the catalog in insertion order.
func (s *SQLiteStorage) ListBoxes(ctx context.Context) ([]packing.Box, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT name, length, width, height, weight FROM boxes ORDER BY position",
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list boxes: %w", err)
	}
	defer rows.Close()

	boxes := []packing.Box{}
	for rows.Next() {
		var b packing.Box
		if err := rows.Scan(&b.Name, &b.Length, &b.Width, &b.Height, &b.Weight); err != nil {
			return nil, fmt.Errorf("failed to scan box: %w", err)
		}
		boxes = append(boxes, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate boxes: %w", err)
	}
	return boxes, nil
}

// ReplaceBoxes validates the catalog and swaps it in a single transaction.
func (s *SQLiteStorage) ReplaceBoxes(ctx context.Context, boxes []packing.Box) error {
	if err := ValidateCatalog(boxes); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, "DELETE FROM boxes"); err != nil {
		return fmt.Errorf("failed to clear boxes: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		"INSERT INTO boxes (position, name, length, width, height, weight) VALUES (?, ?, ?, ?, ?, ?)",
	)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, b := range boxes {
		if _, err := stmt.ExecContext(ctx, i, b.Name, b.Length, b.Width, b.Height, b.Weight); err != nil {
			return fmt.Errorf("failed to insert box %s: %w", b.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit catalog: %w", err)
	}
	return nil
}

// Close closes the underlying database.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}
