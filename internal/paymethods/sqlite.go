package paymethods

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite" // pure Go SQLite driver
)

// SQLiteStore answers lookups from a SQLite table. Use NewSQLiteStore for
// an existing database or CreateSQLiteStore to build one from rows.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens the database at path. The payment_methods table must
// already exist.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// CreateSQLiteStore opens (or creates) the database at path, creates the
// payment_methods table, and loads rows into it.
func CreateSQLiteStore(path string, rows []Row) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS payment_methods (
			country  TEXT NOT NULL,
			category TEXT NOT NULL,
			name     TEXT NOT NULL
		)
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("create table: %w", err)
	}
	if _, err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_payment_methods_country
		ON payment_methods(country, category)
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("create index: %w", err)
	}

	tx, err := db.Begin()
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("begin load: %w", err)
	}
	stmt, err := tx.Prepare(`INSERT INTO payment_methods (country, category, name) VALUES (?, ?, ?)`)
	if err != nil {
		tx.Rollback()
		db.Close()
		return nil, fmt.Errorf("prepare insert: %w", err)
	}
	for _, row := range rows {
		if _, err := stmt.Exec(row.Country, row.Category, row.Name); err != nil {
			stmt.Close()
			tx.Rollback()
			db.Close()
			return nil, fmt.Errorf("insert row: %w", err)
		}
	}
	stmt.Close()
	if err := tx.Commit(); err != nil {
		db.Close()
		return nil, fmt.Errorf("commit load: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Lookup implements Store.
func (s *SQLiteStore) Lookup(country, category string) ([]string, error) {
	query := `SELECT DISTINCT name FROM payment_methods WHERE country = ?`
	args := []any{country}
	if category != "" {
		query += ` AND category = ?`
		args = append(args, category)
	}
	query += ` ORDER BY name`

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("lookup payment methods: %w", err)
	}
	defer rows.Close()

	names := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan method name: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// Close implements Store.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
