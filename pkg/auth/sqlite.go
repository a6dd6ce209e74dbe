package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"
)

const accountsSchema = `CREATE TABLE IF NOT EXISTS accounts (
	id            TEXT NOT NULL,
	full_name     TEXT NOT NULL,
	email         TEXT NOT NULL PRIMARY KEY,
	password_hash TEXT NOT NULL,
	created_at    INTEGER NOT NULL
)`

// SQLiteStore persists accounts in a SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (creating if needed) the database at dsn. Use ":memory:"
// for a throwaway database.
func OpenSQLite(ctx context.Context, dsn string) (*SQLiteStore, error) {
	dsn = strings.TrimSpace(dsn)
	if dsn == "" {
		return nil, fmt.Errorf("auth: sqlite dsn is required")
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("auth: open sqlite db: %w", err)
	}
	// A single connection keeps ":memory:" databases shared.
	db.SetMaxOpenConns(1)
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("auth: ping sqlite db: %w", err)
	}
	if _, err := db.ExecContext(ctx, accountsSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("auth: create accounts table: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Close closes the database handle.
func (s *SQLiteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *SQLiteStore) Create(ctx context.Context, account Account) error {
	key := NormalizeEmail(account.Email)
	if key == "" {
		return fmt.Errorf("auth: account email is required")
	}
	created := account.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO accounts (id, full_name, email, password_hash, created_at) VALUES (?, ?, ?, ?, ?)`,
		account.ID, account.FullName, key, account.PasswordHash, created.UTC().UnixMilli(),
	)
	if err != nil {
		if isConstraintError(err) {
			return fmt.Errorf("%w: %s", ErrAccountExists, key)
		}
		return fmt.Errorf("auth: insert account: %w", err)
	}
	return nil
}

func (s *SQLiteStore) ByEmail(ctx context.Context, email string) (Account, error) {
	var (
		account Account
		created int64
	)
	row := s.db.QueryRowContext(ctx,
		`SELECT id, full_name, email, password_hash, created_at FROM accounts WHERE email = ?`,
		NormalizeEmail(email),
	)
	if err := row.Scan(&account.ID, &account.FullName, &account.Email, &account.PasswordHash, &created); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Account{}, ErrAccountNotFound
		}
		return Account{}, fmt.Errorf("auth: query account: %w", err)
	}
	account.CreatedAt = time.UnixMilli(created).UTC()
	return account, nil
}

func isConstraintError(err error) bool {
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3lib.SQLITE_CONSTRAINT_UNIQUE:
			return true
		}
	}
	return strings.Contains(strings.ToLower(err.Error()), "unique constraint failed")
}
