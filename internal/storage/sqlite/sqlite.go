// Package sqlite is a storage.Store backed by a single SQLite database file.
//
// The pool is capped at one connection, so SQLite itself serializes writers
// and every ledger Update runs as one read-modify-write transaction.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/storage"
)

type Store struct {
	db     *sql.DB
	logger *log.Logger
}

var _ storage.Store = (*Store)(nil)

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func New(dbPath string, logger *log.Logger) (*Store, error) {
	if logger == nil {
		logger = log.Discard()
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db, logger: logger.WithComponent(log.ComponentStorage)}, nil
}

func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Ping reports whether the database is reachable; used by readiness probes.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) GetUser(ctx context.Context, username string) (core.User, error) {
	var hash string
	err := s.db.QueryRowContext(ctx,
		`SELECT password_hash FROM users WHERE username = ?`, username).Scan(&hash)
	if errors.Is(err, sql.ErrNoRows) {
		return core.User{}, storage.ErrUserNotFound
	}
	if err != nil {
		return core.User{}, fmt.Errorf("get user: %w", err)
	}
	return core.User{Username: username, PasswordHash: hash}, nil
}

func (s *Store) CreateUser(ctx context.Context, user core.User) error {
	if err := core.ValidateUsername(user.Username); err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO users (username, password_hash) VALUES (?, ?) ON CONFLICT(username) DO NOTHING`,
		user.Username, user.PasswordHash)
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	if n == 0 {
		return storage.ErrUserExists
	}
	return nil
}

func (s *Store) ListUsers(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT username FROM users ORDER BY username`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		out = append(out, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return out, nil
}

func (s *Store) Load(ctx context.Context, username string) (core.Ledger, error) {
	if err := core.ValidateUsername(username); err != nil {
		return core.Ledger{}, err
	}
	l, changed, err := s.readLedger(ctx, s.db, username)
	if err != nil {
		return core.Ledger{}, err
	}
	if changed {
		if err := s.writeLedger(ctx, s.db, username, l); err != nil {
			return core.Ledger{}, err
		}
	}
	return l, nil
}

func (s *Store) Update(ctx context.Context, username string, fn func(*core.Ledger) error) (core.Ledger, error) {
	if err := core.ValidateUsername(username); err != nil {
		return core.Ledger{}, err
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return core.Ledger{}, fmt.Errorf("begin ledger update: %w", err)
	}
	defer tx.Rollback() // no-op after commit

	l, _, err := s.readLedger(ctx, tx, username)
	if err != nil {
		return core.Ledger{}, err
	}
	if err := fn(&l); err != nil {
		return core.Ledger{}, err
	}
	if err := ctx.Err(); err != nil {
		return core.Ledger{}, err
	}
	if err := s.writeLedger(ctx, tx, username, l); err != nil {
		return core.Ledger{}, err
	}
	version, err := s.ledgerVersion(ctx, tx, username)
	if err != nil {
		return core.Ledger{}, err
	}
	if err := tx.Commit(); err != nil {
		return core.Ledger{}, fmt.Errorf("commit ledger update: %w", err)
	}
	s.logger.DebugContext(ctx, "Ledger saved",
		log.FieldUsername, username,
		"version", version)
	return l, nil
}

func (s *Store) readLedger(ctx context.Context, q querier, username string) (core.Ledger, bool, error) {
	var doc string
	err := q.QueryRowContext(ctx, `SELECT document FROM ledgers WHERE username = ?`, username).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return core.NewLedger(username), false, nil
	}
	if err != nil {
		return core.Ledger{}, false, fmt.Errorf("read ledger for %s: %w", username, err)
	}
	l, changed, err := storage.DecodeLedger([]byte(doc), username)
	if err != nil {
		s.logger.WarnContext(ctx, "Ledger document unreadable, using empty ledger",
			log.FieldUsername, username, log.FieldError, err)
		return l, false, nil
	}
	return l, changed, nil
}

func (s *Store) writeLedger(ctx context.Context, q querier, username string, l core.Ledger) error {
	data, err := storage.EncodeLedger(l)
	if err != nil {
		return err
	}
	_, err = q.ExecContext(ctx, `
		INSERT INTO ledgers (username, document) VALUES (?, ?)
		ON CONFLICT(username) DO UPDATE SET
			document   = excluded.document,
			version    = ledgers.version + 1,
			updated_at = CURRENT_TIMESTAMP`,
		username, string(data))
	if err != nil {
		return fmt.Errorf("save ledger for %s: %w", username, err)
	}
	return nil
}

// ledgerVersion returns how many times username's ledger has been written,
// or zero when it never was.
func (s *Store) ledgerVersion(ctx context.Context, q querier, username string) (int64, error) {
	var v int64
	err := q.QueryRowContext(ctx, `SELECT version FROM ledgers WHERE username = ?`, username).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("ledger version: %w", err)
	}
	return v, nil
}
