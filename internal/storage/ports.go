// Package storage defines the persistence ports for users and per-user
// ledgers, plus the pieces every backend shares: the ledger document codec and
// a per-key mutex.
package storage

import (
	"context"
	"errors"

	"fintrack/internal/core"
)

var (
	ErrUserExists      = errors.New("user already exists")
	ErrUserNotFound    = errors.New("user not found")
	ErrMalformedLedger = errors.New("malformed ledger document")
)

type (
	// UserStore keeps credentials. Users are created once and never mutated.
	UserStore interface {
		GetUser(ctx context.Context, username string) (core.User, error)
		CreateUser(ctx context.Context, user core.User) error
		ListUsers(ctx context.Context) ([]string, error)
	}

	// LedgerStore loads and rewrites whole per-user ledgers.
	//
	// Update runs fn against the current ledger and persists the result. Calls
	// for the same username are serialized; different users never contend. If
	// fn returns an error or ctx is done before the write, nothing is stored.
	LedgerStore interface {
		Load(ctx context.Context, username string) (core.Ledger, error)
		Update(ctx context.Context, username string, fn func(*core.Ledger) error) (core.Ledger, error)
	}

	Store interface {
		UserStore
		LedgerStore
		Close() error
	}
)
