// Package memory is an in-process storage.Store. Ledgers are kept as encoded
// documents so every Load returns an independent copy, exactly like the
// persistent backends.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/storage"
)

type Store struct {
	mu      sync.RWMutex
	users   map[string]string
	ledgers map[string][]byte
	locks   storage.KeyedMutex
	logger  *log.Logger
}

var _ storage.Store = (*Store)(nil)

func New(logger *log.Logger) *Store {
	if logger == nil {
		logger = log.Discard()
	}
	return &Store{
		users:   make(map[string]string),
		ledgers: make(map[string][]byte),
		logger:  logger.WithComponent(log.ComponentStorage),
	}
}

func (s *Store) GetUser(_ context.Context, username string) (core.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	hash, ok := s.users[username]
	if !ok {
		return core.User{}, storage.ErrUserNotFound
	}
	return core.User{Username: username, PasswordHash: hash}, nil
}

func (s *Store) CreateUser(ctx context.Context, user core.User) error {
	if err := core.ValidateUsername(user.Username); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[user.Username]; ok {
		return storage.ErrUserExists
	}
	s.users[user.Username] = user.PasswordHash
	return nil
}

func (s *Store) ListUsers(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.users))
	for name := range s.users {
		out = append(out, name)
	}
	sort.Strings(out)
	return out, nil
}

func (s *Store) Load(ctx context.Context, username string) (core.Ledger, error) {
	if err := core.ValidateUsername(username); err != nil {
		return core.Ledger{}, err
	}
	unlock := s.locks.Lock(username)
	defer unlock()
	return s.read(ctx, username)
}

func (s *Store) Update(ctx context.Context, username string, fn func(*core.Ledger) error) (core.Ledger, error) {
	if err := core.ValidateUsername(username); err != nil {
		return core.Ledger{}, err
	}
	unlock := s.locks.Lock(username)
	defer unlock()

	l, err := s.read(ctx, username)
	if err != nil {
		return core.Ledger{}, err
	}
	if err := fn(&l); err != nil {
		return core.Ledger{}, err
	}
	if err := ctx.Err(); err != nil {
		return core.Ledger{}, err
	}
	if err := s.write(username, l); err != nil {
		return core.Ledger{}, err
	}
	return l, nil
}

// PutRaw stores data verbatim as username's ledger document. It lets tests
// and fixtures seed legacy or damaged documents.
func (s *Store) PutRaw(username string, data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ledgers[username] = append([]byte(nil), data...)
}

func (s *Store) Close() error { return nil }

func (s *Store) read(ctx context.Context, username string) (core.Ledger, error) {
	if err := ctx.Err(); err != nil {
		return core.Ledger{}, err
	}
	s.mu.RLock()
	data, ok := s.ledgers[username]
	s.mu.RUnlock()
	if !ok {
		return core.NewLedger(username), nil
	}

	l, changed, err := storage.DecodeLedger(data, username)
	if err != nil {
		s.logger.WarnContext(ctx, "Ledger document unreadable, using empty ledger",
			log.FieldUsername, username, log.FieldError, err)
		return l, nil
	}
	if changed {
		if err := s.write(username, l); err != nil {
			return core.Ledger{}, err
		}
	}
	return l, nil
}

func (s *Store) write(username string, l core.Ledger) error {
	data, err := storage.EncodeLedger(l)
	if err != nil {
		return fmt.Errorf("save ledger for %s: %w", username, err)
	}
	s.mu.Lock()
	s.ledgers[username] = data
	s.mu.Unlock()
	return nil
}
