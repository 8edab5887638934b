// Package file stores every user's ledger as a JSON document in a data
// directory, next to a shared credentials file.
//
// Layout:
//
//	<dir>/users_login.json   {"username": "<bcrypt hash>", ...}
//	<dir>/<username>_dados.json
//
// Writes go to a temp file in the same directory and are renamed into place,
// so a crash never leaves a half-written document behind. The credentials
// file is cached in memory and dropped whenever fsnotify reports a change, so
// edits made by hand or by another process are picked up.
package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/fsnotify/fsnotify"

	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/storage"
)

const (
	UsersFileName = "users_login.json"
	ledgerSuffix  = "_dados.json"
)

type Store struct {
	dir    string
	logger *log.Logger
	locks  storage.KeyedMutex

	usersMu sync.Mutex
	users   map[string]string // nil when the cache is stale

	watcher *fsnotify.Watcher
	stop    context.CancelFunc
	done    chan struct{}
}

var _ storage.Store = (*Store)(nil)

// New opens (and creates if needed) the data directory.
func New(dir string, logger *log.Logger) (*Store, error) {
	if logger == nil {
		logger = log.Discard()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}
	s := &Store{
		dir:    dir,
		logger: logger.WithComponent(log.ComponentStorage),
	}

	watcher, err := fsnotify.NewWatcher()
	if err == nil {
		err = watcher.Add(dir)
		if err != nil {
			_ = watcher.Close()
		}
	}
	if err != nil {
		// Without a watcher the credentials file is re-read on every lookup.
		s.logger.Warn("File watcher unavailable, credentials will not be cached", log.FieldError, err)
		return s, nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.watcher = watcher
	s.stop = cancel
	s.done = make(chan struct{})
	go s.watch(ctx)
	return s, nil
}

func (s *Store) Dir() string { return s.dir }

func (s *Store) Close() error {
	if s.watcher == nil {
		return nil
	}
	s.stop()
	<-s.done
	return nil
}

func (s *Store) watch(ctx context.Context) {
	defer close(s.done)
	defer s.watcher.Close()
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-s.watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != UsersFileName {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			s.usersMu.Lock()
			s.users = nil
			s.usersMu.Unlock()
			s.logger.Debug("Credentials file changed, cache dropped", log.FieldFile, event.Name)
		case err, ok := <-s.watcher.Errors:
			if !ok {
				return
			}
			s.logger.Warn("File watcher error", log.FieldError, err)
		}
	}
}

func (s *Store) usersPath() string {
	return filepath.Join(s.dir, UsersFileName)
}

func (s *Store) ledgerPath(username string) string {
	return filepath.Join(s.dir, username+ledgerSuffix)
}

// loadUsersLocked returns the cached credentials, reading the file when the
// cache is stale or when there is no watcher to keep it fresh.
func (s *Store) loadUsersLocked(force bool) (map[string]string, error) {
	if s.users != nil && s.watcher != nil && !force {
		return s.users, nil
	}
	users := make(map[string]string)
	data, err := os.ReadFile(s.usersPath())
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("read users: %w", err)
	default:
		if err := json.Unmarshal(data, &users); err != nil {
			s.logger.Warn("Credentials file unreadable, treating as empty", log.FieldError, err)
			users = make(map[string]string)
		}
	}
	s.users = users
	return users, nil
}

func (s *Store) GetUser(ctx context.Context, username string) (core.User, error) {
	if err := ctx.Err(); err != nil {
		return core.User{}, err
	}
	s.usersMu.Lock()
	defer s.usersMu.Unlock()
	users, err := s.loadUsersLocked(false)
	if err != nil {
		return core.User{}, err
	}
	hash, ok := users[username]
	if !ok {
		return core.User{}, storage.ErrUserNotFound
	}
	return core.User{Username: username, PasswordHash: hash}, nil
}

func (s *Store) CreateUser(ctx context.Context, user core.User) error {
	if err := core.ValidateUsername(user.Username); err != nil {
		return err
	}
	s.usersMu.Lock()
	defer s.usersMu.Unlock()

	users, err := s.loadUsersLocked(true)
	if err != nil {
		return err
	}
	if _, ok := users[user.Username]; ok {
		return storage.ErrUserExists
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	next := make(map[string]string, len(users)+1)
	for k, v := range users {
		next[k] = v
	}
	next[user.Username] = user.PasswordHash
	data, err := json.MarshalIndent(next, "", "    ")
	if err != nil {
		return fmt.Errorf("encode users: %w", err)
	}
	if err := s.writeAtomic(s.usersPath(), data); err != nil {
		return fmt.Errorf("save users: %w", err)
	}
	s.users = next
	return nil
}

func (s *Store) ListUsers(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.usersMu.Lock()
	defer s.usersMu.Unlock()
	users, err := s.loadUsersLocked(false)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(users))
	for name := range users {
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

	l, changed, err := s.readLedger(ctx, username)
	if err != nil {
		return core.Ledger{}, err
	}
	if changed {
		// Backfilled ids must survive to the next request.
		if err := s.writeLedger(username, l); err != nil {
			return core.Ledger{}, err
		}
	}
	return l, nil
}

func (s *Store) Update(ctx context.Context, username string, fn func(*core.Ledger) error) (core.Ledger, error) {
	if err := core.ValidateUsername(username); err != nil {
		return core.Ledger{}, err
	}
	unlock := s.locks.Lock(username)
	defer unlock()

	l, _, err := s.readLedger(ctx, username)
	if err != nil {
		return core.Ledger{}, err
	}
	if err := fn(&l); err != nil {
		return core.Ledger{}, err
	}
	if err := ctx.Err(); err != nil {
		return core.Ledger{}, err
	}
	if err := s.writeLedger(username, l); err != nil {
		return core.Ledger{}, err
	}
	return l, nil
}

func (s *Store) readLedger(ctx context.Context, username string) (core.Ledger, bool, error) {
	if err := ctx.Err(); err != nil {
		return core.Ledger{}, false, err
	}
	data, err := os.ReadFile(s.ledgerPath(username))
	if errors.Is(err, fs.ErrNotExist) {
		return core.NewLedger(username), false, nil
	}
	if err != nil {
		return core.Ledger{}, false, fmt.Errorf("read ledger for %s: %w", username, err)
	}
	l, changed, err := storage.DecodeLedger(data, username)
	if err != nil {
		s.logger.WarnContext(ctx, "Ledger document unreadable, using empty ledger",
			log.FieldUsername, username, log.FieldFile, s.ledgerPath(username), log.FieldError, err)
		return l, false, nil
	}
	return l, changed, nil
}

func (s *Store) writeLedger(username string, l core.Ledger) error {
	data, err := storage.EncodeLedger(l)
	if err != nil {
		return err
	}
	if err := s.writeAtomic(s.ledgerPath(username), data); err != nil {
		return fmt.Errorf("save ledger for %s: %w", username, err)
	}
	return nil
}

func (s *Store) writeAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(s.dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath) // no-op once renamed

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpPath, path)
}
