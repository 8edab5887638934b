package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fintrack/internal/core"
	"fintrack/internal/storage"
	"fintrack/internal/storage/storagetest"
)

func newStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "fintrack.db"), nil)
	require.NoError(t, err)
	return s
}

func TestStoreContract(t *testing.T) {
	storagetest.Run(t, func(t *testing.T) storage.Store { return newStore(t) })
}

func TestMigrationsAreIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fintrack.db")
	s, err := New(path, nil)
	require.NoError(t, err)
	require.NoError(t, s.CreateUser(context.Background(), core.User{Username: "ana", PasswordHash: "h"}))
	require.NoError(t, s.Close())

	s, err = New(path, nil)
	require.NoError(t, err)
	defer s.Close()
	_, err = s.GetUser(context.Background(), "ana")
	require.NoError(t, err)
}

func TestMalformedDocument(t *testing.T) {
	s := newStore(t)
	defer s.Close()
	ctx := context.Background()
	_, err := s.db.ExecContext(ctx, `INSERT INTO ledgers (username, document) VALUES ('ana', '{oops')`)
	require.NoError(t, err)

	l, err := s.Load(ctx, "ana")
	require.NoError(t, err)
	assert.Empty(t, l.Transactions)
	assert.Equal(t, "ana", l.Config.DisplayName)
}

func TestVersionIncrements(t *testing.T) {
	s := newStore(t)
	defer s.Close()
	ctx := context.Background()

	v, err := s.ledgerVersion(ctx, s.db, "ana")
	require.NoError(t, err)
	assert.Zero(t, v)

	for i := 0; i < 3; i++ {
		_, err := s.Update(ctx, "ana", func(l *core.Ledger) error {
			l.AddInvestment(core.Investment{Name: "Tesouro", Amount: core.RawAmount("100"), CreatedDate: "2024-03-01"})
			return nil
		})
		require.NoError(t, err)
	}
	v, err = s.ledgerVersion(ctx, s.db, "ana")
	require.NoError(t, err)
	assert.EqualValues(t, 3, v)
}
