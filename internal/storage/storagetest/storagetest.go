// Package storagetest holds the behaviour every storage.Store backend must
// share. Backends call Run from their own tests.
package storagetest

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fintrack/internal/core"
	"fintrack/internal/storage"
)

// Factory returns a fresh, empty store. The store is closed by the suite.
type Factory func(t *testing.T) storage.Store

func Run(t *testing.T, newStore Factory) {
	t.Run("Users", func(t *testing.T) { testUsers(t, newStore(t)) })
	t.Run("LoadMissingLedger", func(t *testing.T) { testLoadMissing(t, newStore(t)) })
	t.Run("UpdatePersists", func(t *testing.T) { testUpdatePersists(t, newStore(t)) })
	t.Run("UpdateErrorDiscards", func(t *testing.T) { testUpdateErrorDiscards(t, newStore(t)) })
	t.Run("UpdateCancelled", func(t *testing.T) { testUpdateCancelled(t, newStore(t)) })
	t.Run("ConcurrentUpdates", func(t *testing.T) { testConcurrentUpdates(t, newStore(t)) })
	t.Run("UsersIsolated", func(t *testing.T) { testIsolation(t, newStore(t)) })
	t.Run("InvalidUsername", func(t *testing.T) { testInvalidUsername(t, newStore(t)) })
}

func closeStore(t *testing.T, s storage.Store) {
	t.Cleanup(func() { assert.NoError(t, s.Close()) })
}

func sampleTx(desc string) core.Transaction {
	return core.Transaction{
		Type:        core.Expense,
		Date:        "2024-03-02",
		Description: desc,
		Amount:      core.RawAmount("120"),
		Category:    "Alimentação",
	}
}

func testUsers(t *testing.T, s storage.Store) {
	closeStore(t, s)
	ctx := context.Background()

	_, err := s.GetUser(ctx, "ana")
	require.ErrorIs(t, err, storage.ErrUserNotFound)

	require.NoError(t, s.CreateUser(ctx, core.User{Username: "bob", PasswordHash: "h2"}))
	require.NoError(t, s.CreateUser(ctx, core.User{Username: "ana", PasswordHash: "h1"}))
	err = s.CreateUser(ctx, core.User{Username: "ana", PasswordHash: "other"})
	require.ErrorIs(t, err, storage.ErrUserExists)

	u, err := s.GetUser(ctx, "ana")
	require.NoError(t, err)
	assert.Equal(t, "h1", u.PasswordHash, "duplicate registration must not overwrite")

	names, err := s.ListUsers(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"ana", "bob"}, names)
}

func testLoadMissing(t *testing.T, s storage.Store) {
	closeStore(t, s)
	l, err := s.Load(context.Background(), "ana")
	require.NoError(t, err)
	assert.Empty(t, l.Transactions)
	assert.NotNil(t, l.Transactions)
	assert.NotNil(t, l.Investments)
	assert.Equal(t, "ana", l.Config.DisplayName)
}

func testUpdatePersists(t *testing.T, s storage.Store) {
	closeStore(t, s)
	ctx := context.Background()

	var added core.Transaction
	got, err := s.Update(ctx, "ana", func(l *core.Ledger) error {
		added = l.AddTransaction(sampleTx("mercado"))
		return nil
	})
	require.NoError(t, err)
	require.Len(t, got.Transactions, 1)

	l, err := s.Load(ctx, "ana")
	require.NoError(t, err)
	require.Len(t, l.Transactions, 1)
	assert.Equal(t, added.ID, l.Transactions[0].ID)
	assert.Equal(t, "120", l.Transactions[0].Amount.String())

	_, err = s.Update(ctx, "ana", func(l *core.Ledger) error {
		l.DeleteTransaction(added.ID)
		l.SetDisplayName("Ana Maria", "ana")
		return nil
	})
	require.NoError(t, err)

	l, err = s.Load(ctx, "ana")
	require.NoError(t, err)
	assert.Empty(t, l.Transactions)
	assert.Equal(t, "Ana Maria", l.Config.DisplayName)
}

func testUpdateErrorDiscards(t *testing.T, s storage.Store) {
	closeStore(t, s)
	ctx := context.Background()
	boom := errors.New("boom")

	_, err := s.Update(ctx, "ana", func(l *core.Ledger) error {
		l.AddTransaction(sampleTx("never stored"))
		return boom
	})
	require.ErrorIs(t, err, boom)

	l, err := s.Load(ctx, "ana")
	require.NoError(t, err)
	assert.Empty(t, l.Transactions)
}

func testUpdateCancelled(t *testing.T, s storage.Store) {
	closeStore(t, s)
	ctx, cancel := context.WithCancel(context.Background())

	_, err := s.Update(ctx, "ana", func(l *core.Ledger) error {
		l.AddTransaction(sampleTx("cancelled"))
		cancel()
		return nil
	})
	require.ErrorIs(t, err, context.Canceled)

	l, err := s.Load(context.Background(), "ana")
	require.NoError(t, err)
	assert.Empty(t, l.Transactions)
}

func testConcurrentUpdates(t *testing.T, s storage.Store) {
	closeStore(t, s)
	ctx := context.Background()
	const writers = 20

	var wg sync.WaitGroup
	errs := make(chan error, writers)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := s.Update(ctx, "ana", func(l *core.Ledger) error {
				l.AddTransaction(sampleTx(fmt.Sprintf("tx-%d", i)))
				return nil
			})
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	l, err := s.Load(ctx, "ana")
	require.NoError(t, err)
	assert.Len(t, l.Transactions, writers, "concurrent writers for one user must not lose updates")
}

func testIsolation(t *testing.T, s storage.Store) {
	closeStore(t, s)
	ctx := context.Background()

	_, err := s.Update(ctx, "ana", func(l *core.Ledger) error {
		l.AddTransaction(sampleTx("ana only"))
		return nil
	})
	require.NoError(t, err)

	l, err := s.Load(ctx, "bob")
	require.NoError(t, err)
	assert.Empty(t, l.Transactions)
	assert.Equal(t, "bob", l.Config.DisplayName)
}

func testInvalidUsername(t *testing.T, s storage.Store) {
	closeStore(t, s)
	ctx := context.Background()

	_, err := s.Load(ctx, "../etc")
	assert.ErrorIs(t, err, core.ErrInvalidUsername)
	_, err = s.Update(ctx, "a/b", func(*core.Ledger) error { return nil })
	assert.ErrorIs(t, err, core.ErrInvalidUsername)
	err = s.CreateUser(ctx, core.User{Username: "..", PasswordHash: "h"})
	assert.ErrorIs(t, err, core.ErrInvalidUsername)
}
