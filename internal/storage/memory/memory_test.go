package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fintrack/internal/storage"
	"fintrack/internal/storage/storagetest"
)

func TestStoreContract(t *testing.T) {
	storagetest.Run(t, func(t *testing.T) storage.Store { return New(nil) })
}

func TestMalformedDocumentFallsBackToDefault(t *testing.T) {
	s := New(nil)
	s.PutRaw("ana", []byte("not json"))

	l, err := s.Load(context.Background(), "ana")
	require.NoError(t, err)
	assert.Empty(t, l.Transactions)
	assert.Equal(t, "ana", l.Config.DisplayName)
}

func TestLegacyRecordsGetStableIDs(t *testing.T) {
	s := New(nil)
	s.PutRaw("ana", []byte(`{"transactions":[{"type":"Income","date":"2024-03-01","description":"x","amount":"10","category":"Vendas"}]}`))

	first, err := s.Load(context.Background(), "ana")
	require.NoError(t, err)
	second, err := s.Load(context.Background(), "ana")
	require.NoError(t, err)
	require.Len(t, first.Transactions, 1)
	assert.NotEmpty(t, first.Transactions[0].ID)
	assert.Equal(t, first.Transactions[0].ID, second.Transactions[0].ID)
}
