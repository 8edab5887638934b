package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"fintrack/internal/core"
	"fintrack/internal/storage"
	"fintrack/internal/storage/memory"
)

func newAuth() (*AuthService, *memory.Store) {
	store := memory.New(nil)
	return NewAuthService(store, nil).WithCost(bcrypt.MinCost), store
}

func TestRegisterAndAuthenticate(t *testing.T) {
	auth, store := newAuth()
	ctx := context.Background()

	name, err := auth.Register(ctx, " ana ", "s3cret")
	require.NoError(t, err)
	assert.Equal(t, "ana", name)

	u, err := store.GetUser(ctx, "ana")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret", u.PasswordHash, "password must be hashed")

	name, err = auth.Authenticate(ctx, "ana", "s3cret")
	require.NoError(t, err)
	assert.Equal(t, "ana", name)
}

func TestAuthenticateFailures(t *testing.T) {
	auth, _ := newAuth()
	ctx := context.Background()
	_, err := auth.Register(ctx, "ana", "s3cret")
	require.NoError(t, err)

	_, err = auth.Authenticate(ctx, "ana", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = auth.Authenticate(ctx, "nobody", "s3cret")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	assert.Equal(t, "Usuário ou senha incorretos.", UserMessage(err))
}

func TestRegisterDuplicate(t *testing.T) {
	auth, _ := newAuth()
	ctx := context.Background()
	_, err := auth.Register(ctx, "ana", "one")
	require.NoError(t, err)

	_, err = auth.Register(ctx, "ana", "two")
	require.ErrorIs(t, err, storage.ErrUserExists)
	assert.Equal(t, "Usuário já existe.", UserMessage(err))

	_, err = auth.Authenticate(ctx, "ana", "one")
	assert.NoError(t, err, "original password must still work")
}

func TestRegisterRejectsBadInput(t *testing.T) {
	auth, _ := newAuth()
	ctx := context.Background()
	_, err := auth.Register(ctx, "../x", "pw")
	assert.ErrorIs(t, err, core.ErrInvalidUsername)
	_, err = auth.Register(ctx, "carla", "")
	assert.ErrorIs(t, err, core.ErrEmptyPassword)
}
