package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/storage"
)

// AuthService registers users and checks their credentials.
type AuthService struct {
	users  storage.UserStore
	cost   int
	logger *log.Logger
}

func NewAuthService(users storage.UserStore, logger *log.Logger) *AuthService {
	if logger == nil {
		logger = log.Discard()
	}
	return &AuthService{
		users:  users,
		cost:   bcrypt.DefaultCost,
		logger: logger.WithComponent(log.ComponentAuth),
	}
}

// WithCost returns a copy hashing with the given bcrypt cost.
func (a *AuthService) WithCost(cost int) *AuthService {
	c := *a
	c.cost = cost
	return &c
}

// Register creates a user. It fails with storage.ErrUserExists when the name
// is taken.
func (a *AuthService) Register(ctx context.Context, username, password string) (string, error) {
	username = strings.TrimSpace(username)
	if err := core.ValidateUsername(username); err != nil {
		return "", err
	}
	if password == "" {
		return "", core.ErrEmptyPassword
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), a.cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	if err := a.users.CreateUser(ctx, core.User{Username: username, PasswordHash: string(hash)}); err != nil {
		if !errors.Is(err, storage.ErrUserExists) {
			err = fmt.Errorf("create user: %w", err)
		}
		return "", err
	}
	a.logger.InfoContext(ctx, "User registered", log.FieldUsername, username, log.FieldOperation, log.OpRegister)
	return username, nil
}

// Authenticate checks a password and returns the canonical username.
// Unknown users and wrong passwords both yield ErrInvalidCredentials.
func (a *AuthService) Authenticate(ctx context.Context, username, password string) (string, error) {
	username = strings.TrimSpace(username)
	u, err := a.users.GetUser(ctx, username)
	if errors.Is(err, storage.ErrUserNotFound) {
		a.logger.InfoContext(ctx, "Login failed", log.FieldUsername, username, log.FieldErrorType, log.ErrorTypeAuth)
		return "", ErrInvalidCredentials
	}
	if err != nil {
		return "", fmt.Errorf("get user: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		a.logger.InfoContext(ctx, "Login failed", log.FieldUsername, username, log.FieldErrorType, log.ErrorTypeAuth)
		return "", ErrInvalidCredentials
	}
	return u.Username, nil
}
