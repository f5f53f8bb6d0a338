package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/mkrv/tripledger/internal/models"
)

// memoryUserStorage is a minimal in-memory UserStorage for tests.
type memoryUserStorage struct {
	byEmail map[string]*models.User
	byID    map[string]*models.User
}

func newMemoryUserStorage() *memoryUserStorage {
	return &memoryUserStorage{
		byEmail: make(map[string]*models.User),
		byID:    make(map[string]*models.User),
	}
}

func (m *memoryUserStorage) CreateUser(_ context.Context, user *models.User) error {
	m.byEmail[user.Email] = user
	m.byID[user.ID] = user
	return nil
}

func (m *memoryUserStorage) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	return m.byEmail[models.NormalizeEmail(email)], nil
}

func (m *memoryUserStorage) GetUserByID(_ context.Context, id string) (*models.User, error) {
	return m.byID[id], nil
}

func TestRegisterAndAuthenticate(t *testing.T) {
	authenticator := NewPasswordAuthenticator(newMemoryUserStorage())
	ctx := context.Background()

	user, err := authenticator.Register(ctx, "Alice@Example.com", "Alice", "correct horse battery")
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if user.Email != "alice@example.com" {
		t.Errorf("Expected normalized email, got %s", user.Email)
	}
	if user.PasswordHash == "correct horse battery" {
		t.Error("Password must not be stored in plaintext")
	}

	authed, err := authenticator.Authenticate(ctx, "alice@example.com", "correct horse battery")
	if err != nil {
		t.Fatalf("Authenticate failed: %v", err)
	}
	if authed.ID != user.ID {
		t.Errorf("Expected user %s, got %s", user.ID, authed.ID)
	}
}

func TestRegisterRejectsWeakPassword(t *testing.T) {
	authenticator := NewPasswordAuthenticator(newMemoryUserStorage())

	_, err := authenticator.Register(context.Background(), "bob@example.com", "Bob", "short")
	if !errors.Is(err, ErrWeakPassword) {
		t.Errorf("Expected ErrWeakPassword, got %v", err)
	}
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	authenticator := NewPasswordAuthenticator(newMemoryUserStorage())
	ctx := context.Background()

	if _, err := authenticator.Register(ctx, "carol@example.com", "Carol", "password123"); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	_, err := authenticator.Register(ctx, "carol@example.com", "Carol Again", "password456")
	if !errors.Is(err, ErrEmailExists) {
		t.Errorf("Expected ErrEmailExists, got %v", err)
	}
}

func TestAuthenticateRejectsBadCredentials(t *testing.T) {
	authenticator := NewPasswordAuthenticator(newMemoryUserStorage())
	ctx := context.Background()

	if _, err := authenticator.Register(ctx, "dave@example.com", "Dave", "password123"); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	if _, err := authenticator.Authenticate(ctx, "dave@example.com", "wrong password"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("Expected ErrInvalidCredentials for wrong password, got %v", err)
	}
	if _, err := authenticator.Authenticate(ctx, "nobody@example.com", "password123"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("Expected ErrInvalidCredentials for unknown email, got %v", err)
	}
}
