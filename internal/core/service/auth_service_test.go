package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/notely/notes-api/internal/core/domain"
)

func newAuthService(repo *stubUserRepo) *AuthService {
	return NewAuthService(repo, "secret", time.Hour, zerolog.Nop())
}

func TestAuthService_Register_Success(t *testing.T) {
	repo := newStubUserRepo()
	svc := newAuthService(repo)

	user, err := svc.Register(context.Background(), "alice", "Alice@Example.com", "pass1234")
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if user.Email != "alice@example.com" {
		t.Fatalf("expected lowercased email, got %q", user.Email)
	}
	if user.Role != domain.RoleUser {
		t.Fatalf("expected role user, got %s", user.Role)
	}
	if user.PasswordHash == "pass1234" {
		t.Fatalf("expected password to be hashed")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("pass1234")); err != nil {
		t.Fatalf("stored hash does not match password: %v", err)
	}
}

func TestAuthService_Register_Validation(t *testing.T) {
	svc := newAuthService(newStubUserRepo())

	var ve *domain.ValidationError
	if _, err := svc.Register(context.Background(), "  ", "a@b.com", "pass"); !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError for blank username, got %v", err)
	}
	if _, err := svc.Register(context.Background(), "bob", "", "pass"); !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError for blank email, got %v", err)
	}
	if _, err := svc.Register(context.Background(), "bob", "b@b.com", ""); !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError for blank password, got %v", err)
	}
}

func TestAuthService_Register_Duplicate(t *testing.T) {
	svc := newAuthService(newStubUserRepo())

	if _, err := svc.Register(context.Background(), "bob", "bob@example.com", "pass1234"); err != nil {
		t.Fatalf("first Register returned error: %v", err)
	}
	if _, err := svc.Register(context.Background(), "bob", "bob@example.com", "pass5678"); !errors.Is(err, domain.ErrUserExists) {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}
}

func TestAuthService_Login_Success(t *testing.T) {
	repo := newStubUserRepo()
	svc := newAuthService(repo)

	if _, err := svc.Register(context.Background(), "carol", "carol@example.com", "s3cret99"); err != nil {
		t.Fatalf("Register returned error: %v", err)
	}

	token, user, err := svc.Login(context.Background(), "Carol@Example.com", "s3cret99")
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	if user == nil || user.Username != "carol" {
		t.Fatalf("unexpected user: %+v", user)
	}

	claims := jwt.MapClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return []byte("secret"), nil
	})
	if err != nil || !parsed.Valid {
		t.Fatalf("token does not parse: %v", err)
	}
	if claims["id"] != user.ID {
		t.Fatalf("token id claim = %v, want %s", claims["id"], user.ID)
	}
	if claims["role"] != string(domain.RoleUser) {
		t.Fatalf("token role claim = %v", claims["role"])
	}
}

func TestAuthService_Login_WrongPassword(t *testing.T) {
	svc := newAuthService(newStubUserRepo())
	_, _ = svc.Register(context.Background(), "dave", "dave@example.com", "correct1")

	if _, _, err := svc.Login(context.Background(), "dave@example.com", "wrong"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthService_Login_UnknownEmailHidesExistence(t *testing.T) {
	svc := newAuthService(newStubUserRepo())

	if _, _, err := svc.Login(context.Background(), "ghost@example.com", "whatever"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthService_Login_Banned(t *testing.T) {
	repo := newStubUserRepo()
	svc := newAuthService(repo)

	user, err := svc.Register(context.Background(), "eve", "eve@example.com", "pass1234")
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	stored := repo.users[user.ID]
	stored.IsBanned = true
	stored.BanReason = "spam"

	_, _, err = svc.Login(context.Background(), "eve@example.com", "pass1234")
	var be *domain.BannedError
	if !errors.As(err, &be) {
		t.Fatalf("expected BannedError, got %v", err)
	}
	if be.Reason != "spam" {
		t.Fatalf("expected ban reason to travel, got %q", be.Reason)
	}
	if be.Code() != "USER_BANNED" {
		t.Fatalf("unexpected code %q", be.Code())
	}
}

func TestAuthService_Me(t *testing.T) {
	repo := newStubUserRepo()
	svc := newAuthService(repo)

	created, _ := svc.Register(context.Background(), "frank", "frank@example.com", "pass1234")

	got, err := svc.Me(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("Me returned error: %v", err)
	}
	if got.Username != "frank" {
		t.Fatalf("unexpected user %+v", got)
	}

	if _, err := svc.Me(context.Background(), newID()); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}
