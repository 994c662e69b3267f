package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/notely/notes-api/internal/core/domain"
	"github.com/notely/notes-api/internal/core/ports"
)

type stubUsers struct {
	users map[string]*domain.User
}

func (r *stubUsers) FindByID(_ context.Context, id string) (*domain.User, error) {
	if u, ok := r.users[id]; ok {
		clone := *u
		return &clone, nil
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUsers) Create(context.Context, *domain.User) (*domain.User, error) {
	return nil, errors.New("not implemented")
}
func (r *stubUsers) FindByEmail(context.Context, string) (*domain.User, error) {
	return nil, errors.New("not implemented")
}
func (r *stubUsers) FindByIDs(context.Context, []string) (map[string]*domain.User, error) {
	return nil, errors.New("not implemented")
}
func (r *stubUsers) Search(context.Context, string) ([]*domain.User, error) {
	return nil, errors.New("not implemented")
}
func (r *stubUsers) ListLite(context.Context) ([]*domain.User, error) {
	return nil, errors.New("not implemented")
}
func (r *stubUsers) UpdateRole(context.Context, string, domain.Role) (*domain.User, error) {
	return nil, errors.New("not implemented")
}
func (r *stubUsers) SetBan(context.Context, string, ports.BanUpdate) (*domain.User, error) {
	return nil, errors.New("not implemented")
}

func signToken(t *testing.T, secret, userID string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"id":   userID,
		"role": "user",
		"exp":  time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	e := echo.New()
	userID := primitive.NewObjectID().Hex()
	repo := &stubUsers{users: map[string]*domain.User{
		userID: {ID: userID, Username: "alice", Role: domain.RoleModerator},
	}}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, "secret", userID))
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	called := false
	handler := Auth("secret", repo)(func(c echo.Context) error {
		called = true
		if c.Get(ContextUserID) != userID {
			t.Fatalf("user id not set")
		}
		// The role comes from the store, not the token claim.
		if c.Get(ContextRole) != domain.RoleModerator {
			t.Fatalf("role not resolved from store: %v", c.Get(ContextRole))
		}
		return c.NoContent(http.StatusOK)
	})

	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !called {
		t.Fatalf("next not called")
	}
}

func TestAuthMiddleware_MissingHeader(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := Auth("secret", &stubUsers{})(func(c echo.Context) error {
		t.Fatalf("should not reach next")
		return nil
	})

	if err := handler(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestAuthMiddleware_WrongScheme(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Token abc")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := Auth("secret", &stubUsers{})(func(c echo.Context) error {
		t.Fatalf("should not reach next")
		return nil
	})

	if err := handler(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestAuthMiddleware_UnknownUser(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, "secret", primitive.NewObjectID().Hex()))
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := Auth("secret", &stubUsers{users: map[string]*domain.User{}})(func(c echo.Context) error {
		t.Fatalf("should not reach next")
		return nil
	})

	if err := handler(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestAuthMiddleware_BannedUser(t *testing.T) {
	e := echo.New()
	userID := primitive.NewObjectID().Hex()
	repo := &stubUsers{users: map[string]*domain.User{
		userID: {ID: userID, Username: "mallory", Role: domain.RoleUser, IsBanned: true, BanReason: "spam"},
	}}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, "secret", userID))
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := Auth("secret", repo)(func(c echo.Context) error {
		t.Fatalf("should not reach next")
		return nil
	})

	err := handler(c)
	var be *domain.BannedError
	if !errors.As(err, &be) {
		t.Fatalf("expected BannedError, got %v", err)
	}
	if be.Reason != "spam" {
		t.Fatalf("expected ban reason, got %q", be.Reason)
	}
}

func TestAuthMiddleware_BadSignature(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, "other-secret", primitive.NewObjectID().Hex()))
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := Auth("secret", &stubUsers{})(func(c echo.Context) error {
		t.Fatalf("should not reach next")
		return nil
	})

	if err := handler(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}
