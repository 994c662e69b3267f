package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/notely/notes-api/internal/core/domain"
)

type stubAuthService struct {
	registerErr error
	loginToken  string
	loginErr    error
	user        *domain.User
}

func (s *stubAuthService) Register(_ context.Context, username, email, _ string) (*domain.User, error) {
	if s.registerErr != nil {
		return nil, s.registerErr
	}
	return &domain.User{ID: "u1", Username: username, Email: email, Role: domain.RoleUser}, nil
}

func (s *stubAuthService) Login(context.Context, string, string) (string, *domain.User, error) {
	if s.loginErr != nil {
		return "", nil, s.loginErr
	}
	return s.loginToken, s.user, nil
}

func (s *stubAuthService) Me(context.Context, string) (*domain.User, error) {
	return s.user, nil
}

func newTestContext(t *testing.T, method, path, body string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	e.Validator = NewValidator()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestAuthHandler_Register_Success(t *testing.T) {
	h := NewAuthHandler(&stubAuthService{})
	c, rec := newTestContext(t, http.MethodPost, "/auth/register",
		`{"username":"alice","email":"alice@example.com","password":"longenough"}`)

	if err := h.Register(c); err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201", rec.Code)
	}

	var body struct {
		User domain.User `json:"user"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("bad response body: %v", err)
	}
	if body.User.Username != "alice" {
		t.Fatalf("unexpected user %+v", body.User)
	}
	if strings.Contains(rec.Body.String(), "password") {
		t.Fatalf("password material leaked in response")
	}
}

func TestAuthHandler_Register_RejectsShortPassword(t *testing.T) {
	h := NewAuthHandler(&stubAuthService{})
	c, _ := newTestContext(t, http.MethodPost, "/auth/register",
		`{"username":"alice","email":"alice@example.com","password":"short"}`)

	err := h.Register(c)
	var ve *domain.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if ve.Field != "password" {
		t.Fatalf("expected password field, got %q", ve.Field)
	}
}

func TestAuthHandler_Register_RejectsBadEmail(t *testing.T) {
	h := NewAuthHandler(&stubAuthService{})
	c, _ := newTestContext(t, http.MethodPost, "/auth/register",
		`{"username":"alice","email":"not-an-email","password":"longenough"}`)

	err := h.Register(c)
	var ve *domain.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestAuthHandler_Login_Success(t *testing.T) {
	h := NewAuthHandler(&stubAuthService{
		loginToken: "tok123",
		user:       &domain.User{ID: "u1", Username: "alice", Role: domain.RoleUser},
	})
	c, rec := newTestContext(t, http.MethodPost, "/auth/login",
		`{"email":"alice@example.com","password":"pw"}`)

	if err := h.Login(c); err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var body struct {
		Token string `json:"token"`
	}
	_ = json.Unmarshal(rec.Body.Bytes(), &body)
	if body.Token != "tok123" {
		t.Fatalf("token missing from response")
	}
}

func TestAuthHandler_Login_PropagatesServiceError(t *testing.T) {
	h := NewAuthHandler(&stubAuthService{loginErr: domain.ErrInvalidCredentials})
	c, _ := newTestContext(t, http.MethodPost, "/auth/login",
		`{"email":"alice@example.com","password":"pw"}`)

	if err := h.Login(c); err != domain.ErrInvalidCredentials {
		t.Fatalf("expected ErrInvalidCredentials to propagate, got %v", err)
	}
}
