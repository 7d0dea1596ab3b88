package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/natours/booking-api/internal/api/middleware"
	"github.com/natours/booking-api/internal/core/domain"
	"github.com/natours/booking-api/internal/core/ports"
)

type stubAuthService struct {
	signUpFn         func(ctx context.Context, in ports.SignUpInput) (string, *domain.User, error)
	signInFn         func(ctx context.Context, email, password string) (string, *domain.User, error)
	forgotFn         func(ctx context.Context, email string) error
	resetFn          func(ctx context.Context, token, password, confirm string) (string, *domain.User, error)
	updatePasswordFn func(ctx context.Context, userID, current, password, confirm string) (string, *domain.User, error)
}

func (s *stubAuthService) SignUp(ctx context.Context, in ports.SignUpInput) (string, *domain.User, error) {
	return s.signUpFn(ctx, in)
}

func (s *stubAuthService) SignIn(ctx context.Context, email, password string) (string, *domain.User, error) {
	return s.signInFn(ctx, email, password)
}

func (s *stubAuthService) ForgotPassword(ctx context.Context, email string) error {
	return s.forgotFn(ctx, email)
}

func (s *stubAuthService) ResetPassword(ctx context.Context, token, password, confirm string) (string, *domain.User, error) {
	return s.resetFn(ctx, token, password, confirm)
}

func (s *stubAuthService) UpdatePassword(ctx context.Context, userID, current, password, confirm string) (string, *domain.User, error) {
	return s.updatePasswordFn(ctx, userID, current, password, confirm)
}

func newEcho() *echo.Echo {
	e := echo.New()
	e.Validator = NewValidator()
	return e
}

func jsonRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	return req
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	return resp
}

func sessionCookie(rec *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == middleware.TokenCookie {
			return c
		}
	}
	return nil
}

func TestAuthHandler_SignUp_Success(t *testing.T) {
	e := newEcho()
	stub := &stubAuthService{
		signUpFn: func(ctx context.Context, in ports.SignUpInput) (string, *domain.User, error) {
			if in.Name != "Alice" || in.Email != "alice@example.com" || in.PasswordConfirm != "pass1234" {
				t.Fatalf("unexpected input: %+v", in)
			}
			return "token123", &domain.User{ID: "u1", Name: in.Name, Email: in.Email, Role: domain.RoleUser, PasswordHash: "hash"}, nil
		},
	}
	handler := NewAuthHandler(stub, time.Hour)

	req := jsonRequest(http.MethodPost, "/api/v1/users/sign-up",
		`{"name":"Alice","email":"alice@example.com","password":"pass1234","passwordConfirm":"pass1234","role":"admin"}`)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := handler.SignUp(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	resp := decode(t, rec)
	if resp["status"] != "success" || resp["token"] != "token123" {
		t.Fatalf("unexpected envelope: %+v", resp)
	}
	user := resp["data"].(map[string]any)["user"].(map[string]any)
	if user["email"] != "alice@example.com" {
		t.Fatalf("unexpected user payload: %+v", user)
	}
	if _, ok := user["password"]; ok {
		t.Fatalf("password hash leaked: %+v", user)
	}

	cookie := sessionCookie(rec)
	if cookie == nil || cookie.Value != "token123" || !cookie.HttpOnly {
		t.Fatalf("expected httpOnly session cookie, got %+v", cookie)
	}
	if cookie.Secure {
		t.Fatalf("cookie must not be secure on plain http")
	}
}

func TestAuthHandler_SignUp_ValidationError(t *testing.T) {
	e := newEcho()
	stub := &stubAuthService{
		signUpFn: func(ctx context.Context, in ports.SignUpInput) (string, *domain.User, error) {
			t.Fatalf("should not be called")
			return "", nil, nil
		},
	}
	handler := NewAuthHandler(stub, time.Hour)

	req := jsonRequest(http.MethodPost, "/", `{"name":"Alice","email":"not-an-email","password":"x","passwordConfirm":"x"}`)
	c := e.NewContext(req, httptest.NewRecorder())

	err := handler.SignUp(c)
	var ve *domain.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if len(ve.Messages) != 1 || ve.Messages[0] != "email must be a valid email" {
		t.Fatalf("unexpected messages: %v", ve.Messages)
	}
}

func TestAuthHandler_SignUp_InvalidPayload(t *testing.T) {
	e := newEcho()
	handler := NewAuthHandler(&stubAuthService{}, time.Hour)

	c := e.NewContext(jsonRequest(http.MethodPost, "/", "not-json"), httptest.NewRecorder())

	err := handler.SignUp(c)
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %v", err)
	}
}

func TestAuthHandler_SignIn_SecureCookieBehindProxy(t *testing.T) {
	e := newEcho()
	stub := &stubAuthService{
		signInFn: func(ctx context.Context, email, password string) (string, *domain.User, error) {
			return "token123", &domain.User{ID: "u1"}, nil
		},
	}
	handler := NewAuthHandler(stub, time.Hour)

	req := jsonRequest(http.MethodPost, "/", `{"email":"alice@example.com","password":"pass1234"}`)
	req.Header.Set(echo.HeaderXForwardedProto, "https")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := handler.SignIn(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if cookie := sessionCookie(rec); cookie == nil || !cookie.Secure {
		t.Fatalf("expected secure cookie, got %+v", cookie)
	}
}

func TestAuthHandler_SignIn_PropagatesServiceError(t *testing.T) {
	e := newEcho()
	stub := &stubAuthService{
		signInFn: func(ctx context.Context, email, password string) (string, *domain.User, error) {
			return "", nil, domain.ErrInvalidCredentials
		},
	}
	handler := NewAuthHandler(stub, time.Hour)

	rec := httptest.NewRecorder()
	c := e.NewContext(jsonRequest(http.MethodPost, "/", `{"email":"a@b.io","password":"wrong"}`), rec)

	if err := handler.SignIn(c); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if sessionCookie(rec) != nil {
		t.Fatalf("no cookie expected on failure")
	}
}

func TestAuthHandler_SignOut(t *testing.T) {
	e := newEcho()
	handler := NewAuthHandler(&stubAuthService{}, time.Hour)
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	handler.now = func() time.Time { return now }

	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

	if err := handler.SignOut(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	cookie := sessionCookie(rec)
	if cookie == nil || cookie.Value != "signed-out" {
		t.Fatalf("expected placeholder cookie, got %+v", cookie)
	}
	if !cookie.Expires.Equal(now.Add(10 * time.Second)) {
		t.Fatalf("unexpected expiry: %v", cookie.Expires)
	}
}

func TestAuthHandler_ForgotPassword(t *testing.T) {
	e := newEcho()
	var got string
	stub := &stubAuthService{
		forgotFn: func(ctx context.Context, email string) error {
			got = email
			return nil
		},
	}
	handler := NewAuthHandler(stub, time.Hour)

	rec := httptest.NewRecorder()
	c := e.NewContext(jsonRequest(http.MethodPost, "/", `{"email":"alice@example.com"}`), rec)

	if err := handler.ForgotPassword(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if got != "alice@example.com" {
		t.Fatalf("unexpected email: %q", got)
	}
	if resp := decode(t, rec); resp["message"] != "Token sent to email!" {
		t.Fatalf("unexpected body: %+v", resp)
	}
}

func TestAuthHandler_ResetPassword_UsesPathToken(t *testing.T) {
	e := newEcho()
	stub := &stubAuthService{
		resetFn: func(ctx context.Context, token, password, confirm string) (string, *domain.User, error) {
			if token != "abc123" || password != "newpass123" || confirm != "newpass123" {
				t.Fatalf("unexpected args: %s %s %s", token, password, confirm)
			}
			return "fresh", &domain.User{ID: "u1"}, nil
		},
	}
	handler := NewAuthHandler(stub, time.Hour)

	rec := httptest.NewRecorder()
	c := e.NewContext(jsonRequest(http.MethodPatch, "/", `{"password":"newpass123","passwordConfirm":"newpass123"}`), rec)
	c.SetParamNames("token")
	c.SetParamValues("abc123")

	if err := handler.ResetPassword(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if resp := decode(t, rec); resp["token"] != "fresh" {
		t.Fatalf("unexpected body: %+v", resp)
	}
}

func TestAuthHandler_UpdatePassword_RequiresUser(t *testing.T) {
	e := newEcho()
	handler := NewAuthHandler(&stubAuthService{}, time.Hour)

	c := e.NewContext(jsonRequest(http.MethodPatch, "/", `{}`), httptest.NewRecorder())

	if err := handler.UpdatePassword(c); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
}
