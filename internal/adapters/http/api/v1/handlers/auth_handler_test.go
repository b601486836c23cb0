package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	authmw "github.com/minjun0702/nodeskillproject/internal/adapters/http/middleware"
	"github.com/minjun0702/nodeskillproject/internal/domain"
	"github.com/minjun0702/nodeskillproject/internal/usecase"
	res "github.com/minjun0702/nodeskillproject/pkg/http"
)

type mockAuthService struct {
	signUpFn  func(email, password, passwordConfirm, name string) (*domain.User, error)
	signInFn  func(email, password string) (*usecase.Tokens, error)
	refreshFn func(token string) (*usecase.Tokens, error)
	signOutFn func(token string) (uint, error)
}

func (m *mockAuthService) SignUp(_ context.Context, _ string, email, password, passwordConfirm, name string) (*domain.User, error) {
	return m.signUpFn(email, password, passwordConfirm, name)
}

func (m *mockAuthService) SignIn(_ context.Context, _ string, email, password string) (*usecase.Tokens, error) {
	return m.signInFn(email, password)
}

func (m *mockAuthService) Refresh(_ context.Context, _ string, token string) (*usecase.Tokens, error) {
	return m.refreshFn(token)
}

func (m *mockAuthService) SignOut(_ context.Context, _ string, token string) (uint, error) {
	return m.signOutFn(token)
}

var _ usecase.AuthService = (*mockAuthService)(nil)

func jsonRequest(t *testing.T, payload interface{}) (*http.Request, *httptest.ResponseRecorder) {
	t.Helper()
	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	return req, httptest.NewRecorder()
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) res.Response {
	t.Helper()
	var resp res.Response
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return resp
}

func TestSignUpCreated(t *testing.T) {
	e := echo.New()
	svc := &mockAuthService{
		signUpFn: func(email, password, passwordConfirm, name string) (*domain.User, error) {
			if email != "user@example.com" || name != "tester" {
				t.Fatalf("unexpected args: %s %s", email, name)
			}
			return &domain.User{ID: 1, Email: email, Name: name, Role: domain.RoleApplicant}, nil
		},
	}
	h := NewAuthHandler(svc)

	req, rec := jsonRequest(t, map[string]string{
		"email": "user@example.com", "password": "secret1",
		"passwordConfirm": "secret1", "name": "tester",
	})
	if err := h.SignUp(e.NewContext(req, rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d", rec.Code)
	}

	resp := decodeEnvelope(t, rec)
	data := resp.Data.(map[string]interface{})
	if data["email"] != "user@example.com" {
		t.Fatalf("unexpected data: %+v", data)
	}
	if _, leaked := data["passwordHash"]; leaked {
		t.Fatal("password hash leaked in response")
	}
	if bytes.Contains(rec.Body.Bytes(), []byte("PasswordHash")) {
		t.Fatal("password hash serialized")
	}
}

func TestSignUpConflict(t *testing.T) {
	e := echo.New()
	svc := &mockAuthService{
		signUpFn: func(string, string, string, string) (*domain.User, error) {
			return nil, usecase.ErrEmailTaken
		},
	}
	h := NewAuthHandler(svc)

	req, rec := jsonRequest(t, map[string]string{"email": "dup@example.com"})
	_ = h.SignUp(e.NewContext(req, rec))
	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", rec.Code)
	}
}

func TestSignUpInvalid(t *testing.T) {
	e := echo.New()
	svc := &mockAuthService{
		signUpFn: func(string, string, string, string) (*domain.User, error) {
			return nil, usecase.ErrPasswordTooShort
		},
	}
	h := NewAuthHandler(svc)

	req, rec := jsonRequest(t, map[string]string{"email": "a@b.co", "password": "abc"})
	_ = h.SignUp(e.NewContext(req, rec))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestSignInOK(t *testing.T) {
	e := echo.New()
	svc := &mockAuthService{
		signInFn: func(email, password string) (*usecase.Tokens, error) {
			return &usecase.Tokens{AccessToken: "acc", RefreshToken: "ref"}, nil
		},
	}
	h := NewAuthHandler(svc)

	req, rec := jsonRequest(t, map[string]string{"email": "user@example.com", "password": "secret1"})
	if err := h.SignIn(e.NewContext(req, rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	data := decodeEnvelope(t, rec).Data.(map[string]interface{})
	if data["accessToken"] != "acc" || data["refreshToken"] != "ref" {
		t.Fatalf("unexpected tokens: %+v", data)
	}
}

func TestSignInUnauthorized(t *testing.T) {
	e := echo.New()
	svc := &mockAuthService{
		signInFn: func(string, string) (*usecase.Tokens, error) {
			return nil, usecase.ErrInvalidCredentials
		},
	}
	h := NewAuthHandler(svc)

	req, rec := jsonRequest(t, map[string]string{"email": "user@example.com", "password": "wrong"})
	_ = h.SignIn(e.NewContext(req, rec))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestRefreshHandler(t *testing.T) {
	e := echo.New()
	svc := &mockAuthService{
		refreshFn: func(token string) (*usecase.Tokens, error) {
			if token != "the-refresh-token" {
				t.Fatalf("token = %q", token)
			}
			return &usecase.Tokens{AccessToken: "acc2", RefreshToken: "ref2"}, nil
		},
	}
	h := NewAuthHandler(svc)

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set(authmw.RefreshTokenContextKey, "the-refresh-token")

	if err := h.Refresh(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestSignOutHandler(t *testing.T) {
	e := echo.New()
	svc := &mockAuthService{
		signOutFn: func(token string) (uint, error) { return 7, nil },
	}
	h := NewAuthHandler(svc)

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set(authmw.RefreshTokenContextKey, "the-refresh-token")

	if err := h.SignOut(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	data := decodeEnvelope(t, rec).Data.(map[string]interface{})
	if data["id"] != float64(7) {
		t.Fatalf("unexpected data: %+v", data)
	}
}

func TestMeHandler(t *testing.T) {
	e := echo.New()
	h := NewAuthHandler(&mockAuthService{})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set(authmw.UserContextKey, &domain.User{ID: 3, Email: "me@example.com", Name: "me", PasswordHash: "$2a$10$x"})

	if err := h.Me(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if bytes.Contains(rec.Body.Bytes(), []byte("$2a$10$x")) {
		t.Fatal("password hash leaked")
	}
}
