package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/minjun0702/nodeskillproject/internal/domain"
	"github.com/minjun0702/nodeskillproject/internal/usecase"
	res "github.com/minjun0702/nodeskillproject/pkg/http"
)

type stubCodec struct {
	userID uint
	err    error
}

func (s stubCodec) Issue(uint, usecase.TokenKind) (string, error) { return "", nil }

func (s stubCodec) Verify(string, usecase.TokenKind) (uint, error) {
	if s.err != nil {
		return 0, s.err
	}
	return s.userID, nil
}

type stubUsers struct {
	user *domain.User
}

func (s stubUsers) Create(context.Context, *domain.User) error { return nil }

func (s stubUsers) FindByEmail(context.Context, string) (*domain.User, error) {
	return nil, gorm.ErrRecordNotFound
}

func (s stubUsers) FindByID(_ context.Context, id uint) (*domain.User, error) {
	if s.user != nil && s.user.ID == id {
		return s.user, nil
	}
	return nil, gorm.ErrRecordNotFound
}

type stubRefresh struct {
	record *domain.RefreshToken
}

func (s stubRefresh) Upsert(context.Context, uint, string) error { return nil }

func (s stubRefresh) FindByUserID(context.Context, uint) (*domain.RefreshToken, error) {
	if s.record == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return s.record, nil
}

func (s stubRefresh) Rotate(context.Context, uint, string, string) error { return nil }
func (s stubRefresh) Revoke(context.Context, uint) error                 { return nil }

func runGuard(t *testing.T, mw echo.MiddlewareFunc, req *http.Request) (*httptest.ResponseRecorder, echo.Context, bool) {
	t.Helper()
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	passed := false
	handler := mw(func(c echo.Context) error {
		passed = true
		return c.String(http.StatusOK, "ok")
	})
	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	return rec, c, passed
}

func errorMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var resp res.Response
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return resp.Message
}

func TestAccessGuardNoToken(t *testing.T) {
	g := NewAccessGuard(stubCodec{}, stubUsers{})
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	rec, _, passed := runGuard(t, g.Handler, req)
	if passed || rec.Code != http.StatusUnauthorized {
		t.Fatalf("passed=%v code=%d", passed, rec.Code)
	}
	if msg := errorMessage(t, rec); msg != "authentication required" {
		t.Fatalf("message = %q", msg)
	}
}

func TestAccessGuardUnsupportedScheme(t *testing.T) {
	g := NewAccessGuard(stubCodec{}, stubUsers{})
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(echo.HeaderAuthorization, "Basic dXNlcjpwYXNz")

	rec, _, passed := runGuard(t, g.Handler, req)
	if passed || rec.Code != http.StatusUnauthorized {
		t.Fatalf("passed=%v code=%d", passed, rec.Code)
	}
	if msg := errorMessage(t, rec); msg != "unsupported authentication scheme" {
		t.Fatalf("message = %q", msg)
	}
}

func TestAccessGuardExpiredDistinctFromInvalid(t *testing.T) {
	req := func() *http.Request {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.Header.Set(echo.HeaderAuthorization, "Bearer some-token")
		return r
	}

	g := NewAccessGuard(stubCodec{err: usecase.ErrTokenExpired}, stubUsers{})
	rec, _, _ := runGuard(t, g.Handler, req())
	expired := errorMessage(t, rec)

	g = NewAccessGuard(stubCodec{err: usecase.ErrTokenMalformed}, stubUsers{})
	rec, _, _ = runGuard(t, g.Handler, req())
	invalid := errorMessage(t, rec)

	if expired != "token expired" || invalid != "invalid token" {
		t.Fatalf("messages = %q / %q", expired, invalid)
	}
}

func TestAccessGuardNoUserClearsCookie(t *testing.T) {
	g := NewAccessGuard(stubCodec{userID: 9}, stubUsers{})
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: AuthCookieName, Value: "Bearer valid-but-orphaned"})

	rec, _, passed := runGuard(t, g.Handler, req)
	if passed || rec.Code != http.StatusUnauthorized {
		t.Fatalf("passed=%v code=%d", passed, rec.Code)
	}

	cleared := false
	for _, cookie := range rec.Result().Cookies() {
		if cookie.Name == AuthCookieName && cookie.MaxAge < 0 {
			cleared = true
		}
	}
	if !cleared {
		t.Fatal("stale auth cookie was not cleared")
	}
}

func TestAccessGuardHeaderNoUserLeavesCookiesAlone(t *testing.T) {
	g := NewAccessGuard(stubCodec{userID: 9}, stubUsers{})
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer valid-but-orphaned")

	rec, _, _ := runGuard(t, g.Handler, req)
	if len(rec.Result().Cookies()) != 0 {
		t.Fatal("header-based request should not touch cookies")
	}
}

func TestAccessGuardSuccess(t *testing.T) {
	user := &domain.User{ID: 4, Email: "u@example.com", Name: "u", Role: domain.RoleApplicant}
	g := NewAccessGuard(stubCodec{userID: 4}, stubUsers{user: user})
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer good")

	rec, c, passed := runGuard(t, g.Handler, req)
	if !passed || rec.Code != http.StatusOK {
		t.Fatalf("passed=%v code=%d", passed, rec.Code)
	}
	attached, ok := c.Get(UserContextKey).(*domain.User)
	if !ok || attached.ID != 4 {
		t.Fatalf("attached user = %+v", attached)
	}
}

func TestAccessGuardCookieFallback(t *testing.T) {
	user := &domain.User{ID: 4, Email: "u@example.com", Name: "u", Role: domain.RoleApplicant}
	g := NewAccessGuard(stubCodec{userID: 4}, stubUsers{user: user})
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: AuthCookieName, Value: "Bearer good"})

	_, _, passed := runGuard(t, g.Handler, req)
	if !passed {
		t.Fatal("cookie-carried token should authenticate")
	}
}

func TestRefreshGuardDiscardedToken(t *testing.T) {
	user := &domain.User{ID: 4}
	other := usecase.TokenFingerprint("a-different-token")

	cases := []struct {
		name   string
		record *domain.RefreshToken
	}{
		{"no record", nil},
		{"revoked", &domain.RefreshToken{UserID: 4, TokenHash: nil}},
		{"rotated away", &domain.RefreshToken{UserID: 4, TokenHash: &other}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			g := NewRefreshGuard(stubCodec{userID: 4}, stubUsers{user: user}, stubRefresh{record: tc.record})
			req := httptest.NewRequest(http.MethodPost, "/", nil)
			req.Header.Set(echo.HeaderAuthorization, "Bearer presented-token")

			rec, _, passed := runGuard(t, g.Handler, req)
			if passed || rec.Code != http.StatusUnauthorized {
				t.Fatalf("passed=%v code=%d", passed, rec.Code)
			}
			if msg := errorMessage(t, rec); msg != "discarded token" {
				t.Fatalf("message = %q", msg)
			}
		})
	}
}

func TestRefreshGuardSuccess(t *testing.T) {
	user := &domain.User{ID: 4, Email: "u@example.com"}
	fp := usecase.TokenFingerprint("presented-token")
	g := NewRefreshGuard(stubCodec{userID: 4}, stubUsers{user: user}, stubRefresh{
		record: &domain.RefreshToken{UserID: 4, TokenHash: &fp},
	})
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer presented-token")

	rec, c, passed := runGuard(t, g.Handler, req)
	if !passed || rec.Code != http.StatusOK {
		t.Fatalf("passed=%v code=%d", passed, rec.Code)
	}
	if tok, _ := c.Get(RefreshTokenContextKey).(string); tok != "presented-token" {
		t.Fatalf("stored token = %q", tok)
	}
}
