package middleware

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	repo "github.com/minjun0702/nodeskillproject/internal/adapters/postgres"
	"github.com/minjun0702/nodeskillproject/internal/usecase"
	res "github.com/minjun0702/nodeskillproject/pkg/http"
)

// Context key the guards attach the resolved user under, and the raw
// refresh token the sign-out/token handlers need.
const (
	UserContextKey         = "user"
	RefreshTokenContextKey = "refresh_token"
)

// AuthCookieName matches the cookie the browser clients set alongside the
// Authorization header; its value carries the full "Bearer <token>" string.
const AuthCookieName = "authorization"

// AccessGuard authenticates resource requests with an access token.
type AccessGuard struct {
	codec usecase.TokenCodec
	users repo.UserRepository
}

// RefreshGuard authenticates the token-refresh and sign-out endpoints with
// a refresh token, including the stored-fingerprint match. It only
// authenticates; rotation stays in the auth service.
type RefreshGuard struct {
	codec   usecase.TokenCodec
	users   repo.UserRepository
	refresh repo.RefreshTokenRepository
}

func NewAccessGuard(codec usecase.TokenCodec, users repo.UserRepository) *AccessGuard {
	return &AccessGuard{codec: codec, users: users}
}

func NewRefreshGuard(codec usecase.TokenCodec, users repo.UserRepository, refresh repo.RefreshTokenRepository) *RefreshGuard {
	return &RefreshGuard{codec: codec, users: users, refresh: refresh}
}

func (g *AccessGuard) Handler(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		raw := c.Request().Header.Get(echo.HeaderAuthorization)
		fromCookie := false
		if raw == "" {
			if cookie, err := c.Cookie(AuthCookieName); err == nil {
				raw = cookie.Value
				fromCookie = true
			}
		}
		token, err := bearerToken(raw)
		if err != nil {
			return unauthorized(c, err)
		}

		userID, err := g.codec.Verify(token, usecase.TokenKindAccess)
		if err != nil {
			return unauthorized(c, err)
		}

		user, err := g.users.FindByID(c.Request().Context(), userID)
		if err != nil {
			// the credential references a user that no longer exists; a
			// cookie-held session must not be retried as-is
			if fromCookie {
				clearAuthCookie(c)
			}
			return unauthorized(c, usecase.ErrNoUser)
		}

		c.Set(UserContextKey, user)
		return next(c)
	}
}

func (g *RefreshGuard) Handler(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		token, err := bearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
		if err != nil {
			return unauthorized(c, err)
		}

		userID, err := g.codec.Verify(token, usecase.TokenKindRefresh)
		if err != nil {
			return unauthorized(c, err)
		}

		record, err := g.refresh.FindByUserID(c.Request().Context(), userID)
		if err != nil || record.TokenHash == nil {
			return unauthorized(c, usecase.ErrDiscardedToken)
		}
		fp := usecase.TokenFingerprint(token)
		if subtle.ConstantTimeCompare([]byte(*record.TokenHash), []byte(fp)) != 1 {
			return unauthorized(c, usecase.ErrDiscardedToken)
		}

		user, err := g.users.FindByID(c.Request().Context(), userID)
		if err != nil {
			return unauthorized(c, usecase.ErrNoUser)
		}

		c.Set(UserContextKey, user)
		c.Set(RefreshTokenContextKey, token)
		return next(c)
	}
}

var (
	errNoToken           = errors.New("authentication required")
	errUnsupportedScheme = errors.New("unsupported authentication scheme")
)

func bearerToken(raw string) (string, error) {
	if raw == "" {
		return "", errNoToken
	}
	parts := strings.SplitN(raw, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", errUnsupportedScheme
	}
	if parts[1] == "" {
		return "", errNoToken
	}
	return parts[1], nil
}

func unauthorized(c echo.Context, err error) error {
	return res.ErrorJSON(c, http.StatusUnauthorized, err.Error())
}

func clearAuthCookie(c echo.Context) {
	c.SetCookie(&http.Cookie{Name: AuthCookieName, Value: "", Path: "/", MaxAge: -1})
}
