package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	authmw "github.com/minjun0702/nodeskillproject/internal/adapters/http/middleware"
	"github.com/minjun0702/nodeskillproject/internal/domain"
	"github.com/minjun0702/nodeskillproject/internal/usecase"
	res "github.com/minjun0702/nodeskillproject/pkg/http"
)

type AuthHandler struct {
	service usecase.AuthService
}

func NewAuthHandler(s usecase.AuthService) *AuthHandler { return &AuthHandler{service: s} }

type signUpRequest struct {
	Email           string `json:"email"`
	Password        string `json:"password"`
	PasswordConfirm string `json:"passwordConfirm"`
	Name            string `json:"name"`
}

type signInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) SignUp(c echo.Context) error {
	req := new(signUpRequest)
	if err := c.Bind(req); err != nil {
		return res.ErrorJSON(c, http.StatusBadRequest, "invalid payload")
	}
	user, err := h.service.SignUp(c.Request().Context(), requestIDFromCtx(c), req.Email, req.Password, req.PasswordConfirm, req.Name)
	if err != nil {
		return fail(c, err)
	}
	return res.JSON(c, http.StatusCreated, "successfully signed up", user)
}

func (h *AuthHandler) SignIn(c echo.Context) error {
	req := new(signInRequest)
	if err := c.Bind(req); err != nil {
		return res.ErrorJSON(c, http.StatusBadRequest, "invalid payload")
	}
	tokens, err := h.service.SignIn(c.Request().Context(), requestIDFromCtx(c), req.Email, req.Password)
	if err != nil {
		return fail(c, err)
	}
	return res.JSON(c, http.StatusOK, "successfully signed in", tokens)
}

// Refresh runs behind the refresh guard; the guard has already verified the
// token and matched it against the stored fingerprint.
func (h *AuthHandler) Refresh(c echo.Context) error {
	token := c.Get(authmw.RefreshTokenContextKey).(string)
	tokens, err := h.service.Refresh(c.Request().Context(), requestIDFromCtx(c), token)
	if err != nil {
		return fail(c, err)
	}
	return res.JSON(c, http.StatusOK, "tokens reissued", tokens)
}

func (h *AuthHandler) SignOut(c echo.Context) error {
	token := c.Get(authmw.RefreshTokenContextKey).(string)
	id, err := h.service.SignOut(c.Request().Context(), requestIDFromCtx(c), token)
	if err != nil {
		return fail(c, err)
	}
	return res.JSON(c, http.StatusOK, "successfully signed out", map[string]uint{"id": id})
}

// Me returns the identity the access guard resolved for this request.
func (h *AuthHandler) Me(c echo.Context) error {
	user := c.Get(authmw.UserContextKey).(*domain.User)
	return res.JSON(c, http.StatusOK, "", user)
}
