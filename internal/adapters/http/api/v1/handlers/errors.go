package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/minjun0702/nodeskillproject/internal/usecase"
	res "github.com/minjun0702/nodeskillproject/pkg/http"
)

// fail translates a service failure into the response envelope.
func fail(c echo.Context, err error) error {
	switch {
	case errors.Is(err, usecase.ErrFieldsRequired),
		errors.Is(err, usecase.ErrInvalidEmail),
		errors.Is(err, usecase.ErrPasswordTooShort),
		errors.Is(err, usecase.ErrPasswordConfirmMismatch),
		errors.Is(err, usecase.ErrAboutMeTooShort),
		errors.Is(err, usecase.ErrNothingToUpdate),
		errors.Is(err, usecase.ErrInvalidStatus),
		errors.Is(err, usecase.ErrReasonRequired):
		return res.ErrorJSON(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, usecase.ErrEmailTaken):
		return res.ErrorJSON(c, http.StatusConflict, err.Error())
	case errors.Is(err, usecase.ErrInvalidCredentials),
		errors.Is(err, usecase.ErrTokenExpired),
		errors.Is(err, usecase.ErrTokenMalformed),
		errors.Is(err, usecase.ErrDiscardedToken),
		errors.Is(err, usecase.ErrNoUser):
		return res.ErrorJSON(c, http.StatusUnauthorized, err.Error())
	case errors.Is(err, usecase.ErrRoleForbidden):
		return res.ErrorJSON(c, http.StatusForbidden, err.Error())
	case errors.Is(err, usecase.ErrResumeNotFound):
		return res.ErrorJSON(c, http.StatusNotFound, err.Error())
	}
	return res.ErrorJSON(c, http.StatusInternalServerError, "internal server error")
}

func requestIDFromCtx(c echo.Context) string {
	if reqID := c.Response().Header().Get(echo.HeaderXRequestID); reqID != "" {
		return reqID
	}
	return c.Request().Header.Get(echo.HeaderXRequestID)
}
