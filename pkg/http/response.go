package http

import "github.com/labstack/echo/v4"

// Response is the wire envelope shared by every endpoint: the HTTP status is
// repeated in the body alongside a human-readable message.
type Response struct {
	Status  int         `json:"status"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

func JSON(c echo.Context, status int, message string, data interface{}) error {
	return c.JSON(status, Response{Status: status, Message: message, Data: data})
}

func ErrorJSON(c echo.Context, status int, message string) error {
	return c.JSON(status, Response{Status: status, Message: message})
}
