// Package response defines the JSON bodies returned by the HTTP boundary.
package response

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Message is the body of confirmation and error responses.
type Message struct {
	Message string `json:"message"`
}

// OK writes a 200 response with the given payload.
func OK(c echo.Context, data any) error {
	return c.JSON(http.StatusOK, data)
}

// OKMessage writes a 200 response carrying only a confirmation message.
func OKMessage(c echo.Context, message string) error {
	return c.JSON(http.StatusOK, Message{Message: message})
}
