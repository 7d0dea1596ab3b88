package handler

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
)

const statusSuccess = "success"

// envelope is the success body shared by every endpoint.
type envelope struct {
	Status  string `json:"status"`
	Token   string `json:"token,omitempty"`
	Results *int   `json:"results,omitempty"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
}

func respond(c echo.Context, code int, data any) error {
	return c.JSON(code, envelope{Status: statusSuccess, Data: data})
}

func respondList[E any](c echo.Context, items []E) error {
	n := len(items)
	return c.JSON(http.StatusOK, envelope{
		Status:  statusSuccess,
		Results: &n,
		Data:    map[string]any{"data": items},
	})
}

func respondMessage(c echo.Context, code int, msg string) error {
	return c.JSON(code, envelope{Status: statusSuccess, Message: msg})
}

var errInvalidBody = echo.NewHTTPError(http.StatusBadRequest, "Invalid request body.")

// decodeBody reads the raw JSON body into dst. Fields absent from the body
// keep whatever dst already holds.
func decodeBody(c echo.Context, dst any) error {
	raw, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return errInvalidBody
	}
	if len(raw) == 0 {
		raw = []byte("{}")
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return errInvalidBody
	}
	return nil
}
