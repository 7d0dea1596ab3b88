package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/natours/booking-api/internal/core/domain"
)

// errorResponse is the canonical error envelope for all API errors. Status
// is "failure" for 4xx and "error" for 5xx.
type errorResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps known domain errors to their appropriate HTTP status codes.
//   - Logs unexpected errors internally without leaking details to the client.
//   - Adds the raw error text when exposeErrors is set (development only).
func NewHTTPErrorHandler(log zerolog.Logger, exposeErrors bool) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, msg := resolveError(err, log, c)
		resp := errorResponse{Status: statusFor(code), Message: msg}
		if exposeErrors {
			resp.Error = err.Error()
		}

		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(code)
			return
		}
		_ = c.JSON(code, resp)
	}
}

func statusFor(code int) string {
	if code >= http.StatusInternalServerError {
		return "error"
	}
	return "failure"
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, string) {
	// Echo's own errors (bind failures, 404 from router, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		if errors.Is(he, echo.ErrNotFound) {
			return http.StatusNotFound, fmt.Sprintf("Can't find %s on this server!", c.Request().URL.Path)
		}
		return he.Code, fmt.Sprintf("%v", he.Message)
	}

	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		return http.StatusBadRequest, "Invalid input data. " + strings.Join(ve.Messages, ". ")
	}

	var de *domain.DuplicateError
	if errors.As(err, &de) {
		if de.Value != "" {
			return http.StatusBadRequest, fmt.Sprintf("Duplicate field value: %q. Please use another value!", de.Value)
		}
		return http.StatusBadRequest, fmt.Sprintf("Duplicate value for %s. Please use another value!", de.Field)
	}

	// Known domain errors → deterministic HTTP codes.
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, "No document found with that ID."
	case errors.Is(err, domain.ErrInvalidID):
		return http.StatusBadRequest, "Invalid ID."
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, "You do not have permission to perform this action."
	case errors.Is(err, domain.ErrUnauthenticated):
		return http.StatusUnauthorized, "You are not logged in! Please log in to get access."
	case errors.Is(err, domain.ErrInvalidToken):
		return http.StatusUnauthorized, "Invalid token. Please log in again!"
	case errors.Is(err, domain.ErrExpiredToken):
		return http.StatusUnauthorized, "Your token has expired! Please log in again."
	case errors.Is(err, domain.ErrTokenUserGone):
		return http.StatusUnauthorized, "The user belonging to this token no longer exists."
	case errors.Is(err, domain.ErrPasswordChanged):
		return http.StatusUnauthorized, "User recently changed password! Please log in again."
	case errors.Is(err, domain.ErrMissingCredentials):
		return http.StatusBadRequest, "Please provide email and password!"
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized, "Invalid credentials."
	case errors.Is(err, domain.ErrIncorrectPassword):
		return http.StatusUnauthorized, "Your current password is wrong."
	case errors.Is(err, domain.ErrPasswordMismatch):
		return http.StatusBadRequest, "Passwords are not the same!"
	case errors.Is(err, domain.ErrPasswordUpdateNotAllowed):
		return http.StatusBadRequest, "This route is not for password updates. Please use /update-password."
	case errors.Is(err, domain.ErrUserNotFound):
		return http.StatusNotFound, "There is no user with that email address."
	case errors.Is(err, domain.ErrInvalidResetToken):
		return http.StatusBadRequest, "Token is invalid or has expired."
	case errors.Is(err, domain.ErrInvalidWebhookSignature):
		return http.StatusBadRequest, "Webhook error: invalid signature."
	case errors.Is(err, domain.ErrCheckoutSessionNotFound):
		return http.StatusNotFound, "Checkout session not found."
	case errors.Is(err, domain.ErrNotificationFailed):
		log.Error().Err(err).Str("path", c.Path()).Msg("notification failed")
		return http.StatusInternalServerError, "There was an error sending the email. Try again later!"
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, "Something went wrong!"
}
