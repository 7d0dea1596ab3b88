package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/natours/booking-api/internal/api/metrics"
	"github.com/natours/booking-api/internal/api/middleware"
	"github.com/natours/booking-api/internal/core/domain"
	"github.com/natours/booking-api/internal/core/ports"
)

// signedOutTTL is how long the placeholder cookie written on sign-out lives.
const signedOutTTL = 10 * time.Second

type AuthHandler struct {
	authService ports.AuthService
	cookieTTL   time.Duration
	now         func() time.Time
}

func NewAuthHandler(authService ports.AuthService, cookieTTL time.Duration) *AuthHandler {
	return &AuthHandler{authService: authService, cookieTTL: cookieTTL, now: time.Now}
}

type signUpRequest struct {
	Name            string `json:"name" validate:"required"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required"`
	PasswordConfirm string `json:"passwordConfirm" validate:"required"`
}

type signInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type forgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type resetPasswordRequest struct {
	Password        string `json:"password" validate:"required"`
	PasswordConfirm string `json:"passwordConfirm" validate:"required"`
}

type updatePasswordRequest struct {
	PasswordCurrent string `json:"passwordCurrent" validate:"required"`
	Password        string `json:"password" validate:"required"`
	PasswordConfirm string `json:"passwordConfirm" validate:"required"`
}

type userData struct {
	User *domain.User `json:"user"`
}

// SignUp creates a user account and starts a session.
//
// @Summary      Sign up
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      signUpRequest  true  "New account"
// @Success      201   {object}  envelope
// @Failure      400   {object}  envelope
// @Router       /users/sign-up [post]
func (h *AuthHandler) SignUp(c echo.Context) error {
	var req signUpRequest
	if err := decodeBody(c, &req); err != nil {
		return err
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	token, user, err := h.authService.SignUp(c.Request().Context(), ports.SignUpInput{
		Name:            req.Name,
		Email:           req.Email,
		Password:        req.Password,
		PasswordConfirm: req.PasswordConfirm,
	})
	record("sign_up", err)
	if err != nil {
		return err
	}
	return h.session(c, http.StatusCreated, token, user)
}

// SignIn exchanges email and password for a session token.
//
// @Summary      Sign in
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      signInRequest  true  "Credentials"
// @Success      200   {object}  envelope
// @Failure      400   {object}  envelope
// @Failure      401   {object}  envelope
// @Router       /users/sign-in [post]
func (h *AuthHandler) SignIn(c echo.Context) error {
	var req signInRequest
	if err := decodeBody(c, &req); err != nil {
		return err
	}

	token, user, err := h.authService.SignIn(c.Request().Context(), req.Email, req.Password)
	record("sign_in", err)
	if err != nil {
		return err
	}
	return h.session(c, http.StatusOK, token, user)
}

// SignOut overwrites the session cookie with a short-lived placeholder.
//
// @Summary      Sign out
// @Tags         auth
// @Produce      json
// @Success      200  {object}  envelope
// @Router       /users/sign-out [get]
func (h *AuthHandler) SignOut(c echo.Context) error {
	c.SetCookie(&http.Cookie{
		Name:     middleware.TokenCookie,
		Value:    "signed-out",
		Path:     "/",
		Expires:  h.now().Add(signedOutTTL),
		HttpOnly: true,
	})
	return c.JSON(http.StatusOK, envelope{Status: statusSuccess})
}

// ForgotPassword mails a single-use reset link.
//
// @Summary      Request a password reset
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      forgotPasswordRequest  true  "Account email"
// @Success      200   {object}  envelope
// @Failure      404   {object}  envelope
// @Failure      500   {object}  envelope
// @Router       /users/forgot-password [post]
func (h *AuthHandler) ForgotPassword(c echo.Context) error {
	var req forgotPasswordRequest
	if err := decodeBody(c, &req); err != nil {
		return err
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	err := h.authService.ForgotPassword(c.Request().Context(), req.Email)
	record("forgot_password", err)
	if err != nil {
		return err
	}
	return respondMessage(c, http.StatusOK, "Token sent to email!")
}

// ResetPassword sets a new password using a reset token and signs the user in.
//
// @Summary      Reset password
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        token  path      string                true  "Reset token"
// @Param        body   body      resetPasswordRequest  true  "New password"
// @Success      200    {object}  envelope
// @Failure      400    {object}  envelope
// @Router       /users/reset-password/{token} [patch]
func (h *AuthHandler) ResetPassword(c echo.Context) error {
	var req resetPasswordRequest
	if err := decodeBody(c, &req); err != nil {
		return err
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	token, user, err := h.authService.ResetPassword(c.Request().Context(), c.Param("token"), req.Password, req.PasswordConfirm)
	record("reset_password", err)
	if err != nil {
		return err
	}
	return h.session(c, http.StatusOK, token, user)
}

// UpdatePassword rotates the signed-in user's password.
//
// @Summary      Update password
// @Tags         auth
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      updatePasswordRequest  true  "Current and new password"
// @Success      200   {object}  envelope
// @Failure      401   {object}  envelope
// @Router       /users/update-password [patch]
func (h *AuthHandler) UpdatePassword(c echo.Context) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return domain.ErrUnauthenticated
	}

	var req updatePasswordRequest
	if err := decodeBody(c, &req); err != nil {
		return err
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	token, updated, err := h.authService.UpdatePassword(c.Request().Context(), user.ID, req.PasswordCurrent, req.Password, req.PasswordConfirm)
	record("update_password", err)
	if err != nil {
		return err
	}
	return h.session(c, http.StatusOK, token, updated)
}

// session writes the token both as an httpOnly cookie and in the body.
func (h *AuthHandler) session(c echo.Context, code int, token string, user *domain.User) error {
	c.SetCookie(&http.Cookie{
		Name:     middleware.TokenCookie,
		Value:    token,
		Path:     "/",
		Expires:  h.now().Add(h.cookieTTL),
		HttpOnly: true,
		Secure:   isSecure(c),
	})
	return c.JSON(code, envelope{
		Status: statusSuccess,
		Token:  token,
		Data:   userData{User: user},
	})
}

func isSecure(c echo.Context) bool {
	return c.IsTLS() || strings.EqualFold(c.Request().Header.Get(echo.HeaderXForwardedProto), "https")
}

func record(event string, err error) {
	result := "success"
	if err != nil {
		result = "failure"
	}
	metrics.AuthEventsTotal.WithLabelValues(event, result).Inc()
}
