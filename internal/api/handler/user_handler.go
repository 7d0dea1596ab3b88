package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/natours/booking-api/internal/api/middleware"
	"github.com/natours/booking-api/internal/core/domain"
	"github.com/natours/booking-api/internal/core/ports"
)

// UserHandler serves the signed-in user's account and, through the embedded
// ResourceHandler, the admin user CRUD.
type UserHandler struct {
	*ResourceHandler[domain.User]
	users ports.UserService
}

func NewUserHandler(admin ports.ResourceService[domain.User], users ports.UserService) *UserHandler {
	return &UserHandler{
		ResourceHandler: NewResourceHandler[domain.User]("users", admin),
		users:           users,
	}
}

// Create is not offered to admins; accounts come from sign-up only.
func (h *UserHandler) Create(c echo.Context) error {
	return echo.NewHTTPError(http.StatusNotImplemented, "This route is not defined. Please use /users/sign-up instead.")
}

// Me returns the signed-in user.
//
// @Summary      Current user
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  envelope
// @Router       /users/me [get]
func (h *UserHandler) Me(c echo.Context) error {
	current, ok := middleware.CurrentUser(c)
	if !ok {
		return domain.ErrUnauthenticated
	}
	user, err := h.users.Me(c.Request().Context(), current.ID)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, docData[*domain.User]{Data: user})
}

// UpdateMe changes name, email or photo of the signed-in user.
//
// @Summary      Update current user
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  envelope
// @Failure      400  {object}  envelope
// @Router       /users/update-me [patch]
func (h *UserHandler) UpdateMe(c echo.Context) error {
	current, ok := middleware.CurrentUser(c)
	if !ok {
		return domain.ErrUnauthenticated
	}

	body := map[string]any{}
	if err := decodeBody(c, &body); err != nil {
		return err
	}

	user, err := h.users.UpdateMe(c.Request().Context(), current.ID, body)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, userData{User: user})
}

// DeleteMe deactivates the signed-in user's account.
//
// @Summary      Deactivate current user
// @Tags         users
// @Security     BearerAuth
// @Success      204
// @Router       /users/delete-me [delete]
func (h *UserHandler) DeleteMe(c echo.Context) error {
	current, ok := middleware.CurrentUser(c)
	if !ok {
		return domain.ErrUnauthenticated
	}
	if err := h.users.DeleteMe(c.Request().Context(), current.ID); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// Session reports who, if anyone, is signed in. It always succeeds.
//
// @Summary      Session lookup
// @Tags         users
// @Produce      json
// @Success      200  {object}  envelope
// @Router       /users/session [get]
func (h *UserHandler) Session(c echo.Context) error {
	user, _ := middleware.CurrentUser(c)
	return respond(c, http.StatusOK, userData{User: user})
}
