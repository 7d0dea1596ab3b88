package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/natours/booking-api/internal/api/middleware"
	"github.com/natours/booking-api/internal/core/domain"
	"github.com/natours/booking-api/internal/core/ports"
)

// NewReviewHandler serves reviews both at the top level and nested under
// /tours/:tourId. On create the tour defaults to the route's tour and the
// author is always the signed-in user.
func NewReviewHandler(reviews ports.ResourceService[domain.Review]) *ResourceHandler[domain.Review] {
	return NewResourceHandler[domain.Review]("reviews", reviews,
		WithParent[domain.Review]("tourId", "tour"),
		WithPrepare(func(c echo.Context, r *domain.Review) error {
			if tourID := c.Param("tourId"); tourID != "" {
				r.Tour = tourID
			}
			user, ok := middleware.CurrentUser(c)
			if !ok {
				return domain.ErrUnauthenticated
			}
			r.User = user.ID
			return nil
		}),
	)
}
