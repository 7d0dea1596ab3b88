package handler

import (
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/natours/booking-api/internal/api/metrics"
	"github.com/natours/booking-api/internal/api/middleware"
	"github.com/natours/booking-api/internal/core/domain"
	"github.com/natours/booking-api/internal/core/ports"
)

// maxWebhookBody caps the payload read from the payment provider.
const maxWebhookBody = 1 << 20

type BookingHandler struct {
	*ResourceHandler[domain.Booking]
	bookings        ports.BookingService
	signatureHeader string
}

// NewBookingHandler wires booking CRUD plus checkout. signatureHeader names
// the header carrying the provider's webhook signature.
func NewBookingHandler(bookings ports.BookingService, signatureHeader string) *BookingHandler {
	return &BookingHandler{
		ResourceHandler: NewResourceHandler[domain.Booking]("bookings", bookings,
			WithDefaults(func(b *domain.Booking) { b.Paid = true }),
		),
		bookings:        bookings,
		signatureHeader: signatureHeader,
	}
}

func (h *BookingHandler) Create(c echo.Context) error {
	if err := h.ResourceHandler.Create(c); err != nil {
		return err
	}
	metrics.BookingsCreatedTotal.WithLabelValues("admin").Inc()
	return nil
}

// CheckoutSession opens a hosted payment page for one tour.
//
// @Summary      Create a checkout session
// @Tags         bookings
// @Produce      json
// @Security     BearerAuth
// @Param        tourId  path      string  true  "Tour id"
// @Success      200     {object}  envelope
// @Failure      404     {object}  envelope
// @Router       /bookings/checkout-session/{tourId} [get]
func (h *BookingHandler) CheckoutSession(c echo.Context) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return domain.ErrUnauthenticated
	}

	session, err := h.bookings.CheckoutSession(c.Request().Context(), user, c.Param("tourId"))
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, map[string]any{"session": session})
}

type webhookResponse struct {
	Received bool `json:"received"`
}

// Webhook receives payment notifications. The raw body is needed for the
// signature check, so it is never bound.
//
// @Summary      Payment webhook
// @Tags         bookings
// @Accept       json
// @Produce      json
// @Success      200  {object}  webhookResponse
// @Failure      400  {object}  envelope
// @Router       /bookings/webhook-checkout [post]
func (h *BookingHandler) Webhook(c echo.Context) error {
	payload, err := io.ReadAll(io.LimitReader(c.Request().Body, maxWebhookBody))
	if err != nil {
		return errInvalidBody
	}

	booking, err := h.bookings.ConfirmCheckout(c.Request().Context(), payload, c.Request().Header.Get(h.signatureHeader))
	if err != nil {
		return err
	}
	if booking != nil {
		metrics.BookingsCreatedTotal.WithLabelValues("checkout").Inc()
	}
	return c.JSON(http.StatusOK, webhookResponse{Received: true})
}
