package ports

import (
	"context"

	"github.com/natours/booking-api/internal/core/domain"
)

const EventCheckoutCompleted = "checkout.session.completed"

// CheckoutItem is one line of a checkout. Amount is in minor units.
type CheckoutItem struct {
	Name        string
	Description string
	Image       string
	Amount      int64
	Quantity    int
}

// CheckoutRequest describes the payment a client is about to make.
type CheckoutRequest struct {
	CustomerEmail     string
	ClientReferenceID string
	SuccessURL        string
	CancelURL         string
	Items             []CheckoutItem
}

// PaymentEvent is a verified notification from the payment provider.
type PaymentEvent struct {
	Type      string
	SessionID string
}

// PaymentGateway creates hosted checkout sessions and verifies webhooks.
type PaymentGateway interface {
	CreateCheckoutSession(ctx context.Context, req CheckoutRequest) (*domain.CheckoutSession, error)
	ParseWebhook(payload []byte, signature string) (*PaymentEvent, error)
}

// CheckoutSessionStore keeps pending sessions until the provider confirms
// them. Take removes the session so each confirmation is applied once; a
// failed confirmation saves it again.
type CheckoutSessionStore interface {
	Save(ctx context.Context, session *domain.CheckoutSession) error
	Take(ctx context.Context, id string) (*domain.CheckoutSession, error)
}

// BookingService adds hosted checkout to booking CRUD. ConfirmCheckout
// returns a nil booking for events it ignores or has already applied.
type BookingService interface {
	ResourceService[domain.Booking]
	CheckoutSession(ctx context.Context, user *domain.User, tourID string) (*domain.CheckoutSession, error)
	ConfirmCheckout(ctx context.Context, payload []byte, signature string) (*domain.Booking, error)
}
