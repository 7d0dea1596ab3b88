package service

import (
	"context"
	"errors"
	"math"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/natours/booking-api/internal/core/domain"
	"github.com/natours/booking-api/internal/core/ports"
)

// BookingService adds hosted checkout on top of booking CRUD.
type BookingService struct {
	*ResourceService[domain.Booking]
	tours     ports.ResourceStore[domain.Tour]
	gateway   ports.PaymentGateway
	sessions  ports.CheckoutSessionStore
	publicURL string
	logger    zerolog.Logger
	now       func() time.Time
}

func NewBookingService(
	store ports.ResourceStore[domain.Booking],
	tours ports.ResourceStore[domain.Tour],
	gateway ports.PaymentGateway,
	sessions ports.CheckoutSessionStore,
	publicURL string,
	logger zerolog.Logger,
) *BookingService {
	return &BookingService{
		ResourceService: NewResourceService[domain.Booking]("bookings", store, logger),
		tours:           tours,
		gateway:         gateway,
		sessions:        sessions,
		publicURL:       strings.TrimRight(publicURL, "/"),
		logger:          logger.With().Str("component", "checkout").Logger(),
		now:             time.Now,
	}
}

func (s *BookingService) Create(ctx context.Context, b *domain.Booking) (*domain.Booking, error) {
	b.ID = ""
	if b.CreatedAt.IsZero() {
		b.CreatedAt = s.now().UTC()
	}
	return s.ResourceService.Create(ctx, b)
}

// CheckoutSession opens a payment for one seat on tourID and remembers it
// until the provider confirms.
func (s *BookingService) CheckoutSession(ctx context.Context, user *domain.User, tourID string) (*domain.CheckoutSession, error) {
	tour, err := s.tours.FindByID(ctx, tourID)
	if err != nil {
		return nil, err
	}

	session, err := s.gateway.CreateCheckoutSession(ctx, ports.CheckoutRequest{
		CustomerEmail:     user.Email,
		ClientReferenceID: tour.ID,
		SuccessURL:        s.publicURL + "/my-tours",
		CancelURL:         s.publicURL + "/tour/" + tour.Slug,
		Items: []ports.CheckoutItem{{
			Name:        tour.Name + " Tour",
			Description: tour.Summary,
			Image:       s.publicURL + "/img/tours/" + tour.ImageCover,
			Amount:      int64(math.Round(tour.Price * 100)),
			Quantity:    1,
		}},
	})
	if err != nil {
		return nil, err
	}
	session.TourID = tour.ID
	session.UserID = user.ID

	if err := s.sessions.Save(ctx, session); err != nil {
		return nil, err
	}
	s.logger.Info().Str("session_id", session.ID).Str("tour_id", tour.ID).Str("user_id", user.ID).Msg("checkout session created")
	return session, nil
}

// ConfirmCheckout turns a verified completion webhook into a booking. Other
// event types and replays of an already applied session return nil, nil.
func (s *BookingService) ConfirmCheckout(ctx context.Context, payload []byte, signature string) (*domain.Booking, error) {
	event, err := s.gateway.ParseWebhook(payload, signature)
	if err != nil {
		return nil, err
	}
	if event.Type != ports.EventCheckoutCompleted {
		s.logger.Debug().Str("type", event.Type).Msg("ignoring payment event")
		return nil, nil
	}

	session, err := s.sessions.Take(ctx, event.SessionID)
	if err != nil {
		if errors.Is(err, domain.ErrCheckoutSessionNotFound) {
			s.logger.Warn().Str("session_id", event.SessionID).Msg("checkout session unknown or already applied")
			return nil, nil
		}
		return nil, err
	}

	booking, err := s.Create(ctx, &domain.Booking{
		Tour:  session.TourID,
		User:  session.UserID,
		Price: float64(session.Amount) / 100,
		Paid:  true,
	})
	if err != nil {
		// Put the session back so the provider's retry can still apply it.
		if rerr := s.sessions.Save(context.WithoutCancel(ctx), session); rerr != nil {
			s.logger.Error().Err(rerr).Str("session_id", session.ID).Msg("failed to restore checkout session")
		}
		return nil, err
	}
	s.logger.Info().Str("session_id", session.ID).Str("booking_id", booking.ID).Msg("booking confirmed")
	return booking, nil
}
