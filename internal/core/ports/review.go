package ports

import (
	"context"

	"github.com/natours/booking-api/internal/core/domain"
)

// ReviewRepository holds review queries beyond the generic store.
type ReviewRepository interface {
	ForTour(ctx context.Context, tourID string) ([]domain.Review, error)
	// RecalculateRatings aggregates the tour's reviews and stores the result on
	// the tour. A tour without reviews is reset to the default average.
	RecalculateRatings(ctx context.Context, tourID string) (domain.RatingSummary, error)
}

// RatingRecalculator schedules an asynchronous rating refresh for a tour.
type RatingRecalculator interface {
	Enqueue(tourID string)
}
