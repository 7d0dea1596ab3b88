package ports

import (
	"context"

	"github.com/natours/booking-api/internal/core/domain"
)

// TourRepository holds the tour queries that do not fit the generic store.
type TourRepository interface {
	Stats(ctx context.Context, minRating float64) ([]domain.TourStats, error)
	// Within returns tours whose start location lies inside the spherical cap
	// of radius (radians) around lng/lat.
	Within(ctx context.Context, lng, lat, radius float64) ([]domain.Tour, error)
}

// TourDetail is a tour with its guides and reviews expanded.
type TourDetail struct {
	domain.Tour
	DurationWeeks float64         `json:"durationWeeks"`
	Guides        []domain.User   `json:"guides"`
	Reviews       []domain.Review `json:"reviews"`
}

// TourService is the tour surface consumed by the HTTP layer.
type TourService interface {
	ResourceService[domain.Tour]
	Detail(ctx context.Context, id string) (*TourDetail, error)
	Stats(ctx context.Context) ([]domain.TourStats, error)
	Within(ctx context.Context, distance, lat, lng float64, unit string) ([]domain.Tour, error)
}
