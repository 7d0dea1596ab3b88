package service

import (
	"context"
	"math"
	"time"

	"github.com/rs/zerolog"

	"github.com/natours/booking-api/internal/core/domain"
	"github.com/natours/booking-api/internal/core/ports"
)

// Earth radius in the units accepted by the distance endpoints.
const (
	earthRadiusMi = 3963.2
	earthRadiusKm = 6378.1
)

// TopToursMinRating is the rating floor of the statistics report.
const TopToursMinRating = 4.5

// TourService layers slug derivation, defaults and expansion on top of the
// generic resource operations.
type TourService struct {
	*ResourceService[domain.Tour]
	tours   ports.TourRepository
	users   ports.UserRepository
	reviews ports.ReviewRepository
	now     func() time.Time
}

func NewTourService(store ports.ResourceStore[domain.Tour], tours ports.TourRepository, users ports.UserRepository, reviews ports.ReviewRepository, logger zerolog.Logger) *TourService {
	return &TourService{
		ResourceService: NewResourceService[domain.Tour]("tours", store, logger),
		tours:           tours,
		users:           users,
		reviews:         reviews,
		now:             time.Now,
	}
}

func (s *TourService) Create(ctx context.Context, t *domain.Tour) (*domain.Tour, error) {
	t.ID = ""
	t.Slug = slugify(t.Name)
	t.CreatedAt = s.now().UTC()
	if t.RatingsAverage == 0 {
		t.RatingsAverage = domain.DefaultRatingsAverage
	}
	t.RatingsQuantity = 0
	if t.Guides == nil {
		t.Guides = []string{}
	}
	return s.ResourceService.Create(ctx, t)
}

// Update keeps the slug in step with the name. Rating aggregates are owned by
// the review pipeline and survive client updates.
func (s *TourService) Update(ctx context.Context, id string, mutate func(*domain.Tour) error) (*domain.Tour, error) {
	return s.ResourceService.Update(ctx, id, func(t *domain.Tour) error {
		avg, qty, created := t.RatingsAverage, t.RatingsQuantity, t.CreatedAt
		if err := mutate(t); err != nil {
			return err
		}
		t.RatingsAverage, t.RatingsQuantity, t.CreatedAt = avg, qty, created
		t.Slug = slugify(t.Name)
		return nil
	})
}

// Detail returns the tour with guides and reviews expanded.
func (s *TourService) Detail(ctx context.Context, id string) (*ports.TourDetail, error) {
	tour, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	guides := []domain.User{}
	if len(tour.Guides) > 0 {
		if guides, err = s.users.FindByIDs(ctx, tour.Guides); err != nil {
			return nil, err
		}
	}

	reviews, err := s.reviews.ForTour(ctx, tour.ID)
	if err != nil {
		return nil, err
	}
	if reviews == nil {
		reviews = []domain.Review{}
	}

	return &ports.TourDetail{
		Tour:          *tour,
		DurationWeeks: tour.DurationWeeks(),
		Guides:        guides,
		Reviews:       reviews,
	}, nil
}

func (s *TourService) Stats(ctx context.Context) ([]domain.TourStats, error) {
	return s.tours.Stats(ctx, TopToursMinRating)
}

// Within finds tours starting within distance of lat/lng. unit is "mi" or
// "km"; anything else is treated as kilometres.
func (s *TourService) Within(ctx context.Context, distance, lat, lng float64, unit string) ([]domain.Tour, error) {
	if distance <= 0 || math.IsNaN(distance) {
		return nil, domain.NewValidationError("distance must be greater than 0")
	}
	if lat < -90 || lat > 90 || lng < -180 || lng > 180 {
		return nil, domain.NewValidationError("latitude and longitude are out of range")
	}
	radius := distance / earthRadiusKm
	if unit == "mi" {
		radius = distance / earthRadiusMi
	}
	tours, err := s.tours.Within(ctx, lng, lat, radius)
	if err != nil {
		return nil, err
	}
	if tours == nil {
		tours = []domain.Tour{}
	}
	return tours, nil
}
