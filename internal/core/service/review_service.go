package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/natours/booking-api/internal/core/domain"
	"github.com/natours/booking-api/internal/core/ports"
)

// ReviewService keeps a tour's rating aggregate in step with its reviews.
type ReviewService struct {
	*ResourceService[domain.Review]
	ratings ports.RatingRecalculator
	now     func() time.Time
}

func NewReviewService(store ports.ResourceStore[domain.Review], ratings ports.RatingRecalculator, logger zerolog.Logger) *ReviewService {
	return &ReviewService{
		ResourceService: NewResourceService[domain.Review]("reviews", store, logger),
		ratings:         ratings,
		now:             time.Now,
	}
}

func (s *ReviewService) Create(ctx context.Context, r *domain.Review) (*domain.Review, error) {
	r.ID = ""
	r.CreatedAt = s.now().UTC()
	created, err := s.ResourceService.Create(ctx, r)
	if err != nil {
		return nil, err
	}
	s.ratings.Enqueue(created.Tour)
	return created, nil
}

// Update never moves a review to another tour or author.
func (s *ReviewService) Update(ctx context.Context, id string, mutate func(*domain.Review) error) (*domain.Review, error) {
	updated, err := s.ResourceService.Update(ctx, id, func(r *domain.Review) error {
		tour, user, created := r.Tour, r.User, r.CreatedAt
		if err := mutate(r); err != nil {
			return err
		}
		r.Tour, r.User, r.CreatedAt = tour, user, created
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.ratings.Enqueue(updated.Tour)
	return updated, nil
}

func (s *ReviewService) Delete(ctx context.Context, id string) error {
	review, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.ResourceService.Delete(ctx, id); err != nil {
		return err
	}
	s.ratings.Enqueue(review.Tour)
	return nil
}
