package mongo

import (
	"context"
	"fmt"
	"math"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/natours/booking-api/internal/core/domain"
)

// ReviewRepository implements ports.ReviewRepository.
type ReviewRepository struct {
	reviews *mongo.Collection
	tours   *mongo.Collection
}

func NewReviewRepository(db *mongo.Database) *ReviewRepository {
	return &ReviewRepository{
		reviews: db.Collection(collectionReviews),
		tours:   db.Collection(collectionTours),
	}
}

func (r *ReviewRepository) ForTour(ctx context.Context, tourID string) ([]domain.Review, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cur, err := r.reviews.Find(ctx, bson.M{"tour": tourID}, opts)
	if err != nil {
		return nil, fmt.Errorf("find reviews: %w", err)
	}
	out := make([]domain.Review, 0)
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode reviews: %w", err)
	}
	return out, nil
}

type ratingAggregate struct {
	Count   int     `bson:"nRating"`
	Average float64 `bson:"avgRating"`
}

// RecalculateRatings stores the review count and the one-decimal average on
// the tour.
func (r *ReviewRepository) RecalculateRatings(ctx context.Context, tourID string) (domain.RatingSummary, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"tour": tourID}}},
		{{Key: "$group", Value: bson.M{
			"_id":       "$tour",
			"nRating":   bson.M{"$sum": 1},
			"avgRating": bson.M{"$avg": "$rating"},
		}}},
	}
	cur, err := r.reviews.Aggregate(ctx, pipeline)
	if err != nil {
		return domain.RatingSummary{}, fmt.Errorf("aggregate ratings: %w", err)
	}
	var rows []ratingAggregate
	if err := cur.All(ctx, &rows); err != nil {
		return domain.RatingSummary{}, fmt.Errorf("decode ratings: %w", err)
	}

	summary := domain.RatingSummary{TourID: tourID, Average: domain.DefaultRatingsAverage}
	if len(rows) > 0 && rows[0].Count > 0 {
		summary.Quantity = rows[0].Count
		summary.Average = math.Round(rows[0].Average*10) / 10
	}

	_, err = r.tours.UpdateOne(ctx, bson.M{"_id": tourID}, bson.M{"$set": bson.M{
		"ratingsQuantity": summary.Quantity,
		"ratingsAverage":  summary.Average,
	}})
	if err != nil {
		return domain.RatingSummary{}, fmt.Errorf("update tour ratings: %w", err)
	}
	return summary, nil
}
