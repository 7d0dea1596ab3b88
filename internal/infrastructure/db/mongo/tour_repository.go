package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/natours/booking-api/internal/core/domain"
)

// TourRepository runs the aggregate and geo queries over tours.
type TourRepository struct {
	col *mongo.Collection
}

func NewTourRepository(db *mongo.Database) *TourRepository {
	return &TourRepository{col: db.Collection(collectionTours)}
}

// Stats groups tours rated at least minRating by difficulty, cheapest
// average first.
func (r *TourRepository) Stats(ctx context.Context, minRating float64) ([]domain.TourStats, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{
			"ratingsAverage": bson.M{"$gte": minRating},
			"secretTour":     bson.M{"$ne": true},
		}}},
		{{Key: "$group", Value: bson.M{
			"_id":        bson.M{"$toUpper": "$difficulty"},
			"numTours":   bson.M{"$sum": 1},
			"numRatings": bson.M{"$sum": "$ratingsQuantity"},
			"avgRating":  bson.M{"$avg": "$ratingsAverage"},
			"avgPrice":   bson.M{"$avg": "$price"},
			"minPrice":   bson.M{"$min": "$price"},
			"maxPrice":   bson.M{"$max": "$price"},
		}}},
		{{Key: "$sort", Value: bson.M{"avgPrice": 1}}},
	}

	cur, err := r.col.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("tour stats: %w", err)
	}
	stats := make([]domain.TourStats, 0)
	if err := cur.All(ctx, &stats); err != nil {
		return nil, fmt.Errorf("decode tour stats: %w", err)
	}
	return stats, nil
}

// Within matches start locations inside a spherical cap. Requires the
// 2dsphere index created by EnsureIndexes.
func (r *TourRepository) Within(ctx context.Context, lng, lat, radius float64) ([]domain.Tour, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{
		"startLocation": bson.M{"$geoWithin": bson.M{
			"$centerSphere": bson.A{bson.A{lng, lat}, radius},
		}},
		"secretTour": bson.M{"$ne": true},
	}
	cur, err := r.col.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("tours within: %w", err)
	}
	tours := make([]domain.Tour, 0)
	if err := cur.All(ctx, &tours); err != nil {
		return nil, fmt.Errorf("decode tours: %w", err)
	}
	return tours, nil
}
