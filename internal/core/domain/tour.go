package domain

import "time"

const DefaultRatingsAverage = 4.5

// GeoPoint is a GeoJSON point, optionally annotated when used as a tour stop.
type GeoPoint struct {
	Type        string    `json:"type" bson:"type"`
	Coordinates []float64 `json:"coordinates" bson:"coordinates"`
	Address     string    `json:"address,omitempty" bson:"address,omitempty"`
	Description string    `json:"description,omitempty" bson:"description,omitempty"`
	Day         int       `json:"day,omitempty" bson:"day,omitempty"`
}

// Tour is the bookable product.
type Tour struct {
	ID              string      `json:"_id" bson:"_id,omitempty"`
	Name            string      `json:"name" bson:"name" validate:"required,min=10,max=40"`
	Slug            string      `json:"slug" bson:"slug"`
	Duration        int         `json:"duration" bson:"duration" validate:"required,gt=0"`
	MaxGroupSize    int         `json:"maxGroupSize" bson:"maxGroupSize" validate:"required,gt=0"`
	Difficulty      string      `json:"difficulty" bson:"difficulty" validate:"required,oneof=easy medium difficult"`
	RatingsAverage  float64     `json:"ratingsAverage" bson:"ratingsAverage" validate:"omitempty,gte=1,lte=5"`
	RatingsQuantity int         `json:"ratingsQuantity" bson:"ratingsQuantity" validate:"gte=0"`
	Price           float64     `json:"price" bson:"price" validate:"required,gt=0"`
	PriceDiscount   float64     `json:"priceDiscount,omitempty" bson:"priceDiscount,omitempty" validate:"omitempty,gte=0,ltfield=Price"`
	Summary         string      `json:"summary" bson:"summary" validate:"required"`
	Description     string      `json:"description,omitempty" bson:"description,omitempty"`
	ImageCover      string      `json:"imageCover" bson:"imageCover" validate:"required"`
	Images          []string    `json:"images,omitempty" bson:"images,omitempty"`
	CreatedAt       time.Time   `json:"createdAt" bson:"createdAt"`
	StartDates      []time.Time `json:"startDates,omitempty" bson:"startDates,omitempty"`
	SecretTour      bool        `json:"secretTour,omitempty" bson:"secretTour"`
	StartLocation   *GeoPoint   `json:"startLocation,omitempty" bson:"startLocation,omitempty"`
	Locations       []GeoPoint  `json:"locations,omitempty" bson:"locations,omitempty"`
	Guides          []string    `json:"guides" bson:"guides"`
}

// DurationWeeks is derived, never stored.
func (t *Tour) DurationWeeks() float64 {
	return float64(t.Duration) / 7
}

// TourStats is one row of the per-difficulty statistics report.
type TourStats struct {
	Difficulty string  `json:"difficulty" bson:"_id"`
	NumTours   int     `json:"numTours" bson:"numTours"`
	NumRatings int     `json:"numRatings" bson:"numRatings"`
	AvgRating  float64 `json:"avgRating" bson:"avgRating"`
	AvgPrice   float64 `json:"avgPrice" bson:"avgPrice"`
	MinPrice   float64 `json:"minPrice" bson:"minPrice"`
	MaxPrice   float64 `json:"maxPrice" bson:"maxPrice"`
}

// RatingSummary is the aggregate of a tour's reviews.
type RatingSummary struct {
	TourID   string
	Average  float64
	Quantity int
}
