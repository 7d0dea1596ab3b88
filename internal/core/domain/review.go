package domain

import "time"

// Review is a user's rating of a tour. At most one per (tour, user).
type Review struct {
	ID        string    `json:"_id" bson:"_id,omitempty"`
	Review    string    `json:"review" bson:"review" validate:"required"`
	Rating    float64   `json:"rating" bson:"rating" validate:"required,gte=1,lte=5"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
	Tour      string    `json:"tour" bson:"tour" validate:"required"`
	User      string    `json:"user" bson:"user" validate:"required"`
}
