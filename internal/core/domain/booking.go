package domain

import "time"

// Booking records a paid seat on a tour.
type Booking struct {
	ID        string    `json:"_id" bson:"_id,omitempty"`
	Tour      string    `json:"tour" bson:"tour" validate:"required"`
	User      string    `json:"user" bson:"user" validate:"required"`
	Price     float64   `json:"price" bson:"price" validate:"required,gt=0"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
	Paid      bool      `json:"paid" bson:"paid"`
}

// CheckoutSession is a pending payment handed out by the payment gateway.
// Amount is in the currency's minor unit.
type CheckoutSession struct {
	ID            string    `json:"id"`
	URL           string    `json:"url"`
	TourID        string    `json:"tourId"`
	UserID        string    `json:"userId"`
	CustomerEmail string    `json:"customerEmail"`
	Amount        int64     `json:"amount"`
	Currency      string    `json:"currency"`
	SuccessURL    string    `json:"successUrl"`
	CancelURL     string    `json:"cancelUrl"`
	CreatedAt     time.Time `json:"createdAt"`
}
