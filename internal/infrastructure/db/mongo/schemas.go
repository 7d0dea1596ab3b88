package mongo

import (
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/natours/booking-api/internal/core/domain"
)

// userPrivateFields never leave the users collection through list queries.
var userPrivateFields = []string{
	"password",
	"passwordChangedAt",
	"passwordResetToken",
	"passwordResetExpires",
	"active",
}

var activeUsers = bson.M{"active": bson.M{"$ne": false}}

var (
	tourSchema = Schema{
		Kinds: map[string]FieldKind{
			"duration":        KindNumber,
			"maxGroupSize":    KindNumber,
			"ratingsAverage":  KindNumber,
			"ratingsQuantity": KindNumber,
			"price":           KindNumber,
			"priceDiscount":   KindNumber,
			"secretTour":      KindBool,
			"createdAt":       KindDate,
			"startDates":      KindDate,
		},
		Scope: bson.M{"secretTour": bson.M{"$ne": true}},
	}

	reviewSchema = Schema{
		Kinds: map[string]FieldKind{
			"rating":    KindNumber,
			"createdAt": KindDate,
		},
	}

	bookingSchema = Schema{
		Kinds: map[string]FieldKind{
			"price":     KindNumber,
			"paid":      KindBool,
			"createdAt": KindDate,
		},
	}

	userSchema = Schema{
		Kinds:      map[string]FieldKind{"createdAt": KindDate},
		Hidden:     userPrivateFields,
		Scope:      activeUsers,
		SoftDelete: "active",
	}
)

func NewTourStore(db *mongo.Database) *Collection[domain.Tour] {
	return NewCollection[domain.Tour](db, collectionTours, tourSchema)
}

func NewReviewStore(db *mongo.Database) *Collection[domain.Review] {
	return NewCollection[domain.Review](db, collectionReviews, reviewSchema)
}

func NewBookingStore(db *mongo.Database) *Collection[domain.Booking] {
	return NewCollection[domain.Booking](db, collectionBookings, bookingSchema)
}

// NewUserStore backs the administrative user endpoints. Deletes deactivate.
func NewUserStore(db *mongo.Database) *Collection[domain.User] {
	return NewCollection[domain.User](db, collectionUsers, userSchema)
}
