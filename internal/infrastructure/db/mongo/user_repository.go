package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/natours/booking-api/internal/core/domain"
)

// UserRepository implements ports.UserRepository. Every lookup is restricted
// to active users.
type UserRepository struct {
	col *mongo.Collection
}

func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{col: db.Collection(collectionUsers)}
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := *user
	doc.ID = primitive.NewObjectID().Hex()
	doc.Active = true
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		return nil, translateWriteError(err)
	}
	return &doc, nil
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"_id": id, "active": bson.M{"$ne": false}})
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"email": email, "active": bson.M{"$ne": false}})
}

func (r *UserRepository) findOne(ctx context.Context, filter bson.M) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var u domain.User
	if err := r.col.FindOne(ctx, filter).Decode(&u); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return &u, nil
}

// FindByIDs loads guide profiles for tour expansion. Credentials are not
// read from storage.
func (r *UserRepository) FindByIDs(ctx context.Context, ids []string) ([]domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find().SetProjection(bson.M{"name": 1, "email": 1, "photo": 1, "role": 1})
	cur, err := r.col.Find(ctx, bson.M{"_id": bson.M{"$in": ids}, "active": bson.M{"$ne": false}}, opts)
	if err != nil {
		return nil, fmt.Errorf("find users: %w", err)
	}
	users := make([]domain.User, 0, len(ids))
	if err := cur.All(ctx, &users); err != nil {
		return nil, fmt.Errorf("decode users: %w", err)
	}
	return users, nil
}

func (r *UserRepository) UpdatePassword(ctx context.Context, id, hash string, changedAt time.Time) error {
	return r.updateOne(ctx, id, bson.M{"$set": bson.M{"password": hash, "passwordChangedAt": changedAt}})
}

func (r *UserRepository) SetResetToken(ctx context.Context, id, tokenHash string, expires time.Time) error {
	return r.updateOne(ctx, id, bson.M{"$set": bson.M{
		"passwordResetToken":   tokenHash,
		"passwordResetExpires": expires,
	}})
}

func (r *UserRepository) ClearResetToken(ctx context.Context, id string) error {
	return r.updateOne(ctx, id, bson.M{"$unset": bson.M{
		"passwordResetToken":   "",
		"passwordResetExpires": "",
	}})
}

func (r *UserRepository) Deactivate(ctx context.Context, id string) error {
	return r.updateOne(ctx, id, bson.M{"$set": bson.M{"active": false}})
}

func (r *UserRepository) updateOne(ctx context.Context, id string, update bson.M) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.UpdateOne(ctx, bson.M{"_id": id, "active": bson.M{"$ne": false}}, update)
	if err != nil {
		return translateWriteError(err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) UpdateProfile(ctx context.Context, id string, fields map[string]any) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var u domain.User
	err := r.col.FindOneAndUpdate(ctx,
		bson.M{"_id": id, "active": bson.M{"$ne": false}},
		bson.M{"$set": bson.M(fields)},
		opts,
	).Decode(&u)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrUserNotFound
		}
		return nil, translateWriteError(err)
	}
	return &u, nil
}

// ConsumeResetToken matches and clears the token in one findAndModify, so
// concurrent resets with the same token cannot both succeed.
func (r *UserRepository) ConsumeResetToken(ctx context.Context, tokenHash string, now time.Time, newHash string, changedAt time.Time) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{
		"passwordResetToken":   tokenHash,
		"passwordResetExpires": bson.M{"$gt": now},
		"active":               bson.M{"$ne": false},
	}
	update := bson.M{
		"$set":   bson.M{"password": newHash, "passwordChangedAt": changedAt},
		"$unset": bson.M{"passwordResetToken": "", "passwordResetExpires": ""},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var u domain.User
	if err := r.col.FindOneAndUpdate(ctx, filter, update, opts).Decode(&u); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrInvalidResetToken
		}
		return nil, err
	}
	return &u, nil
}
