package mongo

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/natours/booking-api/internal/core/domain"
	"github.com/natours/booking-api/internal/core/ports"
	"github.com/natours/booking-api/internal/core/query"
)

// Collection is a ports.ResourceStore over one MongoDB collection. Documents
// use ObjectID hex strings as _id.
type Collection[T any] struct {
	col    *mongo.Collection
	schema Schema
}

func NewCollection[T any](db *mongo.Database, name string, schema Schema) *Collection[T] {
	return &Collection[T]{col: db.Collection(name), schema: schema}
}

func (c *Collection[T]) Find(ctx context.Context, where map[string]string, spec query.Spec) ([]ports.Document, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := c.col.Find(ctx, buildFilter(spec, where, c.schema), buildFindOptions(spec, c.schema))
	if err != nil {
		return nil, fmt.Errorf("find %s: %w", c.col.Name(), err)
	}
	defer cur.Close(ctx)

	docs := make([]ports.Document, 0)
	for cur.Next(ctx) {
		var m bson.M
		if err := cur.Decode(&m); err != nil {
			return nil, fmt.Errorf("decode %s: %w", c.col.Name(), err)
		}
		docs = append(docs, ports.Document(m))
	}
	return docs, cur.Err()
}

func (c *Collection[T]) FindByID(ctx context.Context, id string) (*T, error) {
	if !primitive.IsValidObjectID(id) {
		return nil, domain.ErrInvalidID
	}
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var out T
	if err := c.col.FindOne(ctx, c.byID(id)).Decode(&out); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &out, nil
}

// Insert stores doc under a fresh id and returns the stored form.
func (c *Collection[T]) Insert(ctx context.Context, doc *T) (*T, error) {
	m, err := toBSON(doc)
	if err != nil {
		return nil, err
	}
	m["_id"] = primitive.NewObjectID().Hex()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := c.col.InsertOne(ctx, m); err != nil {
		return nil, translateWriteError(err)
	}
	return fromBSON[T](m)
}

// Replace overwrites the document with id. The stored _id always wins over
// whatever doc carries.
func (c *Collection[T]) Replace(ctx context.Context, id string, doc *T) (*T, error) {
	if !primitive.IsValidObjectID(id) {
		return nil, domain.ErrInvalidID
	}
	m, err := toBSON(doc)
	if err != nil {
		return nil, err
	}
	m["_id"] = id

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := c.col.ReplaceOne(ctx, c.byID(id), m)
	if err != nil {
		return nil, translateWriteError(err)
	}
	if res.MatchedCount == 0 {
		return nil, domain.ErrNotFound
	}
	return fromBSON[T](m)
}

func (c *Collection[T]) Delete(ctx context.Context, id string) error {
	if !primitive.IsValidObjectID(id) {
		return domain.ErrInvalidID
	}
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if c.schema.SoftDelete != "" {
		res, err := c.col.UpdateOne(ctx, c.byID(id), bson.M{"$set": bson.M{c.schema.SoftDelete: false}})
		if err != nil {
			return err
		}
		if res.MatchedCount == 0 {
			return domain.ErrNotFound
		}
		return nil
	}

	res, err := c.col.DeleteOne(ctx, c.byID(id))
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (c *Collection[T]) byID(id string) bson.M {
	if len(c.schema.Scope) == 0 {
		return bson.M{"_id": id}
	}
	return bson.M{"$and": []bson.M{{"_id": id}, c.schema.Scope}}
}

func toBSON(v any) (bson.M, error) {
	raw, err := bson.Marshal(v)
	if err != nil {
		return nil, err
	}
	var m bson.M
	if err := bson.Unmarshal(raw, &m); err != nil {
		return nil, err
	}
	return m, nil
}

func fromBSON[T any](m bson.M) (*T, error) {
	raw, err := bson.Marshal(m)
	if err != nil {
		return nil, err
	}
	var out T
	if err := bson.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

var dupKey = regexp.MustCompile(`dup key: \{ ?([\w.]+): "?([^"}]*?)"? ?\}`)

// translateWriteError turns unique-index violations into domain errors.
func translateWriteError(err error) error {
	if !mongo.IsDuplicateKeyError(err) {
		return err
	}
	dup := &domain.DuplicateError{Field: "value"}
	if m := dupKey.FindStringSubmatch(err.Error()); m != nil {
		dup.Field, dup.Value = m[1], m[2]
	}
	return dup
}
