package ports

import (
	"context"
	"net/url"

	"github.com/natours/booking-api/internal/core/query"
)

// Document is a projected record as returned by list queries.
type Document = map[string]any

// ListInput carries raw query parameters and an optional parent-resource
// pre-filter (field -> id) taken from the route path.
type ListInput struct {
	Params url.Values
	Where  map[string]string
}

// ResourceStore is the persistence contract shared by every resource.
type ResourceStore[T any] interface {
	Find(ctx context.Context, where map[string]string, spec query.Spec) ([]Document, error)
	FindByID(ctx context.Context, id string) (*T, error)
	Insert(ctx context.Context, doc *T) (*T, error)
	Replace(ctx context.Context, id string, doc *T) (*T, error)
	Delete(ctx context.Context, id string) error
}

// ResourceService is the CRUD surface consumed by the generic HTTP handler.
// Update loads the current record, hands it to mutate and persists the result.
type ResourceService[T any] interface {
	List(ctx context.Context, in ListInput) ([]Document, error)
	Get(ctx context.Context, id string) (*T, error)
	Create(ctx context.Context, doc *T) (*T, error)
	Update(ctx context.Context, id string, mutate func(*T) error) (*T, error)
	Delete(ctx context.Context, id string) error
}
