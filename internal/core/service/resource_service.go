package service

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/natours/booking-api/internal/core/ports"
	"github.com/natours/booking-api/internal/core/query"
)

// ResourceService implements list/get/create/update/delete for any resource
// backed by a ports.ResourceStore.
type ResourceService[T any] struct {
	name   string
	store  ports.ResourceStore[T]
	logger zerolog.Logger
}

func NewResourceService[T any](name string, store ports.ResourceStore[T], logger zerolog.Logger) *ResourceService[T] {
	return &ResourceService[T]{
		name:   name,
		store:  store,
		logger: logger.With().Str("resource", name).Logger(),
	}
}

// List runs the query pipeline over the raw parameters. A page past the last
// match returns an empty slice.
func (s *ResourceService[T]) List(ctx context.Context, in ports.ListInput) ([]ports.Document, error) {
	spec := query.Parse(in.Params)
	docs, err := s.store.Find(ctx, in.Where, spec)
	if err != nil {
		s.logger.Error().Err(err).Msg("list failed")
		return nil, err
	}
	if docs == nil {
		docs = []ports.Document{}
	}
	return docs, nil
}

func (s *ResourceService[T]) Get(ctx context.Context, id string) (*T, error) {
	return s.store.FindByID(ctx, id)
}

func (s *ResourceService[T]) Create(ctx context.Context, doc *T) (*T, error) {
	created, err := s.store.Insert(ctx, doc)
	if err != nil {
		return nil, err
	}
	s.logger.Debug().Msg("document created")
	return created, nil
}

// Update applies mutate to the stored record and persists the result. Errors
// from mutate abort the update untouched.
func (s *ResourceService[T]) Update(ctx context.Context, id string, mutate func(*T) error) (*T, error) {
	current, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := mutate(current); err != nil {
		return nil, err
	}
	return s.store.Replace(ctx, id, current)
}

func (s *ResourceService[T]) Delete(ctx context.Context, id string) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info().Str("id", id).Msg("document deleted")
	return nil
}
