package handler

import (
	"net/http"
	"net/url"

	"github.com/labstack/echo/v4"

	"github.com/natours/booking-api/internal/api/metrics"
	"github.com/natours/booking-api/internal/core/ports"
	"github.com/natours/booking-api/internal/core/query"
)

// ResourceHandler is the uniform HTTP adapter over a ResourceService. Every
// resource gets list, get, create, update and delete from it.
type ResourceHandler[T any] struct {
	name     string
	service  ports.ResourceService[T]
	parents  map[string]string
	defaults func(*T)
	prepare  func(echo.Context, *T) error
}

// ResourceOption customises a ResourceHandler.
type ResourceOption[T any] func(*ResourceHandler[T])

// WithParent scopes list requests on a nested route: the path parameter
// param, when present, becomes an equality filter on field.
func WithParent[T any](param, field string) ResourceOption[T] {
	return func(h *ResourceHandler[T]) { h.parents[param] = field }
}

// WithDefaults seeds new documents before the request body is applied.
func WithDefaults[T any](fn func(*T)) ResourceOption[T] {
	return func(h *ResourceHandler[T]) { h.defaults = fn }
}

// WithPrepare runs after the body is decoded and before validation on
// create, typically to fill fields from the route or the signed-in user.
func WithPrepare[T any](fn func(echo.Context, *T) error) ResourceOption[T] {
	return func(h *ResourceHandler[T]) { h.prepare = fn }
}

func NewResourceHandler[T any](name string, service ports.ResourceService[T], opts ...ResourceOption[T]) *ResourceHandler[T] {
	h := &ResourceHandler[T]{name: name, service: service, parents: map[string]string{}}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

type docData[T any] struct {
	Data T `json:"data"`
}

// List returns the filtered, sorted, projected and paginated collection.
func (h *ResourceHandler[T]) List(c echo.Context) error {
	return h.list(c, c.QueryParams())
}

func (h *ResourceHandler[T]) list(c echo.Context, params url.Values) error {
	in := ports.ListInput{Params: query.Sanitize(params)}
	for param, field := range h.parents {
		if id := c.Param(param); id != "" {
			if in.Where == nil {
				in.Where = map[string]string{}
			}
			in.Where[field] = id
		}
	}

	docs, err := h.service.List(c.Request().Context(), in)
	if err != nil {
		return err
	}
	metrics.ListResultSize.WithLabelValues(h.name).Observe(float64(len(docs)))
	return respondList(c, docs)
}

func (h *ResourceHandler[T]) Get(c echo.Context) error {
	doc, err := h.service.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, docData[*T]{Data: doc})
}

func (h *ResourceHandler[T]) Create(c echo.Context) error {
	doc := new(T)
	if h.defaults != nil {
		h.defaults(doc)
	}
	if err := decodeBody(c, doc); err != nil {
		return err
	}
	if h.prepare != nil {
		if err := h.prepare(c, doc); err != nil {
			return err
		}
	}
	if err := c.Validate(doc); err != nil {
		return err
	}

	created, err := h.service.Create(c.Request().Context(), doc)
	if err != nil {
		return err
	}
	return respond(c, http.StatusCreated, docData[*T]{Data: created})
}

// Update applies the request body on top of the stored document, so fields
// the client leaves out are kept.
func (h *ResourceHandler[T]) Update(c echo.Context) error {
	updated, err := h.service.Update(c.Request().Context(), c.Param("id"), func(doc *T) error {
		if err := decodeBody(c, doc); err != nil {
			return err
		}
		return c.Validate(doc)
	})
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, docData[*T]{Data: updated})
}

func (h *ResourceHandler[T]) Delete(c echo.Context) error {
	if err := h.service.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
