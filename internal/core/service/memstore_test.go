package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"

	"github.com/natours/booking-api/internal/core/domain"
	"github.com/natours/booking-api/internal/core/ports"
	"github.com/natours/booking-api/internal/core/query"
)

// memStore is an in-memory ports.ResourceStore. Documents are kept in their
// JSON form so the query spec can be evaluated field by field.
type memStore[T any] struct {
	docs   map[string]map[string]any
	order  []string
	nextID int
	finds  int
}

func newMemStore[T any]() *memStore[T] {
	return &memStore[T]{docs: make(map[string]map[string]any)}
}

func toDoc(v any) map[string]any {
	b, _ := json.Marshal(v)
	var m map[string]any
	_ = json.Unmarshal(b, &m)
	return m
}

func fromDoc[T any](m map[string]any) *T {
	b, _ := json.Marshal(m)
	var out T
	_ = json.Unmarshal(b, &out)
	return &out
}

func (s *memStore[T]) Find(_ context.Context, where map[string]string, spec query.Spec) ([]ports.Document, error) {
	s.finds++
	var matched []map[string]any
	for _, id := range s.order {
		d := s.docs[id]
		ok := true
		for f, v := range where {
			if fmt.Sprint(d[f]) != v {
				ok = false
			}
		}
		for _, c := range spec.Conditions {
			if !memMatch(d[c.Field], c) {
				ok = false
			}
		}
		if ok {
			matched = append(matched, d)
		}
	}

	sort.SliceStable(matched, func(i, j int) bool {
		for _, k := range spec.SortKeys {
			c := memCompare(matched[i][k.Field], fmt.Sprint(matched[j][k.Field]))
			if c == 0 {
				continue
			}
			if k.Desc {
				return c > 0
			}
			return c < 0
		}
		return false
	})

	out := []ports.Document{}
	for i := spec.Skip(); i < int64(len(matched)) && i < spec.Skip()+int64(spec.Limit); i++ {
		d := matched[i]
		if len(spec.Fields) > 0 {
			p := map[string]any{"_id": d["_id"]}
			for _, f := range spec.Fields {
				if v, ok := d[f]; ok {
					p[f] = v
				}
			}
			d = p
		}
		out = append(out, d)
	}
	return out, nil
}

func memMatch(v any, c query.Condition) bool {
	if v == nil {
		return false
	}
	cmp := memCompare(v, c.Value)
	switch c.Op {
	case query.OpGt:
		return cmp > 0
	case query.OpGte:
		return cmp >= 0
	case query.OpLt:
		return cmp < 0
	case query.OpLte:
		return cmp <= 0
	default:
		return cmp == 0
	}
}

func memCompare(v any, raw string) int {
	if f, ok := v.(float64); ok {
		if g, err := strconv.ParseFloat(raw, 64); err == nil {
			switch {
			case f < g:
				return -1
			case f > g:
				return 1
			}
			return 0
		}
	}
	a := fmt.Sprint(v)
	switch {
	case a < raw:
		return -1
	case a > raw:
		return 1
	}
	return 0
}

func (s *memStore[T]) FindByID(_ context.Context, id string) (*T, error) {
	d, ok := s.docs[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return fromDoc[T](d), nil
}

func (s *memStore[T]) Insert(_ context.Context, doc *T) (*T, error) {
	s.nextID++
	id := fmt.Sprintf("%024d", s.nextID)
	d := toDoc(doc)
	d["_id"] = id
	s.docs[id] = d
	s.order = append(s.order, id)
	return fromDoc[T](d), nil
}

func (s *memStore[T]) Replace(_ context.Context, id string, doc *T) (*T, error) {
	if _, ok := s.docs[id]; !ok {
		return nil, domain.ErrNotFound
	}
	d := toDoc(doc)
	d["_id"] = id
	s.docs[id] = d
	return fromDoc[T](d), nil
}

func (s *memStore[T]) Delete(_ context.Context, id string) error {
	if _, ok := s.docs[id]; !ok {
		return domain.ErrNotFound
	}
	delete(s.docs, id)
	for i, o := range s.order {
		if o == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}
