package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/natours/booking-api/internal/core/domain"
	"github.com/natours/booking-api/internal/core/ports"
)

type stubTourService struct {
	*stubResources[domain.Tour]
	withinArgs []any
}

func (s *stubTourService) Detail(ctx context.Context, id string) (*ports.TourDetail, error) {
	tour, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return &ports.TourDetail{Tour: *tour, DurationWeeks: tour.DurationWeeks(), Guides: []domain.User{{ID: "g1", Name: "Guide"}}, Reviews: []domain.Review{}}, nil
}

func (s *stubTourService) Stats(context.Context) ([]domain.TourStats, error) {
	return []domain.TourStats{{Difficulty: "easy", NumTours: 2}}, nil
}

func (s *stubTourService) Within(_ context.Context, distance, lat, lng float64, unit string) ([]domain.Tour, error) {
	s.withinArgs = []any{distance, lat, lng, unit}
	return []domain.Tour{{ID: "t1"}}, nil
}

func newStubTourService() *stubTourService {
	return &stubTourService{stubResources: newStubResources(map[string]*domain.Tour{
		"t1": {ID: "t1", Name: "The Forest Hiker", Duration: 14},
	})}
}

func TestTourHandler_TopFiveCheap_OverridesShaping(t *testing.T) {
	e := newEcho()
	stub := newStubTourService()
	h := NewTourHandler(stub)

	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/?limit=50&sort=name&difficulty=easy", nil), httptest.NewRecorder())

	if err := h.TopFiveCheap(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	p := stub.listIn.Params
	if p.Get("limit") != "5" || p.Get("sort") != "-ratingsAverage,price" || p.Get("fields") != topCheapFields {
		t.Fatalf("alias params not applied: %v", p)
	}
	if p.Get("difficulty") != "easy" {
		t.Fatalf("client filter dropped: %v", p)
	}
	if c.QueryParam("limit") != "50" {
		t.Fatalf("request query must not be mutated")
	}
}

func TestTourHandler_Get_ReturnsDetail(t *testing.T) {
	e := newEcho()
	h := NewTourHandler(newStubTourService())

	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
	c.SetParamNames("id")
	c.SetParamValues("t1")

	if err := h.Get(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	doc := decode(t, rec)["data"].(map[string]any)["data"].(map[string]any)
	if doc["name"] != "The Forest Hiker" || doc["durationWeeks"] != float64(2) {
		t.Fatalf("unexpected detail: %+v", doc)
	}
	if guides := doc["guides"].([]any); len(guides) != 1 {
		t.Fatalf("expected expanded guides, got %v", guides)
	}
}

func TestTourHandler_Within(t *testing.T) {
	e := newEcho()
	stub := newStubTourService()
	h := NewTourHandler(stub)

	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
	c.SetParamNames("distance", "latlng", "unit")
	c.SetParamValues("250", "34.11,-118.11", "mi")

	if err := h.Within(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if stub.withinArgs[0] != 250.0 || stub.withinArgs[1] != 34.11 || stub.withinArgs[2] != -118.11 || stub.withinArgs[3] != "mi" {
		t.Fatalf("unexpected args: %v", stub.withinArgs)
	}
	if decode(t, rec)["results"] != float64(1) {
		t.Fatalf("expected one result")
	}
}

func TestTourHandler_Within_BadCenter(t *testing.T) {
	e := newEcho()
	h := NewTourHandler(newStubTourService())

	for _, latlng := range []string{"34.11", "a,b", "1,2,3"} {
		c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
		c.SetParamNames("distance", "latlng", "unit")
		c.SetParamValues("10", latlng, "km")

		var ve *domain.ValidationError
		if err := h.Within(c); !errors.As(err, &ve) {
			t.Fatalf("%s: expected validation error, got %v", latlng, err)
		}
	}
}

func TestTourHandler_Stats(t *testing.T) {
	e := newEcho()
	h := NewTourHandler(newStubTourService())

	rec := httptest.NewRecorder()
	if err := h.Stats(e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	stats := decode(t, rec)["data"].(map[string]any)["stats"].([]any)
	if len(stats) != 1 || stats[0].(map[string]any)["difficulty"] != "easy" {
		t.Fatalf("unexpected stats: %v", stats)
	}
}
