package handler

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/natours/booking-api/internal/core/domain"
	"github.com/natours/booking-api/internal/core/ports"
)

// topCheapFields is the projection of the top-five-cheap alias.
const topCheapFields = "name,price,ratingsAverage,summary,difficulty"

// TourHandler serves tours. CRUD comes from the embedded ResourceHandler;
// Get is replaced by the expanded detail view.
type TourHandler struct {
	*ResourceHandler[domain.Tour]
	tours ports.TourService
}

func NewTourHandler(tours ports.TourService) *TourHandler {
	return &TourHandler{
		ResourceHandler: NewResourceHandler[domain.Tour]("tours", tours),
		tours:           tours,
	}
}

// TopFiveCheap lists the five best rated tours, cheapest first on ties. Any
// other filter in the query string still applies.
//
// @Summary      Top five cheap tours
// @Tags         tours
// @Produce      json
// @Success      200  {object}  envelope
// @Router       /tours/top-five-cheap [get]
func (h *TourHandler) TopFiveCheap(c echo.Context) error {
	params := url.Values{}
	for k, v := range c.QueryParams() {
		params[k] = v
	}
	params.Set("limit", "5")
	params.Set("sort", "-ratingsAverage,price")
	params.Set("fields", topCheapFields)
	return h.list(c, params)
}

// Get returns one tour with its guides and reviews.
//
// @Summary      Get a tour
// @Tags         tours
// @Produce      json
// @Param        id   path      string  true  "Tour id"
// @Success      200  {object}  envelope
// @Failure      404  {object}  envelope
// @Router       /tours/{id} [get]
func (h *TourHandler) Get(c echo.Context) error {
	detail, err := h.tours.Detail(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, docData[*ports.TourDetail]{Data: detail})
}

// Stats reports per-difficulty aggregates over well-rated tours.
//
// @Summary      Tour statistics
// @Tags         tours
// @Produce      json
// @Success      200  {object}  envelope
// @Router       /tours/tour-stats [get]
func (h *TourHandler) Stats(c echo.Context) error {
	stats, err := h.tours.Stats(c.Request().Context())
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, map[string]any{"stats": stats})
}

// Within lists tours starting inside a radius around a point.
//
// @Summary      Tours within a distance
// @Tags         tours
// @Produce      json
// @Param        distance  path      number  true  "Radius"
// @Param        latlng    path      string  true  "Center as lat,lng"
// @Param        unit      path      string  true  "mi or km"
// @Success      200       {object}  envelope
// @Failure      400       {object}  envelope
// @Router       /tours/within/{distance}/center/{latlng}/unit/{unit} [get]
func (h *TourHandler) Within(c echo.Context) error {
	distance, err := strconv.ParseFloat(c.Param("distance"), 64)
	if err != nil {
		return domain.NewValidationError("distance must be a number")
	}
	lat, lng, ok := parseLatLng(c.Param("latlng"))
	if !ok {
		return domain.NewValidationError("please provide latitude and longitude in the format lat,lng")
	}

	tours, err := h.tours.Within(c.Request().Context(), distance, lat, lng, c.Param("unit"))
	if err != nil {
		return err
	}
	return respondList(c, tours)
}

func parseLatLng(raw string) (lat, lng float64, ok bool) {
	parts := strings.Split(raw, ",")
	if len(parts) != 2 {
		return 0, 0, false
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return 0, 0, false
	}
	lng, err = strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return 0, 0, false
	}
	return lat, lng, true
}
