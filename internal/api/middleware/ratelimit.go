package middleware

import (
	"context"
	"math"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/natours/booking-api/internal/api/metrics"
	redisstore "github.com/natours/booking-api/internal/infrastructure/db/redis"
)

// Limiter takes one request token for key.
type Limiter interface {
	Allow(ctx context.Context, key string) (redisstore.Decision, error)
}

// RateLimit caps requests per client IP. When the limiter is unavailable the
// request is let through if failOpen is set and rejected with 503 otherwise.
func RateLimit(limiter Limiter, failOpen bool, log zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ip := c.RealIP()
			if ip == "" {
				ip = "unknown"
			}

			d, err := limiter.Allow(c.Request().Context(), "ip:"+ip)
			if err != nil {
				log.Warn().Err(err).Str("ip", ip).Msg("rate limiter unavailable")
				if failOpen {
					return next(c)
				}
				return echo.NewHTTPError(http.StatusServiceUnavailable, "Service temporarily unavailable.")
			}

			h := c.Response().Header()
			h.Set("X-RateLimit-Limit", strconv.Itoa(d.Limit))
			h.Set("X-RateLimit-Remaining", strconv.FormatInt(d.Remaining, 10))

			if !d.Allowed {
				secs := int(math.Ceil(d.RetryAfter.Seconds()))
				h.Set("Retry-After", strconv.Itoa(secs))
				metrics.RateLimitedTotal.Inc()
				return echo.NewHTTPError(http.StatusTooManyRequests, "Too many requests from this IP, please try again later.")
			}
			return next(c)
		}
	}
}
