package api

import (
	"context"
	"strings"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.mongodb.org/mongo-driver/mongo"

	_ "github.com/natours/booking-api/docs" // Swagger docs
	"github.com/natours/booking-api/internal/api/handler"
	"github.com/natours/booking-api/internal/api/middleware"
	"github.com/natours/booking-api/internal/core/domain"
	"github.com/natours/booking-api/internal/core/ports"
	"github.com/natours/booking-api/internal/core/service"
	mongostore "github.com/natours/booking-api/internal/infrastructure/db/mongo"
	redisstore "github.com/natours/booking-api/internal/infrastructure/db/redis"
	"github.com/natours/booking-api/internal/infrastructure/payment"
	"github.com/natours/booking-api/internal/pkg/config"
)

// bodyLimit caps JSON request bodies.
const bodyLimit = "10K"

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(
	cfg *config.Config,
	db *mongo.Database,
	rdb *redis.Client,
	notifier ports.Notifier,
	ratings ports.RatingRecalculator,
	log zerolog.Logger,
) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log.With().Str("component", "http").Logger(), !cfg.IsProduction())

	// --- Global middleware ---
	useGlobalMiddleware(e, log)

	// --- Dependencies ---
	userRepo := mongostore.NewUserRepository(db)
	tourStore := mongostore.NewTourStore(db)
	reviewRepo := mongostore.NewReviewRepository(db)

	authService := service.NewAuthService(userRepo, notifier, cfg.Auth, cfg.PublicURL, log.With().Str("component", "auth").Logger())
	tourService := service.NewTourService(tourStore, mongostore.NewTourRepository(db), userRepo, reviewRepo, log)
	reviewService := service.NewReviewService(mongostore.NewReviewStore(db), ratings, log)
	bookingService := service.NewBookingService(
		mongostore.NewBookingStore(db),
		tourStore,
		payment.NewHostedCheckout(cfg.Payment.CheckoutURL, cfg.Payment.WebhookSecret, cfg.Payment.Currency),
		redisstore.NewCheckoutStore(rdb, cfg.Payment.SessionTTL),
		cfg.PublicURL,
		log,
	)
	userAdmin := service.NewResourceService[domain.User]("users", mongostore.NewUserStore(db), log)
	userService := service.NewUserService(userRepo, log)

	authHandler := handler.NewAuthHandler(authService, cfg.Auth.CookieExpiresIn)
	tourHandler := handler.NewTourHandler(tourService)
	reviewHandler := handler.NewReviewHandler(reviewService)
	bookingHandler := handler.NewBookingHandler(bookingService, payment.SignatureHeader)
	userHandler := handler.NewUserHandler(userAdmin, userService)

	protect := middleware.Protect(authService)
	staff := middleware.RestrictTo(domain.RoleAdmin, domain.RoleLeadGuide)
	admin := middleware.RestrictTo(domain.RoleAdmin)
	reviewer := middleware.RestrictTo(domain.RoleUser)
	reviewEditor := middleware.RestrictTo(domain.RoleUser, domain.RoleAdmin)

	// --- API ---
	api := e.Group("/api", echomiddleware.BodyLimit(bodyLimit))
	if cfg.RateLimit.Enabled {
		limiter := redisstore.NewRateLimiter(rdb, cfg.RateLimit.Requests, cfg.RateLimit.Window)
		api.Use(middleware.RateLimit(limiter, cfg.RateLimit.FailOpen, log.With().Str("component", "ratelimit").Logger()))
	}
	v1 := api.Group("/v1")

	users := v1.Group("/users")
	users.POST("/sign-up", authHandler.SignUp)
	users.POST("/sign-in", authHandler.SignIn)
	users.GET("/sign-out", authHandler.SignOut)
	users.POST("/forgot-password", authHandler.ForgotPassword)
	users.PATCH("/reset-password/:token", authHandler.ResetPassword)
	users.GET("/session", userHandler.Session, middleware.IsSignedIn(authService))
	users.PATCH("/update-password", authHandler.UpdatePassword, protect)
	users.GET("/me", userHandler.Me, protect)
	users.PATCH("/update-me", userHandler.UpdateMe, protect)
	users.DELETE("/delete-me", userHandler.DeleteMe, protect)
	users.GET("", userHandler.List, protect, admin)
	users.POST("", userHandler.Create, protect, admin)
	users.GET("/:id", userHandler.Get, protect, admin)
	users.PATCH("/:id", userHandler.Update, protect, admin)
	users.DELETE("/:id", userHandler.Delete, protect, admin)

	tours := v1.Group("/tours")
	tours.GET("", tourHandler.List)
	tours.GET("/top-five-cheap", tourHandler.TopFiveCheap)
	tours.GET("/tour-stats", tourHandler.Stats)
	tours.GET("/within/:distance/center/:latlng/unit/:unit", tourHandler.Within)
	tours.GET("/:id", tourHandler.Get)
	tours.POST("", tourHandler.Create, protect, staff)
	tours.PATCH("/:id", tourHandler.Update, protect, staff)
	tours.DELETE("/:id", tourHandler.Delete, protect, staff)
	tours.GET("/:tourId/reviews", reviewHandler.List, protect)
	tours.POST("/:tourId/reviews", reviewHandler.Create, protect, reviewer)

	reviews := v1.Group("/reviews", protect)
	reviews.GET("", reviewHandler.List)
	reviews.POST("", reviewHandler.Create, reviewer)
	reviews.GET("/:id", reviewHandler.Get)
	reviews.PATCH("/:id", reviewHandler.Update, reviewEditor)
	reviews.DELETE("/:id", reviewHandler.Delete, reviewEditor)

	bookings := v1.Group("/bookings")
	bookings.POST("/webhook-checkout", bookingHandler.Webhook)
	bookings.GET("/checkout-session/:tourId", bookingHandler.CheckoutSession, protect)
	bookings.GET("", bookingHandler.List, protect, staff)
	bookings.POST("", bookingHandler.Create, protect, staff)
	bookings.GET("/:id", bookingHandler.Get, protect, staff)
	bookings.PATCH("/:id", bookingHandler.Update, protect, staff)
	bookings.DELETE("/:id", bookingHandler.Delete, protect, staff)

	// --- Ops ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(map[string]handler.Pinger{
		"mongodb": func(ctx context.Context) error { return db.Client().Ping(ctx, nil) },
		"redis":   func(ctx context.Context) error { return rdb.Ping(ctx).Err() },
	})

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}

func useGlobalMiddleware(e *echo.Echo, log zerolog.Logger) {
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Secure())
	e.Use(echomiddleware.CORS())
	e.Use(echomiddleware.Gzip())
	e.Use(middleware.RequestLogger(log.With().Str("component", "access").Logger()))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Namespace: "natours",
		Subsystem: "http",
		Skipper: func(c echo.Context) bool {
			p := c.Path()
			return p == "/metrics" || strings.HasPrefix(p, "/health")
		},
	}))
}
