package http

import (
	"log/slog"
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"

	"eventbooking/internal/delivery/http/controllers"
	"eventbooking/internal/delivery/http/middleware"
	"eventbooking/internal/domain"
	"eventbooking/internal/metrics"
)

// RouterConfig carries the cross-cutting pieces the router wires around controllers.
type RouterConfig struct {
	// AdminVerifier guards POST /events. Nil disables the check.
	AdminVerifier domain.TokenVerifier
	// BookingLimiter throttles POST /events/{slug}/bookings per client. Nil disables it.
	BookingLimiter *middleware.RateLimiter
	// UploadsDir is served under /uploads/ when non-empty.
	UploadsDir     string
	AllowedOrigins []string
}

// NewRouter initializes the HTTP handler with all application routes and middleware.
func NewRouter(
	logger *slog.Logger,
	eventController *controllers.EventController,
	bookingController *controllers.BookingController,
	healthController *controllers.HealthController,
	cfg RouterConfig,
) http.Handler {
	mux := http.NewServeMux()
	requireAdmin := middleware.RequireAdmin(cfg.AdminVerifier, logger)
	limitBookings := func(next http.HandlerFunc) http.HandlerFunc { return next }
	if cfg.BookingLimiter != nil {
		limitBookings = middleware.RateLimit(cfg.BookingLimiter, logger)
	}

	// Events
	mux.HandleFunc("GET /events", eventController.ListEvents)
	mux.HandleFunc("POST /events", requireAdmin(eventController.CreateEvent))
	mux.HandleFunc("GET /events/{slug}", eventController.GetEventBySlug)
	mux.HandleFunc("GET /events/{slug}/similar", eventController.GetSimilarEvents)

	// Bookings
	mux.HandleFunc("POST /events/{slug}/bookings", limitBookings(bookingController.CreateBooking))
	mux.HandleFunc("GET /events/{slug}/bookings/count", bookingController.GetBookingsCount)

	// Operations
	mux.HandleFunc("GET /healthz", healthController.Health)
	mux.Handle("GET /metrics", metrics.Handler())

	if cfg.UploadsDir != "" {
		mux.Handle("GET /uploads/", http.StripPrefix("/uploads/", http.FileServer(http.Dir(cfg.UploadsDir))))
	}

	// Swagger
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	return middleware.LoggingMiddleware(logger, middleware.CORS(cfg.AllowedOrigins, mux))
}
