package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"roomstay/internal/config"
	"roomstay/internal/domain"
	"roomstay/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

// Dependencies are the collaborators the HTTP API serves.
type Dependencies struct {
	Bookings *service.BookingService
	Rooms    *service.RoomService
	Reviews  *service.ReviewService
	Users    domain.UserRepository
	// WriteLimiter enforces the per-caller write limit. Nil disables it.
	WriteLimiter domain.RateLimiter
	Health       HealthChecker
}

// HTTPServer exposes the REST API.
type HTTPServer struct {
	cfg      config.APIConfig
	limits   config.BookingConfig
	deps     Dependencies
	validate *requestValidator
	auth     *HTTPAuth
	server   *http.Server
	log      *zerolog.Logger
}

func NewHTTPServer(cfg config.APIConfig, limits config.BookingConfig, deps Dependencies, logger *zerolog.Logger) *HTTPServer {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	srv := &HTTPServer{
		cfg:      cfg,
		limits:   limits,
		deps:     deps,
		validate: newRequestValidator(),
		auth:     NewHTTPAuth(cfg),
		log:      logger,
	}

	srv.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:           srv.routes(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       cfg.HTTP.ReadTimeout,
		WriteTimeout:      cfg.HTTP.WriteTimeout,
	}

	return srv
}

// Handler returns the routed handler, for tests and embedding.
func (s *HTTPServer) Handler() http.Handler { return s.server.Handler }

func (s *HTTPServer) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(accessLog(s.log))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, r, http.StatusNotFound, "Not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, r, http.StatusMethodNotAllowed, "Method not allowed")
	})

	r.Get("/healthz", s.handleHealthz)
	r.Get("/readyz", s.handleReadyz)

	identityHeader := s.cfg.Identity.Header
	if identityHeader == "" {
		identityHeader = "X-User-ID"
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(s.auth.Wrap)
		r.Use(identity(identityHeader, s.deps.Users, s.log))
		r.Use(writeLimit(s.deps.WriteLimiter, s.limits.WriteRateLimit, s.limits.WriteRateWindow, s.log))

		r.Get("/rooms", s.handleListRooms)
		r.Get("/rooms/search", s.handleSearchRooms)
		r.Get("/rooms/{roomId}", s.handleGetRoom)
		r.Get("/rooms/{roomId}/availability", s.handleRoomAvailability)
		r.Get("/rooms/{roomId}/reviews", s.handleListReviews)

		r.Group(func(r chi.Router) {
			r.Use(requireCaller)

			r.Post("/rooms", s.handleCreateRoom)
			r.Post("/rooms/{roomId}/images", s.handleAddRoomImage)

			r.Get("/rooms/{roomId}/bookings", s.handleRoomBookings)
			r.Post("/rooms/{roomId}/bookings", s.handleCreateBooking)
			r.Get("/rooms/{roomId}/bookings/export", s.handleExportBookings)

			r.Post("/rooms/{roomId}/reviews", s.handleCreateReview)
			r.Put("/rooms/{roomId}/reviews/{reviewId}", s.handleUpdateReview)
			r.Delete("/rooms/{roomId}/reviews/{reviewId}", s.handleDeleteReview)
			r.Post("/rooms/{roomId}/reviews/{reviewId}/images", s.handleAddReviewImage)

			r.Get("/bookings", s.handleUserBookings)
			r.Put("/bookings/{bookingId}", s.handleUpdateBooking)
			r.Delete("/bookings/{bookingId}", s.handleDeleteBooking)
		})
	})

	return r
}

func (s *HTTPServer) Start() error {
	if s.server == nil {
		return fmt.Errorf("http server is not initialized")
	}
	s.log.Info().Str("addr", s.server.Addr).Msg("HTTP API listening")
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *HTTPServer) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

func (s *HTTPServer) handleHealthz(w http.ResponseWriter, r *http.Request) {
	respond(w, r, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *HTTPServer) handleReadyz(w http.ResponseWriter, r *http.Request) {
	if s.deps.Health != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.deps.Health.Health(ctx); err != nil {
			s.log.Warn().Err(err).Msg("Readiness check failed")
			respond(w, r, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	respond(w, r, http.StatusOK, map[string]string{"status": "ready"})
}
