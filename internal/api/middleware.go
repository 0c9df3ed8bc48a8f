package api

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"roomstay/internal/database"
	"roomstay/internal/domain"
	"roomstay/internal/metrics"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type ctxKey int

const (
	ctxRequestID ctxKey = iota
	ctxCaller
)

const requestIDHeader = "X-Request-ID"

func requestID(ctx context.Context) string {
	id, _ := ctx.Value(ctxRequestID).(string)
	return id
}

// callerID returns the authenticated user id, or 0 for anonymous requests.
func callerID(ctx context.Context) int64 {
	id, _ := ctx.Value(ctxCaller).(int64)
	return id
}

// requestIDMiddleware keeps an incoming X-Request-ID or assigns a new uuid.
func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(r.Header.Get(requestIDHeader))
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxRequestID, id)))
	})
}

// accessLog logs every request and records it in the HTTP metrics under its
// route pattern.
func accessLog(logger *zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			dur := time.Since(start)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			route := r.URL.Path
			if rctx := chi.RouteContext(r.Context()); rctx != nil {
				if pattern := rctx.RoutePattern(); pattern != "" {
					route = pattern
				}
			}
			metrics.ObserveHTTP(route, r.Method, status, dur)

			event := logger.Info()
			if status >= http.StatusInternalServerError {
				event = logger.Error()
			}
			event.
				Str("request_id", requestID(r.Context())).
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Str("route", route).
				Int("status", status).
				Dur("duration", dur).
				Msg("http request")
		})
	}
}

// identity resolves the caller from the gateway header. A header naming an
// unknown user is rejected; a missing header leaves the request anonymous.
func identity(header string, users domain.UserRepository, logger *zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := strings.TrimSpace(r.Header.Get(header))
			if raw == "" {
				next.ServeHTTP(w, r)
				return
			}

			id, err := strconv.ParseInt(raw, 10, 64)
			if err != nil || id <= 0 {
				respondError(w, r, http.StatusUnauthorized, "Authentication required")
				return
			}
			if _, err := users.GetUserByID(r.Context(), id); err != nil {
				if !database.IsNotFound(err) {
					logger.Error().Err(err).Int64("caller_id", id).Msg("Failed to resolve caller")
					respondError(w, r, http.StatusInternalServerError, "Internal server error")
					return
				}
				respondError(w, r, http.StatusUnauthorized, "Authentication required")
				return
			}

			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxCaller, id)))
		})
	}
}

// requireCaller rejects anonymous requests.
func requireCaller(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if callerID(r.Context()) == 0 {
			respondError(w, r, http.StatusUnauthorized, "Authentication required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// writeLimit caps mutating requests per caller through the shared limiter.
// Limiter failures let the request through.
func writeLimit(limiter domain.RateLimiter, limit int, window time.Duration, logger *zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			caller := callerID(r.Context())
			if limiter == nil || limit <= 0 || caller == 0 || isReadOnly(r.Method) {
				next.ServeHTTP(w, r)
				return
			}

			allowed, err := limiter.CheckRateLimit(r.Context(), caller, limit, window)
			if err != nil {
				logger.Warn().Err(err).Int64("caller_id", caller).Msg("Write rate limit check failed")
			} else if !allowed {
				respondError(w, r, http.StatusTooManyRequests, "Too many requests")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func isReadOnly(method string) bool {
	return method == http.MethodGet || method == http.MethodHead || method == http.MethodOptions
}
