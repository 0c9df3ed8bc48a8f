package api

import (
	"errors"
	"net"
	"net/http"
	"strings"

	"roomstay/internal/config"
)

// HTTPAuth checks API keys and applies the per-client request budget in
// front of the REST routes.
type HTTPAuth struct {
	keys    *keyring
	limiter *clientLimiter
}

func NewHTTPAuth(cfg config.APIConfig) *HTTPAuth {
	return &HTTPAuth{keys: newKeyring(cfg.Auth), limiter: newClientLimiter(cfg.RateLimit)}
}

func (a *HTTPAuth) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if a.keys.enabled {
			_, err := a.keys.authorize(
				r.Header.Get(a.keys.keyHeader),
				r.Header.Get(a.keys.extraHeader),
				requiredPermissionHTTP(r),
			)
			if err != nil {
				status := http.StatusUnauthorized
				if errors.Is(err, errPermissionDenied) {
					status = http.StatusForbidden
				}
				respondError(w, r, status, err.Error())
				return
			}
		}

		if !a.limiter.allow(a.clientKey(r)) {
			respondError(w, r, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}

		next.ServeHTTP(w, r)
	})
}

// requiredPermissionHTTP maps a request to the permission it needs: reads
// need read:*, writes need the permission of the resource they change.
func requiredPermissionHTTP(r *http.Request) string {
	path := strings.TrimSuffix(r.URL.Path, "/")
	if !strings.HasPrefix(path, "/api/v1/") {
		return ""
	}
	if isReadOnly(r.Method) {
		return permRead
	}

	switch {
	case strings.Contains(path, "/reviews"):
		return permWriteReviews
	case strings.HasPrefix(path, "/api/v1/bookings"), strings.HasSuffix(path, "/bookings"):
		return permWriteBookings
	default:
		return permWriteRooms
	}
}

// clientKey identifies the caller for rate limiting: the API key when sent,
// the remote host otherwise.
func (a *HTTPAuth) clientKey(r *http.Request) string {
	if apiKey := strings.TrimSpace(r.Header.Get(a.keys.keyHeader)); apiKey != "" {
		return apiKey
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil && host != "" {
		return host
	}
	return clientKeyUnknown
}
