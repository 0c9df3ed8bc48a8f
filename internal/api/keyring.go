package api

import (
	"crypto/subtle"
	"errors"
	"strings"

	"roomstay/internal/config"
)

const (
	permRead          = "read:*"
	permWriteBookings = "write:bookings"
	permWriteReviews  = "write:reviews"
	permWriteRooms    = "write:rooms"
)

const (
	apiKeyHeaderDefault   = "x-api-key"
	apiExtraHeaderDefault = "x-api-extra"
	clientKeyUnknown      = "unknown"
)

var (
	errMissingKey       = errors.New("missing api key headers")
	errInvalidKey       = errors.New("invalid api key")
	errInvalidExtra     = errors.New("invalid extra header")
	errPermissionDenied = errors.New("permission denied")
)

// keyring resolves API clients by key. HTTP and gRPC share it so both
// transports accept the same credentials.
type keyring struct {
	enabled     bool
	keyHeader   string
	extraHeader string
	clients     map[string]config.APIClientKey
}

func newKeyring(cfg config.APIAuthConfig) *keyring {
	clients := make(map[string]config.APIClientKey, len(cfg.APIKeys))
	for _, k := range cfg.APIKeys {
		clients[k.Key] = k
	}
	return &keyring{
		enabled:     cfg.Enabled,
		keyHeader:   headerOrDefault(cfg.HeaderAPIKey, apiKeyHeaderDefault),
		extraHeader: headerOrDefault(cfg.HeaderExtra, apiExtraHeaderDefault),
		clients:     clients,
	}
}

// authorize checks the key pair and that the client holds required. An empty
// required permission only needs valid credentials.
func (k *keyring) authorize(apiKey, extra, required string) (config.APIClientKey, error) {
	apiKey = strings.TrimSpace(apiKey)
	extra = strings.TrimSpace(extra)
	if apiKey == "" || extra == "" {
		return config.APIClientKey{}, errMissingKey
	}

	client, ok := k.clients[apiKey]
	if !ok {
		return config.APIClientKey{}, errInvalidKey
	}
	if subtle.ConstantTimeCompare([]byte(client.Extra), []byte(extra)) != 1 {
		return config.APIClientKey{}, errInvalidExtra
	}
	if !client.Allows(required) {
		return client, errPermissionDenied
	}
	return client, nil
}

func headerOrDefault(header, def string) string {
	header = strings.ToLower(strings.TrimSpace(header))
	if header == "" {
		return def
	}
	return header
}
