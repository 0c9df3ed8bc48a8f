package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"roomstay/internal/calendar"
	"roomstay/internal/config"
	"roomstay/internal/database"
	"roomstay/internal/events"
	"roomstay/internal/models"
	"roomstay/internal/repository"
	"roomstay/internal/service"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

const (
	ownerID     int64 = 1
	guestID     int64 = 2
	travellerID int64 = 3
)

type testAPI struct {
	db      *database.DB
	clock   *calendar.FixedClock
	bus     *events.EventBus
	handler http.Handler
}

func newTestAPI(t *testing.T, mutate func(api *config.APIConfig, limits *config.BookingConfig)) *testAPI {
	t.Helper()
	logger := zerolog.New(io.Discard)

	db, err := database.NewDB(filepath.Join(t.TempDir(), "api.db"), &logger)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, db.ApplySeed(context.Background(), &database.Seed{
		Users: []models.User{
			{ID: ownerID, FirstName: "Olive", LastName: "Owner", Email: "olive@example.com", Username: "olive"},
			{ID: guestID, FirstName: "Gus", LastName: "Guest", Email: "gus@example.com", Username: "gus"},
			{ID: travellerID, FirstName: "Tara", LastName: "Traveller", Email: "tara@example.com", Username: "tara"},
		},
		Rooms: []models.Room{
			{ID: 1, OwnerID: ownerID, Address: "1 Main St", City: "Springfield", State: "IL", Country: "USA", Lat: 39.8, Lng: -89.6, Name: "Garden Loft", Description: "Quiet", Price: 120},
			{ID: 2, OwnerID: guestID, Address: "9 Ocean Dr", City: "Miami", State: "FL", Country: "USA", Lat: 25.8, Lng: -80.1, Name: "Beach House", Description: "Sunny", Price: 300},
		},
	}))

	apiCfg := config.APIConfig{Identity: config.IdentityConfig{Header: "X-User-ID"}}
	limits := config.BookingConfig{MaxAdvanceDays: 365}
	if mutate != nil {
		mutate(&apiCfg, &limits)
	}

	store := repository.NewMemoryCoordinationStore()
	bus := events.NewEventBus()
	clock := calendar.NewFixedClock(time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC))

	bookings := service.NewBookingService(db, db, store, bus, clock, service.BookingOptions{
		Location:       time.UTC,
		MaxAdvanceDays: limits.MaxAdvanceDays,
	}, &logger)

	srv := NewHTTPServer(apiCfg, limits, Dependencies{
		Bookings:     bookings,
		Rooms:        service.NewRoomService(db, &logger),
		Reviews:      service.NewReviewService(db, db, bus, &logger),
		Users:        db,
		WriteLimiter: store,
		Health:       db,
	}, &logger)

	return &testAPI{db: db, clock: clock, bus: bus, handler: srv.Handler()}
}

// do sends a request as caller; caller 0 sends no identity header.
func (a *testAPI) do(t *testing.T, method, path string, caller int64, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if caller != 0 {
		req.Header.Set("X-User-ID", strconv.FormatInt(caller, 10))
	}
	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func dates(start, end string) BookingRequest {
	return BookingRequest{StartDate: start, EndDate: end}
}

func itoa(id int64) string { return strconv.FormatInt(id, 10) }
