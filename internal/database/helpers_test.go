package database

import (
	"context"
	"io"
	"path/filepath"
	"testing"

	"roomstay/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()
	logger := zerolog.New(io.Discard)
	db, err := NewDB(filepath.Join(t.TempDir(), "roomstay.db"), &logger)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

// seedBasics creates users 1..3 and rooms 1 (owned by user 1) and 2 (owned by user 2).
func seedBasics(t *testing.T, db *DB) {
	t.Helper()
	require.NoError(t, db.ApplySeed(context.Background(), &Seed{
		Users: []models.User{
			{ID: 1, FirstName: "Olive", LastName: "Owner", Email: "olive@example.com", Username: "olive"},
			{ID: 2, FirstName: "Gus", LastName: "Guest", Email: "gus@example.com", Username: "gus"},
			{ID: 3, FirstName: "Tara", LastName: "Traveller", Email: "tara@example.com", Username: "tara"},
		},
		Rooms: []models.Room{
			{ID: 1, OwnerID: 1, Address: "1 Main St", City: "Springfield", State: "IL", Country: "USA", Lat: 39.8, Lng: -89.6, Name: "Garden Loft", Description: "Quiet", Price: 120},
			{ID: 2, OwnerID: 2, Address: "9 Ocean Dr", City: "Miami", State: "FL", Country: "USA", Lat: 25.8, Lng: -80.1, Name: "Beach House", Description: "Sunny", Price: 300},
		},
	}))
}
