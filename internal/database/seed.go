package database

import (
	"context"
	"fmt"
	"os"
	"time"

	"roomstay/internal/calendar"
	"roomstay/internal/models"

	"gopkg.in/yaml.v3"
)

// Seed is the demo data loaded at startup.
type Seed struct {
	Users    []models.User `yaml:"users"`
	Rooms    []models.Room `yaml:"rooms"`
	Bookings []SeedBooking `yaml:"bookings"`
}

type SeedBooking struct {
	ID        int64  `yaml:"id"`
	RoomID    int64  `yaml:"room_id"`
	UserID    int64  `yaml:"user_id"`
	StartDate string `yaml:"start_date"`
	EndDate   string `yaml:"end_date"`
}

func LoadSeed(path string) (*Seed, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed: %w", err)
	}
	var seed Seed
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), &seed); err != nil {
		return nil, fmt.Errorf("parse seed: %w", err)
	}
	return &seed, nil
}

// ApplySeed upserts users and rooms by id and inserts missing bookings. It is
// idempotent, so it can run on every start.
func (db *DB) ApplySeed(ctx context.Context, seed *Seed) error {
	for i := range seed.Users {
		if err := db.UpsertUser(ctx, &seed.Users[i]); err != nil {
			return err
		}
	}

	now := time.Now()
	for _, r := range seed.Rooms {
		_, err := db.ExecContext(ctx, `
            INSERT INTO rooms (id, owner_id, address, city, state, country, lat, lng, name, description, price, preview_image, created_at, updated_at)
            VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
            ON CONFLICT(id) DO UPDATE SET
                owner_id = excluded.owner_id,
                address = excluded.address,
                city = excluded.city,
                state = excluded.state,
                country = excluded.country,
                lat = excluded.lat,
                lng = excluded.lng,
                name = excluded.name,
                description = excluded.description,
                price = excluded.price,
                preview_image = excluded.preview_image,
                updated_at = excluded.updated_at`,
			r.ID, r.OwnerID, r.Address, r.City, r.State, r.Country, r.Lat, r.Lng,
			r.Name, r.Description, r.Price, r.PreviewImage, now, now,
		)
		if err != nil {
			return fmt.Errorf("seed room %d: %w", r.ID, translate(err))
		}
	}

	for _, b := range seed.Bookings {
		start, err := calendar.ParseDate(b.StartDate)
		if err != nil {
			return fmt.Errorf("seed booking %d: %w", b.ID, err)
		}
		end, err := calendar.ParseDate(b.EndDate)
		if err != nil {
			return fmt.Errorf("seed booking %d: %w", b.ID, err)
		}
		_, err = db.ExecContext(ctx, `
            INSERT INTO bookings (id, room_id, user_id, start_date, end_date, created_at, updated_at)
            SELECT ?, ?, ?, ?, ?, ?, ?
            WHERE NOT EXISTS (SELECT 1 FROM bookings WHERE id = ?)`,
			b.ID, b.RoomID, b.UserID, start, end, now, now, b.ID,
		)
		if err != nil {
			return fmt.Errorf("seed booking %d: %w", b.ID, translate(err))
		}
	}

	db.logger.Info().
		Int("users", len(seed.Users)).
		Int("rooms", len(seed.Rooms)).
		Int("bookings", len(seed.Bookings)).
		Msg("Seed applied")
	return nil
}
