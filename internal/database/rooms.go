package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"roomstay/internal/models"
)

const roomColumns = `id, owner_id, address, city, state, country, lat, lng, name, description, price, preview_image, created_at, updated_at`

func scanRoom(row rowScanner) (*models.Room, error) {
	var r models.Room
	err := row.Scan(
		&r.ID, &r.OwnerID, &r.Address, &r.City, &r.State, &r.Country, &r.Lat, &r.Lng,
		&r.Name, &r.Description, &r.Price, &r.PreviewImage, &r.CreatedAt, &r.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func (db *DB) GetRoom(ctx context.Context, id int64) (*models.Room, error) {
	r, err := scanRoom(db.QueryRowContext(ctx, `SELECT `+roomColumns+` FROM rooms WHERE id = ?`, id))
	if err != nil {
		return nil, fmt.Errorf("get room %d: %w", id, translate(err))
	}
	return r, nil
}

// GetRoomDetail loads a room with its review aggregate, images and owner.
func (db *DB) GetRoomDetail(ctx context.Context, id int64) (*models.RoomDetail, error) {
	room, err := db.GetRoom(ctx, id)
	if err != nil {
		return nil, err
	}
	detail := &models.RoomDetail{Room: *room, Images: []*models.RoomImage{}}

	var avg sql.NullFloat64
	err = db.QueryRowContext(ctx,
		`SELECT COUNT(*), AVG(stars) FROM reviews WHERE room_id = ?`, id,
	).Scan(&detail.NumReviews, &avg)
	if err != nil {
		return nil, fmt.Errorf("room %d review stats: %w", id, err)
	}
	if avg.Valid {
		v := avg.Float64
		detail.AvgStarRating = &v
	}

	rows, err := db.QueryContext(ctx,
		`SELECT id, room_id, user_id, image_url, created_at FROM room_images WHERE room_id = ? ORDER BY id`, id)
	if err != nil {
		return nil, fmt.Errorf("room %d images: %w", id, err)
	}
	defer rows.Close()
	for rows.Next() {
		var img models.RoomImage
		if err := rows.Scan(&img.ID, &img.RoomID, &img.UserID, &img.ImageURL, &img.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan room image: %w", err)
		}
		detail.Images = append(detail.Images, &img)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	rows.Close()

	owner, err := db.GetUserByID(ctx, room.OwnerID)
	if err == nil {
		detail.Owner = owner.Summary()
	} else if !IsNotFound(err) {
		return nil, err
	}

	return detail, nil
}

func (db *DB) ListRooms(ctx context.Context) ([]*models.Room, error) {
	return db.queryRooms(ctx, `SELECT `+roomColumns+` FROM rooms ORDER BY id`)
}

// SearchRooms pages through rooms matching filter, ordered by id.
func (db *DB) SearchRooms(ctx context.Context, filter models.RoomFilter) ([]*models.Room, error) {
	var (
		conds []string
		args  []any
	)
	bound := func(col, op string, v *float64) {
		if v != nil {
			conds = append(conds, col+" "+op+" ?")
			args = append(args, *v)
		}
	}
	bound("lat", ">=", filter.MinLat)
	bound("lat", "<=", filter.MaxLat)
	bound("lng", ">=", filter.MinLng)
	bound("lng", "<=", filter.MaxLng)
	bound("price", ">=", filter.MinPrice)
	bound("price", "<=", filter.MaxPrice)

	query := `SELECT ` + roomColumns + ` FROM rooms`
	if len(conds) > 0 {
		query += ` WHERE ` + strings.Join(conds, " AND ")
	}
	query += ` ORDER BY id LIMIT ? OFFSET ?`

	size := filter.Size
	if size <= 0 {
		size = models.DefaultPageSize
	}
	filter.Size = size
	args = append(args, size, filter.Offset())

	return db.queryRooms(ctx, query, args...)
}

func (db *DB) queryRooms(ctx context.Context, query string, args ...any) ([]*models.Room, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query rooms: %w", err)
	}
	defer rows.Close()

	rooms := []*models.Room{}
	for rows.Next() {
		r, err := scanRoom(rows)
		if err != nil {
			return nil, fmt.Errorf("scan room: %w", err)
		}
		rooms = append(rooms, r)
	}
	return rooms, rows.Err()
}

func (db *DB) CreateRoom(ctx context.Context, room *models.Room) error {
	now := time.Now()
	result, err := db.ExecContext(ctx,
		`INSERT INTO rooms (owner_id, address, city, state, country, lat, lng, name, description, price, preview_image, created_at, updated_at)
         VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		room.OwnerID, room.Address, room.City, room.State, room.Country, room.Lat, room.Lng,
		room.Name, room.Description, room.Price, room.PreviewImage, now, now,
	)
	if err != nil {
		return fmt.Errorf("create room: %w", translate(err))
	}
	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("create room: %w", err)
	}
	room.ID = id
	room.CreatedAt = now
	room.UpdatedAt = now
	return nil
}

func (db *DB) AddRoomImage(ctx context.Context, image *models.RoomImage) error {
	now := time.Now()
	result, err := db.ExecContext(ctx,
		`INSERT INTO room_images (room_id, user_id, image_url, created_at) VALUES (?, ?, ?, ?)`,
		image.RoomID, image.UserID, image.ImageURL, now,
	)
	if err != nil {
		return fmt.Errorf("add room image: %w", translate(err))
	}
	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("add room image: %w", err)
	}
	image.ID = id
	image.CreatedAt = now
	return nil
}
