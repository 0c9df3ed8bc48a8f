package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"roomstay/internal/models"
)

const reviewColumns = `rv.id, rv.room_id, rv.user_id, rv.review, rv.stars, rv.created_at, rv.updated_at`

func scanReview(row rowScanner, extra ...any) (*models.Review, error) {
	var r models.Review
	dest := append([]any{&r.ID, &r.RoomID, &r.UserID, &r.Review, &r.Stars, &r.CreatedAt, &r.UpdatedAt}, extra...)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	return &r, nil
}

func (db *DB) GetReview(ctx context.Context, id int64) (*models.Review, error) {
	r, err := scanReview(db.QueryRowContext(ctx, `SELECT `+reviewColumns+` FROM reviews rv WHERE rv.id = ?`, id))
	if err != nil {
		return nil, fmt.Errorf("get review %d: %w", id, translate(err))
	}
	return r, nil
}

// GetRoomReviews returns the reviews of a room with their authors and images.
func (db *DB) GetRoomReviews(ctx context.Context, roomID int64) ([]*models.Review, error) {
	rows, err := db.QueryContext(ctx, `SELECT `+reviewColumns+`, u.id, u.first_name, u.last_name
        FROM reviews rv
        JOIN users u ON u.id = rv.user_id
        WHERE rv.room_id = ?
        ORDER BY rv.id`, roomID)
	if err != nil {
		return nil, fmt.Errorf("query room reviews: %w", err)
	}
	defer rows.Close()

	reviews := []*models.Review{}
	byID := map[int64]*models.Review{}
	for rows.Next() {
		var u models.UserSummary
		r, err := scanReview(rows, &u.ID, &u.FirstName, &u.LastName)
		if err != nil {
			return nil, fmt.Errorf("scan review: %w", err)
		}
		r.User = &u
		r.Images = []*models.ReviewImage{}
		reviews = append(reviews, r)
		byID[r.ID] = r
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	rows.Close()

	imgRows, err := db.QueryContext(ctx, `SELECT ri.id, ri.review_id, ri.user_id, ri.image_url, ri.created_at
        FROM review_images ri
        JOIN reviews rv ON rv.id = ri.review_id
        WHERE rv.room_id = ?
        ORDER BY ri.id`, roomID)
	if err != nil {
		return nil, fmt.Errorf("query review images: %w", err)
	}
	defer imgRows.Close()
	for imgRows.Next() {
		var img models.ReviewImage
		if err := imgRows.Scan(&img.ID, &img.ReviewID, &img.UserID, &img.ImageURL, &img.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan review image: %w", err)
		}
		if r, ok := byID[img.ReviewID]; ok {
			r.Images = append(r.Images, &img)
		}
	}
	return reviews, imgRows.Err()
}

// FindOrCreateReview relies on UNIQUE(room_id, user_id): concurrent creates
// by one user for one room yield exactly one row.
func (db *DB) FindOrCreateReview(ctx context.Context, review *models.Review) (bool, error) {
	now := time.Now()
	result, err := db.ExecContext(ctx, `
        INSERT INTO reviews (room_id, user_id, review, stars, created_at, updated_at)
        VALUES (?, ?, ?, ?, ?, ?)
        ON CONFLICT(room_id, user_id) DO NOTHING`,
		review.RoomID, review.UserID, review.Review, review.Stars, now, now,
	)
	if err != nil {
		return false, fmt.Errorf("create review: %w", translate(err))
	}

	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("create review: %w", err)
	}
	if n == 1 {
		id, err := result.LastInsertId()
		if err != nil {
			return false, fmt.Errorf("create review: %w", err)
		}
		review.ID = id
		review.CreatedAt = now
		review.UpdatedAt = now
		return true, nil
	}

	existing, err := scanReview(db.QueryRowContext(ctx,
		`SELECT `+reviewColumns+` FROM reviews rv WHERE rv.room_id = ? AND rv.user_id = ?`,
		review.RoomID, review.UserID))
	if err != nil {
		return false, fmt.Errorf("load existing review: %w", translate(err))
	}
	*review = *existing
	return false, nil
}

func (db *DB) UpdateReview(ctx context.Context, review *models.Review) error {
	now := time.Now()
	result, err := db.ExecContext(ctx,
		`UPDATE reviews SET review = ?, stars = ?, updated_at = ? WHERE id = ?`,
		review.Review, review.Stars, now, review.ID,
	)
	if err != nil {
		return fmt.Errorf("update review %d: %w", review.ID, translate(err))
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("update review %d: %w", review.ID, ErrNotFound)
	}
	review.UpdatedAt = now
	return nil
}

func (db *DB) DeleteReview(ctx context.Context, id int64) error {
	result, err := db.ExecContext(ctx, `DELETE FROM reviews WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete review %d: %w", id, err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("delete review %d: %w", id, ErrNotFound)
	}
	return nil
}

// AddReviewImageWithLimit counts and inserts in one immediate transaction so
// parallel uploads cannot exceed max.
func (db *DB) AddReviewImageWithLimit(ctx context.Context, image *models.ReviewImage, max int) error {
	return db.withTx(ctx, func(tx *sql.Tx) error {
		var count int
		if err := tx.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM review_images WHERE user_id = ?`, image.UserID,
		).Scan(&count); err != nil {
			return fmt.Errorf("count review images: %w", err)
		}
		if count >= max {
			return fmt.Errorf("user %d has %d review images: %w", image.UserID, count, ErrLimitReached)
		}

		now := time.Now()
		result, err := tx.ExecContext(ctx,
			`INSERT INTO review_images (review_id, user_id, image_url, created_at) VALUES (?, ?, ?, ?)`,
			image.ReviewID, image.UserID, image.ImageURL, now,
		)
		if err != nil {
			return fmt.Errorf("add review image: %w", translate(err))
		}
		id, err := result.LastInsertId()
		if err != nil {
			return fmt.Errorf("add review image: %w", err)
		}
		image.ID = id
		image.CreatedAt = now
		return nil
	})
}
