package database

import (
	"context"
	"fmt"
	"time"

	"roomstay/internal/models"
)

const userColumns = `id, first_name, last_name, email, username, created_at, updated_at`

func (db *DB) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	var u models.User
	err := db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id).Scan(
		&u.ID, &u.FirstName, &u.LastName, &u.Email, &u.Username, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("get user %d: %w", id, translate(err))
	}
	return &u, nil
}

func (db *DB) CreateUser(ctx context.Context, user *models.User) error {
	now := time.Now()
	result, err := db.ExecContext(ctx,
		`INSERT INTO users (first_name, last_name, email, username, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)`,
		user.FirstName, user.LastName, user.Email, user.Username, now, now,
	)
	if err != nil {
		return fmt.Errorf("create user: %w", translate(err))
	}
	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	user.ID = id
	user.CreatedAt = now
	user.UpdatedAt = now
	return nil
}

// UpsertUser writes user under its explicit id, used by seeding.
func (db *DB) UpsertUser(ctx context.Context, user *models.User) error {
	now := time.Now()
	_, err := db.ExecContext(ctx, `
        INSERT INTO users (id, first_name, last_name, email, username, created_at, updated_at)
        VALUES (?, ?, ?, ?, ?, ?, ?)
        ON CONFLICT(id) DO UPDATE SET
            first_name = excluded.first_name,
            last_name = excluded.last_name,
            email = excluded.email,
            username = excluded.username,
            updated_at = excluded.updated_at`,
		user.ID, user.FirstName, user.LastName, user.Email, user.Username, now, now,
	)
	if err != nil {
		return fmt.Errorf("upsert user %d: %w", user.ID, translate(err))
	}
	return nil
}
