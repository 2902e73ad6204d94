package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
)

// UserRecord is the local view of a user. The primary key is the subject
// claim from the identity provider's ID token, not a locally generated ID.
type UserRecord struct {
	UserID      string    `json:"user_id"`
	Email       string    `json:"email"`
	ResumeCount int       `json:"resume_count"`
	CreatedAt   time.Time `json:"created_at"`
	LastLogin   time.Time `json:"last_login"`
}

// UpsertUser records a login. The row is created on first login; subsequent
// logins refresh the email and last_login timestamp.
func (db *DB) UpsertUser(ctx context.Context, userID, email string) (*UserRecord, error) {
	var u UserRecord
	err := db.pool.QueryRow(ctx,
		`INSERT INTO users (user_id, email, last_login)
		 VALUES ($1, $2, NOW())
		 ON CONFLICT (user_id) DO UPDATE SET email = $2, last_login = NOW()
		 RETURNING user_id, email, resume_count, created_at, last_login`,
		userID, email,
	).Scan(&u.UserID, &u.Email, &u.ResumeCount, &u.CreatedAt, &u.LastLogin)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert user: %w", err)
	}
	return &u, nil
}

// GetUser retrieves a user by provider subject. Returns nil without error
// when the user does not exist.
func (db *DB) GetUser(ctx context.Context, userID string) (*UserRecord, error) {
	var u UserRecord
	err := db.pool.QueryRow(ctx,
		`SELECT user_id, email, resume_count, created_at, last_login
		 FROM users WHERE user_id = $1`,
		userID,
	).Scan(&u.UserID, &u.Email, &u.ResumeCount, &u.CreatedAt, &u.LastLogin)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &u, nil
}
