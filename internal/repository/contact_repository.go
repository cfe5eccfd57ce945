package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/altera-oes/backend/internal/model"
)

// ContactRepo stores messages from the public contact form.
type ContactRepo struct {
	db *sql.DB
}

func NewContactRepo(db *sql.DB) *ContactRepo {
	return &ContactRepo{db: db}
}

// Create inserts c and populates its ID and CreatedAt.
func (r *ContactRepo) Create(ctx context.Context, c *model.Contact) error {
	const q = "INSERT INTO contacts (name, email, message, created_at) VALUES (?, ?, ?, ?)"
	now := time.Now().UTC().Truncate(time.Second)
	res, err := r.db.ExecContext(ctx, q, c.Name, c.Email, c.Message, now)
	if err != nil {
		return fmt.Errorf("insert contact: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("insert contact: %w", err)
	}
	c.ID = uint64(id)
	c.CreatedAt = now
	return nil
}
