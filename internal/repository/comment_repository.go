package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/altera-oes/backend/internal/model"
)

// CommentRepo encapsulates queries on the comments table.
type CommentRepo struct {
	db *sql.DB
}

func NewCommentRepo(db *sql.DB) *CommentRepo {
	return &CommentRepo{db: db}
}

// Create inserts a comment owned by c.UserID. A user id without a matching
// users row is rejected by the foreign key and reported as ErrUnknownUser.
func (r *CommentRepo) Create(ctx context.Context, c *model.Comment) error {
	const q = "INSERT INTO comments (content, user_id, created_at) VALUES (?, ?, ?)"
	now := time.Now().UTC().Truncate(time.Second)
	res, err := r.db.ExecContext(ctx, q, c.Content, c.UserID, now)
	if err != nil {
		if isMySQLError(err, mysqlNoReferencedRow) {
			return ErrUnknownUser
		}
		return fmt.Errorf("insert comment: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("insert comment: %w", err)
	}
	c.ID = uint64(id)
	c.CreatedAt = now
	return nil
}

// ListWithAuthor returns every comment in insertion order together with
// its author's email.
func (r *CommentRepo) ListWithAuthor(ctx context.Context) ([]model.CommentWithAuthor, error) {
	const q = `SELECT c.id, c.content, c.user_id, c.created_at, u.email
FROM comments c
JOIN users u ON u.id = c.user_id
ORDER BY c.id`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	defer rows.Close()

	out := make([]model.CommentWithAuthor, 0)
	for rows.Next() {
		var c model.CommentWithAuthor
		if err := rows.Scan(&c.ID, &c.Content, &c.UserID, &c.CreatedAt, &c.User.Email); err != nil {
			return nil, fmt.Errorf("scan comment: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	return out, nil
}
