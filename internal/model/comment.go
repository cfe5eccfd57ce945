package model

import "time"

// Comment models a row of the `comments` table. UserID references
// users.id; the foreign key guarantees every comment has an author.
type Comment struct {
    ID        uint64    `json:"id"`
    Content   string    `json:"content"`
    UserID    uint64    `json:"user_id"`
    CreatedAt time.Time `json:"created_at"`
}

// CommentAuthor is the subset of the author exposed next to a comment.
type CommentAuthor struct {
    Email string `json:"email"`
}

// CommentWithAuthor is a comment joined with its author's email, as
// returned by the public listing.
type CommentWithAuthor struct {
    Comment
    User CommentAuthor `json:"user"`
}
