// Package queue defines message payloads exchanged over the message broker
// together with the publisher and the contact consumer.
package queue

// Queue names. The routing key equals the queue name on the default exchange.
const (
    ContactReceivedQueue = "contact.received"
    CommentCreatedQueue  = "comment.created"
)

// ContactReceivedEvent is published when a contact message has been stored.
// It carries the full message so consumers can notify staff without
// querying the primary database.
type ContactReceivedEvent struct {
    ContactID  uint64 `json:"contact_id"`
    Name       string `json:"name"`
    Email      string `json:"email"`
    Message    string `json:"message"`
    ReceivedAt string `json:"received_at"`
}

// CommentCreatedEvent is published after an authenticated user posted a comment.
type CommentCreatedEvent struct {
    CommentID uint64 `json:"comment_id"`
    UserID    uint64 `json:"user_id"`
    Email     string `json:"email"`
    Content   string `json:"content"`
    CreatedAt string `json:"created_at"`
}
