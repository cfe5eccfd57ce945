package model

import "time"

// Contact is a message left through the public contact form. It is not
// linked to any user.
type Contact struct {
    ID        uint64    `json:"id"`
    Name      string    `json:"name"`
    Email     string    `json:"email"`
    Message   string    `json:"message"`
    CreatedAt time.Time `json:"created_at"`
}
