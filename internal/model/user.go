package model

import "time"

// User represents an application user record as stored in the
// `users` table. Users are created on registration and never
// updated afterwards.
//
// Fields:
//  ID           – primary key identifier of the user.
//  Name         – display name given at registration.
//  Email        – unique, lower-cased email address.
//  PasswordHash – bcrypt hashed password; never serialized.
//  CreatedAt    – timestamp of creation.
type User struct {
    ID           uint64    `json:"id"`         // users.id
    Name         string    `json:"name"`       // users.name
    Email        string    `json:"email"`      // users.email
    PasswordHash string    `json:"-"`          // users.password_hash
    CreatedAt    time.Time `json:"created_at"` // users.created_at
}
