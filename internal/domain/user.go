package domain

import "time"

// User represents a registered user of the gateway.
// PasswordHash is only populated on the login path and is never
// serialized to JSON.
type User struct {
	ID           string    `json:"id"         db:"id"`
	Email        string    `json:"email"      db:"email"`
	Name         string    `json:"name"       db:"name"`
	PasswordHash string    `json:"-"          db:"password_hash"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// Public returns a copy of the user with the password hash stripped,
// safe to hand back to clients.
func (u *User) Public() *User {
	c := *u
	c.PasswordHash = ""
	return &c
}
