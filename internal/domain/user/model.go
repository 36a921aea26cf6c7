package user

import "time"

// User maps to the users table. Users are never hard-deleted; deactivation
// flips is_active instead.
type User struct {
	ID           int64     `db:"id" json:"id"`
	Email        string    `db:"email" json:"email"`
	Name         string    `db:"name" json:"name"`
	PasswordHash string    `db:"password_hash" json:"-"`
	IsActive     bool      `db:"is_active" json:"is_active"`
	Roles        []string  `db:"roles" json:"roles"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}
