package user

import "time"

// User is an authenticated account. The password hash never leaves the
// service layer; views strip it before responses are built.
type User struct {
	ID           int64     `db:"id"`
	Email        string    `db:"email"`
	FullName     string    `db:"full_name"`
	PasswordHash string    `db:"password_hash"`
	CreatedAt    time.Time `db:"created_at"`
}
