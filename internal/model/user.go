package model

import "time"

// User is an end-user record created during registration. A user is created
// exactly once, atomically with the claim of exactly one API key, and is
// never mutated afterwards.
type User struct {
	ID        int64     `json:"id" db:"id"`
	Firstname string    `json:"firstname" db:"firstname"`
	Lastname  string    `json:"lastname" db:"lastname"`
	Email     string    `json:"email" db:"email"`
	StartDate time.Time `json:"start_date" db:"start_date"`
}
