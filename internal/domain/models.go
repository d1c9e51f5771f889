package domain

import "time"

// User is the account record backing the auth flow. SessionToken is
// non-nil exactly when IsLoggedIn is true; the users table carries a
// CHECK constraint for the same invariant.
type User struct {
	ID           string
	FullName     string
	Username     string
	Email        string
	IsActive     bool
	IsLoggedIn   bool
	SessionToken *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type UserWithPassword struct {
	User
	PasswordHash string
}

type Todo struct {
	ID          string
	UserID      string
	Title       string
	Description string
	IsCompleted bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Availability reports existence probes for signup form fields. A nil
// field means the probe was not requested.
type Availability struct {
	UsernameExists *bool
	EmailExists    *bool
}
