package domain

import "time"

type User struct {
	ID                       string
	Email                    string
	Username                 string
	FirstName                string
	LastName                 string
	PhoneNumber              string
	PasswordHash             string
	IsEmailVerified          bool
	IsAdmin                  bool
	EmailVerificationToken   *string
	EmailVerificationExpires *time.Time
	CreatedAt                time.Time
	UpdatedAt                time.Time
}

// Principal is the authenticated identity the request layer hands to the
// core operations.
type Principal struct {
	UserID          string
	IsEmailVerified bool
	IsAdmin         bool
}
