package users

import "errors"

var (
	// ErrUserNotFound is returned when a user is not found
	ErrUserNotFound = errors.New("user not found")

	// ErrEmailRegistered is returned when the email is already registered
	ErrEmailRegistered = errors.New("a user with this email already exists")

	// ErrMissingFields is returned when a required field is absent or blank
	ErrMissingFields = errors.New("please provide all required fields")

	// ErrWeakPassword is returned when the password is shorter than 8 characters
	ErrWeakPassword = errors.New("password must be at least 8 characters")

	// ErrInvalidCredentials is returned on a failed login
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrInvalidToken is returned for unknown or expired refresh tokens
	ErrInvalidToken = errors.New("invalid or expired token")
)
