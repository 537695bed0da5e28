package users

import (
	"errors"
	"time"
)

var (
	// ErrNotFound indicates no user matched the lookup.
	ErrNotFound = errors.New("users: not found")
	// ErrEmptyLogin is returned when the sanitized login is empty.
	ErrEmptyLogin = errors.New("users: login is empty after sanitizing")
	// ErrLoginExists is returned when the login is taken.
	ErrLoginExists = errors.New("users: login already exists")
	// ErrEmailExists is returned when the email is taken.
	ErrEmailExists = errors.New("users: email already exists")
	// ErrInvalidInput wraps field validation failures.
	ErrInvalidInput = errors.New("users: invalid input")
)

// User is an account that can author listings.
type User struct {
	ID          int64
	Login       string
	Email       string
	Nicename    string
	DisplayName string
	Registered  time.Time
}

// CreateUserInput describes a new account. Password is the plain text secret;
// only its bcrypt hash is stored. No notification is sent on creation.
type CreateUserInput struct {
	Login       string `validate:"required,max=60"`
	Email       string `validate:"required,email,max=100"`
	Password    string `validate:"required,min=8"`
	DisplayName string `validate:"max=250"`
	Role        string `validate:"required"`
}

// NewUserRecord is the row handed to the repository.
type NewUserRecord struct {
	Login        string
	Email        string
	PasswordHash string
	Nicename     string
	DisplayName  string
	Role         string
}
