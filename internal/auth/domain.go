package auth

// User represents the credentials of an operator account.
type User struct {
	ID           int64
	Login        string
	Email        string
	PasswordHash string
}
