package models

// User is a dashboard account. The bcrypt hash stays server-side.
type User struct {
	ID           int    `json:"id"`
	Username     string `json:"username"`
	PasswordHash string `json:"-"`
}
