package admin

import "time"

// Config drives operator authentication.
type Config struct {
	Username     string
	PasswordHash string
	Secret       string
	TokenTTL     time.Duration
}

// Enabled reports whether an operator account is configured.
func (c Config) Enabled() bool {
	return c.Username != "" && c.PasswordHash != "" && c.Secret != ""
}

// LoginRequest captures operator credentials.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse returns the signed token.
type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Claims are the validated token contents.
type Claims struct {
	Username  string
	ExpiresAt time.Time
}
