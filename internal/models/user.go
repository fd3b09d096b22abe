package models

// Principal is the caller identity taken from a verified session token issued
// by the external auth provider.
type Principal struct {
	UserID        string `json:"id"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
}
