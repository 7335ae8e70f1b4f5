package models

// AuthResponse is returned by register, login and demo-login.
type AuthResponse struct {
	Token string `json:"access_token"`
	User  *User  `json:"user"`
}
