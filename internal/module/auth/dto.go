package auth

import "time"

// TokenRequest is the client-credentials exchange body.
type TokenRequest struct {
	ClientID     string `json:"client_id" binding:"required,max=64"`
	ClientSecret string `json:"client_secret" binding:"required,max=72"`
}

// TokenResponse carries a signed bearer token and its expiry.
type TokenResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}
