package models

import "time"

// RevokedToken is an access token that must no longer be honoured even
// though its signature and expiry are still valid.
type RevokedToken struct {
	Token     string
	ExpiresAt time.Time
	CreatedAt time.Time
}
