package entity

import "time"

// AccessToken maps a hashed bearer token to its owner. The plaintext is
// returned once at issuance and never stored.
type AccessToken struct {
	TokenHash string    `db:"token_hash"`
	DiscordID string    `db:"discord_id"`
	CreatedAt time.Time `db:"created_at"`
}
