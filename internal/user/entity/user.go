package entity

import (
	"encoding/json"
	"time"

	"github.com/lib/pq"
)

// User is a row of the users table, keyed by Discord id.
// Roles are written only by the bot sync, Premium only by billing webhooks
// and Config only by the configuration service.
type User struct {
	DiscordID        string          `db:"discord_id" json:"discordId"`
	DiscordName      string          `db:"discord_name" json:"discordName"`
	Avatar           *string         `db:"avatar" json:"avatar,omitempty"`
	Roles            pq.StringArray  `db:"roles" json:"roles"`
	Premium          bool            `db:"premium" json:"premium"`
	PremiumSince     *time.Time      `db:"premium_since" json:"premiumSince,omitempty"`
	StripeCustomerID *string         `db:"stripe_customer_id" json:"-"`
	Config           json.RawMessage `db:"config" json:"config"`
	SyncedAt         *time.Time      `db:"synced_at" json:"syncedAt,omitempty"`
	CreatedAt        time.Time       `db:"created_at" json:"createdAt"`
	UpdatedAt        time.Time       `db:"updated_at" json:"updatedAt"`
}

// Profile is what the identity provider tells us at sign-in.
type Profile struct {
	DiscordID string
	Name      string
	Avatar    string
}
