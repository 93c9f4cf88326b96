package entity

import "time"

// Account is the billing view of a users row.
type Account struct {
	DiscordID        string     `db:"discord_id" json:"discordId"`
	DiscordName      string     `db:"discord_name" json:"discordName"`
	StripeCustomerID *string    `db:"stripe_customer_id" json:"-"`
	Premium          bool       `db:"premium" json:"premium"`
	PremiumSince     *time.Time `db:"premium_since" json:"premiumSince,omitempty"`
}

// Event is a verified billing event reduced to what the service acts on.
type Event struct {
	ID         string
	Type       string
	CustomerID string
}

const (
	EventCheckoutCompleted   = "checkout.session.completed"
	EventSubscriptionDeleted = "customer.subscription.deleted"
)

// CheckoutRequest describes a hosted checkout to open for a customer.
type CheckoutRequest struct {
	CustomerID string
	PriceID    string
	Reference  string
	SuccessURL string
	CancelURL  string
}
