package billing

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/ovaphlow/pitchfork/service-voidsight/internal/billing/entity"
)

var (
	ErrInvalidPrice    = errors.New("invalid price")
	ErrBadSignature    = errors.New("invalid webhook signature")
	ErrNoCustomer      = errors.New("no user for customer")
	ErrMalformedEvent  = errors.New("malformed webhook event")
	ErrAccountNotFound = errors.New("user not found")
	ErrBillingDisabled = errors.New("billing is not configured")
)

// Store is the subset of the account repository the service needs.
type Store interface {
	Get(ctx context.Context, discordID string) (*entity.Account, error)
	SetCustomer(ctx context.Context, discordID, customerID string) error
	SetPremiumByCustomer(ctx context.Context, customerID string, premium bool, since *time.Time) (int64, error)
}

// Service runs premium checkout and applies subscription events.
type Service struct {
	repo      Store
	gateway   Gateway
	prices    []string
	publicURL string
	now       func() time.Time
}

func NewService(repo Store, gateway Gateway, prices []string, publicURL string) *Service {
	return &Service{
		repo:      repo,
		gateway:   gateway,
		prices:    prices,
		publicURL: strings.TrimRight(publicURL, "/"),
		now:       time.Now,
	}
}

// Plans returns the price ids a checkout may be opened for.
func (s *Service) Plans() []string {
	return slices.Clone(s.prices)
}

// Checkout opens a subscription checkout for discordID and returns its URL.
// The Stripe customer is created on first use and remembered.
func (s *Service) Checkout(ctx context.Context, discordID, priceID string) (string, error) {
	if s.gateway == nil {
		return "", ErrBillingDisabled
	}
	if priceID == "" || !slices.Contains(s.prices, priceID) {
		return "", ErrInvalidPrice
	}
	acct, err := s.repo.Get(ctx, discordID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrAccountNotFound
		}
		return "", fmt.Errorf("load account: %w", err)
	}

	var customerID string
	if acct.StripeCustomerID != nil && *acct.StripeCustomerID != "" {
		customerID = *acct.StripeCustomerID
	} else {
		customerID, err = s.gateway.CreateCustomer(ctx, discordID, acct.DiscordName)
		if err != nil {
			return "", err
		}
		if err := s.repo.SetCustomer(ctx, discordID, customerID); err != nil {
			return "", fmt.Errorf("store customer: %w", err)
		}
	}

	return s.gateway.CreateCheckout(ctx, entity.CheckoutRequest{
		CustomerID: customerID,
		PriceID:    priceID,
		Reference:  discordID,
		SuccessURL: s.publicURL + "/dashboard?upgraded=true",
		CancelURL:  s.publicURL + "/dashboard",
	})
}

// HandleWebhook verifies and applies one provider event. Event types other
// than checkout completion and subscription deletion are acknowledged and
// ignored.
func (s *Service) HandleWebhook(ctx context.Context, payload []byte, signature string) (*entity.Event, error) {
	if s.gateway == nil {
		return nil, ErrBillingDisabled
	}
	ev, err := s.gateway.ParseEvent(payload, signature)
	if err != nil {
		return ev, err
	}

	var (
		premium bool
		since   *time.Time
	)
	switch ev.Type {
	case entity.EventCheckoutCompleted:
		now := s.now().UTC()
		premium, since = true, &now
	case entity.EventSubscriptionDeleted:
		premium = false
	default:
		return ev, nil
	}

	if ev.CustomerID == "" {
		return ev, ErrNoCustomer
	}
	n, err := s.repo.SetPremiumByCustomer(ctx, ev.CustomerID, premium, since)
	if err != nil {
		return ev, fmt.Errorf("set premium: %w", err)
	}
	if n == 0 {
		return ev, ErrNoCustomer
	}
	return ev, nil
}
