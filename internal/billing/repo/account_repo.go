package repo

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/ovaphlow/pitchfork/service-voidsight/internal/billing/entity"
)

// AccountRepo reads and writes the billing columns of the users table.
type AccountRepo struct {
	db *sqlx.DB
}

func NewAccountRepo(db *sqlx.DB) *AccountRepo {
	return &AccountRepo{db: db}
}

// Get returns the account of discordID or sql.ErrNoRows.
func (r *AccountRepo) Get(ctx context.Context, discordID string) (*entity.Account, error) {
	const q = `SELECT discord_id, discord_name, stripe_customer_id, premium, premium_since
		FROM users WHERE discord_id=$1`
	var a entity.Account
	if err := r.db.GetContext(ctx, &a, q, discordID); err != nil {
		return nil, err
	}
	return &a, nil
}

// SetCustomer links a Stripe customer to the user.
func (r *AccountRepo) SetCustomer(ctx context.Context, discordID, customerID string) error {
	const q = `UPDATE users SET stripe_customer_id=$2, updated_at=NOW() WHERE discord_id=$1`
	_, err := r.db.ExecContext(ctx, q, discordID, customerID)
	return err
}

// SetPremiumByCustomer flips the premium flag of whichever user owns customerID.
// since is stored as premium_since; pass nil to clear it.
func (r *AccountRepo) SetPremiumByCustomer(ctx context.Context, customerID string, premium bool, since *time.Time) (int64, error) {
	const q = `UPDATE users SET premium=$2, premium_since=$3, updated_at=NOW() WHERE stripe_customer_id=$1`
	res, err := r.db.ExecContext(ctx, q, customerID, premium, since)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
