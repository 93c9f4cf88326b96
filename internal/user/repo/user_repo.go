package repo

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/ovaphlow/pitchfork/service-voidsight/internal/user/entity"
)

// UserRepo provides data access for users table using sqlx.
type UserRepo struct {
	db *sqlx.DB
}

func NewUserRepo(db *sqlx.DB) *UserRepo { return &UserRepo{db: db} }

// EnsureTable creates the users table if not exists (idempotent).
// This is a convenience for early development; prefer migrations in production.
func (r *UserRepo) EnsureTable(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS users (
  discord_id TEXT PRIMARY KEY,
  discord_name TEXT NOT NULL DEFAULT '',
  avatar TEXT,
  roles TEXT[] NOT NULL DEFAULT '{}',
  premium BOOLEAN NOT NULL DEFAULT false,
  premium_since TIMESTAMPTZ,
  stripe_customer_id TEXT UNIQUE,
  config JSONB NOT NULL DEFAULT '{}'::jsonb,
  synced_at TIMESTAMPTZ,
  created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
  updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_users_stripe_customer_id ON users(stripe_customer_id);
`
	_, err := r.db.ExecContext(ctx, ddl)
	return err
}

const selectColumns = `discord_id, discord_name, avatar, roles, premium, premium_since,
		stripe_customer_id, config, synced_at, created_at, updated_at`

// GetByDiscordID returns the user or sql.ErrNoRows.
func (r *UserRepo) GetByDiscordID(ctx context.Context, discordID string) (*entity.User, error) {
	q := `SELECT ` + selectColumns + ` FROM users WHERE discord_id=$1`
	var u entity.User
	if err := r.db.GetContext(ctx, &u, q, discordID); err != nil {
		return nil, err
	}
	return &u, nil
}

// Create inserts a new user row with the given roles and configuration document.
func (r *UserRepo) Create(ctx context.Context, u *entity.User) error {
	const q = `INSERT INTO users (discord_id, discord_name, avatar, roles, config)
		VALUES (:discord_id, :discord_name, :avatar, :roles, CAST(:config AS jsonb))`
	params := map[string]any{
		"discord_id":   u.DiscordID,
		"discord_name": u.DiscordName,
		"avatar":       u.Avatar,
		"roles":        pq.StringArray(nonNil(u.Roles)),
		"config":       string(rawOrEmpty(u.Config)),
	}
	_, err := r.db.NamedExecContext(ctx, q, params)
	return err
}

// UpdateProfile refreshes the display fields supplied by the identity provider.
func (r *UserRepo) UpdateProfile(ctx context.Context, discordID, name string, avatar *string) error {
	const q = `UPDATE users SET discord_name=$2, avatar=$3, updated_at=NOW() WHERE discord_id=$1`
	_, err := r.db.ExecContext(ctx, q, discordID, name, avatar)
	return err
}

// UpdateRoles replaces the role list of an existing user. Unknown ids affect no rows.
func (r *UserRepo) UpdateRoles(ctx context.Context, discordID string, roles []string, syncedAt time.Time) (int64, error) {
	const q = `UPDATE users SET roles=$2, synced_at=$3 WHERE discord_id=$1`
	res, err := r.db.ExecContext(ctx, q, discordID, pq.StringArray(nonNil(roles)), syncedAt)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// Roles returns only the role list, or sql.ErrNoRows.
func (r *UserRepo) Roles(ctx context.Context, discordID string) ([]string, error) {
	var roles pq.StringArray
	if err := r.db.GetContext(ctx, &roles, `SELECT roles FROM users WHERE discord_id=$1`, discordID); err != nil {
		return nil, err
	}
	return []string(roles), nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func rawOrEmpty(raw json.RawMessage) json.RawMessage {
	if len(raw) == 0 {
		return json.RawMessage("{}")
	}
	return raw
}
