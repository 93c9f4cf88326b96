package repo

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/ovaphlow/pitchfork/service-voidsight/internal/token/entity"
)

// NOTE: expected table schema (Postgres):
// CREATE TABLE user_tokens (
//   token_hash TEXT PRIMARY KEY,
//   discord_id TEXT NOT NULL,
//   created_at TIMESTAMP WITH TIME ZONE NOT NULL
// );

type TokenRepo struct {
	db *sqlx.DB
}

func NewTokenRepo(db *sqlx.DB) *TokenRepo {
	return &TokenRepo{db: db}
}

func (r *TokenRepo) EnsureTable(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS user_tokens (
  token_hash TEXT PRIMARY KEY,
  discord_id TEXT NOT NULL,
  created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_user_tokens_discord_id ON user_tokens(discord_id);
`
	_, err := r.db.ExecContext(ctx, ddl)
	return err
}

// Replace deletes every token owned by t.DiscordID and inserts t, in one transaction.
func (r *TokenRepo) Replace(ctx context.Context, t entity.AccessToken) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM user_tokens WHERE discord_id = $1`, t.DiscordID); err != nil {
		return err
	}
	const insert = `INSERT INTO user_tokens (token_hash, discord_id, created_at) VALUES (:token_hash, :discord_id, :created_at)`
	if _, err := tx.NamedExecContext(ctx, insert, t); err != nil {
		return err
	}
	return tx.Commit()
}

// Get returns the token row for hash or sql.ErrNoRows.
func (r *TokenRepo) Get(ctx context.Context, hash string) (*entity.AccessToken, error) {
	var t entity.AccessToken
	const q = `SELECT token_hash, discord_id, created_at FROM user_tokens WHERE token_hash = $1`
	if err := r.db.GetContext(ctx, &t, q, hash); err != nil {
		return nil, err
	}
	return &t, nil
}
