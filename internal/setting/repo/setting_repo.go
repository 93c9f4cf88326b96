package repo

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/lib/pq"

	"github.com/ovaphlow/pitchfork/service-voidsight/internal/setting/entity"
)

// Repo reads and writes the config column of the users table.
type Repo struct {
	db *sql.DB
}

// NewRepo constructs a new Repo with an existing *sql.DB connection.
func NewRepo(db *sql.DB) *Repo {
	return &Repo{db: db}
}

// Load returns the stored document with the role and subscription state of
// the same row, or sql.ErrNoRows.
func (r *Repo) Load(ctx context.Context, discordID string) (*entity.State, error) {
	const q = `SELECT config, roles, premium FROM users WHERE discord_id = $1`
	var (
		raw     []byte
		roles   pq.StringArray
		premium bool
	)
	if err := r.db.QueryRowContext(ctx, q, discordID).Scan(&raw, &roles, &premium); err != nil {
		return nil, err
	}
	doc := entity.Document{}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &doc); err != nil {
			return nil, fmt.Errorf("decode config: %w", err)
		}
	}
	if roles == nil {
		roles = pq.StringArray{}
	}
	return &entity.State{Config: doc, Roles: []string(roles), Premium: premium}, nil
}

// Save replaces the stored document. It returns sql.ErrNoRows when the user
// row does not exist.
func (r *Repo) Save(ctx context.Context, discordID string, doc entity.Document) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	const q = `UPDATE users SET config = CAST($2 AS jsonb), updated_at = NOW() WHERE discord_id = $1`
	res, err := r.db.ExecContext(ctx, q, discordID, string(raw))
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
