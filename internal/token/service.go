package token

import (
	"context"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/blake2b"

	"github.com/ovaphlow/pitchfork/service-voidsight/internal/token/entity"
	"github.com/ovaphlow/pitchfork/service-voidsight/pkg/utilities"
)

var ErrNotFound = errors.New("token not found")

// Store persists hashed bearer tokens.
type Store interface {
	Replace(ctx context.Context, t entity.AccessToken) error
	Get(ctx context.Context, hash string) (*entity.AccessToken, error)
}

// Service issues and resolves bearer tokens for the desktop client.
type Service struct {
	repo     Store
	now      func() time.Time
	generate func() string
}

func NewService(r Store) *Service {
	return &Service{repo: r, now: time.Now, generate: utilities.NewToken}
}

// Hash is the at-rest form of a token.
func Hash(token string) string {
	sum := blake2b.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// Generate issues a fresh token for discordID, invalidating any previous one.
// The plaintext is only ever returned here.
func (s *Service) Generate(ctx context.Context, discordID string) (string, error) {
	tok := s.generate()
	row := entity.AccessToken{TokenHash: Hash(tok), DiscordID: discordID, CreatedAt: s.now().UTC()}
	if err := s.repo.Replace(ctx, row); err != nil {
		return "", fmt.Errorf("store token: %w", err)
	}
	return tok, nil
}

// Resolve returns the owner of token, or ErrNotFound.
func (s *Service) Resolve(ctx context.Context, token string) (string, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return "", ErrNotFound
	}
	row, err := s.repo.Get(ctx, Hash(token))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("lookup token: %w", err)
	}
	return row.DiscordID, nil
}
