package setting

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ovaphlow/pitchfork/service-voidsight/internal/identity"
	"github.com/ovaphlow/pitchfork/service-voidsight/internal/setting/entity"
)

// sentinel errors for common failure modes
var (
	ErrNotFound    = errors.New("not found")
	ErrInvalidBody = errors.New("invalid body")
)

// Store loads and persists configuration documents.
type Store interface {
	Load(ctx context.Context, discordID string) (*entity.State, error)
	Save(ctx context.Context, discordID string, doc entity.Document) error
}

// Service applies the configuration access policy on top of a Store.
type Service struct {
	repo       Store
	memberRole string
}

// NewService constructs a Service; memberRole is the role name that unlocks
// the gated keys.
func NewService(r Store, memberRole string) *Service {
	return &Service{repo: r, memberRole: memberRole}
}

// Result is a document together with the caller metadata.
type Result struct {
	Config entity.Document
	Meta   entity.Meta
}

func (s *Service) privileges(c *identity.Caller, st *entity.State) Privileges {
	return Privileges{Member: c.HasRole(s.memberRole), Premium: st.Premium}
}

func (s *Service) meta(c *identity.Caller, p Privileges) entity.Meta {
	roles := c.Roles
	if roles == nil {
		roles = []string{}
	}
	return entity.Meta{IsMember: p.Member, IsPremium: p.Premium, Roles: roles}
}

func (s *Service) load(ctx context.Context, discordID string) (*entity.State, error) {
	st, err := s.repo.Load(ctx, discordID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("load config: %w", err)
	}
	return st, nil
}

// Read returns the caller's document as the caller may currently see it.
func (s *Service) Read(ctx context.Context, c *identity.Caller) (*Result, error) {
	st, err := s.load(ctx, c.DiscordID)
	if err != nil {
		return nil, err
	}
	p := s.privileges(c, st)
	return &Result{Config: Project(st.Config, p), Meta: s.meta(c, p)}, nil
}

// Write merges the allowed part of incoming onto the stored document and
// persists the result. Resubmitting the same input yields the same document.
func (s *Service) Write(ctx context.Context, c *identity.Caller, incoming entity.Document) (*Result, error) {
	if incoming == nil {
		return nil, ErrInvalidBody
	}
	st, err := s.load(ctx, c.DiscordID)
	if err != nil {
		return nil, err
	}
	p := s.privileges(c, st)
	merged := Merge(st.Config, Sanitize(incoming, p))
	if err := s.repo.Save(ctx, c.DiscordID, merged); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("save config: %w", err)
	}
	return &Result{Config: Project(merged, p), Meta: s.meta(c, p)}, nil
}
