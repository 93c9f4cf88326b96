package user

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	settingentity "github.com/ovaphlow/pitchfork/service-voidsight/internal/setting/entity"
	"github.com/ovaphlow/pitchfork/service-voidsight/internal/user/entity"
)

var ErrUserNotFound = errors.New("user not found")

// Store is the subset of the users repository the service needs.
type Store interface {
	GetByDiscordID(ctx context.Context, discordID string) (*entity.User, error)
	Create(ctx context.Context, u *entity.User) error
	UpdateProfile(ctx context.Context, discordID, name string, avatar *string) error
	UpdateRoles(ctx context.Context, discordID string, roles []string, syncedAt time.Time) (int64, error)
	Roles(ctx context.Context, discordID string) ([]string, error)
}

// UserService owns the user directory lifecycle.
type UserService struct {
	repo Store
	now  func() time.Time
}

func NewUserService(r Store) *UserService {
	return &UserService{repo: r, now: time.Now}
}

// SignIn creates the directory row on first login and refreshes display
// fields on every later one. Roles and config are never touched here.
func (s *UserService) SignIn(ctx context.Context, p entity.Profile) (*entity.User, error) {
	if p.DiscordID == "" {
		return nil, errors.New("discord id required")
	}
	var avatar *string
	if p.Avatar != "" {
		a := p.Avatar
		avatar = &a
	}

	existing, err := s.repo.GetByDiscordID(ctx, p.DiscordID)
	switch {
	case err == nil:
		if err := s.repo.UpdateProfile(ctx, p.DiscordID, p.Name, avatar); err != nil {
			return nil, fmt.Errorf("update profile: %w", err)
		}
		existing.DiscordName = p.Name
		existing.Avatar = avatar
		return existing, nil
	case !errors.Is(err, sql.ErrNoRows):
		return nil, fmt.Errorf("load user: %w", err)
	}

	doc, err := json.Marshal(settingentity.DefaultDocument())
	if err != nil {
		return nil, err
	}
	u := &entity.User{
		DiscordID:   p.DiscordID,
		DiscordName: p.Name,
		Avatar:      avatar,
		Roles:       pq.StringArray{},
		Config:      doc,
		CreatedAt:   s.now(),
		UpdatedAt:   s.now(),
	}
	if err := s.repo.Create(ctx, u); err != nil {
		// a concurrent first login won the insert; fall back to the update path
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			if err := s.repo.UpdateProfile(ctx, p.DiscordID, p.Name, avatar); err != nil {
				return nil, fmt.Errorf("update profile: %w", err)
			}
			return s.Get(ctx, p.DiscordID)
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return u, nil
}

// Get returns the directory row for discordID.
func (s *UserService) Get(ctx context.Context, discordID string) (*entity.User, error) {
	u, err := s.repo.GetByDiscordID(ctx, discordID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return u, nil
}

// Roles returns the synced role list of discordID.
func (s *UserService) Roles(ctx context.Context, discordID string) ([]string, error) {
	roles, err := s.repo.Roles(ctx, discordID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return roles, nil
}

// SyncRoles replaces the role list of an existing user. It reports whether a
// row was updated; users are never created here.
func (s *UserService) SyncRoles(ctx context.Context, discordID string, roles []string) (bool, error) {
	if roles == nil {
		roles = []string{}
	}
	n, err := s.repo.UpdateRoles(ctx, discordID, roles, s.now().UTC())
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
