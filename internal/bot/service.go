package bot

import (
	"context"

	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-voidsight/pkg/utilities"
)

// RoleSyncer replaces a user's role list; it reports whether the user exists.
type RoleSyncer interface {
	SyncRoles(ctx context.Context, discordID string, roles []string) (bool, error)
}

// Member is one entry of a sync batch.
type Member struct {
	DiscordID string   `json:"discordId"`
	Roles     []string `json:"roles"`
}

// Report summarises one sync batch.
type Report struct {
	Received int
	Updated  int
	Skipped  int
	Failed   int
}

type Service struct {
	users  RoleSyncer
	logger *zap.SugaredLogger
}

func NewService(users RoleSyncer, logger *zap.SugaredLogger) *Service {
	return &Service{users: users, logger: logger}
}

// Sync applies each member independently. Entries with an invalid id are
// skipped; ids with no directory row change nothing. A failed update is
// logged and counted, and the batch carries on.
func (s *Service) Sync(ctx context.Context, members []Member) Report {
	rep := Report{Received: len(members)}
	for _, m := range members {
		if _, err := utilities.ParseDiscordID(m.DiscordID); err != nil {
			rep.Skipped++
			continue
		}
		ok, err := s.users.SyncRoles(ctx, m.DiscordID, m.Roles)
		if err != nil {
			rep.Failed++
			s.logger.Warnw("role sync failed", "discord_id", m.DiscordID, "err", err)
			continue
		}
		if ok {
			rep.Updated++
		}
	}
	s.logger.Infow("roles synced", "received", rep.Received, "updated", rep.Updated, "skipped", rep.Skipped, "failed", rep.Failed)
	return rep
}
