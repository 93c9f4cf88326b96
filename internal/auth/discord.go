package auth

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"
	"golang.org/x/oauth2"

	"github.com/ovaphlow/pitchfork/service-voidsight/internal/user/entity"
)

// Provider is the social identity provider used for browser sign-in.
type Provider interface {
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (*entity.Profile, error)
}

var discordEndpoint = oauth2.Endpoint{
	AuthURL:   "https://discord.com/oauth2/authorize",
	TokenURL:  "https://discord.com/api/oauth2/token",
	AuthStyle: oauth2.AuthStyleInParams,
}

// DiscordProvider signs users in with Discord OAuth2 (scope identify).
type DiscordProvider struct {
	conf *oauth2.Config
}

func NewDiscordProvider(clientID, clientSecret, redirectURL string) *DiscordProvider {
	return &DiscordProvider{conf: &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		Endpoint:     discordEndpoint,
		RedirectURL:  redirectURL,
		Scopes:       []string{"identify"},
	}}
}

func (p *DiscordProvider) AuthCodeURL(state string) string {
	return p.conf.AuthCodeURL(state, oauth2.SetAuthURLParam("prompt", "none"))
}

// Exchange trades an authorization code for the signed-in user's profile.
func (p *DiscordProvider) Exchange(ctx context.Context, code string) (*entity.Profile, error) {
	tok, err := p.conf.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("exchange code: %w", err)
	}
	s, err := discordgo.New("Bearer " + tok.AccessToken)
	if err != nil {
		return nil, fmt.Errorf("discord session: %w", err)
	}
	u, err := s.User("@me", discordgo.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("fetch discord user: %w", err)
	}
	return profileFromUser(u), nil
}

func profileFromUser(u *discordgo.User) *entity.Profile {
	name := u.GlobalName
	if name == "" {
		name = u.Username
	}
	return &entity.Profile{
		DiscordID: u.ID,
		Name:      name,
		Avatar:    u.AvatarURL("128"),
	}
}
