package discord

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/bwmarrin/discordgo"
	"golang.org/x/oauth2"
)

const apiBase = "https://discord.com/api/v10"

// Endpoint is Discord's OAuth2 endpoint pair.
var Endpoint = oauth2.Endpoint{
	AuthURL:  "https://discord.com/oauth2/authorize",
	TokenURL: "https://discord.com/api/oauth2/token",
}

// OAuthConfig carries the client credentials for one OAuth flow.
type OAuthConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	Scopes       []string
}

// OAuthClient wraps the Discord OAuth2 code flow plus the identity endpoints
// consumed with the resulting bearer token.
type OAuthClient struct {
	config *oauth2.Config
}

// NewOAuthClient builds a client for the given scopes.
func NewOAuthClient(cfg OAuthConfig) *OAuthClient {
	return &OAuthClient{
		config: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       cfg.Scopes,
			Endpoint:     Endpoint,
		},
	}
}

// AuthURL returns the consent page URL for the given CSRF state.
func (c *OAuthClient) AuthURL(state string) string {
	return c.config.AuthCodeURL(state)
}

// Exchange trades the authorization code for an access token.
func (c *OAuthClient) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	token, err := c.config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("exchange oauth code: %w", err)
	}
	return token, nil
}

// CurrentUser fetches the identity of the token holder.
func (c *OAuthClient) CurrentUser(ctx context.Context, token *oauth2.Token) (*discordgo.User, error) {
	var user discordgo.User
	if err := c.getJSON(ctx, token, apiBase+"/users/@me", &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// CurrentGuildMember fetches the token holder's membership in the guild,
// including their role IDs. A 404 means the user is not in the guild.
func (c *OAuthClient) CurrentGuildMember(ctx context.Context, token *oauth2.Token, guildID string) (*discordgo.Member, error) {
	var member discordgo.Member
	url := fmt.Sprintf("%s/users/@me/guilds/%s/member", apiBase, guildID)
	if err := c.getJSON(ctx, token, url, &member); err != nil {
		return nil, err
	}
	return &member, nil
}

// NotInGuildError marks a membership lookup that returned 404.
type NotInGuildError struct{}

func (NotInGuildError) Error() string { return "user is not a member of the guild" }

func (c *OAuthClient) getJSON(ctx context.Context, token *oauth2.Token, url string, out any) error {
	resp, err := c.config.Client(ctx, token).Get(url)
	if err != nil {
		return fmt.Errorf("discord api request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return NotInGuildError{}
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("discord api status %d: %s", resp.StatusCode, body)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode discord response: %w", err)
	}
	return nil
}

// AvatarURL builds the CDN URL for a user avatar hash, empty when unset.
func AvatarURL(userID, avatarHash string) string {
	if avatarHash == "" {
		return ""
	}
	return fmt.Sprintf("https://cdn.discordapp.com/avatars/%s/%s.png", userID, avatarHash)
}
