package discord

import (
	"context"
	"errors"
	"fmt"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"github.com/JulianoPassing/scc-tickets/internal/config"
)

// ErrNotConfigured is returned when the bot token is absent.
var ErrNotConfigured = errors.New("discord bot token not configured")

// Client wraps the discordgo REST session. The gateway is never opened; every
// call goes over plain REST with a bounded context.
type Client struct {
	session      *discordgo.Session
	guildID      string
	brokerRoleID string
	logger       *zap.Logger
}

// NewClient builds a REST-only Discord client. Returns a disabled client when
// no bot token is configured; calls then fail with ErrNotConfigured.
func NewClient(cfg config.DiscordConfig, logger *zap.Logger) (*Client, error) {
	c := &Client{guildID: cfg.GuildID, brokerRoleID: cfg.BrokerRoleID, logger: logger}
	if cfg.BotToken == "" {
		logger.Warn("DISCORD_BOT_TOKEN not configured; DMs and role checks disabled")
		return c, nil
	}
	session, err := discordgo.New("Bot " + cfg.BotToken)
	if err != nil {
		return nil, fmt.Errorf("create discord session: %w", err)
	}
	session.Client.Timeout = cfg.APITimeout()
	c.session = session
	return c, nil
}

// SendDM opens (or reuses) the DM channel with the user and sends an embed.
func (c *Client) SendDM(ctx context.Context, discordUserID string, embed *discordgo.MessageEmbed) error {
	if c.session == nil {
		return ErrNotConfigured
	}
	channel, err := c.session.UserChannelCreate(discordUserID, discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("create dm channel: %w", err)
	}
	if _, err := c.session.ChannelMessageSendEmbed(channel.ID, embed, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("send dm: %w", err)
	}
	return nil
}

// GuildMember fetches the member record for the configured guild.
func (c *Client) GuildMember(ctx context.Context, discordUserID string) (*discordgo.Member, error) {
	if c.session == nil {
		return nil, ErrNotConfigured
	}
	member, err := c.session.GuildMember(c.guildID, discordUserID, discordgo.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("fetch guild member: %w", err)
	}
	return member, nil
}

// HasBrokerRole reports whether the guild member holds the broker role. This
// is the live check gating the HOUSING category for non-exempt staff.
func (c *Client) HasBrokerRole(ctx context.Context, discordUserID string) (bool, error) {
	if c.brokerRoleID == "" {
		return false, nil
	}
	member, err := c.GuildMember(ctx, discordUserID)
	if err != nil {
		return false, err
	}
	for _, roleID := range member.Roles {
		if roleID == c.brokerRoleID {
			return true, nil
		}
	}
	return false, nil
}
