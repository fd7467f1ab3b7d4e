package service

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/JulianoPassing/scc-tickets/internal/auth"
	"github.com/JulianoPassing/scc-tickets/internal/discord"
	"github.com/JulianoPassing/scc-tickets/internal/domain"
	"github.com/JulianoPassing/scc-tickets/internal/repository"
	apperrors "github.com/JulianoPassing/scc-tickets/pkg/util"
)

// AuthService handles every way into the system: Discord OAuth for end-users,
// and either Discord OAuth or username/password for staff.
type AuthService struct {
	users      repository.UserRepository
	staff      repository.StaffRepository
	tokens     *auth.TokenManager
	userOAuth  *discord.OAuthClient
	staffOAuth *discord.OAuthClient
	roleMap    discord.RoleMap
	guildID    string
}

// AuthDependencies bundles collaborators for the auth service.
type AuthDependencies struct {
	UserRepo   repository.UserRepository
	StaffRepo  repository.StaffRepository
	Tokens     *auth.TokenManager
	UserOAuth  *discord.OAuthClient
	StaffOAuth *discord.OAuthClient
	RoleMap    discord.RoleMap
	GuildID    string
}

// NewAuthService constructs the service.
func NewAuthService(deps AuthDependencies) *AuthService {
	return &AuthService{
		users:      deps.UserRepo,
		staff:      deps.StaffRepo,
		tokens:     deps.Tokens,
		userOAuth:  deps.UserOAuth,
		staffOAuth: deps.StaffOAuth,
		roleMap:    deps.RoleMap,
		guildID:    deps.GuildID,
	}
}

// Session is an issued token plus its expiry, for cookie construction.
type Session struct {
	Token     string
	ExpiresAt time.Time
}

// LoginStaff authenticates a database staff account. Every failure mode reads
// the same to the caller.
func (s *AuthService) LoginStaff(ctx context.Context, username, password string) (*domain.Staff, *Session, error) {
	invalid := apperrors.NewUnauthorized("invalid credentials")

	staff, err := s.staff.GetByUsername(ctx, username)
	if err != nil {
		if isNotFound(err) {
			return nil, nil, invalid
		}
		return nil, nil, err
	}
	if !staff.Active || staff.PasswordHash == nil {
		return nil, nil, invalid
	}
	if err := auth.ComparePassword(*staff.PasswordHash, password); err != nil {
		return nil, nil, invalid
	}

	token, expiresAt, err := s.tokens.GenerateStaffToken(staff)
	if err != nil {
		return nil, nil, err
	}
	return staff, &Session{Token: token, ExpiresAt: expiresAt}, nil
}

// SeedStaff ensures a password-backed staff account exists, creating it or
// refreshing its hash and role. Runs at boot for the bootstrap admin account.
func (s *AuthService) SeedStaff(ctx context.Context, username, password, name string, role domain.StaffRole, bcryptCost int) (*domain.Staff, error) {
	if username == "" || password == "" {
		return nil, apperrors.NewValidationError("username and password are required", nil)
	}
	if !role.Valid() {
		return nil, apperrors.NewValidationError("invalid staff role", map[string]any{"role": role})
	}
	if name == "" {
		name = username
	}

	hash, err := auth.HashPassword(password, bcryptCost)
	if err != nil {
		return nil, err
	}
	staff := &domain.Staff{
		Username:     username,
		Name:         name,
		Role:         role,
		PasswordHash: &hash,
		Active:       true,
	}
	if err := s.staff.Upsert(ctx, staff); err != nil {
		return nil, err
	}
	return staff, nil
}

// UserOAuthURL returns the Discord consent URL for end-user login.
func (s *AuthService) UserOAuthURL(state string) string {
	return s.userOAuth.AuthURL(state)
}

// UserOAuthCallback completes end-user login: the Discord identity is
// upserted locally and a session issued.
func (s *AuthService) UserOAuthCallback(ctx context.Context, code string) (*domain.User, *Session, error) {
	token, err := s.userOAuth.Exchange(ctx, code)
	if err != nil {
		return nil, nil, apperrors.NewUnauthorized("discord authorization failed")
	}
	identity, err := s.userOAuth.CurrentUser(ctx, token)
	if err != nil {
		return nil, nil, apperrors.NewUpstreamError("could not load discord profile", err)
	}

	user := &domain.User{
		DiscordID:   identity.ID,
		Username:    identity.Username,
		DisplayName: displayName(identity, nil),
	}
	if avatar := discord.AvatarURL(identity.ID, identity.Avatar); avatar != "" {
		user.Avatar = &avatar
	}
	if identity.Email != "" {
		email := identity.Email
		user.Email = &email
	}
	if err := s.users.UpsertByDiscordID(ctx, user); err != nil {
		return nil, nil, err
	}

	signed, expiresAt, err := s.tokens.GenerateUserToken(user)
	if err != nil {
		return nil, nil, err
	}
	return user, &Session{Token: signed, ExpiresAt: expiresAt}, nil
}

// StaffOAuthURL returns the Discord consent URL for staff login.
func (s *AuthService) StaffOAuthURL(state string) string {
	return s.staffOAuth.AuthURL(state)
}

// StaffOAuthCallback completes staff login via Discord. The member must be in
// the guild and hold at least one mapped staff role; no database row is
// created, the resolved identity lives entirely in the token.
func (s *AuthService) StaffOAuthCallback(ctx context.Context, code string) (*domain.Staff, *Session, error) {
	token, err := s.staffOAuth.Exchange(ctx, code)
	if err != nil {
		return nil, nil, apperrors.NewUnauthorized("discord authorization failed")
	}
	identity, err := s.staffOAuth.CurrentUser(ctx, token)
	if err != nil {
		return nil, nil, apperrors.NewUpstreamError("could not load discord profile", err)
	}
	member, err := s.staffOAuth.CurrentGuildMember(ctx, token, s.guildID)
	if err != nil {
		var notInGuild discord.NotInGuildError
		if errors.As(err, &notInGuild) {
			return nil, nil, apperrors.NewForbidden("you are not a member of the server")
		}
		return nil, nil, apperrors.NewUpstreamError("could not verify server membership", err)
	}

	role, ok := s.roleMap.HighestRole(member.Roles)
	if !ok {
		return nil, nil, apperrors.NewForbidden("no staff role on the server")
	}

	staff := &domain.Staff{
		ID:        identity.ID,
		Username:  identity.Username,
		Name:      displayName(identity, member),
		Role:      role,
		DiscordID: &identity.ID,
		Active:    true,
	}
	if avatar := discord.AvatarURL(identity.ID, identity.Avatar); avatar != "" {
		staff.Avatar = &avatar
	}

	signed, expiresAt, err := s.tokens.GenerateStaffToken(staff)
	if err != nil {
		return nil, nil, err
	}
	return staff, &Session{Token: signed, ExpiresAt: expiresAt}, nil
}

// displayName prefers the guild nickname, then the global display name, then
// the plain username.
func displayName(user *discordgo.User, member *discordgo.Member) string {
	if member != nil && member.Nick != "" {
		return member.Nick
	}
	if user.GlobalName != "" {
		return user.GlobalName
	}
	return user.Username
}
