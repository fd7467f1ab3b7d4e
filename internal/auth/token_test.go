package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JulianoPassing/scc-tickets/internal/domain"
)

func TestUserTokenRoundTrip(t *testing.T) {
	tm := NewTokenManager("test-secret", time.Hour)
	user := &domain.User{ID: "user-1", DiscordID: "111222333", Username: "driver", DisplayName: "Fast Driver"}

	token, expiresAt, err := tm.GenerateUserToken(user)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, 5*time.Second)

	claims, err := tm.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, domain.SubjectTypeUser, claims.Subject)
	assert.Equal(t, "user-1", claims.RegisteredClaims.Subject)
	assert.Equal(t, "111222333", claims.DiscordID)
	assert.Nil(t, claims.Role)
}

func TestStaffTokenCarriesRoleAndIdentity(t *testing.T) {
	tm := NewTokenManager("test-secret", time.Hour)
	discordID := "444555666"
	staff := &domain.Staff{
		ID:        discordID,
		Username:  "mod",
		Name:      "The Moderator",
		Role:      domain.StaffRoleModerator,
		DiscordID: &discordID,
	}

	token, _, err := tm.GenerateStaffToken(staff)
	require.NoError(t, err)

	claims, err := tm.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, domain.SubjectTypeStaff, claims.Subject)
	require.NotNil(t, claims.Role)
	assert.Equal(t, domain.StaffRoleModerator, *claims.Role)
	// Discord-derived staff: the subject IS the discord id.
	assert.Equal(t, claims.DiscordID, claims.RegisteredClaims.Subject)
}

func TestExpiredTokenRejected(t *testing.T) {
	tm := NewTokenManager("test-secret", -time.Minute)
	user := &domain.User{ID: "user-1", DiscordID: "1", Username: "x"}

	token, _, err := tm.GenerateUserToken(user)
	require.NoError(t, err)

	_, err = tm.ParseToken(token)
	assert.Error(t, err)
}

func TestTamperedTokenRejected(t *testing.T) {
	tm := NewTokenManager("test-secret", time.Hour)
	user := &domain.User{ID: "user-1", DiscordID: "1", Username: "x"}

	token, _, err := tm.GenerateUserToken(user)
	require.NoError(t, err)

	tampered := token[:len(token)-4] + "AAAA"
	_, err = tm.ParseToken(tampered)
	assert.Error(t, err)
}

func TestWrongSecretRejected(t *testing.T) {
	issuer := NewTokenManager("secret-a", time.Hour)
	verifier := NewTokenManager("secret-b", time.Hour)
	user := &domain.User{ID: "user-1", DiscordID: "1", Username: "x"}

	token, _, err := issuer.GenerateUserToken(user)
	require.NoError(t, err)

	_, err = verifier.ParseToken(token)
	assert.Error(t, err)
}
