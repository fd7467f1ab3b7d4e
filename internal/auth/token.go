package auth

import (
	"errors"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"

	"github.com/JulianoPassing/scc-tickets/internal/domain"
)

// TokenManager handles issuing and validating JWT session tokens.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenManager builds a new manager.
func NewTokenManager(secret string, ttl time.Duration) *TokenManager {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &TokenManager{secret: []byte(secret), ttl: ttl}
}

// Claims describes the JWT payload for both end-users and staff. Staff tokens
// carry the resolved role and display identity so Discord-derived staff need
// no database row.
type Claims struct {
	Subject   domain.SubjectType `json:"subject"`
	Role      *domain.StaffRole  `json:"role,omitempty"`
	Username  string             `json:"username,omitempty"`
	Name      string             `json:"name,omitempty"`
	DiscordID string             `json:"discord_id,omitempty"`
	Avatar    string             `json:"avatar,omitempty"`
	jwt.RegisteredClaims
}

// GenerateUserToken signs a token for an end-user session.
func (tm *TokenManager) GenerateUserToken(user *domain.User) (string, time.Time, error) {
	claims := &Claims{
		Subject:   domain.SubjectTypeUser,
		Username:  user.Username,
		Name:      user.Name(),
		DiscordID: user.DiscordID,
	}
	return tm.sign(user.ID, claims)
}

// GenerateStaffToken signs a role-bearing token for a staff session.
func (tm *TokenManager) GenerateStaffToken(staff *domain.Staff) (string, time.Time, error) {
	claims := &Claims{
		Subject:  domain.SubjectTypeStaff,
		Role:     &staff.Role,
		Username: staff.Username,
		Name:     staff.Name,
	}
	if staff.DiscordID != nil {
		claims.DiscordID = *staff.DiscordID
	}
	if staff.Avatar != nil {
		claims.Avatar = *staff.Avatar
	}
	return tm.sign(staff.ID, claims)
}

func (tm *TokenManager) sign(subjectID string, claims *Claims) (string, time.Time, error) {
	expiresAt := time.Now().Add(tm.ttl)
	claims.RegisteredClaims = jwt.RegisteredClaims{
		Subject:   subjectID,
		ExpiresAt: jwt.NewNumericDate(expiresAt),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(tm.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return tokenString, expiresAt, nil
}

// ParseToken validates and returns claims.
func (tm *TokenManager) ParseToken(tokenStr string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return tm.secret, nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, errors.New("invalid token claims")
	}
	return claims, nil
}
