package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"

	"github.com/JulianoPassing/scc-tickets/internal/domain"
	"github.com/JulianoPassing/scc-tickets/internal/repository"
	apperrors "github.com/JulianoPassing/scc-tickets/pkg/util"
)

const principalKey = "auth_principal"

// Cookie names for the two session kinds.
const (
	UserCookie  = "session_token"
	StaffCookie = "admin_token"
)

// Principal represents the authenticated caller.
type Principal struct {
	SubjectType domain.SubjectType
	User        *domain.User
	Staff       *domain.Staff
}

// AuthMiddleware validates session tokens and loads principals. Staff
// identities come in two flavors: database rows (username+password login) and
// ephemeral Discord-derived staff whose role lives only in the token claims.
type AuthMiddleware struct {
	tokens *TokenManager
	users  repository.UserRepository
	staff  repository.StaffRepository
}

// NewAuthMiddleware constructs middleware.
func NewAuthMiddleware(tokens *TokenManager, users repository.UserRepository, staff repository.StaffRepository) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens, users: users, staff: staff}
}

// Handle enforces authentication for protected routes.
func (m *AuthMiddleware) Handle(c *fiber.Ctx) error {
	tokenStr := extractToken(c)
	if tokenStr == "" {
		return apperrors.NewUnauthorized("missing credentials")
	}

	claims, err := m.tokens.ParseToken(tokenStr)
	if err != nil {
		return apperrors.NewUnauthorized("invalid or expired token")
	}

	principal := &Principal{SubjectType: claims.Subject}

	switch claims.Subject {
	case domain.SubjectTypeUser:
		user, err := m.users.GetByID(c.Context(), claims.RegisteredClaims.Subject)
		if err != nil {
			if err == pgx.ErrNoRows {
				return apperrors.NewUnauthorized("user not found")
			}
			return apperrors.MapError(err)
		}
		principal.User = user
	case domain.SubjectTypeStaff:
		staff, err := m.resolveStaff(c, claims)
		if err != nil {
			return err
		}
		principal.Staff = staff
	default:
		return apperrors.NewUnauthorized("unknown subject")
	}

	c.Locals(principalKey, principal)
	return c.Next()
}

// resolveStaff loads a database staff row, or rebuilds an ephemeral
// Discord-derived staff record from the token claims.
func (m *AuthMiddleware) resolveStaff(c *fiber.Ctx, claims *Claims) (*domain.Staff, error) {
	subjectID := claims.RegisteredClaims.Subject

	if claims.DiscordID != "" && claims.DiscordID == subjectID {
		if claims.Role == nil || !claims.Role.Valid() {
			return nil, apperrors.NewUnauthorized("invalid staff role")
		}
		discordID := claims.DiscordID
		staff := &domain.Staff{
			ID:        subjectID,
			Username:  claims.Username,
			Name:      claims.Name,
			Role:      *claims.Role,
			DiscordID: &discordID,
			Active:    true,
		}
		if claims.Avatar != "" {
			avatar := claims.Avatar
			staff.Avatar = &avatar
		}
		return staff, nil
	}

	staff, err := m.staff.GetByID(c.Context(), subjectID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NewUnauthorized("staff not found")
		}
		return nil, apperrors.MapError(err)
	}
	if !staff.Active {
		return nil, apperrors.NewUnauthorized("staff inactive")
	}
	return staff, nil
}

func extractToken(c *fiber.Ctx) string {
	if authHeader := c.Get("Authorization"); authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return parts[1]
		}
	}
	if cookie := c.Cookies(StaffCookie); cookie != "" {
		return cookie
	}
	return c.Cookies(UserCookie)
}

// PrincipalFromContext retrieves the authenticated entity.
func PrincipalFromContext(c *fiber.Ctx) (*Principal, bool) {
	val := c.Locals(principalKey)
	if val == nil {
		return nil, false
	}
	principal, ok := val.(*Principal)
	return principal, ok
}
