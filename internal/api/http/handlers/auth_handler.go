package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/JulianoPassing/scc-tickets/internal/api/dto"
	"github.com/JulianoPassing/scc-tickets/internal/auth"
	"github.com/JulianoPassing/scc-tickets/internal/config"
	"github.com/JulianoPassing/scc-tickets/internal/domain"
	"github.com/JulianoPassing/scc-tickets/internal/service"
	apperrors "github.com/JulianoPassing/scc-tickets/pkg/util"
)

const (
	userStateCookie  = "oauth_state"
	staffStateCookie = "admin_oauth_state"
	stateTTL         = 10 * time.Minute
)

// AuthHandler serves every login flow and session inspection endpoint.
type AuthHandler struct {
	service *service.AuthService
	auth    config.AuthConfig
	baseURL string
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService *service.AuthService, authCfg config.AuthConfig, baseURL string) *AuthHandler {
	return &AuthHandler{service: authService, auth: authCfg, baseURL: baseURL}
}

// UserLogin GET /auth/discord/login.
func (h *AuthHandler) UserLogin(c *fiber.Ctx) error {
	state := uuid.NewString()
	h.setStateCookie(c, userStateCookie, state)
	return c.Redirect(h.service.UserOAuthURL(state), fiber.StatusTemporaryRedirect)
}

// UserCallback GET /auth/discord/callback.
func (h *AuthHandler) UserCallback(c *fiber.Ctx) error {
	if err := h.checkState(c, userStateCookie); err != nil {
		return err
	}
	code := c.Query("code")
	if code == "" {
		return apperrors.NewValidationError("missing authorization code", nil)
	}
	_, session, err := h.service.UserOAuthCallback(c.Context(), code)
	if err != nil {
		return err
	}
	h.setSessionCookie(c, auth.UserCookie, session)
	return c.Redirect(h.baseURL+"/tickets", fiber.StatusFound)
}

// StaffLogin POST /admin/login.
func (h *AuthHandler) StaffLogin(c *fiber.Ctx) error {
	var req dto.StaffLoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Username == "" || req.Password == "" {
		return apperrors.NewValidationError("username and password required", nil)
	}
	staff, session, err := h.service.LoginStaff(c.Context(), req.Username, req.Password)
	if err != nil {
		return err
	}
	h.setSessionCookie(c, auth.StaffCookie, session)
	return c.JSON(fiber.Map{"data": staffResponse(staff)})
}

// StaffDiscordLogin GET /admin/discord/login.
func (h *AuthHandler) StaffDiscordLogin(c *fiber.Ctx) error {
	state := uuid.NewString()
	h.setStateCookie(c, staffStateCookie, state)
	return c.Redirect(h.service.StaffOAuthURL(state), fiber.StatusTemporaryRedirect)
}

// StaffDiscordCallback GET /admin/discord/callback.
func (h *AuthHandler) StaffDiscordCallback(c *fiber.Ctx) error {
	if err := h.checkState(c, staffStateCookie); err != nil {
		return err
	}
	code := c.Query("code")
	if code == "" {
		return apperrors.NewValidationError("missing authorization code", nil)
	}
	_, session, err := h.service.StaffOAuthCallback(c.Context(), code)
	if err != nil {
		return err
	}
	h.setSessionCookie(c, auth.StaffCookie, session)
	return c.Redirect(h.baseURL+"/admin", fiber.StatusFound)
}

// Me GET /auth/me.
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("not authenticated")
	}
	switch {
	case principal.User != nil:
		return c.JSON(fiber.Map{"data": fiber.Map{"type": domain.SubjectTypeUser, "user": userResponse(principal.User)}})
	case principal.Staff != nil:
		return c.JSON(fiber.Map{"data": fiber.Map{"type": domain.SubjectTypeStaff, "staff": staffResponse(principal.Staff)}})
	}
	return apperrors.NewUnauthorized("not authenticated")
}

// Logout POST /auth/logout clears both session cookies.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	h.clearCookie(c, auth.UserCookie)
	h.clearCookie(c, auth.StaffCookie)
	return c.JSON(fiber.Map{"data": fiber.Map{"logged_out": true}})
}

func (h *AuthHandler) setStateCookie(c *fiber.Ctx, name, state string) {
	c.Cookie(&fiber.Cookie{
		Name:     name,
		Value:    state,
		Expires:  time.Now().Add(stateTTL),
		HTTPOnly: true,
		Secure:   h.auth.CookieSecure,
		SameSite: fiber.CookieSameSiteLaxMode,
		Path:     "/",
	})
}

func (h *AuthHandler) checkState(c *fiber.Ctx, name string) error {
	expected := c.Cookies(name)
	if expected == "" || c.Query("state") != expected {
		return apperrors.NewUnauthorized("invalid oauth state")
	}
	h.clearCookie(c, name)
	return nil
}

func (h *AuthHandler) setSessionCookie(c *fiber.Ctx, name string, session *service.Session) {
	c.Cookie(&fiber.Cookie{
		Name:     name,
		Value:    session.Token,
		Expires:  session.ExpiresAt,
		HTTPOnly: true,
		Secure:   h.auth.CookieSecure,
		SameSite: fiber.CookieSameSiteLaxMode,
		Path:     "/",
	})
}

func (h *AuthHandler) clearCookie(c *fiber.Ctx, name string) {
	c.Cookie(&fiber.Cookie{
		Name:     name,
		Value:    "",
		Expires:  time.Now().Add(-time.Hour),
		HTTPOnly: true,
		Secure:   h.auth.CookieSecure,
		SameSite: fiber.CookieSameSiteLaxMode,
		Path:     "/",
	})
}

func userResponse(user *domain.User) dto.UserResponse {
	return dto.UserResponse{
		ID:          user.ID,
		DiscordID:   user.DiscordID,
		Username:    user.Username,
		DisplayName: user.Name(),
		Avatar:      user.Avatar,
	}
}

func staffResponse(staff *domain.Staff) dto.StaffResponse {
	return dto.StaffResponse{
		ID:        staff.ID,
		Username:  staff.Username,
		Name:      staff.Name,
		Role:      staff.Role,
		RoleLabel: staff.Role.Label(),
		Avatar:    staff.Avatar,
	}
}
