package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/JulianoPassing/scc-tickets/internal/domain"
	apperrors "github.com/JulianoPassing/scc-tickets/pkg/util"
)

// RequireUser ensures an end-user is authenticated.
func RequireUser() fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok || principal.SubjectType != domain.SubjectTypeUser || principal.User == nil {
			return apperrors.NewForbidden("end-user session required")
		}
		return c.Next()
	}
}

// RequireStaff ensures a staff session; category-level authorization happens
// in the services against the permission table.
func RequireStaff() fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok || principal.SubjectType != domain.SubjectTypeStaff || principal.Staff == nil {
			return apperrors.NewForbidden("staff session required")
		}
		return c.Next()
	}
}
