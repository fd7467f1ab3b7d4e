package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/JulianoPassing/scc-tickets/internal/api/dto"
	"github.com/JulianoPassing/scc-tickets/internal/service"
)

// StaffHandler serves the staff directory.
type StaffHandler struct {
	service *service.StaffService
}

// NewStaffHandler constructs handler.
func NewStaffHandler(staffService *service.StaffService) *StaffHandler {
	return &StaffHandler{service: staffService}
}

// Directory GET /admin/staff lists active database staff accounts.
func (h *StaffHandler) Directory(c *fiber.Ctx) error {
	if _, err := requireStaff(c); err != nil {
		return err
	}
	members, err := h.service.Directory(c.Context())
	if err != nil {
		return err
	}
	items := make([]dto.StaffDirectoryEntry, 0, len(members))
	for _, member := range members {
		items = append(items, dto.StaffDirectoryEntry{
			ID:        member.ID,
			Name:      member.Name,
			Role:      member.Role,
			RoleLabel: member.Role.Label(),
			Avatar:    member.Avatar,
		})
	}
	return c.JSON(fiber.Map{"data": items})
}
