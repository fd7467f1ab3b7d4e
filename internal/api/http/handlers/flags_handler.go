package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/JulianoPassing/scc-tickets/internal/api/dto"
	"github.com/JulianoPassing/scc-tickets/internal/domain"
	"github.com/JulianoPassing/scc-tickets/internal/repository"
	"github.com/JulianoPassing/scc-tickets/internal/service"
	apperrors "github.com/JulianoPassing/scc-tickets/pkg/util"
)

// FlagsHandler manages escalation flags.
type FlagsHandler struct {
	service *service.FlagService
}

// NewFlagsHandler constructs handler.
func NewFlagsHandler(flagService *service.FlagService) *FlagsHandler {
	return &FlagsHandler{service: flagService}
}

// FlagTicket POST /admin/tickets/:id/flags.
func (h *FlagsHandler) FlagTicket(c *fiber.Ctx) error {
	staff, err := requireStaff(c)
	if err != nil {
		return err
	}
	var req dto.FlagTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if len(req.Roles) == 0 {
		return apperrors.NewValidationError("roles required", nil)
	}
	flags, err := h.service.FlagToRoles(c.Context(), staff, c.Params("id"), req.Roles, req.Message)
	if err != nil {
		return err
	}
	items := make([]dto.FlagResponse, 0, len(flags))
	for i := range flags {
		items = append(items, flagResponse(&flags[i]))
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": items})
}

// ListFlags GET /admin/tickets/:id/flags.
func (h *FlagsHandler) ListFlags(c *fiber.Ctx) error {
	staff, err := requireStaff(c)
	if err != nil {
		return err
	}
	flags, err := h.service.ListTicketFlags(c.Context(), staff, c.Params("id"))
	if err != nil {
		return err
	}
	items := make([]dto.FlagResponse, 0, len(flags))
	for i := range flags {
		items = append(items, flagResponse(&flags[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// ResolveMine POST /admin/tickets/:id/flags/resolve clears the flag aimed at
// the caller's role. Resolving with no flag present is fine.
func (h *FlagsHandler) ResolveMine(c *fiber.Ctx) error {
	staff, err := requireStaff(c)
	if err != nil {
		return err
	}
	resolved, err := h.service.ResolveMine(c.Context(), staff, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"resolved": resolved}})
}

// ListFlagged GET /admin/flagged is the caller's escalation queue.
func (h *FlagsHandler) ListFlagged(c *fiber.Ctx) error {
	staff, err := requireStaff(c)
	if err != nil {
		return err
	}
	entries, err := h.service.ListFlaggedForRole(c.Context(), staff)
	if err != nil {
		return err
	}
	items := make([]dto.FlaggedTicketResponse, 0, len(entries))
	for i := range entries {
		items = append(items, flaggedTicketResponse(&entries[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

func flagResponse(flag *domain.TicketFlag) dto.FlagResponse {
	return dto.FlagResponse{
		ID:            flag.ID,
		TicketID:      flag.TicketID,
		FlaggedToRole: flag.FlaggedToRole,
		FlaggedByName: flag.FlaggedByName,
		FlaggedByRole: flag.FlaggedByRole,
		Message:       flag.Message,
		Resolved:      flag.Resolved,
		ResolvedAt:    flag.ResolvedAt,
		CreatedAt:     flag.CreatedAt,
	}
}

func flaggedTicketResponse(entry *repository.FlagWithTicket) dto.FlaggedTicketResponse {
	return dto.FlaggedTicketResponse{
		Flag:      flagResponse(&entry.Flag),
		Ticket:    ticketSummary(&entry.Ticket),
		OwnerName: entry.OwnerName,
	}
}
