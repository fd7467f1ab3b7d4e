package handlers

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/JulianoPassing/scc-tickets/internal/api/dto"
	"github.com/JulianoPassing/scc-tickets/internal/domain"
	"github.com/JulianoPassing/scc-tickets/internal/events"
	"github.com/JulianoPassing/scc-tickets/internal/service"
	apperrors "github.com/JulianoPassing/scc-tickets/pkg/util"
)

// StaffTicketsHandler manages the staff dashboard ticket endpoints.
type StaffTicketsHandler struct {
	tickets       *service.TicketService
	staff         *service.StaffService
	notifications *service.NotificationService
}

// NewStaffTicketsHandler constructs handler.
func NewStaffTicketsHandler(tickets *service.TicketService, staff *service.StaffService, notifications *service.NotificationService) *StaffTicketsHandler {
	return &StaffTicketsHandler{tickets: tickets, staff: staff, notifications: notifications}
}

// ListCategories GET /admin/categories returns only the categories the caller
// may currently act on.
func (h *StaffTicketsHandler) ListCategories(c *fiber.Ctx) error {
	staff, err := requireStaff(c)
	if err != nil {
		return err
	}
	infos := h.staff.CategoriesFor(c.Context(), staff)
	items := make([]dto.CategoryResponse, 0, len(infos))
	for _, info := range infos {
		items = append(items, categoryResponse(info))
	}
	return c.JSON(fiber.Map{"data": items})
}

// ListTickets GET /admin/tickets.
func (h *StaffTicketsHandler) ListTickets(c *fiber.Ctx) error {
	staff, err := requireStaff(c)
	if err != nil {
		return err
	}
	filter := parseStaffTicketQuery(c)
	tickets, err := h.tickets.ListStaffTickets(c.Context(), staff, filter)
	if err != nil {
		return err
	}
	items := make([]dto.TicketSummary, 0, len(tickets))
	for i := range tickets {
		items = append(items, ticketSummary(&tickets[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// GetTicket GET /admin/tickets/:id.
func (h *StaffTicketsHandler) GetTicket(c *fiber.Ctx) error {
	staff, err := requireStaff(c)
	if err != nil {
		return err
	}
	ticket, msgs, err := h.tickets.GetTicketForStaff(c.Context(), staff, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketDetail(ticket, msgs)})
}

// UpdateTicket PATCH /admin/tickets/:id applies the set fields in order:
// subject, status, category, self-assignment.
func (h *StaffTicketsHandler) UpdateTicket(c *fiber.Ctx) error {
	staff, err := requireStaff(c)
	if err != nil {
		return err
	}
	var req dto.UpdateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Subject == nil && req.Status == nil && req.Category == nil && req.AssignToSelf == nil {
		return apperrors.NewValidationError("nothing to update", nil)
	}

	ticketID := c.Params("id")
	var ticket *domain.Ticket
	if req.Subject != nil {
		if ticket, err = h.tickets.UpdateSubject(c.Context(), staff, ticketID, *req.Subject); err != nil {
			return err
		}
	}
	if req.Status != nil {
		if ticket, err = h.tickets.UpdateStatus(c.Context(), staff, ticketID, *req.Status); err != nil {
			return err
		}
	}
	if req.Category != nil {
		if ticket, err = h.tickets.ChangeCategory(c.Context(), staff, ticketID, *req.Category); err != nil {
			return err
		}
	}
	if req.AssignToSelf != nil {
		if *req.AssignToSelf {
			ticket, err = h.tickets.AssignToSelf(c.Context(), staff, ticketID)
		} else {
			ticket, err = h.tickets.Unassign(c.Context(), staff, ticketID)
		}
		if err != nil {
			return err
		}
	}
	if ticket == nil {
		return apperrors.NewValidationError("nothing to update", nil)
	}
	return c.JSON(fiber.Map{"data": ticketSummary(ticket)})
}

// CloseTicket POST /admin/tickets/:id/close.
func (h *StaffTicketsHandler) CloseTicket(c *fiber.Ctx) error {
	staff, err := requireStaff(c)
	if err != nil {
		return err
	}
	var req dto.CloseTicketRequest
	if err := c.BodyParser(&req); err != nil && len(c.Body()) > 0 {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	ticket, err := h.tickets.CloseTicket(c.Context(), staff, c.Params("id"), req.Reason)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketSummary(ticket)})
}

// AddMessage POST /admin/tickets/:id/messages.
func (h *StaffTicketsHandler) AddMessage(c *fiber.Ctx) error {
	staff, err := requireStaff(c)
	if err != nil {
		return err
	}
	var req dto.CreateMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	msg, err := h.tickets.AddStaffMessage(c.Context(), staff, c.Params("id"), req.Content, attachmentInputs(req.Attachments), req.NotifyUser)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": messageResponse(msg)})
}

// Notify POST /admin/tickets/:id/notify sends the owner a DM nudge. Unlike
// event-driven notifications, a delivery failure is reported to the caller.
func (h *StaffTicketsHandler) Notify(c *fiber.Ctx) error {
	staff, err := requireStaff(c)
	if err != nil {
		return err
	}
	ticket, owner, err := h.tickets.TicketOwner(c.Context(), staff, c.Params("id"))
	if err != nil {
		return err
	}
	ref := events.TicketRef{
		TicketNumber:   ticket.TicketNumber,
		Category:       ticket.Category,
		Subject:        ticket.Subject,
		OwnerDiscordID: owner.DiscordID,
		OwnerUserID:    owner.ID,
		TicketPagePath: "/tickets/" + ticket.ID,
	}
	if err := h.notifications.NotifyTicketUpdated(c.Context(), ticket.ID, ref, staff.Name); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"notified": true}})
}

func parseStaffTicketQuery(c *fiber.Ctx) service.TicketStaffFilter {
	filter := service.TicketStaffFilter{}
	if categoryStr := c.Query("category"); categoryStr != "" {
		for _, part := range strings.Split(categoryStr, ",") {
			category := domain.TicketCategory(strings.ToUpper(strings.TrimSpace(part)))
			if category.Valid() {
				filter.Categories = append(filter.Categories, category)
			}
		}
	}
	filter.Statuses = parseStatuses(c.Query("status"))
	if assigned := c.Query("assigned_to"); assigned != "" {
		filter.AssignedTo = &assigned
	}
	if search := c.Query("search"); search != "" {
		filter.SearchTerm = &search
	}
	if from := parseTime(c.Query("created_from")); from != nil {
		filter.CreatedFrom = from
	}
	if to := parseTime(c.Query("created_to")); to != nil {
		filter.CreatedTo = to
	}
	filter.Limit, filter.Offset = parsePaging(c)
	return filter
}

func parseTime(val string) *time.Time {
	if val == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, val)
	if err != nil {
		return nil
	}
	return &t
}
