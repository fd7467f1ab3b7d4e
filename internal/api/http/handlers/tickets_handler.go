package handlers

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/JulianoPassing/scc-tickets/internal/api/dto"
	"github.com/JulianoPassing/scc-tickets/internal/auth"
	"github.com/JulianoPassing/scc-tickets/internal/domain"
	"github.com/JulianoPassing/scc-tickets/internal/service"
	apperrors "github.com/JulianoPassing/scc-tickets/pkg/util"
)

// TicketsHandler manages end-user ticket endpoints.
type TicketsHandler struct {
	service *service.TicketService
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(ticketService *service.TicketService) *TicketsHandler {
	return &TicketsHandler{service: ticketService}
}

// ListCategories GET /categories.
func (h *TicketsHandler) ListCategories(c *fiber.Ctx) error {
	items := make([]dto.CategoryResponse, 0, len(domain.Categories))
	for _, info := range domain.Categories {
		items = append(items, categoryResponse(info))
	}
	return c.JSON(fiber.Map{"data": items})
}

// CreateTicket POST /tickets.
func (h *TicketsHandler) CreateTicket(c *fiber.Ctx) error {
	user, err := requireUser(c)
	if err != nil {
		return err
	}
	var req dto.CreateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	ticket, err := h.service.CreateTicket(c.Context(), user, service.TicketCreateInput{
		Category:    req.Category,
		Subject:     req.Subject,
		Message:     req.Message,
		Attachments: attachmentInputs(req.Attachments),
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": ticketSummary(ticket)})
}

// ListTickets GET /tickets.
func (h *TicketsHandler) ListTickets(c *fiber.Ctx) error {
	user, err := requireUser(c)
	if err != nil {
		return err
	}
	statuses := parseStatuses(c.Query("status"))
	limit, offset := parsePaging(c)
	tickets, err := h.service.ListUserTickets(c.Context(), user.ID, statuses, limit, offset)
	if err != nil {
		return err
	}
	items := make([]dto.TicketSummary, 0, len(tickets))
	for i := range tickets {
		items = append(items, ticketSummary(&tickets[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// GetTicket GET /tickets/:id.
func (h *TicketsHandler) GetTicket(c *fiber.Ctx) error {
	user, err := requireUser(c)
	if err != nil {
		return err
	}
	ticket, msgs, err := h.service.GetTicketForUser(c.Context(), user.ID, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketDetail(ticket, msgs)})
}

// AddMessage POST /tickets/:id/messages.
func (h *TicketsHandler) AddMessage(c *fiber.Ctx) error {
	user, err := requireUser(c)
	if err != nil {
		return err
	}
	var req dto.CreateMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	msg, err := h.service.AddUserMessage(c.Context(), user, c.Params("id"), req.Content, attachmentInputs(req.Attachments))
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": messageResponse(msg)})
}

func requireUser(c *fiber.Ctx) (*domain.User, error) {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return nil, apperrors.NewUnauthorized("user session required")
	}
	return principal.User, nil
}

func requireStaff(c *fiber.Ctx) (*domain.Staff, error) {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.Staff == nil {
		return nil, apperrors.NewUnauthorized("staff session required")
	}
	return principal.Staff, nil
}

func parseStatuses(raw string) []domain.TicketStatus {
	if raw == "" {
		return nil
	}
	var out []domain.TicketStatus
	for _, part := range strings.Split(raw, ",") {
		status := domain.TicketStatus(strings.ToUpper(strings.TrimSpace(part)))
		if status.Valid() {
			out = append(out, status)
		}
	}
	return out
}

func parsePaging(c *fiber.Ctx) (limit, offset int) {
	page := parseInt(c.Query("page"), 1)
	pageSize := parseInt(c.Query("page_size"), 20)
	if pageSize > 100 {
		pageSize = 100
	}
	return pageSize, (page - 1) * pageSize
}

func parseInt(val string, def int) int {
	if val == "" {
		return def
	}
	parsed, err := strconv.Atoi(val)
	if err != nil || parsed <= 0 {
		return def
	}
	return parsed
}

func attachmentInputs(in []dto.AttachmentInput) []service.AttachmentInput {
	out := make([]service.AttachmentInput, 0, len(in))
	for _, att := range in {
		out = append(out, service.AttachmentInput{
			URL:      att.URL,
			Filename: att.Filename,
			MimeType: att.MimeType,
			Size:     att.Size,
		})
	}
	return out
}

func categoryResponse(info domain.CategoryInfo) dto.CategoryResponse {
	return dto.CategoryResponse{
		ID:          info.ID,
		Name:        info.Name,
		Emoji:       info.Emoji,
		Description: info.Description,
		Color:       info.Color,
	}
}

func ticketSummary(ticket *domain.Ticket) dto.TicketSummary {
	return dto.TicketSummary{
		ID:             ticket.ID,
		TicketNumber:   ticket.TicketNumber,
		Category:       ticket.Category,
		CategoryLabel:  ticket.Category.Label(),
		Subject:        ticket.Subject,
		Status:         ticket.Status,
		AssignedToName: ticket.AssignedToName,
		CreatedAt:      ticket.CreatedAt,
		UpdatedAt:      ticket.UpdatedAt,
		ClosedAt:       ticket.ClosedAt,
	}
}

func ticketDetail(ticket *domain.Ticket, messages []domain.Message) dto.TicketDetailResponse {
	msgs := make([]dto.MessageResponse, 0, len(messages))
	for i := range messages {
		msgs = append(msgs, messageResponse(&messages[i]))
	}
	return dto.TicketDetailResponse{
		TicketSummary: ticketSummary(ticket),
		ClosedReason:  ticket.ClosedReason,
		Messages:      msgs,
	}
}

func messageResponse(msg *domain.Message) dto.MessageResponse {
	attachments := make([]dto.AttachmentResponse, 0, len(msg.Attachments))
	for _, att := range msg.Attachments {
		attachments = append(attachments, dto.AttachmentResponse{
			ID:       att.ID,
			URL:      att.URL,
			Filename: att.Filename,
			MimeType: att.MimeType,
			Size:     att.Size,
		})
	}
	return dto.MessageResponse{
		ID:          msg.ID,
		Content:     msg.Content,
		AuthorName:  msg.AuthorName,
		AuthorRole:  msg.AuthorRole,
		IsStaff:     msg.StaffID != nil,
		IsSystem:    msg.IsSystem,
		Attachments: attachments,
		CreatedAt:   msg.CreatedAt,
	}
}
