package handlers

import (
	"bytes"
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/JulianoPassing/scc-tickets/internal/domain"
	"github.com/JulianoPassing/scc-tickets/internal/service"
	"github.com/JulianoPassing/scc-tickets/internal/transcript"
	apperrors "github.com/JulianoPassing/scc-tickets/pkg/util"
)

// TranscriptsHandler serves HTML transcript exports.
type TranscriptsHandler struct {
	tickets *service.TicketService
}

// NewTranscriptsHandler constructs handler.
func NewTranscriptsHandler(tickets *service.TicketService) *TranscriptsHandler {
	return &TranscriptsHandler{tickets: tickets}
}

// Export GET /admin/tickets/:id/export downloads one transcript.
func (h *TranscriptsHandler) Export(c *fiber.Ctx) error {
	staff, err := requireStaff(c)
	if err != nil {
		return err
	}
	export, err := h.exportData(c, staff, c.Params("id"))
	if err != nil {
		return err
	}
	body, err := transcript.Render(*export)
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	c.Set(fiber.HeaderContentType, "text/html; charset=utf-8")
	c.Set(fiber.HeaderContentDisposition,
		fmt.Sprintf(`attachment; filename=%q`, transcript.EntryName(export.Ticket)))
	return c.Send(body)
}

// ExportAll GET /admin/tickets/export?status=open|closed|all downloads a zip
// with one transcript per visible ticket.
func (h *TranscriptsHandler) ExportAll(c *fiber.Ctx) error {
	staff, err := requireStaff(c)
	if err != nil {
		return err
	}
	statuses, err := exportStatuses(c.Query("status", "all"))
	if err != nil {
		return err
	}

	tickets, err := h.tickets.ListStaffTickets(c.Context(), staff, service.TicketStaffFilter{
		Statuses: statuses,
		Limit:    1000,
	})
	if err != nil {
		return err
	}

	exports := make([]transcript.TicketExport, 0, len(tickets))
	for i := range tickets {
		export, err := h.exportData(c, staff, tickets[i].ID)
		if err != nil {
			return err
		}
		exports = append(exports, *export)
	}

	var buf bytes.Buffer
	if err := transcript.Archive(&buf, exports); err != nil {
		if errors.Is(err, transcript.ErrNothingToExport) {
			return apperrors.NewNotFound("nothing to export", nil)
		}
		return apperrors.NewInternalError(err)
	}

	c.Set(fiber.HeaderContentType, "application/zip")
	c.Set(fiber.HeaderContentDisposition,
		fmt.Sprintf(`attachment; filename="tickets-%s.zip"`, time.Now().UTC().Format("2006-01-02")))
	return c.Send(buf.Bytes())
}

func (h *TranscriptsHandler) exportData(c *fiber.Ctx, staff *domain.Staff, ticketID string) (*transcript.TicketExport, error) {
	ticket, msgs, err := h.tickets.GetTicketForStaff(c.Context(), staff, ticketID)
	if err != nil {
		return nil, err
	}
	_, owner, err := h.tickets.TicketOwner(c.Context(), staff, ticketID)
	if err != nil {
		return nil, err
	}
	return &transcript.TicketExport{Ticket: ticket, Owner: owner, Messages: msgs}, nil
}

func exportStatuses(scope string) ([]domain.TicketStatus, error) {
	switch scope {
	case "open":
		return domain.ActiveStatuses(), nil
	case "closed":
		return []domain.TicketStatus{domain.TicketStatusClosed}, nil
	case "all", "":
		return nil, nil
	}
	return nil, apperrors.NewValidationError("status must be open, closed or all", nil)
}
