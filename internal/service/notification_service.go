package service

import (
	"context"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"github.com/JulianoPassing/scc-tickets/internal/discord"
	"github.com/JulianoPassing/scc-tickets/internal/domain"
	"github.com/JulianoPassing/scc-tickets/internal/events"
	"github.com/JulianoPassing/scc-tickets/internal/repository"
	apperrors "github.com/JulianoPassing/scc-tickets/pkg/util"
)

// DMSender delivers an embed to a Discord user's DM channel.
type DMSender interface {
	SendDM(ctx context.Context, discordID string, embed *discordgo.MessageEmbed) error
}

// NotificationService delivers ticket updates to users as Discord DMs. Event
// driven deliveries are best effort; only the explicit notify endpoint
// reports failure to the caller.
type NotificationService struct {
	dispatcher events.Dispatcher
	client     DMSender
	messages   repository.MessageRepository
	logger     *zap.Logger
	baseURL    string
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, client DMSender, messages repository.MessageRepository, logger *zap.Logger, baseURL string) *NotificationService {
	return &NotificationService{
		dispatcher: dispatcher,
		client:     client,
		messages:   messages,
		logger:     logger,
		baseURL:    baseURL,
	}
}

// RegisterHandlers subscribes to the events that should reach the user.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventTicketMessageAdded, n.handleMessageAdded)
	n.dispatcher.Subscribe(events.EventTicketClosed, n.handleTicketClosed)
	n.dispatcher.Subscribe(events.EventTicketCategoryChanged, n.handleCategoryChanged)
}

func (n *NotificationService) handleMessageAdded(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TicketMessageAddedPayload)
	if !ok || !payload.NotifyUser {
		return nil
	}
	embed := discord.NewMessageEmbed(
		payload.Ticket.TicketNumber,
		payload.Ticket.Category,
		payload.Ticket.Subject,
		payload.BodyPreview,
		n.baseURL+payload.Ticket.TicketPagePath,
	)
	n.deliver(ctx, event, payload.Ticket.OwnerDiscordID, "message_added", embed)
	return nil
}

func (n *NotificationService) handleTicketClosed(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TicketClosedPayload)
	if !ok {
		return nil
	}
	embed := discord.ClosedEmbed(
		payload.Ticket.TicketNumber,
		payload.Ticket.Category,
		payload.Ticket.Subject,
		payload.StaffName,
		n.baseURL+payload.Ticket.TicketPagePath,
	)
	n.deliver(ctx, event, payload.Ticket.OwnerDiscordID, "ticket_closed", embed)
	return nil
}

func (n *NotificationService) handleCategoryChanged(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TicketCategoryChangedPayload)
	if !ok {
		return nil
	}
	embed := discord.UpdatedEmbed(
		payload.Ticket.TicketNumber,
		payload.Ticket.Subject,
		n.baseURL+payload.Ticket.TicketPagePath,
	)
	n.deliver(ctx, event, payload.Ticket.OwnerDiscordID, "category_changed", embed)
	return nil
}

// NotifyTicketUpdated is the manual nudge behind the staff notify endpoint.
// Unlike event deliveries the caller learns whether the DM went out; a
// successful send is recorded on the ticket as a system message.
func (n *NotificationService) NotifyTicketUpdated(ctx context.Context, ticketID string, ref events.TicketRef, staffName string) error {
	if ref.OwnerDiscordID == "" {
		return apperrors.NewValidationError("ticket owner has no linked discord account", nil)
	}
	embed := discord.UpdatedEmbed(ref.TicketNumber, ref.Subject, n.baseURL+ref.TicketPagePath)
	if err := n.client.SendDM(ctx, ref.OwnerDiscordID, embed); err != nil {
		n.logger.Warn("manual ticket notification failed",
			zap.Int("ticket_number", ref.TicketNumber), zap.Error(err))
		return apperrors.NewUpstreamError("could not deliver the notification", err)
	}

	system := &domain.Message{
		TicketID: ticketID,
		Content:  "📨 Notification sent to the user via Discord by " + staffName,
		IsSystem: true,
	}
	if err := n.messages.Create(ctx, system); err != nil {
		// The DM already went out; losing the audit line must not fail the call.
		n.logger.Warn("could not record notification system message",
			zap.String("ticket_id", ticketID), zap.Error(err))
	}
	return nil
}

// deliver sends the DM and swallows failures; a broken Discord integration
// must never fail the originating request.
func (n *NotificationService) deliver(ctx context.Context, event events.Event, discordID, kind string, embed *discordgo.MessageEmbed) {
	if discordID == "" {
		n.logger.Debug("skipping notification, owner has no discord id",
			zap.String("ticket_id", event.TicketID), zap.String("kind", kind))
		return
	}
	if err := n.client.SendDM(ctx, discordID, embed); err != nil {
		n.logger.Warn("ticket notification failed",
			zap.String("ticket_id", event.TicketID),
			zap.String("kind", kind),
			zap.Error(err))
		return
	}
	n.logger.Info("ticket notification sent",
		zap.String("ticket_id", event.TicketID), zap.String("kind", kind))
}
