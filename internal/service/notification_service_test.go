package service

import (
	"context"
	"errors"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/JulianoPassing/scc-tickets/internal/domain"
	"github.com/JulianoPassing/scc-tickets/internal/events"
	apperrors "github.com/JulianoPassing/scc-tickets/pkg/util"
)

type fakeDMSender struct {
	sent []string
	err  error
}

func (f *fakeDMSender) SendDM(ctx context.Context, discordID string, embed *discordgo.MessageEmbed) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, discordID)
	return nil
}

func notifyRef() events.TicketRef {
	return events.TicketRef{
		TicketNumber:   7,
		Category:       domain.CategorySupport,
		Subject:        "Stuck order",
		OwnerDiscordID: "999",
		OwnerUserID:    "user-1",
		TicketPagePath: "/tickets/t-1",
	}
}

func TestNotifyTicketUpdatedSendsDMAndRecordsSystemMessage(t *testing.T) {
	sender := &fakeDMSender{}
	messages := newMemMessageRepo()
	svc := NewNotificationService(nil, sender, messages, zap.NewNop(), "https://tickets.example.com")

	err := svc.NotifyTicketUpdated(context.Background(), "t-1", notifyRef(), "Support Sam")
	require.NoError(t, err)
	require.Equal(t, []string{"999"}, sender.sent)

	system := messages.systemMessages("t-1")
	require.Len(t, system, 1)
	assert.Contains(t, system[0].Content, "📨")
	assert.Contains(t, system[0].Content, "Support Sam")
}

func TestNotifyTicketUpdatedRequiresLinkedDiscord(t *testing.T) {
	sender := &fakeDMSender{}
	messages := newMemMessageRepo()
	svc := NewNotificationService(nil, sender, messages, zap.NewNop(), "https://tickets.example.com")

	ref := notifyRef()
	ref.OwnerDiscordID = ""
	err := svc.NotifyTicketUpdated(context.Background(), "t-1", ref, "Support Sam")
	require.Error(t, err)
	assert.Equal(t, 400, apperrors.ToDomainError(err).HTTPStatus)
	assert.Empty(t, sender.sent)
	assert.Empty(t, messages.systemMessages("t-1"))
}

func TestNotifyTicketUpdatedDeliveryFailure(t *testing.T) {
	sender := &fakeDMSender{err: errors.New("dm channel closed")}
	messages := newMemMessageRepo()
	svc := NewNotificationService(nil, sender, messages, zap.NewNop(), "https://tickets.example.com")

	err := svc.NotifyTicketUpdated(context.Background(), "t-1", notifyRef(), "Support Sam")
	require.Error(t, err)
	assert.Equal(t, 502, apperrors.ToDomainError(err).HTTPStatus)

	// No audit line when nothing was delivered.
	assert.Empty(t, messages.systemMessages("t-1"))
}
