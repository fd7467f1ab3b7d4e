package transcript

import (
	"archive/zip"
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JulianoPassing/scc-tickets/internal/domain"
)

func sampleExport() TicketExport {
	created := time.Date(2025, 3, 10, 14, 30, 0, 0, time.UTC)
	closed := created.Add(2 * time.Hour)
	reason := "resolved"
	staffName := "Support Sam"
	staffRole := domain.StaffRoleSupport
	userID := "user-1"
	staffID := "staff-1"

	ticket := &domain.Ticket{
		ID:             "t-1",
		TicketNumber:   42,
		UserID:         userID,
		Category:       domain.CategoryBugs,
		Subject:        "Car stuck in wall",
		Status:         domain.TicketStatusClosed,
		AssignedToName: &staffName,
		ClosedReason:   &reason,
		CreatedAt:      created,
		UpdatedAt:      closed,
		ClosedAt:       &closed,
	}
	owner := &domain.User{ID: userID, DiscordID: "999", Username: "driver", DisplayName: "Fast Driver"}
	messages := []domain.Message{
		{ID: "m-1", TicketID: "t-1", Content: "My car is stuck\ninside a wall", UserID: &userID, AuthorName: "Fast Driver", CreatedAt: created},
		{ID: "m-2", TicketID: "t-1", Content: "Teleporting you out now", StaffID: &staffID, AuthorName: staffName, AuthorRole: &staffRole, CreatedAt: created.Add(time.Minute)},
		{ID: "m-3", TicketID: "t-1", Content: "Ticket closed by Support Sam.", IsSystem: true, CreatedAt: closed},
	}
	return TicketExport{Ticket: ticket, Owner: owner, Messages: messages}
}

func TestRenderContainsConversationInOrder(t *testing.T) {
	body, err := Render(sampleExport())
	require.NoError(t, err)
	html := string(body)

	assert.Contains(t, html, "Ticket #42")
	assert.Contains(t, html, "Car stuck in wall")
	assert.Contains(t, html, "Fast Driver")
	assert.Contains(t, html, "Support Sam (Support)")
	assert.Contains(t, html, "2025-03-10 14:30:00 UTC")

	// Messages appear in chronological order.
	first := strings.Index(html, "My car is stuck")
	second := strings.Index(html, "Teleporting you out")
	third := strings.Index(html, "Ticket closed by")
	require.True(t, first > 0 && second > 0 && third > 0)
	assert.Less(t, first, second)
	assert.Less(t, second, third)

	// Newlines become line breaks.
	assert.Contains(t, html, "My car is stuck<br>inside a wall")
}

func TestRenderIsDeterministic(t *testing.T) {
	export := sampleExport()
	a, err := Render(export)
	require.NoError(t, err)
	b, err := Render(export)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestRenderEscapesAndLinksImages(t *testing.T) {
	export := sampleExport()
	userID := "user-1"
	export.Messages = []domain.Message{
		{ID: "m-1", TicketID: "t-1", Content: `<script>alert(1)</script> [image](https://i.imgur.com/abc.png)`, UserID: &userID, AuthorName: "Fast Driver"},
	}

	body, err := Render(export)
	require.NoError(t, err)
	html := string(body)

	assert.NotContains(t, html, "<script>alert(1)</script>")
	assert.Contains(t, html, `<a href="https://i.imgur.com/abc.png" rel="noopener">[image]</a>`)
}

func TestSlug(t *testing.T) {
	assert.Equal(t, "car-stuck-in-wall", Slug("Car stuck in wall"))
	assert.Equal(t, "hello-world", Slug("  Hello,  World!  "))
	assert.Equal(t, "h-llo", Slug("Héllo"))
	assert.Equal(t, "ticket", Slug("!!!"))
	assert.LessOrEqual(t, len(Slug(strings.Repeat("abc ", 30))), 40)
}

func TestEntryName(t *testing.T) {
	ticket := &domain.Ticket{TicketNumber: 7, Subject: "Lost my RX-7"}
	assert.Equal(t, "ticket-0007-lost-my-rx-7.html", EntryName(ticket))
}

func TestArchiveProducesOneEntryPerTicket(t *testing.T) {
	exportA := sampleExport()
	exportB := sampleExport()
	exportB.Ticket = &domain.Ticket{
		ID:           "t-2",
		TicketNumber: 43,
		UserID:       "user-1",
		Category:     domain.CategorySupport,
		Subject:      "Another thing",
		Status:       domain.TicketStatusClosed,
		CreatedAt:    exportA.Ticket.CreatedAt,
		UpdatedAt:    exportA.Ticket.UpdatedAt,
	}

	var buf bytes.Buffer
	require.NoError(t, Archive(&buf, []TicketExport{exportA, exportB}))

	reader, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)
	require.Len(t, reader.File, 2)
	assert.Equal(t, "ticket-0042-car-stuck-in-wall.html", reader.File[0].Name)
	assert.Equal(t, "ticket-0043-another-thing.html", reader.File[1].Name)
}

func TestArchiveEmptyFails(t *testing.T) {
	var buf bytes.Buffer
	err := Archive(&buf, nil)
	assert.ErrorIs(t, err, ErrNothingToExport)
}
