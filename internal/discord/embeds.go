package discord

import (
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/JulianoPassing/scc-tickets/internal/domain"
)

const embedFooter = "StreetCarClub • Ticket System"

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}

// NewMessageEmbed announces a staff reply on the user's ticket.
func NewMessageEmbed(ticketNumber int, category domain.TicketCategory, subject, preview, ticketURL string) *discordgo.MessageEmbed {
	if preview == "" {
		preview = "Click the link to view"
	}
	return &discordgo.MessageEmbed{
		Title:       "💬 New Message on Your Ticket",
		Description: "You received a new reply on your ticket.",
		Color:       0xEAF207,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Ticket", Value: fmt.Sprintf("#%d", ticketNumber), Inline: true},
			{Name: "Category", Value: category.Label(), Inline: true},
			{Name: "Subject", Value: subject},
			{Name: "Message", Value: truncate(preview, 200)},
			{Name: "🔗 Open", Value: fmt.Sprintf("[Click here](%s)", ticketURL)},
		},
		Footer:    &discordgo.MessageEmbedFooter{Text: embedFooter},
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}

// ClosedEmbed tells the user their ticket was closed and invites a rating.
func ClosedEmbed(ticketNumber int, category domain.TicketCategory, subject, staffName, rateURL string) *discordgo.MessageEmbed {
	if staffName == "" {
		staffName = "Staff"
	}
	return &discordgo.MessageEmbed{
		Title:       "🔒 Ticket Closed",
		Description: "Your ticket was closed by the team.",
		Color:       0xFF6B6B,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Ticket", Value: fmt.Sprintf("#%d", ticketNumber), Inline: true},
			{Name: "Category", Value: category.Label(), Inline: true},
			{Name: "Closed by", Value: staffName, Inline: true},
			{Name: "Subject", Value: subject},
			{Name: "📝 Rate", Value: fmt.Sprintf("[Rate your experience](%s)", rateURL)},
		},
		Footer:    &discordgo.MessageEmbedFooter{Text: "StreetCarClub • Thanks for reaching out!"},
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}

// UpdatedEmbed nudges the user to look at their ticket again.
func UpdatedEmbed(ticketNumber int, subject, ticketURL string) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       "🔔 Ticket Update",
		Description: "Your ticket was updated. Check what's new.",
		Color:       0xFFA500,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Ticket", Value: fmt.Sprintf("#%d", ticketNumber), Inline: true},
			{Name: "Subject", Value: subject, Inline: true},
			{Name: "🔗 Open", Value: fmt.Sprintf("[Click here](%s)", ticketURL)},
		},
		Footer:    &discordgo.MessageEmbedFooter{Text: embedFooter},
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}

// PanelEmbed is the static informational panel posted in response to the
// ticket system slash command.
func PanelEmbed(baseURL string) *discordgo.MessageEmbed {
	description := fmt.Sprintf(`**Welcome to our Support Center!**

Open a ticket on our web system to get personalized support from the team.

**❗ Important:**
Avoid pinging the team. You will be helped as soon as possible.

**📋 Available Categories:**
• 🏠 **Housing** - Houses and property matters
• 💎 **Donations** - Donation-related matters
• 🦠 **Bug Reports** - Report errors and technical problems
• ⚠️ **Reports** - Report infractions and conduct issues
• 🚀 **Boost** - Support for server boosters
• 🔍 **Review** - Request review of penalties and bans
• 📁 **Support** - Technical support and general help

**🔗 Access the System:**
[Click here to open a ticket](%s/tickets)

Or go to: %s/tickets`, baseURL, baseURL)

	return &discordgo.MessageEmbed{
		Title:       "📄 Support Center - StreetCarClub",
		Description: description,
		Color:       0xEAF207,
		Footer:      &discordgo.MessageEmbedFooter{Text: "StreetCarClub • Quality Support"},
		Timestamp:   time.Now().UTC().Format(time.RFC3339),
	}
}
