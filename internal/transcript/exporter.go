package transcript

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"io"
	"regexp"
	"strings"
	"time"

	"github.com/JulianoPassing/scc-tickets/internal/domain"
)

// ErrNothingToExport is returned when a batch export matches no tickets.
var ErrNothingToExport = errors.New("nothing to export")

// TicketExport bundles everything a transcript needs.
type TicketExport struct {
	Ticket   *domain.Ticket
	Owner    *domain.User
	Messages []domain.Message
}

const timeLayout = "2006-01-02 15:04:05 UTC"

// markdown-style inline image links produced by the web client.
var imageLinkPattern = regexp.MustCompile(`\[image\]\((https?://[^\s)]+)\)`)

var transcriptTemplate = template.Must(template.New("transcript").Funcs(template.FuncMap{
	"formatDate": func(v any) string {
		switch t := v.(type) {
		case time.Time:
			return t.UTC().Format(timeLayout)
		case *time.Time:
			if t != nil {
				return t.UTC().Format(timeLayout)
			}
		}
		return ""
	},
	"formatContent": formatContent,
	"categoryLabel": func(c domain.TicketCategory) string {
		if info, ok := domain.CategoryByID(c); ok {
			return info.Emoji + " " + info.Name
		}
		return string(c)
	},
	"authorClass": func(m domain.Message) string {
		switch {
		case m.IsSystem:
			return "system"
		case m.StaffID != nil:
			return "staff"
		default:
			return "user"
		}
	},
	"authorLabel": func(m domain.Message) string {
		if m.IsSystem {
			return "System"
		}
		label := m.AuthorName
		if m.AuthorRole != nil {
			label += " (" + m.AuthorRole.Label() + ")"
		}
		return label
	},
}).Parse(transcriptHTML))

// formatContent escapes the raw message text, keeps line breaks and turns
// inline image links into anchors.
func formatContent(content string) template.HTML {
	escaped := template.HTMLEscapeString(content)
	escaped = imageLinkPattern.ReplaceAllString(escaped, `<a href="$1" rel="noopener">[image]</a>`)
	escaped = strings.ReplaceAll(escaped, "\n", "<br>")
	return template.HTML(escaped)
}

// Render produces the standalone HTML transcript for one ticket. Output is
// deterministic: same ticket data, same bytes.
func Render(export TicketExport) ([]byte, error) {
	if export.Ticket == nil {
		return nil, errors.New("transcript: ticket is required")
	}
	var buf bytes.Buffer
	if err := transcriptTemplate.Execute(&buf, export); err != nil {
		return nil, fmt.Errorf("render transcript: %w", err)
	}
	return buf.Bytes(), nil
}

// Archive writes one zip with a transcript per ticket. Entry timestamps are
// pinned so identical inputs produce identical archives.
func Archive(w io.Writer, exports []TicketExport) error {
	if len(exports) == 0 {
		return ErrNothingToExport
	}
	zw := zip.NewWriter(w)
	for _, export := range exports {
		body, err := Render(export)
		if err != nil {
			return err
		}
		header := &zip.FileHeader{
			Name:     EntryName(export.Ticket),
			Method:   zip.Deflate,
			Modified: export.Ticket.UpdatedAt.UTC(),
		}
		entry, err := zw.CreateHeader(header)
		if err != nil {
			return fmt.Errorf("create archive entry: %w", err)
		}
		if _, err := entry.Write(body); err != nil {
			return fmt.Errorf("write archive entry: %w", err)
		}
	}
	return zw.Close()
}

// EntryName builds the archive file name for a ticket transcript.
func EntryName(ticket *domain.Ticket) string {
	return fmt.Sprintf("ticket-%04d-%s.html", ticket.TicketNumber, Slug(ticket.Subject))
}

// Slug lowercases the subject and strips everything outside [a-z0-9-],
// bounded at 40 characters.
func Slug(subject string) string {
	var b strings.Builder
	lastDash := true
	for _, r := range strings.ToLower(subject) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash {
				b.WriteByte('-')
				lastDash = true
			}
		}
		if b.Len() >= 40 {
			break
		}
	}
	out := strings.Trim(b.String(), "-")
	if out == "" {
		return "ticket"
	}
	return out
}

const transcriptHTML = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Ticket #{{.Ticket.TicketNumber}} - {{.Ticket.Subject}}</title>
<style>
body { font-family: Arial, Helvetica, sans-serif; background: #13151a; color: #e6e6e6; margin: 0; padding: 24px; }
.header { border-bottom: 2px solid #eaf207; padding-bottom: 16px; margin-bottom: 24px; }
.header h1 { margin: 0 0 8px; font-size: 22px; }
.meta { color: #9aa0a6; font-size: 13px; }
.meta span { margin-right: 16px; }
.message { background: #1c1f26; border-radius: 8px; padding: 12px 16px; margin-bottom: 12px; }
.message.staff { border-left: 3px solid #eaf207; }
.message.user { border-left: 3px solid #6366f1; }
.message.system { border-left: 3px solid #9aa0a6; font-style: italic; }
.author { font-weight: bold; margin-bottom: 4px; }
.timestamp { color: #9aa0a6; font-size: 12px; float: right; }
.content { line-height: 1.5; word-wrap: break-word; }
.attachments { margin-top: 8px; font-size: 13px; }
.attachments a { color: #eaf207; }
.attachments img { max-width: 320px; border-radius: 6px; display: block; margin-top: 4px; }
</style>
</head>
<body>
<div class="header">
<h1>Ticket #{{.Ticket.TicketNumber}} - {{.Ticket.Subject}}</h1>
<div class="meta">
<span>Category: {{categoryLabel .Ticket.Category}}</span>
<span>Status: {{.Ticket.Status}}</span>
<span>Opened by: {{if .Owner}}{{.Owner.Name}}{{else}}Unknown{{end}}</span>
{{if .Ticket.AssignedToName}}<span>Handled by: {{.Ticket.AssignedToName}}</span>{{end}}
</div>
<div class="meta">
<span>Created: {{formatDate .Ticket.CreatedAt}}</span>
{{if .Ticket.ClosedAt}}<span>Closed: {{formatDate .Ticket.ClosedAt}}</span>{{end}}
{{if .Ticket.ClosedReason}}<span>Reason: {{.Ticket.ClosedReason}}</span>{{end}}
</div>
</div>
{{range .Messages}}
<div class="message {{authorClass .}}">
<span class="timestamp">{{formatDate .CreatedAt}}</span>
<div class="author">{{authorLabel .}}</div>
<div class="content">{{formatContent .Content}}</div>
{{if .Attachments}}<div class="attachments">{{range .Attachments}}{{if .IsImage}}<a href="{{.URL}}" rel="noopener"><img src="{{.URL}}" alt="{{.Filename}}"></a>{{else}}<a href="{{.URL}}" rel="noopener">{{.Filename}}</a>{{end}} {{end}}</div>{{end}}
</div>
{{end}}
</body>
</html>
`
