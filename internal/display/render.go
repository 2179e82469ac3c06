package display

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/vogiaan1904/repairhub-display/internal/models"
)

// TerminalRenderer paints the kiosk screens to a terminal. Rendering is
// stateless: every frame is rebuilt from the View.
type TerminalRenderer struct {
	out   io.Writer
	width int

	frame     lipgloss.Style
	title     lipgloss.Style
	subtitle  lipgloss.Style
	label     lipgloss.Style
	value     lipgloss.Style
	accent    lipgloss.Style
	dim       lipgloss.Style
	connected lipgloss.Style
	dropped   lipgloss.Style
}

func NewTerminalRenderer(out io.Writer) *TerminalRenderer {
	width := 64

	return &TerminalRenderer{
		out:   out,
		width: width,
		frame: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			Padding(1, 3).
			Width(width),
		title:     lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212")),
		subtitle:  lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		label:     lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(14),
		value:     lipgloss.NewStyle().Bold(true),
		accent:    lipgloss.NewStyle().Foreground(lipgloss.Color("39")),
		dim:       lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
		connected: lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		dropped:   lipgloss.NewStyle().Foreground(lipgloss.Color("203")),
	}
}

func (r *TerminalRenderer) Render(view View) {
	var body string

	switch view.Mode {
	case models.ModeConfirmData:
		body = r.renderConfirm(view)
	case models.ModeCompleted:
		body = r.renderCompleted(view)
	default:
		body = r.renderStandby(view)
	}

	fmt.Fprintln(r.out, r.frame.Render(body))
	fmt.Fprintln(r.out, r.renderStatusLine(view))
}

func (r *TerminalRenderer) renderStandby(view View) string {
	var b strings.Builder

	shop := view.Branding.ShopName
	if shop == "" {
		shop = "Device Repair"
	}
	b.WriteString(r.subtitle.Render(shop))
	b.WriteString("\n\n")

	b.WriteString(r.title.Render(view.Ad.Title))
	b.WriteString("\n")
	b.WriteString(view.Ad.Description)

	if view.Ad.Kind == models.PlaylistItemCampaign {
		b.WriteString("\n\n")
		b.WriteString(r.dim.Render("sponsored"))
		if view.Ad.Enhanced.QRCode {
			b.WriteString(r.dim.Render("  ·  scan for more"))
		}
	}

	return b.String()
}

func (r *TerminalRenderer) renderConfirm(view View) string {
	var b strings.Builder

	switch view.Prompt {
	case PromptPassword:
		b.WriteString(r.title.Render("Device Password"))
		b.WriteString("\n\n")
		b.WriteString("Please enter your device password so our technicians\ncan test the repair, or skip this step.")
		return b.String()
	case PromptSignature:
		b.WriteString(r.title.Render("Signature"))
		b.WriteString("\n\n")
		b.WriteString("Please sign to authorize the repair.")
		return b.String()
	}

	b.WriteString(r.title.Render("Please Confirm Your Details"))
	b.WriteString("\n\n")

	s := view.Session
	rows := []struct{ label, value string }{
		{"Customer", s.Customer.Name},
		{"Phone", s.Customer.Phone},
		{"Device", strings.TrimSpace(s.Device.Brand + " " + s.Device.Model)},
		{"Issue", s.Device.IssueDescription},
	}
	for _, row := range rows {
		if row.value == "" {
			continue
		}
		b.WriteString(r.label.Render(row.label))
		b.WriteString(r.value.Render(row.value))
		b.WriteString("\n")
	}

	if s.Quote.EstimatedTotal > 0 {
		b.WriteString("\n")
		b.WriteString(r.label.Render("Estimate"))
		b.WriteString(r.accent.Render(fmt.Sprintf("%.2f", s.Quote.EstimatedTotal)))
		b.WriteString("\n")
		b.WriteString(r.label.Render("Due now"))
		b.WriteString(r.accent.Render(fmt.Sprintf("%.2f", s.Quote.AmountDueNow)))
		b.WriteString("\n")
	}

	return b.String()
}

func (r *TerminalRenderer) renderCompleted(view View) string {
	var b strings.Builder

	b.WriteString(r.title.Render("All Done!"))
	b.WriteString("\n\n")

	name := view.Session.Customer.Name
	if name != "" {
		b.WriteString(fmt.Sprintf("Thank you, %s.\n", name))
	}
	b.WriteString("Your device is checked in. We'll keep you posted.")

	return b.String()
}

func (r *TerminalRenderer) renderStatusLine(view View) string {
	switch view.Connection {
	case models.ConnectionConnected:
		return r.connected.Render("● live")
	case models.ConnectionDisconnected:
		return r.dropped.Render("● reconnecting")
	default:
		return r.dim.Render("● connecting")
	}
}
