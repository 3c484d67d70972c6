package tuner

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"cloudtuner/internal/protocol"
	"cloudtuner/internal/telemetry"
)

const (
	blue     = lipgloss.Color("#0492CF")
	redLight = lipgloss.Color("#EE7E77")
	barWidth = 6
	colWidth = 16
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true)
	labelStyle  = lipgloss.NewStyle().Width(colWidth)
	deviceStyle = lipgloss.NewStyle().Bold(true).Foreground(blue)
	barStyle    = lipgloss.NewStyle().Foreground(redLight)
	frameStyle  = lipgloss.NewStyle().Foreground(blue)
	dimStyle    = lipgloss.NewStyle().Faint(true)
	errStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
)

func (m Model) View() string {
	var b strings.Builder
	title := "Cloud Tuner"
	if m.opts.Port != "" {
		title += " | " + m.opts.Port
	}
	b.WriteString(titleStyle.Render(title) + "\n\n")

	for _, f := range m.fields {
		b.WriteString(m.fieldRow(f) + "\n")
	}

	if m.opts.Profile.Gradient {
		b.WriteString("\n" + titleStyle.Render("Gradient") + "\n")
		if m.gradient.Len() == 0 {
			b.WriteString(dimStyle.Render("waiting for colors") + "\n")
		} else {
			width := 48
			if m.width > 8 && m.width-4 < width {
				width = m.width - 4
			}
			b.WriteString(m.gradient.Strip(width) + "\n")
			for _, s := range m.stops {
				b.WriteString(m.fieldRow(s) + "\n")
			}
		}
	}

	b.WriteString("\n" + m.bars() + "\n\n")

	if m.linkErr != nil {
		b.WriteString(errStyle.Render("link error: "+m.linkErr.Error()) + "\n")
	}
	if m.err != nil {
		b.WriteString(errStyle.Render("error: "+m.err.Error()) + "\n")
	}
	b.WriteString(okStyle.Render(m.status) + "\n")
	b.WriteString(dimStyle.Render("tab:next  enter:send  ctrl+r:refresh  ctrl+s:save  ctrl+o:restore  esc:quit"))
	return b.String()
}

func (m Model) fieldRow(f field) string {
	dev := "?"
	if f.known {
		dev = f.device
	}
	return labelStyle.Render(f.label) + "[" + f.input.View() + "]  " + deviceStyle.Render(dev)
}

// bars draws one vertical bar per telemetry channel, bottom aligned, with the
// value, name and running stats underneath.
func (m Model) bars() string {
	chans := m.telemetry.Channels()
	if len(chans) == 0 {
		return ""
	}
	cols := make([]string, 0, len(chans))
	for _, c := range chans {
		cols = append(cols, m.barColumn(c))
	}
	return lipgloss.JoinHorizontal(lipgloss.Bottom, cols...)
}

func (m Model) barColumn(c *telemetry.Channel) string {
	v, ok := c.Last()
	h := 0
	val := ""
	if ok {
		h = telemetry.BarHeight(v, m.opts.FullScale, m.opts.Rows)
		val = protocol.FormatFloat(v)
	}
	lines := make([]string, 0, m.opts.Rows+4)
	for r := m.opts.Rows; r >= 1; r-- {
		if r <= h {
			lines = append(lines, frameStyle.Render("│")+barStyle.Render(strings.Repeat("█", barWidth))+frameStyle.Render("│"))
		} else {
			lines = append(lines, strings.Repeat(" ", barWidth+2))
		}
	}
	lines = append(lines, frameStyle.Render("└"+strings.Repeat("─", barWidth)+"┘"))
	lines = append(lines, deviceStyle.Render(val))
	lines = append(lines, c.Name)
	if s := c.Summary(); s.N > 1 {
		lines = append(lines, dimStyle.Render(fmt.Sprintf("μ%.3g σ%.2g", s.Mean, s.StdDev)))
	} else {
		lines = append(lines, "")
	}
	return lipgloss.NewStyle().Width(colWidth).Render(strings.Join(lines, "\n"))
}
