// Package gradient models the controller's color gradient: an ordered list
// of stops blended in Lab space.
package gradient

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	colorful "github.com/lucasb-eyer/go-colorful"
)

type Gradient struct {
	stops []colorful.Color
}

// ParseHex parses a "#RRGGBB" (or "#RGB") color.
func ParseHex(s string) (colorful.Color, error) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "#") {
		s = "#" + s
	}
	c, err := colorful.Hex(s)
	if err != nil {
		return colorful.Color{}, fmt.Errorf("invalid color %q", s)
	}
	return c, nil
}

// Parse builds a gradient from hex stops. The first bad stop is reported.
func Parse(stops []string) (Gradient, error) {
	g := Gradient{stops: make([]colorful.Color, 0, len(stops))}
	for i, s := range stops {
		c, err := ParseHex(s)
		if err != nil {
			return Gradient{}, fmt.Errorf("stop %d: %w", i, err)
		}
		g.stops = append(g.stops, c)
	}
	return g, nil
}

func (g Gradient) Len() int { return len(g.stops) }

// Hex returns the stops as upper-case "#RRGGBB".
func (g Gradient) Hex() []string {
	out := make([]string, len(g.stops))
	for i, c := range g.stops {
		out[i] = strings.ToUpper(c.Hex())
	}
	return out
}

// Sample returns the color at position t in [0,1].
func (g Gradient) Sample(t float64) colorful.Color {
	switch len(g.stops) {
	case 0:
		return colorful.Color{}
	case 1:
		return g.stops[0]
	}
	if t <= 0 || math.IsNaN(t) {
		return g.stops[0]
	}
	if t >= 1 {
		return g.stops[len(g.stops)-1]
	}
	pos := t * float64(len(g.stops)-1)
	i := int(pos)
	return g.stops[i].BlendLab(g.stops[i+1], pos-float64(i)).Clamped()
}

// Strip renders width cells of the gradient as colored blocks.
func (g Gradient) Strip(width int) string {
	if width <= 0 || len(g.stops) == 0 {
		return ""
	}
	var b strings.Builder
	for x := 0; x < width; x++ {
		t := 0.0
		if width > 1 {
			t = float64(x) / float64(width-1)
		}
		c := g.Sample(t)
		b.WriteString(lipgloss.NewStyle().Background(lipgloss.Color(c.Hex())).Render(" "))
	}
	return b.String()
}
