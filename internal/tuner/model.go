// Package tuner is the Bubble Tea console: editable tuning fields, live
// telemetry bars and the gradient editor, all fed from a serial link.
package tuner

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/whoisnian/glb/logger"

	"cloudtuner/internal/gradient"
	"cloudtuner/internal/mirror"
	"cloudtuner/internal/profile"
	"cloudtuner/internal/protocol"
	"cloudtuner/internal/telemetry"
)

// Link is the part of *link.Link the console needs.
type Link interface {
	Send(cmd string) error
	Drain() []string
	Err() error
}

// Publisher receives a snapshot whenever device data is applied.
type Publisher interface {
	Publish(mirror.Snapshot)
}

type Options struct {
	Port      string
	Profile   profile.Profile
	Poll      time.Duration
	FullScale float64 // telemetry value that fills a bar
	Rows      int     // bar height in terminal rows
	History   int     // samples kept per telemetry channel
	Log       *logger.Logger
	Mirror    Publisher
}

// field is one editable value plus what the device last reported for it.
type field struct {
	name   string
	label  string
	input  textinput.Model
	device string
	known  bool
}

func newField(name string) field {
	ti := textinput.New()
	ti.Prompt = ""
	ti.Placeholder = "?"
	ti.CharLimit = 24
	ti.Width = 12
	return field{name: name, label: name, input: ti}
}

type Model struct {
	opts Options
	ctx  context.Context
	log  *logger.Logger
	link Link

	fields    []field
	stops     []field
	gradient  gradient.Gradient
	telemetry *telemetry.Set

	focus   int
	width   int
	status  string
	err     error // last send failure
	linkErr error // read loop stopped; stays until restart
}

type tickMsg struct{}

type sentMsg struct {
	action string
	err    error
}

func New(l Link, opts Options) Model {
	if opts.Poll <= 0 {
		opts.Poll = 10 * time.Millisecond
	}
	if opts.FullScale <= 0 {
		opts.FullScale = 1
	}
	if opts.Rows <= 0 {
		opts.Rows = 8
	}
	m := Model{
		opts:      opts,
		ctx:       context.Background(),
		log:       opts.Log,
		link:      l,
		telemetry: telemetry.NewSet(opts.Profile.Telemetry, opts.History),
	}
	for _, name := range opts.Profile.Tuning {
		m.fields = append(m.fields, newField(name))
	}
	m.setFocus(0)
	return m
}

func (m Model) Init() tea.Cmd {
	cmds := []string{protocol.RequestTuning}
	if m.opts.Profile.Gradient {
		cmds = append(cmds, protocol.RequestColors)
	}
	return tea.Batch(m.send("requested tuning", cmds...), m.tick())
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(m.opts.Poll, func(time.Time) tea.Msg { return tickMsg{} })
}

// send writes cmds in order from a command goroutine, stopping at the first error.
func (m Model) send(action string, cmds ...string) tea.Cmd {
	l := m.link
	return func() tea.Msg {
		for _, c := range cmds {
			if err := l.Send(c); err != nil {
				return sentMsg{action: action, err: err}
			}
		}
		return sentMsg{action: action}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case tickMsg:
		if m.apply(m.link.Drain()) {
			m.publish()
		}
		if err := m.link.Err(); err != nil && m.linkErr == nil {
			m.linkErr = err
			m.status = "serial link stopped"
			m.log.Errorf(m.ctx, "serial link stopped: %v", err)
		}
		return m, m.tick()

	case sentMsg:
		if msg.err != nil {
			m.err = msg.err
			m.status = msg.action + " failed"
			m.log.Errorf(m.ctx, "%s: %v", msg.action, msg.err)
			return m, nil
		}
		m.err = nil
		m.status = msg.action
		return m, nil

	case tea.MouseMsg:
		if msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft {
			return m, m.send("requested tuning", protocol.RequestTuning)
		}
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit
		case "tab", "down":
			m.setFocus(m.focus + 1)
			return m, nil
		case "shift+tab", "up":
			m.setFocus(m.focus - 1)
			return m, nil
		case "enter":
			return m.submit()
		case "ctrl+r":
			return m, m.send("requested tuning", protocol.RequestTuning)
		case "ctrl+s":
			return m, m.send("saved tuning on device", protocol.SaveTuning)
		case "ctrl+o":
			return m, m.send("restored saved tuning", protocol.RestoreTuning, protocol.RequestTuning)
		}
		f := m.focused()
		if f == nil {
			return m, nil
		}
		var cmd tea.Cmd
		f.input, cmd = f.input.Update(msg)
		return m, cmd
	}

	// cursor blink and friends
	if f := m.focused(); f != nil {
		var cmd tea.Cmd
		f.input, cmd = f.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

// submit turns every valid field into a command. Invalid text is logged and
// skipped; the device echo that follows shows what was accepted.
func (m Model) submit() (tea.Model, tea.Cmd) {
	var cmds []string
	var bad []string
	for _, f := range m.fields {
		cmd, err := protocol.ParseTuningInput(f.name, f.input.Value())
		if err != nil {
			m.log.Warnf(m.ctx, "invalid float value for %s: %q", f.name, f.input.Value())
			bad = append(bad, f.name)
			continue
		}
		cmds = append(cmds, cmd)
	}
	colors := 0
	for i, s := range m.stops {
		v := strings.TrimSpace(s.input.Value())
		c, err := gradient.ParseHex(v)
		if err != nil {
			m.log.Warnf(m.ctx, "invalid color for stop %d: %q", i, v)
			bad = append(bad, "color "+strconv.Itoa(i))
			continue
		}
		hex := strings.ToUpper(c.Hex())
		if s.known && strings.EqualFold(hex, s.device) {
			continue
		}
		cmds = append(cmds, protocol.NewColor(i, hex))
		colors++
	}
	cmds = append(cmds, protocol.RequestTuning)
	if colors > 0 {
		cmds = append(cmds, protocol.RequestColors)
	}

	action := fmt.Sprintf("sent %d values", len(cmds)-1-boolInt(colors > 0))
	if len(bad) > 0 {
		action += ", skipped invalid: " + strings.Join(bad, ", ")
	}
	return m, m.send(action, cmds...)
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// apply mirrors device lines into the model. Every TUNING and COLORS line is
// applied in order; of the STATUS lines only the newest counts.
func (m *Model) apply(lines []string) bool {
	changed := false
	latestStatus := ""
	for _, line := range lines {
		switch protocol.Classify(line) {
		case protocol.KindTuning:
			for i := range m.fields {
				v, ok := protocol.ReadValue(line, m.fields[i].name)
				if !ok {
					continue
				}
				m.fields[i].input.SetValue(v)
				m.fields[i].device = v
				m.fields[i].known = true
			}
			changed = true
		case protocol.KindStatus:
			latestStatus = line
		case protocol.KindColors:
			if !m.opts.Profile.Gradient {
				m.log.Debugf(m.ctx, "ignored colors line: %q", line)
				continue
			}
			if m.applyColors(protocol.Colors(line)) {
				changed = true
			}
		default:
			m.log.Debugf(m.ctx, "ignored line: %q", line)
		}
	}
	if latestStatus != "" {
		vals, bad := protocol.Floats(latestStatus, m.telemetry.Names())
		for _, name := range bad {
			m.log.Debugf(m.ctx, "bad status value for %s in %q", name, latestStatus)
		}
		m.telemetry.Apply(vals)
		changed = true
	}
	return changed
}

func (m *Model) applyColors(stops []string) bool {
	g, err := gradient.Parse(stops)
	if err != nil {
		m.log.Warnf(m.ctx, "ignored colors line: %v", err)
		return false
	}
	m.gradient = g
	hex := g.Hex()
	if len(m.stops) != len(hex) {
		m.stops = make([]field, len(hex))
		for i := range hex {
			m.stops[i] = newField(strconv.Itoa(i))
			m.stops[i].label = "stop " + strconv.Itoa(i)
			m.stops[i].input.CharLimit = 7
			m.stops[i].input.Width = 8
		}
		m.setFocus(m.focus)
	}
	for i, h := range hex {
		m.stops[i].input.SetValue(h)
		m.stops[i].device = h
		m.stops[i].known = true
	}
	return true
}

// ------------------------------ focus ------------------------------------------

func (m *Model) inputs() int { return len(m.fields) + len(m.stops) }

func (m *Model) at(i int) *field {
	if i < len(m.fields) {
		return &m.fields[i]
	}
	return &m.stops[i-len(m.fields)]
}

func (m *Model) focused() *field {
	if m.inputs() == 0 {
		return nil
	}
	return m.at(m.focus)
}

func (m *Model) setFocus(i int) {
	n := m.inputs()
	if n == 0 {
		m.focus = 0
		return
	}
	i = ((i % n) + n) % n
	for j := 0; j < n; j++ {
		m.at(j).input.Blur()
	}
	m.focus = i
	m.at(i).input.Focus()
}

// ------------------------------ mirror -----------------------------------------

func (m Model) Snapshot() mirror.Snapshot {
	snap := mirror.Snapshot{Port: m.opts.Port, UpdatedAt: time.Now()}
	for _, f := range m.fields {
		snap.Tuning = append(snap.Tuning, mirror.Param{Name: f.name, Device: f.device})
	}
	for _, c := range m.telemetry.Channels() {
		s := c.Summary()
		snap.Telemetry = append(snap.Telemetry, mirror.Reading{
			Name:   c.Name,
			Value:  mirror.Number(s.Last),
			Mean:   mirror.Number(s.Mean),
			StdDev: mirror.Number(s.StdDev),
			Min:    mirror.Number(s.Min),
			Max:    mirror.Number(s.Max),
		})
	}
	if m.gradient.Len() > 0 {
		snap.Gradient = m.gradient.Hex()
	}
	return snap
}

func (m Model) publish() {
	if m.opts.Mirror != nil {
		m.opts.Mirror.Publish(m.Snapshot())
	}
}
