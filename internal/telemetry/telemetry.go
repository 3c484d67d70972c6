// Package telemetry keeps a short history of each STATUS value and turns it
// into bar heights and summary statistics.
package telemetry

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

type Summary struct {
	N      int
	Last   float64
	Mean   float64
	StdDev float64
	Min    float64
	Max    float64
}

// Channel is a fixed-size ring of samples.
type Channel struct {
	Name  string
	buf   []float64
	next  int
	full  bool
	last  float64
	valid bool
}

func NewChannel(name string, size int) *Channel {
	if size <= 0 {
		size = 200
	}
	return &Channel{Name: name, buf: make([]float64, size)}
}

func (c *Channel) Add(v float64) {
	c.buf[c.next] = v
	c.next++
	if c.next == len(c.buf) {
		c.next = 0
		c.full = true
	}
	c.last = v
	c.valid = true
}

// Last returns the most recent sample, and false if none was added.
func (c *Channel) Last() (float64, bool) { return c.last, c.valid }

func (c *Channel) samples() []float64 {
	if c.full {
		return c.buf
	}
	return c.buf[:c.next]
}

func (c *Channel) Summary() Summary {
	xs := c.samples()
	if len(xs) == 0 {
		return Summary{}
	}
	s := Summary{
		N:    len(xs),
		Last: c.last,
		Mean: stat.Mean(xs, nil),
		Min:  floats.Min(xs),
		Max:  floats.Max(xs),
	}
	if len(xs) > 1 {
		s.StdDev = stat.StdDev(xs, nil)
	}
	return s
}

// Set is the ordered collection of channels shown as bars.
type Set struct {
	channels []*Channel
	index    map[string]*Channel
}

func NewSet(names []string, history int) *Set {
	s := &Set{index: make(map[string]*Channel, len(names))}
	for _, n := range names {
		c := NewChannel(n, history)
		s.channels = append(s.channels, c)
		s.index[n] = c
	}
	return s
}

func (s *Set) Names() []string {
	out := make([]string, len(s.channels))
	for i, c := range s.channels {
		out[i] = c.Name
	}
	return out
}

func (s *Set) Channels() []*Channel { return s.channels }

// Apply records every known value; unknown names are ignored.
func (s *Set) Apply(vals map[string]float64) {
	for name, v := range vals {
		if c, ok := s.index[name]; ok {
			c.Add(v)
		}
	}
}

func (s *Set) Get(name string) *Channel { return s.index[name] }

// BarHeight maps v onto [0, rows] where fullScale fills the bar.
func BarHeight(v, fullScale float64, rows int) int {
	if rows <= 0 || fullScale <= 0 || math.IsNaN(v) || v <= 0 {
		return 0
	}
	x := float64(rows) * v / fullScale
	if x >= float64(rows) {
		return rows
	}
	return int(math.Round(x))
}
