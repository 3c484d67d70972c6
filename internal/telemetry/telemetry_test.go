package telemetry

import (
	"math"
	"testing"
)

const epsilon = 1e-9

func TestChannelSummary(t *testing.T) {
	c := NewChannel("fRawSpeed", 3)
	if s := c.Summary(); s.N != 0 {
		t.Errorf("empty Summary = %+v", s)
	}
	if _, ok := c.Last(); ok {
		t.Error("Last() ok on empty channel")
	}
	for _, v := range []float64{1, 2, 3, 4} {
		c.Add(v)
	}
	s := c.Summary()
	if s.N != 3 || s.Last != 4 || s.Min != 2 || s.Max != 4 {
		t.Errorf("Summary = %+v", s)
	}
	if math.Abs(s.Mean-3) > epsilon || math.Abs(s.StdDev-1) > epsilon {
		t.Errorf("Summary mean/stddev = %v/%v; want 3/1", s.Mean, s.StdDev)
	}
}

func TestSetApply(t *testing.T) {
	s := NewSet([]string{"a", "b"}, 10)
	s.Apply(map[string]float64{"a": 0.5, "zzz": 9})
	if v, ok := s.Get("a").Last(); !ok || v != 0.5 {
		t.Errorf("a = %v, %v", v, ok)
	}
	if _, ok := s.Get("b").Last(); ok {
		t.Error("b should have no samples")
	}
	if s.Get("zzz") != nil {
		t.Error("unknown channel created")
	}
}

func TestBarHeight(t *testing.T) {
	var tests = []struct {
		v     float64
		scale float64
		rows  int
		want  int
	}{
		{0, 1, 10, 0},
		{0.5, 1, 10, 5},
		{1, 1, 10, 10},
		{3, 1, 10, 10},
		{-0.2, 1, 10, 0},
		{50, 100, 8, 4},
		{0.5, 0, 10, 0},
		{math.NaN(), 1, 10, 0},
		{1e19, 1, 8, 8},
		{1e300, 1, 8, 8},
		{math.Inf(1), 1, 8, 8},
		{math.Inf(-1), 1, 8, 0},
	}
	for _, test := range tests {
		if got := BarHeight(test.v, test.scale, test.rows); got != test.want {
			t.Errorf("BarHeight(%v, %v, %d) = %d; want %d", test.v, test.scale, test.rows, got, test.want)
		}
	}
}
