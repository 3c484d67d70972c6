package gradient

import (
	"reflect"
	"testing"
)

func TestParseHex(t *testing.T) {
	var tests = []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"#FF0000", "#ff0000", false},
		{"00ff00", "#00ff00", false},
		{" #00F ", "#0000ff", false},
		{"#GG0000", "", true},
		{"", "", true},
	}
	for _, test := range tests {
		c, err := ParseHex(test.in)
		if (err != nil) != test.wantErr {
			t.Errorf("ParseHex(%q) err = %v; wantErr %v", test.in, err, test.wantErr)
			continue
		}
		if err == nil && c.Hex() != test.want {
			t.Errorf("ParseHex(%q) = %s; want %s", test.in, c.Hex(), test.want)
		}
	}
}

func TestParse(t *testing.T) {
	g, err := Parse([]string{"#ff0000", "#0000FF"})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if !reflect.DeepEqual(g.Hex(), []string{"#FF0000", "#0000FF"}) {
		t.Errorf("Hex() = %v", g.Hex())
	}
	if _, err := Parse([]string{"#ff0000", "nope"}); err == nil {
		t.Error("Parse with bad stop should fail")
	}
}

func TestSampleEnds(t *testing.T) {
	g, _ := Parse([]string{"#FF0000", "#00FF00", "#0000FF"})
	var tests = []struct {
		t    float64
		want string
	}{
		{-1, "#ff0000"},
		{0, "#ff0000"},
		{0.5, "#00ff00"},
		{1, "#0000ff"},
		{2, "#0000ff"},
	}
	for _, test := range tests {
		if got := g.Sample(test.t).Hex(); got != test.want {
			t.Errorf("Sample(%v) = %s; want %s", test.t, got, test.want)
		}
	}
}

func TestSampleSingleAndEmpty(t *testing.T) {
	g, _ := Parse([]string{"#123456"})
	if got := g.Sample(0.7).Hex(); got != "#123456" {
		t.Errorf("Sample single = %s", got)
	}
	if got := (Gradient{}).Strip(10); got != "" {
		t.Errorf("empty Strip = %q", got)
	}
}
