package profile

import (
	"reflect"
	"testing"
)

func TestLookup(t *testing.T) {
	var tests = []struct {
		name      string
		tuning    int
		telemetry int
		gradient  bool
		wantErr   bool
	}{
		{"", 4, 4, false, false},
		{"classic", 4, 4, false, false},
		{"FULL", 8, 5, true, false},
		{"turbo", 0, 0, false, true},
	}
	for _, test := range tests {
		p, err := Lookup(test.name)
		if (err != nil) != test.wantErr {
			t.Errorf("Lookup(%q) err = %v; wantErr %v", test.name, err, test.wantErr)
			continue
		}
		if len(p.Tuning) != test.tuning || len(p.Telemetry) != test.telemetry || p.Gradient != test.gradient {
			t.Errorf("Lookup(%q) = %+v", test.name, p)
		}
	}
}

func TestLookupReturnsCopy(t *testing.T) {
	p, _ := Lookup("classic")
	p.Tuning[0] = "changed"
	q, _ := Lookup("classic")
	if q.Tuning[0] != "MinSpeed" {
		t.Errorf("Lookup shares backing array: got %q", q.Tuning[0])
	}
}

func TestOverride(t *testing.T) {
	p, _ := Lookup("classic")
	p = p.Override("A, B,,A", "")
	if !reflect.DeepEqual(p.Tuning, []string{"A", "B"}) {
		t.Errorf("Override tuning = %v", p.Tuning)
	}
	if len(p.Telemetry) != 4 {
		t.Errorf("Override telemetry = %v", p.Telemetry)
	}
}
