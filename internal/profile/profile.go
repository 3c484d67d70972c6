// Package profile holds the named parameter sets a cloud firmware build exposes.
package profile

import (
	"fmt"
	"strings"
)

type Profile struct {
	Name      string
	Tuning    []string
	Telemetry []string
	Gradient  bool
}

var classic = Profile{
	Name:      "classic",
	Tuning:    []string{"MinSpeed", "MaxSpeed", "NewSpeedWeight", "InputExponent"},
	Telemetry: []string{"fRawSpeed", "fCurSpeed", "fNewSpeedRatio", "fSpeedRatio"},
}

var full = Profile{
	Name: "full",
	Tuning: []string{
		"MinSpeed", "MaxSpeed", "NewSpeedWeight", "InputExponent",
		"Brightness", "ColorSpeed", "FadeRate", "NoiseScale",
	},
	Telemetry: []string{"fRawSpeed", "fCurSpeed", "fNewSpeedRatio", "fSpeedRatio", "fBrightness"},
	Gradient:  true,
}

// Lookup returns a copy of the named profile.
func Lookup(name string) (Profile, error) {
	var p Profile
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "classic":
		p = classic
	case "full":
		p = full
	default:
		return Profile{}, fmt.Errorf("unknown profile %q, must be 'classic' or 'full'", name)
	}
	p.Tuning = append([]string(nil), p.Tuning...)
	p.Telemetry = append([]string(nil), p.Telemetry...)
	return p, nil
}

// Override replaces the tuning and telemetry lists with the comma separated
// lists given, when non-empty.
func (p Profile) Override(tuning, telemetry string) Profile {
	if l := SplitList(tuning); len(l) > 0 {
		p.Tuning = l
	}
	if l := SplitList(telemetry); len(l) > 0 {
		p.Telemetry = l
	}
	return p
}

// SplitList splits a comma separated list, dropping blanks and duplicates.
func SplitList(s string) []string {
	var out []string
	seen := map[string]struct{}{}
	for _, f := range strings.Split(s, ",") {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}
		if _, ok := seen[f]; ok {
			continue
		}
		seen[f] = struct{}{}
		out = append(out, f)
	}
	return out
}
