// Package protocol implements the line-oriented text protocol spoken by the
// cloud controller firmware.
//
// Device to host:
//
//	TUNING MinSpeed=0.1 MaxSpeed=2 ...
//	STATUS fRawSpeed=0.42 fCurSpeed=0.40 ...
//	COLORS - #FF0000 #00FF00 #0000FF
//
// Host to device:
//
//	REQUEST_TUNING
//	NEW_TUNING <name>=<value>
//	REQUEST_COLORS
//	NEW_COLOR <index>=<#RRGGBB>
//	SAVE_TUNING
//	RESTORE_TUNING
package protocol

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Kind classifies an incoming line by its literal prefix.
type Kind int

const (
	KindOther Kind = iota
	KindTuning
	KindStatus
	KindColors
)

func (k Kind) String() string {
	switch k {
	case KindTuning:
		return "tuning"
	case KindStatus:
		return "status"
	case KindColors:
		return "colors"
	default:
		return "other"
	}
}

const (
	prefixTuning = "TUNING"
	prefixStatus = "STATUS"
	prefixColors = "COLORS - "
)

// Classify returns the kind of line. COLORS is checked first so that a
// longer prefix always wins.
func Classify(line string) Kind {
	switch {
	case strings.HasPrefix(line, prefixColors):
		return KindColors
	case strings.HasPrefix(line, prefixTuning):
		return KindTuning
	case strings.HasPrefix(line, prefixStatus):
		return KindStatus
	default:
		return KindOther
	}
}

// ReadValue finds key in line, skips the key plus one separator byte and
// returns the text up to the next space (or end of line).
func ReadValue(line, key string) (string, bool) {
	if key == "" {
		return "", false
	}
	line = strings.TrimRight(line, "\r\n")
	i := strings.Index(line, key)
	if i < 0 {
		return "", false
	}
	start := i + len(key) + 1
	if start > len(line) {
		return "", true
	}
	rest := line[start:]
	if end := strings.IndexByte(rest, ' '); end >= 0 {
		rest = rest[:end]
	}
	return rest, true
}

// Values extracts every key present in line. Missing keys are absent from
// the result.
func Values(line string, keys []string) map[string]string {
	out := make(map[string]string, len(keys))
	for _, k := range keys {
		if v, ok := ReadValue(line, k); ok {
			out[k] = v
		}
	}
	return out
}

// Floats is like Values but parses each value; keys whose value is not a
// number (NaN included) are reported in bad.
func Floats(line string, keys []string) (vals map[string]float64, bad []string) {
	vals = make(map[string]float64, len(keys))
	for k, s := range Values(line, keys) {
		f, err := strconv.ParseFloat(s, 64)
		if err != nil || math.IsNaN(f) {
			bad = append(bad, k)
			continue
		}
		vals[k] = f
	}
	return vals, bad
}

// Colors returns the space-separated stops following the COLORS prefix.
func Colors(line string) []string {
	line = strings.TrimRight(line, "\r\n")
	if !strings.HasPrefix(line, prefixColors) {
		return nil
	}
	return strings.Fields(line[len(prefixColors):])
}

// ------------------------------ commands --------------------------------------

const (
	RequestTuning = "REQUEST_TUNING\n"
	RequestColors = "REQUEST_COLORS\n"
	SaveTuning    = "SAVE_TUNING\n"
	RestoreTuning = "RESTORE_TUNING\n"
)

// FormatFloat renders v the shortest way that round-trips.
func FormatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// NewTuning builds the command that sets one tuning parameter.
func NewTuning(name string, v float64) string {
	return "NEW_TUNING " + name + "=" + FormatFloat(v) + "\n"
}

// ParseTuningInput validates operator text and builds the NEW_TUNING command.
func ParseTuningInput(name, text string) (string, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
	if err != nil {
		return "", fmt.Errorf("invalid float value %q for %s", text, name)
	}
	return NewTuning(name, v), nil
}

// NewColor builds the command that sets gradient stop idx.
func NewColor(idx int, hex string) string {
	return fmt.Sprintf("NEW_COLOR %d=%s\n", idx, strings.ToUpper(hex))
}
