// Package preset describes the labelled durations a countdown can be started
// from, such as "0.6 hour", "15 min" or "30 sec".
package preset

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrMalformed is returned when a label's leading token is not a usable
// number for its unit.
var ErrMalformed = errors.New("malformed duration label")

// MaxSeconds bounds the duration a label may resolve to.
const MaxSeconds = math.MaxInt32

// Unit is the semantic unit of a preset label.
type Unit int

const (
	UnitUnknown Unit = iota
	Hour
	Minute
	Second
)

func (u Unit) String() string {
	switch u {
	case Hour:
		return "hour"
	case Minute:
		return "min"
	case Second:
		return "sec"
	}
	return "unknown"
}

// ParseUnit finds the unit named in a label. Hours win over minutes and
// minutes over seconds when a label mentions more than one.
func ParseUnit(label string) Unit {
	switch {
	case strings.Contains(label, Hour.String()):
		return Hour
	case strings.Contains(label, Minute.String()):
		return Minute
	case strings.Contains(label, Second.String()):
		return Second
	}
	return UnitUnknown
}

// Preset is a user-selectable labelled duration.
type Preset struct {
	Label     string
	Unit      Unit
	Magnitude float64
}

// New builds a preset and its canonical label. Hours keep one decimal place,
// minutes and seconds are truncated to integers.
func New(magnitude float64, unit Unit) Preset {
	var label string
	switch unit {
	case Hour:
		label = fmt.Sprintf("%.1f %s", magnitude, unit)
	default:
		magnitude = math.Trunc(magnitude)
		label = fmt.Sprintf("%d %s", int(magnitude), unit)
	}
	return Preset{Label: label, Unit: unit, Magnitude: magnitude}
}

// FromLabel accepts any label. A leading token that does not parse leaves
// Magnitude at zero; the problem is reported later by Seconds.
func FromLabel(label string) Preset {
	p := Preset{Label: label, Unit: ParseUnit(label)}
	if token := leadingToken(label); token != "" {
		if v, err := strconv.ParseFloat(token, 64); err == nil {
			p.Magnitude = v
		}
	}
	return p
}

// Seconds resolves the label into a total number of seconds. showHours is
// set for hour labels of at least one hour.
func (p Preset) Seconds() (total int, showHours bool, err error) {
	token := leadingToken(p.Label)
	if token == "" {
		return 0, false, fmt.Errorf("%w: %q has no numeric token", ErrMalformed, p.Label)
	}

	switch p.Unit {
	case Hour:
		v, perr := strconv.ParseFloat(token, 64)
		if perr != nil {
			return 0, false, fmt.Errorf("%w: %q: %v", ErrMalformed, p.Label, perr)
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, false, fmt.Errorf("%w: %q is not finite", ErrMalformed, p.Label)
		}
		if v*3600 > MaxSeconds {
			return 0, false, fmt.Errorf("%w: %q is too long", ErrMalformed, p.Label)
		}
		total = int(math.Round(v * 3600))
		showHours = v >= 1.0
	case Minute:
		v, perr := strconv.Atoi(token)
		if perr != nil {
			return 0, false, fmt.Errorf("%w: %q: %v", ErrMalformed, p.Label, perr)
		}
		if v > MaxSeconds/60 {
			return 0, false, fmt.Errorf("%w: %q is too long", ErrMalformed, p.Label)
		}
		total = v * 60
	case Second:
		v, perr := strconv.Atoi(token)
		if perr != nil {
			return 0, false, fmt.Errorf("%w: %q: %v", ErrMalformed, p.Label, perr)
		}
		if v > MaxSeconds {
			return 0, false, fmt.Errorf("%w: %q is too long", ErrMalformed, p.Label)
		}
		total = v
	default:
		return 0, false, fmt.Errorf("%w: %q has no unit", ErrMalformed, p.Label)
	}

	if total <= 0 {
		return 0, false, fmt.Errorf("%w: %q is not a positive duration", ErrMalformed, p.Label)
	}
	return total, showHours, nil
}

func (p Preset) String() string {
	return p.Label
}

func leadingToken(label string) string {
	fields := strings.Fields(label)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}
