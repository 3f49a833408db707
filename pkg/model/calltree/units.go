package calltree

import (
	"fmt"
	"math"

	"github.com/dustin/go-humanize"
)

// Unit is the unit sample weights are measured in.
type Unit string

const (
	UnitNone         = Unit("none")
	UnitNanoseconds  = Unit("nanoseconds")
	UnitMicroseconds = Unit("microseconds")
	UnitMilliseconds = Unit("milliseconds")
	UnitSeconds      = Unit("seconds")
	UnitBytes        = Unit("bytes")
)

// ParseUnit maps a unit name onto a Unit. Unknown names yield UnitNone.
func ParseUnit(s string) Unit {
	switch u := Unit(s); u {
	case UnitNanoseconds, UnitMicroseconds, UnitMilliseconds, UnitSeconds, UnitBytes:
		return u
	default:
		return UnitNone
	}
}

// seconds returns how many seconds one unit of weight is, or 0 if the unit
// is not a time unit.
func (u Unit) seconds() float64 {
	switch u {
	case UnitNanoseconds:
		return 1e-9
	case UnitMicroseconds:
		return 1e-6
	case UnitMilliseconds:
		return 1e-3
	case UnitSeconds:
		return 1
	default:
		return 0
	}
}

// Format renders a weight for display.
func (u Unit) Format(v float64) string {
	switch {
	case math.IsNaN(v) || math.IsInf(v, 0):
		return fmt.Sprint(v)
	case u == UnitBytes:
		return formatBytes(v)
	case u.seconds() > 0:
		return formatTime(v * u.seconds())
	}
	return humanize.Commaf(math.Round(v*100) / 100)
}

func formatTime(s float64) string {
	abs := math.Abs(s)
	switch {
	case abs >= 60:
		return fmt.Sprintf("%.2fmin", s/60)
	case abs >= 1:
		return fmt.Sprintf("%.2fs", s)
	case abs >= 1e-3:
		return fmt.Sprintf("%.2fms", s/1e-3)
	case abs >= 1e-6:
		return fmt.Sprintf("%.2fµs", s/1e-6)
	}
	return fmt.Sprintf("%.2fns", s/1e-9)
}

func formatBytes(v float64) string {
	if v < 0 {
		return "-" + humanize.IBytes(uint64(-v))
	}
	return humanize.IBytes(uint64(v))
}
