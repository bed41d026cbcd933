// package overflow implements the two ways hardware deals with a result
// that does not fit its register: wrap it around, or pin it to the nearest
// limit. Both report whether they had to intervene, so callers can tell a
// corrected value from an untouched one.
package overflow

import (
	"fmt"

	"github.com/pfcm/fxq/interval"
)

// Mode names an overflow behavior. The zero value is Wraparound, the
// default everywhere a unit is built without saying otherwise.
type Mode int

const (
	Wraparound Mode = iota
	Saturate
)

var modeNames = map[Mode]string{
	Wraparound: "wraparound",
	Saturate:   "saturate",
}

func (m Mode) String() string {
	if s, ok := modeNames[m]; ok {
		return s
	}
	return fmt.Sprintf("overflow.Mode(%d)", int(m))
}

// ParseMode maps a mode name back to its Mode.
func ParseMode(s string) (Mode, error) {
	for m, name := range modeNames {
		if s == name {
			return m, nil
		}
	}
	return 0, fmt.Errorf("unknown overflow mode %q", s)
}

// Apply corrects v into r. The flag is true iff v was outside r.
func (m Mode) Apply(v int64, r interval.Interval[int64]) (int64, bool) {
	switch m {
	case Wraparound:
		return wraparound(v, r)
	case Saturate:
		return saturate(v, r)
	}
	panic(fmt.Sprintf("unknown overflow mode %d", int(m)))
}

// ApplyInterval corrects both bounds of v into r. Saturation clamps
// bound-wise. Wraparound wraps bound-wise, but if either bound individually
// overflowed the result collapses to all of r: the wrapped bounds land on
// arbitrary sides of each other and no tighter honest interval exists.
func (m Mode) ApplyInterval(v, r interval.Interval[int64]) (interval.Interval[int64], bool) {
	switch m {
	case Wraparound:
		lo, lof := wraparound(v.Lo, r)
		hi, hif := wraparound(v.Hi, r)
		if lof || hif {
			return r, true
		}
		return interval.Of(lo, hi), false
	case Saturate:
		lo, lof := saturate(v.Lo, r)
		hi, hif := saturate(v.Hi, r)
		return interval.Of(lo, hi), lof || hif
	}
	panic(fmt.Sprintf("unknown overflow mode %d", int(m)))
}

func wraparound(v int64, r interval.Interval[int64]) (int64, bool) {
	if r.Contains(v) {
		return v, false
	}
	w := r.Hi + 1 - r.Lo
	// Go's % truncates toward zero; fold the remainder up so the result
	// always lands in [0, w) before re-basing at r.Lo.
	return ((v-r.Lo)%w+w)%w + r.Lo, true
}

func saturate(v int64, r interval.Interval[int64]) (int64, bool) {
	if v < r.Lo {
		return r.Lo, true
	}
	if v > r.Hi {
		return r.Hi, true
	}
	return v, false
}
