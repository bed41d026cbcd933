// package round implements the quantization strategies used when a value is
// forced onto a coarser fixed-point grid. Each Mode supplies the scalar
// rounding function itself, an exact integer re-quantization for mantissas
// that never round-trips through floating point, and an analytic bound on
// the error a quantization step can introduce.
package round

import (
	"fmt"
	"math"

	"github.com/pfcm/fxq/interval"
)

// Mode names a rounding strategy. The zero value is Floor, the default
// everywhere a unit is built without saying otherwise.
type Mode int

const (
	Floor Mode = iota
	Nearest
	Ceil
	Trunc
)

var modeNames = map[Mode]string{
	Floor:   "floor",
	Nearest: "nearest",
	Ceil:    "ceil",
	Trunc:   "truncate",
}

func (m Mode) String() string {
	if s, ok := modeNames[m]; ok {
		return s
	}
	return fmt.Sprintf("round.Mode(%d)", int(m))
}

// ParseMode maps a mode name back to its Mode.
func ParseMode(s string) (Mode, error) {
	for m, name := range modeNames {
		if s == name {
			return m, nil
		}
	}
	return 0, fmt.Errorf("unknown rounding mode %q", s)
}

// Apply rounds x to an integer. Nearest breaks ties toward +infinity, which
// keeps it consistent with the parity bit rule in Shift.
func (m Mode) Apply(x float64) int64 {
	switch m {
	case Nearest:
		return int64(math.Floor(x + 0.5))
	case Floor:
		return int64(math.Floor(x))
	case Ceil:
		return int64(math.Ceil(x))
	case Trunc:
		return int64(math.Trunc(x))
	}
	panic(fmt.Sprintf("unknown rounding mode %d", int(m)))
}

// Shift re-quantizes an integer mantissa after the LSB position moved by n
// bits, entirely in integers. Positive n is an exact left shift. Negative n
// drops bits, and which way the dropped half rounds is the whole point:
// nearest adds the parity-correct rounding bit, ceil(x) = -floor(-x), and
// truncate keeps whichever of the floor/ceil results is smaller in
// magnitude.
func (m Mode) Shift(v int64, n int) int64 {
	if n >= 0 {
		return v << uint(n)
	}
	switch m {
	case Floor:
		// Arithmetic right shift floors for negative values too.
		return v >> uint(-n)
	case Nearest:
		return v>>uint(-n) + v>>uint(-n-1)&1
	case Ceil:
		return -((-v) >> uint(-n))
	case Trunc:
		if v >= 0 {
			return v >> uint(-n)
		}
		return -((-v) >> uint(-n))
	}
	panic(fmt.Sprintf("unknown rounding mode %d", int(m)))
}

// ShiftInterval applies Shift to both bounds.
func (m Mode) ShiftInterval(v interval.Interval[int64], n int) interval.Interval[int64] {
	return interval.Of(m.Shift(v.Lo, n), m.Shift(v.Hi, n))
}

// ErrorBounds bounds the rounding error introduced when quantizing an
// arbitrary real to a step of 2^outputLSB.
func (m Mode) ErrorBounds(outputLSB int) interval.Interval[float64] {
	o := math.Ldexp(1, outputLSB)
	switch m {
	case Nearest:
		return interval.Of(-o/2, o/2)
	case Floor:
		return interval.Of(-o, 0)
	case Ceil:
		return interval.Of(0, o)
	case Trunc:
		return interval.Of(-o, o)
	}
	panic(fmt.Sprintf("unknown rounding mode %d", int(m)))
}

// ErrorBoundsFrom is ErrorBounds tightened by the knowledge that the input
// was already quantized to a step of 2^inputLSB: no error below that
// resolution was available to introduce.
func (m Mode) ErrorBoundsFrom(outputLSB, inputLSB int) interval.Interval[float64] {
	o := math.Ldexp(1, outputLSB)
	i := math.Ldexp(1, inputLSB)
	switch m {
	case Nearest:
		return interval.Of(-o/2+i, o/2)
	case Floor:
		return interval.Of(-o+i, 0)
	case Ceil:
		return interval.Of(0, o-i)
	case Trunc:
		return interval.Of(-o+i, o-i)
	}
	panic(fmt.Sprintf("unknown rounding mode %d", int(m)))
}
