package fxq

import (
	"fmt"
	"math"

	"github.com/pfcm/fxq/interval"
)

// Value is a real quantity a Format can quantize: one float, a bounded
// range of floats, an element-wise array of floats, or an existing
// fixed-point Representation (which re-quantizes exactly, in integers).
type Value struct {
	kind  Kind
	fixed bool
	f     float64
	r     interval.Interval[float64]
	a     []float64
	rep   Representation
}

// V wraps a single real value.
func V(v float64) Value { return Value{kind: Scalar, f: v} }

// VRange wraps a bounded range of real values.
func VRange(r interval.Interval[float64]) Value { return Value{kind: Range, r: r} }

// VArray wraps an array of real values. The slice is not copied.
func VArray(vs []float64) Value { return Value{kind: Array, a: vs} }

// VRep wraps an existing fixed-point value.
func VRep(r Representation) Value {
	return Value{kind: r.mant.kind, fixed: true, rep: r}
}

func (v Value) String() string {
	if v.fixed {
		return v.rep.String()
	}
	switch v.kind {
	case Scalar:
		return fmt.Sprintf("%g", v.f)
	case Range:
		return v.r.String()
	default:
		return fmt.Sprintf("%v", v.a)
	}
}

// IsZero reports whether the value is exactly zero everywhere.
func (v Value) IsZero() bool {
	if v.fixed {
		return v.rep.IsZero()
	}
	switch v.kind {
	case Scalar:
		return v.f == 0
	case Range:
		return v.r.Lo == 0 && v.r.Hi == 0
	default:
		for _, x := range v.a {
			if x != 0 {
				return false
			}
		}
		return true
	}
}

func (v Value) anyNegative() bool {
	if v.fixed {
		return v.rep.mant.anyNegative()
	}
	switch v.kind {
	case Scalar:
		return v.f < 0
	case Range:
		return v.r.Lo < 0
	default:
		for _, x := range v.a {
			if x < 0 {
				return true
			}
		}
		return false
	}
}

// realInterval is the range of real values covered.
func (v Value) realInterval() interval.Interval[float64] {
	if v.fixed {
		return v.rep.RealInterval()
	}
	switch v.kind {
	case Scalar:
		return interval.Point(v.f)
	case Range:
		return v.r
	default:
		lo, hi := v.a[0], v.a[0]
		for _, x := range v.a[1:] {
			lo, hi = math.Min(lo, x), math.Max(hi, x)
		}
		return interval.Of(lo, hi)
	}
}
