package fxq

import (
	"fmt"
	"math"

	"github.com/pfcm/fxq/interval"
)

// Representation is a bit-exact fixed-point value: an integer mantissa (or
// a range or array of them) under a Format. Representations are immutable;
// arithmetic always returns new ones.
type Representation struct {
	mant Mant
	f    Format
}

// NewRep builds a representation, checking that every mantissa lies in the
// format's legal range.
func NewRep(m Mant, f Format) (Representation, error) {
	if f.OverflowsWith(m) {
		return Representation{}, fmt.Errorf("fxq: mantissa %v cannot be represented in %v", m, f)
	}
	return Representation{mant: m, f: f}, nil
}

// rep is NewRep for mantissas that are in range by construction.
func rep(m Mant, f Format) Representation {
	return Representation{mant: m, f: f}
}

func (r Representation) Mant() Mant     { return r.mant }
func (r Representation) Format() Format { return r.f }

// IsInteger reports whether the format's grid is whole numbers, making
// rounding-to-integer a no-op.
func (r Representation) IsInteger() bool { return r.f.lsb >= 0 }

// IsZero reports whether every mantissa is zero.
func (r Representation) IsZero() bool { return r.mant.isZero() }

// Float is the real value of a scalar representation. It panics on Range
// or Array mantissas; use RealInterval or Floats for those.
func (r Representation) Float() float64 {
	m, ok := r.mant.Int64()
	if !ok {
		panic(fmt.Sprintf("fxq: Float on %v mantissa", r.mant.kind))
	}
	return math.Ldexp(float64(m), r.f.lsb)
}

// Floats is the element-wise real values of an array representation.
func (r Representation) Floats() ([]float64, bool) {
	ms, ok := r.mant.Array()
	if !ok {
		return nil, false
	}
	vs := make([]float64, len(ms))
	for i, m := range ms {
		vs[i] = math.Ldexp(float64(m), r.f.lsb)
	}
	return vs, true
}

// RealInterval is the range of real values the representation covers.
func (r Representation) RealInterval() interval.Interval[float64] {
	return r.mant.realInterval(r.f.lsb)
}

// Int converts a scalar representation to an integer by shifting the
// mantissa, so no floating point is involved. A negative LSB floors, as a
// right shift does.
func (r Representation) Int() (int64, bool) {
	m, ok := r.mant.Int64()
	if !ok {
		return 0, false
	}
	if r.f.lsb < 0 {
		return m >> uint(-r.f.lsb), true
	}
	return m << uint(r.f.lsb), true
}

func (r Representation) String() string {
	return fmt.Sprintf("%v*2^%d (%s)", r.mant, r.f.lsb, r.f)
}
