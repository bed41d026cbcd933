package fxq

import (
	"fmt"
	"math"
	"slices"

	"github.com/pfcm/fxq/interval"
	"github.com/pfcm/fxq/overflow"
	"github.com/pfcm/fxq/round"
)

// Kind tags the shape of a Mant or Value: one number, a bounded range of
// numbers, or an element-wise array of numbers.
type Kind int

const (
	Scalar Kind = iota
	Range
	Array
)

func (k Kind) String() string {
	switch k {
	case Scalar:
		return "scalar"
	case Range:
		return "range"
	case Array:
		return "array"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Mant is a mantissa: the raw integer storage behind a fixed-point value.
// It is a tagged variant so the same arithmetic runs over a single integer,
// a bounded range of integers, or an array of integers element-wise.
type Mant struct {
	kind Kind
	s    int64
	r    interval.Interval[int64]
	a    []int64
}

// MantOf wraps a single integer mantissa.
func MantOf(v int64) Mant { return Mant{kind: Scalar, s: v} }

// MantRange wraps a bounded range of mantissas.
func MantRange(r interval.Interval[int64]) Mant { return Mant{kind: Range, r: r} }

// MantArray wraps an array of mantissas. The slice is copied.
func MantArray(vs []int64) Mant {
	return Mant{kind: Array, a: slices.Clone(vs)}
}

func (m Mant) Kind() Kind { return m.kind }

// Int64 returns the scalar mantissa. It is only valid for Scalar kind.
func (m Mant) Int64() (int64, bool) {
	return m.s, m.kind == Scalar
}

// Interval returns the mantissa range. It is only valid for Range kind.
func (m Mant) Interval() (interval.Interval[int64], bool) {
	return m.r, m.kind == Range
}

// Array returns a copy of the mantissa array. It is only valid for Array
// kind.
func (m Mant) Array() ([]int64, bool) {
	if m.kind != Array {
		return nil, false
	}
	return slices.Clone(m.a), true
}

func (m Mant) String() string {
	switch m.kind {
	case Scalar:
		return fmt.Sprintf("%d", m.s)
	case Range:
		return m.r.String()
	default:
		return fmt.Sprintf("%v", m.a)
	}
}

func (m Mant) isZero() bool {
	switch m.kind {
	case Scalar:
		return m.s == 0
	case Range:
		return m.r.Lo == 0 && m.r.Hi == 0
	default:
		for _, v := range m.a {
			if v != 0 {
				return false
			}
		}
		return true
	}
}

// in reports whether every possible mantissa lies within r.
func (m Mant) in(r interval.Interval[int64]) bool {
	switch m.kind {
	case Scalar:
		return r.Contains(m.s)
	case Range:
		return r.ContainsInterval(m.r)
	default:
		for _, v := range m.a {
			if !r.Contains(v) {
				return false
			}
		}
		return true
	}
}

// binop applies f uniformly: matching kinds combine directly, and a Scalar
// mixes with either of the others. Mixing Range with Array is not a thing.
func (m Mant) binop(o Mant, f func(a, b int64) int64) (Mant, error) {
	switch {
	case m.kind == Scalar && o.kind == Scalar:
		return MantOf(f(m.s, o.s)), nil
	case m.kind == Range && o.kind == Range:
		return MantRange(interval.FromPair([2]int64{f(m.r.Lo, o.r.Lo), f(m.r.Hi, o.r.Hi)})), nil
	case m.kind == Array && o.kind == Array:
		if len(m.a) != len(o.a) {
			return Mant{}, fmt.Errorf("fxq: mantissa length mismatch: %d vs %d", len(m.a), len(o.a))
		}
		vs := make([]int64, len(m.a))
		for i := range vs {
			vs[i] = f(m.a[i], o.a[i])
		}
		return Mant{kind: Array, a: vs}, nil
	case m.kind == Scalar:
		return MantOf(m.s).lift(o).binop(o, f)
	case o.kind == Scalar:
		return m.binop(o.lift(m), f)
	}
	return Mant{}, fmt.Errorf("fxq: cannot combine %v and %v mantissas", m.kind, o.kind)
}

// lift broadcasts a scalar to the shape of o.
func (m Mant) lift(o Mant) Mant {
	switch o.kind {
	case Range:
		return MantRange(interval.Point(m.s))
	case Array:
		vs := make([]int64, len(o.a))
		for i := range vs {
			vs[i] = m.s
		}
		return Mant{kind: Array, a: vs}
	}
	return m
}

func (m Mant) add(o Mant) (Mant, error) {
	return m.binop(o, func(a, b int64) int64 { return a + b })
}

func (m Mant) sub(o Mant) (Mant, error) {
	switch {
	case m.kind == Range && o.kind == Range:
		// Mantissa ranges subtract bound-wise: a unit combining two
		// range operands tracks paired bounds, not a free difference.
		return MantRange(m.r.Difference(o.r)), nil
	case m.kind == Range && o.kind == Scalar:
		return MantRange(m.r.SubScalar(o.s)), nil
	case m.kind == Scalar && o.kind == Range:
		return MantRange(interval.Point(m.s).Difference(o.r)), nil
	}
	return m.binop(o, func(a, b int64) int64 { return a - b })
}

func (m Mant) mul(o Mant) (Mant, error) {
	if m.kind == Range || o.kind == Range {
		a, b := m, o
		if a.kind == Scalar {
			a = a.lift(b)
		}
		if b.kind == Scalar {
			b = b.lift(a)
		}
		if a.kind != Range || b.kind != Range {
			return Mant{}, fmt.Errorf("fxq: cannot combine %v and %v mantissas", m.kind, o.kind)
		}
		return MantRange(a.r.Mul(b.r)), nil
	}
	return m.binop(o, func(a, b int64) int64 { return a * b })
}

func (m Mant) neg() Mant {
	switch m.kind {
	case Scalar:
		return MantOf(-m.s)
	case Range:
		return MantRange(m.r.Neg())
	default:
		vs := make([]int64, len(m.a))
		for i, v := range m.a {
			vs[i] = -v
		}
		return Mant{kind: Array, a: vs}
	}
}

func (m Mant) lsh(n uint) Mant {
	return m.each(func(v int64) int64 { return v << n })
}

func (m Mant) rsh(n uint) Mant {
	return m.each(func(v int64) int64 { return v >> n })
}

func (m Mant) each(f func(int64) int64) Mant {
	switch m.kind {
	case Scalar:
		return MantOf(f(m.s))
	case Range:
		return MantRange(interval.FromPair([2]int64{f(m.r.Lo), f(m.r.Hi)}))
	default:
		vs := make([]int64, len(m.a))
		for i, v := range m.a {
			vs[i] = f(v)
		}
		return Mant{kind: Array, a: vs}
	}
}

// shiftLSB re-quantizes every mantissa after the LSB moved by n bits, using
// the rounding mode's exact integer shift.
func (m Mant) shiftLSB(rm round.Mode, n int) Mant {
	return m.each(func(v int64) int64 { return rm.Shift(v, n) })
}

// correct applies an overflow behavior over the whole variant. The flag is
// true iff any element had to be corrected.
func (m Mant) correct(mode overflow.Mode, r interval.Interval[int64]) (Mant, bool) {
	switch m.kind {
	case Scalar:
		v, f := mode.Apply(m.s, r)
		return MantOf(v), f
	case Range:
		iv, f := mode.ApplyInterval(m.r, r)
		return MantRange(iv), f
	default:
		vs := make([]int64, len(m.a))
		var flag bool
		for i, v := range m.a {
			var f bool
			vs[i], f = mode.Apply(v, r)
			flag = flag || f
		}
		return Mant{kind: Array, a: vs}, flag
	}
}

// sign classifies the variant against zero: -1, 0 or +1 when every element
// agrees, with ok=false when they do not.
func (m Mant) sign() (int, bool) {
	switch m.kind {
	case Scalar:
		return sgn(m.s), true
	case Range:
		if m.r.Hi < 0 {
			return -1, true
		}
		if m.r.Lo > 0 {
			return 1, true
		}
		if m.r.Lo == 0 && m.r.Hi == 0 {
			return 0, true
		}
		return 0, false
	default:
		if len(m.a) == 0 {
			return 0, true
		}
		s := sgn(m.a[0])
		for _, v := range m.a[1:] {
			if sgn(v) != s {
				return 0, false
			}
		}
		return s, true
	}
}

func sgn(v int64) int {
	switch {
	case v < 0:
		return -1
	case v > 0:
		return 1
	}
	return 0
}

// anyNegative reports whether any element can be negative.
func (m Mant) anyNegative() bool {
	switch m.kind {
	case Scalar:
		return m.s < 0
	case Range:
		return m.r.Lo < 0
	default:
		for _, v := range m.a {
			if v < 0 {
				return true
			}
		}
		return false
	}
}

// realInterval is the range of real values the mantissas cover at a grid
// step of 2^lsb. Used for error reporting and bound tracking.
func (m Mant) realInterval(lsb int) interval.Interval[float64] {
	switch m.kind {
	case Scalar:
		return interval.Point(math.Ldexp(float64(m.s), lsb))
	case Range:
		return interval.Of(
			math.Ldexp(float64(m.r.Lo), lsb),
			math.Ldexp(float64(m.r.Hi), lsb),
		)
	default:
		lo, hi := m.a[0], m.a[0]
		for _, v := range m.a[1:] {
			lo, hi = min(lo, v), max(hi, v)
		}
		return interval.Of(math.Ldexp(float64(lo), lsb), math.Ldexp(float64(hi), lsb))
	}
}
