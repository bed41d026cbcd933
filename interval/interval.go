// package interval does bounded-range arithmetic. An Interval is a pair of
// bounds and every operation returns the tightest interval containing all
// possible results, so pushing a range of inputs through a chain of operations
// yields a worst-case range for the output.
package interval

import (
	"fmt"

	"golang.org/x/exp/constraints"
)

// Scalar is anything an Interval can bound.
type Scalar interface {
	constraints.Integer | constraints.Float
}

// Interval is a closed range [Lo, Hi]. The zero value is the degenerate
// interval [0, 0].
type Interval[T Scalar] struct {
	Lo, Hi T
}

// New builds an interval from explicit bounds. It fails if hi < lo.
func New[T Scalar](lo, hi T) (Interval[T], error) {
	if hi < lo {
		return Interval[T]{}, fmt.Errorf("interval upper bound %v cannot be lower than lower bound %v", hi, lo)
	}
	return Interval[T]{Lo: lo, Hi: hi}, nil
}

// Of is like New but panics on invalid bounds. It is for bounds that are
// ordered by construction.
func Of[T Scalar](lo, hi T) Interval[T] {
	iv, err := New(lo, hi)
	if err != nil {
		panic(err)
	}
	return iv
}

// Point is the degenerate interval [v, v].
func Point[T Scalar](v T) Interval[T] {
	return Interval[T]{Lo: v, Hi: v}
}

// FromPair builds an interval from a 2 element pair, ordering not required.
func FromPair[T Scalar](p [2]T) Interval[T] {
	return Interval[T]{Lo: min(p[0], p[1]), Hi: max(p[0], p[1])}
}

func (i Interval[T]) String() string {
	return fmt.Sprintf("[%v, %v]", i.Lo, i.Hi)
}

// IsPoint reports whether the interval holds exactly one value.
func (i Interval[T]) IsPoint() bool { return i.Lo == i.Hi }

// Abs returns the interval of |x| for all x in i.
func (i Interval[T]) Abs() Interval[T] {
	lo := max(i.Lo, 0)
	a, b := i.Lo, i.Hi
	if a < 0 {
		a = -a
	}
	if b < 0 {
		b = -b
	}
	return Interval[T]{Lo: lo, Hi: max(a, b)}
}

func (i Interval[T]) Add(o Interval[T]) Interval[T] {
	return Interval[T]{Lo: i.Lo + o.Lo, Hi: i.Hi + o.Hi}
}

func (i Interval[T]) AddScalar(v T) Interval[T] {
	return Interval[T]{Lo: i.Lo + v, Hi: i.Hi + v}
}

// Sub is interval subtraction: the range of x-y over all x in i, y in o.
// The bounds cross over, which widens the result.
func (i Interval[T]) Sub(o Interval[T]) Interval[T] {
	return Interval[T]{Lo: i.Lo - o.Hi, Hi: i.Hi - o.Lo}
}

func (i Interval[T]) SubScalar(v T) Interval[T] {
	return Interval[T]{Lo: i.Lo - v, Hi: i.Hi - v}
}

// Difference subtracts bound-wise, without the defensive widening Sub does.
// It is for deltas between intervals whose bounds are known to track
// together, not for general interval subtraction.
func (i Interval[T]) Difference(o Interval[T]) Interval[T] {
	return Interval[T]{Lo: i.Lo - o.Lo, Hi: i.Hi - o.Hi}
}

// Mul evaluates all four bound pair products and keeps the extremes. All
// four are needed because the signs of the bounds are not known a priori.
func (i Interval[T]) Mul(o Interval[T]) Interval[T] {
	a, b, c, d := i.Lo*o.Lo, i.Lo*o.Hi, i.Hi*o.Lo, i.Hi*o.Hi
	return Interval[T]{
		Lo: min(min(a, b), min(c, d)),
		Hi: max(max(a, b), max(c, d)),
	}
}

func (i Interval[T]) MulScalar(v T) Interval[T] {
	a, b := i.Lo*v, i.Hi*v
	return Interval[T]{Lo: min(a, b), Hi: max(a, b)}
}

// Div is the four-corner quotient range. Division by an interval containing
// zero is the caller's problem, exactly as it is for scalars.
func (i Interval[T]) Div(o Interval[T]) Interval[T] {
	a, b, c, d := i.Lo/o.Lo, i.Lo/o.Hi, i.Hi/o.Lo, i.Hi/o.Hi
	return Interval[T]{
		Lo: min(min(a, b), min(c, d)),
		Hi: max(max(a, b), max(c, d)),
	}
}

func (i Interval[T]) Neg() Interval[T] {
	return Interval[T]{Lo: -i.Hi, Hi: -i.Lo}
}

// Contains reports whether v lies within the interval.
func (i Interval[T]) Contains(v T) bool {
	return i.Lo <= v && v <= i.Hi
}

// ContainsInterval reports whether o lies entirely within i.
func (i Interval[T]) ContainsInterval(o Interval[T]) bool {
	return i.Lo <= o.Lo && o.Hi <= i.Hi
}

func (i Interval[T]) Eq(o Interval[T]) bool {
	return i.Lo == o.Lo && i.Hi == o.Hi
}

// The ordering predicates are conservative: they hold only when every value
// of one interval dominates every value of the other, and report false
// otherwise. A false Lt does not imply Ge.

func (i Interval[T]) Lt(o Interval[T]) bool { return i.Hi < o.Lo }
func (i Interval[T]) Le(o Interval[T]) bool { return i.Hi <= o.Lo }
func (i Interval[T]) Gt(o Interval[T]) bool { return i.Lo > o.Hi }
func (i Interval[T]) Ge(o Interval[T]) bool { return i.Lo >= o.Hi }

// Lsh shifts both bounds left. Integer intervals only.
func Lsh[T constraints.Integer](i Interval[T], n uint) Interval[T] {
	return Interval[T]{Lo: i.Lo << n, Hi: i.Hi << n}
}

// Rsh shifts both bounds right. Integer intervals only.
func Rsh[T constraints.Integer](i Interval[T], n uint) Interval[T] {
	return Interval[T]{Lo: i.Lo >> n, Hi: i.Hi >> n}
}

// FloorDiv is the four-corner quotient range under Go's truncating integer
// division.
func FloorDiv[T constraints.Integer](i, o Interval[T]) Interval[T] {
	a, b, c, d := i.Lo/o.Lo, i.Lo/o.Hi, i.Hi/o.Lo, i.Hi/o.Hi
	return Interval[T]{
		Lo: min(min(a, b), min(c, d)),
		Hi: max(max(a, b), max(c, d)),
	}
}

// Mod is the four-corner remainder range under Go's truncating remainder.
func Mod[T constraints.Integer](i, o Interval[T]) Interval[T] {
	a, b, c, d := i.Lo%o.Lo, i.Lo%o.Hi, i.Hi%o.Lo, i.Hi%o.Hi
	return Interval[T]{
		Lo: min(min(a, b), min(c, d)),
		Hi: max(max(a, b), max(c, d)),
	}
}
