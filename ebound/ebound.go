// package ebound pairs a nominal value with an analytically tracked
// interval of accumulated worst-case error. The nominal side can be an
// exact float, a bounded range, or a fixed-point number evaluated under an
// ambient unit; arithmetic propagates both sides together, adding the
// rounding error a fixed-point result picks up whenever its grid is
// coarser than its operands'.
package ebound

import (
	"fmt"
	"math"

	"github.com/pfcm/fxq"
	"github.com/pfcm/fxq/interval"
	"github.com/pfcm/fxq/round"
)

type kind int

const (
	floatNom kind = iota
	rangeNom
	fixedNom
)

// Number is a nominal value plus the interval its true value is known to
// lie within, relative to the nominal: true value = nominal + e for some e
// in ErrorBounds. A freshly constructed exact value carries the degenerate
// bounds [0, 0].
type Number struct {
	kind kind
	f    float64
	r    interval.Interval[float64]
	n    fxq.Number
	err  interval.Interval[float64]
}

// Exact wraps a float with no accumulated error.
func Exact(x float64) Number {
	return Number{kind: floatNom, f: x}
}

// WithBounds wraps a float with explicit error bounds.
func WithBounds(x float64, err interval.Interval[float64]) Number {
	return Number{kind: floatNom, f: x, err: err}
}

// OfRange wraps a bounded range of nominal values with no accumulated
// error.
func OfRange(r interval.Interval[float64]) Number {
	return Number{kind: rangeNom, r: r}
}

// RangeWithBounds wraps a range with explicit error bounds.
func RangeWithBounds(r, err interval.Interval[float64]) Number {
	return Number{kind: rangeNom, r: r, err: err}
}

// Fixed wraps a fixed-point number with no accumulated error.
func Fixed(n fxq.Number) Number {
	return Number{kind: fixedNom, n: n}
}

// FixedWithBounds wraps a fixed-point number with explicit error bounds.
func FixedWithBounds(n fxq.Number, err interval.Interval[float64]) Number {
	return Number{kind: fixedNom, n: n, err: err}
}

// ErrorBounds is the accumulated worst-case error interval.
func (a Number) ErrorBounds() interval.Interval[float64] { return a.err }

// Real is the range of nominal values: a point for floats and scalar
// fixed-point numbers. It does not include the error bounds.
func (a Number) Real() interval.Interval[float64] {
	switch a.kind {
	case floatNom:
		return interval.Point(a.f)
	case rangeNom:
		return a.r
	default:
		return a.n.Rep().RealInterval()
	}
}

// Float is a point estimate of the nominal: the value itself for floats
// and scalar fixed-point numbers, the midpoint for ranges.
func (a Number) Float() float64 {
	switch a.kind {
	case floatNom:
		return a.f
	case rangeNom:
		return (a.r.Lo + a.r.Hi) / 2
	default:
		return a.n.Float()
	}
}

func (a Number) String() string {
	switch a.kind {
	case floatNom:
		return fmt.Sprintf("%g±%v", a.f, a.err)
	case rangeNom:
		return fmt.Sprintf("%v±%v", a.r, a.err)
	default:
		return fmt.Sprintf("%v±%v", a.n, a.err)
	}
}

func (a Number) isZero() bool {
	switch a.kind {
	case floatNom:
		return a.f == 0
	case rangeNom:
		return a.r.Lo == 0 && a.r.Hi == 0
	default:
		return a.n.IsZero()
	}
}

// isUnit reports whether the nominal is exactly -1, 0 or 1: multiplying by
// those introduces no rounding at all.
func (a Number) isUnit() bool {
	re := a.Real()
	return re.IsPoint() && (re.Lo == -1 || re.Lo == 0 || re.Lo == 1)
}

func (a Number) lsb() int { return a.n.Rep().Format().LSB() }

// promote lifts a non-fixed nominal into env so it can meet a fixed
// operand.
func (a Number) promote(env *fxq.Env) (fxq.Number, error) {
	switch a.kind {
	case fixedNom:
		return a.n, nil
	case floatNom:
		return env.Number(fxq.V(a.f))
	default:
		return env.Number(fxq.VRange(a.r))
	}
}

func (a Number) Add(b Number) (Number, error) { return a.additive(b, false) }
func (a Number) Sub(b Number) (Number, error) { return a.additive(b, true) }

func (a Number) additive(b Number, sub bool) (Number, error) {
	errs := a.err.Add(b.err)
	if a.kind != fixedNom && b.kind != fixedNom {
		ra, rb := a.Real(), b.Real()
		var res interval.Interval[float64]
		if sub {
			res = ra.Sub(rb)
		} else {
			res = ra.Add(rb)
		}
		if a.kind == floatNom && b.kind == floatNom {
			return Number{kind: floatNom, f: res.Lo, err: errs}, nil
		}
		return Number{kind: rangeNom, r: res, err: errs}, nil
	}

	env := a.envOr(b)
	na, err := a.promote(env)
	if err != nil {
		return Number{}, err
	}
	nb, err := b.promote(env)
	if err != nil {
		return Number{}, err
	}
	var res fxq.Number
	if sub {
		res, err = na.Sub(nb)
	} else {
		res, err = na.Add(nb)
	}
	if err != nil {
		return Number{}, err
	}
	if !a.isZero() && !b.isZero() {
		u, err := env.Active()
		if err != nil {
			return Number{}, err
		}
		rm := u.Rounding()
		resLSB := res.Rep().Format().LSB()
		errs = addRoundingTerm(errs, rm, resLSB, a)
		errs = addRoundingTerm(errs, rm, resLSB, b)
	}
	return Number{kind: fixedNom, n: res, err: errs}, nil
}

// addRoundingTerm accounts for the error a fixed-point result picks up
// from re-aligning an operand onto a coarser grid. Fixed operands tighten
// the bound by their own grid; exact operands (a float constant) get the
// full bound.
func addRoundingTerm(errs interval.Interval[float64], rm round.Mode, resLSB int, op Number) interval.Interval[float64] {
	if op.kind == fixedNom {
		if resLSB > op.lsb() {
			return errs.Add(rm.ErrorBoundsFrom(resLSB, op.lsb()))
		}
		return errs
	}
	if !op.isZero() {
		return errs.Add(rm.ErrorBounds(resLSB))
	}
	return errs
}

// Mul propagates the exact range of (a±ea)·(b±eb) minus the nominal
// product: the cross terms are kept, not linearized.
func (a Number) Mul(b Number) (Number, error) {
	ra, rb := a.Real(), b.Real()
	errs := ra.Add(a.err).Mul(rb.Add(b.err)).Difference(ra.Mul(rb))
	if a.kind != fixedNom && b.kind != fixedNom {
		res := ra.Mul(rb)
		if a.kind == floatNom && b.kind == floatNom {
			return Number{kind: floatNom, f: res.Lo, err: errs}, nil
		}
		return Number{kind: rangeNom, r: res, err: errs}, nil
	}

	env := a.envOr(b)
	na, err := a.promote(env)
	if err != nil {
		return Number{}, err
	}
	nb, err := b.promote(env)
	if err != nil {
		return Number{}, err
	}
	res, err := na.Mul(nb)
	if err != nil {
		return Number{}, err
	}
	if !a.isUnit() && !b.isUnit() {
		u, err := env.Active()
		if err != nil {
			return Number{}, err
		}
		rm := u.Rounding()
		resLSB := res.Rep().Format().LSB()
		if a.kind == fixedNom && b.kind == fixedNom {
			if in := a.lsb() + b.lsb(); resLSB > in {
				errs = errs.Add(rm.ErrorBoundsFrom(resLSB, in))
			}
		} else {
			errs = errs.Add(rm.ErrorBounds(resLSB))
		}
	}
	return Number{kind: fixedNom, n: res, err: errs}, nil
}

func (a Number) envOr(b Number) *fxq.Env {
	if a.kind == fixedNom {
		return a.n.Env()
	}
	return b.n.Env()
}

func (a Number) Neg() (Number, error) {
	errs := a.err.Neg()
	switch a.kind {
	case floatNom:
		return Number{kind: floatNom, f: -a.f, err: errs}, nil
	case rangeNom:
		return Number{kind: rangeNom, r: a.r.Neg(), err: errs}, nil
	default:
		n, err := a.n.Neg()
		if err != nil {
			return Number{}, err
		}
		return Number{kind: fixedNom, n: n, err: errs}, nil
	}
}

func (a Number) Trunc() (Number, error) { return a.roundTo(round.Trunc) }
func (a Number) Floor() (Number, error) { return a.roundTo(round.Floor) }
func (a Number) Ceil() (Number, error)  { return a.roundTo(round.Ceil) }

// Round rounds to the nearest integer.
func (a Number) Round() (Number, error) { return a.roundTo(round.Nearest) }

func (a Number) roundTo(rm round.Mode) (Number, error) {
	switch a.kind {
	case floatNom:
		return Number{
			kind: floatNom,
			f:    float64(rm.Apply(a.f)),
			err:  a.err.Add(rm.ErrorBounds(0)),
		}, nil
	case rangeNom:
		return Number{
			kind: rangeNom,
			r: interval.Of(
				float64(rm.Apply(a.r.Lo)),
				float64(rm.Apply(a.r.Hi)),
			),
			err: a.err.Add(rm.ErrorBounds(0)),
		}, nil
	default:
		var (
			n   fxq.Number
			err error
		)
		switch rm {
		case round.Trunc:
			n, err = a.n.Trunc()
		case round.Floor:
			n, err = a.n.Floor()
		case round.Ceil:
			n, err = a.n.Ceil()
		default:
			n, err = a.n.Nearest()
		}
		if err != nil {
			return Number{}, err
		}
		errs := a.err
		if lsb := a.lsb(); lsb < 0 {
			errs = errs.Add(rm.ErrorBoundsFrom(0, lsb))
		}
		return Number{kind: fixedNom, n: n, err: errs}, nil
	}
}

// Lsh scales by 2^n exactly; the error bounds scale with it.
func (a Number) Lsh(n int) (Number, error) {
	if n < 0 {
		return Number{}, fxq.ErrNegativeShift
	}
	scale := math.Ldexp(1, n)
	errs := a.err.MulScalar(scale)
	switch a.kind {
	case floatNom:
		return Number{kind: floatNom, f: a.f * scale, err: errs}, nil
	case rangeNom:
		return Number{kind: rangeNom, r: a.r.MulScalar(scale), err: errs}, nil
	default:
		sn, err := a.n.Lsh(n)
		if err != nil {
			return Number{}, err
		}
		return Number{kind: fixedNom, n: sn, err: errs}, nil
	}
}

// Eq is strict: the nominal values must be equal and both error bounds
// exactly zero. Two values that merely overlap within their bounds are not
// equal.
func (a Number) Eq(b Number) (bool, error) {
	zero := interval.Point(0.0)
	if !a.err.Eq(zero) || !b.err.Eq(zero) {
		return false, nil
	}
	if a.kind == fixedNom && b.kind == fixedNom {
		return a.n.Eq(b.n)
	}
	return a.Real().Eq(b.Real()), nil
}

// Lt compares the nominal values shifted by their error bounds,
// conservatively: true only when every possible value of a is below every
// possible value of b.
func (a Number) Lt(b Number) bool {
	return a.Real().Add(a.err).Lt(b.Real().Add(b.err))
}

// Gt mirrors Lt.
func (a Number) Gt(b Number) bool {
	return a.Real().Add(a.err).Gt(b.Real().Add(b.err))
}
