package fxq

import (
	"errors"
	"testing"

	"github.com/pfcm/fxq/interval"
	"github.com/pfcm/fxq/round"
)

func mustMulti(t *testing.T, wl int, opts ...Option) *Multi {
	t.Helper()
	u, err := NewMulti(wl, opts...)
	if err != nil {
		t.Fatalf("NewMulti(%d): %v", wl, err)
	}
	return u
}

func mustRepIn(t *testing.T, u *Multi, v float64, f Format) Representation {
	t.Helper()
	r, err := u.RepresentIn(V(v), f)
	if err != nil {
		t.Fatalf("%v.RepresentIn(%v, %v): %v", u, v, f, err)
	}
	return r
}

func TestMultiRepresent(t *testing.T) {
	u := mustMulti(t, 8)
	r := mustRep(t, u, 0.5)
	if got := scalarMant(t, r); got != 64 || r.Format() != P(0, -7) {
		t.Errorf("represent 0.5 = %v, want 64 in (0,-7)", r)
	}

	// An existing representation that fits passes through untouched.
	src, err := NewRep(MantOf(5), P(2, -1))
	if err != nil {
		t.Fatal(err)
	}
	r, err = u.Represent(VRep(src))
	if err != nil {
		t.Fatal(err)
	}
	if got := scalarMant(t, r); got != 5 || r.Format() != P(2, -1) {
		t.Errorf("fitting representation = %v, want untouched 5 in (2,-1)", r)
	}
}

// The common format takes the larger MSB and smaller LSB, then gives
// precision back if the wordlength budget is blown.
func TestMultiAdd(t *testing.T) {
	u := mustMulti(t, 8, WithAllowOverflow(NoOps))
	x := mustRepIn(t, u, 0.5, P(0, -7))
	y := mustRepIn(t, u, 1.5, P(1, -6))
	z, err := u.Add(x, y)
	if err != nil {
		t.Fatal(err)
	}
	// Common format clips to (1,-6); the sum 2.0 overflows it and the
	// format grows to (2,-5) instead of wrapping.
	if got := scalarMant(t, z); got != 64 || z.Format() != P(2, -5) {
		t.Errorf("0.5 + 1.5 = %v, want 64 in (2,-5)", z)
	}
	if z.Float() != 2.0 {
		t.Errorf("0.5 + 1.5 = %v, want 2", z.Float())
	}
}

func TestMultiAddWraps(t *testing.T) {
	// With overflow allowed the format stays put and the value wraps.
	u := mustMulti(t, 8)
	x := mustRepIn(t, u, 1.5, P(1, -6))
	z, err := u.Add(x, x)
	if err != nil {
		t.Fatal(err)
	}
	if got := scalarMant(t, z); got != -64 || z.Format() != P(1, -6) {
		t.Errorf("wrapped 1.5 + 1.5 = %v, want -64 in (1,-6)", z)
	}
}

func TestMultiSubUnsigned(t *testing.T) {
	// An unsigned difference that goes negative cannot be fixed by growing
	// the format.
	u := mustMulti(t, 8, WithAllowOverflow(NoOps))
	x := mustRepIn(t, u, 1, UP(3, -4))
	y := mustRepIn(t, u, 2, UP(3, -4))
	var oe *OverflowError
	if _, err := u.Sub(x, y); !errors.As(err, &oe) {
		t.Fatalf("unsigned 1 - 2 = %v, want OverflowError", err)
	}
	if oe.Op != OpSub {
		t.Errorf("overflow op = %v, want sub", oe.Op)
	}
}

// Multiplication keeps the exact product format as long as it fits the
// wordlength.
func TestMultiMulExact(t *testing.T) {
	u := mustMulti(t, 8)
	x := mustRepIn(t, u, 1.5, P(1, -2))
	y := mustRepIn(t, u, 1.25, P(1, -2))
	z, err := u.Mul(x, y)
	if err != nil {
		t.Fatal(err)
	}
	if got := scalarMant(t, z); got != 30 || z.Format() != P(2, -4) {
		t.Errorf("1.5 * 1.25 = %v, want 30 in (2,-4)", z)
	}
	if z.Float() != 1.875 {
		t.Errorf("1.5 * 1.25 = %v, want exactly 1.875", z.Float())
	}
}

func TestMultiMulRequantizes(t *testing.T) {
	u := mustMulti(t, 8)
	x := mustRepIn(t, u, 0.5, P(0, -7))
	z, err := u.Mul(x, x)
	if err != nil {
		t.Fatal(err)
	}
	// The exact product format (0,-14) is 15 bits; Best squeezes the
	// product back into 8.
	if z.Format().Wordlength() > 8 {
		t.Errorf("product format %v exceeds the wordlength", z.Format())
	}
	if z.Float() != 0.25 {
		t.Errorf("0.5 * 0.5 = %v, want 0.25", z.Float())
	}
}

func TestMultiCmp(t *testing.T) {
	u := mustMulti(t, 8)
	x := mustRepIn(t, u, 0.5, P(0, -7))
	y := mustRepIn(t, u, 0.5, P(1, -6))
	d, err := u.Cmp(x, y)
	if err != nil {
		t.Fatal(err)
	}
	if s, ok := d.sign(); !ok || s != 0 {
		t.Errorf("cmp of equal values across formats = %d, %v, want 0", s, ok)
	}
	z := mustRepIn(t, u, 0.25, P(0, -7))
	d, err = u.Cmp(z, y)
	if err != nil {
		t.Fatal(err)
	}
	if s, ok := d.sign(); !ok || s != -1 {
		t.Errorf("cmp(0.25, 0.5) = %d, %v, want -1", s, ok)
	}
}

// Multi shifts slide the format window; the mantissa never moves and
// nothing can overflow.
func TestMultiShift(t *testing.T) {
	u := mustMulti(t, 8)
	x := mustRepIn(t, u, 0.5, P(0, -7))
	z, err := u.Lsh(x, 2)
	if err != nil {
		t.Fatal(err)
	}
	if got := scalarMant(t, z); got != 64 || z.Format() != P(2, -5) {
		t.Errorf("0.5 << 2 = %v, want 64 in (2,-5)", z)
	}
	if z.Float() != 2.0 {
		t.Errorf("0.5 << 2 = %v, want 2", z.Float())
	}
	z, err = u.Rsh(z, 2)
	if err != nil {
		t.Fatal(err)
	}
	if got := scalarMant(t, z); got != 64 || z.Format() != P(0, -7) {
		t.Errorf("round trip = %v, want 64 in (0,-7)", z)
	}
	if _, err := u.Rsh(z, -1); !errors.Is(err, ErrNegativeShift) {
		t.Errorf("Rsh(-1) = %v, want ErrNegativeShift", err)
	}
}

func TestMultiRoundToInteger(t *testing.T) {
	u := mustMulti(t, 8)
	x := mustRepIn(t, u, 1.6875, P(3, -4))
	z, err := u.Trunc(x)
	if err != nil {
		t.Fatal(err)
	}
	if got := scalarMant(t, z); got != 16 {
		t.Errorf("trunc(1.6875) = mantissa %d, want 16", got)
	}
	z, err = u.Ceil(x)
	if err != nil {
		t.Fatal(err)
	}
	if got := scalarMant(t, z); got != 32 {
		t.Errorf("ceil(1.6875) = mantissa %d, want 32", got)
	}
}

// Ceiling at the very top of the range grows the format rather than
// overflow when overflow is disallowed.
func TestMultiCeilGrows(t *testing.T) {
	u := mustMulti(t, 8, WithAllowOverflow(NoOps))
	x := mustRepIn(t, u, 7.9375, P(3, -4))
	z, err := u.Ceil(x)
	if err != nil {
		t.Fatal(err)
	}
	if z.Float() != 8.0 {
		t.Errorf("ceil(7.9375) = %v, want 8", z.Float())
	}
	if z.Format() != P(4, -3) {
		t.Errorf("ceil(7.9375) format = %v, want (4,-3)", z.Format())
	}
}

func TestMultiMixedSigns(t *testing.T) {
	u := mustMulti(t, 8)
	x := mustRepIn(t, u, 1, P(3, -4))
	y := mustRepIn(t, u, 1, UP(3, -4))
	if _, err := u.Add(x, y); !errors.Is(err, ErrMixedSigns) {
		t.Errorf("mixed signedness add = %v, want ErrMixedSigns", err)
	}
}

func TestMultiWordlength(t *testing.T) {
	u := mustMulti(t, 8)
	wide, err := NewRep(MantOf(1), P(20, 0))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := u.Neg(wide); !errors.Is(err, ErrWordTooLarge) {
		t.Errorf("21 bit operand on 8 bit unit = %v, want ErrWordTooLarge", err)
	}
	if _, err := NewMulti(0); !errors.Is(err, ErrWordTooLarge) {
		t.Errorf("NewMulti(0) = %v, want ErrWordTooLarge", err)
	}
}

func TestMultiInfo(t *testing.T) {
	u := mustMulti(t, 8)
	info := u.Info()
	if info.Min != -128 || info.Max != 127 || info.Eps != 0.0078125 {
		t.Errorf("Info() = %+v", info)
	}
}

func TestMultiRangeAdd(t *testing.T) {
	u := mustMulti(t, 8)
	x, err := u.RepresentIn(VRange(interval.Of(-0.25, 0.25)), P(0, -7))
	if err != nil {
		t.Fatal(err)
	}
	y := mustRepIn(t, u, 0.5, P(0, -7))
	z, err := u.Add(x, y)
	if err != nil {
		t.Fatal(err)
	}
	r, ok := z.Mant().Interval()
	if !ok || r != interval.Of[int64](32, 96) {
		t.Errorf("[-0.25, 0.25] + 0.5 = %v, want [32, 96]", z)
	}
}

func TestMultiRounding(t *testing.T) {
	// RepresentIn honors the configured rounding, unlike Represent which
	// always loads constants with nearest.
	u := mustMulti(t, 8, WithRounding(round.Ceil))
	r := mustRepIn(t, u, 0.3, P(0, -7))
	if got := scalarMant(t, r); got != 39 {
		t.Errorf("ceil represent 0.3 = mantissa %d, want 39", got)
	}
}
