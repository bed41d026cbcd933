package ebound

import (
	"testing"

	"github.com/pfcm/fxq"
	"github.com/pfcm/fxq/interval"
	"github.com/pfcm/fxq/round"
)

func TestAddSumsBounds(t *testing.T) {
	a := WithBounds(1.0, interval.Of(-0.1, 0.3))
	b := WithBounds(1.0, interval.Of(-0.3, 0.2))
	z, err := a.Add(b)
	if err != nil {
		t.Fatal(err)
	}
	if z.Float() != 2.0 {
		t.Errorf("1 + 1 = %v, want 2", z.Float())
	}
	if got, want := z.ErrorBounds(), interval.Of(-0.4, 0.5); got != want {
		t.Errorf("error bounds = %v, want: %v", got, want)
	}

	z, err = a.Sub(b)
	if err != nil {
		t.Fatal(err)
	}
	if z.Float() != 0.0 {
		t.Errorf("1 - 1 = %v, want 0", z.Float())
	}
	// Subtraction sums the error intervals too.
	if got, want := z.ErrorBounds(), interval.Of(-0.4, 0.5); got != want {
		t.Errorf("error bounds = %v, want: %v", got, want)
	}
}

// Multiplication keeps the cross terms: the bound is the exact range of
// (a±ea)(b±eb) minus the nominal product, not a linearization.
func TestMulCrossTerms(t *testing.T) {
	a := WithBounds(2.0, interval.Of(0.0, 0.1))
	b := WithBounds(3.0, interval.Of(-0.1, 0.0))
	z, err := a.Mul(b)
	if err != nil {
		t.Fatal(err)
	}
	if z.Float() != 6.0 {
		t.Errorf("2 * 3 = %v, want 6", z.Float())
	}
	got := z.ErrorBounds()
	want := interval.Of(2.0, 2.1).Mul(interval.Of(2.9, 3.0)).Difference(interval.Point(6.0))
	if got != want {
		t.Errorf("error bounds = %v, want: %v", got, want)
	}
	if want.Lo >= 0 || want.Hi <= 0 {
		t.Fatalf("test expects a two-sided bound, got %v", want)
	}
}

func newEnv(t *testing.T, u fxq.Unit) (*fxq.Env, func()) {
	t.Helper()
	env := fxq.NewEnv()
	leave := env.Enter(u)
	return env, leave
}

func fixed(t *testing.T, env *fxq.Env, x float64) Number {
	t.Helper()
	n, err := env.Float(x)
	if err != nil {
		t.Fatal(err)
	}
	return Fixed(n)
}

// Adding fixed-point values whose result lands on a coarser grid picks up
// a rounding-error term per operand, tightened by each operand's own grid.
func TestFixedAddRounding(t *testing.T) {
	u, err := fxq.NewMulti(4, fxq.WithAllowOverflow(fxq.NoOps))
	if err != nil {
		t.Fatal(err)
	}
	env, leave := newEnv(t, u)
	defer leave()

	x := fixed(t, env, 0.3) // mantissa 5 at lsb -4
	z, err := x.Add(x)
	if err != nil {
		t.Fatal(err)
	}
	// The sum overflows and the format grows to lsb -3.
	if z.Float() != 0.625 {
		t.Errorf("0.3 + 0.3 = %v, want 0.625", z.Float())
	}
	term := round.Floor.ErrorBoundsFrom(-3, -4)
	want := term.Add(term)
	if got := z.ErrorBounds(); got != want {
		t.Errorf("error bounds = %v, want: %v", got, want)
	}
}

// A float constant meeting a fixed operand gets the untightened bound: it
// had infinite precision to lose.
func TestFixedAddFloatOperand(t *testing.T) {
	u, err := fxq.NewMulti(4, fxq.WithAllowOverflow(fxq.NoOps))
	if err != nil {
		t.Fatal(err)
	}
	env, leave := newEnv(t, u)
	defer leave()

	x := fixed(t, env, 0.3)
	z, err := x.Add(Exact(0.3))
	if err != nil {
		t.Fatal(err)
	}
	want := round.Floor.ErrorBoundsFrom(-3, -4).Add(round.Floor.ErrorBounds(-3))
	if got := z.ErrorBounds(); got != want {
		t.Errorf("error bounds = %v, want: %v", got, want)
	}
}

// Multiplying by exactly one introduces no error at all.
func TestMulByUnit(t *testing.T) {
	u, err := fxq.NewMulti(4)
	if err != nil {
		t.Fatal(err)
	}
	env, leave := newEnv(t, u)
	defer leave()

	x := fixed(t, env, 0.3125)
	z, err := x.Mul(Exact(1.0))
	if err != nil {
		t.Fatal(err)
	}
	if z.Float() != 0.3125 {
		t.Errorf("0.3125 * 1 = %v", z.Float())
	}
	if got := z.ErrorBounds(); got != interval.Point(0.0) {
		t.Errorf("error bounds = %v, want [0, 0]", got)
	}
}

func TestNeg(t *testing.T) {
	a := WithBounds(2.0, interval.Of(-0.1, 0.3))
	z, err := a.Neg()
	if err != nil {
		t.Fatal(err)
	}
	if z.Float() != -2.0 {
		t.Errorf("-2 = %v", z.Float())
	}
	if got, want := z.ErrorBounds(), interval.Of(-0.3, 0.1); got != want {
		t.Errorf("error bounds = %v, want: %v", got, want)
	}
}

func TestLshScalesBounds(t *testing.T) {
	a := WithBounds(1.0, interval.Of(-0.1, 0.2))
	z, err := a.Lsh(2)
	if err != nil {
		t.Fatal(err)
	}
	if z.Float() != 4.0 {
		t.Errorf("1 << 2 = %v", z.Float())
	}
	if got, want := z.ErrorBounds(), interval.Of(-0.4, 0.8); got != want {
		t.Errorf("error bounds = %v, want: %v", got, want)
	}
	if _, err := a.Lsh(-1); err == nil {
		t.Errorf("negative shift should fail")
	}
}

func TestRoundToInteger(t *testing.T) {
	z, err := Exact(1.7).Floor()
	if err != nil {
		t.Fatal(err)
	}
	if z.Float() != 1.0 {
		t.Errorf("floor(1.7) = %v", z.Float())
	}
	if got, want := z.ErrorBounds(), interval.Of(-1.0, 0.0); got != want {
		t.Errorf("error bounds = %v, want: %v", got, want)
	}

	z, err = Exact(1.5).Round()
	if err != nil {
		t.Fatal(err)
	}
	if z.Float() != 2.0 {
		t.Errorf("round(1.5) = %v", z.Float())
	}
}

func TestEqStrict(t *testing.T) {
	if eq, err := Exact(1).Eq(Exact(1)); err != nil || !eq {
		t.Errorf("1 == 1 = %v, %v", eq, err)
	}
	if eq, err := Exact(1).Eq(Exact(2)); err != nil || eq {
		t.Errorf("1 == 2 = %v, %v", eq, err)
	}
	// Equal nominals with nonzero bounds are not equal.
	a := WithBounds(1.0, interval.Of(-0.1, 0.1))
	if eq, err := a.Eq(Exact(1)); err != nil || eq {
		t.Errorf("1±0.1 == 1 = %v, %v", eq, err)
	}
}

func TestLtConservative(t *testing.T) {
	a := WithBounds(1.0, interval.Of(-0.1, 0.1))
	b := WithBounds(2.0, interval.Of(-0.1, 0.1))
	if !a.Lt(b) || !b.Gt(a) {
		t.Errorf("1±0.1 should be below 2±0.1")
	}
	// Overlapping possibility ranges do not order.
	c := WithBounds(1.1, interval.Of(-0.2, 0.0))
	if a.Lt(c) || c.Lt(a) {
		t.Errorf("overlapping values should not order")
	}
}
