package round

import (
	"testing"

	"github.com/pfcm/fxq/interval"
)

func TestApply(t *testing.T) {
	for _, c := range []struct {
		m   Mode
		in  float64
		out int64
	}{
		{Floor, 1.7, 1},
		{Floor, -1.7, -2},
		{Floor, 2, 2},
		{Ceil, 1.2, 2},
		{Ceil, -1.2, -1},
		{Trunc, 1.7, 1},
		{Trunc, -1.7, -1},
		{Nearest, 1.4, 1},
		{Nearest, 1.5, 2},
		{Nearest, -1.5, -1},
		{Nearest, -1.6, -2},
	} {
		if got := c.m.Apply(c.in); got != c.out {
			t.Errorf("%v.Apply(%v) = %d, want: %d", c.m, c.in, got, c.out)
		}
	}
}

func TestShift(t *testing.T) {
	for _, c := range []struct {
		m   Mode
		v   int64
		n   int
		out int64
	}{
		{Floor, 5, 2, 20},
		{Floor, -5, 2, -20},
		{Floor, 27, -4, 1},
		{Floor, -27, -4, -2},
		{Ceil, 27, -4, 2},
		{Ceil, -27, -4, -1},
		{Trunc, 27, -4, 1},
		{Trunc, -27, -4, -1},
		// Nearest ties go toward +infinity, matching Apply.
		{Nearest, 3, -1, 2},
		{Nearest, -3, -1, -1},
		{Nearest, 1, -1, 1},
		{Nearest, -1, -1, 0},
		{Nearest, 27, -4, 2},
		{Nearest, -27, -4, -2},
		{Nearest, 24, -4, 2},
		{Nearest, 25, -4, 2},
	} {
		if got := c.m.Shift(c.v, c.n); got != c.out {
			t.Errorf("%v.Shift(%d, %d) = %d, want: %d", c.m, c.v, c.n, got, c.out)
		}
	}
}

// A left shift is exact, so undoing it with a right shift of the same
// magnitude recovers the value no matter the mode.
func TestShiftRoundTrip(t *testing.T) {
	for _, m := range []Mode{Floor, Nearest, Ceil, Trunc} {
		for _, v := range []int64{0, 1, -1, 27, -27, 1000, -1000} {
			for n := 0; n < 8; n++ {
				if got := m.Shift(m.Shift(v, n), -n); got != v {
					t.Errorf("%v.Shift(Shift(%d, %d), %d) = %d", m, v, n, -n, got)
				}
			}
		}
	}
}

func TestShiftInterval(t *testing.T) {
	got := Floor.ShiftInterval(interval.Of[int64](-27, 27), -4)
	if want := interval.Of[int64](-2, 1); got != want {
		t.Errorf("ShiftInterval = %v, want: %v", got, want)
	}
}

func TestErrorBounds(t *testing.T) {
	for _, c := range []struct {
		m   Mode
		lsb int
		out interval.Interval[float64]
	}{
		{Nearest, 0, interval.Of(-0.5, 0.5)},
		{Nearest, -2, interval.Of(-0.125, 0.125)},
		{Floor, 0, interval.Of(-1.0, 0.0)},
		{Ceil, 0, interval.Of(0.0, 1.0)},
		{Trunc, 0, interval.Of(-1.0, 1.0)},
	} {
		if got := c.m.ErrorBounds(c.lsb); got != c.out {
			t.Errorf("%v.ErrorBounds(%d) = %v, want: %v", c.m, c.lsb, got, c.out)
		}
	}
}

func TestErrorBoundsFrom(t *testing.T) {
	for _, c := range []struct {
		m    Mode
		o, i int
		out  interval.Interval[float64]
	}{
		{Nearest, 0, -3, interval.Of(-0.375, 0.5)},
		{Floor, 0, -2, interval.Of(-0.75, 0.0)},
		{Ceil, 0, -2, interval.Of(0.0, 0.75)},
		{Trunc, 0, -2, interval.Of(-0.75, 0.75)},
		{Floor, -3, -5, interval.Of(-0.09375, 0.0)},
	} {
		if got := c.m.ErrorBoundsFrom(c.o, c.i); got != c.out {
			t.Errorf("%v.ErrorBoundsFrom(%d, %d) = %v, want: %v", c.m, c.o, c.i, got, c.out)
		}
	}
}

func TestParseMode(t *testing.T) {
	for _, m := range []Mode{Floor, Nearest, Ceil, Trunc} {
		got, err := ParseMode(m.String())
		if err != nil {
			t.Fatalf("ParseMode(%q): %v", m, err)
		}
		if got != m {
			t.Errorf("ParseMode(%q) = %v", m, got)
		}
	}
	if _, err := ParseMode("sideways"); err == nil {
		t.Errorf("ParseMode should reject unknown names")
	}
}
