package fxq

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/pfcm/fxq/interval"
	"github.com/pfcm/fxq/overflow"
)

func TestMantBroadcast(t *testing.T) {
	// A scalar lifts to the shape of the other operand.
	s := MantOf(3)
	r := MantRange(interval.Of[int64](-2, 5))
	got, err := s.add(r)
	if err != nil {
		t.Fatal(err)
	}
	iv, ok := got.Interval()
	if !ok || iv != interval.Of[int64](1, 8) {
		t.Errorf("3 + [-2, 5] = %v, want [1, 8]", got)
	}

	a := MantArray([]int64{1, 2, 3})
	got, err = a.add(s)
	if err != nil {
		t.Fatal(err)
	}
	vs, ok := got.Array()
	if !ok {
		t.Fatalf("array + scalar = %v", got)
	}
	if diff := cmp.Diff([]int64{4, 5, 6}, vs); diff != "" {
		t.Errorf("array + scalar mismatch (-want +got):\n%s", diff)
	}

	if _, err := a.add(r); err == nil {
		t.Errorf("array + range should fail")
	}
	if _, err := a.add(MantArray([]int64{1, 2})); err == nil {
		t.Errorf("length mismatch should fail")
	}
}

// Range subtraction is bound-wise: paired bounds track together through a
// unit, they are not free intervals.
func TestMantSubRanges(t *testing.T) {
	a := MantRange(interval.Of[int64](10, 20))
	b := MantRange(interval.Of[int64](2, 4))
	got, err := a.sub(b)
	if err != nil {
		t.Fatal(err)
	}
	iv, ok := got.Interval()
	if !ok || iv != interval.Of[int64](8, 16) {
		t.Errorf("[10, 20] - [2, 4] = %v, want bound-wise [8, 16]", got)
	}
}

func TestMantMulRanges(t *testing.T) {
	a := MantRange(interval.Of[int64](-1, 1))
	b := MantRange(interval.Of[int64](-2, 2))
	got, err := a.mul(b)
	if err != nil {
		t.Fatal(err)
	}
	iv, ok := got.Interval()
	if !ok || iv != interval.Of[int64](-2, 2) {
		t.Errorf("[-1, 1] * [-2, 2] = %v, want [-2, 2]", got)
	}
}

func TestMantSign(t *testing.T) {
	for _, c := range []struct {
		m    Mant
		sign int
		ok   bool
	}{
		{MantOf(5), 1, true},
		{MantOf(-5), -1, true},
		{MantOf(0), 0, true},
		{MantRange(interval.Of[int64](1, 9)), 1, true},
		{MantRange(interval.Of[int64](-9, -1)), -1, true},
		{MantRange(interval.Point[int64](0)), 0, true},
		{MantRange(interval.Of[int64](-1, 1)), 0, false},
		{MantArray([]int64{2, 3, 4}), 1, true},
		{MantArray([]int64{2, -3}), 0, false},
	} {
		sign, ok := c.m.sign()
		if sign != c.sign || ok != c.ok {
			t.Errorf("%v.sign() = %d, %v, want: %d, %v", c.m, sign, ok, c.sign, c.ok)
		}
	}
}

func TestMantCorrect(t *testing.T) {
	r := interval.Of[int64](-8, 7)
	m, flag := MantOf(9).correct(overflow.Saturate, r)
	if got, _ := m.Int64(); got != 7 || !flag {
		t.Errorf("saturate 9 = %v, %v", m, flag)
	}
	m, flag = MantArray([]int64{-9, 0, 9}).correct(overflow.Saturate, r)
	vs, _ := m.Array()
	if diff := cmp.Diff([]int64{-8, 0, 7}, vs); diff != "" || !flag {
		t.Errorf("saturate array mismatch (flag %v):\n%s", flag, diff)
	}
}

func TestNewRep(t *testing.T) {
	if _, err := NewRep(MantOf(200), Q(7)); err == nil {
		t.Errorf("mantissa 200 should not fit Q1.7")
	}
	r, err := NewRep(MantOf(-27), P(3, -4))
	if err != nil {
		t.Fatal(err)
	}
	if r.Float() != -1.6875 {
		t.Errorf("-27*2^-4 = %v", r.Float())
	}
	if got, ok := r.Int(); !ok || got != -2 {
		t.Errorf("Int(-1.6875) = %d, %v, want floored -2", got, ok)
	}
	if got, want := r.String(), "-27*2^-4 (Q4.4)"; got != want {
		t.Errorf("String() = %q, want: %q", got, want)
	}
}
