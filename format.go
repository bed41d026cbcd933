package fxq

import (
	"fmt"
	"math"
	"math/big"
	"math/bits"
	"regexp"
	"strconv"

	"github.com/pfcm/fxq/interval"
	"github.com/pfcm/fxq/round"
)

// maxWordlength caps unit and Best wordlengths so that doubled-width
// multiply intermediates fit in int64 and every representable value
// converts to float64 exactly.
const maxWordlength = 31

// Format is a fixed-point bit layout: the exponents of the most and least
// significant bits and whether a sign bit is carried. Formats are immutable
// value objects; two formats are the same iff their fields are.
//
// A mantissa m under Format{msb, lsb} denotes the real value m * 2^lsb.
type Format struct {
	msb, lsb int
	signed   bool
}

// NewFormat builds a format from explicit bit exponents. The LSB cannot be
// above the MSB.
func NewFormat(msb, lsb int, signed bool) (Format, error) {
	if lsb > msb {
		return Format{}, fmt.Errorf("fxq: least significant bit cannot be larger than most significant bit: %d > %d", lsb, msb)
	}
	return Format{msb: msb, lsb: lsb, signed: signed}, nil
}

// Q is the signed Q-format factory: Q(a, b) has a integer bits (sign
// included) and b fractional bits. The one-argument form Q(b) is the common
// pure-fractional Q1.b layout. Invalid layouts panic; parse notations
// instead when the input is not a literal.
func Q(bits ...int) Format {
	a, b := qargs("Q", bits)
	f, err := NewFormat(a-1, -b, true)
	if err != nil {
		panic(err)
	}
	return f
}

// UQ is the unsigned Q-format factory, as Q but without a sign bit.
func UQ(bits ...int) Format {
	a, b := qargs("UQ", bits)
	f, err := NewFormat(a, -b, false)
	if err != nil {
		panic(err)
	}
	return f
}

func qargs(name string, bits []int) (a, b int) {
	switch len(bits) {
	case 1:
		return 1, bits[0]
	case 2:
		return bits[0], bits[1]
	}
	panic(fmt.Sprintf("fxq: %s takes 1 or 2 arguments, got %d", name, len(bits)))
}

// P builds a signed format from explicit MSB and LSB exponents.
func P(msb, lsb int) Format {
	f, err := NewFormat(msb, lsb, true)
	if err != nil {
		panic(err)
	}
	return f
}

// UP builds an unsigned format from explicit MSB and LSB exponents.
func UP(msb, lsb int) Format {
	f, err := NewFormat(msb, lsb, false)
	if err != nil {
		panic(err)
	}
	return f
}

var (
	qNotation = regexp.MustCompile(`^(u?)Q([+-]?[0-9]+)\.([+-]?[0-9]+)$`)
	pNotation = regexp.MustCompile(`^(u?)\(([+-]?[0-9]+),([+-]?[0-9]+)\)$`)
)

// ParseFormat reads either printable notation: "Q8.7"/"uQ16.12" or
// "(3,-4)"/"u(3,-4)". Both round-trip with QNotation and PNotation.
func ParseFormat(s string) (Format, error) {
	if m := qNotation.FindStringSubmatch(s); m != nil {
		signed := m[1] != "u"
		a, _ := strconv.Atoi(m[2])
		b, _ := strconv.Atoi(m[3])
		msb := a
		if signed {
			msb = a - 1
		}
		return NewFormat(msb, -b, signed)
	}
	if m := pNotation.FindStringSubmatch(s); m != nil {
		signed := m[1] != "u"
		msb, _ := strconv.Atoi(m[2])
		lsb, _ := strconv.Atoi(m[3])
		return NewFormat(msb, lsb, signed)
	}
	return Format{}, fmt.Errorf("fxq: %q is not in a known format notation", s)
}

// QNotation prints the format as Q<integer bits>.<fractional bits>, with a
// leading u when unsigned.
func (f Format) QNotation() string {
	a := f.msb
	if f.signed {
		a++
	}
	s := fmt.Sprintf("Q%d.%d", a, -f.lsb)
	if !f.signed {
		return "u" + s
	}
	return s
}

// PNotation prints the format as (msb,lsb), with a leading u when unsigned.
func (f Format) PNotation() string {
	s := fmt.Sprintf("(%d,%d)", f.msb, f.lsb)
	if !f.signed {
		return "u" + s
	}
	return s
}

func (f Format) String() string { return f.QNotation() }

func (f Format) MSB() int     { return f.msb }
func (f Format) LSB() int     { return f.lsb }
func (f Format) Signed() bool { return f.signed }

// Wordlength is the total number of bits the format occupies, sign bit
// included.
func (f Format) Wordlength() int {
	wl := f.msb - f.lsb
	if f.signed {
		wl++
	}
	return wl
}

// MantissaInterval is the set of legal integer mantissas.
func (f Format) MantissaInterval() interval.Interval[int64] {
	wl := uint(f.Wordlength())
	if f.signed {
		return interval.Of(-(int64(1) << (wl - 1)), int64(1)<<(wl-1)-1)
	}
	return interval.Of(0, int64(1)<<wl-1)
}

// ValueInterval is the set of representable real values.
func (f Format) ValueInterval() interval.Interval[float64] {
	hi := math.Ldexp(1, f.msb) - math.Ldexp(1, f.lsb)
	if f.signed {
		return interval.Of(-math.Ldexp(1, f.msb), hi)
	}
	return interval.Of(0, hi)
}

// Epsilon is the quantization step, 2^lsb.
func (f Format) Epsilon() float64 { return math.Ldexp(1, f.lsb) }

// OverflowsWith reports whether any of the given mantissas fall outside
// the legal range.
func (f Format) OverflowsWith(m Mant) bool {
	return !m.in(f.MantissaInterval())
}

// CanRepresent reports whether v lies within the representable range.
func (f Format) CanRepresent(v float64) bool {
	return f.ValueInterval().Contains(v)
}

// Flags reports what a quantization had to give up. Underflow means a
// nonzero true value quantized to zero; Overflow means the quantized
// mantissa fell outside the legal range. Neither is an error by itself:
// the unit decides what to do about them.
type Flags struct {
	Underflow, Overflow bool
}

// Represent quantizes v onto this format's 2^lsb grid with the given
// rounding mode and reports what was lost. Representation inputs
// re-quantize through the exact integer shift of the rounding mode, never
// through floating point. The only error is handing a negative value to an
// unsigned format.
func (f Format) Represent(v Value, rm round.Mode) (Mant, Flags, error) {
	if !f.signed && v.anyNegative() {
		return Mant{}, Flags{}, fmt.Errorf("%w: %v", ErrUnsignedValue, v)
	}
	var m Mant
	if v.fixed {
		src := v.rep
		m = src.mant.shiftLSB(rm, src.f.lsb-f.lsb)
		under := m.isZero() && !src.mant.isZero()
		return m, Flags{Underflow: under, Overflow: f.OverflowsWith(m)}, nil
	}
	quant := func(x float64) int64 { return rm.Apply(math.Ldexp(x, -f.lsb)) }
	switch v.kind {
	case Scalar:
		m = MantOf(quant(v.f))
	case Range:
		// Every mode is monotone, so bound-wise quantization keeps
		// the bounds ordered.
		m = MantRange(interval.Of(quant(v.r.Lo), quant(v.r.Hi)))
	default:
		vs := make([]int64, len(v.a))
		for i, x := range v.a {
			vs[i] = quant(x)
		}
		m = Mant{kind: Array, a: vs}
	}
	return m, Flags{
		Underflow: m.isZero() && !v.IsZero(),
		Overflow:  f.OverflowsWith(m),
	}, nil
}

// Best finds the smallest format of the given wordlength that holds v, and
// v quantized into it. The MSB is estimated from a high-precision log2
// (taken at 20x the wordlength bits so the estimate itself cannot blur the
// answer), the LSB follows from the wordlength, and if the quantized
// mantissa still lands outside the assumed bit budget the MSB is corrected
// by one and the value re-quantized: the estimate can be off by one right
// at format boundaries.
//
// See "Reliable Implementation of Linear Filters with Fixed-Point
// Arithmetic", Hilaire and Lopez, 2013.
func Best(v Value, wordlength int, rm round.Mode, signed bool) (Mant, Format, error) {
	if wordlength < 1 || wordlength > maxWordlength {
		return Mant{}, Format{}, fmt.Errorf("%w: %d", ErrWordTooLarge, wordlength)
	}
	if !signed && v.anyNegative() {
		return Mant{}, Format{}, fmt.Errorf("%w: %v", ErrUnsignedValue, v)
	}
	signbit := 0
	if signed {
		signbit = 1
	}
	msb, any := bestMSB(v, uint(20*wordlength), signed)
	if !any {
		msb = 0 // all zero: any placement works
	}
	lsb := msb - wordlength + signbit
	mant, err := quantizeAt(v, lsb, rm)
	if err != nil {
		return Mant{}, Format{}, err
	}
	adjusted := msb
	upper := int64(1) << uint(wordlength-signbit)
	if !mant.in(interval.Of(math.MinInt64, upper-1)) {
		adjusted = msb + 1
	}
	if wordlength >= 2 && allNegative(mant) {
		lower := -(int64(1) << uint(wordlength-2))
		if mant.in(interval.Of(lower+1, -1)) {
			adjusted = msb - 1
		}
	}
	if adjusted != msb {
		msb = adjusted
		lsb = msb - wordlength + signbit
		mant, err = quantizeAt(v, lsb, round.Nearest)
		if err != nil {
			return Mant{}, Format{}, err
		}
	}
	f, err := NewFormat(msb, lsb, signed)
	if err != nil {
		return Mant{}, Format{}, err
	}
	return mant, f, nil
}

// quantizeAt quantizes v to a grid of 2^lsb without range checking.
func quantizeAt(v Value, lsb int, rm round.Mode) (Mant, error) {
	if v.fixed {
		return v.rep.mant.shiftLSB(rm, v.rep.f.lsb-lsb), nil
	}
	quant := func(x float64) (int64, error) {
		if math.IsInf(x, 0) || math.IsNaN(x) {
			return 0, fmt.Errorf("fxq: cannot quantize non-finite value %v", x)
		}
		return rm.Apply(math.Ldexp(x, -lsb)), nil
	}
	switch v.kind {
	case Scalar:
		m, err := quant(v.f)
		return MantOf(m), err
	case Range:
		lo, err := quant(v.r.Lo)
		if err != nil {
			return Mant{}, err
		}
		hi, err := quant(v.r.Hi)
		if err != nil {
			return Mant{}, err
		}
		return MantRange(interval.Of(lo, hi)), nil
	default:
		vs := make([]int64, len(v.a))
		for i, x := range v.a {
			m, err := quant(x)
			if err != nil {
				return Mant{}, err
			}
			vs[i] = m
		}
		return Mant{kind: Array, a: vs}, nil
	}
}

func allNegative(m Mant) bool {
	switch m.kind {
	case Scalar:
		return m.s < 0
	case Range:
		return m.r.Hi < 0
	default:
		for _, v := range m.a {
			if v >= 0 {
				return false
			}
		}
		return len(m.a) > 0
	}
}

// bestMSB is the largest MSB estimate over all elements of v. any is false
// when every element is zero.
func bestMSB(v Value, prec uint, signed bool) (int, bool) {
	if v.fixed {
		return repMSB(v.rep, signed)
	}
	best, any := 0, false
	consider := func(x float64) {
		if x == 0 {
			return
		}
		m := floatMSB(x, prec, signed)
		if !any || m > best {
			best, any = m, true
		}
	}
	switch v.kind {
	case Scalar:
		consider(v.f)
	case Range:
		consider(v.r.Lo)
		consider(v.r.Hi)
	default:
		for _, x := range v.a {
			consider(x)
		}
	}
	return best, any
}

// floatMSB is the index of the most significant bit needed for x:
// floor(log2 x) plus the sign bit for positive x, ceil(log2 -x) for
// negative x. Computed on a big.Float at the caller's precision; MantExp
// makes the log2 exact, so the only off-by-one left is the one Best
// corrects for.
func floatMSB(x float64, prec uint, signed bool) int {
	f := new(big.Float).SetPrec(max(prec, 53)).SetFloat64(x)
	mant := new(big.Float)
	exp := f.MantExp(mant) // |mant| in [0.5, 1)
	if x > 0 {
		// floor(log2 x) = exp-1 over the whole mantissa range.
		m := exp - 1
		if signed {
			m++
		}
		return m
	}
	// ceil(log2 -x): exp-1 exactly at powers of two, exp otherwise.
	if mant.Cmp(big.NewFloat(-0.5)) == 0 {
		return exp - 1
	}
	return exp
}

// repMSB is bestMSB on the exact integer mantissa, no floats involved.
func repMSB(r Representation, signed bool) (int, bool) {
	best, any := 0, false
	consider := func(m int64) {
		if m == 0 {
			return
		}
		var v int
		if m > 0 {
			// floor(log2 m) + sign bit
			v = bits.Len64(uint64(m)) - 1
			if signed {
				v++
			}
		} else {
			// ceil(log2 -m)
			u := uint64(-m)
			v = bits.Len64(u) - 1
			if u&(u-1) != 0 {
				v++
			}
		}
		v += r.f.lsb
		if !any || v > best {
			best, any = v, true
		}
	}
	switch r.mant.kind {
	case Scalar:
		consider(r.mant.s)
	case Range:
		consider(r.mant.r.Lo)
		consider(r.mant.r.Hi)
	default:
		for _, m := range r.mant.a {
			consider(m)
		}
	}
	return best, any
}
