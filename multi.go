package fxq

import (
	"fmt"
	"math"

	"github.com/pfcm/fxq/overflow"
	"github.com/pfcm/fxq/round"
)

// Multi is a multi-format processing unit: operands may carry different
// Formats, bounded only by a maximum wordlength, and results grow or shrink
// their format as the values demand. Where Fixed models one register width,
// Multi models a datapath that is free to re-align as long as nothing gets
// wider than its buses.
type Multi struct {
	cfg config
	wl  int
}

var _ Unit = (*Multi)(nil)

// NewMulti builds a unit with the given maximum wordlength.
func NewMulti(wordlength int, opts ...Option) (*Multi, error) {
	if wordlength < 1 || wordlength > maxWordlength {
		return nil, fmt.Errorf("%w: %d", ErrWordTooLarge, wordlength)
	}
	return &Multi{cfg: newConfig(opts), wl: wordlength}, nil
}

func (u *Multi) Wordlength() int             { return u.wl }
func (u *Multi) Rounding() round.Mode        { return u.cfg.rounding }
func (u *Multi) OverflowMode() overflow.Mode { return u.cfg.overflow }

func (u *Multi) String() string {
	return fmt.Sprintf("%d bits multi-format ALU", u.wl)
}

// Info reports the widest signed range any format under this unit can
// normalize to. InfoUnsigned is the unsigned counterpart.
func (u *Multi) Info() Info {
	return Info{
		Eps: math.Ldexp(1, -u.wl+1),
		Min: -math.Ldexp(1, u.wl-1),
		Max: math.Ldexp(1, u.wl-1) - 1,
	}
}

// InfoUnsigned is Info for unsigned formats.
func (u *Multi) InfoUnsigned() Info {
	return Info{
		Eps: math.Ldexp(1, -u.wl),
		Min: 0,
		Max: math.Ldexp(1, u.wl),
	}
}

// check asserts that the operands fit the unit and agree on signedness.
func (u *Multi) check(reps ...Representation) error {
	for _, r := range reps {
		if r.f.Wordlength() > u.wl {
			return fmt.Errorf("%w: %v cannot handle %v", ErrWordTooLarge, u, r)
		}
	}
	for _, r := range reps[1:] {
		if r.f.signed != reps[0].f.signed {
			return fmt.Errorf("%w: %v and %v", ErrMixedSigns, reps[0].f, r.f)
		}
	}
	return nil
}

// Represent finds the best format of the unit's wordlength for v and
// quantizes into it. Representations that already fit pass through
// untouched.
func (u *Multi) Represent(v Value) (Representation, error) {
	if v.fixed && v.rep.f.Wordlength() <= u.wl {
		return v.rep, nil
	}
	m, f, err := Best(v, u.wl, round.Nearest, true)
	if err != nil {
		return Representation{}, err
	}
	z := rep(m, f)
	u.cfg.trace(OpRepresent, z)
	return z, nil
}

// RepresentIn quantizes v into an explicit format instead of the best one,
// subject to the unit's wordlength and the configured rounding.
func (u *Multi) RepresentIn(v Value, f Format) (Representation, error) {
	if f.Wordlength() > u.wl {
		return Representation{}, fmt.Errorf("%w: %v wordlength under %v", ErrWordTooLarge, f, u)
	}
	m, flags, err := f.Represent(v, u.cfg.rounding)
	if err != nil {
		return Representation{}, err
	}
	if flags.Underflow && !u.cfg.allowsUnderflow(OpRepresent) {
		return Representation{}, &UnderflowError{
			Op: OpRepresent, Value: v.realInterval(), Epsilon: f.Epsilon(),
		}
	}
	if flags.Overflow {
		if !u.cfg.allowsOverflow(OpRepresent) {
			return Representation{}, &OverflowError{
				Op: OpRepresent, Value: v.realInterval(), Limits: f.ValueInterval(),
			}
		}
		m, _ = m.correct(u.cfg.overflow, f.MantissaInterval())
	}
	z := rep(m, f)
	u.cfg.trace(OpRepresent, z)
	return z, nil
}

// commonFormat is the working format for a binary operation: enough MSB for
// either operand, enough LSB for the finer one, clipped to the unit's
// wordlength by raising the LSB. Clipping sacrifices precision, never
// range.
func (u *Multi) commonFormat(x, y Format) Format {
	if x == y {
		return x
	}
	signbit := 0
	if x.signed {
		signbit = 1
	}
	msb := max(x.msb, y.msb)
	lsb := min(x.lsb, y.lsb)
	if msb-lsb+signbit > u.wl {
		lsb = msb - u.wl + signbit
	}
	return Format{msb: msb, lsb: lsb, signed: x.signed}
}

// align re-quantizes an operand into the common format. Alignment can
// underflow (the value was all precision and the common format dropped it)
// but never overflow: the common format always has at least the operand's
// range.
func (u *Multi) align(x Representation, f Format, allowUnderflow bool) (Mant, error) {
	if x.f == f {
		return x.mant, nil
	}
	m, flags, err := f.Represent(VRep(x), u.cfg.rounding)
	if err != nil {
		return Mant{}, err
	}
	if flags.Underflow && !allowUnderflow {
		return Mant{}, &UnderflowError{
			Op: OpRepresent, Value: x.RealInterval(), Epsilon: f.Epsilon(),
		}
	}
	if flags.Overflow {
		return Mant{}, fmt.Errorf("fxq: internal: aligning %v to %v overflowed", x, f)
	}
	return m, nil
}

// handleOverflow resolves a result that spilled out of its format. When the
// operation may not overflow, the format grows an extra MSB bit and the LSB
// rises to stay within the wordlength: precision is lost, value is not.
// Otherwise the configured overflow behavior corrects the mantissa in
// place.
func (u *Multi) handleOverflow(op Op, m Mant, f Format, offBy int) (Mant, Format, error) {
	if !u.cfg.allowsOverflow(op) {
		signbit := 0
		if f.signed {
			signbit = 1
		}
		msb := f.msb + offBy
		extended := Format{msb: msb, lsb: f.lsb, signed: f.signed}
		grown := Format{msb: msb, lsb: msb - u.wl + signbit, signed: f.signed}
		gm, flags, err := grown.Represent(VRep(rep(m, extended)), u.cfg.rounding)
		if err != nil {
			return Mant{}, Format{}, err
		}
		if flags.Overflow || flags.Underflow {
			return Mant{}, Format{}, fmt.Errorf("fxq: internal: growing %v to %v did not settle", f, grown)
		}
		return gm, grown, nil
	}
	cm, _ := m.correct(u.cfg.overflow, f.MantissaInterval())
	return cm, f, nil
}

func (u *Multi) Add(x, y Representation) (Representation, error) {
	return u.additive(OpAdd, x, y)
}

func (u *Multi) Sub(x, y Representation) (Representation, error) {
	return u.additive(OpSub, x, y)
}

func (u *Multi) additive(op Op, x, y Representation) (Representation, error) {
	if err := u.check(x, y); err != nil {
		return Representation{}, err
	}
	f := u.commonFormat(x.f, y.f)
	allowU := u.cfg.allowsUnderflow(op)
	mx, err := u.align(x, f, allowU)
	if err != nil {
		return Representation{}, err
	}
	my, err := u.align(y, f, allowU)
	if err != nil {
		return Representation{}, err
	}
	var m Mant
	if op == OpAdd {
		m, err = mx.add(my)
	} else {
		m, err = mx.sub(my)
	}
	if err != nil {
		return Representation{}, err
	}
	if f.OverflowsWith(m) {
		if op == OpSub && !f.signed && !u.cfg.allowsOverflow(op) {
			// An unsigned difference went negative; no amount of
			// extra MSB fixes a sign.
			return Representation{}, &OverflowError{
				Op: op, Value: m.realInterval(f.lsb), Limits: f.ValueInterval(),
			}
		}
		m, f, err = u.handleOverflow(op, m, f, 1)
		if err != nil {
			return Representation{}, err
		}
	}
	z := rep(m, f)
	u.cfg.trace(op, z)
	return z, nil
}

// Mul computes the exact product format (msb_x+msb_y, lsb_x+lsb_y) and
// only re-quantizes, via Best, when that exceeds the unit's wordlength.
func (u *Multi) Mul(x, y Representation) (Representation, error) {
	if err := u.check(x, y); err != nil {
		return Representation{}, err
	}
	f := Format{msb: x.f.msb + y.f.msb, lsb: x.f.lsb + y.f.lsb, signed: x.f.signed}
	m, err := x.mant.mul(y.mant)
	if err != nil {
		return Representation{}, err
	}
	if f.Wordlength() > u.wl {
		m, f, err = Best(VRep(rep(m, f)), u.wl, u.cfg.rounding, x.f.signed)
		if err != nil {
			return Representation{}, err
		}
	}
	z := rep(m, f)
	u.cfg.trace(OpMul, z)
	return z, nil
}

// Div is declared for interface completeness only.
func (u *Multi) Div(x, y Representation) (Representation, error) {
	return Representation{}, fmt.Errorf("%w: div", ErrUnimplemented)
}

// Mod is declared for interface completeness only.
func (u *Multi) Mod(x, y Representation) (Representation, error) {
	return Representation{}, fmt.Errorf("%w: mod", ErrUnimplemented)
}

func (u *Multi) Trunc(x Representation) (Representation, error) {
	if err := u.check(x); err != nil {
		return Representation{}, err
	}
	if x.IsInteger() {
		return x, nil
	}
	// Truncation only shrinks magnitudes; it cannot overflow.
	m := x.mant.shiftLSB(round.Trunc, x.f.lsb).lsh(uint(-x.f.lsb))
	z := rep(m, x.f)
	u.cfg.trace(OpTrunc, z)
	return z, nil
}

func (u *Multi) Floor(x Representation) (Representation, error) {
	return u.roundTo(OpFloor, round.Floor, x)
}

func (u *Multi) Ceil(x Representation) (Representation, error) {
	return u.roundTo(OpCeil, round.Ceil, x)
}

func (u *Multi) Nearest(x Representation) (Representation, error) {
	return u.roundTo(OpNearest, round.Nearest, x)
}

func (u *Multi) roundTo(op Op, rm round.Mode, x Representation) (Representation, error) {
	if err := u.check(x); err != nil {
		return Representation{}, err
	}
	if x.IsInteger() {
		return x, nil
	}
	f := x.f
	m := x.mant.shiftLSB(rm, f.lsb).lsh(uint(-f.lsb))
	if f.OverflowsWith(m) {
		var err error
		m, f, err = u.handleOverflow(op, m, f, 1)
		if err != nil {
			return Representation{}, err
		}
	}
	z := rep(m, f)
	u.cfg.trace(op, z)
	return z, nil
}

func (u *Multi) Neg(x Representation) (Representation, error) {
	if err := u.check(x); err != nil {
		return Representation{}, err
	}
	if !x.f.signed {
		return Representation{}, fmt.Errorf("%w: %v", ErrUnsignedNegate, x)
	}
	if x.IsZero() {
		return x, nil
	}
	f := x.f
	m := x.mant.neg()
	if f.OverflowsWith(m) {
		var err error
		m, f, err = u.handleOverflow(OpNeg, m, f, 1)
		if err != nil {
			return Representation{}, err
		}
	}
	z := rep(m, f)
	u.cfg.trace(OpNeg, z)
	return z, nil
}

// Cmp aligns both operands to a common format and subtracts mantissas.
func (u *Multi) Cmp(x, y Representation) (Mant, error) {
	if err := u.check(x, y); err != nil {
		return Mant{}, err
	}
	f := u.commonFormat(x.f, y.f)
	allowU := u.cfg.allowsUnderflow(OpCmp)
	mx, err := u.align(x, f, allowU)
	if err != nil {
		return Mant{}, err
	}
	my, err := u.align(y, f, allowU)
	if err != nil {
		return Mant{}, err
	}
	return mx.sub(my)
}

// Lsh slides the format window up without touching the mantissa: the value
// scales by 2^n exactly and nothing can overflow, unlike the fixed-format
// variant.
func (u *Multi) Lsh(x Representation, n int) (Representation, error) {
	if err := u.check(x); err != nil {
		return Representation{}, err
	}
	if n < 0 {
		return Representation{}, fmt.Errorf("%w: %d", ErrNegativeShift, n)
	}
	z := rep(x.mant, Format{msb: x.f.msb + n, lsb: x.f.lsb + n, signed: x.f.signed})
	u.cfg.trace(OpLsh, z)
	return z, nil
}

// Rsh slides the format window down; like Lsh it is exact.
func (u *Multi) Rsh(x Representation, n int) (Representation, error) {
	if err := u.check(x); err != nil {
		return Representation{}, err
	}
	if n < 0 {
		return Representation{}, fmt.Errorf("%w: %d", ErrNegativeShift, n)
	}
	z := rep(x.mant, Format{msb: x.f.msb - n, lsb: x.f.lsb - n, signed: x.f.signed})
	u.cfg.trace(OpRsh, z)
	return z, nil
}
