package fxq

import (
	"fmt"

	"github.com/pfcm/fxq/overflow"
	"github.com/pfcm/fxq/round"
)

// Fixed is a single-format processing unit: every operand and every result
// shares one Format, the way a DSP with one accumulator width would.
// Multiplication runs through a doubled-width intermediate and re-quantizes
// back down under the configured rounding mode.
type Fixed struct {
	cfg config
	f   Format
}

var _ Unit = (*Fixed)(nil)

// NewFixed builds a unit over the given format.
func NewFixed(f Format, opts ...Option) (*Fixed, error) {
	if wl := f.Wordlength(); wl < 1 || wl > maxWordlength {
		return nil, fmt.Errorf("%w: %d", ErrWordTooLarge, f.Wordlength())
	}
	return &Fixed{cfg: newConfig(opts), f: f}, nil
}

func (u *Fixed) Format() Format              { return u.f }
func (u *Fixed) Wordlength() int             { return u.f.Wordlength() }
func (u *Fixed) Rounding() round.Mode        { return u.cfg.rounding }
func (u *Fixed) OverflowMode() overflow.Mode { return u.cfg.overflow }

func (u *Fixed) String() string {
	return fmt.Sprintf("%s ALU", u.f.QNotation())
}

// Info reports the unit's representable range.
func (u *Fixed) Info() Info {
	vi := u.f.ValueInterval()
	return Info{Eps: u.f.Epsilon(), Min: vi.Lo, Max: vi.Hi}
}

// check asserts that the operands carry this unit's format.
func (u *Fixed) check(reps ...Representation) error {
	for _, r := range reps {
		if r.f != u.f {
			return fmt.Errorf("%w: %v cannot handle %v", ErrFormatMismatch, u, r)
		}
	}
	return nil
}

// Represent quantizes an arbitrary value into the unit's format, always
// rounding to nearest: constants are loaded as faithfully as the format
// allows, whatever mode the arithmetic itself uses.
func (u *Fixed) Represent(v Value) (Representation, error) {
	if v.fixed && v.rep.f == u.f {
		return v.rep, nil
	}
	m, flags, err := u.f.Represent(v, round.Nearest)
	if err != nil {
		return Representation{}, err
	}
	if flags.Underflow && !u.cfg.allowsUnderflow(OpRepresent) {
		return Representation{}, &UnderflowError{
			Op: OpRepresent, Value: v.realInterval(), Epsilon: u.f.Epsilon(),
		}
	}
	if flags.Overflow {
		if !u.cfg.allowsOverflow(OpRepresent) {
			return Representation{}, &OverflowError{
				Op: OpRepresent, Value: v.realInterval(), Limits: u.f.ValueInterval(),
			}
		}
		m, _ = m.correct(u.cfg.overflow, u.f.MantissaInterval())
	}
	z := rep(m, u.f)
	u.cfg.trace(OpRepresent, z)
	return z, nil
}

func (u *Fixed) Add(x, y Representation) (Representation, error) {
	return u.additive(OpAdd, x, y)
}

func (u *Fixed) Sub(x, y Representation) (Representation, error) {
	return u.additive(OpSub, x, y)
}

func (u *Fixed) additive(op Op, x, y Representation) (Representation, error) {
	if err := u.check(x, y); err != nil {
		return Representation{}, err
	}
	var (
		m   Mant
		err error
	)
	if op == OpAdd {
		m, err = x.mant.add(y.mant)
	} else {
		m, err = x.mant.sub(y.mant)
	}
	if err != nil {
		return Representation{}, err
	}
	if u.f.OverflowsWith(m) {
		if !u.cfg.allowsOverflow(op) {
			return Representation{}, &OverflowError{
				Op: op, Value: m.realInterval(u.f.lsb), Limits: u.f.ValueInterval(),
			}
		}
		m, _ = m.correct(u.cfg.overflow, u.f.MantissaInterval())
	}
	z := rep(m, u.f)
	u.cfg.trace(op, z)
	return z, nil
}

// Mul multiplies through a doubled-width intermediate format
// (msb' = 2*msb+1, lsb' = 2*lsb), which holds the exact product, then
// re-quantizes down to the unit's format with the configured rounding.
func (u *Fixed) Mul(x, y Representation) (Representation, error) {
	if err := u.check(x, y); err != nil {
		return Representation{}, err
	}
	prod, err := x.mant.mul(y.mant)
	if err != nil {
		return Representation{}, err
	}
	wide := Format{msb: 2*u.f.msb + 1, lsb: 2 * u.f.lsb, signed: u.f.signed}
	exact := rep(prod, wide)
	m, flags, err := u.f.Represent(VRep(exact), u.cfg.rounding)
	if err != nil {
		return Representation{}, err
	}
	if flags.Underflow && !u.cfg.allowsUnderflow(OpMul) {
		return Representation{}, &UnderflowError{
			Op: OpMul, Value: exact.RealInterval(), Epsilon: u.f.Epsilon(),
		}
	}
	if flags.Overflow {
		if !u.cfg.allowsOverflow(OpMul) {
			return Representation{}, &OverflowError{
				Op: OpMul, Value: exact.RealInterval(), Limits: u.f.ValueInterval(),
			}
		}
		m, _ = m.correct(u.cfg.overflow, u.f.MantissaInterval())
	}
	z := rep(m, u.f)
	u.cfg.trace(OpMul, z)
	return z, nil
}

// Div is declared for interface completeness only.
func (u *Fixed) Div(x, y Representation) (Representation, error) {
	return Representation{}, fmt.Errorf("%w: div", ErrUnimplemented)
}

// Mod is declared for interface completeness only.
func (u *Fixed) Mod(x, y Representation) (Representation, error) {
	return Representation{}, fmt.Errorf("%w: mod", ErrUnimplemented)
}

func (u *Fixed) Trunc(x Representation) (Representation, error) {
	return u.roundTo(OpTrunc, round.Trunc, x)
}

func (u *Fixed) Floor(x Representation) (Representation, error) {
	return u.roundTo(OpFloor, round.Floor, x)
}

func (u *Fixed) Ceil(x Representation) (Representation, error) {
	return u.roundTo(OpCeil, round.Ceil, x)
}

func (u *Fixed) Nearest(x Representation) (Representation, error) {
	return u.roundTo(OpNearest, round.Nearest, x)
}

// roundTo rounds x to a whole number, staying in the unit's format. The
// mantissa shifts down to the integer grid and back up, all in integers.
func (u *Fixed) roundTo(op Op, rm round.Mode, x Representation) (Representation, error) {
	if err := u.check(x); err != nil {
		return Representation{}, err
	}
	if x.IsInteger() {
		return x, nil
	}
	m := x.mant.shiftLSB(rm, x.f.lsb).lsh(uint(-x.f.lsb))
	if u.f.OverflowsWith(m) {
		if !u.cfg.allowsOverflow(op) {
			return Representation{}, &OverflowError{
				Op: op, Value: m.realInterval(u.f.lsb), Limits: u.f.ValueInterval(),
			}
		}
		m, _ = m.correct(u.cfg.overflow, u.f.MantissaInterval())
	}
	z := rep(m, u.f)
	u.cfg.trace(op, z)
	return z, nil
}

// Neg negates. Unsigned formats cannot, and negating the most negative
// value of a two's-complement-style range overflows.
func (u *Fixed) Neg(x Representation) (Representation, error) {
	if err := u.check(x); err != nil {
		return Representation{}, err
	}
	if !u.f.signed {
		return Representation{}, fmt.Errorf("%w: %v", ErrUnsignedNegate, x)
	}
	if x.IsZero() {
		return x, nil
	}
	m := x.mant.neg()
	if u.f.OverflowsWith(m) {
		if !u.cfg.allowsOverflow(OpNeg) {
			return Representation{}, &OverflowError{
				Op: OpNeg, Value: m.realInterval(u.f.lsb), Limits: u.f.ValueInterval(),
			}
		}
		m, _ = m.correct(u.cfg.overflow, u.f.MantissaInterval())
	}
	z := rep(m, u.f)
	u.cfg.trace(OpNeg, z)
	return z, nil
}

// Cmp subtracts mantissas with no format change and no rounding.
func (u *Fixed) Cmp(x, y Representation) (Mant, error) {
	if err := u.check(x, y); err != nil {
		return Mant{}, err
	}
	return x.mant.sub(y.mant)
}

// Lsh shifts the mantissa left, which can overflow and is checked.
func (u *Fixed) Lsh(x Representation, n int) (Representation, error) {
	if err := u.check(x); err != nil {
		return Representation{}, err
	}
	if n < 0 {
		return Representation{}, fmt.Errorf("%w: %d", ErrNegativeShift, n)
	}
	m := x.mant.lsh(uint(n))
	if u.f.OverflowsWith(m) {
		if !u.cfg.allowsOverflow(OpLsh) {
			return Representation{}, &OverflowError{
				Op: OpLsh, Value: m.realInterval(u.f.lsb), Limits: u.f.ValueInterval(),
			}
		}
		m, _ = m.correct(u.cfg.overflow, u.f.MantissaInterval())
	}
	z := rep(m, u.f)
	u.cfg.trace(OpLsh, z)
	return z, nil
}

// Rsh shifts the mantissa right. Information is only lost, never grown, so
// there is nothing to check: losing low bits is what a right shift is for.
func (u *Fixed) Rsh(x Representation, n int) (Representation, error) {
	if err := u.check(x); err != nil {
		return Representation{}, err
	}
	if n < 0 {
		return Representation{}, fmt.Errorf("%w: %d", ErrNegativeShift, n)
	}
	z := rep(x.mant.rsh(uint(n)), u.f)
	u.cfg.trace(OpRsh, z)
	return z, nil
}
