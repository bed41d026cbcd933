package fxq

import (
	"fmt"

	"github.com/pfcm/fxq/overflow"
	"github.com/pfcm/fxq/round"
)

// Op names a unit operation. Overflow and underflow permissions are
// configured per Op in a static table at construction time.
type Op int

const (
	OpRepresent Op = iota
	OpAdd
	OpSub
	OpMul
	OpDiv
	OpMod
	OpCmp
	OpTrunc
	OpFloor
	OpCeil
	OpNearest
	OpNeg
	OpLsh
	OpRsh

	numOps
)

var opNames = [...]string{
	OpRepresent: "represent",
	OpAdd:       "add",
	OpSub:       "sub",
	OpMul:       "mul",
	OpDiv:       "div",
	OpMod:       "mod",
	OpCmp:       "cmp",
	OpTrunc:     "trunc",
	OpFloor:     "floor",
	OpCeil:      "ceil",
	OpNearest:   "nearest",
	OpNeg:       "neg",
	OpLsh:       "lsh",
	OpRsh:       "rsh",
}

func (op Op) String() string {
	if op >= 0 && int(op) < len(opNames) {
		return opNames[op]
	}
	return fmt.Sprintf("Op(%d)", int(op))
}

// OpSet is a set of Ops, for the per-operation permission tables.
type OpSet uint16

// AllOps contains every operation.
const AllOps OpSet = 1<<numOps - 1

// NoOps is the empty set.
const NoOps OpSet = 0

// Ops builds a set from the given operations.
func Ops(ops ...Op) OpSet {
	var s OpSet
	for _, op := range ops {
		s |= 1 << op
	}
	return s
}

// Has reports whether op is in the set.
func (s OpSet) Has(op Op) bool { return s&(1<<op) != 0 }

// Tracer observes completed unit operations. It replaces nothing in the
// arithmetic; it exists so callers can count, say, how many rounding
// operations a computation performed.
type Tracer interface {
	Trace(op Op, result Representation)
}

// OpCounter is a Tracer that counts operations by kind.
type OpCounter map[Op]int

func (c OpCounter) Trace(op Op, _ Representation) { c[op]++ }

// Info describes a unit's representable range: the quantization step and
// the smallest and largest representable values. External callers use it
// to validate inputs before running anything through the unit.
type Info struct {
	Eps, Min, Max float64
}

// Unit is a processing unit: it performs bit-exact fixed-point arithmetic
// under a configured rounding mode and overflow behavior. Div and Mod are
// declared for completeness but return ErrUnimplemented everywhere.
type Unit interface {
	Wordlength() int
	Rounding() round.Mode
	OverflowMode() overflow.Mode
	Info() Info

	Represent(v Value) (Representation, error)

	Add(x, y Representation) (Representation, error)
	Sub(x, y Representation) (Representation, error)
	Mul(x, y Representation) (Representation, error)
	Div(x, y Representation) (Representation, error)
	Mod(x, y Representation) (Representation, error)

	// Cmp returns the mantissa difference of the operands in a common
	// format: pure integer subtraction, no rounding, so comparisons
	// never go through floating approximations.
	Cmp(x, y Representation) (Mant, error)

	Trunc(x Representation) (Representation, error)
	Floor(x Representation) (Representation, error)
	Ceil(x Representation) (Representation, error)
	Nearest(x Representation) (Representation, error)

	Neg(x Representation) (Representation, error)
	Lsh(x Representation, n int) (Representation, error)
	Rsh(x Representation, n int) (Representation, error)

	fmt.Stringer
}

type config struct {
	rounding       round.Mode
	overflow       overflow.Mode
	allowOverflow  OpSet
	allowUnderflow OpSet
	tracer         Tracer
}

func newConfig(opts []Option) config {
	cfg := config{
		rounding:       round.Floor,
		overflow:       overflow.Wraparound,
		allowOverflow:  AllOps,
		allowUnderflow: AllOps,
	}
	for _, o := range opts {
		o(&cfg)
	}
	return cfg
}

// allowsOverflow consults the static permission table. Negation is allowed
// to overflow whenever negation, subtraction or multiplication is: all
// three reach the same most-negative-value corner.
func (c config) allowsOverflow(op Op) bool {
	if op == OpNeg {
		return c.allowOverflow.Has(OpNeg) ||
			c.allowOverflow.Has(OpSub) ||
			c.allowOverflow.Has(OpMul)
	}
	return c.allowOverflow.Has(op)
}

func (c config) allowsUnderflow(op Op) bool {
	return c.allowUnderflow.Has(op)
}

func (c config) trace(op Op, result Representation) {
	if c.tracer != nil {
		c.tracer.Trace(op, result)
	}
}

// Option configures a unit at construction.
type Option func(*config)

// WithRounding sets the rounding mode. The default is round.Floor.
func WithRounding(m round.Mode) Option {
	return func(c *config) { c.rounding = m }
}

// WithOverflow sets the overflow behavior. The default is
// overflow.Wraparound.
func WithOverflow(m overflow.Mode) Option {
	return func(c *config) { c.overflow = m }
}

// WithAllowOverflow sets which operations may overflow silently (the
// behavior then corrects the result). Operations outside the set return
// *OverflowError instead. The default is AllOps.
func WithAllowOverflow(s OpSet) Option {
	return func(c *config) { c.allowOverflow = s }
}

// WithAllowUnderflow sets which operations may round a nonzero value to
// zero silently. Operations outside the set return *UnderflowError
// instead. The default is AllOps.
func WithAllowUnderflow(s OpSet) Option {
	return func(c *config) { c.allowUnderflow = s }
}

// WithTracer attaches an operation observer.
func WithTracer(t Tracer) Option {
	return func(c *config) { c.tracer = t }
}
