package fxq

import (
	"errors"
	"fmt"
	"math"

	"github.com/pfcm/fxq/interval"
)

// Usage errors. These mean the caller misused a unit; they are never
// produced by a legitimate computation, and nothing retries them.
var (
	// ErrNoActiveUnit is returned when arithmetic needs an ambient unit
	// and none has been entered.
	ErrNoActiveUnit = errors.New("fxq: no active processing unit")
	// ErrFormatMismatch is returned by fixed-format units handed an
	// operand in a different format.
	ErrFormatMismatch = errors.New("fxq: operand format mismatch")
	// ErrNegativeShift is returned for shifts by negative counts.
	ErrNegativeShift = errors.New("fxq: negative shift count")
	// ErrUnsignedNegate is returned when negating a value in an
	// unsigned format.
	ErrUnsignedNegate = errors.New("fxq: cannot negate unsigned representation")
	// ErrUnsignedValue is returned when an unsigned format is asked to
	// hold a negative value.
	ErrUnsignedValue = errors.New("fxq: unsigned format cannot represent negative values")
	// ErrUnimplemented is returned by Div and Mod, which the unit
	// interface declares but no unit implements.
	ErrUnimplemented = errors.New("fxq: operation not implemented")
	// ErrMixedSigns is returned when a binary operation mixes signed
	// and unsigned operands.
	ErrMixedSigns = errors.New("fxq: mixed signedness operands")
	// ErrWordTooLarge is returned for unit wordlengths outside 1..31.
	// The cap keeps doubled-width multiply intermediates within int64
	// and every representable value exactly convertible to float64.
	ErrWordTooLarge = errors.New("fxq: wordlength must be between 1 and 31 bits")
)

// OverflowError reports a result that exceeded the representable range with
// overflow disallowed for the operation. It is an expected, frequent
// outcome of a search over formats, not a failure of the arithmetic itself;
// recovery is entirely the caller's business.
type OverflowError struct {
	Op     Op
	Value  interval.Interval[float64]
	Limits interval.Interval[float64]
}

func (e *OverflowError) Error() string {
	if e.Value.IsPoint() {
		return fmt.Sprintf("fxq: %v of %v overflows %v", e.Op, e.Value.Lo, e.Limits)
	}
	return fmt.Sprintf("fxq: %v of %v overflows %v", e.Op, e.Value, e.Limits)
}

// Margin is a continuous measure of how infeasible the value was, as the
// dB ratio of the legal limit to the offending magnitude. Slightly negative
// means almost feasible; an optimizer can rank candidates by it instead of
// treating every overflow alike.
func (e *OverflowError) Margin() float64 {
	return 10 * math.Log10(e.Limits.Abs().Hi/e.Value.Abs().Hi)
}

// UnderflowError reports a nonzero value that quantized to zero with
// underflow disallowed for the operation.
type UnderflowError struct {
	Op      Op
	Value   interval.Interval[float64]
	Epsilon float64
}

func (e *UnderflowError) Error() string {
	if e.Value.IsPoint() {
		return fmt.Sprintf("fxq: %v of %v underflows below epsilon %v", e.Op, e.Value.Lo, e.Epsilon)
	}
	return fmt.Sprintf("fxq: %v of %v underflows below epsilon %v", e.Op, e.Value, e.Epsilon)
}

// Margin is the dB ratio of the offending magnitude to the quantization
// step, mirroring OverflowError.Margin.
func (e *UnderflowError) Margin() float64 {
	return 10 * math.Log10(e.Value.Abs().Hi/e.Epsilon)
}
