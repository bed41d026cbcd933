// package fxq models finite-precision fixed-point arithmetic the way
// embedded digital-filter hardware performs it: wordlength-limited
// mantissas under explicit bit layouts, configurable rounding, and
// configurable overflow behavior. Alongside the bit-exact results it keeps
// the machinery to bound, analytically, the worst-case error any sequence
// of such operations can introduce (see the ebound package).
//
// The pieces, leaf to root: interval does bounded-range arithmetic, round
// and overflow name the quantization and correction policies, Format fixes
// a bit layout, Representation is a mantissa under a Format, Fixed and
// Multi are the two processing unit flavors, and Env/Number give ambient
// arithmetic where one entered unit governs a whole computation.
package fxq
