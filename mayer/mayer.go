// Package mayer implements the constant-divisor ("Mayer") divisibility
// test: given an odd divisor d, decide whether d divides x and, if so,
// produce the quotient, without using a hardware divide instruction in the
// general case. It mirrors the precomputed-inverse style of the teacher's
// ring.BRedParams/ring.MRed (one-time setup via the inverse-mod-R trick,
// then a multiply-and-compare in the hot loop) applied to plain
// divisibility rather than modular reduction.
package mayer

import (
	"errors"
	"math/bits"
)

// ErrPrecondition is panicked when d is even; d must be odd for the
// inverse-mod-R trick to apply.
var ErrPrecondition = errors.New("mayer: divisor must be odd")

// Divisor precomputes the inverse-mod-R constant for one odd divisor d, so
// that repeated divisibility tests of many dividends against the same d
// (as package smallprime does, peeling one prime divisor at a time) only
// pay the Newton-iteration setup cost once.
type Divisor struct {
	d    uint64
	dInv uint64
}

// NewDivisor precomputes the constants needed to test divisibility by the
// odd divisor d. Panics with ErrPrecondition if d is even.
func NewDivisor(d uint64) Divisor {
	if d&1 == 0 {
		panic(ErrPrecondition)
	}
	return Divisor{d: d, dInv: modInverse64(d)}
}

// D returns the divisor this Divisor was constructed for.
func (dv Divisor) D() uint64 { return dv.d }

// NewDivisorU64 constructs a Divisor for use with DividesU64 only. Unlike
// NewDivisor, it skips the inverse-mod-R Newton iteration entirely, since
// DividesU64 never reads dInv -- callers that don't expect to reuse d
// enough times to amortize that setup (wheel210's per-candidate trial loop
// being the prototypical case) should use this constructor instead of
// NewDivisor. Still panics with ErrPrecondition if d is even, matching
// NewDivisor.
func NewDivisorU64(d uint64) Divisor {
	if d&1 == 0 {
		panic(ErrPrecondition)
	}
	return Divisor{d: d}
}

// DividesU64 tests whether dv's divisor divides x (a full 64-bit dividend
// fitting one machine word) and, if so, returns the quotient. This is the
// "dividend fits one machine word and hardware divide is fast" branch of
// §4.3's dispatch; on typical CPUs a native DIVQ is at least as fast as the
// inverse-multiply trick at this width, so it is used directly rather than
// reimplementing the trick over two 64-bit halves for marginal benefit.
func (dv Divisor) DividesU64(x uint64) (quotient uint64, divides bool) {
	q, r := x/dv.d, x%dv.d
	return q, r == 0
}

// Divides tests whether dv's divisor divides x using the inverse-mod-R
// trick of §4.3: m = x*dInv mod 2^64; d divides x iff the high 64 bits of
// m*d are zero, in which case m is the quotient. x is always carried as a
// uint64 regardless of the caller's logical integer width, the same way
// package montgomery carries its values -- the trick operates at the
// machine-register level and does not care how many of x's bits are
// logically significant.
func Divides(dv Divisor, x uint64) (quotient uint64, divides bool) {
	m := x * dv.dInv
	hi, _ := bits.Mul64(m, dv.d)
	return m, hi == 0
}

// modInverse64 returns d^-1 mod 2^64 for odd d, via the same doubling
// Newton iteration package montgomery uses internally (duplicated here,
// rather than imported, to keep mayer usable standalone the way the
// original's TrialDivisionMayer.h is a free-standing header with no
// dependency on the Montgomery machinery).
func modInverse64(d uint64) uint64 {
	inv := d
	for i := 0; i < 5; i++ { // 3 -> 6 -> 12 -> 24 -> 48 -> 96 correct bits
		inv = inv * (2 - d*inv)
	}
	return inv
}
