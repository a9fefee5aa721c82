// Package wheel210 implements C9: wheel factorization with a wheel spanning
// the 2*3*5*7 = 210 residue cycle, the last-resort complete factorizer used
// when pollardrho exhausts every retry constant without finding a factor.
// Grounded directly on the original's factorize_wheel210.h, translated from
// its output-iterator C++ idiom to a Go sink callback, matching the
// sink-func convention package smallprime already uses for the same reason
// (avoiding a slice allocation on every call).
package wheel210

import (
	"github.com/hurchalla/go-factoring/mayer"
	"github.com/hurchalla/go-factoring/u128"
	"github.com/hurchalla/go-factoring/width"
)

// wheel lists the 48 residues coprime to 210 within [17, 227), the repeating
// pattern that lets the trial loop skip every candidate divisible by
// 2, 3, 5 or 7 without a modulus test.
var wheel = [48]uint64{
	17, 19, 23, 29, 31, 37, 41, 43, 47, 53,
	59, 61, 67, 71, 73, 79, 83, 89, 97, 101,
	103, 107, 109, 113, 121, 127, 131, 137, 139, 143,
	149, 151, 157, 163, 167, 169, 173, 179, 181, 187,
	191, 193, 197, 199, 209, 211, 221, 223,
}

const cycleLen = 210

// Factorize completely factors x >= 2 via trial division, peeling 2, 3, 5,
// 7, 11, 13 directly (the wheel's own residues, per the original's
// wheel_factorization210.h, so the wheel sweep below never has to re-check
// them) and then walking the wheel-210 pattern up to sqrt(x), calling
// sink once per prime factor found (with multiplicity). It always
// terminates with a full factorization, though it may take a very long
// time for a large prime or semiprime input -- this is the fallback of
// last resort, never the fast path.
func Factorize[T width.Unsigned](x T, sink func(T)) {
	q := width.SafelyPromote(x)
	for q%2 == 0 {
		q /= 2
		sink(width.Narrow[T](2))
		if q == 1 {
			return
		}
	}
	for q%3 == 0 {
		q /= 3
		sink(width.Narrow[T](3))
		if q == 1 {
			return
		}
	}
	for q%5 == 0 {
		q /= 5
		sink(width.Narrow[T](5))
		if q == 1 {
			return
		}
	}
	for q%7 == 0 {
		q /= 7
		sink(width.Narrow[T](7))
		if q == 1 {
			return
		}
	}
	for q%11 == 0 {
		q /= 11
		sink(width.Narrow[T](11))
		if q == 1 {
			return
		}
	}
	for q%13 == 0 {
		q /= 13
		sink(width.Narrow[T](13))
		if q == 1 {
			return
		}
	}

	bitsT := width.Bits[T]()
	if bitsT <= 8 {
		// every potential factor below sqrt(2^8) has already been tried
		// above (up to 13 covers uint8's whole range); q must be prime.
		sink(width.Narrow[T](q))
		return
	}
	sqrtR := uint64(1) << uint(bitsT/2)

	for start := uint64(0); ; start += cycleLen {
		first := start + wheel[0]
		if first >= sqrtR || first*first > q {
			sink(width.Narrow[T](q))
			return
		}
		for _, w := range wheel {
			candidate := start + w
			// Each wheel candidate is tried at most a handful of times
			// before the sweep moves on, unlike smallprime's globally
			// precomputed, heavily-reused divisor table, so the
			// inverse-mod-R setup Divides relies on isn't worth paying for
			// here; NewDivisorU64 skips it and DividesU64 dispatches
			// straight to a native hardware divide, per §4.3's
			// small-dividend branch.
			dv := mayer.NewDivisorU64(candidate)
			for {
				quotient, divides := dv.DividesU64(q)
				if !divides {
					break
				}
				sink(width.Narrow[T](candidate))
				q = quotient
				if q == 1 {
					return
				}
			}
		}
	}
}

// FactorizeU128 is the 128-bit counterpart of Factorize. Every candidate
// divisor the wheel produces fits in a uint64 (sqrt of a 128-bit value is
// at most 64 bits), so trial division against q only needs DivSmall; the
// sink still takes a full Uint128, since the final cofactor sunk when the
// search proves primality may itself be wider than 64 bits.
func FactorizeU128(x u128.Uint128, sink func(u128.Uint128)) {
	q := x
	one := u128.From64(1)
	for q.IsEven() {
		q = u128.Rsh(q, 1)
		sink(u128.From64(2))
		if q.Cmp(one) == 0 {
			return
		}
	}
	for _, p := range []uint64{3, 5, 7, 11, 13} {
		for {
			quotient, rem := u128.DivSmall(q, p)
			if rem != 0 {
				break
			}
			q = quotient
			sink(u128.From64(p))
			if q.Cmp(one) == 0 {
				return
			}
		}
	}

	for start := uint64(0); ; start += cycleLen {
		first := start + wheel[0]
		firstSq, overflowed := mulOverflows(first, first)
		if overflowed || u128.From64(firstSq).Cmp(q) > 0 {
			sink(q)
			return
		}
		for _, w := range wheel {
			candidate := start + w
			for {
				quotient, rem := u128.DivSmall(q, candidate)
				if rem != 0 {
					break
				}
				q = quotient
				sink(u128.From64(candidate))
				if q.Cmp(one) == 0 {
					return
				}
			}
		}
	}
}

// mulOverflows returns a*b and whether the product overflowed 64 bits.
func mulOverflows(a, b uint64) (uint64, bool) {
	p := u128.Mul(u128.From64(a), u128.From64(b))
	return p.W0, p.W1 != 0 || p.W2 != 0 || p.W3 != 0
}
