// Package factor implements C8, the recursive factorizer, and exposes the
// top-level factoring API: peel small primes (smallprime), gate the
// survivor through a primality oracle (millerrabin), and if still
// composite split it with Pollard-Rho-Brent (pollardrho), recursing on the
// factor and cofactor with an incremented polynomial parameter, falling
// back to wheel210 only in the practically-unreachable case where rho has
// tried every retry constant from its starting c up to n-2 without success
// (the retry loop does not wrap back to c = 1). Grounded on the original's recursive
// pollard_rho_factorize.h control flow (itself grounded in package
// pollardrho's doc comment) and on the teacher's own top-level dispatch
// style in ring/ecm.go's FactorizeECM, which similarly gates a
// divide-and-conquer loop behind a primality check before recursing.
package factor

import (
	"errors"

	"github.com/hurchalla/go-factoring/internal/ecm"
	"github.com/hurchalla/go-factoring/mayer"
	"github.com/hurchalla/go-factoring/millerrabin"
	"github.com/hurchalla/go-factoring/montgomery"
	"github.com/hurchalla/go-factoring/pollardrho"
	"github.com/hurchalla/go-factoring/smallprime"
	"github.com/hurchalla/go-factoring/u128"
	"github.com/hurchalla/go-factoring/wheel210"
	"github.com/hurchalla/go-factoring/width"
)

// ecmMaxCurves bounds the internal ECM auxiliary's curve search (see
// internal/ecm) when package factor falls back to it. This stage is never
// load-bearing for a correctly-implemented Pollard-Rho-Brent trial -- see
// DESIGN.md -- so its budget is kept small; wheel210 remains the guaranteed
// terminator regardless of whether ECM succeeds.
const ecmMaxCurves = 25

// ErrPrecondition is returned by FactorizeToSlice/FactorizeToSequence when
// x < 2, which has no prime factorization.
var ErrPrecondition = errors.New("factor: x must be >= 2")

// FactorStats accumulates observability counters for the factoring engine.
// FactorizationExhausted (spec's term for rho exhausting every retry
// constant for a cofactor) has no logging dependency in this engine, so it
// is surfaced here as a plain counter rather than a logged event.
type FactorStats struct {
	ExhaustedCount uint64
}

// Stats is the package-level counter instance; the engine is single-
// threaded and synchronous (see the concurrency design notes), so a plain
// struct needs no atomics.
var Stats FactorStats

// FactorizeToSlice returns the prime factorization of x (with multiplicity,
// in unspecified order) as a slice.
func FactorizeToSlice[T width.Unsigned](x T) ([]T, error) {
	var factors []T
	err := FactorizeToSequence(x, func(p T) { factors = append(factors, p) })
	if err != nil {
		return nil, err
	}
	return factors, nil
}

// FactorizeToSequence calls sink once per prime factor of x (with
// multiplicity, in unspecified order). It returns ErrPrecondition if
// x < 2.
func FactorizeToSequence[T width.Unsigned](x T, sink func(T)) error {
	if width.SafelyPromote(x) < 2 {
		return ErrPrecondition
	}
	factorRecursive(x, sink, 1)
	return nil
}

// IsPrime reports whether n is prime, via millerrabin's deterministic test
// for n's width.
func IsPrime[T width.Unsigned](n T) bool {
	return millerrabin.Prime(n)
}

func factorRecursive[T width.Unsigned](x T, sink func(T), c uint64) {
	q, boundary := smallprime.Divide(width.SafelyPromote(x), func(p uint64) {
		sink(width.Narrow[T](p))
	})
	if q == 1 {
		return
	}

	// Any survivor below boundary^2 cannot have a prime factor < boundary
	// (smallprime.Divide's postcondition) and is therefore itself prime.
	thresholdSq := boundary * boundary
	if q < thresholdSq {
		sink(width.Narrow[T](q))
		return
	}

	qT := width.Narrow[T](q)
	ctx := montgomery.NewContext[T](qT, montgomery.PickFlavor(qT))
	if millerrabin.IsPrime(qT, ctx, millerrabin.WitnessSet(q)) {
		sink(qT)
		return
	}

	for {
		if c >= q-1 {
			Stats.ExhaustedCount++
			// Pollard-Rho-Brent has tried every retry constant from the
			// starting c up to q-2 for this cofactor (constants below the
			// starting c are not retried), a case the design notes call "astronomically
			// unlikely" for a correct implementation. Give the internal ECM
			// auxiliary (see internal/ecm and DESIGN.md) one bounded attempt
			// before falling through to wheel210's guaranteed termination.
			if factorFound, ok := ecm.Factorize(q, ecmMaxCurves); ok {
				fT := width.Narrow[T](factorFound)
				factorRecursive(fT, sink, 1)
				cofactor := width.Narrow[T](q / factorFound)
				factorRecursive(cofactor, sink, 1)
				return
			}
			wheel210.Factorize(qT, sink)
			return
		}
		if factorFound, ok := pollardrho.Trial(ctx, c); ok {
			factorRecursive(factorFound, sink, c+1)
			cofactor := width.Narrow[T](q / width.SafelyPromote(factorFound))
			factorRecursive(cofactor, sink, c+1)
			return
		}
		c++
	}
}

// FactorizeToSliceU128 is the 128-bit counterpart of FactorizeToSlice.
func FactorizeToSliceU128(x u128.Uint128) ([]u128.Uint128, error) {
	var factors []u128.Uint128
	err := FactorizeToSequenceU128(x, func(p u128.Uint128) { factors = append(factors, p) })
	if err != nil {
		return nil, err
	}
	return factors, nil
}

// FactorizeToSequenceU128 is the 128-bit counterpart of FactorizeToSequence.
func FactorizeToSequenceU128(x u128.Uint128, sink func(u128.Uint128)) error {
	two := u128.From64(2)
	if x.Cmp(two) < 0 {
		return ErrPrecondition
	}
	factorRecursiveU128(x, sink, 1)
	return nil
}

// IsPrimeU128 is the 128-bit counterpart of IsPrime.
func IsPrimeU128(n u128.Uint128) bool {
	return millerrabin.PrimeU128(n)
}

func factorRecursiveU128(x u128.Uint128, sink func(u128.Uint128), c uint64) {
	// Peel native-word-sized small primes directly, since x may still fit
	// in a uint64 even though it's carried as a Uint128.
	if x.Hi == 0 {
		q, boundary := smallprime.Divide(x.Lo, func(p uint64) {
			sink(u128.From64(p))
		})
		if q == 1 {
			return
		}
		if q < boundary*boundary {
			sink(u128.From64(q))
			return
		}
		x = u128.From64(q)
	} else {
		x = peelSmallPrimesU128(x, sink)
		if x.Cmp(one128) == 0 {
			return
		}
	}

	ctx := montgomery.NewContext128(x, montgomery.PickFlavor128(x))
	if millerrabin.IsPrimeU128(x, ctx, millerrabin.WitnessSetU128()) {
		sink(x)
		return
	}

	nMinus2 := u128.Sub(x, u128.From64(2))
	for {
		if c >= nMinus2.Lo && nMinus2.Hi == 0 {
			Stats.ExhaustedCount++
			// Same bounded ECM attempt as factorRecursive's exhaustion
			// branch, applicable only while x still fits a uint64 (ECM's
			// curve arithmetic here is math/big over a uint64 modulus; see
			// internal/ecm).
			if x.Hi == 0 {
				if factorFound, ok := ecm.Factorize(x.Lo, ecmMaxCurves); ok {
					f := u128.From64(factorFound)
					factorRecursiveU128(f, sink, 1)
					cofactor, _ := u128DivMod(x, f)
					factorRecursiveU128(cofactor, sink, 1)
					return
				}
			}
			wheel210.FactorizeU128(x, sink)
			return
		}
		if factorFound, ok := pollardrho.TrialU128(ctx, c); ok {
			factorRecursiveU128(factorFound, sink, c+1)
			cofactor, _ := u128DivMod(x, factorFound)
			factorRecursiveU128(cofactor, sink, c+1)
			return
		}
		c++
	}
}

var one128 = u128.From64(1)

// peelSmallPrimesU128 divides out the dense odd primes from smallprime's
// table (plus 2) from a Uint128 dividend too large to demote to a uint64,
// using u128.DivSmall against each native-word divisor.
func peelSmallPrimesU128(x u128.Uint128, sink func(u128.Uint128)) u128.Uint128 {
	q := x
	for q.IsEven() {
		q = u128Rsh1(q)
		sink(u128.From64(2))
		if q.Cmp(one128) == 0 {
			return q
		}
	}
	for _, p := range smallprime.OddPrimes {
		dv := mayer.NewDivisor(p)
		for {
			if q.Hi == 0 {
				quotient, divides := mayer.Divides(dv, q.Lo)
				if !divides {
					break
				}
				sink(u128.From64(p))
				q = u128.From64(quotient)
				if q.Cmp(one128) == 0 {
					return q
				}
				continue
			}
			quotient, rem := u128.DivSmall(q, p)
			if rem != 0 {
				break
			}
			sink(u128.From64(p))
			q = quotient
			if q.Cmp(one128) == 0 {
				return q
			}
		}
	}
	return q
}

func u128Rsh1(v u128.Uint128) u128.Uint128 {
	return u128.Rsh(v, 1)
}

func u128DivMod(a, b u128.Uint128) (u128.Uint128, u128.Uint128) {
	if b.Hi == 0 {
		q, r := u128.DivSmall(a, b.Lo)
		return q, u128.From64(r)
	}
	// Both operands are >= 2^64 here only in the vanishingly unlikely case
	// of a 128-bit-wide prime factor; fall back to shift-subtract division.
	return u128LongDiv(a, b)
}

func u128LongDiv(a, b u128.Uint128) (u128.Uint128, u128.Uint128) {
	if a.Cmp(b) < 0 {
		return u128.Uint128{}, a
	}
	shift := u128BitLenDiff(a, b)
	divisor := u128.Lsh(b, shift)
	var quotient u128.Uint128
	remainder := a
	for i := uint(0); i <= shift; i++ {
		quotient = u128.Lsh(quotient, 1)
		if remainder.Cmp(divisor) >= 0 {
			remainder = u128.Sub(remainder, divisor)
			quotient = u128.Or(quotient, one128)
		}
		divisor = u128.Rsh(divisor, 1)
	}
	return quotient, remainder
}

func u128BitLenDiff(a, b u128.Uint128) uint {
	return uint(u128BitLen(a) - u128BitLen(b))
}

func u128BitLen(v u128.Uint128) int {
	return u128.BitLen(v)
}
