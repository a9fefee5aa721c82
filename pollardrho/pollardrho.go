// Package pollardrho implements C7: Brent's improvement of Pollard's rho
// factorization algorithm, run over a Montgomery context so every modular
// squaring in the inner cycle-detection loop uses the substrate in package
// montgomery rather than a native mod operator. Grounded on the original's
// pollard_rho_factorize.h retry-with-incremented-c contract (the dispatcher
// keeps trying a new pseudo-random constant c until a nontrivial factor
// turns up) and on bfix-gospel/math/factorizer/pollard_rho.go's simpler
// Floyd-cycle sketch, which this file replaces with Brent's batched-GCD
// variant for fewer modular multiplications per candidate factor.
package pollardrho

import (
	"github.com/hurchalla/go-factoring/montgomery"
	"github.com/hurchalla/go-factoring/u128"
	"github.com/hurchalla/go-factoring/width"
)

// batchSize is the number of pseudo-random steps accumulated into a single
// running GCD, trading a small chance of "backtracking" work for far fewer
// calls to gcd (which is far more expensive per-call than a Montgomery
// squaring).
const batchSize = 128

// gcd returns the greatest common divisor of a and b, via the classic
// Euclidean algorithm on native machine words -- cheap enough here since
// pollardrho's batching already keeps the call count low relative to the
// number of modular multiplications performed.
func gcd(a, b uint64) uint64 {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

// Trial runs one Brent-rho attempt against ctx's modulus using starting
// constant c, returning a nontrivial factor and true if found. A false
// result means this c value happened not to yield a factor (an expected,
// low-probability outcome per the original's comments) and the caller
// should retry with a different c.
func Trial[T width.Unsigned](ctx *montgomery.Context[T], c uint64) (T, bool) {
	n := ctx.Modulus()
	cc := ctx.ConvertIn(c % n)
	y := ctx.ConvertIn(2 % n)

	r := uint64(1)
	q := ctx.Unity()
	var x, ys uint64
	factor := uint64(1)

	for factor == 1 {
		x = y
		for i := uint64(0); i < r; i++ {
			y = ctx.Add(ctx.Mul(y, y), cc)
		}
		k := uint64(0)
		for k < r && factor == 1 {
			ys = y
			steps := uint64(batchSize)
			if r-k < batchSize {
				steps = r - k
			}
			for i := uint64(0); i < steps; i++ {
				y = ctx.Add(ctx.Mul(y, y), cc)
				diff := ctx.Sub(ctx.Canonicalize(x), ctx.Canonicalize(y))
				q = ctx.Mul(q, diff)
			}
			factor = gcd(ctx.ConvertOut(q), n)
			k += steps
		}
		r *= 2
		if r == 0 {
			// r overflowed uint64: the sequence never cycled, which in
			// practice only happens for a degenerate c. Signal failure
			// so the caller retries with the next c.
			return 0, false
		}
	}

	if factor == n {
		// The batched GCD collapsed to n itself; backtrack one step at a
		// time from the last checkpoint to isolate the true factor.
		for {
			ys = ctx.Add(ctx.Mul(ys, ys), cc)
			diff := ctx.Sub(ctx.Canonicalize(x), ctx.Canonicalize(ys))
			factor = gcd(ctx.ConvertOut(diff), n)
			if factor > 1 {
				break
			}
			if ys == x {
				return 0, false
			}
		}
	}
	if factor == 0 || factor == n {
		return 0, false
	}
	return width.Narrow[T](factor), true
}

// Find retries Trial with c = 1, 2, 3, ... until a nontrivial factor of
// ctx's modulus is found, matching the original's pr_factorize loop. ok is
// false only in the astronomically unlikely case that every c up to n was
// exhausted without success, at which point the caller (package factor)
// falls back to wheel210.
func Find[T width.Unsigned](ctx *montgomery.Context[T]) (T, bool) {
	n := ctx.Modulus()
	for c := uint64(1); c < n; c++ {
		if factor, ok := Trial(ctx, c); ok {
			return factor, true
		}
	}
	var zero T
	return zero, false
}

// gcd128 mirrors gcd but over u128.Uint128, used by the 128-bit variant.
func gcd128(a, b u128.Uint128) u128.Uint128 {
	return u128.GCD(a, b)
}

// TrialU128 is the 128-bit counterpart of Trial.
func TrialU128(ctx *montgomery.Context128, c uint64) (u128.Uint128, bool) {
	n := ctx.Modulus()
	// c is supplied by FindU128's loop, which only ever offers values < n,
	// so no reduction is needed before converting into Montgomery form.
	cc := ctx.ConvertIn(u128.From64(c))
	y := ctx.ConvertIn(u128.From64(2))

	r := uint64(1)
	q := ctx.Unity()
	var x, ys u128.Uint128
	factor := u128.From64(1)
	one := u128.From64(1)

	for factor.Cmp(one) == 0 {
		x = y
		for i := uint64(0); i < r; i++ {
			y = ctx.Add(ctx.Mul(y, y), cc)
		}
		k := uint64(0)
		for k < r && factor.Cmp(one) == 0 {
			ys = y
			steps := uint64(batchSize)
			if r-k < batchSize {
				steps = r - k
			}
			for i := uint64(0); i < steps; i++ {
				y = ctx.Add(ctx.Mul(y, y), cc)
				diff := ctx.Sub(ctx.Canonicalize(x), ctx.Canonicalize(y))
				q = ctx.Mul(q, diff)
			}
			factor = gcd128(ctx.ConvertOut(q), n)
			k += steps
		}
		r *= 2
		if r == 0 {
			return u128.Uint128{}, false
		}
	}

	if factor.Cmp(n) == 0 {
		for {
			ys = ctx.Add(ctx.Mul(ys, ys), cc)
			diff := ctx.Sub(ctx.Canonicalize(x), ctx.Canonicalize(ys))
			factor = gcd128(ctx.ConvertOut(diff), n)
			if factor.Cmp(one) > 0 {
				break
			}
			if ys.Cmp(x) == 0 {
				return u128.Uint128{}, false
			}
		}
	}
	if factor.IsZero() || factor.Cmp(n) == 0 {
		return u128.Uint128{}, false
	}
	return factor, true
}

// FindU128 is the 128-bit counterpart of Find.
func FindU128(ctx *montgomery.Context128) (u128.Uint128, bool) {
	n := ctx.Modulus()
	one := u128.From64(1)
	for c := one; c.Cmp(n) < 0; c = u128.Add(c, one) {
		if factor, ok := TrialU128(ctx, c.Lo); ok {
			return factor, true
		}
	}
	return u128.Uint128{}, false
}
