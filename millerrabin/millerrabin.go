// Package millerrabin implements C5: the Miller-Rabin primality test run
// inside a Montgomery context, with witness sets selected by the
// modulus's bit range. Grounded on the teacher's ring.Table.GenNTTParams
// and ckks/bootstrapping.IsPrime, both of which already gate a
// modulus-dependent computation behind a package-level primality oracle.
package millerrabin

import (
	"github.com/hurchalla/go-factoring/montgomery"
	"github.com/hurchalla/go-factoring/u128"
	"github.com/hurchalla/go-factoring/width"
)

// Deterministic witness sets, published in the Miller-Rabin literature
// (Pomerance/Selfridge/Wagstaff; Jaeschke; Sorenson & Webster).
var (
	witnessUpTo2_32 = []uint64{2, 7, 61}
	// No single 3-base literature set covering exactly n < 2^44 is used
	// here; see DESIGN.md for why this tier instead reuses the verified
	// 7-base set known safe up to 341,550,071,728,321 (> 2^48), a
	// deliberately conservative substitution for an unconfirmed 3-base
	// claim.
	witnessUpTo2_44 = []uint64{2, 3, 5, 7, 11, 13, 17}
	// Sorenson & Webster's 7-base set, deterministic for all n < 2^64.
	witnessUpTo2_64 = []uint64{2, 325, 9375, 28178, 450775, 9780504, 1795265022}
	// Appended to witnessUpTo2_64 for the 128-bit (n >= 2^64) case, which
	// has no known deterministic witness set; this only strengthens the
	// probabilistic guarantee per spec's "general probabilistic variant
	// with the same API".
	extraSmallPrimeBases = []uint64{3, 5, 7, 11, 13, 17, 19, 23, 29, 31, 37}
)

// WitnessSet returns the bases to use for a modulus n < 2^64, per §4.5's
// bit-range contract.
func WitnessSet(n uint64) []uint64 {
	switch {
	case n < (uint64(1) << 32):
		return witnessUpTo2_32
	case n < (uint64(1) << 44):
		return witnessUpTo2_44
	default:
		return witnessUpTo2_64
	}
}

// WitnessSetU128 returns the bases used for the 128-bit general
// probabilistic variant.
func WitnessSetU128() []uint64 {
	out := make([]uint64, 0, len(witnessUpTo2_64)+len(extraSmallPrimeBases))
	out = append(out, witnessUpTo2_64...)
	out = append(out, extraSmallPrimeBases...)
	return out
}

// IsPrime runs the Miller-Rabin test (§4.5) against odd n > 1 using the
// Montgomery context ctx (already constructed over n) and witness set
// bases, returning false as soon as any base proves n composite.
func IsPrime[T width.Unsigned](n T, ctx *montgomery.Context[T], bases []uint64) bool {
	nv := width.SafelyPromote(n)

	d := nv - 1
	s := 0
	for d&1 == 0 {
		d >>= 1
		s++
	}

	for _, a := range bases {
		aMod := a % nv
		if aMod == 0 {
			continue
		}
		x := ctx.Pow(ctx.ConvertIn(aMod), d)
		if ctx.EqualsCanonical(x, ctx.Unity()) || ctx.EqualsCanonical(x, ctx.NegOne()) {
			continue
		}

		passed := false
		for i := 0; i < s-1; i++ {
			x = ctx.Square(x)
			if ctx.EqualsCanonical(x, ctx.NegOne()) {
				passed = true
				break
			}
		}
		if !passed {
			return false
		}
	}
	return true
}

// Prime is the top-level is_prime(n) operation of spec §6: it handles the
// small-n and even-n edge cases directly, then builds a Montgomery context
// of the tightest flavor for n (montgomery.PickFlavor) and delegates to
// IsPrime with the witness set WitnessSet picks for n's magnitude.
func Prime[T width.Unsigned](n T) bool {
	nv := width.SafelyPromote(n)
	if nv < 2 {
		return false
	}
	if nv == 2 || nv == 3 {
		return true
	}
	if nv&1 == 0 {
		return false
	}
	ctx := montgomery.NewContext[T](n, montgomery.PickFlavor(n))
	return IsPrime(n, ctx, WitnessSet(nv))
}

// IsPrimeU128 is the 128-bit counterpart of IsPrime, against the
// probabilistic witness set WitnessSetU128.
func IsPrimeU128(n u128.Uint128, ctx *montgomery.Context128, bases []uint64) bool {
	one := u128.From64(1)
	d := u128.Sub(n, one)
	s := 0
	for d.IsEven() {
		d = u128.Rsh(d, 1)
		s++
	}

	for _, a := range bases {
		aBig := u128.From64(a)
		if aBig.Cmp(n) >= 0 {
			continue
		}
		x := ctx.Pow(ctx.ConvertIn(aBig), d)
		if ctx.EqualsCanonical(x, ctx.Unity()) || ctx.EqualsCanonical(x, ctx.NegOne()) {
			continue
		}

		passed := false
		for i := 0; i < s-1; i++ {
			x = ctx.Square(x)
			if ctx.EqualsCanonical(x, ctx.NegOne()) {
				passed = true
				break
			}
		}
		if !passed {
			return false
		}
	}
	return true
}

// PrimeU128 is the 128-bit counterpart of Prime.
func PrimeU128(n u128.Uint128) bool {
	if n.Hi == 0 && n.Lo < 2 {
		return false
	}
	if n.Hi == 0 && (n.Lo == 2 || n.Lo == 3) {
		return true
	}
	if n.IsEven() {
		return false
	}
	ctx := montgomery.NewContext128(n, montgomery.PickFlavor128(n))
	return IsPrimeU128(n, ctx, WitnessSetU128())
}
