// Package montgomery implements the Montgomery modular arithmetic substrate
// (C4) over an odd modulus, plus the C2 modular-inverse helper that derives
// a context's parameters. It follows the teacher repository's
// ring/modular_reduction.go style (MForm/InvMForm/MRed/BRed, computed with
// math/bits and with setup-time parameters derived via math/big) but is
// generalized from a single hardcoded 64-bit modulus to any odd modulus
// whose bit width is given by a width.Unsigned type parameter.
package montgomery

import (
	"errors"
	"math/big"
	"math/bits"

	"github.com/hurchalla/go-factoring/width"
)

// ErrPrecondition is the value NewContext panics with when given an even
// modulus or one outside the range its requested Flavor requires. Per the design's
// closed error taxonomy, this is a programmer error: construction panics
// with it rather than letting the caller limp along with a broken context.
var ErrPrecondition = errors.New("montgomery: precondition violated")

// Flavor selects the range invariant a Context's values are held to. Wider
// flavors work for any odd modulus; narrower flavors require the modulus be
// below a fraction of the type's range, in exchange for cheaper reductions
// (fewer conditional subtractions) in the inner loop.
type Flavor int

const (
	// Full holds values in [0, n); works for any odd n.
	Full Flavor = iota
	// Half holds values in [0, n); requires n < 2^(w-1).
	Half
	// Quarter holds values in [0, 2n); requires n < 2^(w-2), permitting a
	// lazy-reduction fast path in add/sub.
	Quarter
)

// PickFlavor implements the dispatcher of spec §4.4.4: given a value x that
// is about to be factored, choose the tightest flavor valid for it.
func PickFlavor[T width.Unsigned](x T) Flavor {
	w := width.Bits[T]()
	v := width.SafelyPromote(x)
	if w > 2 && v < (uint64(1)<<uint(w-2)) {
		return Quarter
	}
	if w > 1 && v < (uint64(1)<<uint(w-1)) {
		return Half
	}
	return Full
}

// Context is a Montgomery context over an odd modulus n of width T,
// immutable once constructed: every hot-path operation only reads from it.
// Montgomery values are carried as plain uint64 regardless of T's native
// width; the context's own width (bits) determines R = 2^bits and governs
// how those uint64s are interpreted and masked.
type Context[T width.Unsigned] struct {
	n       uint64
	bits    int
	flavor  Flavor
	nInvNeg uint64 // -n^-1 mod 2^bits, REDC's reduction constant
	rSq     uint64 // R^2 mod n, needed to convert values into Montgomery form
	one     uint64 // unity in Montgomery form
	negOne  uint64 // n-1 in Montgomery form
}

// NewContext builds a Montgomery context over odd modulus n with the given
// flavor. It panics with ErrPrecondition if n is even, less than 3, or
// outside the flavor's required range -- construction-time validation
// matching the teacher's own parameter-validation panics (e.g.
// ckks/bootstrapping/frontend_parameters.go's MakeFrontendParameters).
func NewContext[T width.Unsigned](n T, flavor Flavor) *Context[T] {
	w := width.Bits[T]()
	nv := width.SafelyPromote(n)

	if nv&1 == 0 || nv < 3 {
		panic(ErrPrecondition)
	}
	switch flavor {
	case Quarter:
		if w <= 2 || nv >= (uint64(1)<<uint(w-2)) {
			panic(ErrPrecondition)
		}
	case Half:
		if w <= 1 || nv >= (uint64(1)<<uint(w-1)) {
			panic(ErrPrecondition)
		}
	}

	nInv := inverseModR(nv, w)
	nInvNeg := negate(nInv, w)

	bigN := new(big.Int).SetUint64(nv)
	bigR := new(big.Int).Lsh(big.NewInt(1), uint(w))
	rSq := new(big.Int).Mod(new(big.Int).Mul(bigR, bigR), bigN).Uint64()

	c := &Context[T]{n: nv, bits: w, flavor: flavor, nInvNeg: nInvNeg, rSq: rSq}
	c.one = c.ConvertIn(1)
	c.negOne = c.ConvertIn(nv - 1)
	return c
}

// redc implements Montgomery reduction of the 2*bits-wide product (hi, lo)
// back to a value less than n (Full/Half) or less than 2n (Quarter, via the
// caller skipping the final conditional subtraction where it is safe to).
func (c *Context[T]) redc(hi, lo uint64) uint64 {
	w := uint(c.bits)
	mask := width.Mask[T]()
	tModR := lo & mask

	m := (tModR * c.nInvNeg) & mask
	mnHi, mnLo := bits.Mul64(m, c.n)

	sumLo, carry := bits.Add64(lo, mnLo, 0)
	sumHi, carryOut := bits.Add64(hi, mnHi, carry)
	if carryOut != 0 {
		// Only possible for bits == 64 with n >= 2^63: the reduced value is
		// 2^64 + sumHi, which lies in [n, 2n), so subtracting n (mod 2^64)
		// brings it into [0, n).
		return sumHi - c.n
	}

	return shr128(sumHi, sumLo, w)
}

func shr128(hi, lo uint64, w uint) uint64 {
	if w == 0 {
		return lo
	}
	if w >= 64 {
		return hi >> (w - 64)
	}
	return (hi << (64 - w)) | (lo >> w)
}

// ConvertIn returns a*R mod n as a Montgomery value.
func (c *Context[T]) ConvertIn(a uint64) uint64 {
	hi, lo := bits.Mul64(a%c.n, c.rSq)
	r := c.redc(hi, lo)
	if c.flavor != Quarter && r >= c.n {
		r -= c.n
	}
	return r
}

// ConvertOut returns the canonical integer in [0, n) that v represents.
func (c *Context[T]) ConvertOut(v uint64) uint64 {
	return c.Canonicalize(c.redc(0, v))
}

// Unity returns the Montgomery representation of 1.
func (c *Context[T]) Unity() uint64 { return c.one }

// NegOne returns the Montgomery representation of n-1.
func (c *Context[T]) NegOne() uint64 { return c.negOne }

// Zero returns the Montgomery representation of 0 (0 in any form).
func (c *Context[T]) Zero() uint64 { return 0 }

// Modulus returns the odd modulus n this context was built over.
func (c *Context[T]) Modulus() uint64 { return c.n }

// Add returns v1+v2 in the same flavor range as its arguments.
func (c *Context[T]) Add(v1, v2 uint64) uint64 {
	r := v1 + v2
	bound := c.n
	if c.flavor == Quarter {
		bound = 2 * c.n
	}
	if r >= bound || r < v1 { // r < v1: the sum wrapped past 2^64
		r -= bound
	}
	return r
}

// Sub returns v1-v2 in the same flavor range as its arguments.
func (c *Context[T]) Sub(v1, v2 uint64) uint64 {
	bound := c.n
	if c.flavor == Quarter {
		bound = 2 * c.n
	}
	if v1 < v2 {
		return v1 + bound - v2
	}
	return v1 - v2
}

// Mul returns v1*v2 reduced back into the context's flavor range.
func (c *Context[T]) Mul(v1, v2 uint64) uint64 {
	hi, lo := bits.Mul64(v1, v2)
	r := c.redc(hi, lo)
	if c.flavor != Quarter && r >= c.n {
		r -= c.n
	}
	return r
}

// Square is Mul(v, v).
func (c *Context[T]) Square(v uint64) uint64 {
	return c.Mul(v, v)
}

// Pow returns v^e in Montgomery form, using right-to-left
// square-and-multiply (e is scanned from its lowest bit up), after the
// teacher's ring.ModexpMontgomery, generalized from a fixed uint64 modulus
// to this context's width.
func (c *Context[T]) Pow(v uint64, e uint64) uint64 {
	result := c.one
	for i := e; i > 0; i >>= 1 {
		if i&1 == 1 {
			result = c.Mul(result, v)
		}
		v = c.Square(v)
	}
	return result
}

// Canonicalize returns the unique representative of v in [0, n), reducing
// Quarter's lazily-held [0, 2n) range down if needed.
func (c *Context[T]) Canonicalize(v uint64) uint64 {
	if v >= c.n {
		return v - c.n
	}
	return v
}

// EqualsCanonical reports whether a and b represent the same residue.
func (c *Context[T]) EqualsCanonical(a, b uint64) bool {
	return c.Canonicalize(a) == c.Canonicalize(b)
}
