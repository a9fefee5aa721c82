package montgomery

import (
	"math/big"

	"github.com/hurchalla/go-factoring/u128"
)

// Context128 is the 128-bit-width counterpart of Context[T]. Go has no
// native 128-bit integer to satisfy width.Unsigned, so the REDC machinery
// here is duplicated rather than generic, operating on u128.Uint128 values
// and u128.Uint256 intermediates the same way Context[T] operates on
// uint64 values and (hi, lo) uint64 intermediates. The algorithm -- REDC
// via a negated inverse mod R, masked to the modulus's own range -- is
// identical; only the limb count differs.
type Context128 struct {
	n       u128.Uint128
	flavor  Flavor
	nInvNeg u128.Uint128
	rSq     u128.Uint128
	one     u128.Uint128
	negOne  u128.Uint128
}

// PickFlavor128 is the 128-bit counterpart of PickFlavor: given a value n
// about to be factored, choose the tightest flavor valid for it.
func PickFlavor128(n u128.Uint128) Flavor {
	bl := u128.BitLen(n)
	if bl <= 126 {
		return Quarter
	}
	if bl <= 127 {
		return Half
	}
	return Full
}

// NewContext128 builds a 128-bit Montgomery context over odd modulus n with
// the given flavor, panicking with ErrPrecondition on the same violations
// Context[T]'s constructor checks for.
func NewContext128(n u128.Uint128, flavor Flavor) *Context128 {
	if n.IsEven() || (n.Hi == 0 && n.Lo < 3) {
		panic(ErrPrecondition)
	}
	switch flavor {
	case Quarter:
		if u128.BitLen(n) > 126 {
			panic(ErrPrecondition)
		}
	case Half:
		if u128.BitLen(n) > 127 {
			panic(ErrPrecondition)
		}
	}

	nInv := inverseModR128(n)
	nInvNeg := u128.Sub(u128.Uint128{}, nInv) // -nInv mod 2^128, wraps naturally

	bigN := u128ToBig(n)
	bigR := new(big.Int).Lsh(big.NewInt(1), 128)
	rSq := bigToU128(new(big.Int).Mod(new(big.Int).Mul(bigR, bigR), bigN))

	c := &Context128{n: n, flavor: flavor, nInvNeg: nInvNeg, rSq: rSq}
	c.one = c.ConvertIn(u128.From64(1))
	c.negOne = c.ConvertIn(u128.Sub(n, u128.From64(1)))
	return c
}

func u128ToBig(v u128.Uint128) *big.Int {
	b := new(big.Int).SetUint64(v.Hi)
	b.Lsh(b, 64)
	b.Or(b, new(big.Int).SetUint64(v.Lo))
	return b
}

func bigToU128(b *big.Int) u128.Uint128 {
	mask64 := new(big.Int).SetUint64(^uint64(0))
	lo := new(big.Int).And(b, mask64).Uint64()
	hi := new(big.Int).Rsh(b, 64).Uint64()
	return u128.Uint128{Hi: hi, Lo: lo}
}

// inverseModR128 returns n^-1 mod 2^128 for odd n, via Newton's method over
// Uint128 arithmetic -- the 128-bit analogue of montgomery.inverseModR.
func inverseModR128(n u128.Uint128) u128.Uint128 {
	inv := n
	for bitsCorrect := 3; bitsCorrect < 128; bitsCorrect *= 2 {
		// inv = inv * (2 - n*inv), all mod 2^128 (i.e. truncated to the
		// low 128 bits of the 256-bit product, which u128.Mul's low two
		// limbs already are).
		prod := u128.Mul(n, inv)
		twoMinus := u128.Sub(u128.Uint128{Lo: 2}, u128.Uint128{Hi: prod.W1, Lo: prod.W0})
		next := u128.Mul(inv, twoMinus)
		inv = u128.Uint128{Hi: next.W1, Lo: next.W0}
	}
	return inv
}

func (c *Context128) redc(t u128.Uint256) u128.Uint128 {
	tModR := u128.Uint128{Hi: t.W1, Lo: t.W0}
	m := u128.Mul(tModR, c.nInvNeg)
	mLow := u128.Uint128{Hi: m.W1, Lo: m.W0}
	mn := u128.Mul(mLow, c.n)

	// sum = t + mn, a 256-bit add; only the high 128 bits (the result of
	// dividing by R = 2^128) are needed.
	lo0, carry0 := addCarry(t.W0, mn.W0)
	lo1, carry1 := addCarry2(t.W1, mn.W1, carry0)
	hi0, carry2 := addCarry2(t.W2, mn.W2, carry1)
	hi1, carry3 := addCarry2(t.W3, mn.W3, carry2)
	_ = lo0
	_ = lo1

	if carry3 != 0 {
		// Only possible for n >= 2^127: the reduced value is 2^128 plus the
		// kept limbs and lies in [n, 2n), so subtracting n (mod 2^128)
		// brings it into [0, n).
		return u128.Sub(u128.Uint128{Hi: hi1, Lo: hi0}, c.n)
	}
	return u128.Uint128{Hi: hi1, Lo: hi0}
}

func addCarry(a, b uint64) (sum, carry uint64) {
	sum = a + b
	if sum < a {
		carry = 1
	}
	return
}

func addCarry2(a, b, c uint64) (sum, carry uint64) {
	s1, c1 := addCarry(a, b)
	s2, c2 := addCarry(s1, c)
	return s2, c1 + c2
}

// ConvertIn returns a*R mod n as a Montgomery value.
func (c *Context128) ConvertIn(a u128.Uint128) u128.Uint128 {
	aModN := a
	if aModN.Cmp(c.n) >= 0 {
		_, r := u128DivMod(aModN, c.n)
		aModN = r
	}
	r := c.redc(u128.Mul(aModN, c.rSq))
	if c.flavor != Quarter && r.Cmp(c.n) >= 0 {
		r = u128.Sub(r, c.n)
	}
	return r
}

// ConvertOut returns the canonical integer in [0, n) that v represents.
func (c *Context128) ConvertOut(v u128.Uint128) u128.Uint128 {
	return c.Canonicalize(c.redc(u128.Uint256{W1: v.Hi, W0: v.Lo}))
}

// u128DivMod divides a by b using math/big; construction-time only (used
// for context setup and reducing an arbitrary input mod n), never on the
// hot 128-bit Pollard-Rho inner loop.
func u128DivMod(a, b u128.Uint128) (q, r u128.Uint128) {
	qb, rb := new(big.Int).QuoRem(u128ToBig(a), u128ToBig(b), new(big.Int))
	return bigToU128(qb), bigToU128(rb)
}

func (c *Context128) Unity() u128.Uint128  { return c.one }
func (c *Context128) NegOne() u128.Uint128 { return c.negOne }
func (c *Context128) Modulus() u128.Uint128 { return c.n }

func (c *Context128) Add(v1, v2 u128.Uint128) u128.Uint128 {
	bound := c.n
	if c.flavor == Quarter {
		bound = u128.Lsh(c.n, 1)
	}
	return u128.AddMod(v1, v2, bound)
}

func (c *Context128) Sub(v1, v2 u128.Uint128) u128.Uint128 {
	bound := c.n
	if c.flavor == Quarter {
		bound = u128.Lsh(c.n, 1)
	}
	return u128.SubMod(v1, v2, bound)
}

func (c *Context128) Mul(v1, v2 u128.Uint128) u128.Uint128 {
	r := c.redc(u128.Mul(v1, v2))
	if c.flavor != Quarter && r.Cmp(c.n) >= 0 {
		r = u128.Sub(r, c.n)
	}
	return r
}

func (c *Context128) Square(v u128.Uint128) u128.Uint128 { return c.Mul(v, v) }

func (c *Context128) Pow(v u128.Uint128, e u128.Uint128) u128.Uint128 {
	result := c.one
	for !e.IsZero() {
		if !e.IsEven() {
			result = c.Mul(result, v)
		}
		v = c.Square(v)
		e = u128.Rsh(e, 1)
	}
	return result
}

func (c *Context128) Canonicalize(v u128.Uint128) u128.Uint128 {
	if v.Cmp(c.n) >= 0 {
		return u128.Sub(v, c.n)
	}
	return v
}

func (c *Context128) EqualsCanonical(a, b u128.Uint128) bool {
	return c.Canonicalize(a).Cmp(c.Canonicalize(b)) == 0
}
