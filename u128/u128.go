// Package u128 implements the minimal unsigned 128-bit arithmetic the
// factoring engine's 128-bit width needs: Go has no native type wide enough
// to hold either the operands or their double-width (256-bit) products, so
// this package plays the role for W=128 that a single bits.Mul64 call plays
// for W=64 in package montgomery.
package u128

import "math/bits"

// Uint128 is an unsigned 128-bit integer, stored as two 64-bit limbs.
type Uint128 struct {
	Hi, Lo uint64
}

// Uint256 is the double-width product of two Uint128 values, stored as
// four 64-bit limbs, most significant first.
type Uint256 struct {
	W3, W2, W1, W0 uint64
}

// From64 promotes a uint64 to Uint128.
func From64(v uint64) Uint128 { return Uint128{Lo: v} }

// IsZero reports whether v is zero.
func (v Uint128) IsZero() bool { return v.Hi == 0 && v.Lo == 0 }

// Cmp returns -1, 0 or +1 as v is less than, equal to, or greater than w.
func (v Uint128) Cmp(w Uint128) int {
	if v.Hi != w.Hi {
		if v.Hi < w.Hi {
			return -1
		}
		return 1
	}
	if v.Lo != w.Lo {
		if v.Lo < w.Lo {
			return -1
		}
		return 1
	}
	return 0
}

// Add returns v+w mod 2^128.
func Add(v, w Uint128) Uint128 {
	lo, carry := bits.Add64(v.Lo, w.Lo, 0)
	hi, _ := bits.Add64(v.Hi, w.Hi, carry)
	return Uint128{Hi: hi, Lo: lo}
}

// Sub returns v-w mod 2^128.
func Sub(v, w Uint128) Uint128 {
	lo, borrow := bits.Sub64(v.Lo, w.Lo, 0)
	hi, _ := bits.Sub64(v.Hi, w.Hi, borrow)
	return Uint128{Hi: hi, Lo: lo}
}

// AddMod returns (v+w) mod n, where v, w < n.
func AddMod(v, w, n Uint128) Uint128 {
	s := Add(v, w)
	// s can overflow 128 bits exactly when v+w >= 2^128; detect that via
	// unsigned wraparound of the low limb addition carrying out of Hi.
	overflow := s.Cmp(v) < 0
	if overflow || s.Cmp(n) >= 0 {
		s = Sub(s, n)
	}
	return s
}

// SubMod returns (v-w) mod n, where v, w < n.
func SubMod(v, w, n Uint128) Uint128 {
	if v.Cmp(w) >= 0 {
		return Sub(v, w)
	}
	return Sub(Add(v, n), w)
}

// Mul returns the full 256-bit product v*w.
func Mul(v, w Uint128) Uint256 {
	// Schoolbook multiplication of two 2-limb numbers: four 64x64->128
	// partial products, each placed at its limb offset and summed with
	// carry propagation.
	hh, hl := bits.Mul64(v.Hi, w.Hi) // offset 128
	lh, ll := bits.Mul64(v.Lo, w.Lo) // offset 0
	hllh, hllo := bits.Mul64(v.Hi, w.Lo) // offset 64
	lhlh, lhlo := bits.Mul64(v.Lo, w.Hi) // offset 64

	var c1, c2 uint64

	w1, carry := bits.Add64(lh, hllo, 0)
	c1 += carry
	w1, carry = bits.Add64(w1, lhlo, 0)
	c1 += carry

	w2, carry := bits.Add64(hl, hllh, 0)
	c2 += carry
	w2, carry = bits.Add64(w2, lhlh, 0)
	c2 += carry
	w2, carry = bits.Add64(w2, c1, 0)
	c2 += carry

	w3 := hh + c2

	return Uint256{W3: w3, W2: w2, W1: w1, W0: ll}
}

// Lsh returns v << n for 0 <= n < 128.
func Lsh(v Uint128, n uint) Uint128 {
	if n == 0 {
		return v
	}
	if n >= 128 {
		return Uint128{}
	}
	if n >= 64 {
		return Uint128{Hi: v.Lo << (n - 64)}
	}
	return Uint128{Hi: (v.Hi << n) | (v.Lo >> (64 - n)), Lo: v.Lo << n}
}

// Rsh returns v >> n for 0 <= n < 128.
func Rsh(v Uint128, n uint) Uint128 {
	if n == 0 {
		return v
	}
	if n >= 128 {
		return Uint128{}
	}
	if n >= 64 {
		return Uint128{Lo: v.Hi >> (n - 64)}
	}
	return Uint128{Hi: v.Hi >> n, Lo: (v.Lo >> n) | (v.Hi << (64 - n))}
}

// And returns the bitwise AND of v and w.
func And(v, w Uint128) Uint128 { return Uint128{Hi: v.Hi & w.Hi, Lo: v.Lo & w.Lo} }

// Or returns the bitwise OR of v and w.
func Or(v, w Uint128) Uint128 { return Uint128{Hi: v.Hi | w.Hi, Lo: v.Lo | w.Lo} }

// BitLen returns the number of bits required to represent v (0 for v==0).
func BitLen(v Uint128) int {
	if v.Hi != 0 {
		return 64 + bits.Len64(v.Hi)
	}
	return bits.Len64(v.Lo)
}

// IsEven reports whether v is even.
func (v Uint128) IsEven() bool { return v.Lo&1 == 0 }

// GCD returns the greatest common divisor of a and b via the binary
// (Stein's) algorithm: repeated halving of even operands and subtraction
// of the smaller from the larger. Package pollardrho's uint64 gcd uses the
// Euclidean remainder loop instead; 128-bit values have no single machine
// instruction for that remainder step.
func GCD(a, b Uint128) Uint128 {
	if a.IsZero() {
		return b
	}
	if b.IsZero() {
		return a
	}
	shift := uint(0)
	for a.IsEven() && b.IsEven() {
		a = Rsh(a, 1)
		b = Rsh(b, 1)
		shift++
	}
	for a.IsEven() {
		a = Rsh(a, 1)
	}
	for !b.IsZero() {
		for b.IsEven() {
			b = Rsh(b, 1)
		}
		if a.Cmp(b) > 0 {
			a, b = b, a
		}
		b = Sub(b, a)
	}
	return Lsh(a, shift)
}

// DivSmall divides v by a uint64 divisor d (0 < d < 2^64) using long
// division limb by limb, returning quotient and remainder. Used by the
// wheel-210 fallback's 128-bit sweep, by package factor's 128-bit
// small-prime trial division while the dividend does not fit one machine
// word (so package mayer's native-word test does not apply), and by
// package factor's cofactor division when the divisor fits a uint64.
func DivSmall(v Uint128, d uint64) (q Uint128, r uint64) {
	hiQ := v.Hi / d
	hiR := v.Hi % d
	// bits.Div64 requires the high word of the dividend be < d; hiR < d by
	// construction, so this never panics with ErrDivide.
	loQ, loR := bits.Div64(hiR, v.Lo, d)
	return Uint128{Hi: hiQ, Lo: loQ}, loR
}
