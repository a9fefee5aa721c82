package factor_test

import (
	"testing"

	"github.com/hurchalla/go-factoring/factor"
	"github.com/hurchalla/go-factoring/u128"
	"github.com/stretchr/testify/require"
)

func TestFactorizeToSliceRejectsLessThanTwo(t *testing.T) {
	_, err := factor.FactorizeToSlice[uint64](1)
	require.ErrorIs(t, err, factor.ErrPrecondition)
	_, err = factor.FactorizeToSlice[uint64](0)
	require.ErrorIs(t, err, factor.ErrPrecondition)
}

func TestFactorizeSmallComposite(t *testing.T) {
	factors, err := factor.FactorizeToSlice[uint32](2 * 3 * 5 * 13 * 17)
	require.NoError(t, err)
	require.ElementsMatch(t, []uint32{2, 3, 5, 13, 17}, factors)
}

func TestFactorizeSquareOfPrime(t *testing.T) {
	factors, err := factor.FactorizeToSlice[uint32](32771 * 32771)
	require.NoError(t, err)
	require.ElementsMatch(t, []uint32{32771, 32771}, factors)
}

func TestFactorizeProductOfTwoLargePrimes(t *testing.T) {
	a := uint64(4294967279) // 2^32 - 17
	b := uint64(4294967291) // 2^32 - 5
	factors, err := factor.FactorizeToSlice[uint64](a * b)
	require.NoError(t, err)
	require.ElementsMatch(t, []uint64{a, b}, factors)
}

func TestFactorize322(t *testing.T) {
	factors, err := factor.FactorizeToSlice[uint32](322)
	require.NoError(t, err)
	require.ElementsMatch(t, []uint32{2, 7, 23}, factors)
}

func TestFactorizeRepeatedSmallPrimesAndLargerPrimes(t *testing.T) {
	// 2*2*2*43*59*59*113 = 135313432, the repeated-factor scenario from
	// the spec's end-to-end table.
	factors, err := factor.FactorizeToSlice[uint32](135313432)
	require.NoError(t, err)
	require.ElementsMatch(t, []uint32{2, 2, 2, 43, 59, 59, 113}, factors)
}

func TestFactorizeToSequenceMatchesSlice(t *testing.T) {
	var seq []uint32
	err := factor.FactorizeToSequence[uint32](2*2*3*3*3, func(p uint32) { seq = append(seq, p) })
	require.NoError(t, err)
	require.ElementsMatch(t, []uint32{2, 2, 3, 3, 3}, seq)
}

func TestIsPrimeSpotChecks(t *testing.T) {
	require.True(t, factor.IsPrime[uint64](104729))
	require.False(t, factor.IsPrime[uint64](104730))
}

func TestFactorizeU128TenFactorProduct(t *testing.T) {
	primes := []uint64{2, 3, 5, 7, 11, 13, 17, 19, 23, 29}
	x := u128.From64(1)
	for _, p := range primes {
		prod := u128.Mul(x, u128.From64(p))
		x = u128.Uint128{Hi: prod.W1, Lo: prod.W0}
	}
	factors, err := factor.FactorizeToSliceU128(x)
	require.NoError(t, err)
	require.Len(t, factors, len(primes))
	var got []uint64
	for _, f := range factors {
		require.Zero(t, f.Hi)
		got = append(got, f.Lo)
	}
	require.ElementsMatch(t, primes, got)
}

func TestFactorizeU128RejectsLessThanTwo(t *testing.T) {
	_, err := factor.FactorizeToSliceU128(u128.From64(1))
	require.ErrorIs(t, err, factor.ErrPrecondition)
}

func TestFactorizeU128OfTwo64BitPrimes(t *testing.T) {
	a := uint64(1<<63)*2 - 59 // prime
	b := uint64(4294967291)   // 2^32 - 5, prime
	prod := u128.Mul(u128.From64(a), u128.From64(b))
	x := u128.Uint128{Hi: prod.W1, Lo: prod.W0}
	factors, err := factor.FactorizeToSliceU128(x)
	require.NoError(t, err)
	require.Len(t, factors, 2)
}

func TestIsPrimeU128(t *testing.T) {
	require.True(t, factor.IsPrimeU128(u128.From64(104729)))
	require.False(t, factor.IsPrimeU128(u128.From64(104730)))
}

func TestFactorizeU128SpecScenario(t *testing.T) {
	// 2*2*3*5*13*17*101*131*157*157, the 128-bit scenario from the spec's
	// end-to-end table.
	primes := []uint64{2, 2, 3, 5, 13, 17, 101, 131, 157, 157}
	x := u128.From64(1)
	for _, p := range primes {
		prod := u128.Mul(x, u128.From64(p))
		x = u128.Uint128{Hi: prod.W1, Lo: prod.W0}
	}
	factors, err := factor.FactorizeToSliceU128(x)
	require.NoError(t, err)
	require.Len(t, factors, len(primes))
	var got []uint64
	for _, f := range factors {
		require.Zero(t, f.Hi)
		got = append(got, f.Lo)
	}
	require.ElementsMatch(t, primes, got)
}
