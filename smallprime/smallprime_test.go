package smallprime_test

import (
	"testing"

	"github.com/hurchalla/go-factoring/smallprime"
	"github.com/stretchr/testify/require"
)

func TestOddPrimesAreSequential(t *testing.T) {
	require.Equal(t, uint64(3), smallprime.OddPrimes[0])
	require.Equal(t, uint64(5), smallprime.OddPrimes[1])
	require.Equal(t, uint64(7), smallprime.OddPrimes[2])
	for i := 1; i < smallprime.Size; i++ {
		require.Greater(t, smallprime.OddPrimes[i], smallprime.OddPrimes[i-1])
	}
	require.Greater(t, smallprime.Boundary, smallprime.OddPrimes[smallprime.Size-1])
}

func TestDivideFullyPeels(t *testing.T) {
	var got []uint64
	q, _ := smallprime.Divide(2*2*2*3*5*5*41, func(p uint64) { got = append(got, p) })
	require.Equal(t, uint64(1), q)
	require.ElementsMatch(t, []uint64{2, 2, 2, 3, 5, 5, 41}, got)
}

func TestDivideLeavesLargeCofactor(t *testing.T) {
	bigPrime := uint64(999999937) // prime, above Boundary^2
	var got []uint64
	q, boundary := smallprime.Divide(bigPrime, func(p uint64) { got = append(got, p) })
	require.Empty(t, got)
	require.Equal(t, bigPrime, q)
	require.Greater(t, q, boundary*boundary)
}

func TestDivideProductDividesInput(t *testing.T) {
	x := uint64(2 * 3 * 3 * 7 * 11 * 13 * 17 * 19)
	var product uint64 = 1
	q, _ := smallprime.Divide(x, func(p uint64) { product *= p })
	require.Equal(t, x, product*q)
}
