package millerrabin_test

import (
	"testing"

	"github.com/hurchalla/go-factoring/millerrabin"
	"github.com/hurchalla/go-factoring/u128"
	"github.com/stretchr/testify/require"
)

func TestPrimeSpotChecks(t *testing.T) {
	require.True(t, millerrabin.Prime[uint64](127))
	require.False(t, millerrabin.Prime[uint64](141))
	require.True(t, millerrabin.Prime[uint64](2))
	require.True(t, millerrabin.Prime[uint64](3))
	require.False(t, millerrabin.Prime[uint64](1))
	require.False(t, millerrabin.Prime[uint64](0))
	require.False(t, millerrabin.Prime[uint64](4))
	require.True(t, millerrabin.Prime[uint32](65521))  // largest prime < 2^16
	require.False(t, millerrabin.Prime[uint32](65533))
}

func TestPrimeAcrossWidths(t *testing.T) {
	require.True(t, millerrabin.Prime[uint8](251))
	require.False(t, millerrabin.Prime[uint8](249))
	require.True(t, millerrabin.Prime[uint16](65521))
	require.True(t, millerrabin.Prime[uint32](4294967291))
}

func Test64BitBoundaryValues(t *testing.T) {
	// 2^64 - 59 is prime; 2^64 - 57 is composite.
	p := uint64(1<<63)*2 - 59
	c := uint64(1<<63)*2 - 57
	require.True(t, millerrabin.Prime[uint64](p))
	require.False(t, millerrabin.Prime[uint64](c))
}

func TestPrimeU128(t *testing.T) {
	small := u128.From64(127)
	require.True(t, millerrabin.PrimeU128(small))

	composite := u128.From64(141)
	require.False(t, millerrabin.PrimeU128(composite))

	// A prime requiring the full 128-bit path: 2^64 - 59, promoted.
	p64 := u128.From64(uint64(1)<<63*2 - 59)
	require.True(t, millerrabin.PrimeU128(p64))

	// Hi != 0 case: 2^64 is even, so it is composite.
	big := u128.Uint128{Hi: 1, Lo: 0}
	require.False(t, millerrabin.PrimeU128(big)) // even
}

func TestPrimeIsDeterministic(t *testing.T) {
	for _, n := range []uint64{97, 7919, 104729, 982451653} {
		first := millerrabin.Prime[uint64](n)
		for i := 0; i < 5; i++ {
			require.Equal(t, first, millerrabin.Prime[uint64](n))
		}
	}
}

func TestWitnessSetTierSelection(t *testing.T) {
	require.Len(t, millerrabin.WitnessSet(1<<20), 3)
	require.Len(t, millerrabin.WitnessSet(1<<40), 7)
	require.Len(t, millerrabin.WitnessSet(1<<60), 7)
}
