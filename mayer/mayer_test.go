package mayer_test

import (
	"testing"

	"github.com/hurchalla/go-factoring/mayer"
	"github.com/stretchr/testify/require"
)

func TestNewDivisorPanicsOnEven(t *testing.T) {
	require.PanicsWithValue(t, mayer.ErrPrecondition, func() { mayer.NewDivisor(4) })
}

func TestNewDivisorU64PanicsOnEven(t *testing.T) {
	require.PanicsWithValue(t, mayer.ErrPrecondition, func() { mayer.NewDivisorU64(4) })
}

func TestDividesRoundTrip(t *testing.T) {
	dv := mayer.NewDivisor(7)
	for _, x := range []uint64{0, 1, 6, 7, 14, 49, 999999937, 18446744073709551611} {
		quotient, divides := mayer.Divides(dv, x)
		require.Equal(t, x%7 == 0, divides)
		if divides {
			require.Equal(t, x, quotient*7)
		}
	}
}

func TestDividesU64RoundTrip(t *testing.T) {
	dv := mayer.NewDivisorU64(13)
	for _, x := range []uint64{0, 1, 12, 13, 26, 169, 999999937, 18446744073709551611} {
		quotient, divides := dv.DividesU64(x)
		require.Equal(t, x%13 == 0, divides)
		if divides {
			require.Equal(t, x, quotient*13)
		}
	}
}

func TestDividesAndDividesU64Agree(t *testing.T) {
	// NewDivisorU64 skips the inverse-mod-R setup, but for any given odd d
	// it must classify every x identically to NewDivisor's Divides path.
	d := uint64(998244353)
	viaDivides := mayer.NewDivisor(d)
	viaU64 := mayer.NewDivisorU64(d)
	for _, x := range []uint64{0, 1, d - 1, d, d + 1, d * 3, 18446744073709551557} {
		q1, ok1 := mayer.Divides(viaDivides, x)
		q2, ok2 := viaU64.DividesU64(x)
		require.Equal(t, ok1, ok2)
		if ok1 {
			require.Equal(t, q1, q2)
		}
	}
}

func TestDReturnsConstructedDivisor(t *testing.T) {
	require.Equal(t, uint64(101), mayer.NewDivisor(101).D())
	require.Equal(t, uint64(101), mayer.NewDivisorU64(101).D())
}
