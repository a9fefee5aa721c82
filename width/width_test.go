package width_test

import (
	"testing"

	"github.com/hurchalla/go-factoring/width"
	"github.com/stretchr/testify/require"
)

func TestBitsAndMax(t *testing.T) {
	t.Run("W8", func(t *testing.T) { testBitsAndMax[uint8](t, 8) })
	t.Run("W16", func(t *testing.T) { testBitsAndMax[uint16](t, 16) })
	t.Run("W32", func(t *testing.T) { testBitsAndMax[uint32](t, 32) })
	t.Run("W64", func(t *testing.T) { testBitsAndMax[uint64](t, 64) })
}

func testBitsAndMax[T width.Unsigned](t *testing.T, wantBits int) {
	require.Equal(t, wantBits, width.Bits[T]())
	wantMax := uint64(1)<<uint(wantBits) - 1
	if wantBits == 64 {
		wantMax = ^uint64(0)
	}
	require.Equal(t, wantMax, width.SafelyPromote(width.Max[T]()))
	require.Equal(t, wantMax, width.Mask[T]())
}

func TestNarrowRoundTrip(t *testing.T) {
	require.Equal(t, uint32(0xdeadbeef), width.Narrow[uint32](width.SafelyPromote[uint32](0xdeadbeef)))
}
