package factortable_test

import (
	"path/filepath"
	"testing"

	"github.com/hurchalla/go-factoring/factor"
	"github.com/hurchalla/go-factoring/factortable"
	"github.com/stretchr/testify/require"
)

func buildSmallTable(t *testing.T, bitLimit int, small bool) *factortable.Table {
	t.Helper()
	table, err := factortable.Build(bitLimit, small)
	require.NoError(t, err)
	return table
}

func TestFactorMatchesRecursiveFactorizer(t *testing.T) {
	const bitLimit = 20
	table := buildSmallTable(t, bitLimit, true)

	for _, x := range []uint32{2, 3, 17, 322, 6630, 1<<19 + 123, (1 << 20) - 1} {
		var got []uint32
		err := table.Factor(x, func(p uint32) { got = append(got, p) })
		require.NoError(t, err)

		want, err := factor.FactorizeToSlice[uint32](x)
		require.NoError(t, err)
		require.ElementsMatch(t, want, got, "mismatch factoring %d", x)
	}
}

func TestFactorAgreesAcrossSmallAndWideModes(t *testing.T) {
	const bitLimit = 18
	small := buildSmallTable(t, bitLimit, true)
	wide := buildSmallTable(t, bitLimit, false)

	for x := uint32(2); x < 2000; x++ {
		var gotSmall, gotWide []uint32
		require.NoError(t, small.Factor(x, func(p uint32) { gotSmall = append(gotSmall, p) }))
		require.NoError(t, wide.Factor(x, func(p uint32) { gotWide = append(gotWide, p) }))
		require.ElementsMatch(t, gotSmall, gotWide, "mismatch at x=%d", x)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	const bitLimit = 18
	table := buildSmallTable(t, bitLimit, true)

	path := filepath.Join(t.TempDir(), "table.bin")
	require.NoError(t, table.Save(path))

	loaded, err := factortable.Load(path, bitLimit, true)
	require.NoError(t, err)

	var want, got []uint32
	require.NoError(t, table.Factor(322, func(p uint32) { want = append(want, p) }))
	require.NoError(t, loaded.Factor(322, func(p uint32) { got = append(got, p) }))
	require.ElementsMatch(t, want, got)
}

func TestLoadRejectsMismatchedConfiguration(t *testing.T) {
	const bitLimit = 18
	table := buildSmallTable(t, bitLimit, true)
	path := filepath.Join(t.TempDir(), "table.bin")
	require.NoError(t, table.Save(path))

	_, err := factortable.Load(path, bitLimit, false)
	require.ErrorIs(t, err, factortable.ErrFormatMismatch)

	_, err = factortable.Load(path, bitLimit+1, true)
	require.ErrorIs(t, err, factortable.ErrFormatMismatch)
}

func TestLoadMissingFileFails(t *testing.T) {
	_, err := factortable.Load(filepath.Join(t.TempDir(), "missing.bin"), 18, true)
	require.ErrorIs(t, err, factortable.ErrFileOpen)
}
