package u128_test

import (
	"math/big"
	"testing"

	"github.com/hurchalla/go-factoring/u128"
	"github.com/stretchr/testify/require"
)

func toBig(v u128.Uint128) *big.Int {
	b := new(big.Int).Lsh(new(big.Int).SetUint64(v.Hi), 64)
	return b.Or(b, new(big.Int).SetUint64(v.Lo))
}

func toBig256(v u128.Uint256) *big.Int {
	b := new(big.Int).SetUint64(v.W3)
	b.Lsh(b, 64)
	b.Or(b, new(big.Int).SetUint64(v.W2))
	b.Lsh(b, 64)
	b.Or(b, new(big.Int).SetUint64(v.W1))
	b.Lsh(b, 64)
	b.Or(b, new(big.Int).SetUint64(v.W0))
	return b
}

func TestMulAgainstBigInt(t *testing.T) {
	cases := []u128.Uint128{
		{Hi: 0, Lo: 0},
		{Hi: 0, Lo: 1},
		{Hi: 0, Lo: 0xffffffffffffffff},
		{Hi: 0xffffffffffffffff, Lo: 0xffffffffffffffff},
		{Hi: 0x1, Lo: 0x123456789abcdef0},
		{Hi: 0xdeadbeefcafef00d, Lo: 0x0123456789abcdef},
	}
	for _, a := range cases {
		for _, b := range cases {
			got := toBig256(u128.Mul(a, b))
			want := new(big.Int).Mul(toBig(a), toBig(b))
			require.Equal(t, want, got, "mul(%v,%v)", a, b)
		}
	}
}

func TestAddSubMod(t *testing.T) {
	n := u128.Uint128{Hi: 0xffffffffffffffff, Lo: 0xfffffffffffffff1}
	a := u128.Uint128{Hi: 0, Lo: 12345}
	b := u128.Uint128{Hi: 0, Lo: 99999}

	sum := u128.AddMod(a, b, n)
	require.Equal(t, new(big.Int).Mod(new(big.Int).Add(toBig(a), toBig(b)), toBig(n)), toBig(sum))

	diff := u128.SubMod(a, b, n)
	want := new(big.Int).Mod(new(big.Int).Sub(toBig(a), toBig(b)), toBig(n))
	require.Equal(t, want, toBig(diff))
}

func TestShifts(t *testing.T) {
	v := u128.Uint128{Hi: 0x1, Lo: 0x8000000000000000}
	require.Equal(t, uint(65), uint(u128.BitLen(v)))
	got := toBig(u128.Lsh(v, 1))
	want := new(big.Int).Mod(new(big.Int).Lsh(toBig(v), 1), new(big.Int).Lsh(big.NewInt(1), 128))
	require.Equal(t, want, got)

	gotR := toBig(u128.Rsh(v, 65))
	wantR := new(big.Int).Rsh(toBig(v), 65)
	require.Equal(t, wantR, gotR)
}

func TestDivSmall(t *testing.T) {
	v := u128.Uint128{Hi: 0x1234, Lo: 0x5678}
	d := uint64(97)
	q, r := u128.DivSmall(v, d)
	want := new(big.Int).Quo(toBig(v), new(big.Int).SetUint64(d))
	wantR := new(big.Int).Mod(toBig(v), new(big.Int).SetUint64(d))
	require.Equal(t, want, toBig(q))
	require.Equal(t, wantR.Uint64(), r)
}

func TestCmp(t *testing.T) {
	require.Equal(t, 0, u128.Uint128{Hi: 1, Lo: 2}.Cmp(u128.Uint128{Hi: 1, Lo: 2}))
	require.Equal(t, -1, u128.Uint128{Hi: 1, Lo: 2}.Cmp(u128.Uint128{Hi: 1, Lo: 3}))
	require.Equal(t, 1, u128.Uint128{Hi: 2, Lo: 0}.Cmp(u128.Uint128{Hi: 1, Lo: 0xffffffffffffffff}))
}
