package scsarchive

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestKeyUnsaltedIsStable(t *testing.T) {
	a := Key("def/world/city.sii", 0)
	b := Key("def/world/city.sii", 0)
	require.Equal(t, a, b, "Key is not deterministic")
}

func TestKeyEmptyPath(t *testing.T) {
	require.Equal(t, k2, Key("", 0), "Key(\"\", 0) should be the empty-string CityHash64 seed")
}

func TestKeySaltChangesDigest(t *testing.T) {
	unsalted := Key("map/europe/sec+0001-0002.base", 0)
	salted := Key("map/europe/sec+0001-0002.base", 7)
	require.NotEqual(t, unsalted, salted, "salted and unsalted keys collided")
}

func TestKeyDifferentSaltsDiverge(t *testing.T) {
	const path = "locale/en_us/local.sii"
	seen := make(map[uint64]bool)
	for salt := uint16(0); salt < 8; salt++ {
		k := Key(path, salt)
		require.Falsef(t, seen[k], "salt %d produced a digest already seen for a different salt", salt)
		seen[k] = true
	}
}

func TestCityHash64LengthBuckets(t *testing.T) {
	// Exercise every length-dispatch branch in cityHash64 without
	// asserting specific digests (no test in this file pins one); here we
	// only assert the function never panics on boundary-length inputs and
	// is deterministic per input.
	lengths := []int{0, 1, 3, 4, 7, 8, 15, 16, 17, 31, 32, 33, 63, 64, 65, 127, 200}
	for _, n := range lengths {
		buf := make([]byte, n)
		for i := range buf {
			buf[i] = byte(i*7 + 1)
		}
		first := cityHash64(buf)
		second := cityHash64(buf)
		require.Equalf(t, first, second, "cityHash64 not deterministic for length %d", n)
	}
}
