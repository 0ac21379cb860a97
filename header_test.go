package scsarchive

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"
)

func buildV2HeaderBytes(t *testing.T, version uint16, hashMethod string) []byte {
	t.Helper()
	buf := make([]byte, v2HeaderSize)
	copy(buf[0:4], magicSCS)
	binary.LittleEndian.PutUint16(buf[4:6], version)
	binary.LittleEndian.PutUint16(buf[6:8], 0x1234)
	copy(buf[8:12], hashMethod)
	binary.LittleEndian.PutUint32(buf[12:16], 7)
	binary.LittleEndian.PutUint32(buf[16:20], 100)
	binary.LittleEndian.PutUint64(buf[20:28], 53)
	binary.LittleEndian.PutUint32(buf[28:32], 200)
	binary.LittleEndian.PutUint32(buf[32:36], 150)
	binary.LittleEndian.PutUint64(buf[36:44], 300)
	binary.LittleEndian.PutUint64(buf[44:52], 1000)
	buf[52] = 1
	return buf
}

func TestParseV2HeaderRoundTrip(t *testing.T) {
	buf := buildV2HeaderBytes(t, 2, hashMethodCity)
	h, err := parseV2Header(buf)
	require.NoError(t, err)
	require.Equal(t, magicSCS, string(h.Magic[:]))
	require.EqualValues(t, 2, h.Version)
	require.EqualValues(t, 0x1234, h.Salt)
	require.EqualValues(t, 7, h.EntryCount)
	require.EqualValues(t, 53, h.EntryTableOffset)
	require.EqualValues(t, 300, h.MetadataTableOffset)
	require.EqualValues(t, 1000, h.SecurityDescriptorOffset)
	require.EqualValues(t, 1, h.Platform)
	require.True(t, isValidV2Header(h))
}

func TestParseV2HeaderShortRead(t *testing.T) {
	_, err := parseV2Header(make([]byte, v2HeaderSize-1))
	require.ErrorIs(t, err, ErrShortRead)
}

func TestIsValidV2HeaderRejectsWrongVersionOrHash(t *testing.T) {
	wrongVersion, err := parseV2Header(buildV2HeaderBytes(t, 1, hashMethodCity))
	require.NoError(t, err)
	require.False(t, isValidV2Header(wrongVersion), "expected version 1 header to be rejected by the V2 validator")

	wrongHash, err := parseV2Header(buildV2HeaderBytes(t, 2, "XX64"))
	require.NoError(t, err)
	require.False(t, isValidV2Header(wrongHash), "expected a non-CITY hash method to be rejected")
}
