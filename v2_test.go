package scsarchive

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// buildV2Container hand-assembles a minimal, fully valid V2 container: one
// directory ("def") holding one file ("def/world.sii"), both payloads
// stored uncompressed at 16-byte-aligned offsets.
func buildV2Container(t *testing.T) string {
	t.Helper()

	dirName := []byte("world.sii")
	dirPayload := make([]byte, 2+len(dirName))
	binary.LittleEndian.PutUint16(dirPayload[0:2], uint16(len(dirName)))
	copy(dirPayload[2:], dirName)

	filePayload := []byte("hello world")

	const headerSize = v2HeaderSize
	const entryTableSize = 2 * entryRecordSize
	const metaTableSize = 10 * 4

	entryTableOffset := uint64(headerSize)
	metaTableOffset := entryTableOffset + entryTableSize

	dirPayloadOffset := align16(metaTableOffset + metaTableSize)
	filePayloadOffset := align16(dirPayloadOffset + uint64(len(dirPayload)))

	totalSize := filePayloadOffset + uint64(len(filePayload))
	buf := make([]byte, totalSize)

	// Header.
	copy(buf[0:4], magicSCS)
	binary.LittleEndian.PutUint16(buf[4:6], 2)
	binary.LittleEndian.PutUint16(buf[6:8], 0) // salt
	copy(buf[8:12], hashMethodCity)
	binary.LittleEndian.PutUint32(buf[12:16], 2) // entry count
	binary.LittleEndian.PutUint32(buf[16:20], entryTableSize)
	binary.LittleEndian.PutUint64(buf[20:28], entryTableOffset)
	binary.LittleEndian.PutUint32(buf[28:32], metaTableSize)
	binary.LittleEndian.PutUint32(buf[32:36], metaTableSize)
	binary.LittleEndian.PutUint64(buf[36:44], metaTableOffset)
	binary.LittleEndian.PutUint64(buf[44:52], 0) // no security descriptor
	buf[52] = 1                                  // platform

	// Entry table.
	entryTable := buf[entryTableOffset : entryTableOffset+entryTableSize]
	putEntryRecord(entryTable[0:16], Key("def", 0), 0, 1, entryFlagIsDirectory)
	putEntryRecord(entryTable[16:32], Key("def/world.sii", 0), 1, 1, 0)

	// Metadata table: two headers, then their payload pointers.
	metaTable := buf[metaTableOffset : metaTableOffset+metaTableSize]
	binary.LittleEndian.PutUint32(metaTable[0:4], uint32(2)|uint32(MetadataDirectory)<<24)
	binary.LittleEndian.PutUint32(metaTable[4:8], uint32(6)|uint32(MetadataMipTail)<<24)
	putPlainPayloadPointer(metaTable[8:24], uint32(len(dirPayload)), CompressionNone, uint32(len(dirPayload)), uint32(dirPayloadOffset/16))
	putPlainPayloadPointer(metaTable[24:40], uint32(len(filePayload)), CompressionNone, uint32(len(filePayload)), uint32(filePayloadOffset/16))

	copy(buf[dirPayloadOffset:], dirPayload)
	copy(buf[filePayloadOffset:], filePayload)

	path := filepath.Join(t.TempDir(), "container.scs")
	require.NoError(t, os.WriteFile(path, buf, 0o644))
	return path
}

func align16(v uint64) uint64 {
	if v%16 == 0 {
		return v
	}
	return v + (16 - v%16)
}

func putEntryRecord(dst []byte, hash uint64, firstMetaIdx uint32, metaCount uint16, flags uint8) {
	binary.LittleEndian.PutUint64(dst[0:8], hash)
	binary.LittleEndian.PutUint32(dst[8:12], firstMetaIdx)
	binary.LittleEndian.PutUint16(dst[12:14], metaCount)
	dst[14] = flags
}

func putPlainPayloadPointer(dst []byte, compressedSize uint32, tag CompressionTag, uncompressedSize, offsetQuotient uint32) {
	word0 := (compressedSize & 0x00FFFFFF) | uint32(tag)<<28
	binary.LittleEndian.PutUint32(dst[0:4], word0)
	binary.LittleEndian.PutUint32(dst[4:8], uncompressedSize&0x00FFFFFF)
	binary.LittleEndian.PutUint32(dst[8:12], 0)
	binary.LittleEndian.PutUint32(dst[12:16], offsetQuotient)
}

func TestV2OpenParseEntriesAndRead(t *testing.T) {
	path := buildV2Container(t)

	a, err := OpenV2(path, nil)
	require.NoError(t, err)
	defer a.Close()

	require.True(t, a.IsValid(), "expected the container's header to be valid")
	require.NoError(t, a.ParseEntries())

	fileEntry, ok := a.LookupFile("def/world.sii")
	require.True(t, ok, "expected def/world.sii to resolve")
	data, err := a.Read(fileEntry)
	require.NoError(t, err)
	require.Equal(t, "hello world", string(data))

	dirEntry, ok := a.LookupDir("def")
	require.True(t, ok, "expected def to resolve as a directory")
	dirs, files, err := a.ListDirectoryNames(dirEntry)
	require.NoError(t, err)
	require.Empty(t, dirs)
	require.Equal(t, []string{"world.sii"}, files)
}

func TestV2ParseEntriesIsIdempotent(t *testing.T) {
	path := buildV2Container(t)
	a, err := OpenV2(path, nil)
	require.NoError(t, err)
	defer a.Close()

	require.NoError(t, a.ParseEntries(), "first ParseEntries")
	require.NoError(t, a.ParseEntries(), "second ParseEntries")
}

func TestV2ParseEntriesRejectsBadMagic(t *testing.T) {
	path := buildV2Container(t)
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	raw[0] = 'X'
	require.NoError(t, os.WriteFile(path, raw, 0o644))

	a, err := OpenV2(path, nil)
	require.NoError(t, err)
	defer a.Close()

	require.False(t, a.IsValid(), "expected the corrupted header to be invalid")
	require.ErrorIs(t, a.ParseEntries(), ErrBadMagic)
}

func TestV2ReadMissingEntry(t *testing.T) {
	path := buildV2Container(t)
	a, err := OpenV2(path, nil)
	require.NoError(t, err)
	defer a.Close()
	require.NoError(t, a.ParseEntries())

	_, ok := a.LookupFile("def/missing.sii")
	require.False(t, ok, "expected a lookup miss for a nonexistent path")
}
