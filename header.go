package scsarchive

import "encoding/binary"

// Container magic tags.
const magicSCS = "SCS#"

// hashMethodCity is the only hash-method tag this reader accepts.
const hashMethodCity = "CITY"

// v2HeaderSize is the fixed size, in bytes, of the V2 container header.
const v2HeaderSize = 53

// v2Header is the fixed-size record at offset 0 of a V2 container: magic,
// format version, salt, hash-method tag, entry table descriptor, metadata
// table descriptor, security-descriptor offset and platform byte.
type v2Header struct {
	Magic      [4]byte
	Version    uint16
	Salt       uint16
	HashMethod [4]byte

	EntryCount               uint32
	EntryTableCompressedSize uint32
	EntryTableOffset         uint64

	MetadataTableUncompressedSize uint32
	MetadataTableCompressedSize   uint32
	MetadataTableOffset           uint64

	SecurityDescriptorOffset uint64
	Platform                 uint8
}

// v2MagicPrefixSize is the number of leading bytes (magic + version) that
// Open reads to decide which container format and major version it is
// looking at, before committing to a full header parse.
const v2MagicPrefixSize = 6

// parseV2Header decodes the fixed header record from the first
// v2HeaderSize bytes of data.
func parseV2Header(data []byte) (v2Header, error) {
	var h v2Header
	if len(data) < v2HeaderSize {
		return h, ErrShortRead
	}
	copy(h.Magic[:], data[0:4])
	h.Version = binary.LittleEndian.Uint16(data[4:6])
	h.Salt = binary.LittleEndian.Uint16(data[6:8])
	copy(h.HashMethod[:], data[8:12])

	h.EntryCount = binary.LittleEndian.Uint32(data[12:16])
	h.EntryTableCompressedSize = binary.LittleEndian.Uint32(data[16:20])
	h.EntryTableOffset = binary.LittleEndian.Uint64(data[20:28])

	h.MetadataTableUncompressedSize = binary.LittleEndian.Uint32(data[28:32])
	h.MetadataTableCompressedSize = binary.LittleEndian.Uint32(data[32:36])
	h.MetadataTableOffset = binary.LittleEndian.Uint64(data[36:44])

	h.SecurityDescriptorOffset = binary.LittleEndian.Uint64(data[44:52])
	h.Platform = data[52]
	return h, nil
}

// isValidV2Header reports whether h satisfies the V2 header invariants:
// magic "SCS#", version 2, hash method "CITY".
func isValidV2Header(h v2Header) bool {
	return string(h.Magic[:]) == magicSCS && h.Version == 2 && string(h.HashMethod[:]) == hashMethodCity
}
