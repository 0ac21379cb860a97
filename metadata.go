package scsarchive

import "encoding/binary"

// MetadataType is the type tag carried by a metadata header.
type MetadataType uint8

const (
	MetadataImg             MetadataType = 1
	MetadataSample          MetadataType = 2
	MetadataMipProxy        MetadataType = 3
	MetadataPMAInfo         MetadataType = 5
	MetadataPMGInfo         MetadataType = 6
	MetadataInlineDirectory MetadataType = 4
	MetadataMip0            MetadataType = 130
	MetadataMip1            MetadataType = 131

	// metadataPlainBit, OR-ed with a sub-tag, marks a "plain" payload
	// pointer metadata record.
	metadataPlainBit MetadataType = 0x80

	MetadataDirectory MetadataType = metadataPlainBit | 0x01 // 0x81
	MetadataMipTail   MetadataType = metadataPlainBit | 0x04 // 0x84
)

// isSkippedMetadataType reports the types that are recognized but carry no
// information this reader needs; they are dropped, with one aggregate warning per archive listing
// which tags were seen.
func isSkippedMetadataType(t MetadataType) bool {
	switch t {
	case MetadataMipProxy, MetadataMip0, MetadataMip1, MetadataInlineDirectory:
		return true
	default:
		return false
	}
}

func isPlainMetadataType(t MetadataType) bool {
	return t&metadataPlainBit != 0
}

// metadataHeaderSize is the fixed size of one metadata header record.
const metadataHeaderSize = 4

// metadataHeader is a 4-byte record: a 24-bit table-relative index (in
// 4-byte units) pointing to a typed payload, plus an 8-bit type tag.
type metadataHeader struct {
	Index uint32
	Type  MetadataType
}

func parseMetadataHeader(data []byte) metadataHeader {
	raw := binary.LittleEndian.Uint32(data[0:4])
	return metadataHeader{
		Index: raw & 0x00FFFFFF,
		Type:  MetadataType(raw >> 24),
	}
}

// ImageDescriptor is the 8-byte IMG metadata payload.
type ImageDescriptor struct {
	WidthMinus1  uint16
	HeightMinus1 uint16

	MipmapCount       uint8
	PixelFormat       uint16
	Cubemap           bool
	ArrayCountMinus1  uint8
	PitchAlignmentLog uint8
	ImageAlignmentLog uint8
}

// Width and Height return the actual texture dimensions.
func (d ImageDescriptor) Width() int  { return int(d.WidthMinus1) + 1 }
func (d ImageDescriptor) Height() int { return int(d.HeightMinus1) + 1 }

func parseImageDescriptor(data []byte) ImageDescriptor {
	widthM1 := binary.LittleEndian.Uint16(data[0:2])
	heightM1 := binary.LittleEndian.Uint16(data[2:4])
	packed := binary.LittleEndian.Uint32(data[4:8])

	return ImageDescriptor{
		WidthMinus1:       widthM1,
		HeightMinus1:      heightM1,
		MipmapCount:       uint8(packed&0xF) + 1,
		PixelFormat:       uint16((packed >> 4) & 0xFF),
		Cubemap:           (packed>>12)&0x3 != 0,
		ArrayCountMinus1:  uint8((packed >> 14) & 0x3F),
		PitchAlignmentLog: uint8((packed >> 20) & 0xF),
		ImageAlignmentLog: uint8((packed >> 24) & 0xF),
	}
}

// SamplerDescriptor is the 4-byte SAMPLE metadata payload.
type SamplerDescriptor struct {
	MagFilter  uint8
	MinFilter  uint8
	MipFilter  uint8
	AddressU   uint8
	AddressV   uint8
	AddressW   uint8
}

func parseSamplerDescriptor(data []byte) SamplerDescriptor {
	packed := binary.LittleEndian.Uint32(data[0:4])
	return SamplerDescriptor{
		MagFilter: uint8(packed & 0x3),
		MinFilter: uint8((packed >> 2) & 0x3),
		MipFilter: uint8((packed >> 4) & 0x3),
		AddressU:  uint8((packed >> 6) & 0x7),
		AddressV:  uint8((packed >> 9) & 0x7),
		AddressW:  uint8((packed >> 12) & 0x7),
	}
}

// plainPayloadPointerSize is the fixed size of a plain payload pointer
// metadata record.
const plainPayloadPointerSize = 16

// plainPayloadPointer describes where a plain (DIRECTORY or MIP_TAIL)
// payload lives in the file and how it is compressed.
type plainPayloadPointer struct {
	CompressedSize   uint32 // 24-bit field
	CompressionTag   CompressionTag
	UncompressedSize uint32 // 24-bit field
	OffsetQuotient   uint32
}

// Offset returns the absolute file offset of the payload.
func (p plainPayloadPointer) Offset() int64 {
	return int64(p.OffsetQuotient) * 16
}

func parsePlainPayloadPointer(data []byte) plainPayloadPointer {
	word0 := binary.LittleEndian.Uint32(data[0:4])
	word1 := binary.LittleEndian.Uint32(data[4:8])
	// reserved 32-bit at data[8:12]
	offsetQuotient := binary.LittleEndian.Uint32(data[12:16])

	return plainPayloadPointer{
		CompressedSize:   word0 & 0x00FFFFFF,
		CompressionTag:   CompressionTag(word0 >> 28),
		UncompressedSize: word1 & 0x00FFFFFF,
		OffsetQuotient:   offsetQuotient,
	}
}
