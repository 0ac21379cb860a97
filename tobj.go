package scsarchive

import "encoding/binary"

// Texture-container (DDS) structural constants.
const (
	ddsMagic       = "DDS "
	ddsHeaderSize  = 124
	ddsPixelFormatSize = 32
	dx10ExtensionSize  = 20

	ddsFlagsCaps        = 0x1
	ddsFlagsHeight      = 0x2
	ddsFlagsWidth       = 0x4
	ddsFlagsPixelFormat = 0x1000
	ddsFlagsMipMapCount = 0x20000
	ddsFlagsLinearSize  = 0x80000

	ddsCapsTexture  = 0x1000
	ddsCapsMipMap   = 0x400000
	ddsCapsComplex  = 0x8

	// ddsCaps2CubemapAllFaces marks all six cubemap faces present.
	ddsCaps2CubemapAllFaces = 0xFE00

	ddPixelFormatFourCC = 0x4

	dx10ResourceDimensionTexture2D = 3

	// dx10MiscFlagTextureCube marks the DX10 extension's resource as a
	// cubemap.
	dx10MiscFlagTextureCube = 0x4
)

// SynthesizeTextureContainer reconstructs a complete DDS texture-container
// file from a V2 texture-object entry's raw pixel payload plus its image
// descriptor, per the format's TOBJ entry kind: a 128-byte legacy header
// ("DDS " magic + 124-byte DDS_HEADER), a 20-byte DX10 extension, then the
// pixel payload, unmodified.
func SynthesizeTextureContainer(img ImageDescriptor, pixels []byte) []byte {
	out := make([]byte, 0, 4+ddsHeaderSize+dx10ExtensionSize+len(pixels))
	out = append(out, ddsMagic...)
	out = append(out, buildDDSHeader(img, len(pixels))...)
	out = append(out, buildDX10Extension(img)...)
	out = append(out, pixels...)
	return out
}

func buildDDSHeader(img ImageDescriptor, payloadLen int) []byte {
	buf := make([]byte, ddsHeaderSize)

	flags := uint32(ddsFlagsCaps | ddsFlagsHeight | ddsFlagsWidth | ddsFlagsPixelFormat | ddsFlagsLinearSize)
	caps := uint32(ddsCapsTexture)
	if img.MipmapCount > 1 {
		flags |= ddsFlagsMipMapCount
		caps |= ddsCapsMipMap | ddsCapsComplex
	}

	binary.LittleEndian.PutUint32(buf[0:4], ddsHeaderSize) // dwSize
	binary.LittleEndian.PutUint32(buf[4:8], flags)
	binary.LittleEndian.PutUint32(buf[8:12], uint32(img.Height()))
	binary.LittleEndian.PutUint32(buf[12:16], uint32(img.Width()))
	binary.LittleEndian.PutUint32(buf[16:20], uint32(payloadLen)) // dwPitchOrLinearSize
	binary.LittleEndian.PutUint32(buf[20:24], 0)                  // dwDepth
	binary.LittleEndian.PutUint32(buf[24:28], uint32(img.MipmapCount))
	// dwReserved1[11] at buf[28:72] stays zero.

	pf := buf[72:104]
	binary.LittleEndian.PutUint32(pf[0:4], ddsPixelFormatSize)
	binary.LittleEndian.PutUint32(pf[4:8], ddPixelFormatFourCC)
	copy(pf[8:12], "DX10")
	// dwRGBBitCount and all four color masks stay zero.

	binary.LittleEndian.PutUint32(buf[104:108], caps)
	if img.Cubemap {
		binary.LittleEndian.PutUint32(buf[108:112], ddsCaps2CubemapAllFaces)
	}
	// dwCaps3, dwCaps4, dwReserved2 stay zero.

	return buf
}

func buildDX10Extension(img ImageDescriptor) []byte {
	buf := make([]byte, dx10ExtensionSize)
	binary.LittleEndian.PutUint32(buf[0:4], uint32(img.PixelFormat)) // dxgiFormat
	binary.LittleEndian.PutUint32(buf[4:8], dx10ResourceDimensionTexture2D)
	if img.Cubemap {
		binary.LittleEndian.PutUint32(buf[8:12], dx10MiscFlagTextureCube)
	}
	binary.LittleEndian.PutUint32(buf[12:16], 1) // arraySize
	// miscFlags2 stays zero.
	return buf
}
