package scsarchive

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSynthesizeTextureContainerHeaderShape(t *testing.T) {
	img := ImageDescriptor{
		WidthMinus1:  255,
		HeightMinus1: 127,
		MipmapCount:  4,
		PixelFormat:  71, // BC1_UNORM
	}
	pixels := make([]byte, 512)
	for i := range pixels {
		pixels[i] = byte(i)
	}

	out := SynthesizeTextureContainer(img, pixels)

	require.Equal(t, 4+ddsHeaderSize+dx10ExtensionSize+len(pixels), len(out))
	require.Equal(t, "DDS ", string(out[0:4]))

	header := out[4 : 4+ddsHeaderSize]
	require.EqualValues(t, img.Height(), binary.LittleEndian.Uint32(header[8:12]), "header height")
	require.EqualValues(t, img.Width(), binary.LittleEndian.Uint32(header[12:16]), "header width")
	require.EqualValues(t, img.MipmapCount, binary.LittleEndian.Uint32(header[24:28]), "header mipmap count")

	pf := header[72:104]
	require.Equal(t, "DX10", string(pf[8:12]), "pixel format fourCC")

	dx10 := out[4+ddsHeaderSize : 4+ddsHeaderSize+dx10ExtensionSize]
	require.EqualValues(t, img.PixelFormat, binary.LittleEndian.Uint32(dx10[0:4]), "dxgiFormat")

	payload := out[4+ddsHeaderSize+dx10ExtensionSize:]
	require.Equal(t, string(pixels), string(payload), "pixel payload was not carried through unmodified")
}

func TestSynthesizeTextureContainerCubemapFlags(t *testing.T) {
	img := ImageDescriptor{WidthMinus1: 63, HeightMinus1: 63, MipmapCount: 1, Cubemap: true}
	out := SynthesizeTextureContainer(img, []byte{1, 2, 3, 4})

	header := out[4 : 4+ddsHeaderSize]
	caps2 := binary.LittleEndian.Uint32(header[108:112])
	require.Equal(t, uint32(ddsCaps2CubemapAllFaces), caps2, "dwCaps2 should mark a cubemap")

	dx10 := out[4+ddsHeaderSize : 4+ddsHeaderSize+dx10ExtensionSize]
	misc := binary.LittleEndian.Uint32(dx10[8:12])
	require.Equal(t, uint32(dx10MiscFlagTextureCube), misc, "miscFlag should mark a cubemap")
}

func TestImageDescriptorWidthHeight(t *testing.T) {
	d := ImageDescriptor{WidthMinus1: 1023, HeightMinus1: 511}
	require.Equal(t, 1024, d.Width())
	require.Equal(t, 512, d.Height())
}
