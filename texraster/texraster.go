// Package texraster turns a synthesized texture-container (DDS) byte
// blob into a consumer-friendly raster image. It is the default,
// concrete implementation of the "external texture-container to raster
// converter" collaborator the icon pipeline depends on through a narrow
// interface.
package texraster

import (
	"encoding/binary"
	"errors"
	"fmt"
	"image"
	"image/draw"

	"github.com/woozymasta/bcn"
	xdraw "golang.org/x/image/draw"
)

// ErrBadContainer is returned when the input does not look like a DDS
// container produced by scsarchive.SynthesizeTextureContainer.
var ErrBadContainer = errors.New("texraster: not a DDS/DX10 container")

// ErrUnsupportedFormat is returned for a DXGI format this decoder does
// not know how to decompress. The TextureDecoder interface itself stays
// general; callers needing broader format coverage supply their own.
var ErrUnsupportedFormat = errors.New("texraster: unsupported DXGI format")

// DXGI format codes this decoder recognizes (the BC1/BC2/BC3 family most
// commonly found in this title's archives).
const (
	dxgiFormatBC1Unorm = 71
	dxgiFormatBC1UnormSRGB = 72
	dxgiFormatBC2Unorm = 74
	dxgiFormatBC2UnormSRGB = 75
	dxgiFormatBC3Unorm = 77
	dxgiFormatBC3UnormSRGB = 78
)

// TextureDecoder is the narrow interface the icon pipeline depends on.
type TextureDecoder interface {
	Decode(container []byte, aux []byte) (image.Image, error)
}

// Options configures Decoder.
type Options struct {
	// TargetWidth/TargetHeight, if both non-zero, resize every decoded
	// raster to a common size using Scaler (the icon pipeline keys icons
	// of differing native sizes into one uniform map).
	TargetWidth, TargetHeight int

	// Scaler selects the resampling algorithm; defaults to
	// draw.BiLinear when nil.
	Scaler xdraw.Interpolator
}

// Decoder is the default TextureDecoder, built on github.com/woozymasta/bcn
// for BC-family block decompression.
type Decoder struct {
	opts Options
}

// NewDecoder builds a Decoder with opts.
func NewDecoder(opts Options) *Decoder {
	if opts.Scaler == nil {
		opts.Scaler = xdraw.BiLinear
	}
	return &Decoder{opts: opts}
}

// Decode parses container's DDS/DX10 header, decompresses its BC-family
// pixel payload via bcn, and optionally resizes the result. aux, the SDF
// auxiliary coefficient table the icon pipeline forwards for
// "ui.sdf.rfx" descriptors, is accepted to satisfy TextureDecoder but
// unused here: every format this decoder recognizes is a plain
// block-compressed bitmap, not an SDF evaluated against aux at decode
// time.
func (d *Decoder) Decode(container []byte, aux []byte) (image.Image, error) {
	const minLen = 4 + 124 + 20
	if len(container) < minLen || string(container[0:4]) != "DDS " {
		return nil, ErrBadContainer
	}

	header := container[4 : 4+124]
	width := int(binary.LittleEndian.Uint32(header[12:16]))
	height := int(binary.LittleEndian.Uint32(header[8:12]))

	pf := header[72:104]
	if string(pf[8:12]) != "DX10" {
		return nil, ErrBadContainer
	}

	dx10 := container[4+124 : 4+124+20]
	dxgiFormat := binary.LittleEndian.Uint32(dx10[0:4])

	payload := container[minLen:]

	format, ok := bcnFormat(dxgiFormat)
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedFormat, dxgiFormat)
	}

	img, err := bcn.DecodeImage(payload, width, height, format)
	if err != nil {
		return nil, fmt.Errorf("texraster: decoding block-compressed payload: %w", err)
	}

	if d.opts.TargetWidth > 0 && d.opts.TargetHeight > 0 &&
		(width != d.opts.TargetWidth || height != d.opts.TargetHeight) {
		return d.resize(img), nil
	}
	return img, nil
}

func (d *Decoder) resize(src image.Image) image.Image {
	dst := image.NewNRGBA(image.Rect(0, 0, d.opts.TargetWidth, d.opts.TargetHeight))
	d.opts.Scaler.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Over, nil)
	return dst
}

func bcnFormat(dxgiFormat uint32) (bcn.Format, bool) {
	switch dxgiFormat {
	case dxgiFormatBC1Unorm, dxgiFormatBC1UnormSRGB:
		return bcn.FormatDXT1, true
	case dxgiFormatBC2Unorm, dxgiFormatBC2UnormSRGB:
		return bcn.FormatDXT3, true
	case dxgiFormatBC3Unorm, dxgiFormatBC3UnormSRGB:
		return bcn.FormatDXT5, true
	default:
		return bcn.FormatUnknown, false
	}
}
