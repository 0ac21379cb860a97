package scsarchive

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/zlib"
	"github.com/klauspost/compress/zstd"
)

// CompressionTag identifies the compressor that framed an entry's payload.
type CompressionTag uint8

const (
	CompressionNone         CompressionTag = 0
	CompressionZlib         CompressionTag = 1
	CompressionHeaderless   CompressionTag = 2
	CompressionTiledDeflate CompressionTag = 3
	CompressionZstd         CompressionTag = 4
)

func (t CompressionTag) String() string {
	switch t {
	case CompressionNone:
		return "none"
	case CompressionZlib:
		return "zlib"
	case CompressionHeaderless:
		return "headerless-zlib"
	case CompressionTiledDeflate:
		return "tiled-parallel-deflate"
	case CompressionZstd:
		return "zstd"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(t))
	}
}

// tileStreamHeaderSize is the fixed prefix stripped from a tiled-parallel-
// deflate payload before the per-tile deflate streams begin.
const tileStreamHeaderSize = 12

// tileStreamHeader is the 12-byte framing header preceding a
// tiled-parallel-deflate payload.
type tileStreamHeader struct {
	ID            uint8
	Magic         uint8
	TileCount     uint16
	TileSizeIndex uint32
	LastTileSize  uint32
}

// Decompress decodes data, which was compressed with the method named by
// tag, into exactly uncompressedSize bytes. Per the format's invariant,
// compressedSize == uncompressedSize iff tag is CompressionNone; a reader
// that observes equal sizes under a different tag is free to treat the
// payload as uncompressed, which this function does as a fast path for
// every recognized tag except tiled-parallel-deflate.
func Decompress(tag CompressionTag, data []byte, uncompressedSize uint32) ([]byte, error) {
	if uint32(len(data)) == uncompressedSize && tag != CompressionTiledDeflate && tag <= CompressionZstd {
		return data, nil
	}

	switch tag {
	case CompressionNone:
		if uint32(len(data)) != uncompressedSize {
			return nil, ErrCompressedSizeMismatch
		}
		return data, nil

	case CompressionZlib:
		r, err := zlib.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("scsarchive: zlib: %w", err)
		}
		defer r.Close()
		return readExact(r, uncompressedSize)

	case CompressionHeaderless:
		r := flate.NewReader(bytes.NewReader(data))
		defer r.Close()
		return readExact(r, uncompressedSize)

	case CompressionTiledDeflate:
		return decompressTiled(data, uncompressedSize)

	case CompressionZstd:
		dec, err := zstd.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("scsarchive: zstd: %w", err)
		}
		defer dec.Close()
		out, err := io.ReadAll(dec)
		if err != nil {
			return nil, fmt.Errorf("scsarchive: zstd: %w", err)
		}
		if uint32(len(out)) != uncompressedSize {
			return nil, ErrDecompressedSizeMismatch
		}
		return out, nil

	default:
		return nil, fmt.Errorf("%w: tag %d", ErrUnsupportedCompression, tag)
	}
}

// readExact reads the decompressed stream fully and asserts its length.
func readExact(r io.Reader, uncompressedSize uint32) ([]byte, error) {
	out, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	if uint32(len(out)) != uncompressedSize {
		return nil, ErrDecompressedSizeMismatch
	}
	return out, nil
}

// decompressTiled strips the 12-byte tile-stream header and inflates each
// independently-framed deflate tile in turn, concatenating the results.
// The tiled-parallel-deflate scheme is designed so tiles can be decoded
// concurrently on a GPU; this reader decodes them sequentially since the
// core is single-threaded, but each tile is still an independent deflate
// stream and a failure in any one of them is a hard error for the whole
// payload.
func decompressTiled(data []byte, uncompressedSize uint32) ([]byte, error) {
	if len(data) < tileStreamHeaderSize {
		return nil, fmt.Errorf("scsarchive: tiled-deflate payload shorter than tile-stream header: %w", ErrShortRead)
	}

	hdr := tileStreamHeader{
		ID:            data[0],
		Magic:         data[1],
		TileCount:     binary.LittleEndian.Uint16(data[2:4]),
		TileSizeIndex: binary.LittleEndian.Uint32(data[4:8]),
		LastTileSize:  binary.LittleEndian.Uint32(data[8:12]),
	}

	payload := bytes.NewReader(data[tileStreamHeaderSize:])
	if hdr.TileCount == 0 {
		return readExact(flate.NewReader(payload), uncompressedSize)
	}

	// payload is a *bytes.Reader, which already satisfies flate.Reader
	// (Read + ReadByte); flate.NewReader then reads directly from it
	// instead of wrapping it in its own bufio buffer, so each tile's
	// decoder consumes exactly the bytes of its own deflate stream and
	// leaves payload's cursor at the start of the next tile.
	tileSize := hdr.TileSizeIndex
	out := make([]byte, 0, uncompressedSize)

	for i := uint16(0); i < hdr.TileCount; i++ {
		want := tileSize
		if i == hdr.TileCount-1 {
			want = hdr.LastTileSize
		}
		r := flate.NewReader(payload)
		buf := make([]byte, want)
		if _, err := io.ReadFull(r, buf); err != nil {
			r.Close()
			return nil, fmt.Errorf("scsarchive: tiled-deflate: tile %d: %w", i, err)
		}
		r.Close()
		out = append(out, buf...)
	}

	if uint32(len(out)) != uncompressedSize {
		return nil, ErrDecompressedSizeMismatch
	}
	return out, nil
}
