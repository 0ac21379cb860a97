package scsarchive

import (
	"fmt"
	"os"
	"sync"

	mmap "github.com/edsrzf/mmap-go"

	scslog "github.com/trucksim/scsarchive/internal/log"
)

// v1HeaderSize is the fixed size of the V1 container header.
const v1HeaderSize = 20

// v1Header is the V1 container's flat header: magic, version, salt, entry
// count and entry table offset. V1 has no separate metadata table or
// directory/file split — every entry is a file, addressed the same way a
// V2 file entry is.
type v1Header struct {
	Magic            [4]byte
	Version          uint16
	Salt             uint16
	EntryCount       uint32
	EntryTableOffset uint64
}

// v1EntryRecordSize is the fixed size of one V1 entry record.
const v1EntryRecordSize = 28

// v1EntryRecord is a flat entry: path hash, sizes, compression tag and
// absolute file offset (unlike V2, not a 16-byte-quotient).
type v1EntryRecord struct {
	Hash             uint64
	UncompressedSize uint32
	CompressedSize   uint32
	CompressionTag   CompressionTag
	Offset           uint64
}

func parseV1Header(data []byte) (v1Header, error) {
	var h v1Header
	if len(data) < v1HeaderSize {
		return h, ErrShortRead
	}
	copy(h.Magic[:], data[0:4])
	h.Version = uint16(data[4]) | uint16(data[5])<<8
	h.Salt = uint16(data[6]) | uint16(data[7])<<8
	h.EntryCount = uint32(data[8]) | uint32(data[9])<<8 | uint32(data[10])<<16 | uint32(data[11])<<24
	h.EntryTableOffset = 0
	for i := 0; i < 8; i++ {
		h.EntryTableOffset |= uint64(data[12+i]) << (8 * i)
	}
	return h, nil
}

func parseV1EntryRecord(data []byte) v1EntryRecord {
	var r v1EntryRecord
	r.Hash = 0
	for i := 0; i < 8; i++ {
		r.Hash |= uint64(data[i]) << (8 * i)
	}
	r.UncompressedSize = uint32(data[8]) | uint32(data[9])<<8 | uint32(data[10])<<16 | uint32(data[11])<<24
	r.CompressedSize = uint32(data[12]) | uint32(data[13])<<8 | uint32(data[14])<<16 | uint32(data[15])<<24
	r.CompressionTag = CompressionTag(data[16])
	// data[17:20] reserved
	r.Offset = 0
	for i := 0; i < 8; i++ {
		r.Offset |= uint64(data[20+i]) << (8 * i)
	}
	return r
}

// V1 reads the flat-directory-layout revision of the versioned custom
// container. Spec.md treats V1 as "delegated; only its contract matters";
// this is a real, simpler implementation of that contract.
type V1 struct {
	path string
	f    *os.File
	data mmap.MMap

	header v1Header
	valid  bool
	logger *scslog.Helper

	once  sync.Once
	err   error
	files *EntryStore
}

// OpenV1 opens path as a V1 container.
func OpenV1(path string, opts *Options) (*V1, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	data, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		f.Close()
		return nil, err
	}
	header, err := parseV1Header(data)
	if err != nil {
		data.Unmap()
		f.Close()
		return nil, err
	}
	return &V1{
		path:   path,
		f:      f,
		data:   data,
		header: header,
		valid:  string(header.Magic[:]) == magicSCS && header.Version == 1,
		logger: opts.logger(),
	}, nil
}

func (a *V1) Path() string  { return a.path }
func (a *V1) IsValid() bool { return a.valid }

func (a *V1) Close() error {
	if a.data != nil {
		_ = a.data.Unmap()
		a.data = nil
	}
	if a.f != nil {
		err := a.f.Close()
		a.f = nil
		return err
	}
	return nil
}

// Dirs implements Archive; V1 archives have no directory entries of their
// own, so this always returns an empty, non-nil store once parsed.
func (a *V1) Dirs() *EntryStore { return newEntryStore() }

func (a *V1) Files() *EntryStore { return a.files }

func (a *V1) ParseEntries() error {
	a.once.Do(func() {
		a.err = a.parseEntriesOnce()
	})
	return a.err
}

func (a *V1) parseEntriesOnce() error {
	if !a.valid {
		return ErrBadMagic
	}

	tableSize := int64(a.header.EntryCount) * v1EntryRecordSize
	start := int64(a.header.EntryTableOffset)
	if start < 0 || start+tableSize > int64(len(a.data)) {
		return ErrOutsideBoundary
	}
	table := a.data[start : start+tableSize]

	files := newEntryStore()
	for i := uint32(0); i < a.header.EntryCount; i++ {
		rec := parseV1EntryRecord(table[uint32(i)*v1EntryRecordSize:])
		// V1's entry record stores an absolute byte offset, unlike V2's
		// 16-byte quotient; plainPayloadPointer only carries a quotient,
		// so a V1 offset that is not itself 16-byte aligned cannot be
		// represented and is a hard error rather than a silent truncation.
		if rec.Offset%16 != 0 {
			return fmt.Errorf("%s: entry %x: %w", a.path, rec.Hash, ErrMisalignedOffset)
		}
		entry := Entry{
			Hash: rec.Hash,
			Kind: EntryKindFile,
			Plain: plainPayloadPointer{
				CompressedSize:   rec.CompressedSize,
				CompressionTag:   rec.CompressionTag,
				UncompressedSize: rec.UncompressedSize,
				OffsetQuotient:   uint32(rec.Offset / 16),
			},
		}
		if err := files.add(entry); err != nil {
			return err
		}
	}

	a.files = files
	return nil
}

func (a *V1) Read(e Entry) ([]byte, error) {
	offset := e.Plain.Offset()
	size := int(e.Plain.CompressedSize)
	if offset < 0 || offset+int64(size) > int64(len(a.data)) {
		return nil, ErrOutsideBoundary
	}
	raw := a.data[offset : offset+int64(size)]
	return Decompress(e.Plain.CompressionTag, raw, e.Plain.UncompressedSize)
}
