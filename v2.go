package scsarchive

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"

	mmap "github.com/edsrzf/mmap-go"

	scslog "github.com/trucksim/scsarchive/internal/log"
)

// V2 is a reader for the V2 revision of the versioned custom container
// format. It memory-maps the archive file for its entire lifetime, the
// same way github.com/saferwall/pe maps the executable image it parses.
type V2 struct {
	path string
	f    *os.File
	data mmap.MMap

	header v2Header
	valid  bool
	logger *scslog.Helper

	once  sync.Once
	err   error
	dirs  *EntryStore
	files *EntryStore

	skippedTypesSeen map[MetadataType]bool
}

// OpenV2 opens path as a V2 container, memory-mapping it and parsing the
// fixed header. It does not itself parse the entry/metadata tables; call
// ParseEntries for that.
func OpenV2(path string, opts *Options) (*V2, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	data, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		f.Close()
		return nil, err
	}

	header, err := parseV2Header(data)
	if err != nil {
		data.Unmap()
		f.Close()
		return nil, err
	}

	return &V2{
		path:             path,
		f:                f,
		data:             data,
		header:           header,
		valid:            isValidV2Header(header),
		logger:           opts.logger(),
		skippedTypesSeen: make(map[MetadataType]bool),
	}, nil
}

// Path implements Archive.
func (a *V2) Path() string { return a.path }

// IsValid implements Archive.
func (a *V2) IsValid() bool { return a.valid }

// Close implements Archive.
func (a *V2) Close() error {
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

// Dirs implements Archive.
func (a *V2) Dirs() *EntryStore { return a.dirs }

// Files implements Archive.
func (a *V2) Files() *EntryStore { return a.files }

// ParseEntries implements Archive. It is idempotent and caches its result;
// concurrent callers observe a single parse via sync.Once.
func (a *V2) ParseEntries() error {
	a.once.Do(func() {
		a.err = a.parseEntriesOnce()
	})
	return a.err
}

func (a *V2) parseEntriesOnce() error {
	if !a.valid {
		switch {
		case string(a.header.Magic[:]) != magicSCS:
			return ErrBadMagic
		case a.header.Version != 2:
			return ErrUnsupportedVersion
		default:
			return ErrUnknownHashMethod
		}
	}

	entryTableRaw, err := a.readAt(int64(a.header.EntryTableOffset), int(a.header.EntryTableCompressedSize))
	if err != nil {
		return fmt.Errorf("scsarchive: reading entry table: %w", err)
	}
	entryTableSize := uint32(a.header.EntryCount) * entryRecordSize
	entryTable, err := decodeTable(entryTableRaw, a.header.EntryTableCompressedSize, entryTableSize)
	if err != nil {
		return fmt.Errorf("scsarchive: decompressing entry table: %w", err)
	}

	metaTableRaw, err := a.readAt(int64(a.header.MetadataTableOffset), int(a.header.MetadataTableCompressedSize))
	if err != nil {
		return fmt.Errorf("scsarchive: reading metadata table: %w", err)
	}
	metaTable, err := decodeTable(metaTableRaw, a.header.MetadataTableCompressedSize, a.header.MetadataTableUncompressedSize)
	if err != nil {
		return fmt.Errorf("scsarchive: decompressing metadata table: %w", err)
	}

	dirs := newEntryStore()
	files := newEntryStore()

	for i := uint32(0); i < a.header.EntryCount; i++ {
		rec := parseEntryRecord(entryTable[i*entryRecordSize:])

		metas := make([]metadataHeader, 0, rec.MetadataCount)
		payloads := make(map[uint32]any, rec.MetadataCount)
		for j := uint16(0); j < rec.MetadataCount; j++ {
			wordOffset := 4 * (rec.FirstMetadataIdx + uint32(j))
			if int(wordOffset)+4 > len(metaTable) {
				return fmt.Errorf("scsarchive: entry %d: %w", i, ErrOutsideBoundary)
			}
			mh := parseMetadataHeader(metaTable[wordOffset:])

			if isSkippedMetadataType(mh.Type) {
				a.skippedTypesSeen[mh.Type] = true
				continue
			}

			payload, err := decodeMetadataPayload(metaTable, mh)
			if err != nil {
				return fmt.Errorf("scsarchive: entry %d: %w", i, err)
			}
			metas = append(metas, mh)
			payloads[mh.Index] = payload
		}

		if len(metas) == 0 {
			continue
		}

		entry, err := buildEntry(rec, metas, payloads)
		if err != nil {
			return fmt.Errorf("scsarchive: entry %d: %w", i, err)
		}

		store := files
		if entry.Kind == EntryKindDirectory {
			store = dirs
		}
		if err := store.add(entry); err != nil {
			return fmt.Errorf("scsarchive: entry %d: %w", i, err)
		}
	}

	if len(a.skippedTypesSeen) > 0 {
		tags := make([]string, 0, len(a.skippedTypesSeen))
		for t := range a.skippedTypesSeen {
			tags = append(tags, fmt.Sprintf("%d", t))
		}
		sort.Strings(tags)
		a.logger.Warnf("%s: skipped uninteresting metadata types: %s", a.path, strings.Join(tags, ", "))
	}

	a.dirs = dirs
	a.files = files
	return nil
}

// decodeMetadataPayload decodes the typed payload a metadata header points
// to. Unknown type tags are a hard error per the format contract; the
// handful of informative-but-unused types (PMA_INFO/PMG_INFO) are kept as
// raw bytes since no operation in this core inspects their contents.
func decodeMetadataPayload(table []byte, mh metadataHeader) (any, error) {
	base := int(4 * mh.Index)

	switch mh.Type {
	case MetadataImg:
		if base+8 > len(table) {
			return nil, ErrOutsideBoundary
		}
		return parseImageDescriptor(table[base:]), nil

	case MetadataSample:
		if base+4 > len(table) {
			return nil, ErrOutsideBoundary
		}
		return parseSamplerDescriptor(table[base:]), nil

	case MetadataPMAInfo, MetadataPMGInfo:
		const infoSize = 16
		if base+infoSize > len(table) {
			return nil, ErrOutsideBoundary
		}
		raw := make([]byte, infoSize)
		copy(raw, table[base:base+infoSize])
		return raw, nil

	case MetadataDirectory, MetadataMipTail:
		if base+plainPayloadPointerSize > len(table) {
			return nil, ErrOutsideBoundary
		}
		return parsePlainPayloadPointer(table[base:]), nil

	default:
		return nil, fmt.Errorf("%w: tag %d", ErrUnknownMetadataType, mh.Type)
	}
}

// decodeTable decompresses a table's raw bytes, forcing decompression
// whenever the compressed size on disk differs from the expected
// uncompressed size. Tables are framed with zlib when compressed.
func decodeTable(raw []byte, compressedSize, uncompressedSize uint32) ([]byte, error) {
	if compressedSize == uncompressedSize {
		return raw, nil
	}
	return Decompress(CompressionZlib, raw, uncompressedSize)
}

// readAt returns a view of the mapped file at [offset, offset+size).
func (a *V2) readAt(offset int64, size int) ([]byte, error) {
	if offset < 0 || size < 0 || offset+int64(size) > int64(len(a.data)) {
		return nil, ErrOutsideBoundary
	}
	return a.data[offset : offset+int64(size)], nil
}

// Read implements Archive. Regular files and directories read their plain
// payload; texture-object entries synthesize a texture-container file
// from their pixel payload plus image/sampler metadata (see tobj.go).
func (a *V2) Read(e Entry) ([]byte, error) {
	switch e.Kind {
	case EntryKindDirectory, EntryKindFile:
		return a.readPlain(e.Plain)
	case EntryKindTextureObject:
		pixels, err := a.readPlain(e.MipTail)
		if err != nil {
			return nil, err
		}
		return SynthesizeTextureContainer(e.Image, pixels), nil
	default:
		return nil, ErrBadEntryShape
	}
}

func (a *V2) readPlain(p plainPayloadPointer) ([]byte, error) {
	offset := p.Offset()
	if offset%16 != 0 {
		return nil, ErrMisalignedOffset
	}
	raw, err := a.readAt(offset, int(p.CompressedSize))
	if err != nil {
		return nil, err
	}
	return Decompress(p.CompressionTag, raw, p.UncompressedSize)
}

// ReadDirectoryNames reads and parses a directory entry's child name list.
func (a *V2) ReadDirectoryNames(e Entry) (nameList, error) {
	if e.Kind != EntryKindDirectory {
		return nameList{}, ErrNotADirectory
	}
	raw, err := a.readPlain(e.Plain)
	if err != nil {
		return nameList{}, err
	}
	return parseNameList(raw)
}

// ListDirectoryNames implements DirectoryLister.
func (a *V2) ListDirectoryNames(e Entry) (dirs, files []string, err error) {
	nl, err := a.ReadDirectoryNames(e)
	if err != nil {
		return nil, nil, err
	}
	return nl.Dirs, nl.Files, nil
}

// Salt returns the archive's hash salt, for callers that need to compute
// Key values directly (e.g. to cross check a lookup).
func (a *V2) Salt() uint16 { return a.header.Salt }

// LookupFile resolves a virtual file path against this archive's salt,
// without the caller needing to know the salt rule or the hash
// representation.
func (a *V2) LookupFile(path string) (Entry, bool) {
	if a.files == nil {
		return Entry{}, false
	}
	return a.files.Lookup(path, a.header.Salt)
}

// LookupDir resolves a virtual directory path against this archive's salt.
func (a *V2) LookupDir(path string) (Entry, bool) {
	if a.dirs == nil {
		return Entry{}, false
	}
	return a.dirs.Lookup(path, a.header.Salt)
}
