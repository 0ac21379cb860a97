package scsarchive

import "encoding/binary"

// entryRecordSize is the fixed size of one entry record in the entry table.
const entryRecordSize = 16

// entryFlagIsDirectory is bit 0 of the entry record's flag byte.
const entryFlagIsDirectory = 1 << 0

// entryRecord is the raw 16-byte entry table record.
type entryRecord struct {
	Hash              uint64
	FirstMetadataIdx  uint32
	MetadataCount     uint16
	Flags             uint8
	_                 uint8 // reserved
}

func parseEntryRecord(data []byte) entryRecord {
	return entryRecord{
		Hash:             binary.LittleEndian.Uint64(data[0:8]),
		FirstMetadataIdx: binary.LittleEndian.Uint32(data[8:12]),
		MetadataCount:    binary.LittleEndian.Uint16(data[12:14]),
		Flags:            data[14],
	}
}

func (r entryRecord) isDirectory() bool {
	return r.Flags&entryFlagIsDirectory != 0
}

// EntryKind classifies a materialized Entry.
type EntryKind int

const (
	EntryKindDirectory EntryKind = iota
	EntryKindFile
	EntryKindTextureObject
)

// Entry is a plain value record describing one archive member. It carries
// only the offsets/sizes needed to read its bytes back out of the owning
// archive; it does not borrow the archive's file handle, so entries may
// be freely copied and outlive any particular read call (see the
// ownership design note: the archive owns the descriptor, entries are
// offsets).
type Entry struct {
	Hash uint64
	Kind EntryKind

	// Plain carries the payload pointer for EntryKindDirectory and
	// EntryKindFile entries.
	Plain plainPayloadPointer

	// Image, Sampler and MipTail are populated for EntryKindTextureObject
	// entries.
	Image   ImageDescriptor
	Sampler SamplerDescriptor
	MipTail plainPayloadPointer
}

// buildEntry classifies an entry record given its resolved metadata
// headers and the typed payloads already decoded from the metadata table.
func buildEntry(rec entryRecord, metas []metadataHeader, payloads map[uint32]any) (Entry, error) {
	switch len(metas) {
	case 1:
		m := metas[0]
		ptr, ok := payloads[m.Index].(plainPayloadPointer)
		if rec.isDirectory() {
			if !ok || m.Type != MetadataDirectory {
				return Entry{}, ErrBadEntryShape
			}
			return Entry{Hash: rec.Hash, Kind: EntryKindDirectory, Plain: ptr}, nil
		}
		if !ok || m.Type != MetadataMipTail {
			return Entry{}, ErrBadEntryShape
		}
		return Entry{Hash: rec.Hash, Kind: EntryKindFile, Plain: ptr}, nil

	case 3:
		if rec.isDirectory() {
			return Entry{}, ErrBadEntryShape
		}
		var (
			img     ImageDescriptor
			sampler SamplerDescriptor
			tail    plainPayloadPointer
			hasImg, hasSampler, hasTail bool
		)
		for _, m := range metas {
			switch m.Type {
			case MetadataImg:
				img, hasImg = payloads[m.Index].(ImageDescriptor)
			case MetadataSample:
				sampler, hasSampler = payloads[m.Index].(SamplerDescriptor)
			case MetadataMipTail:
				tail, hasTail = payloads[m.Index].(plainPayloadPointer)
			}
		}
		if !hasImg || !hasSampler || !hasTail {
			return Entry{}, ErrBadEntryShape
		}
		return Entry{
			Hash:    rec.Hash,
			Kind:    EntryKindTextureObject,
			Image:   img,
			Sampler: sampler,
			MipTail: tail,
		}, nil

	default:
		return Entry{}, ErrBadEntryShape
	}
}

// parseNameList decodes a directory entry's payload: a length-prefixed
// list of child names. Names beginning with '/' are subdirectory names
// (with that leading slash stripped); all other names are file names.
type nameList struct {
	Dirs  []string
	Files []string
}

func parseNameList(data []byte) (nameList, error) {
	var out nameList
	pos := 0
	for pos < len(data) {
		if pos+2 > len(data) {
			return out, ErrShortRead
		}
		n := int(binary.LittleEndian.Uint16(data[pos : pos+2]))
		pos += 2
		if pos+n > len(data) {
			return out, ErrShortRead
		}
		name := string(data[pos : pos+n])
		pos += n
		if len(name) > 0 && name[0] == '/' {
			out.Dirs = append(out.Dirs, name[1:])
		} else {
			out.Files = append(out.Files, name)
		}
	}
	return out, nil
}

// EntryStore is a hash-indexed, read-only lookup table built once per
// archive and never mutated afterward.
type EntryStore struct {
	byHash map[uint64]Entry
}

func newEntryStore() *EntryStore {
	return &EntryStore{byHash: make(map[uint64]Entry)}
}

// NewEntryStore creates an empty EntryStore. Archive implementations built
// outside this package (test doubles, synthetic overlays) use this instead
// of constructing one field-by-field.
func NewEntryStore() *EntryStore {
	return newEntryStore()
}

func (s *EntryStore) add(e Entry) error {
	if _, exists := s.byHash[e.Hash]; exists {
		return ErrDuplicateHash
	}
	s.byHash[e.Hash] = e
	return nil
}

// Add inserts an entry into the store, reporting ErrDuplicateHash if its
// hash already exists.
func (s *EntryStore) Add(e Entry) error {
	return s.add(e)
}

// Lookup resolves a virtual path (joined with salt per the hashing rule)
// to its entry.
func (s *EntryStore) Lookup(path string, salt uint16) (Entry, bool) {
	e, ok := s.byHash[Key(path, salt)]
	return e, ok
}

// LookupHash resolves a raw hash key directly, bypassing path hashing.
func (s *EntryStore) LookupHash(hash uint64) (Entry, bool) {
	e, ok := s.byHash[hash]
	return e, ok
}

// Len reports the number of entries in the store.
func (s *EntryStore) Len() int { return len(s.byHash) }
