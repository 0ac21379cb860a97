package scsarchive

import "errors"

// Errors returned by archive readers. These are fatal-per-archive per the
// error-handling design: they abort processing of the archive that
// produced them.
var (
	// ErrBadMagic is returned when the leading magic tag of a container
	// does not match any known format.
	ErrBadMagic = errors.New("scsarchive: unrecognized container magic")

	// ErrUnsupportedVersion is returned when the V2 header's format
	// version field is not 2.
	ErrUnsupportedVersion = errors.New("scsarchive: unsupported container version")

	// ErrUnknownHashMethod is returned when the header's hash-method tag
	// is not "CITY".
	ErrUnknownHashMethod = errors.New("scsarchive: unknown hash method")

	// ErrShortRead is returned when fewer bytes than requested could be
	// read from the underlying file.
	ErrShortRead = errors.New("scsarchive: short read")

	// ErrOutsideBoundary is returned when a computed offset/size falls
	// outside the mapped file.
	ErrOutsideBoundary = errors.New("scsarchive: read outside file boundary")

	// ErrUnknownMetadataType is returned when a metadata header carries a
	// type tag this reader does not recognize. Per the format contract
	// this is a hard error, unlike the handful of types that are merely
	// skipped with a warning.
	ErrUnknownMetadataType = errors.New("scsarchive: unknown metadata type")

	// ErrBadEntryShape is returned when an entry's metadata count/kind
	// combination does not match any recognized entry kind (e.g. a
	// texture-object triple missing one of IMG/SAMPLE/MIP_TAIL, or a
	// directory entry with metadata count != 1).
	ErrBadEntryShape = errors.New("scsarchive: entry metadata does not match a known entry kind")

	// ErrDuplicateHash is returned when two entries in the same archive
	// hash to the same key; the format requires hash uniqueness.
	ErrDuplicateHash = errors.New("scsarchive: duplicate entry hash")

	// ErrEntryNotFound is returned by lookups that miss.
	ErrEntryNotFound = errors.New("scsarchive: entry not found")

	// ErrNotADirectory / ErrNotAFile are returned when a lookup resolves
	// to an entry of the wrong kind.
	ErrNotADirectory = errors.New("scsarchive: entry is not a directory")
	ErrNotAFile      = errors.New("scsarchive: entry is not a file")

	// ErrUnsupportedCompression is returned for compression tags this
	// reader does not recognize.
	ErrUnsupportedCompression = errors.New("scsarchive: unsupported compression method")

	// ErrCompressedSizeMismatch is returned when a "none"-tagged payload
	// does not have equal compressed/uncompressed sizes.
	ErrCompressedSizeMismatch = errors.New("scsarchive: compressed size does not match uncompressed size for an uncompressed entry")

	// ErrDecompressedSizeMismatch is returned when a decompressor produces
	// a different number of bytes than the table declared.
	ErrDecompressedSizeMismatch = errors.New("scsarchive: decompressed output size mismatch")

	// ErrMisalignedOffset is returned when a plain payload's computed file
	// offset is not 16-byte aligned.
	ErrMisalignedOffset = errors.New("scsarchive: plain payload offset is not 16-byte aligned")

	// ErrNotOpen is returned by operations on a closed or never-opened
	// archive.
	ErrNotOpen = errors.New("scsarchive: archive is not open")
)
