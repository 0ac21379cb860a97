package scsarchive

import (
	"os"

	scslog "github.com/trucksim/scsarchive/internal/log"
)

// Archive is the contract every container reader (V2, V1, ZIP) satisfies,
// so the combined entry view (Overlay) and the map-assembly pass can treat
// them uniformly. Per the ownership design note, entries are plain value
// records; the archive alone owns the underlying descriptor and Read
// resolves an Entry's bytes against it.
type Archive interface {
	// Path is the archive's filesystem path, used for diagnostics.
	Path() string

	// IsValid reports whether the header read on Open satisfied the
	// format's invariants.
	IsValid() bool

	// ParseEntries builds the hash-indexed directory and file stores. It
	// is idempotent: the first call does the work and caches it, later
	// calls return the cached result.
	ParseEntries() error

	// Dirs and Files return the stores built by ParseEntries. They are
	// nil until ParseEntries has been called at least once.
	Dirs() *EntryStore
	Files() *EntryStore

	// Read resolves the bytes for an entry previously returned by this
	// archive's stores.
	Read(e Entry) ([]byte, error)

	// Close releases the archive's file descriptor. It is safe to call
	// more than once.
	Close() error
}

// DirectoryLister is implemented by archive readers that can resolve a
// directory entry's child names directly. Only V2 carries stored name
// lists; V1 and ZIP address entries purely by hash and cannot reverse a
// hash back to a name, so listing a directory in those formats is the
// caller's responsibility, typically driven by an already-known naming
// convention (worldmap's sector key pattern, for instance).
type DirectoryLister interface {
	ListDirectoryNames(e Entry) (dirs, files []string, err error)
}

// Options configures an archive reader, mirroring the logger/knobs pattern
// used throughout this module.
type Options struct {
	// Logger receives warnings and diagnostics. Defaults to a stdout
	// logger filtered to warnings and above when nil.
	Logger *scslog.Helper
}

func (o *Options) logger() *scslog.Helper {
	if o != nil && o.Logger != nil {
		return o.Logger
	}
	return scslog.NewHelper(scslog.NewFilter(scslog.NewStdLogger(os.Stdout), scslog.FilterLevel(scslog.LevelWarn)))
}

// Open opens path and dispatches to the V2, V1 or ZIP reader by sniffing
// the leading bytes: "SCS#" + version 1 selects the V1 reader, "SCS#" +
// version 2 selects the V2 reader, anything else is handed to the ZIP
// reader (which validates its own local-file-header magic on Open).
func Open(path string, opts *Options) (Archive, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	prefix := make([]byte, v2MagicPrefixSize)
	n, err := f.Read(prefix)
	f.Close()
	if err != nil && n < len(prefix) {
		// Too short to be a V2/V1 container; fall through to ZIP, which
		// will fail its own validation if the file is nonsense.
		return OpenZIP(path, opts)
	}

	if string(prefix[0:4]) == magicSCS {
		version := uint16(prefix[4]) | uint16(prefix[5])<<8
		switch version {
		case 1:
			return OpenV1(path, opts)
		case 2:
			return OpenV2(path, opts)
		}
	}

	return OpenZIP(path, opts)
}
