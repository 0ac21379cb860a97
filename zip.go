package scsarchive

import (
	"archive/zip"
	"io"
	"strings"

	scslog "github.com/trucksim/scsarchive/internal/log"
)

// zipSalt is the hash salt used when addressing ZIP-backed entries by
// path. ZIP archives carry no salt field of their own, so entries are
// hashed unsalted, matching the bare-path branch of the salt rule.
const zipSalt = 0

// ZIP adapts a standard ZIP file to the Archive interface, for mod
// archives shipped as plain ZIP files rather than the versioned custom
// container. Unlike V1/V2, directories are synthesized from the file
// names' slashes rather than carried as their own records.
type ZIP struct {
	path   string
	zr     *zip.ReadCloser
	logger *scslog.Helper

	valid bool
	dirs  *EntryStore
	files *EntryStore

	byHashFile map[uint64]*zip.File
}

// OpenZIP opens path as a ZIP archive.
func OpenZIP(path string, opts *Options) (*ZIP, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return &ZIP{path: path, valid: false, logger: opts.logger()}, nil
	}
	return &ZIP{
		path:       path,
		zr:         zr,
		logger:     opts.logger(),
		valid:      true,
		byHashFile: make(map[uint64]*zip.File),
	}, nil
}

func (a *ZIP) Path() string  { return a.path }
func (a *ZIP) IsValid() bool { return a.valid }

func (a *ZIP) Close() error {
	if a.zr != nil {
		err := a.zr.Close()
		a.zr = nil
		return err
	}
	return nil
}

func (a *ZIP) Dirs() *EntryStore  { return a.dirs }
func (a *ZIP) Files() *EntryStore { return a.files }

// ParseEntries builds dirs/files stores from the ZIP's central directory,
// hashing each entry's normalized name the same way a V2 archive would
// hash a virtual path, and synthesizing directory entries from the
// distinct parent paths implied by file names (ZIP carries no directory
// records of its own).
func (a *ZIP) ParseEntries() error {
	if a.dirs != nil {
		return nil
	}
	if !a.valid {
		return ErrBadMagic
	}

	dirs := newEntryStore()
	files := newEntryStore()
	seenDirs := make(map[string]bool)

	for _, f := range a.zr.File {
		name := strings.TrimPrefix(f.Name, "/")
		if strings.HasSuffix(name, "/") {
			continue // explicit directory record; parent chain below covers it
		}

		hash := Key(name, zipSalt)
		entry := Entry{
			Hash: hash,
			Kind: EntryKindFile,
			Plain: plainPayloadPointer{
				UncompressedSize: uint32(f.UncompressedSize64),
				CompressedSize:   uint32(f.CompressedSize64),
			},
		}
		if err := files.add(entry); err != nil {
			return err
		}
		a.byHashFile[hash] = f

		for _, dir := range parentChain(name) {
			if seenDirs[dir] {
				continue
			}
			seenDirs[dir] = true
			dh := Key(dir, zipSalt)
			if err := dirs.add(Entry{Hash: dh, Kind: EntryKindDirectory}); err != nil {
				return err
			}
		}
	}

	a.dirs = dirs
	a.files = files
	return nil
}

// parentChain returns every parent directory path of name, shallowest
// first, e.g. "a/b/c.txt" -> ["a", "a/b"].
func parentChain(name string) []string {
	var out []string
	idx := strings.IndexByte(name, '/')
	for idx >= 0 {
		out = append(out, name[:idx])
		next := strings.IndexByte(name[idx+1:], '/')
		if next < 0 {
			break
		}
		idx = idx + 1 + next
	}
	return out
}

// Read implements Archive. ZIP entries carry no compression tag of their
// own (the ZIP format handles that internally), so Read simply decodes
// whichever zip.File backs the entry's hash.
func (a *ZIP) Read(e Entry) ([]byte, error) {
	f, ok := a.byHashFile[e.Hash]
	if !ok {
		return nil, ErrEntryNotFound
	}
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}
