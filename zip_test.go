package scsarchive

import (
	"archive/zip"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeTestZip(t *testing.T, files map[string]string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "mod.zip")
	f, err := os.Create(path)
	require.NoError(t, err)
	zw := zip.NewWriter(f)
	for name, content := range files {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())
	return path
}

func TestZIPParseEntriesAndRead(t *testing.T) {
	path := writeTestZip(t, map[string]string{
		"def/world/city.sii":  "city data",
		"def/world/ferry.sii": "ferry data",
		"map/europe/info.sii": "marker",
	})

	a, err := OpenZIP(path, nil)
	require.NoError(t, err)
	defer a.Close()

	require.True(t, a.IsValid(), "expected a well-formed ZIP to be valid")
	require.NoError(t, a.ParseEntries())

	fileHash := Key("def/world/city.sii", zipSalt)
	entry, ok := a.Files().LookupHash(fileHash)
	require.True(t, ok, "file entry not found by hash")
	data, err := a.Read(entry)
	require.NoError(t, err)
	require.Equal(t, "city data", string(data))

	dirHash := Key("def/world", zipSalt)
	_, ok = a.Dirs().LookupHash(dirHash)
	require.True(t, ok, "synthesized parent directory \"def/world\" not found")

	topHash := Key("def", zipSalt)
	_, ok = a.Dirs().LookupHash(topHash)
	require.True(t, ok, "synthesized parent directory \"def\" not found")
}

func TestZIPReadMissingEntry(t *testing.T) {
	path := writeTestZip(t, map[string]string{"a.txt": "x"})
	a, err := OpenZIP(path, nil)
	require.NoError(t, err)
	defer a.Close()
	require.NoError(t, a.ParseEntries())

	_, err = a.Read(Entry{Hash: 0xDEADBEEF})
	require.ErrorIs(t, err, ErrEntryNotFound)
}

func TestParentChain(t *testing.T) {
	cases := map[string][]string{
		"a.txt":       nil,
		"a/b.txt":     {"a"},
		"a/b/c.txt":   {"a", "a/b"},
		"a/b/c/d.txt": {"a", "a/b", "a/b/c"},
	}
	for name, want := range cases {
		require.Equal(t, want, parentChain(name))
	}
}
