package worldmap

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/trucksim/scsarchive"
)

// sectorKeyPattern matches "sec+0001-0002" style sector keys: two signed
// four-digit groups.
var sectorKeyPattern = regexp.MustCompile(`^sec([+-]\d{4})([+-]\d{4})$`)

// Options configures sector aggregation and the map assembly pass.
type Options struct {
	// MapNames, if non-empty, names the map directories to aggregate
	// instead of discovering them by listing "map/".
	MapNames []string

	// PlatformDefaultMap is used when map directory discovery is
	// unavailable (V1/ZIP-backed base archives carry no directory name
	// lists) and MapNames was not given explicitly — "usa" for the
	// American platform tag, "europe" for the European one.
	PlatformDefaultMap string

	// Divider is the road-split detection configuration (Stage F).
	Divider DividerConfig

	Logger interface {
		Warnf(format string, args ...any)
	}
}

func (o Options) warnf(format string, args ...any) {
	if o.Logger != nil {
		o.Logger.Warnf(format, args...)
	}
}

// SectorData is one sector's merged item/node streams.
type SectorData struct {
	SectorX, SectorY int
	ItemsByUID       map[uint64]Item
	NodesByUID       map[uint64]Node
}

// SectorSet is the result of aggregating every sector file across every
// discovered (or configured) map.
type SectorSet struct {
	Map       string
	Sectors   map[string]*SectorData
	HadErrors bool
	Warnings  []string
}

// AggregateSectors iterates sector files per map, invokes parser on each
// decompressed .base/.aux payload, and merges items/nodes into per-sector
// maps keyed by UID, annotated with sector coordinates.
func AggregateSectors(combined *scsarchive.Overlay, parser SectorParser, opts Options) (SectorSet, error) {
	mapNames := opts.MapNames
	if len(mapNames) == 0 {
		discovered, err := discoverMapNames(combined)
		if err == nil && len(discovered) > 0 {
			mapNames = discovered
		} else if opts.PlatformDefaultMap != "" {
			mapNames = []string{opts.PlatformDefaultMap}
		}
	}

	set := SectorSet{
		Map:     strings.Join(mapNames, "+"),
		Sectors: make(map[string]*SectorData),
	}

	for _, mapName := range mapNames {
		if err := aggregateOneMap(combined, mapName, parser, opts, &set); err != nil {
			set.HadErrors = true
			set.Warnings = append(set.Warnings, fmt.Sprintf("map %q: %v", mapName, err))
			opts.warnf("worldmap: map %q: %v", mapName, err)
		}
	}

	return set, nil
}

func discoverMapNames(combined *scsarchive.Overlay) ([]string, error) {
	_, e, ok := combined.LookupDir("map", 0)
	if !ok {
		return nil, scsarchive.ErrEntryNotFound
	}
	for _, a := range combined.Archives() {
		lister, ok := a.(scsarchive.DirectoryLister)
		if !ok {
			continue
		}
		dirs, _, err := lister.ListDirectoryNames(e)
		if err == nil && len(dirs) > 0 {
			sort.Strings(dirs)
			return dirs, nil
		}
	}
	return nil, scsarchive.ErrNotADirectory
}

func aggregateOneMap(combined *scsarchive.Overlay, mapName string, parser SectorParser, opts Options, set *SectorSet) error {
	dirPath := "map/" + mapName
	_, dirEntry, ok := combined.LookupDir(dirPath, 0)
	if !ok {
		return fmt.Errorf("%w: %s", scsarchive.ErrEntryNotFound, dirPath)
	}

	var names []string
	for _, a := range combined.Archives() {
		lister, ok := a.(scsarchive.DirectoryLister)
		if !ok {
			continue
		}
		_, files, err := lister.ListDirectoryNames(dirEntry)
		if err == nil {
			names = append(names, files...)
		}
	}

	for _, name := range names {
		if !strings.HasSuffix(name, ".base") && !strings.HasSuffix(name, ".aux") {
			continue
		}
		if err := processSectorFile(combined, dirPath, name, parser, opts, set); err != nil {
			set.HadErrors = true
			set.Warnings = append(set.Warnings, err.Error())
			opts.warnf("worldmap: %v", err)
		}
	}
	return nil
}

func processSectorFile(combined *scsarchive.Overlay, dirPath, name string, parser SectorParser, opts Options, set *SectorSet) error {
	key := strings.TrimSuffix(strings.TrimSuffix(name, ".base"), ".aux")

	m := sectorKeyPattern.FindStringSubmatch(key)
	if m == nil {
		return fmt.Errorf("malformed sector key %q", key)
	}
	sectorX, _ := strconv.Atoi(m[1])
	sectorY, _ := strconv.Atoi(m[2])

	raw, err := combined.Read(dirPath+"/"+name, 0)
	if err != nil {
		return fmt.Errorf("reading %s: %w", name, err)
	}

	items, nodes, err := parser.ParseSector(raw)
	if err != nil {
		return fmt.Errorf("parsing %s: %w", name, err)
	}

	data := set.Sectors[key]
	if data == nil {
		data = &SectorData{
			SectorX:    sectorX,
			SectorY:    sectorY,
			ItemsByUID: make(map[uint64]Item),
			NodesByUID: make(map[uint64]Node),
		}
		set.Sectors[key] = data
	}

	for _, it := range items {
		it.SectorX, it.SectorY = sectorX, sectorY
		data.ItemsByUID[it.UID] = it
	}
	for _, n := range nodes {
		n.SectorX, n.SectorY = sectorX, sectorY
		data.NodesByUID[n.UID] = n
	}
	return nil
}
