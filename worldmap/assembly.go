package worldmap

import (
	"fmt"
	"sort"
	"strings"
)

// DividerConfig configures Stage F's road-split divider heuristic,
// promoted to configuration rather than hardcoded: which building scheme
// and curve model tokens count as dividers, and the endpoint distance
// threshold (map units) that flags a road as maybeDivided.
type DividerConfig struct {
	BuildingScheme    string
	CurveModels       []string
	DistanceThreshold float64
}

// DefaultDividerConfig mirrors the empirically-chosen values the source
// hardcoded.
func DefaultDividerConfig() DividerConfig {
	return DividerConfig{
		BuildingScheme:    "scheme20",
		CurveModels:       []string{"0i03a", "0i03b"},
		DistanceThreshold: 2.0,
	}
}

// assemblyState accumulates Stage A/B's global indices and per-type
// buckets across every sector, before Stage C onward consume them.
type assemblyState struct {
	items map[uint64]Item
	nodes map[uint64]Node

	referenced map[uint64]bool
	elevation  map[uint64]bool

	cityAreas map[string][]CityArea

	prefabsByUID map[uint64]Item
	prefabs      []Item

	mapAreas []Item
	poiful   []Item

	ferryItemsByToken map[string]Item

	models      []Item
	triggers    []Item
	trajectories []Item
	cutscenes   []Item

	warnings []string
}

func (s *assemblyState) warn(format string, args ...any) {
	s.warnings = append(s.warnings, fmt.Sprintf(format, args...))
}

// AssembleMap runs Stages A through H, merging aggregated sector data
// with the external definition dictionaries, the icon map and the locale
// table into the unified map data bundle.
func AssembleMap(sectors SectorSet, defs DefinitionSet, icons map[string][]byte, locale map[string]string, opts Options) (Result, error) {
	divider := opts.Divider
	if divider.BuildingScheme == "" && len(divider.CurveModels) == 0 {
		divider = DefaultDividerConfig()
	}

	st := &assemblyState{
		items:             make(map[uint64]Item),
		nodes:             make(map[uint64]Node),
		referenced:        make(map[uint64]bool),
		elevation:         make(map[uint64]bool),
		cityAreas:         make(map[string][]CityArea),
		prefabsByUID:      make(map[uint64]Item),
		ferryItemsByToken: make(map[string]Item),
	}

	stageA(sectors, st)
	stageB(defs, st)

	pois, companies, noPOICompanies, fallbackPOICompanies := stageC(st, defs, icons, locale)

	cities := stageD(st, defs)
	ferries := stageE(st, defs, locale)
	dividers, roads := stageF(sectors, st, divider)
	mileage := stageG(st, defs)

	nodes, elevationNodes := stageH(st)

	data := MapData{
		Nodes:              nodes,
		Elevation:          elevationNodes,
		Roads:              roads,
		Ferries:            ferries,
		Prefabs:            st.prefabs,
		Companies:          companies,
		Models:             st.models,
		MapAreas:           st.mapAreas,
		POIs:               pois,
		Dividers:           dividers,
		Triggers:           st.triggers,
		Trajectories:       st.trajectories,
		Cutscenes:          st.cutscenes,
		Countries:          defs.Countries,
		Cities:             cities,
		CompanyDefs:        defs.Companies,
		RoadLooks:          defs.RoadLooks,
		PrefabDescriptions: defs.Prefabs,
		ModelDescriptions:  mergeModelDefs(defs),
		Achievements:       defs.Achievements,
		Routes:             defs.Routes,
		MileageTargets:     mileage,
	}

	warnings := append(append([]string{}, sectors.Warnings...), st.warnings...)
	stats := computeStats(warnings)

	return Result{
		Map:                  sectors.Map,
		Data:                 data,
		Icons:                icons,
		Stats:                stats,
		Warnings:             warnings,
		NoPOICompanies:       noPOICompanies,
		FallbackPOICompanies: fallbackPOICompanies,
	}, nil
}

func mergeModelDefs(defs DefinitionSet) map[string]ModelDef {
	out := make(map[string]ModelDef, len(defs.Models)+len(defs.Vegetation))
	for k, v := range defs.Models {
		out[k] = v
	}
	for k, v := range defs.Vegetation {
		out[k] = v
	}
	return out
}

// stageA flattens every sector's items and nodes into the global index.
func stageA(sectors SectorSet, st *assemblyState) {
	keys := make([]string, 0, len(sectors.Sectors))
	for k := range sectors.Sectors {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		sec := sectors.Sectors[k]
		for uid, it := range sec.ItemsByUID {
			st.items[uid] = it
		}
		for uid, n := range sec.NodesByUID {
			st.nodes[uid] = n
		}
	}
}

func addAll(set map[uint64]bool, uids []uint64) {
	for _, u := range uids {
		set[u] = true
	}
}

func startEnd(uids []uint64) (uint64, uint64) {
	if len(uids) == 0 {
		return 0, 0
	}
	if len(uids) == 1 {
		return uids[0], uids[0]
	}
	return uids[0], uids[len(uids)-1]
}

// stageB dispatches every item by type into the reference-check buckets
// described in the assembly pass's reference table.
func stageB(defs DefinitionSet, st *assemblyState) {
	uids := make([]uint64, 0, len(st.items))
	for uid := range st.items {
		uids = append(uids, uid)
	}
	sort.Slice(uids, func(i, j int) bool { return uids[i] < uids[j] })

	for _, uid := range uids {
		it := st.items[uid]
		switch it.Type {
		case ItemCity:
			st.cityAreas[it.Token] = append(st.cityAreas[it.Token], CityArea{X: it.X, Y: it.Y, Hidden: it.Flags&1 != 0})

		case ItemRoad:
			s, e := startEnd(it.NodeUIDs)
			addAll(st.referenced, []uint64{s, e})
			addAll(st.elevation, []uint64{s, e})
			if _, ok := defs.RoadLooks[it.Token]; !ok && it.Token != "" {
				st.warn("worldmap: road %d references unknown roadLook %q", it.UID, it.Token)
			}

		case ItemPrefab:
			addAll(st.referenced, it.NodeUIDs)
			addAll(st.elevation, it.NodeUIDs)
			st.prefabs = append(st.prefabs, it)
			st.prefabsByUID[it.UID] = it
			st.poiful = append(st.poiful, it)
			if _, ok := defs.Prefabs[it.Token]; !ok && it.Token != "" {
				st.warn("worldmap: prefab %d references unknown description %q", it.UID, it.Token)
			}

		case ItemMapArea:
			addAll(st.referenced, it.NodeUIDs)
			addAll(st.elevation, it.NodeUIDs)
			st.mapAreas = append(st.mapAreas, it)

		case ItemMapOverlay:
			if len(it.NodeUIDs) > 0 {
				addAll(st.referenced, it.NodeUIDs[:1])
			}
			st.poiful = append(st.poiful, it)

		case ItemFerry:
			if it.Token != "" {
				if _, ok := defs.Ferries[it.Token]; ok {
					if len(it.NodeUIDs) > 0 {
						addAll(st.referenced, it.NodeUIDs[:1])
					}
					st.poiful = append(st.poiful, it)
				} else {
					st.warn("worldmap: ferry item %d references unknown ferry %q", it.UID, it.Token)
				}
				st.ferryItemsByToken[it.Token] = it
			}

		case ItemCompany:
			if len(it.NodeUIDs) > 0 {
				addAll(st.referenced, it.NodeUIDs[:1])
			}
			st.poiful = append(st.poiful, it)

		case ItemCutscene:
			if len(it.NodeUIDs) > 0 {
				addAll(st.referenced, it.NodeUIDs[:1])
			}
			st.cutscenes = append(st.cutscenes, it)
			st.poiful = append(st.poiful, it)

		case ItemTrigger:
			addAll(st.referenced, it.NodeUIDs)
			st.triggers = append(st.triggers, it)
			st.poiful = append(st.poiful, it)

		case ItemModel:
			if _, ok := defs.Models[it.Token]; ok {
				if len(it.NodeUIDs) > 0 {
					addAll(st.referenced, it.NodeUIDs[:1])
				}
				st.models = append(st.models, it)
			} else if _, ok := defs.Vegetation[it.Token]; ok {
				if len(it.NodeUIDs) > 0 {
					addAll(st.elevation, it.NodeUIDs[:1])
				}
			} else if it.Token != "" {
				st.warn("worldmap: model item %d references unknown model %q", it.UID, it.Token)
			}

		case ItemTerrain, ItemBuilding, ItemCurve:
			s, e := startEnd(it.NodeUIDs)
			addAll(st.elevation, []uint64{s, e})

		case ItemTrajectory:
			addAll(st.referenced, it.NodeUIDs)
			st.trajectories = append(st.trajectories, it)

		default:
			st.warn("worldmap: item %d has unrecognized type %q", it.UID, it.Type)
		}
	}
}

// stageH materializes the referenced/elevation node arrays, dropping any
// UID not found in the global node index.
func stageH(st *assemblyState) (nodes, elevation []Point) {
	nodes = resolveNodePoints(st, st.referenced)
	elevation = resolveNodePoints(st, st.elevation)
	return nodes, elevation
}

func resolveNodePoints(st *assemblyState, set map[uint64]bool) []Point {
	uids := make([]uint64, 0, len(set))
	for u := range set {
		uids = append(uids, u)
	}
	sort.Slice(uids, func(i, j int) bool { return uids[i] < uids[j] })

	out := make([]Point, 0, len(uids))
	for _, u := range uids {
		if n, ok := st.nodes[u]; ok {
			out = append(out, Point{X: n.X, Y: n.Y})
		}
	}
	return out
}

func computeStats(warnings []string) Stats {
	var s Stats
	for _, w := range warnings {
		switch {
		case containsAny(w, "unknown", "references"):
			s.UnknownTokenRefs++
		case containsAny(w, "locale"):
			s.MissingLocaleEntries++
		case containsAny(w, "malformed sector key"):
			s.MalformedSectorKeys++
		case containsAny(w, "parsing"):
			s.SectorParseErrors++
		}
	}
	return s
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
