package worldmap

import "math"

// prefabFacilityTypes is the set of prefab spawn-point types that become
// facility POIs, mapped to their fixed icon name.
var prefabFacilityTypes = map[string]string{
	"gas":            "gas_ico",
	"service":        "service_ico",
	"weigh-station":  "weigh_station_ico",
	"truck-dealer":   "dealer_ico",
	"buy":            "garage_large_ico",
	"recruitment":    "recruitment_ico",
}

// toMapPosition projects a prefab-local (x,y) into map space. The
// transform anchors on the prefab item's first referenced node (its
// origin) and, when a second node is available, rotates by the heading
// between the first two nodes — a simplified stand-in for the full
// prefab-placement math (out of scope per this system's non-goals around
// full simulation semantics).
func toMapPosition(item Item, nodes map[uint64]Node, localX, localY float64) (Point, bool) {
	if len(item.NodeUIDs) == 0 {
		return Point{}, false
	}
	origin, ok := nodes[item.NodeUIDs[0]]
	if !ok {
		return Point{}, false
	}

	angle := 0.0
	if len(item.NodeUIDs) > 1 {
		if second, ok := nodes[item.NodeUIDs[1]]; ok {
			angle = math.Atan2(second.Y-origin.Y, second.X-origin.X)
		}
	}

	sin, cos := math.Sin(angle), math.Cos(angle)
	return Point{
		X: origin.X + localX*cos - localY*sin,
		Y: origin.Y + localX*sin + localY*cos,
	}, true
}

// stageC runs Stage C, point-of-interest extraction, over every item
// stageB bucketed as "poiful". It returns the emitted POIs, the resolved
// company list, and the company tokens recorded as having no icon and as
// placed at a fallback position.
func stageC(st *assemblyState, defs DefinitionSet, icons map[string][]byte, locale map[string]string) ([]POI, []Company, []string, []string) {
	var pois []POI
	var companies []Company

	noPOICompanies := make(map[string]bool)
	fallbackPOICompanies := make(map[string]bool)

	for _, it := range st.poiful {
		switch it.Type {
		case ItemPrefab:
			pois = append(pois, extractPrefabPOIs(it, defs, st.nodes)...)

		case ItemMapOverlay:
			if p, ok := extractOverlayPOI(it, icons, locale, st); ok {
				pois = append(pois, p)
			}

		case ItemCompany:
			if p, c, ok := extractCompanyPOI(it, defs, icons, st, noPOICompanies, fallbackPOICompanies); ok {
				pois = append(pois, p)
				companies = append(companies, c)
			}

		case ItemFerry:
			if p, ok := extractFerryPOI(it, defs, locale, st.nodes); ok {
				pois = append(pois, p)
			}

		case ItemCutscene:
			if p, ok := extractCutscenePOI(it, defs, locale, st.nodes); ok {
				pois = append(pois, p)
			}

		case ItemTrigger:
			if p, ok := extractTriggerPOI(it); ok {
				pois = append(pois, p)
			}
		}
	}

	return pois, companies, setKeys(noPOICompanies), setKeys(fallbackPOICompanies)
}

func setKeys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}

func extractPrefabPOIs(it Item, defs DefinitionSet, nodes map[uint64]Node) []POI {
	var out []POI

	spawnPoints := it.SpawnPoints
	if desc, hasDesc := defs.Prefabs[it.Token]; hasDesc && len(spawnPoints) == 0 {
		// fall back to the description's own spawn-point list when the
		// sector item carries no spawn points of its own.
		spawnPoints = desc.SpawnPoints
	}

	for _, sp := range spawnPoints {
		icon, ok := prefabFacilityTypes[sp.Type]
		if !ok {
			continue
		}
		pos, ok := toMapPosition(it, nodes, sp.X, sp.Y)
		if !ok {
			continue
		}
		out = append(out, POI{Type: "facility", Icon: icon, X: pos.X, Y: pos.Y, FromItemType: "prefab"})
	}

	for _, tp := range it.TriggerPoints {
		if tp.Action != "hud_parking" {
			continue
		}
		out = append(out, POI{
			Type:         "parking",
			FromItemType: "prefab",
			DLCGuard:     it.DLCGuard,
			NodeUIDs:     tp.NodeUIDs,
		})
	}

	return out
}

func extractOverlayPOI(it Item, icons map[string][]byte, locale map[string]string, st *assemblyState) (POI, bool) {
	node, hasNode := firstNode(it, st.nodes)

	switch it.SubTag {
	case OverlayRoad:
		if it.Token == "" {
			return POI{}, false
		}
		if _, ok := icons[it.Token]; !ok {
			st.warn("worldmap: road overlay %d references unknown icon token %q", it.UID, it.Token)
		}
		if !hasNode {
			return POI{}, false
		}
		return POI{Type: "road", Icon: it.Token, X: node.X, Y: node.Y}, true

	case OverlayParking:
		if !hasNode {
			return POI{}, false
		}
		return POI{Type: "parking", FromItemType: "mapOverlay", X: node.X, Y: node.Y}, true

	case OverlayLandmark:
		if !hasNode {
			return POI{}, false
		}
		label, found := localeLookup(locale, "landmark_"+it.Token)
		if !found {
			st.warn("worldmap: landmark overlay %d missing locale label for %q", it.UID, it.Token)
		}
		return POI{Type: "landmark", Icon: "photo_sight_captured", X: node.X, Y: node.Y, Label: label}, true

	default:
		return POI{}, false
	}
}

func extractCompanyPOI(it Item, defs DefinitionSet, icons map[string][]byte, st *assemblyState, noPOI, fallbackPOI map[string]bool) (POI, Company, bool) {
	prefab, ok := st.prefabsByUID[firstUID(it.NodeUIDs)]
	if !ok {
		st.warn("worldmap: company %d references unknown prefab", it.UID)
		return POI{}, Company{}, false
	}

	if _, hasIcon := icons[it.Token]; !hasIcon {
		noPOI[it.Token] = true
	}

	var pos Point
	resolved := false
	if desc, ok := defs.Prefabs[prefab.Token]; ok {
		for _, sp := range desc.SpawnPoints {
			if sp.Type == "CompanyPos" {
				pos, resolved = toMapPosition(prefab, st.nodes, sp.X, sp.Y)
				break
			}
		}
	}
	if !resolved {
		if n, ok := firstNode(it, st.nodes); ok {
			pos = n
			resolved = true
			fallbackPOI[it.Token] = true
		}
	}
	if !resolved {
		return POI{}, Company{}, false
	}

	def, hasDef := defs.Companies[it.Token]
	name := def.Name
	if !hasDef {
		st.warn("worldmap: company %d references unknown company %q", it.UID, it.Token)
	}

	poi := POI{Type: "company", Icon: it.Token, X: pos.X, Y: pos.Y, Label: name}
	company := Company{Token: it.Token, Name: name, X: pos.X, Y: pos.Y}
	return poi, company, true
}

func extractFerryPOI(it Item, defs DefinitionSet, locale map[string]string, nodes map[uint64]Node) (POI, bool) {
	node, ok := firstNode(it, nodes)
	if !ok {
		return POI{}, false
	}
	def := defs.Ferries[it.Token]
	label := resolveLabel(locale, def.Name, def.NameLocalized)

	poiType, icon := "ferry", "port_overlay"
	if it.IsTrain {
		poiType, icon = "train", "train_ico"
	}
	return POI{Type: poiType, Icon: icon, X: node.X, Y: node.Y, Label: label}, true
}

func extractCutscenePOI(it Item, defs DefinitionSet, locale map[string]string, nodes map[uint64]Node) (POI, bool) {
	if it.Flags&0xFF != 0 {
		return POI{}, false
	}
	node, ok := firstNode(it, nodes)
	if !ok {
		return POI{}, false
	}
	vp, ok := defs.Viewpoints[it.UID]
	if !ok {
		return POI{}, false
	}
	label, _ := localeLookup(locale, vp.LabelToken)
	return POI{Type: "viewpoint", X: node.X, Y: node.Y, Label: label}, true
}

func extractTriggerPOI(it Item) (POI, bool) {
	for _, tp := range it.TriggerPoints {
		if tp.Action == "hud_parking" {
			return POI{Type: "parking", FromItemType: "trigger", NodeUIDs: it.NodeUIDs}, true
		}
	}
	return POI{}, false
}

func firstNode(it Item, nodes map[uint64]Node) (Point, bool) {
	if len(it.NodeUIDs) == 0 {
		return Point{}, false
	}
	n, ok := nodes[it.NodeUIDs[0]]
	if !ok {
		return Point{}, false
	}
	return Point{X: n.X, Y: n.Y}, true
}

func firstUID(uids []uint64) uint64 {
	if len(uids) == 0 {
		return 0
	}
	return uids[0]
}
