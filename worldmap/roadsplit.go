package worldmap

import "math"

// stageF runs Stage F, road-split detection: for each sector, partition
// items into roads and dividers (terrains, buildings on the configured
// scheme, curves on the configured model list), then flag a road as
// maybeDivided when some divider in the same sector has endpoints within
// the configured distance of the road's endpoints, in either
// orientation. Non-terrain dividers are accumulated globally and their
// endpoint nodes are added to the referenced set.
func stageF(sectors SectorSet, st *assemblyState, cfg DividerConfig) ([]Divider, []Road) {
	var dividers []Divider
	var roads []Road

	for _, sec := range sectors.Sectors {
		var sectorRoads []Item
		var sectorDividers []Item

		for _, it := range sec.ItemsByUID {
			switch it.Type {
			case ItemRoad:
				sectorRoads = append(sectorRoads, it)
			case ItemTerrain:
				sectorDividers = append(sectorDividers, it)
			case ItemBuilding:
				if it.Scheme == cfg.BuildingScheme {
					sectorDividers = append(sectorDividers, it)
				}
			case ItemCurve:
				if isDividerModel(it.Model, cfg.CurveModels) {
					sectorDividers = append(sectorDividers, it)
				}
			}
		}

		for _, d := range sectorDividers {
			if d.Type != ItemTerrain {
				s, e := startEnd(d.NodeUIDs)
				addAll(st.referenced, []uint64{s, e})
				dividers = append(dividers, Divider{
					Kind:     dividerKind(d.Type),
					SectorX:  d.SectorX,
					SectorY:  d.SectorY,
					NodeUIDs: d.NodeUIDs,
				})
			}
		}

		for _, r := range sectorRoads {
			rs, re := startEnd(r.NodeUIDs)
			rsPt, rsOK := st.nodes[rs]
			rePt, reOK := st.nodes[re]

			maybeDivided := false
			if rsOK && reOK {
				for _, d := range sectorDividers {
					ds, de := startEnd(d.NodeUIDs)
					dsPt, dsOK := st.nodes[ds]
					dePt, deOK := st.nodes[de]
					if !dsOK || !deOK {
						continue
					}
					if withinThreshold(rsPt, rePt, dsPt, dePt, cfg.DistanceThreshold) {
						maybeDivided = true
						break
					}
				}
			}

			roads = append(roads, Road{
				UID:          r.UID,
				RoadLook:     r.Token,
				StartNodeUID: rs,
				EndNodeUID:   re,
				MaybeDivided: maybeDivided,
			})
		}
	}

	return dividers, roads
}

func dividerKind(t ItemType) string {
	if t == ItemBuilding {
		return "building"
	}
	return "curve"
}

func isDividerModel(model string, models []string) bool {
	for _, m := range models {
		if m == model {
			return true
		}
	}
	return false
}

// withinThreshold reports whether the divider's endpoints are within
// dist of the road's endpoints in either orientation (symmetric:
// swapping the divider's start/end does not change the result).
func withinThreshold(roadStart, roadEnd, divStart, divEnd Node, dist float64) bool {
	return (euclid(roadStart, divStart) <= dist && euclid(roadEnd, divEnd) <= dist) ||
		(euclid(roadStart, divEnd) <= dist && euclid(roadEnd, divStart) <= dist)
}

func euclid(a, b Node) float64 {
	dx, dy := a.X-b.X, a.Y-b.Y
	return math.Sqrt(dx*dx + dy*dy)
}
