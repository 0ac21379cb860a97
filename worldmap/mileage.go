package worldmap

import "math"

// stageG runs Stage G, mileage-target augmentation: for each mileage
// target lacking explicit (x,y) but carrying a node UID, substitute the
// node's position, rounded to 2 decimal places.
func stageG(st *assemblyState, defs DefinitionSet) []MileageTarget {
	var out []MileageTarget

	for token, def := range defs.MileageTargets {
		if def.X != nil && def.Y != nil {
			out = append(out, MileageTarget{Token: token, X: *def.X, Y: *def.Y})
			continue
		}

		n, ok := st.nodes[def.NodeUID]
		if !ok {
			st.warn("worldmap: mileage target %q references unknown node %d", token, def.NodeUID)
			continue
		}
		out = append(out, MileageTarget{Token: token, X: round2(n.X), Y: round2(n.Y)})
	}

	return out
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
