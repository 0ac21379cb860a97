package worldmap

// stageD runs Stage D, city augmentation: for each definition city, find
// its sector-level city areas (already bucketed by Stage B) and combine
// into a complete city record. At least one area must be non-hidden
// ("location"); its position anchors the city.
func stageD(st *assemblyState, defs DefinitionSet) []City {
	var cities []City
	for token, def := range defs.Cities {
		cityAreas, ok := st.cityAreas[token]
		if !ok {
			continue
		}

		x, y := 0.0, 0.0
		found := false
		for _, a := range cityAreas {
			if !a.Hidden {
				x, y = a.X, a.Y
				found = true
				break
			}
		}
		if !found {
			continue
		}

		cities = append(cities, City{
			Token: token,
			Name:  def.Name,
			X:     x,
			Y:     y,
			Areas: cityAreas,
		})
	}
	return cities
}
