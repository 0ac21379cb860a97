package worldmap

import "testing"

func TestStageDCombinesAreasAnchoredOnNonHidden(t *testing.T) {
	st := &assemblyState{
		cityAreas: map[string][]CityArea{
			"vegas": {
				{X: 1, Y: 1, Hidden: true},
				{X: 5, Y: 6, Hidden: false},
			},
		},
	}
	defs := baseDefs()
	defs.Cities["vegas"] = CityDef{Token: "vegas", Name: "Las Vegas"}

	cities := stageD(st, defs)
	if len(cities) != 1 {
		t.Fatalf("cities = %+v, want 1", cities)
	}
	if cities[0].X != 5 || cities[0].Y != 6 {
		t.Errorf("city position = {%v %v}, want {5 6}", cities[0].X, cities[0].Y)
	}
	if len(cities[0].Areas) != 2 {
		t.Errorf("Areas = %+v, want 2", cities[0].Areas)
	}
}

func TestStageDSkipsCityWithOnlyHiddenAreas(t *testing.T) {
	st := &assemblyState{
		cityAreas: map[string][]CityArea{"ghost": {{X: 1, Y: 1, Hidden: true}}},
	}
	defs := baseDefs()
	defs.Cities["ghost"] = CityDef{Token: "ghost"}

	if cities := stageD(st, defs); len(cities) != 0 {
		t.Errorf("cities = %+v, want none", cities)
	}
}

func TestStageDSkipsDefWithNoSectorAreas(t *testing.T) {
	st := &assemblyState{cityAreas: map[string][]CityArea{}}
	defs := baseDefs()
	defs.Cities["phantom"] = CityDef{Token: "phantom"}

	if cities := stageD(st, defs); len(cities) != 0 {
		t.Errorf("cities = %+v, want none", cities)
	}
}
