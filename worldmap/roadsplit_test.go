package worldmap

import "testing"

func TestStageFFlagsRoadNearBuildingDivider(t *testing.T) {
	nodes := map[uint64]Node{
		1: {UID: 1, X: 0, Y: 0},
		2: {UID: 2, X: 100, Y: 0},
		3: {UID: 3, X: 0.5, Y: 0},
		4: {UID: 4, X: 100.5, Y: 0},
	}
	st := &assemblyState{nodes: nodes, referenced: map[uint64]bool{}}
	sectors := SectorSet{
		Sectors: map[string]*SectorData{
			"sec+0000+0000": {
				ItemsByUID: map[uint64]Item{
					10: {UID: 10, Type: ItemRoad, Token: "hw1", NodeUIDs: []uint64{1, 2}},
					11: {UID: 11, Type: ItemBuilding, Scheme: "scheme20", NodeUIDs: []uint64{3, 4}},
				},
			},
		},
	}

	dividers, roads := stageF(sectors, st, DefaultDividerConfig())
	if len(dividers) != 1 || dividers[0].Kind != "building" {
		t.Fatalf("dividers = %+v", dividers)
	}
	if len(roads) != 1 || !roads[0].MaybeDivided {
		t.Fatalf("roads = %+v, want MaybeDivided", roads)
	}
	if !st.referenced[3] || !st.referenced[4] {
		t.Error("expected divider endpoints to be added to the referenced set")
	}
}

func TestStageFIgnoresBuildingWithOtherScheme(t *testing.T) {
	nodes := map[uint64]Node{1: {UID: 1, X: 0, Y: 0}, 2: {UID: 2, X: 100, Y: 0}}
	st := &assemblyState{nodes: nodes, referenced: map[uint64]bool{}}
	sectors := SectorSet{
		Sectors: map[string]*SectorData{
			"sec+0000+0000": {
				ItemsByUID: map[uint64]Item{
					10: {UID: 10, Type: ItemRoad, NodeUIDs: []uint64{1, 2}},
					11: {UID: 11, Type: ItemBuilding, Scheme: "other_scheme", NodeUIDs: []uint64{1, 2}},
				},
			},
		},
	}
	dividers, roads := stageF(sectors, st, DefaultDividerConfig())
	if len(dividers) != 0 {
		t.Fatalf("dividers = %+v, want none", dividers)
	}
	if roads[0].MaybeDivided {
		t.Error("expected the road not to be flagged as divided")
	}
}

func TestStageFCurveModelMatch(t *testing.T) {
	cfg := DefaultDividerConfig()
	if !isDividerModel("0i03a", cfg.CurveModels) {
		t.Error("expected 0i03a to match the default curve model list")
	}
	if isDividerModel("unrelated", cfg.CurveModels) {
		t.Error("expected an unrelated model to not match")
	}
}

func TestWithinThresholdSymmetric(t *testing.T) {
	a := Node{X: 0, Y: 0}
	b := Node{X: 10, Y: 0}
	c := Node{X: 0.1, Y: 0}
	d := Node{X: 10.1, Y: 0}
	if !withinThreshold(a, b, c, d, 1) {
		t.Error("expected direct-orientation match within threshold")
	}
	if !withinThreshold(a, b, d, c, 1) {
		t.Error("expected swapped-orientation match within threshold")
	}
	if withinThreshold(a, b, c, d, 0.01) {
		t.Error("expected no match below the distance threshold")
	}
}

func TestTerrainDividerNotAccumulatedGlobally(t *testing.T) {
	nodes := map[uint64]Node{1: {UID: 1, X: 0, Y: 0}, 2: {UID: 2, X: 1, Y: 0}}
	st := &assemblyState{nodes: nodes, referenced: map[uint64]bool{}}
	sectors := SectorSet{
		Sectors: map[string]*SectorData{
			"sec+0000+0000": {
				ItemsByUID: map[uint64]Item{
					20: {UID: 20, Type: ItemTerrain, NodeUIDs: []uint64{1, 2}},
				},
			},
		},
	}
	dividers, _ := stageF(sectors, st, DefaultDividerConfig())
	if len(dividers) != 0 {
		t.Errorf("dividers = %+v, want terrain excluded from the global list", dividers)
	}
}
