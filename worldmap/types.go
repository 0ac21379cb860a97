// Package worldmap aggregates per-sector item/node streams with external
// definition dictionaries into a unified map data bundle: cross-reference
// checks, point-of-interest classification, city/ferry augmentation and
// road-split detection.
package worldmap

// ItemType is the closed set of sector item kinds the assembly pass
// dispatches on.
type ItemType string

const (
	ItemCity       ItemType = "City"
	ItemRoad       ItemType = "Road"
	ItemPrefab     ItemType = "Prefab"
	ItemMapArea    ItemType = "MapArea"
	ItemMapOverlay ItemType = "MapOverlay"
	ItemFerry      ItemType = "Ferry"
	ItemCompany    ItemType = "Company"
	ItemCutscene   ItemType = "Cutscene"
	ItemTrigger    ItemType = "Trigger"
	ItemModel      ItemType = "Model"
	ItemTerrain    ItemType = "Terrain"
	ItemBuilding   ItemType = "Building"
	ItemCurve      ItemType = "Curve"
	ItemTrajectory ItemType = "TrajectoryItem"
)

// MapOverlay sub-tags.
const (
	OverlayRoad     = "Road"
	OverlayParking  = "Parking"
	OverlayLandmark = "Landmark"
)

// SpawnPoint is a prefab-local spawn point: a facility type and its
// prefab-space coordinates.
type SpawnPoint struct {
	Type string
	X, Y float64
}

// TriggerPoint is a prefab-local trigger point: an action name and the
// map-space node UIDs it references.
type TriggerPoint struct {
	Action   string
	NodeUIDs []uint64
}

// Item is one sector item record, as produced by the external per-sector
// binary parser. Not every field is meaningful for every Type; callers
// populate the ones relevant to the item's kind.
type Item struct {
	UID     uint64
	Type    ItemType
	X, Y    float64
	SectorX int
	SectorY int

	Token   string // city/roadLook/company/ferry/model/overlay token
	SubTag  string // MapOverlay: Road/Parking/Landmark
	Flags   uint64

	NodeUIDs []uint64 // start/end or "all", depending on Type

	SpawnPoints   []SpawnPoint   // Prefab
	TriggerPoints []TriggerPoint // Prefab, Trigger

	Scheme string // Building.scheme
	Model  string // Curve.model

	DLCGuard int

	Name          string
	NameLocalized string

	IsTrain bool // Ferry
}

// Node is one sector node record.
type Node struct {
	UID     uint64
	X, Y    float64
	SectorX int
	SectorY int
}

// Point is a resolved map-space position.
type Point struct{ X, Y float64 }

// SectorParser is the narrow interface over the external per-sector
// binary parser, producing items and nodes with UIDs from a decompressed
// .base/.aux payload.
type SectorParser interface {
	ParseSector(data []byte) (items []Item, nodes []Node, err error)
}

// PrefabDescription is the subset of an external prefab description the
// assembly pass needs: its spawn and trigger points, in prefab-local
// space.
type PrefabDescription struct {
	Token         string
	SpawnPoints   []SpawnPoint
	TriggerPoints []TriggerPoint
}

// CityDef is a definition-file city record.
type CityDef struct {
	Token         string
	Name          string
	NameLocalized string
}

// FerryConnectionDef is one connection leg of a definition-file ferry.
type FerryConnectionDef struct {
	Token string
}

// FerryDef is a definition-file ferry record.
type FerryDef struct {
	Token         string
	Name          string
	NameLocalized string
	IsTrain       bool
	Connections   []FerryConnectionDef
}

// CompanyDef is a definition-file company record.
type CompanyDef struct {
	Token         string
	Name          string
	NameLocalized string
}

// ModelCategory distinguishes building models (node-referenced) from
// vegetation models (elevation-relevant only).
type ModelCategory string

const (
	ModelCategoryBuilding   ModelCategory = "building"
	ModelCategoryVegetation ModelCategory = "vegetation"
)

// ModelDef is a definition-file model record.
type ModelDef struct {
	Token    string
	Category ModelCategory
}

// ViewpointDef maps a cutscene UID to its locale label token.
type ViewpointDef struct {
	UID        uint64
	LabelToken string
}

// MileageTargetDef is a definition-file mileage target; X/Y are nil when
// the target instead carries a node UID to resolve at assembly time.
type MileageTargetDef struct {
	Token   string
	X, Y    *float64
	NodeUID uint64
}

// RoadLookDef, CountryDef, AchievementDef and RouteDef are opaque
// token-keyed definitions the assembly pass only needs to validate
// references against; their display data passes through unchanged.
type RoadLookDef struct{ Token string }
type CountryDef struct {
	Token string
	Name  string
}
type AchievementDef struct{ Token string }
type RouteDef struct{ Token string }

// DefinitionSet bundles every external definition dictionary the
// assembly pass cross-references against, each keyed by its token
// (Viewpoints keyed by UID instead, per its own identity).
type DefinitionSet struct {
	Roads           map[string]RoadLookDef
	Prefabs         map[string]PrefabDescription
	Cities          map[string]CityDef
	Ferries         map[string]FerryDef
	Companies       map[string]CompanyDef
	Models          map[string]ModelDef
	Vegetation      map[string]ModelDef
	Viewpoints      map[uint64]ViewpointDef
	MileageTargets  map[string]MileageTargetDef
	Countries       map[string]CountryDef
	Achievements    map[string]AchievementDef
	Routes          map[string]RouteDef
	RoadLooks       map[string]RoadLookDef
}

// POI is one emitted point of interest.
type POI struct {
	Type          string
	Icon          string
	X, Y          float64
	Label         string
	FromItemType  string
	DLCGuard      int
	NodeUIDs      []uint64
}

// City is a fully resolved city record: its definition plus the
// non-hidden sector area used for its position.
type City struct {
	Token string
	Name  string
	X, Y  float64
	Areas []CityArea
}

// CityArea is one sector-level city area backing a City.
type CityArea struct {
	X, Y   float64
	Hidden bool
}

// Ferry is a fully resolved ferry record with connection endpoints.
type Ferry struct {
	Token       string
	Name        string
	IsTrain     bool
	X, Y        float64
	Connections []FerryConnection
}

// FerryConnection is one resolved ferry connection leg.
type FerryConnection struct {
	Token string
	X, Y  float64
}

// Company is an emitted company entry with its resolved position.
type Company struct {
	Token string
	Name  string
	X, Y  float64
}

// Divider is a non-terrain divider item accumulated globally during
// Stage F, for callers that want to render or inspect them directly.
type Divider struct {
	Kind     string // "building" or "curve"
	SectorX  int
	SectorY  int
	NodeUIDs []uint64
}

// Road is an emitted road record, flagged when a nearby divider suggests
// it renders as a visually split carriageway.
type Road struct {
	UID           uint64
	RoadLook      string
	StartNodeUID  uint64
	EndNodeUID    uint64
	MaybeDivided  bool
}

// MileageTarget is an emitted mileage target with a resolved position.
type MileageTarget struct {
	Token string
	X, Y  float64
}

// MapData is the unified, emitted map data bundle (§6 of the assembly
// pass's contract).
type MapData struct {
	Nodes      []Point
	Elevation  []Point
	Roads      []Road
	Ferries    []Ferry
	Prefabs    []Item
	Companies  []Company
	Models     []Item
	MapAreas   []Item
	POIs       []POI
	Dividers   []Divider
	Triggers   []Item
	Trajectories []Item
	Cutscenes  []Item

	Countries          map[string]CountryDef
	Cities             []City
	CompanyDefs        map[string]CompanyDef
	RoadLooks          map[string]RoadLookDef
	PrefabDescriptions map[string]PrefabDescription
	ModelDescriptions  map[string]ModelDef
	Achievements       map[string]AchievementDef
	Routes             map[string]RouteDef
	MileageTargets     []MileageTarget
}

// Result bundles the emitted map data with the icon set and a read-only
// summary of every warning/error recorded during assembly.
type Result struct {
	Map     string
	Data    MapData
	Icons   map[string][]byte
	Stats   Stats
	Warnings []string

	// NoPOICompanies lists company tokens with no matching icon (S7:
	// companies still resolve to a fallback position, they just render
	// without a dedicated POI icon).
	NoPOICompanies []string

	// FallbackPOICompanies lists company tokens whose position came from
	// the item's own node rather than a resolved CompanyPos spawn point.
	FallbackPOICompanies []string
}

// Stats counts per-stage warnings/errors, a read-only summary over the
// Warnings already accumulated during assembly — not new classification
// logic, just a convenient tally for callers that don't want to scrape
// log output.
type Stats struct {
	UnknownTokenRefs   int
	MissingLocaleEntries int
	MalformedSectorKeys int
	SectorParseErrors   int
}
