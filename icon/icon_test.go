package icon

import (
	"image"
	"strings"
	"testing"

	"github.com/trucksim/scsarchive"
)

// fakeArchive is a minimal in-memory scsarchive.Archive, just enough to
// drive extractOne's path resolution and reads without a real container.
type fakeArchive struct {
	name  string
	files *scsarchive.EntryStore
	blobs map[uint64][]byte
}

func newFakeArchive(name string) *fakeArchive {
	return &fakeArchive{
		name:  name,
		files: scsarchive.NewEntryStore(),
		blobs: make(map[uint64][]byte),
	}
}

func (a *fakeArchive) putFile(path, content string) {
	hash := scsarchive.Key(path, 0)
	_ = a.files.Add(scsarchive.Entry{Hash: hash, Kind: scsarchive.EntryKindFile})
	a.blobs[hash] = []byte(content)
}

func (a *fakeArchive) Path() string                 { return a.name }
func (a *fakeArchive) IsValid() bool                { return true }
func (a *fakeArchive) ParseEntries() error          { return nil }
func (a *fakeArchive) Dirs() *scsarchive.EntryStore  { return scsarchive.NewEntryStore() }
func (a *fakeArchive) Files() *scsarchive.EntryStore { return a.files }
func (a *fakeArchive) Close() error                  { return nil }
func (a *fakeArchive) Read(e scsarchive.Entry) ([]byte, error) {
	b, ok := a.blobs[e.Hash]
	if !ok {
		return nil, scsarchive.ErrEntryNotFound
	}
	return b, nil
}

type fakeMaterialDecoder struct{ mat Material }

func (f fakeMaterialDecoder) DecodeMaterial([]byte) (Material, error) { return f.mat, nil }

type capturingTextureDecoder struct {
	img    image.Image
	gotAux []byte
}

func (d *capturingTextureDecoder) Decode(container, aux []byte) (image.Image, error) {
	d.gotAux = aux
	return d.img, nil
}

func TestDefaultScanRulesMatchAndStripKey(t *testing.T) {
	rules := DefaultScanRules()
	if len(rules) != 3 {
		t.Fatalf("got %d rules, want 3", len(rules))
	}

	roadRule := rules[0]
	if !roadRule.Match("road_numbers.mat") {
		t.Error("road rule should match road_numbers.mat")
	}
	if roadRule.Match("gas_ico.mat") {
		t.Error("road rule should not match a non road_-prefixed file")
	}
	if got := roadRule.StripKey("road_numbers.mat"); got != "numbers" {
		t.Errorf("StripKey = %q, want %q", got, "numbers")
	}

	companyRule := rules[1]
	if !companyRule.Match("some_company.mat") {
		t.Error("company rule should match any .mat file")
	}
	if got := companyRule.StripKey("some_company.mat"); got != "some_company" {
		t.Errorf("StripKey = %q, want %q", got, "some_company")
	}

	mapRule := rules[2]
	if !mapRule.Match("gas_ico.mat") {
		t.Error("map rule should match an allowlisted icon")
	}
	if mapRule.Match("not_in_allowlist.mat") {
		t.Error("map rule should reject a name not in the allowlist")
	}
}

func TestResolveTexturePathPrefersEffect(t *testing.T) {
	mat := Material{
		Effect:        &EffectBlock{Kind: "ui.rfx", TexturePath: "material/ui/map/x.tobj"},
		MaterialBlock: &MaterialBlock{UITexture: "material/ui/map/y.tobj"},
	}
	path, aux, ok := resolveTexturePath(mat)
	if !ok || path != "material/ui/map/x.tobj" {
		t.Fatalf("got (%q, %v), want (material/ui/map/x.tobj, true)", path, ok)
	}
	if aux != "" {
		t.Errorf("aux = %q, want empty (no ui.sdf.rfx effect)", aux)
	}
}

func TestResolveTexturePathFallsBackToMaterialBlock(t *testing.T) {
	mat := Material{MaterialBlock: &MaterialBlock{UITexture: "material/ui/map/z.tobj"}}
	path, _, ok := resolveTexturePath(mat)
	if !ok || path != "material/ui/map/z.tobj" {
		t.Fatalf("got (%q, %v), want (material/ui/map/z.tobj, true)", path, ok)
	}
}

func TestResolveTexturePathNeitherBlockPresent(t *testing.T) {
	_, _, ok := resolveTexturePath(Material{})
	if ok {
		t.Fatal("expected no resolvable texture path for an empty material")
	}
}

func TestResolveTexturePathReturnsSDFAuxPath(t *testing.T) {
	mat := Material{Effect: &EffectBlock{
		Kind:        "ui.sdf.rfx",
		TexturePath: "material/ui/map/viewpoint.tobj",
		SDFAuxPath:  "material/ui/map/viewpoint.sdf",
	}}
	path, aux, ok := resolveTexturePath(mat)
	if !ok || path != "material/ui/map/viewpoint.tobj" || aux != "material/ui/map/viewpoint.sdf" {
		t.Fatalf("got (%q, %q, %v), want (material/ui/map/viewpoint.tobj, material/ui/map/viewpoint.sdf, true)", path, aux, ok)
	}
}

func TestRewriteExtension(t *testing.T) {
	if got := rewriteExtension("material/ui/map/x.tobj", true); got != "material/ui/map/x.tobj" {
		t.Errorf("V2-backed path was rewritten: got %q", got)
	}
	if got := rewriteExtension("material/ui/map/x.tobj", false); got != "material/ui/map/x.dds" {
		t.Errorf("got %q, want material/ui/map/x.dds", got)
	}
}

func TestIsV2Backed(t *testing.T) {
	zipArchive, err := scsarchive.OpenZIP("/nonexistent-path-for-test.zip", nil)
	if err != nil {
		t.Fatalf("OpenZIP: %v", err)
	}
	if isV2Backed(zipArchive) {
		t.Error("a ZIP archive should not be considered V2-backed")
	}
}

func TestExtractOneForwardsSDFAuxiliaryData(t *testing.T) {
	arc := newFakeArchive("mod.zip")
	arc.putFile("material/ui/map/viewpoint.mat", "descriptor bytes")
	arc.putFile("material/ui/map/viewpoint.dds", "container bytes")
	arc.putFile("material/ui/map/viewpoint.sdf", "aux coefficients")

	overlay := scsarchive.NewOverlay(arc)

	matDecoder := fakeMaterialDecoder{mat: Material{
		Effect: &EffectBlock{
			Kind:        "ui.sdf.rfx",
			TexturePath: "material/ui/map/viewpoint.tobj",
			SDFAuxPath:  "material/ui/map/viewpoint.sdf",
		},
	}}
	texDecoder := &capturingTextureDecoder{img: image.NewRGBA(image.Rect(0, 0, 1, 1))}

	opts := Options{Material: matDecoder, Texture: texDecoder}
	res := Result{Icons: make(map[string][]byte)}
	rule := ScanRule{
		Dir: "material/ui/map",
		StripKey: func(name string) string {
			return strings.TrimSuffix(name, ".mat")
		},
	}

	if err := extractOne(overlay, rule, "viewpoint.mat", opts, &res); err != nil {
		t.Fatalf("extractOne: %v", err)
	}
	if string(texDecoder.gotAux) != "aux coefficients" {
		t.Errorf("aux = %q, want %q", texDecoder.gotAux, "aux coefficients")
	}
	if _, ok := res.Icons["viewpoint"]; !ok {
		t.Fatal("expected an icon entry to be recorded")
	}
}

func TestExtractOneWarnsOnUnresolvedSDFAuxiliaryTable(t *testing.T) {
	arc := newFakeArchive("mod.zip")
	arc.putFile("material/ui/map/viewpoint.mat", "descriptor bytes")
	arc.putFile("material/ui/map/viewpoint.dds", "container bytes")
	// Deliberately no viewpoint.sdf file.

	overlay := scsarchive.NewOverlay(arc)

	matDecoder := fakeMaterialDecoder{mat: Material{
		Effect: &EffectBlock{
			Kind:        "ui.sdf.rfx",
			TexturePath: "material/ui/map/viewpoint.tobj",
			SDFAuxPath:  "material/ui/map/viewpoint.sdf",
		},
	}}
	texDecoder := &capturingTextureDecoder{img: image.NewRGBA(image.Rect(0, 0, 1, 1))}

	opts := Options{Material: matDecoder, Texture: texDecoder}
	res := Result{Icons: make(map[string][]byte)}
	rule := ScanRule{
		Dir: "material/ui/map",
		StripKey: func(name string) string {
			return strings.TrimSuffix(name, ".mat")
		},
	}

	if err := extractOne(overlay, rule, "viewpoint.mat", opts, &res); err != nil {
		t.Fatalf("extractOne: %v", err)
	}
	if texDecoder.gotAux != nil {
		t.Errorf("aux = %v, want nil when the table does not resolve", texDecoder.gotAux)
	}
	if _, ok := res.Icons["viewpoint"]; !ok {
		t.Fatal("expected an icon entry to still be recorded despite the missing aux table")
	}
}
