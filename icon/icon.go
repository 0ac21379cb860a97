// Package icon implements the material/icon extraction pipeline: it
// scans a configured set of directories for material descriptor files,
// resolves their texture references, and decodes each to a raster
// keyed by a stripped icon name.
package icon

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"strings"

	"github.com/trucksim/scsarchive"
)

// MaterialDecoder is the narrow interface over the external
// text-config-to-JSON converter, targeting the "icon material" schema.
type MaterialDecoder interface {
	DecodeMaterial(raw []byte) (Material, error)
}

// Material is the decoded shape of a material descriptor file, just the
// fields this pipeline inspects.
type Material struct {
	// Effect carries the "effect" block's relevant keys, when present.
	Effect *EffectBlock

	// MaterialBlock carries the "material" block's relevant keys, when
	// the descriptor has no effect block.
	MaterialBlock *MaterialBlock
}

// EffectBlock is the subset of a material's "effect" block this pipeline
// reads: the referenced texture under a "ui.rfx"/"ui.sdf.rfx" key, and
// an optional SDF auxiliary coefficient table path.
type EffectBlock struct {
	Kind        string // "ui.rfx" or "ui.sdf.rfx"
	TexturePath string
	SDFAuxPath  string
}

// MaterialBlock is the subset of a material's "material" block this
// pipeline reads.
type MaterialBlock struct {
	UITexture string
}

// ScanRule describes one scanned directory: which files within it
// qualify, and how to derive the icon's stripped key name from a
// qualifying file name.
type ScanRule struct {
	Dir string

	// Match reports whether name (the bare file name, no directory
	// prefix) qualifies under this rule. Nil means "every .mat file".
	Match func(name string) bool

	// StripKey derives the icon's map key from a qualifying file name.
	StripKey func(name string) string
}

// DefaultScanRules reproduces the distillation's default directory/filter
// table verbatim: the road-icon directory (names starting with "road_",
// prefix and ".mat" suffix stripped), the small-company-icon directory
// (every ".mat" file, suffix stripped), and the facility/landmark/UI
// icon allowlist.
func DefaultScanRules() []ScanRule {
	return []ScanRule{
		{
			Dir: "material/ui/map/road",
			Match: func(name string) bool {
				return strings.HasPrefix(name, "road_") && strings.HasSuffix(name, ".mat")
			},
			StripKey: func(name string) string {
				return strings.TrimSuffix(strings.TrimPrefix(name, "road_"), ".mat")
			},
		},
		{
			Dir: "material/ui/company/small",
			Match: func(name string) bool {
				return strings.HasSuffix(name, ".mat")
			},
			StripKey: func(name string) string {
				return strings.TrimSuffix(name, ".mat")
			},
		},
		{
			Dir: "material/ui/map",
			Match: func(name string) bool {
				_, ok := mapIconAllowlist[strings.TrimSuffix(name, ".mat")]
				return ok
			},
			StripKey: func(name string) string {
				return strings.TrimSuffix(name, ".mat")
			},
		},
	}
}

var mapIconAllowlist = map[string]bool{
	"viewpoint":            true,
	"photo_sight_captured": true,
	"parking_ico":          true,
	"gas_ico":              true,
	"service_ico":          true,
	"weigh_station_ico":    true,
	"dealer_ico":           true,
	"garage_large_ico":     true,
	"recruitment_ico":      true,
	"city_names_ico":       true,
	"companies_ico":        true,
	"road_numbers_ico":     true,
}

// TextureDecoder is the narrow interface over the external
// texture-container to raster converter (texraster.Decoder is the
// concrete default); Extract PNG-encodes its output into the icon map's
// raster blobs. aux carries the referenced SDF auxiliary coefficient
// table's bytes when the descriptor's effect block is "ui.sdf.rfx" and
// names one; it is nil otherwise.
type TextureDecoder interface {
	Decode(container []byte, aux []byte) (image.Image, error)
}

// Options configures Extract.
type Options struct {
	Rules    []ScanRule
	Material MaterialDecoder
	Texture  TextureDecoder
	Logger   interface {
		Warnf(format string, args ...any)
	}
}

func (o Options) warnf(format string, args ...any) {
	if o.Logger != nil {
		o.Logger.Warnf(format, args...)
	}
}

// Result is the extracted icon set, plus the warnings recorded along
// the way (unknown material formats, descriptors with neither an
// effect nor a material block).
type Result struct {
	Icons    map[string][]byte
	Warnings []string
}

// Extract runs the pipeline over combined using opts.Rules (defaulting
// to DefaultScanRules when empty).
func Extract(combined *scsarchive.Overlay, opts Options) (Result, error) {
	rules := opts.Rules
	if len(rules) == 0 {
		rules = DefaultScanRules()
	}

	res := Result{Icons: make(map[string][]byte)}

	for _, rule := range rules {
		if err := extractRule(combined, rule, opts, &res); err != nil {
			res.Warnings = append(res.Warnings, fmt.Sprintf("icon: scanning %s: %v", rule.Dir, err))
			opts.warnf("icon: scanning %s: %v", rule.Dir, err)
		}
	}

	return res, nil
}

func extractRule(combined *scsarchive.Overlay, rule ScanRule, opts Options, res *Result) error {
	_, dirEntry, ok := combined.LookupDir(rule.Dir, 0)
	if !ok {
		return scsarchive.ErrEntryNotFound
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
		if rule.Match != nil && !rule.Match(name) {
			continue
		}
		if err := extractOne(combined, rule, name, opts, res); err != nil {
			res.Warnings = append(res.Warnings, fmt.Sprintf("icon: %s/%s: %v", rule.Dir, name, err))
			opts.warnf("icon: %s/%s: %v", rule.Dir, name, err)
		}
	}
	return nil
}

func extractOne(combined *scsarchive.Overlay, rule ScanRule, name string, opts Options, res *Result) error {
	path := rule.Dir + "/" + name
	arc, entry, ok := combined.LookupFile(path, 0)
	if !ok {
		return scsarchive.ErrEntryNotFound
	}

	raw, err := arc.Read(entry)
	if err != nil {
		return fmt.Errorf("reading descriptor: %w", err)
	}

	mat, err := opts.Material.DecodeMaterial(raw)
	if err != nil {
		return fmt.Errorf("decoding material: %w", err)
	}

	texPath, sdfAuxPath, ok := resolveTexturePath(mat)
	if !ok {
		return fmt.Errorf("descriptor has neither an effect nor a material block")
	}
	texPath = rewriteExtension(texPath, isV2Backed(arc))

	texArc, texEntry, ok := combined.LookupFile(texPath, 0)
	if !ok {
		return fmt.Errorf("unresolved texture reference %q", texPath)
	}
	container, err := texArc.Read(texEntry)
	if err != nil {
		return fmt.Errorf("reading texture %q: %w", texPath, err)
	}

	var aux []byte
	if sdfAuxPath != "" {
		auxArc, auxEntry, ok := combined.LookupFile(sdfAuxPath, 0)
		if !ok {
			opts.warnf("icon: %s/%s: unresolved SDF auxiliary table %q", rule.Dir, name, sdfAuxPath)
		} else {
			aux, err = auxArc.Read(auxEntry)
			if err != nil {
				return fmt.Errorf("reading SDF auxiliary table %q: %w", sdfAuxPath, err)
			}
		}
	}

	img, err := opts.Texture.Decode(container, aux)
	if err != nil {
		return fmt.Errorf("decoding texture %q: %w", texPath, err)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return fmt.Errorf("encoding raster %q: %w", texPath, err)
	}

	key := name
	if rule.StripKey != nil {
		key = rule.StripKey(name)
	}
	res.Icons[key] = buf.Bytes()
	return nil
}

// resolveTexturePath returns the material's referenced texture path and,
// when its effect block is "ui.sdf.rfx" and names one, its SDF auxiliary
// coefficient table path.
func resolveTexturePath(mat Material) (texPath, sdfAuxPath string, ok bool) {
	if mat.Effect != nil && (mat.Effect.Kind == "ui.rfx" || mat.Effect.Kind == "ui.sdf.rfx") {
		if mat.Effect.Kind == "ui.sdf.rfx" {
			return mat.Effect.TexturePath, mat.Effect.SDFAuxPath, true
		}
		return mat.Effect.TexturePath, "", true
	}
	if mat.MaterialBlock != nil {
		return mat.MaterialBlock.UITexture, "", true
	}
	return "", "", false
}

// rewriteExtension rewrites a .tobj reference to .dds when the
// descriptor came from a V1/ZIP archive: a V2 texture-object entry
// synthesizes its container on read regardless of the extension named
// in the reference, but V1/ZIP entries are addressed by their literal
// on-disk name, which mods ship as a pre-built .dds container.
func rewriteExtension(path string, v2Backed bool) string {
	if v2Backed {
		return path
	}
	return strings.TrimSuffix(path, ".tobj") + ".dds"
}

func isV2Backed(a scsarchive.Archive) bool {
	_, ok := a.(*scsarchive.V2)
	return ok
}
