package worldmap

import "github.com/trucksim/scsarchive"

// resolveLabel is the localization helper: for a record carrying name and
// an optional nameLocalized token, it replaces the display name with the
// locale lookup (token normalized the same way scsarchive.StripLocaleTokenMarkers
// does) when present, falling back to name otherwise.
func resolveLabel(locale map[string]string, name, nameLocalized string) string {
	if nameLocalized == "" {
		return name
	}
	key := scsarchive.StripLocaleTokenMarkers(nameLocalized)
	if v, ok := locale[key]; ok {
		return v
	}
	return name
}

// localeLookup resolves key directly against the locale table, stripping
// '@' markers first, reporting whether the key was found.
func localeLookup(locale map[string]string, key string) (string, bool) {
	v, ok := locale[scsarchive.StripLocaleTokenMarkers(key)]
	return v, ok
}
