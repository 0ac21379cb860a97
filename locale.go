package scsarchive

import (
	"bufio"
	"bytes"
	"fmt"
	"strings"
)

// localeSalt matches the salt used for every virtual path lookup in this
// package; locale and version files live at fixed, well-known paths.
const localeSalt = 0

const packVersionPath = "version.txt"

// ReadPackVersion reads the installation's version identifier out of the
// combined archive view.
func ReadPackVersion(combined *Overlay) (string, error) {
	raw, err := combined.Read(packVersionPath, localeSalt)
	if err != nil {
		return "", fmt.Errorf("scsarchive: reading pack version: %w", err)
	}
	return strings.TrimSpace(string(raw)), nil
}

func localeBundlePath(lang string) string {
	return fmt.Sprintf("locale/%s/local.sii", lang)
}

// ReadLocale reads and parses the English (or other language) key/value
// localization bundle for lang. The bundle is a small text format: one
// "key=value" pair per line, blank lines and '#'/"//"-led comments
// ignored, values optionally double-quoted. Keys may be wrapped in '@'
// in the source file (the convention the game's own string-reference
// tokens use); ReadLocale strips it so callers can look up a bare token
// consistently with the localization helper used during map assembly.
func ReadLocale(combined *Overlay, lang string) (map[string]string, error) {
	raw, err := combined.Read(localeBundlePath(lang), localeSalt)
	if err != nil {
		return nil, fmt.Errorf("scsarchive: reading locale %q: %w", lang, err)
	}
	return parseLocaleBundle(raw)
}

func parseLocaleBundle(raw []byte) (map[string]string, error) {
	out := make(map[string]string)
	scanner := bufio.NewScanner(bytes.NewReader(raw))
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "//") {
			continue
		}
		idx := strings.IndexByte(line, '=')
		if idx < 0 {
			continue
		}
		key := StripLocaleTokenMarkers(strings.TrimSpace(line[:idx]))
		value := strings.TrimSpace(line[idx+1:])
		value = strings.Trim(value, `"`)
		if key == "" {
			continue
		}
		out[key] = value
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scsarchive: locale bundle: line %d: %w", lineNo, err)
	}
	return out, nil
}

// StripLocaleTokenMarkers strips every '@' from a locale key, the same
// normalization the localization helper applies before a lookup (spec's
// name resolver: "with all '@' stripped from the key").
func StripLocaleTokenMarkers(key string) string {
	if !strings.ContainsRune(key, '@') {
		return key
	}
	return strings.ReplaceAll(key, "@", "")
}
