package scsarchive

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseLocaleBundle(t *testing.T) {
	raw := []byte(`
# a comment
// another comment style

@city_name_berlin@="Berlin"
city_name_paris="Paris"
no_quotes=Madrid
`)
	got, err := parseLocaleBundle(raw)
	require.NoError(t, err)

	want := map[string]string{
		"city_name_berlin": "Berlin",
		"city_name_paris":  "Paris",
		"no_quotes":        "Madrid",
	}
	require.Equal(t, want, got)
}

func TestParseLocaleBundleIgnoresMalformedLines(t *testing.T) {
	raw := []byte("this line has no equals sign\nreal_key=value\n")
	got, err := parseLocaleBundle(raw)
	require.NoError(t, err)
	require.Equal(t, map[string]string{"real_key": "value"}, got)
}

func TestStripLocaleTokenMarkers(t *testing.T) {
	cases := map[string]string{
		"@city_name@": "city_name",
		"plain_key":   "plain_key",
		"@@double@@":  "double",
		"":            "",
	}
	for in, want := range cases {
		require.Equal(t, want, StripLocaleTokenMarkers(in))
	}
}
