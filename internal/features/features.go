// Package features defines the feature categories a user can tag an upload
// with and the map styling associated with each category.
//
// The category is carried through to the GeoJSON output and drives how the
// features are drawn; it does not change how the raster is processed.
package features

import (
	"encoding/json"
	"image/color"
	"sort"
	"strings"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// FeatureType is the category label attached to extracted features.
type FeatureType string

const (
	Buildings FeatureType = "buildings"
	Trees     FeatureType = "trees"
	Water     FeatureType = "water"
	Roads     FeatureType = "roads"
	Other     FeatureType = "other"
)

// Default is applied when an upload does not name a category.
const Default = Buildings

// aliases maps alternative spellings onto canonical types.
var aliases = map[string]FeatureType{
	"building":   Buildings,
	"tree":       Trees,
	"vegetation": Trees,
	"road":       Roads,
}

// ParseFeatureType normalizes a user-supplied category.
//
// Matching is case-insensitive and ignores surrounding whitespace. An empty
// string yields Default; anything unrecognized yields Other.
func ParseFeatureType(s string) FeatureType {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return Default
	}
	switch ft := FeatureType(s); ft {
	case Buildings, Trees, Water, Roads, Other:
		return ft
	}
	if ft, ok := aliases[s]; ok {
		return ft
	}
	return Other
}

// Known returns the canonical feature types in a stable order.
func Known() []FeatureType {
	return []FeatureType{Buildings, Trees, Water, Roads, Other}
}

// Style describes how features of one type are drawn on a map.
type Style struct {
	Color       colorful.Color
	FillColor   colorful.Color
	FillOpacity float64
	Weight      int
}

// MarshalJSON encodes the style in the Leaflet path-options shape, with
// colours as #rrggbb strings.
func (s Style) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Properties())
}

// Properties returns the style as a flat map suitable for GeoJSON feature
// properties.
func (s Style) Properties() map[string]interface{} {
	return map[string]interface{}{
		"color":       s.Color.Hex(),
		"fillColor":   s.FillColor.Hex(),
		"fillOpacity": s.FillOpacity,
		"weight":      s.Weight,
	}
}

// RGBA returns the fill colour with the given alpha (0-255), for raster
// previews.
func (s Style) RGBA(alpha uint8) color.NRGBA {
	r, g, b := s.FillColor.RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: alpha}
}

var (
	yellow = mustHex("#ffff00")
	green  = mustHex("#008000")
	blue   = mustHex("#0000ff")
	red    = mustHex("#ff0000")
)

var styles = map[FeatureType]Style{
	Buildings: {Color: yellow, FillColor: yellow, FillOpacity: 0.4, Weight: 2},
	Trees:     {Color: green, FillColor: green, FillOpacity: 0.4, Weight: 2},
	Water:     {Color: blue, FillColor: blue, FillOpacity: 0.4, Weight: 2},
	Roads:     {Color: red, FillColor: red, FillOpacity: 0.4, Weight: 3},
}

// StyleFor returns the style for ft. Unstyled types share the buildings
// palette.
func StyleFor(ft FeatureType) Style {
	if s, ok := styles[ft]; ok {
		return s
	}
	return styles[Buildings]
}

// Styles returns every known type mapped to its style, keyed by name.
func Styles() map[string]Style {
	out := make(map[string]Style, len(styles)+1)
	for _, ft := range Known() {
		out[string(ft)] = StyleFor(ft)
	}
	return out
}

// Names returns the canonical type names sorted alphabetically.
func Names() []string {
	names := make([]string, 0, len(styles)+1)
	for _, ft := range Known() {
		names = append(names, string(ft))
	}
	sort.Strings(names)
	return names
}

func mustHex(s string) colorful.Color {
	c, err := colorful.Hex(s)
	if err != nil {
		panic(err)
	}
	return c
}
