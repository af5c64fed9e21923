package vectorize

import (
	"fmt"

	"github.com/paulmach/orb"
)

// Bounds is the geographic rectangle an image is stretched over.
type Bounds struct {
	MinLat float64 `mapstructure:"min_lat" json:"min_lat"`
	MinLon float64 `mapstructure:"min_lon" json:"min_lon"`
	MaxLat float64 `mapstructure:"max_lat" json:"max_lat"`
	MaxLon float64 `mapstructure:"max_lon" json:"max_lon"`
}

// DefaultBounds is a generic placeholder extent; uploads carry no real
// georeferencing.
func DefaultBounds() Bounds {
	return Bounds{MinLat: 40, MinLon: -75, MaxLat: 42, MaxLon: -73}
}

// Validate checks that the bounds describe a non-empty lon/lat rectangle.
func (b Bounds) Validate() error {
	if b.MinLat < -90 || b.MaxLat > 90 {
		return fmt.Errorf("latitude out of range: %v..%v", b.MinLat, b.MaxLat)
	}
	if b.MinLon < -180 || b.MaxLon > 180 {
		return fmt.Errorf("longitude out of range: %v..%v", b.MinLon, b.MaxLon)
	}
	if b.MinLat >= b.MaxLat || b.MinLon >= b.MaxLon {
		return fmt.Errorf("empty bounds: lat %v..%v, lon %v..%v", b.MinLat, b.MaxLat, b.MinLon, b.MaxLon)
	}
	return nil
}

// Projection maps pixel coordinates of a width×height image linearly onto
// b. X grows eastward; Y is inverted so the top row maps to MaxLat.
func (b Bounds) Projection(width, height int) orb.Projection {
	w, h := float64(width), float64(height)
	return func(p orb.Point) orb.Point {
		lon := b.MinLon + p[0]/w*(b.MaxLon-b.MinLon)
		lat := b.MaxLat - p[1]/h*(b.MaxLat-b.MinLat)
		return orb.Point{lon, lat}
	}
}

// projectRing applies proj to a copy of r.
func projectRing(r orb.Ring, proj orb.Projection) orb.Ring {
	out := make(orb.Ring, len(r))
	for i, p := range r {
		out[i] = proj(p)
	}
	return out
}
