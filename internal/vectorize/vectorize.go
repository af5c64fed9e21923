package vectorize

import (
	"encoding/hex"
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/planar"
	"go.uber.org/zap"

	"github.com/ironsheep/geo-features-mcp/internal/features"
	"github.com/ironsheep/geo-features-mcp/internal/imaging"
)

// GeoJSONExt is the extension of saved feature collections.
const GeoJSONExt = ".geojson"

// regularizeRatio is the polygon/bounding-box area ratio above which a
// polygon is snapped to its bounding box.
const regularizeRatio = 0.8

// Options tunes polygon extraction.
type Options struct {
	// MinArea drops contours enclosing fewer square pixels.
	MinArea float64 `mapstructure:"min_area" json:"min_area"`

	// EpsilonFactor scales each contour's perimeter into its first
	// Douglas-Peucker tolerance.
	EpsilonFactor float64 `mapstructure:"epsilon_factor" json:"epsilon_factor"`

	// SimplifyTolerance is the fixed second-pass tolerance in pixels.
	SimplifyTolerance float64 `mapstructure:"simplify_tolerance" json:"simplify_tolerance"`

	// MergeDistance joins polygons that touch once each is grown by this
	// many pixels. Zero disables merging.
	MergeDistance float64 `mapstructure:"merge_distance" json:"merge_distance"`

	// Regularize snaps nearly rectangular polygons to their bounding box.
	Regularize bool `mapstructure:"regularize" json:"regularize"`

	// Bounds is the geographic extent the image is mapped onto.
	Bounds Bounds `mapstructure:"bounds" json:"bounds"`
}

// DefaultOptions returns the standard extraction settings.
func DefaultOptions() Options {
	return Options{
		MinArea:           50,
		EpsilonFactor:     0.002,
		SimplifyTolerance: 2.0,
		MergeDistance:     5.0,
		Regularize:        true,
		Bounds:            DefaultBounds(),
	}
}

// Validate checks the options for consistency.
func (o Options) Validate() error {
	if o.MinArea < 0 {
		return fmt.Errorf("min_area must be non-negative, got %v", o.MinArea)
	}
	if o.EpsilonFactor < 0 || o.SimplifyTolerance < 0 || o.MergeDistance < 0 {
		return errors.New("epsilon_factor, simplify_tolerance and merge_distance must be non-negative")
	}
	if err := o.Bounds.Validate(); err != nil {
		return fmt.Errorf("invalid bounds: %w", err)
	}
	return nil
}

// Vectorizer converts binary masks into GeoJSON polygons.
type Vectorizer struct {
	opts Options
	log  *zap.Logger
}

// New returns a Vectorizer. A nil logger disables logging.
func New(opts Options, log *zap.Logger) (*Vectorizer, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Vectorizer{opts: opts, log: log.Named("vectorize")}, nil
}

// Options returns the extraction settings.
func (v *Vectorizer) Options() Options { return v.opts }

// FromFile reads the mask at path and vectorizes it. Any decodable image is
// accepted; it is binarized at the midpoint first.
func (v *Vectorizer) FromFile(path string, ft features.FeatureType) (*geojson.FeatureCollection, error) {
	mask, err := imaging.LoadMask(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read mask: %w", err)
	}
	return v.FromMask(mask, ft)
}

// FromMask vectorizes a binary mask.
//
// # Steps
//
//  1. Outer contours of 8-connected foreground regions
//  2. Drop contours smaller than MinArea
//  3. Douglas-Peucker with tolerance EpsilonFactor × perimeter
//  4. Second Douglas-Peucker pass with SimplifyTolerance
//  5. Optional snap to bounding box for nearly rectangular shapes
//  6. Merge neighbours into convex hulls
//  7. Project onto Bounds and build features
//
// An empty mask yields an empty collection, not an error. The result is
// validated against the output schema before it is returned.
func (v *Vectorizer) FromMask(mask *image.Gray, ft features.FeatureType) (*geojson.FeatureCollection, error) {
	rings := v.Polygons(mask)
	if len(rings) == 0 {
		v.log.Warn("no polygons found in mask",
			zap.Int("width", mask.Bounds().Dx()),
			zap.Int("height", mask.Bounds().Dy()))
	}

	proj := v.opts.Bounds.Projection(mask.Bounds().Dx(), mask.Bounds().Dy())
	fc := NewCollection(ft)
	style := features.StyleFor(ft).Properties()
	for i, r := range rings {
		geo := orientCCW(projectRing(r, proj))
		f := geojson.NewFeature(orb.Polygon{geo})
		f.ID = i + 1
		f.Properties["name"] = fmt.Sprintf("Feature %d", i+1)
		f.Properties["feature_type"] = string(ft)
		for k, val := range style {
			f.Properties[k] = val
		}
		fc.Append(f)
	}

	if err := ValidateCollection(fc); err != nil {
		return nil, fmt.Errorf("generated feature collection is invalid: %w", err)
	}
	return fc, nil
}

// Polygons returns the simplified, merged polygon rings of mask in pixel
// coordinates.
func (v *Vectorizer) Polygons(mask *image.Gray) []orb.Ring {
	contours := FindContours(mask)

	rings := make([]orb.Ring, 0, len(contours))
	for _, c := range contours {
		if ringArea(c.Ring) < v.opts.MinArea {
			continue
		}
		r := simplifyRing(c.Ring, v.opts.EpsilonFactor*planar.Length(c.Ring))
		if r == nil {
			continue
		}
		if r = simplifyRing(r, v.opts.SimplifyTolerance); r == nil {
			continue
		}
		if v.opts.Regularize {
			r = regularize(r, regularizeRatio)
		}
		rings = append(rings, r)
	}
	extracted := len(rings)

	if v.opts.MergeDistance > 0 {
		rings = mergeNearby(rings, v.opts.MergeDistance)
	}

	v.log.Debug("polygons extracted",
		zap.Int("contours", len(contours)),
		zap.Int("kept", extracted),
		zap.Int("merged", len(rings)))
	return rings
}

// NewCollection returns an empty collection tagged with ft.
func NewCollection(ft features.FeatureType) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	fc.ExtraMembers = geojson.Properties{"feature_type": string(ft)}
	return fc
}

// Save writes fc into dir as <hex>.geojson and returns the filename.
func Save(fc *geojson.FeatureCollection, dir string) (string, error) {
	data, err := fc.MarshalJSON()
	if err != nil {
		return "", fmt.Errorf("failed to encode feature collection: %w", err)
	}

	u := uuid.New()
	name := hex.EncodeToString(u[:]) + GeoJSONExt

	tmp, err := os.CreateTemp(dir, ".geojson-*.tmp")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return "", fmt.Errorf("failed to write feature collection: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("failed to set permissions: %w", err)
	}
	if err := os.Rename(tmpName, filepath.Join(dir, name)); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("failed to move feature collection into place: %w", err)
	}
	return name, nil
}

// Load reads a feature collection previously written by Save.
func Load(path string) (*geojson.FeatureCollection, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read feature collection: %w", err)
	}
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode feature collection: %w", err)
	}
	return fc, nil
}
