package vectorize

import (
	"image"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/paulmach/orb"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/ironsheep/geo-features-mcp/internal/features"
)

func newTestVectorizer(t *testing.T) *Vectorizer {
	t.Helper()
	v, err := New(DefaultOptions(), nil)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return v
}

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestFromMask_Rectangle(t *testing.T) {
	v := newTestVectorizer(t)
	mask := newMask(100, 100, image.Rect(20, 30, 60, 50))

	fc, err := v.FromMask(mask, features.Buildings)
	if err != nil {
		t.Fatalf("FromMask failed: %v", err)
	}
	if len(fc.Features) != 1 {
		t.Fatalf("expected 1 feature, got %d", len(fc.Features))
	}

	f := fc.Features[0]
	if f.ID != 1 {
		t.Errorf("ID: got %v, want 1", f.ID)
	}
	if f.Properties["name"] != "Feature 1" {
		t.Errorf("name: got %v", f.Properties["name"])
	}
	if f.Properties["feature_type"] != "buildings" {
		t.Errorf("feature_type: got %v", f.Properties["feature_type"])
	}
	if f.Properties["color"] != "#ffff00" {
		t.Errorf("color: got %v", f.Properties["color"])
	}

	poly, ok := f.Geometry.(orb.Polygon)
	if !ok {
		t.Fatalf("geometry is %T, want orb.Polygon", f.Geometry)
	}
	if len(poly) != 1 || len(poly[0]) != 5 {
		t.Fatalf("expected a single 5-point ring, got %v", poly)
	}
	if poly[0].Orientation() != orb.CCW {
		t.Errorf("exterior ring is not counter-clockwise: %v", poly[0])
	}

	b := poly.Bound()
	if !approx(b.Min.Lon(), -74.6) || !approx(b.Max.Lon(), -73.8) {
		t.Errorf("longitude range: got %v..%v, want -74.6..-73.8", b.Min.Lon(), b.Max.Lon())
	}
	if !approx(b.Min.Lat(), 41.0) || !approx(b.Max.Lat(), 41.4) {
		t.Errorf("latitude range: got %v..%v, want 41.0..41.4", b.Min.Lat(), b.Max.Lat())
	}

	if fc.ExtraMembers["feature_type"] != "buildings" {
		t.Errorf("collection feature_type: got %v", fc.ExtraMembers["feature_type"])
	}
}

func TestFromMask_Empty(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	v, err := New(DefaultOptions(), zap.New(core))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	fc, err := v.FromMask(newMask(50, 50), features.Water)
	if err != nil {
		t.Fatalf("FromMask failed: %v", err)
	}
	if len(fc.Features) != 0 {
		t.Errorf("expected no features, got %d", len(fc.Features))
	}
	if logs.FilterMessage("no polygons found in mask").Len() != 1 {
		t.Errorf("expected a warning for the empty mask, got %v", logs.All())
	}

	data, err := fc.MarshalJSON()
	if err != nil {
		t.Fatalf("MarshalJSON failed: %v", err)
	}
	if !strings.Contains(string(data), `"features":[]`) {
		t.Errorf("empty collection should encode an empty features array: %s", data)
	}
}

func TestFromMask_Counts(t *testing.T) {
	tests := []struct {
		name  string
		rects []image.Rectangle
		want  int
	}{
		{"small blob dropped", []image.Rectangle{image.Rect(5, 5, 10, 10)}, 0},
		{"blob of exactly min area kept", []image.Rectangle{image.Rect(5, 5, 15, 10)}, 1},
		{"small blob beside large", []image.Rectangle{image.Rect(60, 60, 90, 90), image.Rect(5, 5, 10, 10)}, 1},
		{"close neighbours merged", []image.Rectangle{image.Rect(10, 10, 30, 30), image.Rect(33, 10, 53, 30)}, 1},
		{"distant neighbours kept apart", []image.Rectangle{image.Rect(10, 10, 30, 30), image.Rect(60, 10, 80, 30)}, 2},
		{"island inside outline dropped", []image.Rectangle{
			image.Rect(10, 10, 50, 12), image.Rect(10, 48, 50, 50),
			image.Rect(10, 10, 12, 50), image.Rect(48, 10, 50, 50),
			image.Rect(25, 25, 35, 35),
		}, 1},
	}

	v := newTestVectorizer(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fc, err := v.FromMask(newMask(100, 100, tt.rects...), features.Buildings)
			if err != nil {
				t.Fatalf("FromMask failed: %v", err)
			}
			if len(fc.Features) != tt.want {
				t.Errorf("expected %d features, got %d", tt.want, len(fc.Features))
			}
		})
	}
}

func TestFromMask_NumberingAndStyle(t *testing.T) {
	v := newTestVectorizer(t)
	mask := newMask(100, 100, image.Rect(10, 10, 30, 30), image.Rect(60, 10, 80, 30))

	fc, err := v.FromMask(mask, features.Roads)
	if err != nil {
		t.Fatalf("FromMask failed: %v", err)
	}
	if len(fc.Features) != 2 {
		t.Fatalf("expected 2 features, got %d", len(fc.Features))
	}
	for i, f := range fc.Features {
		if f.ID != i+1 {
			t.Errorf("feature %d: ID %v", i, f.ID)
		}
		if f.Properties["weight"] != 3 {
			t.Errorf("feature %d: weight %v, want 3", i, f.Properties["weight"])
		}
		if f.Properties["color"] != "#ff0000" {
			t.Errorf("feature %d: color %v", i, f.Properties["color"])
		}
	}

	// Raster order puts the left rectangle first.
	first := fc.Features[0].Geometry.Bound()
	second := fc.Features[1].Geometry.Bound()
	if first.Max.Lon() >= second.Min.Lon() {
		t.Errorf("features out of order: %v then %v", first, second)
	}
}

func TestPolygons_NotRegularized(t *testing.T) {
	opts := DefaultOptions()
	opts.Regularize = false
	v, err := New(opts, nil)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	// L shape filling 75% of its box
	mask := newMask(60, 60, image.Rect(10, 10, 30, 20), image.Rect(10, 20, 20, 30))
	rings := v.Polygons(mask)
	if len(rings) != 1 {
		t.Fatalf("expected 1 ring, got %d", len(rings))
	}
	if len(rings[0]) != 7 {
		t.Errorf("expected the L outline to keep 6 corners, got %v", rings[0])
	}

	opts.Regularize = true
	v, _ = New(opts, nil)
	if rings := v.Polygons(mask); len(rings[0]) != 7 {
		t.Errorf("L outline below the snap ratio should not be boxed: %v", rings[0])
	}
}

func TestFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "mask.png")

	img := image.NewGray(image.Rect(0, 0, 64, 64))
	for y := 16; y < 48; y++ {
		for x := 8; x < 40; x++ {
			img.Pix[img.PixOffset(x, y)] = 200
		}
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("encode: %v", err)
	}
	f.Close()

	v := newTestVectorizer(t)
	fc, err := v.FromFile(path, features.Trees)
	if err != nil {
		t.Fatalf("FromFile failed: %v", err)
	}
	if len(fc.Features) != 1 {
		t.Errorf("expected 1 feature, got %d", len(fc.Features))
	}

	if _, err := v.FromFile(filepath.Join(dir, "missing.png"), features.Trees); err == nil {
		t.Error("expected error for missing mask")
	}
}

func TestSaveLoad(t *testing.T) {
	v := newTestVectorizer(t)
	fc, err := v.FromMask(newMask(100, 100, image.Rect(20, 30, 60, 50)), features.Buildings)
	if err != nil {
		t.Fatalf("FromMask failed: %v", err)
	}

	dir := t.TempDir()
	name, err := Save(fc, dir)
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if !regexp.MustCompile(`^[0-9a-f]{32}\.geojson$`).MatchString(name) {
		t.Errorf("unexpected filename %q", name)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir failed: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("expected only the saved file, got %d entries", len(entries))
	}

	loaded, err := Load(filepath.Join(dir, name))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(loaded.Features) != 1 {
		t.Fatalf("expected 1 feature, got %d", len(loaded.Features))
	}
	if loaded.ExtraMembers["feature_type"] != "buildings" {
		t.Errorf("collection feature_type: got %v", loaded.ExtraMembers["feature_type"])
	}
	got := loaded.Features[0]
	if got.ID != float64(1) {
		t.Errorf("ID: got %v (%T)", got.ID, got.ID)
	}
	if got.Properties["name"] != "Feature 1" {
		t.Errorf("name: got %v", got.Properties["name"])
	}
	if _, ok := got.Geometry.(orb.Polygon); !ok {
		t.Errorf("geometry is %T, want orb.Polygon", got.Geometry)
	}
}

func TestSave_MissingDir(t *testing.T) {
	fc := NewCollection(features.Other)
	if _, err := Save(fc, filepath.Join(t.TempDir(), "nope")); err == nil {
		t.Error("expected error for missing directory")
	}
}

func TestLoad_Errors(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.geojson")
	if err := os.WriteFile(bad, []byte("not json"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	if _, err := Load(bad); err == nil {
		t.Error("expected error for invalid json")
	}
	if _, err := Load(filepath.Join(dir, "missing.geojson")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestValidate(t *testing.T) {
	const ring = `[[[0,0],[1,0],[1,1],[0,0]]]`
	feature := func(id, props string) string {
		return `{"type":"FeatureCollection","features":[{"type":"Feature","id":` + id +
			`,"geometry":{"type":"Polygon","coordinates":` + ring + `},"properties":` + props + `}]}`
	}

	tests := []struct {
		name    string
		doc     string
		wantErr bool
	}{
		{"empty collection", `{"type":"FeatureCollection","features":[]}`, false},
		{"valid feature", feature("1", `{"name":"Feature 1","feature_type":"water","color":"#0000ff","fillOpacity":0.4,"weight":2}`), false},
		{"id zero", feature("0", `{"name":"Feature 1","feature_type":"water"}`), true},
		{"fractional id", feature("1.5", `{"name":"Feature 1","feature_type":"water"}`), true},
		{"missing name", feature("1", `{"feature_type":"water"}`), true},
		{"uppercase colour", feature("1", `{"name":"a","feature_type":"water","color":"#FF0000"}`), true},
		{"opacity above one", feature("1", `{"name":"a","feature_type":"water","fillOpacity":1.5}`), true},
		{"wrong type", `{"type":"Feature","features":[]}`, true},
		{"point geometry", `{"type":"FeatureCollection","features":[{"type":"Feature","id":1,"geometry":{"type":"Point","coordinates":[0,0]},"properties":{"name":"a","feature_type":"b"}}]}`, true},
		{"not json", `{`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate([]byte(tt.doc))
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestOptionsValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Options)
		wantErr bool
	}{
		{"defaults", func(o *Options) {}, false},
		{"merging disabled", func(o *Options) { o.MergeDistance = 0 }, false},
		{"negative min area", func(o *Options) { o.MinArea = -1 }, true},
		{"negative tolerance", func(o *Options) { o.SimplifyTolerance = -0.5 }, true},
		{"inverted latitude", func(o *Options) { o.Bounds.MinLat, o.Bounds.MaxLat = 42, 40 }, true},
		{"empty longitude", func(o *Options) { o.Bounds.MaxLon = o.Bounds.MinLon }, true},
		{"latitude out of range", func(o *Options) { o.Bounds.MaxLat = 91 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := DefaultOptions()
			tt.modify(&opts)
			err := opts.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if _, err := New(opts, nil); (err != nil) != tt.wantErr {
				t.Errorf("New() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestBoundsProjection(t *testing.T) {
	proj := DefaultBounds().Projection(100, 200)

	tests := []struct {
		px, want orb.Point
	}{
		{orb.Point{0, 0}, orb.Point{-75, 42}},
		{orb.Point{100, 200}, orb.Point{-73, 40}},
		{orb.Point{50, 100}, orb.Point{-74, 41}},
		{orb.Point{100, 0}, orb.Point{-73, 42}},
	}
	for _, tt := range tests {
		got := proj(tt.px)
		if !approx(got[0], tt.want[0]) || !approx(got[1], tt.want[1]) {
			t.Errorf("proj(%v) = %v, want %v", tt.px, got, tt.want)
		}
	}
}
