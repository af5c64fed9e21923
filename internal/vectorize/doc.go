// Package vectorize converts binary feature masks into GeoJSON polygons.
//
// Foreground regions are traced along pixel edges, simplified with
// Douglas-Peucker, optionally snapped to their bounding boxes and merged
// with close neighbours. The resulting rings are stretched linearly over a
// configurable lon/lat rectangle, since uploaded images carry no
// georeferencing of their own.
//
// Every feature carries an integer id starting at 1, a "Feature n" name, its
// feature type and the map style for that type. Collections are checked
// against an embedded JSON schema before they leave the package.
package vectorize
