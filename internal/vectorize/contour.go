package vectorize

import (
	"image"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// Contour is the traced outer boundary of one 8-connected foreground
// region, in pixel-corner coordinates.
type Contour struct {
	// Ring is closed (first point == last point) and runs clockwise on
	// screen (positive shoelace area with Y pointing down).
	Ring orb.Ring

	// Start is the first pixel of the region in raster order.
	Start image.Point

	// Pixels is the number of pixels in the region.
	Pixels int
}

// Directions in tracing order: east, south, west, north. Turning right is
// d+1, turning left is d+3 (mod 4).
var (
	steps = [4]image.Point{{1, 0}, {0, 1}, {-1, 0}, {0, -1}}

	// Pixels ahead of a corner, relative to the corner, for each heading.
	// The region always lies on the right of the direction of travel.
	frontLeft  = [4]image.Point{{0, -1}, {0, 0}, {-1, 0}, {-1, -1}}
	frontRight = [4]image.Point{{0, 0}, {-1, 0}, {-1, -1}, {0, -1}}
)

const east = 0

// FindContours returns the outer contours of the foreground (non-zero)
// regions of mask.
//
// Regions are 8-connected. Only external boundaries are returned: holes are
// ignored and a region lying inside another region's outline is dropped.
// Contours are returned in raster order of their first pixel.
//
// # Algorithm
//
//  1. Labeling: flood-fill each unvisited foreground pixel to collect its
//     8-connected region
//  2. Tracing: walk the region's outline along pixel edges starting at the
//     top-left corner of its first pixel, keeping the region on the right
//     and emitting a vertex wherever the walk turns
//  3. Nesting: drop regions whose first pixel centre lies inside another
//     region's outline
//
// Tracing along pixel edges (rather than pixel centres) means a contour's
// area equals the region's pixel count when it has no holes, and single-pixel
// lines still yield a non-degenerate polygon.
func FindContours(mask *image.Gray) []Contour {
	b := mask.Bounds()
	w, h := b.Dx(), b.Dy()
	if w == 0 || h == 0 {
		return nil
	}

	labels := make([]int32, w*h)
	var contours []Contour
	next := int32(0)

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if labels[y*w+x] != 0 || mask.Pix[mask.PixOffset(b.Min.X+x, b.Min.Y+y)] == 0 {
				continue
			}
			next++
			n := floodFill(mask, labels, next, x, y)
			ring := traceBoundary(labels, next, w, h, image.Pt(x, y))
			contours = append(contours, Contour{Ring: ring, Start: image.Pt(x, y), Pixels: n})
		}
	}

	return dropNested(contours)
}

// floodFill assigns label to the 8-connected foreground region containing
// (startX, startY) and returns its size.
func floodFill(mask *image.Gray, labels []int32, label int32, startX, startY int) int {
	b := mask.Bounds()
	w, h := b.Dx(), b.Dy()
	stack := []image.Point{{X: startX, Y: startY}}
	count := 0

	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if p.X < 0 || p.X >= w || p.Y < 0 || p.Y >= h {
			continue
		}
		i := p.Y*w + p.X
		if labels[i] != 0 || mask.Pix[mask.PixOffset(b.Min.X+p.X, b.Min.Y+p.Y)] == 0 {
			continue
		}

		labels[i] = label
		count++

		// 8-connected neighbors
		for dy := -1; dy <= 1; dy++ {
			for dx := -1; dx <= 1; dx++ {
				if dx == 0 && dy == 0 {
					continue
				}
				stack = append(stack, image.Point{X: p.X + dx, Y: p.Y + dy})
			}
		}
	}
	return count
}

// traceBoundary walks the outline of the region labelled label starting at
// the top-left corner of start, which must be the region's first pixel in
// raster order.
func traceBoundary(labels []int32, label int32, w, h int, start image.Point) orb.Ring {
	inside := func(p image.Point) bool {
		return p.X >= 0 && p.Y >= 0 && p.X < w && p.Y < h && labels[p.Y*w+p.X] == label
	}

	ring := orb.Ring{toPoint(start)}
	c, d := start, east
	// Every corner is visited at most twice per incident edge.
	limit := 4 * (w + 1) * (h + 1)

	for i := 0; i < limit; i++ {
		nd := d
		switch {
		case inside(c.Add(frontLeft[d])):
			nd = (d + 3) % 4
		case inside(c.Add(frontRight[d])):
		default:
			nd = (d + 1) % 4
		}
		if nd != d && c != start {
			ring = append(ring, toPoint(c))
		}
		d = nd
		c = c.Add(steps[d])
		if c == start {
			break
		}
	}

	return append(ring, toPoint(start))
}

// dropNested removes contours whose first pixel lies inside the outline of
// another contour.
func dropNested(contours []Contour) []Contour {
	if len(contours) < 2 {
		return contours
	}
	kept := contours[:0:0]
	for i, c := range contours {
		centre := orb.Point{float64(c.Start.X) + 0.5, float64(c.Start.Y) + 0.5}
		nested := false
		for j, other := range contours {
			if i != j && planar.RingContains(other.Ring, centre) {
				nested = true
				break
			}
		}
		if !nested {
			kept = append(kept, c)
		}
	}
	return kept
}

func toPoint(p image.Point) orb.Point {
	return orb.Point{float64(p.X), float64(p.Y)}
}
