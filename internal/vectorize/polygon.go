package vectorize

import (
	"math"
	"sort"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
	"github.com/paulmach/orb/simplify"
)

// ringArea returns the unsigned area of r.
func ringArea(r orb.Ring) float64 {
	return math.Abs(planar.Area(r))
}

// simplifyRing runs Douglas-Peucker over a copy of r. It returns nil when
// fewer than three distinct vertices survive.
func simplifyRing(r orb.Ring, epsilon float64) orb.Ring {
	if epsilon <= 0 {
		return r
	}
	out := simplify.DouglasPeucker(epsilon).Ring(r.Clone())
	if len(out) < 4 {
		return nil
	}
	return out
}

// regularize replaces r with its bounding box when r fills more than
// ratio of that box.
func regularize(r orb.Ring, ratio float64) orb.Ring {
	b := r.Bound()
	boxArea := (b.Max[0] - b.Min[0]) * (b.Max[1] - b.Min[1])
	if boxArea <= 0 {
		return r
	}
	if ringArea(r)/boxArea > ratio {
		return b.ToRing()
	}
	return r
}

// mergeNearby groups rings that would touch once each is grown by distance,
// that is rings no more than 2*distance apart, and replaces every group of
// two or more with the convex hull of its vertices. Ungrouped rings are
// returned unchanged. Output order follows the first member of each group.
func mergeNearby(rings []orb.Ring, distance float64) []orb.Ring {
	if len(rings) < 2 {
		return rings
	}

	parent := make([]int, len(rings))
	for i := range parent {
		parent[i] = i
	}
	var find func(int) int
	find = func(i int) int {
		if parent[i] != i {
			parent[i] = find(parent[i])
		}
		return parent[i]
	}

	bounds := make([]orb.Bound, len(rings))
	for i, r := range rings {
		bounds[i] = r.Bound().Pad(distance)
	}
	for i := range rings {
		for j := i + 1; j < len(rings); j++ {
			if bounds[i].Intersects(bounds[j]) && ringDistance(rings[i], rings[j]) <= 2*distance {
				if a, b := find(i), find(j); a != b {
					parent[b] = a
				}
			}
		}
	}

	groups := make(map[int][]int)
	var order []int
	for i := range rings {
		root := find(i)
		if _, ok := groups[root]; !ok {
			order = append(order, root)
		}
		groups[root] = append(groups[root], i)
	}

	out := make([]orb.Ring, 0, len(order))
	for _, root := range order {
		members := groups[root]
		if len(members) == 1 {
			out = append(out, rings[members[0]])
			continue
		}
		var pts []orb.Point
		for _, m := range members {
			pts = append(pts, rings[m]...)
		}
		out = append(out, convexHull(pts))
	}
	return out
}

// ringDistance returns the shortest distance between the areas enclosed by
// a and b: zero when they overlap or cross.
func ringDistance(a, b orb.Ring) float64 {
	if len(a) == 0 || len(b) == 0 {
		return math.Inf(1)
	}
	if planar.RingContains(a, b[0]) || planar.RingContains(b, a[0]) {
		return 0
	}
	best := math.Inf(1)
	for i := 0; i+1 < len(a); i++ {
		for j := 0; j+1 < len(b); j++ {
			if d := segmentDistance(a[i], a[i+1], b[j], b[j+1]); d < best {
				if d == 0 {
					return 0
				}
				best = d
			}
		}
	}
	return best
}

// segmentDistance returns the distance between segments p1p2 and q1q2.
func segmentDistance(p1, p2, q1, q2 orb.Point) float64 {
	side := func(o, a, b orb.Point) float64 {
		return (a[0]-o[0])*(b[1]-o[1]) - (a[1]-o[1])*(b[0]-o[0])
	}
	d1, d2 := side(q1, q2, p1), side(q1, q2, p2)
	d3, d4 := side(p1, p2, q1), side(p1, p2, q2)
	if d1*d2 < 0 && d3*d4 < 0 {
		return 0
	}
	return math.Min(
		math.Min(planar.DistanceFromSegment(q1, q2, p1), planar.DistanceFromSegment(q1, q2, p2)),
		math.Min(planar.DistanceFromSegment(p1, p2, q1), planar.DistanceFromSegment(p1, p2, q2)),
	)
}

// convexHull returns the closed counter-clockwise (in a Y-up frame) hull of
// pts using Andrew's monotone chain.
func convexHull(pts []orb.Point) orb.Ring {
	ps := make([]orb.Point, len(pts))
	copy(ps, pts)
	sort.Slice(ps, func(i, j int) bool {
		if ps[i][0] != ps[j][0] {
			return ps[i][0] < ps[j][0]
		}
		return ps[i][1] < ps[j][1]
	})

	uniq := ps[:0]
	for i, p := range ps {
		if i == 0 || p != ps[i-1] {
			uniq = append(uniq, p)
		}
	}
	ps = uniq
	if len(ps) < 3 {
		r := orb.Ring(ps)
		return append(r, ps[0])
	}

	cross := func(o, a, b orb.Point) float64 {
		return (a[0]-o[0])*(b[1]-o[1]) - (a[1]-o[1])*(b[0]-o[0])
	}

	hull := make([]orb.Point, 0, 2*len(ps))
	for _, p := range ps {
		for len(hull) >= 2 && cross(hull[len(hull)-2], hull[len(hull)-1], p) <= 0 {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, p)
	}
	lower := len(hull) + 1
	for i := len(ps) - 2; i >= 0; i-- {
		p := ps[i]
		for len(hull) >= lower && cross(hull[len(hull)-2], hull[len(hull)-1], p) <= 0 {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, p)
	}
	// The last point repeats the first, closing the ring.
	return orb.Ring(hull)
}

// orientCCW makes r counter-clockwise, as required for GeoJSON exterior
// rings.
func orientCCW(r orb.Ring) orb.Ring {
	if r.Orientation() == orb.CW {
		r.Reverse()
	}
	return r
}
