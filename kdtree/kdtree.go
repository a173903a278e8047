// Package kdtree implements a static 2-D k-d tree over geographic
// positions, used for nearest-neighbour queries at sub-linear cost.
//
// Construction is O(n log n); once built a Tree owns copies of the items
// it was given and does not support insertion. Nearest-neighbour search is
// correct under haversine (great-circle) distance, not merely Euclidean
// distance in degrees — see Nearest for the pruning rule this relies on.
package kdtree

import (
	"errors"
	"math"

	"golang.org/x/exp/slices"

	"github.com/go-osm/routelib/geo"
)

// ErrEmpty is returned by Nearest on a Tree with no items. It is the
// NotFound error kind for this package.
var ErrEmpty = errors.New("kdtree: nearest queried on empty tree")

// Item pairs an opaque identifier with the position it is indexed under.
type Item[T any] struct {
	ID  T
	Pos geo.Position
}

type node[T any] struct {
	item        Item[T]
	axis        int // 0 = latitude, 1 = longitude
	left, right *node[T]
}

// Tree is a static 2-D k-d tree over Item[T] values.
type Tree[T any] struct {
	root *node[T]
	size int
}

// Build constructs a Tree over items in O(n log n) by recursively
// splitting on the median of alternating axes (latitude, then longitude,
// then latitude, ...). The input slice is not modified; Build works on an
// internal copy.
func Build[T any](items []Item[T]) *Tree[T] {
	cp := make([]Item[T], len(items))
	copy(cp, items)
	return &Tree[T]{
		root: buildNode(cp, 0),
		size: len(items),
	}
}

func buildNode[T any](items []Item[T], depth int) *node[T] {
	if len(items) == 0 {
		return nil
	}
	axis := depth % 2
	slices.SortFunc(items, func(a, b Item[T]) int {
		av, bv := axisValue(a.Pos, axis), axisValue(b.Pos, axis)
		switch {
		case av < bv:
			return -1
		case av > bv:
			return 1
		default:
			return 0
		}
	})
	mid := len(items) / 2
	n := &node[T]{item: items[mid], axis: axis}
	n.left = buildNode(items[:mid], depth+1)
	n.right = buildNode(items[mid+1:], depth+1)
	return n
}

func axisValue(p geo.Position, axis int) float64 {
	if axis == 0 {
		return p.Lat
	}
	return p.Lon
}

// Len returns the number of items in the tree.
func (t *Tree[T]) Len() int {
	return t.size
}

// Nearest returns the id of the item whose position minimises haversine
// distance to query, breaking ties arbitrarily. It fails with ErrEmpty on
// an empty tree.
//
// The recursive descent uses the standard k-d pruning rule (visit the near
// child first, then the far child only if it could still contain something
// closer than the current best), but the "could still contain something
// closer" test is computed in true great-circle distance rather than plain
// Euclidean degrees. For a latitude split it is the haversine distance from
// the query to the point on the splitting parallel with the query's
// longitude. For a longitude split the far side is bounded by the splitting
// meridian and by the antimeridian, so the bound is the smaller of the
// perpendicular great-circle distances from the query to those two
// meridians' great circles. Latitude and longitude degrees are not
// commensurable with each other or with metres, so comparing raw
// coordinate deltas (as a Euclidean-only k-d tree would) can prune subtrees
// that haversine distance would not have excluded; these bounds never
// exceed the true distance to anything on the far side.
func (t *Tree[T]) Nearest(query geo.Position) (T, error) {
	var zero T
	if t.root == nil {
		return zero, ErrEmpty
	}
	best := t.root.item
	bestDist := geo.Haversine(query, best.Pos)
	searchNearest(t.root, query, &best, &bestDist)
	return best.ID, nil
}

func searchNearest[T any](n *node[T], query geo.Position, best *Item[T], bestDist *float64) {
	if n == nil {
		return
	}
	d := geo.Haversine(query, n.item.Pos)
	if d < *bestDist {
		*bestDist = d
		*best = n.item
	}

	qv := axisValue(query, n.axis)
	nv := axisValue(n.item.Pos, n.axis)

	near, far := n.left, n.right
	if qv > nv {
		near, far = n.right, n.left
	}
	searchNearest(near, query, best, bestDist)

	var bound float64
	if n.axis == 0 {
		planePoint := query
		planePoint.Lat = nv
		bound = geo.Haversine(query, planePoint)
	} else {
		// The far side lies beyond the meridian at nv or beyond the
		// antimeridian; the distance to either one's great circle bounds it.
		cosLat := math.Cos(query.Lat * math.Pi / 180)
		sinD := math.Min(math.Abs(math.Sin((query.Lon-nv)*math.Pi/180)), math.Abs(math.Sin(query.Lon*math.Pi/180)))
		bound = geo.EarthRadiusMetres * math.Asin(cosLat*sinD)
	}
	if bound <= *bestDist {
		searchNearest(far, query, best, bestDist)
	}
}
