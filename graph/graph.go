// Package graph defines the generic directed weighted graph protocol that
// the A* search consumes, plus an in-memory implementation of it.
package graph

import "github.com/go-osm/routelib/geo"

// Node carries an opaque external identifier and the position it sits at.
// Nodes are immutable once inserted into a Graph.
type Node[K comparable] struct {
	ID  K
	Pos geo.Position
}

// Edge is a directed out-edge: "to" plus its non-negative cost. The "from"
// endpoint is implicit in whichever node EdgesFrom was called on.
type Edge[K comparable] struct {
	To   K
	Cost float64
}

// RestrictionKind distinguishes the two turn-restriction flavours OSM
// relations express.
type RestrictionKind int

const (
	// RestrictionProhibit forbids proceeding to one of Targets.
	RestrictionProhibit RestrictionKind = iota
	// RestrictionMandate forces proceeding to one of Targets.
	RestrictionMandate
)

// RestrictionEntry is one independently-applied restriction matching a
// given prefix.
type RestrictionEntry[K comparable] struct {
	Kind    RestrictionKind
	Targets []K
}

// RestrictionResult is the answer to an IsTurnRestricted query: every
// restriction entry whose prefix matched exactly, applied independently by
// the caller (see graph.RestrictionTable and astar.FindRoute).
type RestrictionResult[K comparable] struct {
	Entries []RestrictionEntry[K]
}

// None reports whether no restriction matched.
func (r RestrictionResult[K]) None() bool {
	return len(r.Entries) == 0
}

// Graph is the protocol surface an A* consumer needs: node lookup, out-edge
// enumeration, and turn-restriction lookup keyed by an arbitrary-length
// traversed-node prefix. IsTurnRestricted may always return the zero
// RestrictionResult ("none") — a graph with no turn restrictions, or one
// that does not model them at all, satisfies the interface trivially.
type Graph[K comparable] interface {
	GetNode(id K) (Node[K], error)
	EdgesFrom(id K) []Edge[K]
	IsTurnRestricted(prefix []K) RestrictionResult[K]
	// MaxRestrictionChainLen reports the length, in nodes, of the longest
	// prefix recorded in the turn-restriction table — a property computed
	// once at build time. A* uses it to bound how much trailing path
	// history it needs to retain per open search state.
	MaxRestrictionChainLen() int
}

// NearestFinder is implemented by graphs that maintain a spatial index over
// their nodes.
type NearestFinder[K comparable] interface {
	FindNearestNode(pos geo.Position) (K, error)
}
