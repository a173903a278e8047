// Package profile instructs how OSM features are converted into a routing
// graph: which ways are traversable, at what relative cost, in which
// direction(s), and which relations act as turn restrictions.
package profile

import "github.com/go-osm/routelib/osm"

// TurnRestriction classifies a relation's role as a turn restriction, as
// returned by Profile.IsTurnRestriction.
type TurnRestriction int

const (
	// Inapplicable means the relation is not a turn restriction this
	// Profile cares about.
	Inapplicable TurnRestriction = iota
	// Prohibitory means following the relation's route is forbidden.
	Prohibitory
	// Mandatory means stepping from the "from" member onto the "via"
	// member forces the use of the relation's route.
	Mandatory
)

// Profile decides how a transport mode sees OSM data: which ways it can
// use, how expensive they are relative to one another, whether they are
// one-way, and which relations constrain turning movements.
type Profile interface {
	// Name identifies the profile, e.g. for cache directory naming.
	Name() string

	// WayPenalty returns the per-metre multiplier for traversing a way
	// with the given tags, and whether the way is traversable at all.
	// The penalty, when ok is true, is finite and at least 1.
	WayPenalty(tags osm.Tags) (penalty float64, ok bool)

	// WayDirection reports whether a way with the given tags can be
	// traversed in the direction its nodes are listed (forward) and/or
	// in reverse (backward).
	WayDirection(tags osm.Tags) (forward, backward bool)

	// IsTurnRestriction classifies a relation's tags.
	IsTurnRestriction(tags osm.Tags) TurnRestriction
}
