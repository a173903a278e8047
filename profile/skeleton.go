package profile

import "github.com/go-osm/routelib/osm"

// SkeletonProfile routes over every way in the data regardless of its
// tags, for holding raw OSM XML/PBF data as a graph without following any
// OpenStreetMap mapping convention. All relations are ignored; the only
// tag consulted is "oneway".
type SkeletonProfile struct{}

func (SkeletonProfile) Name() string { return "skeleton" }

func (SkeletonProfile) WayPenalty(tags osm.Tags) (float64, bool) { return 1.0, true }

func (SkeletonProfile) WayDirection(tags osm.Tags) (forward, backward bool) {
	switch tags["oneway"] {
	case "yes":
		return true, false
	case "-1":
		return false, true
	default:
		return true, true
	}
}

func (SkeletonProfile) IsTurnRestriction(osm.Tags) TurnRestriction { return Inapplicable }

var _ Profile = SkeletonProfile{}
