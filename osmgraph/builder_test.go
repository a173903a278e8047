package osmgraph

import (
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/go-osm/routelib/geo"
	"github.com/go-osm/routelib/graph"
	"github.com/go-osm/routelib/osm"
	"github.com/go-osm/routelib/profile"
)

// sliceSource is a FeatureSource backed by a pre-built slice, letting tests
// hand-assemble a small batch of node/way/relation features.
type sliceSource struct {
	features []osm.Feature
	pos      int
}

func (s *sliceSource) Next() (osm.Feature, error) {
	if s.pos >= len(s.features) {
		return nil, io.EOF
	}
	f := s.features[s.pos]
	s.pos++
	return f, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func node(id int64, lat, lon float64) osm.Node {
	return osm.Node{ID: id, Pos: geo.Position{Lat: lat, Lon: lon}}
}

func TestBuildCreatesBidirectionalEdgesForTwoWayStreet(t *testing.T) {
	src := &sliceSource{features: []osm.Feature{
		node(1, 0, 0),
		node(2, 0, 0.001),
		osm.Way{ID: 10, NodeIDs: []int64{1, 2}, Tags: osm.Tags{"highway": "residential"}},
	}}

	g, err := New(src, profile.Car(), WithLogger(discardLogger()))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(g.EdgesFrom(1)) != 1 {
		t.Fatalf("expected one edge from node 1, got %v", g.EdgesFrom(1))
	}
	if len(g.EdgesFrom(2)) != 1 {
		t.Fatalf("expected one edge from node 2, got %v", g.EdgesFrom(2))
	}
}

func TestBuildRespectsOnewayDirection(t *testing.T) {
	src := &sliceSource{features: []osm.Feature{
		node(1, 0, 0),
		node(2, 0, 0.001),
		osm.Way{ID: 10, NodeIDs: []int64{1, 2}, Tags: osm.Tags{"highway": "residential", "oneway": "yes"}},
	}}

	g, err := New(src, profile.Car(), WithLogger(discardLogger()))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(g.EdgesFrom(1)) != 1 {
		t.Fatalf("expected forward edge, got %v", g.EdgesFrom(1))
	}
	if len(g.EdgesFrom(2)) != 0 {
		t.Fatalf("expected no backward edge, got %v", g.EdgesFrom(2))
	}
}

func TestBuildSkipsWayNonTraversableUnderProfile(t *testing.T) {
	src := &sliceSource{features: []osm.Feature{
		node(1, 0, 0),
		node(2, 0, 0.001),
		osm.Way{ID: 10, NodeIDs: []int64{1, 2}, Tags: osm.Tags{"highway": "footway"}},
	}}

	g, err := New(src, profile.Car(), WithLogger(discardLogger()))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Both nodes are left unreferenced by any traversable way, so cleanup
	// removes them entirely.
	if g.NodeCount() != 0 {
		t.Fatalf("expected both nodes cleaned up, got %d remaining", g.NodeCount())
	}
}

func TestBuildDropsUnknownNodeReferenceButKeepsWay(t *testing.T) {
	src := &sliceSource{features: []osm.Feature{
		node(1, 0, 0),
		node(2, 0, 0.001),
		node(3, 0, 0.002),
		osm.Way{ID: 10, NodeIDs: []int64{1, 999, 2, 3}, Tags: osm.Tags{"highway": "residential"}},
	}}

	g, err := New(src, profile.Car(), WithLogger(discardLogger()))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(g.EdgesFrom(1)) != 1 || g.EdgesFrom(1)[0].To != 2 {
		t.Fatalf("expected edge 1->2 after dropping unknown node, got %v", g.EdgesFrom(1))
	}
	if len(g.EdgesFrom(2)) != 1 || g.EdgesFrom(2)[0].To != 3 {
		t.Fatalf("expected edge 2->3, got %v", g.EdgesFrom(2))
	}
}

func TestBuildSkipsWayLeftWithFewerThanTwoNodes(t *testing.T) {
	src := &sliceSource{features: []osm.Feature{
		node(1, 0, 0),
		osm.Way{ID: 10, NodeIDs: []int64{1, 999}, Tags: osm.Tags{"highway": "residential"}},
	}}

	g, err := New(src, profile.Car(), WithLogger(discardLogger()))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if g.NodeCount() != 0 {
		t.Fatalf("expected leftover node cleaned up, got %d", g.NodeCount())
	}
}

func TestBuildRejectsInvalidPenaltyFromProfile(t *testing.T) {
	src := &sliceSource{features: []osm.Feature{
		node(1, 0, 0),
		node(2, 0, 0.001),
		osm.Way{ID: 10, NodeIDs: []int64{1, 2}, Tags: osm.Tags{"highway": "residential"}},
	}}

	_, err := New(src, invalidPenaltyProfile{}, WithLogger(discardLogger()))
	if !errors.Is(err, ErrInvalidPenalty) {
		t.Fatalf("expected ErrInvalidPenalty, got %v", err)
	}
}

type invalidPenaltyProfile struct{}

func (invalidPenaltyProfile) Name() string { return "invalid" }
func (invalidPenaltyProfile) WayPenalty(osm.Tags) (float64, bool) {
	return 0.5, true // below the required minimum of 1.0
}
func (invalidPenaltyProfile) WayDirection(osm.Tags) (bool, bool) { return true, true }
func (invalidPenaltyProfile) IsTurnRestriction(osm.Tags) profile.TurnRestriction {
	return profile.Inapplicable
}

var _ profile.Profile = invalidPenaltyProfile{}

// buildSimpleJunction builds a 4-way junction: A-B-C (straight through) and
// B-D (a side street), all two-way residential roads, as the common
// substrate for the turn-restriction tests below.
func buildSimpleJunction(t *testing.T, members []osm.Member, tags osm.Tags) *graph.SimpleGraph[int64] {
	t.Helper()
	features := []osm.Feature{
		node(1, 0, 0),    // A
		node(2, 0, 0.001), // B (junction)
		node(3, 0, 0.002), // C
		node(4, 0.001, 0.001), // D
		osm.Way{ID: 10, NodeIDs: []int64{1, 2}, Tags: osm.Tags{"highway": "residential"}},
		osm.Way{ID: 20, NodeIDs: []int64{2, 3}, Tags: osm.Tags{"highway": "residential"}},
		osm.Way{ID: 30, NodeIDs: []int64{2, 4}, Tags: osm.Tags{"highway": "residential"}},
		osm.Relation{ID: 100, Members: members, Tags: tags},
	}
	g, err := New(&sliceSource{features: features}, profile.Car(), WithLogger(discardLogger()))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return g
}

func TestBuildRegistersProhibitoryTurnRestriction(t *testing.T) {
	g := buildSimpleJunction(t, []osm.Member{
		{Type: osm.MemberWay, Ref: 10, Role: "from"},
		{Type: osm.MemberNode, Ref: 2, Role: "via"},
		{Type: osm.MemberWay, Ref: 20, Role: "to"},
	}, osm.Tags{"type": "restriction", "restriction": "no_straight_on"})

	res := g.IsTurnRestricted([]int64{1, 2})
	if res.None() {
		t.Fatal("expected a registered restriction for the 1->2 prefix")
	}
}

func TestBuildSkipsMalformedRestrictionRelation(t *testing.T) {
	// "to" member missing entirely: malformed, should be skipped with a
	// warning rather than aborting the whole build.
	g := buildSimpleJunction(t, []osm.Member{
		{Type: osm.MemberWay, Ref: 10, Role: "from"},
		{Type: osm.MemberNode, Ref: 2, Role: "via"},
	}, osm.Tags{"type": "restriction", "restriction": "no_straight_on"})

	res := g.IsTurnRestricted([]int64{1, 2})
	if !res.None() {
		t.Fatal("expected no restriction to be registered for a malformed relation")
	}
}

func TestBuildIgnoresRelationsThatAreNotTurnRestrictions(t *testing.T) {
	g := buildSimpleJunction(t, []osm.Member{
		{Type: osm.MemberWay, Ref: 10, Role: "from"},
		{Type: osm.MemberNode, Ref: 2, Role: "via"},
		{Type: osm.MemberWay, Ref: 20, Role: "to"},
	}, osm.Tags{"type": "multipolygon"})

	res := g.IsTurnRestricted([]int64{1, 2})
	if !res.None() {
		t.Fatal("expected no restriction to be registered for an unrelated relation type")
	}
}

func TestBuildErrorPropagatesFromSource(t *testing.T) {
	_, err := New(erroringSource{}, profile.Car(), WithLogger(discardLogger()))
	if err == nil {
		t.Fatal("expected the source's error to propagate")
	}
}

type erroringSource struct{}

func (erroringSource) Next() (osm.Feature, error) {
	return nil, errors.New("boom")
}
