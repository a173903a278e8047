package graph

import (
	"testing"

	"github.com/go-osm/routelib/geo"
)

func TestAddEdgeMinCostDedup(t *testing.T) {
	g := New[int64]()
	g.AddNode(Node[int64]{ID: 1, Pos: geo.Position{}})
	g.AddNode(Node[int64]{ID: 2, Pos: geo.Position{}})

	g.AddEdge(1, 2, 10)
	g.AddEdge(1, 2, 4)
	g.AddEdge(1, 2, 7)

	edges := g.EdgesFrom(1)
	if len(edges) != 1 {
		t.Fatalf("expected a single deduplicated edge, got %d", len(edges))
	}
	if edges[0].Cost != 4 {
		t.Fatalf("expected min cost 4, got %v", edges[0].Cost)
	}
}

func TestGetNodeNotFound(t *testing.T) {
	g := New[int64]()
	if _, err := g.GetNode(99); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestFindNearestNodeEmpty(t *testing.T) {
	g := New[int64]()
	if _, err := g.FindNearestNode(geo.Position{}); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestFindNearestNode(t *testing.T) {
	g := New[string]()
	g.AddNode(Node[string]{ID: "a", Pos: geo.Position{Lat: 0, Lon: 0}})
	g.AddNode(Node[string]{ID: "b", Pos: geo.Position{Lat: 10, Lon: 10}})
	g.AddNode(Node[string]{ID: "c", Pos: geo.Position{Lat: -5, Lon: -5}})

	id, err := g.FindNearestNode(geo.Position{Lat: -4, Lon: -4})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id != "c" {
		t.Fatalf("expected c, got %v", id)
	}
}

func TestRestrictionTableIndependentApplication(t *testing.T) {
	g := New[int64]()
	// Two independent restrictions sharing the same (A, B) prefix: one
	// prohibits proceeding to C, another mandates proceeding to D. Both
	// must be honoured simultaneously.
	g.AddRestriction(RestrictionProhibit, []int64{1, 2}, []int64{3})
	g.AddRestriction(RestrictionMandate, []int64{1, 2}, []int64{4})

	res := g.IsTurnRestricted([]int64{1, 2})
	if res.None() {
		t.Fatalf("expected restriction entries")
	}
	if len(res.Entries) != 2 {
		t.Fatalf("expected 2 independent entries, got %d", len(res.Entries))
	}
	if g.MaxRestrictionChainLen() != 2 {
		t.Fatalf("expected chain len 2, got %d", g.MaxRestrictionChainLen())
	}
}

func TestMaxRestrictionChainLenDefaultsToTwo(t *testing.T) {
	g := New[int64]()
	if got := g.MaxRestrictionChainLen(); got != 2 {
		t.Fatalf("expected default 2, got %d", got)
	}
}

func TestRemoveNodeDropsNodeAndEdges(t *testing.T) {
	g := New[int64]()
	g.AddNode(Node[int64]{ID: 1, Pos: geo.Position{}})
	g.AddNode(Node[int64]{ID: 2, Pos: geo.Position{}})
	g.AddNode(Node[int64]{ID: 3, Pos: geo.Position{}})
	g.AddEdge(1, 2, 5)
	g.AddEdge(2, 3, 5)
	g.AddEdge(3, 2, 5)

	g.RemoveNode(2)

	if g.HasNode(2) {
		t.Fatal("expected node 2 to be removed")
	}
	if len(g.EdgesFrom(1)) != 0 {
		t.Fatalf("expected node 1's edge to removed node to be gone, got %v", g.EdgesFrom(1))
	}
	if len(g.EdgesFrom(3)) != 0 {
		t.Fatalf("expected node 3's edge to removed node to be gone, got %v", g.EdgesFrom(3))
	}
	if g.NodeCount() != 2 {
		t.Fatalf("expected 2 remaining nodes, got %d", g.NodeCount())
	}
}

func TestRemoveNodePreservesOtherEdgesFromSameSource(t *testing.T) {
	g := New[int64]()
	g.AddNode(Node[int64]{ID: 1, Pos: geo.Position{}})
	g.AddNode(Node[int64]{ID: 2, Pos: geo.Position{}})
	g.AddNode(Node[int64]{ID: 3, Pos: geo.Position{}})
	g.AddEdge(1, 2, 5)
	g.AddEdge(1, 3, 7)

	g.RemoveNode(2)

	edges := g.EdgesFrom(1)
	if len(edges) != 1 || edges[0].To != 3 || edges[0].Cost != 7 {
		t.Fatalf("expected only the edge to node 3 to survive, got %v", edges)
	}
}
