package graph

import (
	"github.com/go-osm/routelib/geo"
	"github.com/go-osm/routelib/kdtree"
)

// SimpleGraph is a concrete, in-memory directed weighted graph: nodes carry
// a position, edges carry a non-negative cost, multi-edges between the
// same ordered pair are collapsed to the minimum cost seen, and nearest-
// node queries are served by a k-d tree built lazily over the current node
// set.
//
// SimpleGraph is not safe for concurrent use; callers that need concurrent
// access must serialise it externally. livegraph.LiveGraph, which wraps
// one, adds no in-process locking of its own.
type SimpleGraph[K comparable] struct {
	nodes     map[K]Node[K]
	nodeOrder []K
	adj       map[K][]Edge[K]
	edgeIdx   map[K]map[K]int

	restrictions *RestrictionTable[K]

	tree      *kdtree.Tree[K]
	treeDirty bool
}

// New returns an empty SimpleGraph.
func New[K comparable]() *SimpleGraph[K] {
	return &SimpleGraph[K]{
		nodes:        make(map[K]Node[K]),
		adj:          make(map[K][]Edge[K]),
		edgeIdx:      make(map[K]map[K]int),
		restrictions: NewRestrictionTable[K](),
		treeDirty:    true,
	}
}

// AddNode inserts or overwrites a node. Re-inserting the same id with a
// different position is allowed but invalidates the spatial index (it is
// rebuilt lazily on the next nearest-node query).
func (g *SimpleGraph[K]) AddNode(n Node[K]) {
	if _, exists := g.nodes[n.ID]; !exists {
		g.nodeOrder = append(g.nodeOrder, n.ID)
	}
	g.nodes[n.ID] = n
	g.treeDirty = true
}

// HasNode reports whether id has been inserted.
func (g *SimpleGraph[K]) HasNode(id K) bool {
	_, ok := g.nodes[id]
	return ok
}

// AddEdge inserts a directed edge from -> to with the given cost. If an
// edge between the same ordered pair already exists, the lower of the two
// costs wins — this is the min-cost deduplication §3/§4.7 require, used in
// place of last-write-wins so that two OSM ways connecting the same two
// nodes never silently overwrite each other with a worse cost.
func (g *SimpleGraph[K]) AddEdge(from, to K, cost float64) {
	idx, ok := g.edgeIdx[from]
	if !ok {
		idx = make(map[K]int)
		g.edgeIdx[from] = idx
	}
	if i, ok := idx[to]; ok {
		if cost < g.adj[from][i].Cost {
			g.adj[from][i].Cost = cost
		}
		return
	}
	g.adj[from] = append(g.adj[from], Edge[K]{To: to, Cost: cost})
	idx[to] = len(g.adj[from]) - 1
}

// RemoveNode deletes id and every edge touching it. Used by the graph
// builder to drop nodes that weren't referenced by any traversable way
// once a batch of features has been fully processed.
func (g *SimpleGraph[K]) RemoveNode(id K) {
	if _, ok := g.nodes[id]; !ok {
		return
	}
	delete(g.nodes, id)
	delete(g.adj, id)
	delete(g.edgeIdx, id)
	for i, nid := range g.nodeOrder {
		if nid == id {
			g.nodeOrder = append(g.nodeOrder[:i], g.nodeOrder[i+1:]...)
			break
		}
	}
	for from, idx := range g.edgeIdx {
		if i, ok := idx[id]; ok {
			edges := g.adj[from]
			edges[i] = edges[len(edges)-1]
			edges = edges[:len(edges)-1]
			g.adj[from] = edges
			delete(idx, id)
			if i < len(edges) {
				idx[edges[i].To] = i
			}
		}
	}
	g.treeDirty = true
}

// AddRestriction registers a turn restriction in the graph's restriction
// table. See RestrictionTable.Add.
func (g *SimpleGraph[K]) AddRestriction(kind RestrictionKind, prefix []K, targets []K) {
	g.restrictions.Add(kind, prefix, targets)
}

// GetNode implements Graph.
func (g *SimpleGraph[K]) GetNode(id K) (Node[K], error) {
	n, ok := g.nodes[id]
	if !ok {
		return Node[K]{}, ErrNotFound
	}
	return n, nil
}

// EdgesFrom implements Graph. The returned slice is in insertion order,
// except that RemoveNode moves the last edge into the slot of an edge it
// removes, and must not be mutated by the caller.
func (g *SimpleGraph[K]) EdgesFrom(id K) []Edge[K] {
	return g.adj[id]
}

// IsTurnRestricted implements Graph.
func (g *SimpleGraph[K]) IsTurnRestricted(prefix []K) RestrictionResult[K] {
	return g.restrictions.Lookup(prefix)
}

// MaxRestrictionChainLen implements Graph.
func (g *SimpleGraph[K]) MaxRestrictionChainLen() int {
	if n := g.restrictions.MaxChainLen(); n > 2 {
		return n
	}
	return 2
}

// NodeCount returns the number of nodes currently in the graph.
func (g *SimpleGraph[K]) NodeCount() int {
	return len(g.nodes)
}

// FindNearestNode returns the id of the node closest to pos under
// haversine distance. It fails with ErrNotFound on a graph with no nodes.
//
// The backing k-d tree is built lazily on first call and rebuilt whenever a
// node has been added since the last build; this keeps bulk ingestion
// (the graph builder inserts every node up front) free of tree-maintenance
// cost, paying for the index build exactly once before the first query.
func (g *SimpleGraph[K]) FindNearestNode(pos geo.Position) (K, error) {
	var zero K
	if g.treeDirty {
		g.rebuildIndex()
	}
	if g.tree == nil || g.tree.Len() == 0 {
		return zero, ErrNotFound
	}
	id, err := g.tree.Nearest(pos)
	if err != nil {
		return zero, ErrNotFound
	}
	return id, nil
}

func (g *SimpleGraph[K]) rebuildIndex() {
	items := make([]kdtree.Item[K], 0, len(g.nodeOrder))
	for _, id := range g.nodeOrder {
		items = append(items, kdtree.Item[K]{ID: id, Pos: g.nodes[id].Pos})
	}
	g.tree = kdtree.Build(items)
	g.treeDirty = false
}

var (
	_ Graph[int64]          = (*SimpleGraph[int64])(nil)
	_ NearestFinder[int64]  = (*SimpleGraph[int64])(nil)
)
