// Package astar implements a generic, turn-restriction-aware A* shortest
// path search over anything satisfying graph.Graph.
package astar

import (
	"container/heap"

	"github.com/go-osm/routelib/geo"
	"github.com/go-osm/routelib/graph"
)

// Heuristic estimates the remaining cost from current to end. It MUST be
// admissible (never overestimate true remaining cost) for the result to be
// optimal; FindRoute does not and cannot verify this.
type Heuristic[K comparable] func(current, end K) float64

// DefaultHeuristic returns a Heuristic backed by haversine distance between
// node positions, which is admissible whenever edge costs are themselves
// haversine distance times a penalty >= 1 — the contract the OSM graph
// builder guarantees.
func DefaultHeuristic[K comparable](g graph.Graph[K]) Heuristic[K] {
	return func(current, end K) float64 {
		cn, err := g.GetNode(current)
		if err != nil {
			return 0
		}
		en, err := g.GetNode(end)
		if err != nil {
			return 0
		}
		return geo.Haversine(cn.Pos, en.Pos)
	}
}

type config[K comparable] struct {
	heuristic Heuristic[K]
	stepLimit int
}

// Option configures a FindRoute/FindRouteWithoutTurnAround call.
type Option[K comparable] func(*config[K])

// WithHeuristic overrides the default haversine heuristic.
func WithHeuristic[K comparable](h Heuristic[K]) Option[K] {
	return func(c *config[K]) { c.heuristic = h }
}

// WithStepLimit overrides DefaultStepLimit.
func WithStepLimit[K comparable](limit int) Option[K] {
	return func(c *config[K]) { c.stepLimit = limit }
}

// FindRoute returns the lowest-cost path from start to end as an ordered
// sequence of node ids, or an empty slice if no path exists. It fails with
// ErrStepLimitExceeded if the search pops more states than the configured
// (or default) step limit before reaching end.
func FindRoute[K comparable](g graph.Graph[K], start, end K, opts ...Option[K]) ([]K, error) {
	return run(g, start, end, false, opts...)
}

// FindRouteWithoutTurnAround behaves like FindRoute but additionally
// forbids a state from moving back to the node it just arrived from — the
// path may never immediately retrace the edge it used to arrive at the
// current node. This is independent of, and does not replace, the
// turn-restriction table: a path can still reverse direction at a dead end
// by first visiting some other node.
func FindRouteWithoutTurnAround[K comparable](g graph.Graph[K], start, end K, opts ...Option[K]) ([]K, error) {
	return run(g, start, end, true, opts...)
}

// stateKey is the closed-set key mandated by the design: arriving at cur
// from prev is a distinct state from arriving at cur from anywhere else,
// which is what lets turn restrictions be enforced without an edge-
// expanded graph. hasPrev is false only for the synthetic start state.
type stateKey[K comparable] struct {
	prev    K
	hasPrev bool
	cur     K
}

type pqItem[K comparable] struct {
	state stateKey[K]
	g     float64
	f     float64
	seq   int
	// tail holds the most recently visited node ids, ending at state.cur,
	// bounded by the graph's MaxRestrictionChainLen. It exists only to
	// answer turn-restriction queries that need more context than the
	// (prev, cur) state key retains; two different histories that collapse
	// onto the same state are treated as one state for closed-set purposes
	// regardless of their tails (see SPEC_FULL.md §4.4).
	tail []K
}

type priorityQueue[K comparable] []*pqItem[K]

func (pq priorityQueue[K]) Len() int { return len(pq) }
func (pq priorityQueue[K]) Less(i, j int) bool {
	if pq[i].f != pq[j].f {
		return pq[i].f < pq[j].f
	}
	return pq[i].seq < pq[j].seq
}
func (pq priorityQueue[K]) Swap(i, j int) { pq[i], pq[j] = pq[j], pq[i] }
func (pq *priorityQueue[K]) Push(x any)   { *pq = append(*pq, x.(*pqItem[K])) }
func (pq *priorityQueue[K]) Pop() any {
	old := *pq
	n := len(old)
	item := old[n-1]
	*pq = old[:n-1]
	return item
}

func run[K comparable](g graph.Graph[K], start, end K, forbidTurnAround bool, opts ...Option[K]) ([]K, error) {
	cfg := config[K]{
		heuristic: DefaultHeuristic(g),
		stepLimit: DefaultStepLimit,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	maxChain := g.MaxRestrictionChainLen()
	if maxChain < 2 {
		maxChain = 2
	}

	startState := stateKey[K]{cur: start, hasPrev: false}
	startItem := &pqItem[K]{
		state: startState,
		g:     0,
		f:     cfg.heuristic(start, end),
		seq:   0,
		tail:  []K{start},
	}

	open := &priorityQueue[K]{startItem}
	heap.Init(open)

	bestG := map[stateKey[K]]float64{startState: 0}
	cameFrom := map[stateKey[K]]stateKey[K]{}
	closed := map[stateKey[K]]bool{}

	seq := 1
	steps := 0

	for open.Len() > 0 {
		steps++
		if steps > cfg.stepLimit {
			return nil, ErrStepLimitExceeded
		}

		item := heap.Pop(open).(*pqItem[K])
		if closed[item.state] {
			continue
		}
		if g, ok := bestG[item.state]; ok && item.g > g {
			continue
		}
		closed[item.state] = true

		if item.state.cur == end {
			return reconstructPath(cameFrom, item.state, start), nil
		}

		for _, edge := range g.EdgesFrom(item.state.cur) {
			v := edge.To

			if forbidTurnAround && item.state.hasPrev && v == item.state.prev {
				continue
			}
			if !restrictionsAllow(g, item.tail, v, maxChain) {
				continue
			}

			nextState := stateKey[K]{prev: item.state.cur, hasPrev: true, cur: v}
			if closed[nextState] {
				continue
			}
			newG := item.g + edge.Cost
			if existing, ok := bestG[nextState]; ok && newG >= existing {
				continue
			}
			bestG[nextState] = newG

			newTail := appendTail(item.tail, v, maxChain)
			next := &pqItem[K]{
				state: nextState,
				g:     newG,
				f:     newG + cfg.heuristic(v, end),
				seq:   seq,
				tail:  newTail,
			}
			seq++
			cameFrom[nextState] = item.state
			heap.Push(open, next)
		}
	}

	return []K{}, nil
}

// restrictionsAllow checks whether moving to v is permitted given the
// trailing path history tail (ending at the current node), consulting the
// restriction table at every prefix length from 2 up to maxChain. Every
// matching entry is applied independently: any firing prohibition forbids
// v outright; if one or more mandates fire, v must satisfy every one of
// them (their targets intersected), per the "apply independently, no
// composition defined" resolution in SPEC_FULL.md §9.
func restrictionsAllow[K comparable](g graph.Graph[K], tail []K, v K, maxChain int) bool {
	var mandateSets [][]K

	for l := 2; l <= maxChain && l <= len(tail); l++ {
		prefix := tail[len(tail)-l:]
		res := g.IsTurnRestricted(prefix)
		if res.None() {
			continue
		}
		for _, entry := range res.Entries {
			switch entry.Kind {
			case graph.RestrictionProhibit:
				if containsID(entry.Targets, v) {
					return false
				}
			case graph.RestrictionMandate:
				mandateSets = append(mandateSets, entry.Targets)
			}
		}
	}

	for _, set := range mandateSets {
		if !containsID(set, v) {
			return false
		}
	}
	return true
}

func containsID[K comparable](ids []K, v K) bool {
	for _, id := range ids {
		if id == v {
			return true
		}
	}
	return false
}

func appendTail[K comparable](tail []K, v K, maxChain int) []K {
	next := make([]K, 0, maxChain)
	start := 0
	if len(tail)+1 > maxChain {
		start = len(tail) + 1 - maxChain
	}
	next = append(next, tail[start:]...)
	next = append(next, v)
	return next
}

func reconstructPath[K comparable](cameFrom map[stateKey[K]]stateKey[K], goal stateKey[K], start K) []K {
	var rev []K
	cur := goal
	for {
		rev = append(rev, cur.cur)
		if !cur.hasPrev {
			break
		}
		prev, ok := cameFrom[cur]
		if !ok {
			break
		}
		cur = prev
	}
	path := make([]K, len(rev))
	for i, id := range rev {
		path[len(rev)-1-i] = id
	}
	return path
}
