// Package osmgraph builds a graph.SimpleGraph[int64] out of a stream of
// OSM features, under the rules a profile.Profile supplies: which ways are
// traversable, at what cost, in which direction, and which relations
// constrain turning movements.
package osmgraph

import (
	"fmt"
	"io"
	"log/slog"
	"math"

	"github.com/go-osm/routelib/geo"
	"github.com/go-osm/routelib/graph"
	"github.com/go-osm/routelib/osm"
	"github.com/go-osm/routelib/profile"
)

// FeatureSource is satisfied by *osm.Reader: a pull-based iterator over
// OSM features. Build calls Next until it returns io.EOF.
type FeatureSource interface {
	Next() (osm.Feature, error)
}

type config struct {
	logger *slog.Logger
}

// Option configures Build.
type Option func(*config)

// WithLogger overrides the logger used for warning-level, non-fatal
// conditions: a way referencing an unknown node, a way left with fewer
// than 2 usable nodes, or a malformed turn restriction — all of which are
// skipped rather than aborting the build.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) { c.logger = l }
}

// Build consumes every feature src yields and returns the graph they
// describe under prof's rules.
//
// Features must be self-contained and arrive in OSM's conventional order:
// every node before the ways referencing it, every way before the
// relations referencing it. This holds for any OSM XML/PBF export that
// follows the usual node/way/relation grouping, which is what osm.Reader
// streams in as-is.
//
// Build may be called repeatedly against the same graph to merge in
// further self-contained batches: existing nodes take precedence over
// incoming duplicates, a duplicate edge keeps the lower of the two costs,
// and a repeated turn restriction is added again as a duplicate table
// entry, which constrains routes exactly as the single entry does.
func Build(g *graph.SimpleGraph[int64], src FeatureSource, prof profile.Profile, opts ...Option) error {
	cfg := config{logger: slog.Default()}
	for _, opt := range opts {
		opt(&cfg)
	}

	b := &builder{
		g:        g,
		prof:     prof,
		logger:   cfg.logger,
		unused:   make(map[int64]bool),
		wayNodes: make(map[int64][]int64),
	}

	for {
		feature, err := src.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}
		if err := b.addFeature(feature); err != nil {
			return err
		}
	}

	b.cleanup()
	return nil
}

// New is a convenience wrapper around Build for the common case of
// building a fresh graph from a single feature source.
func New(src FeatureSource, prof profile.Profile, opts ...Option) (*graph.SimpleGraph[int64], error) {
	g := graph.New[int64]()
	if err := Build(g, src, prof, opts...); err != nil {
		return nil, err
	}
	return g, nil
}

type builder struct {
	g      *graph.SimpleGraph[int64]
	prof   profile.Profile
	logger *slog.Logger

	// unused tracks nodes inserted but not (yet) referenced by any
	// traversable way, so they can be dropped once every feature has
	// been processed.
	unused map[int64]bool

	// wayNodes records, for every successfully-added way, the (filtered)
	// sequence of node ids it connects — required when relations
	// reference that way as a turn-restriction member.
	wayNodes map[int64][]int64
}

func (b *builder) addFeature(feature osm.Feature) error {
	switch f := feature.(type) {
	case osm.Node:
		b.addNode(f)
		return nil
	case osm.Way:
		return b.addWay(f)
	case osm.Relation:
		return b.addRelation(f)
	default:
		return fmt.Errorf("osmgraph: unrecognised feature type %T", feature)
	}
}

func (b *builder) addNode(n osm.Node) {
	if b.g.HasNode(n.ID) {
		return
	}
	b.g.AddNode(graph.Node[int64]{ID: n.ID, Pos: n.Pos})
	b.unused[n.ID] = true
}

func (b *builder) addWay(w osm.Way) error {
	penalty, ok := b.prof.WayPenalty(w.Tags)
	if !ok {
		return nil
	}
	if math.IsNaN(penalty) || math.IsInf(penalty, 0) || penalty < 1.0 {
		return fmt.Errorf("%w: %s returned %v for way %d", ErrInvalidPenalty, b.prof.Name(), penalty, w.ID)
	}

	nodes := b.filterKnownNodes(w)
	if len(nodes) < 2 {
		return nil
	}

	forward, backward := b.prof.WayDirection(w.Tags)
	b.createEdges(nodes, penalty, forward, backward)

	for _, id := range nodes {
		delete(b.unused, id)
	}
	b.wayNodes[w.ID] = nodes
	return nil
}

// filterKnownNodes drops references to nodes that weren't present in the
// feature stream (a way may be split across tiles, or data may simply be
// incomplete), logging each one. Returns nil if, after filtering, fewer
// than 2 nodes remain to connect.
func (b *builder) filterKnownNodes(w osm.Way) []int64 {
	nodes := make([]int64, 0, len(w.NodeIDs))
	for _, id := range w.NodeIDs {
		if b.g.HasNode(id) {
			nodes = append(nodes, id)
		} else {
			b.logger.Warn("osmgraph: way references non-existing node, skipping node",
				"way", w.ID, "node", id)
		}
	}
	if len(nodes) < 2 {
		b.logger.Warn("osmgraph: way has too few nodes after unknown nodes removed, skipping way",
			"way", w.ID)
	}
	return nodes
}

func (b *builder) createEdges(nodes []int64, penalty float64, forward, backward bool) {
	for i := 0; i+1 < len(nodes); i++ {
		leftID, rightID := nodes[i], nodes[i+1]
		left, _ := b.g.GetNode(leftID)
		right, _ := b.g.GetNode(rightID)
		cost := penalty * geo.Haversine(left.Pos, right.Pos)

		if forward {
			b.g.AddEdge(leftID, rightID, cost)
		}
		if backward {
			b.g.AddEdge(rightID, leftID, cost)
		}
	}
}

func (b *builder) addRelation(r osm.Relation) error {
	kind := b.prof.IsTurnRestriction(r.Tags)
	if kind == profile.Inapplicable {
		return nil
	}

	chain, err := restrictionChain(r, b.wayNodes, b.g.HasNode)
	if err != nil {
		b.logger.Warn("osmgraph: skipping invalid turn restriction", "relation", r.ID, "reason", err)
		return nil
	}

	prefix := chain[:len(chain)-1]
	targets := chain[len(chain)-1:]
	restrictionKind := graph.RestrictionProhibit
	if kind == profile.Mandatory {
		restrictionKind = graph.RestrictionMandate
	}
	b.g.AddRestriction(restrictionKind, prefix, targets)
	return nil
}

// cleanup drops nodes that were inserted but never connected by a
// traversable way, so they never show up as FindNearestNode results or
// pad the graph with unreachable vertices.
func (b *builder) cleanup() {
	for id := range b.unused {
		b.g.RemoveNode(id)
	}
}
