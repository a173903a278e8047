// Package osm parses OSM XML and OSM PBF into a stream of typed Node/Way/
// Relation records, without materialising more than one document element
// (XML) or one decompressed block (PBF) in memory at a time.
package osm

import "github.com/go-osm/routelib/geo"

// Tags is an OSM tag set: string key to string value.
type Tags map[string]string

// Node is an OSM node: an id, a position, and its tags.
type Node struct {
	ID   int64
	Pos  geo.Position
	Tags Tags
}

// Way is an OSM way: an id, the ordered list of node ids it visits, and its
// tags.
type Way struct {
	ID      int64
	NodeIDs []int64
	Tags    Tags
}

// IsClosed reports whether the way's first and last node ids coincide,
// which OSM uses as the convention for closed ways (areas, roundabouts
// expressed as a loop, etc).
func (w Way) IsClosed() bool {
	return len(w.NodeIDs) > 1 && w.NodeIDs[0] == w.NodeIDs[len(w.NodeIDs)-1]
}

// MemberType distinguishes the three kinds of relation member OSM allows.
type MemberType int

const (
	MemberNode MemberType = iota
	MemberWay
	MemberRelation
)

func (t MemberType) String() string {
	switch t {
	case MemberNode:
		return "node"
	case MemberWay:
		return "way"
	case MemberRelation:
		return "relation"
	default:
		return "unknown"
	}
}

// Member is one entry of a Relation's ordered member list.
type Member struct {
	Type MemberType
	Ref  int64
	Role string
}

// Relation is an OSM relation: an id, its ordered members, and its tags.
type Relation struct {
	ID      int64
	Members []Member
	Tags    Tags
}

// Feature is the sum type produced by a Reader: exactly one of Node, Way or
// Relation.
type Feature interface {
	FeatureID() int64
}

func (n Node) FeatureID() int64     { return n.ID }
func (w Way) FeatureID() int64      { return w.ID }
func (r Relation) FeatureID() int64 { return r.ID }
