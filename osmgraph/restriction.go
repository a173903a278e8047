package osmgraph

import (
	"fmt"

	"github.com/go-osm/routelib/osm"
)

// restrictionChain turns a turn-restriction relation into the sequence of
// node ids its route visits: the last two nodes of the "from" member,
// followed by the nodes of every "via" member in order (each without the
// node it shares with the member before it), followed by
// the first (new) node of the "to" member. The result always has at least
// 3 nodes; AddRestriction is then called with everything but the last
// node as the prefix and the last node as the sole target.
func restrictionChain(r osm.Relation, wayNodes map[int64][]int64, hasNode func(int64) bool) ([]int64, error) {
	members, err := orderedRestrictionMembers(r)
	if err != nil {
		return nil, err
	}

	memberNodes := make([][]int64, len(members))
	for i, m := range members {
		nodes, err := restrictionMemberNodes(r, m, wayNodes, hasNode)
		if err != nil {
			return nil, err
		}
		memberNodes[i] = nodes
	}

	chain, err := flattenRestrictionNodes(r, memberNodes)
	if err != nil {
		return nil, err
	}
	if len(chain) < 3 {
		return nil, fmt.Errorf("%w: relation %d: restriction route too short", ErrMalformedRestriction, r.ID)
	}
	return chain, nil
}

// orderedRestrictionMembers returns the relation's members in
// from-via-...-via-to order, requiring exactly one "from", exactly one
// "to", and at least one "via" member. Any other role is ignored.
func orderedRestrictionMembers(r osm.Relation) ([]osm.Member, error) {
	var from, to *osm.Member
	var via []osm.Member

	for i := range r.Members {
		m := &r.Members[i]
		switch m.Role {
		case "from":
			if from != nil {
				return nil, fmt.Errorf("%w: relation %d: multiple \"from\" members", ErrMalformedRestriction, r.ID)
			}
			from = m
		case "via":
			via = append(via, *m)
		case "to":
			if to != nil {
				return nil, fmt.Errorf("%w: relation %d: multiple \"to\" members", ErrMalformedRestriction, r.ID)
			}
			to = m
		}
	}

	if from == nil {
		return nil, fmt.Errorf("%w: relation %d: missing \"from\" member", ErrMalformedRestriction, r.ID)
	}
	if len(via) == 0 {
		return nil, fmt.Errorf("%w: relation %d: missing \"via\" member", ErrMalformedRestriction, r.ID)
	}
	if to == nil {
		return nil, fmt.Errorf("%w: relation %d: missing \"to\" member", ErrMalformedRestriction, r.ID)
	}

	ordered := make([]osm.Member, 0, len(via)+2)
	ordered = append(ordered, *from)
	ordered = append(ordered, via...)
	ordered = append(ordered, *to)
	return ordered, nil
}

// restrictionMemberNodes resolves one ordered member to its node list.
// "via" node references must name a node already in the graph; way
// references (from/via/to) are resolved against nodes recorded for that
// way id while the way pass ran. The returned slice is always a copy, so
// the in-place reversal flattenRestrictionNodes may apply never mutates
// the way's canonical node list.
func restrictionMemberNodes(r osm.Relation, m osm.Member, wayNodes map[int64][]int64, hasNode func(int64) bool) ([]int64, error) {
	switch {
	case m.Type == osm.MemberNode && m.Role == "via":
		if !hasNode(m.Ref) {
			return nil, fmt.Errorf("%w: relation %d: reference to unknown node %d", ErrMalformedRestriction, r.ID, m.Ref)
		}
		return []int64{m.Ref}, nil
	case m.Type == osm.MemberWay:
		nodes, ok := wayNodes[m.Ref]
		if !ok || len(nodes) == 0 {
			return nil, fmt.Errorf("%w: relation %d: reference to unknown way %d", ErrMalformedRestriction, r.ID, m.Ref)
		}
		return append([]int64(nil), nodes...), nil
	default:
		return nil, fmt.Errorf("%w: relation %d: invalid type of %q member: %v", ErrMalformedRestriction, r.ID, m.Role, m.Type)
	}
}

// flattenRestrictionNodes stitches each member's nodes into a single
// route, reversing a member's node list in place when it was recorded in
// the opposite direction of travel, and failing if consecutive members
// share no endpoint.
func flattenRestrictionNodes(r osm.Relation, membersNodes [][]int64) ([]int64, error) {
	var nodes []int64

	for idx, memberNodes := range membersNodes {
		isFirst := idx == 0
		isLast := idx == len(membersNodes)-1

		if isFirst {
			next := membersNodes[1]
			nextFirst, nextLast := next[0], next[len(next)-1]
			last, first := memberNodes[len(memberNodes)-1], memberNodes[0]
			switch {
			case last == nextFirst || last == nextLast:
				// already oriented towards the rest of the route.
			case first == nextFirst || first == nextLast:
				reverseInt64s(memberNodes)
			default:
				return nil, fmt.Errorf("%w: relation %d: disjoined members", ErrMalformedRestriction, r.ID)
			}
		} else {
			prevLast := nodes[len(nodes)-1]
			switch {
			case prevLast == memberNodes[0]:
				// already oriented.
			case prevLast == memberNodes[len(memberNodes)-1]:
				reverseInt64s(memberNodes)
			default:
				return nil, fmt.Errorf("%w: relation %d: disjoined members", ErrMalformedRestriction, r.ID)
			}
		}

		switch {
		case isFirst:
			nodes = append(nodes, memberNodes[len(memberNodes)-2:]...)
		case isLast:
			nodes = append(nodes, memberNodes[1])
		default:
			nodes = append(nodes, memberNodes[1:]...)
		}
	}

	return nodes, nil
}

func reverseInt64s(s []int64) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}
