package profile

import (
	"strings"

	"github.com/go-osm/routelib/osm"
)

// equivalentHighwayTags folds *_link and other near-duplicate highway
// values onto the classification they share penalties with.
var equivalentHighwayTags = map[string]string{
	"motorway_link":  "motorway",
	"trunk_link":     "trunk",
	"primary_link":   "primary",
	"secondary_link": "secondary",
	"tertiary_link":  "tertiary",
	"minor":          "unclassified",
}

// HighwayProfile routes over highway=* ways, weighting each by its
// classification (after equivalentHighwayTags normalisation) and gating
// access through an ordered access-tag hierarchy, least specific first.
type HighwayProfile struct {
	name             string
	penalties        map[string]float64
	access           []string
	excludeMotorroad bool
}

// NewHighwayProfile builds a HighwayProfile. penalties maps normalised
// highway values to their per-metre cost multiplier; access lists the
// access-tag hierarchy to consult, least specific first (e.g.
// "access", "vehicle", "motor_vehicle", "motorcar").
func NewHighwayProfile(name string, penalties map[string]float64, access []string) *HighwayProfile {
	return &HighwayProfile{name: name, penalties: penalties, access: access}
}

// newNonMotorroadHighwayProfile is like NewHighwayProfile but additionally
// excludes any way tagged motorroad=yes, for transport modes barred from
// motorroads (bicycles, pedestrians).
func newNonMotorroadHighwayProfile(name string, penalties map[string]float64, access []string) *HighwayProfile {
	return &HighwayProfile{name: name, penalties: penalties, access: access, excludeMotorroad: true}
}

func (p *HighwayProfile) Name() string { return p.name }

func (p *HighwayProfile) WayPenalty(tags osm.Tags) (float64, bool) {
	penalty, ok := p.penalties[activeHighwayValue(tags)]
	if !ok || !p.isAllowed(tags) {
		return 0, false
	}
	return penalty, true
}

func (p *HighwayProfile) isAllowed(tags osm.Tags) bool {
	if p.excludeMotorroad && tags["motorroad"] == "yes" {
		return false
	}
	return isAllowedByAccess(tags, p.access)
}

func (p *HighwayProfile) WayDirection(tags osm.Tags) (forward, backward bool) {
	return wayDirectionFromOneway(defaultWayOneway(tags), activeOnewayValue(tags, p.access))
}

func (p *HighwayProfile) IsTurnRestriction(tags osm.Tags) TurnRestriction {
	if tags["type"] != "restriction" || isExempted(tags, p.access) {
		return Inapplicable
	}
	return restrictionKindFrom(activeRestrictionValue(tags, p.access))
}

var _ Profile = (*HighwayProfile)(nil)

// --- helpers shared with FootProfile's overridden active-value getters ---

func activeHighwayValue(tags osm.Tags) string {
	highway := tags["highway"]
	if eq, ok := equivalentHighwayTags[highway]; ok {
		return eq
	}
	return highway
}

// isAllowedByAccess walks access, most specific first, stopping at the
// first tag present: "no" and "private" deny, anything else (even
// "destination" or "permit") allows. No tag present at all allows.
func isAllowedByAccess(tags osm.Tags, access []string) bool {
	for i := len(access) - 1; i >= 0; i-- {
		value, present := tags[access[i]]
		if !present {
			continue
		}
		return value != "no" && value != "private"
	}
	return true
}

// defaultWayOneway reports whether highway/junction tags imply that a way
// is one-way (forward only) by default (motorway, motorway_link,
// roundabout, circular), independent of any explicit oneway tag.
func defaultWayOneway(tags osm.Tags) bool {
	return tags["highway"] == "motorway" || tags["highway"] == "motorway_link" ||
		tags["junction"] == "roundabout" || tags["junction"] == "circular"
}

func wayDirectionFromOneway(defaultOneway bool, oneway string) (forward, backward bool) {
	forward, backward = true, !defaultOneway
	switch oneway {
	case "yes", "true", "1":
		forward, backward = true, false
	case "-1", "reverse":
		forward, backward = false, true
	case "no":
		forward, backward = true, true
	}
	return forward, backward
}

// activeOnewayValue returns the most specific "oneway:MODE" tag, falling
// back to plain "oneway".
func activeOnewayValue(tags osm.Tags, access []string) string {
	for i := len(access) - 1; i >= 0; i-- {
		mode := access[i]
		if mode == "access" {
			continue
		}
		if v := tags["oneway:"+mode]; v != "" {
			return v
		}
	}
	return tags["oneway"]
}

// activeRestrictionValue returns the most specific "restriction:MODE" tag,
// falling back to plain "restriction".
func activeRestrictionValue(tags osm.Tags, access []string) string {
	for i := len(access) - 1; i >= 0; i-- {
		mode := access[i]
		if mode == "access" {
			continue
		}
		if v := tags["restriction:"+mode]; v != "" {
			return v
		}
	}
	return tags["restriction"]
}

func isExempted(tags osm.Tags, access []string) bool {
	exempted := tags["except"]
	if exempted == "" {
		return false
	}
	for _, part := range strings.Split(exempted, ";") {
		for _, mode := range access {
			if mode == part {
				return true
			}
		}
	}
	return false
}

// restrictionKindFrom classifies a "restriction"/"restriction:MODE" tag
// value such as "no_left_turn" or "only_straight_on". Only right_turn,
// left_turn, u_turn and straight_on descriptions are recognised.
func restrictionKindFrom(value string) TurnRestriction {
	kind, description, _ := strings.Cut(value, "_")
	if kind != "no" && kind != "only" {
		return Inapplicable
	}
	switch description {
	case "right_turn", "left_turn", "u_turn", "straight_on":
	default:
		return Inapplicable
	}
	if kind == "no" {
		return Prohibitory
	}
	return Mandatory
}
