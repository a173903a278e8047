package profile

import (
	"github.com/go-osm/routelib/osm"
)

// RailwayProfile routes over railway=* ways. Only access=no/private
// excludes a way, and there are no implicit one-ways beyond an explicit
// oneway=yes/-1 tag.
type RailwayProfile struct {
	name      string
	penalties map[string]float64
}

// NewRailwayProfile builds a RailwayProfile admitting exactly the railway
// values present in penalties.
func NewRailwayProfile(name string, penalties map[string]float64) *RailwayProfile {
	return &RailwayProfile{name: name, penalties: penalties}
}

// Railway admits rail, light_rail, subway and narrow_gauge ways —
// suitable for heavy/commuter rail routing.
func Railway() *RailwayProfile {
	return NewRailwayProfile("railway", map[string]float64{
		"rail":         1.0,
		"light_rail":   1.0,
		"subway":       1.0,
		"narrow_gauge": 1.0,
	})
}

// Tram admits only railway=tram and light_rail ways.
func Tram() *RailwayProfile {
	return NewRailwayProfile("tram", map[string]float64{"tram": 1.0, "light_rail": 1.0})
}

// Subway admits only railway=subway ways.
func Subway() *RailwayProfile {
	return NewRailwayProfile("subway", map[string]float64{"subway": 1.0})
}

func (p *RailwayProfile) Name() string { return p.name }

func (p *RailwayProfile) WayPenalty(tags osm.Tags) (float64, bool) {
	if tags["access"] == "no" || tags["access"] == "private" {
		return 0, false
	}
	penalty, ok := p.penalties[tags["railway"]]
	return penalty, ok
}

func (p *RailwayProfile) WayDirection(tags osm.Tags) (forward, backward bool) {
	switch tags["oneway"] {
	case "yes":
		return true, false
	case "-1":
		return false, true
	default:
		return true, true
	}
}

func (p *RailwayProfile) IsTurnRestriction(tags osm.Tags) TurnRestriction {
	if tags["type"] != "restriction" {
		return Inapplicable
	}
	return restrictionKindFrom(tags["restriction"])
}

var _ Profile = (*RailwayProfile)(nil)
