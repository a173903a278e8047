package profile

import "github.com/go-osm/routelib/osm"

// FootProfile routes over highway=* ways for on-foot travel. It differs
// from HighwayProfile in three ways: public_transport=platform and
// railway=platform are treated as highway=platform; the oneway tag is
// ignored except on footway/path/steps/platform (oneway:foot always
// applies); and only restriction:foot turn restrictions are considered.
// motorroad=yes ways are excluded.
type FootProfile struct {
	base *HighwayProfile
}

// Foot builds a FootProfile with default penalties.
func Foot() *FootProfile {
	return &FootProfile{base: newNonMotorroadHighwayProfile("foot", map[string]float64{
		"trunk":         4.0,
		"primary":       2.0,
		"secondary":     1.3,
		"tertiary":      1.2,
		"unclassified":  1.2,
		"residential":   1.2,
		"living_street": 1.2,
		"track":         1.2,
		"service":       1.2,
		"bridleway":     1.2,
		"footway":       1.05,
		"path":          1.05,
		"steps":         1.15,
		"pedestrian":    1.0,
		"platform":      1.1,
	}, []string{"access", "foot"})}
}

func (p *FootProfile) Name() string { return p.base.name }

func (p *FootProfile) WayPenalty(tags osm.Tags) (float64, bool) {
	penalty, ok := p.base.penalties[p.activeHighwayValue(tags)]
	if !ok || !p.base.isAllowed(tags) {
		return 0, false
	}
	return penalty, true
}

func (p *FootProfile) activeHighwayValue(tags osm.Tags) string {
	highway := activeHighwayValue(tags)
	if highway == "" && (tags["public_transport"] == "platform" || tags["railway"] == "platform") {
		return "platform"
	}
	return highway
}

func (p *FootProfile) activeOnewayValue(tags osm.Tags) string {
	value := ""
	switch p.activeHighwayValue(tags) {
	case "footway", "path", "steps", "platform":
		value = tags["oneway"]
	}
	if v := tags["oneway:foot"]; v != "" {
		value = v
	}
	return value
}

func (p *FootProfile) WayDirection(tags osm.Tags) (forward, backward bool) {
	return wayDirectionFromOneway(defaultWayOneway(tags), p.activeOnewayValue(tags))
}

func (p *FootProfile) IsTurnRestriction(tags osm.Tags) TurnRestriction {
	if tags["type"] != "restriction" || isExempted(tags, p.base.access) {
		return Inapplicable
	}
	return restrictionKindFrom(tags["restriction:foot"])
}

var _ Profile = (*FootProfile)(nil)
