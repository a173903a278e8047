package profile

// Bicycle is a HighwayProfile with default penalties and access hierarchy
// for bicycle routing. motorroad=yes ways are excluded.
func Bicycle() *HighwayProfile {
	return newNonMotorroadHighwayProfile("bicycle", map[string]float64{
		"trunk":         50.0,
		"primary":       10.0,
		"secondary":     3.0,
		"tertiary":      2.5,
		"unclassified":  2.5,
		"cycleway":      1.0,
		"residential":   1.0,
		"living_street": 1.5,
		"track":         2.0,
		"service":       2.0,
		"bridleway":     3.0,
		"footway":       3.0,
		"steps":         5.0,
		"path":          2.0,
	}, []string{"access", "vehicle", "bicycle"})
}
