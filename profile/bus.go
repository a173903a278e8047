package profile

// Bus is a HighwayProfile with default penalties and access hierarchy for
// bus routing.
func Bus() *HighwayProfile {
	return NewHighwayProfile("bus", map[string]float64{
		"motorway":      1.0,
		"trunk":         1.0,
		"primary":       1.1,
		"secondary":     1.15,
		"tertiary":      1.15,
		"unclassified":  1.5,
		"residential":   2.5,
		"living_street": 2.5,
		"track":         5.0,
		"service":       5.0,
	}, []string{"access", "vehicle", "motor_vehicle", "psv", "bus", "routing:ztm"})
}
