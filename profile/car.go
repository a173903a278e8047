package profile

// Car is a HighwayProfile with default penalties and access hierarchy for
// motorcar routing.
func Car() *HighwayProfile {
	return NewHighwayProfile("motorcar", map[string]float64{
		"motorway":      1.0,
		"trunk":         1.0,
		"primary":       5.0,
		"secondary":     6.5,
		"tertiary":      10.0,
		"unclassified":  10.0,
		"residential":   15.0,
		"living_street": 20.0,
		"track":         20.0,
		"service":       20.0,
	}, []string{"access", "vehicle", "motor_vehicle", "motorcar"})
}
