// Package config loads a YAML document describing which OSM data to
// route over, under which profile, and (optionally) how to configure the
// live-graph tile cache and fetcher. It is a convenience entry point, not
// a requirement: every type it wires up (profiles, graphs, the live
// graph) remains directly constructible without it.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/go-osm/routelib/profile"
)

// Config is the top-level document LoadConfig parses.
type Config struct {
	// Source names the OSM data to build the graph from: a filesystem
	// path to an .osm/.osm.pbf/.osm.gz file, or a "live:" URL enabling
	// LiveGraph construction instead of a static graph.
	Source string `yaml:"source"`

	Profile ProfileOptions `yaml:"profile"`
	Live    LiveOptions    `yaml:"live"`
}

// LiveOptions configures a LiveGraph, consumed only when Source names a
// "live:" source.
type LiveOptions struct {
	TileCacheDir string        `yaml:"tileCacheDir"`
	TileExpiry   time.Duration `yaml:"tileExpiry"`
	APIBaseURL   string        `yaml:"apiBaseURL"`
}

// LoadConfig reads and parses the YAML document at path.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}
	return &cfg, nil
}

// ProfileOptions selects a concrete profile.Profile by its "type" tag, a
// type-discriminator field that Build dispatches on.
type ProfileOptions struct {
	Type string `yaml:"type"`
}

// UnmarshalYAML implements yaml.Unmarshaler, decoding the node once and
// reading only the "type" field — there are currently no per-profile-kind
// options beyond the type tag itself, since every concrete profile.Profile
// in this module is parameterless. Other fields under "profile" are
// ignored.
func (p *ProfileOptions) UnmarshalYAML(value *yaml.Node) error {
	var m struct {
		Type string `yaml:"type"`
	}
	if err := value.Decode(&m); err != nil {
		return err
	}
	p.Type = m.Type
	return nil
}

// Build resolves the configured profile type to a concrete profile.Profile.
func (p ProfileOptions) Build() (profile.Profile, error) {
	switch p.Type {
	case "car":
		return profile.Car(), nil
	case "bus":
		return profile.Bus(), nil
	case "bicycle":
		return profile.Bicycle(), nil
	case "foot":
		return profile.Foot(), nil
	case "tram":
		return profile.Tram(), nil
	case "subway":
		return profile.Subway(), nil
	case "railway":
		return profile.Railway(), nil
	case "skeleton", "":
		return profile.SkeletonProfile{}, nil
	default:
		return nil, fmt.Errorf("config: unknown profile type %q", p.Type)
	}
}
