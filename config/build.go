package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/go-osm/routelib/graph"
	"github.com/go-osm/routelib/livegraph"
	"github.com/go-osm/routelib/osm"
	"github.com/go-osm/routelib/osmgraph"
)

const liveSourcePrefix = "live:"

// IsLive reports whether Source names a live-graph source rather than a
// static extract to build a graph from once.
func (c *Config) IsLive() bool {
	return strings.HasPrefix(c.Source, liveSourcePrefix)
}

// BuildGraph opens Source as a static OSM file and builds a graph from
// it under the configured profile. It is an error to call this when
// IsLive is true; call BuildLiveGraph instead.
func (c *Config) BuildGraph() (*graph.SimpleGraph[int64], error) {
	if c.IsLive() {
		return nil, fmt.Errorf("config: source %q is a live source, use BuildLiveGraph", c.Source)
	}

	prof, err := c.Profile.Build()
	if err != nil {
		return nil, err
	}

	f, err := os.Open(c.Source)
	if err != nil {
		return nil, fmt.Errorf("config: opening source %q: %w", c.Source, err)
	}
	defer f.Close()

	reader, err := osm.NewReader(f, osm.FormatAuto)
	if err != nil {
		return nil, err
	}

	g := graph.New[int64]()
	if err := osmgraph.Build(g, reader, prof); err != nil {
		return nil, err
	}
	return g, nil
}

// BuildLiveGraph constructs a LiveGraph under the configured profile and
// Live options. It is an error to call this unless IsLive is true.
func (c *Config) BuildLiveGraph() (*livegraph.LiveGraph, error) {
	if !c.IsLive() {
		return nil, fmt.Errorf("config: source %q is not a live source", c.Source)
	}

	prof, err := c.Profile.Build()
	if err != nil {
		return nil, err
	}

	opts := []livegraph.Option{}
	if c.Live.TileCacheDir != "" {
		opts = append(opts, livegraph.WithCacheDir(c.Live.TileCacheDir))
	}
	if c.Live.TileExpiry > 0 {
		opts = append(opts, livegraph.WithTileExpiry(c.Live.TileExpiry))
	}
	if c.Live.APIBaseURL != "" {
		opts = append(opts, livegraph.WithAPIURL(c.Live.APIBaseURL))
	}

	return livegraph.New(prof, opts...), nil
}
