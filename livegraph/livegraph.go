// Package livegraph extends graph.SimpleGraph with lazy, on-demand
// population from the OpenStreetMap API: nodes and edges materialise as
// the tiles covering them are requested, rather than all at once from a
// pre-downloaded extract.
package livegraph

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"time"

	"github.com/go-osm/routelib/geo"
	"github.com/go-osm/routelib/graph"
	"github.com/go-osm/routelib/osm"
	"github.com/go-osm/routelib/osmgraph"
	"github.com/go-osm/routelib/profile"
)

type config struct {
	cacheDir    string
	tileExpiry  time.Duration
	zoom        int
	apiURL      string
	httpClient  *http.Client
	maxParallel int
}

// Option configures New.
type Option func(*config)

// WithCacheDir sets the on-disk directory tiles are cached under. Defaults
// to "tilecache" in the current working directory.
func WithCacheDir(dir string) Option {
	return func(c *config) { c.cacheDir = dir }
}

// WithTileExpiry overrides how long a cached tile is trusted before being
// re-downloaded. Defaults to DefaultTileExpiry.
func WithTileExpiry(d time.Duration) Option {
	return func(c *config) { c.tileExpiry = d }
}

// WithZoom sets the slippy-tile zoom level tiles are fetched and cached
// at. Defaults to 15; raise it if the API rejects requests with "400 Bad
// Request" for covering too much data.
func WithZoom(z int) Option {
	return func(c *config) { c.zoom = z }
}

// WithAPIURL overrides the OSM API base URL tiles are fetched from.
func WithAPIURL(url string) Option {
	return func(c *config) { c.apiURL = url }
}

// WithHTTPClient overrides the *http.Client used to fetch tiles.
func WithHTTPClient(client *http.Client) Option {
	return func(c *config) { c.httpClient = client }
}

// WithMaxParallelFetches bounds how many tile downloads may be in flight
// at once. Defaults to 1, matching the single-threaded-per-process
// contract the rest of the core graph follows.
func WithMaxParallelFetches(n int) Option {
	return func(c *config) { c.maxParallel = n }
}

// LiveGraph is a graph.Graph[int64] whose contents are populated tile by
// tile, on demand, from the OpenStreetMap API — backed by an on-disk,
// mtime-expiring tile cache shared across cooperating processes.
//
// FindNearestNode and EdgesFrom both trigger tile loads as needed;
// LoadTileAround exposes this explicitly for callers that want to warm
// the graph around a position ahead of time.
type LiveGraph struct {
	g      *graph.SimpleGraph[int64]
	prof   profile.Profile
	zoom   int
	cache  *tileCache
	fetch  *tileFetcher
	loaded map[Tile]bool
}

// New returns a LiveGraph that builds its graph under prof, downloading
// and caching tiles as needed.
func New(prof profile.Profile, opts ...Option) *LiveGraph {
	cfg := config{
		cacheDir:    "tilecache",
		tileExpiry:  DefaultTileExpiry,
		zoom:        15,
		maxParallel: 1,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	return &LiveGraph{
		g:      graph.New[int64](),
		prof:   prof,
		zoom:   cfg.zoom,
		cache:  newTileCache(cfg.cacheDir, prof.Name(), cfg.tileExpiry),
		fetch:  newTileFetcher(cfg.apiURL, cfg.httpClient, cfg.maxParallel),
		loaded: make(map[Tile]bool),
	}
}

// GetNode implements graph.Graph.
func (lg *LiveGraph) GetNode(id int64) (graph.Node[int64], error) {
	return lg.g.GetNode(id)
}

// EdgesFrom implements graph.Graph. If id names a node already known to
// the graph, the tile(s) around it are ensured loaded first.
func (lg *LiveGraph) EdgesFrom(id int64) []graph.Edge[int64] {
	if n, err := lg.g.GetNode(id); err == nil {
		_ = lg.LoadTileAround(context.Background(), n.Pos)
	}
	return lg.g.EdgesFrom(id)
}

// IsTurnRestricted implements graph.Graph.
func (lg *LiveGraph) IsTurnRestricted(prefix []int64) graph.RestrictionResult[int64] {
	return lg.g.IsTurnRestricted(prefix)
}

// MaxRestrictionChainLen implements graph.Graph.
func (lg *LiveGraph) MaxRestrictionChainLen() int {
	return lg.g.MaxRestrictionChainLen()
}

// FindNearestNode implements graph.NearestFinder: it ensures the tile
// ring around pos is loaded before delegating to the underlying graph's
// spatial index.
func (lg *LiveGraph) FindNearestNode(pos geo.Position) (int64, error) {
	if err := lg.LoadTileAround(context.Background(), pos); err != nil {
		return 0, err
	}
	return lg.g.FindNearestNode(pos)
}

// LoadTileAround ensures the tile containing pos, and its 8 neighbours,
// are loaded into the graph: already-loaded tiles (tracked in-process)
// are skipped outright; cached-and-fresh tiles are read straight off
// disk; anything else is downloaded and cached before being parsed in.
func (lg *LiveGraph) LoadTileAround(ctx context.Context, pos geo.Position) error {
	center := tileAround(pos, lg.zoom)
	for _, t := range center.ring() {
		if err := lg.loadTile(ctx, t); err != nil {
			return err
		}
	}
	return nil
}

func (lg *LiveGraph) loadTile(ctx context.Context, t Tile) error {
	if lg.loaded[t] {
		return nil
	}
	lg.loaded[t] = true

	var data []byte
	err := lg.cache.withLock(t, func() error {
		if lg.cache.isFresh(t) {
			f, err := lg.cache.open(t)
			if err != nil {
				return err
			}
			defer f.Close()
			data, err = io.ReadAll(f)
			return err
		}

		fetched, err := lg.fetch.fetchTile(ctx, t)
		if err != nil {
			return err
		}
		data = fetched
		return lg.cache.store(t, fetched)
	})
	if err != nil {
		return err
	}

	reader, err := osm.NewReader(bytes.NewReader(data), osm.FormatXML)
	if err != nil {
		return err
	}
	return osmgraph.Build(lg.g, reader, lg.prof)
}

var (
	_ graph.Graph[int64]         = (*LiveGraph)(nil)
	_ graph.NearestFinder[int64] = (*LiveGraph)(nil)
)
