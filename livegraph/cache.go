package livegraph

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/gofrs/flock"
)

// DefaultTileExpiry is how long a cached tile is considered fresh before
// it is re-downloaded, matching the Python original's 30-day default.
const DefaultTileExpiry = 30 * 24 * time.Hour

// tileCache is a directory tree of cached OSM XML tiles, one file per
// (profile, zoom, x, y), with mtime as the freshness oracle and an
// advisory per-tile file lock so cooperating processes sharing the same
// cache directory never download or read the same tile concurrently.
type tileCache struct {
	dir       string
	profileID string
	expiry    time.Duration
}

func newTileCache(dir, profileID string, expiry time.Duration) *tileCache {
	if expiry == 0 {
		expiry = DefaultTileExpiry
	}
	return &tileCache{dir: dir, profileID: profileID, expiry: expiry}
}

// dataPath returns the tile's data file path: {dir}/{profileID}/{z}/{x}/{y}.osm
func (c *tileCache) dataPath(t Tile) string {
	return filepath.Join(c.dir, c.profileID, strconv.Itoa(t.Zoom), strconv.Itoa(t.X), strconv.Itoa(t.Y)+".osm")
}

func (c *tileCache) lockPath(t Tile) string {
	return c.dataPath(t) + ".lock"
}

// isFresh reports whether the tile is cached and was written within the
// cache's expiry window. A missing file is never fresh.
func (c *tileCache) isFresh(t Tile) bool {
	info, err := os.Stat(c.dataPath(t))
	if err != nil {
		return false
	}
	return time.Since(info.ModTime()) < c.expiry
}

// withLock runs fn while holding the tile's advisory file lock, creating
// the tile's parent directory first since flock.New requires the file to
// be creatable.
func (c *tileCache) withLock(t Tile, fn func() error) error {
	dir := filepath.Dir(c.dataPath(t))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("%w: creating tile directory: %v", ErrIO, err)
	}

	lock := flock.New(c.lockPath(t))
	if err := lock.Lock(); err != nil {
		return fmt.Errorf("%w: acquiring tile lock: %v", ErrIO, err)
	}
	defer lock.Unlock()

	return fn()
}

// open returns a read handle to the tile's cached data file.
func (c *tileCache) open(t Tile) (*os.File, error) {
	return os.Open(c.dataPath(t))
}

// store atomically replaces the tile's cached data file with data, via a
// same-directory temp file renamed into place, so a reader never observes
// a partially-written tile.
func (c *tileCache) store(t Tile, data []byte) error {
	path := c.dataPath(t)
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tile-*")
	if err != nil {
		return fmt.Errorf("%w: %v", ErrIO, err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("%w: %v", ErrIO, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%w: %v", ErrIO, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("%w: %v", ErrIO, err)
	}
	return nil
}
