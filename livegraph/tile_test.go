package livegraph

import (
	"math"
	"testing"

	"github.com/go-osm/routelib/geo"
)

func TestTileAroundKnownCoordinate(t *testing.T) {
	// Warsaw city centre, zoom 15: checks the zoom is kept and the tile
	// lies inside the zoom-15 grid.
	got := tileAround(geo.Position{Lat: 52.2297, Lon: 21.0122}, 15)
	if got.Zoom != 15 {
		t.Fatalf("zoom = %d, want 15", got.Zoom)
	}
	// Sanity bound: at zoom 15 there are 32768 tiles per axis.
	if got.X < 0 || got.X >= 32768 || got.Y < 0 || got.Y >= 32768 {
		t.Fatalf("tile out of range: %+v", got)
	}
}

func TestTileBoundaryContainsOriginatingPosition(t *testing.T) {
	pos := geo.Position{Lat: 48.8566, Lon: 2.3522}
	tile := tileAround(pos, 12)
	left, bottom, right, top := tile.boundary()

	if pos.Lon < left || pos.Lon > right {
		t.Fatalf("longitude %v outside [%v, %v]", pos.Lon, left, right)
	}
	if pos.Lat < bottom || pos.Lat > top {
		t.Fatalf("latitude %v outside [%v, %v]", pos.Lat, bottom, top)
	}
}

func TestTileRingHasNineTilesAwayFromEdges(t *testing.T) {
	center := Tile{Zoom: 10, X: 500, Y: 500}
	ring := center.ring()
	if len(ring) != 9 {
		t.Fatalf("expected 9 tiles (self + 8 neighbours), got %d", len(ring))
	}

	found := false
	for _, tl := range ring {
		if tl == center {
			found = true
		}
	}
	if !found {
		t.Fatal("expected the ring to include the center tile itself")
	}
}

func TestTileRingClampsAtPoleNotAntimeridian(t *testing.T) {
	n := int(math.Exp2(4))
	top := Tile{Zoom: 4, X: 3, Y: 0}
	ring := top.ring()
	for _, tl := range ring {
		if tl.Y < 0 || tl.Y >= n {
			t.Fatalf("ring escaped the valid y range: %+v", tl)
		}
	}

	edge := Tile{Zoom: 4, X: 0, Y: 5}
	ring = edge.ring()
	sawWrapped := false
	for _, tl := range ring {
		if tl.X == n-1 {
			sawWrapped = true
		}
	}
	if !sawWrapped {
		t.Fatal("expected x=0's west neighbour to wrap to the antimeridian tile")
	}
}
