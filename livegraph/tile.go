package livegraph

import (
	"math"

	"github.com/go-osm/routelib/geo"
)

// Tile identifies one slippy-map tile: https://wiki.openstreetmap.org/wiki/Slippy_map_tilenames
type Tile struct {
	Zoom int
	X    int
	Y    int
}

// tileAround returns the tile containing pos at the given zoom level.
func tileAround(pos geo.Position, zoom int) Tile {
	n := math.Exp2(float64(zoom))
	x := n * ((pos.Lon + 180.0) / 360.0)
	latRad := pos.Lat * math.Pi / 180.0
	y := (1.0 - math.Asinh(math.Tan(latRad))/math.Pi) / 2.0 * n
	return Tile{Zoom: zoom, X: int(x), Y: int(y)}
}

// boundary returns the (left, bottom, right, top) lat/lon box the tile
// covers.
func (t Tile) boundary() (left, bottom, right, top float64) {
	n := math.Exp2(float64(t.Zoom))

	side := 360.0 / n
	left = float64(t.X)*side - 180.0
	right = left + side

	top = mercatorToLat(math.Pi * (1 - 2*(float64(t.Y)/n)))
	bottom = mercatorToLat(math.Pi * (1 - 2*(float64(t.Y+1)/n)))
	return left, bottom, right, top
}

func mercatorToLat(x float64) float64 {
	return math.Atan(math.Sinh(x)) * 180.0 / math.Pi
}

// ring returns t plus its 8 immediate neighbours. Rows outside the valid
// [0, 2^zoom) range (past a pole) are left out, and columns wrap around
// the antimeridian, so the ring never holds an out-of-range tile. Loading the ring rather than the
// bare enclosing tile means a node just across a tile boundary from the
// query position is still reachable without a second lazy-load round
// trip once the search crosses into it.
func (t Tile) ring() []Tile {
	n := int(math.Exp2(float64(t.Zoom)))
	seen := make(map[Tile]bool, 9)
	var out []Tile
	for dx := -1; dx <= 1; dx++ {
		for dy := -1; dy <= 1; dy++ {
			x := wrap(t.X+dx, n)
			y := t.Y + dy
			if y < 0 || y >= n {
				continue
			}
			cand := Tile{Zoom: t.Zoom, X: x, Y: y}
			if !seen[cand] {
				seen[cand] = true
				out = append(out, cand)
			}
		}
	}
	return out
}

func wrap(x, n int) int {
	x %= n
	if x < 0 {
		x += n
	}
	return x
}
