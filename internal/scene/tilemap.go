package scene

import (
	"fmt"

	"github.com/lukeporterco/Prototype-Game-Engine-sub001/internal/core"
)

// Tilemap is an immutable row-major grid of 16-bit tile ids. Tile (x, y)
// spans one world unit; its center sits at origin + (x+0.5, y+0.5).
type Tilemap struct {
	width  uint32
	height uint32
	origin core.Vec2
	tiles  []uint16
}

// NewTilemap validates the shape and copies the tile data. The tile count
// must equal width*height exactly.
func NewTilemap(width, height uint32, origin core.Vec2, tiles []uint16) (*Tilemap, error) {
	if uint64(len(tiles)) != uint64(width)*uint64(height) {
		return nil, fmt.Errorf("tilemap: %d tiles for %dx%d grid", len(tiles), width, height)
	}
	copied := make([]uint16, len(tiles))
	copy(copied, tiles)
	return &Tilemap{width: width, height: height, origin: origin, tiles: copied}, nil
}

// Width returns the grid width in tiles.
func (t *Tilemap) Width() uint32 { return t.width }

// Height returns the grid height in tiles.
func (t *Tilemap) Height() uint32 { return t.height }

// Origin returns the world position of the grid's lower-left corner.
func (t *Tilemap) Origin() core.Vec2 { return t.origin }

// TileAt returns the tile id at (x, y), or false when out of bounds.
func (t *Tilemap) TileAt(x, y uint32) (uint16, bool) {
	if x >= t.width || y >= t.height {
		return 0, false
	}
	return t.tiles[y*t.width+x], true
}
