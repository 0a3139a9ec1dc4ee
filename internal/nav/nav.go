// Package nav plans paths over the scene tilemap. The planner is a 4-way A*
// with fully deterministic tie-breaks so replays reproduce identical paths,
// backed by a walkability cache keyed on the tilemap's content.
package nav

import (
	"hash/fnv"
	"math"

	"github.com/lukeporterco/Prototype-Game-Engine-sub001/internal/core"
	"github.com/lukeporterco/Prototype-Game-Engine-sub001/internal/scene"
)

// BlockedTileID is the only impassable tile id; all others are walkable.
const BlockedTileID uint16 = 2

// TileCoord addresses a tile in the grid.
type TileCoord struct {
	X, Y uint32
}

// tilemapKey identifies a tilemap's content for cache reuse. Origin floats
// are compared by bit pattern, tiles by an FNV1a-64 digest in row-major
// little-endian order.
type tilemapKey struct {
	width      uint32
	height     uint32
	originXBit uint32
	originYBit uint32
	tilesHash  uint64
}

// PathState is a planned path under execution: world-space waypoints plus a
// cursor. Waypoints are tile centers of the path excluding the start tile.
type PathState struct {
	GoalTile          TileCoord
	WaypointsWorld    []core.Vec2
	NextWaypointIndex int
}

// CurrentWaypoint returns the waypoint the actor is heading for.
func (p *PathState) CurrentWaypoint() (core.Vec2, bool) {
	if p.NextWaypointIndex >= len(p.WaypointsWorld) {
		return core.Vec2{}, false
	}
	return p.WaypointsWorld[p.NextWaypointIndex], true
}

// AdvanceWaypoint moves the cursor forward, saturating at the end.
func (p *PathState) AdvanceWaypoint() {
	if p.NextWaypointIndex < len(p.WaypointsWorld) {
		p.NextWaypointIndex++
	}
}

// IsComplete reports whether every waypoint has been consumed.
func (p *PathState) IsComplete() bool {
	return p.NextWaypointIndex >= len(p.WaypointsWorld)
}

// Cache holds the walkability array for the current tilemap. Refreshing with
// an unchanged tilemap is a no-op; a changed tilemap rebuilds the array.
type Cache struct {
	valid    bool
	key      tilemapKey
	width    uint32
	height   uint32
	origin   core.Vec2
	walkable []bool
}

// Clear drops the cached walkability data.
func (c *Cache) Clear() {
	c.valid = false
	c.width = 0
	c.height = 0
	c.origin = core.Vec2{}
	c.walkable = c.walkable[:0]
}

// RefreshFromTilemap rebuilds the walkability array when the tilemap content
// changed. A nil tilemap clears the cache.
func (c *Cache) RefreshFromTilemap(tilemap *scene.Tilemap) {
	if tilemap == nil {
		c.Clear()
		return
	}
	key := computeTilemapKey(tilemap)
	if c.valid && c.key == key {
		return
	}

	width, height := tilemap.Width(), tilemap.Height()
	walkable := make([]bool, 0, width*height)
	for y := uint32(0); y < height; y++ {
		for x := uint32(0); x < width; x++ {
			id, _ := tilemap.TileAt(x, y)
			walkable = append(walkable, id != BlockedTileID)
		}
	}

	c.valid = true
	c.key = key
	c.width = width
	c.height = height
	c.origin = tilemap.Origin()
	c.walkable = walkable
}

// WorldToTile converts a world position to its containing tile, or false
// when outside the grid or before any refresh.
func (c *Cache) WorldToTile(world core.Vec2) (TileCoord, bool) {
	if !c.valid {
		return TileCoord{}, false
	}
	tx := int32(math.Floor(float64(world.X - c.origin.X)))
	ty := int32(math.Floor(float64(world.Y - c.origin.Y)))
	if tx < 0 || ty < 0 || uint32(tx) >= c.width || uint32(ty) >= c.height {
		return TileCoord{}, false
	}
	return TileCoord{X: uint32(tx), Y: uint32(ty)}, true
}

// TileCenterWorld returns the world position of a tile's center.
func (c *Cache) TileCenterWorld(tile TileCoord) core.Vec2 {
	return core.Vec2{
		X: c.origin.X + float32(tile.X) + 0.5,
		Y: c.origin.Y + float32(tile.Y) + 0.5,
	}
}

// IsWalkable reports whether the tile is inside the grid and passable.
func (c *Cache) IsWalkable(tile TileCoord) bool {
	idx, ok := c.indexOf(tile)
	return ok && c.walkable[idx]
}

// BuildPathFromWorld plans a path between two world positions. Returns nil
// when either endpoint is out of bounds or blocked, or when no path exists.
func (c *Cache) BuildPathFromWorld(startWorld, goalWorld core.Vec2) *PathState {
	startTile, ok := c.WorldToTile(startWorld)
	if !ok {
		return nil
	}
	goalTile, ok := c.WorldToTile(goalWorld)
	if !ok {
		return nil
	}
	if !c.IsWalkable(startTile) || !c.IsWalkable(goalTile) {
		return nil
	}

	tilePath := c.findPathTiles(startTile, goalTile)
	if len(tilePath) == 0 {
		return nil
	}

	var waypoints []core.Vec2
	if len(tilePath) == 1 {
		waypoints = append(waypoints, c.TileCenterWorld(goalTile))
	} else {
		for _, tile := range tilePath[1:] {
			waypoints = append(waypoints, c.TileCenterWorld(tile))
		}
	}
	return &PathState{GoalTile: goalTile, WaypointsWorld: waypoints}
}

// openNode is one open-set entry. Stale entries are skipped via the closed
// set instead of being removed, keeping insertion order intact.
type openNode struct {
	coord          TileCoord
	hCost          uint32
	fCost          uint32
	insertionOrder uint64
}

// less is the strict open-set ordering: (f, h, y, x, insertion order),
// smaller wins. This ordering is the determinism contract for pathing.
func (n openNode) less(o openNode) bool {
	if n.fCost != o.fCost {
		return n.fCost < o.fCost
	}
	if n.hCost != o.hCost {
		return n.hCost < o.hCost
	}
	if n.coord.Y != o.coord.Y {
		return n.coord.Y < o.coord.Y
	}
	if n.coord.X != o.coord.X {
		return n.coord.X < o.coord.X
	}
	return n.insertionOrder < o.insertionOrder
}

func (c *Cache) findPathTiles(start, goal TileCoord) []TileCoord {
	startIdx, ok := c.indexOf(start)
	if !ok {
		return nil
	}
	goalIdx, ok := c.indexOf(goal)
	if !ok {
		return nil
	}
	if start == goal {
		return []TileCoord{start}
	}

	nodeCount := int(c.width) * int(c.height)
	closed := make([]bool, nodeCount)
	bestG := make([]uint32, nodeCount)
	for i := range bestG {
		bestG[i] = math.MaxUint32
	}
	parent := make([]int, nodeCount)
	for i := range parent {
		parent[i] = -1
	}

	var open []openNode
	var nextInsertion uint64

	startH := manhattan(start, goal)
	open = append(open, openNode{coord: start, hCost: startH, fCost: startH})
	nextInsertion++
	bestG[startIdx] = 0

	for len(open) > 0 {
		best := pickBestOpenIndex(open)
		current := open[best]
		open[best] = open[len(open)-1]
		open = open[:len(open)-1]

		currentIdx, ok := c.indexOf(current.coord)
		if !ok || closed[currentIdx] {
			continue
		}
		closed[currentIdx] = true

		if current.coord == goal {
			return reconstructPath(parent, c.width, startIdx, goalIdx)
		}

		currentG := bestG[currentIdx]
		for _, neighbor := range c.neighbors(current.coord) {
			if neighbor == nil {
				continue
			}
			neighborIdx, ok := c.indexOf(*neighbor)
			if !ok || closed[neighborIdx] || !c.walkable[neighborIdx] {
				continue
			}
			tentativeG := currentG + 1
			if tentativeG >= bestG[neighborIdx] {
				continue
			}
			bestG[neighborIdx] = tentativeG
			parent[neighborIdx] = currentIdx
			h := manhattan(*neighbor, goal)
			open = append(open, openNode{
				coord:          *neighbor,
				hCost:          h,
				fCost:          tentativeG + h,
				insertionOrder: nextInsertion,
			})
			nextInsertion++
		}
	}
	return nil
}

// neighbors returns N, E, S, W in that fixed expansion order.
func (c *Cache) neighbors(coord TileCoord) [4]*TileCoord {
	var out [4]*TileCoord
	if coord.Y+1 < c.height {
		out[0] = &TileCoord{X: coord.X, Y: coord.Y + 1}
	}
	if coord.X+1 < c.width {
		out[1] = &TileCoord{X: coord.X + 1, Y: coord.Y}
	}
	if coord.Y > 0 {
		out[2] = &TileCoord{X: coord.X, Y: coord.Y - 1}
	}
	if coord.X > 0 {
		out[3] = &TileCoord{X: coord.X - 1, Y: coord.Y}
	}
	return out
}

func (c *Cache) indexOf(tile TileCoord) (int, bool) {
	if tile.X >= c.width || tile.Y >= c.height {
		return 0, false
	}
	return int(tile.Y)*int(c.width) + int(tile.X), true
}

func pickBestOpenIndex(open []openNode) int {
	best := 0
	for i := 1; i < len(open); i++ {
		if open[i].less(open[best]) {
			best = i
		}
	}
	return best
}

func reconstructPath(parent []int, width uint32, startIdx, goalIdx int) []TileCoord {
	indices := []int{goalIdx}
	cursor := goalIdx
	for cursor != startIdx {
		next := parent[cursor]
		if next < 0 {
			return nil
		}
		cursor = next
		indices = append(indices, cursor)
	}

	path := make([]TileCoord, len(indices))
	for i, idx := range indices {
		path[len(indices)-1-i] = TileCoord{
			X: uint32(idx) % width,
			Y: uint32(idx) / width,
		}
	}
	return path
}

func manhattan(a, b TileCoord) uint32 {
	return absDiff(a.X, b.X) + absDiff(a.Y, b.Y)
}

func absDiff(a, b uint32) uint32 {
	if a > b {
		return a - b
	}
	return b - a
}

func computeTilemapKey(tilemap *scene.Tilemap) tilemapKey {
	h := fnv.New64a()
	var buf [2]byte
	for y := uint32(0); y < tilemap.Height(); y++ {
		for x := uint32(0); x < tilemap.Width(); x++ {
			id, _ := tilemap.TileAt(x, y)
			buf[0] = byte(id)
			buf[1] = byte(id >> 8)
			h.Write(buf[:])
		}
	}
	origin := tilemap.Origin()
	return tilemapKey{
		width:      tilemap.Width(),
		height:     tilemap.Height(),
		originXBit: math.Float32bits(origin.X),
		originYBit: math.Float32bits(origin.Y),
		tilesHash:  h.Sum64(),
	}
}
