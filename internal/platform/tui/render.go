package tui

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/lukeporterco/Prototype-Game-Engine-sub001/internal/core"
	"github.com/lukeporterco/Prototype-Game-Engine-sub001/internal/nav"
	"github.com/lukeporterco/Prototype-Game-Engine-sub001/internal/scene"
)

// Terminal cells are roughly twice as tall as wide, so a cell maps to a
// half-unit-wide pixel block. At zoom 1 one world unit covers 2 columns
// and 1 row.
const (
	cellPxX float32 = 32
	cellPxY float32 = 64
)

// styleID keys the render styles so cells stay comparable for run
// grouping; lipgloss.Style itself is not.
type styleID int

const (
	styleFloor styleID = iota
	styleWall
	stylePlayer
	styleMob
	stylePile
	styleEntity
	styleSelected
	styleHovered
	styleMarker
)

var cellStyles = map[styleID]lipgloss.Style{
	styleFloor:    lipgloss.NewStyle().Foreground(lipgloss.Color("238")),
	styleWall:     lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
	stylePlayer:   lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
	styleMob:      lipgloss.NewStyle().Foreground(lipgloss.Color("9")),
	stylePile:     lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
	styleEntity:   lipgloss.NewStyle().Foreground(lipgloss.Color("7")),
	styleSelected: lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true).Underline(true),
	styleHovered:  lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true),
	styleMarker:   lipgloss.NewStyle().Foreground(lipgloss.Color("12")),
}

type cell struct {
	r     rune
	style styleID
}

// RenderWorld draws the world through its camera into a cols x rows grid.
// Later draw layers overwrite earlier ones: tiles, markers, entities.
func RenderWorld(world *scene.World, cols, rows int) string {
	if cols <= 0 || rows <= 0 {
		return ""
	}
	windowWidth := uint32(float32(cols) * cellPxX)
	windowHeight := uint32(float32(rows) * cellPxY)
	camera := world.Camera()

	grid := make([]cell, cols*rows)
	for cy := 0; cy < rows; cy++ {
		for cx := 0; cx < cols; cx++ {
			px := core.Vec2{X: (float32(cx) + 0.5) * cellPxX, Y: (float32(cy) + 0.5) * cellPxY}
			grid[cy*cols+cx] = tileCell(world.Tilemap(), camera.ScreenToWorld(px, windowWidth, windowHeight))
		}
	}

	for _, marker := range world.DebugMarkers() {
		if cx, cy, ok := worldToCell(camera, marker.PositionWorld, cols, rows); ok {
			grid[cy*cols+cx] = cell{r: '+', style: styleMarker}
		}
	}

	for _, entity := range world.Entities() {
		cx, cy, ok := worldToCell(camera, entity.Transform.Position, cols, rows)
		if !ok {
			continue
		}
		grid[cy*cols+cx] = entityCell(world, entity)
	}

	var sb strings.Builder
	sb.Grow(cols*rows*2 + rows)
	for cy := 0; cy < rows; cy++ {
		if cy > 0 {
			sb.WriteByte('\n')
		}
		// Group same-style runs to keep the ANSI overhead down.
		cx := 0
		for cx < cols {
			start := grid[cy*cols+cx]
			var run strings.Builder
			for cx < cols && grid[cy*cols+cx].style == start.style {
				run.WriteRune(grid[cy*cols+cx].r)
				cx++
			}
			sb.WriteString(cellStyles[start.style].Render(run.String()))
		}
	}
	return sb.String()
}

// worldToCell projects a world position onto the cell grid.
func worldToCell(camera scene.Camera, world core.Vec2, cols, rows int) (int, int, bool) {
	scale := scene.PixelsPerUnit * camera.Zoom
	px := float32(cols)*cellPxX/2 + (world.X-camera.Position.X)*scale
	py := float32(rows)*cellPxY/2 - (world.Y-camera.Position.Y)*scale
	cx := int(math.Floor(float64(px / cellPxX)))
	cy := int(math.Floor(float64(py / cellPxY)))
	if cx < 0 || cx >= cols || cy < 0 || cy >= rows {
		return 0, 0, false
	}
	return cx, cy, true
}

func tileCell(tilemap *scene.Tilemap, world core.Vec2) cell {
	if tilemap == nil {
		return cell{r: ' ', style: styleFloor}
	}
	local := world.Sub(tilemap.Origin())
	tx := math.Floor(float64(local.X))
	ty := math.Floor(float64(local.Y))
	if tx < 0 || ty < 0 {
		return cell{r: ' ', style: styleFloor}
	}
	id, ok := tilemap.TileAt(uint32(tx), uint32(ty))
	if !ok {
		return cell{r: ' ', style: styleFloor}
	}
	if id == nav.BlockedTileID {
		return cell{r: '#', style: styleWall}
	}
	return cell{r: '.', style: styleFloor}
}

func entityCell(world *scene.World, entity scene.Entity) cell {
	r := entityRune(entity)
	if selected := world.SelectedActorVisual(); selected != nil && *selected == entity.ID {
		return cell{r: r, style: styleSelected}
	}
	if hovered := world.HoveredInteractableVisual(); hovered != nil && *hovered == entity.ID {
		return cell{r: r, style: styleHovered}
	}
	return cell{r: r, style: entityStyle(entity)}
}

// debugBaseName strips the def namespace so "proto.player" and a bare
// "player" debug name pick the same glyph.
func debugBaseName(entity scene.Entity) string {
	name := entity.Renderable.DebugName
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		name = name[i+1:]
	}
	return name
}

func entityRune(entity scene.Entity) rune {
	switch debugBaseName(entity) {
	case "player":
		return '@'
	case "mob":
		return 'M'
	case "pile", "resource_pile":
		return 'O'
	case "dummy":
		return 'D'
	}
	if entity.Interactable != nil {
		return 'O'
	}
	if entity.Actor {
		return 'A'
	}
	return '?'
}

func entityStyle(entity scene.Entity) styleID {
	switch debugBaseName(entity) {
	case "player":
		return stylePlayer
	case "mob":
		return styleMob
	case "pile", "resource_pile":
		return stylePile
	}
	return styleEntity
}
