package scene

import (
	"math"

	"github.com/lukeporterco/Prototype-Game-Engine-sub001/internal/core"
)

const (
	// MinZoom is the lower clamp for camera zoom.
	MinZoom float32 = 0.25
	// ZoomStepFactor multiplies the zoom once per discrete wheel step.
	ZoomStepFactor float32 = 1.1
	// PixelsPerUnit is the base world-to-screen scale at zoom 1.
	PixelsPerUnit float32 = 64.0
)

// Camera is the world-space view origin plus a zoom factor.
type Camera struct {
	Position core.Vec2
	Zoom     float32
}

// NewCamera returns a camera at the origin with zoom 1.
func NewCamera() Camera {
	return Camera{Zoom: 1.0}
}

// ApplyZoomSteps multiplies the zoom by ZoomStepFactor once per step
// (negative steps divide) and clamps to the minimum. Discrete steps keep
// zoom reproducible regardless of wheel event coalescing.
func (c *Camera) ApplyZoomSteps(steps int) {
	if steps == 0 {
		return
	}
	factor := float32(math.Pow(float64(ZoomStepFactor), float64(steps)))
	zoom := c.Zoom * factor
	if zoom < MinZoom || !core.IsFinite(zoom) {
		zoom = MinZoom
	}
	c.Zoom = zoom
}

// ScreenToWorld converts a window-pixel position into world units. Screen y
// grows downward, world y grows upward.
func (c Camera) ScreenToWorld(px core.Vec2, windowWidth, windowHeight uint32) core.Vec2 {
	scale := PixelsPerUnit * c.Zoom
	return core.Vec2{
		X: c.Position.X + (px.X-float32(windowWidth)/2)/scale,
		Y: c.Position.Y - (px.Y-float32(windowHeight)/2)/scale,
	}
}
