package scene

import (
	"github.com/lukeporterco/Prototype-Game-Engine-sub001/internal/core"
)

// maxDebugMarkers bounds the marker buffer; the oldest marker is dropped on
// overflow so the buffer stays FIFO.
const maxDebugMarkers = 64

// DebugMarkerKind classifies transient world-space debug markers.
type DebugMarkerKind int

const (
	// MarkerOrder flashes at a freshly issued move order's destination.
	MarkerOrder DebugMarkerKind = iota
)

// DebugMarker is a short-lived world-space annotation for overlays.
type DebugMarker struct {
	Kind          DebugMarkerKind
	PositionWorld core.Vec2
	TTLSeconds    float32
}

// PushDebugMarker appends a marker, dropping the oldest when full.
func (w *World) PushDebugMarker(marker DebugMarker) {
	if len(w.debugMarkers) == maxDebugMarkers {
		copy(w.debugMarkers, w.debugMarkers[1:])
		w.debugMarkers = w.debugMarkers[:maxDebugMarkers-1]
	}
	w.debugMarkers = append(w.debugMarkers, marker)
}

// TickDebugMarkers decrements each marker's ttl and drops expired ones,
// preserving order.
func (w *World) TickDebugMarkers(dt float32) {
	kept := w.debugMarkers[:0]
	for _, marker := range w.debugMarkers {
		marker.TTLSeconds -= dt
		if marker.TTLSeconds > 0 {
			kept = append(kept, marker)
		}
	}
	w.debugMarkers = kept
}

// DebugMarkers returns the live markers oldest-first.
func (w *World) DebugMarkers() []DebugMarker {
	return w.debugMarkers
}

// ClearDebugMarkers drops all markers.
func (w *World) ClearDebugMarkers() {
	w.debugMarkers = w.debugMarkers[:0]
}
