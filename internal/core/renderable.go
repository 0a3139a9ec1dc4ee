package core

// RenderableKind selects how an entity is drawn. The simulation never
// mutates renderables; they are pure descriptions.
type RenderableKind int

const (
	// RenderablePlaceholder draws the flat debug quad.
	RenderablePlaceholder RenderableKind = iota
	// RenderableSprite draws a named sprite from the asset atlas.
	RenderableSprite
)

// String returns a human-readable name for the kind.
func (k RenderableKind) String() string {
	switch k {
	case RenderablePlaceholder:
		return "Placeholder"
	case RenderableSprite:
		return "Sprite"
	default:
		return "Unknown"
	}
}

// RenderableDesc describes how an entity is drawn plus a debug name for
// overlays and dumps.
type RenderableDesc struct {
	Kind      RenderableKind
	SpriteKey string
	DebugName string
}
