package render

// Hook runs once per frame before dirt is collected. Hooks mutate the scene:
// move sprites, write into shapes, swap frames
type Hook interface {
	Frame(ctx RenderContext)
}

// HookFunc adapts a function to Hook
type HookFunc func(ctx RenderContext)

func (f HookFunc) Frame(ctx RenderContext) { f(ctx) }

// VisibilityToggle is optionally implemented for runtime enable/disable
type VisibilityToggle interface {
	IsVisible() bool
}

// ticker is implemented by roots whose output depends on the frame counter
type ticker interface {
	SetTick(tick uint64)
}

// passStarter is implemented by roots holding sequence-aware transformers
// that restart with every flushed pass
type passStarter interface {
	BeginPass()
}
