package render

// Priority determines hook order. Lower values run first
type Priority int

const (
	PriorityInput Priority = iota * 10
	PriorityAnimation
	PriorityLayout
	PriorityContent
	PriorityOverlay
	PriorityDebug
)
