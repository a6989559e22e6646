package host

import "github.com/vovakirdan/slingshot-trial/internal/core"

// PointerKind identifies the phase of a pointer gesture.
type PointerKind int

const (
	PointerPress PointerKind = iota
	PointerMove
	PointerRelease
)

// String returns a human-readable name for the pointer kind.
func (k PointerKind) String() string {
	switch k {
	case PointerPress:
		return "press"
	case PointerMove:
		return "move"
	case PointerRelease:
		return "release"
	default:
		return "unknown"
	}
}

// PointerEvent is a pointer gesture in stimulus canvas pixel coordinates.
type PointerEvent struct {
	Kind PointerKind
	Pos  core.Vec
}

// Display is the host container a trial renders into: a feedback strip on
// top, the stimulus canvas below it and an optional prompt underneath.
// Pointer listeners live on the stimulus canvas and disappear with it.
//
// A Display belongs to the loop goroutine; other goroutines read it through
// Loop.Inspect and feed it input through Loop.Post.
type Display struct {
	feedback  *core.Canvas
	stimulus  *core.Canvas
	prompt    string
	listeners map[uint64]func(PointerEvent)
	nextID    uint64
}

// NewDisplay creates an empty display.
func NewDisplay() *Display {
	return &Display{
		listeners: make(map[uint64]func(PointerEvent)),
	}
}

// Mount replaces the display content with a feedback strip of feedbackHeight
// pixels and a stimulus canvas, both width pixels wide. Listeners from a
// previous mount are dropped.
func (d *Display) Mount(feedbackHeight, height, width int, prompt string) (feedback, stimulus *core.Canvas) {
	d.Clear()
	d.feedback = core.NewCanvas(width, feedbackHeight)
	d.stimulus = core.NewCanvas(width, height)
	d.prompt = prompt
	return d.feedback, d.stimulus
}

// Clear removes all content and listeners.
func (d *Display) Clear() {
	d.feedback = nil
	d.stimulus = nil
	d.prompt = ""
	clear(d.listeners)
}

// Mounted reports whether canvases are currently mounted.
func (d *Display) Mounted() bool {
	return d.stimulus != nil
}

// Feedback returns the feedback strip, or nil when nothing is mounted.
func (d *Display) Feedback() *core.Canvas {
	return d.feedback
}

// Stimulus returns the stimulus canvas, or nil when nothing is mounted.
func (d *Display) Stimulus() *core.Canvas {
	return d.stimulus
}

// Prompt returns the prompt text of the current mount.
func (d *Display) Prompt() string {
	return d.prompt
}

// OnPointer registers a listener for pointer events on the stimulus canvas.
func (d *Display) OnPointer(fn func(PointerEvent)) Handle {
	d.nextID++
	id := d.nextID
	d.listeners[id] = fn
	return &listenerHandle{display: d, id: id}
}

// Listeners returns the number of registered pointer listeners.
func (d *Display) Listeners() int {
	return len(d.listeners)
}

// Dispatch delivers a pointer event to every listener.
func (d *Display) Dispatch(ev PointerEvent) {
	for _, fn := range d.listeners {
		fn(ev)
	}
}

// DispatchCell translates a terminal cell position, relative to the top-left
// of the display, into stimulus canvas pixels and dispatches it. Presses
// outside the stimulus canvas are ignored; moves and releases are clamped
// to the canvas so a drag can leave it. Reports whether the event was
// delivered.
func (d *Display) DispatchCell(kind PointerKind, col, row int) bool {
	if d.stimulus == nil {
		return false
	}
	row -= d.feedback.Screen().Height()

	scr := d.stimulus.Screen()
	inside := col >= 0 && col < scr.Width() && row >= 0 && row < scr.Height()
	if !inside && kind == PointerPress {
		return false
	}

	pos := d.stimulus.PixelAt(col, row)
	pos.X = core.ClampF(pos.X, 0, float64(d.stimulus.Width()))
	pos.Y = core.ClampF(pos.Y, 0, float64(d.stimulus.Height()))
	d.Dispatch(PointerEvent{Kind: kind, Pos: pos})
	return true
}

type listenerHandle struct {
	display *Display
	id      uint64
}

func (h *listenerHandle) Stop() bool {
	if _, ok := h.display.listeners[h.id]; !ok {
		return false
	}
	delete(h.display.listeners, h.id)
	return true
}
