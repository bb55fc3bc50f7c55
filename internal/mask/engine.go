// Package mask is a headless freehand mask editor. The buffer is sized to the
// source image's native resolution; pointer samples arrive in display space and
// are mapped into buffer space per event.
package mask

import (
	"errors"
	"image"
)

var (
	ErrNotInitialized = errors.New("mask not initialized")
	ErrInvalidMask    = errors.New("invalid mask image")
	ErrInvalidSize    = errors.New("invalid mask size")
)

// PresenceFunc receives the recomputed mask presence after a stroke, undo, clear or import.
type PresenceFunc func(hasMask bool)

// Session is the capability set a host needs to drive a mask editor.
type Session interface {
	BeginStroke(ev PointerEvent, vp Viewport)
	ContinueStroke(ev PointerEvent, vp Viewport)
	EndStroke()
	Leave()
	Undo()
	Clear()
	Export() ([]byte, error)
	Import(data []byte) error
	HasMask() bool
}

type PointerKind string

const (
	PointerDown  PointerKind = "down"
	PointerMove  PointerKind = "move"
	PointerUp    PointerKind = "up"
	PointerLeave PointerKind = "leave"
)

// PointerInput is one pointer sample together with the viewport it was observed in.
type PointerInput struct {
	Kind     PointerKind  `json:"type"`
	Event    PointerEvent `json:"event"`
	Viewport Viewport     `json:"viewport"`
}

// Engine owns one mask buffer and its undo history. It is not safe for
// concurrent use; callers serialize access per editing session.
type Engine struct {
	buf        *image.NRGBA
	history    *history
	brush      Brush
	stroker    *stroker
	cursor     Cursor
	drawing    bool
	last       Point
	hasMask    bool
	onPresence PresenceFunc
}

var _ Session = (*Engine)(nil)

func NewEngine() *Engine {
	b := DefaultBrush()
	return &Engine{
		brush:   b,
		cursor:  Cursor{Diameter: b.Size, Glow: 100 - b.Hardness},
		history: newHistory(MaxHistory),
	}
}

// Initialize binds the engine to a source image of w x h pixels. Any previous
// buffer, history and active stroke are discarded.
func (e *Engine) Initialize(w, h int) error {
	if w <= 0 || h <= 0 {
		return ErrInvalidSize
	}
	e.buf = image.NewNRGBA(image.Rect(0, 0, w, h))
	e.stroker = nil
	e.history = newHistory(MaxHistory)
	e.history.push(e.buf.Pix)
	e.drawing = false
	e.hasMask = false
	return nil
}

func (e *Engine) Initialized() bool {
	return e.buf != nil
}

// Size returns the buffer dimensions, zero before Initialize.
func (e *Engine) Size() (int, int) {
	if e.buf == nil {
		return 0, 0
	}
	return e.buf.Rect.Dx(), e.buf.Rect.Dy()
}

func (e *Engine) OnPresenceChange(fn PresenceFunc) {
	e.onPresence = fn
}

func (e *Engine) SetBrush(b Brush) {
	e.brush = b.Normalized()
	e.stroker = nil
	e.cursor.Diameter = e.brush.Size
	e.cursor.Glow = 100 - e.brush.Hardness
}

func (e *Engine) Brush() Brush {
	return e.brush
}

func (e *Engine) Cursor() Cursor {
	return e.cursor
}

func (e *Engine) HistoryLen() int {
	if e.buf == nil {
		return 0
	}
	return e.history.len()
}

func (e *Engine) Drawing() bool {
	return e.drawing
}

func (e *Engine) HasMask() bool {
	return e.hasMask
}

// Dispatch routes a pointer sample to the matching stroke operation.
func (e *Engine) Dispatch(in PointerInput) {
	switch in.Kind {
	case PointerDown:
		e.BeginStroke(in.Event, in.Viewport)
	case PointerMove:
		e.ContinueStroke(in.Event, in.Viewport)
	case PointerUp:
		e.EndStroke()
	case PointerLeave:
		e.Leave()
	}
}

func (e *Engine) BeginStroke(ev PointerEvent, vp Viewport) {
	if e.buf == nil {
		return
	}
	p, ok := MapToBuffer(ev, vp, e.buf.Rect.Dx(), e.buf.Rect.Dy())
	if !ok {
		return
	}
	e.drawing = true
	e.last = p
	e.ContinueStroke(ev, vp)
}

// ContinueStroke always moves the cursor preview; it only paints while a stroke is active.
func (e *Engine) ContinueStroke(ev PointerEvent, vp Viewport) {
	e.cursor = cursorFor(ev, vp, e.brush)
	if !e.drawing || e.buf == nil {
		return
	}
	p, ok := MapToBuffer(ev, vp, e.buf.Rect.Dx(), e.buf.Rect.Dy())
	if !ok {
		return
	}
	if e.stroker == nil {
		e.stroker = newStroker(e.brush, e.buf.Rect.Dx())
	}
	e.stroker.segment(e.buf, e.last, p)
	e.last = p
}

func (e *Engine) EndStroke() {
	if !e.drawing {
		return
	}
	e.drawing = false
	if e.buf == nil {
		return
	}
	e.history.push(e.buf.Pix)
	e.refreshPresence()
}

// Leave hides the cursor preview and ends any active stroke.
func (e *Engine) Leave() {
	e.cursor.Visible = false
	e.EndStroke()
}

func (e *Engine) Undo() {
	if e.buf == nil {
		return
	}
	if !e.history.pop() {
		return
	}
	copy(e.buf.Pix, e.history.newest())
	e.refreshPresence()
}

func (e *Engine) Clear() {
	if e.buf == nil {
		return
	}
	e.drawing = false
	for i := range e.buf.Pix {
		e.buf.Pix[i] = 0
	}
	e.history.reset(e.buf.Pix)
	e.hasMask = false
	e.notify()
}

// Export encodes the buffer as a PNG at native resolution.
func (e *Engine) Export() ([]byte, error) {
	if e.buf == nil {
		return nil, ErrNotInitialized
	}
	return encodePNG(e.buf)
}

// Import replaces the buffer with a PNG mask, rescaling it if its size differs,
// and records the result as a new history entry.
func (e *Engine) Import(data []byte) error {
	if e.buf == nil {
		return ErrNotInitialized
	}
	img, err := decodeMask(data, e.buf.Rect.Dx(), e.buf.Rect.Dy())
	if err != nil {
		return err
	}
	e.drawing = false
	copy(e.buf.Pix, img.Pix)
	e.history.push(e.buf.Pix)
	e.refreshPresence()
	return nil
}

func (e *Engine) refreshPresence() {
	e.hasMask = anyAlpha(e.buf.Pix)
	e.notify()
}

func (e *Engine) notify() {
	if e.onPresence != nil {
		e.onPresence(e.hasMask)
	}
}

func anyAlpha(pix []byte) bool {
	for i := 3; i < len(pix); i += 4 {
		if pix[i] > 0 {
			return true
		}
	}
	return false
}
