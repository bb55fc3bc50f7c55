package mask

type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type Touch struct {
	ClientX float64 `json:"clientX"`
	ClientY float64 `json:"clientY"`
}

// PointerEvent carries viewport coordinates of a mouse or touch sample.
// Touch samples use the first active touch.
type PointerEvent struct {
	ClientX float64 `json:"clientX"`
	ClientY float64 `json:"clientY"`
	Touches []Touch `json:"touches,omitempty"`
}

func (ev PointerEvent) client() (float64, float64) {
	if len(ev.Touches) > 0 {
		return ev.Touches[0].ClientX, ev.Touches[0].ClientY
	}
	return ev.ClientX, ev.ClientY
}

// Viewport is the on-screen rectangle the canvas is displayed in at the time of the event.
type Viewport struct {
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

func (v Viewport) valid() bool {
	return v.Width > 0 && v.Height > 0
}

func (v Viewport) contains(x, y float64) bool {
	return x >= v.Left && x <= v.Left+v.Width && y >= v.Top && y <= v.Top+v.Height
}

// MapToBuffer converts an event to buffer pixel space. Scale factors are taken
// from the viewport passed with each event, independently per axis.
func MapToBuffer(ev PointerEvent, vp Viewport, bufferWidth, bufferHeight int) (Point, bool) {
	if !vp.valid() || bufferWidth <= 0 || bufferHeight <= 0 {
		return Point{}, false
	}
	x, y := ev.client()
	scaleX := float64(bufferWidth) / vp.Width
	scaleY := float64(bufferHeight) / vp.Height
	return Point{
		X: (x - vp.Left) * scaleX,
		Y: (y - vp.Top) * scaleY,
	}, true
}

// Cursor is the brush preview ring, in display space relative to the viewport.
type Cursor struct {
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Visible  bool    `json:"visible"`
	Diameter float64 `json:"diameter"`
	Glow     float64 `json:"glow"`
}

func cursorFor(ev PointerEvent, vp Viewport, b Brush) Cursor {
	c := Cursor{
		Diameter: b.Size,
		Glow:     100 - clamp(b.Hardness, 0, 100),
	}
	x, y := ev.client()
	if !vp.valid() || !vp.contains(x, y) {
		return c
	}
	c.X = x - vp.Left
	c.Y = y - vp.Top
	c.Visible = true
	return c
}
