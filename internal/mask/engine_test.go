package mask

import (
	"bytes"
	"encoding/binary"
	"errors"
	"hash/crc32"
	"image"
	"image/color"
	"image/png"
	"testing"
)

func fullView(w, h int) Viewport {
	return Viewport{Width: float64(w), Height: float64(h)}
}

func stroke(e *Engine, vp Viewport, pts ...Point) {
	if len(pts) == 0 {
		return
	}
	e.BeginStroke(PointerEvent{ClientX: pts[0].X, ClientY: pts[0].Y}, vp)
	for _, p := range pts[1:] {
		e.ContinueStroke(PointerEvent{ClientX: p.X, ClientY: p.Y}, vp)
	}
	e.EndStroke()
}

func newTestEngine(t *testing.T, w, h int) *Engine {
	t.Helper()
	e := NewEngine()
	if err := e.Initialize(w, h); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	return e
}

func alphaAt(e *Engine, x, y int) uint8 {
	return e.buf.NRGBAAt(x, y).A
}

func TestInitializeSizesBufferToSource(t *testing.T) {
	tests := []struct {
		name string
		w, h int
	}{
		{"landscape", 640, 480},
		{"portrait", 300, 900},
		{"single pixel", 1, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEngine(t, tt.w, tt.h)
			w, h := e.Size()
			if w != tt.w || h != tt.h {
				t.Fatalf("size=%dx%d want %dx%d", w, h, tt.w, tt.h)
			}
			if anyAlpha(e.buf.Pix) {
				t.Fatalf("buffer not transparent after initialize")
			}
			if e.HistoryLen() != 1 {
				t.Fatalf("history=%d want 1", e.HistoryLen())
			}
			if e.HasMask() {
				t.Fatalf("hasMask=true after initialize")
			}
		})
	}
}

func TestInitializeRejectsEmptySize(t *testing.T) {
	e := NewEngine()
	if err := e.Initialize(0, 10); !errors.Is(err, ErrInvalidSize) {
		t.Fatalf("err=%v want ErrInvalidSize", err)
	}
	if e.Initialized() {
		t.Fatalf("engine initialized with empty size")
	}
}

func TestOperationsBeforeInitializeAreNoOps(t *testing.T) {
	e := NewEngine()
	calls := 0
	e.OnPresenceChange(func(bool) { calls++ })

	vp := fullView(100, 100)
	stroke(e, vp, Point{10, 10}, Point{50, 50})
	e.Undo()
	e.Clear()
	e.Leave()

	if e.HasMask() {
		t.Fatalf("hasMask=true without a buffer")
	}
	if calls != 0 {
		t.Fatalf("presence notified %d times before initialize", calls)
	}
	if _, err := e.Export(); !errors.Is(err, ErrNotInitialized) {
		t.Fatalf("export err=%v want ErrNotInitialized", err)
	}
	if err := e.Import([]byte("x")); !errors.Is(err, ErrNotInitialized) {
		t.Fatalf("import err=%v want ErrNotInitialized", err)
	}
}

func TestPresenceFiresOnStrokeEnd(t *testing.T) {
	e := newTestEngine(t, 200, 100)
	var got []bool
	e.OnPresenceChange(func(v bool) { got = append(got, v) })

	vp := fullView(200, 100)
	e.BeginStroke(PointerEvent{ClientX: 20, ClientY: 20}, vp)
	e.ContinueStroke(PointerEvent{ClientX: 80, ClientY: 40}, vp)
	if len(got) != 0 {
		t.Fatalf("presence notified mid-stroke: %v", got)
	}
	e.EndStroke()

	if len(got) != 1 || !got[0] {
		t.Fatalf("notifications=%v want [true]", got)
	}
	if !e.HasMask() {
		t.Fatalf("hasMask=false after stroke")
	}
	if e.HistoryLen() != 2 {
		t.Fatalf("history=%d want 2", e.HistoryLen())
	}
}

func TestUndoNeverDropsBlankSnapshot(t *testing.T) {
	e := newTestEngine(t, 200, 100)
	vp := fullView(200, 100)
	for i := 0; i < 3; i++ {
		stroke(e, vp, Point{float64(20 + 40*i), 50}, Point{float64(30 + 40*i), 60})
	}

	for i := 0; i < 10; i++ {
		e.Undo()
	}

	if e.HistoryLen() != 1 {
		t.Fatalf("history=%d want 1", e.HistoryLen())
	}
	if anyAlpha(e.buf.Pix) {
		t.Fatalf("buffer not blank after exhausting undo")
	}
	if e.HasMask() {
		t.Fatalf("hasMask=true after exhausting undo")
	}
}

func TestUndoRestoresPreviousStroke(t *testing.T) {
	e := newTestEngine(t, 200, 100)
	vp := fullView(200, 100)
	stroke(e, vp, Point{20, 50})
	stroke(e, vp, Point{150, 50})

	if alphaAt(e, 150, 50) == 0 {
		t.Fatalf("second stroke not painted")
	}
	e.Undo()
	if alphaAt(e, 150, 50) != 0 {
		t.Fatalf("second stroke still present after undo")
	}
	if alphaAt(e, 20, 50) == 0 {
		t.Fatalf("first stroke lost after undo")
	}
	if !e.HasMask() {
		t.Fatalf("hasMask=false with first stroke remaining")
	}
}

func TestHistoryWindowIsBounded(t *testing.T) {
	e := newTestEngine(t, 400, 100)
	vp := fullView(400, 100)
	for i := 0; i < 25; i++ {
		stroke(e, vp, Point{float64(10 + 15*i), 50})
	}
	if e.HistoryLen() != MaxHistory {
		t.Fatalf("history=%d want %d", e.HistoryLen(), MaxHistory)
	}

	undos := 0
	for e.HistoryLen() > 1 {
		e.Undo()
		undos++
		if undos > MaxHistory {
			t.Fatalf("undo did not converge")
		}
	}
	if undos != MaxHistory-1 {
		t.Fatalf("undos=%d want %d", undos, MaxHistory-1)
	}

	e.Undo()
	if e.HistoryLen() != 1 {
		t.Fatalf("undo went below the floor")
	}
	// the evicted strokes are gone for good, the oldest retained one is the floor
	if !e.HasMask() {
		t.Fatalf("oldest retained snapshot should still hold early strokes")
	}
}

func TestClearResetsHistoryAndPresence(t *testing.T) {
	e := newTestEngine(t, 200, 100)
	var last *bool
	e.OnPresenceChange(func(v bool) { last = &v })

	vp := fullView(200, 100)
	stroke(e, vp, Point{50, 50}, Point{100, 50})
	stroke(e, vp, Point{50, 80})
	e.Clear()

	if last == nil || *last {
		t.Fatalf("clear should notify presence=false")
	}
	if e.HasMask() || anyAlpha(e.buf.Pix) {
		t.Fatalf("buffer not cleared")
	}
	if e.HistoryLen() != 1 {
		t.Fatalf("history=%d want 1", e.HistoryLen())
	}
	e.Undo()
	if e.HasMask() {
		t.Fatalf("undo after clear restored old strokes")
	}
}

func TestEraseRemovesPaint(t *testing.T) {
	e := newTestEngine(t, 200, 100)
	vp := fullView(200, 100)
	e.SetBrush(Brush{Size: 30, Hardness: 100})
	stroke(e, vp, Point{60, 50}, Point{140, 50})
	if !e.HasMask() {
		t.Fatalf("draw produced no mask")
	}

	e.SetBrush(Brush{Size: 45, Hardness: 100, Erase: true})
	stroke(e, vp, Point{60, 50}, Point{140, 50})

	if alphaAt(e, 100, 50) != 0 {
		t.Fatalf("center alpha=%d after erase", alphaAt(e, 100, 50))
	}
	if e.HasMask() {
		t.Fatalf("hasMask=true after erasing the whole stroke")
	}
}

func TestContinueStrokeTracksCursorWithoutStroke(t *testing.T) {
	e := newTestEngine(t, 1000, 500)
	vp := Viewport{Left: 100, Top: 50, Width: 500, Height: 250}

	e.ContinueStroke(PointerEvent{ClientX: 350, ClientY: 175}, vp)
	c := e.Cursor()
	if !c.Visible || c.X != 250 || c.Y != 125 {
		t.Fatalf("cursor=%+v want visible at 250,125", c)
	}
	if anyAlpha(e.buf.Pix) {
		t.Fatalf("hover painted without an active stroke")
	}

	e.ContinueStroke(PointerEvent{ClientX: 20, ClientY: 20}, vp)
	if e.Cursor().Visible {
		t.Fatalf("cursor visible outside the canvas")
	}

	e.ContinueStroke(PointerEvent{ClientX: 350, ClientY: 175}, vp)
	e.Leave()
	if e.Cursor().Visible {
		t.Fatalf("cursor visible after leave")
	}
}

func TestLeaveEndsActiveStroke(t *testing.T) {
	e := newTestEngine(t, 200, 100)
	vp := fullView(200, 100)
	e.BeginStroke(PointerEvent{ClientX: 50, ClientY: 50}, vp)
	e.Leave()
	if e.Drawing() {
		t.Fatalf("stroke still active after leave")
	}
	if e.HistoryLen() != 2 || !e.HasMask() {
		t.Fatalf("leave did not commit the stroke")
	}
}

func TestDispatchRoutesPointerKinds(t *testing.T) {
	e := newTestEngine(t, 200, 100)
	vp := fullView(200, 100)
	inputs := []PointerInput{
		{Kind: PointerDown, Event: PointerEvent{ClientX: 20, ClientY: 20}, Viewport: vp},
		{Kind: PointerMove, Event: PointerEvent{ClientX: 60, ClientY: 60}, Viewport: vp},
		{Kind: PointerUp},
	}
	for _, in := range inputs {
		e.Dispatch(in)
	}
	if !e.HasMask() || e.HistoryLen() != 2 {
		t.Fatalf("dispatch did not complete a stroke")
	}
}

func TestExportIsNativeResolution(t *testing.T) {
	e := newTestEngine(t, 1200, 800)
	// displayed at a quarter of the native size
	vp := Viewport{Left: 10, Top: 10, Width: 300, Height: 200}
	stroke(e, vp, Point{60, 60}, Point{200, 120})

	data, err := e.Export()
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	cfg, err := png.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode config: %v", err)
	}
	if cfg.Width != 1200 || cfg.Height != 800 {
		t.Fatalf("export size=%dx%d want 1200x800", cfg.Width, cfg.Height)
	}
}

func TestExportImportRoundTrip(t *testing.T) {
	e := newTestEngine(t, 320, 240)
	vp := fullView(320, 240)
	e.SetBrush(Brush{Size: 40, Hardness: 20})
	stroke(e, vp, Point{40, 40}, Point{200, 120}, Point{260, 200})

	first, err := e.Export()
	if err != nil {
		t.Fatalf("export: %v", err)
	}

	other := newTestEngine(t, 320, 240)
	if err := other.Import(first); err != nil {
		t.Fatalf("import: %v", err)
	}
	second, err := other.Export()
	if err != nil {
		t.Fatalf("second export: %v", err)
	}
	if !bytes.Equal(first, second) {
		t.Fatalf("round trip changed the export")
	}
	if !other.HasMask() {
		t.Fatalf("imported mask not detected")
	}
}

func TestImportRescalesToBuffer(t *testing.T) {
	small := newTestEngine(t, 50, 25)
	stroke(small, fullView(50, 25), Point{25, 12})
	data, err := small.Export()
	if err != nil {
		t.Fatalf("export: %v", err)
	}

	e := newTestEngine(t, 200, 100)
	if err := e.Import(data); err != nil {
		t.Fatalf("import: %v", err)
	}
	if w, h := e.Size(); w != 200 || h != 100 {
		t.Fatalf("import resized buffer to %dx%d", w, h)
	}
	if !e.HasMask() {
		t.Fatalf("rescaled mask lost its strokes")
	}
	if e.HistoryLen() != 2 {
		t.Fatalf("history=%d want 2", e.HistoryLen())
	}
}

// pngHeader returns a PNG signature and IHDR chunk declaring w x h RGBA pixels
// with no image data behind it.
func pngHeader(w, h uint32) []byte {
	ihdr := make([]byte, 13)
	binary.BigEndian.PutUint32(ihdr[0:], w)
	binary.BigEndian.PutUint32(ihdr[4:], h)
	ihdr[8], ihdr[9] = 8, 6

	var buf bytes.Buffer
	buf.WriteString("\x89PNG\r\n\x1a\n")
	_ = binary.Write(&buf, binary.BigEndian, uint32(len(ihdr)))
	chunk := append([]byte("IHDR"), ihdr...)
	buf.Write(chunk)
	_ = binary.Write(&buf, binary.BigEndian, crc32.ChecksumIEEE(chunk))
	return buf.Bytes()
}

func TestImportRejectsInvalidMasks(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"not a png", []byte("not a png")},
		{"huge header", pngHeader(1<<24, 1<<24)},
		{"just over limit", pngHeader(MaxImportPixels/1024+1, 1024)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEngine(t, 10, 10)
			if err := e.Import(tt.data); !errors.Is(err, ErrInvalidMask) {
				t.Fatalf("err=%v want ErrInvalidMask", err)
			}
			if e.HistoryLen() != 1 {
				t.Fatalf("failed import touched history")
			}
		})
	}
}

func TestImportConvertsGrayMask(t *testing.T) {
	gray := image.NewGray(image.Rect(0, 0, 20, 20))
	gray.SetGray(5, 5, color.Gray{Y: 200})
	var buf bytes.Buffer
	if err := png.Encode(&buf, gray); err != nil {
		t.Fatalf("encode: %v", err)
	}

	e := newTestEngine(t, 20, 20)
	if err := e.Import(buf.Bytes()); err != nil {
		t.Fatalf("import: %v", err)
	}
	if c := e.buf.NRGBAAt(5, 5); c.R != 200 || c.A != 255 {
		t.Fatalf("converted pixel=%v", c)
	}
	if !e.HasMask() {
		t.Fatalf("opaque gray mask not detected")
	}
}
