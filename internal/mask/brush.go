package mask

import (
	"image"
	"image/color"
	"math"
)

const (
	// ReferenceWidth is the buffer width at which one unit of brush size equals half a pixel of stroke.
	ReferenceWidth = 1000.0

	DefaultBrushSize     = 30
	DefaultBrushHardness = 80
	MinBrushSize         = 5
	MaxBrushSize         = 150
)

// markerColor only tags painted pixels; the edit intent lives in the alpha channel.
var markerColor = color.NRGBA{R: 239, G: 68, B: 68, A: 255}

type Brush struct {
	Size     float64 `json:"size"`
	Hardness float64 `json:"hardness"`
	Erase    bool    `json:"erase"`
}

func DefaultBrush() Brush {
	return Brush{Size: DefaultBrushSize, Hardness: DefaultBrushHardness}
}

// Normalized clamps size and hardness into their supported ranges.
func (b Brush) Normalized() Brush {
	b.Size = clamp(b.Size, MinBrushSize, MaxBrushSize)
	b.Hardness = clamp(b.Hardness, 0, 100)
	return b
}

// StrokeWidth returns the stroke width in buffer pixels for a buffer of the given width.
func (b Brush) StrokeWidth(bufferWidth int) float64 {
	return b.Size * (float64(bufferWidth) / ReferenceWidth) * 2
}

// Blur returns the glow radius for a stroke of the given width: zero at hardness 100.
func (b Brush) Blur(strokeWidth float64) float64 {
	return (100 - clamp(b.Hardness, 0, 100)) * (strokeWidth / 100)
}

// minVisible is the smallest coverage that still moves an 8-bit alpha.
const minVisible = 0.5 / 255

// stroker rasterizes segments for one brush at one buffer width. The hard core
// is evaluated directly; the gaussian glow is tabulated once by distance past
// the core so the per-pixel cost is a lookup.
type stroker struct {
	erase  bool
	radius float64
	reach  float64
	step   float64
	glow   []float64 // glow coverage from radius-0.5 outward, zero-terminated
}

func newStroker(b Brush, bufferWidth int) *stroker {
	width := b.StrokeWidth(bufferWidth)
	if width <= 0 {
		return nil
	}
	radius := width / 2
	sigma := b.Blur(width) / 2
	s := &stroker{erase: b.Erase, radius: radius, reach: radius + 0.5}
	if sigma <= 0 {
		return s
	}

	s.step = clamp(sigma/4, 1.0/64, 0.125)
	for i := 0; ; i++ {
		t := float64(i)*s.step - 0.5
		g := 0.5 * math.Erfc(t/(sigma*math.Sqrt2))
		if t > 0 && g < minVisible {
			break
		}
		s.glow = append(s.glow, g)
	}
	s.glow = append(s.glow, 0)
	s.reach = math.Max(s.reach, radius-0.5+float64(len(s.glow)-1)*s.step)
	return s
}

// at returns the coverage at distance d from the stroke centre line; it is zero
// from reach outward.
func (s *stroker) at(d float64) float64 {
	if d >= s.reach {
		return 0
	}
	c := clamp(s.radius+0.5-d, 0, 1)
	if c >= 1 || len(s.glow) == 0 {
		return c
	}
	pos := (d - s.radius + 0.5) / s.step
	i := int(pos)
	if i >= len(s.glow)-1 {
		return c
	}
	frac := pos - float64(i)
	return math.Max(c, s.glow[i]+(s.glow[i+1]-s.glow[i])*frac)
}

// segment paints one pointer step: the connected line a -> b, then a filled
// disc at b so sparse pointer samples never leave gaps. Both shapes are
// composited in a single pass; the result equals layering one over the other.
func (s *stroker) segment(buf *image.NRGBA, a, b Point) {
	if s == nil {
		return
	}
	reach := s.reach
	area := image.Rect(
		int(math.Floor(math.Min(a.X, b.X)-reach)),
		int(math.Floor(math.Min(a.Y, b.Y)-reach)),
		int(math.Ceil(math.Max(a.X, b.X)+reach)),
		int(math.Ceil(math.Max(a.Y, b.Y)+reach)),
	).Intersect(buf.Rect)
	if area.Empty() {
		return
	}
	reachSq := reach * reach

	for y := area.Min.Y; y < area.Max.Y; y++ {
		py := float64(y) + 0.5
		for x := area.Min.X; x < area.Max.X; x++ {
			p := Point{X: float64(x) + 0.5, Y: py}
			line := s.at(distanceToSegment(p, a, b))
			if line <= 0 {
				continue
			}
			disc := 0.0
			if dx, dy := p.X-b.X, p.Y-b.Y; dx*dx+dy*dy < reachSq {
				disc = s.at(math.Sqrt(dx*dx + dy*dy))
			}
			keep := (1 - line) * (1 - disc)

			i := buf.PixOffset(x, y)
			dst := float64(buf.Pix[i+3]) / 255
			var out float64
			if s.erase {
				out = dst * keep
			} else {
				out = 1 - (1-dst)*keep
			}

			alpha := uint8(math.Round(out * 255))
			if alpha == 0 {
				buf.Pix[i], buf.Pix[i+1], buf.Pix[i+2], buf.Pix[i+3] = 0, 0, 0, 0
				continue
			}
			buf.Pix[i] = markerColor.R
			buf.Pix[i+1] = markerColor.G
			buf.Pix[i+2] = markerColor.B
			buf.Pix[i+3] = alpha
		}
	}
}

func distanceToSegment(p, a, b Point) float64 {
	dx, dy := b.X-a.X, b.Y-a.Y
	lenSq := dx*dx + dy*dy
	if lenSq == 0 {
		ex, ey := p.X-a.X, p.Y-a.Y
		return math.Sqrt(ex*ex + ey*ey)
	}
	t := clamp(((p.X-a.X)*dx+(p.Y-a.Y)*dy)/lenSq, 0, 1)
	ex, ey := p.X-(a.X+t*dx), p.Y-(a.Y+t*dy)
	return math.Sqrt(ex*ex + ey*ey)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
