package mask

import (
	"bytes"
	"fmt"
	"image"
	"image/png"

	xdraw "golang.org/x/image/draw"
)

func encodePNG(img *image.NRGBA) ([]byte, error) {
	var buf bytes.Buffer
	enc := png.Encoder{CompressionLevel: png.DefaultCompression}
	if err := enc.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode mask: %w", err)
	}
	return buf.Bytes(), nil
}

// MaxImportPixels bounds the decoded size of an imported mask before any pixel
// buffer is allocated.
const MaxImportPixels = 64 << 20

// decodeMask reads a PNG mask and fits it to a w x h buffer.
// Fully transparent pixels are zeroed so exports stay canonical.
func decodeMask(data []byte, w, h int) (*image.NRGBA, error) {
	cfg, err := png.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMask, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 || int64(cfg.Width)*int64(cfg.Height) > MaxImportPixels {
		return nil, fmt.Errorf("%w: %dx%d exceeds %d pixels", ErrInvalidMask, cfg.Width, cfg.Height, MaxImportPixels)
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMask, err)
	}

	src := toNRGBA(img)
	if src.Rect.Dx() != w || src.Rect.Dy() != h {
		dst := image.NewNRGBA(image.Rect(0, 0, w, h))
		xdraw.NearestNeighbor.Scale(dst, dst.Rect, src, src.Rect, xdraw.Src, nil)
		src = dst
	}

	for i := 0; i < len(src.Pix); i += 4 {
		if src.Pix[i+3] == 0 {
			src.Pix[i], src.Pix[i+1], src.Pix[i+2] = 0, 0, 0
		}
	}
	return src, nil
}

func toNRGBA(img image.Image) *image.NRGBA {
	b := img.Bounds()
	if n, ok := img.(*image.NRGBA); ok && b.Min == (image.Point{}) {
		return n
	}
	out := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	xdraw.Draw(out, out.Rect, img, b.Min, xdraw.Src)
	return out
}
