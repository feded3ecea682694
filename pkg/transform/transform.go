// Package transform renders one page image onto a fixed-size device canvas.
//
// Steps, in order: flatten to opaque RGB, plan the height-first/width-fallback layout,
// Lanczos resize, paste centred on a background canvas, contrast, unsharp mask.
package transform

import (
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"
	"github.com/walteh/kindlecbz/pkg/config"
	"gitlab.com/tozd/go/errors"
)

// Unsharp mask parameters applied when sharpening is enabled.
const (
	SharpenRadius    = 1.0
	SharpenPercent   = 150
	SharpenThreshold = 3
)

// MidGray is the channel value contrast scales around.
const MidGray = 127.5

// Transformer renders pages for one geometry and set of render options.
// It holds no mutable state and is safe for concurrent use.
type Transformer struct {
	geometry config.Geometry
	render   config.RenderOptions
}

// New creates a Transformer after checking the geometry.
func New(geometry config.Geometry, render config.RenderOptions) (*Transformer, error) {
	if err := geometry.Validate(); err != nil {
		return nil, errors.Errorf("%w: %w", ErrInvalidGeometry, err)
	}
	return &Transformer{geometry: geometry, render: render}, nil
}

// Geometry returns the canvas size every output has.
func (t *Transformer) Geometry() config.Geometry {
	return t.geometry
}

// Transform renders img onto a canvas of exactly the configured geometry.
func (t *Transformer) Transform(img image.Image) (*image.NRGBA, Layout, error) {
	if img == nil {
		return nil, Layout{}, errors.New("nil image")
	}

	src := Flatten(img)
	b := src.Bounds()

	layout, err := Plan(b.Dx(), b.Dy(), t.geometry)
	if err != nil {
		return nil, Layout{}, err
	}

	resized := imaging.Resize(src, layout.Width, layout.Height, imaging.Lanczos)

	canvas := imaging.New(t.geometry.Width, t.geometry.Height, t.render.Background.NRGBA())
	canvas = imaging.Paste(canvas, resized, image.Pt(layout.OffsetX, layout.OffsetY))

	if t.render.DoContrast && t.render.Contrast != 1.0 {
		canvas = Contrast(canvas, t.render.Contrast)
	}

	if t.render.DoSharpen && t.render.Sharpen > 0 {
		canvas = UnsharpMask(canvas, SharpenRadius, int(SharpenPercent*t.render.Sharpen), SharpenThreshold)
	}

	return canvas, layout, nil
}

// Flatten returns an opaque copy of img with its colour channels kept and alpha dropped.
func Flatten(img image.Image) *image.NRGBA {
	dst := imaging.Clone(img)
	for i := 3; i < len(dst.Pix); i += 4 {
		dst.Pix[i] = 0xff
	}
	return dst
}

// Contrast maps every channel v to 127.5 + factor*(v-127.5), clamped to 0..255.
func Contrast(img *image.NRGBA, factor float64) *image.NRGBA {
	var lut [256]uint8
	for v := range lut {
		lut[v] = clamp8(int(math.Round(MidGray + factor*(float64(v)-MidGray))))
	}

	return imaging.AdjustFunc(img, func(c color.NRGBA) color.NRGBA {
		return color.NRGBA{R: lut[c.R], G: lut[c.G], B: lut[c.B], A: c.A}
	})
}

// UnsharpMask sharpens img by adding percent% of the difference from a Gaussian blur of the
// given radius, leaving channels whose difference does not exceed threshold untouched.
func UnsharpMask(img *image.NRGBA, radius float64, percent, threshold int) *image.NRGBA {
	// Clone normalises bounds and stride so the three buffers line up.
	src := imaging.Clone(img)
	blurred := imaging.Blur(src, radius)
	dst := imaging.Clone(src)

	for i := 0; i < len(dst.Pix); i += 4 {
		for c := 0; c < 3; c++ {
			orig := int(src.Pix[i+c])
			diff := orig - int(blurred.Pix[i+c])
			if abs(diff) <= threshold {
				continue
			}
			dst.Pix[i+c] = clamp8(orig + diff*percent/100)
		}
	}

	return dst
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func clamp8(v int) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}
