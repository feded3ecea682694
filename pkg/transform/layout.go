package transform

import (
	"fmt"
	"math"

	"github.com/walteh/kindlecbz/pkg/config"
	"gitlab.com/tozd/go/errors"
)

var ErrInvalidGeometry = errors.Base("invalid geometry")

// Layout is where a scaled page lands on the target canvas.
type Layout struct {
	Canvas   config.Geometry // Always the target geometry
	Width    int             // Scaled page width
	Height   int             // Scaled page height
	OffsetX  int             // Left edge of the scaled page on the canvas
	OffsetY  int             // Top edge of the scaled page on the canvas
	Fallback bool            // Width-fit was used because height-fit overflowed
}

func (l Layout) String() string {
	mode := "height-fit"
	if l.Fallback {
		mode = "width-fit"
	}
	return fmt.Sprintf("%dx%d@%d,%d on %s (%s)", l.Width, l.Height, l.OffsetX, l.OffsetY, l.Canvas, mode)
}

// Plan computes the height-first, width-fallback layout of a srcW x srcH page.
//
// The page is first scaled so its height matches the target. If that makes it wider than
// the target it is scaled by width instead. Rounding is half-to-even and a ±1px residue
// against the target is kept as is.
func Plan(srcW, srcH int, target config.Geometry) (Layout, error) {
	if err := target.Validate(); err != nil {
		return Layout{}, errors.Errorf("%w: %w", ErrInvalidGeometry, err)
	}
	if srcW <= 0 || srcH <= 0 {
		return Layout{}, errors.Errorf("%w: source is %dx%d", ErrInvalidGeometry, srcW, srcH)
	}

	scale := float64(target.Height) / float64(srcH)
	w := roundDim(float64(srcW) * scale)
	h := roundDim(float64(srcH) * scale)

	fallback := false
	if w > target.Width {
		fallback = true
		scale = float64(target.Width) / float64(srcW)
		w = roundDim(float64(srcW) * scale)
		h = roundDim(float64(srcH) * scale)
	}

	return Layout{
		Canvas:   target,
		Width:    w,
		Height:   h,
		OffsetX:  floorDiv(target.Width-w, 2),
		OffsetY:  floorDiv(target.Height-h, 2),
		Fallback: fallback,
	}, nil
}

// roundDim rounds half to even and never returns less than one pixel.
func roundDim(v float64) int {
	n := int(math.RoundToEven(v))
	if n < 1 {
		return 1
	}
	return n
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
