package track

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidBox marks a detection rejected at the tracker boundary
// because its geometry is malformed (x1>=x2, y1>=y2 or non-finite).
var ErrInvalidBox = errors.New("invalid box geometry")

// Box is an axis-aligned bounding box in image pixel coordinates.
// A valid box has X1 < X2 and Y1 < Y2.
type Box struct {
	X1, Y1, X2, Y2 float64
}

// Detection is one detector output for a frame. Score is carried for
// downstream consumers (OCR, persistence); the tracker itself ignores
// it; confidence filtering belongs to the detector.
type Detection struct {
	Box   Box
	Score float64
}

// Validate rejects degenerate or non-finite boxes.
func (b Box) Validate() error {
	for _, v := range []float64{b.X1, b.Y1, b.X2, b.Y2} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: non-finite coordinate in (%g,%g,%g,%g)", ErrInvalidBox, b.X1, b.Y1, b.X2, b.Y2)
		}
	}
	if b.X1 >= b.X2 || b.Y1 >= b.Y2 {
		return fmt.Errorf("%w: (%g,%g,%g,%g)", ErrInvalidBox, b.X1, b.Y1, b.X2, b.Y2)
	}
	return nil
}

// Width returns the horizontal extent of the box.
func (b Box) Width() float64 { return b.X2 - b.X1 }

// Height returns the vertical extent of the box.
func (b Box) Height() float64 { return b.Y2 - b.Y1 }

// Area returns the box area in square pixels.
func (b Box) Area() float64 { return b.Width() * b.Height() }

// Contains reports whether inner lies strictly inside b.
func (b Box) Contains(inner Box) bool {
	return inner.X1 > b.X1 && inner.Y1 > b.Y1 && inner.X2 < b.X2 && inner.Y2 < b.Y2
}

// IoU returns the intersection-over-union of two boxes in [0, 1].
// Disjoint boxes score 0; a zero-area box scores 0 rather than NaN.
func IoU(a, b Box) float64 {
	ix1 := math.Max(a.X1, b.X1)
	iy1 := math.Max(a.Y1, b.Y1)
	ix2 := math.Min(a.X2, b.X2)
	iy2 := math.Min(a.Y2, b.Y2)

	iw := ix2 - ix1
	ih := iy2 - iy1
	if iw <= 0 || ih <= 0 {
		return 0
	}

	intersection := iw * ih
	union := a.Area() + b.Area() - intersection
	if union <= 0 {
		return 0
	}
	return intersection / union
}

// observation converts the box to the filter's measurement space:
// center, area (scale) and aspect ratio (width/height).
func (b Box) observation() (cx, cy, s, r float64) {
	w := b.Width()
	h := b.Height()
	cx = b.X1 + w/2
	cy = b.Y1 + h/2
	s = w * h
	r = w / h
	return
}

// boxFromState is the exact inverse of observation: given center, area
// and aspect ratio, recover the corner form. Callers must ensure s and
// r are positive.
func boxFromState(cx, cy, s, r float64) Box {
	w := math.Sqrt(s * r)
	h := s / w
	return Box{
		X1: cx - w/2,
		Y1: cy - h/2,
		X2: cx + w/2,
		Y2: cy + h/2,
	}
}
