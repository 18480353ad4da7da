package ocrtool

import (
	"github.com/pkg/errors"
)

// MaxCropFraction is the largest share of a dimension that may be removed
// from a single edge.
const MaxCropFraction = 0.25

// CropFractions holds the share of each edge to cut away. Each value lies in
// [0, MaxCropFraction], which keeps top+bottom and left+right below 1.
type CropFractions struct {
	Top    float64 `json:"top"`
	Left   float64 `json:"left"`
	Right  float64 `json:"right"`
	Bottom float64 `json:"bottom"`
}

// UniformCrop sets every edge to the same fraction.
func UniformCrop(fraction float64) CropFractions {
	return CropFractions{Top: fraction, Left: fraction, Right: fraction, Bottom: fraction}
}

// IsZero reports whether nothing would be cropped.
func (c CropFractions) IsZero() bool {
	return c.Top == 0 && c.Left == 0 && c.Right == 0 && c.Bottom == 0
}

// Validate checks every edge against the allowed range.
func (c CropFractions) Validate() error {
	edges := []struct {
		name  string
		value float64
	}{
		{"top", c.Top}, {"left", c.Left}, {"right", c.Right}, {"bottom", c.Bottom},
	}
	for _, e := range edges {
		if e.value < 0 || e.value > MaxCropFraction {
			return errors.Errorf("crop fraction %s=%v outside [0, %v]", e.name, e.value, MaxCropFraction)
		}
	}
	return nil
}

// Rect returns the pixel window [top:bottom, left:right] for a width x height
// image, truncating to whole pixels. Fractions within the allowed range
// always keep at least one pixel per axis.
func (c CropFractions) Rect(width, height int) (left, top, right, bottom int) {
	left = int(float64(width) * c.Left)
	top = int(float64(height) * c.Top)
	right = int(float64(width) * (1 - c.Right))
	bottom = int(float64(height) * (1 - c.Bottom))
	if c.Validate() == nil {
		right = max(right, left+1)
		bottom = max(bottom, top+1)
	}
	return left, top, right, bottom
}

// Crop returns a copy of the region left after removing the given fractions.
// The input is left untouched.
func Crop(b Bitmap, fractions CropFractions) (Bitmap, error) {
	if b.IsEmpty() {
		return Bitmap{}, &InvalidInputError{Reason: "crop: empty bitmap"}
	}

	left, top, right, bottom := fractions.Rect(b.Width, b.Height)
	w, h := right-left, bottom-top
	if w <= 0 || h <= 0 || left < 0 || top < 0 || right > b.Width || bottom > b.Height {
		return Bitmap{}, &InvalidCropError{Fractions: fractions, Width: w, Height: h}
	}

	out := NewBitmap(w, h, b.Channels)
	rowLen := w * b.Channels
	for y := 0; y < h; y++ {
		src := b.offset(left, top+y)
		copy(out.Pix[y*rowLen:(y+1)*rowLen], b.Pix[src:src+rowLen])
	}
	return out, nil
}
