package ocrtool

import (
	"image"
	"image/color"

	"github.com/disintegration/imaging"
)

// Bitmap is a row-major grid of 8-bit samples. Channels is 1 for gray and
// binary images and 3 for RGB. Pipeline stages never mutate a Bitmap they
// receive, they return a new one.
type Bitmap struct {
	Width    int
	Height   int
	Channels int
	Pix      []uint8
}

// NewBitmap allocates a zeroed bitmap.
func NewBitmap(width, height, channels int) Bitmap {
	return Bitmap{
		Width:    width,
		Height:   height,
		Channels: channels,
		Pix:      make([]uint8, width*height*channels),
	}
}

// IsEmpty reports whether the bitmap has no pixels or an inconsistent buffer.
func (b Bitmap) IsEmpty() bool {
	return b.Width <= 0 || b.Height <= 0 || b.Channels <= 0 ||
		len(b.Pix) != b.Width*b.Height*b.Channels
}

func (b Bitmap) offset(x, y int) int {
	return (y*b.Width + x) * b.Channels
}

// At returns the sample of channel c at (x, y).
func (b Bitmap) At(x, y, c int) uint8 {
	return b.Pix[b.offset(x, y)+c]
}

// Set writes the sample of channel c at (x, y).
func (b Bitmap) Set(x, y, c int, v uint8) {
	b.Pix[b.offset(x, y)+c] = v
}

// Clone returns a deep copy.
func (b Bitmap) Clone() Bitmap {
	pix := make([]uint8, len(b.Pix))
	copy(pix, b.Pix)
	return Bitmap{Width: b.Width, Height: b.Height, Channels: b.Channels, Pix: pix}
}

// Equal reports whether both bitmaps hold the same geometry and samples.
func (b Bitmap) Equal(other Bitmap) bool {
	if b.Width != other.Width || b.Height != other.Height || b.Channels != other.Channels {
		return false
	}
	if len(b.Pix) != len(other.Pix) {
		return false
	}
	for i := range b.Pix {
		if b.Pix[i] != other.Pix[i] {
			return false
		}
	}
	return true
}

// BitmapFromImage converts a decoded image. Gray sources keep a single
// channel, everything else becomes RGB with alpha dropped.
func BitmapFromImage(img image.Image) Bitmap {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	switch src := img.(type) {
	case *image.Gray:
		b := NewBitmap(w, h, 1)
		for y := 0; y < h; y++ {
			row := src.Pix[y*src.Stride : y*src.Stride+w]
			copy(b.Pix[y*w:(y+1)*w], row)
		}
		return b
	case *image.Gray16:
		b := NewBitmap(w, h, 1)
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				g := src.Gray16At(bounds.Min.X+x, bounds.Min.Y+y)
				b.Pix[y*w+x] = uint8(g.Y >> 8)
			}
		}
		return b
	}

	// straight (non premultiplied) samples, so transparent pixels keep their color
	nrgba := imaging.Clone(img)
	b := NewBitmap(w, h, 3)
	for y := 0; y < h; y++ {
		row := nrgba.Pix[y*nrgba.Stride : y*nrgba.Stride+w*4]
		for x := 0; x < w; x++ {
			i := (y*w + x) * 3
			b.Pix[i] = row[x*4]
			b.Pix[i+1] = row[x*4+1]
			b.Pix[i+2] = row[x*4+2]
		}
	}
	return b
}

// Image returns an image.Image view suitable for the encoders.
func (b Bitmap) Image() image.Image {
	if b.Channels == 1 {
		img := image.NewGray(image.Rect(0, 0, b.Width, b.Height))
		copy(img.Pix, b.Pix)
		return img
	}
	img := image.NewNRGBA(image.Rect(0, 0, b.Width, b.Height))
	for y := 0; y < b.Height; y++ {
		for x := 0; x < b.Width; x++ {
			i := b.offset(x, y)
			img.SetNRGBA(x, y, color.NRGBA{R: b.Pix[i], G: b.Pix[i+1], B: b.Pix[i+2], A: 0xff})
		}
	}
	return img
}
