package ocrtool

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/couchbaselabs/go.assert"
)

// squareBitmap is a white gray image with a black size x size square whose
// top left corner sits at (x0, y0).
func squareBitmap(width, height, x0, y0, size int) Bitmap {
	b := NewBitmap(width, height, 1)
	for i := range b.Pix {
		b.Pix[i] = 255
	}
	for y := y0; y < y0+size; y++ {
		for x := x0; x < x0+size; x++ {
			b.Set(x, y, 0, 0)
		}
	}
	return b
}

// colorBitmap fills an RGB bitmap with a deterministic pattern.
func colorBitmap(width, height int) Bitmap {
	b := NewBitmap(width, height, 3)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			b.Set(x, y, 0, uint8((x*37+y*11)%256))
			b.Set(x, y, 1, uint8((x*5+y*53)%256))
			b.Set(x, y, 2, uint8((x*71+y*3)%256))
		}
	}
	return b
}

func countValue(b Bitmap, v uint8) int {
	n := 0
	for _, p := range b.Pix {
		if p == v {
			n++
		}
	}
	return n
}

func writePNG(t *testing.T, dir string, name string, b Bitmap) string {
	encoded, err := EncodePNG(b)
	assert.True(t, err == nil)
	path := filepath.Join(dir, name)
	assert.True(t, os.WriteFile(path, encoded, 0600) == nil)
	return path
}
