package ocrtool

import (
	"math"
)

const (
	// DefaultDenoiseKernel is the Gaussian kernel size of the denoise stage. A
	// 1x1 kernel leaves the image untouched.
	DefaultDenoiseKernel = 1
	// MorphKernelSize is the side of the square structuring element used by
	// Dilate and Erode.
	MorphKernelSize = 2

	float32Epsilon = 1.1920929e-07
)

// PipelineOptions tunes Process. The zero value uses the defaults.
type PipelineOptions struct {
	DenoiseKernel int
}

func (o PipelineOptions) denoiseKernel() int {
	if o.DenoiseKernel <= 0 {
		return DefaultDenoiseKernel
	}
	return o.DenoiseKernel
}

// Process runs grayscale -> denoise -> binarize -> dilate -> erode and
// returns the final binary bitmap.
func Process(original Bitmap) (Bitmap, error) {
	return ProcessWithOptions(original, PipelineOptions{})
}

// ProcessWithOptions is Process with a configurable denoise kernel.
func ProcessWithOptions(original Bitmap, opts PipelineOptions) (Bitmap, error) {
	if original.IsEmpty() {
		return Bitmap{}, &InvalidInputError{Reason: "empty bitmap"}
	}

	gray, err := ToGrayscale(original)
	if err != nil {
		return Bitmap{}, err
	}
	smooth, err := Denoise(gray, opts.denoiseKernel())
	if err != nil {
		return Bitmap{}, err
	}
	binary, err := Binarize(smooth)
	if err != nil {
		return Bitmap{}, err
	}
	dilated, err := Dilate(binary)
	if err != nil {
		return Bitmap{}, err
	}
	return Erode(dilated)
}

// ToGrayscale reduces an RGB bitmap to one channel with the BT.601 luma
// weights (0.299 R + 0.587 G + 0.114 B). Single channel input is returned as is.
func ToGrayscale(b Bitmap) (Bitmap, error) {
	if b.IsEmpty() {
		return Bitmap{}, &InvalidInputError{Reason: "empty bitmap"}
	}
	switch b.Channels {
	case 1:
		return b, nil
	case 3:
	default:
		return Bitmap{}, &InvalidInputError{Reason: "grayscale expects 1 or 3 channels"}
	}

	gray := NewBitmap(b.Width, b.Height, 1)
	for i := range gray.Pix {
		r := uint32(b.Pix[i*3])
		g := uint32(b.Pix[i*3+1])
		bl := uint32(b.Pix[i*3+2])
		// same fixed point weights as color.GrayModel
		gray.Pix[i] = uint8((19595*r + 38470*g + 7471*bl + 1<<15) >> 16)
	}
	return gray, nil
}

// Denoise applies a Gaussian blur with an odd kernel size. The sigma is
// derived from the kernel size and borders are mirrored without repeating
// the edge sample.
func Denoise(gray Bitmap, kernelSize int) (Bitmap, error) {
	if err := requireSingleChannel(gray, "denoise"); err != nil {
		return Bitmap{}, err
	}
	if kernelSize <= 0 || kernelSize%2 == 0 {
		return Bitmap{}, &InvalidInputError{Reason: "denoise kernel size must be odd and positive"}
	}
	if kernelSize == 1 {
		return gray.Clone(), nil
	}

	kernel := gaussianKernel(kernelSize)
	radius := kernelSize / 2
	w, h := gray.Width, gray.Height

	tmp := make([]float64, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			var sum float64
			for k := -radius; k <= radius; k++ {
				sum += kernel[k+radius] * float64(gray.Pix[y*w+reflect101(x+k, w)])
			}
			tmp[y*w+x] = sum
		}
	}

	out := NewBitmap(w, h, 1)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			var sum float64
			for k := -radius; k <= radius; k++ {
				sum += kernel[k+radius] * tmp[reflect101(y+k, h)*w+x]
			}
			out.Pix[y*w+x] = clampUint8(math.Round(sum))
		}
	}
	return out, nil
}

func gaussianKernel(size int) []float64 {
	sigma := 0.3*(float64(size-1)*0.5-1) + 0.8
	kernel := make([]float64, size)
	radius := size / 2
	var sum float64
	for i := range kernel {
		d := float64(i - radius)
		kernel[i] = math.Exp(-(d * d) / (2 * sigma * sigma))
		sum += kernel[i]
	}
	for i := range kernel {
		kernel[i] /= sum
	}
	return kernel
}

// reflect101 mirrors an out of range coordinate: -1 -> 1, n -> n-2.
func reflect101(i, n int) int {
	if n == 1 {
		return 0
	}
	for i < 0 || i >= n {
		if i < 0 {
			i = -i
		}
		if i >= n {
			i = 2*n - 2 - i
		}
	}
	return i
}

// OtsuThreshold returns the histogram threshold that maximizes the
// between-class variance, which is the same as minimizing the intra-class
// variance. Uniform images yield 0.
func OtsuThreshold(gray Bitmap) uint8 {
	var hist [256]int
	for _, v := range gray.Pix {
		hist[v]++
	}

	scale := 1.0 / float64(len(gray.Pix))
	var mu float64
	for i, n := range hist {
		mu += float64(i) * float64(n)
	}
	mu *= scale

	var q1, mu1, maxSigma float64
	var threshold int
	for i, n := range hist {
		p := float64(n) * scale
		mu1 *= q1
		q1 += p
		q2 := 1 - q1

		if math.Min(q1, q2) < float32Epsilon || math.Max(q1, q2) > 1-float32Epsilon {
			continue
		}

		mu1 = (mu1 + float64(i)*p) / q1
		mu2 := (mu - q1*mu1) / q2
		sigma := q1 * q2 * (mu1 - mu2) * (mu1 - mu2)
		if sigma > maxSigma {
			maxSigma = sigma
			threshold = i
		}
	}
	return uint8(threshold)
}

// Binarize thresholds at the Otsu level: samples above it become 255, the
// rest 0.
func Binarize(gray Bitmap) (Bitmap, error) {
	if err := requireSingleChannel(gray, "binarize"); err != nil {
		return Bitmap{}, err
	}
	return threshold(gray, OtsuThreshold(gray)), nil
}

func threshold(gray Bitmap, t uint8) Bitmap {
	out := NewBitmap(gray.Width, gray.Height, 1)
	for i, v := range gray.Pix {
		if v > t {
			out.Pix[i] = 255
		}
	}
	return out
}

// Dilate grows 255 regions with a 2x2 element, one iteration.
func Dilate(binary Bitmap) (Bitmap, error) {
	if err := requireSingleChannel(binary, "dilate"); err != nil {
		return Bitmap{}, err
	}
	return morph(binary, MorphKernelSize, true), nil
}

// Erode shrinks 255 regions with a 2x2 element, one iteration.
func Erode(binary Bitmap) (Bitmap, error) {
	if err := requireSingleChannel(binary, "erode"); err != nil {
		return Bitmap{}, err
	}
	return morph(binary, MorphKernelSize, false), nil
}

// morph applies a size x size rectangular element anchored at its center
// (size/2), so a 2x2 element looks at offsets -1 and 0 on both axes. Samples
// outside the image are ignored.
func morph(b Bitmap, size int, dilate bool) Bitmap {
	anchor := size / 2
	out := NewBitmap(b.Width, b.Height, 1)
	for y := 0; y < b.Height; y++ {
		for x := 0; x < b.Width; x++ {
			var acc uint8
			if !dilate {
				acc = 255
			}
			for ky := 0; ky < size; ky++ {
				sy := y + ky - anchor
				if sy < 0 || sy >= b.Height {
					continue
				}
				for kx := 0; kx < size; kx++ {
					sx := x + kx - anchor
					if sx < 0 || sx >= b.Width {
						continue
					}
					v := b.Pix[sy*b.Width+sx]
					if dilate && v > acc {
						acc = v
					} else if !dilate && v < acc {
						acc = v
					}
				}
			}
			out.Pix[y*b.Width+x] = acc
		}
	}
	return out
}

func requireSingleChannel(b Bitmap, stage string) error {
	if b.IsEmpty() {
		return &InvalidInputError{Reason: stage + ": empty bitmap"}
	}
	if b.Channels != 1 {
		return &InvalidInputError{Reason: stage + ": expects a single channel bitmap"}
	}
	return nil
}

func clampUint8(v float64) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}
