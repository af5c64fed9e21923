package imaging

import (
	"image"
	"math"

	"github.com/anthonynsimon/bild/convolution"
)

// Fixed small-kernel tables used when sigma is derived from the size.
var gaussianTables = map[int][]float64{
	1: {1},
	3: {0.25, 0.5, 0.25},
	5: {0.0625, 0.25, 0.375, 0.25, 0.0625},
	7: {0.03125, 0.109375, 0.21875, 0.28125, 0.21875, 0.109375, 0.03125},
}

// GaussianKernel returns the normalized 1-D Gaussian kernel of the given odd
// size with sigma derived from the size.
//
// Sizes 1, 3, 5 and 7 use exact binomial-style tables; larger sizes sample a
// Gaussian with sigma = 0.3*((size-1)*0.5-1)+0.8 and normalize the weights to
// sum to one. An 11-tap kernel therefore has sigma 2.0.
func GaussianKernel(size int) []float64 {
	if t, ok := gaussianTables[size]; ok {
		out := make([]float64, len(t))
		copy(out, t)
		return out
	}

	sigma := 0.3*(float64(size-1)*0.5-1) + 0.8
	scale := -0.5 / (sigma * sigma)
	out := make([]float64, size)
	var sum float64
	for i := range out {
		x := float64(i - (size-1)/2)
		out[i] = math.Exp(scale * x * x)
		sum += out[i]
	}
	for i := range out {
		out[i] /= sum
	}
	return out
}

// GaussianBlur smooths img with a size×size Gaussian kernel.
//
// Borders mirror the image without repeating the edge pixel (gfedcb|abcdefgh),
// and results are rounded to the nearest integer. A size of 1 returns a copy
// of the input.
func GaussianBlur(img *image.Gray, size int) *image.Gray {
	src := normalizeGray(img)
	if size <= 1 || src.Rect.Empty() {
		return src
	}
	r := size / 2
	padded := convolveGray(padReflect101(src, r), separableKernel(GaussianKernel(size)))

	w, h := src.Rect.Dx(), src.Rect.Dy()
	dst := newGrayLike(src)
	for y := 0; y < h; y++ {
		copy(dst.Pix[y*w:(y+1)*w], padded.Pix[(y+r)*padded.Stride+r:])
	}
	return dst
}

// reflect101 maps an out-of-range index back into [0, n) by mirroring
// around the first and last elements.
func reflect101(p, n int) int {
	if n == 1 {
		return 0
	}
	for p < 0 || p >= n {
		if p < 0 {
			p = -p
		}
		if p >= n {
			p = 2*(n-1) - p
		}
	}
	return p
}

// padReflect101 returns img grown by r pixels on every side, the new pixels
// mirrored with reflect101. img must be anchored at (0,0).
func padReflect101(img *image.Gray, r int) *image.Gray {
	w, h := img.Rect.Dx(), img.Rect.Dy()
	pw := w + 2*r
	dst := image.NewGray(image.Rect(0, 0, pw, h+2*r))
	for y := 0; y < h+2*r; y++ {
		row := img.Pix[reflect101(y-r, h)*img.Stride:]
		for x := 0; x < pw; x++ {
			dst.Pix[y*pw+x] = row[reflect101(x-r, w)]
		}
	}
	return dst
}

// separableKernel builds the 2-D outer product of a 1-D kernel.
func separableKernel(k1 []float64) *convolution.Kernel {
	n := len(k1)
	k := convolution.NewKernel(n, n)
	for y := 0; y < n; y++ {
		for x := 0; x < n; x++ {
			k.Matrix[y*n+x] = k1[y] * k1[x]
		}
	}
	return k
}

// convolveGray applies k to a gray raster through bild's RGBA convolution.
// bild replicates the edge pixel past the border. The 0.5 bias turns bild's
// truncation into round-to-nearest.
func convolveGray(img *image.Gray, k convolution.Matrix) *image.Gray {
	out := convolution.Convolve(img, k, &convolution.Options{Bias: 0.5, KeepAlpha: true})
	dst := newGrayLike(img)
	for i := range dst.Pix {
		dst.Pix[i] = out.Pix[i*4]
	}
	return dst
}
