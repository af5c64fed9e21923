package imaging

import (
	"image"
	"math"
)

// AdaptiveThresholdInv binarizes img against a Gaussian-weighted local mean.
//
// The mean is taken over a blockSize×blockSize neighbourhood (replicated
// borders, rounded to the nearest integer). A pixel becomes foreground (255)
// when it is at least floor(c) darker than its local mean, otherwise
// background (0). Dark strokes on a light background therefore come out
// white.
func AdaptiveThresholdInv(img *image.Gray, blockSize int, c float64) *image.Gray {
	src := normalizeGray(img)
	mean := convolveGray(src, separableKernel(GaussianKernel(blockSize)))
	delta := int(math.Floor(c))

	dst := newGrayLike(src)
	for i, v := range src.Pix {
		if int(v)-int(mean.Pix[i]) <= -delta {
			dst.Pix[i] = 255
		}
	}
	return dst
}
