//go:build !gocv

package pipeline

import (
	"bytes"
	"image"

	"github.com/ironsheep/geo-features-mcp/internal/imaging"
)

// backend names the filter chain implementation compiled in.
const backend = "go"

// runChain decodes data and runs the filter chain over it.
// Decode failures wrap imaging.ErrDecode.
func runChain(data []byte, p Params) (*image.Gray, error) {
	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	return applyChain(img, p), nil
}

// applyChain runs steps 2-6 over an already decoded image. Grayscale
// normalizes the colour model first.
func applyChain(img image.Image, p Params) *image.Gray {
	gray := imaging.Grayscale(img)
	blurred := imaging.GaussianBlur(gray, p.BlurKernel)
	binary := imaging.AdaptiveThresholdInv(blurred, p.BlockSize, p.OffsetC)
	edges := imaging.Canny(binary, p.CannyLow, p.CannyHigh)
	return imaging.Close(edges, p.CloseKernel)
}
