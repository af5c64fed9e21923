//go:build gocv

package pipeline

import (
	"fmt"
	"image"

	"gocv.io/x/gocv"

	"github.com/ironsheep/geo-features-mcp/internal/imaging"
)

// backend names the filter chain implementation compiled in.
const backend = "opencv"

// runChain decodes data with OpenCV and runs the filter chain through gocv.
// Decode failures wrap imaging.ErrDecode.
func runChain(data []byte, p Params) (*image.Gray, error) {
	src, err := gocv.IMDecode(data, gocv.IMReadColor)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", imaging.ErrDecode, err)
	}
	defer src.Close()
	if src.Empty() {
		return nil, fmt.Errorf("%w: unsupported or corrupt image", imaging.ErrDecode)
	}

	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(src, &gray, gocv.ColorBGRToGray)

	blurred := gocv.NewMat()
	defer blurred.Close()
	gocv.GaussianBlur(gray, &blurred, image.Pt(p.BlurKernel, p.BlurKernel), 0, 0, gocv.BorderDefault)

	binary := gocv.NewMat()
	defer binary.Close()
	gocv.AdaptiveThreshold(blurred, &binary, 255, gocv.AdaptiveThresholdGaussian,
		gocv.ThresholdBinaryInv, p.BlockSize, float32(p.OffsetC))

	edges := gocv.NewMat()
	defer edges.Close()
	gocv.Canny(binary, &edges, float32(p.CannyLow), float32(p.CannyHigh))

	kernel := gocv.GetStructuringElement(gocv.MorphRect, image.Pt(p.CloseKernel, p.CloseKernel))
	defer kernel.Close()

	closed := gocv.NewMat()
	defer closed.Close()
	gocv.MorphologyEx(edges, &closed, gocv.MorphClose, kernel)

	out, err := closed.ToImage()
	if err != nil {
		return nil, fmt.Errorf("failed to convert mask: %w", err)
	}
	if g, ok := out.(*image.Gray); ok {
		return g, nil
	}
	return imaging.Grayscale(out), nil
}
