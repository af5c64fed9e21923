package imaging

import (
	"fmt"
	"image"
	"image/color"

	"github.com/disintegration/imaging"
)

// OverlayResult contains a mask preview rendered over its source image.
type OverlayResult struct {
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	ImageBase64 string `json:"image_base64"`
	MimeType    string `json:"mime_type"`

	// ForegroundPixels is the number of mask pixels that were tinted.
	ForegroundPixels int `json:"foreground_pixels"`
}

// MaskOverlay tints the foreground pixels of mask over src and returns the
// composite as base64 PNG.
//
// The mask must have the same dimensions as src. tint is blended using its
// own alpha. When maxDim is positive and either side of the composite
// exceeds it, the preview is scaled down to fit within maxDim×maxDim.
func MaskOverlay(src image.Image, mask *image.Gray, tint color.NRGBA, maxDim int) (*OverlayResult, error) {
	base := ToRGB(src)
	w, h := base.Rect.Dx(), base.Rect.Dy()
	if mask.Bounds().Dx() != w || mask.Bounds().Dy() != h {
		return nil, fmt.Errorf("mask size %dx%d does not match image size %dx%d",
			mask.Bounds().Dx(), mask.Bounds().Dy(), w, h)
	}
	m := normalizeGray(mask)

	layer := image.NewNRGBA(image.Rect(0, 0, w, h))
	count := 0
	for i, v := range m.Pix {
		if v == 0 {
			continue
		}
		count++
		layer.Pix[i*4+0] = tint.R
		layer.Pix[i*4+1] = tint.G
		layer.Pix[i*4+2] = tint.B
		layer.Pix[i*4+3] = tint.A
	}

	var result image.Image = imaging.Overlay(base, layer, image.Pt(0, 0), 1.0)
	if maxDim > 0 && (w > maxDim || h > maxDim) {
		result = imaging.Fit(result, maxDim, maxDim, imaging.Lanczos)
	}

	encoded, err := EncodePNGBase64(result)
	if err != nil {
		return nil, err
	}

	return &OverlayResult{
		Width:            result.Bounds().Dx(),
		Height:           result.Bounds().Dy(),
		ImageBase64:      encoded,
		MimeType:         "image/png",
		ForegroundPixels: count,
	}, nil
}
