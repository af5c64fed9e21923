package imaging

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/color"
	"image/png"
	"testing"
)

func decodeBase64PNG(t *testing.T, s string) image.Image {
	t.Helper()
	raw, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		t.Fatalf("failed to decode base64: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("failed to decode PNG: %v", err)
	}
	return img
}

func TestMaskOverlay(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 10, 10))
	for i := range src.Pix {
		src.Pix[i] = 255
	}
	mask := uniformGray(10, 10, 0)
	fillRect(mask, image.Rect(2, 2, 4, 4), 255)

	result, err := MaskOverlay(src, mask, color.NRGBA{255, 0, 0, 255}, 0)
	if err != nil {
		t.Fatalf("MaskOverlay failed: %v", err)
	}
	if result.ForegroundPixels != 4 {
		t.Errorf("ForegroundPixels: got %d, want 4", result.ForegroundPixels)
	}
	if result.MimeType != "image/png" {
		t.Errorf("MimeType: got %s, want image/png", result.MimeType)
	}

	img := decodeBase64PNG(t, result.ImageBase64)
	if r, g, b, _ := img.At(2, 2).RGBA(); r>>8 != 255 || g != 0 || b != 0 {
		t.Errorf("masked pixel: got (%d,%d,%d), want red", r>>8, g>>8, b>>8)
	}
	if r, g, b, _ := img.At(7, 7).RGBA(); r>>8 != 255 || g>>8 != 255 || b>>8 != 255 {
		t.Errorf("unmasked pixel: got (%d,%d,%d), want white", r>>8, g>>8, b>>8)
	}
}

func TestMaskOverlay_SizeMismatch(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 10, 10))
	if _, err := MaskOverlay(src, uniformGray(5, 5, 0), color.NRGBA{A: 255}, 0); err == nil {
		t.Error("expected error for mismatched mask")
	}
}

func TestMaskOverlay_Downscale(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 100, 50))
	result, err := MaskOverlay(src, uniformGray(100, 50, 0), color.NRGBA{A: 128}, 20)
	if err != nil {
		t.Fatalf("MaskOverlay failed: %v", err)
	}
	if result.Width != 20 || result.Height != 10 {
		t.Errorf("dimensions: got %dx%d, want 20x10", result.Width, result.Height)
	}
}
