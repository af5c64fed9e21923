package imaging

import (
	"fmt"
	"image"

	"github.com/disintegration/imaging"
)

// Regions lists the names understood by NamedRegion.
var Regions = []string{
	"top-left", "top-right", "bottom-left", "bottom-right",
	"top-half", "bottom-half", "left-half", "right-half", "center",
}

// NamedRegion returns the part of b called name: a quadrant, a half, or
// the centre 50%.
func NamedRegion(b image.Rectangle, name string) (image.Rectangle, error) {
	w := b.Dx()
	h := b.Dy()
	midX := w / 2
	midY := h / 2

	var x1, y1, x2, y2 int

	switch name {
	case "top-left":
		x1, y1, x2, y2 = 0, 0, midX, midY
	case "top-right":
		x1, y1, x2, y2 = midX, 0, w, midY
	case "bottom-left":
		x1, y1, x2, y2 = 0, midY, midX, h
	case "bottom-right":
		x1, y1, x2, y2 = midX, midY, w, h
	case "top-half":
		x1, y1, x2, y2 = 0, 0, w, midY
	case "bottom-half":
		x1, y1, x2, y2 = 0, midY, w, h
	case "left-half":
		x1, y1, x2, y2 = 0, 0, midX, h
	case "right-half":
		x1, y1, x2, y2 = midX, 0, w, h
	case "center":
		qW := w / 4
		qH := h / 4
		x1, y1, x2, y2 = qW, qH, w-qW, h-qH
	default:
		return image.Rectangle{}, fmt.Errorf("unknown region: %s", name)
	}

	return image.Rect(x1, y1, x2, y2).Add(b.Min), nil
}

// CheckRegion reports whether r is a non-empty rectangle inside b.
func CheckRegion(b, r image.Rectangle) error {
	if r.Min.X < b.Min.X || r.Min.Y < b.Min.Y || r.Max.X > b.Max.X || r.Max.Y > b.Max.Y {
		return fmt.Errorf("region (%d,%d)-(%d,%d) outside image bounds (%d,%d)-(%d,%d)",
			r.Min.X, r.Min.Y, r.Max.X, r.Max.Y, b.Min.X, b.Min.Y, b.Max.X, b.Max.Y)
	}
	if r.Min.X >= r.Max.X || r.Min.Y >= r.Max.Y {
		return fmt.Errorf("invalid region: x1 must be < x2, y1 must be < y2")
	}
	return nil
}

// CropPair cuts the same region out of an image and its mask. The mask is
// expected to share the image's bounds; r is in the image's coordinates.
func CropPair(src image.Image, mask *image.Gray, r image.Rectangle) (image.Image, *image.Gray, error) {
	if err := CheckRegion(src.Bounds(), r); err != nil {
		return nil, nil, err
	}
	mr := r.Sub(src.Bounds().Min).Add(mask.Bounds().Min)
	if err := CheckRegion(mask.Bounds(), mr); err != nil {
		return nil, nil, fmt.Errorf("mask: %w", err)
	}
	return imaging.Crop(src, r), mask.SubImage(mr).(*image.Gray), nil
}
