package imaging

import (
	"image"

	"github.com/disintegration/imaging"
)

// BT.601 luma weights in 14-bit fixed point, as used by OpenCV's
// BGR-to-gray conversion.
const (
	grayShift = 14
	grayR     = 4899
	grayG     = 9617
	grayB     = 1868
)

// ToRGB normalizes any decoded image to an opaque 8-bit colour raster.
//
// Palette images are expanded, gray images are replicated into three
// channels, 16-bit samples are reduced to 8 bits and the alpha channel is
// discarded (the stored colour values are kept, not composited against a
// background). The result is anchored at (0,0).
func ToRGB(img image.Image) *image.NRGBA {
	dst := imaging.Clone(img)
	for i := 3; i < len(dst.Pix); i += 4 {
		dst.Pix[i] = 0xff
	}
	return dst
}

// Grayscale converts img to a single-channel luminance raster using
// (R*4899 + G*9617 + B*1868 + 8192) >> 14.
//
// Images that are already *image.Gray are copied unchanged.
func Grayscale(img image.Image) *image.Gray {
	if g, ok := img.(*image.Gray); ok {
		return normalizeGray(g)
	}

	src := ToRGB(img)
	w, h := src.Rect.Dx(), src.Rect.Dy()
	dst := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		row := src.Pix[y*src.Stride : y*src.Stride+w*4]
		out := dst.Pix[y*dst.Stride : y*dst.Stride+w]
		for x := range out {
			r := int(row[x*4])
			g := int(row[x*4+1])
			b := int(row[x*4+2])
			out[x] = uint8((r*grayR + g*grayG + b*grayB + 1<<(grayShift-1)) >> grayShift)
		}
	}
	return dst
}

// normalizeGray returns a copy of g anchored at (0,0) with a tight stride.
func normalizeGray(g *image.Gray) *image.Gray {
	b := g.Bounds()
	w, h := b.Dx(), b.Dy()
	dst := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		off := g.PixOffset(b.Min.X, b.Min.Y+y)
		copy(dst.Pix[y*dst.Stride:y*dst.Stride+w], g.Pix[off:off+w])
	}
	return dst
}

// newGrayLike allocates a zeroed mask with the dimensions of g.
func newGrayLike(g *image.Gray) *image.Gray {
	return image.NewGray(image.Rect(0, 0, g.Bounds().Dx(), g.Bounds().Dy()))
}
