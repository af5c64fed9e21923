package imaging

import "image"

// Dilate replaces each pixel with the maximum over a size×size square
// neighbourhood. Pixels outside the image do not take part.
func Dilate(img *image.Gray, size int) *image.Gray {
	return morph(img, size, func(a, b uint8) bool { return a > b })
}

// Erode replaces each pixel with the minimum over a size×size square
// neighbourhood. Pixels outside the image do not take part.
func Erode(img *image.Gray, size int) *image.Gray {
	return morph(img, size, func(a, b uint8) bool { return a < b })
}

// Close performs a morphological closing (dilation followed by erosion) with
// a size×size all-ones structuring element. It fills gaps and holes smaller
// than the element while preserving the outline of larger shapes.
func Close(img *image.Gray, size int) *image.Gray {
	return Erode(Dilate(img, size), size)
}

// morph applies a separable rank filter: rows first, then columns. better
// reports whether a should replace b.
func morph(img *image.Gray, size int, better func(a, b uint8) bool) *image.Gray {
	src := normalizeGray(img)
	if size <= 1 {
		return src
	}
	w, h := src.Rect.Dx(), src.Rect.Dy()
	r := size / 2

	tmp := newGrayLike(src)
	for y := 0; y < h; y++ {
		row := src.Pix[y*w : (y+1)*w]
		for x := 0; x < w; x++ {
			v := row[x]
			for k := max(0, x-r); k <= min(w-1, x+r); k++ {
				if better(row[k], v) {
					v = row[k]
				}
			}
			tmp.Pix[y*w+x] = v
		}
	}

	dst := newGrayLike(src)
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			v := tmp.Pix[y*w+x]
			for k := max(0, y-r); k <= min(h-1, y+r); k++ {
				if c := tmp.Pix[k*w+x]; better(c, v) {
					v = c
				}
			}
			dst.Pix[y*w+x] = v
		}
	}
	return dst
}
