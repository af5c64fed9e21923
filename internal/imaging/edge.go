package imaging

import (
	"image"
	"math"
)

// Fixed-point tangent of 22.5 degrees used by the sector test in
// non-maximum suppression (tan(22.5°) * 2^15).
const (
	cannyShift = 15
	cannyTG22  = 13573
)

// Canny detects edges in a single-channel image and returns a mask where
// edge pixels are 255 and everything else is 0.
//
// Parameters:
//   - img: Source grayscale image. It is not blurred first; callers smooth
//     the input themselves when they need to.
//   - low: Lower hysteresis threshold. Candidates need magnitude > low.
//   - high: Upper hysteresis threshold. Seeds need magnitude > high.
//
// # Algorithm
//
//  1. Gradient computation: 3x3 Sobel operators with replicated borders.
//     magnitude = |Gx| + |Gy| (L1 norm)
//
//  2. Non-maximum suppression: the gradient direction is quantized into one
//     of four sectors (horizontal, vertical, two diagonals) with an integer
//     tangent test. A pixel survives if its magnitude beats both neighbours
//     along that direction. Ties are broken toward the left/upper pixel so
//     a symmetric step yields a single-pixel line. Magnitudes outside the
//     image count as zero.
//
//  3. Hysteresis: surviving pixels above high seed edges; surviving pixels
//     above low are kept when 8-connected to a seed through other kept
//     pixels.
//
// Thresholds are floored to integers before comparison. If low > high the
// two are swapped.
func Canny(img *image.Gray, low, high float64) *image.Gray {
	src := normalizeGray(img)
	w, h := src.Rect.Dx(), src.Rect.Dy()
	if low > high {
		low, high = high, low
	}
	lo := int(math.Floor(low))
	hi := int(math.Floor(high))

	dx, dy, mag := sobel(src)

	// Candidate map: 0 = not an edge, 1 = weak candidate, 2 = edge.
	state := make([]uint8, w*h)
	stack := make([]int, 0, 64)

	magAt := func(x, y int) int {
		if x < 0 || y < 0 || x >= w || y >= h {
			return 0
		}
		return mag[y*w+x]
	}

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := y*w + x
			m := mag[i]
			if m <= lo {
				continue
			}
			xs, ys := dx[i], dy[i]
			ax := abs(xs)
			ay := abs(ys) << cannyShift
			tg22x := ax * cannyTG22

			keep := false
			switch {
			case ay < tg22x:
				keep = m > magAt(x-1, y) && m >= magAt(x+1, y)
			case ay > tg22x+(ax<<(cannyShift+1)):
				keep = m > magAt(x, y-1) && m >= magAt(x, y+1)
			default:
				s := 1
				if (xs ^ ys) < 0 {
					s = -1
				}
				keep = m > magAt(x-s, y-1) && m > magAt(x+s, y+1)
			}
			if !keep {
				continue
			}
			if m > hi {
				state[i] = 2
				stack = append(stack, i)
			} else {
				state[i] = 1
			}
		}
	}

	for len(stack) > 0 {
		i := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		x, y := i%w, i/w
		for ky := -1; ky <= 1; ky++ {
			for kx := -1; kx <= 1; kx++ {
				nx, ny := x+kx, y+ky
				if nx < 0 || ny < 0 || nx >= w || ny >= h {
					continue
				}
				j := ny*w + nx
				if state[j] == 1 {
					state[j] = 2
					stack = append(stack, j)
				}
			}
		}
	}

	dst := image.NewGray(image.Rect(0, 0, w, h))
	for i, s := range state {
		if s == 2 {
			dst.Pix[i] = 255
		}
	}
	return dst
}

// sobel returns the horizontal and vertical 3x3 Sobel responses and their
// L1 magnitude for every pixel. Borders use clamped (replicated) values.
func sobel(src *image.Gray) (dx, dy, mag []int) {
	w, h := src.Rect.Dx(), src.Rect.Dy()
	dx = make([]int, w*h)
	dy = make([]int, w*h)
	mag = make([]int, w*h)

	at := func(x, y int) int {
		return int(src.Pix[clamp(y, 0, h-1)*src.Stride+clamp(x, 0, w-1)])
	}

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			tl, tc, tr := at(x-1, y-1), at(x, y-1), at(x+1, y-1)
			ml, mr := at(x-1, y), at(x+1, y)
			bl, bc, br := at(x-1, y+1), at(x, y+1), at(x+1, y+1)

			gx := (tr + 2*mr + br) - (tl + 2*ml + bl)
			gy := (bl + 2*bc + br) - (tl + 2*tc + tr)
			i := y*w + x
			dx[i], dy[i] = gx, gy
			mag[i] = abs(gx) + abs(gy)
		}
	}
	return dx, dy, mag
}

// clamp constrains an integer value to the range [min, max].
// Used for boundary handling in convolution operations.
func clamp(val, min, max int) int {
	if val < min {
		return min
	}
	if val > max {
		return max
	}
	return val
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
