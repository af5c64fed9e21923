// Package imaging provides the raster primitives used by the feature
// extraction pipeline.
//
// The package covers decoding, colour normalization, grayscale conversion,
// Gaussian smoothing, adaptive thresholding, Canny edge detection, binary
// morphology and PNG encoding. All operations work with standard Go image
// types and use a coordinate system where (0,0) is at the top-left corner,
// X increases rightward, and Y increases downward.
//
// # Buffers
//
// Every transform allocates and returns a new image; inputs are never
// modified. Rasters produced by this package always have their bounds
// anchored at (0,0) and a stride equal to the row width, so callers may index
// Pix directly.
//
// # Numeric Conventions
//
// The transforms reproduce the conventions of the OpenCV functions the
// original filter chain was written against:
//   - Grayscale uses BT.601 weights in 14-bit fixed point
//   - Gaussian kernels for sizes 1, 3, 5 and 7 use OpenCV's fixed tables;
//     other sizes derive sigma as 0.3*((size-1)*0.5-1)+0.8
//   - Gaussian blur mirrors borders without repeating the edge pixel;
//     the adaptive threshold mean and Sobel replicate the edge pixel
//   - Canny uses the L1 gradient norm with strict threshold comparisons
//   - Morphology ignores pixels outside the image
//
// # Masks
//
// A mask is an *image.Gray whose pixels are either 0 (background) or 255
// (foreground). LoadMask re-binarizes any decodable image at the midpoint so
// masks survive lossy round trips.
//
// # Previews
//
// MaskOverlay tints a mask's foreground over its source image. NamedRegion
// and CropPair cut matching windows out of an image and its mask so a
// preview can zoom into a quadrant, a half, the centre, or an explicit
// rectangle.
//
// # Thread Safety
//
// Functions are stateless and can be called concurrently on different
// images.
package imaging
