package imaging

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"  // Register GIF format decoder
	_ "image/jpeg" // Register JPEG format decoder
	_ "image/png"  // Register PNG format decoder
	"io"
	"os"

	"github.com/anthonynsimon/bild/segment"
	"github.com/disintegration/imaging"
	_ "golang.org/x/image/bmp"  // Register BMP format decoder
	_ "golang.org/x/image/tiff" // Register TIFF format decoder
)

// ErrDecode marks failures where the bytes were readable but could not be
// interpreted as an image.
var ErrDecode = errors.New("failed to decode image")

// Open reads and decodes the image stored at path.
//
// Parameters:
//   - path: Absolute or relative file path to the image. Supported formats are
//     PNG, JPEG, TIFF, BMP and GIF.
//
// Returns:
//   - image.Image: The decoded image. The concrete type depends on the format
//     and colour model (e.g., *image.NRGBA, *image.Gray, *image.YCbCr).
//   - error: Non-nil if the file cannot be opened or decoded.
//
// # Errors
//
// Decoding failures wrap ErrDecode, so callers can tell unreadable files
// (errors.Is(err, os.ErrNotExist), permission errors) apart from corrupt ones
// with errors.Is(err, ErrDecode).
func Open(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()

	return Decode(f)
}

// Decode decodes an image from r. Failures wrap ErrDecode.
func Decode(r io.Reader) (image.Image, error) {
	img, err := imaging.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	if b := img.Bounds(); b.Dx() == 0 || b.Dy() == 0 {
		return nil, fmt.Errorf("%w: empty raster", ErrDecode)
	}
	return img, nil
}

// LoadMask decodes the image at path and binarizes it: pixels brighter than
// 127 become foreground (255), the rest background (0).
func LoadMask(path string) (*image.Gray, error) {
	img, err := Open(path)
	if err != nil {
		return nil, err
	}
	return Binarize(img), nil
}

// Binarize converts img to a 0/255 mask with a midpoint threshold.
func Binarize(img image.Image) *image.Gray {
	return normalizeGray(segment.Threshold(img, 128))
}

// ImageInfo describes a raster without decoding its pixel data.
type ImageInfo struct {
	// Width is the image width in pixels.
	Width int `json:"width"`

	// Height is the image height in pixels.
	Height int `json:"height"`

	// Format is the decoder name reported by the image package: "png",
	// "jpeg", "tiff", "bmp" or "gif".
	Format string `json:"format"`

	// Channels is the number of stored channels: 1 for gray, 3 for colour
	// without alpha, 4 when an alpha or K channel is present.
	Channels int `json:"channels"`

	// BitDepth is the number of bits per channel: 8 or 16.
	BitDepth int `json:"bit_depth"`

	// FileSizeBytes is the size of the image file on disk in bytes.
	FileSizeBytes int64 `json:"file_size_bytes"`
}

// LoadImageInfo reads the image header at path and returns its attributes.
//
// Only the header is decoded, so this is cheap even for large rasters.
// Header failures wrap ErrDecode.
func LoadImageInfo(path string) (*ImageInfo, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	cfg, format, err := image.DecodeConfig(f)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}

	channels, depth := describeModel(cfg.ColorModel)
	return &ImageInfo{
		Width:         cfg.Width,
		Height:        cfg.Height,
		Format:        format,
		Channels:      channels,
		BitDepth:      depth,
		FileSizeBytes: stat.Size(),
	}, nil
}

// describeModel maps a colour model to its channel count and bit depth.
func describeModel(m color.Model) (channels, depth int) {
	switch m {
	case color.GrayModel:
		return 1, 8
	case color.Gray16Model:
		return 1, 16
	case color.AlphaModel:
		return 1, 8
	case color.Alpha16Model:
		return 1, 16
	case color.RGBAModel, color.NRGBAModel, color.CMYKModel:
		return 4, 8
	case color.RGBA64Model, color.NRGBA64Model:
		return 4, 16
	case color.YCbCrModel:
		return 3, 8
	case color.NYCbCrAModel:
		return 4, 8
	}
	if _, ok := m.(color.Palette); ok {
		return 3, 8
	}
	return 3, 8
}
