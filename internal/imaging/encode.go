package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"io"

	"github.com/anthonynsimon/bild/imgio"
)

// pngEncoder is shared by every PNG writer in the package.
var pngEncoder = imgio.PNGEncoder()

// EncodePNG writes img to w as PNG. A *image.Gray is stored as an 8-bit
// single-channel image.
func EncodePNG(w io.Writer, img image.Image) error {
	if err := pngEncoder(w, img); err != nil {
		return fmt.Errorf("failed to encode png: %w", err)
	}
	return nil
}

// EncodePNGBase64 encodes img as PNG and returns it as standard base64.
func EncodePNGBase64(img image.Image) (string, error) {
	var buf bytes.Buffer
	if err := EncodePNG(&buf, img); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}
