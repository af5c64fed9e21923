package imaging

import (
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"os"
	"path/filepath"
	"testing"
)

func TestOpen(t *testing.T) {
	dir := t.TempDir()
	img := image.NewRGBA(image.Rect(0, 0, 20, 10))
	path := writePNG(t, dir, "rgba.png", img)

	got, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if got.Bounds().Dx() != 20 || got.Bounds().Dy() != 10 {
		t.Errorf("dimensions: got %dx%d, want 20x10", got.Bounds().Dx(), got.Bounds().Dy())
	}
}

func TestOpen_NotExist(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "missing.png"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected os.ErrNotExist, got %v", err)
	}
	if errors.Is(err, ErrDecode) {
		t.Errorf("missing file should not be reported as a decode error: %v", err)
	}
}

func TestOpen_Corrupt(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"text", []byte("this is not an image")},
		{"empty", nil},
		{"truncated png", []byte("\x89PNG\r\n\x1a\n\x00\x00")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "bad.png")
			if err := os.WriteFile(path, tt.data, 0644); err != nil {
				t.Fatal(err)
			}
			_, err := Open(path)
			if !errors.Is(err, ErrDecode) {
				t.Errorf("expected ErrDecode, got %v", err)
			}
		})
	}
}

func TestLoadImageInfo(t *testing.T) {
	dir := t.TempDir()

	rgbaPath := writePNG(t, dir, "rgba.png", image.NewNRGBA(image.Rect(0, 0, 32, 16)))
	grayPath := writePNG(t, dir, "gray.png", image.NewGray(image.Rect(0, 0, 8, 8)))
	gray16Path := writePNG(t, dir, "gray16.png", image.NewGray16(image.Rect(0, 0, 8, 8)))

	jpegPath := filepath.Join(dir, "photo.jpg")
	f, err := os.Create(jpegPath)
	if err != nil {
		t.Fatal(err)
	}
	src := image.NewRGBA(image.Rect(0, 0, 24, 12))
	for i := range src.Pix {
		src.Pix[i] = uint8(i)
	}
	if err := jpeg.Encode(f, src, nil); err != nil {
		t.Fatal(err)
	}
	f.Close()

	tests := []struct {
		name     string
		path     string
		w, h     int
		format   string
		channels int
		depth    int
	}{
		{"rgba png", rgbaPath, 32, 16, "png", 4, 8},
		{"gray png", grayPath, 8, 8, "png", 1, 8},
		{"gray16 png", gray16Path, 8, 8, "png", 1, 16},
		{"colour jpeg", jpegPath, 24, 12, "jpeg", 3, 8},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info, err := LoadImageInfo(tt.path)
			if err != nil {
				t.Fatalf("LoadImageInfo failed: %v", err)
			}
			if info.Width != tt.w || info.Height != tt.h {
				t.Errorf("dimensions: got %dx%d, want %dx%d", info.Width, info.Height, tt.w, tt.h)
			}
			if info.Format != tt.format {
				t.Errorf("Format: got %q, want %q", info.Format, tt.format)
			}
			if info.Channels != tt.channels {
				t.Errorf("Channels: got %d, want %d", info.Channels, tt.channels)
			}
			if info.BitDepth != tt.depth {
				t.Errorf("BitDepth: got %d, want %d", info.BitDepth, tt.depth)
			}
			if info.FileSizeBytes <= 0 {
				t.Errorf("FileSizeBytes should be positive, got %d", info.FileSizeBytes)
			}
		})
	}
}

func TestLoadImageInfo_Corrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.png")
	if err := os.WriteFile(path, []byte("garbage"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadImageInfo(path); !errors.Is(err, ErrDecode) {
		t.Errorf("expected ErrDecode, got %v", err)
	}
}

func TestLoadMask(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 4, 1))
	img.Pix = []uint8{0, 100, 200, 255}
	path := writePNG(t, t.TempDir(), "mask.png", img)

	mask, err := LoadMask(path)
	if err != nil {
		t.Fatalf("LoadMask failed: %v", err)
	}

	want := []uint8{0, 0, 255, 255}
	for x, w := range want {
		if got := mask.GrayAt(x, 0).Y; got != w {
			t.Errorf("pixel %d: got %d, want %d", x, got, w)
		}
	}
}

func TestBinarize_ColourInput(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 2, 1))
	img.Set(0, 0, color.NRGBA{10, 10, 10, 255})
	img.Set(1, 0, color.NRGBA{240, 240, 240, 255})

	mask := Binarize(img)
	if mask.GrayAt(0, 0).Y != 0 || mask.GrayAt(1, 0).Y != 255 {
		t.Errorf("got %v, want [0 255]", mask.Pix)
	}
}
