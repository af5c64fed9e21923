package pipeline

import (
	"encoding/hex"
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ironsheep/geo-features-mcp/internal/imaging"
)

// MaskSuffix is appended to the random token of every mask filename.
const MaskSuffix = "_processed.png"

// Pipeline runs the filter chain with a fixed set of parameters and writes
// masks into one output directory.
type Pipeline struct {
	outputDir string
	params    Params
	log       *zap.Logger
}

// New returns a Pipeline writing into outputDir.
//
// The directory is not created here; it must exist by the time Process is
// called. A nil logger disables logging.
func New(outputDir string, params Params, log *zap.Logger) (*Pipeline, error) {
	if outputDir == "" {
		return nil, errors.New("output directory is required")
	}
	if err := params.Validate(); err != nil {
		return nil, fmt.Errorf("invalid pipeline parameters: %w", err)
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Pipeline{
		outputDir: outputDir,
		params:    params,
		log:       log.Named("pipeline"),
	}, nil
}

// Process runs the default chain over imagePath and writes the mask into
// outputDir. It is shorthand for New(outputDir, DefaultParams(), zap.L())
// followed by Process.
func Process(imagePath, outputDir string) (string, error) {
	p, err := New(outputDir, DefaultParams(), zap.L())
	if err != nil {
		return "", newError(KindProcessing, imagePath, err)
	}
	return p.Process(imagePath)
}

// OutputDir returns the directory masks are written to.
func (p *Pipeline) OutputDir() string { return p.outputDir }

// Params returns the chain parameters.
func (p *Pipeline) Params() Params { return p.params }

// Backend reports which filter chain implementation is compiled in: "go"
// or "opencv".
func Backend() string { return backend }

// Process runs the filter chain over the image at imagePath and writes the
// resulting mask as <hex>_processed.png into the output directory.
//
// Returns the full path of the written mask. On failure no file with the
// final name exists and the error is a *ProcessingError.
func (p *Pipeline) Process(imagePath string) (path string, err error) {
	start := time.Now()
	defer p.recoverPanic(imagePath, &err)

	mask, err := p.extract(imagePath)
	if err != nil {
		return "", err
	}

	path, err = p.write(mask)
	if err != nil {
		return "", p.fail(KindIO, imagePath, err)
	}

	p.log.Info("mask written",
		zap.String("input", imagePath),
		zap.String("output", path),
		zap.Int("width", mask.Rect.Dx()),
		zap.Int("height", mask.Rect.Dy()),
		zap.Duration("elapsed", time.Since(start)))
	return path, nil
}

// ExtractMask runs the filter chain over imagePath and returns the mask
// without writing anything.
func (p *Pipeline) ExtractMask(imagePath string) (mask *image.Gray, err error) {
	defer p.recoverPanic(imagePath, &err)
	return p.extract(imagePath)
}

func (p *Pipeline) extract(imagePath string) (*image.Gray, error) {
	data, err := os.ReadFile(imagePath)
	if err != nil {
		return nil, p.fail(KindIO, imagePath, err)
	}

	mask, err := runChain(data, p.params)
	if err != nil {
		if errors.Is(err, imaging.ErrDecode) {
			return nil, p.fail(KindDecode, imagePath, err)
		}
		return nil, p.fail(KindProcessing, imagePath, err)
	}

	p.log.Debug("filter chain complete",
		zap.String("input", imagePath),
		zap.String("backend", backend),
		zap.Int("bytes", len(data)))
	return mask, nil
}

// write stores mask under a fresh unique name. The PNG is encoded into a
// temporary file in the output directory and renamed into place.
func (p *Pipeline) write(mask *image.Gray) (string, error) {
	final := filepath.Join(p.outputDir, newID()+MaskSuffix)

	tmp, err := os.CreateTemp(p.outputDir, ".mask-*.tmp")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			tmp.Close()
			os.Remove(tmpName)
		}
	}()

	if err := imaging.EncodePNG(tmp, mask); err != nil {
		return "", err
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		return "", fmt.Errorf("failed to set permissions: %w", err)
	}
	if err := os.Rename(tmpName, final); err != nil {
		return "", fmt.Errorf("failed to move mask into place: %w", err)
	}
	committed = true
	return final, nil
}

// fail logs err and wraps it as a ProcessingError.
func (p *Pipeline) fail(kind Kind, path string, err error) error {
	p.log.Error("image processing failed",
		zap.String("kind", string(kind)),
		zap.String("input", path),
		zap.Error(err))
	return newError(kind, path, err)
}

// recoverPanic converts a panic in the chain into a KindProcessing error.
func (p *Pipeline) recoverPanic(path string, err *error) {
	if r := recover(); r != nil {
		*err = p.fail(KindProcessing, path, fmt.Errorf("panic: %v", r))
	}
}

// newID returns a random UUIDv4 as 32 lowercase hex characters.
func newID() string {
	u := uuid.New()
	return hex.EncodeToString(u[:])
}
