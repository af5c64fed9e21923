// Package pipeline turns a raster image on disk into a cleaned binary
// feature mask on disk.
//
// # Overview
//
// The pipeline runs a fixed, deterministic filter chain:
//
//	decode → 3-channel colour → grayscale → 5x5 Gaussian blur →
//	inverted adaptive threshold (11x11, C=2) → Canny (50/150) →
//	5x5 closing → grayscale PNG
//
// Each invocation reads one file, allocates its own buffers and writes one
// file named <32 hex chars>_processed.png into the configured output
// directory. The PNG is written to a temporary file in the same directory
// and renamed into place, so the final name only appears once the mask is
// complete.
//
// # Errors
//
// Every failure is returned as a *ProcessingError recording the stage that
// failed (decode, io or processing) and the underlying cause. Panics raised
// inside the filter chain are recovered and reported the same way.
// errors.Is(err, ErrProcessingFailed) is true for all of them.
//
// # Concurrency
//
// A Pipeline holds no mutable state and may be shared between goroutines.
// Concurrent invocations only share the output directory; filenames come
// from random UUIDs so no coordination is needed.
//
// # Build Tags
//
// The default build is pure Go. Building with -tags gocv runs the chain
// through OpenCV instead.
package pipeline
