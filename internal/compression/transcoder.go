package compression

import (
	"context"

	"github.com/rahulmishra02/media-compressor/internal/models"
)

// Transcoder is the per-category codec capability the orchestrator depends
// on but does not implement. Implementations must be safe for concurrent
// use across jobs and must not leave a partial output file behind on
// failure.
type Transcoder interface {
	Compress(ctx context.Context, inputPath, outputDir string, opts *models.CompressionOptions) (*models.CompressionResult, error)
}

// Dispatcher selects the capability for a file's category. A missing entry
// is treated by the orchestrator as an immediate per-file failure.
type Dispatcher map[models.Category]Transcoder

// Archiver packages already-produced artifacts. A failure here never rolls
// back the individual results.
type Archiver interface {
	Create(ctx context.Context, results []*models.CompressionResult, outputDir, name string) (string, error)
}
