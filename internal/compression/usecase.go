package compression

import (
	"context"

	"github.com/rahulmishra02/media-compressor/internal/models"
)

// UseCase is the synchronous submit-and-wait boundary the delivery layer
// calls. Both submit variants block until the whole batch finishes; live
// visibility while a call is in flight comes from the progress channel.
type UseCase interface {
	SubmitSingle(ctx context.Context, sourcePath string, opts *models.CompressionOptions) (*models.BatchResult, error)
	SubmitBatch(ctx context.Context, sourcePaths []string, opts *models.CompressionOptions, createArchive bool) (*models.BatchResult, error)
	GetResult(ctx context.Context, jobID string) (*models.BatchResult, error)
}
