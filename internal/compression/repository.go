package compression

import (
	"context"

	"github.com/rahulmishra02/media-compressor/internal/models"
)

// ResultRepository retains terminal job results for later polling by job
// id. Retention is an interface-layer decision; the orchestrator only hands
// a terminal result over, it never depends on retrieval.
type ResultRepository interface {
	CacheResult(ctx context.Context, result *models.BatchResult) error
	GetResult(ctx context.Context, jobID string) (*models.BatchResult, error)
}

// AWSRepository mirrors completed artifacts to the remote store and hands
// out presigned download links.
type AWSRepository interface {
	UploadArtifact(ctx context.Context, bucket, key, localPath string) error
	GetPresignedURL(ctx context.Context, bucket, key string) (string, error)
}
