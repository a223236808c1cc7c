package repository

import (
	"context"
	"sync"

	"github.com/rahulmishra02/media-compressor/internal/compression"
	"github.com/rahulmishra02/media-compressor/internal/models"
)

// resultMemoryRepo is the retention fallback when redis is disabled.
// Results live for the process lifetime only.
type resultMemoryRepo struct {
	mu      sync.RWMutex
	results map[string]*models.BatchResult
}

func NewResultMemoryRepo() compression.ResultRepository {
	return &resultMemoryRepo{
		results: make(map[string]*models.BatchResult),
	}
}

func (r *resultMemoryRepo) CacheResult(_ context.Context, result *models.BatchResult) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.results[result.JobID] = result
	return nil
}

func (r *resultMemoryRepo) GetResult(_ context.Context, jobID string) (*models.BatchResult, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	result, ok := r.results[jobID]
	if !ok {
		return nil, ErrResultNotFound
	}
	return result, nil
}
