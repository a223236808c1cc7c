package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/pkg/errors"
	"github.com/rahulmishra02/media-compressor/internal/compression"
	"github.com/rahulmishra02/media-compressor/internal/models"
)

const resultKeyPrefix = "compress:result:"

// ErrResultNotFound is returned when no terminal result is retained for a
// job id, either because the job never ran or the entry expired.
var ErrResultNotFound = errors.New("job result not found")

type resultRedisRepo struct {
	redisClient *redis.Client
	ttl         time.Duration
}

func NewResultRedisRepo(redisClient *redis.Client, ttl time.Duration) compression.ResultRepository {
	return &resultRedisRepo{
		redisClient: redisClient,
		ttl:         ttl,
	}
}

func (r *resultRedisRepo) CacheResult(ctx context.Context, result *models.BatchResult) error {
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal job result: %w", err)
	}
	if err = r.redisClient.Set(ctx, resultKeyPrefix+result.JobID, data, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache job result: %w", err)
	}
	return nil
}

func (r *resultRedisRepo) GetResult(ctx context.Context, jobID string) (*models.BatchResult, error) {
	data, err := r.redisClient.Get(ctx, resultKeyPrefix+jobID).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrResultNotFound
		}
		return nil, fmt.Errorf("failed to get job result: %w", err)
	}
	result := &models.BatchResult{}
	if err = json.Unmarshal([]byte(data), result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal job result: %w", err)
	}
	return result, nil
}
