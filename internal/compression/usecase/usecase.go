// Package usecase contains the batch orchestrator: the control loop that
// runs a job's file list against the codec capabilities, isolates per-file
// failures, and fans progress out through the progress channel.
package usecase

import (
	"context"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
	"github.com/rahulmishra02/media-compressor/internal/compression"
	"github.com/rahulmishra02/media-compressor/internal/config"
	"github.com/rahulmishra02/media-compressor/internal/models"
	"github.com/rahulmishra02/media-compressor/internal/progress"
	"github.com/rahulmishra02/media-compressor/pkg/logger"
	"github.com/rahulmishra02/media-compressor/pkg/utils"
)

// archiveReserve caps intra-batch progress when archiving is requested,
// leaving headroom for the final packaging step.
const archiveReserve = 90

type compressionUC struct {
	cfg         *config.Config
	transcoders compression.Dispatcher
	archiver    compression.Archiver
	resultRepo  compression.ResultRepository
	awsRepo     compression.AWSRepository
	progressCh  *progress.Channel
	logger      logger.Logger
}

func NewCompressionUseCase(
	cfg *config.Config,
	transcoders compression.Dispatcher,
	archiver compression.Archiver,
	resultRepo compression.ResultRepository,
	awsRepo compression.AWSRepository,
	progressCh *progress.Channel,
	log logger.Logger,
) compression.UseCase {
	return &compressionUC{
		cfg:         cfg,
		transcoders: transcoders,
		archiver:    archiver,
		resultRepo:  resultRepo,
		awsRepo:     awsRepo,
		progressCh:  progressCh,
		logger:      log,
	}
}

func (u *compressionUC) SubmitSingle(ctx context.Context, sourcePath string, opts *models.CompressionOptions) (*models.BatchResult, error) {
	return u.SubmitBatch(ctx, []string{sourcePath}, opts, false)
}

func (u *compressionUC) SubmitBatch(ctx context.Context, sourcePaths []string, opts *models.CompressionOptions, createArchive bool) (*models.BatchResult, error) {
	if len(sourcePaths) == 0 {
		return nil, fmt.Errorf("no files to compress")
	}
	if canAccept, usage := utils.CheckCPUUsage(u.cfg.Worker.MaxCPUUsage); !canAccept {
		u.logger.Warnf("SubmitBatch - rejecting job, CPU usage: %.1f", usage)
		return nil, compression.ErrServerBusy
	}

	opts = u.applyDefaults(opts)

	job := &models.Job{
		JobID:     compression.NewJobID(),
		State:     models.JobStateCreated,
		CreatedAt: time.Now(),
		Files:     make([]models.FileTask, 0, len(sourcePaths)),
	}
	for _, path := range sourcePaths {
		job.Files = append(job.Files, models.FileTask{
			FileName:   filepath.Base(path),
			SourcePath: path,
			Category:   models.DetectCategory(path),
			Options:    opts,
		})
	}

	// A submitted job always runs to completion, even if the invoking
	// connection goes away mid-transcode.
	return u.run(context.WithoutCancel(ctx), job, createArchive)
}

// run executes the whole batch sequentially, in input order. Per-file
// failures are recorded on the task and the loop continues; only an
// orchestration-level failure moves the job to the failed state.
func (u *compressionUC) run(ctx context.Context, job *models.Job, createArchive bool) (*models.BatchResult, error) {
	job.State = models.JobStateRunning
	u.progressCh.Publish(job.JobID, models.NewStatusEvent(job.JobID, "started"))
	u.logger.Infof("job %s started with %d files", job.JobID, len(job.Files))

	outputDir := filepath.Join(u.cfg.Storage.OutputDir, job.JobID)
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		job.State = models.JobStateFailed
		u.progressCh.Publish(job.JobID, models.NewErrorEvent(job.JobID, "failed to create output directory"))
		u.logger.Errorf("job %s failed: %v", job.JobID, err)
		return nil, errors.Wrap(err, "failed to create output directory")
	}

	reserve := 100
	if createArchive {
		reserve = archiveReserve
	}

	total := len(job.Files)
	for i := range job.Files {
		task := &job.Files[i]
		percent := int(math.Round(float64(i) / float64(total) * float64(reserve)))
		u.progressCh.Publish(job.JobID, models.NewProgressEvent(
			job.JobID,
			percent,
			fmt.Sprintf("compressing %s (%d/%d)", task.FileName, i+1, total),
		))
		u.processFile(ctx, task, outputDir)
	}

	result := u.aggregate(job)

	if createArchive && result.SuccessfulFiles > 1 {
		u.progressCh.Publish(job.JobID, models.NewProgressEvent(job.JobID, archiveReserve, "creating archive"))
		u.createArchive(ctx, job, result, outputDir)
	}

	u.mirrorArtifacts(ctx, job, result)

	job.State = models.JobStateCompleted
	result.State = job.State
	u.progressCh.Publish(job.JobID, models.NewCompletedEvent(job.JobID, result))
	u.logger.Infof("job %s completed: %d succeeded, %d failed",
		job.JobID, result.SuccessfulFiles, result.FailedFiles)

	if err := u.resultRepo.CacheResult(ctx, result); err != nil {
		u.logger.Errorf("job %s: failed to cache result: %v", job.JobID, err)
	}
	return result, nil
}

// processFile visits one task and records exactly one outcome on it. A
// failure here never aborts the batch.
func (u *compressionUC) processFile(ctx context.Context, task *models.FileTask, outputDir string) {
	if task.Category == models.CategoryUnsupported {
		task.Failure = &models.FailureRecord{
			FileName: task.FileName,
			Message:  "unsupported file type",
		}
		return
	}
	if !utils.FileExists(task.SourcePath) {
		task.Failure = &models.FailureRecord{
			FileName: task.FileName,
			Message:  "file not found",
		}
		return
	}
	transcoder, ok := u.transcoders[task.Category]
	if !ok {
		task.Failure = &models.FailureRecord{
			FileName: task.FileName,
			Message:  fmt.Sprintf("no transcoder registered for category %s", task.Category),
		}
		return
	}

	result, err := transcoder.Compress(ctx, task.SourcePath, outputDir, task.Options)
	if err != nil {
		u.logger.Warnf("file %s failed: %v", task.FileName, err)
		task.Failure = &models.FailureRecord{
			FileName: task.FileName,
			Message:  err.Error(),
		}
		return
	}
	task.Result = result
}

func (u *compressionUC) aggregate(job *models.Job) *models.BatchResult {
	result := &models.BatchResult{
		JobID:      job.JobID,
		TotalFiles: len(job.Files),
		Files:      job.Files,
	}
	for i := range job.Files {
		task := &job.Files[i]
		if task.Result != nil {
			result.SuccessfulFiles++
			result.TotalOriginalSize += task.Result.OriginalSize
			result.TotalCompressedSize += task.Result.CompressedSize
		} else {
			result.FailedFiles++
		}
	}
	result.OverallRatio = models.CompressionRatio(result.TotalOriginalSize, result.TotalCompressedSize)
	return result
}

// createArchive packages successful outputs only. A failure here is
// downgraded: the per-file results stand and the error is surfaced as a
// separate field on the aggregate.
func (u *compressionUC) createArchive(ctx context.Context, job *models.Job, result *models.BatchResult, outputDir string) {
	successes := make([]*models.CompressionResult, 0, result.SuccessfulFiles)
	for i := range job.Files {
		if job.Files[i].Result != nil {
			successes = append(successes, job.Files[i].Result)
		}
	}

	archivePath, err := u.archiver.Create(ctx, successes, outputDir, job.JobID+".zip")
	if err != nil {
		u.logger.Errorf("job %s: archive creation failed: %v", job.JobID, err)
		result.ArchiveError = err.Error()
		return
	}
	result.ArchivePath = archivePath
}

// mirrorArtifacts pushes completed outputs to the remote store and attaches
// presigned download links. Best-effort: a mirror failure is logged and the
// local result stands.
func (u *compressionUC) mirrorArtifacts(ctx context.Context, job *models.Job, result *models.BatchResult) {
	if u.awsRepo == nil || !u.cfg.S3.Enabled {
		return
	}
	bucket := u.cfg.S3.OutputBucket
	for i := range job.Files {
		task := &job.Files[i]
		if task.Result == nil {
			continue
		}
		key := fmt.Sprintf("%s/%s", job.JobID, task.Result.FileName)
		if err := u.awsRepo.UploadArtifact(ctx, bucket, key, task.Result.OutputPath); err != nil {
			u.logger.Errorf("job %s: failed to mirror %s: %v", job.JobID, task.Result.FileName, err)
			continue
		}
		url, err := u.awsRepo.GetPresignedURL(ctx, bucket, key)
		if err != nil {
			u.logger.Errorf("job %s: failed to presign %s: %v", job.JobID, key, err)
			continue
		}
		task.Result.DownloadURL = url
	}
	if result.ArchivePath != "" {
		key := fmt.Sprintf("%s/%s", job.JobID, filepath.Base(result.ArchivePath))
		if err := u.awsRepo.UploadArtifact(ctx, bucket, key, result.ArchivePath); err != nil {
			u.logger.Errorf("job %s: failed to mirror archive: %v", job.JobID, err)
			return
		}
		if url, err := u.awsRepo.GetPresignedURL(ctx, bucket, key); err == nil {
			result.ArchiveURL = url
		}
	}
}

func (u *compressionUC) GetResult(ctx context.Context, jobID string) (*models.BatchResult, error) {
	if jobID == "" {
		return nil, fmt.Errorf("invalid job id: cannot be empty")
	}
	result, err := u.resultRepo.GetResult(ctx, jobID)
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (u *compressionUC) applyDefaults(opts *models.CompressionOptions) *models.CompressionOptions {
	if opts == nil {
		opts = &models.CompressionOptions{}
	}
	if opts.Image.Quality == 0 {
		opts.Image.Quality = u.cfg.Compression.ImageQuality
	}
	if opts.Video.CRF == 0 {
		opts.Video.CRF = u.cfg.Compression.VideoCRF
	}
	if opts.Video.Preset == "" {
		opts.Video.Preset = u.cfg.Compression.VideoPreset
	}
	if opts.Audio.Bitrate == "" {
		opts.Audio.Bitrate = u.cfg.Compression.AudioBitrate
	}
	if opts.Document.Level == "" {
		opts.Document.Level = u.cfg.Compression.DocumentLevel
	}
	return opts
}
