package usecase

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/pkg/errors"
	"github.com/rahulmishra02/media-compressor/internal/compression"
	"github.com/rahulmishra02/media-compressor/internal/config"
	"github.com/rahulmishra02/media-compressor/internal/models"
	"github.com/rahulmishra02/media-compressor/internal/progress"
)

type nopLogger struct{}

func (nopLogger) InitLogger() {}

func (nopLogger) Debug(...interface{}) {}

func (nopLogger) Debugf(string, ...interface{}) {}

func (nopLogger) Info(...interface{}) {}

func (nopLogger) Infof(string, ...interface{}) {}

func (nopLogger) Warn(...interface{}) {}

func (nopLogger) Warnf(string, ...interface{}) {}

func (nopLogger) Error(...interface{}) {}

func (nopLogger) Errorf(string, ...interface{}) {}

func (nopLogger) Fatal(...interface{}) {}

func (nopLogger) Fatalf(string, ...interface{}) {}

// stubTranscoder fabricates fixed-size results and can be told to fail for
// specific file names.
type stubTranscoder struct {
	mu       sync.Mutex
	failFor  map[string]bool
	visited  []string
	original int64
	shrunk   int64
}

func (s *stubTranscoder) Compress(_ context.Context, inputPath, outputDir string, _ *models.CompressionOptions) (*models.CompressionResult, error) {
	name := filepath.Base(inputPath)
	s.mu.Lock()
	s.visited = append(s.visited, name)
	s.mu.Unlock()
	if s.failFor[name] {
		return nil, errors.New("codec blew up")
	}
	return &models.CompressionResult{
		FileName:       name,
		OriginalSize:   s.original,
		CompressedSize: s.shrunk,
		Ratio:          models.CompressionRatio(s.original, s.shrunk),
		OutputPath:     filepath.Join(outputDir, name),
	}, nil
}

type stubArchiver struct {
	err     error
	entries int
	called  bool
}

func (s *stubArchiver) Create(_ context.Context, results []*models.CompressionResult, outputDir, name string) (string, error) {
	s.called = true
	s.entries = len(results)
	if s.err != nil {
		return "", s.err
	}
	return filepath.Join(outputDir, name), nil
}

type stubResultRepo struct {
	mu      sync.Mutex
	results map[string]*models.BatchResult
}

func newStubResultRepo() *stubResultRepo {
	return &stubResultRepo{results: make(map[string]*models.BatchResult)}
}

func (s *stubResultRepo) CacheResult(_ context.Context, result *models.BatchResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results[result.JobID] = result
	return nil
}

func (s *stubResultRepo) GetResult(_ context.Context, jobID string) (*models.BatchResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	result, ok := s.results[jobID]
	if !ok {
		return nil, errors.New("not found")
	}
	return result, nil
}

type collectingObserver struct {
	mu     sync.Mutex
	events []models.ProgressEvent
}

func (o *collectingObserver) Send(event models.ProgressEvent) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.events = append(o.events, event)
	return nil
}

func (o *collectingObserver) recorded() []models.ProgressEvent {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]models.ProgressEvent, len(o.events))
	copy(out, o.events)
	return out
}

type fixture struct {
	uc         compression.UseCase
	transcoder *stubTranscoder
	archiver   *stubArchiver
	repo       *stubResultRepo
	channel    *progress.Channel
	cfg        *config.Config
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	cfg := &config.Config{
		Storage: config.StorageConfig{
			UploadDir: t.TempDir(),
			OutputDir: t.TempDir(),
		},
		Compression: config.CompressionConfig{
			ImageQuality:  75,
			VideoCRF:      28,
			VideoPreset:   "medium",
			AudioBitrate:  "128k",
			DocumentLevel: "ebook",
		},
		Worker: config.WorkerConfig{MaxCPUUsage: 100},
	}
	st := &stubTranscoder{failFor: map[string]bool{}, original: 1000, shrunk: 400}
	ar := &stubArchiver{}
	repo := newStubResultRepo()
	ch := progress.NewChannel(nopLogger{})
	uc := NewCompressionUseCase(cfg, compression.Dispatcher{
		models.CategoryImage:    st,
		models.CategoryVideo:    st,
		models.CategoryAudio:    st,
		models.CategoryDocument: st,
	}, ar, repo, nil, ch, nopLogger{})
	return &fixture{uc: uc, transcoder: st, archiver: ar, repo: repo, channel: ch, cfg: cfg}
}

func writeSourceFiles(t *testing.T, names ...string) []string {
	t.Helper()
	dir := t.TempDir()
	paths := make([]string, 0, len(names))
	for _, name := range names {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte("payload"), 0o644); err != nil {
			t.Fatalf("writing source file: %v", err)
		}
		paths = append(paths, path)
	}
	return paths
}

func TestSubmitBatchAllSucceed(t *testing.T) {
	f := newFixture(t)
	paths := writeSourceFiles(t, "a.jpg", "b.mp4", "c.mp3")

	result, err := f.uc.SubmitBatch(context.Background(), paths, nil, false)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if result.State != models.JobStateCompleted {
		t.Fatalf("expected completed state, got %s", result.State)
	}
	if result.SuccessfulFiles != 3 || result.FailedFiles != 0 || result.TotalFiles != 3 {
		t.Fatalf("unexpected counts: %+v", result)
	}
	if result.TotalOriginalSize != 3000 || result.TotalCompressedSize != 1200 {
		t.Fatalf("unexpected totals: %d/%d", result.TotalOriginalSize, result.TotalCompressedSize)
	}
	if result.OverallRatio != 60 {
		t.Fatalf("expected overall ratio 60, got %d", result.OverallRatio)
	}
}

func TestSubmitBatchIsolatesPerFileFailure(t *testing.T) {
	f := newFixture(t)
	paths := writeSourceFiles(t, "a.jpg", "b.mp4", "c.mp3")
	f.transcoder.failFor["b.mp4"] = true

	result, err := f.uc.SubmitBatch(context.Background(), paths, nil, false)
	if err != nil {
		t.Fatalf("a single file failure must not fail the job: %v", err)
	}
	if result.State != models.JobStateCompleted {
		t.Fatalf("expected completed, got %s", result.State)
	}
	if result.TotalFiles != 3 || result.SuccessfulFiles != 2 || result.FailedFiles != 1 {
		t.Fatalf("unexpected counts: %+v", result)
	}

	var failedTask *models.FileTask
	for i := range result.Files {
		if result.Files[i].FileName == "b.mp4" {
			failedTask = &result.Files[i]
		}
	}
	if failedTask == nil || failedTask.Failure == nil {
		t.Fatal("failing file must carry a failure record")
	}
	if failedTask.Result != nil {
		t.Fatal("failing file must not carry a compression result")
	}
	// The remaining file after the failure must still have been visited.
	if got := len(f.transcoder.visited); got != 3 {
		t.Fatalf("expected all 3 files dispatched, got %d", got)
	}
}

func TestSubmitBatchAllFailStillCompletes(t *testing.T) {
	f := newFixture(t)
	paths := writeSourceFiles(t, "a.jpg", "b.mp4")
	f.transcoder.failFor["a.jpg"] = true
	f.transcoder.failFor["b.mp4"] = true

	result, err := f.uc.SubmitBatch(context.Background(), paths, nil, false)
	if err != nil {
		t.Fatalf("expected no job-level error: %v", err)
	}
	if result.State != models.JobStateCompleted {
		t.Fatalf("completed means orchestration finished, got %s", result.State)
	}
	if result.SuccessfulFiles != 0 || result.FailedFiles != 2 {
		t.Fatalf("unexpected counts: %+v", result)
	}
}

func TestSubmitBatchUnsupportedAndMissingFiles(t *testing.T) {
	f := newFixture(t)
	paths := writeSourceFiles(t, "a.jpg", "weird.xyz")
	paths = append(paths, filepath.Join(t.TempDir(), "ghost.mp4"))

	result, err := f.uc.SubmitBatch(context.Background(), paths, nil, false)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if result.SuccessfulFiles != 1 || result.FailedFiles != 2 {
		t.Fatalf("unexpected counts: %+v", result)
	}
	for i := range result.Files {
		task := result.Files[i]
		if task.Result != nil && task.Failure != nil {
			t.Fatalf("task %s has both outcomes", task.FileName)
		}
		if task.Result == nil && task.Failure == nil {
			t.Fatalf("visited task %s has no outcome", task.FileName)
		}
	}
}

// runJob drives the orchestration loop directly with a pre-built job so
// observers can subscribe before the first event is published.
func runJob(t *testing.T, f *fixture, paths []string, createArchive bool, observers ...progress.Observer) (*models.BatchResult, error) {
	t.Helper()
	uc := f.uc.(*compressionUC)
	opts := uc.applyDefaults(nil)
	job := &models.Job{
		JobID: compression.NewJobID(),
		State: models.JobStateCreated,
	}
	for _, path := range paths {
		job.Files = append(job.Files, models.FileTask{
			FileName:   filepath.Base(path),
			SourcePath: path,
			Category:   models.DetectCategory(path),
			Options:    opts,
		})
	}
	for _, obs := range observers {
		f.channel.Subscribe(job.JobID, obs)
	}
	return uc.run(context.Background(), job, createArchive)
}

func TestProgressEventsMonotoneAndEndAt100(t *testing.T) {
	f := newFixture(t)
	paths := writeSourceFiles(t, "a.jpg", "b.mp4", "c.mp3", "d.pdf")

	obs := &collectingObserver{}
	if _, err := runJob(t, f, paths, false, obs); err != nil {
		t.Fatalf("run failed: %v", err)
	}

	events := obs.recorded()
	if len(events) == 0 {
		t.Fatal("expected events")
	}
	if events[0].Kind != models.EventStatus || events[0].Message != "started" {
		t.Fatalf("first event must be the started status, got %s/%q", events[0].Kind, events[0].Message)
	}
	last := events[len(events)-1]
	if last.Kind != models.EventCompleted || last.Percent != 100 {
		t.Fatalf("terminal event must be completed at 100, got %s/%d", last.Kind, last.Percent)
	}
	prev := -1
	for _, event := range events {
		if event.Kind != models.EventProgress && event.Kind != models.EventCompleted {
			continue
		}
		if event.Percent < prev {
			t.Fatalf("progress went backwards: %d after %d", event.Percent, prev)
		}
		prev = event.Percent
	}
}

func TestProgressCapsAt90WhenArchiving(t *testing.T) {
	f := newFixture(t)
	paths := writeSourceFiles(t, "a.jpg", "b.mp4")

	obs := &collectingObserver{}
	result, err := runJob(t, f, paths, true, obs)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if result.ArchivePath == "" {
		t.Fatal("expected an archive path")
	}
	if f.archiver.entries != 2 {
		t.Fatalf("archive must reference exactly 2 entries, got %d", f.archiver.entries)
	}

	events := obs.recorded()
	for _, event := range events {
		if event.Kind == models.EventProgress && event.Percent > 90 {
			t.Fatalf("pre-terminal progress must cap at 90, saw %d", event.Percent)
		}
	}
	last := events[len(events)-1]
	if last.Kind != models.EventCompleted || last.Percent != 100 {
		t.Fatalf("final event must reach 100 after archiving, got %s/%d", last.Kind, last.Percent)
	}
}

func TestArchiveFailureIsDowngraded(t *testing.T) {
	f := newFixture(t)
	paths := writeSourceFiles(t, "a.jpg", "b.mp4")
	f.archiver.err = errors.New("zip exploded")

	result, err := runJob(t, f, paths, true)
	if err != nil {
		t.Fatalf("archive failure must not fail the job: %v", err)
	}
	if result.State != models.JobStateCompleted {
		t.Fatalf("expected completed, got %s", result.State)
	}
	if result.SuccessfulFiles != 2 {
		t.Fatalf("individual successes must stand, got %d", result.SuccessfulFiles)
	}
	if result.ArchiveError == "" {
		t.Fatal("archive failure must surface on the aggregate")
	}
	if result.ArchivePath != "" {
		t.Fatal("no archive path on failure")
	}
}

func TestArchiveSkippedForSingleSuccess(t *testing.T) {
	f := newFixture(t)
	paths := writeSourceFiles(t, "a.jpg", "b.mp4")
	f.transcoder.failFor["b.mp4"] = true

	result, err := runJob(t, f, paths, true)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if f.archiver.called {
		t.Fatal("archiver must not run with fewer than two successes")
	}
	if result.ArchivePath != "" || result.ArchiveError != "" {
		t.Fatal("no archive fields expected")
	}
}

func TestOrchestrationFailureMovesJobToFailed(t *testing.T) {
	f := newFixture(t)
	paths := writeSourceFiles(t, "a.jpg")

	// Point the output root below a regular file so MkdirAll fails.
	blocker := filepath.Join(t.TempDir(), "blocker")
	if err := os.WriteFile(blocker, []byte("x"), 0o644); err != nil {
		t.Fatalf("writing blocker: %v", err)
	}
	f.cfg.Storage.OutputDir = blocker

	obs := &collectingObserver{}
	result, err := runJob(t, f, paths, false, obs)
	if err == nil {
		t.Fatal("expected an orchestration-level error")
	}
	if result != nil {
		t.Fatal("no result on job failure")
	}

	events := obs.recorded()
	last := events[len(events)-1]
	if last.Kind != models.EventError {
		t.Fatalf("terminal event must be error, got %s", last.Kind)
	}
}

func TestFilesProcessedInInputOrder(t *testing.T) {
	f := newFixture(t)
	paths := writeSourceFiles(t, "c.mp3", "a.jpg", "b.mp4")

	if _, err := runJob(t, f, paths, false); err != nil {
		t.Fatalf("run failed: %v", err)
	}
	want := []string{"c.mp3", "a.jpg", "b.mp4"}
	if len(f.transcoder.visited) != len(want) {
		t.Fatalf("expected %d dispatches, got %d", len(want), len(f.transcoder.visited))
	}
	for i, name := range want {
		if f.transcoder.visited[i] != name {
			t.Fatalf("dispatch order %v, want %v", f.transcoder.visited, want)
		}
	}
}

func TestTerminalResultRetainedForPolling(t *testing.T) {
	f := newFixture(t)
	paths := writeSourceFiles(t, "a.jpg")

	result, err := f.uc.SubmitSingle(context.Background(), paths[0], nil)
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}

	cached, err := f.uc.GetResult(context.Background(), result.JobID)
	if err != nil {
		t.Fatalf("expected retained result: %v", err)
	}
	if cached.JobID != result.JobID || cached.SuccessfulFiles != 1 {
		t.Fatalf("unexpected cached result: %+v", cached)
	}
}

func TestSubmitBatchRejectsEmptyInput(t *testing.T) {
	f := newFixture(t)
	if _, err := f.uc.SubmitBatch(context.Background(), nil, nil, false); err == nil {
		t.Fatal("expected error for empty batch")
	}
}
