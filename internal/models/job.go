package models

import (
	"path/filepath"
	"strings"
	"time"
)

type JobState string

const (
	JobStateCreated   JobState = "created"
	JobStateRunning   JobState = "running"
	JobStateCompleted JobState = "completed"
	JobStateFailed    JobState = "failed"
)

// IsTerminal reports whether no further state transitions can occur.
func (s JobState) IsTerminal() bool {
	return s == JobStateCompleted || s == JobStateFailed
}

type Category string

const (
	CategoryImage       Category = "image"
	CategoryVideo       Category = "video"
	CategoryAudio       Category = "audio"
	CategoryDocument    Category = "document"
	CategoryUnsupported Category = "unsupported"
)

// Job is one client-initiated compression request spanning one or more
// files. It is mutated only by the orchestration run that owns it.
type Job struct {
	JobID     string     `json:"job_id" redis:"job_id"`
	State     JobState   `json:"state" redis:"state"`
	Files     []FileTask `json:"files" redis:"files"`
	CreatedAt time.Time  `json:"created_at" redis:"created_at"`
}

// FileTask is the unit of work for a single file within a job. Once the
// orchestrator has visited it, exactly one of Result or Failure is set.
type FileTask struct {
	FileName   string              `json:"file_name"`
	SourcePath string              `json:"-"`
	Category   Category            `json:"category"`
	Options    *CompressionOptions `json:"-"`
	Result     *CompressionResult  `json:"result,omitempty"`
	Failure    *FailureRecord      `json:"failure,omitempty"`
}

type FailureRecord struct {
	FileName string `json:"file_name"`
	Message  string `json:"message"`
}

var categoryByExt = map[string]Category{
	".jpg": CategoryImage, ".jpeg": CategoryImage, ".png": CategoryImage,
	".webp": CategoryImage, ".gif": CategoryImage, ".bmp": CategoryImage,
	".tiff": CategoryImage,

	".mp4": CategoryVideo, ".mkv": CategoryVideo, ".avi": CategoryVideo,
	".mov": CategoryVideo, ".webm": CategoryVideo, ".wmv": CategoryVideo,
	".flv": CategoryVideo, ".m4v": CategoryVideo, ".mpeg": CategoryVideo,
	".mpg": CategoryVideo, ".3gp": CategoryVideo,

	".mp3": CategoryAudio, ".wav": CategoryAudio, ".flac": CategoryAudio,
	".aac": CategoryAudio, ".ogg": CategoryAudio, ".m4a": CategoryAudio,
	".wma": CategoryAudio, ".opus": CategoryAudio,

	".pdf": CategoryDocument,
}

// DetectCategory classifies a file by its extension. Unknown extensions map
// to CategoryUnsupported, which the orchestrator records as a per-file
// failure rather than rejecting the whole batch.
func DetectCategory(filename string) Category {
	ext := strings.ToLower(filepath.Ext(filename))
	if category, ok := categoryByExt[ext]; ok {
		return category
	}
	return CategoryUnsupported
}
