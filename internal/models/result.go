package models

import "math"

// CompressionResult describes one successfully produced artifact. The
// output file exists on disk at the moment the result is constructed.
type CompressionResult struct {
	FileName       string `json:"file_name"`
	OriginalSize   int64  `json:"original_size"`
	CompressedSize int64  `json:"compressed_size"`
	Ratio          int    `json:"ratio"`
	OutputPath     string `json:"output_path"`
	DownloadURL    string `json:"download_url,omitempty"`
}

// BatchResult is the aggregate outcome of a whole job. Completed means
// orchestration finished; callers must inspect FailedFiles to detect total
// failure.
type BatchResult struct {
	JobID               string     `json:"job_id"`
	State               JobState   `json:"state"`
	TotalFiles          int        `json:"total_files"`
	SuccessfulFiles     int        `json:"successful_files"`
	FailedFiles         int        `json:"failed_files"`
	TotalOriginalSize   int64      `json:"total_original_size"`
	TotalCompressedSize int64      `json:"total_compressed_size"`
	OverallRatio        int        `json:"overall_ratio"`
	Files               []FileTask `json:"files"`
	ArchivePath         string     `json:"archive_path,omitempty"`
	ArchiveURL          string     `json:"archive_url,omitempty"`
	ArchiveError        string     `json:"archive_error,omitempty"`
}

// CompressionRatio returns the space saved as a rounded percentage. A
// negative ratio means compression grew the file, which is a legal,
// reportable outcome. A zero original size yields 0.
func CompressionRatio(originalSize, compressedSize int64) int {
	if originalSize <= 0 {
		return 0
	}
	saved := float64(originalSize-compressedSize) / float64(originalSize) * 100
	return int(math.Round(saved))
}
