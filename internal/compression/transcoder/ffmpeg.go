// Package transcoder holds the codec capability implementations the
// orchestrator dispatches to. Video, audio and image compression shell out
// to ffmpeg; documents go through ghostscript. Every implementation is
// all-or-nothing: a failed run removes whatever partial output it wrote.
package transcoder

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/rahulmishra02/media-compressor/internal/compression"
	"github.com/rahulmishra02/media-compressor/internal/models"
)

// runCommand executes an external binary and captures combined output for
// error reporting.
func runCommand(ctx context.Context, name string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var output strings.Builder
	cmd.Stdout = &output
	cmd.Stderr = &output
	err := cmd.Run()
	return output.String(), err
}

// buildResult stats both files and assembles the result. The output is
// guaranteed to exist at this point.
func buildResult(inputPath, outputPath string) (*models.CompressionResult, error) {
	inInfo, err := os.Stat(inputPath)
	if err != nil {
		return nil, errors.Wrap(err, "failed to stat input file")
	}
	outInfo, err := os.Stat(outputPath)
	if err != nil {
		return nil, errors.Wrap(err, "failed to stat output file")
	}
	return &models.CompressionResult{
		FileName:       filepath.Base(outputPath),
		OriginalSize:   inInfo.Size(),
		CompressedSize: outInfo.Size(),
		Ratio:          models.CompressionRatio(inInfo.Size(), outInfo.Size()),
		OutputPath:     outputPath,
	}, nil
}

// removePartialOutput enforces the all-or-nothing artifact contract.
func removePartialOutput(outputPath string) {
	os.Remove(outputPath)
}

type videoTranscoder struct {
	ffmpegBin string
}

func NewVideoTranscoder(ffmpegBin string) compression.Transcoder {
	if ffmpegBin == "" {
		ffmpegBin = "ffmpeg"
	}
	return &videoTranscoder{ffmpegBin: ffmpegBin}
}

func (t *videoTranscoder) Compress(ctx context.Context, inputPath, outputDir string, opts *models.CompressionOptions) (*models.CompressionResult, error) {
	base := strings.TrimSuffix(filepath.Base(inputPath), filepath.Ext(inputPath))
	outputPath := filepath.Join(outputDir, base+".mp4")

	args := []string{
		"-i", inputPath,
		"-c:v", "libx264",
		"-crf", strconv.Itoa(opts.Video.CRF),
		"-preset", opts.Video.Preset,
	}
	if opts.Video.MaxHeight > 0 {
		args = append(args, "-vf", fmt.Sprintf("scale=-2:'min(%d,ih)'", opts.Video.MaxHeight))
	}
	args = append(args,
		"-c:a", "aac",
		"-b:a", "128k",
		"-movflags", "+faststart",
		"-y", outputPath,
	)

	if output, err := runCommand(ctx, t.ffmpegBin, args...); err != nil {
		removePartialOutput(outputPath)
		return nil, errors.Wrapf(err, "video encode failed: %s", tailOf(output))
	}
	return buildResult(inputPath, outputPath)
}

type audioTranscoder struct {
	ffmpegBin string
}

func NewAudioTranscoder(ffmpegBin string) compression.Transcoder {
	if ffmpegBin == "" {
		ffmpegBin = "ffmpeg"
	}
	return &audioTranscoder{ffmpegBin: ffmpegBin}
}

func (t *audioTranscoder) Compress(ctx context.Context, inputPath, outputDir string, opts *models.CompressionOptions) (*models.CompressionResult, error) {
	base := strings.TrimSuffix(filepath.Base(inputPath), filepath.Ext(inputPath))
	outputPath := filepath.Join(outputDir, base+".mp3")

	args := []string{
		"-i", inputPath,
		"-vn",
		"-c:a", "libmp3lame",
		"-b:a", opts.Audio.Bitrate,
		"-y", outputPath,
	}

	if output, err := runCommand(ctx, t.ffmpegBin, args...); err != nil {
		removePartialOutput(outputPath)
		return nil, errors.Wrapf(err, "audio encode failed: %s", tailOf(output))
	}
	return buildResult(inputPath, outputPath)
}

type imageTranscoder struct {
	ffmpegBin string
}

func NewImageTranscoder(ffmpegBin string) compression.Transcoder {
	if ffmpegBin == "" {
		ffmpegBin = "ffmpeg"
	}
	return &imageTranscoder{ffmpegBin: ffmpegBin}
}

func (t *imageTranscoder) Compress(ctx context.Context, inputPath, outputDir string, opts *models.CompressionOptions) (*models.CompressionResult, error) {
	base := strings.TrimSuffix(filepath.Base(inputPath), filepath.Ext(inputPath))
	outputPath := filepath.Join(outputDir, base+".jpg")

	args := []string{
		"-i", inputPath,
		"-q:v", strconv.Itoa(jpegQScale(opts.Image.Quality)),
	}
	if opts.Image.MaxWidth > 0 {
		args = append(args, "-vf", fmt.Sprintf("scale='min(%d,iw)':-2", opts.Image.MaxWidth))
	}
	args = append(args, "-y", outputPath)

	if output, err := runCommand(ctx, t.ffmpegBin, args...); err != nil {
		removePartialOutput(outputPath)
		return nil, errors.Wrapf(err, "image encode failed: %s", tailOf(output))
	}
	return buildResult(inputPath, outputPath)
}

// jpegQScale maps a 1-100 quality to ffmpeg's inverted 2-31 qscale range.
func jpegQScale(quality int) int {
	if quality < 1 {
		quality = 1
	}
	if quality > 100 {
		quality = 100
	}
	return 31 - (quality*29)/100
}

// tailOf keeps error payloads readable; ffmpeg output can run to many KB
// and only the last lines carry the failure reason.
func tailOf(output string) string {
	output = strings.TrimSpace(output)
	if len(output) <= 400 {
		return output
	}
	return "..." + output[len(output)-400:]
}
