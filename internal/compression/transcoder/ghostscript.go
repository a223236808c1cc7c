package transcoder

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/rahulmishra02/media-compressor/internal/compression"
	"github.com/rahulmishra02/media-compressor/internal/models"
)

type documentTranscoder struct {
	gsBin string
}

func NewDocumentTranscoder(gsBin string) compression.Transcoder {
	if gsBin == "" {
		gsBin = "gs"
	}
	return &documentTranscoder{gsBin: gsBin}
}

func (t *documentTranscoder) Compress(ctx context.Context, inputPath, outputDir string, opts *models.CompressionOptions) (*models.CompressionResult, error) {
	base := strings.TrimSuffix(filepath.Base(inputPath), filepath.Ext(inputPath))
	outputPath := filepath.Join(outputDir, base+".pdf")

	args := []string{
		"-sDEVICE=pdfwrite",
		"-dCompatibilityLevel=1.4",
		"-dPDFSETTINGS=/" + opts.Document.Level,
		"-dNOPAUSE",
		"-dQUIET",
		"-dBATCH",
		"-sOutputFile=" + outputPath,
		inputPath,
	}

	if output, err := runCommand(ctx, t.gsBin, args...); err != nil {
		removePartialOutput(outputPath)
		return nil, errors.Wrapf(err, "pdf compression failed: %s", tailOf(output))
	}
	return buildResult(inputPath, outputPath)
}
