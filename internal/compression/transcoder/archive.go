package transcoder

import (
	"archive/zip"
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/rahulmishra02/media-compressor/internal/compression"
	"github.com/rahulmishra02/media-compressor/internal/models"
)

type zipArchiver struct{}

func NewZipArchiver() compression.Archiver {
	return &zipArchiver{}
}

// Create packages the given artifacts into a single zip under outputDir.
// The partial archive is removed on any failure.
func (a *zipArchiver) Create(ctx context.Context, results []*models.CompressionResult, outputDir, name string) (string, error) {
	archivePath := filepath.Join(outputDir, name)
	archiveFile, err := os.Create(archivePath)
	if err != nil {
		return "", errors.Wrap(err, "failed to create archive file")
	}

	writer := zip.NewWriter(archiveFile)
	for _, result := range results {
		if err = ctx.Err(); err != nil {
			break
		}
		if err = addToArchive(writer, result.OutputPath); err != nil {
			break
		}
	}

	if closeErr := writer.Close(); err == nil {
		err = closeErr
	}
	if closeErr := archiveFile.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(archivePath)
		return "", errors.Wrap(err, "failed to write archive")
	}
	return archivePath, nil
}

func addToArchive(writer *zip.Writer, path string) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	entry, err := writer.Create(filepath.Base(path))
	if err != nil {
		return err
	}
	_, err = io.Copy(entry, file)
	return err
}
