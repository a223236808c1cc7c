package http

import (
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/rahulmishra02/media-compressor/internal/compression"
	"github.com/rahulmishra02/media-compressor/internal/compression/repository"
	"github.com/rahulmishra02/media-compressor/internal/config"
	"github.com/rahulmishra02/media-compressor/internal/models"
	"github.com/rahulmishra02/media-compressor/pkg/logger"
	"github.com/rahulmishra02/media-compressor/pkg/utils"
)

type compressionHandler struct {
	cfg    *config.Config
	uc     compression.UseCase
	logger logger.Logger
}

func NewCompressionHandler(cfg *config.Config, uc compression.UseCase, log logger.Logger) compression.Handler {
	return &compressionHandler{
		cfg:    cfg,
		uc:     uc,
		logger: log,
	}
}

// CompressFile accepts a single multipart upload plus optional per-category
// options and blocks until compression finishes.
func (h *compressionHandler) CompressFile() echo.HandlerFunc {
	return func(c echo.Context) error {
		fileHeader, err := c.FormFile("file")
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "file is required"})
		}
		opts, err := h.parseOptions(c)
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
		}

		localPath, err := h.saveUpload(fileHeader)
		if err != nil {
			return utils.ErrResponseWithLog(c, h.logger, http.StatusBadRequest, err)
		}
		defer os.RemoveAll(filepath.Dir(localPath))

		result, err := h.uc.SubmitSingle(c.Request().Context(), localPath, opts)
		if err != nil {
			return h.submitError(c, err)
		}
		return c.JSON(http.StatusOK, result)
	}
}

// CompressBatch accepts many multipart uploads under the "files" field and
// blocks until the whole batch finishes. Live progress is available on the
// websocket endpoint while this call is in flight.
func (h *compressionHandler) CompressBatch() echo.HandlerFunc {
	return func(c echo.Context) error {
		form, err := c.MultipartForm()
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "multipart form is required"})
		}
		fileHeaders := form.File["files"]
		if len(fileHeaders) == 0 {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "at least one file is required"})
		}
		if len(fileHeaders) > h.cfg.Storage.MaxBatchFiles {
			return c.JSON(http.StatusBadRequest, map[string]string{
				"error": fmt.Sprintf("too many files: max %d per batch", h.cfg.Storage.MaxBatchFiles),
			})
		}
		opts, err := h.parseOptions(c)
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
		}
		createArchive := c.FormValue("create_archive") == "true"

		localPaths := make([]string, 0, len(fileHeaders))
		defer func() {
			for _, path := range localPaths {
				os.RemoveAll(filepath.Dir(path))
			}
		}()
		for _, fileHeader := range fileHeaders {
			localPath, err := h.saveUpload(fileHeader)
			if err != nil {
				return utils.ErrResponseWithLog(c, h.logger, http.StatusBadRequest, err)
			}
			localPaths = append(localPaths, localPath)
		}

		result, err := h.uc.SubmitBatch(c.Request().Context(), localPaths, opts, createArchive)
		if err != nil {
			return h.submitError(c, err)
		}
		return c.JSON(http.StatusOK, result)
	}
}

// GetJobResult serves the retained terminal result for a job id.
func (h *compressionHandler) GetJobResult() echo.HandlerFunc {
	return func(c echo.Context) error {
		jobID := c.Param("job_id")
		result, err := h.uc.GetResult(c.Request().Context(), jobID)
		if err != nil {
			if errors.Is(err, repository.ErrResultNotFound) {
				return c.JSON(http.StatusNotFound, map[string]string{"error": "job result not found"})
			}
			return utils.ErrResponseWithLog(c, h.logger, http.StatusInternalServerError, err)
		}
		return c.JSON(http.StatusOK, result)
	}
}

// DownloadFile streams one produced artifact from the job's output
// directory.
func (h *compressionHandler) DownloadFile() echo.HandlerFunc {
	return func(c echo.Context) error {
		jobID := c.Param("job_id")
		fileName := utils.SanitizeFilename(c.Param("file_name"))
		path := filepath.Join(h.cfg.Storage.OutputDir, utils.SanitizeFilename(jobID), fileName)
		if !utils.FileExists(path) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "file not found"})
		}
		return c.Attachment(path, fileName)
	}
}

// DownloadArchive streams the job's zip archive when one was produced.
func (h *compressionHandler) DownloadArchive() echo.HandlerFunc {
	return func(c echo.Context) error {
		jobID := utils.SanitizeFilename(c.Param("job_id"))
		path := filepath.Join(h.cfg.Storage.OutputDir, jobID, jobID+".zip")
		if !utils.FileExists(path) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "archive not found"})
		}
		return c.Attachment(path, jobID+".zip")
	}
}

func (h *compressionHandler) parseOptions(c echo.Context) (*models.CompressionOptions, error) {
	opts := &models.CompressionOptions{}
	raw := c.FormValue("options")
	if raw == "" {
		return opts, nil
	}
	if err := json.Unmarshal([]byte(raw), opts); err != nil {
		return nil, fmt.Errorf("invalid options payload")
	}
	if err := utils.ValidateStruct(c.Request().Context(), opts); err != nil {
		return nil, fmt.Errorf("invalid options: %v", err)
	}
	return opts, nil
}

// saveUpload writes a multipart upload into the upload directory under a
// collision-free name and returns the local path.
func (h *compressionHandler) saveUpload(fileHeader *multipart.FileHeader) (string, error) {
	maxBytes := h.cfg.Storage.MaxFileSizeMB * 1024 * 1024
	if maxBytes > 0 && fileHeader.Size > maxBytes {
		return "", fmt.Errorf("file %s exceeds max size of %dMB", fileHeader.Filename, h.cfg.Storage.MaxFileSizeMB)
	}

	src, err := fileHeader.Open()
	if err != nil {
		return "", errors.Wrap(err, "failed to open upload")
	}
	defer src.Close()

	// Per-upload subdirectory keeps the original filename intact while
	// avoiding collisions between concurrent uploads of the same name.
	uploadDir := filepath.Join(h.cfg.Storage.UploadDir, uuid.New().String()[:8])
	if err = os.MkdirAll(uploadDir, 0o755); err != nil {
		return "", errors.Wrap(err, "failed to create upload directory")
	}

	name := utils.SanitizeFilename(fileHeader.Filename)
	localPath := filepath.Join(uploadDir, name)
	dst, err := os.Create(localPath)
	if err != nil {
		return "", errors.Wrap(err, "failed to create local file")
	}
	defer dst.Close()

	if _, err = io.Copy(dst, src); err != nil {
		os.Remove(localPath)
		return "", errors.Wrap(err, "failed to write upload")
	}
	return localPath, nil
}

func (h *compressionHandler) submitError(c echo.Context, err error) error {
	if errors.Is(err, compression.ErrServerBusy) {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{"error": err.Error()})
	}
	return utils.ErrResponseWithLog(c, h.logger, http.StatusInternalServerError, err)
}
