package server

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rahulmishra02/media-compressor/internal/compression"
	compressionHttp "github.com/rahulmishra02/media-compressor/internal/compression/delivery/http"
	compressionWs "github.com/rahulmishra02/media-compressor/internal/compression/delivery/ws"
	compressionRepository "github.com/rahulmishra02/media-compressor/internal/compression/repository"
	"github.com/rahulmishra02/media-compressor/internal/compression/transcoder"
	compressionUsecase "github.com/rahulmishra02/media-compressor/internal/compression/usecase"
	"github.com/rahulmishra02/media-compressor/internal/models"
	"github.com/rahulmishra02/media-compressor/internal/progress"
	"github.com/rahulmishra02/media-compressor/pkg/utils"
)

// MapHandlers is the composition root: it builds the progress channel, the
// capability dispatcher, the repositories and the orchestrator, and wires
// them to the HTTP and websocket routes.
func (s *Server) MapHandlers(e *echo.Echo) error {
	progressCh := progress.NewChannel(s.logger)

	transcoders := compression.Dispatcher{
		models.CategoryImage:    transcoder.NewImageTranscoder(""),
		models.CategoryVideo:    transcoder.NewVideoTranscoder(""),
		models.CategoryAudio:    transcoder.NewAudioTranscoder(""),
		models.CategoryDocument: transcoder.NewDocumentTranscoder(""),
	}
	archiver := transcoder.NewZipArchiver()

	var resultRepo compression.ResultRepository
	if s.cfg.Redis.Enabled && s.redisClient != nil {
		resultRepo = compressionRepository.NewResultRedisRepo(
			s.redisClient,
			time.Duration(s.cfg.Redis.ResultTTLMin)*time.Minute,
		)
	} else {
		resultRepo = compressionRepository.NewResultMemoryRepo()
	}

	var awsRepo compression.AWSRepository
	if s.cfg.S3.Enabled && s.s3Client != nil {
		awsRepo = compressionRepository.NewAwsRepository(s.s3Client, s.preSignClient)
	}

	compressionUC := compressionUsecase.NewCompressionUseCase(
		s.cfg, transcoders, archiver, resultRepo, awsRepo, progressCh, s.logger,
	)
	compressionHandlers := compressionHttp.NewCompressionHandler(s.cfg, compressionUC, s.logger)
	progressHandler := compressionWs.NewProgressHandler(progressCh, s.logger)

	v1 := e.Group("/api/v1")
	health := v1.Group("/health")
	compressGroup := v1.Group("/compress")

	compressionHttp.MapCompressionRoutes(compressGroup, compressionHandlers)
	compressGroup.GET("/ws", progressHandler.Serve())
	health.GET("", func(c echo.Context) error {
		s.logger.Infof("Health check RequestID: %s", utils.GetRequestID(c))
		return c.JSON(http.StatusOK, map[string]string{"status": "OK"})
	})
	return nil
}
