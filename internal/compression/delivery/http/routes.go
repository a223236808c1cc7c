package http

import (
	"github.com/labstack/echo/v4"
	"github.com/rahulmishra02/media-compressor/internal/compression"
)

func MapCompressionRoutes(compressGroup *echo.Group, h compression.Handler) {
	compressGroup.POST("/file", h.CompressFile())
	compressGroup.POST("/batch", h.CompressBatch())
	compressGroup.GET("/jobs/:job_id", h.GetJobResult())
	compressGroup.GET("/jobs/:job_id/files/:file_name", h.DownloadFile())
	compressGroup.GET("/jobs/:job_id/archive", h.DownloadArchive())
}
