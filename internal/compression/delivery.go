package compression

import "github.com/labstack/echo/v4"

type Handler interface {
	CompressFile() echo.HandlerFunc
	CompressBatch() echo.HandlerFunc
	GetJobResult() echo.HandlerFunc
	DownloadFile() echo.HandlerFunc
	DownloadArchive() echo.HandlerFunc
}
