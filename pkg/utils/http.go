package utils

import (
	"github.com/labstack/echo/v4"
	"github.com/rahulmishra02/media-compressor/pkg/logger"
)

func GetRequestID(c echo.Context) string {
	return c.Response().Header().Get(echo.HeaderXRequestID)
}

func GetIPAddress(c echo.Context) string {
	return c.Request().RemoteAddr
}

// ErrResponseWithLog logs the handler error with request context and
// returns a structured body, never a raw internal error.
func ErrResponseWithLog(c echo.Context, log logger.Logger, status int, err error) error {
	log.Errorf("ErrResponseWithLog, RequestID: %s, IPAddress: %s, Error: %s",
		GetRequestID(c),
		GetIPAddress(c),
		err,
	)
	return c.JSON(status, map[string]string{"error": err.Error()})
}
