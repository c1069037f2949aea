package handler

import (
	"medialink-go/internal/apperrors"

	"github.com/gin-gonic/gin"
)

// DownloadHandler 下载模式中继（GET /download/:slug?key=K）
func DownloadHandler(c *gin.Context) {
	key, ok := c.GetQuery("key")
	if !ok || key == "" {
		_ = c.Error(apperrors.UnauthorizedError("error.key_missing"))
		return
	}

	if err := relayService.Download(c.Writer, c.Request, c.Param("slug"), key); err != nil {
		_ = c.Error(err)
		return
	}
}

// StreamHandler 串流模式中继（GET /stream/:slug?key=K）
func StreamHandler(c *gin.Context) {
	key, ok := c.GetQuery("key")
	if !ok || key == "" {
		_ = c.Error(apperrors.UnauthorizedError("error.key_missing"))
		return
	}

	if err := relayService.Stream(c.Writer, c.Request, c.Param("slug"), key); err != nil {
		_ = c.Error(err)
		return
	}
}
