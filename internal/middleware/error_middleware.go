package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"medialink-go/internal/apperrors"
	"medialink-go/internal/i18n"
	"medialink-go/response"
)

// GlobalErrorMiddleware 全局错误中间件
func GlobalErrorMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		// 如果有错误发生
		if len(c.Errors) > 0 {
			for _, err := range c.Errors {
				var appErr *apperrors.AppError
				if errors.As(err.Err, &appErr) {
					// 消息为 i18n 消息 ID 时按请求语言翻译
					message := i18n.Localize(c.Request.Context(), appErr.Message)
					c.AbortWithStatusJSON(appErr.Code, response.Error(message))
					return
				}
			}

			// 默认处理未定义的错误
			c.AbortWithStatusJSON(http.StatusInternalServerError,
				response.Error(i18n.Localize(c.Request.Context(), "error.system")))
			return
		}
	}
}
