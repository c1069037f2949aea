package handler

import (
	"medialink-go/internal/apperrors"
	"medialink-go/internal/dto"
	"medialink-go/internal/service"
	"medialink-go/response"
	"net/http"
	"net/url"
	"reflect"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

var (
	linkService  *service.LinkService
	relayService *service.RelayService
	accessGuard  *service.AccessGuard
)

// Setup 注入各服务实例，必须在注册路由前调用
func Setup(links *service.LinkService, relay *service.RelayService, guard *service.AccessGuard) {
	linkService = links
	relayService = relay
	accessGuard = guard
}

// IndexHandler 注册入口说明（表单页面由前端承载，这里只返回接口信息）
func IndexHandler(c *gin.Context) {
	c.JSON(http.StatusOK, response.OK(gin.H{
		"generate": "POST /generate (form fields: url, key, custom_id, filename?)",
		"download": "GET /download/:slug?key=...",
		"stream":   "GET /stream/:slug?key=...",
	}, "medialink"))
}

// GenerateLinkHandler 注册受保护短链（POST /generate）
func GenerateLinkHandler(c *gin.Context) {
	var req dto.GenerateLinkRequest
	if err := c.ShouldBind(&req); err != nil {
		// 检查错误是否为 ValidationErrors 类型
		if validationErrs, ok := err.(validator.ValidationErrors); ok {
			for _, e := range validationErrs {
				// 通过反射获取字段的 msg 标签值
				field, ok := reflect.TypeOf(req).FieldByName(e.Field())
				if !ok {
					_ = c.Error(apperrors.InvalidRequestErrorDefault())
					return
				}

				customMsg := field.Tag.Get("msg")
				if customMsg != "" {
					_ = c.Error(apperrors.InvalidRequestError(customMsg))
					return
				}
			}
		}
		_ = c.Error(apperrors.InvalidRequestErrorDefault())
		return
	}

	link, err := linkService.Register(c.Request.Context(), req)
	if err != nil {
		zap.L().Warn("Link registration failed",
			zap.Error(err),
			zap.String("custom_id", req.CustomLabel),
		)
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, response.OK(dto.GenerateLinkResult{
		Slug:     link.Slug,
		Filename: link.Filename,
	}, "success"))
}

// AdminListHandler 列出全部短链记录（GET /admin?key=K）
func AdminListHandler(c *gin.Context) {
	if err := accessGuard.CheckAdminKey(c.Query("key")); err != nil {
		_ = c.Error(err)
		return
	}

	links, err := linkService.List()
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, response.OK(links, "success"))
}

// DeleteLinkHandler 删除短链记录（POST /delete?key=K，表单字段 id）
func DeleteLinkHandler(c *gin.Context) {
	key := c.Query("key")
	if err := accessGuard.CheckAdminKey(key); err != nil {
		_ = c.Error(err)
		return
	}

	slug := c.PostForm("id")
	if slug == "" {
		_ = c.Error(apperrors.InvalidRequestError("error.custom_id_required"))
		return
	}

	// 删除不存在的 slug 同样成功（幂等）
	if err := linkService.Delete(slug); err != nil {
		zap.L().Warn("Link deletion failed",
			zap.Error(err),
			zap.String("slug", slug),
		)
		_ = c.Error(err)
		return
	}

	c.Redirect(http.StatusSeeOther, "/admin?key="+url.QueryEscape(key))
}
