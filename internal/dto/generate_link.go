package dto

import (
	"medialink-go/pkg/utils"

	"github.com/gin-gonic/gin"
)

// GenerateLinkRequest 用于注册受保护短链的表单参数
type GenerateLinkRequest struct {
	UpstreamURL string `form:"url" json:"url" binding:"required" msg:"error.url_required"`
	SecretKey   string `form:"key" json:"key" binding:"required" msg:"error.key_required"`
	CustomLabel string `form:"custom_id" json:"custom_id" binding:"required" msg:"error.custom_id_required"`
	// 可选：显式指定下载文件名，留空则通过探测请求推断
	Filename string `form:"filename" json:"filename"`
}

// GenerateLinkResult 注册成功后返回给调用方的数据
type GenerateLinkResult struct {
	Slug     string `json:"slug"`
	Filename string `json:"filename"`
}

// Validate 自定义验证逻辑
func (r *GenerateLinkRequest) Validate() error {
	if err := utils.ValidateUpstreamURL(r.UpstreamURL); err != nil {
		return gin.Error{
			Err:  err,
			Type: gin.ErrorTypeBind,
		}
	}
	return nil
}
