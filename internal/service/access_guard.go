package service

import (
	"medialink-go/internal/apperrors"
	"medialink-go/internal/model"
	"medialink-go/pkg/logging"
)

// AccessGuard 负责链接级与管理级的密钥校验。
// 管理凭证在启动时注入一次；未配置时所有管理校验一律拒绝（fail closed）。
type AccessGuard struct {
	adminKey string
}

func NewAccessGuard(adminKey string) *AccessGuard {
	if adminKey == "" {
		logging.Logger.Error("Admin credential is not configured, all administrative checks will be rejected")
	}
	return &AccessGuard{adminKey: adminKey}
}

// CheckLinkKey 校验链接级密钥
func (g *AccessGuard) CheckLinkKey(link *model.Link, supplied string) error {
	if supplied != link.SecretKey {
		return apperrors.ForbiddenError("error.key_mismatch")
	}
	return nil
}

// CheckAdminKey 校验管理凭证
func (g *AccessGuard) CheckAdminKey(supplied string) error {
	if g.adminKey == "" {
		// 配置缺失属于部署故障，不能静默放行
		logging.Logger.Error("Administrative check rejected: admin credential missing")
		return apperrors.UnauthorizedError("error.admin_key_unset")
	}
	if supplied != g.adminKey {
		return apperrors.ForbiddenError("error.admin_key_mismatch")
	}
	return nil
}
