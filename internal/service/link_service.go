package service

import (
	"context"
	"medialink-go/internal/apperrors"
	"medialink-go/internal/dto"
	"medialink-go/internal/model"
	"medialink-go/internal/repository"
	"medialink-go/pkg/logging"
	"medialink-go/pkg/utils"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// 探测请求只取响应头，超时可以收得很紧
const probeTimeout = 10 * time.Second

// LinkService 负责短链的注册、删除与列表
type LinkService struct {
	store       repository.LinkStore
	probeClient *http.Client
}

func NewLinkService(store repository.LinkStore) *LinkService {
	return &LinkService{
		store:       store,
		probeClient: &http.Client{Timeout: probeTimeout},
	}
}

// Register 注册一条受保护短链并返回最终记录
func (s *LinkService) Register(ctx context.Context, req dto.GenerateLinkRequest) (*model.Link, error) {
	// Gin 标准验证
	if err := req.Validate(); err != nil {
		return nil, apperrors.InvalidRequestError(err.Error())
	}
	if req.SecretKey == "" {
		return nil, apperrors.InvalidRequestError("error.key_required")
	}

	slug := utils.NormalizeSlug(req.CustomLabel)
	if slug == "" {
		return nil, apperrors.InvalidRequestError("error.custom_id_invalid")
	}

	filename := strings.TrimSpace(req.Filename)
	if filename == "" {
		// 未显式指定文件名时，通过探测请求推断扩展名；探测失败不阻断注册
		filename = slug + s.probeExtension(ctx, req.UpstreamURL)
	}

	link := &model.Link{
		Slug:        slug,
		UpstreamURL: req.UpstreamURL,
		SecretKey:   req.SecretKey,
		Filename:    filename,
	}

	created, err := s.store.Create(link)
	if err != nil {
		logging.Logger.Error("Failed to persist link record",
			zap.String("slug", slug),
			zap.Error(err))
		return nil, apperrors.SystemErrorDefault()
	}
	if !created {
		logging.Logger.Info("Slug already taken", zap.String("slug", slug))
		return nil, apperrors.ConflictError("error.slug_taken")
	}

	return link, nil
}

// probeExtension 向上游发起 HEAD 探测并推断扩展名，任何失败都回退到默认扩展名
func (s *LinkService) probeExtension(ctx context.Context, upstreamURL string) string {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, upstreamURL, nil)
	if err != nil {
		logging.Logger.Warn("Filename probe request build failed",
			zap.String("url", upstreamURL),
			zap.Error(err))
		return utils.DefaultExtension
	}

	resp, err := s.probeClient.Do(req)
	if err != nil {
		logging.Logger.Warn("Filename probe failed, falling back to default extension",
			zap.String("url", upstreamURL),
			zap.Error(err))
		return utils.DefaultExtension
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			logging.Logger.Warn("Failed to close probe response body", zap.Error(err))
		}
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		logging.Logger.Warn("Filename probe returned non-success status",
			zap.String("url", upstreamURL),
			zap.Int("status", resp.StatusCode))
		return utils.DefaultExtension
	}

	return utils.ExtensionForContentType(resp.Header.Get("Content-Type"))
}

// Delete 按 slug 删除记录，slug 不存在时同样成功（幂等）
func (s *LinkService) Delete(slug string) error {
	if err := s.store.Delete(slug); err != nil {
		logging.Logger.Error("Failed to delete link record",
			zap.String("slug", slug),
			zap.Error(err))
		return apperrors.SystemErrorDefault()
	}
	return nil
}

// List 列出全部短链记录（管理端展示用）
func (s *LinkService) List() ([]model.Link, error) {
	links, err := s.store.ListAll()
	if err != nil {
		logging.Logger.Error("Failed to list link records", zap.Error(err))
		return nil, apperrors.SystemErrorDefault()
	}
	return links, nil
}
