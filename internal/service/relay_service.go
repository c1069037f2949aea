package service

import (
	"fmt"
	"io"
	"medialink-go/internal/apperrors"
	"medialink-go/internal/model"
	"medialink-go/internal/repository"
	"medialink-go/pkg/logging"
	"medialink-go/pkg/utils"
	"net/http"
	"net/url"
	"strconv"

	"github.com/gomodule/redigo/redis"
	"go.uber.org/zap"
)

// RelayService 将 slug 解析为上游 URL 并把上游响应中继给调用方。
// 下载模式强制附件下载，串流模式透传 Range 语义；两者都是有界内存的流式转发。
type RelayService struct {
	store repository.LinkStore
	guard *AccessGuard
	// 不设整体超时：媒体可以任意大，取消由请求上下文传播
	client *http.Client
	// 为空时不记录访问统计
	statsPool *redis.Pool
}

func NewRelayService(store repository.LinkStore, guard *AccessGuard, statsPool *redis.Pool) *RelayService {
	return &RelayService{
		store:     store,
		guard:     guard,
		client:    &http.Client{},
		statsPool: statsPool,
	}
}

// resolve 解析 slug 并校验链接密钥，先判存在性再判凭证
func (s *RelayService) resolve(slug, key string) (*model.Link, error) {
	link, found, err := s.store.Get(slug)
	if err != nil {
		logging.Logger.Error("Failed to resolve slug",
			zap.String("slug", slug),
			zap.Error(err))
		return nil, apperrors.SystemErrorDefault()
	}
	if !found {
		return nil, apperrors.NotFoundError("error.slug_not_found")
	}
	if err := s.guard.CheckLinkKey(link, key); err != nil {
		return nil, err
	}
	return link, nil
}

// Download 下载模式中继：全量 GET 上游并以附件形式转发
func (s *RelayService) Download(w http.ResponseWriter, r *http.Request, slug, key string) error {
	link, err := s.resolve(slug, key)
	if err != nil {
		return err
	}

	resp, err := s.fetchUpstream(r, link, false)
	if err != nil {
		return err
	}
	defer s.closeBody(resp, link.Slug)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return apperrors.UpstreamError(resp.StatusCode, "error.upstream_fetch_failed")
	}

	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Disposition", attachmentDisposition(link.Filename))
	if resp.ContentLength >= 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(resp.ContentLength, 10))
	}
	w.WriteHeader(http.StatusOK)

	s.copyBody(w, resp.Body, link.Slug)
	s.recordStats(link.Slug, false)
	return nil
}

// Stream 串流模式中继：透传 Range 请求头，响应按内联可拖动媒体处理
func (s *RelayService) Stream(w http.ResponseWriter, r *http.Request, slug, key string) error {
	link, err := s.resolve(slug, key)
	if err != nil {
		return err
	}

	resp, err := s.fetchUpstream(r, link, true)
	if err != nil {
		return err
	}
	defer s.closeBody(resp, link.Slug)

	if resp.StatusCode >= 400 {
		return apperrors.UpstreamError(resp.StatusCode, "error.upstream_fetch_failed")
	}

	// 上游响应头原样透传，再覆盖串流相关头
	for name, values := range resp.Header {
		for _, value := range values {
			w.Header().Add(name, value)
		}
	}
	w.Header().Del("Content-Disposition")
	w.Header().Set("Accept-Ranges", "bytes")
	w.WriteHeader(resp.StatusCode)

	s.copyBody(w, resp.Body, link.Slug)
	s.recordStats(link.Slug, true)
	return nil
}

// fetchUpstream 按请求上下文发起上游 GET，客户端断开时上游请求随之取消
func (s *RelayService) fetchUpstream(r *http.Request, link *model.Link, forwardRange bool) (*http.Response, error) {
	req, err := http.NewRequestWithContext(r.Context(), http.MethodGet, link.UpstreamURL, nil)
	if err != nil {
		logging.Logger.Error("Upstream request build failed",
			zap.String("slug", link.Slug),
			zap.String("url", link.UpstreamURL),
			zap.Error(err))
		return nil, apperrors.SystemErrorDefault()
	}

	if forwardRange {
		if rangeHeader := r.Header.Get("Range"); rangeHeader != "" {
			req.Header.Set("Range", rangeHeader)
		}
	}

	resp, err := s.client.Do(req)
	if err != nil {
		logging.Logger.Warn("Upstream fetch failed",
			zap.String("slug", link.Slug),
			zap.String("url", link.UpstreamURL),
			zap.Error(err))
		return nil, apperrors.UpstreamError(http.StatusBadGateway, "error.upstream_fetch_failed")
	}
	return resp, nil
}

// copyBody 流式转发响应体，不做整体缓冲
func (s *RelayService) copyBody(w http.ResponseWriter, body io.Reader, slug string) {
	if _, err := io.Copy(w, body); err != nil {
		// 多为客户端中途断开，上游请求已由上下文取消
		logging.Logger.Warn("Relay interrupted",
			zap.String("slug", slug),
			zap.Error(err))
	}
}

func (s *RelayService) closeBody(resp *http.Response, slug string) {
	if err := resp.Body.Close(); err != nil {
		logging.Logger.Warn("Failed to close upstream response body",
			zap.String("slug", slug),
			zap.Error(err))
	}
}

func (s *RelayService) recordStats(slug string, stream bool) {
	if s.statsPool == nil {
		return
	}

	conn := s.statsPool.Get()
	defer func() {
		if err := conn.Close(); err != nil {
			logging.Logger.Error("Failed to close Redis connection",
				zap.Error(err),
				zap.String("operation", "close"),
				zap.String("connection_type", "redis"),
			)
		}
	}()

	if stream {
		RecordDailyStream(conn, slug)
		RecordTotalStream(conn, slug)
	} else {
		RecordDailyDownload(conn, slug)
		RecordTotalDownload(conn, slug)
	}
}

// attachmentDisposition 构造附件下载头：ASCII 兜底文件名加 UTF-8 百分号编码参数
func attachmentDisposition(filename string) string {
	return fmt.Sprintf(`attachment; filename="%s"; filename*=UTF-8''%s`,
		utils.SanitizeASCIIFilename(filename),
		url.PathEscape(filename))
}
