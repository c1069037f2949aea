package utils

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

var (
	invalidRunPattern = regexp.MustCompile(`[^a-z0-9\s-]+`)
	whitespacePattern = regexp.MustCompile(`\s+`)
	hyphenRunPattern  = regexp.MustCompile(`-{2,}`)
)

// NormalizeSlug 将任意用户输入的标签归一化为 URL 安全的 slug。
// 同一输入的归一化结果是确定的；无法归一化时返回空串，由调用方判定为参数错误。
func NormalizeSlug(raw string) string {
	slug := strings.ToLower(raw)
	// 非法字符的连续片段替换为单个连字符
	slug = invalidRunPattern.ReplaceAllString(slug, "-")
	// 空白片段折叠为单个连字符
	slug = whitespacePattern.ReplaceAllString(slug, "-")
	// 连续连字符折叠
	slug = hyphenRunPattern.ReplaceAllString(slug, "-")
	return strings.Trim(slug, "-")
}

// ValidateUpstreamURL 校验上游 URL 的合法性
func ValidateUpstreamURL(upstreamURL string) error {
	// 1. 检查上游 URL 是否为空
	if upstreamURL == "" {
		return fmt.Errorf("error.url_required")
	}

	// 2. URL 格式校验
	if _, err := url.ParseRequestURI(upstreamURL); err != nil {
		return fmt.Errorf("error.url_invalid")
	}

	// 3. URL 长度限制
	if len(upstreamURL) > 2048 {
		return fmt.Errorf("error.url_max_length")
	}
	return nil
}
