package utils

import "strings"

// DefaultExtension 未识别内容类型时的兜底扩展名
const DefaultExtension = ".mp4"

// 上游内容类型到下载文件扩展名的固定映射
var contentTypeExtensions = map[string]string{
	"video/mp4":                ".mp4",
	"video/x-matroska":         ".mkv",
	"video/webm":               ".webm",
	"video/quicktime":          ".mov",
	"application/octet-stream": ".bin",
}

// ExtensionForContentType 由上游报告的 MIME 类型推断文件扩展名。
// 类型可携带 ";" 参数后缀；未列出或缺失的类型一律回退到 .mp4。
func ExtensionForContentType(contentType string) string {
	if idx := strings.Index(contentType, ";"); idx >= 0 {
		contentType = contentType[:idx]
	}
	contentType = strings.TrimSpace(contentType)

	if ext, ok := contentTypeExtensions[contentType]; ok {
		return ext
	}
	return DefaultExtension
}

// SanitizeASCIIFilename 生成 Content-Disposition 的 ASCII 兜底文件名，
// 非可见 ASCII 及引号、反斜杠替换为下划线。
func SanitizeASCIIFilename(filename string) string {
	var b strings.Builder
	for _, r := range filename {
		if r < 0x20 || r > 0x7e || r == '"' || r == '\\' {
			b.WriteByte('_')
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
