package constant

import (
	"fmt"
	"time"
)

// 常量定义
const (
	BasePrefix = "link:"
	Separator  = ":"
)

// Redis 键模板
const (
	LinkRecord     = BasePrefix + "slug:%s"
	LinkScanMatch  = BasePrefix + "slug:*"
	DailyDownloads = BasePrefix + "dl" + Separator + "%s"     // link:dl:yyyyMMdd
	DailyStreams   = BasePrefix + "stream" + Separator + "%s" // link:stream:yyyyMMdd
	TotalDownloads = BasePrefix + "total_dl" + Separator + "%s"
	TotalStreams   = BasePrefix + "total_stream" + Separator + "%s"
)

// GetLinkKey 生成 Link Record 的存储键
func GetLinkKey(slug string) string {
	return fmt.Sprintf(LinkRecord, slug)
}

// GetDateKey 生成当前日期的键（格式：yyyyMMdd）
func GetDateKey() string {
	return time.Now().Format("20060102")
}

// GetDailyDownloadsKey 生成每日下载数键（格式：link:dl:yyyyMMdd）
func GetDailyDownloadsKey(date string) string {
	return fmt.Sprintf(DailyDownloads, date)
}

// GetDailyStreamsKey 生成每日串流数键（格式：link:stream:yyyyMMdd）
func GetDailyStreamsKey(date string) string {
	return fmt.Sprintf(DailyStreams, date)
}

// GetTotalDownloadsKey 生成总下载数键（格式：link:total_dl:slug）
func GetTotalDownloadsKey(slug string) string {
	return fmt.Sprintf(TotalDownloads, slug)
}

// GetTotalStreamsKey 生成总串流数键（格式：link:total_stream:slug）
func GetTotalStreamsKey(slug string) string {
	return fmt.Sprintf(TotalStreams, slug)
}
