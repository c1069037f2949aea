package service

import (
	"medialink-go/constant"
	"medialink-go/internal/model"
	"medialink-go/internal/repository"
	"medialink-go/pkg/logging"
	"time"

	"github.com/gomodule/redigo/redis"
	"go.uber.org/zap"
)

// RecordDailyDownload 记录每日下载数
func RecordDailyDownload(conn redis.Conn, slug string) {
	dailyKey := constant.GetDailyDownloadsKey(constant.GetDateKey())

	_, err := conn.Do("HINCRBY", dailyKey, slug, 1)
	if err != nil {
		logging.Logger.Error("Failed to record daily downloads",
			zap.String("key", dailyKey),
			zap.String("slug", slug),
			zap.Error(err))
	}

	_, err = conn.Do("EXPIRE", dailyKey, 3*24*3600) // 3天过期
	if err != nil {
		logging.Logger.Error("Failed to record daily downloads Expire",
			zap.String("key", dailyKey),
			zap.String("slug", slug),
			zap.Error(err))
	}
}

// RecordDailyStream 记录每日串流数
func RecordDailyStream(conn redis.Conn, slug string) {
	dailyKey := constant.GetDailyStreamsKey(constant.GetDateKey())

	_, err := conn.Do("HINCRBY", dailyKey, slug, 1)
	if err != nil {
		logging.Logger.Error("Failed to record daily streams",
			zap.String("key", dailyKey),
			zap.String("slug", slug),
			zap.Error(err))
	}

	_, err = conn.Do("EXPIRE", dailyKey, 3*24*3600) // 3天过期
	if err != nil {
		logging.Logger.Error("Failed to record daily streams Expire",
			zap.String("key", dailyKey),
			zap.String("slug", slug),
			zap.Error(err))
	}
}

// RecordTotalDownload 记录总下载数
func RecordTotalDownload(conn redis.Conn, slug string) {
	totalKey := constant.GetTotalDownloadsKey(slug)
	_, err := conn.Do("INCR", totalKey)
	if err != nil {
		logging.Logger.Error("Failed to record total downloads",
			zap.String("key", totalKey),
			zap.String("slug", slug),
			zap.Error(err))
	}
}

// RecordTotalStream 记录总串流数
func RecordTotalStream(conn redis.Conn, slug string) {
	totalKey := constant.GetTotalStreamsKey(slug)
	_, err := conn.Do("INCR", totalKey)
	if err != nil {
		logging.Logger.Error("Failed to record total streams",
			zap.String("key", totalKey),
			zap.String("slug", slug),
			zap.Error(err))
	}
}

// GetDailyDownloads 获取某日期某 slug 的下载数
func GetDailyDownloads(conn redis.Conn, slug string, date string) (int64, error) {
	dailyKey := constant.GetDailyDownloadsKey(date)

	reply, err := conn.Do("HGET", dailyKey, slug)
	if err != nil {
		logging.Logger.Error("Failed to get daily downloads",
			zap.String("key", dailyKey),
			zap.String("slug", slug),
			zap.Error(err))
		return 0, err
	}

	result, err := redis.Int64(reply, err)
	if err != nil {
		return 0, err
	}
	return result, nil
}

// GetDailyStreams 获取某日期某 slug 的串流数
func GetDailyStreams(conn redis.Conn, slug string, date string) (int64, error) {
	dailyKey := constant.GetDailyStreamsKey(date)

	reply, err := conn.Do("HGET", dailyKey, slug)
	if err != nil {
		logging.Logger.Error("Failed to get daily streams",
			zap.String("key", dailyKey),
			zap.String("slug", slug),
			zap.Error(err))
		return 0, err
	}

	result, err := redis.Int64(reply, err)
	if err != nil {
		return 0, err
	}
	return result, nil
}

// StatisticalData 将当日的 Redis 访问计数沉淀到 MySQL（由定时任务调用）
func StatisticalData(store repository.LinkStore) error {
	logging.Logger.Info("StatisticalData start")

	links, err := store.ListAll()
	if err != nil {
		logging.Logger.Error("Failed to list links for statistics", zap.Error(err))
		return err
	}

	today := time.Now().Format("2006-01-02")
	dateKey := constant.GetDateKey()
	for _, link := range links {
		doStatisticalData(link, today, dateKey)
	}

	logging.Logger.Info("StatisticalData end")
	return nil
}

func doStatisticalData(link model.Link, today string, dateKey string) {
	conn := repository.RedisPool.Get()
	defer func() {
		if err := conn.Close(); err != nil {
			logging.Logger.Error("Failed to close Redis connection",
				zap.Error(err),
				zap.String("operation", "close"),
				zap.String("connection_type", "redis"),
			)
		}
	}()

	downloads, _ := GetDailyDownloads(conn, link.Slug, dateKey)
	streams, _ := GetDailyStreams(conn, link.Slug, dateKey)
	if downloads == 0 && streams == 0 {
		return
	}

	dailyStat := &model.DailyStat{
		Slug:      link.Slug,
		Date:      today,
		Downloads: downloads,
		Streams:   streams,
	}

	db := repository.DB.Where("slug = ? AND date = ?", link.Slug, today).
		Assign("downloads", downloads, "streams", streams).
		FirstOrCreate(dailyStat)

	if db.Error != nil {
		logging.Logger.Error("Failed to insert or update daily stat",
			zap.String("slug", link.Slug),
			zap.String("date", today),
			zap.Int64("downloads", downloads),
			zap.Int64("streams", streams),
			zap.Error(db.Error),
		)
	}
}
