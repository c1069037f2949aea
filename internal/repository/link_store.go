package repository

import (
	"encoding/json"
	"medialink-go/constant"
	"medialink-go/internal/model"
	"medialink-go/pkg/logging"

	"github.com/gomodule/redigo/redis"
	"go.uber.org/zap"
)

// LinkStore 是核心与持久映射存储之间的契约
type LinkStore interface {
	// Get 按 slug 查询记录，不存在时返回 (nil, false, nil)
	Get(slug string) (*model.Link, bool, error)
	// Create 原子的 create-if-absent 写入；slug 已被占用时返回 false
	Create(link *model.Link) (bool, error)
	// Delete 按 slug 删除，删除不存在的 slug 不算错误（幂等）
	Delete(slug string) error
	// ListAll 列出全部记录，顺序为存储的原生键序，仅用于展示
	ListAll() ([]model.Link, error)
}

// redisLinkStore 基于 Redis 的 LinkStore 实现，每条记录一个 JSON 值
type redisLinkStore struct {
	pool *redis.Pool
}

func NewRedisLinkStore(pool *redis.Pool) LinkStore {
	return &redisLinkStore{pool: pool}
}

func (s *redisLinkStore) Get(slug string) (*model.Link, bool, error) {
	conn := s.pool.Get()
	defer closeConn(conn)

	data, err := redis.Bytes(conn.Do("GET", constant.GetLinkKey(slug)))
	if err == redis.ErrNil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var link model.Link
	if err := json.Unmarshal(data, &link); err != nil {
		logging.Logger.Error("Failed to unmarshal link record",
			zap.String("slug", slug),
			zap.Error(err))
		return nil, false, err
	}
	return &link, true, nil
}

func (s *redisLinkStore) Create(link *model.Link) (bool, error) {
	conn := s.pool.Get()
	defer closeConn(conn)

	data, err := json.Marshal(link)
	if err != nil {
		return false, err
	}

	// SET NX 保证并发注册下同一 slug 只有一个成功
	reply, err := redis.String(conn.Do("SET", constant.GetLinkKey(link.Slug), data, "NX"))
	if err == redis.ErrNil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return reply == "OK", nil
}

func (s *redisLinkStore) Delete(slug string) error {
	conn := s.pool.Get()
	defer closeConn(conn)

	_, err := conn.Do("DEL", constant.GetLinkKey(slug))
	return err
}

func (s *redisLinkStore) ListAll() ([]model.Link, error) {
	conn := s.pool.Get()
	defer closeConn(conn)

	links := make([]model.Link, 0)
	cursor := 0
	for {
		values, err := redis.Values(conn.Do("SCAN", cursor, "MATCH", constant.LinkScanMatch, "COUNT", 100))
		if err != nil {
			return nil, err
		}

		cursor, err = redis.Int(values[0], nil)
		if err != nil {
			return nil, err
		}
		keys, err := redis.Strings(values[1], nil)
		if err != nil {
			return nil, err
		}

		for _, key := range keys {
			data, err := redis.Bytes(conn.Do("GET", key))
			if err == redis.ErrNil {
				// SCAN 与 GET 之间记录被删除，跳过
				continue
			}
			if err != nil {
				return nil, err
			}

			var link model.Link
			if err := json.Unmarshal(data, &link); err != nil {
				logging.Logger.Warn("Skipping malformed link record",
					zap.String("key", key),
					zap.Error(err))
				continue
			}
			links = append(links, link)
		}

		if cursor == 0 {
			break
		}
	}
	return links, nil
}

func closeConn(conn redis.Conn) {
	if err := conn.Close(); err != nil {
		logging.Logger.Error("Failed to close Redis connection",
			zap.Error(err),
			zap.String("operation", "close"),
			zap.String("connection_type", "redis"),
		)
	}
}
