package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/bajajharsha/Textile-Order-and-Beam-Allocation-System-sub001/internal/shared/textileapi"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const masterCacheKey = "textile:master:dropdown"

// MasterService 主数据下拉选项（颜色、品质、裁剪），Redis缓存
type MasterService struct {
	client *textileapi.Client
	rdb    *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewMasterService rdb 为nil时每次直接请求后端
func NewMasterService(client *textileapi.Client, rdb *redis.Client, ttl time.Duration, logger *zap.Logger) *MasterService {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &MasterService{client: client, rdb: rdb, ttl: ttl, logger: logger}
}

// Dropdown 获取下拉数据
func (s *MasterService) Dropdown(ctx context.Context) (*textileapi.DropdownData, error) {
	if s.rdb != nil {
		cached, err := s.rdb.Get(ctx, masterCacheKey).Result()
		if err == nil && cached != "" {
			var data textileapi.DropdownData
			if json.Unmarshal([]byte(cached), &data) == nil {
				return &data, nil
			}
		} else if err != nil && err != redis.Nil {
			s.logger.Warn("Read master cache failed", zap.Error(err))
		}
	}

	data, err := s.client.DropdownData(ctx)
	if err != nil {
		return nil, err
	}

	if s.rdb != nil {
		if b, err := json.Marshal(data); err == nil {
			if err := s.rdb.Set(ctx, masterCacheKey, b, s.ttl).Err(); err != nil {
				s.logger.Warn("Write master cache failed", zap.Error(err))
			}
		}
	}
	return data, nil
}

// Invalidate 清除缓存
func (s *MasterService) Invalidate(ctx context.Context) {
	if s.rdb == nil {
		return
	}
	if err := s.rdb.Del(ctx, masterCacheKey).Err(); err != nil {
		s.logger.Warn("Invalidate master cache failed", zap.Error(err))
	}
}
