// Package cache кэш советов по меткам в Redis
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/plastinin/aceinterview/internal/config"
	"github.com/plastinin/aceinterview/internal/domain"
	"github.com/redis/go-redis/v9"
)

const tipsKeyPrefix = "aceinterview:tips:"

// NewRedisClient создаёт клиент Redis и проверяет соединение
func NewRedisClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	return client, nil
}

// TipsCache реализация кэша советов на базе Redis
type TipsCache struct {
	client redis.UniversalClient
}

// NewTipsCache создаёт новый экземпляр TipsCache
func NewTipsCache(client redis.UniversalClient) *TipsCache {
	return &TipsCache{client: client}
}

func tipsKey(label string) string {
	return tipsKeyPrefix + label
}

// Get возвращает советы по метке, ok=false если их нет в кэше
func (c *TipsCache) Get(ctx context.Context, label string) (domain.LabelTips, bool, error) {
	data, err := c.client.Get(ctx, tipsKey(label)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domain.LabelTips{}, false, nil
		}
		return domain.LabelTips{}, false, fmt.Errorf("failed to get tips: %w", err)
	}

	var tips domain.LabelTips
	if err := json.Unmarshal(data, &tips); err != nil {
		return domain.LabelTips{}, false, fmt.Errorf("failed to decode cached tips: %w", err)
	}
	return tips, true, nil
}

// Set сохраняет советы на ttl
func (c *TipsCache) Set(ctx context.Context, tips domain.LabelTips, ttl time.Duration) error {
	data, err := json.Marshal(tips)
	if err != nil {
		return fmt.Errorf("failed to encode tips: %w", err)
	}

	if err := c.client.Set(ctx, tipsKey(tips.Label), data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to set tips: %w", err)
	}
	return nil
}
