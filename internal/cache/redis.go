// Package cache хранит историю live-точек и счетчики сервиса в Redis
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

const (
	// LiveKeyPrefix префикс списков live-точек по типу
	LiveKeyPrefix = "live:"
	// CounterKeyPrefix префикс счетчиков
	CounterKeyPrefix = "counter:"
	// DefaultHistorySize сколько последних точек хранить на тип
	DefaultHistorySize = 500
	// HistoryTTL время жизни списка, если live-эндпоинт перестали опрашивать
	HistoryTTL = 1 * time.Hour
)

// Ключи счетчиков
const (
	CounterLiveSamples       = CounterKeyPrefix + "live:total"
	CounterAssistantFallback = CounterKeyPrefix + "assistant:fallback"
)

// RedisCache реализует кэширование в Redis
type RedisCache struct {
	client      *redis.Client
	historySize int64
}

// NewRedisCache создает новое подключение к Redis
func NewRedisCache(ctx context.Context, addr, password string, db, historySize int) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		PoolSize:     50,
		MinIdleConns: 5,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	if historySize <= 0 {
		historySize = DefaultHistorySize
	}
	return &RedisCache{client: client, historySize: int64(historySize)}, nil
}

// PushLiveSample сохраняет live-точку в начало списка своего типа
func (r *RedisCache) PushLiveSample(ctx context.Context, kind string, sample any) error {
	data, err := json.Marshal(sample)
	if err != nil {
		return fmt.Errorf("failed to marshal live sample: %w", err)
	}

	key := LiveKeyPrefix + kind
	pipe := r.client.Pipeline()
	pipe.LPush(ctx, key, data)
	pipe.LTrim(ctx, key, 0, r.historySize-1)
	pipe.Expire(ctx, key, HistoryTTL)
	pipe.Incr(ctx, CounterLiveSamples)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to cache live sample: %w", err)
	}
	return nil
}

// LatestLiveSamples возвращает последние count точек типа, новые первыми
func (r *RedisCache) LatestLiveSamples(ctx context.Context, kind string, count int64) ([]json.RawMessage, error) {
	data, err := r.client.LRange(ctx, LiveKeyPrefix+kind, 0, count-1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get live samples: %w", err)
	}

	samples := make([]json.RawMessage, 0, len(data))
	for _, d := range data {
		if !json.Valid([]byte(d)) {
			continue
		}
		samples = append(samples, json.RawMessage(d))
	}
	return samples, nil
}

// IncrementCounter увеличивает счетчик
func (r *RedisCache) IncrementCounter(ctx context.Context, key string) (int64, error) {
	return r.client.Incr(ctx, key).Result()
}

// GetCounter возвращает значение счетчика
func (r *RedisCache) GetCounter(ctx context.Context, key string) (int64, error) {
	val, err := r.client.Get(ctx, key).Int64()
	if err == redis.Nil {
		return 0, nil
	}
	return val, err
}

// Ping проверяет соединение с Redis
func (r *RedisCache) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Close закрывает соединение
func (r *RedisCache) Close() error {
	return r.client.Close()
}
