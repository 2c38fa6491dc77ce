package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	json "github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"
)

var (
	ErrCacheMiss     = errors.New("cache miss")
	ErrCacheDisabled = errors.New("cache disabled")
)

// localMaxTTL 本地缓存最长保留时间，避免内存过度使用
const localMaxTTL = 10 * time.Minute

// CacheManager 缓存管理器：本地缓存 + 可选 Redis
type CacheManager struct {
	redis   *redis.Client
	local   *LocalCache
	enabled atomic.Bool
	stop    chan struct{}
	once    sync.Once
}

// LocalCache 本地缓存
type LocalCache struct {
	data map[string]*CacheItem
	mu   sync.RWMutex
}

// CacheItem 缓存项
type CacheItem struct {
	Value     []byte
	ExpiresAt time.Time
}

// NewCacheManager 创建缓存管理器，redisClient 可为 nil
func NewCacheManager(redisClient *redis.Client) *CacheManager {
	cm := &CacheManager{
		redis: redisClient,
		local: &LocalCache{
			data: make(map[string]*CacheItem),
		},
		stop: make(chan struct{}),
	}
	cm.enabled.Store(true)

	// 启动本地缓存清理协程
	go cm.cleanupLocalCache(5 * time.Minute)

	return cm
}

// Get 获取缓存值，优先本地缓存，然后Redis
func (cm *CacheManager) Get(ctx context.Context, key string, dest interface{}) error {
	if !cm.enabled.Load() {
		return ErrCacheDisabled
	}

	if value, found := cm.getFromLocal(key); found {
		return json.Unmarshal(value, dest)
	}

	if cm.redis != nil {
		data, err := cm.redis.Get(ctx, key).Bytes()
		if err == nil {
			// 回填本地缓存（较短TTL）
			cm.setToLocal(key, data, time.Minute)
			return json.Unmarshal(data, dest)
		}
		if !errors.Is(err, redis.Nil) {
			return err
		}
	}

	return ErrCacheMiss
}

// Set 设置缓存值，同时存储到本地和Redis
func (cm *CacheManager) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if !cm.enabled.Load() || ttl <= 0 {
		return nil
	}

	data, err := json.Marshal(value)
	if err != nil {
		return err
	}

	localTTL := ttl
	if localTTL > localMaxTTL {
		localTTL = localMaxTTL
	}
	cm.setToLocal(key, data, localTTL)

	if cm.redis != nil {
		return cm.redis.Set(ctx, key, data, ttl).Err()
	}

	return nil
}

func (cm *CacheManager) getFromLocal(key string) ([]byte, bool) {
	cm.local.mu.RLock()
	defer cm.local.mu.RUnlock()

	item, exists := cm.local.data[key]
	if !exists || time.Now().After(item.ExpiresAt) {
		return nil, false
	}
	return item.Value, true
}

func (cm *CacheManager) setToLocal(key string, value []byte, ttl time.Duration) {
	cm.local.mu.Lock()
	defer cm.local.mu.Unlock()

	cm.local.data[key] = &CacheItem{
		Value:     value,
		ExpiresAt: time.Now().Add(ttl),
	}
}

// cleanupLocalCache 清理过期的本地缓存
func (cm *CacheManager) cleanupLocalCache(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			cm.purgeExpired(time.Now())
		case <-cm.stop:
			return
		}
	}
}

func (cm *CacheManager) purgeExpired(now time.Time) {
	cm.local.mu.Lock()
	defer cm.local.mu.Unlock()

	for key, item := range cm.local.data {
		if now.After(item.ExpiresAt) {
			delete(cm.local.data, key)
		}
	}
}

// GetStats 获取缓存统计信息
func (cm *CacheManager) GetStats() map[string]interface{} {
	cm.local.mu.RLock()
	localItemCount := len(cm.local.data)
	cm.local.mu.RUnlock()

	return map[string]interface{}{
		"enabled":         cm.enabled.Load(),
		"local_items":     localItemCount,
		"redis_connected": cm.redis != nil,
	}
}

// SetEnabled 启用或禁用缓存，禁用时 Get 返回 ErrCacheDisabled
func (cm *CacheManager) SetEnabled(enabled bool) {
	cm.enabled.Store(enabled)
}

// Close 停止清理协程
func (cm *CacheManager) Close() {
	cm.once.Do(func() { close(cm.stop) })
}

// 全局缓存管理器实例
var GlobalCache *CacheManager

// InitCache 初始化全局缓存
func InitCache(redisClient *redis.Client) {
	GlobalCache = NewCacheManager(redisClient)
}
