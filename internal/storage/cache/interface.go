package cache

import (
	"context"
	"time"
)

// Store 缓存存储接口
type Store interface {
	// Set 设置缓存
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	// Get 获取缓存
	Get(ctx context.Context, key string, dest interface{}) error
	// Delete 删除缓存
	Delete(ctx context.Context, key string) error
	// Incr 原子自增计数键，返回自增后的值
	Incr(ctx context.Context, key string) (int64, error)
	// Expire 设置键的过期时间，对值键与计数键都生效
	Expire(ctx context.Context, key string, expiration time.Duration) error
	// Exists 检查缓存是否存在
	Exists(ctx context.Context, key string) (bool, error)
	// Close 关闭缓存连接
	Close() error
}
