// Copyright 2026 fanjia1024
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package app

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"chat-platform/internal/commerce"
	"chat-platform/internal/conversation"
	"chat-platform/internal/memory"
	"chat-platform/internal/storage/cache"
	"chat-platform/internal/storage/vector"
	"chat-platform/pkg/config"
	"chat-platform/pkg/log"
	"chat-platform/pkg/utils"
)

// defaultHistoryTTL 会话历史默认保留时长
const defaultHistoryTTL = 7 * 24 * time.Hour

// Bootstrap 统一初始化：存储、缓存、会话历史，供 api 进程复用，
// 避免在 cmd 内写装配逻辑
type Bootstrap struct {
	Config      *config.Config
	Logger      *log.Logger
	Commerce    commerce.Store
	FactStore   memory.Store
	VectorStore vector.Store
	CacheStore  cache.Store
	History     conversation.History

	pool *pgxpool.Pool
}

// NewBootstrap 根据配置创建 Bootstrap。
// 配置了 Postgres DSN 时商城与事实存储共享同一连接池，否则落内存实现；
// Redis 同理承载缓存与会话历史。
func NewBootstrap(ctx context.Context, cfg *config.Config) (*Bootstrap, error) {
	logCfg := &log.Config{}
	if cfg != nil {
		logCfg.Level = cfg.Log.Level
		logCfg.Format = cfg.Log.Format
		logCfg.File = cfg.Log.File
	}
	logger, err := log.NewLogger(logCfg)
	if err != nil {
		return nil, fmt.Errorf("初始化日志failed: %w", err)
	}
	if cfg == nil {
		cfg = &config.Config{}
	}

	b := &Bootstrap{Config: cfg, Logger: logger}

	if dsn := cfg.Storage.Postgres.DSN; dsn != "" {
		poolCfg, err := pgxpool.ParseConfig(dsn)
		if err != nil {
			return nil, fmt.Errorf("解析 Postgres DSN failed: %w", err)
		}
		if cfg.Storage.Postgres.PoolSize > 0 {
			poolCfg.MaxConns = int32(cfg.Storage.Postgres.PoolSize)
		}
		pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
		if err != nil {
			return nil, fmt.Errorf("初始化 Postgres 连接池failed: %w", err)
		}
		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			return nil, fmt.Errorf("连接 Postgres failed: %w", err)
		}
		b.pool = pool
		b.Commerce = commerce.NewStorePgWithPool(pool)
		b.FactStore = memory.NewStorePgWithPool(pool)
		logger.Info("商城与客户事实存储使用 PostgreSQL 后端")
	} else {
		b.Commerce = commerce.NewMemoryStore()
		b.FactStore = memory.NewStoreMem()
		logger.Info("未配置 Postgres DSN，商城与客户事实存储使用内存后端")
	}

	b.VectorStore, err = vector.NewStore(cfg.Storage.Vector)
	if err != nil {
		b.Close()
		return nil, fmt.Errorf("初始化向量存储failed: %w", err)
	}

	b.CacheStore, err = cache.NewCache(ctx, cfg.Cache, cfg.Storage.Redis)
	if err != nil {
		b.Close()
		return nil, fmt.Errorf("初始化缓存failed: %w", err)
	}

	historyTTL := utils.ParseDurationOr(cfg.Orchestrator.HistoryTTL, defaultHistoryTTL)
	// 历史留存容量取注入上限的两倍，user/assistant 成对计
	historyCap := utils.DefaultInt(cfg.Orchestrator.HistoryLimit, 20) * 2
	if addr := cfg.Storage.Redis.Addr; addr != "" {
		b.History, err = conversation.NewRedisHistory(ctx, addr, cfg.Storage.Redis.DB, cfg.Storage.Redis.Password,
			historyCap, historyTTL)
		if err != nil {
			b.Close()
			return nil, fmt.Errorf("初始化会话历史failed: %w", err)
		}
	} else {
		b.History = conversation.NewMemoryHistory(historyCap)
	}

	return b, nil
}

// Close 关闭所有持有的连接
func (b *Bootstrap) Close() {
	if b.History != nil {
		_ = b.History.Close()
	}
	if b.CacheStore != nil {
		_ = b.CacheStore.Close()
	}
	if b.VectorStore != nil {
		_ = b.VectorStore.Close()
	}
	if b.pool != nil {
		b.pool.Close()
	}
}
