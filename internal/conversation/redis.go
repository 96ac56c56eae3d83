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

// Package conversation 会话历史：按客户保留最近若干条消息，带保留时长。
package conversation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/cloudwego/eino/schema"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "conversation:"

// RedisHistory Redis 实现。整段历史存为一个 JSON 值，写入时截断并刷新 TTL。
type RedisHistory struct {
	client *redis.Client
	maxLen int
	ttl    time.Duration
}

// NewRedisHistory 创建 Redis 会话历史；maxLen<=0 默认 40 条，ttl<=0 默认 7 天
func NewRedisHistory(ctx context.Context, addr string, db int, password string, maxLen int, ttl time.Duration) (*RedisHistory, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		DB:       db,
		Password: password,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return NewRedisHistoryWithClient(client, maxLen, ttl), nil
}

// NewRedisHistoryWithClient 复用已有客户端
func NewRedisHistoryWithClient(client *redis.Client, maxLen int, ttl time.Duration) *RedisHistory {
	if maxLen <= 0 {
		maxLen = 40
	}
	if ttl <= 0 {
		ttl = 7 * 24 * time.Hour
	}
	return &RedisHistory{client: client, maxLen: maxLen, ttl: ttl}
}

func (h *RedisHistory) Append(ctx context.Context, customerID string, msgs ...*schema.Message) error {
	if len(msgs) == 0 {
		return nil
	}
	existing, err := h.load(ctx, customerID)
	if err != nil {
		return err
	}
	existing = append(existing, msgs...)
	if len(existing) > h.maxLen {
		existing = existing[len(existing)-h.maxLen:]
	}
	data, err := json.Marshal(existing)
	if err != nil {
		return fmt.Errorf("序列化会话历史failed: %w", err)
	}
	return h.client.Set(ctx, keyPrefix+customerID, data, h.ttl).Err()
}

func (h *RedisHistory) Get(ctx context.Context, customerID string, limit int) ([]*schema.Message, error) {
	msgs, err := h.load(ctx, customerID)
	if err != nil {
		return nil, err
	}
	if limit > 0 && len(msgs) > limit {
		msgs = msgs[len(msgs)-limit:]
	}
	return msgs, nil
}

func (h *RedisHistory) Clear(ctx context.Context, customerID string) error {
	return h.client.Del(ctx, keyPrefix+customerID).Err()
}

func (h *RedisHistory) Close() error {
	return h.client.Close()
}

func (h *RedisHistory) load(ctx context.Context, customerID string) ([]*schema.Message, error) {
	data, err := h.client.Get(ctx, keyPrefix+customerID).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("读取会话历史failed: %w", err)
	}
	var msgs []*schema.Message
	if err := json.Unmarshal(data, &msgs); err != nil {
		return nil, fmt.Errorf("解析会话历史failed: %w", err)
	}
	return msgs, nil
}
