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

// Package respcache 响应缓存：对稳定意图（问候、固定话术 FAQ）复用已生成的回复，
// 跳过模型调用。依赖客户状态或时效数据的意图一律不缓存。
package respcache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"
	"unicode"

	"chat-platform/internal/storage/cache"
	"chat-platform/pkg/metrics"
)

const (
	entryPrefix = "resp:"
	hitsPrefix  = "resphits:"
	// DefaultTTL 未配置时的缓存时长
	DefaultTTL = 24 * time.Hour
)

// 默认可缓存意图白名单
var defaultIntents = []string{"greeting", "faq"}

// Entry 缓存条目
type Entry struct {
	MessageHash       string    `json:"message_hash"`
	NormalizedMessage string    `json:"normalized_message"`
	CachedResponse    string    `json:"cached_response"`
	Intent            string    `json:"intent"`
	HitCount          int64     `json:"hit_count"`
	CreatedAt         time.Time `json:"created_at"`
	ExpiresAt         time.Time `json:"expires_at"`
}

// Cache 响应缓存
type Cache struct {
	store   cache.Store
	ttl     time.Duration
	intents map[string]bool
	now     func() time.Time
}

// New 创建响应缓存；intents 为空使用默认白名单
func New(store cache.Store, ttl time.Duration, intents []string) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if len(intents) == 0 {
		intents = defaultIntents
	}
	allow := make(map[string]bool, len(intents))
	for _, in := range intents {
		allow[in] = true
	}
	return &Cache{store: store, ttl: ttl, intents: allow, now: time.Now}
}

// Cacheable 意图是否允许缓存
func (c *Cache) Cacheable(intent string) bool {
	return c.intents[intent]
}

// Lookup 查询缓存。命中时自增 hit_count 并返回条目；过期条目视为未命中（惰性过期，
// 不依赖后端删除）。
func (c *Cache) Lookup(ctx context.Context, message, channel string) (*Entry, bool) {
	hash := Key(message, channel)
	var entry Entry
	if err := c.store.Get(ctx, entryPrefix+hash, &entry); err != nil {
		metrics.CacheLookupTotal.WithLabelValues("miss").Inc()
		return nil, false
	}
	if c.now().After(entry.ExpiresAt) {
		metrics.CacheLookupTotal.WithLabelValues("expired").Inc()
		return nil, false
	}
	hits, err := c.store.Incr(ctx, hitsPrefix+hash)
	if err == nil {
		entry.HitCount = hits
		// 计数键随条目一起过期，不留孤儿键
		_ = c.store.Expire(ctx, hitsPrefix+hash, 2*entry.ExpiresAt.Sub(c.now()))
	}
	metrics.CacheLookupTotal.WithLabelValues("hit").Inc()
	return &entry, true
}

// Store 写入缓存，覆盖同一规范化消息的旧条目并重置命中计数。
// 不在白名单内的意图静默跳过。
func (c *Cache) Store(ctx context.Context, message, channel, response, intent string, ttl time.Duration) error {
	if !c.Cacheable(intent) {
		return nil
	}
	if ttl <= 0 {
		ttl = c.ttl
	}
	hash := Key(message, channel)
	now := c.now()
	entry := Entry{
		MessageHash:       hash,
		NormalizedMessage: Normalize(message),
		CachedResponse:    response,
		Intent:            intent,
		CreatedAt:         now,
		ExpiresAt:         now.Add(ttl),
	}
	// 后端保留时间放宽一档，过期判定始终走 expires_at
	if err := c.store.Set(ctx, entryPrefix+hash, &entry, ttl*2); err != nil {
		return err
	}
	return c.store.Delete(ctx, hitsPrefix+hash)
}

// Normalize 规范化消息：小写、折叠空白、去首尾标点空白
func Normalize(message string) string {
	s := strings.ToLower(strings.TrimSpace(message))
	var b strings.Builder
	space := false
	for _, r := range s {
		if unicode.IsSpace(r) {
			space = true
			continue
		}
		if space && b.Len() > 0 {
			b.WriteByte(' ')
		}
		space = false
		b.WriteRune(r)
	}
	return strings.TrimSpace(strings.TrimRight(b.String(), "!?.,;:！？。，"))
}

// Key 由规范化消息与渠道推导稳定缓存键
func Key(message, channel string) string {
	sum := sha256.Sum256([]byte(Normalize(message) + "|" + channel))
	return hex.EncodeToString(sum[:])
}
