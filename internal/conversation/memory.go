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

package conversation

import (
	"context"
	"sync"

	"github.com/cloudwego/eino/schema"
)

// MemoryHistory 内存实现，开发与测试用
type MemoryHistory struct {
	mu     sync.RWMutex
	byCust map[string][]*schema.Message
	maxLen int
}

// NewMemoryHistory 创建内存会话历史；maxLen<=0 默认 40 条
func NewMemoryHistory(maxLen int) *MemoryHistory {
	if maxLen <= 0 {
		maxLen = 40
	}
	return &MemoryHistory{
		byCust: make(map[string][]*schema.Message),
		maxLen: maxLen,
	}
}

func (h *MemoryHistory) Append(ctx context.Context, customerID string, msgs ...*schema.Message) error {
	if len(msgs) == 0 {
		return nil
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	list := append(h.byCust[customerID], msgs...)
	if len(list) > h.maxLen {
		list = list[len(list)-h.maxLen:]
	}
	h.byCust[customerID] = list
	return nil
}

func (h *MemoryHistory) Get(ctx context.Context, customerID string, limit int) ([]*schema.Message, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	msgs := h.byCust[customerID]
	if limit > 0 && len(msgs) > limit {
		msgs = msgs[len(msgs)-limit:]
	}
	out := make([]*schema.Message, len(msgs))
	copy(out, msgs)
	return out, nil
}

func (h *MemoryHistory) Clear(ctx context.Context, customerID string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.byCust, customerID)
	return nil
}

func (h *MemoryHistory) Close() error {
	return nil
}
