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

package memory

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/schema"

	"chat-platform/pkg/log"
)

// DefaultMaxFacts 注入上下文的事实条数上限
const DefaultMaxFacts = 50

// Bank 记忆库：对话开始时加载事实，结束时抽取并回写
type Bank struct {
	store     Store
	extractor *Extractor
	maxFacts  int
	logger    *log.Logger
}

// NewBank 创建记忆库；maxFacts<=0 使用默认上限
func NewBank(store Store, extractor *Extractor, maxFacts int, logger *log.Logger) *Bank {
	if maxFacts <= 0 {
		maxFacts = DefaultMaxFacts
	}
	return &Bank{store: store, extractor: extractor, maxFacts: maxFacts, logger: logger}
}

// Load 加载客户事实，按更新时间降序截断到上限
func (b *Bank) Load(ctx context.Context, customerID string) ([]CustomerFact, error) {
	if customerID == "" {
		return nil, fmt.Errorf("customer_id 不能为空")
	}
	return b.store.ListByCustomer(ctx, customerID, b.maxFacts)
}

// Persist 抽取对话事实并逐条 upsert。单条写入失败记录日志并继续，
// 回写属于 best-effort，不影响已生成的回复。
func (b *Bank) Persist(ctx context.Context, customerID string, conversation []*schema.Message) error {
	facts, err := b.extractor.Extract(ctx, customerID, conversation)
	if err != nil {
		return err
	}
	var failed int
	for i := range facts {
		if err := b.store.Upsert(ctx, &facts[i]); err != nil {
			failed++
			if b.logger != nil {
				b.logger.Warn("事实回写failed", "customer_id", customerID, "fact_key", facts[i].FactKey, "error", err)
			}
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d/%d 条事实回写failed", failed, len(facts))
	}
	return nil
}

// Upsert 直接写入单条事实（供工具层使用）
func (b *Bank) Upsert(ctx context.Context, fact *CustomerFact) error {
	return b.store.Upsert(ctx, fact)
}

// ContextBlock 将事实渲染为注入系统提示的文本块；无事实返回空串
func ContextBlock(facts []CustomerFact) string {
	if len(facts) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("Known customer facts:\n")
	for _, f := range facts {
		fmt.Fprintf(&b, "- [%s] %s: %s (confidence %d, %s)\n",
			f.FactType, f.FactKey, f.FactValue, f.Confidence, f.Source)
	}
	return b.String()
}
