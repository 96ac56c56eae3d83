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
	"encoding/json"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/schema"

	"chat-platform/internal/model/llm"
	"chat-platform/pkg/log"
)

const extractionPrompt = `You analyze a customer service conversation and extract durable facts about the customer.

Extract only facts worth remembering across future conversations:
- preference: sizes, colors, styles, brands the customer likes or dislikes
- constraint: budget limits, allergies, delivery restrictions
- personal_info: name, location, family details the customer volunteered

Return a JSON array. Each element:
{"fact_type":"preference|constraint|personal_info","fact_key":"snake_case_key","fact_value":"value","confidence":0-100,"source":"explicit|inferred"}

Use "explicit" when the customer stated the fact directly, "inferred" when you deduced it.
Return [] if the conversation contains no durable facts. Return ONLY the JSON array.

Conversation:
%s`

// Extractor 对话事实抽取：调用模型从对话全文提炼结构化事实
type Extractor struct {
	client llm.Client
	logger *log.Logger
}

// NewExtractor 创建事实抽取器
func NewExtractor(client llm.Client, logger *log.Logger) *Extractor {
	return &Extractor{client: client, logger: logger}
}

// extractedFact 模型输出中的单条事实
type extractedFact struct {
	FactType   string `json:"fact_type"`
	FactKey    string `json:"fact_key"`
	FactValue  string `json:"fact_value"`
	Confidence int    `json:"confidence"`
	Source     string `json:"source"`
}

// Extract 从对话中抽取客户事实。模型输出不是合法 JSON 时返回空集而非错误：
// 抽取失败不应影响本轮回复。
func (e *Extractor) Extract(ctx context.Context, customerID string, conversation []*schema.Message) ([]CustomerFact, error) {
	if len(conversation) == 0 {
		return nil, nil
	}
	prompt := fmt.Sprintf(extractionPrompt, transcript(conversation))
	raw, err := e.client.Generate(ctx, prompt, llm.GenerateOptions{Temperature: 0, MaxTokens: 1024})
	if err != nil {
		return nil, fmt.Errorf("事实抽取调用failed: %w", err)
	}

	var parsed []extractedFact
	if err := json.Unmarshal([]byte(stripFences(raw)), &parsed); err != nil {
		if e.logger != nil {
			e.logger.Warn("事实抽取输出无法解析，跳过本轮回写", "customer_id", customerID, "error", err)
		}
		return nil, nil
	}

	out := make([]CustomerFact, 0, len(parsed))
	for _, p := range parsed {
		f := CustomerFact{
			CustomerID: customerID,
			FactType:   p.FactType,
			FactKey:    p.FactKey,
			FactValue:  p.FactValue,
			Confidence: p.Confidence,
			Source:     p.Source,
		}
		if err := f.Validate(); err != nil {
			if e.logger != nil {
				e.logger.Warn("丢弃非法事实", "customer_id", customerID, "fact_key", p.FactKey, "error", err)
			}
			continue
		}
		out = append(out, f)
	}
	return out, nil
}

// transcript 将消息序列拼成模型可读的对话文本，跳过工具消息
func transcript(msgs []*schema.Message) string {
	var b strings.Builder
	for _, m := range msgs {
		if m == nil || m.Role == schema.Tool || m.Content == "" {
			continue
		}
		b.WriteString(string(m.Role))
		b.WriteString(": ")
		b.WriteString(m.Content)
		b.WriteByte('\n')
	}
	return b.String()
}

// stripFences 去掉模型偶尔包裹的 markdown 代码栅栏
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	}
	return strings.TrimSpace(s)
}
