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

package orchestrator

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/cloudwego/eino/schema"

	"chat-platform/internal/model/llm"
	"chat-platform/internal/prompt"
	"chat-platform/internal/tool"
	"chat-platform/pkg/log"
)

// DefaultMaxToolCalls 单轮工具调用预算
const DefaultMaxToolCalls = 6

// ToolSpecSource 供循环获取 function-calling 描述（registry.Registry 满足）
type ToolSpecSource interface {
	SpecsForLLM() []llm.ToolSpec
}

// AgentLoop 有界代理循环：模型决定调用工具或作答；空结果与失败注入纠偏指令；
// 预算耗尽后强制基于已有信息收尾（降级响应）。
type AgentLoop struct {
	client       llm.Client
	invoker      *tool.Invoker
	specs        ToolSpecSource
	maxToolCalls int
	logger       *log.Logger
}

// NewAgentLoop 创建代理循环；maxToolCalls<=0 使用默认预算
func NewAgentLoop(client llm.Client, invoker *tool.Invoker, specs ToolSpecSource, maxToolCalls int, logger *log.Logger) *AgentLoop {
	if maxToolCalls <= 0 {
		maxToolCalls = DefaultMaxToolCalls
	}
	return &AgentLoop{client: client, invoker: invoker, specs: specs, maxToolCalls: maxToolCalls, logger: logger}
}

// Run 执行代理循环。返回最终回复、终态（completed|degraded）与工具调用记录。
// 模型调用本身失败时返回错误，由编排层折叠为统一的致歉回复。
func (l *AgentLoop) Run(ctx context.Context, systemPrompt string, history []*schema.Message, userMessage string) (string, string, []ToolCallRecord, error) {
	msgs := make([]*schema.Message, 0, len(history)+2)
	msgs = append(msgs, schema.SystemMessage(systemPrompt))
	msgs = append(msgs, history...)
	msgs = append(msgs, schema.UserMessage(userMessage))

	specs := l.specs.SpecsForLLM()
	opts := llm.GenerateOptions{Temperature: 0.3, MaxTokens: 1024}

	var records []ToolCallRecord
	// 同轮内刚创建的订单：创建结果直接回放给后续查单，不再回源
	var createdData map[string]any
	var createdID string
	calls := 0
	for {
		resp, err := l.client.ChatWithTools(ctx, msgs, specs, opts)
		if err != nil {
			return "", "", records, fmt.Errorf("模型调用failed: %w", err)
		}
		if len(resp.ToolCalls) == 0 {
			return resp.Content, StatusCompleted, records, nil
		}

		msgs = append(msgs, resp)
		budgetHit := false
		for _, tc := range resp.ToolCalls {
			if calls >= l.maxToolCalls {
				budgetHit = true
				msgs = append(msgs, schema.ToolMessage(`{"error":"tool budget exhausted"}`, tc.ID))
				continue
			}
			calls++
			if tc.Function.Name == toolOrderStatus && createdData != nil && sameOrder(tc.Function.Arguments, createdID) {
				res := tool.Ok(createdData)
				records = append(records, ToolCallRecord{
					ToolName:  tc.Function.Name,
					Arguments: tc.Function.Arguments,
					Result:    res,
				})
				payload, _ := json.Marshal(res)
				msgs = append(msgs, schema.ToolMessage(string(payload), tc.ID))
				msgs = append(msgs, schema.SystemMessage(prompt.CorrectiveOrderCreated))
				continue
			}
			start := time.Now()
			res := l.invoker.Invoke(ctx, tc.Function.Name, tc.Function.Arguments)
			if tc.Function.Name == toolCreateOrder && res.Success && !res.Empty {
				createdData = res.Data
				createdID, _ = res.Data["order_id"].(string)
			}
			records = append(records, ToolCallRecord{
				ToolName:   tc.Function.Name,
				Arguments:  tc.Function.Arguments,
				Result:     res,
				DurationMS: time.Since(start).Milliseconds(),
			})

			payload, err := json.Marshal(res)
			if err != nil {
				payload = []byte(`{"success":false,"error":"结果序列化failed"}`)
			}
			msgs = append(msgs, schema.ToolMessage(string(payload), tc.ID))

			// 空结果与失败各自注入纠偏指令，阻止原样重试
			switch {
			case !res.Success:
				msgs = append(msgs, schema.SystemMessage(fmt.Sprintf(prompt.CorrectiveError, res.Error)))
			case res.Empty:
				msgs = append(msgs, schema.SystemMessage(prompt.CorrectiveEmpty))
			}
		}

		if budgetHit || calls >= l.maxToolCalls {
			return l.degrade(ctx, msgs, opts, records)
		}
	}
}

// sameOrder 判断查单参数是否指向本轮刚创建的订单；参数缺失或解析不了按同单处理
func sameOrder(args, createdID string) bool {
	var in struct {
		OrderID string `json:"order_id"`
	}
	if err := json.Unmarshal([]byte(args), &in); err != nil || in.OrderID == "" {
		return true
	}
	return in.OrderID == createdID
}

// degrade 预算耗尽：不再提供工具，强制模型基于已有信息作答
func (l *AgentLoop) degrade(ctx context.Context, msgs []*schema.Message, opts llm.GenerateOptions, records []ToolCallRecord) (string, string, []ToolCallRecord, error) {
	if l.logger != nil {
		l.logger.Warn("工具调用预算耗尽，进入降级收尾", "max_tool_calls", l.maxToolCalls)
	}
	msgs = append(msgs, schema.SystemMessage(prompt.DegradedSummary))
	resp, err := l.client.Chat(ctx, msgs, opts)
	if err != nil {
		return "", "", records, fmt.Errorf("降级收尾failed: %w", err)
	}
	return resp.Content, StatusDegraded, records, nil
}
