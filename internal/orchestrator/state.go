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

// Package orchestrator 对话编排：单轮会话的状态机，
// 依次经过记忆加载、意图路由、代理循环、记忆回写、响应。
package orchestrator

import (
	"github.com/cloudwego/eino/schema"

	"chat-platform/internal/memory"
	"chat-platform/internal/tool"
)

// 会话阶段
const (
	PhaseLoadMemory    = "LOAD_MEMORY"
	PhaseRoute         = "ROUTE"
	PhaseAgentLoop     = "AGENT_LOOP"
	PhasePersistMemory = "PERSIST_MEMORY"
	PhaseRespond       = "RESPOND"
)

// 意图标签
const (
	IntentComplaint     = "complaint"
	IntentOrderTracking = "order_tracking"
	IntentPolicy        = "policy"
	IntentFAQ           = "faq"
	IntentPurchase      = "purchase"
	IntentGreeting      = "greeting"
	IntentOther         = "other"
)

// 轮次终态
const (
	StatusCompleted = "completed"
	StatusDegraded  = "degraded"
	StatusFailed    = "failed"
	StatusCached    = "cached"
)

// TurnRequest 单轮请求
type TurnRequest struct {
	CustomerID string `json:"customer_id"`
	Message    string `json:"message"`
	Channel    string `json:"channel"`
	Locale     string `json:"locale"`
}

// TurnResponse 单轮响应
type TurnResponse struct {
	Reply     string           `json:"reply"`
	Agent     string           `json:"agent"`
	Intent    string           `json:"intent"`
	Status    string           `json:"status"`
	FromCache bool             `json:"from_cache,omitempty"`
	ToolCalls []ToolCallRecord `json:"tool_calls,omitempty"`
}

// ToolCallRecord 单次工具调用记录
type ToolCallRecord struct {
	ToolName   string      `json:"tool_name"`
	Arguments  string      `json:"arguments"`
	Result     tool.Result `json:"result"`
	DurationMS int64       `json:"duration_ms"`
}

// ConversationState 单轮会话状态，随阶段推进填充
type ConversationState struct {
	CustomerID string
	Channel    string
	Locale     string
	Phase      string

	Intent string
	Agent  string

	Facts   []memory.CustomerFact
	History []*schema.Message
	// Turn 本轮产生的消息（用户输入与最终回复），回写历史用
	Turn      []*schema.Message
	ToolCalls []ToolCallRecord
}
