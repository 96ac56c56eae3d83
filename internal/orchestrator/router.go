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
	"fmt"
	"strings"

	"chat-platform/internal/model/llm"
	"chat-platform/internal/prompt"
	"chat-platform/pkg/log"
)

// Router 意图路由。规则优先于模型判断：规则命中的标签直接采用，
// 规则未命中才调用模型分类。模型不可用时落到 support/other。
type Router struct {
	client llm.Client
	logger *log.Logger
}

// NewRouter 创建意图路由器
func NewRouter(client llm.Client, logger *log.Logger) *Router {
	return &Router{client: client, logger: logger}
}

// intentRule 关键词规则，按序匹配，先命中先生效
type intentRule struct {
	intent   string
	keywords []string
}

// 规则按优先级排列：投诉优先于一切，订单查询其次
var intentRules = []intentRule{
	{IntentComplaint, []string{
		"refund", "broken", "damaged", "complaint", "complain", "wrong item",
		"not happy", "unhappy", "disappointed", "terrible", "awful", "unacceptable",
	}},
	{IntentOrderTracking, []string{
		"where is my order", "track my order", "order status", "hasn't arrived",
		"has not arrived", "when will my order", "my delivery", "my package",
	}},
	{IntentPolicy, []string{
		"return policy", "exchange policy", "how do i return", "how to return",
		"shipping cost", "shipping policy", "payment methods", "warranty",
	}},
	{IntentPurchase, []string{
		"i want to buy", "i'd like to buy", "looking for", "do you have",
		"recommend", "i want to order", "purchase", "add to cart",
	}},
}

// Route 返回 (agent, intent)
func (r *Router) Route(ctx context.Context, message string) (string, string) {
	msg := strings.ToLower(message)
	for _, rule := range intentRules {
		for _, kw := range rule.keywords {
			if strings.Contains(msg, kw) {
				return agentFor(rule.intent), rule.intent
			}
		}
	}

	if r.client == nil {
		return prompt.AgentSupport, IntentOther
	}
	label, err := r.client.Generate(ctx, fmt.Sprintf(prompt.RoutingPrompt, message),
		llm.GenerateOptions{Temperature: 0, MaxTokens: 8})
	if err != nil {
		if r.logger != nil {
			r.logger.Warn("意图分类failed，使用默认路由", "error", err)
		}
		return prompt.AgentSupport, IntentOther
	}
	intent := parseLabel(label)
	return agentFor(intent), intent
}

// parseLabel 宽松解析模型输出：取首行、去标点、小写比对
func parseLabel(raw string) string {
	label := strings.ToLower(strings.TrimSpace(raw))
	if i := strings.IndexAny(label, "\n\r"); i >= 0 {
		label = label[:i]
	}
	label = strings.Trim(label, ".,:;\"' ")
	switch label {
	case IntentComplaint, IntentOrderTracking, IntentPolicy, IntentFAQ,
		IntentPurchase, IntentGreeting, IntentOther:
		return label
	default:
		return IntentOther
	}
}

// agentFor 意图到代理的映射：购买走销售，其余都归客服
func agentFor(intent string) string {
	if intent == IntentPurchase {
		return prompt.AgentSales
	}
	return prompt.AgentSupport
}
