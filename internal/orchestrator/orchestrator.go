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
	"strings"
	"time"

	"github.com/cloudwego/eino/schema"

	"chat-platform/internal/conversation"
	"chat-platform/internal/memory"
	"chat-platform/internal/prompt"
	"chat-platform/internal/respcache"
	"chat-platform/internal/storage/cache"
	apperrors "chat-platform/pkg/errors"
	"chat-platform/pkg/log"
	"chat-platform/pkg/metrics"
	"chat-platform/pkg/tracing"
)

const (
	flowKeyPrefix = "orderflow:"
	flowTTL       = time.Hour

	// apologyReply 上游失败时的统一致歉回复，单轮只发一次
	apologyReply = "I'm sorry, something went wrong on our side. Please try again in a moment."
)

// Options 编排参数
type Options struct {
	DefaultLocale string
	HistoryLimit  int
}

// Orchestrator 对话编排器
type Orchestrator struct {
	router  *Router
	loop    *AgentLoop
	bank    *memory.Bank
	history conversation.History
	cache   *respcache.Cache
	flows   cache.Store
	prompts *prompt.Library
	opts    Options
	logger  *log.Logger
}

// New 创建编排器。bank、cache、flows 可为 nil，对应能力自动关闭。
func New(router *Router, loop *AgentLoop, bank *memory.Bank, history conversation.History,
	respCache *respcache.Cache, flows cache.Store, prompts *prompt.Library, opts Options, logger *log.Logger) *Orchestrator {
	if opts.DefaultLocale == "" {
		opts.DefaultLocale = "en"
	}
	if opts.HistoryLimit <= 0 {
		opts.HistoryLimit = 20
	}
	return &Orchestrator{
		router: router, loop: loop, bank: bank, history: history,
		cache: respCache, flows: flows, prompts: prompts, opts: opts, logger: logger,
	}
}

// Handle 处理单轮会话。校验失败返回 validation 错误；
// 模型上游失败折叠为一次致歉回复（status=failed），不向调用方抛错。
func (o *Orchestrator) Handle(ctx context.Context, req TurnRequest) (*TurnResponse, error) {
	if strings.TrimSpace(req.CustomerID) == "" {
		return nil, apperrors.Classify(apperrors.KindValidation, fmt.Errorf("customer_id 不能为空"))
	}
	if strings.TrimSpace(req.Message) == "" {
		return nil, apperrors.Classify(apperrors.KindValidation, fmt.Errorf("message 不能为空"))
	}
	if req.Locale == "" {
		req.Locale = o.opts.DefaultLocale
	}

	ctx, span := tracing.StartTurnSpan(ctx, req.CustomerID, req.Channel)
	defer span.End()
	logger := o.logger
	if logger != nil {
		logger = logger.WithTurn(req.CustomerID, req.Channel)
	}
	start := time.Now()

	// 稳定意图的回复直接复用缓存，整条流水线短路
	if o.cache != nil {
		if entry, ok := o.cache.Lookup(ctx, req.Message, req.Channel); ok {
			metrics.TurnTotal.WithLabelValues(StatusCached).Inc()
			return &TurnResponse{
				Reply:     entry.CachedResponse,
				Intent:    entry.Intent,
				Status:    StatusCached,
				FromCache: true,
			}, nil
		}
	}

	state := &ConversationState{
		CustomerID: req.CustomerID,
		Channel:    req.Channel,
		Locale:     req.Locale,
		Phase:      PhaseLoadMemory,
	}

	// LOAD_MEMORY：事实加载失败降级为空集，不阻塞本轮
	if o.bank != nil {
		facts, err := o.bank.Load(ctx, req.CustomerID)
		if err != nil {
			if logger != nil {
				logger.Warn("加载客户事实failed，本轮不注入", "error", err)
			}
		} else {
			state.Facts = facts
		}
	}
	if o.history != nil {
		history, err := o.history.Get(ctx, req.CustomerID, o.opts.HistoryLimit)
		if err != nil {
			if logger != nil {
				logger.Warn("加载会话历史failed，本轮从空历史开始", "error", err)
			}
		} else {
			state.History = history
		}
	}

	// ROUTE
	state.Phase = PhaseRoute
	state.Agent, state.Intent = o.router.Route(ctx, req.Message)
	if logger != nil {
		logger.Info("路由完成", "agent", state.Agent, "intent", state.Intent)
	}

	flow := o.loadFlow(ctx, req.CustomerID)
	flowWasCreated := flow.Created

	systemPrompt, err := o.buildSystemPrompt(state, flow)
	if err != nil {
		return nil, err
	}

	// AGENT_LOOP
	state.Phase = PhaseAgentLoop
	reply, status, records, err := o.loop.Run(ctx, systemPrompt, state.History, req.Message)
	state.ToolCalls = records
	if err != nil {
		if logger != nil {
			logger.Error("代理循环failed", "error", err)
		}
		metrics.TurnTotal.WithLabelValues(StatusFailed).Inc()
		metrics.TurnDuration.WithLabelValues(state.Agent).Observe(time.Since(start).Seconds())
		return &TurnResponse{
			Reply:  apologyReply,
			Agent:  state.Agent,
			Intent: state.Intent,
			Status: StatusFailed,
		}, nil
	}
	state.Turn = []*schema.Message{
		schema.UserMessage(req.Message),
		schema.AssistantMessage(reply, nil),
	}

	o.advanceFlow(ctx, req.CustomerID, flow, flowWasCreated, records, status)

	// PERSIST_MEMORY：回写失败不影响已生成的回复
	state.Phase = PhasePersistMemory
	if o.bank != nil {
		if err := o.bank.Persist(ctx, req.CustomerID, append(append([]*schema.Message{}, state.History...), state.Turn...)); err != nil {
			if logger != nil {
				logger.Warn("记忆回写failed", "error", err)
			}
		}
	}
	if o.history != nil {
		if err := o.history.Append(ctx, req.CustomerID, state.Turn...); err != nil {
			if logger != nil {
				logger.Warn("会话历史回写failed", "error", err)
			}
		}
	}

	// 完整完成且意图可缓存时写入响应缓存
	if o.cache != nil && status == StatusCompleted && len(records) == 0 {
		if err := o.cache.Store(ctx, req.Message, req.Channel, reply, state.Intent, 0); err != nil && logger != nil {
			logger.Warn("响应缓存写入failed", "error", err)
		}
	}

	// RESPOND
	state.Phase = PhaseRespond
	metrics.TurnTotal.WithLabelValues(status).Inc()
	metrics.TurnDuration.WithLabelValues(state.Agent).Observe(time.Since(start).Seconds())
	return &TurnResponse{
		Reply:     reply,
		Agent:     state.Agent,
		Intent:    state.Intent,
		Status:    status,
		ToolCalls: records,
	}, nil
}

// buildSystemPrompt 模板 + 客户事实 + 下单进度
func (o *Orchestrator) buildSystemPrompt(state *ConversationState, flow *OrderFlow) (string, error) {
	tpl, err := o.prompts.Resolve(state.Agent, state.Channel, state.Locale)
	if err != nil {
		return "", apperrors.Classify(apperrors.KindValidation, err)
	}
	parts := []string{tpl.Text}
	if block := memory.ContextBlock(state.Facts); block != "" {
		parts = append(parts, block)
	}
	if state.Agent == prompt.AgentSales {
		if guidance := flow.Guidance(); guidance != "" {
			parts = append(parts, guidance)
		}
	}
	return strings.Join(parts, "\n\n"), nil
}

// loadFlow 读取跨轮次的下单进度；无记录或读取失败都从空进度开始
func (o *Orchestrator) loadFlow(ctx context.Context, customerID string) *OrderFlow {
	flow := NewOrderFlow()
	if o.flows == nil {
		return flow
	}
	if err := o.flows.Get(ctx, flowKeyPrefix+customerID, flow); err != nil {
		return NewOrderFlow()
	}
	return flow
}

// advanceFlow 吸收本轮 create_order 调用并持久化进度；确认完成后清除
func (o *Orchestrator) advanceFlow(ctx context.Context, customerID string, flow *OrderFlow, wasCreated bool, records []ToolCallRecord, status string) {
	if o.flows == nil {
		return
	}
	touched := false
	for _, rec := range records {
		if rec.ToolName != toolCreateOrder {
			continue
		}
		touched = true
		var args map[string]any
		if json.Unmarshal([]byte(rec.Arguments), &args) == nil {
			flow.Merge(args)
		}
		if rec.Result.Success && !rec.Result.Empty {
			creation := make(map[string]string, len(rec.Result.Data))
			for k, v := range rec.Result.Data {
				creation[k] = fmt.Sprint(v)
			}
			flow.MarkCreated(creation)
		}
	}

	key := flowKeyPrefix + customerID
	// 上一轮已创建、本轮正常完成 → 确认已送达，流程收尾
	if wasCreated && status == StatusCompleted {
		_ = o.flows.Delete(ctx, key)
		return
	}
	if touched || len(flow.Fields) > 0 || flow.Created {
		_ = o.flows.Set(ctx, key, flow, flowTTL)
	}
}
