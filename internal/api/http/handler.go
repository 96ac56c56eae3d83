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

// Package http Hertz HTTP 接入层。
package http

import (
	"context"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/protocol/consts"

	"chat-platform/internal/memory"
	"chat-platform/internal/orchestrator"
	apperrors "chat-platform/pkg/errors"
	"chat-platform/pkg/log"
	"chat-platform/pkg/metrics"
)

// Handler HTTP 请求处理器
type Handler struct {
	orch   *orchestrator.Orchestrator
	bank   *memory.Bank
	logger *log.Logger
}

// NewHandler 创建处理器
func NewHandler(orch *orchestrator.Orchestrator, bank *memory.Bank, logger *log.Logger) *Handler {
	return &Handler{orch: orch, bank: bank, logger: logger}
}

// ChatRequest POST /api/chat 请求体
type ChatRequest struct {
	CustomerID string `json:"customer_id"`
	Message    string `json:"message"`
	Channel    string `json:"channel"`
	Locale     string `json:"locale"`
}

// errorBody 统一错误响应
type errorBody struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}

// Chat 处理一轮会话
func (h *Handler) Chat(ctx context.Context, c *app.RequestContext) {
	var req ChatRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(consts.StatusBadRequest, errorBody{Error: "请求体不是合法 JSON", Kind: string(apperrors.KindParse)})
		return
	}

	resp, err := h.orch.Handle(ctx, orchestrator.TurnRequest{
		CustomerID: req.CustomerID,
		Message:    req.Message,
		Channel:    req.Channel,
		Locale:     req.Locale,
	})
	if err != nil {
		kind := apperrors.KindOf(err)
		status := consts.StatusInternalServerError
		if kind == apperrors.KindValidation {
			status = consts.StatusBadRequest
		}
		c.JSON(status, errorBody{Error: err.Error(), Kind: string(kind)})
		return
	}
	c.JSON(consts.StatusOK, resp)
}

// CustomerFacts GET /api/customers/:id/facts
func (h *Handler) CustomerFacts(ctx context.Context, c *app.RequestContext) {
	customerID := c.Param("id")
	if customerID == "" {
		c.JSON(consts.StatusBadRequest, errorBody{Error: "缺少客户 ID", Kind: string(apperrors.KindValidation)})
		return
	}
	facts, err := h.bank.Load(ctx, customerID)
	if err != nil {
		c.JSON(consts.StatusInternalServerError, errorBody{Error: err.Error(), Kind: string(apperrors.KindOf(err))})
		return
	}
	c.JSON(consts.StatusOK, map[string]any{
		"customer_id": customerID,
		"facts":       facts,
	})
}

// Health GET /api/health
func (h *Handler) Health(ctx context.Context, c *app.RequestContext) {
	c.JSON(consts.StatusOK, map[string]string{"status": "ok"})
}

// Metrics GET /api/system/metrics（Prometheus 文本格式）
func (h *Handler) Metrics(ctx context.Context, c *app.RequestContext) {
	c.Response.Header.SetContentType("text/plain; version=0.0.4; charset=utf-8")
	if err := metrics.WritePrometheus(c.Response.BodyWriter()); err != nil {
		if h.logger != nil {
			h.logger.Warn("导出指标failed", "error", err)
		}
		c.SetStatusCode(consts.StatusInternalServerError)
	}
}
