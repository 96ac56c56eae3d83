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

package tool

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	apperrors "chat-platform/pkg/errors"
	"chat-platform/pkg/log"
	"chat-platform/pkg/metrics"
	"chat-platform/pkg/tracing"
)

// Resolver 按名称解析工具（registry.Registry 满足该接口）
type Resolver interface {
	Get(name string) (Tool, bool)
}

// Invoker 工具调用层：参数解析、schema 校验、执行、指标上报。
// 任何失败都折叠进 Result 信封，调用方（代理循环）永远拿到结构化结果。
type Invoker struct {
	resolver Resolver
	logger   *log.Logger
}

// NewInvoker 创建工具调用层
func NewInvoker(resolver Resolver, logger *log.Logger) *Invoker {
	return &Invoker{resolver: resolver, logger: logger}
}

// Invoke 以原始 JSON 参数调用工具（模型 function-calling 的 arguments 字段）
func (inv *Invoker) Invoke(ctx context.Context, name, rawArgs string) Result {
	input := map[string]any{}
	if rawArgs != "" {
		if err := json.Unmarshal([]byte(rawArgs), &input); err != nil {
			res := Fail(apperrors.KindParse, fmt.Sprintf("参数不是合法 JSON: %v", err))
			metrics.ToolTotal.WithLabelValues(name, "error").Inc()
			return res
		}
	}
	return inv.InvokeWith(ctx, name, input)
}

// InvokeWith 以结构化参数调用工具
func (inv *Invoker) InvokeWith(ctx context.Context, name string, input map[string]any) (res Result) {
	ctx, span := tracing.StartToolSpan(ctx, name)
	defer span.End()

	t, ok := inv.resolver.Get(name)
	if !ok {
		metrics.ToolTotal.WithLabelValues(name, "error").Inc()
		return Fail(apperrors.KindValidation, fmt.Sprintf("未知工具: %s", name))
	}

	if err := validate(t.Schema(), input); err != nil {
		metrics.ToolTotal.WithLabelValues(name, "error").Inc()
		return Fail(apperrors.KindValidation, err.Error())
	}

	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			if inv.logger != nil {
				inv.logger.Error("工具执行 panic", "tool", name, "panic", fmt.Sprint(r))
			}
			res = Fail(apperrors.KindUpstream, fmt.Sprintf("工具 %s 内部错误", name))
		}
		elapsed := time.Since(start).Seconds()
		metrics.ToolDuration.WithLabelValues(name).Observe(elapsed)
		metrics.ToolTotal.WithLabelValues(name, statusOf(res)).Inc()
		if inv.logger != nil {
			inv.logger.Debug("工具调用完成", "tool", name, "status", statusOf(res), "duration_s", elapsed)
		}
	}()

	return t.Execute(ctx, input)
}

func statusOf(res Result) string {
	switch {
	case !res.Success:
		return "error"
	case res.Empty:
		return "empty"
	default:
		return "ok"
	}
}

// validate 按 schema 检查必填项与基础类型
func validate(s Schema, input map[string]any) error {
	for _, req := range s.Required {
		v, ok := input[req]
		if !ok || v == nil {
			return fmt.Errorf("缺少必填参数: %s", req)
		}
		if str, isStr := v.(string); isStr && str == "" {
			return fmt.Errorf("必填参数为空: %s", req)
		}
	}
	for key, val := range input {
		prop, ok := s.Properties[key]
		if !ok || val == nil {
			continue
		}
		if err := checkType(key, prop.Type, val); err != nil {
			return err
		}
	}
	return nil
}

func checkType(key, typ string, val any) error {
	switch typ {
	case "string":
		if _, ok := val.(string); !ok {
			return fmt.Errorf("参数 %s 应为字符串", key)
		}
	case "integer", "number":
		switch val.(type) {
		case int, int32, int64, float32, float64:
		default:
			return fmt.Errorf("参数 %s 应为数值", key)
		}
	case "boolean":
		if _, ok := val.(bool); !ok {
			return fmt.Errorf("参数 %s 应为布尔值", key)
		}
	}
	return nil
}
