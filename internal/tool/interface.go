package tool

import (
	"context"

	apperrors "chat-platform/pkg/errors"
)

// Schema 表示工具的 JSON Schema（供 LLM function-calling 使用）
type Schema struct {
	Type        string                    `json:"type,omitempty"`
	Description string                    `json:"description,omitempty"`
	Properties  map[string]SchemaProperty `json:"properties,omitempty"`
	Required    []string                  `json:"required,omitempty"`
}

// SchemaProperty 表示 Schema 中单个属性的描述
type SchemaProperty struct {
	Type        string `json:"type,omitempty"`
	Description string `json:"description,omitempty"`
}

// Result 工具执行结果信封。工具永不向上抛错：失败以 Error+Kind 表达，
// 空结果以 Success=true 且 Empty=true 表达，供代理循环区分纠偏策略。
type Result struct {
	Success bool           `json:"success"`
	Empty   bool           `json:"empty,omitempty"`
	Data    map[string]any `json:"data,omitempty"`
	Error   string         `json:"error,omitempty"`
	Kind    apperrors.Kind `json:"kind,omitempty"`
}

// Ok 构造成功结果
func Ok(data map[string]any) Result {
	return Result{Success: true, Data: data}
}

// OkEmpty 构造空结果（查询成功但没有匹配）
func OkEmpty() Result {
	return Result{Success: true, Empty: true}
}

// Fail 构造失败结果
func Fail(kind apperrors.Kind, msg string) Result {
	return Result{Success: false, Error: msg, Kind: kind}
}

// Tool 工具接口
type Tool interface {
	Name() string
	Description() string
	Schema() Schema
	Execute(ctx context.Context, input map[string]any) Result
}
