package llm

import (
	"context"

	"github.com/cloudwego/eino/schema"
)

// Client LLM 客户端接口。消息统一使用 eino schema.Message，
// 工具调用通过 assistant 消息上的 ToolCalls 往返。
type Client interface {
	// Generate 单条 prompt 生成文本（路由、抽取等简单指令）
	Generate(ctx context.Context, prompt string, options GenerateOptions) (string, error)
	// Chat 多轮对话，返回 assistant 消息
	Chat(ctx context.Context, messages []*schema.Message, options GenerateOptions) (*schema.Message, error)
	// ChatWithTools 带 function-calling 的多轮对话；返回的消息可能携带 ToolCalls
	ChatWithTools(ctx context.Context, messages []*schema.Message, tools []ToolSpec, options GenerateOptions) (*schema.Message, error)
	// Model 返回模型名称
	Model() string
	// Provider 返回提供商名称
	Provider() string
}

// GenerateOptions 生成选项
type GenerateOptions struct {
	Temperature float64  `json:"temperature"`
	MaxTokens   int      `json:"max_tokens"`
	Stop        []string `json:"stop"`
}

// ToolSpec 供 function-calling 使用的工具描述；Parameters 为 JSON Schema 对象
type ToolSpec struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Parameters  any    `json:"parameters"`
}

// NewClient 创建新的 LLM 客户端；baseURL 用于 OpenAI 兼容端点（如 Qwen/DashScope），空则用默认或环境变量
func NewClient(provider, model, apiKey string, baseURL string) (Client, error) {
	switch provider {
	case "openai", "qwen":
		return NewOpenAIClientWithBaseURL(provider, model, apiKey, baseURL)
	default:
		return NewOpenAIClientWithBaseURL("openai", model, apiKey, baseURL)
	}
}
