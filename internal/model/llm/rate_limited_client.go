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

package llm

import (
	"context"
	"time"

	"github.com/cloudwego/eino/schema"

	"chat-platform/pkg/metrics"
)

// RateLimitedClient 包装任意 LLM Client，在真实调用前后执行限流控制
type RateLimitedClient struct {
	inner       Client
	rateLimiter *RateLimiter
}

// NewRateLimitedClient 创建带限流的 LLM 客户端。rateLimiter 为 nil 时退化为直接调用
func NewRateLimitedClient(inner Client, rateLimiter *RateLimiter) *RateLimitedClient {
	return &RateLimitedClient{inner: inner, rateLimiter: rateLimiter}
}

// Generate 实现 Client.Generate，调用前后执行限流
func (c *RateLimitedClient) Generate(ctx context.Context, prompt string, options GenerateOptions) (string, error) {
	if err := c.acquire(ctx, estimateTokens(prompt, options.MaxTokens)); err != nil {
		return "", err
	}
	defer c.release()
	result, err := c.inner.Generate(ctx, prompt, options)
	if err != nil {
		return "", err
	}
	c.record(prompt, result)
	return result, nil
}

// Chat 实现 Client.Chat，调用前后执行限流
func (c *RateLimitedClient) Chat(ctx context.Context, messages []*schema.Message, options GenerateOptions) (*schema.Message, error) {
	if err := c.acquire(ctx, estimateTokens(messagesText(messages), options.MaxTokens)); err != nil {
		return nil, err
	}
	defer c.release()
	result, err := c.inner.Chat(ctx, messages, options)
	if err != nil {
		return nil, err
	}
	c.record(messagesText(messages), result.Content)
	return result, nil
}

// ChatWithTools 实现 Client.ChatWithTools，调用前后执行限流
func (c *RateLimitedClient) ChatWithTools(ctx context.Context, messages []*schema.Message, tools []ToolSpec, options GenerateOptions) (*schema.Message, error) {
	if err := c.acquire(ctx, estimateTokens(messagesText(messages), options.MaxTokens)); err != nil {
		return nil, err
	}
	defer c.release()
	result, err := c.inner.ChatWithTools(ctx, messages, tools, options)
	if err != nil {
		return nil, err
	}
	c.record(messagesText(messages), result.Content)
	return result, nil
}

// Model 返回底层 Client 的模型名称
func (c *RateLimitedClient) Model() string { return c.inner.Model() }

// Provider 返回底层 Client 的提供商名称
func (c *RateLimitedClient) Provider() string { return c.inner.Provider() }

func (c *RateLimitedClient) acquire(ctx context.Context, estimatedTokens int) error {
	if c.rateLimiter == nil {
		return nil
	}
	start := time.Now()
	if err := c.rateLimiter.Wait(ctx, estimatedTokens); err != nil {
		return err
	}
	if waited := time.Since(start); waited > 100*time.Millisecond {
		metrics.RateLimitWaitSeconds.WithLabelValues("llm", c.inner.Provider()).Observe(waited.Seconds())
	}
	return nil
}

func (c *RateLimitedClient) release() {
	if c.rateLimiter != nil {
		c.rateLimiter.Release()
	}
}

func (c *RateLimitedClient) record(input, output string) {
	metrics.LLMTokensTotal.WithLabelValues("input").Add(float64(estimateTokens(input, 0)))
	metrics.LLMTokensTotal.WithLabelValues("output").Add(float64(estimateTokens(output, 0)))
}

// estimateTokens 粗略估算请求的 token 数（4 字符 ≈ 1 token）
func estimateTokens(text string, maxTokens int) int {
	est := len(text) / 4
	if est < 1 {
		est = 1
	}
	return est + maxTokens
}

// messagesText 将消息列表合并为单一字符串，用于 token 估算
func messagesText(msgs []*schema.Message) string {
	var s string
	for _, m := range msgs {
		s += m.Content
	}
	return s
}
