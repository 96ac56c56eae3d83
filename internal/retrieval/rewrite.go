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

package retrieval

import (
	"context"
	"fmt"
	"strings"

	"chat-platform/internal/model/llm"
)

// Rewriter 查询重写：把口语化的商品描述压缩成属性词（品类/颜色/尺码）
type Rewriter interface {
	Rewrite(ctx context.Context, query string) (string, error)
}

const rewritePrompt = `Rewrite the customer's product query into a short search phrase of concrete attributes.
Keep only: garment type, color, size, material. Drop filler words, politeness, and vague qualifiers.
Reply with the rewritten phrase only, no explanation.

Query: %s`

// LLMRewriter 模型重写，失败时回退属性抽取
type LLMRewriter struct {
	client   llm.Client
	fallback AttributeRewriter
}

// NewLLMRewriter 创建模型重写器
func NewLLMRewriter(client llm.Client) *LLMRewriter {
	return &LLMRewriter{client: client}
}

func (r *LLMRewriter) Rewrite(ctx context.Context, query string) (string, error) {
	out, err := r.client.Generate(ctx, fmt.Sprintf(rewritePrompt, query), llm.GenerateOptions{Temperature: 0, MaxTokens: 64})
	if err != nil {
		return r.fallback.Rewrite(ctx, query)
	}
	out = strings.TrimSpace(strings.Trim(strings.TrimSpace(out), `"`))
	if out == "" {
		return r.fallback.Rewrite(ctx, query)
	}
	return out, nil
}

// AttributeRewriter 规则重写：保留已知属性词，剔除口语修饰
type AttributeRewriter struct{}

var attributeWords = map[string]bool{
	// 品类
	"jacket": true, "coat": true, "sweater": true, "shirt": true, "t-shirt": true,
	"dress": true, "jeans": true, "pants": true, "trousers": true, "skirt": true,
	"shoes": true, "sneakers": true, "boots": true, "hat": true, "scarf": true,
	"hoodie": true, "shorts": true, "socks": true,
	// 颜色
	"black": true, "white": true, "red": true, "blue": true, "green": true,
	"yellow": true, "gray": true, "grey": true, "brown": true, "pink": true,
	"navy": true, "beige": true, "purple": true, "orange": true,
	// 尺码与材质
	"xs": true, "s": true, "m": true, "l": true, "xl": true, "xxl": true,
	"small": true, "medium": true, "large": true,
	"wool": true, "cotton": true, "denim": true, "leather": true, "linen": true, "silk": true,
}

func (AttributeRewriter) Rewrite(ctx context.Context, query string) (string, error) {
	var kept []string
	for _, w := range strings.Fields(strings.ToLower(query)) {
		w = strings.Trim(w, ".,!?;:\"'")
		if attributeWords[w] {
			kept = append(kept, w)
		}
	}
	if len(kept) == 0 {
		return query, nil
	}
	return strings.Join(kept, " "), nil
}
