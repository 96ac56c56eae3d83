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

// Package builtin 面向客服代理的内置工具集。
package builtin

import (
	"context"

	"chat-platform/internal/retrieval"
	"chat-platform/internal/tool"
	apperrors "chat-platform/pkg/errors"
)

// ProductSearchTool 实现 product_search：混合检索商品目录
type ProductSearchTool struct {
	engine retrieval.Searcher
}

// NewProductSearchTool 创建 product_search 工具
func NewProductSearchTool(engine retrieval.Searcher) *ProductSearchTool {
	return &ProductSearchTool{engine: engine}
}

// Name 实现 tool.Tool
func (t *ProductSearchTool) Name() string { return "product_search" }

// Description 实现 tool.Tool
func (t *ProductSearchTool) Description() string {
	return "Search the product catalog by description, attributes, or keywords. Returns matching products with ids, names, and prices."
}

// Schema 实现 tool.Tool
func (t *ProductSearchTool) Schema() tool.Schema {
	return tool.Schema{
		Type: "object",
		Properties: map[string]tool.SchemaProperty{
			"query": {Type: "string", Description: "商品描述或关键词"},
		},
		Required: []string{"query"},
	}
}

// Execute 实现 tool.Tool
func (t *ProductSearchTool) Execute(ctx context.Context, input map[string]any) tool.Result {
	query, _ := input["query"].(string)
	res, err := t.engine.Search(ctx, query, retrieval.KindProduct)
	if err != nil {
		return tool.Fail(apperrors.KindOf(err), err.Error())
	}
	if len(res.Items) == 0 {
		return tool.OkEmpty()
	}
	items := make([]map[string]any, 0, len(res.Items))
	for _, it := range res.Items {
		item := map[string]any{"product_id": it.ItemID, "score": it.Score}
		for k, v := range it.Metadata {
			item[k] = v
		}
		items = append(items, item)
	}
	return tool.Ok(map[string]any{
		"items":    items,
		"rewrites": res.Rewrites,
	})
}
