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

package builtin

import (
	"context"

	"chat-platform/internal/retrieval"
	"chat-platform/internal/tool"
	apperrors "chat-platform/pkg/errors"
)

// KnowledgeSearchTool 实现 knowledge_search：政策/FAQ 知识库检索
type KnowledgeSearchTool struct {
	engine retrieval.Searcher
}

// NewKnowledgeSearchTool 创建 knowledge_search 工具
func NewKnowledgeSearchTool(engine retrieval.Searcher) *KnowledgeSearchTool {
	return &KnowledgeSearchTool{engine: engine}
}

// Name 实现 tool.Tool
func (t *KnowledgeSearchTool) Name() string { return "knowledge_search" }

// Description 实现 tool.Tool
func (t *KnowledgeSearchTool) Description() string {
	return "Search help-center articles: return policy, shipping, payments, and other store policies."
}

// Schema 实现 tool.Tool
func (t *KnowledgeSearchTool) Schema() tool.Schema {
	return tool.Schema{
		Type: "object",
		Properties: map[string]tool.SchemaProperty{
			"query": {Type: "string", Description: "问题或关键词"},
		},
		Required: []string{"query"},
	}
}

// Execute 实现 tool.Tool
func (t *KnowledgeSearchTool) Execute(ctx context.Context, input map[string]any) tool.Result {
	query, _ := input["query"].(string)
	res, err := t.engine.Search(ctx, query, retrieval.KindKnowledge)
	if err != nil {
		return tool.Fail(apperrors.KindOf(err), err.Error())
	}
	if len(res.Items) == 0 {
		return tool.OkEmpty()
	}
	items := make([]map[string]any, 0, len(res.Items))
	for _, it := range res.Items {
		item := map[string]any{"article_id": it.ItemID, "score": it.Score}
		for k, v := range it.Metadata {
			item[k] = v
		}
		items = append(items, item)
	}
	return tool.Ok(map[string]any{"articles": items})
}
