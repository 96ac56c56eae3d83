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

// Package retrieval 混合检索：向量相似度与关键词检索融合，低置信时自纠重写一次。
package retrieval

import "context"

// 检索目标
const (
	KindProduct   = "product"
	KindKnowledge = "knowledge"
)

// 结果来源
const (
	SourceSemantic = "semantic"
	SourceKeyword  = "keyword"
	SourceBoth     = "both"
)

// 默认参数
const (
	DefaultTopK             = 5
	DefaultRewriteThreshold = 0.7
	DefaultSemanticWeight   = 0.7
)

// Result 单条检索结果
type Result struct {
	ItemID   string            `json:"item_id"`
	Score    float64           `json:"score"`
	Source   string            `json:"source"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// Results 检索结果集
type Results struct {
	Items     []Result `json:"items"`
	Query     string   `json:"query"`
	Rewritten string   `json:"rewritten_query,omitempty"`
	Rewrites  int      `json:"rewrites"`
}

// TopScore 最高融合得分；空集为 0
func (r *Results) TopScore() float64 {
	if len(r.Items) == 0 {
		return 0
	}
	return r.Items[0].Score
}

// Searcher 检索入口
type Searcher interface {
	Search(ctx context.Context, query, kind string) (*Results, error)
}
