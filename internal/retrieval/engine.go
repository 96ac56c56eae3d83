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
	"sort"
	"strconv"
	"strings"

	"chat-platform/internal/commerce"
	"chat-platform/internal/model/embedding"
	"chat-platform/internal/storage/vector"
	apperrors "chat-platform/pkg/errors"
	"chat-platform/pkg/metrics"
	"chat-platform/pkg/tracing"
)

// 向量集合名，kind 即集合
const (
	CollectionProducts  = "products"
	CollectionKnowledge = "knowledge"
)

// Options 引擎参数
type Options struct {
	TopK             int
	RewriteThreshold float64
	SemanticWeight   float64
}

// Engine 混合检索引擎。语义端走向量库，关键词端走商城存储；
// 两路结果按权重融合，关键词命中保证进入结果集。
type Engine struct {
	vec       vector.Store
	embedder  embedding.Embedder
	catalog   commerce.Catalog
	knowledge commerce.Knowledge
	rewriter  Rewriter
	opts      Options
}

// NewEngine 创建混合检索引擎；rewriter 为 nil 时禁用自纠重写
func NewEngine(vec vector.Store, embedder embedding.Embedder, catalog commerce.Catalog, knowledge commerce.Knowledge, rewriter Rewriter, opts Options) *Engine {
	if opts.TopK <= 0 {
		opts.TopK = DefaultTopK
	}
	if opts.RewriteThreshold <= 0 {
		opts.RewriteThreshold = DefaultRewriteThreshold
	}
	if opts.SemanticWeight <= 0 || opts.SemanticWeight > 1 {
		opts.SemanticWeight = DefaultSemanticWeight
	}
	return &Engine{vec: vec, embedder: embedder, catalog: catalog, knowledge: knowledge, rewriter: rewriter, opts: opts}
}

// Search 执行混合检索。空查询直接返回空集，不触发任何下游调用。
// 商品检索首轮语义原始相似度低于阈值时重写查询再检索一次（至多一次）。
// 阈值比较用的是未加权的语义相似度：融合分已乘 SemanticWeight，
// 拿它比阈值会让纯语义命中永远触发重写。
func (e *Engine) Search(ctx context.Context, query, kind string) (*Results, error) {
	ctx, span := tracing.StartRetrievalSpan(ctx, kind)
	defer span.End()

	query = strings.TrimSpace(query)
	if query == "" {
		return &Results{Query: query}, nil
	}

	first, firstSim, err := e.searchOnce(ctx, query, kind)
	if err != nil {
		return nil, err
	}
	first.Query = query

	// 知识库查询不重写；相似度达标或无重写器时直接返回
	if kind != KindProduct || e.rewriter == nil || firstSim >= e.opts.RewriteThreshold {
		return first, nil
	}

	rewritten, err := e.rewriter.Rewrite(ctx, query)
	if err != nil || strings.TrimSpace(rewritten) == "" || rewritten == query {
		return first, nil
	}
	metrics.RetrievalRewriteTotal.WithLabelValues(kind).Inc()

	second, _, err := e.searchOnce(ctx, rewritten, kind)
	if err != nil {
		// 重写轮失败不丢首轮结果
		return first, nil
	}
	second.Query = query
	second.Rewritten = rewritten
	second.Rewrites = 1
	// 重写轮没检索得更好时保留首轮，避免一次坏重写反而降低答案质量
	if second.TopScore() >= first.TopScore() {
		return second, nil
	}
	first.Rewrites = 1
	first.Rewritten = rewritten
	return first, nil
}

// searchOnce 单轮混合检索，无重写。第二个返回值是语义端最高原始相似度，
// 供重写阈值判断用。
func (e *Engine) searchOnce(ctx context.Context, query, kind string) (*Results, float64, error) {
	sem, err := e.semantic(ctx, query, kind)
	if err != nil {
		return nil, 0, apperrors.Classify(apperrors.KindUpstream, fmt.Errorf("语义检索failed: %w", err))
	}
	kw, err := e.keyword(ctx, query, kind)
	if err != nil {
		return nil, 0, apperrors.Classify(apperrors.KindUpstream, fmt.Errorf("关键词检索failed: %w", err))
	}

	var topSim float64
	merged := make(map[string]*Result)
	for _, s := range sem {
		if s.Score > topSim {
			topSim = s.Score
		}
		merged[s.ItemID] = &Result{
			ItemID:   s.ItemID,
			Score:    e.opts.SemanticWeight * s.Score,
			Source:   SourceSemantic,
			Metadata: s.Metadata,
		}
	}
	kwWeight := 1 - e.opts.SemanticWeight
	for i, k := range kw {
		// 关键词得分按排名线性衰减
		rankScore := 1 - float64(i)/float64(len(kw))
		if r, ok := merged[k.ItemID]; ok {
			r.Score += kwWeight * rankScore
			r.Source = SourceBoth
			continue
		}
		res := k
		res.Score = kwWeight * rankScore
		merged[k.ItemID] = &res
	}

	items := make([]Result, 0, len(merged))
	for _, r := range merged {
		items = append(items, *r)
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].Score != items[j].Score {
			return items[i].Score > items[j].Score
		}
		return items[i].ItemID < items[j].ItemID
	})
	if len(items) > e.opts.TopK {
		items = items[:e.opts.TopK]
	}
	return &Results{Items: items}, topSim, nil
}

func (e *Engine) semantic(ctx context.Context, query, kind string) ([]Result, error) {
	if e.vec == nil || e.embedder == nil {
		return nil, nil
	}
	vecs, err := e.embedder.Embed(ctx, []string{query})
	if err != nil {
		return nil, err
	}
	hits, err := e.vec.Search(ctx, collectionFor(kind), vecs[0], &vector.SearchOptions{TopK: e.opts.TopK})
	if err != nil {
		return nil, err
	}
	out := make([]Result, 0, len(hits))
	for _, h := range hits {
		out = append(out, Result{ItemID: h.ID, Score: h.Score, Source: SourceSemantic, Metadata: h.Metadata})
	}
	return out, nil
}

func (e *Engine) keyword(ctx context.Context, query, kind string) ([]Result, error) {
	switch kind {
	case KindKnowledge:
		if e.knowledge == nil {
			return nil, nil
		}
		articles, err := e.knowledge.SearchArticles(ctx, query, e.opts.TopK)
		if err != nil {
			return nil, err
		}
		out := make([]Result, 0, len(articles))
		for _, a := range articles {
			out = append(out, Result{
				ItemID: a.ID,
				Source: SourceKeyword,
				Metadata: map[string]string{
					"title": a.Title,
					"topic": a.Topic,
				},
			})
		}
		return out, nil
	default:
		if e.catalog == nil {
			return nil, nil
		}
		products, err := e.catalog.SearchProducts(ctx, query, e.opts.TopK)
		if err != nil {
			return nil, err
		}
		out := make([]Result, 0, len(products))
		for _, p := range products {
			out = append(out, Result{
				ItemID: p.ID,
				Source: SourceKeyword,
				Metadata: map[string]string{
					"name":     p.Name,
					"category": p.Category,
					"price":    strconv.FormatFloat(p.Price, 'f', 2, 64),
				},
			})
		}
		return out, nil
	}
}

func collectionFor(kind string) string {
	if kind == KindKnowledge {
		return CollectionKnowledge
	}
	return CollectionProducts
}
