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

package vector

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"
)

// MemoryStore 内存向量存储实现
type MemoryStore struct {
	collections map[string]*collection
	mu          sync.RWMutex
}

// collection 内存集合
type collection struct {
	meta      *Collection
	vectors   map[string]*Vector
	dimension int
}

// NewMemoryStore 创建新的内存向量存储
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		collections: make(map[string]*collection),
	}
}

// Create 创建向量集合
func (s *MemoryStore) Create(ctx context.Context, c *Collection) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.collections[c.Name]; exists {
		return fmt.Errorf("collection %s already exists", c.Name)
	}

	s.collections[c.Name] = &collection{
		meta:      c,
		vectors:   make(map[string]*Vector),
		dimension: c.Dimension,
	}

	return nil
}

// Add 添加向量
func (s *MemoryStore) Add(ctx context.Context, name string, vectors []*Vector) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, exists := s.collections[name]
	if !exists {
		return fmt.Errorf("collection %s not found", name)
	}

	for _, vector := range vectors {
		if len(vector.Values) != c.dimension {
			return fmt.Errorf("vector dimension %d does not match collection dimension %d", len(vector.Values), c.dimension)
		}
		c.vectors[vector.ID] = vector
	}

	return nil
}

// Search 相似度搜索
func (s *MemoryStore) Search(ctx context.Context, name string, query []float64, options *SearchOptions) ([]*SearchResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, exists := s.collections[name]
	if !exists {
		return nil, fmt.Errorf("collection %s not found", name)
	}

	if len(query) != c.dimension {
		return nil, fmt.Errorf("query dimension %d does not match collection dimension %d", len(query), c.dimension)
	}

	if options == nil {
		options = &SearchOptions{TopK: 10}
	}

	var results []*SearchResult
	for id, vector := range c.vectors {
		if len(options.Filter) > 0 {
			match := true
			for key, value := range options.Filter {
				if vector.Metadata == nil || vector.Metadata[key] != value {
					match = false
					break
				}
			}
			if !match {
				continue
			}
		}

		score := similarity(query, vector.Values, c.meta.Distance)
		if score < options.Threshold {
			continue
		}

		results = append(results, &SearchResult{
			ID:       id,
			Score:    score,
			Metadata: vector.Metadata,
		})
	}

	// 按相似度排序
	sort.Slice(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if options.TopK > 0 && len(results) > options.TopK {
		results = results[:options.TopK]
	}

	return results, nil
}

// ListCollections 列出所有集合
func (s *MemoryStore) ListCollections(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var names []string
	for name := range s.collections {
		names = append(names, name)
	}
	return names, nil
}

// Close 关闭存储连接
func (s *MemoryStore) Close() error {
	return nil
}

// similarity 按距离度量计算相似度
func similarity(query, vector []float64, distance string) float64 {
	switch distance {
	case "euclidean":
		return 1.0 / (1.0 + euclideanDistance(query, vector))
	default:
		return cosineSimilarity(query, vector)
	}
}

// cosineSimilarity 计算余弦相似度
func cosineSimilarity(a, b []float64) float64 {
	if len(a) != len(b) {
		return 0.0
	}

	dotProduct := 0.0
	normA := 0.0
	normB := 0.0
	for i := range a {
		dotProduct += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0.0
	}
	return dotProduct / (math.Sqrt(normA) * math.Sqrt(normB))
}

// euclideanDistance 计算欧几里得距离
func euclideanDistance(a, b []float64) float64 {
	if len(a) != len(b) {
		return 0.0
	}

	sum := 0.0
	for i := range a {
		diff := a[i] - b[i]
		sum += diff * diff
	}
	return math.Sqrt(sum)
}
