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

package commerce

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	apperrors "chat-platform/pkg/errors"
)

// MemoryStore 内存实现，开发与测试用
type MemoryStore struct {
	mu       sync.RWMutex
	products map[string]Product
	orders   map[string]Order
	articles map[string]Article
	now      func() time.Time
}

// NewMemoryStore 创建内存商城存储
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		products: make(map[string]Product),
		orders:   make(map[string]Order),
		articles: make(map[string]Article),
		now:      time.Now,
	}
}

// Close 关闭存储
func (s *MemoryStore) Close() {}

func (s *MemoryStore) SearchProducts(ctx context.Context, query string, limit int) ([]Product, error) {
	if limit <= 0 {
		limit = 10
	}
	q := strings.ToLower(query)
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Product
	for _, p := range s.products {
		hay := strings.ToLower(p.Name + " " + p.Description + " " + p.Category)
		if strings.Contains(hay, q) {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *MemoryStore) GetProduct(ctx context.Context, id string) (*Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.products[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	out := p
	return &out, nil
}

func (s *MemoryStore) UpsertProduct(ctx context.Context, p *Product) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products[p.ID] = *p
	return nil
}

func (s *MemoryStore) CreateOrder(ctx context.Context, o *Order) error {
	if err := o.Validate(); err != nil {
		return apperrors.Classify(apperrors.KindValidation, err)
	}
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	if o.Status == "" {
		o.Status = OrderStatusCreated
	}
	now := s.now()
	o.CreatedAt = now
	o.UpdatedAt = now
	s.mu.Lock()
	defer s.mu.Unlock()
	s.orders[o.ID] = *o
	return nil
}

func (s *MemoryStore) GetOrder(ctx context.Context, id string) (*Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	o, ok := s.orders[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	out := o
	return &out, nil
}

func (s *MemoryStore) ListOrders(ctx context.Context, customerID string, limit int) ([]Order, error) {
	if limit <= 0 {
		limit = 20
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Order
	for _, o := range s.orders {
		if o.CustomerID == customerID {
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *MemoryStore) UpdateOrderStatus(ctx context.Context, id, status string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	if !ok {
		return apperrors.ErrNotFound
	}
	o.Status = status
	o.UpdatedAt = s.now()
	s.orders[id] = o
	return nil
}

func (s *MemoryStore) SearchArticles(ctx context.Context, query string, limit int) ([]Article, error) {
	if limit <= 0 {
		limit = 5
	}
	q := strings.ToLower(query)
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Article
	for _, a := range s.articles {
		hay := strings.ToLower(a.Title + " " + a.Body + " " + a.Topic)
		if strings.Contains(hay, q) {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Title < out[j].Title })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *MemoryStore) UpsertArticle(ctx context.Context, a *Article) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.articles[a.ID] = *a
	return nil
}
