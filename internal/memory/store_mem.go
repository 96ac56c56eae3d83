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

package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	apperrors "chat-platform/pkg/errors"
)

type memStore struct {
	mu    sync.RWMutex
	facts map[string]map[string]CustomerFact // customerID -> factKey -> fact
	now   func() time.Time
}

// NewStoreMem 创建内存版事实存储
func NewStoreMem() Store {
	return &memStore{
		facts: make(map[string]map[string]CustomerFact),
		now:   time.Now,
	}
}

func (s *memStore) Upsert(ctx context.Context, fact *CustomerFact) error {
	if err := fact.Validate(); err != nil {
		return apperrors.Classify(apperrors.KindValidation, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.facts[fact.CustomerID] == nil {
		s.facts[fact.CustomerID] = make(map[string]CustomerFact)
	}
	f := *fact
	f.UpdatedAt = s.now()
	s.facts[fact.CustomerID][fact.FactKey] = f
	return nil
}

func (s *memStore) ListByCustomer(ctx context.Context, customerID string, limit int) ([]CustomerFact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	byKey, ok := s.facts[customerID]
	if !ok {
		return nil, nil
	}
	out := make([]CustomerFact, 0, len(byKey))
	for _, f := range byKey {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *memStore) Get(ctx context.Context, customerID, factKey string) (*CustomerFact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	byKey, ok := s.facts[customerID]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	f, ok := byKey[factKey]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	out := f
	return &out, nil
}

func (s *memStore) Delete(ctx context.Context, customerID, factKey string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if byKey, ok := s.facts[customerID]; ok {
		delete(byKey, factKey)
	}
	return nil
}

func (s *memStore) Close() {}
