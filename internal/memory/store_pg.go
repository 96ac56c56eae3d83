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
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	apperrors "chat-platform/pkg/errors"
)

// StorePg Postgres 实现
type StorePg struct {
	pool *pgxpool.Pool
}

// NewStorePg 创建基于 PostgreSQL 的事实存储
func NewStorePg(ctx context.Context, dsn string) (*StorePg, error) {
	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, err
	}
	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return &StorePg{pool: pool}, nil
}

// NewStorePgWithPool 复用已有连接池
func NewStorePgWithPool(pool *pgxpool.Pool) *StorePg {
	return &StorePg{pool: pool}
}

// Close 关闭连接池
func (s *StorePg) Close() {
	s.pool.Close()
}

func (s *StorePg) Upsert(ctx context.Context, fact *CustomerFact) error {
	if err := fact.Validate(); err != nil {
		return apperrors.Classify(apperrors.KindValidation, err)
	}
	_, err := s.pool.Exec(ctx,
		`INSERT INTO customer_facts (customer_id, fact_type, fact_key, fact_value, confidence, source, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, now())
		 ON CONFLICT (customer_id, fact_key)
		 DO UPDATE SET fact_type = $2, fact_value = $4, confidence = $5, source = $6, updated_at = now()`,
		fact.CustomerID, fact.FactType, fact.FactKey, fact.FactValue, fact.Confidence, fact.Source)
	return err
}

func (s *StorePg) ListByCustomer(ctx context.Context, customerID string, limit int) ([]CustomerFact, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.pool.Query(ctx,
		`SELECT customer_id, fact_type, fact_key, fact_value, confidence, source, updated_at
		 FROM customer_facts WHERE customer_id = $1 ORDER BY updated_at DESC LIMIT $2`,
		customerID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []CustomerFact
	for rows.Next() {
		var f CustomerFact
		if err := rows.Scan(&f.CustomerID, &f.FactType, &f.FactKey, &f.FactValue, &f.Confidence, &f.Source, &f.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

func (s *StorePg) Get(ctx context.Context, customerID, factKey string) (*CustomerFact, error) {
	var f CustomerFact
	err := s.pool.QueryRow(ctx,
		`SELECT customer_id, fact_type, fact_key, fact_value, confidence, source, updated_at
		 FROM customer_facts WHERE customer_id = $1 AND fact_key = $2`,
		customerID, factKey).Scan(&f.CustomerID, &f.FactType, &f.FactKey, &f.FactValue, &f.Confidence, &f.Source, &f.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &f, nil
}

func (s *StorePg) Delete(ctx context.Context, customerID, factKey string) error {
	_, err := s.pool.Exec(ctx,
		`DELETE FROM customer_facts WHERE customer_id = $1 AND fact_key = $2`,
		customerID, factKey)
	return err
}
