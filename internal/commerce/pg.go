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
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	apperrors "chat-platform/pkg/errors"
)

// StorePg Postgres 实现
type StorePg struct {
	pool *pgxpool.Pool
}

// NewStorePg 创建基于 PostgreSQL 的商城存储
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

func (s *StorePg) SearchProducts(ctx context.Context, query string, limit int) ([]Product, error) {
	if limit <= 0 {
		limit = 10
	}
	pattern := "%" + query + "%"
	rows, err := s.pool.Query(ctx,
		`SELECT id, name, description, category, colors, sizes, price, currency, stock
		 FROM products
		 WHERE name ILIKE $1 OR description ILIKE $1 OR category ILIKE $1
		 ORDER BY name LIMIT $2`,
		pattern, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Product
	for rows.Next() {
		var p Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.Category, &p.Colors, &p.Sizes, &p.Price, &p.Currency, &p.Stock); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *StorePg) GetProduct(ctx context.Context, id string) (*Product, error) {
	var p Product
	err := s.pool.QueryRow(ctx,
		`SELECT id, name, description, category, colors, sizes, price, currency, stock
		 FROM products WHERE id = $1`, id).
		Scan(&p.ID, &p.Name, &p.Description, &p.Category, &p.Colors, &p.Sizes, &p.Price, &p.Currency, &p.Stock)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (s *StorePg) UpsertProduct(ctx context.Context, p *Product) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	_, err := s.pool.Exec(ctx,
		`INSERT INTO products (id, name, description, category, colors, sizes, price, currency, stock)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 ON CONFLICT (id) DO UPDATE SET
		   name = $2, description = $3, category = $4, colors = $5, sizes = $6,
		   price = $7, currency = $8, stock = $9`,
		p.ID, p.Name, p.Description, p.Category, p.Colors, p.Sizes, p.Price, p.Currency, p.Stock)
	return err
}

func (s *StorePg) CreateOrder(ctx context.Context, o *Order) error {
	if err := o.Validate(); err != nil {
		return apperrors.Classify(apperrors.KindValidation, err)
	}
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	if o.Status == "" {
		o.Status = OrderStatusCreated
	}
	now := time.Now()
	o.CreatedAt = now
	o.UpdatedAt = now
	_, err := s.pool.Exec(ctx,
		`INSERT INTO orders (id, customer_id, product_id, quantity, size, color,
		   customer_name, phone, address, status, total, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $12)`,
		o.ID, o.CustomerID, o.ProductID, o.Quantity, o.Size, o.Color,
		o.CustomerName, o.Phone, o.Address, o.Status, o.Total, now)
	return err
}

func (s *StorePg) GetOrder(ctx context.Context, id string) (*Order, error) {
	var o Order
	err := s.pool.QueryRow(ctx,
		`SELECT id, customer_id, product_id, quantity, size, color,
		   customer_name, phone, address, status, total, created_at, updated_at
		 FROM orders WHERE id = $1`, id).
		Scan(&o.ID, &o.CustomerID, &o.ProductID, &o.Quantity, &o.Size, &o.Color,
			&o.CustomerName, &o.Phone, &o.Address, &o.Status, &o.Total, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &o, nil
}

func (s *StorePg) ListOrders(ctx context.Context, customerID string, limit int) ([]Order, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.pool.Query(ctx,
		`SELECT id, customer_id, product_id, quantity, size, color,
		   customer_name, phone, address, status, total, created_at, updated_at
		 FROM orders WHERE customer_id = $1 ORDER BY created_at DESC LIMIT $2`,
		customerID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Order
	for rows.Next() {
		var o Order
		if err := rows.Scan(&o.ID, &o.CustomerID, &o.ProductID, &o.Quantity, &o.Size, &o.Color,
			&o.CustomerName, &o.Phone, &o.Address, &o.Status, &o.Total, &o.CreatedAt, &o.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

func (s *StorePg) UpdateOrderStatus(ctx context.Context, id, status string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE orders SET status = $2, updated_at = now() WHERE id = $1`, id, status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (s *StorePg) SearchArticles(ctx context.Context, query string, limit int) ([]Article, error) {
	if limit <= 0 {
		limit = 5
	}
	pattern := "%" + query + "%"
	rows, err := s.pool.Query(ctx,
		`SELECT id, topic, title, body FROM knowledge_articles
		 WHERE title ILIKE $1 OR body ILIKE $1 OR topic ILIKE $1
		 ORDER BY title LIMIT $2`,
		pattern, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Article
	for rows.Next() {
		var a Article
		if err := rows.Scan(&a.ID, &a.Topic, &a.Title, &a.Body); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *StorePg) UpsertArticle(ctx context.Context, a *Article) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	_, err := s.pool.Exec(ctx,
		`INSERT INTO knowledge_articles (id, topic, title, body)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (id) DO UPDATE SET topic = $2, title = $3, body = $4`,
		a.ID, a.Topic, a.Title, a.Body)
	return err
}
