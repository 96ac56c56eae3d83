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

import "context"

// Catalog 商品目录
type Catalog interface {
	// SearchProducts 关键词检索（名称/描述/类目模糊匹配）
	SearchProducts(ctx context.Context, query string, limit int) ([]Product, error)
	GetProduct(ctx context.Context, id string) (*Product, error)
	UpsertProduct(ctx context.Context, p *Product) error
}

// Orders 订单存储
type Orders interface {
	CreateOrder(ctx context.Context, o *Order) error
	GetOrder(ctx context.Context, id string) (*Order, error)
	// ListOrders 按创建时间降序
	ListOrders(ctx context.Context, customerID string, limit int) ([]Order, error)
	UpdateOrderStatus(ctx context.Context, id, status string) error
}

// Knowledge 知识库
type Knowledge interface {
	SearchArticles(ctx context.Context, query string, limit int) ([]Article, error)
	UpsertArticle(ctx context.Context, a *Article) error
}

// Store 聚合接口，pg 与内存实现均满足
type Store interface {
	Catalog
	Orders
	Knowledge
	Close()
}
