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

// Package commerce 商品目录、订单与知识库的领域模型及存储。
package commerce

import (
	"fmt"
	"strings"
	"time"
)

// 订单状态
const (
	OrderStatusCreated   = "created"
	OrderStatusPaid      = "paid"
	OrderStatusShipped   = "shipped"
	OrderStatusDelivered = "delivered"
	OrderStatusCancelled = "cancelled"
)

// Product 商品
type Product struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Category    string   `json:"category"`
	Colors      []string `json:"colors"`
	Sizes       []string `json:"sizes"`
	Price       float64  `json:"price"`
	Currency    string   `json:"currency"`
	Stock       int      `json:"stock"`
}

// HasVariant 商品是否提供指定颜色/尺码；空串表示不限定
func (p *Product) HasVariant(color, size string) bool {
	if color != "" && !containsFold(p.Colors, color) {
		return false
	}
	if size != "" && !containsFold(p.Sizes, size) {
		return false
	}
	return true
}

// Order 订单。CustomerID 来自本轮请求；创建前 7 个必填字段必须齐备，
// total 由目录单价 × 数量得出，不参与收集。
type Order struct {
	ID           string    `json:"id"`
	CustomerID   string    `json:"customer_id"`
	ProductID    string    `json:"product_id"`
	Quantity     int       `json:"quantity"`
	Size         string    `json:"size"`
	Color        string    `json:"color"`
	CustomerName string    `json:"customer_name"`
	Phone        string    `json:"phone"`
	Address      string    `json:"address"`
	Status       string    `json:"status"`
	Total        float64   `json:"total"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Validate 校验订单必填字段；返回首个缺失字段名
func (o *Order) Validate() error {
	missing := o.MissingFields()
	if len(missing) > 0 {
		return fmt.Errorf("订单缺少必填字段: %v", missing)
	}
	return nil
}

// MissingFields 返回全部缺失的必填字段名
func (o *Order) MissingFields() []string {
	var missing []string
	if o.ProductID == "" {
		missing = append(missing, "product_id")
	}
	if o.Quantity <= 0 {
		missing = append(missing, "quantity")
	}
	if o.Size == "" {
		missing = append(missing, "size")
	}
	if o.Color == "" {
		missing = append(missing, "color")
	}
	if o.CustomerName == "" {
		missing = append(missing, "customer_name")
	}
	if o.Phone == "" {
		missing = append(missing, "phone")
	}
	if o.Address == "" {
		missing = append(missing, "address")
	}
	return missing
}

// Article 知识库条目（退换货政策、配送说明等固定话术）
type Article struct {
	ID    string `json:"id"`
	Topic string `json:"topic"`
	Title string `json:"title"`
	Body  string `json:"body"`
}

func containsFold(list []string, want string) bool {
	for _, v := range list {
		if strings.EqualFold(v, want) {
			return true
		}
	}
	return false
}
