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
	"errors"
	"fmt"

	"chat-platform/internal/commerce"
	"chat-platform/internal/tool"
	apperrors "chat-platform/pkg/errors"
)

// OrderCreateTool 实现 create_order：全部必填字段齐备后落单
type OrderCreateTool struct {
	orders  commerce.Orders
	catalog commerce.Catalog
}

// NewOrderCreateTool 创建 create_order 工具
func NewOrderCreateTool(orders commerce.Orders, catalog commerce.Catalog) *OrderCreateTool {
	return &OrderCreateTool{orders: orders, catalog: catalog}
}

// Name 实现 tool.Tool
func (t *OrderCreateTool) Name() string { return "create_order" }

// Description 实现 tool.Tool
func (t *OrderCreateTool) Description() string {
	return "Create an order. All fields are required; collect any missing ones from the customer before calling."
}

// Schema 实现 tool.Tool
func (t *OrderCreateTool) Schema() tool.Schema {
	return tool.Schema{
		Type: "object",
		Properties: map[string]tool.SchemaProperty{
			"customer_id":   {Type: "string", Description: "客户 ID"},
			"product_id":    {Type: "string", Description: "商品 ID"},
			"quantity":      {Type: "integer", Description: "数量"},
			"size":          {Type: "string", Description: "尺码"},
			"color":         {Type: "string", Description: "颜色"},
			"customer_name": {Type: "string", Description: "收件人姓名"},
			"phone":         {Type: "string", Description: "联系电话"},
			"address":       {Type: "string", Description: "收货地址"},
		},
		Required: []string{"customer_id", "product_id", "quantity", "size", "color", "customer_name", "phone", "address"},
	}
}

// Execute 实现 tool.Tool
func (t *OrderCreateTool) Execute(ctx context.Context, input map[string]any) tool.Result {
	o := &commerce.Order{
		CustomerID:   str(input, "customer_id"),
		ProductID:    str(input, "product_id"),
		Quantity:     integer(input, "quantity"),
		Size:         str(input, "size"),
		Color:        str(input, "color"),
		CustomerName: str(input, "customer_name"),
		Phone:        str(input, "phone"),
		Address:      str(input, "address"),
	}
	if missing := o.MissingFields(); len(missing) > 0 {
		return tool.Fail(apperrors.KindValidation, fmt.Sprintf("订单缺少必填字段: %v", missing))
	}

	p, err := t.catalog.GetProduct(ctx, o.ProductID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return tool.Fail(apperrors.KindValidation, fmt.Sprintf("商品不存在: %s", o.ProductID))
		}
		return tool.Fail(apperrors.KindUpstream, err.Error())
	}
	if !p.HasVariant(o.Color, o.Size) {
		return tool.Fail(apperrors.KindValidation, fmt.Sprintf("商品 %s 没有 %s/%s 规格", p.Name, o.Color, o.Size))
	}
	if p.Stock < o.Quantity {
		return tool.Fail(apperrors.KindValidation, fmt.Sprintf("库存不足: 剩余 %d", p.Stock))
	}
	o.Total = p.Price * float64(o.Quantity)

	if err := t.orders.CreateOrder(ctx, o); err != nil {
		return tool.Fail(apperrors.KindOf(err), err.Error())
	}
	return tool.Ok(map[string]any{
		"order_id": o.ID,
		"status":   o.Status,
		"total":    o.Total,
		"currency": p.Currency,
		"product":  p.Name,
		"quantity": o.Quantity,
	})
}

func str(input map[string]any, key string) string {
	s, _ := input[key].(string)
	return s
}

func integer(input map[string]any, key string) int {
	switch v := input[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return 0
	}
}
