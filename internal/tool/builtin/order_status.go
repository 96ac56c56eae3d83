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

	"chat-platform/internal/commerce"
	"chat-platform/internal/tool"
	apperrors "chat-platform/pkg/errors"
)

// OrderStatusTool 实现 order_status：按订单号查询状态
type OrderStatusTool struct {
	orders commerce.Orders
}

// NewOrderStatusTool 创建 order_status 工具
func NewOrderStatusTool(orders commerce.Orders) *OrderStatusTool {
	return &OrderStatusTool{orders: orders}
}

// Name 实现 tool.Tool
func (t *OrderStatusTool) Name() string { return "order_status" }

// Description 实现 tool.Tool
func (t *OrderStatusTool) Description() string {
	return "Look up the current status of an order by its id."
}

// Schema 实现 tool.Tool
func (t *OrderStatusTool) Schema() tool.Schema {
	return tool.Schema{
		Type: "object",
		Properties: map[string]tool.SchemaProperty{
			"order_id": {Type: "string", Description: "订单 ID"},
		},
		Required: []string{"order_id"},
	}
}

// Execute 实现 tool.Tool
func (t *OrderStatusTool) Execute(ctx context.Context, input map[string]any) tool.Result {
	orderID, _ := input["order_id"].(string)
	o, err := t.orders.GetOrder(ctx, orderID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return tool.OkEmpty()
		}
		return tool.Fail(apperrors.KindUpstream, err.Error())
	}
	return tool.Ok(map[string]any{
		"order_id":   o.ID,
		"status":     o.Status,
		"product_id": o.ProductID,
		"quantity":   o.Quantity,
		"total":      o.Total,
		"created_at": o.CreatedAt,
	})
}
