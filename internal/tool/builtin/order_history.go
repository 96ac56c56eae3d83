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

	"chat-platform/internal/commerce"
	"chat-platform/internal/tool"
	apperrors "chat-platform/pkg/errors"
)

// OrderHistoryTool 实现 order_history：客户历史订单列表
type OrderHistoryTool struct {
	orders commerce.Orders
}

// NewOrderHistoryTool 创建 order_history 工具
func NewOrderHistoryTool(orders commerce.Orders) *OrderHistoryTool {
	return &OrderHistoryTool{orders: orders}
}

// Name 实现 tool.Tool
func (t *OrderHistoryTool) Name() string { return "order_history" }

// Description 实现 tool.Tool
func (t *OrderHistoryTool) Description() string {
	return "List a customer's past orders, most recent first."
}

// Schema 实现 tool.Tool
func (t *OrderHistoryTool) Schema() tool.Schema {
	return tool.Schema{
		Type: "object",
		Properties: map[string]tool.SchemaProperty{
			"customer_id": {Type: "string", Description: "客户 ID"},
			"limit":       {Type: "integer", Description: "返回条数，默认 10"},
		},
		Required: []string{"customer_id"},
	}
}

// Execute 实现 tool.Tool
func (t *OrderHistoryTool) Execute(ctx context.Context, input map[string]any) tool.Result {
	customerID, _ := input["customer_id"].(string)
	limit := integer(input, "limit")
	if limit <= 0 {
		limit = 10
	}
	orders, err := t.orders.ListOrders(ctx, customerID, limit)
	if err != nil {
		return tool.Fail(apperrors.KindUpstream, err.Error())
	}
	if len(orders) == 0 {
		return tool.OkEmpty()
	}
	items := make([]map[string]any, 0, len(orders))
	for _, o := range orders {
		items = append(items, map[string]any{
			"order_id":   o.ID,
			"status":     o.Status,
			"product_id": o.ProductID,
			"total":      o.Total,
			"created_at": o.CreatedAt,
		})
	}
	return tool.Ok(map[string]any{"orders": items})
}
