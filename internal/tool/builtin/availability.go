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

// AvailabilityTool 实现 check_availability：指定商品/颜色/尺码的库存查询
type AvailabilityTool struct {
	catalog commerce.Catalog
}

// NewAvailabilityTool 创建 check_availability 工具
func NewAvailabilityTool(catalog commerce.Catalog) *AvailabilityTool {
	return &AvailabilityTool{catalog: catalog}
}

// Name 实现 tool.Tool
func (t *AvailabilityTool) Name() string { return "check_availability" }

// Description 实现 tool.Tool
func (t *AvailabilityTool) Description() string {
	return "Check whether a product is in stock, optionally for a specific color and size."
}

// Schema 实现 tool.Tool
func (t *AvailabilityTool) Schema() tool.Schema {
	return tool.Schema{
		Type: "object",
		Properties: map[string]tool.SchemaProperty{
			"product_id": {Type: "string", Description: "商品 ID"},
			"color":      {Type: "string", Description: "颜色，可选"},
			"size":       {Type: "string", Description: "尺码，可选"},
		},
		Required: []string{"product_id"},
	}
}

// Execute 实现 tool.Tool
func (t *AvailabilityTool) Execute(ctx context.Context, input map[string]any) tool.Result {
	productID, _ := input["product_id"].(string)
	color, _ := input["color"].(string)
	size, _ := input["size"].(string)

	p, err := t.catalog.GetProduct(ctx, productID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return tool.OkEmpty()
		}
		return tool.Fail(apperrors.KindUpstream, err.Error())
	}
	available := p.Stock > 0 && p.HasVariant(color, size)
	return tool.Ok(map[string]any{
		"product_id": p.ID,
		"name":       p.Name,
		"available":  available,
		"stock":      p.Stock,
		"colors":     p.Colors,
		"sizes":      p.Sizes,
	})
}
