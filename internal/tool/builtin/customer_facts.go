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

	"chat-platform/internal/memory"
	"chat-platform/internal/tool"
	apperrors "chat-platform/pkg/errors"
)

// CustomerFactsTool 实现 customer_facts：读取客户长期记忆
type CustomerFactsTool struct {
	bank *memory.Bank
}

// NewCustomerFactsTool 创建 customer_facts 工具
func NewCustomerFactsTool(bank *memory.Bank) *CustomerFactsTool {
	return &CustomerFactsTool{bank: bank}
}

// Name 实现 tool.Tool
func (t *CustomerFactsTool) Name() string { return "customer_facts" }

// Description 实现 tool.Tool
func (t *CustomerFactsTool) Description() string {
	return "Retrieve remembered facts about a customer (preferences, constraints, personal info)."
}

// Schema 实现 tool.Tool
func (t *CustomerFactsTool) Schema() tool.Schema {
	return tool.Schema{
		Type: "object",
		Properties: map[string]tool.SchemaProperty{
			"customer_id": {Type: "string", Description: "客户 ID"},
		},
		Required: []string{"customer_id"},
	}
}

// Execute 实现 tool.Tool
func (t *CustomerFactsTool) Execute(ctx context.Context, input map[string]any) tool.Result {
	customerID, _ := input["customer_id"].(string)
	facts, err := t.bank.Load(ctx, customerID)
	if err != nil {
		return tool.Fail(apperrors.KindUpstream, err.Error())
	}
	if len(facts) == 0 {
		return tool.OkEmpty()
	}
	items := make([]map[string]any, 0, len(facts))
	for _, f := range facts {
		items = append(items, map[string]any{
			"fact_type":  f.FactType,
			"fact_key":   f.FactKey,
			"fact_value": f.FactValue,
			"confidence": f.Confidence,
			"source":     f.Source,
		})
	}
	return tool.Ok(map[string]any{"facts": items})
}
