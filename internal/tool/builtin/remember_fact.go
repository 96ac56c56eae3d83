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

// RememberFactTool 实现 remember_fact：会话中途显式记录客户事实
type RememberFactTool struct {
	bank *memory.Bank
}

// NewRememberFactTool 创建 remember_fact 工具
func NewRememberFactTool(bank *memory.Bank) *RememberFactTool {
	return &RememberFactTool{bank: bank}
}

// Name 实现 tool.Tool
func (t *RememberFactTool) Name() string { return "remember_fact" }

// Description 实现 tool.Tool
func (t *RememberFactTool) Description() string {
	return "Save a fact the customer stated explicitly (preference, constraint, or personal info) for future conversations."
}

// Schema 实现 tool.Tool
func (t *RememberFactTool) Schema() tool.Schema {
	return tool.Schema{
		Type: "object",
		Properties: map[string]tool.SchemaProperty{
			"customer_id": {Type: "string", Description: "客户 ID"},
			"fact_type":   {Type: "string", Description: "preference / constraint / personal_info"},
			"fact_key":    {Type: "string", Description: "事实键，如 preferred_size"},
			"fact_value":  {Type: "string", Description: "事实值"},
		},
		Required: []string{"customer_id", "fact_type", "fact_key", "fact_value"},
	}
}

// Execute 实现 tool.Tool
func (t *RememberFactTool) Execute(ctx context.Context, input map[string]any) tool.Result {
	factType, _ := input["fact_type"].(string)
	customerID, _ := input["customer_id"].(string)
	factKey, _ := input["fact_key"].(string)
	factValue, _ := input["fact_value"].(string)

	fact := &memory.CustomerFact{
		CustomerID: customerID,
		FactType:   factType,
		FactKey:    factKey,
		FactValue:  factValue,
		Confidence: 100,
		Source:     memory.SourceExplicit,
	}
	if err := fact.Validate(); err != nil {
		return tool.Fail(apperrors.KindValidation, err.Error())
	}
	if err := t.bank.Upsert(ctx, fact); err != nil {
		return tool.Fail(apperrors.KindUpstream, err.Error())
	}
	return tool.Ok(map[string]any{
		"fact_key":   factKey,
		"fact_value": factValue,
	})
}
