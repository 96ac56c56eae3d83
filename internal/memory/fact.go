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

// Package memory 客户长期记忆：跨会话持久化客户事实（偏好、约束、个人信息），
// 对话开始时加载注入上下文，结束时抽取回写。
package memory

import (
	"fmt"
	"time"
)

// 事实类型
const (
	FactTypePreference   = "preference"
	FactTypeConstraint   = "constraint"
	FactTypePersonalInfo = "personal_info"
)

// 事实来源：客户明示 vs 模型推断
const (
	SourceExplicit = "explicit"
	SourceInferred = "inferred"
)

// CustomerFact 单条客户事实，(customer_id, fact_key) 唯一
type CustomerFact struct {
	CustomerID string    `json:"customer_id"`
	FactType   string    `json:"fact_type"`
	FactKey    string    `json:"fact_key"`
	FactValue  string    `json:"fact_value"`
	Confidence int       `json:"confidence"`
	Source     string    `json:"source"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Validate 校验事实字段
func (f *CustomerFact) Validate() error {
	if f.CustomerID == "" {
		return fmt.Errorf("customer_id 不能为空")
	}
	if f.FactKey == "" {
		return fmt.Errorf("fact_key 不能为空")
	}
	switch f.FactType {
	case FactTypePreference, FactTypeConstraint, FactTypePersonalInfo:
	default:
		return fmt.Errorf("未知事实类型: %s", f.FactType)
	}
	switch f.Source {
	case SourceExplicit, SourceInferred:
	default:
		return fmt.Errorf("未知事实来源: %s", f.Source)
	}
	if f.Confidence < 0 || f.Confidence > 100 {
		return fmt.Errorf("confidence 超出范围 [0,100]: %d", f.Confidence)
	}
	return nil
}
