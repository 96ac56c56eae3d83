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

package orchestrator

import (
	"fmt"
	"sort"
	"strings"
)

// 下单子流程阶段
const (
	StageCollectProduct      = "COLLECT_PRODUCT"
	StageCollectCustomerInfo = "COLLECT_CUSTOMER_INFO"
	StageCreate              = "CREATE"
	StageConfirm             = "CONFIRM"
)

// 订单工具名，代理循环与流程推进共用
const (
	toolCreateOrder = "create_order"
	toolOrderStatus = "order_status"
)

var productFields = []string{"product_id", "quantity", "size", "color"}
var customerFields = []string{"customer_name", "phone", "address"}

// OrderFlow 跨轮次的下单进度。字段逐轮累积，订单创建后携带创建结果进入确认阶段。
type OrderFlow struct {
	Fields  map[string]string `json:"fields"`
	Created bool              `json:"created"`
	// Creation 创建成功的关键信息（order_id/total 等），供确认话术引用
	Creation map[string]string `json:"creation,omitempty"`
}

// NewOrderFlow 创建空的下单进度
func NewOrderFlow() *OrderFlow {
	return &OrderFlow{Fields: make(map[string]string)}
}

// Merge 吸收一次 create_order 调用的参数；空值不覆盖已知值
func (f *OrderFlow) Merge(input map[string]any) {
	if f.Fields == nil {
		f.Fields = make(map[string]string)
	}
	for _, key := range append(append([]string{}, productFields...), customerFields...) {
		v, ok := input[key]
		if !ok || v == nil {
			continue
		}
		s := strings.TrimSpace(fmt.Sprint(v))
		if s == "" || s == "0" {
			continue
		}
		f.Fields[key] = s
	}
}

// MarkCreated 记录订单创建成功，流程进入确认阶段
func (f *OrderFlow) MarkCreated(creation map[string]string) {
	f.Created = true
	f.Creation = creation
}

// Stage 当前阶段
func (f *OrderFlow) Stage() string {
	if f.Created {
		return StageConfirm
	}
	if len(f.missingOf(productFields)) > 0 {
		return StageCollectProduct
	}
	if len(f.missingOf(customerFields)) > 0 {
		return StageCollectCustomerInfo
	}
	return StageCreate
}

// Missing 全部缺失字段，排序稳定
func (f *OrderFlow) Missing() []string {
	missing := append(f.missingOf(productFields), f.missingOf(customerFields)...)
	sort.Strings(missing)
	return missing
}

func (f *OrderFlow) missingOf(keys []string) []string {
	var missing []string
	for _, k := range keys {
		if f.Fields[k] == "" {
			missing = append(missing, k)
		}
	}
	return missing
}

// Guidance 渲染注入销售代理系统提示的进度说明；空流程返回空串
func (f *OrderFlow) Guidance() string {
	if len(f.Fields) == 0 && !f.Created {
		return ""
	}
	var b strings.Builder
	b.WriteString("Order in progress.\n")
	if f.Created {
		b.WriteString("The order has been created. Confirm the details back to the customer; do not create it again.\n")
		for k, v := range f.Creation {
			fmt.Fprintf(&b, "- %s: %s\n", k, v)
		}
		return b.String()
	}
	keys := make([]string, 0, len(f.Fields))
	for k := range f.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	b.WriteString("Known fields:\n")
	for _, k := range keys {
		fmt.Fprintf(&b, "- %s: %s\n", k, f.Fields[k])
	}
	if missing := f.Missing(); len(missing) > 0 {
		fmt.Fprintf(&b, "Still needed before creating the order: %s.\n", strings.Join(missing, ", "))
		b.WriteString("Ask the customer for the missing fields. Do not call create_order until all of them are known.\n")
	} else {
		b.WriteString("All required fields are known. Call create_order now.\n")
	}
	return b.String()
}
