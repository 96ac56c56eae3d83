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

package memory

import "context"

// Store 客户事实存储。Upsert 按 (customer_id, fact_key) 覆盖旧值（last-write-wins）。
type Store interface {
	Upsert(ctx context.Context, fact *CustomerFact) error
	// ListByCustomer 按 updated_at 降序返回，limit<=0 不截断
	ListByCustomer(ctx context.Context, customerID string, limit int) ([]CustomerFact, error)
	Get(ctx context.Context, customerID, factKey string) (*CustomerFact, error)
	Delete(ctx context.Context, customerID, factKey string) error
	Close()
}
