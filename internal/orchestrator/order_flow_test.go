package orchestrator

import (
	"strings"
	"testing"
)

func TestOrderFlow_StageProgression(t *testing.T) {
	f := NewOrderFlow()
	if f.Stage() != StageCollectProduct {
		t.Errorf("empty flow: got %s", f.Stage())
	}

	f.Merge(map[string]any{"product_id": "p-1", "quantity": 2, "size": "M", "color": "blue"})
	if f.Stage() != StageCollectCustomerInfo {
		t.Errorf("product fields complete: got %s", f.Stage())
	}

	f.Merge(map[string]any{"customer_name": "Ann Lee", "phone": "555-0101", "address": "1 Main St"})
	if f.Stage() != StageCreate {
		t.Errorf("all fields complete: got %s", f.Stage())
	}
	if len(f.Missing()) != 0 {
		t.Errorf("missing: %v", f.Missing())
	}

	f.MarkCreated(map[string]string{"order_id": "o-1", "total": "179.80"})
	if f.Stage() != StageConfirm {
		t.Errorf("after creation: got %s", f.Stage())
	}
}

func TestOrderFlow_MergeIgnoresEmptyValues(t *testing.T) {
	f := NewOrderFlow()
	f.Merge(map[string]any{"product_id": "p-1", "size": "M"})
	// 空值与零值不得覆盖已知字段
	f.Merge(map[string]any{"product_id": "", "size": nil, "quantity": 0})
	if f.Fields["product_id"] != "p-1" || f.Fields["size"] != "M" {
		t.Errorf("fields clobbered: %+v", f.Fields)
	}
	if f.Fields["quantity"] != "" {
		t.Errorf("zero quantity should not be recorded: %+v", f.Fields)
	}
}

func TestOrderFlow_Guidance(t *testing.T) {
	f := NewOrderFlow()
	if f.Guidance() != "" {
		t.Error("empty flow should render no guidance")
	}

	f.Merge(map[string]any{"product_id": "p-1", "quantity": 1, "size": "M", "color": "blue"})
	g := f.Guidance()
	if !strings.Contains(g, "customer_name") || !strings.Contains(g, "phone") {
		t.Errorf("guidance should name missing fields: %q", g)
	}
	if strings.Contains(g, "create_order now") {
		t.Error("incomplete flow must not instruct to create the order")
	}

	f.Merge(map[string]any{"customer_name": "Ann Lee", "phone": "555-0101", "address": "1 Main St"})
	if !strings.Contains(f.Guidance(), "create_order now") {
		t.Errorf("complete flow should instruct creation: %q", f.Guidance())
	}

	f.MarkCreated(map[string]string{"order_id": "o-1"})
	g = f.Guidance()
	if !strings.Contains(g, "do not create it again") || !strings.Contains(g, "o-1") {
		t.Errorf("confirm guidance: %q", g)
	}
}
