package conversation

import (
	"context"
	"fmt"
	"testing"

	"github.com/cloudwego/eino/schema"
)

func TestMemoryHistory_AppendAndGet(t *testing.T) {
	ctx := context.Background()
	h := NewMemoryHistory(10)

	err := h.Append(ctx, "cust-1",
		schema.UserMessage("hello"),
		schema.AssistantMessage("hi there", nil),
	)
	if err != nil {
		t.Fatalf("Append: %v", err)
	}

	msgs, err := h.Get(ctx, "cust-1", 0)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if len(msgs) != 2 {
		t.Fatalf("messages: got %d", len(msgs))
	}
	if msgs[0].Role != schema.User || msgs[1].Role != schema.Assistant {
		t.Errorf("order: %v %v", msgs[0].Role, msgs[1].Role)
	}

	msgs, _ = h.Get(ctx, "cust-2", 0)
	if len(msgs) != 0 {
		t.Errorf("unknown customer should have no history")
	}
}

func TestMemoryHistory_TrimsToMaxLen(t *testing.T) {
	ctx := context.Background()
	h := NewMemoryHistory(3)

	for i := 0; i < 5; i++ {
		if err := h.Append(ctx, "cust-1", schema.UserMessage(fmt.Sprintf("m%d", i))); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}

	msgs, err := h.Get(ctx, "cust-1", 0)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if len(msgs) != 3 {
		t.Fatalf("trim: got %d messages", len(msgs))
	}
	if msgs[0].Content != "m2" || msgs[2].Content != "m4" {
		t.Errorf("should keep the most recent: %s..%s", msgs[0].Content, msgs[2].Content)
	}
}

func TestMemoryHistory_GetLimit_And_Clear(t *testing.T) {
	ctx := context.Background()
	h := NewMemoryHistory(10)
	for i := 0; i < 4; i++ {
		_ = h.Append(ctx, "cust-1", schema.UserMessage(fmt.Sprintf("m%d", i)))
	}

	msgs, _ := h.Get(ctx, "cust-1", 2)
	if len(msgs) != 2 || msgs[1].Content != "m3" {
		t.Errorf("limit: %+v", msgs)
	}

	if err := h.Clear(ctx, "cust-1"); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	msgs, _ = h.Get(ctx, "cust-1", 0)
	if len(msgs) != 0 {
		t.Errorf("Clear should remove history")
	}
}
