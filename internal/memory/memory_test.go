package memory

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/cloudwego/eino/schema"

	"chat-platform/internal/model/llm"
	apperrors "chat-platform/pkg/errors"
)

func TestStoreMem_Upsert_LastWriteWins(t *testing.T) {
	ctx := context.Background()
	s := NewStoreMem()

	first := &CustomerFact{
		CustomerID: "cust-1", FactType: FactTypePreference,
		FactKey: "shirt_size", FactValue: "M", Confidence: 90, Source: SourceExplicit,
	}
	if err := s.Upsert(ctx, first); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	second := &CustomerFact{
		CustomerID: "cust-1", FactType: FactTypePreference,
		FactKey: "shirt_size", FactValue: "L", Confidence: 95, Source: SourceExplicit,
	}
	if err := s.Upsert(ctx, second); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	facts, err := s.ListByCustomer(ctx, "cust-1", 0)
	if err != nil {
		t.Fatalf("ListByCustomer: %v", err)
	}
	if len(facts) != 1 {
		t.Fatalf("same fact_key should keep one row, got %d", len(facts))
	}
	if facts[0].FactValue != "L" {
		t.Errorf("fact_value: got %q, want last write", facts[0].FactValue)
	}
}

func TestStoreMem_Upsert_Validation(t *testing.T) {
	ctx := context.Background()
	s := NewStoreMem()

	bad := &CustomerFact{CustomerID: "cust-1", FactType: "mood", FactKey: "k", Source: SourceExplicit}
	err := s.Upsert(ctx, bad)
	if err == nil {
		t.Fatal("unknown fact_type should fail validation")
	}
	if apperrors.KindOf(err) != apperrors.KindValidation {
		t.Errorf("kind: got %s", apperrors.KindOf(err))
	}

	bad = &CustomerFact{CustomerID: "cust-1", FactType: FactTypeConstraint, FactKey: "budget", FactValue: "100", Confidence: 120, Source: SourceInferred}
	if err := s.Upsert(ctx, bad); err == nil {
		t.Error("confidence out of range should fail validation")
	}
}

func TestStoreMem_ListByCustomer_OrderAndCap(t *testing.T) {
	ctx := context.Background()
	s := NewStoreMem().(*memStore)
	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	for i, key := range []string{"a", "b", "c"} {
		tick := base.Add(time.Duration(i) * time.Minute)
		s.now = func() time.Time { return tick }
		f := &CustomerFact{CustomerID: "cust-1", FactType: FactTypePreference, FactKey: key, FactValue: key, Confidence: 80, Source: SourceInferred}
		if err := s.Upsert(ctx, f); err != nil {
			t.Fatalf("Upsert(%s): %v", key, err)
		}
	}

	facts, err := s.ListByCustomer(ctx, "cust-1", 2)
	if err != nil {
		t.Fatalf("ListByCustomer: %v", err)
	}
	if len(facts) != 2 {
		t.Fatalf("cap: got %d facts", len(facts))
	}
	if facts[0].FactKey != "c" || facts[1].FactKey != "b" {
		t.Errorf("order: got %s, %s; want most recent first", facts[0].FactKey, facts[1].FactKey)
	}
}

func TestStoreMem_Get_Delete(t *testing.T) {
	ctx := context.Background()
	s := NewStoreMem()
	f := &CustomerFact{CustomerID: "cust-1", FactType: FactTypePersonalInfo, FactKey: "city", FactValue: "Hangzhou", Confidence: 100, Source: SourceExplicit}
	_ = s.Upsert(ctx, f)

	got, err := s.Get(ctx, "cust-1", "city")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.FactValue != "Hangzhou" {
		t.Errorf("Get: got %q", got.FactValue)
	}
	if err := s.Delete(ctx, "cust-1", "city"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := s.Get(ctx, "cust-1", "city"); !errors.Is(err, apperrors.ErrNotFound) {
		t.Errorf("Get after Delete: %v", err)
	}
}

// stubLLM 固定返回 generate 文本
type stubLLM struct {
	reply string
	err   error
}

func (s *stubLLM) Generate(ctx context.Context, prompt string, opts llm.GenerateOptions) (string, error) {
	return s.reply, s.err
}

func (s *stubLLM) Chat(ctx context.Context, msgs []*schema.Message, opts llm.GenerateOptions) (*schema.Message, error) {
	return schema.AssistantMessage(s.reply, nil), s.err
}

func (s *stubLLM) ChatWithTools(ctx context.Context, msgs []*schema.Message, tools []llm.ToolSpec, opts llm.GenerateOptions) (*schema.Message, error) {
	return schema.AssistantMessage(s.reply, nil), s.err
}

func (s *stubLLM) Model() string    { return "stub" }
func (s *stubLLM) Provider() string { return "stub" }

func conversation() []*schema.Message {
	return []*schema.Message{
		schema.UserMessage("I always wear size M and I'm allergic to wool"),
		schema.AssistantMessage("Noted! I'll keep that in mind.", nil),
	}
}

func TestExtractor_Extract(t *testing.T) {
	client := &stubLLM{reply: "```json\n[{\"fact_type\":\"preference\",\"fact_key\":\"shirt_size\",\"fact_value\":\"M\",\"confidence\":95,\"source\":\"explicit\"},{\"fact_type\":\"constraint\",\"fact_key\":\"wool_allergy\",\"fact_value\":\"true\",\"confidence\":90,\"source\":\"explicit\"}]\n```"}
	e := NewExtractor(client, nil)

	facts, err := e.Extract(context.Background(), "cust-1", conversation())
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if len(facts) != 2 {
		t.Fatalf("facts: got %d", len(facts))
	}
	if facts[0].CustomerID != "cust-1" || facts[0].FactKey != "shirt_size" {
		t.Errorf("first fact: %+v", facts[0])
	}
}

func TestExtractor_Extract_MalformedOutput(t *testing.T) {
	e := NewExtractor(&stubLLM{reply: "I could not find any facts, sorry!"}, nil)
	facts, err := e.Extract(context.Background(), "cust-1", conversation())
	if err != nil {
		t.Fatalf("malformed output should not error: %v", err)
	}
	if len(facts) != 0 {
		t.Errorf("malformed output should yield no facts, got %d", len(facts))
	}
}

func TestExtractor_Extract_DropsInvalidFacts(t *testing.T) {
	e := NewExtractor(&stubLLM{reply: `[{"fact_type":"mood","fact_key":"k","fact_value":"v","confidence":50,"source":"explicit"},{"fact_type":"preference","fact_key":"color","fact_value":"blue","confidence":80,"source":"inferred"}]`}, nil)
	facts, err := e.Extract(context.Background(), "cust-1", conversation())
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if len(facts) != 1 || facts[0].FactKey != "color" {
		t.Errorf("invalid facts should be dropped, got %+v", facts)
	}
}

func TestBank_Persist_And_Load(t *testing.T) {
	ctx := context.Background()
	store := NewStoreMem()
	e := NewExtractor(&stubLLM{reply: `[{"fact_type":"preference","fact_key":"shirt_size","fact_value":"M","confidence":95,"source":"explicit"}]`}, nil)
	b := NewBank(store, e, 10, nil)

	if err := b.Persist(ctx, "cust-1", conversation()); err != nil {
		t.Fatalf("Persist: %v", err)
	}
	facts, err := b.Load(ctx, "cust-1")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(facts) != 1 || facts[0].FactValue != "M" {
		t.Errorf("Load: got %+v", facts)
	}
	if _, err := b.Load(ctx, ""); err == nil {
		t.Error("Load with empty customer_id should error")
	}
}

func TestContextBlock(t *testing.T) {
	if ContextBlock(nil) != "" {
		t.Error("empty facts should render empty block")
	}
	facts := []CustomerFact{{FactType: FactTypePreference, FactKey: "shirt_size", FactValue: "M", Confidence: 95, Source: SourceExplicit}}
	block := ContextBlock(facts)
	if !strings.Contains(block, "shirt_size") {
		t.Errorf("block: %q", block)
	}
}
