package orchestrator

import (
	"context"
	"errors"
	"testing"

	"github.com/cloudwego/eino/schema"

	"chat-platform/internal/model/llm"
	"chat-platform/internal/prompt"
)

// labelLLM 固定返回分类标签
type labelLLM struct {
	label string
	err   error
	calls int
}

func (l *labelLLM) Generate(ctx context.Context, p string, opts llm.GenerateOptions) (string, error) {
	l.calls++
	return l.label, l.err
}

func (l *labelLLM) Chat(ctx context.Context, msgs []*schema.Message, opts llm.GenerateOptions) (*schema.Message, error) {
	return schema.AssistantMessage(l.label, nil), l.err
}

func (l *labelLLM) ChatWithTools(ctx context.Context, msgs []*schema.Message, tools []llm.ToolSpec, opts llm.GenerateOptions) (*schema.Message, error) {
	return schema.AssistantMessage(l.label, nil), l.err
}

func (l *labelLLM) Model() string    { return "stub" }
func (l *labelLLM) Provider() string { return "stub" }

func TestRouter_RulesBeatModel(t *testing.T) {
	client := &labelLLM{label: "purchase"}
	r := NewRouter(client, nil)

	// 同时含购买与投诉信号：投诉规则优先，且不应调用模型
	agent, intent := r.Route(context.Background(), "I'd like to buy a new jacket but the last one arrived broken")
	if intent != IntentComplaint || agent != prompt.AgentSupport {
		t.Errorf("got %s/%s, want support/complaint", agent, intent)
	}
	if client.calls != 0 {
		t.Errorf("rule hit should not call the model, calls=%d", client.calls)
	}
}

func TestRouter_RuleTable(t *testing.T) {
	r := NewRouter(nil, nil)
	cases := []struct {
		message string
		agent   string
		intent  string
	}{
		{"Where is my order? It hasn't arrived", prompt.AgentSupport, IntentOrderTracking},
		{"What is your return policy?", prompt.AgentSupport, IntentPolicy},
		{"I want a refund now", prompt.AgentSupport, IntentComplaint},
		{"I'm looking for a summer dress", prompt.AgentSales, IntentPurchase},
	}
	for _, c := range cases {
		agent, intent := r.Route(context.Background(), c.message)
		if agent != c.agent || intent != c.intent {
			t.Errorf("Route(%q) = %s/%s, want %s/%s", c.message, agent, intent, c.agent, c.intent)
		}
	}
}

func TestRouter_ModelClassification(t *testing.T) {
	r := NewRouter(&labelLLM{label: " Greeting.\nextra"}, nil)
	agent, intent := r.Route(context.Background(), "hey!")
	if intent != IntentGreeting || agent != prompt.AgentSupport {
		t.Errorf("got %s/%s", agent, intent)
	}

	// 未知标签落到 other
	r = NewRouter(&labelLLM{label: "banana"}, nil)
	_, intent = r.Route(context.Background(), "hey!")
	if intent != IntentOther {
		t.Errorf("unknown label: got %s", intent)
	}

	// 模型失败走默认路由
	r = NewRouter(&labelLLM{err: errors.New("down")}, nil)
	agent, intent = r.Route(context.Background(), "hey!")
	if agent != prompt.AgentSupport || intent != IntentOther {
		t.Errorf("model failure: got %s/%s", agent, intent)
	}
}

func TestRouter_PurchaseGoesToSales(t *testing.T) {
	r := NewRouter(&labelLLM{label: "purchase"}, nil)
	agent, intent := r.Route(context.Background(), "any recommendations?")
	_ = intent
	if agent != prompt.AgentSales {
		t.Errorf("purchase should route to sales, got %s", agent)
	}
}
