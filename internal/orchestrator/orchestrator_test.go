package orchestrator

import (
	"context"
	"testing"

	"github.com/cloudwego/eino/schema"

	"chat-platform/internal/conversation"
	"chat-platform/internal/memory"
	"chat-platform/internal/model/llm"
	"chat-platform/internal/prompt"
	"chat-platform/internal/respcache"
	"chat-platform/internal/storage/cache"
	"chat-platform/internal/tool"
	"chat-platform/internal/tool/registry"
	apperrors "chat-platform/pkg/errors"
)

// scriptedLLM ChatWithTools 按脚本出牌（末条重复），Chat 固定收尾
type scriptedLLM struct {
	replies []*schema.Message
	final   *schema.Message
	err     error
	i       int
}

func (s *scriptedLLM) Generate(ctx context.Context, p string, opts llm.GenerateOptions) (string, error) {
	return "[]", s.err
}

func (s *scriptedLLM) Chat(ctx context.Context, msgs []*schema.Message, opts llm.GenerateOptions) (*schema.Message, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.final, nil
}

func (s *scriptedLLM) ChatWithTools(ctx context.Context, msgs []*schema.Message, tools []llm.ToolSpec, opts llm.GenerateOptions) (*schema.Message, error) {
	if s.err != nil {
		return nil, s.err
	}
	idx := s.i
	if idx >= len(s.replies) {
		idx = len(s.replies) - 1
	}
	s.i++
	return s.replies[idx], nil
}

func (s *scriptedLLM) Model() string    { return "stub" }
func (s *scriptedLLM) Provider() string { return "stub" }

// probeTool 可编程的测试工具
type probeTool struct {
	name   string
	result tool.Result
	calls  int
}

func (p *probeTool) Name() string        { return p.name }
func (p *probeTool) Description() string { return "probe" }
func (p *probeTool) Schema() tool.Schema { return tool.Schema{Type: "object"} }
func (p *probeTool) Execute(ctx context.Context, input map[string]any) tool.Result {
	p.calls++
	return p.result
}

func toolCallMsg(name, args string) *schema.Message {
	return schema.AssistantMessage("", []schema.ToolCall{{
		ID:       "call-1",
		Type:     "function",
		Function: schema.FunctionCall{Name: name, Arguments: args},
	}})
}

type testEnv struct {
	orch  *Orchestrator
	flows cache.Store
	reg   *registry.Registry
}

func newEnv(t *testing.T, agentLLM llm.Client, routerLLM llm.Client, maxCalls int, tools ...tool.Tool) *testEnv {
	t.Helper()
	reg := registry.New()
	for _, tl := range tools {
		reg.Register(tl)
	}
	inv := tool.NewInvoker(reg, nil)
	loop := NewAgentLoop(agentLLM, inv, reg, maxCalls, nil)
	router := NewRouter(routerLLM, nil)
	bank := memory.NewBank(memory.NewStoreMem(), memory.NewExtractor(agentLLM, nil), 10, nil)
	flows := cache.NewMemoryStore()
	orch := New(router, loop, bank,
		conversation.NewMemoryHistory(10),
		respcache.New(cache.NewMemoryStore(), 0, nil),
		flows, prompt.NewLibrary(), Options{}, nil)
	return &testEnv{orch: orch, flows: flows, reg: reg}
}

func TestOrchestrator_Handle_Validation(t *testing.T) {
	env := newEnv(t, &scriptedLLM{}, nil, 3)

	_, err := env.orch.Handle(context.Background(), TurnRequest{Message: "hi"})
	if err == nil || apperrors.KindOf(err) != apperrors.KindValidation {
		t.Errorf("empty customer_id: %v", err)
	}
	_, err = env.orch.Handle(context.Background(), TurnRequest{CustomerID: "cust-1", Message: "   "})
	if err == nil || apperrors.KindOf(err) != apperrors.KindValidation {
		t.Errorf("empty message: %v", err)
	}
}

func TestOrchestrator_Handle_CompletedThenCached(t *testing.T) {
	agent := &scriptedLLM{replies: []*schema.Message{schema.AssistantMessage("Hi there!", nil)}}
	env := newEnv(t, agent, &labelLLM{label: "greeting"}, 3)
	req := TurnRequest{CustomerID: "cust-1", Message: "hello", Channel: "web"}

	resp, err := env.orch.Handle(context.Background(), req)
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if resp.Status != StatusCompleted || resp.Reply != "Hi there!" {
		t.Errorf("first turn: %+v", resp)
	}
	if resp.Intent != IntentGreeting || resp.Agent != prompt.AgentSupport {
		t.Errorf("routing: %s/%s", resp.Agent, resp.Intent)
	}

	// 同一消息第二次命中响应缓存，不再经过模型
	resp, err = env.orch.Handle(context.Background(), req)
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if !resp.FromCache || resp.Status != StatusCached || resp.Reply != "Hi there!" {
		t.Errorf("cached turn: %+v", resp)
	}
}

func TestOrchestrator_Handle_UpstreamFailure(t *testing.T) {
	agent := &scriptedLLM{err: context.DeadlineExceeded}
	env := newEnv(t, agent, &labelLLM{label: "faq"}, 3)

	resp, err := env.orch.Handle(context.Background(), TurnRequest{CustomerID: "cust-1", Message: "what are your opening hours?"})
	if err != nil {
		t.Fatalf("upstream failure must not surface as an error: %v", err)
	}
	if resp.Status != StatusFailed || resp.Reply != apologyReply {
		t.Errorf("failed turn: %+v", resp)
	}
}

func TestAgentLoop_CompletedWithToolCall(t *testing.T) {
	probe := &probeTool{name: "probe", result: tool.Ok(map[string]any{"answer": 42})}
	agent := &scriptedLLM{
		replies: []*schema.Message{
			toolCallMsg("probe", `{"query":"x"}`),
			schema.AssistantMessage("The answer is 42.", nil),
		},
	}
	env := newEnv(t, agent, nil, 3, probe)

	resp, err := env.orch.Handle(context.Background(), TurnRequest{CustomerID: "cust-1", Message: "need the answer"})
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if resp.Status != StatusCompleted || resp.Reply != "The answer is 42." {
		t.Errorf("turn: %+v", resp)
	}
	if len(resp.ToolCalls) != 1 || resp.ToolCalls[0].ToolName != "probe" {
		t.Errorf("tool records: %+v", resp.ToolCalls)
	}
	if probe.calls != 1 {
		t.Errorf("probe calls: %d", probe.calls)
	}
}

func TestAgentLoop_BudgetExhausted_Degrades(t *testing.T) {
	// 模型无限要求调用工具：预算耗尽后必须降级收尾
	probe := &probeTool{name: "probe", result: tool.OkEmpty()}
	agent := &scriptedLLM{
		replies: []*schema.Message{toolCallMsg("probe", `{"query":"x"}`)},
		final:   schema.AssistantMessage("Here is what I could find so far.", nil),
	}
	env := newEnv(t, agent, nil, 2, probe)

	resp, err := env.orch.Handle(context.Background(), TurnRequest{CustomerID: "cust-1", Message: "find it"})
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if resp.Status != StatusDegraded {
		t.Errorf("status: got %s", resp.Status)
	}
	if resp.Reply != "Here is what I could find so far." {
		t.Errorf("reply: %q", resp.Reply)
	}
	if len(resp.ToolCalls) != 2 {
		t.Errorf("tool budget: %d calls recorded", len(resp.ToolCalls))
	}
}

func TestAgentLoop_OrderStatusAfterCreate_ReplaysCreation(t *testing.T) {
	// 下单成功后同轮再查同一订单：不回源，直接回放创建结果
	create := &probeTool{
		name:   "create_order",
		result: tool.Ok(map[string]any{"order_id": "ord-1", "status": "created", "total": 89.9}),
	}
	status := &probeTool{name: "order_status", result: tool.Ok(map[string]any{"status": "pending"})}
	agent := &scriptedLLM{
		replies: []*schema.Message{
			toolCallMsg("create_order", `{"customer_id":"cust-1","product_id":"p-1","quantity":1,"size":"M","color":"blue","customer_name":"Ann","phone":"555-0101","address":"1 Main St"}`),
			toolCallMsg("order_status", `{"order_id":"ord-1"}`),
			schema.AssistantMessage("Your order ord-1 is confirmed.", nil),
		},
	}
	env := newEnv(t, agent, &labelLLM{label: "purchase"}, 6, create, status)

	resp, err := env.orch.Handle(context.Background(), TurnRequest{CustomerID: "cust-1", Message: "order it and tell me the status"})
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if resp.Status != StatusCompleted {
		t.Errorf("status: got %s", resp.Status)
	}
	if create.calls != 1 {
		t.Errorf("create_order calls: %d", create.calls)
	}
	if status.calls != 0 {
		t.Errorf("order_status must not hit the store in the creating turn, calls=%d", status.calls)
	}
	if len(resp.ToolCalls) != 2 || resp.ToolCalls[1].ToolName != "order_status" {
		t.Fatalf("tool records: %+v", resp.ToolCalls)
	}
	// 回放的就是创建结果
	if got := resp.ToolCalls[1].Result.Data["order_id"]; got != "ord-1" {
		t.Errorf("replayed order_id: %v", got)
	}
}

func TestAgentLoop_OrderStatusOtherOrder_Invoked(t *testing.T) {
	// 查的是另一单：正常回源
	create := &probeTool{
		name:   "create_order",
		result: tool.Ok(map[string]any{"order_id": "ord-1", "status": "created"}),
	}
	status := &probeTool{name: "order_status", result: tool.Ok(map[string]any{"order_id": "ord-7", "status": "shipped"})}
	agent := &scriptedLLM{
		replies: []*schema.Message{
			toolCallMsg("create_order", `{"customer_id":"cust-1","product_id":"p-1","quantity":1,"size":"M","color":"blue","customer_name":"Ann","phone":"555-0101","address":"1 Main St"}`),
			toolCallMsg("order_status", `{"order_id":"ord-7"}`),
			schema.AssistantMessage("Your earlier order ord-7 has shipped.", nil),
		},
	}
	env := newEnv(t, agent, &labelLLM{label: "purchase"}, 6, create, status)

	_, err := env.orch.Handle(context.Background(), TurnRequest{CustomerID: "cust-1", Message: "order it, and where is my old order?"})
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if status.calls != 1 {
		t.Errorf("order_status for another order must be invoked, calls=%d", status.calls)
	}
}

func TestOrchestrator_Handle_OrderFlowAccumulates(t *testing.T) {
	create := &probeTool{
		name:   "create_order",
		result: tool.Fail(apperrors.KindValidation, "订单缺少必填字段: [customer_name phone address]"),
	}
	agent := &scriptedLLM{
		replies: []*schema.Message{
			toolCallMsg("create_order", `{"customer_id":"cust-1","product_id":"p-1","quantity":1,"size":"M","color":"blue"}`),
			schema.AssistantMessage("I still need your name, phone and delivery address.", nil),
		},
	}
	env := newEnv(t, agent, &labelLLM{label: "purchase"}, 3, create)

	_, err := env.orch.Handle(context.Background(), TurnRequest{CustomerID: "cust-1", Message: "I want to order the denim jacket in M"})
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}

	flow := NewOrderFlow()
	if err := env.flows.Get(context.Background(), "orderflow:cust-1", flow); err != nil {
		t.Fatalf("flow not persisted: %v", err)
	}
	if flow.Stage() != StageCollectCustomerInfo {
		t.Errorf("stage: got %s", flow.Stage())
	}
	if flow.Fields["product_id"] != "p-1" || flow.Fields["size"] != "M" {
		t.Errorf("fields: %+v", flow.Fields)
	}
}
