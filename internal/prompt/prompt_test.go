package prompt

import (
	"strings"
	"testing"
)

func TestLibrary_Resolve_Fallback(t *testing.T) {
	l := NewLibrary()

	// 精确命中 voice 渠道
	tpl, err := l.Resolve(AgentSupport, "voice", "en")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if tpl.Channel != "voice" {
		t.Errorf("channel: got %q", tpl.Channel)
	}

	// 未登记渠道回退到 agent 默认
	tpl, err = l.Resolve(AgentSupport, "web", "en")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if tpl.Channel != "" {
		t.Errorf("expected default template, got channel %q", tpl.Channel)
	}

	// locale 命中优先于渠道命中
	tpl, err = l.Resolve(AgentSales, "web", "zh")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if tpl.Locale != "zh" {
		t.Errorf("locale: got %q", tpl.Locale)
	}

	if _, err := l.Resolve("unknown-agent", "web", "en"); err == nil {
		t.Error("unknown agent should error")
	}
}

func TestSalesTemplates_RequiredFieldsMatch(t *testing.T) {
	l := NewLibrary()

	zh, err := l.Resolve(AgentSales, "web", "zh")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	// 中英文模板列出的必填字段必须和订单校验一致：商品、数量、尺码、颜色、姓名、电话、地址
	for _, field := range []string{"商品", "数量", "尺码", "颜色", "姓名", "电话", "收货地址"} {
		if !strings.Contains(zh.Text, field) {
			t.Errorf("zh sales template missing field %q", field)
		}
	}
	if strings.Contains(zh.Text, "支付方式") {
		t.Error("payment method is not a required order field")
	}

	en, err := l.Resolve(AgentSales, "web", "en")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	for _, field := range []string{"product", "quantity", "size", "color", "name", "phone", "address"} {
		if !strings.Contains(en.Text, field) {
			t.Errorf("en sales template missing field %q", field)
		}
	}
}

func TestLibrary_Put_Overrides(t *testing.T) {
	l := NewLibrary()
	l.Put(Template{Agent: AgentSupport, Version: "v9", Text: "override"})

	tpl, err := l.Resolve(AgentSupport, "web", "en")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if tpl.Version != "v9" || tpl.Text != "override" {
		t.Errorf("override not applied: %+v", tpl)
	}
}
