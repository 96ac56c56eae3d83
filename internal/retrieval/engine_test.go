package retrieval

import (
	"context"
	"math"
	"testing"

	"chat-platform/internal/commerce"
	"chat-platform/internal/storage/vector"
)

// stubEmbedder 固定映射，未登记的文本落到与库内向量几乎正交的方向
type stubEmbedder struct {
	vectors map[string][]float64
	calls   int
}

func (s *stubEmbedder) Embed(ctx context.Context, texts []string) ([][]float64, error) {
	s.calls++
	out := make([][]float64, len(texts))
	for i, t := range texts {
		if v, ok := s.vectors[t]; ok {
			out[i] = v
			continue
		}
		out[i] = []float64{0.05, 0.05, math.Sqrt(1 - 2*0.05*0.05)}
	}
	return out, nil
}

func (s *stubEmbedder) Model() string  { return "stub" }
func (s *stubEmbedder) Dimension() int { return 3 }

// countingRewriter 固定重写结果并记录调用次数
type countingRewriter struct {
	to    string
	calls int
}

func (r *countingRewriter) Rewrite(ctx context.Context, query string) (string, error) {
	r.calls++
	return r.to, nil
}

func unitY(x float64) float64 {
	return math.Sqrt(1 - x*x)
}

func newTestEngine(t *testing.T, emb *stubEmbedder, rw Rewriter) *Engine {
	t.Helper()
	ctx := context.Background()

	vec := vector.NewMemoryStore()
	for _, name := range []string{CollectionProducts, CollectionKnowledge} {
		if err := vec.Create(ctx, &vector.Collection{Name: name, Dimension: 3, Distance: "cosine"}); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}
	err := vec.Add(ctx, CollectionProducts, []*vector.Vector{
		{ID: "p-1", Values: []float64{1, 0, 0}, Metadata: map[string]string{"name": "Classic Denim Jacket"}},
		{ID: "p-9", Values: []float64{0, 1, 0}, Metadata: map[string]string{"name": "Wool Sweater"}},
	})
	if err != nil {
		t.Fatalf("Add: %v", err)
	}

	store := commerce.NewMemoryStore()
	products := []commerce.Product{
		{ID: "p-1", Name: "Classic Denim Jacket", Description: "blue denim jacket", Category: "jackets",
			Colors: []string{"blue"}, Sizes: []string{"M"}, Price: 89.9, Currency: "USD", Stock: 5},
		{ID: "p-9", Name: "Wool Sweater", Description: "warm wool sweater", Category: "knitwear",
			Colors: []string{"gray"}, Sizes: []string{"L"}, Price: 59.9, Currency: "USD", Stock: 2},
	}
	for i := range products {
		if err := store.UpsertProduct(ctx, &products[i]); err != nil {
			t.Fatalf("UpsertProduct: %v", err)
		}
	}

	return NewEngine(vec, emb, store, store, rw, Options{TopK: 5, RewriteThreshold: 0.7, SemanticWeight: 0.7})
}

func TestEngine_Search_EmptyQuery(t *testing.T) {
	emb := &stubEmbedder{}
	e := newTestEngine(t, emb, nil)

	res, err := e.Search(context.Background(), "   ", KindProduct)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(res.Items) != 0 {
		t.Errorf("empty query should yield empty result, got %+v", res.Items)
	}
	if emb.calls != 0 {
		t.Errorf("empty query should not call the embedder, calls=%d", emb.calls)
	}
}

func TestEngine_Search_HighConfidence_NoRewrite(t *testing.T) {
	emb := &stubEmbedder{vectors: map[string][]float64{
		"denim jacket": {0.9, 0, unitY(0.9)},
	}}
	rw := &countingRewriter{to: "should not be used"}
	e := newTestEngine(t, emb, rw)

	res, err := e.Search(context.Background(), "denim jacket", KindProduct)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if res.Rewrites != 0 {
		t.Errorf("rewrites: got %d, want 0", res.Rewrites)
	}
	if rw.calls != 0 {
		t.Errorf("rewriter should not be called, calls=%d", rw.calls)
	}
	if len(res.Items) == 0 || res.Items[0].ItemID != "p-1" {
		t.Fatalf("items: %+v", res.Items)
	}
	// 语义+关键词双命中
	if res.Items[0].Source != SourceBoth {
		t.Errorf("source: got %s", res.Items[0].Source)
	}
	if res.TopScore() < 0.7 {
		t.Errorf("top score: got %.2f", res.TopScore())
	}
}

func TestEngine_Search_SemanticOnlyHit_NoRewrite(t *testing.T) {
	// 关键词端零命中，语义端 0.85：融合分只有 0.7*0.85=0.595，
	// 但阈值看的是原始相似度，不应触发重写
	emb := &stubEmbedder{vectors: map[string][]float64{
		"anorak": {0.85, 0, unitY(0.85)},
	}}
	rw := &countingRewriter{to: "should not be used"}
	e := newTestEngine(t, emb, rw)

	res, err := e.Search(context.Background(), "anorak", KindProduct)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if rw.calls != 0 {
		t.Errorf("rewriter should not be called, calls=%d", rw.calls)
	}
	if res.Rewrites != 0 {
		t.Errorf("rewrites: got %d, want 0", res.Rewrites)
	}
	if len(res.Items) == 0 || res.Items[0].ItemID != "p-1" {
		t.Fatalf("items: %+v", res.Items)
	}
	if res.Items[0].Source != SourceSemantic {
		t.Errorf("source: got %s", res.Items[0].Source)
	}
	if res.TopScore() >= 0.7 {
		t.Errorf("blended score should stay below the raw similarity, got %.3f", res.TopScore())
	}
}

func TestEngine_Search_LowConfidence_RewritesOnce(t *testing.T) {
	emb := &stubEmbedder{vectors: map[string][]float64{
		"something for cold days": {0.4, 0.4, math.Sqrt(1 - 2*0.4*0.4)},
		"blue denim jacket":       {1, 0, 0},
	}}
	rw := &countingRewriter{to: "blue denim jacket"}
	e := newTestEngine(t, emb, rw)

	res, err := e.Search(context.Background(), "something for cold days", KindProduct)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if rw.calls != 1 {
		t.Errorf("rewriter calls: got %d, want exactly 1", rw.calls)
	}
	if res.Rewrites != 1 || res.Rewritten != "blue denim jacket" {
		t.Errorf("rewrite bookkeeping: %+v", res)
	}
	if len(res.Items) == 0 || res.Items[0].ItemID != "p-1" {
		t.Fatalf("items: %+v", res.Items)
	}
	if res.TopScore() < 0.95 {
		t.Errorf("rewritten round should score ~1.0, got %.2f", res.TopScore())
	}
	if res.Query != "something for cold days" {
		t.Errorf("original query should be preserved, got %q", res.Query)
	}
}

func TestEngine_Search_KeywordOnlyHitIncluded(t *testing.T) {
	// 语义端只认 p-1 方向，关键词端命中 p-9
	emb := &stubEmbedder{vectors: map[string][]float64{
		"wool": {0.98, unitY(0.98), 0},
	}}
	e := newTestEngine(t, emb, nil)

	res, err := e.Search(context.Background(), "wool", KindProduct)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	var found bool
	for _, it := range res.Items {
		if it.ItemID == "p-9" {
			found = true
		}
	}
	if !found {
		t.Errorf("keyword hit p-9 must be included: %+v", res.Items)
	}
}

func TestEngine_Search_KnowledgeKind_NeverRewrites(t *testing.T) {
	emb := &stubEmbedder{}
	rw := &countingRewriter{to: "rewritten"}
	e := newTestEngine(t, emb, rw)

	_, err := e.Search(context.Background(), "return policy", KindKnowledge)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if rw.calls != 0 {
		t.Errorf("knowledge search should never rewrite, calls=%d", rw.calls)
	}
}

func TestAttributeRewriter(t *testing.T) {
	var rw AttributeRewriter
	cases := map[string]string{
		"I'm looking for a nice blue jacket in size M please": "blue jacket m",
		"do you have wool sweaters?":                          "wool",
		"no attributes here at all":                           "no attributes here at all",
	}
	for in, want := range cases {
		got, err := rw.Rewrite(context.Background(), in)
		if err != nil {
			t.Fatalf("Rewrite(%q): %v", in, err)
		}
		if got != want {
			t.Errorf("Rewrite(%q) = %q, want %q", in, got, want)
		}
	}
}
