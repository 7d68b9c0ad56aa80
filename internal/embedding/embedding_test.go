package embedding

import (
	"context"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestMock_Deterministic(t *testing.T) {
	m := NewMock(16)
	a, err := m.Embed(context.Background(), "hello")
	if err != nil {
		t.Fatal(err)
	}
	b, err := m.Embed(context.Background(), "hello")
	if err != nil {
		t.Fatal(err)
	}
	if len(a) != 16 {
		t.Fatalf("len = %d, want 16", len(a))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("embedding not deterministic at %d: %v != %v", i, a[i], b[i])
		}
	}
	var sum float64
	for _, v := range a {
		sum += float64(v) * float64(v)
	}
	if math.Abs(sum-1.0) > 1e-4 {
		t.Errorf("embedding not unit length: norm^2 = %f", sum)
	}
}

func TestMock_DifferentTextsDiffer(t *testing.T) {
	m := NewMock(16)
	a, _ := m.Embed(context.Background(), "alpha")
	b, _ := m.Embed(context.Background(), "beta")
	same := true
	for i := range a {
		if a[i] != b[i] {
			same = false
			break
		}
	}
	if same {
		t.Error("different texts produced identical embeddings")
	}
}

func TestCache_Eviction(t *testing.T) {
	c := NewCache(2)
	if _, ok := c.Get("a"); ok {
		t.Fatal("expected miss")
	}
	c.Set("a", []float32{1})
	c.Set("b", []float32{2})
	c.Get("a") // refresh a
	c.Set("c", []float32{3})
	if _, ok := c.Get("b"); ok {
		t.Error("expected b to be evicted")
	}
	if _, ok := c.Get("a"); !ok {
		t.Error("expected a to remain after refresh")
	}
	if c.Len() != 2 {
		t.Errorf("Len = %d, want 2", c.Len())
	}
}

type countingEmbedder struct {
	Mock
	calls int
}

func (c *countingEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	c.calls++
	return c.Mock.Embed(ctx, text)
}

func TestWithCache_AvoidsRecompute(t *testing.T) {
	inner := &countingEmbedder{Mock: *NewMock(8)}
	e := WithCache(inner, 10)
	for i := 0; i < 3; i++ {
		if _, err := e.Embed(context.Background(), "same text"); err != nil {
			t.Fatal(err)
		}
	}
	if inner.calls != 1 {
		t.Errorf("inner called %d times, want 1", inner.calls)
	}
}

func TestWordTokenizer(t *testing.T) {
	tok := &WordTokenizer{}
	ids, attn, _ := tok.Tokenize("hello world", 10)
	if len(ids) != 10 {
		t.Fatalf("len(ids) = %d, want 10", len(ids))
	}
	if ids[0] != tokenCLS {
		t.Errorf("ids[0] = %d, want CLS", ids[0])
	}
	if attn[0] != 1 || attn[1] != 1 {
		t.Error("attention mask should cover CLS and first word")
	}
}

func TestOpenAI_EmbedBatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/embeddings" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("auth header = %q", got)
		}
		var req embeddingsRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatal(err)
		}
		resp := embeddingsResponse{}
		for i := range req.Input {
			resp.Data = append(resp.Data, struct {
				Index     int       `json:"index"`
				Embedding []float32 `json:"embedding"`
			}{Index: i, Embedding: []float32{1, 0, 0}})
		}
		json.NewEncoder(w).Encode(resp)
	}))
	defer srv.Close()

	e, err := NewOpenAI(srv.URL, "test-key", "test-model", 3, time.Second)
	if err != nil {
		t.Fatal(err)
	}
	vecs, err := e.EmbedBatch(context.Background(), []string{"a", "b"})
	if err != nil {
		t.Fatal(err)
	}
	if len(vecs) != 2 || len(vecs[0]) != 3 {
		t.Fatalf("got %v", vecs)
	}
}

func TestOpenAI_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	e, err := NewOpenAI(srv.URL, "k", "m", 3, time.Second)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := e.Embed(context.Background(), "x"); err == nil {
		t.Error("expected error on 429 response")
	}
}

func TestNewOpenAI_RequiresKey(t *testing.T) {
	if _, err := NewOpenAI("http://localhost", "", "m", 3, time.Second); err == nil {
		t.Error("expected error for empty API key")
	}
}
