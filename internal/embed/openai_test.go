package embed

import (
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"
)

// fakeProviderServer serves an OpenAI-compatible embeddings endpoint that
// returns a fixed vector.
func fakeProviderServer(t *testing.T, vector []float32) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/embeddings" {
			http.NotFound(w, r)
			return
		}
		resp := map[string]any{
			"data": []map[string]any{
				{"embedding": vector, "index": 0, "object": "embedding"},
			},
			"model":  "test-model",
			"object": "list",
		}
		json.NewEncoder(w).Encode(resp)
	}))
}

func TestNew_Validation(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{name: "missing API key", config: Config{Model: "m"}, wantErr: true},
		{name: "missing model", config: Config{APIKey: "k"}, wantErr: true},
		{name: "valid", config: Config{APIKey: "k", Model: "m"}, wantErr: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.config)
			if (err != nil) != tt.wantErr {
				t.Errorf("New() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestClient_EmbedNormalizes(t *testing.T) {
	server := fakeProviderServer(t, []float32{3, 4})
	defer server.Close()

	client, err := New(Config{BaseURL: server.URL, APIKey: "k", Model: "test-model"})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	v, err := client.Embed(t.Context(), "massage gun")
	if err != nil {
		t.Fatalf("Embed() error = %v", err)
	}

	if len(v) != 2 {
		t.Fatalf("got %d dims, want 2", len(v))
	}
	var norm float64
	for _, x := range v {
		norm += float64(x) * float64(x)
	}
	if math.Abs(math.Sqrt(norm)-1) > 1e-5 {
		t.Errorf("vector norm = %v, want 1 (L2-normalized)", math.Sqrt(norm))
	}
	if client.Dimension() != 2 {
		t.Errorf("Dimension() = %d, want 2 after first response", client.Dimension())
	}
}

func TestClient_EmbedRejectsEmptyText(t *testing.T) {
	client, err := New(Config{APIKey: "k", Model: "test-model"})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if _, err := client.Embed(t.Context(), ""); err == nil {
		t.Error("expected error for empty text")
	}
}

func TestClient_EmbedBatch(t *testing.T) {
	server := fakeProviderServer(t, []float32{1, 0})
	defer server.Close()

	client, err := New(Config{BaseURL: server.URL, APIKey: "k", Model: "test-model"})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	texts := []string{"a", "b", "c"}
	embeddings, err := client.EmbedBatch(t.Context(), texts)
	if err != nil {
		t.Fatalf("EmbedBatch() error = %v", err)
	}

	if len(embeddings) != len(texts) {
		t.Fatalf("got %d embeddings, want %d", len(embeddings), len(texts))
	}
	for i, v := range embeddings {
		if len(v) != 2 {
			t.Errorf("embeddings[%d] has %d dims, want 2", i, len(v))
		}
	}
}

func TestClient_ModelInfo(t *testing.T) {
	client, err := New(Config{APIKey: "k", Model: "text-embedding-v4"})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if got := client.ModelInfo(); got != "openai-text-embedding-v4" {
		t.Errorf("ModelInfo() = %q", got)
	}
	if got := client.Dimension(); got != 1024 {
		t.Errorf("Dimension() = %d, want 1024", got)
	}
}
