package llm

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func fakeChatServer(t *testing.T, content string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			http.NotFound(w, r)
			return
		}
		var req map[string]any
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		resp := map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"role": "assistant", "content": content}},
			},
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}))
}

func TestNewValidation(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{"valid", Config{APIKey: "key", Model: "qwen-plus"}, false},
		{"missing API key", Config{Model: "qwen-plus"}, true},
		{"missing model", Config{APIKey: "key"}, true},
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

func TestGenerate(t *testing.T) {
	server := fakeChatServer(t, "  The best option is B0TESTDRIL1.  ")
	defer server.Close()

	client, err := New(Config{BaseURL: server.URL, APIKey: "test", Model: "qwen-plus"})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	got, err := client.Generate(t.Context(), "system", "user")
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if got != "The best option is B0TESTDRIL1." {
		t.Errorf("Generate() = %q, want trimmed response", got)
	}
}

func TestGenerateProviderDown(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream unavailable", http.StatusBadGateway)
	}))
	defer server.Close()

	client, err := New(Config{BaseURL: server.URL, APIKey: "test", Model: "qwen-plus"})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if _, err := client.Generate(t.Context(), "system", "user"); err == nil {
		t.Error("Generate() expected error from failing provider")
	}
}

func TestExtractFeatures(t *testing.T) {
	server := fakeChatServer(t, `{
		"battery_life": "6 hours",
		"warranty": "2 years",
		"wattage": null,
		"noise_level": "",
		"attachments_count": 5
	}`)
	defer server.Close()

	client, err := New(Config{BaseURL: server.URL, APIKey: "test", Model: "qwen-plus"})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	features, err := client.ExtractFeatures(t.Context(), "A cordless drill with a 6 hour battery.")
	if err != nil {
		t.Fatalf("ExtractFeatures() error = %v", err)
	}

	want := map[string]string{
		"battery_life":      "6 hours",
		"warranty":          "2 years",
		"attachments_count": "5",
	}
	if len(features) != len(want) {
		t.Fatalf("ExtractFeatures() = %v, want %v", features, want)
	}
	for key, value := range want {
		if features[key] != value {
			t.Errorf("feature %q = %q, want %q", key, features[key], value)
		}
	}
}

func TestExtractFeaturesInvalidJSON(t *testing.T) {
	server := fakeChatServer(t, "not json at all")
	defer server.Close()

	client, err := New(Config{BaseURL: server.URL, APIKey: "test", Model: "qwen-plus"})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if _, err := client.ExtractFeatures(t.Context(), "text"); err == nil {
		t.Error("ExtractFeatures() expected error for invalid JSON response")
	}
}
