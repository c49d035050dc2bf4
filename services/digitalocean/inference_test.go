package digitalocean

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestJSONCompletionDecodesFirstChoice(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer secret" {
			t.Errorf("authorization header = %q", got)
		}

		var req InferenceRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.ResponseFormat == nil || req.ResponseFormat.Type != "json_object" {
			t.Errorf("expected json_object response format, got %+v", req.ResponseFormat)
		}
		if req.MaxTokens != jsonCompletionMaxTokens {
			t.Errorf("max_tokens = %d, want %d", req.MaxTokens, jsonCompletionMaxTokens)
		}

		json.NewEncoder(w).Encode(InferenceResponse{
			Choices: []InferenceChoice{{Message: InferenceMessage{
				Role:    "assistant",
				Content: "```json\n{\"tags\":[\"calculus\"]}\n```",
			}}},
		})
	}))
	defer server.Close()

	client := NewInferenceClient(InferenceConfig{APIKey: "secret", BaseURL: server.URL})

	var out struct {
		Tags []string `json:"tags"`
	}
	if err := client.JSONCompletion(context.Background(), "system", "user", &out); err != nil {
		t.Fatalf("JSONCompletion: %v", err)
	}
	if len(out.Tags) != 1 || out.Tags[0] != "calculus" {
		t.Fatalf("tags = %v", out.Tags)
	}
}

func TestChatCompletionSurfacesHTTPErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := NewInferenceClient(InferenceConfig{APIKey: "k", BaseURL: server.URL})
	if _, err := client.ChatCompletion(context.Background(), nil); err == nil {
		t.Fatal("expected error for 429 response")
	}
}
