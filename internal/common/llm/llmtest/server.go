// Package llmtest runs an in-process fake of the OpenAI chat and embeddings
// endpoints for tests.
package llmtest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"culturis/internal/common/config"
)

// Server records requests and answers them with canned replies.
type Server struct {
	*httptest.Server

	mu       sync.Mutex
	requests []map[string]interface{}

	// ToolArguments, when set, is returned as the arguments of a forced tool call.
	ToolArguments string
	// Content is returned as the assistant message text when ToolArguments is empty.
	Content string
	// Status overrides the HTTP status of chat completions.
	Status int
	// Dimensions is the length of every returned embedding vector.
	Dimensions int
	// EmbeddingStatus overrides the HTTP status of embedding calls.
	EmbeddingStatus int
}

func NewServer(t testing.TB) *Server {
	t.Helper()
	s := &Server{Dimensions: 4}

	mux := http.NewServeMux()
	mux.HandleFunc("/v1/chat/completions", s.handleChat)
	mux.HandleFunc("/v1/embeddings", s.handleEmbeddings)
	s.Server = httptest.NewServer(mux)
	t.Cleanup(s.Close)
	return s
}

// Config returns an OpenAI config pointing at the fake.
func (s *Server) Config() config.OpenAIConfig {
	return config.OpenAIConfig{
		BaseURL:        s.URL + "/v1/",
		APIKey:         "sk-test",
		ChatModel:      "gpt-4o-mini",
		EmbeddingModel: "text-embedding-3-small",
		Timeout:        5000,
	}
}

// Requests returns the decoded bodies received so far.
func (s *Server) Requests() []map[string]interface{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]map[string]interface{}(nil), s.requests...)
}

func (s *Server) record(r *http.Request) map[string]interface{} {
	var body map[string]interface{}
	_ = json.NewDecoder(r.Body).Decode(&body)
	s.mu.Lock()
	s.requests = append(s.requests, body)
	s.mu.Unlock()
	return body
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	s.record(r)
	w.Header().Set("Content-Type", "application/json")
	if s.Status != 0 {
		w.WriteHeader(s.Status)
		_, _ = w.Write([]byte(`{"error":{"message":"fake failure","type":"server_error"}}`))
		return
	}

	message := map[string]interface{}{"role": "assistant", "content": s.Content}
	finish := "stop"
	if s.ToolArguments != "" {
		finish = "tool_calls"
		message["content"] = nil
		message["tool_calls"] = []map[string]interface{}{{
			"id":   "call_1",
			"type": "function",
			"function": map[string]interface{}{
				"name":      "build_qloo_request",
				"arguments": s.ToolArguments,
			},
		}}
	}

	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"id":      "chatcmpl-test",
		"object":  "chat.completion",
		"created": 1700000000,
		"model":   "gpt-4o-mini",
		"choices": []map[string]interface{}{{
			"index":         0,
			"finish_reason": finish,
			"message":       message,
		}},
	})
}

func (s *Server) handleEmbeddings(w http.ResponseWriter, r *http.Request) {
	body := s.record(r)
	w.Header().Set("Content-Type", "application/json")
	if s.EmbeddingStatus != 0 {
		w.WriteHeader(s.EmbeddingStatus)
		_, _ = w.Write([]byte(`{"error":{"message":"fake failure","type":"server_error"}}`))
		return
	}

	count := 1
	if inputs, ok := body["input"].([]interface{}); ok {
		count = len(inputs)
	}

	data := make([]map[string]interface{}, 0, count)
	for i := 0; i < count; i++ {
		vec := make([]float64, s.Dimensions)
		for j := range vec {
			vec[j] = float64(i+1) / float64(j+2)
		}
		data = append(data, map[string]interface{}{
			"object":    "embedding",
			"index":     i,
			"embedding": vec,
		})
	}

	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"object": "list",
		"model":  "text-embedding-3-small",
		"data":   data,
		"usage":  map[string]interface{}{"prompt_tokens": 1, "total_tokens": 1},
	})
}
