// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package reasoning

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

// newChatServer stands in for an OpenAI-compatible endpoint and captures the
// last decoded request body.
func newChatServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	prev := openaiAPIURL
	openaiAPIURL = srv.URL
	t.Cleanup(func() { openaiAPIURL = prev })

	return srv
}

func chatReply(text string) string {
	return `{"choices":[{"message":{"role":"assistant","content":` + jsonString(text) + `}}]}`
}

func jsonString(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}

func TestOpenAIServiceComplete(t *testing.T) {
	var gotAuth string
	var gotReq chatRequest

	newChatServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Errorf("decoding request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(chatReply(`{"categories":[]}`)))
	})

	svc := &OpenAIService{APIKey: "test-key", Model: "test-model"}
	got, err := svc.Complete(context.Background(), []Message{{Role: RoleUser, Content: "hi"}}, true)
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}

	if got != `{"categories":[]}` {
		t.Errorf("Complete() = %q", got)
	}
	if gotAuth != "Bearer test-key" {
		t.Errorf("Authorization = %q, want Bearer test-key", gotAuth)
	}
	if gotReq.Model != "test-model" {
		t.Errorf("model = %q, want test-model", gotReq.Model)
	}
	if gotReq.ResponseFormat == nil || gotReq.ResponseFormat.Type != "json_object" {
		t.Errorf("response_format = %+v, want json_object", gotReq.ResponseFormat)
	}
}

func TestOpenAIServiceOmitsResponseFormat(t *testing.T) {
	var gotReq chatRequest
	newChatServer(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&gotReq)
		w.Write([]byte(chatReply("plain text")))
	})

	svc := &OpenAIService{APIKey: "k", Model: "m"}
	if _, err := svc.Complete(context.Background(), []Message{{Role: RoleUser, Content: "hi"}}, false); err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if gotReq.ResponseFormat != nil {
		t.Errorf("response_format = %+v, want nil", gotReq.ResponseFormat)
	}
}

func TestOpenAIServiceRateLimited(t *testing.T) {
	newChatServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "7")
		w.WriteHeader(http.StatusTooManyRequests)
	})

	svc := &OpenAIService{APIKey: "k", Model: "m"}
	_, err := svc.Complete(context.Background(), []Message{{Role: RoleUser, Content: "hi"}}, false)

	var rl *RateLimitError
	if !errors.As(err, &rl) {
		t.Fatalf("Complete() error = %v, want *RateLimitError", err)
	}
	if rl.RetryAfter != 7*time.Second {
		t.Errorf("RetryAfter = %v, want 7s", rl.RetryAfter)
	}
}

func TestOpenAIServiceRateLimitedWithoutHeader(t *testing.T) {
	newChatServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	})

	svc := &OpenAIService{APIKey: "k", Model: "m"}
	_, err := svc.Complete(context.Background(), []Message{{Role: RoleUser, Content: "hi"}}, false)

	var rl *RateLimitError
	if !errors.As(err, &rl) {
		t.Fatalf("Complete() error = %v, want *RateLimitError", err)
	}
	if rl.RetryAfter != 0 {
		t.Errorf("RetryAfter = %v, want 0 (caller fallback)", rl.RetryAfter)
	}
}

func TestOpenAIServiceServerError(t *testing.T) {
	newChatServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream exploded", http.StatusBadGateway)
	})

	svc := &OpenAIService{APIKey: "k", Model: "m"}
	_, err := svc.Complete(context.Background(), []Message{{Role: RoleUser, Content: "hi"}}, false)
	if !errors.Is(err, ErrUnavailable) {
		t.Errorf("Complete() error = %v, want ErrUnavailable", err)
	}
}

func TestOpenAIServiceEmptyChoices(t *testing.T) {
	newChatServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices":[]}`))
	})

	svc := &OpenAIService{APIKey: "k", Model: "m"}
	_, err := svc.Complete(context.Background(), []Message{{Role: RoleUser, Content: "hi"}}, false)
	if !errors.Is(err, ErrUnavailable) {
		t.Errorf("Complete() error = %v, want ErrUnavailable", err)
	}
}
