package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func collect(t *testing.T, client Client, req AskRequest) (string, error) {
	t.Helper()
	var b strings.Builder
	err := client.Stream(context.Background(), req, func(chunk string) error {
		b.WriteString(chunk)
		return nil
	})
	return b.String(), err
}

func TestGeminiStream(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1beta/models/gemini-2.0-flash:streamGenerateContent" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		if got := r.URL.Query().Get("alt"); got != "sse" {
			t.Errorf("alt = %q, want sse", got)
		}
		if got := r.Header.Get("x-goog-api-key"); got != "g-test" {
			t.Errorf("x-goog-api-key = %q", got)
		}
		var payload map[string]any
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Errorf("decode payload: %v", err)
		}
		system, _ := payload["systemInstruction"].(map[string]any)
		parts, _ := system["parts"].([]any)
		if len(parts) != 1 || parts[0].(map[string]any)["text"] != "You can only answer in German" {
			t.Errorf("systemInstruction = %v", payload["systemInstruction"])
		}
		w.Header().Set("Content-Type", "text/event-stream")
		for _, text := range []string{"Mir ", "geht ", "es gut."} {
			fmt.Fprintf(w, "data: {\"candidates\":[{\"content\":{\"parts\":[{\"text\":%q}]}}]}\r\n\r\n", text)
		}
	}))
	defer server.Close()

	client, err := New("gemini", ClientOptions{APIKey: "g-test", BaseURL: server.URL + "/v1beta"})
	if err != nil {
		t.Fatalf("New(gemini) error = %v", err)
	}
	got, err := collect(t, client, AskRequest{
		Model:    "gemini-2.0-flash",
		Prompt:   "You can only answer in German",
		Question: "Wie geht es Ihnen?",
	})
	if err != nil {
		t.Fatalf("Stream error = %v", err)
	}
	if got != "Mir geht es gut." {
		t.Fatalf("streamed text = %q", got)
	}
}

func TestGeminiStreamRequiresKey(t *testing.T) {
	client, err := New("gemini", ClientOptions{BaseURL: "http://127.0.0.1:1"})
	if err != nil {
		t.Fatalf("New(gemini) error = %v", err)
	}
	if _, err := collect(t, client, AskRequest{Model: "m", Prompt: "p", Question: "q"}); err == nil {
		t.Fatal("expected missing key error")
	}
}

func TestOpenAICompatibleStream(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		var payload map[string]any
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Errorf("decode payload: %v", err)
		}
		if payload["stream"] != true {
			t.Errorf("payload.stream = %v", payload["stream"])
		}
		fmt.Fprint(w, ": keep-alive\n\n")
		fmt.Fprint(w, "data: {\"choices\":[{\"delta\":{\"role\":\"assistant\"}}]}\n\n")
		fmt.Fprint(w, "data: {\"choices\":[{\"delta\":{\"content\":\"I'm \"}}]}\n\n")
		fmt.Fprint(w, "data: {\"choices\":[{\"delta\":{\"content\":\"fine.\"}}]}\n\n")
		fmt.Fprint(w, "data: [DONE]\n\n")
	}))
	defer server.Close()

	client, err := New("openai", ClientOptions{APIKey: "sk", BaseURL: server.URL + "/v1"})
	if err != nil {
		t.Fatalf("New(openai) error = %v", err)
	}
	got, err := collect(t, client, AskRequest{Model: "gpt-test", Prompt: "p", Question: "How are you?"})
	if err != nil {
		t.Fatalf("Stream error = %v", err)
	}
	if got != "I'm fine." {
		t.Fatalf("streamed text = %q", got)
	}
}

func TestAnthropicStream(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/messages" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		fmt.Fprint(w, "event: message_start\ndata: {\"type\":\"message_start\"}\n\n")
		fmt.Fprint(w, "event: content_block_delta\ndata: {\"type\":\"content_block_delta\",\"delta\":{\"type\":\"text_delta\",\"text\":\"元気\"}}\n\n")
		fmt.Fprint(w, "event: content_block_delta\ndata: {\"type\":\"content_block_delta\",\"delta\":{\"type\":\"text_delta\",\"text\":\"です。\"}}\n\n")
		fmt.Fprint(w, "event: message_stop\ndata: {\"type\":\"message_stop\"}\n\n")
	}))
	defer server.Close()

	client, err := New("anthropic", ClientOptions{APIKey: "ak", BaseURL: server.URL})
	if err != nil {
		t.Fatalf("New(anthropic) error = %v", err)
	}
	got, err := collect(t, client, AskRequest{Model: "claude", Prompt: "p", Question: "お元気ですか?"})
	if err != nil {
		t.Fatalf("Stream error = %v", err)
	}
	if got != "元気です。" {
		t.Fatalf("streamed text = %q", got)
	}
}

func TestAnthropicStreamErrorEvent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "event: content_block_delta\ndata: {\"delta\":{\"type\":\"text_delta\",\"text\":\"partial\"}}\n\n")
		fmt.Fprint(w, "event: error\ndata: {\"type\":\"error\",\"error\":{\"type\":\"overloaded_error\",\"message\":\"Overloaded\"}}\n\n")
	}))
	defer server.Close()

	client, _ := New("anthropic", ClientOptions{APIKey: "ak", BaseURL: server.URL})
	got, err := collect(t, client, AskRequest{Model: "claude", Prompt: "p", Question: "q"})
	if !IsUpstream(err) {
		t.Fatalf("expected upstream error, got %v", err)
	}
	if got != "partial" {
		t.Fatalf("streamed text before failure = %q", got)
	}
}

func TestOllamaStream(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload map[string]any
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Errorf("decode payload: %v", err)
		}
		if payload["stream"] != true {
			t.Errorf("payload.stream = %v", payload["stream"])
		}
		fmt.Fprintln(w, `{"message":{"content":"你好"},"done":false}`)
		fmt.Fprintln(w, ``)
		fmt.Fprintln(w, `{"message":{"content":"！"},"done":false}`)
		fmt.Fprintln(w, `{"message":{"content":""},"done":true}`)
	}))
	defer server.Close()

	client, _ := New("ollama", ClientOptions{BaseURL: server.URL})
	got, err := collect(t, client, AskRequest{Model: "llama3.2", Prompt: "p", Question: "你好吗？"})
	if err != nil {
		t.Fatalf("Stream error = %v", err)
	}
	if got != "你好！" {
		t.Fatalf("streamed text = %q", got)
	}
}

func TestStreamStatusErrorIsUpstream(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":"quota"}`))
	}))
	defer server.Close()

	client, _ := New("openrouter", ClientOptions{APIKey: "sk", BaseURL: server.URL})
	_, err := collect(t, client, AskRequest{Model: "m", Prompt: "p", Question: "q"})

	var ue *UpstreamError
	if !errors.As(err, &ue) {
		t.Fatalf("expected *UpstreamError, got %T %v", err, err)
	}
	if ue.Provider != "openrouter" || !strings.HasPrefix(ue.Status, "429") {
		t.Fatalf("unexpected upstream error: %+v", ue)
	}
	if !strings.Contains(ue.Error(), "quota") {
		t.Fatalf("error text = %q", ue.Error())
	}
}

func TestStreamCallbackErrorStops(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "data: {\"choices\":[{\"delta\":{\"content\":\"a\"}}]}\n\n")
		fmt.Fprint(w, "data: {\"choices\":[{\"delta\":{\"content\":\"b\"}}]}\n\n")
	}))
	defer server.Close()

	client, _ := New("openai", ClientOptions{APIKey: "sk", BaseURL: server.URL})
	stop := errors.New("stop")
	calls := 0
	err := client.Stream(context.Background(), AskRequest{Model: "m", Prompt: "p", Question: "q"}, func(string) error {
		calls++
		return stop
	})
	if !errors.Is(err, stop) {
		t.Fatalf("Stream error = %v, want stop", err)
	}
	if calls != 1 {
		t.Fatalf("callback calls = %d, want 1", calls)
	}
}

func TestReadSSEMultilineData(t *testing.T) {
	var got []string
	err := readSSE(context.Background(), "test", strings.NewReader("event: x\ndata: one\ndata: two\n\ndata: tail"), func(event, data string) error {
		got = append(got, event+"|"+data)
		return nil
	})
	if err != nil {
		t.Fatalf("readSSE error = %v", err)
	}
	want := []string{"x|one\ntwo", "|tail"}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Fatalf("events = %q, want %q", got, want)
	}
}
