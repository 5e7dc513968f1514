package analyze

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

type fakeClient struct {
	gotKey    string
	gotPrompt string
	result    string
	err       error
}

func (f *fakeClient) Generate(_ context.Context, apiKey, prompt string) (string, error) {
	f.gotKey = apiKey
	f.gotPrompt = prompt
	return f.result, f.err
}

type fakeKeys struct {
	keys map[string]string
	err  error
}

func (f *fakeKeys) Get(provider string) (string, bool, error) {
	if f.err != nil {
		return "", false, f.err
	}
	key, ok := f.keys[provider]
	return key, ok, nil
}

func TestAnalyzeUsesStoredKey(t *testing.T) {
	client := &fakeClient{result: "  notes  "}
	s := NewService(&fakeKeys{keys: map[string]string{"openai": "sk-stored"}})
	s.Register("openai", client, "sk-env")

	got, err := s.Analyze(context.Background(), "openai", "transcript body")
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if got != "notes" {
		t.Errorf("result = %q, want trimmed notes", got)
	}
	if client.gotKey != "sk-stored" {
		t.Errorf("key = %q, want stored key preferred", client.gotKey)
	}
	if !strings.HasPrefix(client.gotPrompt, NotesPrompt) {
		t.Error("prompt missing fixed notes instruction prefix")
	}
	if !strings.HasSuffix(client.gotPrompt, "transcript body") {
		t.Error("prompt missing transcript text")
	}
}

func TestAnalyzeFallsBackToEnvKey(t *testing.T) {
	client := &fakeClient{result: "ok"}
	s := NewService(&fakeKeys{keys: map[string]string{}})
	s.Register("google", client, "env-key")

	if _, err := s.Analyze(context.Background(), "google", "text"); err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if client.gotKey != "env-key" {
		t.Errorf("key = %q, want env fallback", client.gotKey)
	}
}

func TestAnalyzeNoCredential(t *testing.T) {
	s := NewService(&fakeKeys{keys: map[string]string{}})
	s.Register("openai", &fakeClient{}, "")

	_, err := s.Analyze(context.Background(), "openai", "text")
	if !errors.Is(err, ErrNoCredential) {
		t.Errorf("err = %v, want ErrNoCredential", err)
	}
}

func TestAnalyzeUnknownProvider(t *testing.T) {
	client := &fakeClient{}
	s := NewService(&fakeKeys{keys: map[string]string{"openai": "sk"}})
	s.Register("openai", client, "")

	if s.Known("anthropic") {
		t.Error("unregistered provider reported as known")
	}
	if _, err := s.Analyze(context.Background(), "anthropic", "text"); err == nil {
		t.Fatal("expected error for unknown provider")
	}
	if client.gotPrompt != "" {
		t.Error("client invoked for unknown provider")
	}
}

func TestBuildPrompt(t *testing.T) {
	prompt := BuildPrompt("hello")
	if !strings.HasPrefix(prompt, NotesPrompt) {
		t.Error("prompt missing template prefix")
	}
	if !strings.HasSuffix(prompt, "\n\nhello") {
		t.Errorf("prompt should end with separator and raw text, got %q", prompt[len(prompt)-12:])
	}
}

func TestGeminiGenerate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("key") != "g-key" {
			t.Errorf("key query param = %q", r.URL.Query().Get("key"))
		}
		var req geminiRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if len(req.Contents) != 1 || req.Contents[0].Role != "user" {
			t.Errorf("unexpected contents shape: %+v", req.Contents)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"generated notes"}]}}]}`))
	}))
	defer srv.Close()

	c := NewGeminiClient("gemini-2.5-flash")
	c.baseURL = srv.URL

	got, err := c.Generate(context.Background(), "g-key", "prompt")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if got != "generated notes" {
		t.Errorf("result = %q", got)
	}
}

func TestGeminiEmptyCandidates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"candidates":[]}`))
	}))
	defer srv.Close()

	c := NewGeminiClient("gemini-2.5-flash")
	c.baseURL = srv.URL

	got, err := c.Generate(context.Background(), "g-key", "prompt")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if got != "" {
		t.Errorf("result = %q, want empty", got)
	}
}

func TestGeminiUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"quota"}}`, http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := NewGeminiClient("gemini-2.5-flash")
	c.baseURL = srv.URL

	if _, err := c.Generate(context.Background(), "g-key", "prompt"); err == nil {
		t.Fatal("expected upstream error")
	}
}
