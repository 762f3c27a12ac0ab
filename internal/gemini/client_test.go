package gemini

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/tidwall/gjson"
	"google.golang.org/genai"

	"github.com/mark3labs/gemforward/internal/forwarder"
)

const generateResponse = `{
  "candidates": [{
    "content": {"role": "model", "parts": [{"text": "Hello"}, {"text": " there"}]},
    "finishReason": "STOP"
  }],
  "usageMetadata": {"promptTokenCount": 3, "candidatesTokenCount": 2, "totalTokenCount": 5},
  "modelVersion": "gemini-1.5-flash-002"
}`

const listResponse = `{
  "models": [
    {"name": "models/gemini-1.5-flash", "supportedGenerationMethods": ["generateContent", "countTokens"]},
    {"name": "models/text-embedding-004", "supportedGenerationMethods": ["embedContent"]}
  ]
}`

// fakeGemini is a minimal stand-in for the Gemini REST API.
type fakeGemini struct {
	mu      sync.Mutex
	body    []byte
	path    string
	apiKey  string
	respond string
	status  int
}

func (f *fakeGemini) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)

	f.mu.Lock()
	f.body = body
	f.path = r.URL.Path
	f.apiKey = r.Header.Get("x-goog-api-key")
	f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	status := f.status
	if status == 0 {
		status = http.StatusOK
	}
	w.WriteHeader(status)

	switch {
	case f.respond != "":
		_, _ = io.WriteString(w, f.respond)
	case strings.HasSuffix(r.URL.Path, ":generateContent"):
		_, _ = io.WriteString(w, generateResponse)
	default:
		_, _ = io.WriteString(w, listResponse)
	}
}

func newTestClient(t *testing.T, fake *fakeGemini) forwarder.Client {
	t.Helper()
	return dialFake(t, fake, forwarder.ClientConfig{APIKey: "test-key"})
}

func dialFake(t *testing.T, fake *fakeGemini, cfg forwarder.ClientConfig) forwarder.Client {
	t.Helper()
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	cfg.BaseURL = srv.URL + "/"
	c, err := Dial(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	return c
}

func TestGenerate(t *testing.T) {
	fake := &fakeGemini{}
	c := newTestClient(t, fake)

	reply, err := c.Generate(context.Background(), "say hello")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	if reply.Text != "Hello there" {
		t.Errorf("Text = %q, want %q", reply.Text, "Hello there")
	}
	if reply.Model != "gemini-1.5-flash-002" {
		t.Errorf("Model = %q", reply.Model)
	}
	if reply.Usage == nil || reply.Usage.PromptTokens != 3 || reply.Usage.CompletionTokens != 2 || reply.Usage.TotalTokens != 5 {
		t.Errorf("Usage = %+v", reply.Usage)
	}

	if !strings.Contains(fake.path, "models/"+DefaultModel+":generateContent") {
		t.Errorf("request path = %q, want default model", fake.path)
	}
	if fake.apiKey != "test-key" {
		t.Errorf("api key header = %q", fake.apiKey)
	}
	if got := gjson.GetBytes(fake.body, "contents.0.parts.0.text").String(); got != "say hello" {
		t.Errorf("sent text = %q", got)
	}
	if got := gjson.GetBytes(fake.body, "safetySettings.#").Int(); got != 4 {
		t.Errorf("safety settings = %d, want 4", got)
	}
}

func TestGenerate_NoCandidates(t *testing.T) {
	fake := &fakeGemini{respond: `{"candidates": []}`}
	c := newTestClient(t, fake)

	reply, err := c.Generate(context.Background(), "x")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if reply.Text != "" {
		t.Errorf("Text = %q, want empty", reply.Text)
	}
	if reply.Usage != nil {
		t.Errorf("Usage = %+v, want nil", reply.Usage)
	}
}

func TestGenerate_HTTPError(t *testing.T) {
	fake := &fakeGemini{
		status:  http.StatusBadRequest,
		respond: `{"error": {"code": 400, "message": "API key not valid", "status": "INVALID_ARGUMENT"}}`,
	}
	c := newTestClient(t, fake)

	if _, err := c.Generate(context.Background(), "x"); err == nil {
		t.Fatal("expected error")
	} else if !strings.Contains(err.Error(), "API key not valid") {
		t.Errorf("error should carry the API message: %v", err)
	}
}

func TestListModels(t *testing.T) {
	c := newTestClient(t, &fakeGemini{})

	models, err := c.ListModels(context.Background())
	if err != nil {
		t.Fatalf("ListModels: %v", err)
	}
	if len(models) != 2 {
		t.Fatalf("got %d models, want 2", len(models))
	}
	if models[0].Name != "models/gemini-1.5-flash" || !models[0].Supports(forwarder.GenerateContentAction) {
		t.Errorf("first model = %+v", models[0])
	}
	if models[1].Supports(forwarder.GenerateContentAction) {
		t.Errorf("embedding model should not support generateContent: %+v", models[1])
	}
}

func TestDial_ExplicitModel(t *testing.T) {
	fake := &fakeGemini{}
	c := dialFake(t, fake, forwarder.ClientConfig{APIKey: "test-key", Model: "gemini-pro"})

	if _, err := c.Generate(context.Background(), "x"); err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if !strings.Contains(fake.path, "models/gemini-pro:generateContent") {
		t.Errorf("request path = %q, want explicit model", fake.path)
	}
}

func TestGenerationConfig(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		cfg := generationConfig(forwarder.ClientConfig{})
		if *cfg.Temperature != DefaultTemperature || *cfg.TopP != DefaultTopP || *cfg.TopK != DefaultTopK {
			t.Errorf("sampling = %v/%v/%v", *cfg.Temperature, *cfg.TopP, *cfg.TopK)
		}
		if cfg.MaxOutputTokens != DefaultMaxOutputTokens {
			t.Errorf("MaxOutputTokens = %d", cfg.MaxOutputTokens)
		}
		for _, s := range cfg.SafetySettings {
			if s.Threshold != genai.HarmBlockThresholdBlockNone {
				t.Errorf("%s threshold = %s", s.Category, s.Threshold)
			}
		}
	})

	t.Run("overrides", func(t *testing.T) {
		zero := float32(0)
		cfg := generationConfig(forwarder.ClientConfig{
			Temperature:     &zero,
			TopP:            0.5,
			TopK:            10,
			MaxOutputTokens: 256,
		})
		if *cfg.Temperature != 0 || *cfg.TopP != 0.5 || *cfg.TopK != 10 || cfg.MaxOutputTokens != 256 {
			t.Errorf("got %v/%v/%v/%d", *cfg.Temperature, *cfg.TopP, *cfg.TopK, cfg.MaxOutputTokens)
		}
	})
}
