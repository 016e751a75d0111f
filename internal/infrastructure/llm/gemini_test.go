package llm

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cloudwego/eino/schema"
	"github.com/eino-contrib/jsonschema"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"video-script-api/internal/config"
	"video-script-api/internal/domain/service"
)

func newTestGemini(t *testing.T, h http.HandlerFunc) (*GeminiBackend, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	b, err := NewGeminiBackend(context.Background(), "gemini", config.ProviderConfig{
		APIKey:      "test-key",
		BaseURL:     srv.URL + "/v1beta/",
		Model:       "gemini-test",
		MaxTokens:   1024,
		Temperature: 0.7,
		Timeout:     5 * time.Second,
	}, nil)
	if err != nil {
		t.Fatalf("NewGeminiBackend: %v", err)
	}
	return b, srv
}

func testSchema() *jsonschema.Schema {
	props := jsonschema.NewProperties()
	props.Set("title", &jsonschema.Schema{Type: "string"})
	props.Set("tags", &jsonschema.Schema{Type: "array", Items: &jsonschema.Schema{Type: "string"}})
	return &jsonschema.Schema{
		Type:                 "object",
		Properties:           props,
		Required:             []string{"title", "tags"},
		AdditionalProperties: jsonschema.FalseSchema,
	}
}

func testCompletion() *service.Completion {
	return &service.Completion{
		Messages: []*schema.Message{
			schema.SystemMessage("system prompt"),
			schema.UserMessage("user prompt"),
		},
		SchemaName: "video_script",
		Schema:     testSchema(),
	}
}

func TestGeminiCompleteRequestAndResponse(t *testing.T) {
	var gotPath, gotKey string
	var gotBody map[string]any
	b, _ := newTestGemini(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("x-goog-api-key")
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &gotBody)
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{
			"candidates": [{"content": {"role": "model", "parts": [{"text": "{\"title\":"}, {"text": "\"x\"}"}]}, "finishReason": "STOP"}],
			"usageMetadata": {"promptTokenCount": 11, "candidatesTokenCount": 22},
			"modelVersion": "gemini-test-001"
		}`)
	})

	res, err := b.Complete(context.Background(), testCompletion())
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if gotPath != "/v1beta/models/gemini-test:generateContent" {
		t.Fatalf("path: got=%q", gotPath)
	}
	if gotKey != "test-key" {
		t.Fatalf("api key header: got=%q", gotKey)
	}
	if res.Text != `{"title":"x"}` {
		t.Fatalf("text: got=%q", res.Text)
	}
	if res.PromptTokens != 11 || res.CompletionTokens != 22 || res.Model != "gemini-test-001" || res.FinishReason != "STOP" {
		t.Fatalf("result: got=%+v", res)
	}

	sys := gotBody["systemInstruction"].(map[string]any)["parts"].([]any)[0].(map[string]any)["text"]
	if sys != "system prompt" {
		t.Fatalf("systemInstruction: got=%v", sys)
	}
	contents := gotBody["contents"].([]any)
	if len(contents) != 1 || contents[0].(map[string]any)["role"] != "user" {
		t.Fatalf("contents: got=%v", contents)
	}
	gen := gotBody["generationConfig"].(map[string]any)
	if gen["responseMimeType"] != "application/json" {
		t.Fatalf("responseMimeType: got=%v", gen["responseMimeType"])
	}
	rs := gen["responseSchema"].(map[string]any)
	if rs["type"] != "OBJECT" {
		t.Fatalf("schema type: got=%v", rs["type"])
	}
	if _, ok := rs["additionalProperties"]; ok {
		t.Fatalf("additionalProperties must be stripped")
	}
	tags := rs["properties"].(map[string]any)["tags"].(map[string]any)
	if tags["type"] != "ARRAY" || tags["items"].(map[string]any)["type"] != "STRING" {
		t.Fatalf("nested schema: got=%v", tags)
	}
	if gen["maxOutputTokens"].(float64) != 1024 {
		t.Fatalf("maxOutputTokens: got=%v", gen["maxOutputTokens"])
	}
}

func TestGeminiNoCandidatesYieldsEmptyText(t *testing.T) {
	b, _ := newTestGemini(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"promptFeedback": {"blockReason": "SAFETY"}}`)
	})
	res, err := b.Complete(context.Background(), testCompletion())
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if res.Text != "" || res.FinishReason != "SAFETY" {
		t.Fatalf("result: got=%+v", res)
	}
}

func TestGeminiErrorClassification(t *testing.T) {
	cases := []struct {
		name   string
		status int
		body   string
		kind   service.BackendErrorKind
	}{
		{
			name:   "invalid key",
			status: http.StatusBadRequest,
			body:   `{"error":{"code":400,"message":"API key not valid. Please pass a valid API key.","status":"INVALID_ARGUMENT","details":[{"@type":"type.googleapis.com/google.rpc.ErrorInfo","reason":"API_KEY_INVALID","domain":"googleapis.com"}]}}`,
			kind:   service.BackendErrorAuthentication,
		},
		{
			name:   "permission denied",
			status: http.StatusForbidden,
			body:   `{"error":{"code":403,"message":"denied","status":"PERMISSION_DENIED"}}`,
			kind:   service.BackendErrorAuthentication,
		},
		{
			name:   "daily quota",
			status: http.StatusTooManyRequests,
			body:   `{"error":{"code":429,"message":"You exceeded your current quota","status":"RESOURCE_EXHAUSTED","details":[{"@type":"type.googleapis.com/google.rpc.QuotaFailure","violations":[{"quotaMetric":"generativelanguage.googleapis.com/generate_content_free_tier_requests","quotaId":"GenerateRequestsPerDayPerProjectPerModel-FreeTier"}]}]}}`,
			kind:   service.BackendErrorQuotaExceeded,
		},
		{
			name:   "per minute limit",
			status: http.StatusTooManyRequests,
			body:   `{"error":{"code":429,"message":"Resource has been exhausted","status":"RESOURCE_EXHAUSTED","details":[{"@type":"type.googleapis.com/google.rpc.QuotaFailure","violations":[{"quotaId":"GenerateRequestsPerMinutePerProjectPerModel-FreeTier"}]}]}}`,
			kind:   service.BackendErrorRateLimited,
		},
		{
			name:   "plain 429",
			status: http.StatusTooManyRequests,
			body:   `too many requests`,
			kind:   service.BackendErrorRateLimited,
		},
		{
			name:   "server error mentioning quota",
			status: http.StatusInternalServerError,
			body:   `{"error":{"code":500,"message":"quota backend unavailable","status":"INTERNAL"}}`,
			kind:   service.BackendErrorUnknown,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			b, _ := newTestGemini(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = io.WriteString(w, tc.body)
			})
			_, err := b.Complete(context.Background(), testCompletion())
			var be *service.BackendError
			if !errors.As(err, &be) {
				t.Fatalf("want BackendError, got=%v", err)
			}
			if be.Kind != tc.kind {
				t.Fatalf("kind: want=%q got=%q (err=%v)", tc.kind, be.Kind, be)
			}
			if be.StatusCode != tc.status {
				t.Fatalf("status: want=%d got=%d", tc.status, be.StatusCode)
			}
		})
	}
}

func TestGeminiCompleteRecordsSpan(t *testing.T) {
	rec := tracetest.NewSpanRecorder()
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec)))
	t.Cleanup(func() { otel.SetTracerProvider(prev) })

	b, _ := newTestGemini(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"candidates":[{"content":{"parts":[{"text":"{}"}]},"finishReason":"STOP"}],"usageMetadata":{"promptTokenCount":3,"candidatesTokenCount":4}}`)
	})
	ctx := service.WithGenerationScope(context.Background(), service.GenerationScope{Workflow: "video_script_generate", Provider: "gemini"})
	if _, err := b.Complete(ctx, testCompletion()); err != nil {
		t.Fatalf("Complete: %v", err)
	}

	spans := rec.Ended()
	if len(spans) != 1 || spans[0].Name() != "llm.generate" {
		t.Fatalf("spans: want one llm.generate, got=%d", len(spans))
	}
	attrs := map[attribute.Key]attribute.Value{}
	for _, kv := range spans[0].Attributes() {
		attrs[kv.Key] = kv.Value
	}
	if attrs["llm.workflow"].AsString() != "video_script_generate" || attrs["llm.model"].AsString() != "gemini-test" {
		t.Fatalf("span attributes: got=%v", attrs)
	}
	if attrs["llm.completion_tokens"].AsInt64() != 4 {
		t.Fatalf("completion tokens: want=%d got=%d", 4, attrs["llm.completion_tokens"].AsInt64())
	}
}

func TestFactoryResolveAndLazyGet(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
	}))
	defer srv.Close()

	cfg := &config.Config{LLM: config.LLMConfig{
		DefaultProvider: "gemini",
		Providers: map[string]config.ProviderConfig{
			"gemini": {BaseURL: srv.URL, Model: "gemini-test"},
			"openai": {Kind: config.ProviderKindOpenAI, APIKey: "sk-test", Model: "gpt-test"},
		},
	}}
	f := NewBackendFactory(cfg)

	name, ok, err := f.Resolve("")
	if err != nil || name != "gemini" || ok {
		t.Fatalf("Resolve default: name=%q ok=%v err=%v", name, ok, err)
	}
	if _, ok, _ := f.Resolve("openai"); !ok {
		t.Fatalf("Resolve openai: expected credential present")
	}
	if _, _, err := f.Resolve("missing"); err == nil {
		t.Fatalf("Resolve missing: expected error")
	}

	// 凭证在运行期补齐后立即生效
	cfg.LLM.Providers["gemini"] = config.ProviderConfig{APIKey: "late-key", BaseURL: srv.URL, Model: "gemini-test"}
	if _, ok, _ := f.Resolve("gemini"); !ok {
		t.Fatalf("Resolve must read the credential at call time")
	}

	b1, err := f.Get(context.Background(), "")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if _, ok := b1.(*GeminiBackend); !ok {
		t.Fatalf("Get: want *GeminiBackend, got=%T", b1)
	}
	b2, _ := f.Get(context.Background(), "gemini")
	if b1 != b2 {
		t.Fatalf("Get must cache backends")
	}
	if atomic.LoadInt32(&hits) != 0 {
		t.Fatalf("constructing a backend must not call the network")
	}
}

func TestSplitGeminiBaseURL(t *testing.T) {
	cases := []struct {
		base, version     string
		wantBase, wantVer string
	}{
		{base: "", version: "", wantBase: defaultGeminiBaseURL, wantVer: "v1beta"},
		{base: "https://generativelanguage.googleapis.com/v1beta", wantBase: "https://generativelanguage.googleapis.com/", wantVer: "v1beta"},
		{base: "https://generativelanguage.googleapis.com/", version: "v1", wantBase: "https://generativelanguage.googleapis.com/", wantVer: "v1"},
		{base: "http://127.0.0.1:8080", wantBase: "http://127.0.0.1:8080/", wantVer: "v1beta"},
	}
	for _, tc := range cases {
		base, ver := splitGeminiBaseURL(tc.base, tc.version)
		if base != tc.wantBase || ver != tc.wantVer {
			t.Fatalf("splitGeminiBaseURL(%q, %q): want=%q,%q got=%q,%q", tc.base, tc.version, tc.wantBase, tc.wantVer, base, ver)
		}
	}
}

func TestToGeminiSchemaPropertyOrdering(t *testing.T) {
	props := jsonschema.NewProperties()
	props.Set("b", &jsonschema.Schema{Type: "boolean"})
	props.Set("a", &jsonschema.Schema{Type: "integer", Minimum: "1"})
	out := toGeminiSchema(&jsonschema.Schema{
		Type:                 "object",
		Properties:           props,
		Required:             []string{"b", "a"},
		AdditionalProperties: jsonschema.FalseSchema,
	})
	if len(out.PropertyOrdering) != 2 || out.PropertyOrdering[0] != "b" {
		t.Fatalf("propertyOrdering: got=%v", out.PropertyOrdering)
	}
	a := out.Properties["a"]
	if a.Type != "INTEGER" || a.Minimum == nil || *a.Minimum != 1 {
		t.Fatalf("property a: got=%+v", a)
	}
	if out.Type != "OBJECT" {
		t.Fatalf("type: got=%v", out.Type)
	}
	raw, _ := json.Marshal(out)
	var m map[string]any
	_ = json.Unmarshal(raw, &m)
	if _, ok := m["additionalProperties"]; ok {
		t.Fatalf("additionalProperties must be dropped: %s", raw)
	}
}
