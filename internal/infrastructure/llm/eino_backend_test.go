package llm

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	goopenai "github.com/meguminnnnnnnnn/go-openai"

	"video-script-api/internal/domain/service"
)

type scriptedChatModel struct {
	errs  []error
	calls int
	reply *schema.Message
}

func (m *scriptedChatModel) Generate(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.Message, error) {
	m.calls++
	if len(m.errs) > 0 {
		err := m.errs[0]
		m.errs = m.errs[1:]
		if err != nil {
			return nil, err
		}
	}
	return m.reply, nil
}

func (m *scriptedChatModel) Stream(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, errors.New("not implemented")
}

func TestEinoBackendFallbackWithoutSchema(t *testing.T) {
	cm := &scriptedChatModel{
		errs: []error{&goopenai.APIError{HTTPStatusCode: http.StatusBadRequest, Message: "Invalid parameter: 'response_format' of type 'json_schema' is not supported with this model."}},
		reply: &schema.Message{
			Role:    schema.Assistant,
			Content: ` {"title":"x"} `,
			ResponseMeta: &schema.ResponseMeta{
				FinishReason: "stop",
				Usage:        &schema.TokenUsage{PromptTokens: 5, CompletionTokens: 7},
			},
		},
	}
	b := newEinoBackendWithModel("openai", "gpt-test", cm)

	res, err := b.Complete(context.Background(), testCompletion())
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if cm.calls != 2 {
		t.Fatalf("calls: want=%d got=%d", 2, cm.calls)
	}
	if res.Text != `{"title":"x"}` || res.PromptTokens != 5 || res.CompletionTokens != 7 {
		t.Fatalf("result: got=%+v", res)
	}
}

func TestEinoBackendErrorClassification(t *testing.T) {
	cases := []struct {
		name string
		err  error
		kind service.BackendErrorKind
	}{
		{name: "unauthorized", err: &goopenai.APIError{HTTPStatusCode: 401, Code: "invalid_api_key", Message: "Incorrect API key"}, kind: service.BackendErrorAuthentication},
		{name: "insufficient quota", err: &goopenai.APIError{HTTPStatusCode: 429, Code: "insufficient_quota", Type: "insufficient_quota"}, kind: service.BackendErrorQuotaExceeded},
		{name: "rate limit", err: &goopenai.APIError{HTTPStatusCode: 429, Code: "rate_limit_exceeded"}, kind: service.BackendErrorRateLimited},
		{name: "request error 403", err: &goopenai.RequestError{HTTPStatusCode: 403, Err: errors.New("forbidden")}, kind: service.BackendErrorAuthentication},
		{name: "server error", err: &goopenai.APIError{HTTPStatusCode: 500, Message: "rate limit service down"}, kind: service.BackendErrorUnknown},
		{name: "network", err: errors.New("dial tcp: connection refused"), kind: service.BackendErrorUnknown},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cm := &scriptedChatModel{errs: []error{tc.err}}
			b := newEinoBackendWithModel("openai", "gpt-test", cm)
			_, err := b.Complete(context.Background(), testCompletion())
			var be *service.BackendError
			if !errors.As(err, &be) {
				t.Fatalf("want BackendError, got=%v", err)
			}
			if be.Kind != tc.kind {
				t.Fatalf("kind: want=%q got=%q", tc.kind, be.Kind)
			}
			if cm.calls != 1 {
				t.Fatalf("calls: want=%d got=%d", 1, cm.calls)
			}
		})
	}
}
