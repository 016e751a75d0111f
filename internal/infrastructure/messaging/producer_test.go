package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"video-script-api/internal/domain/entity"
	"video-script-api/pkg/logger"
)

type recordingStream struct {
	args []*redis.XAddArgs
	err  error
}

func (r *recordingStream) XAdd(ctx context.Context, a *redis.XAddArgs) *redis.StringCmd {
	r.args = append(r.args, a)
	if r.err != nil {
		return redis.NewStringResult("", r.err)
	}
	return redis.NewStringResult("1700000000000-0", nil)
}

func TestPublishScriptGenerated(t *testing.T) {
	stream := &recordingStream{}
	p := newProducer(stream, 0)

	created := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	s := &entity.StoredScript{
		ID:           "b2c1",
		Topic:        "coral reefs",
		VideoLength:  "3 minutes",
		ContentStyle: "Documentary",
		CreatedAt:    created,
		Content: &entity.VideoScriptArtifact{
			Title:  "Reefs",
			Scenes: []entity.Scene{{ID: 1}, {ID: 2}},
		},
	}
	ctx := logger.WithContext(context.Background(), logger.RequestIDKey, "req-9")
	if err := p.PublishScriptGenerated(ctx, s); err != nil {
		t.Fatalf("PublishScriptGenerated: %v", err)
	}

	if len(stream.args) != 1 {
		t.Fatalf("XAdd calls: want=1 got=%d", len(stream.args))
	}
	a := stream.args[0]
	if a.Stream != string(StreamScriptGenerated) {
		t.Fatalf("stream: want=%q got=%q", StreamScriptGenerated, a.Stream)
	}
	if a.MaxLen != 100000 || !a.Approx {
		t.Fatalf("trim: want MaxLen=100000 approx got MaxLen=%d approx=%v", a.MaxLen, a.Approx)
	}

	values, ok := a.Values.(map[string]any)
	if !ok {
		t.Fatalf("values type: %T", a.Values)
	}
	var msg Message
	if err := json.Unmarshal([]byte(values["data"].(string)), &msg); err != nil {
		t.Fatalf("decode message: %v", err)
	}
	if msg.Type != MessageTypeScriptGenerated || msg.ID != "b2c1" {
		t.Fatalf("message: unexpected %+v", msg)
	}
	if msg.Metadata["request_id"] != "req-9" {
		t.Fatalf("request_id: want=%q got=%q", "req-9", msg.Metadata["request_id"])
	}

	var payload ScriptGeneratedMessage
	if err := msg.UnmarshalPayload(&payload); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if payload.Title != "Reefs" || payload.SceneCount != 2 || !payload.CreatedAt.Equal(created) {
		t.Fatalf("payload: unexpected %+v", payload)
	}
}

func TestPublishScriptGeneratedError(t *testing.T) {
	boom := errors.New("READONLY")
	p := newProducer(&recordingStream{err: boom}, 10)
	err := p.PublishScriptGenerated(context.Background(), &entity.StoredScript{ID: "x"})
	if !errors.Is(err, boom) {
		t.Fatalf("want wrapped %v got=%v", boom, err)
	}
}
