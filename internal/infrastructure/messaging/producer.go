package messaging

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"video-script-api/internal/domain/entity"
	"video-script-api/internal/domain/service"
	"video-script-api/pkg/logger"
)

var tracer = otel.Tracer("messaging")

// streamWriter *redis.Client 的 XAdd 子集
type streamWriter interface {
	XAdd(ctx context.Context, a *redis.XAddArgs) *redis.StringCmd
}

// Producer 消息生产者
type Producer struct {
	client streamWriter
	maxLen int64
}

// NewProducer 创建消息生产者
func NewProducer(client *redis.Client, maxLen int64) *Producer {
	return newProducer(client, maxLen)
}

func newProducer(client streamWriter, maxLen int64) *Producer {
	if maxLen <= 0 {
		maxLen = 100000
	}
	return &Producer{
		client: client,
		maxLen: maxLen,
	}
}

var _ service.ScriptEventPublisher = (*Producer)(nil)

// Publish 发布消息到指定流
func (p *Producer) Publish(ctx context.Context, stream Stream, msg *Message) (string, error) {
	ctx, span := tracer.Start(ctx, "producer.Publish",
		trace.WithAttributes(
			attribute.String("stream", string(stream)),
			attribute.String("message.id", msg.ID),
			attribute.String("message.type", msg.Type),
		))
	defer span.End()

	data, err := json.Marshal(msg)
	if err != nil {
		span.RecordError(err)
		return "", fmt.Errorf("failed to marshal message: %w", err)
	}

	result, err := p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: string(stream),
		MaxLen: p.maxLen,
		Approx: true,
		Values: map[string]any{
			"data": string(data),
		},
	}).Result()
	if err != nil {
		span.RecordError(err)
		return "", fmt.Errorf("failed to publish message: %w", err)
	}

	span.SetAttributes(attribute.String("stream.message_id", result))
	return result, nil
}

// PublishScriptGenerated 发布脚本生成事件
func (p *Producer) PublishScriptGenerated(ctx context.Context, s *entity.StoredScript) error {
	payload := &ScriptGeneratedMessage{
		ScriptID:       s.ID,
		Topic:          s.Topic,
		VideoLength:    s.VideoLength,
		ContentStyle:   s.ContentStyle,
		TargetAudience: s.TargetAudience,
		CreatedAt:      s.CreatedAt,
	}
	if s.Content != nil {
		payload.Title = s.Content.Title
		payload.SceneCount = len(s.Content.Scenes)
	}

	msg, err := NewMessage(s.ID, MessageTypeScriptGenerated, payload)
	if err != nil {
		return err
	}
	if v := ctx.Value(logger.RequestIDKey); v != nil {
		if rid, ok := v.(string); ok && rid != "" {
			msg.SetMetadata("request_id", rid)
		}
	}

	_, err = p.Publish(ctx, StreamScriptGenerated, msg)
	return err
}
