// Package messaging 提供基于 Redis Stream 的事件发布
package messaging

import (
	"encoding/json"
	"time"
)

// Message 消息结构
type Message struct {
	ID        string            `json:"id"`
	Type      string            `json:"type"`
	Payload   json.RawMessage   `json:"payload"`
	Metadata  map[string]string `json:"metadata,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
}

// NewMessage 创建新消息
func NewMessage(id, msgType string, payload any) (*Message, error) {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	return &Message{
		ID:        id,
		Type:      msgType,
		Payload:   payloadBytes,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// SetMetadata 设置元数据
func (m *Message) SetMetadata(key, value string) {
	if m.Metadata == nil {
		m.Metadata = make(map[string]string)
	}
	m.Metadata[key] = value
}

// UnmarshalPayload 解析消息载荷
func (m *Message) UnmarshalPayload(v any) error {
	return json.Unmarshal(m.Payload, v)
}

// Stream 流定义
type Stream string

const (
	StreamScriptGenerated Stream = "stream:video_script:generated"
)

const MessageTypeScriptGenerated = "video_script.generated"

// ScriptGeneratedMessage 脚本生成事件载荷，不含完整产物，消费方按 ID 回查
type ScriptGeneratedMessage struct {
	ScriptID       string    `json:"script_id"`
	Topic          string    `json:"topic"`
	VideoLength    string    `json:"video_length"`
	ContentStyle   string    `json:"content_style"`
	TargetAudience string    `json:"target_audience,omitempty"`
	Title          string    `json:"title"`
	SceneCount     int       `json:"scene_count"`
	CreatedAt      time.Time `json:"created_at"`
}
