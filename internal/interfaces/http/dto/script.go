package dto

import (
	"time"

	"video-script-api/internal/domain/entity"
)

// ScriptResponse 已存储脚本
type ScriptResponse struct {
	ID             string                      `json:"id"`
	Topic          string                      `json:"topic"`
	VideoLength    string                      `json:"videoLength"`
	ContentStyle   string                      `json:"contentStyle"`
	TargetAudience string                      `json:"targetAudience,omitempty"`
	Content        *entity.VideoScriptArtifact `json:"content"`
	CreatedAt      string                      `json:"createdAt"`
}

// ToScriptResponse 转换存储记录
func ToScriptResponse(s *entity.StoredScript) *ScriptResponse {
	if s == nil {
		return nil
	}
	return &ScriptResponse{
		ID:             s.ID,
		Topic:          s.Topic,
		VideoLength:    s.VideoLength,
		ContentStyle:   s.ContentStyle,
		TargetAudience: s.TargetAudience,
		Content:        s.Content,
		CreatedAt:      s.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
}

// ToScriptListResponse 转换列表，空结果输出 []
func ToScriptListResponse(items []*entity.StoredScript) []*ScriptResponse {
	out := make([]*ScriptResponse, 0, len(items))
	for _, s := range items {
		out = append(out, ToScriptResponse(s))
	}
	return out
}
