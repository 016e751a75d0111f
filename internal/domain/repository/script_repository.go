package repository

import (
	"context"

	"video-script-api/internal/domain/entity"
)

// ScriptRepository 视频脚本存储接口
//
// 记录创建后不可变，不提供更新/删除。返回值均为副本，调用方修改不会影响存储内容。
type ScriptRepository interface {
	// Create 分配新 ID、记录创建时间并保存
	Create(ctx context.Context, req *entity.GenerationRequest, artifact *entity.VideoScriptArtifact) (*entity.StoredScript, error)
	// GetByID 按 ID 查询，不存在时返回 (nil, nil)
	GetByID(ctx context.Context, id string) (*entity.StoredScript, error)
	// ListRecent 按创建时间倒序返回最多 limit 条记录，limit 非正数时取默认值
	ListRecent(ctx context.Context, limit int) ([]*entity.StoredScript, error)
	// Count 记录总数
	Count(ctx context.Context) (int64, error)
}
