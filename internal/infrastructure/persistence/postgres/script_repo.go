package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"video-script-api/internal/domain/entity"
	"video-script-api/internal/domain/repository"
	"video-script-api/pkg/metrics"
)

// scriptModel video_scripts 表结构，产物整体存为 jsonb
type scriptModel struct {
	ID             string                      `gorm:"primaryKey;type:uuid"`
	Topic          string                      `gorm:"type:text;not null"`
	VideoLength    string                      `gorm:"type:varchar(100);not null"`
	ContentStyle   string                      `gorm:"type:varchar(100);not null"`
	TargetAudience string                      `gorm:"type:varchar(100);not null;default:''"`
	Content        *entity.VideoScriptArtifact `gorm:"type:jsonb;serializer:json"`
	CreatedAt      time.Time                   `gorm:"not null;index:idx_video_scripts_created_at,sort:desc"`
}

func (scriptModel) TableName() string {
	return "video_scripts"
}

func toScriptModel(s *entity.StoredScript) *scriptModel {
	return &scriptModel{
		ID:             s.ID,
		Topic:          s.Topic,
		VideoLength:    s.VideoLength,
		ContentStyle:   s.ContentStyle,
		TargetAudience: s.TargetAudience,
		Content:        s.Content,
		CreatedAt:      s.CreatedAt,
	}
}

func (m *scriptModel) toEntity() *entity.StoredScript {
	return &entity.StoredScript{
		ID:             m.ID,
		Topic:          m.Topic,
		VideoLength:    m.VideoLength,
		ContentStyle:   m.ContentStyle,
		TargetAudience: m.TargetAudience,
		Content:        m.Content,
		CreatedAt:      m.CreatedAt.UTC(),
	}
}

// ScriptRepository PostgreSQL 版视频脚本存储
type ScriptRepository struct {
	client *Client
	limits repository.ListLimit
	now    func() time.Time
}

func NewScriptRepository(client *Client, limits repository.ListLimit) *ScriptRepository {
	return &ScriptRepository{client: client, limits: limits, now: time.Now}
}

var _ repository.ScriptRepository = (*ScriptRepository)(nil)

func (r *ScriptRepository) Create(ctx context.Context, req *entity.GenerationRequest, artifact *entity.VideoScriptArtifact) (*entity.StoredScript, error) {
	ctx, span := tracer.Start(ctx, "postgres.ScriptRepository.Create")
	defer span.End()

	s := entity.NewStoredScript(req, artifact.Clone())
	s.ID = uuid.NewString()
	// 与 timestamptz 精度对齐，保证回读结果一致
	s.CreatedAt = r.now().UTC().Truncate(time.Microsecond)

	if err := r.client.db.WithContext(ctx).Create(toScriptModel(s)).Error; err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to create video script: %w", err)
	}
	metrics.ScriptStoreRecords.WithLabelValues("postgres").Inc()
	return s.Clone(), nil
}

func (r *ScriptRepository) GetByID(ctx context.Context, id string) (*entity.StoredScript, error) {
	ctx, span := tracer.Start(ctx, "postgres.ScriptRepository.GetByID")
	defer span.End()

	if _, err := uuid.Parse(id); err != nil {
		// 非法 UUID 直接视为不存在，避免数据库类型转换错误
		return nil, nil
	}

	var m scriptModel
	if err := r.client.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		span.RecordError(err)
		return nil, fmt.Errorf("failed to get video script: %w", err)
	}
	return m.toEntity(), nil
}

func (r *ScriptRepository) ListRecent(ctx context.Context, limit int) ([]*entity.StoredScript, error) {
	ctx, span := tracer.Start(ctx, "postgres.ScriptRepository.ListRecent")
	defer span.End()

	var models []*scriptModel
	err := r.client.db.WithContext(ctx).
		Order("created_at DESC").
		Order("id DESC").
		Limit(r.limits.Normalize(limit)).
		Find(&models).Error
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to list video scripts: %w", err)
	}

	out := make([]*entity.StoredScript, 0, len(models))
	for _, m := range models {
		out = append(out, m.toEntity())
	}
	return out, nil
}

func (r *ScriptRepository) Count(ctx context.Context) (int64, error) {
	ctx, span := tracer.Start(ctx, "postgres.ScriptRepository.Count")
	defer span.End()

	var n int64
	if err := r.client.db.WithContext(ctx).Model(&scriptModel{}).Count(&n).Error; err != nil {
		span.RecordError(err)
		return 0, fmt.Errorf("failed to count video scripts: %w", err)
	}
	metrics.ScriptStoreRecords.WithLabelValues("postgres").Set(float64(n))
	return n, nil
}
