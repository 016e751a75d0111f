// Package memory 提供进程内的脚本存储实现（进程退出即丢失）
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"video-script-api/internal/domain/entity"
	"video-script-api/internal/domain/repository"
	"video-script-api/pkg/metrics"
)

// ScriptRepository 内存版视频脚本存储
type ScriptRepository struct {
	mu      sync.RWMutex
	records map[string]*record
	seq     uint64
	limits  repository.ListLimit
	now     func() time.Time
}

type record struct {
	script *entity.StoredScript
	seq    uint64
}

// Option 内存存储可选配置
type Option func(*ScriptRepository)

// WithClock 替换时钟（测试用）
func WithClock(now func() time.Time) Option {
	return func(r *ScriptRepository) { r.now = now }
}

// WithListLimit 设置列表默认条数与上限
func WithListLimit(l repository.ListLimit) Option {
	return func(r *ScriptRepository) { r.limits = l }
}

func NewScriptRepository(opts ...Option) *ScriptRepository {
	r := &ScriptRepository{
		records: make(map[string]*record),
		limits:  repository.DefaultListLimit,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

var _ repository.ScriptRepository = (*ScriptRepository)(nil)

func (r *ScriptRepository) Create(ctx context.Context, req *entity.GenerationRequest, artifact *entity.VideoScriptArtifact) (*entity.StoredScript, error) {
	s := entity.NewStoredScript(req, artifact.Clone())
	s.ID = uuid.NewString()

	r.mu.Lock()
	s.CreatedAt = r.now().UTC()
	r.seq++
	r.records[s.ID] = &record{script: s, seq: r.seq}
	n := len(r.records)
	r.mu.Unlock()

	metrics.ScriptStoreRecords.WithLabelValues("memory").Set(float64(n))

	return s.Clone(), nil
}

func (r *ScriptRepository) GetByID(ctx context.Context, id string) (*entity.StoredScript, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.records[id]
	if !ok {
		return nil, nil
	}
	return rec.script.Clone(), nil
}

// ListRecent 按写入顺序倒序（墙钟回拨不影响顺序）
func (r *ScriptRepository) ListRecent(ctx context.Context, limit int) ([]*entity.StoredScript, error) {
	limit = r.limits.Normalize(limit)

	r.mu.RLock()
	all := make([]*record, 0, len(r.records))
	for _, rec := range r.records {
		all = append(all, rec)
	}
	r.mu.RUnlock()

	sort.Slice(all, func(i, j int) bool {
		return all[i].seq > all[j].seq
	})
	if len(all) > limit {
		all = all[:limit]
	}

	out := make([]*entity.StoredScript, 0, len(all))
	for _, rec := range all {
		out = append(out, rec.script.Clone())
	}
	return out, nil
}

func (r *ScriptRepository) Count(ctx context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.records)), nil
}
