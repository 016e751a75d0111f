package redis

import (
	"context"
	"encoding/json"
	"time"

	"video-script-api/internal/domain/entity"
	"video-script-api/internal/domain/repository"
	"video-script-api/pkg/logger"
)

const scriptKeyPrefix = "video_script:"

// byteCache 脚本缓存依赖的最小能力，*Cache 为默认实现
type byteCache interface {
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	GetOrLoadSafe(ctx context.Context, key string, ttl time.Duration, loader func(ctx context.Context) ([]byte, error)) ([]byte, error)
}

// CachedScriptRepository 为按 ID 查询增加 Read-Through 缓存。
// 记录创建后不可变，缓存无需失效，只依赖 TTL 回收。
type CachedScriptRepository struct {
	inner repository.ScriptRepository
	cache byteCache
	ttl   time.Duration
}

func NewCachedScriptRepository(inner repository.ScriptRepository, cache *Cache, ttl time.Duration) *CachedScriptRepository {
	return newCachedScriptRepository(inner, cache, ttl)
}

func newCachedScriptRepository(inner repository.ScriptRepository, cache byteCache, ttl time.Duration) *CachedScriptRepository {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &CachedScriptRepository{inner: inner, cache: cache, ttl: ttl}
}

var _ repository.ScriptRepository = (*CachedScriptRepository)(nil)

func scriptKey(id string) string {
	return scriptKeyPrefix + id
}

// Create 写库成功后回填缓存（best-effort）
func (r *CachedScriptRepository) Create(ctx context.Context, req *entity.GenerationRequest, artifact *entity.VideoScriptArtifact) (*entity.StoredScript, error) {
	s, err := r.inner.Create(ctx, req, artifact)
	if err != nil {
		return nil, err
	}
	if b, err := json.Marshal(s); err == nil {
		if err := r.cache.Set(ctx, scriptKey(s.ID), b, r.ttl); err != nil {
			logger.Warn(ctx, "failed to warm video script cache", "script_id", s.ID, "error", err.Error())
		}
	}
	return s, nil
}

// GetByID 缓存不可用时直接回源
func (r *CachedScriptRepository) GetByID(ctx context.Context, id string) (*entity.StoredScript, error) {
	var (
		loaded    *entity.StoredScript
		loaderRan bool
		loaderErr error
	)
	b, err := r.cache.GetOrLoadSafe(ctx, scriptKey(id), r.ttl, func(ctx context.Context) ([]byte, error) {
		loaderRan = true
		s, err := r.inner.GetByID(ctx, id)
		if err != nil {
			loaderErr = err
			return nil, err
		}
		if s == nil {
			return nil, nil
		}
		loaded = s
		return json.Marshal(s)
	})
	switch {
	case loaderErr != nil:
		return nil, loaderErr
	case err != nil && loaded != nil:
		return loaded, nil
	case err != nil:
		logger.Warn(ctx, "video script cache unavailable, falling back to store", "script_id", id, "error", err.Error())
		return r.inner.GetByID(ctx, id)
	case b == nil:
		return nil, nil
	case loaderRan && loaded != nil:
		return loaded, nil
	}

	var s entity.StoredScript
	if err := json.Unmarshal(b, &s); err != nil {
		logger.Warn(ctx, "failed to decode cached video script, falling back to store", "script_id", id, "error", err.Error())
		return r.inner.GetByID(ctx, id)
	}
	return &s, nil
}

func (r *CachedScriptRepository) ListRecent(ctx context.Context, limit int) ([]*entity.StoredScript, error) {
	return r.inner.ListRecent(ctx, limit)
}

func (r *CachedScriptRepository) Count(ctx context.Context) (int64, error) {
	return r.inner.Count(ctx)
}
