// Package wire 提供依赖注入配置
package wire

import (
	"context"
	"fmt"

	"video-script-api/internal/application/script"
	"video-script-api/internal/config"
	"video-script-api/internal/domain/repository"
	"video-script-api/internal/domain/service"
	"video-script-api/internal/infrastructure/llm"
	"video-script-api/internal/infrastructure/messaging"
	"video-script-api/internal/infrastructure/persistence/memory"
	"video-script-api/internal/infrastructure/persistence/postgres"
	"video-script-api/internal/infrastructure/persistence/redis"
	"video-script-api/internal/interfaces/http/handler"
	"video-script-api/internal/interfaces/http/middleware"
	"video-script-api/internal/interfaces/http/router"
	"video-script-api/pkg/logger"
)

// ProvideListLimit 提供列表条数限制
func ProvideListLimit(cfg *config.Config) repository.ListLimit {
	return repository.ListLimit{
		Default: cfg.Storage.DefaultListLimit,
		Max:     cfg.Storage.MaxListLimit,
	}
}

// ProvidePostgresClient 提供 PostgreSQL 客户端，内存存储时返回 nil
func ProvidePostgresClient(cfg *config.Config) (*postgres.Client, func(), error) {
	if cfg.Storage.Driver != config.StorageDriverPostgres {
		return nil, func() {}, nil
	}
	client, err := postgres.NewClient(&cfg.Database.Postgres)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		_ = client.Close()
	}
	return client, cleanup, nil
}

// ProvideRedisClientOptional 提供 Redis 客户端（不可达时不阻塞启动）
func ProvideRedisClientOptional(ctx context.Context, cfg *config.Config) (*redis.Client, func(), error) {
	if !cfg.Cache.Redis.Enabled {
		return nil, func() {}, nil
	}
	client, err := redis.NewClient(&cfg.Cache.Redis)
	if err != nil {
		logger.Warn(ctx, "redis not available, cache and rate limit disabled", "error", err.Error())
		return nil, func() {}, nil
	}
	cleanup := func() {
		_ = client.Close()
	}
	return client, cleanup, nil
}

// ProvideScriptRepository 按存储驱动选择实现，Redis 可用时为按 ID 查询加缓存
func ProvideScriptRepository(cfg *config.Config, pg *postgres.Client, rc *redis.Client, limits repository.ListLimit) (repository.ScriptRepository, error) {
	var repo repository.ScriptRepository
	switch cfg.Storage.Driver {
	case config.StorageDriverPostgres:
		if pg == nil {
			return nil, fmt.Errorf("postgres storage selected but client not configured")
		}
		repo = postgres.NewScriptRepository(pg, limits)
	case config.StorageDriverMemory, "":
		repo = memory.NewScriptRepository(memory.WithListLimit(limits))
	default:
		return nil, fmt.Errorf("unknown storage driver: %s", cfg.Storage.Driver)
	}

	// 内存存储本身就是进程内的，不再叠加缓存
	if rc != nil && cfg.Storage.Driver == config.StorageDriverPostgres {
		repo = redis.NewCachedScriptRepository(repo, redis.NewCache(rc), cfg.Cache.Redis.ScriptTTL)
	}
	return repo, nil
}

// ProvideRateLimiter 提供限流器，无 Redis 时返回 nil
func ProvideRateLimiter(rc *redis.Client) middleware.RateLimiter {
	if rc == nil {
		return nil
	}
	return redis.NewRateLimiter(rc)
}

// ProvideEventPublisher 提供生成事件发布器，未启用或无 Redis 时返回 nil
func ProvideEventPublisher(cfg *config.Config, rc *redis.Client) service.ScriptEventPublisher {
	if !cfg.Messaging.Enabled || rc == nil {
		return nil
	}
	return messaging.NewProducer(rc.Redis(), cfg.Messaging.MaxLen)
}

// ProvideBackendFactory 提供生成后端工厂
func ProvideBackendFactory(cfg *config.Config) *llm.BackendFactory {
	return llm.NewBackendFactory(cfg)
}

// ProvideUsageRecorder 提供 LLM 用量记录器
func ProvideUsageRecorder() service.LLMUsageRecorder {
	return llm.NewMetricsUsageRecorder()
}

// ProvideScriptClient 提供视频脚本生成客户端
func ProvideScriptClient(cfg *config.Config, factory *llm.BackendFactory, usage service.LLMUsageRecorder) *script.Client {
	return script.NewClient(factory,
		script.WithProvider(cfg.LLM.DefaultProvider),
		script.WithUsageRecorder(usage),
	)
}

// ProvideScriptService 提供视频脚本应用服务
func ProvideScriptService(client *script.Client, repo repository.ScriptRepository, limits repository.ListLimit, events service.ScriptEventPublisher) *script.Service {
	if events == nil {
		return script.NewService(client, repo, limits)
	}
	return script.NewService(client, repo, limits, script.WithEventPublisher(events))
}

// ProvideScriptHandler 提供视频脚本处理器
func ProvideScriptHandler(svc *script.Service) *handler.ScriptHandler {
	return handler.NewScriptHandler(svc)
}

// ProvideHealthHandler 提供健康检查处理器：存储为必需依赖，Redis 为可选依赖
func ProvideHealthHandler(cfg *config.Config, repo repository.ScriptRepository, pg *postgres.Client, rc *redis.Client) *handler.HealthHandler {
	h := handler.NewHealthHandler(cfg.App.Version)
	if pg != nil {
		h.Require("postgres", pg)
	} else {
		h.Require("store", handler.HealthCheckFunc(func(ctx context.Context) error {
			_, err := repo.Count(ctx)
			return err
		}))
	}
	if rc != nil {
		h.Optional("redis", rc)
	}
	return h
}

// ProvideRouter 提供完整 API 路由器
func ProvideRouter(cfg *config.Config, scriptHandler *handler.ScriptHandler, healthHandler *handler.HealthHandler, limiter middleware.RateLimiter) *router.Router {
	return router.New(cfg, router.Handlers{
		Script:      scriptHandler,
		Health:      healthHandler,
		RateLimiter: limiter,
	})
}

// ProvideFunctionRouter 提供函数形态路由器
func ProvideFunctionRouter(cfg *config.Config, scriptHandler *handler.ScriptHandler) *router.Router {
	return router.NewFunction(cfg, scriptHandler)
}
