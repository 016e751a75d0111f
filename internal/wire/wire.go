//go:build wireinject
// +build wireinject

// Package wire 提供依赖注入配置
package wire

import (
	"context"

	"github.com/google/wire"

	"video-script-api/internal/config"
	"video-script-api/internal/interfaces/http/router"
)

// InitializeApp 初始化整个应用（带路由器）
func InitializeApp(ctx context.Context, cfg *config.Config) (*router.Router, func(), error) {
	wire.Build(
		StorageSet,
		GenerationSet,
		ProvideRateLimiter,
		ProvideHealthHandler,
		ProvideRouter,
	)
	return nil, nil, nil
}

// InitializeFunction 初始化函数形态应用：只暴露生成接口
func InitializeFunction(ctx context.Context, cfg *config.Config) (*router.Router, func(), error) {
	wire.Build(
		StorageSet,
		GenerationSet,
		ProvideFunctionRouter,
	)
	return nil, nil, nil
}
