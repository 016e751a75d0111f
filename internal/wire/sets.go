package wire

import (
	"github.com/google/wire"
)

// StorageSet 脚本存储提供者集合
var StorageSet = wire.NewSet(
	ProvideListLimit,
	ProvidePostgresClient,
	ProvideRedisClientOptional,
	ProvideScriptRepository,
)

// GenerationSet 生成链路提供者集合
var GenerationSet = wire.NewSet(
	ProvideBackendFactory,
	ProvideUsageRecorder,
	ProvideScriptClient,
	ProvideEventPublisher,
	ProvideScriptService,
	ProvideScriptHandler,
)
