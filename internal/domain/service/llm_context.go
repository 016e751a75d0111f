// Package service 定义跨层的领域服务契约（port）
package service

import (
	"context"
	"strings"
)

const unknownScope = "unknown"

// GenerationScope 一次脚本生成调用的标签，供后端追踪与回调读取
type GenerationScope struct {
	Workflow string
	Provider string
	// RequestTopic 截断后的主题，仅用于追踪属性
	RequestTopic string
}

type generationScopeKey struct{}

const maxScopeTopicRunes = 80

// WithGenerationScope 写入生成标签，空白字段不覆盖已有值
func WithGenerationScope(ctx context.Context, scope GenerationScope) context.Context {
	if ctx == nil {
		return nil
	}
	cur, _ := ctx.Value(generationScopeKey{}).(GenerationScope)
	if w := strings.TrimSpace(scope.Workflow); w != "" {
		cur.Workflow = w
	}
	if p := strings.TrimSpace(scope.Provider); p != "" {
		cur.Provider = p
	}
	if t := strings.TrimSpace(scope.RequestTopic); t != "" {
		if r := []rune(t); len(r) > maxScopeTopicRunes {
			t = string(r[:maxScopeTopicRunes])
		}
		cur.RequestTopic = t
	}
	return context.WithValue(ctx, generationScopeKey{}, cur)
}

// GenerationScopeFromContext 读取生成标签，Workflow/Provider 缺省为 unknown
func GenerationScopeFromContext(ctx context.Context) GenerationScope {
	var s GenerationScope
	if ctx != nil {
		s, _ = ctx.Value(generationScopeKey{}).(GenerationScope)
	}
	if s.Workflow == "" {
		s.Workflow = unknownScope
	}
	if s.Provider == "" {
		s.Provider = unknownScope
	}
	return s
}
