// Package llm 提供生成后端的具体实现
package llm

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"video-script-api/internal/config"
	"video-script-api/internal/domain/service"
)

// BackendFactory 管理多个生成后端实例，按提供商名称惰性创建
type BackendFactory struct {
	config     *config.LLMConfig
	httpClient *http.Client
	backends   map[string]service.ContentBackend
	mu         sync.RWMutex
}

// FactoryOption 工厂可选配置
type FactoryOption func(*BackendFactory)

// WithHTTPClient 指定 Gemini 后端使用的 HTTP 客户端
func WithHTTPClient(c *http.Client) FactoryOption {
	return func(f *BackendFactory) { f.httpClient = c }
}

// NewBackendFactory 创建后端工厂
func NewBackendFactory(cfg *config.Config, opts ...FactoryOption) *BackendFactory {
	f := &BackendFactory{
		config:   &cfg.LLM,
		backends: make(map[string]service.ContentBackend),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Resolve 返回实际提供商名称与凭证是否已配置。每次调用都读取当前配置
func (f *BackendFactory) Resolve(name string) (string, bool, error) {
	provider, p, ok := f.config.Provider(strings.TrimSpace(name))
	if !ok {
		return provider, false, fmt.Errorf("provider %s not found in LLM config", provider)
	}
	return provider, strings.TrimSpace(p.APIKey) != "", nil
}

// Get 获取指定名称的后端，如果未指定则返回默认后端
func (f *BackendFactory) Get(ctx context.Context, name string) (service.ContentBackend, error) {
	if name == "" {
		name = f.config.DefaultProvider
	}

	f.mu.RLock()
	b, ok := f.backends[name]
	f.mu.RUnlock()
	if ok {
		return b, nil
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if b, ok = f.backends[name]; ok {
		return b, nil
	}

	providerCfg, ok := f.config.Providers[name]
	if !ok {
		return nil, fmt.Errorf("provider %s not found in LLM config", name)
	}

	switch kindOf(name, providerCfg) {
	case config.ProviderKindGemini:
		gb, err := NewGeminiBackend(ctx, name, providerCfg, f.httpClient)
		if err != nil {
			return nil, err
		}
		b = gb
	case config.ProviderKindOpenAI:
		eb, err := NewEinoBackend(ctx, name, providerCfg)
		if err != nil {
			return nil, err
		}
		b = eb
	default:
		return nil, fmt.Errorf("provider %s has unsupported kind %q", name, providerCfg.Kind)
	}

	f.backends[name] = b
	return b, nil
}

// kindOf 未显式配置 kind 时，名为 gemini 的提供商走原生接口，其余按 OpenAI 兼容处理
func kindOf(name string, cfg config.ProviderConfig) config.ProviderKind {
	if cfg.Kind != "" {
		return config.ProviderKind(strings.ToLower(string(cfg.Kind)))
	}
	if name == string(config.ProviderKindGemini) {
		return config.ProviderKindGemini
	}
	return config.ProviderKindOpenAI
}
