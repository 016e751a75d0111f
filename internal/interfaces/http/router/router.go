// Package router 提供 HTTP 路由配置
package router

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"video-script-api/internal/config"
	"video-script-api/internal/interfaces/http/dto"
	"video-script-api/internal/interfaces/http/handler"
	"video-script-api/internal/interfaces/http/middleware"
)

// Router HTTP 路由器
type Router struct {
	engine *gin.Engine
	cfg    *config.Config
}

// Handlers 路由依赖的处理器
type Handlers struct {
	Script *handler.ScriptHandler
	Health *handler.HealthHandler
	// RateLimiter 为 nil 时生成接口不限流
	RateLimiter middleware.RateLimiter
}

// New 创建完整 API 路由器
func New(cfg *config.Config, h Handlers) *Router {
	r := newRouter(cfg)

	if h.Health != nil {
		r.engine.GET("/health", h.Health.Health)
		r.engine.GET("/ready", h.Health.Ready)
		r.engine.GET("/live", h.Health.Live)
	}

	if r.cfg.Observability.Metrics.Enabled {
		r.engine.GET(r.metricsPath(), gin.WrapH(promhttp.Handler()))
	}

	api := r.engine.Group("/api")
	RegisterScriptRoutes(api, h.Script, r.rateLimit(h.RateLimiter))

	return r
}

// NewFunction 创建函数形态路由器：只暴露生成接口（POST 与 OPTIONS 预检）
func NewFunction(cfg *config.Config, scriptHandler *handler.ScriptHandler) *Router {
	r := newRouter(cfg)
	api := r.engine.Group("/api")
	RegisterGenerateRoute(api, scriptHandler)
	return r
}

func newRouter(cfg *config.Config) *Router {
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := &Router{
		engine: gin.New(),
		cfg:    cfg,
	}
	r.setupMiddleware()
	r.engine.NoRoute(func(c *gin.Context) {
		dto.NotFound(c, "route not found")
	})
	return r
}

// Engine 返回 Gin Engine
func (r *Router) Engine() *gin.Engine {
	return r.engine
}

// setupMiddleware 配置中间件
func (r *Router) setupMiddleware() {
	r.engine.Use(middleware.Recovery())
	r.engine.Use(middleware.RequestID())

	// CORS 需在路由匹配前处理预检
	r.engine.Use(middleware.CORS(middleware.CORSConfig{
		AllowedOrigins: r.cfg.Security.CORS.AllowedOrigins,
		AllowedMethods: r.cfg.Security.CORS.AllowedMethods,
		AllowedHeaders: r.cfg.Security.CORS.AllowedHeaders,
	}))

	if r.cfg.Observability.Tracing.Enabled {
		r.engine.Use(middleware.Trace(r.cfg.App.Name))
		r.engine.Use(middleware.TraceContext())
	}

	if r.cfg.Observability.Metrics.Enabled {
		r.engine.Use(middleware.Metrics(r.metricsPath(), "/health", "/live", "/ready"))
	}
}

func (r *Router) metricsPath() string {
	if p := r.cfg.Observability.Metrics.Path; p != "" {
		return p
	}
	return "/metrics"
}

func (r *Router) rateLimit(limiter middleware.RateLimiter) gin.HandlerFunc {
	rl := r.cfg.Security.RateLimit
	return middleware.RateLimit(middleware.RateLimitConfig{
		Enabled:   rl.Enabled,
		Requests:  rl.Requests,
		Window:    rl.Window,
		KeyPrefix: rl.KeyPrefix,
	}, limiter)
}
