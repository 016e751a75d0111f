// Package router 提供 HTTP 路由配置
package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"video-script-api/internal/interfaces/http/handler"
)

// RegisterScriptRoutes 注册视频脚本路由，generateMW 只作用于生成接口
func RegisterScriptRoutes(api *gin.RouterGroup, scriptHandler *handler.ScriptHandler, generateMW ...gin.HandlerFunc) {
	RegisterGenerateRoute(api, scriptHandler, generateMW...)

	scripts := api.Group("/video-scripts")
	{
		scripts.GET("", scriptHandler.List)
		scripts.GET("/:id", scriptHandler.Get)
	}
}

// RegisterGenerateRoute 注册生成接口
func RegisterGenerateRoute(api *gin.RouterGroup, scriptHandler *handler.ScriptHandler, generateMW ...gin.HandlerFunc) {
	handlers := append(append([]gin.HandlerFunc{}, generateMW...), scriptHandler.Generate)
	api.POST("/generate-script", handlers...)
	// 预检通常已被 CORS 中间件拦截，这里兜底保证 200 空响应
	api.OPTIONS("/generate-script", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
}
