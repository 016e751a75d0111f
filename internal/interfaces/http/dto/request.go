// Package dto 提供 HTTP 层数据传输对象
package dto

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

// BindListLimit 解析 limit 查询参数，缺失或非法时返回 0（由应用层取默认值）
func BindListLimit(c *gin.Context) int {
	return parseIntWithDefault(strings.TrimSpace(c.Query("limit")), 0)
}

// BindScriptID 从 URI 绑定脚本 ID
func BindScriptID(c *gin.Context) string {
	return strings.TrimSpace(c.Param("id"))
}

// parseIntWithDefault 解析整数，失败时返回默认值
func parseIntWithDefault(s string, defaultVal int) int {
	if s == "" {
		return defaultVal
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return defaultVal
	}
	return v
}
