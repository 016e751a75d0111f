// Package handler 提供 HTTP 请求处理器
package handler

import (
	"context"
	stderrors "errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"video-script-api/internal/application/script"
	"video-script-api/internal/domain/entity"
	"video-script-api/internal/interfaces/http/dto"
	"video-script-api/pkg/errors"
	"video-script-api/pkg/logger"
)

// maxRequestBodyBytes 生成请求体上限
const maxRequestBodyBytes = 64 << 10

// ScriptService 处理器依赖的应用服务，*script.Service 为默认实现
type ScriptService interface {
	Handle(ctx context.Context, body []byte) (*script.GenerateResult, error)
	FetchByID(ctx context.Context, id string) (*entity.StoredScript, error)
	FetchRecent(ctx context.Context, limit int) ([]*entity.StoredScript, error)
}

// ScriptHandler 视频脚本处理器
type ScriptHandler struct {
	svc ScriptService
}

// NewScriptHandler 创建视频脚本处理器
func NewScriptHandler(svc ScriptService) *ScriptHandler {
	return &ScriptHandler{svc: svc}
}

// Generate 生成视频脚本
// @Summary 生成视频脚本
// @Tags Scripts
// @Accept json
// @Produce json
// @Success 200 {object} script.GenerateResult
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /api/generate-script [post]
func (h *ScriptHandler) Generate(c *gin.Context) {
	ctx := c.Request.Context()

	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxRequestBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if stderrors.As(err, &tooLarge) {
			dto.AppError(c, errors.New(errors.CodeInvalidParam, "invalid request").
				WithFields([]errors.FieldError{{Field: "body", Message: "request body is too large"}}))
			return
		}
		logger.Warn(ctx, "failed to read request body", "error", err.Error())
		dto.BadRequest(c, "failed to read request body")
		return
	}

	res, err := h.svc.Handle(ctx, body)
	if err != nil {
		dto.AppError(c, err)
		return
	}
	dto.OK(c, res)
}

// Get 获取视频脚本
// @Summary 获取视频脚本
// @Tags Scripts
// @Produce json
// @Param id path string true "脚本 ID"
// @Success 200 {object} dto.ScriptResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/video-scripts/{id} [get]
func (h *ScriptHandler) Get(c *gin.Context) {
	rec, err := h.svc.FetchByID(c.Request.Context(), dto.BindScriptID(c))
	if err != nil {
		dto.AppError(c, err)
		return
	}
	dto.OK(c, dto.ToScriptResponse(rec))
}

// List 最近生成的视频脚本
// @Summary 最近生成的视频脚本
// @Tags Scripts
// @Produce json
// @Param limit query int false "条数" default(10)
// @Success 200 {array} dto.ScriptResponse
// @Router /api/video-scripts [get]
func (h *ScriptHandler) List(c *gin.Context) {
	items, err := h.svc.FetchRecent(c.Request.Context(), dto.BindListLimit(c))
	if err != nil {
		dto.AppError(c, err)
		return
	}
	dto.OK(c, dto.ToScriptListResponse(items))
}
