package handler

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/qs3c/repoeval_go_server/internal/api/middleware"
	"github.com/qs3c/repoeval_go_server/internal/model/dto"
	"github.com/qs3c/repoeval_go_server/internal/pkg/response"
	"github.com/qs3c/repoeval_go_server/internal/service"
)

type AnalysisHandler struct {
	analysisService *service.AnalysisService
}

func NewAnalysisHandler(analysisService *service.AnalysisService) *AnalysisHandler {
	return &AnalysisHandler{
		analysisService: analysisService,
	}
}

// Analyze 同步分析仓库
// POST /api/v1/analysis
func (h *AnalysisHandler) Analyze(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	var req dto.AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	resp, err := h.analysisService.Analyze(c.Request.Context(), userID, req.GithubURL)
	if err != nil {
		h.writeAnalysisError(c, err)
		return
	}

	response.SuccessWithMessage(c, "分析完成", resp)
}

// AnalyzeAsync 后台分析仓库，进度通过 WebSocket 推送
// POST /api/v1/analysis/async
func (h *AnalysisHandler) AnalyzeAsync(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	var req dto.AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	if err := h.analysisService.AnalyzeAsync(c.Request.Context(), userID, req.GithubURL); err != nil {
		h.writeAnalysisError(c, err)
		return
	}

	response.SuccessWithMessage(c, "分析已开始", nil)
}

// ListRepositories 已分析的仓库列表
// GET /api/v1/repositories
func (h *AnalysisHandler) ListRepositories(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	items, err := h.analysisService.ListRepositories(userID)
	if err != nil {
		response.ServerError(c, "")
		return
	}

	response.Success(c, items)
}

// History 仓库的分析版本历史
// GET /api/v1/repositories/:id/history
func (h *AnalysisHandler) History(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	repositoryID, err := pathID(c, "id")
	if err != nil {
		response.ParamError(c, "无效的仓库 ID")
		return
	}

	history, err := h.analysisService.History(userID, repositoryID)
	if err != nil {
		h.writeAnalysisError(c, err)
		return
	}

	response.Success(c, history)
}

// Detail 单次分析的完整结果
// GET /api/v1/analysis/:id
func (h *AnalysisHandler) Detail(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	analysisID, err := pathID(c, "id")
	if err != nil {
		response.ParamError(c, "无效的分析 ID")
		return
	}

	detail, err := h.analysisService.Detail(userID, analysisID)
	if err != nil {
		h.writeAnalysisError(c, err)
		return
	}

	response.Success(c, detail)
}

// DeleteRepository 删除仓库及其分析历史
// DELETE /api/v1/repositories/:id
func (h *AnalysisHandler) DeleteRepository(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	repositoryID, err := pathID(c, "id")
	if err != nil {
		response.ParamError(c, "无效的仓库 ID")
		return
	}

	if err := h.analysisService.DeleteRepository(userID, repositoryID); err != nil {
		h.writeAnalysisError(c, err)
		return
	}

	response.SuccessWithMessage(c, "删除成功", nil)
}

// DeleteVersion 删除单个分析版本
// DELETE /api/v1/analysis/:id
func (h *AnalysisHandler) DeleteVersion(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	analysisID, err := pathID(c, "id")
	if err != nil {
		response.ParamError(c, "无效的分析 ID")
		return
	}

	if err := h.analysisService.DeleteVersion(userID, analysisID); err != nil {
		h.writeAnalysisError(c, err)
		return
	}

	response.SuccessWithMessage(c, "删除成功", nil)
}

// SetPublic 切换仓库分析结果的公开状态
// PUT /api/v1/repositories/:id/public
func (h *AnalysisHandler) SetPublic(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	repositoryID, err := pathID(c, "id")
	if err != nil {
		response.ParamError(c, "无效的仓库 ID")
		return
	}

	var req struct {
		Public *bool `json:"public" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	if err := h.analysisService.SetPublic(userID, repositoryID, *req.Public); err != nil {
		h.writeAnalysisError(c, err)
		return
	}

	response.SuccessWithMessage(c, "设置成功", nil)
}

// Comparison 所有仓库最新评分的对照
// GET /api/v1/repositories/comparison
func (h *AnalysisHandler) Comparison(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	items, err := h.analysisService.Comparison(userID)
	if err != nil {
		response.ServerError(c, "")
		return
	}

	response.Success(c, items)
}

func pathID(c *gin.Context, name string) (int64, error) {
	return strconv.ParseInt(c.Param(name), 10, 64)
}

// writeAnalysisError 业务错误映射到统一错误码
func (h *AnalysisHandler) writeAnalysisError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidGithubURL):
		response.ParamError(c, err.Error())
	case errors.Is(err, service.ErrRepoTooLarge):
		response.ParamError(c, err.Error())
	case errors.Is(err, service.ErrNoAnalysisResult):
		response.ParamError(c, err.Error())
	case errors.Is(err, service.ErrAnalysisInProgress):
		response.DuplicateError(c, err.Error())
	case errors.Is(err, service.ErrRepositoryNotFound),
		errors.Is(err, service.ErrAnalysisNotFound):
		response.NotFoundError(c, err.Error())
	case errors.Is(err, service.ErrPermissionDenied):
		response.PermissionError(c, err.Error())
	default:
		response.ServerError(c, "")
	}
}
