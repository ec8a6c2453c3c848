package handler

import (
	"encoding/base64"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/dyohan9/bothub-engine/internal/middleware"
	"github.com/dyohan9/bothub-engine/internal/service"
)

// VersionHandler 数据集版本处理器
type VersionHandler struct {
	services *service.Services
}

// NewVersionHandler 创建数据集版本处理器
func NewVersionHandler(services *service.Services) *VersionHandler {
	return &VersionHandler{services: services}
}

// versionID 解析路径中的版本ID
func versionID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		BadRequest(c, "Invalid version ID")
		return 0, false
	}
	return id, true
}

// List 列出仓库版本
// GET /api/v1/repositories/:id/versions
func (h *VersionHandler) List(c *gin.Context) {
	repository, err := h.services.Repo.GetRepository(c.Request.Context(), c.Param("id"))
	if err != nil {
		Error(c, err)
		return
	}

	user, _ := middleware.GetCurrentUser(c)
	authorization, err := h.services.Repo.GetUserAuthorization(c.Request.Context(), user, repository)
	if err != nil {
		Error(c, err)
		return
	}
	if !authorization.CanRead() {
		Forbidden(c, "you can't read this repository")
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	size, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	versions, total, err := h.services.Training.ListVersions(c.Request.Context(), repository, page, size)
	if err != nil {
		Error(c, err)
		return
	}
	SuccessWithPagination(c, versions, total, page, size)
}

// Current 获取指定语言的当前 open 版本
// GET /api/v1/repositories/:id/current-version
func (h *VersionHandler) Current(c *gin.Context) {
	repository, err := h.services.Repo.GetRepository(c.Request.Context(), c.Param("id"))
	if err != nil {
		Error(c, err)
		return
	}

	user, _ := middleware.GetCurrentUser(c)
	authorization, err := h.services.Repo.GetUserAuthorization(c.Request.Context(), user, repository)
	if err != nil {
		Error(c, err)
		return
	}
	if !authorization.CanRead() {
		Forbidden(c, "you can't read this repository")
		return
	}

	version, err := h.services.Repo.CurrentVersion(c.Request.Context(), repository, c.Query("language"))
	if err != nil {
		Error(c, err)
		return
	}
	Success(c, gin.H{
		"version": version,
		"state":   version.State(),
	})
}

// LastTrained 最近一次发起过训练的版本
// GET /api/v1/repositories/:id/last-trained
func (h *VersionHandler) LastTrained(c *gin.Context) {
	repository, err := h.services.Repo.GetRepository(c.Request.Context(), c.Param("id"))
	if err != nil {
		Error(c, err)
		return
	}

	user, _ := middleware.GetCurrentUser(c)
	authorization, err := h.services.Repo.GetUserAuthorization(c.Request.Context(), user, repository)
	if err != nil {
		Error(c, err)
		return
	}
	if !authorization.CanRead() {
		Forbidden(c, "you can't read this repository")
		return
	}

	version, err := h.services.Repo.LastTrainedVersion(c.Request.Context(), repository, c.Query("language"))
	if err != nil {
		Error(c, err)
		return
	}
	Success(c, gin.H{
		"version": version,
		"state":   version.State(),
	})
}

// TrainingData 获取版本的训练载荷，供 NLP 服务拉取
// GET /api/v1/versions/:id/training-data
func (h *VersionHandler) TrainingData(c *gin.Context) {
	id, ok := versionID(c)
	if !ok {
		return
	}

	version, err := h.services.Training.GetVersion(c.Request.Context(), id)
	if err != nil {
		Error(c, err)
		return
	}

	data, err := h.services.Training.RasaNLUData(c.Request.Context(), version)
	if err != nil {
		Error(c, err)
		return
	}
	Success(c, gin.H{
		"language":          version.Language,
		"rasa_nlu_data":     data,
		"training_examples": len(data.CommonExamples),
	})
}

// SaveTraining 保存训练产物，由 NLP 服务回调
// POST /api/v1/versions/:id/save-training
func (h *VersionHandler) SaveTraining(c *gin.Context) {
	id, ok := versionID(c)
	if !ok {
		return
	}

	var req struct {
		BotData string `json:"bot_data" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request: "+err.Error())
		return
	}

	botData, err := base64.StdEncoding.DecodeString(req.BotData)
	if err != nil {
		BadRequest(c, "bot_data must be base64 encoded")
		return
	}

	version, err := h.services.Training.SaveTraining(c.Request.Context(), id, botData)
	if err != nil {
		Error(c, err)
		return
	}
	Success(c, gin.H{
		"version": version.ID,
		"state":   version.State(),
	})
}

// BotData 读取版本的训练产物
// GET /api/v1/versions/:id/bot-data
func (h *VersionHandler) BotData(c *gin.Context) {
	id, ok := versionID(c)
	if !ok {
		return
	}

	user, _ := middleware.GetCurrentUser(c)
	data, err := h.services.Training.GetBotData(c.Request.Context(), user, id)
	if err != nil {
		Error(c, err)
		return
	}
	c.Data(200, "application/octet-stream", data)
}
