package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/dyohan9/bothub-engine/internal/middleware"
	"github.com/dyohan9/bothub-engine/internal/model"
	"github.com/dyohan9/bothub-engine/internal/nlp"
	"github.com/dyohan9/bothub-engine/internal/service"
	"github.com/dyohan9/bothub-engine/internal/service/repo"
)

// RepositoryHandler 数据集仓库处理器
type RepositoryHandler struct {
	services *service.Services
}

// NewRepositoryHandler 创建数据集仓库处理器
func NewRepositoryHandler(services *service.Services) *RepositoryHandler {
	return &RepositoryHandler{services: services}
}

// getRepository 按路径参数加载仓库
func (h *RepositoryHandler) getRepository(c *gin.Context) (*model.Repository, bool) {
	repository, err := h.services.Repo.GetRepository(c.Request.Context(), c.Param("id"))
	if err != nil {
		Error(c, err)
		return nil, false
	}
	return repository, true
}

// Create 创建仓库
// POST /api/v1/repositories
func (h *RepositoryHandler) Create(c *gin.Context) {
	user, ok := middleware.GetCurrentUser(c)
	if !ok || user == nil {
		Unauthorized(c, "Not authenticated")
		return
	}

	var req repo.CreateRepositoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request: "+err.Error())
		return
	}

	repository, err := h.services.Repo.CreateRepository(c.Request.Context(), user, &req)
	if err != nil {
		BadRequest(c, err.Error())
		return
	}
	Created(c, repository)
}

// Get 获取仓库
// GET /api/v1/repositories/:id
func (h *RepositoryHandler) Get(c *gin.Context) {
	repository, ok := h.getRepository(c)
	if !ok {
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

	languages, err := h.services.Repo.AvailableLanguages(c.Request.Context(), repository)
	if err != nil {
		Error(c, err)
		return
	}

	Success(c, gin.H{
		"repository":          repository,
		"available_languages": languages,
		"authorization": gin.H{
			"level":          authorization.Level(),
			"can_read":       authorization.CanRead(),
			"can_contribute": authorization.CanContribute(),
			"can_write":      authorization.CanWrite(),
			"is_admin":       authorization.IsAdmin(),
		},
	})
}

// GetBySlug 根据拥有者昵称与 slug 获取仓库
// GET /api/v1/repositories/:nickname/:slug (registered as lookup route)
func (h *RepositoryHandler) GetBySlug(c *gin.Context) {
	repository, err := h.services.Repo.GetRepositoryBySlug(c.Request.Context(), c.Param("nickname"), c.Param("slug"))
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
	Success(c, repository)
}

// List 列出公开仓库
// GET /api/v1/repositories
func (h *RepositoryHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	size, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	repositories, total, err := h.services.Repo.ListPublicRepositories(c.Request.Context(), page, size)
	if err != nil {
		Error(c, err)
		return
	}
	SuccessWithPagination(c, repositories, total, page, size)
}

// ListOwn 列出当前用户的仓库
// GET /api/v1/repositories/mine
func (h *RepositoryHandler) ListOwn(c *gin.Context) {
	user, ok := middleware.GetCurrentUser(c)
	if !ok || user == nil {
		Unauthorized(c, "Not authenticated")
		return
	}

	repositories, err := h.services.Repo.ListOwnRepositories(c.Request.Context(), user)
	if err != nil {
		Error(c, err)
		return
	}
	Success(c, repositories)
}

// Update 更新仓库
// PATCH /api/v1/repositories/:id
func (h *RepositoryHandler) Update(c *gin.Context) {
	user, _ := middleware.GetCurrentUser(c)

	var req repo.UpdateRepositoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request: "+err.Error())
		return
	}

	repository, err := h.services.Repo.UpdateRepository(c.Request.Context(), c.Param("id"), user, &req)
	if err != nil {
		Error(c, err)
		return
	}
	Success(c, repository)
}

// Delete 删除仓库
// DELETE /api/v1/repositories/:id
func (h *RepositoryHandler) Delete(c *gin.Context) {
	user, _ := middleware.GetCurrentUser(c)

	if err := h.services.Repo.DeleteRepository(c.Request.Context(), c.Param("id"), user); err != nil {
		Error(c, err)
		return
	}
	NoContent(c)
}

// Languages 列出仓库可用语言
// GET /api/v1/repositories/:id/languages
func (h *RepositoryHandler) Languages(c *gin.Context) {
	repository, ok := h.getRepository(c)
	if !ok {
		return
	}

	languages, err := h.services.Repo.AvailableLanguages(c.Request.Context(), repository)
	if err != nil {
		Error(c, err)
		return
	}
	Success(c, languages)
}

// LanguagesStatus 全部受支持语言的状态报表
// GET /api/v1/repositories/:id/languagesstatus
func (h *RepositoryHandler) LanguagesStatus(c *gin.Context) {
	repository, ok := h.getRepository(c)
	if !ok {
		return
	}

	statuses, err := h.services.Repo.LanguagesStatus(c.Request.Context(), repository)
	if err != nil {
		Error(c, err)
		return
	}
	Success(c, gin.H{"languages_status": statuses})
}

// Examples 列出仓库样本
// GET /api/v1/repositories/:id/examples
func (h *RepositoryHandler) Examples(c *gin.Context) {
	repository, ok := h.getRepository(c)
	if !ok {
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
	language := c.Query("language")
	includeDeleted := c.Query("include_deleted") == "true"

	examples, total, err := h.services.Repo.Examples(c.Request.Context(), repository.ID, language, includeDeleted, page, size)
	if err != nil {
		Error(c, err)
		return
	}
	SuccessWithPagination(c, examples, total, page, size)
}

// ========== 授权管理 ==========

// Authorization 当前用户对仓库的授权视图
// GET /api/v1/repositories/:id/authorization
func (h *RepositoryHandler) Authorization(c *gin.Context) {
	repository, ok := h.getRepository(c)
	if !ok {
		return
	}

	user, _ := middleware.GetCurrentUser(c)
	authorization, err := h.services.Repo.GetUserAuthorization(c.Request.Context(), user, repository)
	if err != nil {
		Error(c, err)
		return
	}

	Success(c, gin.H{
		"uuid":           authorization.ID,
		"user_id":        authorization.UserID,
		"repository_id":  authorization.RepositoryID,
		"role":           authorization.Role,
		"level":          authorization.Level(),
		"can_read":       authorization.CanRead(),
		"can_contribute": authorization.CanContribute(),
		"can_write":      authorization.CanWrite(),
		"is_admin":       authorization.IsAdmin(),
	})
}

// ListAuthorizations 列出仓库授权记录
// GET /api/v1/repositories/:id/authorizations
func (h *RepositoryHandler) ListAuthorizations(c *gin.Context) {
	repository, ok := h.getRepository(c)
	if !ok {
		return
	}

	user, _ := middleware.GetCurrentUser(c)
	authorizations, err := h.services.Repo.ListAuthorizations(c.Request.Context(), repository, user)
	if err != nil {
		Error(c, err)
		return
	}
	Success(c, authorizations)
}

// UpdateAuthorizationRole 更新协作角色
// PUT /api/v1/repositories/:id/authorizations/:userID
func (h *RepositoryHandler) UpdateAuthorizationRole(c *gin.Context) {
	repository, ok := h.getRepository(c)
	if !ok {
		return
	}

	var req struct {
		Role model.AuthorizationRole `json:"role" binding:"min=0,max=3"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request: "+err.Error())
		return
	}

	user, _ := middleware.GetCurrentUser(c)
	authorization, err := h.services.Repo.UpdateAuthorizationRole(
		c.Request.Context(), repository, user, c.Param("userID"), req.Role)
	if err != nil {
		Error(c, err)
		return
	}
	Success(c, authorization)
}

// ========== NLP 委托 ==========

// Train 冻结当前版本并委托训练
// POST /api/v1/repositories/:id/train
func (h *RepositoryHandler) Train(c *gin.Context) {
	repository, ok := h.getRepository(c)
	if !ok {
		return
	}

	var req struct {
		Language string `json:"language"`
	}
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		BadRequest(c, "Invalid request: "+err.Error())
		return
	}

	user, _ := middleware.GetCurrentUser(c)
	resp, err := h.services.Training.Train(c.Request.Context(), repository, user, req.Language)
	if err != nil {
		Error(c, err)
		return
	}
	c.Data(resp.StatusCode, "application/json", resp.Payload)
}

// Analyze 委托解析一段文本
// POST /api/v1/repositories/:id/analyze
func (h *RepositoryHandler) Analyze(c *gin.Context) {
	repository, ok := h.getRepository(c)
	if !ok {
		return
	}

	var req nlp.AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request: "+err.Error())
		return
	}

	user, _ := middleware.GetCurrentUser(c)
	resp, err := h.services.Training.Analyze(c.Request.Context(), repository, user, &req)
	if err != nil {
		Error(c, err)
		return
	}
	c.Data(resp.StatusCode, "application/json", resp.Payload)
}

// Evaluate 委托评估指定语言
// POST /api/v1/repositories/:id/evaluate
func (h *RepositoryHandler) Evaluate(c *gin.Context) {
	repository, ok := h.getRepository(c)
	if !ok {
		return
	}

	var req nlp.EvaluateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request: "+err.Error())
		return
	}

	user, _ := middleware.GetCurrentUser(c)
	resp, err := h.services.Training.Evaluate(c.Request.Context(), repository, user, &req)
	if err != nil {
		Error(c, err)
		return
	}
	c.Data(resp.StatusCode, "application/json", resp.Payload)
}
