package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/dyohan9/bothub-engine/internal/middleware"
	"github.com/dyohan9/bothub-engine/internal/service"
	"github.com/dyohan9/bothub-engine/internal/service/example"
)

// ExampleHandler 训练样本处理器
type ExampleHandler struct {
	services *service.Services
}

// NewExampleHandler 创建训练样本处理器
func NewExampleHandler(services *service.Services) *ExampleHandler {
	return &ExampleHandler{services: services}
}

// exampleID 解析路径中的样本ID
func exampleID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		BadRequest(c, "Invalid example ID")
		return 0, false
	}
	return id, true
}

// Create 创建样本
// POST /api/v1/examples
func (h *ExampleHandler) Create(c *gin.Context) {
	var req example.CreateExampleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request: "+err.Error())
		return
	}

	user, _ := middleware.GetCurrentUser(c)
	created, err := h.services.Example.CreateExample(c.Request.Context(), user, &req)
	if err != nil {
		Error(c, err)
		return
	}
	Created(c, created)
}

// Get 获取样本
// GET /api/v1/examples/:id
func (h *ExampleHandler) Get(c *gin.Context) {
	id, ok := exampleID(c)
	if !ok {
		return
	}

	user, _ := middleware.GetCurrentUser(c)
	found, err := h.services.Example.GetExample(c.Request.Context(), user, id)
	if err != nil {
		Error(c, err)
		return
	}
	Success(c, found)
}

// Delete 软删除样本
// DELETE /api/v1/examples/:id
func (h *ExampleHandler) Delete(c *gin.Context) {
	id, ok := exampleID(c)
	if !ok {
		return
	}

	user, _ := middleware.GetCurrentUser(c)
	if err := h.services.Example.DeleteExample(c.Request.Context(), user, id); err != nil {
		Error(c, err)
		return
	}
	NoContent(c)
}

// CreateTranslation 为样本创建翻译
// POST /api/v1/examples/:id/translations
func (h *ExampleHandler) CreateTranslation(c *gin.Context) {
	id, ok := exampleID(c)
	if !ok {
		return
	}

	var req example.CreateTranslationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request: "+err.Error())
		return
	}

	user, _ := middleware.GetCurrentUser(c)
	translation, err := h.services.Example.CreateTranslation(c.Request.Context(), user, id, &req)
	if err != nil {
		Error(c, err)
		return
	}
	Created(c, translation)
}

// GetTranslation 获取单条翻译
// GET /api/v1/translations/:id
func (h *ExampleHandler) GetTranslation(c *gin.Context) {
	id, ok := exampleID(c)
	if !ok {
		return
	}

	user, _ := middleware.GetCurrentUser(c)
	translation, err := h.services.Example.GetTranslation(c.Request.Context(), user, id)
	if err != nil {
		Error(c, err)
		return
	}
	Success(c, translation)
}

// ListTranslations 列出样本翻译
// GET /api/v1/examples/:id/translations
func (h *ExampleHandler) ListTranslations(c *gin.Context) {
	id, ok := exampleID(c)
	if !ok {
		return
	}

	user, _ := middleware.GetCurrentUser(c)
	translations, err := h.services.Example.ListTranslations(c.Request.Context(), user, id)
	if err != nil {
		Error(c, err)
		return
	}
	Success(c, translations)
}
