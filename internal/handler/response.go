// Package handler 提供 HTTP 处理器
package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/dyohan9/bothub-engine/internal/model"
	"github.com/dyohan9/bothub-engine/internal/nlp"
)

// SuccessResponse 成功响应
type SuccessResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
}

// ErrorResponse 错误响应
type ErrorResponse struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
}

// Success 成功响应 (200)
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, SuccessResponse{Success: true, Data: data})
}

// Created 创建成功响应 (201)
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, SuccessResponse{Success: true, Data: data})
}

// NoContent 无内容响应 (204)
func NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// BadRequest 400 错误响应
func BadRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Code: 400, Msg: msg})
}

// Unauthorized 401 错误响应
func Unauthorized(c *gin.Context, msg string) {
	c.JSON(http.StatusUnauthorized, ErrorResponse{Code: 401, Msg: msg})
}

// Forbidden 403 错误响应
func Forbidden(c *gin.Context, msg string) {
	c.JSON(http.StatusForbidden, ErrorResponse{Code: 403, Msg: msg})
}

// NotFound 404 错误响应
func NotFound(c *gin.Context, msg string) {
	c.JSON(http.StatusNotFound, ErrorResponse{Code: 404, Msg: msg})
}

// Conflict 409 错误响应
func Conflict(c *gin.Context, msg string) {
	c.JSON(http.StatusConflict, ErrorResponse{Code: 409, Msg: msg})
}

// UnprocessableEntity 422 错误响应
func UnprocessableEntity(c *gin.Context, msg string) {
	c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Code: 422, Msg: msg})
}

// InternalServerError 500 错误响应
func InternalServerError(c *gin.Context, msg string) {
	c.JSON(http.StatusInternalServerError, ErrorResponse{Code: 500, Msg: msg})
}

// BadGateway 502 错误响应，携带上游状态码
func BadGateway(c *gin.Context, statusCode int, msg string) {
	c.JSON(http.StatusBadGateway, gin.H{
		"code":        502,
		"msg":         msg,
		"status_code": statusCode,
	})
}

// Error 根据错误类型返回相应的错误响应
// 领域错误在检测点抛出后原样传播到这里统一转换
func Error(c *gin.Context, err error) {
	if err == nil {
		return
	}

	var upstream *nlp.UpstreamError
	switch {
	case errors.Is(err, model.ErrNotAllowed), errors.Is(err, model.ErrTrainingNotAllowed):
		Forbidden(c, err.Error())
	case errors.Is(err, model.ErrNoTranslation), errors.Is(err, gorm.ErrRecordNotFound):
		NotFound(c, err.Error())
	case errors.Is(err, model.ErrAlreadyDeleted),
		errors.Is(err, model.ErrAlreadyTrained),
		errors.Is(err, model.ErrAlreadyTraining):
		Conflict(c, err.Error())
	case errors.Is(err, model.ErrEntityMismatch),
		errors.Is(err, model.ErrSameLanguage),
		errors.Is(err, model.ErrInvalidEntitySpan):
		UnprocessableEntity(c, err.Error())
	case errors.As(err, &upstream):
		BadGateway(c, upstream.StatusCode, upstream.Error())
	default:
		InternalServerError(c, err.Error())
	}
}

// PaginationData 分页响应数据结构
type PaginationData struct {
	Items      interface{} `json:"items"`
	Total      int64       `json:"total"`
	Page       int         `json:"page"`
	PageSize   int         `json:"page_size"`
	TotalPages int         `json:"total_pages,omitempty"`
}

// SuccessWithPagination 分页成功响应
func SuccessWithPagination(c *gin.Context, items interface{}, total int64, page, pageSize int) {
	totalPages := int(total) / pageSize
	if int(total)%pageSize > 0 {
		totalPages++
	}
	c.JSON(http.StatusOK, SuccessResponse{
		Success: true,
		Data: PaginationData{
			Items:      items,
			Total:      total,
			Page:       page,
			PageSize:   pageSize,
			TotalPages: totalPages,
		},
	})
}
