package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/dyohan9/bothub-engine/internal/middleware"
	"github.com/dyohan9/bothub-engine/internal/service"
	"github.com/dyohan9/bothub-engine/internal/service/auth"
)

// AuthHandler 认证处理器
type AuthHandler struct {
	services *service.Services
}

// NewAuthHandler 创建认证处理器
func NewAuthHandler(services *service.Services) *AuthHandler {
	return &AuthHandler{services: services}
}

// Register 用户注册
// POST /api/v1/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req auth.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request: "+err.Error())
		return
	}

	user, err := h.services.Auth.Register(c.Request.Context(), &req)
	if err != nil {
		BadRequest(c, err.Error())
		return
	}
	Created(c, user)
}

// Login 用户登录
// POST /api/v1/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req auth.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request: "+err.Error())
		return
	}

	resp, err := h.services.Auth.Login(c.Request.Context(), &req)
	if err != nil {
		InternalServerError(c, "Login failed")
		return
	}
	if !resp.Success {
		Unauthorized(c, resp.Message)
		return
	}
	Success(c, resp)
}

// RefreshToken 刷新令牌
// POST /api/v1/auth/refresh
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refresh_token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request: "+err.Error())
		return
	}

	accessToken, refreshToken, err := h.services.Auth.RefreshToken(c.Request.Context(), req.RefreshToken)
	if err != nil {
		Unauthorized(c, err.Error())
		return
	}
	Success(c, gin.H{
		"token":         accessToken,
		"refresh_token": refreshToken,
	})
}

// Me 获取当前用户信息
// GET /api/v1/auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	user, ok := middleware.GetCurrentUser(c)
	if !ok || user == nil {
		Unauthorized(c, "Not authenticated")
		return
	}
	Success(c, user.ToUserInfo())
}

// ChangePassword 修改密码
// POST /api/v1/auth/change-password
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		Unauthorized(c, "Not authenticated")
		return
	}

	var req auth.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request: "+err.Error())
		return
	}

	if err := h.services.Auth.ChangePassword(c.Request.Context(), userID, &req); err != nil {
		BadRequest(c, err.Error())
		return
	}
	Success(c, gin.H{"message": "Password changed"})
}

// RequestPasswordReset 发起密码重置
// POST /api/v1/auth/password-reset
func (h *AuthHandler) RequestPasswordReset(c *gin.Context) {
	var req auth.ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request: "+err.Error())
		return
	}

	err := h.services.Auth.RequestPasswordReset(
		c.Request.Context(),
		h.services.Mailer,
		h.services.Config.App.BaseURL,
		&req,
	)
	if err != nil {
		InternalServerError(c, err.Error())
		return
	}
	// 无论邮箱是否存在都返回相同响应
	Success(c, gin.H{"message": "If the email exists, a reset link was sent"})
}

// ConfirmPasswordReset 确认密码重置
// POST /api/v1/auth/password-reset/confirm
func (h *AuthHandler) ConfirmPasswordReset(c *gin.Context) {
	var req auth.ConfirmResetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request: "+err.Error())
		return
	}

	if err := h.services.Auth.ConfirmPasswordReset(c.Request.Context(), &req); err != nil {
		BadRequest(c, err.Error())
		return
	}
	Success(c, gin.H{"message": "Password reset"})
}
