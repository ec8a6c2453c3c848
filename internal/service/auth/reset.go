package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"

	"github.com/dyohan9/bothub-engine/internal/notification"
)

const (
	// 重置令牌在 Redis 中的过期时间（1小时）
	resetTokenTTL = time.Hour
	// Redis key 前缀
	resetKeyPrefix = "password_reset:"
)

// ResetTokenStore 密码重置令牌存储
type ResetTokenStore struct {
	redis *redis.Client
}

// NewResetTokenStore 创建重置令牌存储
func NewResetTokenStore(redisClient *redis.Client) *ResetTokenStore {
	return &ResetTokenStore{redis: redisClient}
}

// Issue 为用户签发一次性重置令牌
func (s *ResetTokenStore) Issue(ctx context.Context, userID string) (string, error) {
	token := uuid.New().String()
	key := resetKeyPrefix + token
	if err := s.redis.Set(ctx, key, userID, resetTokenTTL).Err(); err != nil {
		return "", fmt.Errorf("failed to store reset token: %w", err)
	}
	return token, nil
}

// Consume 校验并消费重置令牌，返回对应用户ID
func (s *ResetTokenStore) Consume(ctx context.Context, token string) (string, error) {
	key := resetKeyPrefix + token
	userID, err := s.redis.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", errors.New("invalid or expired reset token")
		}
		return "", fmt.Errorf("failed to load reset token: %w", err)
	}
	// 一次性令牌，读取即失效
	if err := s.redis.Del(ctx, key).Err(); err != nil {
		return "", fmt.Errorf("failed to consume reset token: %w", err)
	}
	return userID, nil
}

// ResetPasswordRequest 发起密码重置请求
type ResetPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// ConfirmResetRequest 确认密码重置请求
type ConfirmResetRequest struct {
	Token       string `json:"token" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=6"`
}

// RequestPasswordReset 签发重置令牌并发送通知邮件
// 为避免泄露账号是否存在，对未知邮箱同样静默成功
func (s *Service) RequestPasswordReset(ctx context.Context, mailer notification.Mailer, baseURL string, req *ResetPasswordRequest) error {
	user, err := s.repo.User.GetByEmail(req.Email)
	if err != nil {
		return nil
	}

	token, err := s.resets.Issue(ctx, user.ID)
	if err != nil {
		return err
	}

	return mailer.Send(&notification.Message{
		Recipient: user.Email,
		Kind:      notification.KindPasswordReset,
		Subject:   "Reset your password",
		Body:      fmt.Sprintf("Hello %s,\n\nreset your password here: %s/reset-password/%s\n", user.Nickname, baseURL, token),
	})
}

// ConfirmPasswordReset 消费重置令牌并设置新密码
func (s *Service) ConfirmPasswordReset(ctx context.Context, req *ConfirmResetRequest) error {
	userID, err := s.resets.Consume(ctx, req.Token)
	if err != nil {
		return err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	return s.repo.User.UpdatePassword(userID, string(hashedPassword))
}
