package repository

import (
	"errors"

	"github.com/dyohan9/bothub-engine/internal/model"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AuthorizationRepository 仓库授权记录数据访问
type AuthorizationRepository struct {
	db *gorm.DB
}

// NewAuthorizationRepository 创建授权记录数据访问对象
func NewAuthorizationRepository(db *gorm.DB) *AuthorizationRepository {
	return &AuthorizationRepository{db: db}
}

// GetOrCreate 按 (user, repository) 获取授权记录，不存在则建档
// 并发首次建档由唯一索引兜底，冲突时重读
func (r *AuthorizationRepository) GetOrCreate(userID string, repo *model.Repository) (*model.RepositoryAuthorization, error) {
	authorization, err := r.find(userID, repo.ID)
	if err == nil {
		authorization.Repository = repo
		return authorization, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	authorization = &model.RepositoryAuthorization{
		ID:           uuid.New().String(),
		UserID:       userID,
		RepositoryID: repo.ID,
	}
	if createErr := r.db.Create(authorization).Error; createErr != nil {
		if authorization, err = r.find(userID, repo.ID); err == nil {
			authorization.Repository = repo
			return authorization, nil
		}
		return nil, createErr
	}
	authorization.Repository = repo
	return authorization, nil
}

// find 查找授权记录
func (r *AuthorizationRepository) find(userID, repoID string) (*model.RepositoryAuthorization, error) {
	var authorization model.RepositoryAuthorization
	err := r.db.Where("user_id = ? AND repository_id = ?", userID, repoID).
		First(&authorization).Error
	if err != nil {
		return nil, err
	}
	return &authorization, nil
}

// ListForRepository 列出仓库的全部授权记录
func (r *AuthorizationRepository) ListForRepository(repoID string) ([]*model.RepositoryAuthorization, error) {
	var authorizations []*model.RepositoryAuthorization
	err := r.db.Preload("User").Preload("Repository").
		Where("repository_id = ?", repoID).
		Order("created_at ASC").
		Find(&authorizations).Error
	return authorizations, err
}

// UpdateRole 更新授权记录的角色
func (r *AuthorizationRepository) UpdateRole(authorization *model.RepositoryAuthorization, role model.AuthorizationRole) error {
	authorization.Role = role
	return r.db.Model(authorization).Select("role").Updates(authorization).Error
}
