// Package repo 提供数据集仓库服务
package repo

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/dyohan9/bothub-engine/internal/model"
	"github.com/dyohan9/bothub-engine/internal/notification"
	"github.com/dyohan9/bothub-engine/internal/repository"
)

// Service 数据集仓库服务
type Service struct {
	repo   *repository.Repositories
	mailer notification.Mailer
}

// NewService 创建数据集仓库服务
func NewService(repo *repository.Repositories, mailer notification.Mailer) *Service {
	return &Service{repo: repo, mailer: mailer}
}

// CreateRepositoryRequest 创建仓库请求
type CreateRepositoryRequest struct {
	Name        string `json:"name" binding:"required,max=64"`
	Slug        string `json:"slug" binding:"required,max=32"`
	Language    string `json:"language" binding:"required"`
	Description string `json:"description"`
	IsPrivate   bool   `json:"is_private"`
	CategoryIDs []int64 `json:"category_ids"`
}

// UpdateRepositoryRequest 更新仓库请求
type UpdateRepositoryRequest struct {
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Language    string `json:"language"`
	Description string `json:"description"`
	IsPrivate   *bool  `json:"is_private"`
}

// CreateRepository 创建仓库
func (s *Service) CreateRepository(ctx context.Context, owner *model.User, req *CreateRepositoryRequest) (*model.Repository, error) {
	if !model.IsSupportedLanguage(req.Language) {
		return nil, fmt.Errorf("language %q is not supported", req.Language)
	}

	repo := &model.Repository{
		ID:          uuid.New().String(),
		OwnerID:     owner.ID,
		Owner:       owner,
		Name:        req.Name,
		Slug:        req.Slug,
		Language:    req.Language,
		Description: req.Description,
		IsPrivate:   req.IsPrivate,
	}
	if len(req.CategoryIDs) > 0 {
		for _, id := range req.CategoryIDs {
			repo.Categories = append(repo.Categories, model.RepositoryCategory{ID: id})
		}
	}

	if err := s.repo.Repo.Create(repo); err != nil {
		return nil, fmt.Errorf("failed to create repository: %w", err)
	}
	return repo, nil
}

// GetRepository 获取仓库
func (s *Service) GetRepository(ctx context.Context, id string) (*model.Repository, error) {
	repo, err := s.repo.Repo.GetByID(id)
	if err != nil {
		return nil, fmt.Errorf("repository not found: %w", err)
	}
	return repo, nil
}

// GetRepositoryBySlug 根据拥有者昵称与 slug 获取仓库
func (s *Service) GetRepositoryBySlug(ctx context.Context, ownerNickname, slug string) (*model.Repository, error) {
	repo, err := s.repo.Repo.GetBySlug(ownerNickname, slug)
	if err != nil {
		return nil, fmt.Errorf("repository not found: %w", err)
	}
	return repo, nil
}

// ListPublicRepositories 列出公开仓库
func (s *Service) ListPublicRepositories(ctx context.Context, page, size int) ([]*model.Repository, int64, error) {
	if page <= 0 {
		page = 1
	}
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	repos, err := s.repo.Repo.ListPublic(offset, size)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list repositories: %w", err)
	}
	total, err := s.repo.Repo.CountPublic()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count repositories: %w", err)
	}
	return repos, total, nil
}

// ListOwnRepositories 列出用户自己的仓库
func (s *Service) ListOwnRepositories(ctx context.Context, user *model.User) ([]*model.Repository, error) {
	repos, err := s.repo.Repo.ListByOwner(user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list repositories: %w", err)
	}
	return repos, nil
}

// UpdateRepository 更新仓库
// 基础语言在该语言已有样本后不可变更
func (s *Service) UpdateRepository(ctx context.Context, id string, user *model.User, req *UpdateRepositoryRequest) (*model.Repository, error) {
	repo, err := s.repo.Repo.GetByID(id)
	if err != nil {
		return nil, fmt.Errorf("repository not found: %w", err)
	}

	authorization, err := s.GetUserAuthorization(ctx, user, repo)
	if err != nil {
		return nil, err
	}
	if !authorization.IsAdmin() {
		return nil, model.ErrNotAllowed
	}

	if req.Language != "" && req.Language != repo.Language {
		if !model.IsSupportedLanguage(req.Language) {
			return nil, fmt.Errorf("language %q is not supported", req.Language)
		}
		count, err := s.repo.Repo.CountExamples(repo.ID, repo.Language)
		if err != nil {
			return nil, fmt.Errorf("failed to count examples: %w", err)
		}
		if count > 0 {
			return nil, errors.New("base language can't be changed after examples exist in it")
		}
		repo.Language = req.Language
	}
	if req.Name != "" {
		repo.Name = req.Name
	}
	if req.Slug != "" {
		repo.Slug = req.Slug
	}
	if req.Description != "" {
		repo.Description = req.Description
	}
	if req.IsPrivate != nil {
		repo.IsPrivate = *req.IsPrivate
	}

	if err := s.repo.Repo.Update(repo); err != nil {
		return nil, fmt.Errorf("failed to update repository: %w", err)
	}
	return repo, nil
}

// DeleteRepository 删除仓库
func (s *Service) DeleteRepository(ctx context.Context, id string, user *model.User) error {
	repo, err := s.repo.Repo.GetByID(id)
	if err != nil {
		return fmt.Errorf("repository not found: %w", err)
	}

	authorization, err := s.GetUserAuthorization(ctx, user, repo)
	if err != nil {
		return err
	}
	if !authorization.IsAdmin() {
		return model.ErrNotAllowed
	}

	if err := s.repo.Repo.Delete(id); err != nil {
		return fmt.Errorf("failed to delete repository: %w", err)
	}
	return nil
}

// GetUserAuthorization 推导用户对仓库的授权记录
// 匿名用户返回不落库的临时记录；认证用户按 (user, repository) 惰性建档
func (s *Service) GetUserAuthorization(ctx context.Context, user *model.User, repo *model.Repository) (*model.RepositoryAuthorization, error) {
	if user == nil {
		return &model.RepositoryAuthorization{
			RepositoryID: repo.ID,
			Repository:   repo,
		}, nil
	}
	authorization, err := s.repo.Authorization.GetOrCreate(user.ID, repo)
	if err != nil {
		return nil, fmt.Errorf("failed to get authorization: %w", err)
	}
	authorization.User = user
	return authorization, nil
}

// CurrentVersion 获取指定语言的当前 open 版本，惰性创建
func (s *Service) CurrentVersion(ctx context.Context, repo *model.Repository, language string) (*model.RepositoryVersion, error) {
	if language == "" {
		language = repo.Language
	}
	version, err := s.repo.Version.GetOrCreateCurrent(repo.ID, language)
	if err != nil {
		return nil, fmt.Errorf("failed to get current version: %w", err)
	}
	version.Repository = repo
	return version, nil
}

// LastTrainedVersion 最近一次发起过训练的版本
func (s *Service) LastTrainedVersion(ctx context.Context, repo *model.Repository, language string) (*model.RepositoryVersion, error) {
	if language == "" {
		language = repo.Language
	}
	version, err := s.repo.Version.LastTrained(repo.ID, language)
	if err != nil {
		return nil, fmt.Errorf("no trained version found: %w", err)
	}
	version.Repository = repo
	return version, nil
}

// Examples 列出仓库样本
func (s *Service) Examples(ctx context.Context, repoID, language string, includeDeleted bool, page, size int) ([]*model.RepositoryExample, int64, error) {
	if page <= 0 {
		page = 1
	}
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	examples, err := s.repo.Example.List(repoID, language, includeDeleted, offset, size)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list examples: %w", err)
	}
	total, err := s.repo.Example.Count(repoID, language, includeDeleted)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count examples: %w", err)
	}
	return examples, total, nil
}

// AvailableLanguages 仓库可用语言：基础语言 ∪ 样本语言 ∪ 翻译语言
// 基础语言排首位，其余按字典序
func (s *Service) AvailableLanguages(ctx context.Context, repo *model.Repository) ([]string, error) {
	exampleLanguages, err := s.repo.Repo.ExampleLanguages(repo.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list example languages: %w", err)
	}
	translationLanguages, err := s.repo.Repo.TranslationLanguages(repo.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list translation languages: %w", err)
	}

	seen := map[string]bool{repo.Language: true}
	others := make([]string, 0, len(exampleLanguages)+len(translationLanguages))
	for _, language := range append(exampleLanguages, translationLanguages...) {
		if !seen[language] {
			seen[language] = true
			others = append(others, language)
		}
	}
	sort.Strings(others)

	return append([]string{repo.Language}, others...), nil
}

// LanguageStatus 单一语言状态报表
func (s *Service) LanguageStatus(ctx context.Context, repo *model.Repository, language string) (*model.LanguageStatus, error) {
	examplesCount, err := s.repo.Repo.CountExamples(repo.ID, language)
	if err != nil {
		return nil, fmt.Errorf("failed to count examples: %w", err)
	}
	entities, err := s.repo.Repo.DistinctEntities(repo.ID, language)
	if err != nil {
		return nil, fmt.Errorf("failed to list entities: %w", err)
	}
	baseExamplesCount, err := s.repo.Repo.CountExamples(repo.ID, repo.Language)
	if err != nil {
		return nil, fmt.Errorf("failed to count base examples: %w", err)
	}
	baseTranslationsCount, err := s.repo.Repo.CountBaseTranslations(repo.ID, repo.Language, language)
	if err != nil {
		return nil, fmt.Errorf("failed to count base translations: %w", err)
	}

	// 零基础样本时按 0 基线处理，避免除零
	divisor := baseExamplesCount
	if divisor == 0 {
		divisor = 1
	}
	percentage := float64(baseTranslationsCount) / float64(divisor) * 100

	return &model.LanguageStatus{
		IsBaseLanguage: repo.Language == language,
		Examples: model.LanguageExamples{
			Count:    int(examplesCount),
			Entities: entities,
		},
		BaseTranslations: model.BaseTranslationsStats{
			Count:      int(baseTranslationsCount),
			Percentage: percentage,
		},
	}, nil
}

// LanguagesStatus 对全部受支持语言计算状态，与仓库当前是否使用无关
func (s *Service) LanguagesStatus(ctx context.Context, repo *model.Repository) (map[string]*model.LanguageStatus, error) {
	statuses := make(map[string]*model.LanguageStatus, len(model.SupportedLanguages))
	for _, language := range model.SupportedLanguages {
		status, err := s.LanguageStatus(ctx, repo, language)
		if err != nil {
			return nil, err
		}
		statuses[language] = status
	}
	return statuses, nil
}

// ========== 授权管理 ==========

// ListAuthorizations 列出仓库授权记录，仅管理员可见
func (s *Service) ListAuthorizations(ctx context.Context, repo *model.Repository, requester *model.User) ([]*model.RepositoryAuthorization, error) {
	authorization, err := s.GetUserAuthorization(ctx, requester, repo)
	if err != nil {
		return nil, err
	}
	if !authorization.IsAdmin() {
		return nil, model.ErrNotAllowed
	}
	return s.repo.Authorization.ListForRepository(repo.ID)
}

// UpdateAuthorizationRole 更新协作角色并通知对应用户
func (s *Service) UpdateAuthorizationRole(ctx context.Context, repo *model.Repository, requester *model.User, targetUserID string, role model.AuthorizationRole) (*model.RepositoryAuthorization, error) {
	requesterAuthorization, err := s.GetUserAuthorization(ctx, requester, repo)
	if err != nil {
		return nil, err
	}
	if !requesterAuthorization.IsAdmin() {
		return nil, model.ErrNotAllowed
	}

	target, err := s.repo.User.GetByID(targetUserID)
	if err != nil {
		return nil, fmt.Errorf("user not found: %w", err)
	}
	authorization, err := s.repo.Authorization.GetOrCreate(target.ID, repo)
	if err != nil {
		return nil, fmt.Errorf("failed to get authorization: %w", err)
	}
	if err := s.repo.Authorization.UpdateRole(authorization, role); err != nil {
		return nil, fmt.Errorf("failed to update role: %w", err)
	}

	if err := s.mailer.Send(&notification.Message{
		Recipient: target.Email,
		Kind:      notification.KindRoleChanged,
		Subject:   fmt.Sprintf("Your role in %s changed", repo.Name),
		Body:      fmt.Sprintf("Hello %s,\n\nyour role in repository %s is now %d.\n", target.Nickname, repo.Name, role),
	}); err != nil {
		return nil, err
	}
	return authorization, nil
}
