// Package example 提供训练样本与翻译服务
package example

import (
	"context"
	"errors"
	"fmt"

	"github.com/dyohan9/bothub-engine/internal/model"
	"github.com/dyohan9/bothub-engine/internal/repository"
	"github.com/dyohan9/bothub-engine/internal/service/repo"
)

// Service 训练样本服务
type Service struct {
	repo    *repository.Repositories
	repoSvc *repo.Service
}

// NewService 创建训练样本服务
func NewService(repositories *repository.Repositories, repoSvc *repo.Service) *Service {
	return &Service{repo: repositories, repoSvc: repoSvc}
}

// EntityRequest 实体标注请求
type EntityRequest struct {
	Start  int    `json:"start"`
	End    int    `json:"end"`
	Entity string `json:"entity" binding:"required,max=64"`
}

// CreateExampleRequest 创建样本请求
type CreateExampleRequest struct {
	RepositoryID string          `json:"repository_id" binding:"required"`
	Language     string          `json:"language"`
	Text         string          `json:"text" binding:"required"`
	Intent       string          `json:"intent" binding:"max=64"`
	Entities     []EntityRequest `json:"entities"`
}

// CreateTranslationRequest 创建翻译请求
type CreateTranslationRequest struct {
	Language string          `json:"language" binding:"required"`
	Text     string          `json:"text" binding:"required"`
	Entities []EntityRequest `json:"entities"`
}

// toSpans 转换请求实体为区间
func toSpans(entities []EntityRequest) []model.EntitySpan {
	spans := make([]model.EntitySpan, 0, len(entities))
	for _, e := range entities {
		spans = append(spans, model.EntitySpan{Start: e.Start, End: e.End, Entity: e.Entity})
	}
	return spans
}

// CreateExample 创建样本
// 样本加入所在语言的当前 open 版本；校验实体区间、意图或实体至少其一、文本意图不重复
func (s *Service) CreateExample(ctx context.Context, user *model.User, req *CreateExampleRequest) (*model.RepositoryExample, error) {
	repository, err := s.repoSvc.GetRepository(ctx, req.RepositoryID)
	if err != nil {
		return nil, err
	}

	authorization, err := s.repoSvc.GetUserAuthorization(ctx, user, repository)
	if err != nil {
		return nil, err
	}
	if !authorization.CanContribute() {
		return nil, model.ErrNotAllowed
	}

	if req.Intent == "" && len(req.Entities) == 0 {
		return nil, errors.New("define an intent or one entity")
	}

	for _, entity := range req.Entities {
		span := model.EntitySpan{Start: entity.Start, End: entity.End, Entity: entity.Entity}
		if err := span.Validate(req.Text); err != nil {
			return nil, fmt.Errorf("entity %q: %w", entity.Entity, err)
		}
	}

	exists, err := s.repo.Example.ExistsTextIntent(repository.ID, req.Text, req.Intent)
	if err != nil {
		return nil, fmt.Errorf("failed to check example uniqueness: %w", err)
	}
	if exists {
		return nil, errors.New("intent and sentence already exists")
	}

	version, err := s.repoSvc.CurrentVersion(ctx, repository, req.Language)
	if err != nil {
		return nil, err
	}

	example := &model.RepositoryExample{
		VersionID: version.ID,
		Version:   version,
		Text:      req.Text,
		Intent:    req.Intent,
	}
	for _, entity := range req.Entities {
		example.Entities = append(example.Entities, model.ExampleEntity{
			EntitySpan: model.EntitySpan{Start: entity.Start, End: entity.End, Entity: entity.Entity},
		})
	}

	if err := s.repo.Example.Create(example); err != nil {
		return nil, fmt.Errorf("failed to create example: %w", err)
	}
	return example, nil
}

// GetExample 获取样本
func (s *Service) GetExample(ctx context.Context, user *model.User, id int64) (*model.RepositoryExample, error) {
	example, err := s.repo.Example.GetByID(id)
	if err != nil {
		return nil, fmt.Errorf("example not found: %w", err)
	}

	authorization, err := s.authorizationFor(ctx, user, example)
	if err != nil {
		return nil, err
	}
	if !authorization.CanRead() {
		return nil, model.ErrNotAllowed
	}
	return example, nil
}

// DeleteExample 软删除样本
// 只记录删除发生的当前 open 版本，不移除数据行；重复删除报冲突
func (s *Service) DeleteExample(ctx context.Context, user *model.User, id int64) error {
	example, err := s.repo.Example.GetByID(id)
	if err != nil {
		return fmt.Errorf("example not found: %w", err)
	}

	authorization, err := s.authorizationFor(ctx, user, example)
	if err != nil {
		return err
	}
	if !authorization.CanContribute() {
		return model.ErrNotAllowed
	}

	if example.IsDeleted() {
		return model.ErrAlreadyDeleted
	}

	version, err := s.repoSvc.CurrentVersion(ctx, example.Version.Repository, example.Language())
	if err != nil {
		return err
	}
	if err := s.repo.Example.MarkDeleted(example, version.ID); err != nil {
		return fmt.Errorf("failed to delete example: %w", err)
	}
	return nil
}

// CreateTranslation 为样本创建翻译
// 语言必须不同于原样本语言；实体多重集必须与原样本一致
func (s *Service) CreateTranslation(ctx context.Context, user *model.User, exampleID int64, req *CreateTranslationRequest) (*model.RepositoryTranslation, error) {
	example, err := s.repo.Example.GetByID(exampleID)
	if err != nil {
		return nil, fmt.Errorf("example not found: %w", err)
	}

	authorization, err := s.authorizationFor(ctx, user, example)
	if err != nil {
		return nil, err
	}
	if !authorization.CanContribute() {
		return nil, model.ErrNotAllowed
	}

	if req.Language == example.Language() {
		return nil, model.ErrSameLanguage
	}

	for _, entity := range req.Entities {
		span := model.EntitySpan{Start: entity.Start, End: entity.End, Entity: entity.Entity}
		if err := span.Validate(req.Text); err != nil {
			return nil, fmt.Errorf("entity %q: %w", entity.Entity, err)
		}
	}

	spans := toSpans(req.Entities)
	originalSpans := example.EntitySpans()
	if !model.SameEntities(spans, originalSpans) {
		return nil, &model.EntityMismatchError{
			Entities:         model.CountEntities(spans),
			OriginalEntities: model.CountEntities(originalSpans),
		}
	}

	translation := &model.RepositoryTranslation{
		OriginalExampleID: example.ID,
		Language:          req.Language,
		Text:              req.Text,
	}
	for _, entity := range req.Entities {
		translation.Entities = append(translation.Entities, model.TranslationEntity{
			EntitySpan: model.EntitySpan{Start: entity.Start, End: entity.End, Entity: entity.Entity},
		})
	}

	if err := s.repo.Example.CreateTranslation(translation); err != nil {
		return nil, fmt.Errorf("failed to create translation: %w", err)
	}
	return translation, nil
}

// GetTranslation 获取单条翻译
func (s *Service) GetTranslation(ctx context.Context, user *model.User, id int64) (*model.RepositoryTranslation, error) {
	translation, err := s.repo.Example.GetTranslationByID(id)
	if err != nil {
		return nil, fmt.Errorf("translation not found: %w", err)
	}

	authorization, err := s.authorizationFor(ctx, user, translation.OriginalExample)
	if err != nil {
		return nil, err
	}
	if !authorization.CanRead() {
		return nil, model.ErrNotAllowed
	}
	return translation, nil
}

// ListTranslations 列出样本的全部翻译
func (s *Service) ListTranslations(ctx context.Context, user *model.User, exampleID int64) ([]*model.RepositoryTranslation, error) {
	example, err := s.repo.Example.GetByID(exampleID)
	if err != nil {
		return nil, fmt.Errorf("example not found: %w", err)
	}

	authorization, err := s.authorizationFor(ctx, user, example)
	if err != nil {
		return nil, err
	}
	if !authorization.CanRead() {
		return nil, model.ErrNotAllowed
	}
	return s.repo.Example.ListTranslations(example.ID)
}

// authorizationFor 推导用户对样本所在仓库的授权
func (s *Service) authorizationFor(ctx context.Context, user *model.User, example *model.RepositoryExample) (*model.RepositoryAuthorization, error) {
	if example.Version == nil || example.Version.Repository == nil {
		return nil, errors.New("example version repository not loaded")
	}
	return s.repoSvc.GetUserAuthorization(ctx, user, example.Version.Repository)
}
