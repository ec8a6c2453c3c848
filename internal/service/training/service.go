// Package training 提供版本训练生命周期与 NLP 委托服务
package training

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dyohan9/bothub-engine/internal/model"
	"github.com/dyohan9/bothub-engine/internal/nlp"
	"github.com/dyohan9/bothub-engine/internal/repository"
	"github.com/dyohan9/bothub-engine/internal/service/repo"
)

// Service 训练服务
type Service struct {
	repo    *repository.Repositories
	repoSvc *repo.Service
	nlp     nlp.Client
}

// NewService 创建训练服务
func NewService(repositories *repository.Repositories, repoSvc *repo.Service, nlpClient nlp.Client) *Service {
	return &Service{repo: repositories, repoSvc: repoSvc, nlp: nlpClient}
}

// StartTraining 冻结指定语言的当前版本
// 失败语义：已训练完成报 AlreadyTrained；已在训练报 AlreadyTraining；无写权限报 TrainingNotAllowed
func (s *Service) StartTraining(ctx context.Context, repository *model.Repository, user *model.User, language string) (*model.RepositoryVersion, error) {
	version, err := s.repoSvc.CurrentVersion(ctx, repository, language)
	if err != nil {
		return nil, err
	}

	authorization, err := s.repoSvc.GetUserAuthorization(ctx, user, repository)
	if err != nil {
		return nil, err
	}

	fields, err := version.StartTraining(user, authorization.CanWrite(), time.Now())
	if err != nil {
		return nil, err
	}
	if err := s.repo.Version.SaveFields(version, fields); err != nil {
		return nil, fmt.Errorf("failed to save version: %w", err)
	}
	return version, nil
}

// Train 冻结当前版本并委托外部 NLP 服务训练
// 上游响应原样透传，非 2xx 作为上游错误传播
func (s *Service) Train(ctx context.Context, repository *model.Repository, user *model.User, language string) (*nlp.Response, error) {
	authorization, err := s.repoSvc.GetUserAuthorization(ctx, user, repository)
	if err != nil {
		return nil, err
	}
	if !authorization.CanWrite() {
		return nil, model.ErrTrainingNotAllowed
	}

	if _, err := s.StartTraining(ctx, repository, user, language); err != nil {
		return nil, err
	}

	return s.nlp.Train(ctx, authorization.ID)
}

// GetVersion 获取版本
func (s *Service) GetVersion(ctx context.Context, versionID int64) (*model.RepositoryVersion, error) {
	version, err := s.repo.Version.GetByID(versionID)
	if err != nil {
		return nil, fmt.Errorf("version not found: %w", err)
	}
	return version, nil
}

// ListVersions 列出仓库版本
func (s *Service) ListVersions(ctx context.Context, repository *model.Repository, page, size int) ([]*model.RepositoryVersion, int64, error) {
	if page <= 0 {
		page = 1
	}
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	versions, err := s.repo.Version.List(repository.ID, offset, size)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list versions: %w", err)
	}
	total, err := s.repo.Version.Count(repository.ID)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count versions: %w", err)
	}
	return versions, total, nil
}

// SaveTraining 保存训练产物并进入终态，由 NLP 服务回调
func (s *Service) SaveTraining(ctx context.Context, versionID int64, botData []byte) (*model.RepositoryVersion, error) {
	version, err := s.repo.Version.GetByID(versionID)
	if err != nil {
		return nil, fmt.Errorf("version not found: %w", err)
	}

	fields, err := version.SaveTraining(botData, time.Now())
	if err != nil {
		return nil, err
	}
	if err := s.repo.Version.SaveFields(version, fields); err != nil {
		return nil, fmt.Errorf("failed to save version: %w", err)
	}
	return version, nil
}

// GetBotData 读取版本的训练产物
func (s *Service) GetBotData(ctx context.Context, user *model.User, versionID int64) ([]byte, error) {
	version, err := s.repo.Version.GetByID(versionID)
	if err != nil {
		return nil, fmt.Errorf("version not found: %w", err)
	}
	if version.Repository == nil {
		return nil, errors.New("version repository not loaded")
	}

	authorization, err := s.repoSvc.GetUserAuthorization(ctx, user, version.Repository)
	if err != nil {
		return nil, err
	}
	if !authorization.CanRead() {
		return nil, model.ErrNotAllowed
	}

	return version.GetBotData()
}

// VisibleExamples 版本可见的训练样本集，按时间点一致性裁剪
func (s *Service) VisibleExamples(ctx context.Context, version *model.RepositoryVersion) ([]*model.RepositoryExample, error) {
	examples, err := s.repo.Version.VisibleExamples(version)
	if err != nil {
		return nil, fmt.Errorf("failed to list visible examples: %w", err)
	}
	return examples, nil
}

// RasaNLUData 构造提交给 NLP 服务的训练载荷
// 跳过目标语言下实体无效的样本
func (s *Service) RasaNLUData(ctx context.Context, version *model.RepositoryVersion) (*model.RasaNLUData, error) {
	examples, err := s.VisibleExamples(ctx, version)
	if err != nil {
		return nil, err
	}

	data := &model.RasaNLUData{CommonExamples: []model.RasaExample{}}
	for _, example := range examples {
		if !example.HasValidEntities(version.Language) {
			continue
		}
		rasaExample, err := example.ToRasaData(version.Language)
		if err != nil {
			return nil, err
		}
		data.CommonExamples = append(data.CommonExamples, *rasaExample)
	}
	return data, nil
}

// Analyze 委托外部 NLP 服务解析文本，允许匿名调用
func (s *Service) Analyze(ctx context.Context, repository *model.Repository, user *model.User, req *nlp.AnalyzeRequest) (*nlp.Response, error) {
	authorization, err := s.repoSvc.GetUserAuthorization(ctx, user, repository)
	if err != nil {
		return nil, err
	}
	return s.nlp.Analyze(ctx, authorization.ID, req)
}

// Evaluate 委托外部 NLP 服务评估，要求写权限且至少两个已注册意图
func (s *Service) Evaluate(ctx context.Context, repository *model.Repository, user *model.User, req *nlp.EvaluateRequest) (*nlp.Response, error) {
	authorization, err := s.repoSvc.GetUserAuthorization(ctx, user, repository)
	if err != nil {
		return nil, err
	}
	if !authorization.CanWrite() {
		return nil, model.ErrTrainingNotAllowed
	}

	intents, err := s.repo.Repo.DistinctIntents(repository.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list intents: %w", err)
	}
	if len(intents) <= 1 {
		return nil, errors.New("you need to have at least two registered intents")
	}

	return s.nlp.Evaluate(ctx, authorization.ID, req)
}
