package repository

import (
	"errors"

	"github.com/dyohan9/bothub-engine/internal/model"
	"gorm.io/gorm"
)

// VersionRepository 仓库版本数据访问
type VersionRepository struct {
	db *gorm.DB
}

// NewVersionRepository 创建版本数据访问对象
func NewVersionRepository(db *gorm.DB) *VersionRepository {
	return &VersionRepository{db: db}
}

// GetByID 根据ID获取版本
func (r *VersionRepository) GetByID(id int64) (*model.RepositoryVersion, error) {
	var version model.RepositoryVersion
	err := r.db.Preload("Repository").Where("id = ?", id).First(&version).Error
	if err != nil {
		return nil, err
	}
	return &version, nil
}

// GetOrCreateCurrent 获取指定语言的当前 open 版本，不存在则创建
// 并发首次创建由部分唯一索引兜底，冲突时重读已存在的版本
func (r *VersionRepository) GetOrCreateCurrent(repoID, language string) (*model.RepositoryVersion, error) {
	current, err := r.findCurrent(repoID, language)
	if err == nil {
		return current, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	version := &model.RepositoryVersion{
		RepositoryID: repoID,
		Language:     language,
	}
	if createErr := r.db.Create(version).Error; createErr != nil {
		// 唯一索引冲突说明竞争对手先建成功了
		if current, err = r.findCurrent(repoID, language); err == nil {
			return current, nil
		}
		return nil, createErr
	}
	return version, nil
}

// findCurrent 查找 open 版本
func (r *VersionRepository) findCurrent(repoID, language string) (*model.RepositoryVersion, error) {
	var version model.RepositoryVersion
	err := r.db.Where(
		"repository_id = ? AND language = ? AND training_started_at IS NULL",
		repoID, language,
	).First(&version).Error
	if err != nil {
		return nil, err
	}
	return &version, nil
}

// LastTrained 最近一次发起过训练的版本，按创建时间倒序
func (r *VersionRepository) LastTrained(repoID, language string) (*model.RepositoryVersion, error) {
	var version model.RepositoryVersion
	err := r.db.Where(
		"repository_id = ? AND language = ? AND by_id IS NOT NULL",
		repoID, language,
	).Order("created_at DESC").First(&version).Error
	if err != nil {
		return nil, err
	}
	return &version, nil
}

// List 列出仓库的版本，按创建时间倒序
func (r *VersionRepository) List(repoID string, offset, limit int) ([]*model.RepositoryVersion, error) {
	var versions []*model.RepositoryVersion
	err := r.db.Where("repository_id = ?", repoID).
		Order("created_at DESC").Offset(offset).Limit(limit).
		Find(&versions).Error
	return versions, err
}

// Count 统计仓库的版本数
func (r *VersionRepository) Count(repoID string) (int64, error) {
	var count int64
	err := r.db.Model(&model.RepositoryVersion{}).
		Where("repository_id = ?", repoID).Count(&count).Error
	return count, err
}

// SaveFields 在单个事务内只落盘指定字段
func (r *VersionRepository) SaveFields(version *model.RepositoryVersion, fields []string) error {
	return r.db.Model(version).Select(fields).Updates(version).Error
}

// VisibleExamples 计算版本可见的训练样本集
//
// 目标语言的样本既包括归属版本语言直接匹配的，也包括经由翻译匹配的。
// 版本已冻结（training_started_at 非空）时按时间点裁剪：
//   - 排除归属版本创建晚于本版本训练开始时间的样本（加入太晚）
//   - 排除在本版本中被删除的样本
//   - 排除删除发生在训练开始早于本版本的其他版本中的样本（陈旧删除）
//
// 未冻结时只排除在本版本中被删除的样本。
func (r *VersionRepository) VisibleExamples(version *model.RepositoryVersion) ([]*model.RepositoryExample, error) {
	query := r.db.Model(&model.RepositoryExample{}).
		Preload("Version").
		Preload("Entities").
		Preload("Translations.Entities").
		Joins("JOIN repository_versions AS added ON added.id = repository_examples.version_id").
		Where("added.repository_id = ?", version.RepositoryID).
		Where(
			"added.language = ? OR EXISTS (SELECT 1 FROM repository_translations rt WHERE rt.original_example_id = repository_examples.id AND rt.language = ?)",
			version.Language, version.Language,
		)

	if version.TrainingStartedAt != nil {
		startedAt := *version.TrainingStartedAt
		query = query.
			Where("added.created_at <= ?", startedAt).
			Where(
				"repository_examples.deleted_in_id IS NULL OR ("+
					"repository_examples.deleted_in_id <> ? AND NOT EXISTS ("+
					"SELECT 1 FROM repository_versions dv WHERE dv.id = repository_examples.deleted_in_id AND dv.training_started_at < ?))",
				version.ID, startedAt,
			)
	} else {
		query = query.Where(
			"repository_examples.deleted_in_id IS NULL OR repository_examples.deleted_in_id <> ?",
			version.ID,
		)
	}

	var examples []*model.RepositoryExample
	err := query.Order("repository_examples.created_at DESC").Find(&examples).Error
	return examples, err
}
