package repository

import (
	"github.com/dyohan9/bothub-engine/internal/model"
	"gorm.io/gorm"
)

// ExampleRepository 训练样本数据访问
type ExampleRepository struct {
	db *gorm.DB
}

// NewExampleRepository 创建样本数据访问对象
func NewExampleRepository(db *gorm.DB) *ExampleRepository {
	return &ExampleRepository{db: db}
}

// Create 创建样本及其实体标注
func (r *ExampleRepository) Create(example *model.RepositoryExample) error {
	return r.db.Create(example).Error
}

// GetByID 根据ID获取样本，预加载归属版本、实体与翻译
func (r *ExampleRepository) GetByID(id int64) (*model.RepositoryExample, error) {
	var example model.RepositoryExample
	err := r.db.Preload("Version.Repository").
		Preload("Entities").
		Preload("Translations.Entities").
		Where("id = ?", id).First(&example).Error
	if err != nil {
		return nil, err
	}
	return &example, nil
}

// List 列出仓库样本
// language 为空表示全部语言；includeDeleted 为假时排除软删除样本
func (r *ExampleRepository) List(repoID, language string, includeDeleted bool, offset, limit int) ([]*model.RepositoryExample, error) {
	query := r.listQuery(repoID, language, includeDeleted)
	var examples []*model.RepositoryExample
	err := query.Preload("Version").
		Preload("Entities").
		Preload("Translations.Entities").
		Order("repository_examples.created_at DESC").
		Offset(offset).Limit(limit).
		Find(&examples).Error
	return examples, err
}

// Count 统计仓库样本数
func (r *ExampleRepository) Count(repoID, language string, includeDeleted bool) (int64, error) {
	var count int64
	err := r.listQuery(repoID, language, includeDeleted).Count(&count).Error
	return count, err
}

// listQuery 构造样本列表基础查询
func (r *ExampleRepository) listQuery(repoID, language string, includeDeleted bool) *gorm.DB {
	query := r.db.Model(&model.RepositoryExample{}).
		Joins("JOIN repository_versions ON repository_versions.id = repository_examples.version_id").
		Where("repository_versions.repository_id = ?", repoID)
	if language != "" {
		query = query.Where("repository_versions.language = ?", language)
	}
	if !includeDeleted {
		query = query.Where("repository_examples.deleted_in_id IS NULL")
	}
	return query
}

// ExistsTextIntent 仓库内是否已存在相同文本与意图的样本
func (r *ExampleRepository) ExistsTextIntent(repoID, text, intent string) (bool, error) {
	var count int64
	err := r.db.Model(&model.RepositoryExample{}).
		Joins("JOIN repository_versions ON repository_versions.id = repository_examples.version_id").
		Where("repository_versions.repository_id = ?", repoID).
		Where("repository_examples.text = ? AND repository_examples.intent = ?", text, intent).
		Count(&count).Error
	return count > 0, err
}

// MarkDeleted 记录软删除发生的版本，只落盘 deleted_in_id
func (r *ExampleRepository) MarkDeleted(example *model.RepositoryExample, deletedInID int64) error {
	example.DeletedInID = &deletedInID
	return r.db.Model(example).Select("deleted_in_id").Updates(example).Error
}

// ========== 翻译 ==========

// CreateTranslation 创建翻译及其实体标注
func (r *ExampleRepository) CreateTranslation(translation *model.RepositoryTranslation) error {
	return r.db.Create(translation).Error
}

// GetTranslationByID 根据ID获取翻译，预加载原样本
func (r *ExampleRepository) GetTranslationByID(id int64) (*model.RepositoryTranslation, error) {
	var translation model.RepositoryTranslation
	err := r.db.Preload("Entities").
		Preload("OriginalExample.Entities").
		Preload("OriginalExample.Version.Repository").
		Where("id = ?", id).First(&translation).Error
	if err != nil {
		return nil, err
	}
	return &translation, nil
}

// ListTranslations 列出样本的全部翻译
func (r *ExampleRepository) ListTranslations(exampleID int64) ([]*model.RepositoryTranslation, error) {
	var translations []*model.RepositoryTranslation
	err := r.db.Preload("Entities").
		Where("original_example_id = ?", exampleID).
		Order("created_at ASC").
		Find(&translations).Error
	return translations, err
}
