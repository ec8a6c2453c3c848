package repository

import (
	"github.com/dyohan9/bothub-engine/internal/model"
	"gorm.io/gorm"
)

// RepoRepository 数据集仓库数据访问
type RepoRepository struct {
	db *gorm.DB
}

// NewRepoRepository 创建数据集仓库数据访问对象
func NewRepoRepository(db *gorm.DB) *RepoRepository {
	return &RepoRepository{db: db}
}

// Create 创建仓库
func (r *RepoRepository) Create(repo *model.Repository) error {
	return r.db.Create(repo).Error
}

// GetByID 根据ID获取仓库
func (r *RepoRepository) GetByID(id string) (*model.Repository, error) {
	var repo model.Repository
	err := r.db.Preload("Owner").Preload("Categories").
		Where("id = ?", id).First(&repo).Error
	if err != nil {
		return nil, err
	}
	return &repo, nil
}

// GetBySlug 根据拥有者昵称与 slug 获取仓库
func (r *RepoRepository) GetBySlug(ownerNickname, slug string) (*model.Repository, error) {
	var repo model.Repository
	err := r.db.Preload("Owner").Preload("Categories").
		Joins("JOIN users ON users.id = repositories.owner_id").
		Where("users.nickname = ? AND repositories.slug = ?", ownerNickname, slug).
		First(&repo).Error
	if err != nil {
		return nil, err
	}
	return &repo, nil
}

// ListPublic 列出公开仓库
func (r *RepoRepository) ListPublic(offset, limit int) ([]*model.Repository, error) {
	var repos []*model.Repository
	err := r.db.Preload("Owner").Preload("Categories").
		Where("is_private = ?", false).
		Order("created_at DESC").Offset(offset).Limit(limit).
		Find(&repos).Error
	return repos, err
}

// CountPublic 统计公开仓库数量
func (r *RepoRepository) CountPublic() (int64, error) {
	var count int64
	err := r.db.Model(&model.Repository{}).
		Where("is_private = ?", false).Count(&count).Error
	return count, err
}

// ListByOwner 列出用户拥有的仓库
func (r *RepoRepository) ListByOwner(ownerID string) ([]*model.Repository, error) {
	var repos []*model.Repository
	err := r.db.Preload("Categories").
		Where("owner_id = ?", ownerID).
		Order("created_at DESC").
		Find(&repos).Error
	return repos, err
}

// Update 更新仓库
func (r *RepoRepository) Update(repo *model.Repository) error {
	return r.db.Save(repo).Error
}

// Delete 删除仓库及其全部关联数据
func (r *RepoRepository) Delete(id string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var versionIDs []int64
		if err := tx.Model(&model.RepositoryVersion{}).
			Where("repository_id = ?", id).
			Pluck("id", &versionIDs).Error; err != nil {
			return err
		}
		if len(versionIDs) > 0 {
			var exampleIDs []int64
			if err := tx.Model(&model.RepositoryExample{}).
				Where("version_id IN ?", versionIDs).
				Pluck("id", &exampleIDs).Error; err != nil {
				return err
			}
			if len(exampleIDs) > 0 {
				var translationIDs []int64
				if err := tx.Model(&model.RepositoryTranslation{}).
					Where("original_example_id IN ?", exampleIDs).
					Pluck("id", &translationIDs).Error; err != nil {
					return err
				}
				if len(translationIDs) > 0 {
					if err := tx.Delete(&model.TranslationEntity{}, "translation_id IN ?", translationIDs).Error; err != nil {
						return err
					}
					if err := tx.Delete(&model.RepositoryTranslation{}, "id IN ?", translationIDs).Error; err != nil {
						return err
					}
				}
				if err := tx.Delete(&model.ExampleEntity{}, "example_id IN ?", exampleIDs).Error; err != nil {
					return err
				}
				if err := tx.Delete(&model.RepositoryExample{}, "id IN ?", exampleIDs).Error; err != nil {
					return err
				}
			}
			if err := tx.Delete(&model.RepositoryVersion{}, "id IN ?", versionIDs).Error; err != nil {
				return err
			}
		}
		if err := tx.Delete(&model.RepositoryAuthorization{}, "repository_id = ?", id).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Repository{}, "id = ?", id).Error
	})
}

// ========== 聚合统计 ==========

// ExampleLanguages 非删除样本归属版本的语言去重列表
func (r *RepoRepository) ExampleLanguages(repoID string) ([]string, error) {
	var languages []string
	err := r.db.Model(&model.RepositoryExample{}).
		Distinct("repository_versions.language").
		Joins("JOIN repository_versions ON repository_versions.id = repository_examples.version_id").
		Where("repository_versions.repository_id = ?", repoID).
		Where("repository_examples.deleted_in_id IS NULL").
		Pluck("repository_versions.language", &languages).Error
	return languages, err
}

// TranslationLanguages 非删除样本已有翻译的语言去重列表
func (r *RepoRepository) TranslationLanguages(repoID string) ([]string, error) {
	var languages []string
	err := r.db.Model(&model.RepositoryTranslation{}).
		Distinct("repository_translations.language").
		Joins("JOIN repository_examples ON repository_examples.id = repository_translations.original_example_id").
		Joins("JOIN repository_versions ON repository_versions.id = repository_examples.version_id").
		Where("repository_versions.repository_id = ?", repoID).
		Where("repository_examples.deleted_in_id IS NULL").
		Pluck("repository_translations.language", &languages).Error
	return languages, err
}

// CountExamples 统计某语言的非删除样本数
func (r *RepoRepository) CountExamples(repoID, language string) (int64, error) {
	var count int64
	err := r.db.Model(&model.RepositoryExample{}).
		Joins("JOIN repository_versions ON repository_versions.id = repository_examples.version_id").
		Where("repository_versions.repository_id = ?", repoID).
		Where("repository_versions.language = ?", language).
		Where("repository_examples.deleted_in_id IS NULL").
		Count(&count).Error
	return count, err
}

// DistinctEntities 某语言非删除样本的实体名去重列表
func (r *RepoRepository) DistinctEntities(repoID, language string) ([]string, error) {
	var entities []string
	err := r.db.Model(&model.ExampleEntity{}).
		Distinct("example_entities.entity").
		Joins("JOIN repository_examples ON repository_examples.id = example_entities.example_id").
		Joins("JOIN repository_versions ON repository_versions.id = repository_examples.version_id").
		Where("repository_versions.repository_id = ?", repoID).
		Where("repository_versions.language = ?", language).
		Where("repository_examples.deleted_in_id IS NULL").
		Pluck("example_entities.entity", &entities).Error
	return entities, err
}

// CountBaseTranslations 统计基础语言样本被翻译到目标语言的数量
func (r *RepoRepository) CountBaseTranslations(repoID, baseLanguage, targetLanguage string) (int64, error) {
	var count int64
	err := r.db.Model(&model.RepositoryTranslation{}).
		Joins("JOIN repository_examples ON repository_examples.id = repository_translations.original_example_id").
		Joins("JOIN repository_versions ON repository_versions.id = repository_examples.version_id").
		Where("repository_versions.repository_id = ?", repoID).
		Where("repository_versions.language = ?", baseLanguage).
		Where("repository_examples.deleted_in_id IS NULL").
		Where("repository_translations.language = ?", targetLanguage).
		Count(&count).Error
	return count, err
}

// DistinctIntents 仓库非删除样本的非空意图去重列表
func (r *RepoRepository) DistinctIntents(repoID string) ([]string, error) {
	var intents []string
	err := r.db.Model(&model.RepositoryExample{}).
		Distinct("repository_examples.intent").
		Joins("JOIN repository_versions ON repository_versions.id = repository_examples.version_id").
		Where("repository_versions.repository_id = ?", repoID).
		Where("repository_examples.deleted_in_id IS NULL").
		Where("repository_examples.intent <> ''").
		Pluck("repository_examples.intent", &intents).Error
	return intents, err
}
