package model

import "time"

// RepositoryCategory 仓库分类
type RepositoryCategory struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Name      string    `gorm:"size:32;not null" json:"name"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// TableName 指定表名
func (RepositoryCategory) TableName() string {
	return "repository_categories"
}

// Repository 数据集仓库，一个机器人训练数据的顶层容器
// 拥有基础语言和按语言划分的版本序列，样本翻译可以扩展到其他语言
type Repository struct {
	ID          string               `gorm:"primaryKey;size:36" json:"uuid"`
	OwnerID     string               `gorm:"index;size:36;not null;uniqueIndex:idx_repo_owner_slug" json:"owner_id"`
	Owner       *User                `gorm:"foreignKey:OwnerID" json:"owner,omitempty"`
	Name        string               `gorm:"size:64;not null" json:"name"`
	Slug        string               `gorm:"size:32;not null;uniqueIndex:idx_repo_owner_slug" json:"slug"`
	Language    string               `gorm:"size:10;not null" json:"language"` // 基础语言
	Description string               `gorm:"type:text" json:"description"`
	IsPrivate   bool                 `gorm:"default:false" json:"is_private"`
	Categories  []RepositoryCategory `gorm:"many2many:repository_category_links" json:"categories,omitempty"`
	CreatedAt   time.Time            `gorm:"autoCreateTime" json:"created_at"`
}

// TableName 指定表名
func (Repository) TableName() string {
	return "repositories"
}

// LanguageStatus 单一语言的状态报表
type LanguageStatus struct {
	IsBaseLanguage   bool                  `json:"is_base_language"`
	Examples         LanguageExamples      `json:"examples"`
	BaseTranslations BaseTranslationsStats `json:"base_translations"`
}

// LanguageExamples 某语言样本统计
type LanguageExamples struct {
	Count    int      `json:"count"`
	Entities []string `json:"entities"`
}

// BaseTranslationsStats 基础语言样本被翻译到目标语言的统计
// 零基础样本时百分比按 0 处理，避免除零
type BaseTranslationsStats struct {
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}
