// Package repository 提供数据访问层
package repository

import "gorm.io/gorm"

// Repositories 仓库集合，用于统一管理所有数据访问对象
type Repositories struct {
	DB            *gorm.DB // 直接访问数据库
	User          *UserRepository
	Repo          *RepoRepository
	Version       *VersionRepository
	Example       *ExampleRepository
	Authorization *AuthorizationRepository
}

// NewRepositories 创建所有数据访问对象
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		DB:            db,
		User:          NewUserRepository(db),
		Repo:          NewRepoRepository(db),
		Version:       NewVersionRepository(db),
		Example:       NewExampleRepository(db),
		Authorization: NewAuthorizationRepository(db),
	}
}
