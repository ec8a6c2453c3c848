package model

import "time"

// AuthorizationLevel 用户对仓库的权限级别，每次都从所有权与可见性现算，不跨请求缓存
type AuthorizationLevel int

const (
	LevelNothing AuthorizationLevel = 0 // 无任何权限
	LevelReader  AuthorizationLevel = 1 // 只读
	LevelAdmin   AuthorizationLevel = 2 // 管理员
)

// AuthorizationRole 细粒度角色，用于协作管理与通知，权限级别推导不消费该字段
type AuthorizationRole int

const (
	RoleNotSet      AuthorizationRole = 0
	RoleUser        AuthorizationRole = 1
	RoleContributor AuthorizationRole = 2
	RoleAdmin       AuthorizationRole = 3
)

// RepositoryAuthorization 用户对仓库的授权记录
// 认证用户首次访问时按 (user, repository) 惰性建档；匿名用户使用不落库的临时记录
type RepositoryAuthorization struct {
	ID           string            `gorm:"primaryKey;size:36" json:"uuid"`
	UserID       string            `gorm:"size:36;uniqueIndex:idx_authorization_user_repo" json:"user_id"`
	User         *User             `gorm:"foreignKey:UserID" json:"-"`
	RepositoryID string            `gorm:"size:36;not null;uniqueIndex:idx_authorization_user_repo" json:"repository_id"`
	Repository   *Repository       `gorm:"foreignKey:RepositoryID" json:"-"`
	Role         AuthorizationRole `gorm:"default:0" json:"role"`
	CreatedAt    time.Time         `gorm:"autoCreateTime" json:"created_at"`
}

// TableName 指定表名
func (RepositoryAuthorization) TableName() string {
	return "repository_authorizations"
}

// IsAnonymous 是否匿名访问的临时记录
func (a *RepositoryAuthorization) IsAnonymous() bool {
	return a.UserID == ""
}

// Level 推导权限级别，需要预加载 Repository
// 仓库拥有者恒为管理员；私有仓库对其他人不可见；公开仓库对其他人只读
func (a *RepositoryAuthorization) Level() AuthorizationLevel {
	if a.Repository == nil {
		return LevelNothing
	}
	if !a.IsAnonymous() && a.Repository.OwnerID == a.UserID {
		return LevelAdmin
	}
	if a.Repository.IsPrivate {
		return LevelNothing
	}
	return LevelReader
}

// CanRead 是否可读
func (a *RepositoryAuthorization) CanRead() bool {
	level := a.Level()
	return level == LevelReader || level == LevelAdmin
}

// CanContribute 是否可贡献，当前版本等价于管理员
func (a *RepositoryAuthorization) CanContribute() bool {
	return a.Level() == LevelAdmin
}

// CanWrite 是否可写，当前版本等价于管理员
func (a *RepositoryAuthorization) CanWrite() bool {
	return a.Level() == LevelAdmin
}

// IsAdmin 是否管理员
func (a *RepositoryAuthorization) IsAdmin() bool {
	return a.Level() == LevelAdmin
}
