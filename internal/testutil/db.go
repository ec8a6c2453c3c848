package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/dyohan9/bothub-engine/internal/model"
)

var dbCounter int64

// NewTestDB 创建测试用内存数据库并完成建表
// 每个测试拿到独立的共享缓存实例，互不干扰
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	n := atomic.AddInt64(&dbCounter, 1)
	dsn := fmt.Sprintf("file:testdb%d?mode=memory&cache=shared", n)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	if err := db.AutoMigrate(model.AllModels...); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

// CreateUser 创建测试用户
func CreateUser(t *testing.T, db *gorm.DB, nickname string) *model.User {
	t.Helper()

	user := &model.User{
		ID:           uuid.New().String(),
		Nickname:     nickname,
		Email:        nickname + "@example.com",
		PasswordHash: "not-a-real-hash",
		IsActive:     true,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateRepository 创建测试仓库
func CreateRepository(t *testing.T, db *gorm.DB, owner *model.User, slug, language string, private bool) *model.Repository {
	t.Helper()

	repo := &model.Repository{
		ID:        uuid.New().String(),
		OwnerID:   owner.ID,
		Owner:     owner,
		Name:      slug,
		Slug:      slug,
		Language:  language,
		IsPrivate: private,
	}
	if err := db.Create(repo).Error; err != nil {
		t.Fatalf("failed to create test repository: %v", err)
	}
	return repo
}
