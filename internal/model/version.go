package model

import (
	"encoding/base64"
	"time"
)

// VersionState 版本生命周期状态
type VersionState string

const (
	VersionStateOpen     VersionState = "open"     // 可追加样本
	VersionStateTraining VersionState = "training" // 已冻结，训练中
	VersionStateTrained  VersionState = "trained"  // 终态，不可重开
)

// RepositoryVersion 仓库的按语言工作快照（版本）
// 同一 (仓库, 语言) 同时最多只有一个 open 版本，由部分唯一索引保证
type RepositoryVersion struct {
	ID                int64       `gorm:"primaryKey;autoIncrement" json:"id"`
	RepositoryID      string      `gorm:"size:36;not null;uniqueIndex:idx_version_current,where:training_started_at IS NULL" json:"repository_id"`
	Repository        *Repository `gorm:"foreignKey:RepositoryID" json:"-"`
	Language          string      `gorm:"size:10;not null;uniqueIndex:idx_version_current,where:training_started_at IS NULL" json:"language"`
	ByID              *string     `gorm:"size:36" json:"by,omitempty"` // 发起训练的用户，开始训练前为空
	By                *User       `gorm:"foreignKey:ByID" json:"-"`
	TrainingStartedAt *time.Time  `json:"training_started_at,omitempty"`
	TrainedAt         *time.Time  `json:"trained_at,omitempty"`
	BotData           string      `gorm:"type:text" json:"-"` // 训练产物，base64 编码
	CreatedAt         time.Time   `gorm:"autoCreateTime" json:"created_at"`
}

// TableName 指定表名
func (RepositoryVersion) TableName() string {
	return "repository_versions"
}

// State 计算当前生命周期状态
func (v *RepositoryVersion) State() VersionState {
	if v.TrainedAt != nil {
		return VersionStateTrained
	}
	if v.TrainingStartedAt != nil {
		return VersionStateTraining
	}
	return VersionStateOpen
}

// StartTraining 冻结版本并记录训练发起信息
// 返回发生变更的字段名，由存储层在单个事务内落盘
func (v *RepositoryVersion) StartTraining(by *User, canWrite bool, now time.Time) ([]string, error) {
	if v.TrainedAt != nil {
		return nil, ErrAlreadyTrained
	}
	if v.TrainingStartedAt != nil {
		return nil, ErrAlreadyTraining
	}
	if !canWrite {
		return nil, ErrTrainingNotAllowed
	}

	v.ByID = &by.ID
	v.TrainingStartedAt = &now
	return []string{"by_id", "training_started_at"}, nil
}

// SaveTraining 记录训练产物并进入终态
// 返回发生变更的字段名，由存储层在单个事务内落盘
func (v *RepositoryVersion) SaveTraining(botData []byte, now time.Time) ([]string, error) {
	if v.TrainedAt != nil {
		return nil, ErrAlreadyTrained
	}

	v.TrainedAt = &now
	v.BotData = base64.StdEncoding.EncodeToString(botData)
	return []string{"trained_at", "bot_data"}, nil
}

// GetBotData 解码训练产物
func (v *RepositoryVersion) GetBotData() ([]byte, error) {
	return base64.StdEncoding.DecodeString(v.BotData)
}
