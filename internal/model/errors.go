package model

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// 领域错误，由检测点抛出并原样传播到边界层，内部不重试
var (
	// ErrAlreadyTrained 版本已训练完成，训练相关操作永久不可用
	ErrAlreadyTrained = errors.New("repository version already trained")
	// ErrAlreadyTraining 版本已开始训练，不可重复开始
	ErrAlreadyTraining = errors.New("repository version already started training")
	// ErrTrainingNotAllowed 当前用户没有训练所需的写权限
	ErrTrainingNotAllowed = errors.New("user is not allowed to train this repository")
	// ErrNotAllowed 当前用户没有该仓库的贡献权限
	ErrNotAllowed = errors.New("you can't contribute in this repository")
	// ErrNoTranslation 请求的语言没有对应翻译
	ErrNoTranslation = errors.New("translation does not exist for this language")
	// ErrAlreadyDeleted 样本已被软删除，不可重复删除
	ErrAlreadyDeleted = errors.New("example already deleted")
	// ErrEntityMismatch 翻译实体多重集与原样本不一致
	ErrEntityMismatch = errors.New("translation entities do not match original example")
	// ErrSameLanguage 翻译语言不能与原样本语言相同
	ErrSameLanguage = errors.New("can't translate to the same language")
	// ErrInvalidEntitySpan 实体区间越界或起止顺序非法
	ErrInvalidEntitySpan = errors.New("invalid entity span")
)

// EntityMismatchError 实体多重集不一致的详细错误
// 携带双方的实体计数，便于边界层向用户枚举差异
type EntityMismatchError struct {
	Entities         map[string]int
	OriginalEntities map[string]int
}

// Error 实现 error 接口
func (e *EntityMismatchError) Error() string {
	return fmt.Sprintf(
		"entities need to match from the original content. Entities: %s. Original entities: %s",
		formatEntityCounts(e.Entities),
		formatEntityCounts(e.OriginalEntities),
	)
}

// Unwrap 支持 errors.Is(err, ErrEntityMismatch)
func (e *EntityMismatchError) Unwrap() error {
	return ErrEntityMismatch
}

// formatEntityCounts 按实体名排序输出 "name:count" 列表
func formatEntityCounts(counts map[string]int) string {
	if len(counts) == 0 {
		return "(none)"
	}
	names := make([]string, 0, len(counts))
	for name := range counts {
		names = append(names, name)
	}
	sort.Strings(names)
	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%s:%d", name, counts[name]))
	}
	return strings.Join(parts, ", ")
}
