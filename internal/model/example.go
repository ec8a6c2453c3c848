package model

import "time"

// EntitySpan 文本中被标注实体的区间，样本实体与翻译实体共用
// value 永远由所属文本推导，不落库
type EntitySpan struct {
	Start  int    `gorm:"not null" json:"start"`
	End    int    `gorm:"not null" json:"end"`
	Entity string `gorm:"size:64;not null" json:"entity"`
}

// Value 截取所属文本中的实体值，按码点计
// 对历史越界数据做钳制而不是崩溃
func (s EntitySpan) Value(text string) string {
	runes := []rune(text)
	start, end := s.Start, s.End
	if start < 0 {
		start = 0
	}
	if end > len(runes) {
		end = len(runes)
	}
	if start >= end {
		return ""
	}
	return string(runes[start:end])
}

// Validate 严格校验区间合法性：0 <= start <= end <= len(text)
func (s EntitySpan) Validate(text string) error {
	if s.Start < 0 || s.Start > s.End || s.End > len([]rune(text)) {
		return ErrInvalidEntitySpan
	}
	return nil
}

// ToRasaData 转换为训练载荷中的实体表示
func (s EntitySpan) ToRasaData(text string) RasaEntity {
	return RasaEntity{
		Start:  s.Start,
		End:    s.End,
		Value:  s.Value(text),
		Entity: s.Entity,
	}
}

// ExampleEntity 样本上的实体标注
type ExampleEntity struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	ExampleID int64     `gorm:"index;not null" json:"example_id"`
	EntitySpan
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// TableName 指定表名
func (ExampleEntity) TableName() string {
	return "example_entities"
}

// TranslationEntity 翻译上的实体标注
type TranslationEntity struct {
	ID            int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	TranslationID int64     `gorm:"index;not null" json:"translation_id"`
	EntitySpan
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// TableName 指定表名
func (TranslationEntity) TableName() string {
	return "translation_entities"
}

// RepositoryExample 一条带标注的训练样本
// 永远归属于添加它的版本，不做物理删除，软删除记录在 deleted_in
type RepositoryExample struct {
	ID           int64                   `gorm:"primaryKey;autoIncrement" json:"id"`
	VersionID    int64                   `gorm:"index;not null" json:"version_id"`
	Version      *RepositoryVersion      `gorm:"foreignKey:VersionID" json:"-"`
	DeletedInID  *int64                  `gorm:"index" json:"deleted_in,omitempty"`
	DeletedIn    *RepositoryVersion      `gorm:"foreignKey:DeletedInID" json:"-"`
	Text         string                  `gorm:"type:text;not null" json:"text"`
	Intent       string                  `gorm:"size:64" json:"intent"`
	Entities     []ExampleEntity         `gorm:"foreignKey:ExampleID" json:"entities,omitempty"`
	Translations []RepositoryTranslation `gorm:"foreignKey:OriginalExampleID" json:"translations,omitempty"`
	CreatedAt    time.Time               `gorm:"autoCreateTime" json:"created_at"`
}

// TableName 指定表名
func (RepositoryExample) TableName() string {
	return "repository_examples"
}

// Language 样本语言，即归属版本的语言，需要预加载 Version
func (e *RepositoryExample) Language() string {
	if e.Version == nil {
		return ""
	}
	return e.Version.Language
}

// IsDeleted 样本是否已被软删除
func (e *RepositoryExample) IsDeleted() bool {
	return e.DeletedInID != nil
}

// EntitySpans 收集样本自身的实体区间
func (e *RepositoryExample) EntitySpans() []EntitySpan {
	spans := make([]EntitySpan, 0, len(e.Entities))
	for _, entity := range e.Entities {
		spans = append(spans, entity.EntitySpan)
	}
	return spans
}

// GetTranslation 查找指定语言的翻译，需要预加载 Translations
func (e *RepositoryExample) GetTranslation(language string) (*RepositoryTranslation, error) {
	for i := range e.Translations {
		if e.Translations[i].Language == language {
			return &e.Translations[i], nil
		}
	}
	return nil, ErrNoTranslation
}

// GetText 返回指定语言的文本，空语言或样本语言返回原文
func (e *RepositoryExample) GetText(language string) (string, error) {
	if language == "" || language == e.Language() {
		return e.Text, nil
	}
	translation, err := e.GetTranslation(language)
	if err != nil {
		return "", err
	}
	return translation.Text, nil
}

// GetEntities 返回指定语言的实体区间，空语言或样本语言返回自身实体
func (e *RepositoryExample) GetEntities(language string) ([]EntitySpan, error) {
	if language == "" || language == e.Language() {
		return e.EntitySpans(), nil
	}
	translation, err := e.GetTranslation(language)
	if err != nil {
		return nil, err
	}
	return translation.EntitySpans(), nil
}

// HasValidEntities 指定语言下实体是否有效
// 样本语言下恒为真；其他语言要求存在翻译且翻译实体与原样本一致
func (e *RepositoryExample) HasValidEntities(language string) bool {
	if language == "" || language == e.Language() {
		return true
	}
	translation, err := e.GetTranslation(language)
	if err != nil {
		return false
	}
	return SameEntities(translation.EntitySpans(), e.EntitySpans())
}

// ToRasaData 转换为目标语言的训练载荷条目
func (e *RepositoryExample) ToRasaData(language string) (*RasaExample, error) {
	text, err := e.GetText(language)
	if err != nil {
		return nil, err
	}
	spans, err := e.GetEntities(language)
	if err != nil {
		return nil, err
	}
	entities := make([]RasaEntity, 0, len(spans))
	for _, span := range spans {
		entities = append(entities, span.ToRasaData(text))
	}
	return &RasaExample{
		Text:     text,
		Intent:   e.Intent,
		Entities: entities,
	}, nil
}

// RepositoryTranslation 样本在某一语言下的翻译，语言对同一样本唯一
type RepositoryTranslation struct {
	ID                int64               `gorm:"primaryKey;autoIncrement" json:"id"`
	OriginalExampleID int64               `gorm:"not null;uniqueIndex:idx_translation_language" json:"original_example_id"`
	OriginalExample   *RepositoryExample  `gorm:"foreignKey:OriginalExampleID" json:"-"`
	Language          string              `gorm:"size:10;not null;uniqueIndex:idx_translation_language" json:"language"`
	Text              string              `gorm:"type:text;not null" json:"text"`
	Entities          []TranslationEntity `gorm:"foreignKey:TranslationID" json:"entities,omitempty"`
	CreatedAt         time.Time           `gorm:"autoCreateTime" json:"created_at"`
}

// TableName 指定表名
func (RepositoryTranslation) TableName() string {
	return "repository_translations"
}

// EntitySpans 收集翻译自身的实体区间
func (t *RepositoryTranslation) EntitySpans() []EntitySpan {
	spans := make([]EntitySpan, 0, len(t.Entities))
	for _, entity := range t.Entities {
		spans = append(spans, entity.EntitySpan)
	}
	return spans
}

// HasValidEntities 翻译实体多重集是否与原样本一致，需要预加载 OriginalExample.Entities
// 只比较实体名与数量，位置无关
func (t *RepositoryTranslation) HasValidEntities() bool {
	if t.OriginalExample == nil {
		return false
	}
	return SameEntities(t.EntitySpans(), t.OriginalExample.EntitySpans())
}

// CountEntities 构建实体名到出现次数的映射
func CountEntities(spans []EntitySpan) map[string]int {
	counts := make(map[string]int, len(spans))
	for _, span := range spans {
		counts[span.Entity]++
	}
	return counts
}

// SameEntities 比较两侧实体多重集是否完全一致
func SameEntities(a, b []EntitySpan) bool {
	if len(a) != len(b) {
		return false
	}
	countsA := CountEntities(a)
	countsB := CountEntities(b)
	if len(countsA) != len(countsB) {
		return false
	}
	for entity, count := range countsA {
		if countsB[entity] != count {
			return false
		}
	}
	return true
}

// RasaNLUData 提交给 NLP 服务的结构化训练载荷
type RasaNLUData struct {
	CommonExamples []RasaExample `json:"common_examples"`
}

// RasaExample 训练载荷中的一条样本
type RasaExample struct {
	Text     string       `json:"text"`
	Intent   string       `json:"intent"`
	Entities []RasaEntity `json:"entities"`
}

// RasaEntity 训练载荷中的一个实体
type RasaEntity struct {
	Start  int    `json:"start"`
	End    int    `json:"end"`
	Value  string `json:"value"`
	Entity string `json:"entity"`
}
