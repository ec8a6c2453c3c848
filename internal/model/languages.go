// Package model 提供数据集仓库相关的数据模型
package model

// 支持的语言代码
const (
	LanguageEN = "en"
	LanguagePT = "pt"
	LanguageES = "es"
	LanguageFR = "fr"
	LanguageDE = "de"
	LanguageIT = "it"
	LanguageNL = "nl"
	LanguageRU = "ru"
	LanguageJA = "ja"
	LanguageZH = "zh"
)

// SupportedLanguages 平台支持的全部语言
// 语言状态报表会对该列表中的每种语言计算状态，与仓库当前是否使用无关
var SupportedLanguages = []string{
	LanguageEN,
	LanguagePT,
	LanguageES,
	LanguageFR,
	LanguageDE,
	LanguageIT,
	LanguageNL,
	LanguageRU,
	LanguageJA,
	LanguageZH,
}

// IsSupportedLanguage 判断语言代码是否受支持
func IsSupportedLanguage(language string) bool {
	for _, l := range SupportedLanguages {
		if l == language {
			return true
		}
	}
	return false
}
