package model

import "fmt"

// Language selects which description and voice set is requested and which UI
// strings are shown. A single global value, changed only by explicit user action.
type Language string

const (
	LanguageVietnamese Language = "vi"
	LanguageEnglish    Language = "en"
)

// ParseLanguage validates a language code from config or the API layer.
func ParseLanguage(s string) (Language, error) {
	switch Language(s) {
	case LanguageVietnamese, LanguageEnglish:
		return Language(s), nil
	}
	return "", fmt.Errorf("unsupported language %q", s)
}

// LanguageInfo holds the code and display name of a selectable language.
type LanguageInfo struct {
	Code Language `json:"code"`
	Name string   `json:"name"`
}

// Languages lists the languages offered by the language chooser.
func Languages() []LanguageInfo {
	return []LanguageInfo{
		{Code: LanguageVietnamese, Name: "Tiếng Việt"},
		{Code: LanguageEnglish, Name: "English"},
	}
}
