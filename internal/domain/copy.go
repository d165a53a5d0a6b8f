package domain

import "strings"

// Language is the copy document column a field was read from.
type Language string

const (
	LanguageEN    Language = "EN"
	LanguageFR    Language = "FR"
	LanguageES    Language = "ES"
	LanguageDE    Language = "DE"
	LanguageIT    Language = "IT"
	LanguagePT    Language = "PT"
	LanguageNL    Language = "NL"
	LanguageOther Language = "Other"
)

var languageHeaders = map[string]Language{
	"ENGLISH":    LanguageEN,
	"FRENCH":     LanguageFR,
	"SPANISH":    LanguageES,
	"GERMAN":     LanguageDE,
	"ITALIAN":    LanguageIT,
	"PORTUGUESE": LanguagePT,
	"DUTCH":      LanguageNL,
	"POLISH":     LanguageOther,
	"FINNISH":    LanguageOther,
	"RUSSIAN":    LanguageOther,
	"DANISH":     LanguageOther,
}

// LanguageFromHeader maps a copy document column header such as "ENGLISH" to
// a Language. The boolean is false when the cell is not a language header.
func LanguageFromHeader(header string) (Language, bool) {
	upper := strings.ToUpper(strings.TrimSpace(header))
	if lang, ok := languageHeaders[upper]; ok {
		return lang, true
	}
	if strings.Contains(upper, "SCAND") {
		return LanguageOther, true
	}
	return "", false
}

// ParseLanguage accepts a language code ("EN") or header name ("English").
// Anything unrecognised is LanguageOther.
func ParseLanguage(s string) Language {
	switch code := Language(strings.ToUpper(strings.TrimSpace(s))); code {
	case LanguageEN, LanguageFR, LanguageES, LanguageDE, LanguageIT, LanguagePT, LanguageNL:
		return code
	}
	if lang, ok := LanguageFromHeader(s); ok {
		return lang
	}
	return LanguageOther
}

// CopyField is one approved piece of product text.
type CopyField struct {
	FieldName       string   `json:"fieldName" yaml:"field"`
	Panel           string   `json:"panel" yaml:"panel"`
	Language        Language `json:"language" yaml:"language"`
	Text            string   `json:"text" yaml:"text"`
	IsStrikethrough bool     `json:"isStrikethrough,omitempty" yaml:"strikethrough,omitempty"`
	IsLegacy        bool     `json:"isLegacy,omitempty" yaml:"legacy,omitempty"`
	ParentField     string   `json:"parentField,omitempty" yaml:"parentField,omitempty"`
	SubfieldIndex   *int     `json:"subfieldIndex,omitempty" yaml:"subfieldIndex,omitempty"`
}

// IsActive reports whether the field should be verified against artwork.
func (f *CopyField) IsActive() bool {
	return !f.IsStrikethrough && !f.IsLegacy
}

// CopyDocument is a parsed copy document split into active and retired text.
type CopyDocument struct {
	SourceName    string      `json:"sourceName" yaml:"sourceName"`
	Fields        []CopyField `json:"fields" yaml:"fields"`
	Legacy        []CopyField `json:"legacy,omitempty" yaml:"legacy,omitempty"`
	Strikethrough []CopyField `json:"strikethrough,omitempty" yaml:"strikethrough,omitempty"`
}

// ActiveFields filters fields down to those eligible for matching.
func ActiveFields(fields []CopyField) []CopyField {
	active := make([]CopyField, 0, len(fields))
	for _, f := range fields {
		if f.IsActive() {
			active = append(active, f)
		}
	}
	return active
}
