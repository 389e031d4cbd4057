// Package i18n models the four display locales the shop prints and shows.
package i18n

import "strings"

type Locale string

const (
	ZH Locale = "zh"
	EN Locale = "en"
	JA Locale = "ja"
	KO Locale = "ko"
)

// Native is the kitchen's locale; aggregates and tickets key on it.
const Native = ZH

var Supported = []Locale{ZH, EN, JA, KO}

var aliases = map[string]Locale{
	"zh": ZH, "zh-tw": ZH, "zh_tw": ZH, "tw": ZH,
	"en": EN, "en-us": EN,
	"ja": JA, "jp": JA,
	"ko": KO, "kr": KO,
}

// Parse maps a lang query value to a supported locale, defaulting to Native.
func Parse(raw string) Locale {
	if l, ok := aliases[strings.ToLower(strings.TrimSpace(raw))]; ok {
		return l
	}
	return Native
}

func (l Locale) Valid() bool {
	for _, s := range Supported {
		if s == l {
			return true
		}
	}
	return false
}

// Text holds one string per locale.
type Text map[Locale]string

// In returns the value for l, falling back to the native value.
func (t Text) In(l Locale) string {
	if v := strings.TrimSpace(t[l]); v != "" {
		return v
	}
	return t[Native]
}

// List holds one token list per locale.
type List map[Locale][]string

func (l List) In(loc Locale) []string {
	if v := l[loc]; len(v) > 0 {
		return v
	}
	return l[Native]
}

// SplitTokens parses a comma-separated option column. Full-width commas count too.
func SplitTokens(raw string) []string {
	raw = strings.ReplaceAll(raw, "，", ",")
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if v := strings.TrimSpace(p); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func JoinTokens(tokens []string) string {
	return strings.Join(tokens, ",")
}
