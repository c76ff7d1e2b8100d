package config

import (
	"fmt"
	"strings"
)

const (
	DefaultLanguage = "pt"
	DefaultModel    = "whisper-large-v3-turbo"
)

// Language is one entry of the transcriber's language selector.
type Language struct {
	Code string
	Name string
}

// Label renders the selector text, e.g. "Português (pt)".
func (l Language) Label() string {
	return fmt.Sprintf("%s (%s)", l.Name, l.Code)
}

// Languages offered by the transcriber, in selector order.
var Languages = []Language{
	{Code: "pt", Name: "Português"},
	{Code: "en", Name: "English"},
	{Code: "es", Name: "Español"},
	{Code: "fr", Name: "Français"},
}

// Models offered by the transcriber, in selector order.
var Models = []string{
	"whisper-large-v3-turbo",
	"whisper-large-v3",
}

// ParseLanguage accepts either a bare code ("en") or a selector label
// ("English (en)") and returns the language code.
func ParseLanguage(s string) (string, error) {
	s = strings.TrimSpace(s)
	if open := strings.LastIndex(s, "("); open >= 0 {
		if end := strings.Index(s[open:], ")"); end > 0 {
			s = s[open+1 : open+end]
		}
	}
	code := strings.ToLower(strings.TrimSpace(s))
	for _, l := range Languages {
		if l.Code == code {
			return code, nil
		}
	}
	return "", fmt.Errorf("unsupported language %q", s)
}

// IsSupportedModel reports whether name is one of Models.
func IsSupportedModel(name string) bool {
	for _, m := range Models {
		if m == name {
			return true
		}
	}
	return false
}
