package i18n

import (
	"strings"
	"testing"
)

func TestLocalizer_T(t *testing.T) {
	tests := []struct {
		name     string
		language string
		key      string
		args     []interface{}
		contains string
	}{
		{
			name:     "english invalid url with platform list",
			language: DefaultLanguage,
			key:      "error.invalid_url",
			args:     []interface{}{"Spotify, iTunes and Yandex"},
			contains: "Spotify, iTunes and Yandex",
		},
		{
			name:     "german invalid url",
			language: GermanLanguage,
			key:      "error.invalid_url",
			args:     []interface{}{"Spotify"},
			contains: "validen Link",
		},
		{
			name:     "english unavailable",
			language: DefaultLanguage,
			key:      "error.unavailable",
			contains: "song.link couldn't respond",
		},
		{
			name:     "german malformed",
			language: GermanLanguage,
			key:      "error.malformed",
			contains: "unerwartete Antwort",
		},
		{
			name:     "unknown key falls back to key",
			language: DefaultLanguage,
			key:      "does.not.exist",
			contains: "does.not.exist",
		},
		{
			name:     "unknown language falls back to english",
			language: "fr",
			key:      "error.unavailable",
			contains: "song.link couldn't respond",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := NewLocalizer(tt.language)
			got := l.T(tt.key, tt.args...)
			if !strings.Contains(got, tt.contains) {
				t.Errorf("T(%q) = %q, want it to contain %q", tt.key, got, tt.contains)
			}
		})
	}
}

func TestLocalizer_AllKeysTranslated(t *testing.T) {
	// Every English key should have a German counterpart so no mixed-language
	// replies slip through.
	for key := range englishMessages {
		if _, ok := germanMessages[key]; !ok {
			t.Errorf("key %q missing from German messages", key)
		}
	}
	for key := range germanMessages {
		if _, ok := englishMessages[key]; !ok {
			t.Errorf("key %q missing from English messages", key)
		}
	}
}

func TestGetSupportedLanguages(t *testing.T) {
	languages := GetSupportedLanguages()
	if len(languages) != 2 {
		t.Fatalf("GetSupportedLanguages() = %v, want 2 entries", languages)
	}
	if languages[0] != DefaultLanguage {
		t.Errorf("first language = %q, want %q", languages[0], DefaultLanguage)
	}
}
