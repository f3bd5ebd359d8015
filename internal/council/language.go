package council

import (
	"strings"
	"unicode"
)

// Language is the output-language preference or resolution for a run
type Language string

const (
	LanguageAuto    Language = "auto"
	LanguageEnglish Language = "en"
	LanguageKorean  Language = "ko"
)

const (
	languageSampleChars = 80_000
	hangulMinCount      = 8
	hangulMinRatio      = 0.01
)

// Label returns the English name used in prompts and progress messages
func (l Language) Label() string {
	if l == LanguageKorean {
		return "Korean"
	}
	return "English"
}

// ResolveOutputLanguage fixes the output language for a whole run. An
// explicit en/ko preference wins; anything else falls back to hangul
// detection over the startup context.
func ResolveOutputLanguage(pref Language, sample string) Language {
	switch normalized := Language(strings.ToLower(strings.TrimSpace(string(pref)))); normalized {
	case LanguageEnglish, LanguageKorean:
		return normalized
	}
	return detectLanguage(sample)
}

// detectLanguage guesses ko/en from hangul density in the leading sample.
// Korean needs at least hangulMinCount syllables and a 1% share of the
// non-whitespace characters, so a stray Korean word in an English deck
// does not flip the whole report.
func detectLanguage(text string) Language {
	sample := headRunes(text, languageSampleChars)

	hangul := 0
	nonSpace := 0
	for _, r := range sample {
		if !unicode.IsSpace(r) {
			nonSpace++
		}
		if r >= 0xAC00 && r <= 0xD7A3 { // Hangul syllable block
			hangul++
		}
	}

	if nonSpace == 0 || hangul < hangulMinCount {
		return LanguageEnglish
	}
	if float64(hangul)/float64(nonSpace) >= hangulMinRatio {
		return LanguageKorean
	}
	return LanguageEnglish
}
