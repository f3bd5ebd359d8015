// Package ingest assembles user-provided startup material into the
// single context block the council engine consumes.
package ingest

import (
	"fmt"
	"strings"
)

const (
	// maxSourceChars bounds a single extracted source.
	maxSourceChars = 120_000
	// maxContextChars bounds the combined context block.
	maxContextChars = 140_000
)

// InputError marks a user-correctable input problem. Transport layers
// map it to a 4xx response instead of a server fault.
type InputError struct {
	msg   string
	cause error
}

func (e *InputError) Error() string { return e.msg }

func (e *InputError) Unwrap() error { return e.cause }

func newInputError(msg string, cause error) *InputError {
	return &InputError{msg: msg, cause: cause}
}

func inputErrorf(format string, args ...interface{}) error {
	return &InputError{msg: fmt.Sprintf(format, args...)}
}

// clipText cuts text at maxChars runes and marks the cut.
func clipText(text string, maxChars int) string {
	runes := []rune(text)
	if len(runes) <= maxChars {
		return text
	}
	return fmt.Sprintf("%s\n\n[TRUNCATED: input exceeded %d characters]", string(runes[:maxChars]), maxChars)
}

// normalizeWhitespace collapses whitespace runs into single spaces.
func normalizeWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// BuildStartupContext combines the available sources into one block in
// deck, webpage, notes order. At least one source must carry content.
func BuildStartupContext(deckText, webpageText, notes string) (string, error) {
	var sections []string

	if deckText != "" {
		sections = append(sections, "## Deck Text\n"+strings.TrimSpace(deckText))
	}
	if webpageText != "" {
		sections = append(sections, "## Webpage Text\n"+strings.TrimSpace(webpageText))
	}
	if strings.TrimSpace(notes) != "" {
		sections = append(sections, "## Additional Notes\n"+strings.TrimSpace(notes))
	}

	if len(sections) == 0 {
		return "", inputErrorf("No startup input provided")
	}

	return clipText(strings.Join(sections, "\n\n"), maxContextChars), nil
}
