package council

import (
	"strings"
	"unicode/utf8"
)

// Literal anchors shared between prompt skeletons and output parsing.
// The prompts bait these exact strings; parsing is anchor search, not
// semantic interpretation.
const (
	truncationMarker = "\n\n[TRUNCATED FOR TOKEN SAFETY]"
	panelHeading     = "### Suggested Debate Panel"
	stage4Heading    = "## Stage 4 - Final IC Output"
)

// trimForPrompt hard-truncates upstream text at maxChars and marks the
// cut. At or below the cap the text passes through untouched.
func trimForPrompt(text string, maxChars int) string {
	if utf8.RuneCountInString(text) <= maxChars {
		return text
	}
	return string([]rune(text)[:maxChars]) + truncationMarker
}

// headRunes returns the first n runes of s without any marker
func headRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

// extractPanelBlock pulls the Bull/Bear/Wild Card selection out of
// fast-mode stage-2 text: everything from the panel heading to the end.
// A miss is reported, not an error; the engine runs a fallback call.
func extractPanelBlock(stage2 string) (string, bool) {
	idx := strings.Index(stage2, panelHeading)
	if idx < 0 {
		return "", false
	}
	return strings.TrimSpace(stage2[idx:]), true
}

// splitStage34 divides a combined fast-mode response at the stage-4
// heading. Stage 3 is everything strictly before it, stage 4 starts at
// the heading. Without the heading the whole response counts as stage 3
// and stage 4 comes back empty, which triggers the fallback upstream.
func splitStage34(combined string) (stage3, stage4 string) {
	idx := strings.Index(combined, stage4Heading)
	if idx < 0 {
		return strings.TrimSpace(combined), ""
	}
	return strings.TrimSpace(combined[:idx]), strings.TrimSpace(combined[idx:])
}
