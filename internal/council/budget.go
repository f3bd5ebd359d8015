package council

// Per-call token caps and per-prompt input character caps for both run
// modes. The effective cap for a call is min(requested, hard cap).
const (
	deepStage1MaxTokens  = 3200
	deepPersonaMaxTokens = 1200
	deepPanelMaxTokens   = 800
	deepDebateMaxTokens  = 2200
	deepFinalMaxTokens   = 2200

	fastStage1MaxTokens         = 1800
	fastStage2MaxTokens         = 1400
	fastStage34MaxTokens        = 2000
	fastStage4FallbackMaxTokens = 1400

	deepStage1InputChars = 60_000
	fastStage1InputChars = 28_000
	defaultInputChars    = 24_000
	panelInputChars      = 4_000

	finalStage1InputChars = 16_000
	finalStage2InputChars = 20_000
	finalStage3InputChars = 16_000

	personaWorkers = 4
)

// deepPlan fixes the token budget for every call a deep run makes.
type deepPlan struct {
	stage1      int
	persona     int
	panel       int
	debate      int
	final       int
	stage1Input int
	workers     int
}

func newDeepPlan(requested, rosterSize int) deepPlan {
	return deepPlan{
		stage1:      capTokens(requested, deepStage1MaxTokens),
		persona:     capTokens(requested, deepPersonaMaxTokens),
		panel:       capTokens(requested, deepPanelMaxTokens),
		debate:      capTokens(requested, deepDebateMaxTokens),
		final:       capTokens(requested, deepFinalMaxTokens),
		stage1Input: deepStage1InputChars,
		workers:     min(personaWorkers, rosterSize),
	}
}

// fastPlan fixes the token budget for every call a fast run makes.
// The panel fallback call shares the stage-2 cap.
type fastPlan struct {
	stage1         int
	stage2         int
	panel          int
	stage34        int
	stage4Fallback int
	stage1Input    int
}

func newFastPlan(requested int) fastPlan {
	return fastPlan{
		stage1:         capTokens(requested, fastStage1MaxTokens),
		stage2:         capTokens(requested, fastStage2MaxTokens),
		panel:          capTokens(requested, fastStage2MaxTokens),
		stage34:        capTokens(requested, fastStage34MaxTokens),
		stage4Fallback: capTokens(requested, fastStage4FallbackMaxTokens),
		stage1Input:    fastStage1InputChars,
	}
}

func capTokens(requested, hard int) int {
	if requested < hard {
		return requested
	}
	return hard
}
