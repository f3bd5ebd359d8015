package council

import (
	"fmt"
	"strings"
)

// systemPrompt frames every model call in the pipeline
const systemPrompt = `You are VC Council Agent, a rigorous venture investment committee simulator.

Core rules:
- Treat all personas as simulation lenses, not real people giving current advice.
- Never fabricate external facts. If unknown, write "Unknown" and list assumptions.
- Keep output decision-oriented with explicit tradeoffs.
- Separate facts from assumptions where relevant.
- Stay consistent with requested output format.
`

// debateBody is the stage-3 output skeleton, shared between the dedicated
// debate prompt and the combined fast-mode prompt
const debateBody = `## Stage 3 - IC Debate (5 Rounds)
For each round include exactly 3 speakers and have them rebut prior points:
- Bull:
- Bear:
- Wild Card:

Round objectives:
1) Initial theses and assumptions
2) Evidence clash (metrics, market logic, precedent)
3) Assumption stress test
4) Convergence and conditions
5) Final votes with explicit conditions

After round 5 include:

### Role Final Votes
- Bull: Invest / Pass / Dig Deeper - one-line rationale
- Bear: Invest / Pass / Dig Deeper - one-line rationale
- Wild Card: Invest / Pass / Dig Deeper - one-line rationale`

// finalReportBody is the stage-4 output skeleton. It opens with the exact
// heading splitStage34 anchors on.
const finalReportBody = stage4Heading + `
### Final Vote Summary
- Invest:
- Pass:
- Dig Deeper:

### Conviction
- Level: High / Medium / Low
- Why:

### Top 5 Risks and Mitigations
1. Risk - mitigation experiment
2. ...
3. ...
4. ...
5. ...

### Diligence Checklist (10)
1. ...
2. ...
3. ...
4. ...
5. ...
6. ...
7. ...
8. ...
9. ...
10. ...

### 30/90/180 Day Founder Plan
- 30 days:
- 90 days:
- 180 days:

### Executive Recommendation
- 1 concise paragraph with recommendation and explicit conditions.`

func languageInstruction(lang Language) string {
	if lang == LanguageKorean {
		return "Write the response in Korean. Keep proper nouns and framework names in English when needed (e.g., TAM/SAM/SOM, LTV/CAC)."
	}
	return "Write the response in English."
}

func stage1Prompt(startupContext, companyName string, lang Language) string {
	hint := "Unknown Startup"
	if companyName != "" {
		hint = strings.TrimSpace(companyName)
	}
	return fmt.Sprintf(`Analyze the startup input and produce Stage 1 output.

Company name hint: %s
Language rule: %s

Startup input:
%s

Output exactly in markdown with these sections:

## Stage 1 - Deal Memo
### Company Snapshot
- Problem:
- Solution:
- Customer:
- Business Model:
- Stage:

### Market View
- TAM:
- SAM:
- SOM:
- Notes on market dynamics:

### Traction
- Revenue / Growth:
- Product Usage / Retention:
- GTM Signals:

### Team
- Strengths:
- Gaps:

### Competition
- Key alternatives:
- Differentiation:

### Debate Triggers
- Provide 5 to 8 sharp questions that should cause disagreement inside an IC.

### Missing Data
- List missing information required before an investment decision.
`, hint, languageInstruction(lang), startupContext)
}

func stage2FastPrompt(stage1 string, roster []Persona, lang Language) string {
	return fmt.Sprintf(`Using Stage 1 output below, run Stage 2 independent evaluation for all %d personas.

Stage 1 input:
%s

Persona roster (must use all exactly once):
%s

Language rule: %s

Output exactly in markdown:

## Stage 2 - Independent Evaluations
For each persona, include:
- Verdict: Invest / Pass / Dig Deeper
- Strengths: 2 bullets
- Concerns: 2 bullets
- Killer Diligence Question: 1 bullet
- Confidence (0-100): 1 number

Then include:

### Vote Tally
- Invest:
- Pass:
- Dig Deeper:

%s
- Bull: [Name] - one-line reason
- Bear: [Name] - one-line reason
- Wild Card: [Name] - one-line reason

Keep each persona section concise and concrete.
`, len(roster), stage1, RosterBlock(roster), languageInstruction(lang), panelHeading)
}

func stage2DeepPrompt(stage1 string, p Persona, lang Language) string {
	return fmt.Sprintf(`You are evaluating as one persona only.

Persona: %[1]s %[2]s - %[3]s
Persona philosophy: %[4]s
Language rule: %[5]s

Stage 1 input:
%[6]s

Output markdown only with this exact structure:

### %[1]s %[2]s - %[3]s
- Verdict: Invest / Pass / Dig Deeper
- Strengths:
  - ...
  - ...
- Concerns:
  - ...
  - ...
- Killer Diligence Question:
  - ...
- Confidence (0-100): [number]
`, p.Emoji, p.Name, p.Tagline, p.Philosophy, languageInstruction(lang), stage1)
}

func panelSelectionPrompt(stage1, stage2 string, lang Language) string {
	return fmt.Sprintf(`Given Stage 1 and Stage 2 outputs, pick the best debate panel.

Stage 1:
%s

Stage 2:
%s

Language rule: %s

Return only markdown:

%s
- Bull: [Name] - one-line reason
- Bear: [Name] - one-line reason
- Wild Card: [Name] - one-line reason
`, stage1, stage2, languageInstruction(lang), panelHeading)
}

func stage3Prompt(stage1, stage2, panel string, lang Language) string {
	return fmt.Sprintf(`Run Stage 3 IC debate using the material below.

Stage 1:
%s

Stage 2:
%s

Panel selection:
%s

Language rule: %s

Output markdown:

%s
`, stage1, stage2, panel, languageInstruction(lang), debateBody)
}

func stage4Prompt(stage1, stage2, stage3 string, lang Language) string {
	return fmt.Sprintf(`Produce Stage 4 final report.

Inputs:
Stage 1:
%s

Stage 2:
%s

Stage 3:
%s

Language rule: %s

Output markdown with this exact order:

%s
`, stage1, stage2, stage3, languageInstruction(lang), finalReportBody)
}

func stage34FastPrompt(stage1, stage2, panel string, lang Language) string {
	return fmt.Sprintf(`Produce both Stage 3 debate and Stage 4 final recommendation in one response.

Inputs:
Stage 1:
%s

Stage 2:
%s

Panel selection:
%s

Language rule: %s

Output markdown in this exact order:

%s

%s
`, stage1, stage2, panel, languageInstruction(lang), debateBody, finalReportBody)
}
