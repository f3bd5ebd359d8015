package council

import (
	"fmt"
	"strings"
)

// Persona is one fixed investor lens on the committee
type Persona struct {
	Name       string `json:"name"`
	Emoji      string `json:"emoji"`
	Tagline    string `json:"tagline"`
	Philosophy string `json:"philosophy"`
}

// Roster is the fixed 16-member committee in speaking order.
// Order matters: stage-2 prompts and deep-mode assembly both follow it.
// ⭐ SSOT: 위원회 구성은 여기서만 정의
var Roster = []Persona{
	{
		Name:       "Peter Thiel",
		Emoji:      "🟣",
		Tagline:    "Zero to One",
		Philosophy: "Contrarian thesis, monopoly outcomes, and non-consensus secrets.",
	},
	{
		Name:       "Marc Andreessen",
		Emoji:      "🔵",
		Tagline:    "Software Leverage",
		Philosophy: "Software-platform expansion that rewrites industry structure.",
	},
	{
		Name:       "Bill Gurley",
		Emoji:      "🩷",
		Tagline:    "Unit Economics",
		Philosophy: "LTV/CAC rigor, marketplace dynamics, and valuation discipline.",
	},
	{
		Name:       "Elad Gil",
		Emoji:      "🟤",
		Tagline:    "Execution at Scale",
		Philosophy: "Market timing and operational execution under scaling constraints.",
	},
	{
		Name:       "Fred Wilson",
		Emoji:      "🟢",
		Tagline:    "Network Effects",
		Philosophy: "Community and compounding network defensibility.",
	},
	{
		Name:       "Arjun Sethi",
		Emoji:      "⚫",
		Tagline:    "Data Signals",
		Philosophy: "Retention cohorts and quantitative PMF proof over narrative.",
	},
	{
		Name:       "Reid Hoffman",
		Emoji:      "🔷",
		Tagline:    "Blitzscaling",
		Philosophy: "Speed in uncertain winner-take-most markets.",
	},
	{
		Name:       "Sam Altman",
		Emoji:      "🌐",
		Tagline:    "Ambition Filter",
		Philosophy: "World-scale ambition with hard technical defensibility.",
	},
	{
		Name:       "Garry Tan",
		Emoji:      "🟡",
		Tagline:    "Founder Empathy",
		Philosophy: "Founder-market fit and anti-mimetic opportunity spotting.",
	},
	{
		Name:       "Naval Ravikant",
		Emoji:      "🧘",
		Tagline:    "Leverage and Compounding",
		Philosophy: "Specific knowledge plus scalable leverage and long compounding.",
	},
	{
		Name:       "Paul Graham",
		Emoji:      "🟠",
		Tagline:    "Founder Craft",
		Philosophy: "Founder quality and non-scalable tactics that unlock early PMF.",
	},
	{
		Name:       "Clayton Christensen",
		Emoji:      "📘",
		Tagline:    "Disruption Theory",
		Philosophy: "Jobs-to-be-done and disruptive entry from underserved segments.",
	},
	{
		Name:       "Elon Musk",
		Emoji:      "🚀",
		Tagline:    "First Principles",
		Philosophy: "Physics and engineering constraints before market storytelling.",
	},
	{
		Name:       "Thales Teixeira",
		Emoji:      "📊",
		Tagline:    "Customer Decoupling",
		Philosophy: "Customer value chain decoupling and capture points.",
	},
	{
		Name:       "Vinod Khosla",
		Emoji:      "🌿",
		Tagline:    "Risk Appetite",
		Philosophy: "Asymmetric high-variance bets on technical discontinuities.",
	},
	{
		Name:       "Masayoshi Son",
		Emoji:      "💴",
		Tagline:    "Scale Capital",
		Philosophy: "Aggressive capital deployment for global category dominance.",
	},
}

// RosterBlock renders the numbered roster list embedded in stage prompts
func RosterBlock(roster []Persona) string {
	lines := make([]string, 0, len(roster))
	for i, p := range roster {
		lines = append(lines, fmt.Sprintf("%d. %s %s — %s: %s", i+1, p.Emoji, p.Name, p.Tagline, p.Philosophy))
	}
	return strings.Join(lines, "\n")
}
