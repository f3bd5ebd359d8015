package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wonny/council/backend/internal/council"
)

// personasCmd represents the personas command
var personasCmd = &cobra.Command{
	Use:   "personas",
	Short: "페르소나 로스터 조회",
	Long: `카운슬에 참여하는 16인의 투자자 페르소나를 발언 순서대로 출력합니다.

Example:
  go run ./cmd/council personas`,
	RunE: runPersonas,
}

func init() {
	rootCmd.AddCommand(personasCmd)
}

func runPersonas(cmd *cobra.Command, args []string) error {
	fmt.Println("=== AI VC Council Personas ===")
	fmt.Println()

	for i, p := range council.Roster {
		fmt.Printf("%2d. %s %s\n", i+1, p.Emoji, p.Name)
		fmt.Printf("    %s\n", p.Tagline)
	}

	fmt.Printf("\nTotal: %d personas\n", len(council.Roster))
	return nil
}
