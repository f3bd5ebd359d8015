package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	configFile string
	env        string
	verbose    bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "council",
	Short: "AI VC Council - 16인 가상 투자심의위원회",
	Long: `AI VC Council Unified CLI

전설적인 투자자 16인의 페르소나로 스타트업을 심사하는 가상 IC.
딜 메모 추출부터 토론, 최종 투자 판단까지 4단계 파이프라인.

Usage:
  go run ./cmd/council [command]

Examples:
  go run ./cmd/council api
  go run ./cmd/council analyze --company "Acme" --deck-file deck.txt
  go run ./cmd/council personas
  go run ./cmd/council status`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default is .env)")
	rootCmd.PersistentFlags().StringVar(&env, "env", "development", "environment (development|staging|production)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
