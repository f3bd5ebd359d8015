package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/wonny/council/backend/pkg/config"
	"github.com/wonny/council/backend/pkg/database"
	"github.com/wonny/council/backend/pkg/logger"
)

// statusCmd represents the status command
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "서비스 상태 점검",
	Long: `설정, LLM 게이트웨이, 리포트 아카이브 상태를 점검합니다.

점검 항목:
- 설정 로드 및 검증
- OPENAI_API_KEY 및 게이트웨이 연결
- 리포트 아카이브 연결 (DATABASE_URL 설정 시)

Example:
  go run ./cmd/council status
  go run ./cmd/council status --skip-llm`,
	RunE: runStatus,
}

var (
	// Status flags
	statusSkipLLM bool
)

func init() {
	rootCmd.AddCommand(statusCmd)

	// Flags
	statusCmd.Flags().BoolVar(&statusSkipLLM, "skip-llm", false, "LLM 게이트웨이 점검 생략")
}

func runStatus(cmd *cobra.Command, args []string) error {
	fmt.Println("=== AI VC Council Status ===")
	fmt.Println()

	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("❌ Config: %v\n", err)
		return err
	}

	fmt.Printf("✅ Config: env=%s port=%s\n", cfg.Env, cfg.Port)
	fmt.Printf("   Model: %s (allowed: %s)\n", cfg.Council.DefaultModel, strings.Join(cfg.Council.AllowedModels, ", "))
	fmt.Printf("   Mode: %s | Language: %s\n", cfg.Council.DefaultMode, cfg.Council.DefaultLanguage)

	log := logger.New(cfg)

	// 2. Check LLM gateway
	if statusSkipLLM {
		fmt.Println("⏭️  LLM gateway: check skipped")
	} else {
		llmClient, err := newLLMClient(cfg, log)
		if err != nil {
			fmt.Printf("❌ LLM gateway: %v\n", err)
			return err
		}

		if err := llmClient.Ping(cmd.Context()); err != nil {
			fmt.Printf("❌ LLM gateway: %v\n", err)
			return err
		}
		fmt.Println("✅ LLM gateway: credential verified")
	}

	// 3. Check report archive
	if !cfg.ArchiveEnabled() {
		fmt.Println("ℹ️  Report archive: disabled (DATABASE_URL not set)")
		return nil
	}

	db, err := database.New(cfg)
	if err != nil {
		fmt.Printf("❌ Report archive: %v\n", err)
		return err
	}
	defer db.Close()

	health, err := db.HealthCheck(cmd.Context())
	if err != nil {
		fmt.Printf("❌ Report archive: %v\n", err)
		return err
	}

	fmt.Printf("✅ Report archive: healthy (%v, conns %d/%d)\n",
		health.ResponseTime, health.TotalConns, health.MaxConns)
	return nil
}
