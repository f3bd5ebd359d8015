package commands

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/wonny/council/backend/internal/council"
	"github.com/wonny/council/backend/internal/ingest"
	"github.com/wonny/council/backend/pkg/config"
	"github.com/wonny/council/backend/pkg/httputil"
	"github.com/wonny/council/backend/pkg/logger"
)

// analyzeCmd represents the analyze command
var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "카운슬 분석 실행",
	Long: `스타트업 자료를 16인 카운슬에 올려 투자 심사 리포트를 생성합니다.

입력 (최소 하나 필요):
  --deck-file    덱 텍스트 파일
  --url          스타트업 웹페이지 URL
  --notes-file   추가 노트 파일

Flags:
  --company      스타트업 이름
  --model        모델 (기본: COUNCIL_DEFAULT_MODEL)
  --mode         실행 모드 (fast|deep)
  --language     출력 언어 (auto|en|ko)
  --temperature  샘플링 온도 (기본: 0.3)
  --max-tokens   스테이지별 최대 토큰 (기본: 4000)
  --out          리포트 저장 경로

Example:
  go run ./cmd/council analyze --company "Acme" --deck-file deck.txt
  go run ./cmd/council analyze --url https://acme.io --mode deep
  go run ./cmd/council analyze --deck-file deck.txt --language ko --out acme.md`,
	RunE: runAnalyze,
}

var (
	// Analyze flags
	analyzeCompany   string
	analyzeDeckFile  string
	analyzeURL       string
	analyzeNotesFile string
	analyzeModel     string
	analyzeMode      string
	analyzeLanguage  string
	analyzeTemp      float32
	analyzeMaxTokens int
	analyzeOut       string
)

func init() {
	rootCmd.AddCommand(analyzeCmd)

	// Flags
	analyzeCmd.Flags().StringVar(&analyzeCompany, "company", "", "스타트업 이름")
	analyzeCmd.Flags().StringVar(&analyzeDeckFile, "deck-file", "", "덱 텍스트 파일 경로")
	analyzeCmd.Flags().StringVar(&analyzeURL, "url", "", "스타트업 웹페이지 URL")
	analyzeCmd.Flags().StringVar(&analyzeNotesFile, "notes-file", "", "추가 노트 파일 경로")
	analyzeCmd.Flags().StringVar(&analyzeModel, "model", "", "모델 (기본: COUNCIL_DEFAULT_MODEL)")
	analyzeCmd.Flags().StringVar(&analyzeMode, "mode", "", "실행 모드 (fast|deep)")
	analyzeCmd.Flags().StringVar(&analyzeLanguage, "language", "", "출력 언어 (auto|en|ko)")
	analyzeCmd.Flags().Float32Var(&analyzeTemp, "temperature", 0.3, "샘플링 온도")
	analyzeCmd.Flags().IntVar(&analyzeMaxTokens, "max-tokens", 4000, "스테이지별 최대 토큰")
	analyzeCmd.Flags().StringVar(&analyzeOut, "out", "vc_council_report.md", "리포트 저장 경로")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	fmt.Println("=== AI VC Council Analyze ===")

	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// 2. Initialize logger
	log := logger.New(cfg)

	// 3. Create LLM client
	llmClient, err := newLLMClient(cfg, log)
	if err != nil {
		return fmt.Errorf("create llm client: %w", err)
	}

	// 4. Read input files
	deckText, err := readOptionalFile(analyzeDeckFile)
	if err != nil {
		return err
	}
	notes, err := readOptionalFile(analyzeNotesFile)
	if err != nil {
		return err
	}

	// 5. Fetch webpage text
	var webpageText string
	if strings.TrimSpace(analyzeURL) != "" {
		fetcher := ingest.NewFetcher(httputil.New(cfg, log), log)
		webpageText, err = fetcher.FetchText(cmd.Context(), analyzeURL)
		if err != nil {
			return fmt.Errorf("fetch webpage: %w", err)
		}
	}

	// 6. Build startup context
	startupContext, err := ingest.BuildStartupContext(deckText, webpageText, notes)
	if err != nil {
		return fmt.Errorf("build startup context: %w", err)
	}

	// Resolve run settings against config defaults
	mode := strings.ToLower(strings.TrimSpace(analyzeMode))
	if mode == "" {
		mode = cfg.Council.DefaultMode
	}
	switch mode {
	case "fast", "deep":
	default:
		return fmt.Errorf("mode must be one of: deep, fast")
	}

	language := strings.ToLower(strings.TrimSpace(analyzeLanguage))
	if language == "" {
		language = cfg.Council.DefaultLanguage
	}
	switch language {
	case "auto", "en", "ko":
	default:
		return fmt.Errorf("language must be one of: auto, en, ko")
	}

	model := strings.TrimSpace(analyzeModel)
	if model == "" {
		model = cfg.Council.DefaultModel
	}

	fmt.Printf("\n🏛️  Council mode: %s | model: %s | language: %s\n\n", mode, model, language)

	// 7. Run the council
	engine := council.NewEngine(llmClient, log)
	result, err := engine.Run(cmd.Context(), council.RunRequest{
		StartupContext: startupContext,
		CompanyName:    strings.TrimSpace(analyzeCompany),
		Config: council.RunConfig{
			Model:       model,
			Temperature: analyzeTemp,
			MaxTokens:   analyzeMaxTokens,
			Mode:        council.Mode(mode),
			Language:    council.Language(language),
		},
		Progress: func(stage, message string) {
			fmt.Printf("[%s] %s\n", stage, message)
		},
	})
	if err != nil {
		return fmt.Errorf("council run failed: %w", err)
	}

	// 8. Write the report
	if err := os.WriteFile(analyzeOut, []byte(result.FullMarkdown()), 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}

	fmt.Printf("\n✅ Saved: %s\n", analyzeOut)
	return nil
}

// readOptionalFile returns the file contents, or empty when no path is given
func readOptionalFile(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return "", nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}

	return string(data), nil
}
