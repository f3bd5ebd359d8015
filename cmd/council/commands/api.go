package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/council/backend/internal/api"
	"github.com/wonny/council/backend/internal/api/handlers"
	"github.com/wonny/council/backend/internal/council"
	"github.com/wonny/council/backend/internal/external/llm"
	"github.com/wonny/council/backend/internal/ingest"
	"github.com/wonny/council/backend/internal/report"
	"github.com/wonny/council/backend/internal/scheduler"
	"github.com/wonny/council/backend/internal/scheduler/jobs"
	"github.com/wonny/council/backend/pkg/config"
	"github.com/wonny/council/backend/pkg/database"
	"github.com/wonny/council/backend/pkg/httputil"
	"github.com/wonny/council/backend/pkg/logger"
)

// apiCmd represents the api command
var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "API 서버 시작",
	Long: `REST API 서버를 시작합니다.

이 명령어는:
- HTTP API 서버 시작
- 카운슬 분석 엔드포인트 제공
- 리포트 아카이브 조회 제공 (DATABASE_URL 설정 시)

Endpoints:
  GET  /health               - Health check
  POST /api/analyze          - 카운슬 분석 실행
  GET  /api/analyze/stream   - 진행 상황 스트리밍 (websocket)
  GET  /api/personas         - 페르소나 로스터 조회
  GET  /api/reports          - 아카이브된 리포트 목록
  GET  /api/reports/{id}     - 리포트 상세 조회

Example:
  go run ./cmd/council api
  go run ./cmd/council api --port 8080`,
	RunE: runAPIServer,
}

var (
	apiPort string
)

func init() {
	rootCmd.AddCommand(apiCmd)

	// Flags
	apiCmd.Flags().StringVar(&apiPort, "port", "", "API 서버 포트 (기본: PORT 환경변수)")
}

func runAPIServer(cmd *cobra.Command, args []string) error {
	fmt.Println("=== AI VC Council API Server ===")

	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// Override port if flag is set
	if apiPort != "" {
		cfg.Port = apiPort
	}

	// 2. Initialize logger
	log := logger.New(cfg)

	log.WithFields(map[string]interface{}{
		"port": cfg.Port,
		"env":  cfg.Env,
	}).Info("Initializing API server")

	// 3. Create LLM client (fails fast on a missing API key)
	llmClient, err := newLLMClient(cfg, log)
	if err != nil {
		return fmt.Errorf("create llm client: %w", err)
	}

	// 4. Create council engine and webpage fetcher
	engine := council.NewEngine(llmClient, log)
	fetcher := ingest.NewFetcher(httputil.New(cfg, log), log)

	// 5. Connect the report archive when configured
	var repo *report.Repository
	if cfg.ArchiveEnabled() {
		db, err := database.New(cfg)
		if err != nil {
			return fmt.Errorf("connect to database: %w", err)
		}
		defer db.Close()

		repo = report.NewRepository(db.Pool)
		if err := repo.EnsureSchema(cmd.Context()); err != nil {
			return fmt.Errorf("ensure report schema: %w", err)
		}

		log.Info("Connected to report archive")

		// 6. Schedule the retention job
		sched := scheduler.New(log)
		retention := jobs.NewReportRetentionJob(repo, cfg.Council.ReportRetention, log)
		if err := sched.AddJob(retention); err != nil {
			return fmt.Errorf("schedule retention job: %w", err)
		}
		sched.Start()
		defer sched.Stop()
	} else {
		log.Info("Report archive disabled (DATABASE_URL not set)")
	}

	// 7. Create handlers
	analyzeHandler := handlers.NewAnalyzeHandler(engine, fetcher, repo, cfg, log)
	reportHandler := handlers.NewReportHandler(repo, log)

	// 8. Create router
	router := api.NewRouter(analyzeHandler, reportHandler, log)

	// 9. Create server
	server := api.New(cfg, log, router)

	// 10. Start server with graceful shutdown
	go func() {
		if err := server.Start(); err != nil {
			log.WithError(err).Fatal("Failed to start server")
		}
	}()

	log.Info("API server started successfully")
	fmt.Printf("\n✅ Server running on http://localhost:%s\n", cfg.Port)
	fmt.Println("\nAvailable endpoints:")
	fmt.Println("  GET  /health")
	fmt.Println("  POST /api/analyze")
	fmt.Println("  GET  /api/analyze/stream")
	fmt.Println("  GET  /api/personas")
	fmt.Println("  GET  /api/reports")
	fmt.Println("\nPress Ctrl+C to stop")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	log.Info("Server stopped")
	return nil
}

// newLLMClient builds the LLM gateway client from app config
func newLLMClient(cfg *config.Config, log *logger.Logger) (*llm.Client, error) {
	return llm.New(llm.Config{
		APIKey:            cfg.OpenAI.APIKey,
		BaseURL:           cfg.OpenAI.BaseURL,
		OrgID:             cfg.OpenAI.OrgID,
		RequestsPerSecond: cfg.OpenAI.RequestsPerSecond,
		Burst:             cfg.OpenAI.Burst,
		Timeout:           cfg.OpenAI.Timeout,
	}, log)
}
