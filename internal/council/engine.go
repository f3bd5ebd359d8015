package council

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/wonny/council/backend/internal/external/llm"
	"github.com/wonny/council/backend/pkg/logger"
)

// Mode selects the call plan for a run.
type Mode string

const (
	ModeFast Mode = "fast"
	ModeDeep Mode = "deep"
)

// normalizeMode folds arbitrary input onto a supported mode. Anything
// that is not "deep" runs fast.
func normalizeMode(m Mode) Mode {
	if strings.ToLower(strings.TrimSpace(string(m))) == string(ModeDeep) {
		return ModeDeep
	}
	return ModeFast
}

// Stage names reported to the progress sink.
const (
	ProgressSetup  = "setup"
	ProgressStage1 = "stage_1"
	ProgressStage2 = "stage_2"
	ProgressStage3 = "stage_3"
	ProgressStage4 = "stage_4"
	ProgressDone   = "done"
)

// ProgressFunc receives stage notices during a run. The engine
// serializes calls, so a sink needs no locking of its own.
type ProgressFunc func(stage, message string)

const (
	DefaultModel     = "gpt-4.1-mini"
	DefaultMaxTokens = 4000
)

// RunConfig carries the per-run knobs.
type RunConfig struct {
	Model       string   `json:"model"`
	Temperature float32  `json:"temperature"`
	MaxTokens   int      `json:"max_tokens"`
	Mode        Mode     `json:"mode"`
	Language    Language `json:"language"`
}

// DefaultRunConfig returns the canonical fast-mode configuration.
func DefaultRunConfig() RunConfig {
	return RunConfig{
		Model:       DefaultModel,
		Temperature: 0.3,
		MaxTokens:   DefaultMaxTokens,
		Mode:        ModeFast,
		Language:    LanguageAuto,
	}
}

func (c RunConfig) withDefaults() RunConfig {
	if strings.TrimSpace(c.Model) == "" {
		c.Model = DefaultModel
	}
	if c.MaxTokens <= 0 {
		c.MaxTokens = DefaultMaxTokens
	}
	c.Mode = normalizeMode(c.Mode)
	return c
}

// Result holds the per-stage markdown of one completed run.
type Result struct {
	Stage1 string `json:"stage_1"`
	Stage2 string `json:"stage_2"`
	Stage3 string `json:"stage_3"`
	Stage4 string `json:"stage_4"`
}

// FullMarkdown joins the four stages under the council report heading.
func (r *Result) FullMarkdown() string {
	return fmt.Sprintf("# AI VC Council Result\n\n%s\n\n%s\n\n%s\n\n%s",
		r.Stage1, r.Stage2, r.Stage3, r.Stage4)
}

// CompletionClient is the single-call surface the engine needs from the
// model gateway.
type CompletionClient interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string, cfg llm.ChatConfig) (string, error)
}

// RunRequest is one analysis job for Run.
type RunRequest struct {
	StartupContext string
	CompanyName    string
	Config         RunConfig
	Progress       ProgressFunc
}

// Engine drives the four-stage council pipeline against a completion
// gateway.
type Engine struct {
	client CompletionClient
	roster []Persona
	log    *logger.Logger
}

func NewEngine(client CompletionClient, log *logger.Logger) *Engine {
	return &Engine{client: client, roster: Roster, log: log}
}

// Run executes the pipeline for one startup.
// ⭐ SSOT: 스테이지 실행 순서와 진행 알림 메시지는 여기서만 정의된다
//
// Deep mode: stage 1 -> per-persona fan-out -> panel selection -> stage 3
// debate -> stage 4 report. Fast mode: stage 1 -> single stage 2 call ->
// combined stage 3+4 call, with panel and stage 4 fallbacks.
func (e *Engine) Run(ctx context.Context, req RunRequest) (*Result, error) {
	if strings.TrimSpace(req.StartupContext) == "" {
		return nil, fmt.Errorf("startup context is empty")
	}

	cfg := req.Config.withDefaults()
	lang := ResolveOutputLanguage(cfg.Language, req.StartupContext)

	notify := newNotifier(req.Progress)
	notify(ProgressSetup, "Output language: "+lang.Label())

	e.log.WithFields(map[string]interface{}{
		"mode":     string(cfg.Mode),
		"model":    cfg.Model,
		"language": string(lang),
		"personas": len(e.roster),
	}).Info("🏛️ VC Council 분석 시작")

	var (
		res *Result
		err error
	)
	if cfg.Mode == ModeDeep {
		res, err = e.runDeep(ctx, req, cfg, lang, notify)
	} else {
		res, err = e.runFast(ctx, req, cfg, lang, notify)
	}
	if err != nil {
		return nil, err
	}

	notify(ProgressDone, "Council run completed")
	e.log.Info("✅ VC Council 분석 완료")
	return res, nil
}

func (e *Engine) runDeep(ctx context.Context, req RunRequest, cfg RunConfig, lang Language, notify ProgressFunc) (*Result, error) {
	plan := newDeepPlan(cfg.MaxTokens, len(e.roster))

	notify(ProgressStage1, "Running Stage 1 deal memo extraction")
	stage1, err := e.client.Complete(ctx, systemPrompt,
		stage1Prompt(trimForPrompt(req.StartupContext, plan.stage1Input), req.CompanyName, lang),
		buildChatConfig(cfg, plan.stage1))
	if err != nil {
		return nil, fmt.Errorf("stage 1: %w", err)
	}
	e.log.WithField("chars", len(stage1)).Debug("Stage 1 완료")

	notify(ProgressStage2, "Running Stage 2 independent evaluations")
	sections, err := e.runPersonaFanout(ctx, stage1, cfg, lang, plan, notify)
	if err != nil {
		return nil, fmt.Errorf("stage 2: %w", err)
	}
	stage2Core := strings.Join(append([]string{"## Stage 2 - Independent Evaluations"}, sections...), "\n\n")

	panelBlock, err := e.client.Complete(ctx, systemPrompt,
		panelSelectionPrompt(trimForPrompt(stage1, defaultInputChars), trimForPrompt(stage2Core, defaultInputChars), lang),
		buildChatConfig(cfg, plan.panel))
	if err != nil {
		return nil, fmt.Errorf("panel selection: %w", err)
	}
	stage2 := stage2Core + "\n\n" + panelBlock

	notify(ProgressStage3, "Running Stage 3 debate")
	stage3, err := e.client.Complete(ctx, systemPrompt,
		stage3Prompt(
			trimForPrompt(stage1, defaultInputChars),
			trimForPrompt(stage2, defaultInputChars),
			trimForPrompt(panelBlock, panelInputChars),
			lang),
		buildChatConfig(cfg, plan.debate))
	if err != nil {
		return nil, fmt.Errorf("stage 3: %w", err)
	}

	notify(ProgressStage4, "Running Stage 4 final IC output")
	stage4, err := e.client.Complete(ctx, systemPrompt,
		stage4Prompt(
			trimForPrompt(stage1, finalStage1InputChars),
			trimForPrompt(stage2, finalStage2InputChars),
			trimForPrompt(stage3, finalStage3InputChars),
			lang),
		buildChatConfig(cfg, plan.final))
	if err != nil {
		return nil, fmt.Errorf("stage 4: %w", err)
	}

	return &Result{Stage1: stage1, Stage2: stage2, Stage3: stage3, Stage4: stage4}, nil
}

// runPersonaFanout collects one evaluation per roster persona with at
// most plan.workers calls in flight, and reassembles the sections in
// roster order. Any failed persona fails the whole fan-out.
func (e *Engine) runPersonaFanout(ctx context.Context, stage1 string, cfg RunConfig, lang Language, plan deepPlan, notify ProgressFunc) ([]string, error) {
	for _, p := range e.roster {
		notify(ProgressStage2, "Queued "+p.Name)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(plan.workers)

	sections := make([]string, len(e.roster))
	for i, p := range e.roster {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			out, err := e.client.Complete(gctx, systemPrompt,
				stage2DeepPrompt(trimForPrompt(stage1, defaultInputChars), p, lang),
				buildChatConfig(cfg, plan.persona))
			if err != nil {
				return fmt.Errorf("persona %s: %w", p.Name, err)
			}
			sections[i] = out
			notify(ProgressStage2, "Completed "+p.Name)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return sections, nil
}

func (e *Engine) runFast(ctx context.Context, req RunRequest, cfg RunConfig, lang Language, notify ProgressFunc) (*Result, error) {
	plan := newFastPlan(cfg.MaxTokens)

	notify(ProgressStage1, "Running Stage 1 deal memo extraction")
	stage1, err := e.client.Complete(ctx, systemPrompt,
		stage1Prompt(trimForPrompt(req.StartupContext, plan.stage1Input), req.CompanyName, lang),
		buildChatConfig(cfg, plan.stage1))
	if err != nil {
		return nil, fmt.Errorf("stage 1: %w", err)
	}
	e.log.WithField("chars", len(stage1)).Debug("Stage 1 완료")

	notify(ProgressStage2, "Running Stage 2 independent evaluations")
	stage2, err := e.client.Complete(ctx, systemPrompt,
		stage2FastPrompt(trimForPrompt(stage1, defaultInputChars), e.roster, lang),
		buildChatConfig(cfg, plan.stage2))
	if err != nil {
		return nil, fmt.Errorf("stage 2: %w", err)
	}

	// The combined stage-2 call is asked to end with a panel block. If
	// the model dropped it, one dedicated call recovers the panel; the
	// recovered block feeds stage 3+4 but is not appended to stage 2.
	panelBlock, ok := extractPanelBlock(stage2)
	if !ok {
		panelBlock, err = e.client.Complete(ctx, systemPrompt,
			panelSelectionPrompt(trimForPrompt(stage1, defaultInputChars), trimForPrompt(stage2, defaultInputChars), lang),
			buildChatConfig(cfg, plan.panel))
		if err != nil {
			return nil, fmt.Errorf("panel selection: %w", err)
		}
	}

	notify(ProgressStage3, "Running combined Stage 3+4 synthesis")
	combined, err := e.client.Complete(ctx, systemPrompt,
		stage34FastPrompt(
			trimForPrompt(stage1, defaultInputChars),
			trimForPrompt(stage2, defaultInputChars),
			trimForPrompt(panelBlock, panelInputChars),
			lang),
		buildChatConfig(cfg, plan.stage34))
	if err != nil {
		return nil, fmt.Errorf("stage 3+4: %w", err)
	}
	stage3, stage4 := splitStage34(combined)

	if stage4 == "" {
		notify(ProgressStage4, "Stage 4 missing, running fallback generation")
		stage4, err = e.client.Complete(ctx, systemPrompt,
			stage4Prompt(
				trimForPrompt(stage1, finalStage1InputChars),
				trimForPrompt(stage2, finalStage2InputChars),
				trimForPrompt(stage3, finalStage3InputChars),
				lang),
			buildChatConfig(cfg, plan.stage4Fallback))
		if err != nil {
			return nil, fmt.Errorf("stage 4 fallback: %w", err)
		}
	}

	return &Result{Stage1: stage1, Stage2: stage2, Stage3: stage3, Stage4: stage4}, nil
}

func buildChatConfig(cfg RunConfig, maxTokens int) llm.ChatConfig {
	return llm.ChatConfig{
		Model:       cfg.Model,
		Temperature: cfg.Temperature,
		MaxTokens:   maxTokens,
	}
}

// newNotifier wraps the sink so stage notices are serialized and a nil
// sink is a no-op.
func newNotifier(sink ProgressFunc) ProgressFunc {
	if sink == nil {
		return func(string, string) {}
	}
	var mu sync.Mutex
	return func(stage, message string) {
		mu.Lock()
		defer mu.Unlock()
		sink(stage, message)
	}
}
