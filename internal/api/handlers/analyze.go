package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/wonny/council/backend/internal/council"
	"github.com/wonny/council/backend/internal/ingest"
	"github.com/wonny/council/backend/internal/report"
	"github.com/wonny/council/backend/pkg/config"
	"github.com/wonny/council/backend/pkg/logger"
)

// Request limits shared by the JSON and websocket entrypoints.
const (
	minRunTokens        = 1000
	maxRunTokens        = 8000
	defaultTemperature  = 0.3
	degradedModelPrefix = "gpt-5"
)

// AnalyzeHandler handles council analysis API endpoints
// ⭐ SSOT: 분석 API 핸들러는 이 구조체에서만
type AnalyzeHandler struct {
	engine  *council.Engine
	fetcher *ingest.Fetcher
	repo    *report.Repository // nil when the archive is disabled
	config  *config.Config
	logger  *logger.Logger
}

// NewAnalyzeHandler creates a new analyze handler
func NewAnalyzeHandler(
	engine *council.Engine,
	fetcher *ingest.Fetcher,
	repo *report.Repository,
	cfg *config.Config,
	log *logger.Logger,
) *AnalyzeHandler {
	return &AnalyzeHandler{
		engine:  engine,
		fetcher: fetcher,
		repo:    repo,
		config:  cfg,
		logger:  log,
	}
}

// AnalyzeRequest represents a council analysis request.
// Temperature and MaxTokens are pointers so an explicit zero can be told
// apart from an omitted field.
type AnalyzeRequest struct {
	CompanyName string   `json:"company_name"`
	WebsiteURL  string   `json:"website_url"`
	DeckText    string   `json:"deck_text"`
	Notes       string   `json:"notes"`
	Mode        string   `json:"mode"`
	Language    string   `json:"language"`
	Model       string   `json:"model"`
	Temperature *float32 `json:"temperature"`
	MaxTokens   *int     `json:"max_tokens"`
}

// AnalyzeResponse represents a completed council analysis
type AnalyzeResponse struct {
	OK             bool          `json:"ok"`
	Mode           string        `json:"mode"`
	Language       string        `json:"language"`
	RequestedModel string        `json:"requested_model"`
	Model          string        `json:"model"`
	Note           string        `json:"note"`
	ReportID       string        `json:"report_id,omitempty"`
	Result         ResultPayload `json:"result"`
}

// ResultPayload carries the four stage outputs plus the joined report
type ResultPayload struct {
	Stage1       string `json:"stage_1"`
	Stage2       string `json:"stage_2"`
	Stage3       string `json:"stage_3"`
	Stage4       string `json:"stage_4"`
	FullMarkdown string `json:"full_markdown"`
}

// requestError is a rejected analyze request with its HTTP status
type requestError struct {
	Status  int
	Message string
}

// runSettings holds the validated, normalized knobs for one run
type runSettings struct {
	Mode           string
	Language       string
	RequestedModel string
	Model          string
	Note           string
	Temperature    float32
	MaxTokens      int
}

// Analyze runs a full council analysis
// POST /api/analyze
func (h *AnalyzeHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	var req AnalyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	settings, reqErr := h.resolveSettings(&req)
	if reqErr != nil {
		respondError(w, reqErr.Status, reqErr.Message)
		return
	}

	h.logger.WithFields(map[string]interface{}{
		"mode":     settings.Mode,
		"model":    settings.Model,
		"language": settings.Language,
	}).Info("Council analysis triggered")

	resp, err := h.runCouncil(r.Context(), &req, settings, nil)
	if err != nil {
		h.respondRunError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, resp)
}

// resolveSettings validates the request and fills defaults from config
func (h *AnalyzeHandler) resolveSettings(req *AnalyzeRequest) (*runSettings, *requestError) {
	mode := strings.ToLower(strings.TrimSpace(req.Mode))
	if mode == "" {
		mode = h.config.Council.DefaultMode
	}
	if mode != string(council.ModeFast) && mode != string(council.ModeDeep) {
		return nil, &requestError{http.StatusBadRequest, "mode must be one of: deep, fast"}
	}

	language := strings.ToLower(strings.TrimSpace(req.Language))
	if language == "" {
		language = h.config.Council.DefaultLanguage
	}
	switch language {
	case string(council.LanguageAuto), string(council.LanguageEnglish), string(council.LanguageKorean):
	default:
		return nil, &requestError{http.StatusBadRequest, "language must be one of: auto, en, ko"}
	}

	model := strings.TrimSpace(req.Model)
	if model == "" {
		model = h.config.Council.DefaultModel
	}
	requested := model
	note := ""
	if !h.modelAllowed(model) {
		if !strings.HasPrefix(model, degradedModelPrefix) {
			return nil, &requestError{
				http.StatusBadRequest,
				"model is not allowed. Allowed models: " + h.allowedModelList(),
			}
		}
		// Frontier-model requests degrade to the default instead of failing.
		model = h.config.Council.DefaultModel
		note = fmt.Sprintf("Model '%s' is not enabled for this endpoint. Auto-switched to %s.", requested, model)
	}

	maxTokens := council.DefaultMaxTokens
	if req.MaxTokens != nil {
		maxTokens = *req.MaxTokens
	}
	if maxTokens < minRunTokens || maxTokens > maxRunTokens {
		return nil, &requestError{http.StatusBadRequest, "max_tokens must be between 1000 and 8000"}
	}

	var temperature float32 = defaultTemperature
	if req.Temperature != nil {
		temperature = *req.Temperature
	}
	if temperature < 0 || temperature > 1 {
		return nil, &requestError{http.StatusBadRequest, "temperature must be between 0 and 1"}
	}

	if max := h.config.Council.MaxDeckBytes; len(req.DeckText) > max {
		return nil, &requestError{
			http.StatusRequestEntityTooLarge,
			fmt.Sprintf("deck_text exceeds %d bytes. Trim the deck text or share a webpage URL instead.", max),
		}
	}

	return &runSettings{
		Mode:           mode,
		Language:       language,
		RequestedModel: requested,
		Model:          model,
		Note:           note,
		Temperature:    temperature,
		MaxTokens:      maxTokens,
	}, nil
}

// runCouncil assembles the startup context, runs the engine, and archives
// the result when the archive is configured
func (h *AnalyzeHandler) runCouncil(ctx context.Context, req *AnalyzeRequest, settings *runSettings, progress council.ProgressFunc) (*AnalyzeResponse, error) {
	webpageText := ""
	if u := strings.TrimSpace(req.WebsiteURL); u != "" {
		fetched, err := h.fetcher.FetchText(ctx, u)
		if err != nil {
			return nil, err
		}
		webpageText = fetched
	}

	startupContext, err := ingest.BuildStartupContext(req.DeckText, webpageText, req.Notes)
	if err != nil {
		return nil, err
	}

	companyName := strings.TrimSpace(req.CompanyName)
	result, err := h.engine.Run(ctx, council.RunRequest{
		StartupContext: startupContext,
		CompanyName:    companyName,
		Config: council.RunConfig{
			Model:       settings.Model,
			Temperature: settings.Temperature,
			MaxTokens:   settings.MaxTokens,
			Mode:        council.Mode(settings.Mode),
			Language:    council.Language(settings.Language),
		},
		Progress: progress,
	})
	if err != nil {
		return nil, err
	}

	resp := &AnalyzeResponse{
		OK:             true,
		Mode:           settings.Mode,
		Language:       settings.Language,
		RequestedModel: settings.RequestedModel,
		Model:          settings.Model,
		Note:           settings.Note,
		Result: ResultPayload{
			Stage1:       result.Stage1,
			Stage2:       result.Stage2,
			Stage3:       result.Stage3,
			Stage4:       result.Stage4,
			FullMarkdown: result.FullMarkdown(),
		},
	}

	// Archiving is best effort. A finished run is returned even when the
	// archive write fails.
	if h.repo != nil {
		id, err := h.repo.Save(ctx, &report.Report{
			CompanyName: companyName,
			Mode:        settings.Mode,
			Language:    settings.Language,
			Model:       settings.Model,
			Stage1:      result.Stage1,
			Stage2:      result.Stage2,
			Stage3:      result.Stage3,
			Stage4:      result.Stage4,
		})
		if err != nil {
			h.logger.WithError(err).Warn("Failed to archive report")
		} else {
			resp.ReportID = id
		}
	}

	return resp, nil
}

// respondRunError maps run failures onto HTTP statuses: bad input is the
// caller's fault, everything else surfaces as an upstream failure
func (h *AnalyzeHandler) respondRunError(w http.ResponseWriter, err error) {
	var inputErr *ingest.InputError
	if errors.As(err, &inputErr) {
		respondError(w, http.StatusBadRequest, inputErr.Error())
		return
	}

	h.logger.WithError(err).Error("Council run failed")
	respondError(w, http.StatusBadGateway, "Council run failed: "+err.Error())
}

func (h *AnalyzeHandler) modelAllowed(model string) bool {
	for _, allowed := range h.config.Council.AllowedModels {
		if model == allowed {
			return true
		}
	}
	return false
}

func (h *AnalyzeHandler) allowedModelList() string {
	allowed := make([]string, len(h.config.Council.AllowedModels))
	copy(allowed, h.config.Council.AllowedModels)
	sort.Strings(allowed)
	return strings.Join(allowed, ", ")
}

// Helper functions

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{
		"error": message,
	})
}
