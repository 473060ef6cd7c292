package server

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/sandeep066/aceInterview/internal/domain"
	"github.com/sandeep066/aceInterview/internal/interview"
	"github.com/sandeep066/aceInterview/internal/performance"
	"github.com/sandeep066/aceInterview/internal/report"
	"github.com/sandeep066/aceInterview/internal/room"
	"github.com/sandeep066/aceInterview/internal/voice"
)

// SystemInfo describes the running application for /api/system/info.
type SystemInfo struct {
	Name          string
	Version       string
	Environment   string
	LLMProvider   string
	LLMModel      string
	VoiceProvider string
}

// Deps are the services behind the HTTP API. Voice and Rooms may be nil
// when LiveKit is not configured.
type Deps struct {
	Questions   *interview.Orchestrator
	Performance *performance.Orchestrator
	Voice       *voice.Service
	Rooms       room.Provisioner
	Info        SystemInfo
}

// API holds the HTTP handlers.
type API struct {
	deps   Deps
	logger *slog.Logger
	now    func() time.Time
}

func NewAPI(deps Deps, logger *slog.Logger) *API {
	return &API{deps: deps, logger: logger, now: time.Now}
}

// Register mounts every route under /api.
func (a *API) Register(r chi.Router) {
	r.Route("/api", func(r chi.Router) {
		r.Get("/health", a.handleHealth)

		r.Post("/generate-question", a.handleGenerateQuestion)
		r.Post("/generate-followup", a.handleGenerateFollowup)
		r.Post("/analyze-response", a.handleAnalyzeResponse)
		r.Post("/generate-analytics", a.handleGenerateAnalytics)
		r.Post("/analytics/export", a.handleExportAnalytics)
		r.Get("/analytics/{reportKey}", a.handleCachedAnalytics)
		r.Delete("/sessions/{sessionID}", a.handleClearSession)

		r.Route("/voice-interview", func(r chi.Router) {
			r.Post("/start", a.handleVoiceStart)
			r.Post("/end", a.handleVoiceEnd)
			r.Get("/sessions", a.handleVoiceSessions)
			r.Get("/{sessionID}/status", a.handleVoiceStatus)
			r.Post("/{sessionID}/exchange", a.handleVoiceExchange)
		})

		r.Get("/livekit/config", a.handleLiveKitConfig)
		r.Get("/system/info", a.handleSystemInfo)
	})
}

func (a *API) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type generateQuestionRequest struct {
	Config            domain.InterviewConfig     `json:"config"`
	PreviousQuestions []string                   `json:"previous_questions"`
	PreviousResponses []domain.InterviewResponse `json:"previous_responses"`
	QuestionNumber    *int                       `json:"question_number"`
}

func (a *API) handleGenerateQuestion(w http.ResponseWriter, r *http.Request) {
	var req generateQuestionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := req.Config.Validate(); err != nil {
		writeError(w, r, err)
		return
	}
	number := 1
	if req.QuestionNumber != nil {
		number = *req.QuestionNumber
	}
	if number < 1 {
		writeError(w, r, domain.ErrInvalidRequest("question_number must be at least 1").
			WithCode(domain.ErrorCodeOutOfRange).
			WithParam("question_number"))
		return
	}

	AddLogField(r.Context(), "topic", req.Config.Topic)
	question, src := a.deps.Questions.GenerateQuestion(r.Context(), req.Config, req.PreviousQuestions, req.PreviousResponses, number)
	SetResultSource(r.Context(), src)
	writeJSON(w, http.StatusOK, map[string]string{"question": question})
}

type exchangeRequest struct {
	Question string                 `json:"question"`
	Response string                 `json:"response"`
	Config   domain.InterviewConfig `json:"config"`
}

func (req *exchangeRequest) validate() error {
	if strings.TrimSpace(req.Question) == "" {
		return domain.ErrInvalidRequest("question is required").
			WithCode(domain.ErrorCodeMissingField).
			WithParam("question")
	}
	return req.Config.Validate()
}

func (a *API) handleGenerateFollowup(w http.ResponseWriter, r *http.Request) {
	var req exchangeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, r, err)
		return
	}

	followup, src := a.deps.Questions.GenerateFollowup(r.Context(), req.Question, req.Response, req.Config)
	SetResultSource(r.Context(), src)
	writeJSON(w, http.StatusOK, map[string]string{"followUp": followup})
}

func (a *API) handleAnalyzeResponse(w http.ResponseWriter, r *http.Request) {
	var req exchangeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, r, err)
		return
	}

	analysis, src := a.deps.Performance.AnalyzeSingleResponse(r.Context(), req.Question, req.Response, req.Config)
	SetResultSource(r.Context(), src)
	writeJSON(w, http.StatusOK, map[string]any{"analysis": analysis})
}

type analyticsRequest struct {
	Responses []domain.InterviewResponse `json:"responses"`
	Config    domain.InterviewConfig     `json:"config"`
}

func (a *API) analytics(w http.ResponseWriter, r *http.Request) (domain.PerformanceAnalytics, analyticsRequest, bool) {
	var req analyticsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return domain.PerformanceAnalytics{}, req, false
	}
	if err := req.Config.Validate(); err != nil {
		writeError(w, r, err)
		return domain.PerformanceAnalytics{}, req, false
	}

	AddLogField(r.Context(), "responses", fmt.Sprint(len(req.Responses)))
	result, src := a.deps.Performance.GenerateComprehensiveAnalytics(r.Context(), req.Responses, req.Config)
	SetResultSource(r.Context(), src)
	return result, req, true
}

func (a *API) handleGenerateAnalytics(w http.ResponseWriter, r *http.Request) {
	result, _, ok := a.analytics(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"analytics": result})
}

func (a *API) handleExportAnalytics(w http.ResponseWriter, r *http.Request) {
	result, req, ok := a.analytics(w, r)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := report.WriteXLSX(&buf, result); err != nil {
		writeError(w, r, fmt.Errorf("failed to export analytics: %w", err))
		return
	}

	name := "interview-analytics"
	if len(req.Responses) > 0 {
		name = performance.ReportKey(req.Config, req.Responses[0].Timestamp)
	}
	w.Header().Set("Content-Type", report.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name+".xlsx"))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func (a *API) handleCachedAnalytics(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "reportKey")
	result, ok, err := a.deps.Performance.CachedAnalytics(r.Context(), key)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if !ok {
		writeError(w, r, domain.ErrNotFound(fmt.Sprintf("no analytics cached for %q", key)).
			WithCode(domain.ErrorCodeAnalyticsMissing))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"analytics": result})
}

func (a *API) handleClearSession(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	n, err := a.deps.Questions.ClearSession(r.Context(), sessionID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"cleared": n})
}

func (a *API) voiceService(w http.ResponseWriter, r *http.Request) (*voice.Service, bool) {
	if a.deps.Voice == nil || !a.deps.Voice.Configured() {
		writeError(w, r, domain.ErrUnavailable("LiveKit is not configured").
			WithCode(domain.ErrorCodeLiveKitDisabled))
		return nil, false
	}
	return a.deps.Voice, true
}

func (a *API) handleVoiceStart(w http.ResponseWriter, r *http.Request) {
	svc, ok := a.voiceService(w, r)
	if !ok {
		return
	}
	var req voice.StartRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	result, err := svc.Start(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	AddLogField(r.Context(), "session", result.SessionID)
	writeJSON(w, http.StatusOK, result)
}

// endRequest accepts the room name at the top level or inside config.
type endRequest struct {
	RoomName string `json:"room_name"`
	Config   struct {
		RoomName string `json:"room_name"`
	} `json:"config"`
}

func (a *API) handleVoiceEnd(w http.ResponseWriter, r *http.Request) {
	svc, ok := a.voiceService(w, r)
	if !ok {
		return
	}
	var req endRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	roomName := req.Config.RoomName
	if roomName == "" {
		roomName = req.RoomName
	}

	if err := svc.End(r.Context(), roomName); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ended"})
}

func (a *API) handleVoiceStatus(w http.ResponseWriter, r *http.Request) {
	svc, ok := a.voiceService(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, svc.Status(chi.URLParam(r, "sessionID")))
}

func (a *API) handleVoiceSessions(w http.ResponseWriter, r *http.Request) {
	svc, ok := a.voiceService(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"sessions": svc.Active()})
}

func (a *API) handleVoiceExchange(w http.ResponseWriter, r *http.Request) {
	svc, ok := a.voiceService(w, r)
	if !ok {
		return
	}
	var req struct {
		Question string `json:"question"`
		Response string `json:"response"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	sessionID := chi.URLParam(r, "sessionID")
	if err := svc.RecordExchange(sessionID, req.Question, req.Response); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, svc.Status(sessionID))
}

type liveKitConfigResponse struct {
	Configured bool    `json:"configured"`
	WSURL      *string `json:"wsUrl"`
	Timestamp  string  `json:"timestamp"`
}

func (a *API) handleLiveKitConfig(w http.ResponseWriter, r *http.Request) {
	resp := liveKitConfigResponse{Timestamp: a.now().UTC().Format(time.RFC3339)}
	if a.deps.Rooms != nil && a.deps.Rooms.Configured() {
		url := a.deps.Rooms.WebSocketURL()
		resp.Configured = true
		resp.WSURL = &url
	}
	writeJSON(w, http.StatusOK, resp)
}

func (a *API) handleSystemInfo(w http.ResponseWriter, r *http.Request) {
	info := a.deps.Info
	liveKit := a.deps.Rooms != nil && a.deps.Rooms.Configured()

	resp := map[string]any{
		"application": map[string]string{
			"name":        info.Name,
			"version":     info.Version,
			"environment": info.Environment,
		},
		"services": map[string]bool{
			"orchestrator":             a.deps.Questions != nil,
			"performance_orchestrator": a.deps.Performance != nil,
			"livekit":                  liveKit,
			"voice_service":            a.deps.Voice != nil && liveKit,
		},
		"providers": map[string]string{
			"llm_provider":   info.LLMProvider,
			"llm_model":      info.LLMModel,
			"voice_provider": info.VoiceProvider,
		},
	}

	if a.deps.Questions != nil {
		stats, err := a.deps.Questions.Stats(r.Context())
		if err != nil {
			a.logger.WarnContext(r.Context(), "failed to read session stats", slog.String("error", err.Error()))
		} else {
			resp["sessions"] = stats
		}
	}
	writeJSON(w, http.StatusOK, resp)
}
