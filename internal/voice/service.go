// Package voice tracks voice interview sessions: it provisions a room,
// dispatches the voice agent, and accumulates the transcript until the
// interview ends.
package voice

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/sandeep066/aceInterview/internal/domain"
	"github.com/sandeep066/aceInterview/internal/room"
)

// Status is the lifecycle state of a voice session.
type Status string

const (
	StatusWaiting   Status = "waiting"
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
)

const (
	// TotalQuestions is the nominal question count used for progress.
	TotalQuestions = 5

	ProviderGoogle = "google"
	ProviderOpenAI = "openai"

	welcomeAgent    = "Welcome to your voice interview. The AI agent will greet you shortly."
	welcomeNoAgent  = "Welcome to your voice interview. Please wait for the first question."
	maxParticipant  = 128
	defaultProvider = ProviderGoogle

	// DefaultRetention is how long an ended session stays queryable.
	DefaultRetention = 15 * time.Minute
	// DefaultMaxAge bounds sessions that were never ended.
	DefaultMaxAge = 6 * time.Hour

	sweepInterval = time.Minute
)

// StartRequest starts a voice interview.
type StartRequest struct {
	Config          domain.InterviewConfig `json:"config"`
	ParticipantName string                 `json:"participant_name"`
	// EnableAIAgent defaults to true when omitted.
	EnableAIAgent *bool  `json:"enable_ai_agent,omitempty"`
	AgentProvider string `json:"agent_provider,omitempty"`
}

func (r StartRequest) agentEnabled() bool {
	return r.EnableAIAgent == nil || *r.EnableAIAgent
}

// Validate checks the participant, config and provider.
func (r *StartRequest) Validate() error {
	name := strings.TrimSpace(r.ParticipantName)
	if name == "" {
		return domain.ErrInvalidRequest("participant_name is required").
			WithCode(domain.ErrorCodeMissingField).
			WithParam("participant_name")
	}
	if len(name) > maxParticipant {
		return domain.ErrInvalidRequest("participant_name is too long").
			WithCode(domain.ErrorCodeOutOfRange).
			WithParam("participant_name")
	}
	r.ParticipantName = name

	if r.AgentProvider == "" {
		r.AgentProvider = defaultProvider
	}
	if r.AgentProvider != ProviderGoogle && r.AgentProvider != ProviderOpenAI {
		return domain.ErrInvalidRequest("agent_provider must be openai or google").
			WithCode(domain.ErrorCodeUnknownEnum).
			WithParam("agent_provider")
	}
	return r.Config.Validate()
}

// StartResult is returned to the client that started the interview.
type StartResult struct {
	SessionID          string                 `json:"session_id"`
	RoomName           string                 `json:"room_name"`
	WSURL              string                 `json:"ws_url"`
	ParticipantToken   string                 `json:"participant_token"`
	FirstQuestion      string                 `json:"first_question"`
	Config             domain.InterviewConfig `json:"config"`
	AIAgentEnabled     bool                   `json:"ai_agent_enabled"`
	ConversationalMode bool                   `json:"conversational_mode"`
	AgentProvider      string                 `json:"agent_provider"`
	AgentDispatched    bool                   `json:"agent_dispatched"`
}

// Progress reports how far an interview has come.
type Progress struct {
	Current    int     `json:"current"`
	Total      int     `json:"total"`
	Percentage float64 `json:"percentage"`
}

func progressOf(current int) Progress {
	return Progress{
		Current:    current,
		Total:      TotalQuestions,
		Percentage: float64(current) / TotalQuestions * 100,
	}
}

// SessionStatus is the status of one session. Only Found is set when the
// session is unknown.
type SessionStatus struct {
	Found          bool     `json:"found"`
	SessionID      string   `json:"session_id,omitempty"`
	Status         Status   `json:"status,omitempty"`
	Progress       Progress `json:"progress"`
	Duration       int64    `json:"duration"` // seconds
	QuestionsAsked int      `json:"questions_asked"`
	ResponsesGiven int      `json:"responses_given"`
}

// Summary is a session as listed by Active.
type Summary struct {
	SessionID       string                 `json:"session_id"`
	ParticipantName string                 `json:"participant_name"`
	Status          Status                 `json:"status"`
	StartTime       time.Time              `json:"start_time"`
	Config          domain.InterviewConfig `json:"config"`
	Progress        Progress               `json:"progress"`
}

// SessionClearer drops cached question-flow state for a session key.
type SessionClearer interface {
	ClearSession(ctx context.Context, sessionID string) (int, error)
}

type session struct {
	id          string
	participant string
	config      domain.InterviewConfig
	status      Status
	started     time.Time
	ended       time.Time
	questions   []string
	responses   []string
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// WithRetention sets how long an ended session is kept for Status before
// Sweep removes it.
func WithRetention(d time.Duration) Option {
	return func(s *Service) {
		s.retention = d
	}
}

// WithMaxAge sets how long a session that is never ended is kept.
func WithMaxAge(d time.Duration) Option {
	return func(s *Service) {
		s.maxAge = d
	}
}

// Service owns the voice sessions of this process.
type Service struct {
	rooms     room.Provisioner
	sessions  SessionClearer
	logger    *slog.Logger
	now       func() time.Time
	retention time.Duration
	maxAge    time.Duration

	mu     sync.RWMutex
	active map[string]*session
}

// NewService creates a voice session service. sessions may be nil, in which
// case ending an interview leaves question caches to expire.
func NewService(rooms room.Provisioner, sessions SessionClearer, opts ...Option) *Service {
	s := &Service{
		rooms:     rooms,
		sessions:  sessions,
		logger:    slog.Default(),
		now:       time.Now,
		retention: DefaultRetention,
		maxAge:    DefaultMaxAge,
		active:    make(map[string]*session),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Configured reports whether rooms can be provisioned.
func (s *Service) Configured() bool {
	return s.rooms != nil && s.rooms.Configured()
}

// Start provisions a room for req and registers the session. A dispatch
// failure is reported through AgentDispatched rather than as an error.
func (s *Service) Start(ctx context.Context, req StartRequest) (*StartResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if !s.Configured() {
		return nil, domain.ErrUnavailable("LiveKit is not configured").
			WithCode(domain.ErrorCodeLiveKitDisabled)
	}

	r, err := s.rooms.CreateRoom(ctx, req.Config, req.ParticipantName)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to create room",
			slog.String("participant", req.ParticipantName),
			slog.String("error", err.Error()),
		)
		return nil, domain.ErrCollaborator("failed to start voice interview", err).
			WithCode(domain.ErrorCodeRoomFailed)
	}

	s.mu.Lock()
	s.active[r.Name] = &session{
		id:          r.Name,
		participant: req.ParticipantName,
		config:      req.Config,
		status:      StatusWaiting,
		started:     s.now(),
	}
	s.mu.Unlock()

	enabled := req.agentEnabled()
	result := &StartResult{
		SessionID:          r.Name,
		RoomName:           r.Name,
		WSURL:              r.WSURL,
		ParticipantToken:   r.ParticipantToken,
		FirstQuestion:      welcomeNoAgent,
		Config:             req.Config,
		AIAgentEnabled:     enabled,
		ConversationalMode: enabled,
		AgentProvider:      req.AgentProvider,
	}

	if enabled {
		result.FirstQuestion = welcomeAgent
		dc := room.NewDispatchContext(r, req.Config, req.AgentProvider)
		if err := s.rooms.DispatchAgent(ctx, r.Name, dc); err != nil {
			s.logger.WarnContext(ctx, "failed to dispatch voice agent",
				slog.String("room", r.Name),
				slog.String("error", err.Error()),
			)
		} else {
			result.AgentDispatched = true
		}
	}

	s.logger.InfoContext(ctx, "voice interview started",
		slog.String("session", r.Name),
		slog.Bool("ai_agent", enabled),
		slog.Bool("dispatched", result.AgentDispatched),
	)
	return result, nil
}

// End completes the session in roomName, deletes the room and clears the
// cached question-flow state for the interview config.
func (s *Service) End(ctx context.Context, roomName string) error {
	roomName = strings.TrimSpace(roomName)
	if roomName == "" {
		return domain.ErrInvalidRequest("room_name is required to end the agent session").
			WithCode(domain.ErrorCodeMissingField).
			WithParam("room_name")
	}

	var cfg *domain.InterviewConfig
	s.mu.Lock()
	if sess, ok := s.active[roomName]; ok {
		sess.status = StatusCompleted
		sess.ended = s.now()
		c := sess.config
		cfg = &c
	}
	s.mu.Unlock()

	if cfg != nil && s.sessions != nil {
		n, err := s.sessions.ClearSession(ctx, cfg.SessionKey())
		if err != nil {
			s.logger.WarnContext(ctx, "failed to clear question session",
				slog.String("session", roomName),
				slog.String("error", err.Error()),
			)
		} else {
			s.logger.DebugContext(ctx, "question session cleared", slog.Int("entries", n))
		}
	}

	if s.rooms == nil || !s.rooms.Configured() {
		return nil
	}
	if err := s.rooms.DeleteRoom(ctx, roomName); err != nil {
		return domain.ErrCollaborator("failed to end voice interview", err).
			WithCode(domain.ErrorCodeRoomFailed)
	}
	s.logger.InfoContext(ctx, "voice interview ended", slog.String("session", roomName))
	return nil
}

// RecordExchange appends a question and, when non-empty, its response to
// the session transcript and marks the session active.
func (s *Service) RecordExchange(sessionID, question, response string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.active[sessionID]
	if !ok {
		return domain.ErrNotFound("voice session not found").
			WithCode(domain.ErrorCodeSessionNotFound).
			WithParam("session_id")
	}
	if sess.status == StatusCompleted {
		return domain.ErrInvalidRequest("voice session has ended").
			WithParam("session_id")
	}
	if question != "" {
		sess.questions = append(sess.questions, question)
	}
	if response != "" {
		sess.responses = append(sess.responses, response)
	}
	sess.status = StatusActive
	return nil
}

// Status reports the state of sessionID.
func (s *Service) Status(sessionID string) SessionStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.active[sessionID]
	if !ok {
		return SessionStatus{Found: false}
	}

	end := sess.ended
	if end.IsZero() {
		end = s.now()
	}
	return SessionStatus{
		Found:          true,
		SessionID:      sess.id,
		Status:         sess.status,
		Progress:       progressOf(sess.current()),
		Duration:       int64(end.Sub(sess.started) / time.Second),
		QuestionsAsked: len(sess.questions),
		ResponsesGiven: len(sess.responses),
	}
}

// Sweep removes ended sessions older than the retention and sessions older
// than the max age. It returns the number removed.
func (s *Service) Sweep() int {
	now := s.now()
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for id, sess := range s.active {
		if sess.expired(now, s.retention, s.maxAge) {
			delete(s.active, id)
			n++
		}
	}
	return n
}

// StartSweeper runs Sweep every minute until ctx is cancelled.
func (s *Service) StartSweeper(ctx context.Context) {
	ticker := time.NewTicker(sweepInterval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n := s.Sweep(); n > 0 {
					s.logger.Debug("swept voice sessions", slog.Int("count", n))
				}
			}
		}
	}()
}

// Active lists the sessions that have not ended, oldest first.
func (s *Service) Active() []Summary {
	s.mu.RLock()
	out := make([]Summary, 0, len(s.active))
	for _, sess := range s.active {
		if sess.status == StatusCompleted {
			continue
		}
		out = append(out, Summary{
			SessionID:       sess.id,
			ParticipantName: sess.participant,
			Status:          sess.status,
			StartTime:       sess.started,
			Config:          sess.config,
			Progress:        progressOf(sess.current()),
		})
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].StartTime.Equal(out[j].StartTime) {
			return out[i].StartTime.Before(out[j].StartTime)
		}
		return out[i].SessionID < out[j].SessionID
	})
	return out
}

func (s *session) expired(now time.Time, retention, maxAge time.Duration) bool {
	if s.status == StatusCompleted && now.Sub(s.ended) > retention {
		return true
	}
	return now.Sub(s.started) > maxAge
}

// current is the index of the question being answered.
func (s *session) current() int {
	return min(len(s.responses), TotalQuestions)
}
