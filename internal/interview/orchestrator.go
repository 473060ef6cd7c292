// Package interview sequences topic analysis and question generation into
// the question flow of one interview session.
package interview

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sandeep066/aceInterview/internal/agent"
	"github.com/sandeep066/aceInterview/internal/domain"
	"github.com/sandeep066/aceInterview/internal/session"
)

// Namespace prefixes every session key written by the orchestrator.
const Namespace = "interview"

const (
	fieldTopicAnalysis = "topic_analysis"
	fieldState         = "state"
)

// FollowupFallback is returned when a follow-up cannot be composed.
const FollowupFallback = "Can you elaborate on that point a bit more?"

var errNoTopicAnalysis = errors.New("topic analysis unavailable")

// State is the per-session record of the question flow.
type State struct {
	LastQuestion   string `json:"last_question"`
	QuestionNumber int    `json:"question_number"`
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) {
		o.logger = logger
	}
}

// Orchestrator produces interview questions. Topic analysis is computed once
// per session key and reused until the session is cleared or evicted.
type Orchestrator struct {
	topic    *agent.TopicAgent
	question *agent.QuestionAgent
	store    session.Store
	logger   *slog.Logger
}

// NewOrchestrator creates a question orchestrator.
func NewOrchestrator(topic *agent.TopicAgent, question *agent.QuestionAgent, store session.Store, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		topic:    topic,
		question: question,
		store:    store,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// GenerateQuestion returns the next question for the session described by
// cfg. It always returns non-empty text.
func (o *Orchestrator) GenerateQuestion(ctx context.Context, cfg domain.InterviewConfig, previousQuestions []string, previousResponses []domain.InterviewResponse, questionNumber int) (string, agent.Source) {
	if questionNumber < 1 {
		questionNumber = 1
	}
	sessionID := cfg.SessionKey()
	logger := o.logger.With(slog.String("session", sessionID), slog.Int("question_number", questionNumber))

	analysis, err := o.topicAnalysis(ctx, cfg)
	if err != nil {
		logger.WarnContext(ctx, "question composition failed", slog.String("error", err.Error()))
		return FallbackQuestion(cfg, questionNumber), agent.SourceFallback
	}

	if previousQuestions == nil {
		previousQuestions = []string{}
	}
	result, source := o.question.Generate(ctx, agent.QuestionInput{
		Spec:     BuildSpec(analysis, cfg, previousQuestions, questionNumber),
		Analysis: analysis,
		Config:   cfg,
	})
	if strings.TrimSpace(result.Question) == "" {
		logger.WarnContext(ctx, "question generation returned blank text")
		return FallbackQuestion(cfg, questionNumber), agent.SourceFallback
	}

	state := State{LastQuestion: result.Question, QuestionNumber: questionNumber}
	if err := o.store.Set(ctx, session.Key(Namespace, sessionID, fieldState), state); err != nil {
		logger.WarnContext(ctx, "failed to record question state", slog.String("error", err.Error()))
	}

	logger.DebugContext(ctx, "question generated",
		slog.String("source", string(source)),
		slog.Int("previous_responses", len(previousResponses)),
	)
	return result.Question, source
}

// GenerateFollowup asks a clarifying question about the candidate's answer.
func (o *Orchestrator) GenerateFollowup(ctx context.Context, question, response string, cfg domain.InterviewConfig) (string, agent.Source) {
	analysis, err := o.topicAnalysis(ctx, cfg)
	if err != nil {
		o.logger.WarnContext(ctx, "follow-up composition failed", slog.String("error", err.Error()))
		return FollowupFallback, agent.SourceFallback
	}

	result, source := o.question.Generate(ctx, agent.QuestionInput{
		Spec:     FollowupSpec(question, response),
		Analysis: analysis,
		Config:   cfg,
	})
	if strings.TrimSpace(result.Question) == "" {
		return FollowupFallback, agent.SourceFallback
	}
	return result.Question, source
}

// State returns the recorded question state for cfg's session.
func (o *Orchestrator) State(ctx context.Context, cfg domain.InterviewConfig) (State, bool, error) {
	var st State
	ok, err := o.store.Get(ctx, session.Key(Namespace, cfg.SessionKey(), fieldState), &st)
	return st, ok, err
}

// ClearSession forgets everything cached for sessionID.
func (o *Orchestrator) ClearSession(ctx context.Context, sessionID string) (int, error) {
	n, err := o.store.DeletePrefix(ctx, session.Prefix(Namespace, sessionID))
	if err != nil {
		return 0, fmt.Errorf("failed to clear session %s: %w", sessionID, err)
	}
	o.logger.InfoContext(ctx, "session cleared", slog.String("session", sessionID), slog.Int("entries", n))
	return n, nil
}

// Stats reports session memory usage.
func (o *Orchestrator) Stats(ctx context.Context) (session.Stats, error) {
	return o.store.Stats(ctx)
}

// topicAnalysis returns the cached analysis for cfg or computes and caches
// it. Concurrent misses may both call the agent; the last write wins.
func (o *Orchestrator) topicAnalysis(ctx context.Context, cfg domain.InterviewConfig) (domain.TopicAnalysis, error) {
	key := session.Key(Namespace, cfg.SessionKey(), fieldTopicAnalysis)

	var cached domain.TopicAnalysis
	ok, err := o.store.Get(ctx, key, &cached)
	if err != nil {
		return domain.TopicAnalysis{}, fmt.Errorf("failed to read topic analysis: %w", err)
	}
	if ok {
		return cached, nil
	}

	analysis, source := o.topic.Analyze(ctx, cfg)
	if len(analysis.MainConcepts) == 0 && len(analysis.FocusAreas) == 0 {
		return domain.TopicAnalysis{}, errNoTopicAnalysis
	}
	if err := o.store.Set(ctx, key, analysis); err != nil {
		o.logger.WarnContext(ctx, "failed to cache topic analysis", slog.String("error", err.Error()))
	}
	o.logger.DebugContext(ctx, "topic analysis computed", slog.String("source", string(source)))
	return analysis, nil
}
