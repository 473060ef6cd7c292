// Package performance turns a finished interview into a performance report:
// every response is analyzed, then the analyses are synthesized into one
// PerformanceAnalytics.
package performance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/sandeep066/aceInterview/internal/agent"
	"github.com/sandeep066/aceInterview/internal/domain"
	"github.com/sandeep066/aceInterview/internal/session"
)

// Namespace prefixes every cached report key.
const Namespace = "analytics"

const fieldReport = "report"

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) {
		o.logger = logger
	}
}

// WithConcurrency sets how many responses are analyzed at once. Values
// below 2 keep analysis sequential.
func WithConcurrency(n int) Option {
	return func(o *Orchestrator) {
		o.concurrency = max(1, n)
	}
}

// Orchestrator produces performance reports and caches them per interview.
type Orchestrator struct {
	response    *agent.ResponseAgent
	overall     *agent.OverallAgent
	store       session.Store
	logger      *slog.Logger
	concurrency int
}

// NewOrchestrator creates a performance orchestrator.
func NewOrchestrator(response *agent.ResponseAgent, overall *agent.OverallAgent, store session.Store, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		response:    response,
		overall:     overall,
		store:       store,
		logger:      slog.Default(),
		concurrency: 1,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// AnalyzeSingleResponse analyzes one answer outside of a full report.
func (o *Orchestrator) AnalyzeSingleResponse(ctx context.Context, question, response string, cfg domain.InterviewConfig) (domain.ResponseAnalysisResult, agent.Source) {
	result, source := o.response.Analyze(ctx, agent.ResponseInput{
		Question:       question,
		Response:       response,
		Config:         cfg,
		QuestionNumber: 1,
	})
	if err := usableAnalysis(result); err != nil {
		o.logger.WarnContext(ctx, "response analysis unusable, using local heuristic", slog.String("error", err.Error()))
		return LocalResponseAnalysis(response, cfg), agent.SourceFallback
	}
	return result, source
}

// GenerateComprehensiveAnalytics analyzes every response and synthesizes
// the report. An empty response list yields domain.DefaultAnalytics.
func (o *Orchestrator) GenerateComprehensiveAnalytics(ctx context.Context, responses []domain.InterviewResponse, cfg domain.InterviewConfig) (domain.PerformanceAnalytics, agent.Source) {
	if len(responses) == 0 {
		return domain.DefaultAnalytics(), agent.SourceFallback
	}

	key := ReportKey(cfg, responses[0].Timestamp)
	logger := o.logger.With(slog.String("session", key), slog.Int("responses", len(responses)))

	analyses := o.analyzeAll(ctx, responses, cfg, logger)

	report, source := o.overall.Analyze(ctx, agent.OverallInput{
		Analyses: analyses,
		Config:   cfg,
		Session:  domain.NewSessionMetadata(responses, cfg),
	})
	if err := usableReport(report, len(analyses)); err != nil {
		logger.WarnContext(ctx, "overall analysis unusable, using local aggregate", slog.String("error", err.Error()))
		report, source = LocalAggregate(analyses, cfg), agent.SourceFallback
	}
	report.Metadata.TotalResponses = len(responses)
	if source == agent.SourceModel {
		report.Metadata.Fallback = false
		if report.Metadata.AnalysisMethod == "" {
			report.Metadata.AnalysisMethod = "agentic"
		}
	}

	if err := o.store.Set(ctx, session.Key(Namespace, key, fieldReport), report); err != nil {
		logger.WarnContext(ctx, "failed to cache analytics", slog.String("error", err.Error()))
	}
	logger.InfoContext(ctx, "analytics generated",
		slog.Int("overall_score", report.OverallScore),
		slog.String("source", string(source)),
	)
	return report, source
}

// CachedAnalytics returns the report cached under key, as produced by
// ReportKey.
func (o *Orchestrator) CachedAnalytics(ctx context.Context, key string) (domain.PerformanceAnalytics, bool, error) {
	var report domain.PerformanceAnalytics
	ok, err := o.store.Get(ctx, session.Key(Namespace, key, fieldReport), &report)
	if err != nil {
		return domain.PerformanceAnalytics{}, false, fmt.Errorf("failed to read cached analytics: %w", err)
	}
	return report, ok, nil
}

// usableAnalysis accepts a result that is in range and carries feedback for
// the candidate.
func usableAnalysis(result domain.ResponseAnalysisResult) error {
	if err := result.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(result.Feedback) == "" {
		return errors.New("feedback is empty")
	}
	return nil
}

// usableReport accepts a report that is in range, has a summary and reviews
// every response exactly once.
func usableReport(report domain.PerformanceAnalytics, responses int) error {
	if err := report.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(report.ExecutiveSummary) == "" {
		return errors.New("executive summary is empty")
	}
	if len(report.QuestionReviews) != responses {
		return fmt.Errorf("%d question reviews for %d responses", len(report.QuestionReviews), responses)
	}
	return nil
}

// ReportKey is the cache key of the report for an interview whose first
// response was at firstTimestamp.
func ReportKey(cfg domain.InterviewConfig, firstTimestamp int64) string {
	return cfg.AnalyticsKey(firstTimestamp)
}

// analyzeAll analyzes responses in order. With concurrency above one the
// calls run in parallel but results keep their input positions.
func (o *Orchestrator) analyzeAll(ctx context.Context, responses []domain.InterviewResponse, cfg domain.InterviewConfig, logger *slog.Logger) []domain.AnalyzedResponse {
	analyses := make([]domain.AnalyzedResponse, len(responses))

	analyze := func(i int) {
		r := responses[i]
		result, source := o.response.Analyze(ctx, agent.ResponseInput{
			Question:       r.Question,
			Response:       r.Response,
			Config:         cfg,
			QuestionNumber: i + 1,
		})
		if err := usableAnalysis(result); err != nil {
			logger.WarnContext(ctx, "response analysis unusable, using local heuristic",
				slog.Int("position", i+1), slog.String("error", err.Error()))
			result, source = LocalResponseAnalysis(r.Response, cfg), agent.SourceFallback
		}
		analyses[i] = domain.AnalyzedResponse{
			QuestionID: r.QuestionID,
			Question:   r.Question,
			Response:   r.Response,
			Timestamp:  r.Timestamp,
			Analysis:   result,
			Fallback:   source.IsFallback(),
		}
	}

	if o.concurrency <= 1 {
		for i := range responses {
			analyze(i)
		}
		return analyses
	}

	var g errgroup.Group
	g.SetLimit(o.concurrency)
	for i := range responses {
		g.Go(func() error {
			analyze(i)
			return nil
		})
	}
	_ = g.Wait()
	return analyses
}
