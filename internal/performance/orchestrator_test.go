package performance

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/sandeep066/aceInterview/internal/agent"
	"github.com/sandeep066/aceInterview/internal/domain"
	"github.com/sandeep066/aceInterview/internal/llm/llmtest"
	"github.com/sandeep066/aceInterview/internal/session"
)

const (
	responseMarker = "Response Analysis Agent"
	overallMarker  = "Overall Analysis Agent"
)

var reactJunior = domain.InterviewConfig{
	Topic:           "React",
	Style:           domain.StyleTechnical,
	ExperienceLevel: domain.ExperienceJunior,
	Duration:        30,
}

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newOrchestrator(model *llmtest.Model, store session.Store, opts ...Option) *Orchestrator {
	agentOpts := []agent.Option{agent.WithLogger(discard())}
	opts = append([]Option{WithLogger(discard())}, opts...)
	return NewOrchestrator(
		agent.NewResponseAgent(model, agentOpts...),
		agent.NewOverallAgent(model, agentOpts...),
		store,
		opts...,
	)
}

func analysisJSON(score int, strength string) string {
	return fmt.Sprintf(`{
		"response_analysis": {"clarity": %[1]d, "structure": %[1]d, "technical": %[1]d, "communication": %[1]d, "confidence": %[1]d, "relevance": %[1]d},
		"strengths": [%[2]q],
		"improvements": ["Be concise"],
		"feedback": "ok",
		"score": %[1]d,
		"key_insights": [],
		"reasoning": "model"
	}`, score, strength)
}

func threeResponses() []domain.InterviewResponse {
	d := int64(30000)
	return []domain.InterviewResponse{
		{QuestionID: "q1", Question: "What is JSX?", Response: "A syntax extension.", Timestamp: 1700000000000, Duration: &d},
		{QuestionID: "q2", Question: "What are hooks?", Response: "Functions for state.", Timestamp: 1700000060000},
		{QuestionID: "q3", Question: "Explain reconciliation.", Response: "Diffing virtual DOM trees.", Timestamp: 1700000120000, Duration: &d},
	}
}

func TestGenerateComprehensiveAnalyticsEmpty(t *testing.T) {
	model := llmtest.New()
	o := newOrchestrator(model, session.NewMemoryStore())

	got, src := o.GenerateComprehensiveAnalytics(context.Background(), nil, reactJunior)
	if got.OverallScore != 70 || got.PerformanceLevel != domain.LevelFair {
		t.Errorf("got %d/%q, want 70/fair", got.OverallScore, got.PerformanceLevel)
	}
	if src != agent.SourceFallback {
		t.Errorf("source = %v, want fallback", src)
	}
	if n := len(model.Calls()); n != 0 {
		t.Errorf("model calls = %d, want 0", n)
	}
}

func TestGenerateComprehensiveAnalyticsOverallFallback(t *testing.T) {
	model := llmtest.New().
		On(responseMarker, llmtest.Replies(analysisJSON(60, "Concise"), analysisJSON(70, "Accurate"), analysisJSON(90, "Concise"))).
		On(overallMarker, llmtest.Fail(errors.New("upstream 503")))
	store := session.NewMemoryStore()
	o := newOrchestrator(model, store)
	responses := threeResponses()

	got, src := o.GenerateComprehensiveAnalytics(context.Background(), responses, reactJunior)

	if src != agent.SourceFallback {
		t.Errorf("source = %v, want fallback", src)
	}
	if got.OverallScore != 73 {
		t.Errorf("OverallScore = %d, want 73", got.OverallScore)
	}
	if got.PerformanceLevel != domain.LevelGood {
		t.Errorf("PerformanceLevel = %q, want good", got.PerformanceLevel)
	}
	if strings.Join(got.Strengths, ",") != "Concise,Accurate" {
		t.Errorf("Strengths = %v, want [Concise Accurate]", got.Strengths)
	}
	if len(got.QuestionReviews) != 3 || got.QuestionReviews[2].Score != 90 {
		t.Errorf("QuestionReviews = %+v", got.QuestionReviews)
	}
	if !got.Metadata.Fallback || got.Metadata.TotalResponses != 3 {
		t.Errorf("Metadata = %+v", got.Metadata)
	}

	// The overall prompt carries the session metadata.
	var overallPrompt string
	for _, c := range model.Calls() {
		if strings.Contains(c.System, overallMarker) {
			overallPrompt = c.User
		}
	}
	for _, want := range []string{`"total_questions": 3`, `"total_duration": 120000`, `"average_response_time": 20000`} {
		if !strings.Contains(overallPrompt, want) {
			t.Errorf("overall prompt missing %s", want)
		}
	}

	cached, ok, err := o.CachedAnalytics(context.Background(), ReportKey(reactJunior, responses[0].Timestamp))
	if err != nil || !ok {
		t.Fatalf("CachedAnalytics() = %v, %v", ok, err)
	}
	if cached.OverallScore != 73 {
		t.Errorf("cached OverallScore = %d, want 73", cached.OverallScore)
	}
}

func TestGenerateComprehensiveAnalyticsModel(t *testing.T) {
	model := llmtest.New().
		On(responseMarker, llmtest.Reply(analysisJSON(80, "Clear"))).
		On(overallMarker, llmtest.Reply(`{
			"overall_score": 86,
			"performance_level": "excellent",
			"strengths": ["Depth"],
			"improvements": ["Pace"],
			"response_analysis": {"clarity":86,"structure":86,"technical":86,"communication":86,"confidence":86,"relevance":86},
			"trends": {"improvement":"improving","consistency":"high","adaptability":"high"},
			"recommendations": ["Keep going"],
			"executive_summary": "Strong.",
			"next_steps": ["Apply"],
			"question_reviews": [],
			"metadata": {"fallback": true}
		}`))
	o := newOrchestrator(model, session.NewMemoryStore())

	got, src := o.GenerateComprehensiveAnalytics(context.Background(), threeResponses(), reactJunior)
	if src != agent.SourceModel {
		t.Fatalf("source = %v, want model", src)
	}
	if got.OverallScore != 86 || got.PerformanceLevel != domain.LevelExcellent {
		t.Errorf("got %d/%q", got.OverallScore, got.PerformanceLevel)
	}
	if got.Metadata.Fallback || got.Metadata.TotalResponses != 3 || got.Metadata.AnalysisMethod != "agentic" {
		t.Errorf("Metadata = %+v", got.Metadata)
	}
	if n := model.CallCount(responseMarker); n != 3 {
		t.Errorf("response analysis calls = %d, want 3", n)
	}
	if len(got.QuestionReviews) != 3 {
		t.Fatalf("QuestionReviews = %d, want 3", len(got.QuestionReviews))
	}
	for i, r := range got.QuestionReviews {
		if want := fmt.Sprintf("q%d", i+1); r.QuestionID != want || r.Score != 80 || r.Feedback != "ok" {
			t.Errorf("QuestionReviews[%d] = %+v, want %s scored 80", i, r, want)
		}
	}
}

func TestGenerateComprehensiveAnalyticsCompletesModelReport(t *testing.T) {
	model := llmtest.New().
		On(responseMarker, llmtest.Reply(analysisJSON(80, "Clear"))).
		On(overallMarker, llmtest.Reply(`{
			"overall_score": 86,
			"performance_level": "excellent",
			"response_analysis": {"clarity":86,"structure":86,"technical":86,"communication":86,"confidence":86,"relevance":86},
			"executive_summary": "Strong."
		}`))
	o := newOrchestrator(model, session.NewMemoryStore())

	got, src := o.GenerateComprehensiveAnalytics(context.Background(), threeResponses(), reactJunior)
	if src != agent.SourceModel {
		t.Fatalf("source = %v, want model", src)
	}
	tests := []struct {
		name string
		got  int
	}{
		{"QuestionReviews", len(got.QuestionReviews)},
		{"Strengths", len(got.Strengths)},
		{"Improvements", len(got.Improvements)},
		{"Recommendations", len(got.Recommendations)},
		{"NextSteps", len(got.NextSteps)},
		{"Trends", len(got.Trends)},
	}
	for _, tt := range tests {
		if tt.got == 0 {
			t.Errorf("len(%s) = 0, want backfilled", tt.name)
		}
	}
	if len(got.QuestionReviews) == 3 && got.QuestionReviews[2].QuestionID != "q3" {
		t.Errorf("QuestionReviews[2].QuestionID = %q, want q3", got.QuestionReviews[2].QuestionID)
	}
}

func TestGenerateComprehensiveAnalyticsRejectsUnusableModelOutput(t *testing.T) {
	report := func(summary string) string {
		return fmt.Sprintf(`{
			"overall_score": 86,
			"performance_level": "excellent",
			"response_analysis": {"clarity":86,"structure":86,"technical":86,"communication":86,"confidence":86,"relevance":86},
			"executive_summary": %q
		}`, summary)
	}
	blankFeedback := `{
		"response_analysis": {"clarity": 80, "structure": 80, "technical": 80, "communication": 80, "confidence": 80, "relevance": 80},
		"feedback": "  ",
		"score": 80
	}`

	tests := []struct {
		name          string
		response      string
		overall       string
		wantSource    agent.Source
		wantFallbacks int
	}{
		{"usable", analysisJSON(80, "Clear"), report("Strong."), agent.SourceModel, 0},
		{"analysis without scores", `{"score": 88, "feedback": "great"}`, report("Strong."), agent.SourceModel, 3},
		{"analysis with blank feedback", blankFeedback, report("Strong."), agent.SourceModel, 3},
		{"report without scores", analysisJSON(80, "Clear"), `{"overall_score": 90, "performance_level": "excellent"}`, agent.SourceFallback, 0},
		{"report with blank summary", analysisJSON(80, "Clear"), report(""), agent.SourceFallback, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			model := llmtest.New().
				On(responseMarker, llmtest.Reply(tt.response)).
				On(overallMarker, llmtest.Reply(tt.overall))
			o := newOrchestrator(model, session.NewMemoryStore())

			got, src := o.GenerateComprehensiveAnalytics(context.Background(), threeResponses(), reactJunior)
			if src != tt.wantSource {
				t.Errorf("source = %v, want %v", src, tt.wantSource)
			}
			if strings.TrimSpace(got.ExecutiveSummary) == "" {
				t.Errorf("ExecutiveSummary is empty")
			}
			if len(got.QuestionReviews) != 3 {
				t.Errorf("QuestionReviews = %d, want 3", len(got.QuestionReviews))
			}
			fallbacks := 0
			for _, r := range got.QuestionReviews {
				if r.Score == 88 {
					t.Errorf("review %s kept the unscored model result", r.QuestionID)
				}
				if r.Feedback != "ok" {
					fallbacks++
				}
			}
			if fallbacks != tt.wantFallbacks {
				t.Errorf("fallback reviews = %d, want %d", fallbacks, tt.wantFallbacks)
			}
		})
	}
}

func TestGenerateComprehensiveAnalyticsAllFallback(t *testing.T) {
	o := newOrchestrator(llmtest.New(), session.NewMemoryStore())

	got, src := o.GenerateComprehensiveAnalytics(context.Background(), threeResponses(), reactJunior)
	if src != agent.SourceFallback {
		t.Errorf("source = %v, want fallback", src)
	}
	if err := got.Validate(); err != nil {
		t.Errorf("report invalid: %v", err)
	}
	for _, s := range got.ResponseAnalysis.Scores() {
		if s < 0 || s > 100 {
			t.Errorf("score %d out of range", s)
		}
	}
}

func TestGenerateComprehensiveAnalyticsConcurrent(t *testing.T) {
	model := llmtest.New().
		On(responseMarker, func(user string) (string, error) {
			switch {
			case strings.Contains(user, `"question_number": 1`):
				return analysisJSON(60, "one"), nil
			case strings.Contains(user, `"question_number": 2`):
				return analysisJSON(70, "two"), nil
			default:
				return analysisJSON(90, "three"), nil
			}
		})
	o := newOrchestrator(model, session.NewMemoryStore(), WithConcurrency(3))

	got, _ := o.GenerateComprehensiveAnalytics(context.Background(), threeResponses(), reactJunior)
	if got.OverallScore != 73 {
		t.Errorf("OverallScore = %d, want 73", got.OverallScore)
	}
	ids := []string{got.QuestionReviews[0].QuestionID, got.QuestionReviews[1].QuestionID, got.QuestionReviews[2].QuestionID}
	if strings.Join(ids, ",") != "q1,q2,q3" {
		t.Errorf("review order = %v, want input order", ids)
	}
	if strings.Join(got.Strengths, ",") != "one,two,three" {
		t.Errorf("Strengths = %v, want input order", got.Strengths)
	}
}

func TestAnalyzeSingleResponse(t *testing.T) {
	t.Run("model", func(t *testing.T) {
		model := llmtest.New().On(responseMarker, llmtest.Reply(analysisJSON(88, "Precise")))
		o := newOrchestrator(model, session.NewMemoryStore())

		got, src := o.AnalyzeSingleResponse(context.Background(), "q", "a", reactJunior)
		if src != agent.SourceModel || got.Score != 88 {
			t.Errorf("AnalyzeSingleResponse() = %d, %v", got.Score, src)
		}
	})

	t.Run("blank feedback", func(t *testing.T) {
		model := llmtest.New().On(responseMarker, llmtest.Reply(`{
			"response_analysis": {"clarity": 88, "structure": 88, "technical": 88, "communication": 88, "confidence": 88, "relevance": 88},
			"feedback": "",
			"score": 88
		}`))
		o := newOrchestrator(model, session.NewMemoryStore())

		got, src := o.AnalyzeSingleResponse(context.Background(), "q", "", reactJunior)
		if src != agent.SourceFallback || got.Feedback == "" {
			t.Errorf("AnalyzeSingleResponse() = %q, %v; want local feedback, fallback", got.Feedback, src)
		}
	})

	t.Run("fallback", func(t *testing.T) {
		o := newOrchestrator(llmtest.New(), session.NewMemoryStore())

		got, src := o.AnalyzeSingleResponse(context.Background(), "q", "", reactJunior)
		if src != agent.SourceFallback || got.Score != 70 {
			t.Errorf("AnalyzeSingleResponse() = %d, %v; want 70, fallback", got.Score, src)
		}
	})
}

func TestLocalAggregate(t *testing.T) {
	analyses := []domain.AnalyzedResponse{
		{Analysis: domain.ResponseAnalysisResult{Score: 3}},
		{Analysis: domain.ResponseAnalysisResult{Score: 8}},
	}
	got := LocalAggregate(analyses, reactJunior)

	if got.OverallScore != 6 || got.PerformanceLevel != domain.LevelNeedsImprovement {
		t.Errorf("got %d/%q, want 6/needs_improvement", got.OverallScore, got.PerformanceLevel)
	}
	if got.ResponseAnalysis.Structure != 1 || got.ResponseAnalysis.Confidence != 0 {
		t.Errorf("ResponseAnalysis = %+v, want clamped offsets", got.ResponseAnalysis)
	}
	if err := got.Validate(); err != nil {
		t.Errorf("aggregate invalid: %v", err)
	}
	if !strings.Contains(got.ExecutiveSummary, "React") {
		t.Errorf("ExecutiveSummary = %q", got.ExecutiveSummary)
	}
	if len(got.QuestionReviews) != 2 {
		t.Fatalf("QuestionReviews = %d, want 2", len(got.QuestionReviews))
	}
	if got.QuestionReviews[1].QuestionID != "q2" || got.QuestionReviews[1].Score != 8 {
		t.Errorf("QuestionReviews[1] = %+v, want q2 scored 8", got.QuestionReviews[1])
	}
}

func TestLocalResponseAnalysis(t *testing.T) {
	for _, in := range []string{"", strings.Repeat("long answer. ", 2000)} {
		got := LocalResponseAnalysis(in, reactJunior)
		if err := got.Validate(); err != nil {
			t.Errorf("LocalResponseAnalysis(len=%d) invalid: %v", len(in), err)
		}
	}
}
