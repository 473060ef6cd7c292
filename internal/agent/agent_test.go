package agent

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/sandeep066/aceInterview/internal/domain"
	"github.com/sandeep066/aceInterview/internal/llm"
	"github.com/sandeep066/aceInterview/internal/llm/llmtest"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var reactJunior = domain.InterviewConfig{
	Topic:           "React",
	Style:           domain.StyleTechnical,
	ExperienceLevel: domain.ExperienceJunior,
	Duration:        30,
}

type panicModel struct{}

func (panicModel) Invoke(context.Context, string, string, llm.Schema) error {
	panic("boom")
}

func TestTopicAgentModelAndFallback(t *testing.T) {
	t.Run("model", func(t *testing.T) {
		model := llmtest.New().On("Topic Analysis Agent", llmtest.Reply(`{
			"main_concepts": ["Hooks", "Rendering"],
			"skills": ["JSX"],
			"technologies": ["React"],
			"focus_areas": ["State", "Effects"],
			"complexity": "medium",
			"question_categories": ["technical"],
			"relevance_keywords": ["hook"]
		}`))
		a := NewTopicAgent(model, WithLogger(testLogger()))

		got, src := a.Analyze(context.Background(), reactJunior)
		if src != SourceModel {
			t.Fatalf("source = %v, want model", src)
		}
		if got.MainConcepts[0] != "Hooks" {
			t.Errorf("MainConcepts[0] = %q, want Hooks", got.MainConcepts[0])
		}

		calls := model.Calls()
		if len(calls) != 1 {
			t.Fatalf("calls = %d, want 1", len(calls))
		}
		if !strings.HasPrefix(calls[0].User, "Context: {") || !strings.Contains(calls[0].User, "\n\nInput: {") {
			t.Errorf("prompt layout = %q", calls[0].User)
		}
		if !strings.Contains(calls[0].User, `"topic": "React"`) {
			t.Errorf("prompt missing topic: %q", calls[0].User)
		}
	})

	t.Run("invalid complexity falls back", func(t *testing.T) {
		model := llmtest.New().On("Topic Analysis Agent", llmtest.Reply(`{"main_concepts":["x"],"complexity":"extreme"}`))
		a := NewTopicAgent(model, WithLogger(testLogger()))

		got, src := a.Analyze(context.Background(), reactJunior)
		if src != SourceFallback {
			t.Fatalf("source = %v, want fallback", src)
		}
		if got.Complexity != domain.ComplexityMedium {
			t.Errorf("Complexity = %q, want medium", got.Complexity)
		}
	})
}

func TestTopicFallback(t *testing.T) {
	tests := []struct {
		topic       string
		level       domain.ExperienceLevel
		wantConcept string
		wantComplex domain.Complexity
	}{
		{"Frontend Engineering", domain.ExperienceFresher, "User Interface", domain.ComplexityLow},
		{"BACKEND systems", domain.ExperienceSenior, "Server-side Development", domain.ComplexityHigh},
		{"Modern JavaScript", domain.ExperienceMidLevel, "Programming Fundamentals", domain.ComplexityMedium},
		{"frontend and backend", domain.ExperienceJunior, "User Interface", domain.ComplexityMedium},
		{"Go", domain.ExperienceLeadManager, "Technical Knowledge", domain.ComplexityHigh},
		{"", domain.ExperienceJunior, "Technical Knowledge", domain.ComplexityMedium},
	}

	for _, tt := range tests {
		t.Run(tt.topic, func(t *testing.T) {
			got := TopicFallback(TopicInput{Topic: tt.topic, Style: domain.StyleHR, ExperienceLevel: tt.level})
			if got.MainConcepts[0] != tt.wantConcept {
				t.Errorf("MainConcepts[0] = %q, want %q", got.MainConcepts[0], tt.wantConcept)
			}
			if got.Complexity != tt.wantComplex {
				t.Errorf("Complexity = %q, want %q", got.Complexity, tt.wantComplex)
			}
			want := []string{"hr", "fundamentals", "practical"}
			for i := range want {
				if got.QuestionCategories[i] != want[i] {
					t.Errorf("QuestionCategories = %v, want %v", got.QuestionCategories, want)
					break
				}
			}
			if err := got.Validate(); err != nil {
				t.Errorf("fallback does not validate: %v", err)
			}
		})
	}
}

func TestTopicFallbackDoesNotShareTables(t *testing.T) {
	a := TopicFallback(TopicInput{Topic: "frontend"})
	a.MainConcepts[0] = "mutated"
	b := TopicFallback(TopicInput{Topic: "frontend"})
	if b.MainConcepts[0] != "User Interface" {
		t.Errorf("MainConcepts[0] = %q after mutation of another result", b.MainConcepts[0])
	}
}

func TestQuestionFallback(t *testing.T) {
	tests := []struct {
		name     string
		cfg      domain.InterviewConfig
		pick     int
		want     string
		wantDiff domain.Difficulty
	}{
		{"technical junior", reactJunior, 0, "Describe a challenging problem you solved using React.", domain.DifficultyMedium},
		{
			"hr fresher",
			domain.InterviewConfig{Topic: "Go", Style: domain.StyleHR, ExperienceLevel: domain.ExperienceFresher},
			2, "How do you stay updated with Go trends?", domain.DifficultyEasy,
		},
		{
			"behavioral senior",
			domain.InterviewConfig{Topic: "Kafka", Style: domain.StyleBehavioral, ExperienceLevel: domain.ExperienceSenior},
			1, "Describe how you influenced others to adopt Kafka best practices.", domain.DifficultyHard,
		},
		{
			"case study uses technical",
			domain.InterviewConfig{Topic: "Payments", Style: domain.StyleCaseStudy, ExperienceLevel: domain.ExperienceLeadManager},
			0, "Design a scalable architecture for a Payments system.", domain.DifficultyHard,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := QuestionFallback(tt.cfg, func(int) int { return tt.pick })
			if got.Question != tt.want {
				t.Errorf("Question = %q, want %q", got.Question, tt.want)
			}
			if got.Metadata.Difficulty != tt.wantDiff {
				t.Errorf("Difficulty = %q, want %q", got.Metadata.Difficulty, tt.wantDiff)
			}
			if got.Metadata.Category != string(tt.cfg.Style) {
				t.Errorf("Category = %q, want %q", got.Metadata.Category, tt.cfg.Style)
			}
			if err := got.Validate(); err != nil {
				t.Errorf("fallback does not validate: %v", err)
			}
		})
	}
}

func TestQuestionAgentFallbackOnTransportFailure(t *testing.T) {
	model := llmtest.New().On("Question Generation Agent", llmtest.Fail(errors.New("connection refused")))
	a := NewQuestionAgent(model, WithLogger(testLogger()), WithIntn(func(n int) int { return n - 1 }))

	got, src := a.Generate(context.Background(), QuestionInput{Config: reactJunior})
	if src != SourceFallback {
		t.Fatalf("source = %v, want fallback", src)
	}
	if want := "What are the best practices for React development?"; got.Question != want {
		t.Errorf("Question = %q, want %q", got.Question, want)
	}

	mem, ok := a.Memory()
	if !ok || mem.GenerationType != "interview_question" || mem.Topic != "React" {
		t.Errorf("Memory() = %+v, %v", mem, ok)
	}
	a.ClearMemory()
	if _, ok := a.Memory(); ok {
		t.Error("Memory() still set after ClearMemory")
	}
}

func TestResponseScores(t *testing.T) {
	tests := []struct {
		name      string
		response  string
		style     domain.Style
		want      domain.ResponseAnalysis
		wantScore int
	}{
		{
			name:      "empty",
			response:  "",
			style:     domain.StyleTechnical,
			want:      domain.ResponseAnalysis{Clarity: 70, Structure: 65, Technical: 70, Communication: 65, Confidence: 75, Relevance: 75},
			wantScore: 70,
		},
		{
			name:      "very long",
			response:  strings.Repeat("a", 10001),
			style:     domain.StyleTechnical,
			want:      domain.ResponseAnalysis{Clarity: 95, Structure: 65, Technical: 70, Communication: 90, Confidence: 75, Relevance: 75},
			wantScore: 78,
		},
		{
			name:      "hedged sentence",
			response:  strings.Repeat("x", 90) + ". I Think so.",
			style:     domain.StyleHR,
			want:      domain.ResponseAnalysis{Clarity: 72, Structure: 75, Technical: 75, Communication: 68, Confidence: 65, Relevance: 75},
			wantScore: 72,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, score := ResponseScores(tt.response, tt.style)
			if got != tt.want {
				t.Errorf("ResponseScores() = %+v, want %+v", got, tt.want)
			}
			if score != tt.wantScore {
				t.Errorf("score = %d, want %d", score, tt.wantScore)
			}
		})
	}
}

func TestResponseFallbackAlwaysInRange(t *testing.T) {
	inputs := []string{
		"",
		".",
		"i think",
		strings.Repeat("word. ", 5000),
		strings.Repeat("日本語", 4000),
	}
	for _, in := range inputs {
		for _, style := range domain.Styles {
			got := ResponseFallback(in, style)
			if err := got.Validate(); err != nil {
				t.Errorf("ResponseFallback(len=%d, %s) invalid: %v", len(in), style, err)
			}
			if len(got.Strengths) == 0 || len(got.Improvements) == 0 {
				t.Errorf("ResponseFallback(len=%d, %s) has empty lists", len(in), style)
			}
		}
	}
}

func TestResponseAgentRejectsPartialScores(t *testing.T) {
	model := llmtest.New().On("Response Analysis Agent", llmtest.Reply(`{
		"response_analysis": {"clarity": 90, "structure": 90},
		"strengths": [], "improvements": [], "feedback": "", "score": 90, "key_insights": [], "reasoning": ""
	}`))
	a := NewResponseAgent(model, WithLogger(testLogger()))

	got, src := a.Analyze(context.Background(), ResponseInput{Question: "q", Response: "", Config: reactJunior})
	if src != SourceFallback {
		t.Fatalf("source = %v, want fallback", src)
	}
	if got.Score != 70 {
		t.Errorf("Score = %d, want 70", got.Score)
	}
}

func TestResponseAgentRejectsMissingScores(t *testing.T) {
	model := llmtest.New().On("Response Analysis Agent", llmtest.Reply(`{"score": 88, "feedback": "great"}`))
	a := NewResponseAgent(model, WithLogger(testLogger()))

	got, src := a.Analyze(context.Background(), ResponseInput{Question: "q", Response: "", Config: reactJunior})
	if src != SourceFallback {
		t.Fatalf("source = %v, want fallback", src)
	}
	if got.Score == 88 {
		t.Errorf("Score = %d, want the fallback score", got.Score)
	}
}

func TestOverallAgentRejectsMissingScores(t *testing.T) {
	model := llmtest.New().On("Overall Analysis Agent", llmtest.Reply(`{"overall_score": 90, "performance_level": "excellent"}`))
	a := NewOverallAgent(model, WithLogger(testLogger()))

	got, src := a.Analyze(context.Background(), OverallInput{
		Analyses: []domain.AnalyzedResponse{analyzed("q1", 80)},
		Config:   reactJunior,
	})
	if src != SourceFallback {
		t.Fatalf("source = %v, want fallback", src)
	}
	if got.ResponseAnalysis.Clarity != 80 {
		t.Errorf("Clarity = %d, want 80 from the per-response mean", got.ResponseAnalysis.Clarity)
	}
}

func TestCompleteReport(t *testing.T) {
	in := OverallInput{
		Analyses: []domain.AnalyzedResponse{analyzed("", 60), analyzed("q7", 90)},
		Config:   reactJunior,
	}
	tests := []struct {
		name        string
		report      domain.PerformanceAnalytics
		wantReviews []string
		wantFirst   string
	}{
		{
			name:        "empty report",
			report:      domain.PerformanceAnalytics{},
			wantReviews: []string{"q1", "q7"},
			wantFirst:   defaultStrengths[0],
		},
		{
			name: "partial reviews",
			report: domain.PerformanceAnalytics{
				Strengths:       []string{"Depth"},
				QuestionReviews: []domain.QuestionReview{{QuestionID: "x"}},
			},
			wantReviews: []string{"q1", "q7"},
			wantFirst:   "Depth",
		},
		{
			name: "complete reviews kept",
			report: domain.PerformanceAnalytics{
				Strengths:       []string{"Depth"},
				QuestionReviews: []domain.QuestionReview{{QuestionID: "a"}, {QuestionID: "b"}},
			},
			wantReviews: []string{"a", "b"},
			wantFirst:   "Depth",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := tt.report
			CompleteReport(&r, in)

			var ids []string
			for _, q := range r.QuestionReviews {
				ids = append(ids, q.QuestionID)
			}
			if strings.Join(ids, ",") != strings.Join(tt.wantReviews, ",") {
				t.Errorf("review ids = %v, want %v", ids, tt.wantReviews)
			}
			if len(r.Strengths) == 0 || r.Strengths[0] != tt.wantFirst {
				t.Errorf("Strengths = %v, want first %q", r.Strengths, tt.wantFirst)
			}
			if len(r.Improvements) == 0 || len(r.Recommendations) == 0 || len(r.NextSteps) == 0 || len(r.Trends) == 0 {
				t.Errorf("report not backfilled: %+v", r)
			}
		})
	}
}

func TestResponseAgentRecoversFromPanic(t *testing.T) {
	a := NewResponseAgent(panicModel{}, WithLogger(testLogger()))

	got, src := a.Analyze(context.Background(), ResponseInput{Response: "fine", Config: reactJunior})
	if src != SourceFallback {
		t.Fatalf("source = %v, want fallback", src)
	}
	if err := got.Validate(); err != nil {
		t.Errorf("fallback invalid: %v", err)
	}
}

func analyzed(id string, score int, strengths ...string) domain.AnalyzedResponse {
	return domain.AnalyzedResponse{
		QuestionID: id,
		Question:   "question " + id,
		Response:   "response " + id,
		Analysis: domain.ResponseAnalysisResult{
			ResponseAnalysis: domain.ResponseAnalysis{
				Clarity: score, Structure: score, Technical: score,
				Communication: score, Confidence: score, Relevance: score,
			},
			Strengths: strengths,
			Score:     score,
		},
	}
}

func TestOverallFallback(t *testing.T) {
	in := OverallInput{
		Analyses: []domain.AnalyzedResponse{
			analyzed("", 60, "A", "B"),
			analyzed("custom", 70, "B", "C"),
			analyzed("", 90, "D", "E"),
		},
		Config: reactJunior,
	}

	got := OverallFallback(in)

	if got.OverallScore != 73 {
		t.Errorf("OverallScore = %d, want 73", got.OverallScore)
	}
	if got.PerformanceLevel != domain.LevelGood {
		t.Errorf("PerformanceLevel = %q, want good", got.PerformanceLevel)
	}
	if got.ResponseAnalysis.Clarity != 73 {
		t.Errorf("Clarity = %d, want 73", got.ResponseAnalysis.Clarity)
	}
	if strings.Join(got.Strengths, ",") != "A,B,C" {
		t.Errorf("Strengths = %v, want [A B C]", got.Strengths)
	}
	if strings.Join(got.Improvements, ",") != strings.Join(defaultImprovements, ",") {
		t.Errorf("Improvements = %v, want defaults", got.Improvements)
	}
	ids := []string{got.QuestionReviews[0].QuestionID, got.QuestionReviews[1].QuestionID, got.QuestionReviews[2].QuestionID}
	if strings.Join(ids, ",") != "q1,custom,q3" {
		t.Errorf("review ids = %v, want [q1 custom q3]", ids)
	}
	if got.QuestionReviews[0].Feedback != "Good response" {
		t.Errorf("Feedback = %q, want default", got.QuestionReviews[0].Feedback)
	}
	if !got.Metadata.Fallback || got.Metadata.TotalResponses != 3 || got.Metadata.AnalysisMethod != "fallback" {
		t.Errorf("Metadata = %+v", got.Metadata)
	}
	if !strings.Contains(got.ExecutiveSummary, "good performance with an overall score of 73%") {
		t.Errorf("ExecutiveSummary = %q", got.ExecutiveSummary)
	}
	if !strings.Contains(got.Recommendations[3], "React") {
		t.Errorf("Recommendations[3] = %q, want topic", got.Recommendations[3])
	}
	if err := got.Validate(); err != nil {
		t.Errorf("fallback invalid: %v", err)
	}
}

func TestOverallFallbackEmpty(t *testing.T) {
	got := OverallFallback(OverallInput{Config: reactJunior})
	if got.OverallScore != 70 || got.PerformanceLevel != domain.LevelFair {
		t.Errorf("got %d/%q, want 70/fair", got.OverallScore, got.PerformanceLevel)
	}
	if !got.Metadata.Fallback || got.Metadata.TotalResponses != 0 {
		t.Errorf("Metadata = %+v", got.Metadata)
	}
}

func TestOverallAgentRejectsInconsistentLevel(t *testing.T) {
	model := llmtest.New().On("Overall Analysis Agent", llmtest.Reply(`{
		"overall_score": 90,
		"performance_level": "fair",
		"response_analysis": {"clarity":90,"structure":90,"technical":90,"communication":90,"confidence":90,"relevance":90}
	}`))
	a := NewOverallAgent(model, WithLogger(testLogger()))

	got, src := a.Analyze(context.Background(), OverallInput{
		Analyses: []domain.AnalyzedResponse{analyzed("q1", 80)},
		Config:   reactJunior,
	})
	if src != SourceFallback {
		t.Fatalf("source = %v, want fallback", src)
	}
	if got.OverallScore != 80 || got.PerformanceLevel != domain.LevelGood {
		t.Errorf("got %d/%q, want 80/good", got.OverallScore, got.PerformanceLevel)
	}
	if mem, ok := a.Memory(); !ok || mem.TotalResponses != 1 {
		t.Errorf("Memory() = %+v, %v", mem, ok)
	}
}

func TestDedupeCapped(t *testing.T) {
	got := dedupeCapped([]string{"a", "a", "b", "a", "c", "d"}, []string{"x"})
	if strings.Join(got, ",") != "a,b,c" {
		t.Errorf("dedupeCapped() = %v, want [a b c]", got)
	}
	got = dedupeCapped(nil, []string{"x"})
	if len(got) != 1 || got[0] != "x" {
		t.Errorf("dedupeCapped(nil) = %v, want defaults", got)
	}
}
