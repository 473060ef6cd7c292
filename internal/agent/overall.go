package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/sandeep066/aceInterview/internal/domain"
	"github.com/sandeep066/aceInterview/internal/llm"
)

// maxListItems caps strengths and improvements in the fallback report.
const maxListItems = 3

// OverallInput is everything the overall agent synthesizes.
type OverallInput struct {
	Analyses []domain.AnalyzedResponse `json:"response_analyses"`
	Config   domain.InterviewConfig    `json:"config"`
	Session  domain.SessionMetadata    `json:"session_metadata"`
}

// OverallContext is the overall agent's memory.
type OverallContext struct {
	AnalysisType   string       `json:"analysis_type"`
	TotalResponses int          `json:"total_responses"`
	InterviewStyle domain.Style `json:"interview_style"`
}

// OverallAgent synthesizes per-response analyses into one report.
type OverallAgent struct {
	base
	memory[OverallContext]
}

// NewOverallAgent creates an overall agent.
func NewOverallAgent(model llm.Model, opts ...Option) *OverallAgent {
	o := newOptions(opts)
	return &OverallAgent{base: base{
		name:   "overall_analysis",
		system: overallSystemPrompt,
		model:  model,
		logger: o.logger,
	}}
}

// Analyze returns the performance report for in.
func (a *OverallAgent) Analyze(ctx context.Context, in OverallInput) (domain.PerformanceAnalytics, Source) {
	oc := OverallContext{
		AnalysisType:   "overall_performance",
		TotalResponses: len(in.Analyses),
		InterviewStyle: in.Config.Style,
	}
	a.remember(oc)

	report, source := execute(ctx, &a.base, preparePrompt(oc, in), func() domain.PerformanceAnalytics {
		return OverallFallback(in)
	})
	if source == SourceModel {
		CompleteReport(&report, in)
	}
	return report, source
}

// CompleteReport fills the parts of a model report the model may leave out.
// Question reviews are rebuilt from the analyses unless there is exactly one
// per response; empty lists get the fallback defaults.
func CompleteReport(report *domain.PerformanceAnalytics, in OverallInput) {
	if len(report.QuestionReviews) != len(in.Analyses) {
		report.QuestionReviews = QuestionReviews(in.Analyses)
	}
	if len(report.Strengths) == 0 {
		report.Strengths = clone(defaultStrengths)
	}
	if len(report.Improvements) == 0 {
		report.Improvements = clone(defaultImprovements)
	}
	if len(report.Recommendations) == 0 {
		report.Recommendations = recommendations(in.Config.Topic)
	}
	if len(report.NextSteps) == 0 {
		report.NextSteps = nextSteps(in.Config.Topic)
	}
	if len(report.Trends) == 0 {
		report.Trends = domain.DefaultTrends()
	}
}

// QuestionReviews lists one review per analysis, in order. Missing ids
// become q1, q2 and so on.
func QuestionReviews(analyses []domain.AnalyzedResponse) []domain.QuestionReview {
	reviews := make([]domain.QuestionReview, 0, len(analyses))
	for i, ar := range analyses {
		id := ar.QuestionID
		if id == "" {
			id = fmt.Sprintf("q%d", i+1)
		}
		feedback := ar.Analysis.Feedback
		if strings.TrimSpace(feedback) == "" {
			feedback = "Good response"
		}
		reviews = append(reviews, domain.QuestionReview{
			QuestionID: id,
			Question:   ar.Question,
			Response:   ar.Response,
			Score:      ar.Analysis.Score,
			Feedback:   feedback,
		})
	}
	return reviews
}

func recommendations(topic string) []string {
	return []string{
		"Practice structuring responses using frameworks like STAR method",
		"Prepare specific examples for common question types",
		"Work on confident delivery and clear communication",
		fmt.Sprintf("Focus on improving %s knowledge depth", topicOrDefault(topic)),
	}
}

func nextSteps(topic string) []string {
	return []string{
		"Practice mock interviews focusing on response structure",
		"Prepare a portfolio of specific examples for different scenarios",
		"Work on confident delivery and clear articulation",
		fmt.Sprintf("Deepen knowledge in %s through additional study and practice", topicOrDefault(topic)),
	}
}

func topicOrDefault(topic string) string {
	if topic == "" {
		return "the subject"
	}
	return topic
}

var (
	defaultStrengths = []string{
		"Shows understanding of core concepts",
		"Demonstrates relevant experience",
		"Communicates ideas clearly",
	}
	defaultImprovements = []string{
		"Provide more specific examples",
		"Structure responses more clearly",
		"Practice confident delivery",
	}
)

// OverallFallback aggregates the per-response analyses without the model.
// An empty input yields domain.DefaultAnalytics.
func OverallFallback(in OverallInput) domain.PerformanceAnalytics {
	n := len(in.Analyses)
	if n == 0 {
		return domain.DefaultAnalytics()
	}

	var sums [6]int
	var totalScore int
	var strengths, improvements []string

	for _, ar := range in.Analyses {
		for j, s := range ar.Analysis.ResponseAnalysis.Scores() {
			sums[j] += s
		}
		totalScore += ar.Analysis.Score
		strengths = append(strengths, ar.Analysis.Strengths...)
		improvements = append(improvements, ar.Analysis.Improvements...)
	}

	var avg [6]int
	for j := range sums {
		avg[j] = domain.ClampScore(domain.Round(float64(sums[j]) / float64(n)))
	}
	score := domain.ClampScore(domain.Round(float64(totalScore) / float64(n)))
	level := domain.LevelForScore(score)

	topic := topicOrDefault(in.Config.Topic)

	return domain.PerformanceAnalytics{
		OverallScore:     score,
		PerformanceLevel: level,
		Strengths:        dedupeCapped(strengths, defaultStrengths),
		Improvements:     dedupeCapped(improvements, defaultImprovements),
		ResponseAnalysis: domain.ResponseAnalysis{
			Clarity:       avg[0],
			Structure:     avg[1],
			Technical:     avg[2],
			Communication: avg[3],
			Confidence:    avg[4],
			Relevance:     avg[5],
		},
		Trends:          domain.DefaultTrends(),
		Recommendations: recommendations(in.Config.Topic),
		ExecutiveSummary: fmt.Sprintf("The candidate demonstrated %s performance with an overall score of %d%%. "+
			"They show solid understanding of %s concepts but could benefit from more structured responses and specific examples.",
			level, score, topic),
		NextSteps:       nextSteps(in.Config.Topic),
		QuestionReviews: QuestionReviews(in.Analyses),
		Metadata: domain.AnalyticsMetadata{
			Fallback:       true,
			TotalResponses: n,
			AnalysisMethod: "fallback",
		},
	}
}

// dedupeCapped keeps the first occurrence of each item, up to
// maxListItems, or returns defaults when items is empty.
func dedupeCapped(items, defaults []string) []string {
	if len(items) == 0 {
		return clone(defaults)
	}
	seen := make(map[string]struct{}, len(items))
	out := make([]string, 0, maxListItems)
	for _, it := range items {
		if _, ok := seen[it]; ok {
			continue
		}
		seen[it] = struct{}{}
		out = append(out, it)
		if len(out) == maxListItems {
			break
		}
	}
	return out
}
