package performance

import (
	"fmt"

	"github.com/sandeep066/aceInterview/internal/agent"
	"github.com/sandeep066/aceInterview/internal/domain"
)

// LocalResponseAnalysis is the per-item substitute used when an analysis
// result cannot be used. Scores come from the same length and lexical
// heuristic the response agent falls back to.
func LocalResponseAnalysis(response string, cfg domain.InterviewConfig) domain.ResponseAnalysisResult {
	scores, score := agent.ResponseScores(response, cfg.Style)
	return domain.ResponseAnalysisResult{
		ResponseAnalysis: scores,
		Strengths:        []string{"Shows understanding of the topic"},
		Improvements:     []string{"Add more specific examples"},
		Feedback:         "Good response with relevant content. Consider adding more specific examples.",
		Score:            score,
		KeyInsights:      []string{"Response demonstrates understanding"},
		Reasoning:        "Fallback analysis based on response characteristics",
	}
}

// LocalAggregate builds a minimal report from the mean per-response score,
// with one review per analysis.
func LocalAggregate(analyses []domain.AnalyzedResponse, cfg domain.InterviewConfig) domain.PerformanceAnalytics {
	avg := 70.0
	if len(analyses) > 0 {
		total := 0
		for _, a := range analyses {
			total += a.Analysis.Score
		}
		avg = float64(total) / float64(len(analyses))
	}

	score := domain.ClampScore(domain.Round(avg))
	level := domain.LevelForScore(score)
	shifted := func(delta float64) int {
		return domain.ClampScore(domain.Round(avg + delta))
	}

	return domain.PerformanceAnalytics{
		OverallScore:     score,
		PerformanceLevel: level,
		Strengths:        []string{"Shows understanding of core concepts"},
		Improvements:     []string{"Provide more specific examples"},
		ResponseAnalysis: domain.ResponseAnalysis{
			Clarity:       score,
			Structure:     shifted(-5),
			Technical:     score,
			Communication: score,
			Confidence:    shifted(-10),
			Relevance:     score,
		},
		Trends:           domain.DefaultTrends(),
		Recommendations:  []string{"Practice structured responses"},
		ExecutiveSummary: fmt.Sprintf("Candidate demonstrated %s performance with room for improvement in %s.", level, cfg.Topic),
		NextSteps:        []string{"Practice mock interviews"},
		QuestionReviews:  agent.QuestionReviews(analyses),
		Metadata: domain.AnalyticsMetadata{
			Fallback:       true,
			TotalResponses: len(analyses),
			AnalysisMethod: "fallback",
		},
	}
}
