package domain

import (
	"encoding/json"
	"fmt"
	"math"
)

// PerformanceLevel is derived from the overall score by LevelForScore.
type PerformanceLevel string

const (
	LevelExcellent        PerformanceLevel = "excellent"
	LevelGood             PerformanceLevel = "good"
	LevelFair             PerformanceLevel = "fair"
	LevelNeedsImprovement PerformanceLevel = "needs_improvement"
)

// LevelForScore maps an overall score onto a performance level using the
// 85/70/60 cutoffs.
func LevelForScore(score int) PerformanceLevel {
	switch {
	case score >= 85:
		return LevelExcellent
	case score >= 70:
		return LevelGood
	case score >= 60:
		return LevelFair
	default:
		return LevelNeedsImprovement
	}
}

// QuestionReview is the per-question section of a report.
type QuestionReview struct {
	QuestionID string `json:"question_id"`
	Question   string `json:"question"`
	Response   string `json:"response"`
	Score      int    `json:"score"`
	Feedback   string `json:"feedback"`
}

// AnalyticsMetadata records how a report was produced.
type AnalyticsMetadata struct {
	Fallback       bool   `json:"fallback"`
	TotalResponses int    `json:"total_responses"`
	AnalysisMethod string `json:"analysis_method,omitempty"`
}

// PerformanceAnalytics is the aggregate report for one interview.
type PerformanceAnalytics struct {
	OverallScore     int               `json:"overall_score"`
	PerformanceLevel PerformanceLevel  `json:"performance_level"`
	Strengths        []string          `json:"strengths"`
	Improvements     []string          `json:"improvements"`
	ResponseAnalysis ResponseAnalysis  `json:"response_analysis"`
	Trends           map[string]string `json:"trends"`
	Recommendations  []string          `json:"recommendations"`
	ExecutiveSummary string            `json:"executive_summary"`
	NextSteps        []string          `json:"next_steps"`
	QuestionReviews  []QuestionReview  `json:"question_reviews"`
	Metadata         AnalyticsMetadata `json:"metadata"`
}

// UnmarshalJSON requires the aggregate response_analysis object.
func (p *PerformanceAnalytics) UnmarshalJSON(data []byte) error {
	if err := requireKeys(data, "response_analysis"); err != nil {
		return err
	}
	type plain PerformanceAnalytics
	return json.Unmarshal(data, (*plain)(p))
}

// Validate implements llm.Schema. The level must agree with the score.
func (p *PerformanceAnalytics) Validate() error {
	if p.OverallScore < 0 || p.OverallScore > 100 {
		return fmt.Errorf("overall_score %d out of range [0,100]", p.OverallScore)
	}
	if want := LevelForScore(p.OverallScore); p.PerformanceLevel != want {
		return fmt.Errorf("performance_level %q does not match score %d (want %q)",
			p.PerformanceLevel, p.OverallScore, want)
	}
	return p.ResponseAnalysis.Validate()
}

// DefaultTrends is the neutral trend map used by every heuristic report.
func DefaultTrends() map[string]string {
	return map[string]string{
		"improvement":  "consistent",
		"consistency":  "medium",
		"adaptability": "medium",
	}
}

// DefaultAnalytics is the fixed report for an interview with no responses.
func DefaultAnalytics() PerformanceAnalytics {
	return PerformanceAnalytics{
		OverallScore:     70,
		PerformanceLevel: LevelFair,
		Strengths:        []string{"Shows willingness to participate"},
		Improvements:     []string{"Complete more interview questions"},
		ResponseAnalysis: ResponseAnalysis{
			Clarity: 70, Structure: 70, Technical: 70,
			Communication: 70, Confidence: 70, Relevance: 70,
		},
		Trends:           DefaultTrends(),
		Recommendations:  []string{"Practice more interview scenarios"},
		ExecutiveSummary: "Limited data available for comprehensive analysis.",
		NextSteps:        []string{"Complete full interview sessions"},
		QuestionReviews:  []QuestionReview{},
		Metadata:         AnalyticsMetadata{Fallback: true, TotalResponses: 0},
	}
}

// Round rounds half away from zero and returns an int.
func Round(v float64) int {
	return int(math.Round(v))
}

// ClampScore bounds v to [0,100].
func ClampScore(v int) int {
	return max(0, min(100, v))
}
