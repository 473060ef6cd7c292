package agent

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/sandeep066/aceInterview/internal/domain"
	"github.com/sandeep066/aceInterview/internal/llm"
)

// ResponseInput is one answer to analyze.
type ResponseInput struct {
	Question       string                 `json:"question"`
	Response       string                 `json:"response"`
	Config         domain.InterviewConfig `json:"config"`
	QuestionNumber int                    `json:"question_number"`
}

// ResponseContext is the response agent's memory.
type ResponseContext struct {
	AnalysisType    string                 `json:"analysis_type"`
	InterviewStyle  domain.Style           `json:"interview_style"`
	ExperienceLevel domain.ExperienceLevel `json:"experience_level"`
}

// ResponseAgent scores a single interview answer.
type ResponseAgent struct {
	base
	memory[ResponseContext]
}

// NewResponseAgent creates a response agent.
func NewResponseAgent(model llm.Model, opts ...Option) *ResponseAgent {
	o := newOptions(opts)
	return &ResponseAgent{base: base{
		name:   "response_analysis",
		system: responseSystemPrompt,
		model:  model,
		logger: o.logger,
	}}
}

// Analyze returns the analysis of in.
func (a *ResponseAgent) Analyze(ctx context.Context, in ResponseInput) (domain.ResponseAnalysisResult, Source) {
	if in.QuestionNumber < 1 {
		in.QuestionNumber = 1
	}
	rc := ResponseContext{
		AnalysisType:    "response_analysis",
		InterviewStyle:  in.Config.Style,
		ExperienceLevel: in.Config.ExperienceLevel,
	}
	a.remember(rc)

	return execute(ctx, &a.base, preparePrompt(rc, in), func() domain.ResponseAnalysisResult {
		return ResponseFallback(in.Response, in.Config.Style)
	})
}

// ResponseScores derives the six scores and the overall score from the
// length and a few lexical cues of response. Length is counted in
// characters.
func ResponseScores(response string, style domain.Style) (domain.ResponseAnalysis, int) {
	n := float64(utf8.RuneCountInString(response))

	clarity := min(95, max(60, 70+n/50))
	structure := 65.0
	if strings.Contains(response, ".") && n > 50 {
		structure = 75
	}
	technical := 75.0
	if style == domain.StyleTechnical || style == "" {
		technical = 70
	}
	communication := min(90, max(60, 65+n/40))
	confidence := 75.0
	if strings.Contains(strings.ToLower(response), "i think") {
		confidence = 65
	}
	relevance := 75.0

	score := domain.Round((clarity + structure + technical + communication + confidence + relevance) / 6)
	return domain.ResponseAnalysis{
		Clarity:       domain.Round(clarity),
		Structure:     domain.Round(structure),
		Technical:     domain.Round(technical),
		Communication: domain.Round(communication),
		Confidence:    domain.Round(confidence),
		Relevance:     domain.Round(relevance),
	}, score
}

// ResponseFallback is the heuristic analysis used when the model is
// unavailable.
func ResponseFallback(response string, style domain.Style) domain.ResponseAnalysisResult {
	scores, score := ResponseScores(response, style)
	return domain.ResponseAnalysisResult{
		ResponseAnalysis: scores,
		Strengths:        []string{"Shows understanding of the topic", "Provides relevant information"},
		Improvements:     []string{"Add more specific examples", "Structure response more clearly"},
		Feedback:         "Good response with relevant content. Consider adding more specific examples and structuring your answer more clearly.",
		Score:            score,
		KeyInsights:      []string{"Response demonstrates basic understanding", "Could benefit from more detailed examples"},
		Reasoning:        "Fallback analysis based on response characteristics",
	}
}
