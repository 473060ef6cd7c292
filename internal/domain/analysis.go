package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Complexity is the topic complexity.
type Complexity string

const (
	ComplexityLow    Complexity = "low"
	ComplexityMedium Complexity = "medium"
	ComplexityHigh   Complexity = "high"
)

// Difficulty is the question difficulty.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

func (d Difficulty) valid() bool {
	return d == DifficultyEasy || d == DifficultyMedium || d == DifficultyHard
}

// QuestionType classifies how a question is meant to be answered.
type QuestionType string

const (
	QuestionTheoretical    QuestionType = "theoretical"
	QuestionPractical      QuestionType = "practical"
	QuestionScenario       QuestionType = "scenario"
	QuestionProblemSolving QuestionType = "problem-solving"
)

func (q QuestionType) valid() bool {
	switch q {
	case QuestionTheoretical, QuestionPractical, QuestionScenario, QuestionProblemSolving:
		return true
	}
	return false
}

// TopicAnalysis breaks an interview topic into concepts and focus areas.
// It is computed once per session key and treated as immutable.
type TopicAnalysis struct {
	MainConcepts       []string   `json:"main_concepts"`
	Skills             []string   `json:"skills"`
	Technologies       []string   `json:"technologies"`
	FocusAreas         []string   `json:"focus_areas"`
	Complexity         Complexity `json:"complexity"`
	QuestionCategories []string   `json:"question_categories"`
	RelevanceKeywords  []string   `json:"relevance_keywords"`
}

// Validate implements llm.Schema.
func (t *TopicAnalysis) Validate() error {
	switch t.Complexity {
	case ComplexityLow, ComplexityMedium, ComplexityHigh:
	default:
		return fmt.Errorf("invalid complexity %q", t.Complexity)
	}
	if len(t.MainConcepts) == 0 {
		return fmt.Errorf("main_concepts must not be empty")
	}
	return nil
}

// QuestionMetadata is attached to every generated question.
type QuestionMetadata struct {
	Category      string       `json:"category"`
	Difficulty    Difficulty   `json:"difficulty"`
	FocusArea     string       `json:"focus_area"`
	Concepts      []string     `json:"concepts"`
	QuestionType  QuestionType `json:"question_type"`
	EstimatedTime string       `json:"estimated_time,omitempty"`
}

// FollowupContext carries the original exchange into a follow-up request.
type FollowupContext struct {
	OriginalQuestion string `json:"original_question"`
	UserResponse     string `json:"user_response"`
}

// QuestionSpec tells the question generator what to produce.
type QuestionSpec struct {
	Category     string           `json:"category"`
	Difficulty   Difficulty       `json:"difficulty"`
	FocusArea    string           `json:"focus_area"`
	Concepts     []string         `json:"concepts"`
	AvoidTopics  []string         `json:"avoid_topics,omitempty"`
	QuestionType QuestionType     `json:"question_type"`
	Context      *FollowupContext `json:"context,omitempty"`
}

// QuestionResult is the output of question generation.
type QuestionResult struct {
	Question  string           `json:"question"`
	Metadata  QuestionMetadata `json:"metadata"`
	Reasoning string           `json:"reasoning"`
}

// Validate implements llm.Schema.
func (q *QuestionResult) Validate() error {
	if strings.TrimSpace(q.Question) == "" {
		return fmt.Errorf("question must not be empty")
	}
	if !q.Metadata.Difficulty.valid() {
		return fmt.Errorf("invalid difficulty %q", q.Metadata.Difficulty)
	}
	if !q.Metadata.QuestionType.valid() {
		return fmt.Errorf("invalid question_type %q", q.Metadata.QuestionType)
	}
	return nil
}

// ResponseAnalysis holds six bounded scores. All six are required.
type ResponseAnalysis struct {
	Clarity       int `json:"clarity"`
	Structure     int `json:"structure"`
	Technical     int `json:"technical"`
	Communication int `json:"communication"`
	Confidence    int `json:"confidence"`
	Relevance     int `json:"relevance"`
}

// UnmarshalJSON rejects payloads missing any of the six scores so a
// partial model answer is never zero-filled.
func (r *ResponseAnalysis) UnmarshalJSON(data []byte) error {
	var raw struct {
		Clarity       *int `json:"clarity"`
		Structure     *int `json:"structure"`
		Technical     *int `json:"technical"`
		Communication *int `json:"communication"`
		Confidence    *int `json:"confidence"`
		Relevance     *int `json:"relevance"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	fields := []struct {
		name string
		v    *int
	}{
		{"clarity", raw.Clarity},
		{"structure", raw.Structure},
		{"technical", raw.Technical},
		{"communication", raw.Communication},
		{"confidence", raw.Confidence},
		{"relevance", raw.Relevance},
	}
	for _, f := range fields {
		if f.v == nil {
			return fmt.Errorf("response_analysis.%s is required", f.name)
		}
	}

	*r = ResponseAnalysis{
		Clarity:       *raw.Clarity,
		Structure:     *raw.Structure,
		Technical:     *raw.Technical,
		Communication: *raw.Communication,
		Confidence:    *raw.Confidence,
		Relevance:     *raw.Relevance,
	}
	return nil
}

// Scores returns the six scores in declaration order.
func (r ResponseAnalysis) Scores() [6]int {
	return [6]int{r.Clarity, r.Structure, r.Technical, r.Communication, r.Confidence, r.Relevance}
}

// Validate checks every score is within [0,100].
func (r ResponseAnalysis) Validate() error {
	names := [6]string{"clarity", "structure", "technical", "communication", "confidence", "relevance"}
	for i, s := range r.Scores() {
		if s < 0 || s > 100 {
			return fmt.Errorf("%s score %d out of range [0,100]", names[i], s)
		}
	}
	return nil
}

// ResponseAnalysisResult is the full analysis of one response.
type ResponseAnalysisResult struct {
	ResponseAnalysis ResponseAnalysis `json:"response_analysis"`
	Strengths        []string         `json:"strengths"`
	Improvements     []string         `json:"improvements"`
	Feedback         string           `json:"feedback"`
	Score            int              `json:"score"`
	KeyInsights      []string         `json:"key_insights"`
	Reasoning        string           `json:"reasoning"`
}

// UnmarshalJSON requires the response_analysis object. Without it the six
// scores would silently decode as zeros.
func (r *ResponseAnalysisResult) UnmarshalJSON(data []byte) error {
	if err := requireKeys(data, "response_analysis"); err != nil {
		return err
	}
	type plain ResponseAnalysisResult
	return json.Unmarshal(data, (*plain)(r))
}

// Validate implements llm.Schema.
func (r *ResponseAnalysisResult) Validate() error {
	if err := r.ResponseAnalysis.Validate(); err != nil {
		return err
	}
	if r.Score < 0 || r.Score > 100 {
		return fmt.Errorf("score %d out of range [0,100]", r.Score)
	}
	return nil
}

// AnalyzedResponse pairs a source response with its analysis. It is the
// per-item input to overall analysis.
type AnalyzedResponse struct {
	QuestionID string                 `json:"question_id"`
	Question   string                 `json:"question"`
	Response   string                 `json:"response"`
	Timestamp  int64                  `json:"timestamp"`
	Analysis   ResponseAnalysisResult `json:"analysis"`
	Fallback   bool                   `json:"fallback,omitempty"`
}

// requireKeys fails unless data is a JSON object carrying every key with a
// non-null value.
func requireKeys(data []byte, keys ...string) error {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	for _, k := range keys {
		v, ok := obj[k]
		if !ok || string(bytes.TrimSpace(v)) == "null" {
			return fmt.Errorf("%s is required", k)
		}
	}
	return nil
}
