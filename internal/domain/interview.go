package domain

import (
	"fmt"
	"strings"
)

// Style is the interview style.
type Style string

const (
	StyleTechnical         Style = "technical"
	StyleHR                Style = "hr"
	StyleBehavioral        Style = "behavioral"
	StyleSalaryNegotiation Style = "salary-negotiation"
	StyleCaseStudy         Style = "case-study"
)

// Styles lists every accepted interview style.
var Styles = []Style{StyleTechnical, StyleHR, StyleBehavioral, StyleSalaryNegotiation, StyleCaseStudy}

// Valid reports whether s is a known style.
func (s Style) Valid() bool {
	for _, v := range Styles {
		if s == v {
			return true
		}
	}
	return false
}

// ExperienceLevel is the candidate's seniority.
type ExperienceLevel string

const (
	ExperienceFresher     ExperienceLevel = "fresher"
	ExperienceJunior      ExperienceLevel = "junior"
	ExperienceMidLevel    ExperienceLevel = "mid-level"
	ExperienceSenior      ExperienceLevel = "senior"
	ExperienceLeadManager ExperienceLevel = "lead-manager"
)

// ExperienceLevels lists every accepted experience level.
var ExperienceLevels = []ExperienceLevel{
	ExperienceFresher, ExperienceJunior, ExperienceMidLevel, ExperienceSenior, ExperienceLeadManager,
}

// Valid reports whether e is a known experience level.
func (e ExperienceLevel) Valid() bool {
	for _, v := range ExperienceLevels {
		if e == v {
			return true
		}
	}
	return false
}

// Difficulty maps the experience level onto a question difficulty bucket.
func (e ExperienceLevel) Difficulty() Difficulty {
	switch e {
	case ExperienceFresher:
		return DifficultyEasy
	case ExperienceSenior, ExperienceLeadManager:
		return DifficultyHard
	default:
		return DifficultyMedium
	}
}

// Complexity maps the experience level onto a topic complexity.
func (e ExperienceLevel) Complexity() Complexity {
	switch e {
	case ExperienceFresher:
		return ComplexityLow
	case ExperienceSenior, ExperienceLeadManager:
		return ComplexityHigh
	default:
		return ComplexityMedium
	}
}

const (
	MinDurationMinutes = 15
	MaxDurationMinutes = 120
)

// InterviewConfig describes one interview. It is passed by value and never
// mutated after validation.
type InterviewConfig struct {
	Topic           string          `json:"topic"`
	Style           Style           `json:"style"`
	ExperienceLevel ExperienceLevel `json:"experience_level"`
	CompanyName     string          `json:"company_name,omitempty"`
	Duration        int             `json:"duration"`
}

// Validate rejects blank topics, unknown enums and out-of-range durations.
func (c InterviewConfig) Validate() error {
	if strings.TrimSpace(c.Topic) == "" {
		return ErrInvalidRequest("topic is required").
			WithCode(ErrorCodeMissingField).
			WithParam("config.topic")
	}
	if !c.Style.Valid() {
		return ErrInvalidRequest(fmt.Sprintf("unknown interview style %q", c.Style)).
			WithCode(ErrorCodeUnknownEnum).
			WithParam("config.style")
	}
	if !c.ExperienceLevel.Valid() {
		return ErrInvalidRequest(fmt.Sprintf("unknown experience level %q", c.ExperienceLevel)).
			WithCode(ErrorCodeUnknownEnum).
			WithParam("config.experience_level")
	}
	if c.Duration < MinDurationMinutes || c.Duration > MaxDurationMinutes {
		return ErrInvalidRequest(fmt.Sprintf("duration must be between %d and %d minutes, got %d",
			MinDurationMinutes, MaxDurationMinutes, c.Duration)).
			WithCode(ErrorCodeOutOfRange).
			WithParam("config.duration")
	}
	return nil
}

// SessionKey derives the question-flow cache key from topic, style and
// experience level.
func (c InterviewConfig) SessionKey() string {
	return normalizeKey(fmt.Sprintf("%s_%s_%s", c.Topic, c.Style, c.ExperienceLevel))
}

// AnalyticsKey derives the analytics cache key from topic, style and the
// first response timestamp.
func (c InterviewConfig) AnalyticsKey(firstTimestamp int64) string {
	return normalizeKey(fmt.Sprintf("%s_%s_%d", c.Topic, c.Style, firstTimestamp))
}

func normalizeKey(s string) string {
	return strings.ToLower(strings.ReplaceAll(s, " ", "_"))
}

// InterviewResponse is one answered question, produced by the caller.
type InterviewResponse struct {
	QuestionID string `json:"question_id"`
	Question   string `json:"question"`
	Response   string `json:"response"`
	Timestamp  int64  `json:"timestamp"`
	// Duration is the response duration in milliseconds.
	Duration *int64 `json:"duration,omitempty"`
}

// SessionMetadata summarizes a set of responses for overall analysis.
type SessionMetadata struct {
	TotalQuestions      int             `json:"total_questions"`
	TotalDuration       int64           `json:"total_duration"`
	AverageResponseTime float64         `json:"average_response_time"`
	InterviewStyle      Style           `json:"interview_style"`
	ExperienceLevel     ExperienceLevel `json:"experience_level"`
}

// NewSessionMetadata computes session metadata. A missing per-response
// duration counts as zero.
func NewSessionMetadata(responses []InterviewResponse, cfg InterviewConfig) SessionMetadata {
	md := SessionMetadata{
		TotalQuestions:  len(responses),
		InterviewStyle:  cfg.Style,
		ExperienceLevel: cfg.ExperienceLevel,
	}
	if len(responses) == 0 {
		return md
	}

	md.TotalDuration = responses[len(responses)-1].Timestamp - responses[0].Timestamp

	var total int64
	for _, r := range responses {
		if r.Duration != nil {
			total += *r.Duration
		}
	}
	md.AverageResponseTime = float64(total) / float64(len(responses))
	return md
}
