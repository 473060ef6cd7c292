package agent

import (
	"context"
	"fmt"

	"github.com/sandeep066/aceInterview/internal/domain"
	"github.com/sandeep066/aceInterview/internal/llm"
)

// QuestionInput is what the question agent generates from.
type QuestionInput struct {
	Spec     domain.QuestionSpec    `json:"question_spec"`
	Analysis domain.TopicAnalysis   `json:"topic_analysis"`
	Config   domain.InterviewConfig `json:"config"`
}

// QuestionContext is the question agent's memory.
type QuestionContext struct {
	GenerationType string       `json:"generation_type"`
	Topic          string       `json:"topic"`
	Style          domain.Style `json:"style"`
}

// QuestionAgent writes one interview question from a specification.
type QuestionAgent struct {
	base
	memory[QuestionContext]
	intn func(n int) int
}

// NewQuestionAgent creates a question agent.
func NewQuestionAgent(model llm.Model, opts ...Option) *QuestionAgent {
	o := newOptions(opts)
	return &QuestionAgent{
		base: base{
			name:   "question_generation",
			system: questionSystemPrompt,
			model:  model,
			logger: o.logger,
		},
		intn: o.intn,
	}
}

// Generate returns a question for in.
func (a *QuestionAgent) Generate(ctx context.Context, in QuestionInput) (domain.QuestionResult, Source) {
	generationType := "interview_question"
	if in.Spec.Context != nil {
		generationType = "follow_up_question"
	}
	qc := QuestionContext{GenerationType: generationType, Topic: in.Config.Topic, Style: in.Config.Style}
	a.remember(qc)

	return execute(ctx, &a.base, preparePrompt(qc, in), func() domain.QuestionResult {
		return QuestionFallback(in.Config, a.intn)
	})
}

// questionTemplates holds format strings taking the topic, keyed by style
// then difficulty.
var questionTemplates = map[domain.Style]map[domain.Difficulty][]string{
	domain.StyleTechnical: {
		domain.DifficultyEasy: {
			"What are the basic concepts of %s?",
			"How would you explain %s to a beginner?",
			"What tools do you use for %s development?",
		},
		domain.DifficultyMedium: {
			"Describe a challenging problem you solved using %s.",
			"How do you optimize performance in %s applications?",
			"What are the best practices for %s development?",
		},
		domain.DifficultyHard: {
			"Design a scalable architecture for a %s system.",
			"How would you handle complex state management in %s?",
			"Explain advanced concepts and patterns in %s.",
		},
	},
	domain.StyleHR: {
		domain.DifficultyEasy: {
			"Why are you interested in %s?",
			"What motivates you to work with %s?",
			"How do you stay updated with %s trends?",
		},
		domain.DifficultyMedium: {
			"Describe a project where you used %s successfully.",
			"How do you handle challenges when working with %s?",
			"What's your approach to learning new %s technologies?",
		},
		domain.DifficultyHard: {
			"How would you lead a team working on %s projects?",
			"What's your vision for the future of %s?",
			"How do you balance innovation and stability in %s work?",
		},
	},
	domain.StyleBehavioral: {
		domain.DifficultyEasy: {
			"Tell me about a time you learned %s.",
			"Describe your experience working with %s.",
			"How do you approach %s problems?",
		},
		domain.DifficultyMedium: {
			"Tell me about a challenging %s project you worked on.",
			"Describe a time you had to debug a complex %s issue.",
			"How did you handle a situation where %s requirements changed?",
		},
		domain.DifficultyHard: {
			"Tell me about a time you had to make a critical decision about %s architecture.",
			"Describe how you influenced others to adopt %s best practices.",
			"How did you handle a major %s system failure?",
		},
	},
}

// FallbackQuestions returns every fallback question for cfg's style and
// experience bucket, with the topic filled in.
func FallbackQuestions(cfg domain.InterviewConfig) []string {
	byDifficulty, ok := questionTemplates[cfg.Style]
	if !ok {
		byDifficulty = questionTemplates[domain.StyleTechnical]
	}
	templates := byDifficulty[cfg.ExperienceLevel.Difficulty()]

	topic := cfg.Topic
	if topic == "" {
		topic = "Technology"
	}
	out := make([]string, len(templates))
	for i, t := range templates {
		out[i] = fmt.Sprintf(t, topic)
	}
	return out
}

// QuestionFallback picks one templated question uniformly at random using
// intn.
func QuestionFallback(cfg domain.InterviewConfig, intn func(n int) int) domain.QuestionResult {
	questions := FallbackQuestions(cfg)
	difficulty := cfg.ExperienceLevel.Difficulty()

	style := cfg.Style
	if style == "" {
		style = domain.StyleTechnical
	}

	return domain.QuestionResult{
		Question: questions[intn(len(questions))],
		Metadata: domain.QuestionMetadata{
			Category:      string(style),
			Difficulty:    difficulty,
			FocusArea:     "General Knowledge",
			Concepts:      []string{"Core Concepts"},
			QuestionType:  domain.QuestionTheoretical,
			EstimatedTime: "5 minutes",
		},
		Reasoning: fmt.Sprintf("Fallback question for %s interview at %s level", style, difficulty),
	}
}
