package interview

import (
	"fmt"

	"github.com/sandeep066/aceInterview/internal/domain"
)

// BuildSpec derives the question specification for questionNumber. The
// thresholds are fixed: the first question is easy, the second medium, and
// later ones hard unless the candidate is a fresher.
func BuildSpec(analysis domain.TopicAnalysis, cfg domain.InterviewConfig, previousQuestions []string, questionNumber int) domain.QuestionSpec {
	return domain.QuestionSpec{
		Category:     string(cfg.Style),
		Difficulty:   SpecDifficulty(cfg.ExperienceLevel, questionNumber),
		FocusArea:    focusArea(analysis.FocusAreas, questionNumber),
		Concepts:     concepts(analysis.MainConcepts),
		AvoidTopics:  previousQuestions,
		QuestionType: questionType(cfg.Style, questionNumber),
	}
}

// SpecDifficulty is the difficulty of question questionNumber.
func SpecDifficulty(level domain.ExperienceLevel, questionNumber int) domain.Difficulty {
	switch {
	case questionNumber <= 1:
		return domain.DifficultyEasy
	case questionNumber <= 2:
		return domain.DifficultyMedium
	case level == domain.ExperienceFresher:
		return domain.DifficultyMedium
	default:
		return domain.DifficultyHard
	}
}

func focusArea(areas []string, questionNumber int) string {
	if len(areas) == 0 {
		return "General Knowledge"
	}
	i := max(0, min(questionNumber-1, len(areas)-1))
	return areas[i]
}

func concepts(main []string) []string {
	if len(main) == 0 {
		return []string{"Core Concepts"}
	}
	return append([]string(nil), main[:min(2, len(main))]...)
}

func questionType(style domain.Style, questionNumber int) domain.QuestionType {
	switch {
	case style == domain.StyleBehavioral:
		return domain.QuestionScenario
	case style == domain.StyleCaseStudy:
		return domain.QuestionProblemSolving
	case questionNumber > 1:
		return domain.QuestionPractical
	default:
		return domain.QuestionTheoretical
	}
}

// FollowupSpec is the fixed specification for a clarifying question.
func FollowupSpec(question, response string) domain.QuestionSpec {
	return domain.QuestionSpec{
		Category:     "follow-up",
		Difficulty:   domain.DifficultyMedium,
		FocusArea:    "Response Clarification",
		Concepts:     []string{"Follow-up", "Clarification"},
		QuestionType: domain.QuestionPractical,
		Context: &domain.FollowupContext{
			OriginalQuestion: question,
			UserResponse:     response,
		},
	}
}

var cannedQuestions = map[domain.Style][]string{
	domain.StyleTechnical: {
		"What are the key concepts and best practices in %s?",
		"How would you approach solving a complex problem using %s?",
		"Explain the architecture and design patterns you would use for a %s project.",
		"What are the performance considerations when working with %s?",
		"How do you ensure code quality and maintainability in %s development?",
	},
	domain.StyleHR: {
		"Why are you passionate about working with %s?",
		"How do you stay current with developments in %s?",
		"Describe your experience and growth in %s.",
		"What challenges have you faced while working with %s?",
		"How do you see your career developing in the %s field?",
	},
	domain.StyleBehavioral: {
		"Tell me about a successful project you completed using %s.",
		"Describe a time when you had to learn %s quickly for a project.",
		"How did you handle a difficult technical challenge involving %s?",
		"Tell me about a time you had to collaborate with others on a %s project.",
		"Describe how you've improved your %s skills over time.",
	},
}

// FallbackQuestion is the canned question used when the question flow
// cannot be composed at all.
func FallbackQuestion(cfg domain.InterviewConfig, questionNumber int) string {
	list, ok := cannedQuestions[cfg.Style]
	if !ok {
		list = cannedQuestions[domain.StyleTechnical]
	}
	i := max(0, min(questionNumber-1, len(list)-1))
	return fmt.Sprintf(list[i], cfg.Topic)
}
