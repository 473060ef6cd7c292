package agent

import (
	"context"
	"strings"

	"github.com/sandeep066/aceInterview/internal/domain"
	"github.com/sandeep066/aceInterview/internal/llm"
)

// TopicInput is what the topic agent analyzes.
type TopicInput struct {
	Topic           string                 `json:"topic"`
	Style           domain.Style           `json:"style"`
	ExperienceLevel domain.ExperienceLevel `json:"experience_level"`
	CompanyName     string                 `json:"company_name,omitempty"`
}

// TopicInputFor builds the topic agent input from an interview config.
func TopicInputFor(cfg domain.InterviewConfig) TopicInput {
	return TopicInput{
		Topic:           cfg.Topic,
		Style:           cfg.Style,
		ExperienceLevel: cfg.ExperienceLevel,
		CompanyName:     cfg.CompanyName,
	}
}

// TopicContext is the topic agent's memory.
type TopicContext struct {
	AnalysisType     string                 `json:"analysis_type"`
	InterviewContext domain.InterviewConfig `json:"interview_context"`
}

// TopicAgent analyzes an interview topic into concepts and focus areas.
type TopicAgent struct {
	base
	memory[TopicContext]
}

// NewTopicAgent creates a topic agent.
func NewTopicAgent(model llm.Model, opts ...Option) *TopicAgent {
	o := newOptions(opts)
	return &TopicAgent{base: base{
		name:   "topic_analysis",
		system: topicSystemPrompt,
		model:  model,
		logger: o.logger,
	}}
}

// Analyze returns the topic analysis for cfg.
func (a *TopicAgent) Analyze(ctx context.Context, cfg domain.InterviewConfig) (domain.TopicAnalysis, Source) {
	input := TopicInputFor(cfg)
	tc := TopicContext{AnalysisType: "topic_analysis", InterviewContext: cfg}
	a.remember(tc)

	return execute(ctx, &a.base, preparePrompt(tc, input), func() domain.TopicAnalysis {
		return TopicFallback(input)
	})
}

type topicProfile struct {
	mainConcepts      []string
	skills            []string
	technologies      []string
	focusAreas        []string
	relevanceKeywords []string
}

// topicProfiles is matched in order against the lowercased topic.
var topicProfiles = []struct {
	key     string
	profile topicProfile
}{
	{"frontend", topicProfile{
		mainConcepts:      []string{"User Interface", "User Experience", "Web Development", "Client-side Programming"},
		skills:            []string{"HTML", "CSS", "JavaScript", "React", "Vue", "Angular"},
		technologies:      []string{"React", "Vue.js", "Angular", "TypeScript", "Webpack", "Sass"},
		focusAreas:        []string{"Component Design", "State Management", "Performance Optimization", "Responsive Design"},
		relevanceKeywords: []string{"component", "state", "props", "DOM", "CSS", "responsive", "performance"},
	}},
	{"backend", topicProfile{
		mainConcepts:      []string{"Server-side Development", "API Design", "Database Management", "System Architecture"},
		skills:            []string{"Node.js", "Python", "Java", "SQL", "API Development", "Database Design"},
		technologies:      []string{"Express.js", "Django", "Spring Boot", "PostgreSQL", "MongoDB", "Redis"},
		focusAreas:        []string{"API Design", "Database Optimization", "Security", "Scalability"},
		relevanceKeywords: []string{"API", "database", "server", "authentication", "security", "scalability"},
	}},
	{"javascript", topicProfile{
		mainConcepts:      []string{"Programming Fundamentals", "Asynchronous Programming", "Object-Oriented Programming"},
		skills:            []string{"ES6+", "Async/Await", "Promises", "Closures", "Prototypes"},
		technologies:      []string{"Node.js", "React", "Express", "TypeScript"},
		focusAreas:        []string{"Language Features", "Best Practices", "Performance", "Modern JavaScript"},
		relevanceKeywords: []string{"function", "async", "promise", "closure", "prototype", "ES6", "arrow function"},
	}},
}

var genericTopicProfile = topicProfile{
	mainConcepts:      []string{"Technical Knowledge", "Problem Solving", "Best Practices"},
	skills:            []string{"Programming", "Debugging", "Testing", "Documentation"},
	technologies:      []string{"Version Control", "IDEs", "Testing Frameworks"},
	focusAreas:        []string{"Core Concepts", "Practical Application", "Industry Standards"},
	relevanceKeywords: []string{"code", "programming", "development", "software", "technical"},
}

// TopicFallback builds a topic analysis from the curated profile table.
func TopicFallback(in TopicInput) domain.TopicAnalysis {
	p := genericTopicProfile
	topic := strings.ToLower(in.Topic)
	for _, tp := range topicProfiles {
		if strings.Contains(topic, tp.key) {
			p = tp.profile
			break
		}
	}

	style := in.Style
	if style == "" {
		style = domain.StyleTechnical
	}

	return domain.TopicAnalysis{
		MainConcepts:       clone(p.mainConcepts),
		Skills:             clone(p.skills),
		Technologies:       clone(p.technologies),
		FocusAreas:         clone(p.focusAreas),
		Complexity:         in.ExperienceLevel.Complexity(),
		QuestionCategories: []string{string(style), "fundamentals", "practical"},
		RelevanceKeywords:  clone(p.relevanceKeywords),
	}
}

func clone(s []string) []string {
	return append([]string(nil), s...)
}
