package studyrun

import "fmt"

// TopicSuggester fills a generated week's suggested-topics list. The default
// is a fixed rotation; callers can inject a smarter strategy.
type TopicSuggester interface {
	SuggestTopics(weekNumber int, goal GoalType) []string
}

type goalTopicSuggester struct{}

var topicPools = map[GoalType][]string{
	GoalAGrade: {
		"Rework the hardest lecture examples",
		"Past exam papers under time pressure",
		"Summarize each chapter in your own words",
		"Teach the trickiest concept to someone else",
	},
	GoalPass: {
		"Core definitions and formulas",
		"Solved examples from the course notes",
		"Previous exam questions, open book",
		"Flashcard review of key terms",
	},
	GoalCatchUp: {
		"Skim missed lectures and note gaps",
		"Redo the assignments you skipped",
		"Office hours questions list",
		"Short daily recap of the backlog",
	},
	GoalCustom: {
		"Review this week's material",
		"Practice problems",
		"Summary notes",
		"Self-test",
	},
}

func (goalTopicSuggester) SuggestTopics(weekNumber int, goal GoalType) []string {
	pool := topicPools[goal]
	if len(pool) == 0 {
		pool = topicPools[GoalCustom]
	}
	// Rotate through the pool so consecutive weeks don't repeat verbatim.
	topics := make([]string, 0, 3)
	for i := 0; i < 3; i++ {
		topics = append(topics, pool[(weekNumber-1+i)%len(pool)])
	}
	topics = append(topics, fmt.Sprintf("Week %d checkpoint review", weekNumber))
	return topics
}
