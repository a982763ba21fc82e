package analyzer

import (
	"strconv"
	"strings"

	"studyassistant/internal/models"
)

// Analyze scores a quiz attempt into weak and strong topic buckets. answers
// maps the question index (as a string) to the chosen option index; questions
// with no submitted answer are skipped. Topic labels are coarse: two questions
// can collide onto the same derived string.
func Analyze(questions []models.QuizQuestion, answers map[string]any) (weak, strong []string) {
	weak = []string{}
	strong = []string{}
	weakSeen := map[string]bool{}
	strongSeen := map[string]bool{}

	for idx, question := range questions {
		chosen, ok := answerIndex(answers[strconv.Itoa(idx)])
		if !ok {
			continue
		}
		topic := TopicLabel(question.Question)
		if chosen == question.CorrectAnswer {
			if !strongSeen[topic] {
				strongSeen[topic] = true
				strong = append(strong, topic)
			}
		} else {
			if !weakSeen[topic] {
				weakSeen[topic] = true
				weak = append(weak, topic)
			}
		}
	}
	return weak, strong
}

// TopicLabel derives a topic from question text: the first 5 whitespace
// tokens, keeping only tokens longer than 4 characters.
func TopicLabel(question string) string {
	tokens := strings.Fields(question)
	if len(tokens) > 5 {
		tokens = tokens[:5]
	}
	var kept []string
	for _, token := range tokens {
		if len(token) > 4 {
			kept = append(kept, token)
		}
	}
	return strings.Join(kept, " ")
}

// answerIndex coerces a submitted answer to an option index. Clients send
// either JSON numbers or digit strings.
func answerIndex(v any) (int, bool) {
	switch value := v.(type) {
	case float64:
		return int(value), true
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}
}
