package composer

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"studyassistant/internal/models"
)

const maxQuizContext = 2500

const quizPromptTemplate = `You are creating an educational quiz for students based on their textbook.

TEXTBOOK EXCERPT:
%s

Create exactly 3 multiple-choice questions testing understanding of the concepts above.

REQUIREMENTS:
- Questions must be based on the textbook content
- Test comprehension, not just recall
- Provide clear explanations
- 4 options per question

Return ONLY this JSON array (no extra text):
[
  {
    "question": "According to the text, what is...",
    "options": ["Answer from text", "Incorrect", "Incorrect", "Incorrect"],
    "correctAnswer": 0,
    "explanation": "The text states that..."
  },
  {
    "question": "Which statement is true based on the content?",
    "options": ["Incorrect", "Answer from text", "Incorrect", "Incorrect"],
    "correctAnswer": 1,
    "explanation": "This is explained in the passage..."
  },
  {
    "question": "What concept is described in the text?",
    "options": ["Incorrect", "Incorrect", "Answer from text", "Incorrect"],
    "correctAnswer": 2,
    "explanation": "As mentioned, this refers to..."
  }
]`

var (
	arrayPattern = regexp.MustCompile(`(?s)\[.*\]`)

	genericOptions = []string{"Option A", "Option B", "Option C", "Option D"}
)

// NormalizeContext collapses newlines and bounds the context passed to the
// quiz prompt.
func NormalizeContext(context string) string {
	clean := strings.TrimSpace(strings.ReplaceAll(context, "\n", " "))
	if len(clean) > maxQuizContext {
		clean = clean[:maxQuizContext]
	}
	return clean
}

// BuildQuizPrompt fills the quiz template with normalized context.
func BuildQuizPrompt(context string) string {
	return fmt.Sprintf(quizPromptTemplate, NormalizeContext(context))
}

// ParseQuizResponse extracts quiz questions from a raw provider response.
// It strips code fences, pulls out the first bracketed array, decodes it, and
// accepts the result only if it is a non-empty array whose first element has
// the question, options and correctAnswer keys. Any failure returns nil,
// which callers treat as "generation unavailable".
func ParseQuizResponse(text string) []models.QuizQuestion {
	cleaned := strings.ReplaceAll(text, "```json", "")
	cleaned = strings.ReplaceAll(cleaned, "```", "")
	cleaned = strings.TrimSpace(cleaned)

	match := arrayPattern.FindString(cleaned)
	if match == "" {
		return nil
	}

	var items []map[string]json.RawMessage
	if err := json.Unmarshal([]byte(match), &items); err != nil {
		return nil
	}
	if len(items) == 0 {
		return nil
	}
	for _, key := range []string{"question", "options", "correctAnswer"} {
		if _, ok := items[0][key]; !ok {
			return nil
		}
	}

	questions := make([]models.QuizQuestion, 0, len(items))
	for _, item := range items {
		questions = append(questions, models.QuizQuestion{
			Question:      decodeString(item["question"]),
			Options:       decodeStrings(item["options"]),
			CorrectAnswer: decodeInt(item["correctAnswer"]),
			Explanation:   decodeString(item["explanation"]),
			Type:          "mcq",
		})
	}
	return questions
}

// FallbackQuiz fabricates 3 multiple-choice questions directly from source
// sentences. It is fully deterministic: identical context always yields
// identical questions. The correct option sits at position 0, 1 and 2 for the
// three question slots respectively, mirroring the prompt template's example
// layout.
func FallbackQuiz(context string) []models.QuizQuestion {
	clean := strings.TrimSpace(strings.ReplaceAll(context, "\n", " "))

	var sentences []string
	for _, s := range strings.Split(clean, ".") {
		s = strings.TrimSpace(s)
		if len(s) > 100 &&
			!strings.HasPrefix(s, "Ans") &&
			!strings.HasPrefix(s, "Q.") &&
			!strings.HasPrefix(s, "Page") &&
			!strings.Contains(strings.ToLower(s[:20]), "solution") {
			sentences = append(sentences, s)
		}
	}

	if len(sentences) < 3 {
		sentences = nil
		for _, s := range strings.Split(clean, ".") {
			s = strings.TrimSpace(s)
			if len(s) > 50 {
				sentences = append(sentences, s)
			}
			if len(sentences) == 5 {
				break
			}
		}
	}

	if len(sentences) < 3 {
		return genericQuiz()
	}

	return []models.QuizQuestion{
		{
			Question: "Based on the text, which statement is most accurate?",
			Options: []string{
				truncateOption(sentences[0]),
				"This is not mentioned in the text",
				"The opposite is true",
				"The text does not discuss this",
			},
			CorrectAnswer: 0,
			Explanation:   "This is directly stated in the content: " + truncate(sentences[0], 200),
			Type:          "mcq",
		},
		{
			Question: "According to the material, what is described?",
			Options: []string{
				"An unrelated concept",
				truncateOption(sentences[1]),
				"Something not in the text",
				"A different topic",
			},
			CorrectAnswer: 1,
			Explanation:   "The text explains: " + truncate(sentences[1], 200),
			Type:          "mcq",
		},
		{
			Question: "What information is provided in the content?",
			Options: []string{
				"Incorrect information",
				"Not discussed in the text",
				truncateOption(sentences[2]),
				"Opposite of what's stated",
			},
			CorrectAnswer: 2,
			Explanation:   "From the content: " + truncate(sentences[2], 200),
			Type:          "mcq",
		},
	}
}

// NormalizeQuiz enforces the quiz invariants on questions from either source:
// exactly 4 options per question and a correct answer index in [0,3].
func NormalizeQuiz(questions []models.QuizQuestion) []models.QuizQuestion {
	normalized := make([]models.QuizQuestion, 0, len(questions))
	for _, q := range questions {
		if q.Question == "" {
			q.Question = "Question unavailable"
		}
		for len(q.Options) < 4 {
			q.Options = append(q.Options, genericOptions[len(q.Options)])
		}
		q.Options = q.Options[:4]
		q.CorrectAnswer = ((q.CorrectAnswer % 4) + 4) % 4
		if q.Explanation == "" {
			q.Explanation = "No explanation available"
		}
		q.Type = "mcq"
		normalized = append(normalized, q)
	}
	return normalized
}

func genericQuiz() []models.QuizQuestion {
	return []models.QuizQuestion{
		{
			Question: "What is the main topic discussed in this document?",
			Options: []string{
				"The document discusses educational concepts and principles",
				"Unrelated subject matter",
				"Different topic entirely",
				"Not applicable",
			},
			CorrectAnswer: 0,
			Explanation:   "Based on the available content from the document",
			Type:          "mcq",
		},
		{
			Question: "Which type of content is presented in this material?",
			Options: []string{
				"Fiction narrative",
				"Educational and instructional content",
				"News article",
				"Advertisement",
			},
			CorrectAnswer: 1,
			Explanation:   "The document contains educational information",
			Type:          "mcq",
		},
		{
			Question: "What is the purpose of this document?",
			Options: []string{
				"Entertainment",
				"Marketing",
				"Teaching and learning",
				"Legal documentation",
			},
			CorrectAnswer: 2,
			Explanation:   "This appears to be educational material for learning",
			Type:          "mcq",
		},
	}
}

func truncateOption(s string) string {
	if len(s) > 90 {
		return s[:90] + "..."
	}
	return s
}

func truncate(s string, n int) string {
	if len(s) > n {
		return s[:n]
	}
	return s
}

func decodeString(raw json.RawMessage) string {
	if raw == nil {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return strings.TrimSpace(string(raw))
}

func decodeStrings(raw json.RawMessage) []string {
	if raw == nil {
		return nil
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		return list
	}
	// Tolerate mixed-type arrays from the model.
	var anyList []any
	if err := json.Unmarshal(raw, &anyList); err == nil {
		out := make([]string, 0, len(anyList))
		for _, v := range anyList {
			out = append(out, fmt.Sprint(v))
		}
		return out
	}
	return nil
}

func decodeInt(raw json.RawMessage) int {
	if raw == nil {
		return 0
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return int(f)
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if n, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
			return n
		}
	}
	return 0
}
