package composer

import (
	"reflect"
	"strings"
	"testing"

	"studyassistant/internal/models"
)

const validQuizJSON = `[
  {"question": "What is water made of?", "options": ["H2O", "CO2", "NaCl", "O3"], "correctAnswer": 0, "explanation": "Water is H2O."},
  {"question": "What is salt?", "options": ["H2O", "NaCl", "CO2", "O3"], "correctAnswer": 1, "explanation": "Salt is NaCl."}
]`

func TestParseQuizResponse(t *testing.T) {
	tests := []struct {
		name string
		text string
		want int
	}{
		{"plain array", validQuizJSON, 2},
		{"fenced array", "```json\n" + validQuizJSON + "\n```", 2},
		{"array with surrounding prose", "Here is your quiz:\n" + validQuizJSON + "\nEnjoy!", 2},
		{"garbage", "I cannot generate a quiz right now.", 0},
		{"empty array", "[]", 0},
		{"object not array", `{"question": "q"}`, 0},
		{"missing correctAnswer key", `[{"question": "q", "options": ["a","b","c","d"]}]`, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseQuizResponse(tt.text)
			if len(got) != tt.want {
				t.Errorf("ParseQuizResponse() returned %d questions, want %d", len(got), tt.want)
			}
		})
	}
}

func TestParseQuizResponseFields(t *testing.T) {
	got := ParseQuizResponse(validQuizJSON)
	if got == nil {
		t.Fatal("expected parsed quiz, got nil")
	}
	first := got[0]
	if first.Question != "What is water made of?" {
		t.Errorf("question = %q", first.Question)
	}
	if len(first.Options) != 4 || first.Options[0] != "H2O" {
		t.Errorf("options = %v", first.Options)
	}
	if first.CorrectAnswer != 0 {
		t.Errorf("correctAnswer = %d, want 0", first.CorrectAnswer)
	}
	if first.Type != "mcq" {
		t.Errorf("type = %q, want mcq", first.Type)
	}
}

func TestParseQuizResponseStringCorrectAnswer(t *testing.T) {
	got := ParseQuizResponse(`[{"question": "q", "options": ["a","b","c","d"], "correctAnswer": "2"}]`)
	if got == nil {
		t.Fatal("expected parsed quiz, got nil")
	}
	if got[0].CorrectAnswer != 2 {
		t.Errorf("correctAnswer = %d, want 2", got[0].CorrectAnswer)
	}
}

func TestNormalizeQuiz(t *testing.T) {
	input := []models.QuizQuestion{
		{Question: "too few options", Options: []string{"only one"}, CorrectAnswer: 0},
		{Question: "too many options", Options: []string{"a", "b", "c", "d", "e", "f"}, CorrectAnswer: 5},
		{Question: "negative answer", Options: []string{"a", "b", "c", "d"}, CorrectAnswer: -1},
		{Options: []string{"a", "b", "c", "d"}, CorrectAnswer: 2, Explanation: "kept"},
	}

	got := NormalizeQuiz(input)
	if len(got) != len(input) {
		t.Fatalf("got %d questions, want %d", len(got), len(input))
	}
	for i, q := range got {
		if len(q.Options) != 4 {
			t.Errorf("question %d has %d options, want 4", i, len(q.Options))
		}
		if q.CorrectAnswer < 0 || q.CorrectAnswer > 3 {
			t.Errorf("question %d correctAnswer = %d, want within [0,3]", i, q.CorrectAnswer)
		}
		if q.Type != "mcq" {
			t.Errorf("question %d type = %q, want mcq", i, q.Type)
		}
		if q.Explanation == "" {
			t.Errorf("question %d has empty explanation", i)
		}
	}

	if got[0].Options[1] != "Option B" {
		t.Errorf("padded option = %q, want Option B", got[0].Options[1])
	}
	if got[1].CorrectAnswer != 1 {
		t.Errorf("correctAnswer 5 should wrap to 1, got %d", got[1].CorrectAnswer)
	}
	if got[2].CorrectAnswer != 3 {
		t.Errorf("correctAnswer -1 should wrap to 3, got %d", got[2].CorrectAnswer)
	}
	if got[3].Question != "Question unavailable" {
		t.Errorf("empty question should default, got %q", got[3].Question)
	}
}

func TestFallbackQuizFromSentences(t *testing.T) {
	sentence := "The process of photosynthesis transforms carbon dioxide and water into glucose using energy captured from sunlight by chlorophyll"
	context := strings.Join([]string{
		sentence + " inside the chloroplasts of plant cells",
		"Cellular respiration then breaks down that glucose to release usable chemical energy in the form of adenosine triphosphate molecules",
		"The light-dependent reactions occur in the thylakoid membranes while the Calvin cycle takes place within the surrounding stroma region",
	}, ". ") + "."

	quiz := FallbackQuiz(context)
	if len(quiz) != 3 {
		t.Fatalf("got %d questions, want 3", len(quiz))
	}
	for i, q := range quiz {
		if q.CorrectAnswer != i {
			t.Errorf("question %d correctAnswer = %d, want %d", i, q.CorrectAnswer, i)
		}
		if len(q.Options) != 4 {
			t.Errorf("question %d has %d options, want 4", i, len(q.Options))
		}
	}
	if !strings.HasPrefix(quiz[0].Options[0], sentence[:90]) {
		t.Errorf("first correct option should come from the first sentence, got %q", quiz[0].Options[0])
	}

	if again := FallbackQuiz(context); !reflect.DeepEqual(again, quiz) {
		t.Error("FallbackQuiz is not deterministic")
	}
}

func TestFallbackQuizGenericOnThinContext(t *testing.T) {
	quiz := FallbackQuiz("Too short to extract anything useful.")
	if len(quiz) != 3 {
		t.Fatalf("got %d questions, want 3", len(quiz))
	}
	if quiz[0].Question != "What is the main topic discussed in this document?" {
		t.Errorf("thin context should produce the generic quiz, got %q", quiz[0].Question)
	}
}

func TestFallbackQuizSkipsSolutionLines(t *testing.T) {
	filler := "This filler sentence describes an entirely unrelated biological mechanism in considerable detail for the quiz builder"
	context := strings.Join([]string{
		"Solution to exercise four requires applying the quadratic formula with coefficients drawn from the original problem statement above",
		filler + " one",
		filler + " two",
		filler + " three",
	}, ". ") + "."

	quiz := FallbackQuiz(context)
	for i, q := range quiz {
		for _, opt := range q.Options {
			if strings.Contains(opt, "Solution to exercise") {
				t.Errorf("question %d used a solution line as an option: %q", i, opt)
			}
		}
	}
}

func TestNormalizeContext(t *testing.T) {
	long := strings.Repeat("word ", 1000)
	got := NormalizeContext("line one\nline two\n" + long)
	if strings.Contains(got, "\n") {
		t.Error("newlines should be collapsed")
	}
	if len(got) > 2500 {
		t.Errorf("context length = %d, want <= 2500", len(got))
	}
}

func TestBuildQuizPrompt(t *testing.T) {
	got := BuildQuizPrompt("the krebs cycle")
	if !strings.Contains(got, "the krebs cycle") {
		t.Error("prompt should embed the context")
	}
	if !strings.Contains(got, "exactly 3 multiple-choice questions") {
		t.Error("prompt should pin the question count")
	}
}
