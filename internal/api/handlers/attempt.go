package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"

	"studyassistant/internal/analyzer"
	"studyassistant/internal/models"
)

// HandleAnalyzeQuizAttempt scores a submitted quiz attempt into weak and
// strong topic buckets. quiz_data and answers arrive as JSON-encoded form
// fields.
func (h *Handler) HandleAnalyzeQuizAttempt(c *gin.Context) {
	var questions []models.QuizQuestion
	if err := json.Unmarshal([]byte(c.PostForm("quiz_data")), &questions); err != nil {
		fail(c, "invalid quiz_data: "+err.Error())
		return
	}

	var answers map[string]any
	if err := json.Unmarshal([]byte(c.PostForm("answers")), &answers); err != nil {
		fail(c, "invalid answers: "+err.Error())
		return
	}

	weak, strong := analyzer.Analyze(questions, answers)
	c.JSON(http.StatusOK, gin.H{
		"success":       true,
		"weak_topics":   weak,
		"strong_topics": strong,
	})
}
