package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"studyassistant/internal/composer"
	"studyassistant/internal/models"
)

// retryTerms are generic retrieval probes used when the topic itself matches
// nothing in the index.
var retryTerms = []string{"introduction", "chapter", "concept", "definition", "example"}

// HandleQuiz generates a 3-question multiple-choice quiz from indexed
// content. When the provider is unavailable or returns an unusable response,
// questions are fabricated deterministically from source sentences.
func (h *Handler) HandleQuiz(c *gin.Context) {
	topic := strings.TrimSpace(c.PostForm("topic"))
	if topic == "" {
		fail(c, "topic is required")
		return
	}

	if !h.Store.Ready() {
		fail(c, errNoUploadQuiz)
		return
	}

	// Topics often arrive as filenames; clean them into search terms.
	topicClean := strings.NewReplacer(".pdf", "", "_", " ", "-", " ").Replace(topic)

	results, err := h.Store.Query(c.Request.Context(), topicClean, 5)
	if err != nil {
		log.Error().Err(err).Msg("Quiz retrieval failed")
		fail(c, "Could not retrieve PDF content: "+err.Error())
		return
	}
	for _, term := range retryTerms {
		if len(results) > 0 {
			break
		}
		results, _ = h.Store.Query(c.Request.Context(), term, 5)
	}

	var contents []string
	for _, chunk := range results {
		contents = append(contents, chunk.Content)
	}
	contextBlock := strings.Join(contents, "\n\n")
	log.Debug().Int("chunks", len(results)).Int("context_length", len(contextBlock)).Msg("Retrieved quiz context")

	if len(contextBlock) < 100 {
		fail(c, "Not enough content extracted. Please re-upload the PDF.")
		return
	}

	var quiz []models.QuizQuestion
	if h.Gemini != nil {
		raw, err := h.Gemini.GenerateQuiz(c.Request.Context(), composer.BuildQuizPrompt(contextBlock))
		if err != nil {
			log.Warn().Err(err).Msg("Gemini quiz generation failed")
		} else {
			quiz = composer.ParseQuizResponse(raw)
			if quiz == nil {
				log.Warn().Msg("Could not parse Gemini quiz JSON")
			}
		}
	}
	if len(quiz) == 0 {
		log.Info().Msg("Using fallback quiz generation")
		quiz = composer.FallbackQuiz(contextBlock)
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"quiz":    composer.NormalizeQuiz(quiz),
	})
}
