package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"studyassistant/internal/composer"
	"studyassistant/internal/models"
)

// HandleChatWithCitations answers a free-form question about the indexed
// document with source citations. Provider failures never propagate: they
// always degrade to the deterministic fallback composer.
func (h *Handler) HandleChatWithCitations(c *gin.Context) {
	query := strings.TrimSpace(c.PostForm("query"))
	if query == "" {
		fail(c, "query is required")
		return
	}

	if !h.Store.Ready() {
		fail(c, errNoUploadChat)
		return
	}

	results, err := h.Store.Query(c.Request.Context(), query, 6)
	if err != nil {
		log.Error().Err(err).Msg("Retrieval failed")
		fail(c, "Error processing your question: "+err.Error())
		return
	}

	if len(results) == 0 {
		c.JSON(http.StatusOK, gin.H{
			"success":   true,
			"answer":    composer.NoRelevantInfoAnswer,
			"citations": []models.Citation{},
		})
		return
	}

	unique := composer.Deduplicate(results)
	contextBlock, citations := composer.BuildContext(unique)

	var answer string
	if h.Gemini != nil {
		text, err := h.Gemini.GenerateAnswer(c.Request.Context(), composer.BuildAnswerPrompt(contextBlock, query))
		if err != nil {
			log.Warn().Err(err).Msg("Gemini chat failed, using fallback answer")
			answer = composer.FallbackAnswer(unique)
		} else {
			answer = composer.PadShortAnswer(strings.TrimSpace(text), unique[0])
		}
	} else {
		answer = composer.FallbackAnswer(unique)
	}

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"query":     query,
		"answer":    composer.StripSourceTags(answer),
		"citations": citations,
	})
}

// HandleChat is the legacy chat endpoint: same answer path, no citations.
func (h *Handler) HandleChat(c *gin.Context) {
	query := strings.TrimSpace(c.PostForm("query"))
	if query == "" {
		fail(c, "query is required")
		return
	}

	if !h.Store.Ready() {
		fail(c, errNoUploadChat)
		return
	}

	results, err := h.Store.Query(c.Request.Context(), query, 3)
	if err != nil {
		log.Error().Err(err).Msg("Retrieval failed")
		fail(c, err.Error())
		return
	}
	if len(results) == 0 {
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"query":   query,
			"answer":  composer.NoRelevantInfoAnswer,
		})
		return
	}

	var contents []string
	for _, chunk := range results {
		contents = append(contents, chunk.Content)
	}
	contextBlock := strings.Join(contents, "\n\n")

	var answer string
	if h.Gemini != nil {
		text, err := h.Gemini.GenerateAnswer(c.Request.Context(), composer.BuildLegacyChatPrompt(contextBlock, query))
		if err != nil {
			log.Warn().Err(err).Msg("Gemini chat failed, using excerpt answer")
			answer = excerptAnswer(results[0])
		} else {
			answer = text
		}
	} else {
		answer = excerptAnswer(results[0])
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"query":   query,
		"answer":  answer,
	})
}

func excerptAnswer(top models.RetrievedChunk) string {
	excerpt := top.Content
	if len(excerpt) > 500 {
		excerpt = excerpt[:500]
	}
	return "Based on the document:\n\n" + excerpt + "..."
}
