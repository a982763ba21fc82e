package handlers

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"

	"studyassistant/internal/models"
)

// HandleYoutubeRecommendations builds YouTube search suggestions for a
// comma-separated list of topics. No video lookup is performed; the videos
// list is always empty.
func (h *Handler) HandleYoutubeRecommendations(c *gin.Context) {
	var topics []string
	for _, topic := range strings.Split(c.PostForm("topics"), ",") {
		if topic = strings.TrimSpace(topic); topic != "" {
			topics = append(topics, topic)
		}
	}
	if len(topics) == 0 {
		fail(c, "No topics provided")
		return
	}
	if len(topics) > 3 {
		topics = topics[:3]
	}

	recommendations := make([]models.Recommendation, 0, len(topics))
	for _, topic := range topics {
		suggested := topic + " tutorial explanation"
		recommendations = append(recommendations, models.Recommendation{
			Topic:          topic,
			SearchURL:      "https://www.youtube.com/results?search_query=" + url.QueryEscape(suggested),
			SuggestedQuery: suggested,
			Videos:         []string{},
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"success":         true,
		"recommendations": recommendations,
	})
}
