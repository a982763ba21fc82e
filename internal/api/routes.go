package api

import (
	"github.com/gin-gonic/gin"

	"studyassistant/internal/api/handlers"
)

// SetupRoutes sets up the API routes
func SetupRoutes(router *gin.Engine, handler *handlers.Handler, frontendURL string) {
	router.Use(CORSMiddleware(frontendURL))

	router.GET("/", handler.HandleRoot)

	api := router.Group("/api")
	{
		api.GET("/status", handler.HandleStatus)
		api.GET("/vectordb-status", handler.HandleVectorDBStatus)

		api.POST("/upload", handler.HandleUpload)
		api.POST("/upload-youtube", handler.HandleUploadYoutube)

		api.POST("/chat", handler.HandleChat)
		api.POST("/chat-with-citations", handler.HandleChatWithCitations)

		api.POST("/quiz", handler.HandleQuiz)
		api.POST("/analyze-quiz-attempt", handler.HandleAnalyzeQuizAttempt)
		api.POST("/youtube-recommendations", handler.HandleYoutubeRecommendations)
	}
}
