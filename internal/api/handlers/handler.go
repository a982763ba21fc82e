package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"studyassistant/internal/config"
	"studyassistant/internal/gemini"
	"studyassistant/internal/r2"
	"studyassistant/internal/vectorstore"
	"studyassistant/internal/youtube"
)

// Index-unavailable messages surfaced to the user as actionable instructions.
const (
	errNoUploadChat = "No PDF has been uploaded yet. Please upload a PDF first from the Library page."
	errNoUploadQuiz = "Please upload a PDF first! Click the 'Upload PDF' button to add your coursebook."
)

// Handler contains the API handlers' dependencies. Gemini and Archive may be
// nil: a nil Gemini client puts every composer on its fallback path, a nil
// Archive client disables upload archival.
type Handler struct {
	Cfg     *config.Config
	Store   *vectorstore.Store
	Gemini  *gemini.Client
	Archive *r2.Client
	Youtube *youtube.Client
}

// NewHandler creates a new Handler.
func NewHandler(cfg *config.Config, store *vectorstore.Store, geminiClient *gemini.Client, archive *r2.Client) *Handler {
	return &Handler{
		Cfg:     cfg,
		Store:   store,
		Gemini:  geminiClient,
		Archive: archive,
		Youtube: youtube.New(),
	}
}

// fail converts any failure into the uniform error payload. Every endpoint
// returns HTTP 200; the success flag is the only error signal.
func fail(c *gin.Context, message string) {
	c.JSON(http.StatusOK, gin.H{"success": false, "error": message})
}

// HandleRoot reports liveness and basic configuration.
func (h *Handler) HandleRoot(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":                "AI Study Assistant API",
		"version":               "1.0",
		"gemini_enabled":        h.Gemini != nil,
		"vector_db_initialized": h.Store.Ready(),
		"message":               "Get free Gemini API key at: https://makersuite.google.com/app/apikey",
	})
}

// HandleStatus reports API status and configuration.
func (h *Handler) HandleStatus(c *gin.Context) {
	geminiStatus := "disabled (fallback mode)"
	if h.Gemini != nil {
		geminiStatus = "enabled"
	}
	vectorStatus := "not initialized (upload PDF first)"
	if h.Store.Ready() {
		vectorStatus = "initialized"
	}
	c.JSON(http.StatusOK, gin.H{
		"api":        "running",
		"gemini":     geminiStatus,
		"vector_db":  vectorStatus,
		"upload_dir": h.Cfg.UploadDir,
		"db_dir":     h.Cfg.DataDir,
	})
}
