package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"studyassistant/internal/api"
	"studyassistant/internal/api/handlers"
	"studyassistant/internal/config"
	"studyassistant/internal/embedding"
	"studyassistant/internal/gemini"
	"studyassistant/internal/r2"
	"studyassistant/internal/vectorstore"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	if err := godotenv.Load(); err != nil {
		log.Warn().Msg(".env file not found, relying on system environment variables")
	}
	cfg := config.Load()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	embedFunc, err := embedding.NewOllamaFunc(cfg.OllamaURL, cfg.EmbeddingModel)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize embedding function")
	}

	store, err := vectorstore.New(cfg.DataDir, embedFunc)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.DataDir).Msg("Failed to open vector store")
	}

	var geminiClient *gemini.Client
	if cfg.GeminiAPIKey != "" {
		geminiClient, err = gemini.NewClient(ctx, cfg.GeminiAPIKey)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize Gemini client")
		}
		defer geminiClient.Close()
		log.Info().Msg("Gemini enabled")
	} else {
		log.Warn().Msg("GEMINI_API_KEY not set, running in fallback mode")
	}

	archive, err := r2.NewClient(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize R2 client")
	}
	if archive != nil {
		log.Info().Str("bucket", cfg.R2Bucket).Msg("Upload archival enabled")
	}

	router := gin.Default()
	handler := handlers.NewHandler(cfg, store, geminiClient, archive)
	api.SetupRoutes(router, handler, cfg.FrontendURL)

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Msg("Server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(ctx, 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited properly")
}
