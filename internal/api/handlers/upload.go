package handlers

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"studyassistant/internal/ingest"
)

// HandleUpload ingests an uploaded document: extract, chunk, rebuild the
// vector index. A new upload replaces the index used by all subsequent
// queries system-wide.
func (h *Handler) HandleUpload(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		fail(c, "no file provided")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		fail(c, fmt.Sprintf("failed to open uploaded file: %v", err))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		fail(c, fmt.Sprintf("failed to read uploaded file: %v", err))
		return
	}

	filename := filepath.Base(fileHeader.Filename)
	if err := h.saveUpload(filename, data); err != nil {
		log.Warn().Err(err).Str("filename", filename).Msg("Failed to save upload to disk")
	}

	h.ingestDocument(c, filename, data)
}

// HandleUploadYoutube fetches a video transcript and ingests it like an
// uploaded document.
func (h *Handler) HandleUploadYoutube(c *gin.Context) {
	videoURL := strings.TrimSpace(c.PostForm("url"))
	if videoURL == "" {
		fail(c, "no url provided")
		return
	}

	transcript, title, err := h.Youtube.Transcript(c.Request.Context(), videoURL)
	if err != nil {
		fail(c, fmt.Sprintf("failed to fetch transcript: %v", err))
		return
	}

	h.ingestDocument(c, title+".txt", []byte(transcript))
}

// HandleVectorDBStatus reports whether the vector index is ready.
func (h *Handler) HandleVectorDBStatus(c *gin.Context) {
	ready := h.Store.Ready()
	c.JSON(http.StatusOK, gin.H{
		"initialized": ready,
		"ready":       ready,
	})
}

func (h *Handler) ingestDocument(c *gin.Context, filename string, data []byte) {
	result, err := ingest.Process(filename, data, h.Cfg.ChunkSize, h.Cfg.ChunkOverlap)
	if err != nil {
		log.Error().Err(err).Str("filename", filename).Msg("Extraction failed")
		fail(c, err.Error())
		return
	}
	if len(result.Chunks) == 0 {
		fail(c, fmt.Sprintf("no text could be extracted from %s", filename))
		return
	}

	if err := h.Store.Rebuild(c.Request.Context(), result.Chunks); err != nil {
		log.Error().Err(err).Msg("Index rebuild failed")
		fail(c, fmt.Sprintf("failed to index document: %v", err))
		return
	}

	if h.Archive != nil {
		if url, err := h.Archive.Archive(c.Request.Context(), filename, bytes.NewReader(data)); err != nil {
			log.Warn().Err(err).Str("filename", filename).Msg("Archival failed")
		} else {
			log.Info().Str("url", url).Msg("Archived upload")
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"message":     fmt.Sprintf("Successfully indexed %d chunks from %s", len(result.Chunks), filename),
		"filename":    filename,
		"text_length": len(result.FullText),
	})
}

func (h *Handler) saveUpload(filename string, data []byte) error {
	if err := os.MkdirAll(h.Cfg.UploadDir, 0o755); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(h.Cfg.UploadDir, filename), data, 0o644)
}
