package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"math"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"studyassistant/internal/config"
	"studyassistant/internal/vectorstore"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// letterBagEmbedding is a deterministic offline stand-in for the Ollama
// embedder.
func letterBagEmbedding(_ context.Context, text string) ([]float32, error) {
	vec := make([]float32, 27)
	for _, r := range text {
		switch {
		case r >= 'a' && r <= 'z':
			vec[r-'a']++
		case r >= 'A' && r <= 'Z':
			vec[r-'A']++
		default:
			vec[26]++
		}
	}
	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	norm = math.Sqrt(norm)
	if norm == 0 {
		vec[26] = 1
		return vec, nil
	}
	for i := range vec {
		vec[i] = float32(float64(vec[i]) / norm)
	}
	return vec, nil
}

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()

	cfg := &config.Config{
		UploadDir:    t.TempDir(),
		ChunkSize:    1000,
		ChunkOverlap: 100,
		FrontendURL:  "*",
	}
	store, err := vectorstore.New(t.TempDir(), letterBagEmbedding)
	if err != nil {
		t.Fatalf("vectorstore.New() error: %v", err)
	}

	h := NewHandler(cfg, store, nil, nil)

	router := gin.New()
	router.GET("/", h.HandleRoot)
	router.GET("/api/status", h.HandleStatus)
	router.GET("/api/vectordb-status", h.HandleVectorDBStatus)
	router.POST("/api/upload", h.HandleUpload)
	router.POST("/api/chat", h.HandleChat)
	router.POST("/api/chat-with-citations", h.HandleChatWithCitations)
	router.POST("/api/quiz", h.HandleQuiz)
	router.POST("/api/analyze-quiz-attempt", h.HandleAnalyzeQuizAttempt)
	router.POST("/api/youtube-recommendations", h.HandleYoutubeRecommendations)
	return router
}

func postForm(t *testing.T, router *gin.Engine, path string, form url.Values) map[string]any {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return doRequest(t, router, req)
}

func doRequest(t *testing.T, router *gin.Engine, req *http.Request) map[string]any {
	t.Helper()
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("%s %s returned status %d, want 200", req.Method, req.URL.Path, w.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("response is not JSON: %v\n%s", err, w.Body.String())
	}
	return body
}

func uploadText(t *testing.T, router *gin.Engine, filename, content string) map[string]any {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("CreateFormFile() error: %v", err)
	}
	if _, err := part.Write([]byte(content)); err != nil {
		t.Fatalf("writing form file: %v", err)
	}
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return doRequest(t, router, req)
}

func TestChatBeforeUpload(t *testing.T) {
	router := newTestRouter(t)

	for _, path := range []string{"/api/chat", "/api/chat-with-citations"} {
		body := postForm(t, router, path, url.Values{"query": {"what is osmosis?"}})
		if body["success"] != false {
			t.Errorf("%s before upload should fail, got %v", path, body)
		}
		errMsg, _ := body["error"].(string)
		if !strings.Contains(errMsg, "upload a PDF first") {
			t.Errorf("%s error = %q, want upload instruction", path, errMsg)
		}
	}
}

func TestQuizBeforeUpload(t *testing.T) {
	router := newTestRouter(t)
	body := postForm(t, router, "/api/quiz", url.Values{"topic": {"biology.pdf"}})
	if body["success"] != false {
		t.Fatalf("quiz before upload should fail, got %v", body)
	}
	if errMsg, _ := body["error"].(string); !strings.Contains(errMsg, "Upload PDF") {
		t.Errorf("error = %q, want upload instruction", errMsg)
	}
}

func TestUploadThenChat(t *testing.T) {
	router := newTestRouter(t)

	doc := strings.Repeat("Photosynthesis converts carbon dioxide and water into glucose using light energy from the sun. ", 5)
	body := uploadText(t, router, "biology.txt", doc)
	if body["success"] != true {
		t.Fatalf("upload failed: %v", body)
	}
	if msg, _ := body["message"].(string); !strings.Contains(msg, "Successfully indexed") {
		t.Errorf("message = %q", msg)
	}
	if body["filename"] != "biology.txt" {
		t.Errorf("filename = %v, want biology.txt", body["filename"])
	}

	status := doRequest(t, router, httptest.NewRequest(http.MethodGet, "/api/vectordb-status", nil))
	if status["ready"] != true || status["initialized"] != true {
		t.Errorf("vectordb-status after upload = %v, want ready", status)
	}

	// No Gemini client wired, so this exercises the deterministic fallback.
	chat := postForm(t, router, "/api/chat-with-citations", url.Values{"query": {"What does photosynthesis convert?"}})
	if chat["success"] != true {
		t.Fatalf("chat failed: %v", chat)
	}
	answer, _ := chat["answer"].(string)
	if !strings.Contains(answer, "Photosynthesis converts carbon dioxide") {
		t.Errorf("fallback answer should quote the document, got %q", answer)
	}
	if strings.Contains(answer, "[Source") {
		t.Errorf("answer should not leak source tags: %q", answer)
	}
	citations, ok := chat["citations"].([]any)
	if !ok || len(citations) == 0 {
		t.Errorf("expected citations, got %v", chat["citations"])
	}
}

func TestUploadUnsupportedFormat(t *testing.T) {
	router := newTestRouter(t)
	body := uploadText(t, router, "slides.pptx", "binary stuff")
	if body["success"] != false {
		t.Fatalf("unsupported upload should fail, got %v", body)
	}
	if errMsg, _ := body["error"].(string); !strings.Contains(errMsg, "unsupported file format") {
		t.Errorf("error = %q", errMsg)
	}
}

func TestUploadMissingFile(t *testing.T) {
	router := newTestRouter(t)
	body := postForm(t, router, "/api/upload", url.Values{})
	if body["success"] != false {
		t.Fatalf("upload without file should fail, got %v", body)
	}
}

func TestQuizFallbackGeneration(t *testing.T) {
	router := newTestRouter(t)

	var doc strings.Builder
	for i := 0; i < 6; i++ {
		doc.WriteString("The cell membrane regulates the transport of molecules between the interior of the cell and its external environment. ")
		doc.WriteString("Mitochondria generate most of the chemical energy needed to power the biochemical reactions of the cell. ")
	}
	if body := uploadText(t, router, "cells.txt", doc.String()); body["success"] != true {
		t.Fatalf("upload failed: %v", body)
	}

	body := postForm(t, router, "/api/quiz", url.Values{"topic": {"cells.pdf"}})
	if body["success"] != true {
		t.Fatalf("quiz failed: %v", body)
	}
	quiz, ok := body["quiz"].([]any)
	if !ok || len(quiz) != 3 {
		t.Fatalf("quiz = %v, want 3 questions", body["quiz"])
	}
	for i, raw := range quiz {
		q, ok := raw.(map[string]any)
		if !ok {
			t.Fatalf("question %d is not an object: %v", i, raw)
		}
		options, ok := q["options"].([]any)
		if !ok || len(options) != 4 {
			t.Errorf("question %d options = %v, want 4", i, q["options"])
		}
		ca, ok := q["correctAnswer"].(float64)
		if !ok || ca < 0 || ca > 3 {
			t.Errorf("question %d correctAnswer = %v, want within [0,3]", i, q["correctAnswer"])
		}
	}
}

func TestAnalyzeQuizAttempt(t *testing.T) {
	router := newTestRouter(t)

	quizData := `[
	  {"question": "What does photosynthesis produce inside plants?", "options": ["Salt","Iron","Glucose","Sand"], "correctAnswer": 2},
	  {"question": "Which organelle releases cellular energy reserves?", "options": ["Mitochondria","Nucleus","Ribosome","Vacuole"], "correctAnswer": 0}
	]`
	body := postForm(t, router, "/api/analyze-quiz-attempt", url.Values{
		"quiz_data": {quizData},
		"answers":   {`{"0": "2", "1": 3}`},
	})
	if body["success"] != true {
		t.Fatalf("analyze failed: %v", body)
	}
	strong, ok := body["strong_topics"].([]any)
	if !ok || len(strong) != 1 {
		t.Errorf("strong_topics = %v, want 1 entry", body["strong_topics"])
	}
	weak, ok := body["weak_topics"].([]any)
	if !ok || len(weak) != 1 {
		t.Errorf("weak_topics = %v, want 1 entry", body["weak_topics"])
	}
}

func TestAnalyzeQuizAttemptBadInput(t *testing.T) {
	router := newTestRouter(t)

	tests := []struct {
		name string
		form url.Values
	}{
		{"invalid quiz_data", url.Values{"quiz_data": {"not json"}, "answers": {"{}"}}},
		{"invalid answers", url.Values{"quiz_data": {"[]"}, "answers": {"not json"}}},
		{"missing fields", url.Values{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := postForm(t, router, "/api/analyze-quiz-attempt", tt.form)
			if body["success"] != false {
				t.Errorf("got %v, want failure", body)
			}
		})
	}
}

func TestYoutubeRecommendations(t *testing.T) {
	router := newTestRouter(t)

	body := postForm(t, router, "/api/youtube-recommendations", url.Values{
		"topics": {"thermodynamics, entropy , , heat engines, extra topic"},
	})
	if body["success"] != true {
		t.Fatalf("recommendations failed: %v", body)
	}
	recs, ok := body["recommendations"].([]any)
	if !ok || len(recs) != 3 {
		t.Fatalf("recommendations = %v, want 3 (capped)", body["recommendations"])
	}
	first, ok := recs[0].(map[string]any)
	if !ok {
		t.Fatalf("recommendation is not an object: %v", recs[0])
	}
	if first["topic"] != "thermodynamics" {
		t.Errorf("topic = %v", first["topic"])
	}
	searchURL, _ := first["search_url"].(string)
	if !strings.HasPrefix(searchURL, "https://www.youtube.com/results?search_query=") {
		t.Errorf("search_url = %q", searchURL)
	}
	if !strings.Contains(searchURL, "tutorial") {
		t.Errorf("search_url should carry the suggested query, got %q", searchURL)
	}
	if videos, ok := first["videos"].([]any); !ok || len(videos) != 0 {
		t.Errorf("videos = %v, want empty list", first["videos"])
	}
}

func TestYoutubeRecommendationsNoTopics(t *testing.T) {
	router := newTestRouter(t)
	body := postForm(t, router, "/api/youtube-recommendations", url.Values{"topics": {" , ,"}})
	if body["success"] != false {
		t.Fatalf("got %v, want failure", body)
	}
	if body["error"] != "No topics provided" {
		t.Errorf("error = %v", body["error"])
	}
}

func TestStatusEndpoints(t *testing.T) {
	router := newTestRouter(t)

	root := doRequest(t, router, httptest.NewRequest(http.MethodGet, "/", nil))
	if root["gemini_enabled"] != false {
		t.Errorf("gemini_enabled = %v, want false", root["gemini_enabled"])
	}
	if root["vector_db_initialized"] != false {
		t.Errorf("vector_db_initialized = %v, want false", root["vector_db_initialized"])
	}

	status := doRequest(t, router, httptest.NewRequest(http.MethodGet, "/api/status", nil))
	if status["api"] != "running" {
		t.Errorf("api = %v", status["api"])
	}
	if status["gemini"] != "disabled (fallback mode)" {
		t.Errorf("gemini = %v", status["gemini"])
	}
}
