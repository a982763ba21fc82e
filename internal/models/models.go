package models

// Chunk is a bounded-length span of extracted document text, produced by the
// ingestor and owned by the vector store after a rebuild.
type Chunk struct {
	ID      string
	Content string
	// Page is the 1-based source page (or sheet) the text came from.
	// Zero means the format carries no page information.
	Page int
}

// RetrievedChunk is a chunk returned from a similarity query.
type RetrievedChunk struct {
	Content    string
	Page       int
	Similarity float32
}

// Citation is a read-only projection of a retrieved chunk attached to an
// answer to show provenance.
type Citation struct {
	Source int    `json:"source"`
	Text   string `json:"text"`
	Page   string `json:"page"`
}

// QuizQuestion is a single multiple-choice question. After normalization it
// always has exactly 4 options and a correct answer index in [0,3].
type QuizQuestion struct {
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer int      `json:"correctAnswer"`
	Explanation   string   `json:"explanation"`
	Type          string   `json:"type"`
}

// Recommendation is a YouTube search suggestion for a topic. Videos is always
// empty; no video lookup is performed.
type Recommendation struct {
	Topic          string   `json:"topic"`
	SearchURL      string   `json:"search_url"`
	SuggestedQuery string   `json:"suggested_query"`
	Videos         []string `json:"videos"`
}
