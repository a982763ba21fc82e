package vectorstore

import (
	"context"
	"fmt"
	"runtime"
	"strconv"
	"sync"

	"github.com/philippgille/chromem-go"
	"github.com/rs/zerolog/log"

	"studyassistant/internal/models"
)

const (
	collectionName = "document_chunks"
	compress       = false
)

// Store is the process-wide similarity index over chunk embeddings. The
// collection handle is guarded by a lock: a rebuild constructs the new
// collection and swaps it in atomically, so queries either see the previous
// index or the finished new one, never a half-built state.
type Store struct {
	mu         sync.RWMutex
	db         *chromem.DB
	collection *chromem.Collection
	embed      chromem.EmbeddingFunc
}

// New opens (or creates) the persisted database under path. If a prior
// process left a populated collection on disk it is attached immediately.
func New(path string, embed chromem.EmbeddingFunc) (*Store, error) {
	db, err := chromem.NewPersistentDB(path, compress)
	if err != nil {
		return nil, fmt.Errorf("open vector database: %w", err)
	}

	s := &Store{db: db, embed: embed}
	if c := db.GetCollection(collectionName, embed); c != nil {
		s.collection = c
		log.Info().Int("documents", c.Count()).Msg("Reattached persisted vector index")
	}
	return s, nil
}

// Rebuild replaces the index with a fresh one built from chunks, discarding
// any prior index and overwriting the persisted state unconditionally.
func (s *Store) Rebuild(ctx context.Context, chunks []models.Chunk) error {
	if len(chunks) == 0 {
		return fmt.Errorf("no chunks to index")
	}

	docs := make([]chromem.Document, 0, len(chunks))
	for i, chunk := range chunks {
		docs = append(docs, chromem.Document{
			ID:      chunk.ID,
			Content: chunk.Content,
			Metadata: map[string]string{
				"page":  strconv.Itoa(chunk.Page),
				"chunk": strconv.Itoa(i + 1),
			},
		})
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.db.DeleteCollection(collectionName); err != nil {
		return fmt.Errorf("drop collection: %w", err)
	}
	collection, err := s.db.GetOrCreateCollection(collectionName, nil, s.embed)
	if err != nil {
		return fmt.Errorf("create collection: %w", err)
	}
	if err := collection.AddDocuments(ctx, docs, runtime.NumCPU()); err != nil {
		return fmt.Errorf("add documents: %w", err)
	}

	s.collection = collection
	log.Info().Int("chunks", len(chunks)).Msg("Rebuilt vector index")
	return nil
}

// Query embeds text and returns up to k chunks by descending similarity.
// k is clamped to the collection size.
func (s *Store) Query(ctx context.Context, text string, k int) ([]models.RetrievedChunk, error) {
	s.mu.RLock()
	collection := s.collection
	s.mu.RUnlock()

	if collection == nil {
		return nil, fmt.Errorf("no index attached")
	}
	count := collection.Count()
	if count == 0 {
		return nil, nil
	}
	if k > count {
		k = count
	}

	results, err := collection.Query(ctx, text, k, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("query collection: %w", err)
	}

	chunks := make([]models.RetrievedChunk, 0, len(results))
	for _, result := range results {
		page, _ := strconv.Atoi(result.Metadata["page"])
		chunks = append(chunks, models.RetrievedChunk{
			Content:    result.Content,
			Page:       page,
			Similarity: result.Similarity,
		})
	}
	return chunks, nil
}

// Ready reports whether an index is attached, lazily reattaching from
// persisted storage when the in-memory handle is empty but data exists.
func (s *Store) Ready() bool {
	s.mu.RLock()
	attached := s.collection != nil
	s.mu.RUnlock()
	if attached {
		return true
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.collection == nil {
		if c := s.db.GetCollection(collectionName, s.embed); c != nil && c.Count() > 0 {
			s.collection = c
			log.Info().Int("documents", c.Count()).Msg("Reattached persisted vector index")
		}
	}
	return s.collection != nil
}
