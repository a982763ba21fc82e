package embedding

import (
	"context"

	"github.com/philippgille/chromem-go"
	"github.com/rs/zerolog/log"
	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/ollama"
)

// NewOllamaFunc builds a chromem embedding function backed by a local ollama
// embedding model. The same function is used for indexing and querying so
// distances stay consistent between build and lookup.
func NewOllamaFunc(serverURL, model string) (chromem.EmbeddingFunc, error) {
	llm, err := ollama.New(
		ollama.WithServerURL(serverURL),
		ollama.WithModel(model),
	)
	if err != nil {
		return nil, err
	}
	embedder, err := embeddings.NewEmbedder(llm)
	if err != nil {
		return nil, err
	}

	log.Debug().Str("server_url", serverURL).Str("model", model).Msg("Initialized embedder")

	return func(ctx context.Context, text string) ([]float32, error) {
		return embedder.EmbedQuery(ctx, text)
	}, nil
}
