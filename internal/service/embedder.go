package service

import (
	"context"
	"encoding/json"
	"strings"

	"go.uber.org/zap"

	"knowledgehub/internal/domain"
	"knowledgehub/internal/llm"
)

// Embedder produces fixed-dimension vectors for chunk text. It is an optional
// capability: implementations are best-effort, and a nil vector with a nil
// error means no embedding is available for the chunk. Retrieval never reads
// embeddings, so absence is always safe.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float64, error)
}

// How much of a chunk is sent to the model when asking for a vector.
const embedExcerptLimit = 300

const embedInstruction = "Generate a 768-dimensional embedding vector for the following text. " +
	"Return ONLY a JSON array of 768 floating point numbers between -1 and 1. No other text."

// LLMEmbedder approximates embeddings by prompting a generative model to emit
// a vector directly. This is not a trained embedding model; vectors are
// stored for future use and nothing depends on their quality.
type LLMEmbedder struct {
	client *llm.Client
	logger *zap.Logger
}

// NewLLMEmbedder creates an embedder backed by the completion gateway.
func NewLLMEmbedder(client *llm.Client, logger *zap.Logger) *LLMEmbedder {
	return &LLMEmbedder{client: client, logger: logger}
}

// Embed requests a vector for the leading excerpt of the text. Any response
// that is not exactly a 768-entry numeric array yields no embedding.
func (e *LLMEmbedder) Embed(ctx context.Context, text string) ([]float64, error) {
	excerpt := text
	if len(excerpt) > embedExcerptLimit {
		excerpt = excerpt[:embedExcerptLimit]
	}

	content, err := e.client.Complete(ctx, []llm.Message{
		{Role: "system", Content: embedInstruction},
		{Role: "user", Content: excerpt},
	})
	if err != nil {
		return nil, err
	}

	var vec []float64
	if err := json.Unmarshal([]byte(strings.TrimSpace(content)), &vec); err != nil {
		e.logger.Debug("embedding response was not a numeric array", zap.Error(err))
		return nil, nil
	}
	if len(vec) != domain.EmbeddingDim {
		e.logger.Debug("embedding response had wrong dimensionality", zap.Int("len", len(vec)))
		return nil, nil
	}

	return vec, nil
}
