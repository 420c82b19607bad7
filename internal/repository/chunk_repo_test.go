package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"knowledgehub/internal/domain"
)

func seedDocumentWithChunks(t *testing.T, documents *DocumentRepository, chunks *ChunkRepository,
	title string, category domain.Category, contents ...string) *domain.Document {
	t.Helper()

	doc := newTestDocument(title, title+".txt", "hash-"+title)
	doc.Category = category
	require.NoError(t, documents.Create(doc))

	for i, content := range contents {
		require.NoError(t, chunks.Insert(&domain.Chunk{
			DocumentID: doc.ID,
			Content:    content,
			ChunkIndex: i,
		}))
	}
	return doc
}

func TestChunkRepository_EmbeddingRoundtrip(t *testing.T) {
	db := newTestDB(t)
	documents := NewDocumentRepository(db)
	chunks := NewChunkRepository(db)

	doc := seedDocumentWithChunks(t, documents, chunks, "embedded", domain.CategoryGeneral)

	vec := make([]float64, domain.EmbeddingDim)
	for i := range vec {
		vec[i] = float64(i%7)/10 - 0.3
	}
	require.NoError(t, chunks.Insert(&domain.Chunk{
		DocumentID: doc.ID,
		Content:    "with vector",
		ChunkIndex: 0,
		Embedding:  vec,
	}))
	require.NoError(t, chunks.Insert(&domain.Chunk{
		DocumentID: doc.ID,
		Content:    "without vector",
		ChunkIndex: 1,
	}))

	stored, err := chunks.ListByDocument(doc.ID)
	require.NoError(t, err)
	require.Len(t, stored, 2)
	assert.Equal(t, vec, stored[0].Embedding)
	assert.Nil(t, stored[1].Embedding)
}

func TestChunkRepository_Search(t *testing.T) {
	db := newTestDB(t)
	documents := NewDocumentRepository(db)
	chunks := NewChunkRepository(db)

	seedDocumentWithChunks(t, documents, chunks, "benefits", domain.CategoryHR,
		"vacation accrual and carryover rules",
		"dental coverage details")
	seedDocumentWithChunks(t, documents, chunks, "runbook", domain.CategoryTechnical,
		"vacation mode for the deploy bot")

	t.Run("all tokens must match", func(t *testing.T) {
		all := []domain.Category{domain.CategoryHR, domain.CategoryTechnical, domain.CategoryGeneral}

		results, err := chunks.Search([]string{"vacation"}, all, 15)
		require.NoError(t, err)
		assert.Len(t, results, 2)

		results, err = chunks.Search([]string{"vacation", "accrual"}, all, 15)
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, "benefits", results[0].Title)

		results, err = chunks.Search([]string{"vacation", "missing"}, all, 15)
		require.NoError(t, err)
		assert.Empty(t, results)
	})

	t.Run("category confinement", func(t *testing.T) {
		results, err := chunks.Search([]string{"vacation"}, []domain.Category{domain.CategoryHR}, 15)
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, domain.CategoryHR, results[0].Category)
	})

	t.Run("like metacharacters are literal", func(t *testing.T) {
		results, err := chunks.Search([]string{"100%"}, []domain.Category{domain.CategoryHR}, 15)
		require.NoError(t, err)
		assert.Empty(t, results)
	})

	t.Run("empty inputs", func(t *testing.T) {
		results, err := chunks.Search(nil, []domain.Category{domain.CategoryHR}, 15)
		require.NoError(t, err)
		assert.Empty(t, results)

		results, err = chunks.Search([]string{"vacation"}, nil, 15)
		require.NoError(t, err)
		assert.Empty(t, results)
	})
}

func TestChunkRepository_Recent(t *testing.T) {
	db := newTestDB(t)
	documents := NewDocumentRepository(db)
	chunks := NewChunkRepository(db)

	seedDocumentWithChunks(t, documents, chunks, "older", domain.CategoryGeneral, "first chunk")
	seedDocumentWithChunks(t, documents, chunks, "newer", domain.CategoryGeneral, "second chunk")
	seedDocumentWithChunks(t, documents, chunks, "secret", domain.CategoryHR, "hr only chunk")

	results, err := chunks.Recent([]domain.Category{domain.CategoryGeneral}, 10)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "newer", results[0].Title)
	assert.Equal(t, "older", results[1].Title)

	capped, err := chunks.Recent([]domain.Category{domain.CategoryGeneral}, 1)
	require.NoError(t, err)
	require.Len(t, capped, 1)
	assert.Equal(t, "newer", capped[0].Title)
}
