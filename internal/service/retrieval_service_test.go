package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"knowledgehub/internal/domain"
	"knowledgehub/internal/repository"
)

func TestSanitizeQuery(t *testing.T) {
	cases := []struct {
		name  string
		query string
		want  []string
	}{
		{"plain words", "vacation policy", []string{"vacation", "policy"}},
		{"punctuation stripped", "what's the on-call rotation?", []string{"what", "the", "call", "rotation"}},
		{"short tokens dropped", "is it ok to wfh", []string{"wfh"}},
		{"sql syntax neutralized", "'; DROP TABLE chunks; --", []string{"DROP", "TABLE", "chunks"}},
		{"token cap", "one1 two2 three3 four4 five5 six6 seven7 eight8 nine9 ten10",
			[]string{"one1", "two2", "three3", "four4", "five5", "six6", "seven7", "eight8"}},
		{"only noise", "a b c !!", nil},
		{"empty", "", nil},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, SanitizeQuery(tc.query))
		})
	}
}

func TestRetrieve_CategoryScopingAndFallback(t *testing.T) {
	db, err := repository.NewDB(":memory:")
	require.NoError(t, err)
	defer db.Close()

	documents := repository.NewDocumentRepository(db)
	chunks := repository.NewChunkRepository(db)
	svc := NewRetrievalService(chunks, zap.NewNop())

	seed := func(title string, category domain.Category, contents ...string) {
		doc := &domain.Document{
			Title:       title,
			FileName:    title + ".txt",
			FilePath:    "blobs/" + title,
			MIMEType:    domain.MIMETextPlain,
			Category:    category,
			ContentHash: ComputeContentHash([]byte(title)),
			UploadedBy:  "user-1",
		}
		require.NoError(t, documents.Create(doc))
		for i, content := range contents {
			require.NoError(t, chunks.Insert(&domain.Chunk{
				DocumentID: doc.ID,
				Content:    content,
				ChunkIndex: i,
			}))
		}
	}

	seed("benefits", domain.CategoryHR, "vacation accrual rules", "parental leave policy")
	seed("runbook", domain.CategoryTechnical, "vacation of the deploy lock requires approval")
	seed("welcome", domain.CategoryGeneral, "office locations and hours")

	t.Run("developer cannot see hr matches", func(t *testing.T) {
		results, sources, err := svc.Retrieve(domain.RoleDeveloper, "vacation")
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, "runbook", results[0].Title)
		require.Len(t, sources, 1)
		assert.Equal(t, domain.CategoryTechnical, sources[0].Category)
	})

	t.Run("admin sees all matching categories", func(t *testing.T) {
		results, _, err := svc.Retrieve(domain.RoleAdmin, "vacation")
		require.NoError(t, err)
		assert.Len(t, results, 2)
	})

	t.Run("no match falls back to recent permitted chunks", func(t *testing.T) {
		results, sources, err := svc.Retrieve(domain.RoleHR, "zzznonexistent")
		require.NoError(t, err)
		require.NotEmpty(t, results)
		for _, chunk := range results {
			assert.Contains(t, []domain.Category{domain.CategoryHR, domain.CategoryGeneral}, chunk.Category)
		}
		assert.NotEmpty(t, sources)
	})

	t.Run("sources deduplicated by title", func(t *testing.T) {
		_, sources, err := svc.Retrieve(domain.RoleHR, "policy rules leave")
		require.NoError(t, err)
		seen := make(map[string]bool)
		for _, src := range sources {
			assert.False(t, seen[src.Title], "duplicate source %q", src.Title)
			seen[src.Title] = true
		}
	})
}

func TestDedupeSources(t *testing.T) {
	chunks := []domain.RetrievedChunk{
		{Title: "handbook", Category: domain.CategoryHR},
		{Title: "runbook", Category: domain.CategoryTechnical},
		{Title: "handbook", Category: domain.CategoryHR},
	}

	sources := dedupeSources(chunks)
	require.Len(t, sources, 2)
	assert.Equal(t, "handbook", sources[0].Title)
	assert.Equal(t, "runbook", sources[1].Title)
}
