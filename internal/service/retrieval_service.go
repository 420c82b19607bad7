package service

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"knowledgehub/internal/domain"
	"knowledgehub/internal/repository"
)

// Retrieval limits.
const (
	maxQueryTokens = 8
	candidatePool  = 15
	maxResults     = 10
)

var queryStripRe = regexp.MustCompile(`[^\p{L}\p{N}]+`)

// RetrievalService selects grounding chunks for a query, restricted to the
// categories the caller's role may read. Matching is lexical with a recency
// fallback; ranking is existence-of-match, not relevance.
type RetrievalService struct {
	chunks *repository.ChunkRepository
	logger *zap.Logger
}

// NewRetrievalService creates a new retrieval service
func NewRetrievalService(chunks *repository.ChunkRepository, logger *zap.Logger) *RetrievalService {
	return &RetrievalService{chunks: chunks, logger: logger}
}

// SanitizeQuery strips syntax-sensitive characters from a free-text query and
// keeps at most 8 tokens longer than two characters, for use as an
// AND-conjunction in lexical matching.
func SanitizeQuery(query string) []string {
	cleaned := queryStripRe.ReplaceAllString(query, " ")

	var tokens []string
	for _, field := range strings.Fields(cleaned) {
		if utf8.RuneCountInString(field) <= 2 {
			continue
		}
		tokens = append(tokens, field)
		if len(tokens) == maxQueryTokens {
			break
		}
	}
	return tokens
}

// Retrieve returns up to 10 grounding chunks for the query plus the
// deduplicated source list for citation display. When lexical search finds
// nothing, the most recently ingested permitted chunks are returned instead,
// so grounding exists whenever any permitted document does.
func (s *RetrievalService) Retrieve(role domain.Role, query string) ([]domain.RetrievedChunk, []domain.Source, error) {
	categories := role.AllowedCategories()
	tokens := SanitizeQuery(query)

	var (
		results []domain.RetrievedChunk
		err     error
	)
	if len(tokens) > 0 {
		results, err = s.chunks.Search(tokens, categories, candidatePool)
		if err != nil {
			return nil, nil, err
		}
		if len(results) > maxResults {
			results = results[:maxResults]
		}
	}

	if len(results) == 0 {
		results, err = s.chunks.Recent(categories, maxResults)
		if err != nil {
			return nil, nil, err
		}
		if len(results) > 0 {
			s.logger.Debug("lexical search empty, using recency fallback",
				zap.Int("chunks", len(results)))
		}
	}

	return results, dedupeSources(results), nil
}

// dedupeSources collapses retrieved chunks into one source per title,
// preserving first-seen order.
func dedupeSources(chunks []domain.RetrievedChunk) []domain.Source {
	seen := make(map[string]bool, len(chunks))
	var sources []domain.Source
	for _, chunk := range chunks {
		if seen[chunk.Title] {
			continue
		}
		seen[chunk.Title] = true
		sources = append(sources, domain.Source{Title: chunk.Title, Category: chunk.Category})
	}
	return sources
}
