package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"knowledgehub/internal/domain"
	"knowledgehub/internal/llm"
)

// completionStub serves a canned non-streaming completion.
func completionStub(t *testing.T, content string, capture *string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/chat/completions", r.URL.Path)

		if capture != nil {
			var req struct {
				Messages []struct {
					Content string `json:"content"`
				} `json:"messages"`
			}
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			*capture = req.Messages[len(req.Messages)-1].Content
		}

		fmt.Fprintf(w, `{"choices":[{"message":{"content":%q}}]}`, content)
	}))
}

func validVector(t *testing.T) string {
	t.Helper()
	vec := make([]float64, domain.EmbeddingDim)
	for i := range vec {
		vec[i] = 0.1
	}
	data, err := json.Marshal(vec)
	require.NoError(t, err)
	return string(data)
}

func TestLLMEmbedder_ValidVector(t *testing.T) {
	srv := completionStub(t, validVector(t), nil)
	defer srv.Close()

	embedder := NewLLMEmbedder(llm.NewClient(srv.URL, "key", "model"), zap.NewNop())
	vec, err := embedder.Embed(context.Background(), "some chunk text")
	require.NoError(t, err)
	require.Len(t, vec, domain.EmbeddingDim)
	assert.Equal(t, 0.1, vec[0])
}

func TestLLMEmbedder_InvalidResponses(t *testing.T) {
	cases := []struct {
		name    string
		content string
	}{
		{"prose instead of array", "Sure! Here is your embedding: [0.1, 0.2]"},
		{"wrong dimensionality", "[0.1, 0.2, 0.3]"},
		{"empty", ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := completionStub(t, tc.content, nil)
			defer srv.Close()

			embedder := NewLLMEmbedder(llm.NewClient(srv.URL, "key", "model"), zap.NewNop())
			vec, err := embedder.Embed(context.Background(), "text")
			require.NoError(t, err)
			assert.Nil(t, vec)
		})
	}
}

func TestLLMEmbedder_ExcerptLimit(t *testing.T) {
	var sent string
	srv := completionStub(t, validVector(t), &sent)
	defer srv.Close()

	embedder := NewLLMEmbedder(llm.NewClient(srv.URL, "key", "model"), zap.NewNop())
	long := strings.Repeat("x", 1000)
	_, err := embedder.Embed(context.Background(), long)
	require.NoError(t, err)
	assert.Len(t, sent, embedExcerptLimit)
}

func TestLLMEmbedder_UpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	embedder := NewLLMEmbedder(llm.NewClient(srv.URL, "key", "model"), zap.NewNop())
	_, err := embedder.Embed(context.Background(), "text")
	assert.ErrorIs(t, err, llm.ErrRateLimited)
}
