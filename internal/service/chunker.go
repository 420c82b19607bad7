package service

import "fmt"

// Default chunking parameters.
const (
	DefaultChunkSize    = 500
	DefaultChunkOverlap = 50
)

// ChunkText splits text into a sliding window of overlapping chunks. Each
// window holds up to size bytes and the start advances by size-overlap, so
// size must exceed overlap for the window to make forward progress. The last
// chunk may be shorter than size. Empty input yields no chunks.
func ChunkText(text string, size, overlap int) ([]string, error) {
	if size <= 0 || overlap < 0 || overlap >= size {
		return nil, fmt.Errorf("chunk size must exceed overlap: size=%d overlap=%d", size, overlap)
	}

	var chunks []string
	for start := 0; start < len(text); start += size - overlap {
		end := start + size
		if end > len(text) {
			end = len(text)
		}
		chunks = append(chunks, text[start:end])
	}

	return chunks, nil
}
