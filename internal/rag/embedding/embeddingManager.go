package embedding

import (
	"context"
	"strings"
)

// Embedder turns text into fixed-dimension vectors. EmbedBatch results are
// positionally aligned with the input: filtered (blank) inputs hold a nil
// vector. A failed batch returns an error, never a partial list.
type Embedder interface {
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	Dimension() int
}

// FilterBlank drops empty and whitespace-only entries before a provider
// call. keptIdx maps each kept entry back to its original position.
func FilterBlank(texts []string) (kept []string, keptIdx []int) {
	for i, t := range texts {
		if strings.TrimSpace(t) == "" {
			continue
		}
		kept = append(kept, t)
		keptIdx = append(keptIdx, i)
	}
	return kept, keptIdx
}

// Realign spreads provider results back over the original input positions.
func Realign(inputLen int, keptIdx []int, vectors [][]float32) [][]float32 {
	out := make([][]float32, inputLen)
	for i, idx := range keptIdx {
		out[idx] = vectors[i]
	}
	return out
}
