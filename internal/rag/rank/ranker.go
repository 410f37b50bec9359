package rank

import (
	"fmt"
	"math"
	"regexp"
	"sort"
	"strings"

	"github.com/avanth/docuquery/internal/domain/docModel"
)

// Boost increments. Additive across rules, capped at boostCap.
const (
	domainTermBoost   = 0.1
	currencyBoost     = 0.15
	invoiceBothBoost  = 0.2
	amountIntentBoost = 0.25
	boostCap          = 0.5
)

var domainTerms = []string{
	"invoice", "bill", "amount", "total", "due", "payment",
	"cost", "price", "charge", "fee", "sum",
}

var currencyTerms = []string{
	"$", "€", "£", "usd", "eur", "gbp", "dollar", "euro", "pound",
}

var amountIntentTerms = []string{"amount", "total", "cost", "price", "how much"}

// Matches "$1,234.56" style amounts with the symbol on either side.
var amountPattern = regexp.MustCompile(
	`[$€£]\s*\d+(?:,\d{3})*(?:\.\d{2})?|\d+(?:,\d{3})*(?:\.\d{2})?\s*[$€£]`)

// CosineSimilarity returns dot(a,b) / (|a|*|b|). A zero-magnitude vector
// yields 0. Mismatched lengths are a caller bug, not a zero score.
func CosineSimilarity(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("vector length mismatch: %d vs %d", len(a), len(b))
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0, nil
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB)), nil
}

// KeywordBoost scores a chunk against the query using curated term sets.
// Both sides are lowercased before matching.
func KeywordBoost(query, chunkText string) float64 {
	q := strings.ToLower(query)
	c := strings.ToLower(chunkText)

	var boost float64
	for _, term := range domainTerms {
		if strings.Contains(q, term) && strings.Contains(c, term) {
			boost += domainTermBoost
		}
	}
	for _, term := range currencyTerms {
		if strings.Contains(q, term) && strings.Contains(c, term) {
			boost += currencyBoost
		}
	}
	if strings.Contains(q, "invoice") && strings.Contains(c, "invoice") {
		boost += invoiceBothBoost
	}
	if amountPattern.MatchString(chunkText) {
		for _, term := range amountIntentTerms {
			if strings.Contains(q, term) {
				boost += amountIntentBoost
				break
			}
		}
	}

	if boost > boostCap {
		boost = boostCap
	}
	return boost
}

// Ranker orders vector-index candidates by boosted cosine similarity.
type Ranker struct {
	// Threshold drops candidates whose boosted score is at or below it.
	Threshold float64
	// TopK bounds the result list.
	TopK int
}

// Rank scores every candidate against the query vector and text and returns
// the top results. Candidates with equal boosted score keep scan order.
func (r Ranker) Rank(queryVec []float32, query string, candidates []docModel.ChunkCandidate) ([]docModel.RetrievalResult, error) {
	results := make([]docModel.RetrievalResult, 0, len(candidates))
	for _, cand := range candidates {
		sim, err := CosineSimilarity(queryVec, cand.Embedding)
		if err != nil {
			return nil, fmt.Errorf("scoring chunk %d of document %s: %w", cand.ChunkIndex, cand.DocumentId, err)
		}
		boost := KeywordBoost(query, cand.Text)

		score := sim + boost
		if score <= r.Threshold {
			continue
		}
		results = append(results, docModel.RetrievalResult{
			DocumentId:   cand.DocumentId,
			DocumentName: cand.DocumentName,
			ChunkText:    cand.Text,
			ChunkIndex:   cand.ChunkIndex,
			Similarity:   sim,
			KeywordBoost: boost,
			BoostedScore: score,
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].BoostedScore > results[j].BoostedScore
	})
	if r.TopK > 0 && len(results) > r.TopK {
		results = results[:r.TopK]
	}
	return results, nil
}
