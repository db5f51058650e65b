package retrieval

import (
	"sort"

	"github.com/kailas-cloud/shopassist/internal/domain"
)

// Scored is a row with its similarity to the search term.
type Scored struct {
	Row   domain.Row
	Score float64
}

// Rank takes the first topN rows in catalog order and sorts only that slice by
// descending cosine similarity. Rows outside the prefix are never returned, even
// when they score higher. Ties keep catalog order.
func Rank(search []float32, rows []domain.Row, vectors [][]float32, topN int) []Scored {
	if topN <= 0 {
		return []Scored{}
	}
	if topN > len(rows) {
		topN = len(rows)
	}

	out := make([]Scored, topN)
	for i := 0; i < topN; i++ {
		var vec []float32
		if i < len(vectors) {
			vec = vectors[i]
		}
		out[i] = Scored{Row: rows[i], Score: domain.CosineSimilarity(search, vec)}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Score > out[j].Score
	})
	return out
}
