package rag

import (
	"context"
	"encoding/json"
	"log"
	"math"
	"sort"
)

// Result is one retrieved chunk with its similarity to the query.
type Result struct {
	ChunkText    string  `json:"chunk_text"`
	LectureTitle string  `json:"lecture_title"`
	Score        float64 `json:"score"`
}

type Searcher struct {
	store    *Store
	embedder *Embedder
}

func NewSearcher(store *Store, embedder *Embedder) *Searcher {
	return &Searcher{store: store, embedder: embedder}
}

// Search embeds the query with the same embedder used at indexing time,
// scores every stored chunk for the course by cosine similarity, and returns
// the top limit results in descending score order.
func (s *Searcher) Search(ctx context.Context, query, courseID string, limit int) ([]Result, error) {
	if limit <= 0 {
		limit = 5
	}

	queryVec := s.embedder.Embed(query)

	chunks, err := s.store.ListByCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}

	results := make([]Result, 0, len(chunks))
	for _, c := range chunks {
		var vec []float32
		if err := json.Unmarshal([]byte(c.Embedding), &vec); err != nil {
			log.Printf("[Search] skipping chunk %d: bad embedding: %v", c.ID, err)
			continue
		}
		results = append(results, Result{
			ChunkText:    c.ChunkText,
			LectureTitle: c.LectureTitle,
			Score:        CosineSimilarity(queryVec, vec),
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

// CosineSimilarity returns the cosine of the angle between a and b. It is
// symmetric and returns exactly 0, never NaN, when either vector has zero
// magnitude or the lengths differ.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
