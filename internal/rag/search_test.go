package rag

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"testing"

	gormsqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(gormsqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&Chunk{}); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

func TestCosineSimilarity(t *testing.T) {
	a := []float32{1, 0, 0}
	b := []float32{0, 1, 0}

	if got := CosineSimilarity(a, a); math.Abs(got-1) > 1e-9 {
		t.Fatalf("self similarity: expected 1, got %f", got)
	}
	if got := CosineSimilarity(a, b); got != 0 {
		t.Fatalf("orthogonal: expected 0, got %f", got)
	}
	if CosineSimilarity(a, b) != CosineSimilarity(b, a) {
		t.Fatalf("expected symmetric similarity")
	}
}

func TestCosineSimilarity_ZeroVector(t *testing.T) {
	zero := []float32{0, 0, 0}
	v := []float32{1, 2, 3}

	if got := CosineSimilarity(zero, v); got != 0 {
		t.Fatalf("expected exactly 0 for zero vector, got %f", got)
	}
	if got := CosineSimilarity(v, zero); got != 0 {
		t.Fatalf("expected exactly 0 for zero vector, got %f", got)
	}
	if got := CosineSimilarity(zero, zero); got != 0 || math.IsNaN(got) {
		t.Fatalf("expected exactly 0, got %f", got)
	}
}

func TestCosineSimilarity_LengthMismatch(t *testing.T) {
	if got := CosineSimilarity([]float32{1, 2}, []float32{1, 2, 3}); got != 0 {
		t.Fatalf("expected 0 on length mismatch, got %f", got)
	}
}

func TestSearch_RanksExactMatchFirst(t *testing.T) {
	db := openTestDB(t)

	store := NewStore(db)
	embedder := newFallbackEmbedder()
	indexer := NewIndexer(store, embedder)
	searcher := NewSearcher(store, embedder)

	ctx := context.Background()
	courseID := "01COURSE00000000000000000X"

	texts := map[string]string{
		"Pointers": "pointers hold memory addresses",
		"Loops":    "for loops repeat a block of code",
		"Slices":   "slices are dynamic views over arrays",
	}
	for title, text := range texts {
		if err := indexer.ReindexNotes(ctx, courseID, title, text); err != nil {
			t.Fatalf("reindex %s: %v", title, err)
		}
	}

	results, err := searcher.Search(ctx, "pointers hold memory addresses", courseID, 5)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	if results[0].LectureTitle != "Pointers" {
		t.Fatalf("expected exact match first, got %q", results[0].LectureTitle)
	}
	if math.Abs(results[0].Score-1) > 1e-5 {
		t.Fatalf("expected exact match score ~1, got %f", results[0].Score)
	}
	for i := 1; i < len(results); i++ {
		if results[i].Score > results[i-1].Score {
			t.Fatalf("results not in descending order at %d", i)
		}
	}
}

func TestSearch_LimitAndIsolation(t *testing.T) {
	db := openTestDB(t)

	store := NewStore(db)
	embedder := newFallbackEmbedder()
	indexer := NewIndexer(store, embedder)
	searcher := NewSearcher(store, embedder)

	ctx := context.Background()

	for i := 0; i < 8; i++ {
		title := fmt.Sprintf("Lecture %d", i)
		if err := indexer.ReindexNotes(ctx, "course-a", title, fmt.Sprintf("content for lecture %d", i)); err != nil {
			t.Fatalf("reindex: %v", err)
		}
	}
	if err := indexer.ReindexNotes(ctx, "course-b", "Other", "unrelated course content"); err != nil {
		t.Fatalf("reindex: %v", err)
	}

	results, err := searcher.Search(ctx, "lecture content", "course-a", 3)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("expected limit of 3, got %d", len(results))
	}

	results, err = searcher.Search(ctx, "anything", "course-b", 0)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(results) != 1 || results[0].LectureTitle != "Other" {
		t.Fatalf("expected only course-b chunks, got %v", results)
	}
}

func TestSearch_SkipsUnparseableEmbedding(t *testing.T) {
	db := openTestDB(t)

	store := NewStore(db)
	embedder := newFallbackEmbedder()
	searcher := NewSearcher(store, embedder)

	ctx := context.Background()

	good, _ := json.Marshal(embedder.Embed("good chunk"))
	rows := []Chunk{
		{CourseID: "c", LectureTitle: "A", ChunkText: "good chunk", Embedding: string(good)},
		{CourseID: "c", LectureTitle: "B", ChunkText: "bad chunk", Embedding: "not-json"},
	}
	for i := range rows {
		if err := db.Create(&rows[i]).Error; err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	results, err := searcher.Search(ctx, "good chunk", "c", 5)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(results) != 1 || results[0].LectureTitle != "A" {
		t.Fatalf("expected only the parseable chunk, got %v", results)
	}
}
