package rag

import (
	"context"
	"encoding/json"
	"log"
	"strings"
)

// Indexer chunks lecture text, embeds each chunk, and fully replaces the
// stored rows for the lecture's key.
type Indexer struct {
	store    *Store
	embedder *Embedder

	notesChunker      WordChunker
	transcriptChunker WindowChunker
}

func NewIndexer(store *Store, embedder *Embedder) *Indexer {
	return &Indexer{
		store:             store,
		embedder:          embedder,
		notesChunker:      NewWordChunker(),
		transcriptChunker: NewWindowChunker(),
	}
}

// ReindexNotes indexes instructor notes with the word-count strategy.
func (ix *Indexer) ReindexNotes(ctx context.Context, courseID, lectureTitle, text string) error {
	return ix.reindex(ctx, courseID, lectureTitle, text, ix.notesChunker)
}

// ReindexTranscript indexes a freshly produced transcript with the
// overlapping character-window strategy.
func (ix *Indexer) ReindexTranscript(ctx context.Context, courseID, lectureTitle, text string) error {
	return ix.reindex(ctx, courseID, lectureTitle, text, ix.transcriptChunker)
}

func (ix *Indexer) reindex(ctx context.Context, courseID, lectureTitle, text string, chunker Chunker) error {
	if courseID == "" || strings.TrimSpace(text) == "" {
		return nil
	}

	pieces := chunker.Chunk(text)
	log.Printf("[Indexer] %s/%q: %d chunks (%s strategy)", courseID, lectureTitle, len(pieces), chunker.Name())

	chunks := make([]Chunk, 0, len(pieces))
	for _, piece := range pieces {
		vec := ix.embedder.Embed(piece)
		raw, err := json.Marshal(vec)
		if err != nil {
			return err
		}
		chunks = append(chunks, Chunk{
			ChunkText: piece,
			Embedding: string(raw),
		})
	}

	return ix.store.Replace(ctx, courseID, lectureTitle, chunks)
}
