package rag

import "strings"

// Two chunking strategies coexist on purpose. Instructor notes are split on
// word counts with no overlap; fresh transcripts are split on character
// windows with overlap. They produce different chunk shapes and retrieval
// was tuned against both, so they stay separate named strategies.

type Chunker interface {
	Name() string
	Chunk(text string) []string
}

// WordChunker groups whitespace-separated words into fixed-size chunks.
type WordChunker struct {
	MaxWords int
}

func NewWordChunker() WordChunker { return WordChunker{MaxWords: 400} }

func (c WordChunker) Name() string { return "words" }

func (c WordChunker) Chunk(text string) []string {
	maxWords := c.MaxWords
	if maxWords <= 0 {
		maxWords = 400
	}

	words := strings.Fields(text)
	var chunks []string
	for start := 0; start < len(words); start += maxWords {
		end := start + maxWords
		if end > len(words) {
			end = len(words)
		}
		chunks = append(chunks, strings.Join(words[start:end], " "))
	}
	return chunks
}

// WindowChunker slides a fixed character window with overlap over the text.
type WindowChunker struct {
	Size    int
	Overlap int
}

func NewWindowChunker() WindowChunker { return WindowChunker{Size: 1000, Overlap: 200} }

func (c WindowChunker) Name() string { return "window" }

func (c WindowChunker) Chunk(text string) []string {
	size := c.Size
	if size <= 0 {
		size = 1000
	}
	overlap := c.Overlap
	if overlap < 0 || overlap >= size {
		overlap = 0
	}

	var chunks []string
	step := size - overlap
	for start := 0; start < len(text); start += step {
		end := start + size
		if end > len(text) {
			end = len(text)
		}
		chunks = append(chunks, text[start:end])
	}
	return chunks
}
