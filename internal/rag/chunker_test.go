package rag

import (
	"strings"
	"testing"
)

func TestWordChunker_SplitsOnWordCount(t *testing.T) {
	c := WordChunker{MaxWords: 3}

	chunks := c.Chunk("one two three four five six seven")
	if len(chunks) != 3 {
		t.Fatalf("expected 3 chunks, got %d", len(chunks))
	}
	if chunks[0] != "one two three" {
		t.Fatalf("unexpected first chunk: %q", chunks[0])
	}
	if chunks[2] != "seven" {
		t.Fatalf("unexpected last chunk: %q", chunks[2])
	}
}

func TestWordChunker_EmptyText(t *testing.T) {
	c := NewWordChunker()
	if chunks := c.Chunk("   \n\t  "); len(chunks) != 0 {
		t.Fatalf("expected no chunks for blank text, got %d", len(chunks))
	}
}

func TestWordChunker_DefaultSize(t *testing.T) {
	c := NewWordChunker()

	words := make([]string, 450)
	for i := range words {
		words[i] = "w"
	}
	chunks := c.Chunk(strings.Join(words, " "))
	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks for 450 words, got %d", len(chunks))
	}
	if n := len(strings.Fields(chunks[0])); n != 400 {
		t.Fatalf("expected 400 words in first chunk, got %d", n)
	}
	if n := len(strings.Fields(chunks[1])); n != 50 {
		t.Fatalf("expected 50 words in second chunk, got %d", n)
	}
}

func TestWindowChunker_OverlappingWindows(t *testing.T) {
	c := WindowChunker{Size: 10, Overlap: 4}

	text := "abcdefghijklmnopqrstuvwxyz"
	chunks := c.Chunk(text)

	// step is 6: windows start at 0, 6, 12, 18, 24
	if len(chunks) != 5 {
		t.Fatalf("expected 5 chunks, got %d", len(chunks))
	}
	if chunks[0] != "abcdefghij" {
		t.Fatalf("unexpected first chunk: %q", chunks[0])
	}
	if chunks[1] != "ghijklmnop" {
		t.Fatalf("unexpected second chunk: %q", chunks[1])
	}
	if !strings.HasSuffix(chunks[len(chunks)-1], "z") {
		t.Fatalf("last chunk should reach the end of the text: %q", chunks[len(chunks)-1])
	}

	// consecutive windows share Overlap characters
	if chunks[0][6:] != chunks[1][:4] {
		t.Fatalf("expected 4-char overlap between windows: %q vs %q", chunks[0][6:], chunks[1][:4])
	}
}

func TestWindowChunker_TextShorterThanWindow(t *testing.T) {
	c := NewWindowChunker()

	chunks := c.Chunk("short")
	if len(chunks) != 1 || chunks[0] != "short" {
		t.Fatalf("expected single verbatim chunk, got %v", chunks)
	}
}

func TestWindowChunker_DefaultWindow(t *testing.T) {
	c := NewWindowChunker()

	text := strings.Repeat("a", 2500)
	chunks := c.Chunk(text)
	// step 800: starts at 0, 800, 1600, 2400
	if len(chunks) != 4 {
		t.Fatalf("expected 4 chunks, got %d", len(chunks))
	}
	if len(chunks[0]) != 1000 {
		t.Fatalf("expected 1000-char first chunk, got %d", len(chunks[0]))
	}
	if len(chunks[3]) != 100 {
		t.Fatalf("expected 100-char trailing chunk, got %d", len(chunks[3]))
	}
}
