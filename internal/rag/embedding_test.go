package rag

import (
	"math"
	"testing"
)

func newFallbackEmbedder() *Embedder {
	// nonexistent paths guarantee the hash fallback
	return NewEmbedder("testdata/no-such-model.onnx", "testdata/no-such-tokenizer.json", "")
}

func TestEmbedder_BogusPathsDowngrade(t *testing.T) {
	e := newFallbackEmbedder()
	if cap := e.Detect(); cap != CapabilityFallback {
		t.Fatalf("expected fallback capability, got %v", cap)
	}
	// detection is sticky
	if cap := e.Detect(); cap != CapabilityFallback {
		t.Fatalf("capability changed on second detect: %v", cap)
	}
}

func TestEmbed_DimensionAndUnitNorm(t *testing.T) {
	e := newFallbackEmbedder()

	vec := e.Embed("pointers and memory management")
	if len(vec) != Dim {
		t.Fatalf("expected %d dims, got %d", Dim, len(vec))
	}

	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}
	if math.Abs(math.Sqrt(sum)-1) > 1e-5 {
		t.Fatalf("expected unit magnitude, got %f", math.Sqrt(sum))
	}
}

func TestEmbed_Deterministic(t *testing.T) {
	e := newFallbackEmbedder()

	a := e.Embed("loops in go")
	b := e.Embed("loops in go")
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("same text produced different vectors at dim %d", i)
		}
	}

	c := e.Embed("a different sentence entirely")
	same := true
	for i := range a {
		if a[i] != c[i] {
			same = false
			break
		}
	}
	if same {
		t.Fatalf("different texts produced identical vectors")
	}
}

func TestEmbedder_CloseIsSafeAndKeepsFallback(t *testing.T) {
	e := newFallbackEmbedder()
	e.Detect()

	e.Close()
	e.Close() // idempotent

	if cap := e.Detect(); cap != CapabilityFallback {
		t.Fatalf("expected fallback capability after close, got %v", cap)
	}
	if vec := e.Embed("still works"); len(vec) != Dim {
		t.Fatalf("embedding after close: expected %d dims, got %d", Dim, len(vec))
	}
}

func TestNormalize_ZeroVectorUnchanged(t *testing.T) {
	zero := make([]float32, Dim)
	out := normalize(zero)
	for i, v := range out {
		if v != 0 {
			t.Fatalf("zero vector changed at dim %d: %f", i, v)
		}
	}
}
