package rag

import (
	"hash/fnv"
	"log"
	"math"
	"strconv"
	"sync"
)

// Dim is the embedding dimensionality. Both the ONNX model and the hash
// fallback emit vectors of this size so retrieval math never cares which
// path produced a stored vector.
const Dim = 384

// Capability is the result of embedding capability detection, computed once
// per process lifetime.
type Capability int

const (
	CapabilityUnknown Capability = iota
	// CapabilityReal means the ONNX feature-extraction model is loaded.
	CapabilityReal
	// CapabilityFallback means the deterministic hash embedding is in use
	// for the remainder of the process lifetime.
	CapabilityFallback
)

func (c Capability) String() string {
	switch c {
	case CapabilityReal:
		return "real"
	case CapabilityFallback:
		return "fallback"
	default:
		return "unknown"
	}
}

// Embedder turns text into L2-normalized vectors. It tries to load a real
// feature-extraction model exactly once; if loading or inference fails the
// process permanently downgrades to the hash fallback. The downgrade is one
// way: a process never flips back to the real model.
type Embedder struct {
	ModelPath     string
	TokenizerPath string
	LibraryPath   string

	detectOnce sync.Once

	mu         sync.Mutex
	capability Capability
	model      *onnxModel
}

func NewEmbedder(modelPath, tokenizerPath, libraryPath string) *Embedder {
	return &Embedder{
		ModelPath:     modelPath,
		TokenizerPath: tokenizerPath,
		LibraryPath:   libraryPath,
	}
}

// Detect loads the model on first call and reports which embedding path the
// process will use. Call it at startup so the outcome is visible in logs
// rather than buried in the first index/search request.
func (e *Embedder) Detect() Capability {
	e.detectOnce.Do(func() {
		m, err := loadONNXModel(e.ModelPath, e.TokenizerPath, e.LibraryPath)

		e.mu.Lock()
		defer e.mu.Unlock()
		if err != nil {
			log.Printf("[Embeddings] model unavailable, using hash fallback: %v", err)
			e.capability = CapabilityFallback
			return
		}
		log.Printf("[Embeddings] ONNX model loaded from %s", e.ModelPath)
		e.capability = CapabilityReal
		e.model = m
	})

	e.mu.Lock()
	defer e.mu.Unlock()
	return e.capability
}

// Embed returns an L2-normalized vector of length Dim. It never fails: any
// model error downgrades the process to the deterministic fallback.
func (e *Embedder) Embed(text string) []float32 {
	if e.Detect() == CapabilityReal {
		e.mu.Lock()
		m := e.model
		e.mu.Unlock()

		if m != nil {
			vec, err := m.embed(text)
			if err == nil {
				return normalize(vec)
			}
			log.Printf("[Embeddings] inference failed, downgrading to hash fallback: %v", err)
			e.mu.Lock()
			e.capability = CapabilityFallback
			if e.model != nil {
				e.model.close()
				e.model = nil
			}
			e.mu.Unlock()
		}
	}
	return fallbackEmbedding(text)
}

// Close releases the model session if one is loaded. Safe on an embedder
// that only ever used the fallback; embeds issued afterwards keep working
// on the fallback path.
func (e *Embedder) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.model != nil {
		e.model.close()
		e.model = nil
		e.capability = CapabilityFallback
	}
}

// fallbackEmbedding derives one deterministic value per output dimension
// from a seeded hash of the text.
func fallbackEmbedding(text string) []float32 {
	vec := make([]float32, Dim)
	for i := range vec {
		seed := hashSeed(text + strconv.Itoa(i))
		vec[i] = float32((math.Sin(float64(seed)) + 1) / 2)
	}
	return normalize(vec)
}

func hashSeed(s string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(s))
	return h.Sum64()
}

func normalize(vec []float32) []float32 {
	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}
	mag := math.Sqrt(sum)
	if mag == 0 {
		return vec
	}
	out := make([]float32, len(vec))
	for i, v := range vec {
		out[i] = float32(float64(v) / mag)
	}
	return out
}
