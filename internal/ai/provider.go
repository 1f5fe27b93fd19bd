package ai

import "context"

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Options tunes a single generation call.
type Options struct {
	Temperature float64
}

// DefaultOptions matches the interactive answer path.
func DefaultOptions() Options {
	return Options{Temperature: 0.7}
}

// Provider is a text-generation backend reachable as a batch call.
type Provider interface {
	Chat(ctx context.Context, messages []Message, opts Options) (string, error)
}
