package providers

import (
	"context"
)

// TextEmbedder turns text into a fixed-length vector. Identical input must
// yield an identical vector.
type TextEmbedder interface {
	// Embed returns one vector per input text, in input order
	Embed(ctx context.Context, texts []string) ([][]float32, error)

	// Model identifies the embedding space; vectors from different models are not comparable
	Model() string
}
