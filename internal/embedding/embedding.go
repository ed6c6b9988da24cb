// Package embedding produces dense vectors for text using a local ONNX
// model and provides cosine similarity over those vectors.
package embedding

import (
	"context"
	"errors"
)

var (
	// ErrInvalidInput marks caller-correctable input problems (empty text).
	ErrInvalidInput = errors.New("invalid embedding input")
	// ErrModelInit marks a failed model load; every later embed call will
	// fail the same way until the cause is remediated.
	ErrModelInit = errors.New("embedding model initialization failed")
	// ErrDimensionMismatch marks vectors of different lengths, usually a
	// stored embedding produced by a different model.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")
)

// Embedder converts text into fixed-dimensional vectors.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	Dimensions() int
}
