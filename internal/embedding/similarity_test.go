package embedding

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCosineSimilarityIdenticalVectors(t *testing.T) {
	v := []float32{0.1, 0.5, 0.3, 0.7}
	score, err := CosineSimilarity(v, v)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, score, 1e-6)
}

func TestCosineSimilarityBounds(t *testing.T) {
	cases := []struct {
		name string
		a, b []float32
	}{
		{"orthogonal", []float32{1, 0}, []float32{0, 1}},
		{"parallel", []float32{2, 2}, []float32{4, 4}},
		{"mixed", []float32{0.3, 0.9, 0.1}, []float32{0.8, 0.2, 0.5}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			score, err := CosineSimilarity(tc.a, tc.b)
			require.NoError(t, err)
			assert.GreaterOrEqual(t, score, float32(0))
			assert.LessOrEqual(t, score, float32(1.0000001))
		})
	}
}

func TestCosineSimilarityZeroVector(t *testing.T) {
	score, err := CosineSimilarity([]float32{1, 2, 3}, []float32{0, 0, 0})
	require.NoError(t, err)
	assert.Zero(t, score)
}

func TestCosineSimilarityDimensionMismatch(t *testing.T) {
	_, err := CosineSimilarity([]float32{1, 2}, []float32{1, 2, 3})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDimensionMismatch)
}
