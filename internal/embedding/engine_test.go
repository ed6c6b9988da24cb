package embedding

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Input validation happens before the model is touched, so these tests run
// without an ONNX runtime present.

func TestEmbedEmptyTextRejected(t *testing.T) {
	e := NewEngine(Options{})
	_, err := e.Embed(context.Background(), "   ")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestEmbedBatchEmptyListRejected(t *testing.T) {
	e := NewEngine(Options{})
	_, err := e.EmbedBatch(context.Background(), nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestEmbedBatchEmptyItemRejected(t *testing.T) {
	e := NewEngine(Options{})
	_, err := e.EmbedBatch(context.Background(), []string{"fine", ""})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestUnloadWithoutInitialize(t *testing.T) {
	e := NewEngine(Options{})
	assert.NoError(t, e.Unload())
	assert.NoError(t, e.Unload())
}

func TestEngineDefaults(t *testing.T) {
	e := NewEngine(Options{})
	assert.Equal(t, 384, e.Dimensions())
	assert.Equal(t, 10, e.batchSize)
	assert.Equal(t, 256, e.maxSeqLen)
}

func TestMeanPoolRespectsAttentionMask(t *testing.T) {
	// Two tokens of 2 dims each; second token is padding.
	hidden := []float32{2, 4, 100, 100}
	mask := []int64{1, 0}
	pooled := meanPool(hidden, mask, 2)
	assert.Equal(t, []float32{2, 4}, pooled)
}

func TestNormalizeUnitLength(t *testing.T) {
	vec := normalize([]float32{3, 4})
	assert.InDelta(t, 0.6, vec[0], 1e-6)
	assert.InDelta(t, 0.8, vec[1], 1e-6)
}

func TestNormalizeZeroVectorUnchanged(t *testing.T) {
	vec := normalize([]float32{0, 0, 0})
	assert.Equal(t, []float32{0, 0, 0}, vec)
}
