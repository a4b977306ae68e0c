package reportqa

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSemanticHashDeterministic(t *testing.T) {
	hasher := newSemanticHasher(defaultSemanticHashPlanes, defaultSemanticHashSeed)
	vector := []float32{0.2, -0.4, 0.9, 0.1}

	first, ok, err := hasher.Hash(vector)
	require.NoError(t, err)
	require.True(t, ok)

	second, ok, err := hasher.Hash(vector)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, first, second)

	// A fresh hasher with the same seed produces the same buckets.
	other := newSemanticHasher(defaultSemanticHashPlanes, defaultSemanticHashSeed)
	third, ok, err := other.Hash(vector)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, first, third)
}

func TestSemanticHashSeparatesOpposedVectors(t *testing.T) {
	hasher := newSemanticHasher(defaultSemanticHashPlanes, defaultSemanticHashSeed)

	a, ok, err := hasher.Hash([]float32{1, 0.5, -0.25, 0.8})
	require.NoError(t, err)
	require.True(t, ok)

	b, ok, err := hasher.Hash([]float32{-1, -0.5, 0.25, -0.8})
	require.NoError(t, err)
	require.True(t, ok)

	require.NotEqual(t, a, b)
}

func TestSemanticHashEmptyVector(t *testing.T) {
	hasher := newSemanticHasher(defaultSemanticHashPlanes, defaultSemanticHashSeed)
	_, ok, err := hasher.Hash(nil)
	require.NoError(t, err)
	require.False(t, ok)
}
