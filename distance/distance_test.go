package distance

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSquaredL2(t *testing.T) {
	t.Run("Simple", func(t *testing.T) {
		a := []float32{1, 2, 3}
		b := []float32{4, 6, 3}
		// (3)^2 + (4)^2 + 0 = 25
		assert.Equal(t, float32(25), SquaredL2(a, b))
	})

	t.Run("Identical", func(t *testing.T) {
		v := []float32{0.5, -1.5, 2}
		assert.Equal(t, float32(0), SquaredL2(v, v))
	})

	t.Run("Symmetric", func(t *testing.T) {
		a := []float32{1, -2, 0.5}
		b := []float32{-3, 4, 1.5}
		assert.Equal(t, SquaredL2(a, b), SquaredL2(b, a))
	})
}

func TestL2(t *testing.T) {
	a := []float32{0, 0}
	b := []float32{3, 4}
	assert.Equal(t, float32(5), L2(a, b))
}

func TestDot(t *testing.T) {
	a := []float32{1, 2, 3}
	b := []float32{4, 5, 6}
	assert.Equal(t, float32(32), Dot(a, b))
}

func TestNormalizeL2(t *testing.T) {
	t.Run("InPlace", func(t *testing.T) {
		v := []float32{3, 4}
		require.True(t, NormalizeL2InPlace(v))
		assert.InDelta(t, 0.6, v[0], 1e-6)
		assert.InDelta(t, 0.8, v[1], 1e-6)
	})

	t.Run("ZeroVector", func(t *testing.T) {
		assert.False(t, NormalizeL2InPlace([]float32{0, 0, 0}))
	})

	t.Run("Empty", func(t *testing.T) {
		assert.False(t, NormalizeL2InPlace(nil))
	})

	t.Run("Copy", func(t *testing.T) {
		src := []float32{3, 4}
		dst, ok := NormalizeL2Copy(src)
		require.True(t, ok)
		assert.Equal(t, []float32{3, 4}, src)
		assert.InDelta(t, 1.0, Dot(dst, dst), 1e-6)
	})
}
