package flat

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/vecquery/index"
	"github.com/hupe1980/vecquery/testutil"
)

func TestNew(t *testing.T) {
	t.Run("InferredDimension", func(t *testing.T) {
		f, err := New([][]float32{{1, 2, 3}, {4, 5, 6}})
		require.NoError(t, err)
		assert.Equal(t, 3, f.Dimension())
		assert.Equal(t, 2, f.VectorCount())
	})

	t.Run("ExplicitDimension", func(t *testing.T) {
		f, err := New(nil, func(o *Options) { o.Dimension = 4 })
		require.NoError(t, err)
		assert.Equal(t, 4, f.Dimension())
		assert.Equal(t, 0, f.VectorCount())
	})

	t.Run("DimensionMismatch", func(t *testing.T) {
		_, err := New([][]float32{{1, 2}, {3, 4, 5}})
		require.Error(t, err)

		var dm *index.ErrDimensionMismatch
		require.ErrorAs(t, err, &dm)
		assert.Equal(t, 2, dm.Expected)
		assert.Equal(t, 3, dm.Actual)
	})

	t.Run("InputNotAliased", func(t *testing.T) {
		vectors := [][]float32{{1, 1}}
		f, err := New(vectors)
		require.NoError(t, err)

		vectors[0][0] = 99

		got, ok := f.VectorByID(0)
		require.True(t, ok)
		assert.Equal(t, float32(1), got[0])
	})
}

func TestSearch(t *testing.T) {
	ctx := context.Background()

	t.Run("Ordering", func(t *testing.T) {
		f, err := New([][]float32{{0, 0}, {1, 0}, {0, 1}, {5, 5}})
		require.NoError(t, err)

		results, err := f.Search(ctx, []float32{0, 0}, 2, nil)
		require.NoError(t, err)
		require.Len(t, results, 2)

		assert.Equal(t, uint32(0), results[0].ID)
		assert.Equal(t, float32(0), results[0].Distance)
		// Candidates 1 and 2 tie at distance 1; either may come second.
		assert.Contains(t, []uint32{1, 2}, results[1].ID)
		assert.Equal(t, float32(1), results[1].Distance)
	})

	t.Run("ClampOversizedK", func(t *testing.T) {
		f, err := New([][]float32{{1, 1}})
		require.NoError(t, err)

		results, err := f.Search(ctx, []float32{1, 1}, 5, nil)
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, uint32(0), results[0].ID)
		assert.Equal(t, float32(0), results[0].Distance)
	})

	t.Run("EmptyIndex", func(t *testing.T) {
		f, err := New(nil)
		require.NoError(t, err)

		results, err := f.Search(ctx, []float32{0}, 3, nil)
		require.NoError(t, err)
		assert.Empty(t, results)
	})

	t.Run("InvalidK", func(t *testing.T) {
		f, err := New([][]float32{{1, 2}})
		require.NoError(t, err)

		_, err = f.Search(ctx, []float32{1, 2}, 0, nil)
		assert.ErrorIs(t, err, index.ErrInvalidK)
	})

	t.Run("QueryDimensionMismatch", func(t *testing.T) {
		f, err := New([][]float32{{1, 2}, {3, 4}})
		require.NoError(t, err)

		_, err = f.Search(ctx, []float32{1, 2, 3}, 1, nil)

		var dm *index.ErrDimensionMismatch
		require.ErrorAs(t, err, &dm)
		assert.Equal(t, 2, dm.Expected)
		assert.Equal(t, 3, dm.Actual)
	})

	t.Run("ZeroDistanceSelfMatch", func(t *testing.T) {
		rng := testutil.NewRNG(7)
		vectors := rng.UniformVectors(100, 8)
		f, err := New(vectors)
		require.NoError(t, err)

		results, err := f.Search(ctx, vectors[42], 3, nil)
		require.NoError(t, err)
		require.Len(t, results, 3)
		assert.Equal(t, uint32(42), results[0].ID)
		assert.Equal(t, float32(0), results[0].Distance)
	})

	t.Run("Determinism", func(t *testing.T) {
		rng := testutil.NewRNG(11)
		vectors := rng.UniformVectors(256, 16)
		query := rng.UniformVectors(1, 16)[0]

		f, err := New(vectors)
		require.NoError(t, err)

		first, err := f.Search(ctx, query, 10, nil)
		require.NoError(t, err)
		second, err := f.Search(ctx, query, 10, nil)
		require.NoError(t, err)
		assert.Equal(t, first, second)
	})

	t.Run("ExactnessAgainstFullSort", func(t *testing.T) {
		rng := testutil.NewRNG(23)
		vectors := rng.GaussianVectors(500, 12)
		query := rng.GaussianVectors(1, 12)[0]

		f, err := New(vectors)
		require.NoError(t, err)

		results, err := f.Search(ctx, query, 20, nil)
		require.NoError(t, err)

		want := testutil.BruteForceSearch(vectors, query, 20)
		require.Len(t, results, len(want))
		for i := range want {
			assert.Equal(t, want[i].Distance, results[i].Distance, "rank %d", i)
		}
	})

	t.Run("Filter", func(t *testing.T) {
		f, err := New([][]float32{{0, 0}, {1, 0}, {0, 1}, {5, 5}})
		require.NoError(t, err)

		results, err := f.Search(ctx, []float32{0, 0}, 4, &index.SearchOptions{
			Filter: func(id uint32) bool { return id%2 == 1 },
		})
		require.NoError(t, err)
		require.Len(t, results, 2)
		assert.Equal(t, uint32(1), results[0].ID)
		assert.Equal(t, uint32(3), results[1].ID)
	})

	t.Run("CanceledContext", func(t *testing.T) {
		f, err := New([][]float32{{1, 2}})
		require.NoError(t, err)

		canceled, cancel := context.WithCancel(ctx)
		cancel()

		_, err = f.Search(canceled, []float32{1, 2}, 1, nil)
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestSearchParallel(t *testing.T) {
	ctx := context.Background()

	rng := testutil.NewRNG(42)
	vectors := rng.UniformVectors(4096, 16)
	query := rng.UniformVectors(1, 16)[0]

	sequential, err := New(vectors)
	require.NoError(t, err)
	parallel, err := New(vectors, func(o *Options) { o.Parallelism = 4 })
	require.NoError(t, err)

	want, err := sequential.Search(ctx, query, 25, nil)
	require.NoError(t, err)
	got, err := parallel.Search(ctx, query, 25, nil)
	require.NoError(t, err)

	require.Len(t, got, len(want))
	for i := range want {
		assert.Equal(t, want[i].Distance, got[i].Distance, "rank %d", i)
	}
}

func BenchmarkSearch(b *testing.B) {
	ctx := context.Background()

	rng := testutil.NewRNG(1)
	vectors := rng.UniformVectors(10000, 64)
	query := rng.UniformVectors(1, 64)[0]

	f, err := New(vectors)
	if err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := f.Search(ctx, query, 10, nil); err != nil {
			b.Fatal(err)
		}
	}
}
