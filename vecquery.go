package vecquery

import (
	"context"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/hupe1980/vecquery/index"
	"github.com/hupe1980/vecquery/index/flat"
)

// SearchResult is a single ranked match.
type SearchResult struct {
	// ID is the candidate's position in the input matrix.
	ID uint32

	// Label is the text associated with the candidate.
	Label string

	// Score is the squared L2 distance between the query and the candidate.
	Score float32
}

// Index pairs an immutable candidate matrix with its position-aligned
// label list and answers exact top-k queries against it.
type Index struct {
	flat   *flat.Flat
	labels []string
	logger *Logger
	filter *roaring.Bitmap
}

// New builds an Index from a candidate matrix and a label list.
//
// Candidates and labels are paired by position and must have equal length;
// a disagreement fails with *ErrLengthMismatch. All vectors must share the
// dimensionality of the first vector; a stray vector fails with
// *ErrDimensionMismatch. The input slices are copied, so the caller may
// reuse them after New returns.
func New(vectors [][]float32, labels []string, optFns ...Option) (*Index, error) {
	o := applyOptions(optFns)

	if len(vectors) != len(labels) {
		err := &ErrLengthMismatch{Vectors: len(vectors), Labels: len(labels)}
		o.logger.LogBuild(context.Background(), len(vectors), 0, err)
		return nil, err
	}

	f, err := flat.New(vectors, func(fo *flat.Options) {
		fo.Parallelism = o.parallelism
	})
	if err != nil {
		err = translateError(err)
		o.logger.LogBuild(context.Background(), len(vectors), 0, err)
		return nil, err
	}

	copied := make([]string, len(labels))
	copy(copied, labels)

	o.logger.LogBuild(context.Background(), f.VectorCount(), f.Dimension(), nil)

	return &Index{
		flat:   f,
		labels: copied,
		logger: o.logger,
		filter: o.filter,
	}, nil
}

// Len returns the number of candidates in the index.
func (idx *Index) Len() int { return idx.flat.VectorCount() }

// Dimension returns the fixed dimensionality of the candidate set, or 0
// for an empty index built without vectors.
func (idx *Index) Dimension() int { return idx.flat.Dimension() }

// Search returns the k candidates closest to query by squared L2 distance,
// ranked ascending. The result length is min(k, Len()); an oversized k is
// clamped, not an error. An empty index yields an empty result. A query of
// the wrong dimensionality fails with *ErrDimensionMismatch, and k < 1
// fails with ErrInvalidK.
//
// Search is deterministic and side-effect free: repeated calls with the
// same inputs return identical results. The relative order of
// equal-distance candidates is implementation-defined.
func (idx *Index) Search(ctx context.Context, query []float32, k int) ([]SearchResult, error) {
	var opts *index.SearchOptions
	if idx.filter != nil {
		bm := idx.filter
		opts = &index.SearchOptions{
			Filter: func(id uint32) bool { return bm.Contains(id) },
		}
	}

	matches, err := idx.flat.Search(ctx, query, k, opts)
	if err != nil {
		err = translateError(err)
		idx.logger.LogSearch(ctx, k, 0, err)
		return nil, err
	}

	results := make([]SearchResult, len(matches))
	for i, m := range matches {
		results[i] = SearchResult{
			ID:    m.ID,
			Label: idx.labels[m.ID],
			Score: m.Distance,
		}
	}

	idx.logger.LogSearch(ctx, k, len(results), nil)
	return results, nil
}
