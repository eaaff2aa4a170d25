// Package flat provides an exact brute-force index over an immutable
// snapshot of vectors.
//
// The index compares a query against every stored candidate, so results
// are always exact. Distances are squared L2: ranking is identical to true
// Euclidean distance without a square root per candidate.
package flat

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/vecquery/distance"
	"github.com/hupe1980/vecquery/index"
	"github.com/hupe1980/vecquery/internal/queue"
)

// minChunk is the smallest candidate range worth handing to a worker.
// Below this, goroutine overhead dominates the scan itself.
const minChunk = 1024

// Options contains configuration options for the flat index.
type Options struct {
	// Dimension is the fixed vector dimensionality for this index.
	// If 0, it is inferred from the first vector.
	Dimension int

	// Parallelism is the number of workers used to scan candidates during
	// a search. Values <= 1 mean a sequential scan.
	Parallelism int
}

// DefaultOptions contains the default configuration options for the flat index.
var DefaultOptions = Options{
	Dimension:   0,
	Parallelism: 1,
}

// Flat is an immutable flat index. Construction copies the candidate
// vectors into its own row-major storage; after that the index is never
// mutated, so any number of searches may run concurrently without
// coordination.
type Flat struct {
	dim         int
	count       int
	data        []float32 // row-major, count*dim, each candidate contiguous
	parallelism int
}

// New creates a flat index from the given candidate matrix.
//
// Every vector must have the index dimensionality (configured, or inferred
// from the first vector); a mismatched vector fails construction with
// *index.ErrDimensionMismatch. The input is copied, so callers may reuse
// or mutate their slices afterwards.
func New(vectors [][]float32, optFns ...func(o *Options)) (*Flat, error) {
	opts := DefaultOptions

	for _, fn := range optFns {
		fn(&opts)
	}

	dim := opts.Dimension
	if dim <= 0 && len(vectors) > 0 {
		dim = len(vectors[0])
	}

	data := make([]float32, 0, len(vectors)*dim)
	for _, v := range vectors {
		if len(v) != dim {
			return nil, &index.ErrDimensionMismatch{Expected: dim, Actual: len(v)}
		}
		data = append(data, v...)
	}

	return &Flat{
		dim:         dim,
		count:       len(vectors),
		data:        data,
		parallelism: opts.Parallelism,
	}, nil
}

func (*Flat) Name() string { return "Flat" }

// Dimension returns the fixed vector dimensionality, or 0 for an index
// built from no vectors without an explicit dimension.
func (f *Flat) Dimension() int { return f.dim }

// VectorCount returns the number of candidates in the index.
func (f *Flat) VectorCount() int { return f.count }

// VectorByID returns the stored vector at the given position.
// The returned slice aliases internal storage and must not be modified.
func (f *Flat) VectorByID(id uint32) ([]float32, bool) {
	if int(id) >= f.count {
		return nil, false
	}
	return f.data[int(id)*f.dim : (int(id)+1)*f.dim], true
}

// Search returns the k candidates nearest to query by squared L2 distance,
// ranked ascending.
//
// k is clamped to the candidate count; an empty index returns an empty
// result with no error. A query of the wrong dimensionality fails with
// *index.ErrDimensionMismatch, regardless of any validation the caller
// already did.
func (f *Flat) Search(ctx context.Context, query []float32, k int, opts *index.SearchOptions) ([]index.SearchResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if k <= 0 {
		return nil, index.ErrInvalidK
	}
	if f.count == 0 {
		return []index.SearchResult{}, nil
	}
	if len(query) != f.dim {
		return nil, &index.ErrDimensionMismatch{Expected: f.dim, Actual: len(query)}
	}

	var filter func(id uint32) bool
	if opts != nil && opts.Filter != nil {
		filter = opts.Filter
	}

	if k > f.count {
		k = f.count
	}

	workers := f.workers()
	if workers > 1 {
		return f.searchParallel(ctx, query, k, workers, filter)
	}

	top := f.scanRange(query, k, 0, f.count, filter)
	return drain(top), nil
}

// workers returns the number of scan workers to use for a single query.
func (f *Flat) workers() int {
	n := f.parallelism
	if limit := f.count / minChunk; n > limit {
		n = limit
	}
	if n < 1 {
		n = 1
	}
	return n
}

// scanRange scans candidates in [lo, hi) and returns a bounded max-heap
// holding the k nearest. The heap root is the worst of the current top-k,
// so a candidate only displaces it when strictly closer.
func (f *Flat) scanRange(query []float32, k, lo, hi int, filter func(id uint32) bool) *queue.PriorityQueue {
	top := queue.NewMax(k)

	for i := lo; i < hi; i++ {
		id := uint32(i)
		if filter != nil && !filter(id) {
			continue
		}

		vec := f.data[i*f.dim : (i+1)*f.dim]
		d := distance.SquaredL2(query, vec)

		if top.Len() < k {
			top.PushItem(queue.Item{ID: id, Distance: d})
			continue
		}
		if worst, ok := top.TopItem(); ok && d < worst.Distance {
			top.PopItem()
			top.PushItem(queue.Item{ID: id, Distance: d})
		}
	}

	return top
}

// searchParallel partitions the candidate range across workers, each
// producing a local top-k, and merges the partial lists. The merged result
// is exactly what the sequential scan would produce, modulo the relative
// order of equal-distance candidates.
func (f *Flat) searchParallel(ctx context.Context, query []float32, k, workers int, filter func(id uint32) bool) ([]index.SearchResult, error) {
	partials := make([]*queue.PriorityQueue, workers)
	chunk := (f.count + workers - 1) / workers

	g, ctx := errgroup.WithContext(ctx)
	for w := 0; w < workers; w++ {
		w := w
		lo := w * chunk
		hi := lo + chunk
		if hi > f.count {
			hi = f.count
		}
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			partials[w] = f.scanRange(query, k, lo, hi, filter)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	merged := queue.NewMax(k)
	for _, p := range partials {
		for {
			item, ok := p.PopItem()
			if !ok {
				break
			}
			if merged.Len() < k {
				merged.PushItem(item)
				continue
			}
			if worst, _ := merged.TopItem(); item.Distance < worst.Distance {
				merged.PopItem()
				merged.PushItem(item)
			}
		}
	}

	return drain(merged), nil
}

// drain empties a max-heap into an ascending result slice.
func drain(top *queue.PriorityQueue) []index.SearchResult {
	results := make([]index.SearchResult, top.Len())
	for i := top.Len() - 1; i >= 0; i-- {
		item, _ := top.PopItem()
		results[i] = index.SearchResult{ID: item.ID, Distance: item.Distance}
	}
	return results
}
