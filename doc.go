// Package vecquery provides exact nearest-neighbor search over a fixed set
// of labeled vectors.
//
// Vecquery answers a single question: given a candidate matrix of
// fixed-dimensionality vectors, each paired with a text label, which
// candidates are closest to a query vector under squared L2 distance, and
// in what order? The index is an immutable snapshot built once per
// invocation; there is no persistent state and no incremental updates.
//
// # Quick Start
//
//	ctx := context.Background()
//	idx, err := vecquery.New(vectors, labels)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	results, err := idx.Search(ctx, query, 5)
//	for _, r := range results {
//	    fmt.Println(r.Label, r.Score)
//	}
//
// # Score Semantics
//
// Scores are squared L2 (Euclidean) distances. No square root is taken:
// squared distance preserves ranking, avoids a sqrt per candidate, and
// matches the behavior of flat L2 indexes in common vector-search stacks.
// Treat the score as a sortable quantity, not a physically meaningful
// unit.
//
// # Loading Bundles
//
// The bundle package loads candidate matrices and label lists from
// embeddings bundles (.npy dense arrays or JSON text arrays, optionally
// zstd/gzip/lz4 compressed) through a blobstore (local filesystem or
// S3-compatible object storage).
package vecquery
