// Package bundle loads embeddings bundles: a candidate vector matrix plus
// a position-aligned label list.
//
// A bundle is addressed by the name of its vectors blob. Vectors are
// stored either as a NumPy .npy dense array or as a JSON array of number
// arrays; labels live next to the vectors as a JSON array of strings under
// "<name>.json". Blobs may additionally be zstd, gzip, or lz4 compressed,
// signalled by a trailing .zst/.gz/.lz4 extension.
package bundle

import (
	"context"
	"fmt"
	"strings"

	"github.com/hupe1980/vecquery"
	"github.com/hupe1980/vecquery/blobstore"
	"github.com/hupe1980/vecquery/codec"
)

// Options contains configuration options for bundle loading.
type Options struct {
	// Codec decodes textual (JSON) vector and label blobs.
	// If nil, codec.Default is used.
	Codec codec.Codec
}

// Bundle is a loaded candidate matrix with its aligned labels.
type Bundle struct {
	Vectors [][]float32
	Labels  []string
}

// Len returns the number of candidates in the bundle.
func (b *Bundle) Len() int { return len(b.Vectors) }

// Dimension returns the dimensionality of the first vector, or 0 for an
// empty bundle.
func (b *Bundle) Dimension() int {
	if len(b.Vectors) == 0 {
		return 0
	}
	return len(b.Vectors[0])
}

// Load reads the vectors blob at name and the labels blob next to it and
// returns them as an aligned Bundle. A candidate/label count disagreement
// fails with *vecquery.ErrLengthMismatch; nothing is truncated to fit.
func Load(ctx context.Context, store blobstore.BlobStore, name string, optFns ...func(o *Options)) (*Bundle, error) {
	opts := Options{}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Codec == nil {
		opts.Codec = codec.Default
	}

	vectors, err := loadVectors(ctx, store, name, opts.Codec)
	if err != nil {
		return nil, fmt.Errorf("bundle vectors %q: %w", name, err)
	}

	labels, err := loadLabels(ctx, store, name, opts.Codec)
	if err != nil {
		return nil, err
	}

	if len(vectors) != len(labels) {
		return nil, &vecquery.ErrLengthMismatch{Vectors: len(vectors), Labels: len(labels)}
	}

	return &Bundle{Vectors: vectors, Labels: labels}, nil
}

func loadVectors(ctx context.Context, store blobstore.BlobStore, name string, c codec.Codec) ([][]float32, error) {
	payload, logical, err := readBlob(ctx, store, name)
	if err != nil {
		return nil, err
	}

	if strings.HasSuffix(logical, ".npy") {
		return parseNPY(payload)
	}

	var vectors [][]float32
	if err := c.Unmarshal(payload, &vectors); err != nil {
		return nil, fmt.Errorf("decode vector array: %w", err)
	}
	return vectors, nil
}

func loadLabels(ctx context.Context, store blobstore.BlobStore, name string, c codec.Codec) ([]string, error) {
	var lastErr error
	for _, candidate := range labelNames(name) {
		payload, _, err := readBlob(ctx, store, candidate)
		if err != nil {
			lastErr = err
			continue
		}
		var labels []string
		if err := c.Unmarshal(payload, &labels); err != nil {
			return nil, fmt.Errorf("bundle labels %q: %w", candidate, err)
		}
		return labels, nil
	}
	return nil, fmt.Errorf("bundle labels for %q: %w", name, lastErr)
}

// labelNames returns the blob names tried for the label list. Labels sit
// next to the vectors as "<name>.json" with any compression extension
// stripped first; a compressed bundle may compress its labels the same way.
func labelNames(name string) []string {
	base, ext := splitCompressExt(name)
	names := []string{base + ".json"}
	if ext != "" {
		names = append(names, base+".json"+ext)
	}
	return names
}

// readBlob fetches a blob and undoes any compression signalled by the
// name. It returns the payload and the logical name with the compression
// extension stripped.
func readBlob(ctx context.Context, store blobstore.BlobStore, name string) ([]byte, string, error) {
	blob, err := store.Open(ctx, name)
	if err != nil {
		return nil, "", err
	}
	defer blob.Close()

	raw, err := blobstore.ReadAll(blob)
	if err != nil {
		return nil, "", err
	}

	payload, logical, err := decompress(name, raw)
	if err != nil {
		return nil, "", err
	}
	return payload, logical, nil
}
