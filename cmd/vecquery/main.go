// Command vecquery answers a single exact nearest-neighbor query against
// an embeddings bundle.
//
// It loads the bundle fresh, runs one top-N search, prints the ranked
// results as JSON to stdout and exits; there is no state kept between
// invocations. Failures are printed as a JSON error object on stderr with
// a non-zero exit status.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	miniogo "github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/spf13/cobra"

	"github.com/hupe1980/vecquery"
	"github.com/hupe1980/vecquery/blobstore"
	"github.com/hupe1980/vecquery/blobstore/minio"
	"github.com/hupe1980/vecquery/bundle"
	"github.com/hupe1980/vecquery/codec"
)

type searchFlags struct {
	bundle       string
	query        string
	queryFile    string
	topN         int
	parallelism  int
	s3Endpoint   string
	s3Insecure   bool
	downloadRate int
	logLevel     string
	logJSON      bool
}

func main() {
	flags := &searchFlags{}

	rootCmd := &cobra.Command{
		Use:   "vecquery",
		Short: "Exact top-N vector search over an embeddings bundle",
		Long: `vecquery runs one exact nearest-neighbor query against a bundle of
candidate vectors and their labels, ranked by ascending squared L2
distance.

The bundle is addressed by its vectors blob: a NumPy .npy dense array or
a JSON array of number arrays, optionally .zst/.gz/.lz4 compressed, with
labels in an adjacent "<name>.json". Bundles may live on the local
filesystem or in S3-compatible object storage (s3://bucket/key).

Examples:
  # Local .npy bundle
  vecquery --bundle ./embeddings.npy --query '[0.1, 0.2, 0.3]' --topn 5

  # JSON bundle from S3-compatible storage (credentials from environment)
  vecquery --bundle s3://vectors/code-index.json --s3-endpoint minio.internal:9000 \
      --query-file query.json --topn 10`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSearch(cmd.Context(), flags)
		},
	}

	rootCmd.Flags().StringVar(&flags.bundle, "bundle", "", "path or s3:// URL of the vectors blob (required)")
	rootCmd.Flags().StringVar(&flags.query, "query", "", "query embedding as a JSON number array")
	rootCmd.Flags().StringVar(&flags.queryFile, "query-file", "", "file containing the query embedding as a JSON number array")
	rootCmd.Flags().IntVar(&flags.topN, "topn", 5, "number of results to return")
	rootCmd.Flags().IntVar(&flags.parallelism, "parallelism", 1, "number of workers scanning candidates")
	rootCmd.Flags().StringVar(&flags.s3Endpoint, "s3-endpoint", "", "S3-compatible endpoint for s3:// bundles")
	rootCmd.Flags().BoolVar(&flags.s3Insecure, "s3-insecure", false, "use plain HTTP for the S3 endpoint")
	rootCmd.Flags().IntVar(&flags.downloadRate, "download-rate", 0, "max bundle download rate in bytes/sec (0 = unlimited)")
	rootCmd.Flags().StringVar(&flags.logLevel, "log-level", "warn", "log level (debug, info, warn, error)")
	rootCmd.Flags().BoolVar(&flags.logJSON, "log-json", false, "emit logs as JSON")
	_ = rootCmd.MarkFlagRequired("bundle")

	if err := rootCmd.Execute(); err != nil {
		msg, _ := codec.Default.Marshal(map[string]string{"error": err.Error()})
		fmt.Fprintln(os.Stderr, string(msg))
		os.Exit(1)
	}
}

func runSearch(ctx context.Context, flags *searchFlags) error {
	logger, err := newLogger(flags)
	if err != nil {
		return err
	}

	query, err := loadQuery(flags)
	if err != nil {
		return err
	}

	store, name, err := openStore(flags)
	if err != nil {
		return err
	}

	b, err := bundle.Load(ctx, store, name)
	if err != nil {
		logger.LogLoad(ctx, name, 0, 0, err)
		return err
	}
	logger.LogLoad(ctx, name, b.Len(), b.Dimension(), nil)

	idx, err := vecquery.New(b.Vectors, b.Labels,
		vecquery.WithLogger(logger),
		vecquery.WithParallelism(flags.parallelism),
	)
	if err != nil {
		return err
	}

	results, err := idx.Search(ctx, query, flags.topN)
	if err != nil {
		return err
	}

	ranked := make([]codec.RankedResult, len(results))
	for i, r := range results {
		ranked[i] = codec.RankedResult{Text: r.Label, Score: r.Score}
	}

	return codec.EncodeResults(os.Stdout, ranked)
}

func loadQuery(flags *searchFlags) ([]float32, error) {
	raw := []byte(flags.query)
	if flags.queryFile != "" {
		if flags.query != "" {
			return nil, fmt.Errorf("--query and --query-file are mutually exclusive")
		}
		data, err := os.ReadFile(flags.queryFile)
		if err != nil {
			return nil, err
		}
		raw = data
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("one of --query or --query-file is required")
	}

	return codec.DecodeQuery(raw)
}

func openStore(flags *searchFlags) (blobstore.BlobStore, string, error) {
	if strings.HasPrefix(flags.bundle, "s3://") {
		return openS3Store(flags)
	}
	dir := filepath.Dir(flags.bundle)
	return blobstore.NewLocalStore(dir), filepath.Base(flags.bundle), nil
}

func openS3Store(flags *searchFlags) (blobstore.BlobStore, string, error) {
	u, err := url.Parse(flags.bundle)
	if err != nil {
		return nil, "", fmt.Errorf("parse bundle URL: %w", err)
	}
	bucket := u.Host
	key := strings.TrimPrefix(u.Path, "/")
	if bucket == "" || key == "" {
		return nil, "", fmt.Errorf("bundle URL %q must look like s3://bucket/key", flags.bundle)
	}
	if flags.s3Endpoint == "" {
		return nil, "", fmt.Errorf("--s3-endpoint is required for s3:// bundles")
	}

	client, err := miniogo.New(flags.s3Endpoint, &miniogo.Options{
		Creds:  credentials.NewChainCredentials([]credentials.Provider{&credentials.EnvAWS{}, &credentials.EnvMinio{}}),
		Secure: !flags.s3Insecure,
	})
	if err != nil {
		return nil, "", fmt.Errorf("connect %q: %w", flags.s3Endpoint, err)
	}

	store := minio.NewStore(client, bucket, func(o *minio.Options) {
		o.DownloadBytesPerSec = flags.downloadRate
	})
	return store, key, nil
}

func newLogger(flags *searchFlags) (*vecquery.Logger, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(flags.logLevel)); err != nil {
		return nil, fmt.Errorf("invalid log level %q", flags.logLevel)
	}
	if flags.logJSON {
		return vecquery.NewJSONLogger(level), nil
	}
	return vecquery.NewTextLogger(level), nil
}
