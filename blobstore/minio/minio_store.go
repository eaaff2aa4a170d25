// Package minio implements blobstore.BlobStore for MinIO and S3-compatible
// object storage. Bundles are fetched in full on Open: a query loads its
// inputs fresh each invocation, so there is no benefit to ranged reads.
package minio

import (
	"bytes"
	"context"
	"io"
	"path"

	"github.com/minio/minio-go/v7"

	"github.com/hupe1980/vecquery/blobstore"
)

// Options configures a Store.
type Options struct {
	// Prefix is prepended to all keys (e.g. "bundles/").
	Prefix string

	// DownloadBytesPerSec throttles blob downloads. 0 means unlimited.
	DownloadBytesPerSec int
}

// Store implements blobstore.BlobStore for MinIO and S3-compatible storage.
type Store struct {
	client *minio.Client
	bucket string
	opts   Options
}

// NewStore creates a new MinIO blob store for the given bucket.
func NewStore(client *minio.Client, bucket string, optFns ...func(o *Options)) *Store {
	opts := Options{}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Store{
		client: client,
		bucket: bucket,
		opts:   opts,
	}
}

func (s *Store) key(name string) string {
	return path.Join(s.opts.Prefix, name)
}

// Open downloads the object and returns it as an in-memory blob.
func (s *Store) Open(ctx context.Context, name string) (blobstore.Blob, error) {
	key := s.key(name)

	obj, err := s.client.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, translateErr(err)
	}
	defer obj.Close()

	var r io.Reader = obj
	if s.opts.DownloadBytesPerSec > 0 {
		r = blobstore.NewRateLimitedReader(ctx, obj, s.opts.DownloadBytesPerSec)
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, translateErr(err)
	}

	return &remoteBlob{data: data}, nil
}

func translateErr(err error) error {
	errResp := minio.ToErrorResponse(err)
	if errResp.Code == "NoSuchKey" || errResp.Code == "NotFound" {
		return blobstore.ErrNotFound
	}
	return err
}

type remoteBlob struct {
	data []byte
}

func (b *remoteBlob) ReadAt(p []byte, off int64) (int, error) {
	return bytes.NewReader(b.data).ReadAt(p, off)
}

func (b *remoteBlob) Close() error { return nil }

func (b *remoteBlob) Size() int64 { return int64(len(b.data)) }

func (b *remoteBlob) Bytes() ([]byte, error) { return b.data, nil }
