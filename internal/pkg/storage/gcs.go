package storage

import (
	"context"
	"io"
	"time"

	gcs "cloud.google.com/go/storage"
)

// GCSOptions configures the Google Cloud Storage backend. The signer fields
// are only needed for PresignGet; without them reads and writes still work.
type GCSOptions struct {
	Client         *gcs.Client
	GoogleAccessID string
	PrivateKey     []byte
}

type gcsStore struct {
	client   *gcs.Client
	accessID string
	key      []byte
}

// NewGCS builds a GCS-backed store around an existing client, or the default
// one when none is supplied.
func NewGCS(ctx context.Context, opts GCSOptions) (Storage, error) {
	client := opts.Client
	if client == nil {
		c, err := gcs.NewClient(ctx)
		if err != nil {
			return nil, err
		}
		client = c
	}

	return &gcsStore{
		client:   client,
		accessID: opts.GoogleAccessID,
		key:      opts.PrivateKey,
	}, nil
}

func (g *gcsStore) PutObject(ctx context.Context, bucket, key string, r io.Reader, opts PutOptions) (ObjectInfo, error) {
	w := g.client.Bucket(bucket).Object(key).NewWriter(ctx)
	w.ContentType = opts.ContentType
	if len(opts.Metadata) > 0 {
		w.Metadata = opts.Metadata
	}

	if _, err := io.Copy(w, r); err != nil {
		_ = w.Close()
		return ObjectInfo{}, err
	}
	if err := w.Close(); err != nil {
		return ObjectInfo{}, err
	}

	info := ObjectInfo{Bucket: bucket, Key: key, Size: opts.Size, ContentType: opts.ContentType}
	if attrs := w.Attrs(); attrs != nil {
		info.Size = attrs.Size
		info.ETag = attrs.Etag
		info.UpdatedAt = attrs.Updated
	}

	return info, nil
}

func (g *gcsStore) GetObject(ctx context.Context, bucket, key string) (io.ReadCloser, error) {
	return g.client.Bucket(bucket).Object(key).NewReader(ctx)
}

func (g *gcsStore) DeleteObject(ctx context.Context, bucket, key string) error {
	return g.client.Bucket(bucket).Object(key).Delete(ctx)
}

func (g *gcsStore) PresignGet(_ context.Context, bucket, key string, expiry time.Duration) (string, error) {
	if g.accessID == "" || len(g.key) == 0 {
		return "", ErrMissingSigner
	}

	return gcs.SignedURL(bucket, key, &gcs.SignedURLOptions{
		Method:         "GET",
		Expires:        time.Now().Add(expiry),
		GoogleAccessID: g.accessID,
		PrivateKey:     g.key,
	})
}

func (g *gcsStore) Close() error { return g.client.Close() }
