package storage

import (
	"context"
	"errors"
	"io"
	"time"
)

// ErrMissingSigner indicates the backend cannot mint signed URLs because no
// signing credentials were configured.
var ErrMissingSigner = errors.New("storage: signed url signer not configured")

// Storage is the object store surface the service depends on: write a blob,
// read it back, drop it, and hand out short-lived download links.
type Storage interface {
	io.Closer

	PutObject(ctx context.Context, bucket, key string, r io.Reader, opts PutOptions) (ObjectInfo, error)
	GetObject(ctx context.Context, bucket, key string) (io.ReadCloser, error)
	DeleteObject(ctx context.Context, bucket, key string) error
	PresignGet(ctx context.Context, bucket, key string, expiry time.Duration) (string, error)
}

// PutOptions carries what the backends need to describe an upload.
type PutOptions struct {
	Size        int64
	ContentType string
	Metadata    map[string]string
}

// ObjectInfo is the metadata returned after a successful write.
type ObjectInfo struct {
	Bucket      string
	Key         string
	Size        int64
	ETag        string
	ContentType string
	UpdatedAt   time.Time
}
