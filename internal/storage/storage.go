// Package storage provides object storage for vehicle photos.
package storage

import (
	"context"
	"io"
)

// ObjectStorage defines the object operations the photo upload flow needs.
// The minio backend implements it; tests substitute an in-memory fake.
type ObjectStorage interface {
	EnsureBucket(ctx context.Context) error
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
	Bucket() string
}
