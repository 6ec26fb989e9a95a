// Package minio implements blobstore.Store on a MinIO (or any S3-compatible)
// object store.
package minio

import (
	"context"
	"fmt"
	"io"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/hupe1980/scango/blobstore"
)

// Options configures a MinIO Store.
type Options struct {
	// Prefix is prepended to every blob name.
	Prefix string
	// Secure enables TLS for the connection.
	Secure bool
	// Client overrides the client built from endpoint and credentials.
	Client *minio.Client
}

// Store implements blobstore.Store on a MinIO bucket.
type Store struct {
	client *minio.Client
	bucket string
	prefix string
}

var _ blobstore.Store = (*Store)(nil)

// New creates a Store for the given endpoint and bucket using static
// credentials.
func New(endpoint, accessKey, secretKey, bucket string, optFns ...func(*Options)) (*Store, error) {
	var o Options
	for _, fn := range optFns {
		fn(&o)
	}

	client := o.Client
	if client == nil {
		var err error
		client, err = minio.New(endpoint, &minio.Options{
			Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
			Secure: o.Secure,
		})
		if err != nil {
			return nil, fmt.Errorf("create minio client: %w", err)
		}
	}

	return &Store{
		client: client,
		bucket: bucket,
		prefix: o.Prefix,
	}, nil
}

// WithPrefix prepends a key prefix to every blob name.
func WithPrefix(prefix string) func(*Options) {
	return func(o *Options) {
		o.Prefix = prefix
	}
}

// WithSecure enables TLS.
func WithSecure(secure bool) func(*Options) {
	return func(o *Options) {
		o.Secure = secure
	}
}

// WithClient supplies a preconfigured MinIO client.
func WithClient(client *minio.Client) func(*Options) {
	return func(o *Options) {
		o.Client = client
	}
}

// Put implements blobstore.Store.
func (s *Store) Put(ctx context.Context, name string, r io.Reader) error {
	_, err := s.client.PutObject(ctx, s.bucket, s.prefix+name, r, -1, minio.PutObjectOptions{})
	return err
}

// Get implements blobstore.Store.
func (s *Store) Get(ctx context.Context, name string) (io.ReadCloser, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, s.prefix+name, minio.GetObjectOptions{})
	if err != nil {
		return nil, err
	}

	// GetObject is lazy; a missing key only surfaces on first read.
	if _, err := obj.Stat(); err != nil {
		_ = obj.Close()
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return nil, fmt.Errorf("%w: %s", blobstore.ErrNotFound, name)
		}
		return nil, err
	}

	return obj, nil
}

// Delete implements blobstore.Store.
func (s *Store) Delete(ctx context.Context, name string) error {
	return s.client.RemoveObject(ctx, s.bucket, s.prefix+name, minio.RemoveObjectOptions{})
}

// List implements blobstore.Store.
func (s *Store) List(ctx context.Context, prefix string) ([]string, error) {
	var names []string
	for obj := range s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{
		Prefix:    s.prefix + prefix,
		Recursive: true,
	}) {
		if obj.Err != nil {
			return nil, obj.Err
		}
		names = append(names, obj.Key[len(s.prefix):])
	}
	return names, nil
}
