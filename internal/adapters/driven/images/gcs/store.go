// Package gcs stores scans as objects in a Google Cloud Storage bucket.
//
// Objects are written with a DoesNotExist precondition, so an upload never
// replaces an existing scan. Paths have the form gs://bucket/object.
package gcs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"cloud.google.com/go/storage"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/custodia-labs/markscan/internal/core/domain"
	"github.com/custodia-labs/markscan/internal/core/ports/driven"
	"github.com/custodia-labs/markscan/internal/logger"
)

// Ensure Store implements the interface.
var _ driven.ImageStore = (*Store)(nil)

// Store is a Cloud Storage backed driven.ImageStore.
type Store struct {
	client *storage.Client
	bucket string
	prefix string
	owned  bool
}

// NewStore creates a client and a store for bucket. Objects are written
// under prefix, which may be empty.
func NewStore(ctx context.Context, bucket, prefix string, opts ...option.ClientOption) (*Store, error) {
	if bucket == "" {
		return nil, fmt.Errorf("%w: gcs bucket must be set", domain.ErrInvalidInput)
	}
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating storage client: %w", err)
	}
	s := NewStoreWithClient(client, bucket, prefix)
	s.owned = true
	return s, nil
}

// NewStoreWithClient wraps an existing client. Close does not close it.
func NewStoreWithClient(client *storage.Client, bucket, prefix string) *Store {
	return &Store{
		client: client,
		bucket: bucket,
		prefix: strings.Trim(prefix, "/"),
	}
}

// Close releases the client if the store created it.
func (s *Store) Close() error {
	if s.owned {
		return s.client.Close()
	}
	return nil
}

// Put uploads data as a new object and returns its gs:// path.
func (s *Store) Put(ctx context.Context, name string, data []byte) (string, error) {
	if name == "" || strings.Contains(name, "/") {
		return "", fmt.Errorf("%w: invalid image name %q", domain.ErrInvalidInput, name)
	}
	object := name
	if s.prefix != "" {
		object = s.prefix + "/" + name
	}

	writer := s.client.Bucket(s.bucket).Object(object).
		If(storage.Conditions{DoesNotExist: true}).
		NewWriter(ctx)
	writer.ContentType = domain.ContentTypeFor(name)

	if _, err := writer.Write(data); err != nil {
		_ = writer.Close()
		return "", s.mapWriteError(object, err)
	}
	if err := writer.Close(); err != nil {
		return "", s.mapWriteError(object, err)
	}

	path := objectPath(s.bucket, object)
	logger.Debug("gcs: stored %s (%d bytes)", path, len(data))
	return path, nil
}

// Get downloads the object at path.
func (s *Store) Get(ctx context.Context, path string) ([]byte, error) {
	bucket, object, err := parseObjectPath(path)
	if err != nil {
		return nil, err
	}
	reader, err := s.client.Bucket(bucket).Object(object).NewReader(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return data, nil
}

// Delete removes the object at path. A missing object is not an error.
func (s *Store) Delete(ctx context.Context, path string) error {
	bucket, object, err := parseObjectPath(path)
	if err != nil {
		return err
	}
	if err := s.client.Bucket(bucket).Object(object).Delete(ctx); err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return nil
		}
		return fmt.Errorf("deleting %s: %w", path, err)
	}
	return nil
}

func (s *Store) mapWriteError(object string, err error) error {
	if isPreconditionFailed(err) {
		return fmt.Errorf("object %s: %w", object, domain.ErrAlreadyExists)
	}
	return fmt.Errorf("writing %s: %w", objectPath(s.bucket, object), err)
}

// isPreconditionFailed reports whether err is a 412 from the API.
func isPreconditionFailed(err error) bool {
	var gerr *googleapi.Error
	return errors.As(err, &gerr) && gerr.Code == http.StatusPreconditionFailed
}

func objectPath(bucket, object string) string {
	return "gs://" + bucket + "/" + object
}

// parseObjectPath splits gs://bucket/object.
func parseObjectPath(path string) (bucket, object string, err error) {
	rest, ok := strings.CutPrefix(path, "gs://")
	if !ok {
		return "", "", fmt.Errorf("%w: not a gs:// path: %q", domain.ErrInvalidInput, path)
	}
	bucket, object, ok = strings.Cut(rest, "/")
	if !ok || bucket == "" || object == "" {
		return "", "", fmt.Errorf("%w: malformed gs:// path: %q", domain.ErrInvalidInput, path)
	}
	return bucket, object, nil
}
