package driven

import "context"

// ImageStore keeps uploaded scans.
type ImageStore interface {
	// Put stores data under a name derived from name and returns the path
	// to record against the student record.
	Put(ctx context.Context, name string, data []byte) (string, error)

	// Get returns the bytes stored at path.
	Get(ctx context.Context, path string) ([]byte, error)

	// Delete removes the object at path.
	Delete(ctx context.Context, path string) error
}
