package objectstore

import (
	"context"
	"errors"
	"strings"
	"time"
)

// ErrNotFound is returned (wrapped) by backends when a key does not exist
var ErrNotFound = errors.New("object not found")

// pageLimit is the most keys a single list call returns
const pageLimit = 1000

// ObjectInfo describes a stored object
type ObjectInfo struct {
	Key          string
	Size         int64
	ETag         string
	ContentType  string
	LastModified time.Time
	Metadata     map[string]string
}

// Object is an object's payload and description
type Object struct {
	ObjectInfo
	Body []byte
}

// Backend is an abstraction over one bucket of an S3 compatible service
type Backend interface {
	PutObject(ctx context.Context, key string, body []byte, contentType string, metadata map[string]string) (string, error)
	GetObject(ctx context.Context, key string) (*Object, error)
	HeadObject(ctx context.Context, key string) (*ObjectInfo, error)
	ListObjects(ctx context.Context, prefix string) ([]ObjectInfo, error)
	DeleteObject(ctx context.Context, key string) error
}

// lowerKeys normalises metadata keys; S3 stores them case-insensitively but
// clients hand them back in canonical header form.
func lowerKeys(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[strings.ToLower(k)] = v
	}
	return out
}
