package domain

import (
	"context"
	"time"
)

// CacheRepository defines the interface for caching operations.
// Values are opaque encoded bytes so that a networked cache can back it.
type CacheRepository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}

// ArtworkExtractor turns an artwork file into text fragments.
// Unreadable artwork is reported through a FAILED summary, not an error;
// errors are reserved for unsupported input and transport failures.
type ArtworkExtractor interface {
	Extract(ctx context.Context, name string, content []byte) (*ArtworkExtraction, error)
}

// CopyDocumentParser reads a copy document into fields.
type CopyDocumentParser interface {
	Parse(ctx context.Context, name string, content []byte) (*CopyDocument, error)
}
