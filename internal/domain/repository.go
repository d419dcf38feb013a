package domain

import (
	"context"
	"time"
)

// CacheRepository defines the interface for caching operations
type CacheRepository interface {
	Get(ctx context.Context, key string) (interface{}, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}

// ProductClient defines the interface for the external food database.
type ProductClient interface {
	GetProduct(ctx context.Context, code string) (*ProductRecord, error)
}

// AdvisoryClient defines the interface for the external advisory
// endpoint. Consult never fails: every failure mode resolves to a
// degraded AdvisoryResult with an empty status.
type AdvisoryClient interface {
	Consult(ctx context.Context, req AdvisoryRequest) AdvisoryResult
}

// HistoryRepository defines the interface for the bounded scan history.
type HistoryRepository interface {
	Append(entry HistoryEntry) error
	Entries() []HistoryEntry
	Len() int
}
