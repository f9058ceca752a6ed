package domain

import "context"

// Keys of the two entries the editor persists, plus the window geometry.
const (
	KeyPages         = "pages"
	KeyCurrentPageID = "currentPageId"
	KeyWindowSize    = "windowSize"
)

// KVStore is durable key-value storage. Values are overwritten wholesale.
type KVStore interface {
	// Get returns ok=false and a nil error when the key has never been set.
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Close() error
}
