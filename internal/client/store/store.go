// Package store implements the client's local durable store: a SQLite-backed
// mirror of diary entries, the pending-mutation queue, settings, and a
// read-mostly cache. All state shared between the UI layer and the sync
// engine goes through this API so the two never diverge on what is pending.
package store

import (
	"context"
	"time"

	"github.com/NikhilKartha5/ai-journal/internal/client/models"
)

// SchemaVersionKey is the settings key holding the local schema marker.
const SchemaVersionKey = "__schemaVersion"

// SchemaVersion is the current local schema generation.
const SchemaVersion = 1

// Store is the durable client-side store. Implementations must be safe for
// use from multiple goroutines. Every operation may fail (quota, disabled
// storage); callers treat failure as "not durable" and keep working from
// memory rather than crashing.
type Store interface {
	// SaveEntries upserts the given entries keyed by id.
	SaveEntries(ctx context.Context, entries []models.DiaryEntry) error

	// GetEntry returns the entry with the given id, or common.ErrorNotFound.
	GetEntry(ctx context.Context, id models.EntryID) (*models.DiaryEntry, error)

	// ListEntries returns all stored entries in unspecified order.
	ListEntries(ctx context.Context) ([]models.DiaryEntry, error)

	// DeleteEntry removes an entry. Deleting an absent entry is not an error.
	DeleteEntry(ctx context.Context, id models.EntryID) error

	// Enqueue inserts or replaces a queue item by key.
	Enqueue(ctx context.Context, item models.QueueItem) error

	// ListQueue returns all queued items in insertion order (FIFO).
	ListQueue(ctx context.Context) ([]models.QueueItem, error)

	// RemoveFromQueue deletes the given keys atomically: either the whole
	// batch is removed or none of it.
	RemoveFromQueue(ctx context.Context, keys []string) error

	// QueueForTempID returns queued creates targeting the given temporary id.
	QueueForTempID(ctx context.Context, tempID models.EntryID) ([]models.QueueItem, error)

	// RewriteQueueTarget repoints queued non-create mutations still targeting
	// tempID at the server-assigned id: their request URL becomes url and
	// their target id becomes serverID. Called once a create has been
	// accepted, so dependent edits survive an interrupted flush.
	RewriteQueueTarget(ctx context.Context, tempID, serverID models.EntryID, url string) error

	// QueueLength reports the number of queued items.
	QueueLength(ctx context.Context) (int, error)

	// SetSetting stores a JSON-serializable value under key, in a namespace
	// independent from entries and the queue.
	SetSetting(ctx context.Context, key string, value any) error

	// GetSetting loads a setting into out. Returns false when absent.
	GetSetting(ctx context.Context, key string, out any) (bool, error)

	// SetCache stores a non-authoritative cached value with a timestamp.
	SetCache(ctx context.Context, key string, value any) error

	// GetCache loads a cached value into out, reporting when it was stored.
	// Returns ok=false when absent.
	GetCache(ctx context.Context, key string, out any) (storedAt time.Time, ok bool, err error)

	Close() error
}
