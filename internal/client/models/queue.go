package models

import (
	"fmt"
	"time"
)

// MutationType classifies a queued mutation.
type MutationType string

const (
	MutationCreate MutationType = "create"
	MutationUpdate MutationType = "update"
	MutationDelete MutationType = "delete"
)

// QueueItem is one pending mutation awaiting replay against the API.
//
// Key is the unique queue-slot identifier. Creates and deletes key by entity
// id so re-invocation cannot duplicate them; updates append a timestamp so
// distinct edits to the same entity never collapse into one slot.
type QueueItem struct {
	Key    string       `json:"key"`
	Type   MutationType `json:"type"`
	Method string       `json:"method"`
	URL    string       `json:"url"`
	Body   []byte       `json:"body,omitempty"`

	// TempID links a create back to its local record so the id can be
	// rewritten on success; for updates it tracks the entity id.
	TempID EntryID `json:"tempId,omitzero"`

	// BaseVersion is the version stamp the client believed was current when
	// the edit was made. Set on updates only.
	BaseVersion string `json:"baseVersion,omitempty"`

	// CreatedAt orders replay (FIFO), unix milliseconds.
	CreatedAt int64 `json:"createdAt"`
}

// CreateKey returns the queue key for a create of the given entry.
func CreateKey(id EntryID) string { return "create-" + id.String() }

// DeleteKey returns the queue key for a delete of the given entry.
func DeleteKey(id EntryID) string { return "delete-" + id.String() }

// UpdateKey returns a uniquely-timestamped queue key so sequential edits to
// the same entity occupy distinct slots.
func UpdateKey(id EntryID, at time.Time) string {
	return fmt.Sprintf("update-%s-%d", id.String(), at.UnixNano())
}
