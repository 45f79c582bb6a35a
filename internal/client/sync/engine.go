// Package sync implements the offline-first synchronization engine: durable
// queuing of create/update/delete mutations and their sequential replay
// against the diary API once connectivity returns, including temp→server id
// reconciliation and conflict surfacing.
package sync

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/NikhilKartha5/ai-journal/internal/client/api"
	"github.com/NikhilKartha5/ai-journal/internal/client/connectivity"
	"github.com/NikhilKartha5/ai-journal/internal/client/models"
	"github.com/NikhilKartha5/ai-journal/internal/client/store"
	"github.com/NikhilKartha5/ai-journal/internal/common"
	"github.com/NikhilKartha5/ai-journal/internal/logging"
)

// Outcome classifies the result of replaying one queue item. A tri-state is
// used instead of a boolean so a conflict can never be mistaken for a
// transient failure and blindly retried.
type Outcome int

const (
	// OutcomeApplied means the server accepted the mutation; the item is
	// removed from the queue.
	OutcomeApplied Outcome = iota

	// OutcomeConflicted means the server rejected an update whose
	// baseVersion was stale. The item stays queued for explicit resolution
	// and is never auto-retried.
	OutcomeConflicted

	// OutcomeRetryable means a transient failure (network error, 5xx,
	// timeout). The item stays queued for the next flush.
	OutcomeRetryable
)

func (o Outcome) String() string {
	switch o {
	case OutcomeApplied:
		return "applied"
	case OutcomeConflicted:
		return "conflicted"
	case OutcomeRetryable:
		return "retryable"
	default:
		return "unknown"
	}
}

// IDMap records temp→server id reconciliations produced by a flush.
type IDMap map[int64]string

// Engine queues mutations durably and replays them in insertion order.
type Engine struct {
	store   store.Store
	client  *api.Client
	monitor connectivity.Monitor
	logger  logging.Logger

	// replayTimeout bounds each replay attempt so one hung request cannot
	// stall the whole queue across sessions.
	replayTimeout time.Duration

	conflicts conflictSet
}

// New builds a sync engine over the given store, API client and monitor.
func New(s store.Store, client *api.Client, monitor connectivity.Monitor, logger logging.Logger) *Engine {
	return &Engine{
		store:         s,
		client:        client,
		monitor:       monitor,
		logger:        logger.With("component", "sync"),
		replayTimeout: api.DefaultTimeout,
	}
}

func nowMillis() int64 { return time.Now().UnixMilli() }

// QueueCreate persists the entry locally flagged pending/temp and appends a
// create mutation. The queue key is derived from the temp id, so re-invoking
// with the same entry cannot duplicate the slot.
func (e *Engine) QueueCreate(ctx context.Context, entry *models.DiaryEntry) error {
	entry.Pending = true
	entry.Temp = true

	if err := e.store.SaveEntries(ctx, []models.DiaryEntry{*entry}); err != nil {
		return fmt.Errorf("failed to persist entry: %w", err)
	}

	payload, err := models.NewCreatePayload(entry)
	if err != nil {
		return fmt.Errorf("failed to shape create payload: %w", err)
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode create payload: %w", err)
	}

	item := models.QueueItem{
		Key:       models.CreateKey(entry.ID),
		Type:      models.MutationCreate,
		Method:    "POST",
		URL:       api.DiaryPath,
		Body:      body,
		TempID:    entry.ID,
		CreatedAt: nowMillis(),
	}
	if err := e.store.Enqueue(ctx, item); err != nil {
		return fmt.Errorf("failed to enqueue create: %w", err)
	}
	return nil
}

// QueueUpdate appends an update mutation with a uniquely-timestamped key so
// sequential edits to the same entity occupy distinct slots and replay in
// order. baseVersion is the version stamp last observed for the entity.
func (e *Engine) QueueUpdate(ctx context.Context, id models.EntryID, changes models.EntryChanges, baseVersion string) error {
	payload := models.UpdatePayload{
		Content:     changes.Text,
		Title:       changes.Title,
		Tags:        changes.Tags,
		BaseVersion: baseVersion,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode update payload: %w", err)
	}

	item := models.QueueItem{
		Key:         models.UpdateKey(id, time.Now()),
		Type:        models.MutationUpdate,
		Method:      "PUT",
		URL:         api.EntryPath(id.String()),
		Body:        body,
		TempID:      id,
		BaseVersion: baseVersion,
		CreatedAt:   nowMillis(),
	}
	if err := e.store.Enqueue(ctx, item); err != nil {
		return fmt.Errorf("failed to enqueue update: %w", err)
	}
	return nil
}

// QueueDelete appends a delete mutation for a server-known entry.
func (e *Engine) QueueDelete(ctx context.Context, id models.EntryID) error {
	item := models.QueueItem{
		Key:       models.DeleteKey(id),
		Type:      models.MutationDelete,
		Method:    "DELETE",
		URL:       api.EntryPath(id.String()),
		CreatedAt: nowMillis(),
	}
	if err := e.store.Enqueue(ctx, item); err != nil {
		return fmt.Errorf("failed to enqueue delete: %w", err)
	}
	return nil
}

// OfflineDelete removes an entry locally. For a never-synced temp id the
// pending create is purged first, guaranteeing a record that never reached
// the server never gets created there.
func (e *Engine) OfflineDelete(ctx context.Context, id models.EntryID) error {
	if id.IsTemp() {
		items, err := e.store.QueueForTempID(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to find queued creates: %w", err)
		}
		if len(items) > 0 {
			keys := make([]string, len(items))
			for i, item := range items {
				keys[i] = item.Key
			}
			if err := e.store.RemoveFromQueue(ctx, keys); err != nil {
				return fmt.Errorf("failed to purge queued creates: %w", err)
			}
		}
	}
	if err := e.store.DeleteEntry(ctx, id); err != nil {
		return fmt.Errorf("failed to delete local entry: %w", err)
	}
	return nil
}

// QueueLength reports how many mutations await replay.
func (e *Engine) QueueLength(ctx context.Context) (int, error) {
	return e.store.QueueLength(ctx)
}

// Flush replays the queue against the API in strict insertion order, one
// request at a time, and returns the temp→server id map accumulated from
// successful creates so callers can rewrite in-memory references.
//
// Flushing while offline is a no-op, not an error. Conflicted and transiently
// failed items stay queued; applied items are removed in one atomic batch.
// An authentication failure aborts the flush and is returned to the caller —
// retrying without a new token cannot succeed.
func (e *Engine) Flush(ctx context.Context, token string) (IDMap, error) {
	if !e.monitor.IsOnline() {
		e.logger.Debug(ctx, "flush skipped: offline")
		return nil, nil
	}

	items, err := e.store.ListQueue(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read queue: %w", err)
	}
	if len(items) == 0 {
		return IDMap{}, nil
	}

	e.logger.Info(ctx, "flushing queue", "items", len(items))

	idMap := IDMap{}
	var done []string
	var authErr error

	for _, item := range items {
		// A mutation queued against a temp id runs only after its create.
		// When the create was applied earlier in this flush the idMap carries
		// the mapping; when the create failed, replaying its edits would
		// target an id the server has never seen, so they stay queued.
		if item.TempID.IsTemp() && item.Type != models.MutationCreate {
			serverID, ok := idMap[item.TempID.Temp()]
			if !ok {
				e.logger.Debug(ctx, "edit left queued until its create applies", "key", item.Key)
				continue
			}
			item.URL = api.EntryPath(serverID)
		}

		outcome, created, err := e.replay(ctx, token, item)
		switch outcome {
		case OutcomeApplied:
			if item.Type == models.MutationCreate && item.TempID.IsTemp() && created != nil && created.ID != "" {
				idMap[item.TempID.Temp()] = created.ID
				// Repoint queued edits durably, so they still target the
				// server id if this flush is interrupted before reaching them.
				if err := e.store.RewriteQueueTarget(ctx, item.TempID, models.ServerID(created.ID), api.EntryPath(created.ID)); err != nil {
					e.logger.Warn(ctx, "failed to rewrite queued edits", "key", item.Key, "error", err)
				}
			}
			done = append(done, item.Key)
			e.conflicts.remove(item.Key)
		case OutcomeConflicted:
			var conflict *api.ConflictError
			if errors.As(err, &conflict) {
				e.conflicts.put(item, conflict.Server)
			}
			e.logger.Warn(ctx, "update conflicted, left queued", "key", item.Key)
		case OutcomeRetryable:
			e.logger.Debug(ctx, "replay failed, left queued", "key", item.Key, "error", err)
		}

		if errors.Is(err, common.ErrorUnauthorized) {
			authErr = err
			break
		}
	}

	if len(done) > 0 {
		if err := e.store.RemoveFromQueue(ctx, done); err != nil {
			return idMap, fmt.Errorf("failed to remove applied items: %w", err)
		}
	}
	if authErr != nil {
		return idMap, authErr
	}
	return idMap, nil
}

// replay issues one bounded replay attempt and classifies the result.
func (e *Engine) replay(ctx context.Context, token string, item models.QueueItem) (Outcome, *models.ServerEntry, error) {
	replayCtx, cancel := context.WithTimeout(ctx, e.replayTimeout)
	defer cancel()

	created, err := e.client.Replay(replayCtx, token, item)
	switch {
	case err == nil:
		return OutcomeApplied, created, nil
	case errors.Is(err, common.ErrVersionConflict):
		return OutcomeConflicted, nil, err
	case errors.Is(err, common.ErrorNotFound):
		if item.Type == models.MutationDelete {
			// Already gone server-side; nothing left to replay.
			return OutcomeApplied, nil, nil
		}
		// A 404 on a create or update means the target does not exist yet
		// (or anymore); dropping the item here would lose the edit.
		return OutcomeRetryable, nil, err
	case errors.Is(err, common.ErrorUnauthorized):
		return OutcomeRetryable, nil, err
	default:
		return OutcomeRetryable, nil, err
	}
}
