package sync

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/NikhilKartha5/ai-journal/internal/client/api"
	"github.com/NikhilKartha5/ai-journal/internal/client/models"
	"github.com/NikhilKartha5/ai-journal/internal/common"
)

// Conflict pairs a queued update with the server state that rejected it.
type Conflict struct {
	Item   models.QueueItem
	Server models.ServerEntry
}

// ResolveStrategy picks how a conflicted update is settled. Both strategies
// require an explicit caller decision; the engine never picks one itself.
type ResolveStrategy int

const (
	// ResolveOverwrite rebases the queued edit onto the server's current
	// version stamp and re-submits it (last-writer-wins by user choice).
	ResolveOverwrite ResolveStrategy = iota

	// ResolveDiscard drops the queued edit and restores the server's copy
	// into the local mirror.
	ResolveDiscard
)

var ErrUnknownConflict = errors.New("no such conflict")

// conflictSet tracks conflicts observed during flushes in this session.
type conflictSet struct {
	mu sync.Mutex
	m  map[string]Conflict
}

func (c *conflictSet) put(item models.QueueItem, server models.ServerEntry) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.m == nil {
		c.m = make(map[string]Conflict)
	}
	c.m[item.Key] = Conflict{Item: item, Server: server}
}

func (c *conflictSet) remove(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.m, key)
}

func (c *conflictSet) get(key string) (Conflict, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	conflict, ok := c.m[key]
	return conflict, ok
}

func (c *conflictSet) list() []Conflict {
	c.mu.Lock()
	defer c.mu.Unlock()
	result := make([]Conflict, 0, len(c.m))
	for _, conflict := range c.m {
		result = append(result, conflict)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Item.CreatedAt < result[j].Item.CreatedAt
	})
	return result
}

// Conflicts lists updates that were rejected with a version conflict during
// this session's flushes. They remain queued until resolved.
func (e *Engine) Conflicts(ctx context.Context) []Conflict {
	return e.conflicts.list()
}

// ResolveConflict settles one conflicted update per the chosen strategy.
// Overwrite re-submits the edit against the server's current version; a
// fresh conflict (another writer won again) is surfaced, not looped on.
// Discard removes the queued edit and restores the server's record locally.
func (e *Engine) ResolveConflict(ctx context.Context, token, key string, strategy ResolveStrategy) error {
	conflict, ok := e.conflicts.get(key)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownConflict, key)
	}

	switch strategy {
	case ResolveDiscard:
		if err := e.store.RemoveFromQueue(ctx, []string{key}); err != nil {
			return fmt.Errorf("failed to drop conflicted item: %w", err)
		}
		restored := conflict.Server.ToDiaryEntry()
		if err := e.store.SaveEntries(ctx, []models.DiaryEntry{restored}); err != nil {
			return fmt.Errorf("failed to restore server copy: %w", err)
		}
		e.conflicts.remove(key)
		return nil

	case ResolveOverwrite:
		var payload models.UpdatePayload
		if err := json.Unmarshal(conflict.Item.Body, &payload); err != nil {
			return fmt.Errorf("failed to decode queued update: %w", err)
		}
		payload.BaseVersion = conflict.Server.UpdatedAt

		updated, err := e.client.UpdateEntry(ctx, token, conflict.Server.ID, payload)
		if err != nil {
			var again *api.ConflictError
			if errors.As(err, &again) {
				// The server moved on once more; record the new state and
				// leave the decision to the caller.
				e.conflicts.put(conflict.Item, again.Server)
				return common.ErrVersionConflict
			}
			return fmt.Errorf("failed to re-submit update: %w", err)
		}

		if err := e.store.RemoveFromQueue(ctx, []string{key}); err != nil {
			return fmt.Errorf("failed to remove resolved item: %w", err)
		}
		entry := updated.ToDiaryEntry()
		if err := e.store.SaveEntries(ctx, []models.DiaryEntry{entry}); err != nil {
			return fmt.Errorf("failed to save resolved entry: %w", err)
		}
		e.conflicts.remove(key)
		return nil

	default:
		return fmt.Errorf("unknown resolve strategy: %d", strategy)
	}
}
