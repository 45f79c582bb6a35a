package journal

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/NikhilKartha5/ai-journal/internal/client/analysis"
	"github.com/NikhilKartha5/ai-journal/internal/client/api"
	"github.com/NikhilKartha5/ai-journal/internal/client/connectivity"
	"github.com/NikhilKartha5/ai-journal/internal/client/models"
	"github.com/NikhilKartha5/ai-journal/internal/client/store"
	"github.com/NikhilKartha5/ai-journal/internal/client/sync"
	"github.com/NikhilKartha5/ai-journal/internal/common"
	"github.com/NikhilKartha5/ai-journal/internal/logging"
)

const feedCacheKey = "community:feed"

// Service coordinates optimistic local mutations with background
// synchronization. Every write lands in the local mirror first; the network
// is attempted directly when online and the mutation is queued when the
// attempt fails or the device is offline. A mutation is never dropped.
type Service struct {
	store    store.Store
	client   *api.Client
	engine   *sync.Engine
	analyzer analysis.Analyzer
	monitor  connectivity.Monitor
	logger   logging.Logger

	status statusState
}

func NewService(s store.Store, client *api.Client, engine *sync.Engine, analyzer analysis.Analyzer, monitor connectivity.Monitor, logger logging.Logger) *Service {
	return &Service{
		store:    s,
		client:   client,
		engine:   engine,
		analyzer: analyzer,
		monitor:  monitor,
		logger:   logger,
	}
}

// Create analyzes the text and persists a new entry. Analysis failure aborts
// the create: an entry without its analysis is never stored. When online the
// entry is submitted directly; a failed submission falls back to the queue
// instead of surfacing an error.
func (s *Service) Create(ctx context.Context, token, text, title string, tags []string) (*models.DiaryEntry, error) {
	entry := &models.DiaryEntry{
		ID:        models.NewTempID(),
		Text:      text,
		Title:     title,
		Tags:      tags,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
	if err := entry.Validate(); err != nil {
		return nil, err
	}

	result, err := s.analyzer.Analyze(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("failed to analyze entry: %w", err)
	}
	entry.Analysis = result

	if s.monitor.IsOnline() {
		payload, err := models.NewCreatePayload(entry)
		if err != nil {
			return nil, err
		}
		created, err := s.client.CreateEntry(ctx, token, payload)
		if err == nil {
			synced := created.ToDiaryEntry()
			if err := s.store.SaveEntries(ctx, []models.DiaryEntry{synced}); err != nil {
				return nil, fmt.Errorf("failed to persist entry: %w", err)
			}
			return &synced, nil
		}
		if errors.Is(err, common.ErrorUnauthorized) {
			return nil, err
		}
		s.logger.Warn(ctx, "direct create failed, queueing", "error", err)
	}

	if err := s.engine.QueueCreate(ctx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

// Update applies changes optimistically to the local copy, then submits or
// queues the mutation. baseVersion is the version stamp the caller last saw;
// a direct submission rejected with a version conflict is returned to the
// caller as *api.ConflictError so the UI can offer a resolution.
func (s *Service) Update(ctx context.Context, token string, id models.EntryID, changes models.EntryChanges, baseVersion string) (*models.DiaryEntry, error) {
	entry, err := s.store.GetEntry(ctx, id)
	if err != nil {
		return nil, err
	}
	prior := *entry
	changes.Apply(entry)
	if err := entry.Validate(); err != nil {
		return nil, err
	}
	entry.Pending = true
	if err := s.store.SaveEntries(ctx, []models.DiaryEntry{*entry}); err != nil {
		return nil, fmt.Errorf("failed to persist edit: %w", err)
	}

	// Edits to a never-synced entry always ride the queue behind its create.
	if s.monitor.IsOnline() && !id.IsTemp() {
		payload := models.UpdatePayload{
			Content:     changes.Text,
			Title:       changes.Title,
			Tags:        changes.Tags,
			BaseVersion: baseVersion,
		}
		updated, err := s.client.UpdateEntry(ctx, token, id.Server(), payload)
		if err == nil {
			synced := updated.ToDiaryEntry()
			if err := s.store.SaveEntries(ctx, []models.DiaryEntry{synced}); err != nil {
				return nil, fmt.Errorf("failed to persist entry: %w", err)
			}
			return &synced, nil
		}
		var conflict *api.ConflictError
		if errors.As(err, &conflict) {
			// The optimistic write lost; roll the mirror back so it does not
			// drift from the server while nothing is queued to reconcile it.
			if rerr := s.store.SaveEntries(ctx, []models.DiaryEntry{prior}); rerr != nil {
				s.logger.Warn(ctx, "failed to restore entry after conflict", "error", rerr)
			}
			return nil, err
		}
		if errors.Is(err, common.ErrorUnauthorized) {
			return nil, err
		}
		s.logger.Warn(ctx, "direct update failed, queueing", "error", err)
	}

	if err := s.engine.QueueUpdate(ctx, id, changes, baseVersion); err != nil {
		return nil, err
	}
	return entry, nil
}

// Delete removes an entry locally and propagates the delete. A never-synced
// temp entry is erased outright together with its queued create; the server
// never learns it existed.
func (s *Service) Delete(ctx context.Context, token string, id models.EntryID) error {
	if id.IsTemp() {
		return s.engine.OfflineDelete(ctx, id)
	}

	if err := s.store.DeleteEntry(ctx, id); err != nil {
		return err
	}

	if s.monitor.IsOnline() {
		err := s.client.DeleteEntry(ctx, token, id.Server())
		if err == nil || errors.Is(err, common.ErrorNotFound) {
			return nil
		}
		if errors.Is(err, common.ErrorUnauthorized) {
			return err
		}
		s.logger.Warn(ctx, "direct delete failed, queueing", "error", err)
	}
	return s.engine.QueueDelete(ctx, id)
}

// DeleteAll wipes every entry locally and on the server. It requires
// connectivity: a full wipe is too destructive to replay from a queue.
func (s *Service) DeleteAll(ctx context.Context, token string) error {
	if !s.monitor.IsOnline() {
		return fmt.Errorf("delete all requires a connection")
	}
	if err := s.client.DeleteAll(ctx, token); err != nil {
		return err
	}
	entries, err := s.store.ListEntries(ctx)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		if err := s.store.DeleteEntry(ctx, entry.ID); err != nil {
			return err
		}
	}
	return nil
}

// List returns the local mirror ordered newest first.
func (s *Service) List(ctx context.Context) ([]models.DiaryEntry, error) {
	entries, err := s.store.ListEntries(ctx)
	if err != nil {
		return nil, err
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Timestamp > entries[j].Timestamp
	})
	return entries, nil
}

// Get returns one entry from the local mirror.
func (s *Service) Get(ctx context.Context, id models.EntryID) (*models.DiaryEntry, error) {
	return s.store.GetEntry(ctx, id)
}

// Refresh pulls the server's entries into the local mirror. Local records
// still pending upload are kept; everything else is replaced by the server's
// view.
func (s *Service) Refresh(ctx context.Context, token string) error {
	if !s.monitor.IsOnline() {
		return nil
	}
	remote, err := s.client.ListEntries(ctx, token)
	if err != nil {
		return fmt.Errorf("failed to fetch entries: %w", err)
	}

	local, err := s.store.ListEntries(ctx)
	if err != nil {
		return err
	}
	for _, entry := range local {
		if !entry.Pending && !entry.Temp {
			if err := s.store.DeleteEntry(ctx, entry.ID); err != nil {
				return err
			}
		}
	}

	entries := make([]models.DiaryEntry, 0, len(remote))
	for _, se := range remote {
		entries = append(entries, se.ToDiaryEntry())
	}
	if err := s.store.SaveEntries(ctx, entries); err != nil {
		return fmt.Errorf("failed to persist entries: %w", err)
	}
	return nil
}

// Sync flushes the mutation queue and folds the resulting temp→server id
// mappings back into the local mirror.
func (s *Service) Sync(ctx context.Context, token string) error {
	n, err := s.engine.QueueLength(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		s.status.set(StatusSyncing)
	}

	idMap, err := s.engine.Flush(ctx, token)
	if len(idMap) > 0 {
		if rerr := s.reconcile(ctx, idMap); rerr != nil && err == nil {
			err = rerr
		}
	}

	s.refreshStatus(ctx)
	return err
}

// reconcile rewrites locally-stored temp entries to their server identities
// and clears the pending flags.
func (s *Service) reconcile(ctx context.Context, idMap sync.IDMap) error {
	for temp, serverID := range idMap {
		tempID := models.TempID(temp)
		entry, err := s.store.GetEntry(ctx, tempID)
		if errors.Is(err, common.ErrorNotFound) {
			continue
		}
		if err != nil {
			return err
		}
		entry.ID = models.ServerID(serverID)
		entry.Pending = false
		entry.Temp = false
		if err := s.store.SaveEntries(ctx, []models.DiaryEntry{*entry}); err != nil {
			return err
		}
		if err := s.store.DeleteEntry(ctx, tempID); err != nil {
			return err
		}
	}
	return nil
}

// Feed returns the community feed, from the network when possible and from
// the cache otherwise. The returned time is when the data was fetched; zero
// means it is live.
func (s *Service) Feed(ctx context.Context, token string) ([]api.CommunityPost, time.Time, error) {
	if s.monitor.IsOnline() {
		posts, err := s.client.Feed(ctx, token)
		if err == nil {
			if cerr := s.store.SetCache(ctx, feedCacheKey, posts); cerr != nil {
				s.logger.Warn(ctx, "failed to cache feed", "error", cerr)
			}
			return posts, time.Time{}, nil
		}
		if errors.Is(err, common.ErrorUnauthorized) {
			return nil, time.Time{}, err
		}
		s.logger.Warn(ctx, "feed fetch failed, trying cache", "error", err)
	}

	var cached []api.CommunityPost
	storedAt, ok, err := s.store.GetCache(ctx, feedCacheKey, &cached)
	if err != nil {
		return nil, time.Time{}, err
	}
	if !ok {
		return nil, time.Time{}, fmt.Errorf("feed unavailable offline: %w", common.ErrorNotFound)
	}
	return cached, storedAt, nil
}

// Publish shares text to the community feed together with its analyzed
// sentiment. Publishing is online-only; a shared post is outward-facing and
// not worth replaying hours later.
func (s *Service) Publish(ctx context.Context, token, content string) (*api.CommunityPost, error) {
	if !s.monitor.IsOnline() {
		return nil, fmt.Errorf("publishing requires a connection")
	}
	result, err := s.analyzer.Analyze(ctx, content)
	if err != nil {
		return nil, fmt.Errorf("failed to analyze post: %w", err)
	}
	return s.client.PublishPost(ctx, token, content, result.SentimentScore, result.Emotions)
}
