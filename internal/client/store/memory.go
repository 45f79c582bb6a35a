package store

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"

	"github.com/NikhilKartha5/ai-journal/internal/client/models"
	"github.com/NikhilKartha5/ai-journal/internal/common"
)

// MemoryStore is an in-memory Store used when durable storage is unavailable
// (the session keeps working, durability across restarts is lost) and as a
// test double.
type MemoryStore struct {
	mu       sync.RWMutex
	entries  map[string]models.DiaryEntry
	queue    map[string]queueSlot
	seq      int64
	settings map[string][]byte
	cache    map[string]cacheSlot
}

type queueSlot struct {
	item models.QueueItem
	seq  int64
}

type cacheSlot struct {
	value []byte
	ts    time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries:  make(map[string]models.DiaryEntry),
		queue:    make(map[string]queueSlot),
		settings: make(map[string][]byte),
		cache:    make(map[string]cacheSlot),
	}
}

func (s *MemoryStore) Close() error { return nil }

func (s *MemoryStore) SaveEntries(ctx context.Context, entries []models.DiaryEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range entries {
		s.entries[e.ID.Key()] = e
	}
	return nil
}

func (s *MemoryStore) GetEntry(ctx context.Context, id models.EntryID) (*models.DiaryEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[id.Key()]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &e, nil
}

func (s *MemoryStore) ListEntries(ctx context.Context) ([]models.DiaryEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]models.DiaryEntry, 0, len(s.entries))
	for _, e := range s.entries {
		result = append(result, e)
	}
	return result, nil
}

func (s *MemoryStore) DeleteEntry(ctx context.Context, id models.EntryID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, id.Key())
	return nil
}

func (s *MemoryStore) Enqueue(ctx context.Context, item models.QueueItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	slot, exists := s.queue[item.Key]
	if !exists {
		s.seq++
		slot.seq = s.seq
	}
	slot.item = item
	s.queue[item.Key] = slot
	return nil
}

func (s *MemoryStore) ListQueue(ctx context.Context) ([]models.QueueItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	slots := make([]queueSlot, 0, len(s.queue))
	for _, slot := range s.queue {
		slots = append(slots, slot)
	}
	sort.Slice(slots, func(i, j int) bool {
		if slots[i].item.CreatedAt != slots[j].item.CreatedAt {
			return slots[i].item.CreatedAt < slots[j].item.CreatedAt
		}
		return slots[i].seq < slots[j].seq
	})
	items := make([]models.QueueItem, len(slots))
	for i, slot := range slots {
		items[i] = slot.item
	}
	return items, nil
}

func (s *MemoryStore) RemoveFromQueue(ctx context.Context, keys []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, key := range keys {
		delete(s.queue, key)
	}
	return nil
}

func (s *MemoryStore) QueueForTempID(ctx context.Context, tempID models.EntryID) ([]models.QueueItem, error) {
	all, err := s.ListQueue(ctx)
	if err != nil {
		return nil, err
	}
	var result []models.QueueItem
	for _, item := range all {
		if item.Type == models.MutationCreate && item.TempID == tempID {
			result = append(result, item)
		}
	}
	return result, nil
}

func (s *MemoryStore) RewriteQueueTarget(ctx context.Context, tempID, serverID models.EntryID, url string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key, slot := range s.queue {
		if slot.item.TempID == tempID && slot.item.Type != models.MutationCreate {
			slot.item.URL = url
			slot.item.TempID = serverID
			s.queue[key] = slot
		}
	}
	return nil
}

func (s *MemoryStore) QueueLength(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.queue), nil
}

func (s *MemoryStore) SetSetting(ctx context.Context, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings[key] = data
	return nil
}

func (s *MemoryStore) GetSetting(ctx context.Context, key string, out any) (bool, error) {
	s.mu.RLock()
	data, ok := s.settings[key]
	s.mu.RUnlock()
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(data, out)
}

func (s *MemoryStore) SetCache(ctx context.Context, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache[key] = cacheSlot{value: data, ts: time.Now()}
	return nil
}

func (s *MemoryStore) GetCache(ctx context.Context, key string, out any) (time.Time, bool, error) {
	s.mu.RLock()
	slot, ok := s.cache[key]
	s.mu.RUnlock()
	if !ok {
		return time.Time{}, false, nil
	}
	return slot.ts, true, json.Unmarshal(slot.value, out)
}
