package sync

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/NikhilKartha5/ai-journal/internal/client/api"
	"github.com/NikhilKartha5/ai-journal/internal/client/connectivity"
	"github.com/NikhilKartha5/ai-journal/internal/client/models"
	"github.com/NikhilKartha5/ai-journal/internal/client/store"
	"github.com/NikhilKartha5/ai-journal/internal/common"
	"github.com/NikhilKartha5/ai-journal/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testToken = "test-token"

type serverRecord struct {
	Content   string
	Title     string
	Tags      []string
	Analysis  string
	Date      string
	UpdatedAt string
}

// fakeDiaryServer is a minimal stand-in for the backend: bearer auth,
// 201 create with _id, 409 on stale baseVersion, 404 on unknown ids.
type fakeDiaryServer struct {
	mu       sync.Mutex
	nextID   int
	clock    int
	entries  map[string]*serverRecord
	requests []string
	failWith int // when non-zero, every request returns this status
	failPut  int // when non-zero, PUT requests return this status
}

func newFakeDiaryServer() *fakeDiaryServer {
	return &fakeDiaryServer{entries: make(map[string]*serverRecord)}
}

func (f *fakeDiaryServer) stamp() string {
	f.clock++
	return fmt.Sprintf("2026-08-31T00:00:%02d.000Z", f.clock)
}

// seed installs a synced record and returns its id and version stamp.
func (f *fakeDiaryServer) seed(content string) (string, string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	id := fmt.Sprintf("srv-%d", f.nextID)
	rec := &serverRecord{Content: content, UpdatedAt: f.stamp()}
	f.entries[id] = rec
	return id, rec.UpdatedAt
}

// bump simulates another writer advancing a record's version.
func (f *fakeDiaryServer) bump(id, content string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	rec := f.entries[id]
	rec.Content = content
	rec.UpdatedAt = f.stamp()
	return rec.UpdatedAt
}

func (f *fakeDiaryServer) record(id string) *serverRecord {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.entries[id]
}

func (f *fakeDiaryServer) requestLog() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.requests...)
}

func (f *fakeDiaryServer) toWire(id string, rec *serverRecord) map[string]any {
	return map[string]any{
		"_id": id, "date": rec.Date, "content": rec.Content, "title": rec.Title,
		"tags": rec.Tags, "analysis": rec.Analysis, "updatedAt": rec.UpdatedAt,
	}
}

func (f *fakeDiaryServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path == "/ping" {
		w.WriteHeader(http.StatusOK)
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, r.Method+" "+r.URL.Path)

	if f.failWith != 0 {
		w.WriteHeader(f.failWith)
		return
	}
	if f.failPut != 0 && r.Method == http.MethodPut {
		w.WriteHeader(f.failPut)
		return
	}
	if r.Header.Get("Authorization") != "Bearer "+testToken {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	switch {
	case r.Method == http.MethodPost && r.URL.Path == "/api/diary":
		var body models.CreatePayload
		_ = json.NewDecoder(r.Body).Decode(&body)
		f.nextID++
		id := fmt.Sprintf("srv-%d", f.nextID)
		rec := &serverRecord{
			Content: body.Content, Title: body.Title, Tags: body.Tags,
			Analysis: body.Analysis, Date: body.Date, UpdatedAt: f.stamp(),
		}
		f.entries[id] = rec
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(f.toWire(id, rec))

	case r.Method == http.MethodPut && strings.HasPrefix(r.URL.Path, "/api/diary/"):
		id := strings.TrimPrefix(r.URL.Path, "/api/diary/")
		rec, ok := f.entries[id]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		var body models.UpdatePayload
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body.BaseVersion != "" && body.BaseVersion != rec.UpdatedAt {
			w.WriteHeader(http.StatusConflict)
			_ = json.NewEncoder(w).Encode(map[string]any{"conflict": true, "server": f.toWire(id, rec)})
			return
		}
		if body.Content != nil {
			rec.Content = *body.Content
		}
		if body.Title != nil {
			rec.Title = *body.Title
		}
		if body.Tags != nil {
			rec.Tags = *body.Tags
		}
		rec.UpdatedAt = f.stamp()
		_ = json.NewEncoder(w).Encode(f.toWire(id, rec))

	case r.Method == http.MethodDelete && strings.HasPrefix(r.URL.Path, "/api/diary/"):
		id := strings.TrimPrefix(r.URL.Path, "/api/diary/")
		if _, ok := f.entries[id]; !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		delete(f.entries, id)
		_ = json.NewEncoder(w).Encode(map[string]string{"message": "Entry deleted"})

	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

type fixture struct {
	engine  *Engine
	store   store.Store
	monitor *connectivity.Manual
	server  *fakeDiaryServer
}

func setup(t *testing.T) *fixture {
	t.Helper()
	fake := newFakeDiaryServer()
	ts := httptest.NewServer(fake)
	t.Cleanup(ts.Close)

	s, err := store.Open(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	monitor := connectivity.NewManual(false)
	logger := logging.NewSlogLogger(slog.New(slog.DiscardHandler))
	engine := New(s, api.New(ts.URL), monitor, logger)

	return &fixture{engine: engine, store: s, monitor: monitor, server: fake}
}

func offlineEntry(text string) *models.DiaryEntry {
	return &models.DiaryEntry{
		ID:        models.NewTempID(),
		Text:      text,
		Timestamp: "2026-08-31T09:00:00Z",
		Analysis: models.AnalysisResult{
			SentimentScore: 6, Emotions: []string{"Calm"}, Summary: "ok",
			Suggestions: []string{"rest"},
		},
	}
}

func TestQueueCreate_PersistsPendingTempRecord(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	entry := offlineEntry("Feeling okay")
	require.NoError(t, f.engine.QueueCreate(ctx, entry))

	stored, err := f.store.GetEntry(ctx, entry.ID)
	require.NoError(t, err)
	assert.True(t, stored.Pending)
	assert.True(t, stored.Temp)
	assert.True(t, stored.ID.IsTemp())

	items, err := f.store.ListQueue(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, models.CreateKey(entry.ID), items[0].Key)

	// Re-queuing the same entry must not duplicate the slot.
	require.NoError(t, f.engine.QueueCreate(ctx, entry))
	n, err := f.engine.QueueLength(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestFlush_OfflineIsNoOp(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	require.NoError(t, f.engine.QueueCreate(ctx, offlineEntry("queued while offline")))

	idMap, err := f.engine.Flush(ctx, testToken)
	require.NoError(t, err)
	assert.Nil(t, idMap)

	n, err := f.engine.QueueLength(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n, "queue untouched while offline")
	assert.Empty(t, f.server.requestLog(), "no network calls while offline")
}

func TestFlush_OfflineCreateReconciles(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	entry := offlineEntry("Feeling okay")
	require.NoError(t, f.engine.QueueCreate(ctx, entry))

	f.monitor.SetOnline(true)
	idMap, err := f.engine.Flush(ctx, testToken)
	require.NoError(t, err)

	serverID, ok := idMap[entry.ID.Temp()]
	require.True(t, ok, "flush must report the temp→server mapping")

	rec := f.server.record(serverID)
	require.NotNil(t, rec)
	assert.Equal(t, "Feeling okay", rec.Content)

	n, err := f.engine.QueueLength(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestFlush_Idempotent(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	require.NoError(t, f.engine.QueueCreate(ctx, offlineEntry("once")))
	f.monitor.SetOnline(true)

	_, err := f.engine.Flush(ctx, testToken)
	require.NoError(t, err)
	requestsAfterFirst := len(f.server.requestLog())

	idMap, err := f.engine.Flush(ctx, testToken)
	require.NoError(t, err)
	assert.Empty(t, idMap)
	assert.Len(t, f.server.requestLog(), requestsAfterFirst, "second flush is a no-op")
}

func TestOfflineDelete_ErasesUnsyncedCreate(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	entry := offlineEntry("never leaves the device")
	require.NoError(t, f.engine.QueueCreate(ctx, entry))
	require.NoError(t, f.engine.OfflineDelete(ctx, entry.ID))

	n, err := f.engine.QueueLength(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	_, err = f.store.GetEntry(ctx, entry.ID)
	assert.ErrorIs(t, err, common.ErrorNotFound)

	f.monitor.SetOnline(true)
	_, err = f.engine.Flush(ctx, testToken)
	require.NoError(t, err)
	assert.Empty(t, f.server.requestLog(), "no network request may ever be sent for the erased entry")
}

func TestFlush_SequentialEditsReplayInOrder(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	entry := offlineEntry("original")
	require.NoError(t, f.engine.QueueCreate(ctx, entry))

	for _, text := range []string{"x", "y"} {
		text := text
		require.NoError(t, f.engine.QueueUpdate(ctx, entry.ID, models.EntryChanges{Text: &text}, ""))
		time.Sleep(2 * time.Millisecond) // distinct queue-slot timestamps
	}

	n, err := f.engine.QueueLength(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n, "edits must not coalesce")

	f.monitor.SetOnline(true)
	idMap, err := f.engine.Flush(ctx, testToken)
	require.NoError(t, err)

	serverID := idMap[entry.ID.Temp()]
	require.NotEmpty(t, serverID)
	assert.Equal(t, "y", f.server.record(serverID).Content, "final state reflects the last edit")

	log := f.server.requestLog()
	require.Len(t, log, 3)
	assert.Equal(t, "POST /api/diary", log[0])
	assert.Equal(t, "PUT /api/diary/"+serverID, log[1])
	assert.Equal(t, "PUT /api/diary/"+serverID, log[2])

	n, err = f.engine.QueueLength(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestFlush_ConflictStaysQueued(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	id, baseVersion := f.server.seed("server original")

	// Client edits against baseVersion while another writer advances it.
	edited := "client edit"
	require.NoError(t, f.engine.QueueUpdate(ctx, models.ServerID(id), models.EntryChanges{Text: &edited}, baseVersion))
	f.server.bump(id, "another writer won")

	f.monitor.SetOnline(true)
	idMap, err := f.engine.Flush(ctx, testToken)
	require.NoError(t, err, "a conflict is not a flush error")
	assert.Empty(t, idMap)

	assert.Equal(t, "another writer won", f.server.record(id).Content, "stale write must not overwrite")

	n, err := f.engine.QueueLength(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n, "conflicted item stays queued")

	conflicts := f.engine.Conflicts(ctx)
	require.Len(t, conflicts, 1)
	assert.Equal(t, "another writer won", conflicts[0].Server.Content)

	// A second flush must not auto-retry into an overwrite either.
	_, err = f.engine.Flush(ctx, testToken)
	require.NoError(t, err)
	assert.Equal(t, "another writer won", f.server.record(id).Content)
	n, _ = f.engine.QueueLength(ctx)
	assert.Equal(t, 1, n)
}

func TestResolveConflict_Discard(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	id, baseVersion := f.server.seed("server original")
	edited := "client edit"
	require.NoError(t, f.engine.QueueUpdate(ctx, models.ServerID(id), models.EntryChanges{Text: &edited}, baseVersion))
	f.server.bump(id, "newer")

	f.monitor.SetOnline(true)
	_, err := f.engine.Flush(ctx, testToken)
	require.NoError(t, err)
	conflicts := f.engine.Conflicts(ctx)
	require.Len(t, conflicts, 1)

	require.NoError(t, f.engine.ResolveConflict(ctx, testToken, conflicts[0].Item.Key, ResolveDiscard))

	n, err := f.engine.QueueLength(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Empty(t, f.engine.Conflicts(ctx))

	local, err := f.store.GetEntry(ctx, models.ServerID(id))
	require.NoError(t, err)
	assert.Equal(t, "newer", local.Text, "server copy restored locally")
}

func TestResolveConflict_Overwrite(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	id, baseVersion := f.server.seed("server original")
	edited := "client edit"
	require.NoError(t, f.engine.QueueUpdate(ctx, models.ServerID(id), models.EntryChanges{Text: &edited}, baseVersion))
	f.server.bump(id, "newer")

	f.monitor.SetOnline(true)
	_, err := f.engine.Flush(ctx, testToken)
	require.NoError(t, err)
	conflicts := f.engine.Conflicts(ctx)
	require.Len(t, conflicts, 1)

	require.NoError(t, f.engine.ResolveConflict(ctx, testToken, conflicts[0].Item.Key, ResolveOverwrite))

	assert.Equal(t, "client edit", f.server.record(id).Content, "explicit overwrite applies the edit")
	n, err := f.engine.QueueLength(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Empty(t, f.engine.Conflicts(ctx))
}

func TestResolveConflict_UnknownKey(t *testing.T) {
	f := setup(t)
	err := f.engine.ResolveConflict(context.Background(), testToken, "nope", ResolveDiscard)
	assert.ErrorIs(t, err, ErrUnknownConflict)
}

func TestFlush_TransientFailureLeavesItemQueued(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	entry := offlineEntry("retry me")
	require.NoError(t, f.engine.QueueCreate(ctx, entry))

	f.server.failWith = http.StatusInternalServerError
	f.monitor.SetOnline(true)

	idMap, err := f.engine.Flush(ctx, testToken)
	require.NoError(t, err, "transient failures are swallowed and left queued")
	assert.Empty(t, idMap)

	n, err := f.engine.QueueLength(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	// Next flush succeeds once the server recovers.
	f.server.failWith = 0
	idMap, err = f.engine.Flush(ctx, testToken)
	require.NoError(t, err)
	assert.Len(t, idMap, 1)
	n, _ = f.engine.QueueLength(ctx)
	assert.Zero(t, n)
}

func TestFlush_EditWaitsForItsCreate(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	entry := offlineEntry("draft")
	require.NoError(t, f.engine.QueueCreate(ctx, entry))
	edited := "draft, revised"
	require.NoError(t, f.engine.QueueUpdate(ctx, entry.ID, models.EntryChanges{Text: &edited}, ""))

	f.server.failWith = http.StatusInternalServerError
	f.monitor.SetOnline(true)

	_, err := f.engine.Flush(ctx, testToken)
	require.NoError(t, err)

	n, err := f.engine.QueueLength(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n, "neither the create nor its edit may be dropped")
	assert.Equal(t, []string{"POST /api/diary"}, f.server.requestLog(),
		"the edit must not be attempted while its create is unapplied")

	f.server.failWith = 0
	idMap, err := f.engine.Flush(ctx, testToken)
	require.NoError(t, err)
	serverID := idMap[entry.ID.Temp()]
	require.NotEmpty(t, serverID)
	assert.Equal(t, "draft, revised", f.server.record(serverID).Content)
	n, _ = f.engine.QueueLength(ctx)
	assert.Zero(t, n)
}

func TestFlush_AppliedCreateRepointsQueuedEdits(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	entry := offlineEntry("draft")
	require.NoError(t, f.engine.QueueCreate(ctx, entry))
	edited := "draft, revised"
	require.NoError(t, f.engine.QueueUpdate(ctx, entry.ID, models.EntryChanges{Text: &edited}, ""))

	// The create lands but the edit fails transiently in the same flush.
	f.server.failPut = http.StatusInternalServerError
	f.monitor.SetOnline(true)
	idMap, err := f.engine.Flush(ctx, testToken)
	require.NoError(t, err)
	serverID := idMap[entry.ID.Temp()]
	require.NotEmpty(t, serverID)

	items, err := f.store.ListQueue(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, api.EntryPath(serverID), items[0].URL,
		"the queued edit must target the server id even though the in-memory mapping is gone")
	assert.False(t, items[0].TempID.IsTemp())

	// A later flush (fresh idMap, as after a restart) replays the edit.
	f.server.failPut = 0
	_, err = f.engine.Flush(ctx, testToken)
	require.NoError(t, err)
	assert.Equal(t, "draft, revised", f.server.record(serverID).Content)
	n, _ := f.engine.QueueLength(ctx)
	assert.Zero(t, n)
}

func TestFlush_AuthFailureAbortsAndPropagates(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	require.NoError(t, f.engine.QueueCreate(ctx, offlineEntry("first")))
	require.NoError(t, f.engine.QueueCreate(ctx, offlineEntry("second")))

	f.monitor.SetOnline(true)
	_, err := f.engine.Flush(ctx, "wrong-token")
	assert.ErrorIs(t, err, common.ErrorUnauthorized)

	log := f.server.requestLog()
	assert.Len(t, log, 1, "flush aborts after the first auth failure")

	n, err := f.engine.QueueLength(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n, "nothing is dropped on auth failure")
}

func TestQueueDelete_ReplaysAgainstServer(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	id, _ := f.server.seed("to be removed")
	require.NoError(t, f.engine.QueueDelete(ctx, models.ServerID(id)))

	f.monitor.SetOnline(true)
	_, err := f.engine.Flush(ctx, testToken)
	require.NoError(t, err)

	assert.Nil(t, f.server.record(id))
	n, _ := f.engine.QueueLength(ctx)
	assert.Zero(t, n)
}

func TestFlush_DeleteOfAlreadyGoneEntryIsApplied(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	require.NoError(t, f.engine.QueueDelete(ctx, models.ServerID("ghost")))

	f.monitor.SetOnline(true)
	_, err := f.engine.Flush(ctx, testToken)
	require.NoError(t, err)

	n, _ := f.engine.QueueLength(ctx)
	assert.Zero(t, n, "404 on delete means there is nothing left to replay")
}
