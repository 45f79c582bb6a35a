package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/NikhilKartha5/ai-journal/internal/client/models"
	"github.com/NikhilKartha5/ai-journal/internal/client/store/migrations"
	"github.com/NikhilKartha5/ai-journal/internal/common"
	"github.com/NikhilKartha5/ai-journal/internal/dbx"
	"github.com/pressly/goose/v3"

	_ "modernc.org/sqlite"
)

// SQLiteStore implements Store over a local SQLite database.
type SQLiteStore struct {
	db    *sql.DB
	codec Codec
}

// Option configures a SQLiteStore.
type Option func(*SQLiteStore)

// WithCodec installs an at-rest codec applied to entry payloads. The sync
// algorithm is oblivious to it.
func WithCodec(c Codec) Option {
	return func(s *SQLiteStore) { s.codec = c }
}

// Open opens (creating if needed) the local database at dsn, runs migrations,
// and records the schema-version marker.
func Open(ctx context.Context, dsn string, opts ...Option) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open local db: %w", err)
	}

	if err := runMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to migrate local db: %w", err)
	}

	s := &SQLiteStore{db: db, codec: NoopCodec{}}
	for _, opt := range opts {
		opt(s)
	}

	if err := s.SetSetting(ctx, SchemaVersionKey, SchemaVersion); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func runMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("sqlite3"); err != nil {
		return err
	}
	return goose.UpContext(ctx, db, ".")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) SaveEntries(ctx context.Context, entries []models.DiaryEntry) error {
	if len(entries) == 0 {
		return nil
	}
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		for i := range entries {
			data, err := json.Marshal(&entries[i])
			if err != nil {
				return fmt.Errorf("failed to encode entry: %w", err)
			}
			sealed, err := s.codec.Seal(data)
			if err != nil {
				return fmt.Errorf("failed to seal entry: %w", err)
			}
			_, err = tx.ExecContext(ctx, `
				INSERT INTO entries (key, data) VALUES (?, ?)
				ON CONFLICT(key) DO UPDATE SET data = excluded.data
			`, entries[i].ID.Key(), sealed)
			if err != nil {
				return fmt.Errorf("failed to upsert entry: %w", err)
			}
		}
		return nil
	})
}

func (s *SQLiteStore) decodeEntry(data []byte) (*models.DiaryEntry, error) {
	plain, err := s.codec.Open(data)
	if err != nil {
		return nil, fmt.Errorf("failed to open entry payload: %w", err)
	}
	var e models.DiaryEntry
	if err := json.Unmarshal(plain, &e); err != nil {
		return nil, fmt.Errorf("failed to decode entry: %w", err)
	}
	return &e, nil
}

func (s *SQLiteStore) GetEntry(ctx context.Context, id models.EntryID) (*models.DiaryEntry, error) {
	var data []byte
	err := s.db.QueryRowContext(ctx, `SELECT data FROM entries WHERE key = ?`, id.Key()).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to select entry: %w", err)
	}
	return s.decodeEntry(data)
}

func (s *SQLiteStore) ListEntries(ctx context.Context) ([]models.DiaryEntry, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT data FROM entries`)
	if err != nil {
		return nil, fmt.Errorf("failed to select entries: %w", err)
	}
	defer rows.Close()

	var result []models.DiaryEntry
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, err
		}
		e, err := s.decodeEntry(data)
		if err != nil {
			return nil, err
		}
		result = append(result, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (s *SQLiteStore) DeleteEntry(ctx context.Context, id models.EntryID) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM entries WHERE key = ?`, id.Key()); err != nil {
		return fmt.Errorf("failed to delete entry: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Enqueue(ctx context.Context, item models.QueueItem) error {
	tempKey := ""
	if !item.TempID.IsZero() {
		tempKey = item.TempID.Key()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO queue (key, type, method, url, body, temp_id, base_version, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			type = excluded.type,
			method = excluded.method,
			url = excluded.url,
			body = excluded.body,
			temp_id = excluded.temp_id,
			base_version = excluded.base_version
	`, item.Key, string(item.Type), item.Method, item.URL, item.Body, tempKey, item.BaseVersion, item.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to enqueue item: %w", err)
	}
	return nil
}

func scanQueueItems(rows *sql.Rows) ([]models.QueueItem, error) {
	var result []models.QueueItem
	for rows.Next() {
		var item models.QueueItem
		var typ, tempKey string
		if err := rows.Scan(&item.Key, &typ, &item.Method, &item.URL, &item.Body, &tempKey, &item.BaseVersion, &item.CreatedAt); err != nil {
			return nil, err
		}
		item.Type = models.MutationType(typ)
		if tempKey != "" {
			id, err := models.ParseKey(tempKey)
			if err != nil {
				return nil, err
			}
			item.TempID = id
		}
		result = append(result, item)
	}
	return result, rows.Err()
}

const queueColumns = `key, type, method, url, body, temp_id, base_version, created_at`

func (s *SQLiteStore) ListQueue(ctx context.Context) ([]models.QueueItem, error) {
	// rowid breaks created_at ties so replay order is exactly insertion order.
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+queueColumns+` FROM queue ORDER BY created_at, rowid`)
	if err != nil {
		return nil, fmt.Errorf("failed to select queue: %w", err)
	}
	defer rows.Close()
	return scanQueueItems(rows)
}

func (s *SQLiteStore) RemoveFromQueue(ctx context.Context, keys []string) error {
	if len(keys) == 0 {
		return nil
	}
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		for _, key := range keys {
			if _, err := tx.ExecContext(ctx, `DELETE FROM queue WHERE key = ?`, key); err != nil {
				return fmt.Errorf("failed to remove queue item %q: %w", key, err)
			}
		}
		return nil
	})
}

func (s *SQLiteStore) QueueForTempID(ctx context.Context, tempID models.EntryID) ([]models.QueueItem, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+queueColumns+` FROM queue WHERE type = ? AND temp_id = ? ORDER BY created_at, rowid`,
		string(models.MutationCreate), tempID.Key())
	if err != nil {
		return nil, fmt.Errorf("failed to select queue by temp id: %w", err)
	}
	defer rows.Close()
	return scanQueueItems(rows)
}

func (s *SQLiteStore) RewriteQueueTarget(ctx context.Context, tempID, serverID models.EntryID, url string) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE queue SET url = ?, temp_id = ? WHERE temp_id = ? AND type != ?
	`, url, serverID.Key(), tempID.Key(), string(models.MutationCreate))
	if err != nil {
		return fmt.Errorf("failed to rewrite queue target: %w", err)
	}
	return nil
}

func (s *SQLiteStore) QueueLength(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM queue`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count queue: %w", err)
	}
	return n, nil
}

func (s *SQLiteStore) SetSetting(ctx context.Context, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode setting[%s]: %w", key, err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO settings (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, data)
	if err != nil {
		return fmt.Errorf("failed to set setting[%s]: %w", key, err)
	}
	return nil
}

func (s *SQLiteStore) GetSetting(ctx context.Context, key string, out any) (bool, error) {
	var data []byte
	err := s.db.QueryRowContext(ctx, `SELECT value FROM settings WHERE key = ?`, key).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to get setting[%s]: %w", key, err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return false, fmt.Errorf("failed to decode setting[%s]: %w", key, err)
	}
	return true, nil
}

func (s *SQLiteStore) SetCache(ctx context.Context, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode cache[%s]: %w", key, err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO cache (key, value, ts) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, ts = excluded.ts
	`, key, data, time.Now().UnixMilli())
	if err != nil {
		return fmt.Errorf("failed to set cache[%s]: %w", key, err)
	}
	return nil
}

func (s *SQLiteStore) GetCache(ctx context.Context, key string, out any) (time.Time, bool, error) {
	var data []byte
	var ts int64
	err := s.db.QueryRowContext(ctx, `SELECT value, ts FROM cache WHERE key = ?`, key).Scan(&data, &ts)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, fmt.Errorf("failed to get cache[%s]: %w", key, err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return time.Time{}, false, fmt.Errorf("failed to decode cache[%s]: %w", key, err)
	}
	return time.UnixMilli(ts), true, nil
}
