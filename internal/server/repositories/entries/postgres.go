package entries

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/NikhilKartha5/ai-journal/internal/common"
	"github.com/NikhilKartha5/ai-journal/internal/dbx"
	"github.com/NikhilKartha5/ai-journal/internal/server/models"
)

// PostgresRepository implements entry storage over a dbx.DBTX. Tags are kept
// as a JSON text column so the row shape stays driver-neutral.
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func encodeTags(tags []string) (string, error) {
	if tags == nil {
		tags = []string{}
	}
	b, err := json.Marshal(tags)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (r *PostgresRepository) Create(ctx context.Context, entry *models.Entry) error {
	tags, err := encodeTags(entry.Tags)
	if err != nil {
		return err
	}
	query := `
		INSERT INTO entries (id, user_id, date, mood, title, content, tags, analysis, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9);
	`
	_, err = r.db.ExecContext(ctx, query,
		entry.ID, entry.UserID, entry.Date, entry.Mood, entry.Title, entry.Content, tags, entry.Analysis, entry.UpdatedAt)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Get(ctx context.Context, userID, id string) (*models.Entry, error) {
	query := `
		SELECT id, user_id, date, mood, title, content, tags, analysis, updated_at
		FROM entries WHERE user_id=$1 AND id=$2;
	`
	row := r.db.QueryRowContext(ctx, query, userID, id)

	entry, err := scanEntry(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return entry, nil
}

func scanEntry(scan func(dest ...any) error) (*models.Entry, error) {
	var entry models.Entry
	var tags string
	if err := scan(&entry.ID, &entry.UserID, &entry.Date, &entry.Mood, &entry.Title,
		&entry.Content, &tags, &entry.Analysis, &entry.UpdatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(tags), &entry.Tags); err != nil {
		return nil, fmt.Errorf("malformed tags column: %w", err)
	}
	return &entry, nil
}

func (r *PostgresRepository) ListByUser(ctx context.Context, userID string) ([]models.Entry, error) {
	query := `
		SELECT id, user_id, date, mood, title, content, tags, analysis, updated_at
		FROM entries WHERE user_id=$1 ORDER BY date DESC;
	`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to select entries: %w", err)
	}
	defer rows.Close()

	var result []models.Entry
	for rows.Next() {
		entry, err := scanEntry(rows.Scan)
		if err != nil {
			return nil, err
		}
		result = append(result, *entry)
	}
	return result, rows.Err()
}

// Update writes the changed row only while the stored updated_at still equals
// baseVersion (when given). Zero rows affected means either a lost race or a
// missing row; the follow-up read tells the two apart.
func (r *PostgresRepository) Update(ctx context.Context, entry *models.Entry, baseVersion time.Time) error {
	tags, err := encodeTags(entry.Tags)
	if err != nil {
		return err
	}
	query := `
		UPDATE entries
		SET mood=$1, title=$2, content=$3, tags=$4, analysis=$5, updated_at=$6
		WHERE user_id=$7 AND id=$8 AND ($9::timestamptz IS NULL OR updated_at=$9);
	`
	var base any
	if !baseVersion.IsZero() {
		base = baseVersion
	}
	res, err := r.db.ExecContext(ctx, query,
		entry.Mood, entry.Title, entry.Content, tags, entry.Analysis, entry.UpdatedAt,
		entry.UserID, entry.ID, base)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n == 1 {
		return nil
	}

	if _, err := r.Get(ctx, entry.UserID, entry.ID); err != nil {
		return err
	}
	return common.ErrVersionConflict
}

func (r *PostgresRepository) Delete(ctx context.Context, userID, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM entries WHERE user_id=$1 AND id=$2;`, userID, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func (r *PostgresRepository) DeleteByUser(ctx context.Context, userID string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM entries WHERE user_id=$1;`, userID); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
