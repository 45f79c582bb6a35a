package posts

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/NikhilKartha5/ai-journal/internal/common"
	"github.com/NikhilKartha5/ai-journal/internal/dbx"
	"github.com/NikhilKartha5/ai-journal/internal/server/models"
)

// PostgresRepository implements post storage over a dbx.DBTX.
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, post *models.Post) error {
	emotions := post.Emotions
	if emotions == nil {
		emotions = []string{}
	}
	b, err := json.Marshal(emotions)
	if err != nil {
		return err
	}
	query := `
		INSERT INTO posts (id, user_id, content, sentiment_score, emotions, likes, author, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8);
	`
	if _, err := r.db.ExecContext(ctx, query,
		post.ID, post.UserID, post.Content, post.SentimentScore, string(b), post.Likes, post.Author, post.CreatedAt); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) List(ctx context.Context, limit int) ([]models.Post, error) {
	query := `
		SELECT id, user_id, content, sentiment_score, emotions, likes, author, created_at
		FROM posts ORDER BY created_at DESC LIMIT $1;
	`
	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to select posts: %w", err)
	}
	defer rows.Close()

	var result []models.Post
	for rows.Next() {
		var post models.Post
		var emotions string
		if err := rows.Scan(&post.ID, &post.UserID, &post.Content, &post.SentimentScore,
			&emotions, &post.Likes, &post.Author, &post.CreatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(emotions), &post.Emotions); err != nil {
			return nil, fmt.Errorf("malformed emotions column: %w", err)
		}
		result = append(result, post)
	}
	return result, rows.Err()
}

func (r *PostgresRepository) Like(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE posts SET likes = likes + 1 WHERE id=$1;`, id)
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
