// Package db wires the concrete repository set behind a single manager so
// the HTTP layer does not care whether it runs on Postgres or in memory.
package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/NikhilKartha5/ai-journal/internal/server/migrations"
	"github.com/NikhilKartha5/ai-journal/internal/server/repositories/entries"
	"github.com/NikhilKartha5/ai-journal/internal/server/repositories/posts"
	"github.com/NikhilKartha5/ai-journal/internal/server/repositories/users"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

// RepositoryManager exposes the repository set plus lifecycle hooks.
type RepositoryManager interface {
	Users() users.Repository
	Entries() entries.Repository
	Posts() posts.Repository
	RunMigrations(ctx context.Context) error
	Close() error
}

// PostgresRepositoryManager backs every repository with one Postgres pool.
type PostgresRepositoryManager struct {
	db      *sql.DB
	users   users.Repository
	entries entries.Repository
	posts   posts.Repository
}

func NewPostgresRepositoryManager(dsn string) (*PostgresRepositoryManager, error) {
	pool, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}
	return &PostgresRepositoryManager{
		db:      pool,
		users:   users.NewPostgresRepository(pool),
		entries: entries.NewPostgresRepository(pool),
		posts:   posts.NewPostgresRepository(pool),
	}, nil
}

func (m *PostgresRepositoryManager) Users() users.Repository     { return m.users }
func (m *PostgresRepositoryManager) Entries() entries.Repository { return m.entries }
func (m *PostgresRepositoryManager) Posts() posts.Repository     { return m.posts }
func (m *PostgresRepositoryManager) Close() error                { return m.db.Close() }

// Conn exposes the raw pool for health checks.
func (m *PostgresRepositoryManager) Conn() *sql.DB { return m.db }

func (m *PostgresRepositoryManager) RunMigrations(ctx context.Context) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		return err
	}
	return goose.UpContext(ctx, m.db, ".")
}

// InMemoryRepositoryManager keeps everything in process memory. Used in
// tests and for running the server without a database.
type InMemoryRepositoryManager struct {
	users   *users.InMemoryRepository
	entries *entries.InMemoryRepository
	posts   *posts.InMemoryRepository
}

func NewInMemoryRepositoryManager() *InMemoryRepositoryManager {
	return &InMemoryRepositoryManager{
		users:   users.NewInMemoryRepository(),
		entries: entries.NewInMemoryRepository(),
		posts:   posts.NewInMemoryRepository(),
	}
}

func (m *InMemoryRepositoryManager) Users() users.Repository                 { return m.users }
func (m *InMemoryRepositoryManager) Entries() entries.Repository             { return m.entries }
func (m *InMemoryRepositoryManager) Posts() posts.Repository                 { return m.posts }
func (m *InMemoryRepositoryManager) RunMigrations(ctx context.Context) error { return nil }
func (m *InMemoryRepositoryManager) Close() error                            { return nil }
