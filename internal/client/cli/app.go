package cli

import (
	"context"
	"crypto/rand"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/NikhilKartha5/ai-journal/internal/client/analysis"
	"github.com/NikhilKartha5/ai-journal/internal/client/api"
	"github.com/NikhilKartha5/ai-journal/internal/client/config"
	"github.com/NikhilKartha5/ai-journal/internal/client/connectivity"
	"github.com/NikhilKartha5/ai-journal/internal/client/journal"
	"github.com/NikhilKartha5/ai-journal/internal/client/store"
	"github.com/NikhilKartha5/ai-journal/internal/client/sync"
	"github.com/NikhilKartha5/ai-journal/internal/logging"
)

const (
	sessionTokenKey = "session.token"
	cryptoSaltKey   = "crypto.salt"
)

// App wires the client stack for one CLI invocation.
type App struct {
	config  *config.Config
	store   store.Store
	client  *api.Client
	monitor connectivity.Monitor
	engine  *sync.Engine
	service *journal.Service
	logger  logging.Logger
}

// monitorFunc builds the connectivity monitor for the stack once the API
// client exists. The default decides with a single probe; one-shot commands
// have no use for a background prober.
type monitorFunc func(ctx context.Context, client *api.Client, cfg *config.Config, logger logging.Logger) connectivity.Monitor

func probeOnce(ctx context.Context, client *api.Client, _ *config.Config, _ logging.Logger) connectivity.Monitor {
	monitor := connectivity.NewManual(false)
	if client.Ping(ctx) == nil {
		monitor.SetOnline(true)
	}
	return monitor
}

// newApp builds the stack: config, local store (optionally sealed), API
// client, and the sync machinery.
func newApp(ctx context.Context) (*App, error) {
	return newAppWith(ctx, probeOnce)
}

func newAppWith(ctx context.Context, buildMonitor monitorFunc) (*App, error) {
	cfg := config.LoadConfig()
	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn})))

	var opts []store.Option
	if cfg.Encrypt {
		codec, err := buildCodec(ctx, cfg)
		if err != nil {
			return nil, err
		}
		opts = append(opts, store.WithCodec(codec))
	}

	s := openStore(ctx, cfg.DatabasePath, logger, opts...)

	client := api.New(cfg.ServerAddr)
	monitor := buildMonitor(ctx, client, cfg, logger)

	engine := sync.New(s, client, monitor, logger)
	analyzer := analysis.NewOpenAIAnalyzer(analysis.Config{APIKey: cfg.OpenAIKey, Model: cfg.OpenAIModel})
	service := journal.NewService(s, client, engine, analyzer, monitor, logger)

	return &App{
		config:  cfg,
		store:   s,
		client:  client,
		monitor: monitor,
		engine:  engine,
		service: service,
		logger:  logger,
	}, nil
}

func (app *App) Close() {
	_ = app.store.Close()
}

// openStore opens the local database, degrading to a memory-only session when
// durable storage is unavailable: the command still works, but queued
// mutations are lost when the process exits.
func openStore(ctx context.Context, path string, logger logging.Logger, opts ...store.Option) store.Store {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			logger.Warn(ctx, "local storage unavailable, running in memory", "error", err)
			return store.NewMemoryStore()
		}
	}
	s, err := store.Open(ctx, path, opts...)
	if err != nil {
		logger.Warn(ctx, "local storage unavailable, running in memory", "error", err)
		return store.NewMemoryStore()
	}
	return s
}

// buildCodec derives the at-rest key from a prompted passphrase. The salt is
// generated once and kept in plain settings; the passphrase never touches
// disk.
func buildCodec(ctx context.Context, cfg *config.Config) (store.Codec, error) {
	pass, err := GetPassword(os.Stderr, "Vault passphrase: ")
	if err != nil {
		return nil, err
	}

	// The salt lives in the same database the codec protects, so it has to
	// be read with a plain store before the sealed one is opened.
	plain, err := store.Open(ctx, cfg.DatabasePath)
	if err != nil {
		return nil, err
	}
	defer plain.Close()

	var salt []byte
	ok, err := plain.GetSetting(ctx, cryptoSaltKey, &salt)
	if err != nil {
		return nil, err
	}
	if !ok {
		salt = make([]byte, 16)
		if _, err := rand.Read(salt); err != nil {
			return nil, err
		}
		if err := plain.SetSetting(ctx, cryptoSaltKey, salt); err != nil {
			return nil, err
		}
	}

	return store.NewAESGCMCodec(store.DeriveKey(pass, salt))
}

// token returns the stored session token, or "" when signed out.
func (app *App) token(ctx context.Context) string {
	var token string
	ok, err := app.store.GetSetting(ctx, sessionTokenKey, &token)
	if err != nil || !ok {
		return ""
	}
	return token
}

func (app *App) setToken(ctx context.Context, token string) error {
	return app.store.SetSetting(ctx, sessionTokenKey, token)
}

func (app *App) clearToken(ctx context.Context) error {
	return app.store.SetSetting(ctx, sessionTokenKey, "")
}

// requireToken aborts the command when no user is signed in.
func (app *App) requireToken(ctx context.Context) string {
	token := app.token(ctx)
	if token == "" {
		exitErr("auth", fmt.Errorf("not signed in; run 'journal login' first"))
	}
	return token
}
