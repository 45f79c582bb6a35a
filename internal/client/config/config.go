package config

import (
	"os"
	"path/filepath"
	"time"
)

// Config holds runtime settings for the journal CLI.
//
// Fields:
//   - ServerAddr: base URL of the backend API.
//   - OnlineCheckInterval: how often the client probes server reachability.
//   - SyncInterval: fallback cadence for flushing the mutation queue.
//   - DatabasePath: location of the local SQLite mirror.
//   - OpenAIKey / OpenAIModel: credentials for the analysis backend.
//   - Encrypt: whether entries are sealed at rest (passphrase prompted).
type Config struct {
	ServerAddr          string
	OnlineCheckInterval time.Duration
	SyncInterval        time.Duration
	DatabasePath        string
	OpenAIKey           string
	OpenAIModel         string
	Encrypt             bool
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerAddr = "http://127.0.0.1:8080"
	c.OnlineCheckInterval = 3 * time.Second
	c.SyncInterval = 1 * time.Minute
	c.DatabasePath = defaultDatabasePath()
	c.OpenAIKey = os.Getenv("OPENAI_API_KEY")
}

func defaultDatabasePath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "journal.db"
	}
	return filepath.Join(dir, "ai-journal", "journal.db")
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present). Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
