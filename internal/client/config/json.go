package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/NikhilKartha5/ai-journal/internal/flagx"
	"github.com/NikhilKartha5/ai-journal/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. Intervals may
// be given either as strings like "3s" or as integer nanoseconds; values are
// copied into the runtime Config afterwards.
type JsonConfig struct {
	ServerAddr          string         `json:"server_addr"`
	OnlineCheckInterval timex.Duration `json:"online_check_interval"`
	SyncInterval        timex.Duration `json:"sync_interval"`
	DatabasePath        string         `json:"database_path"`
	OpenAIKey           string         `json:"openai_key"`
	OpenAIModel         string         `json:"openai_model"`
	Encrypt             bool           `json:"encrypt"`
}

// parseJson overlays cfg with values from the JSON file named by -c/-config.
// Absent file path means no JSON layer. Empty fields leave the current value
// in place so defaults survive a partial file.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	var jc JsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	if jc.ServerAddr != "" {
		cfg.ServerAddr = jc.ServerAddr
	}
	if jc.OnlineCheckInterval.Duration != 0 {
		cfg.OnlineCheckInterval = time.Duration(jc.OnlineCheckInterval.Duration)
	}
	if jc.SyncInterval.Duration != 0 {
		cfg.SyncInterval = time.Duration(jc.SyncInterval.Duration)
	}
	if jc.DatabasePath != "" {
		cfg.DatabasePath = jc.DatabasePath
	}
	if jc.OpenAIKey != "" {
		cfg.OpenAIKey = jc.OpenAIKey
	}
	if jc.OpenAIModel != "" {
		cfg.OpenAIModel = jc.OpenAIModel
	}
	if jc.Encrypt {
		cfg.Encrypt = true
	}
}
