package server

import (
	"encoding/json"
	"os"
	"path/filepath"
)

const (
	defaultServerAddr = ":8080"
	defaultLanguage   = "en"
	// defaultQuotaBytes mirrors the ~5 MB ceiling of the browser substrate
	// the store was designed against.
	defaultQuotaBytes = 5 * 1024 * 1024
)

// ModelSettings configures one model endpoint in the config file. The API key
// can come from the environment instead of the file.
type ModelSettings struct {
	BaseURL string `json:"base_url,omitempty"`
	APIKey  string `json:"api_key,omitempty"`
	Model   string `json:"model,omitempty"`
}

// Config is the JSON application config.
type Config struct {
	ServerAddr        string         `json:"server_addr,omitempty"`
	DataDir           string         `json:"data_dir,omitempty"`
	StorageQuotaBytes int64          `json:"storage_quota_bytes,omitempty"`
	Language          string         `json:"language,omitempty"`
	LogicModel        *ModelSettings `json:"logic_model,omitempty"`
	VisionModel       *ModelSettings `json:"vision_model,omitempty"`
	MockLLM           bool           `json:"mock_llm,omitempty"`
}

// LoadConfig reads JSON config from disk. A missing file yields defaults so
// the tool runs unconfigured (keys can be supplied per request or via env).
func LoadConfig(path string) (Config, error) {
	var cfg Config
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return Config{}, err
		}
	} else if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, err
	}
	applyDefaults(&cfg)
	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.ServerAddr == "" {
		cfg.ServerAddr = defaultServerAddr
	}
	if cfg.Language == "" {
		cfg.Language = defaultLanguage
	}
	if cfg.StorageQuotaBytes == 0 {
		cfg.StorageQuotaBytes = defaultQuotaBytes
	}
	if cfg.DataDir == "" {
		if home, err := os.UserHomeDir(); err == nil {
			cfg.DataDir = filepath.Join(home, ".paper2diagram")
		} else {
			cfg.DataDir = ".paper2diagram"
		}
	}
	if cfg.LogicModel == nil {
		cfg.LogicModel = &ModelSettings{}
	}
	if cfg.VisionModel == nil {
		cfg.VisionModel = &ModelSettings{}
	}
	if cfg.LogicModel.APIKey == "" {
		cfg.LogicModel.APIKey = os.Getenv("PAPER2DIAGRAM_LOGIC_API_KEY")
	}
	if cfg.VisionModel.APIKey == "" {
		cfg.VisionModel.APIKey = os.Getenv("PAPER2DIAGRAM_VISION_API_KEY")
	}
	if !cfg.MockLLM {
		mock := os.Getenv("PAPER2DIAGRAM_MOCK")
		cfg.MockLLM = mock == "1" || mock == "true"
	}
}
