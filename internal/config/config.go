package config

import "time"

// Config holds all application configuration.
type Config struct {
	Fetch    Fetch    `mapstructure:"fetch"`
	Provider Provider `mapstructure:"provider"`
	Store    Store    `mapstructure:"store"`
	Index    Index    `mapstructure:"index"`
	Ingest   Ingest   `mapstructure:"ingest"`
}

// Fetch holds page-fetching configuration.
type Fetch struct {
	ProxyURL      string        `mapstructure:"proxy_url"`
	ProxyAPIKey   string        `mapstructure:"proxy_api_key"`
	Timeout       time.Duration `mapstructure:"timeout"`
	AttemptBudget int           `mapstructure:"attempt_budget"`
	HostRPS       float64       `mapstructure:"host_rps"`
	HostBurst     int           `mapstructure:"host_burst"`
	BackoffBase   time.Duration `mapstructure:"backoff_base"`
	SnapshotDir   string        `mapstructure:"snapshot_dir"`
	UseSnapshots  bool          `mapstructure:"use_snapshots"`
	UserAgent     string        `mapstructure:"user_agent"`
	SearchBaseURL string        `mapstructure:"search_base_url"`
	SearchPath    string        `mapstructure:"search_path"`
}

// Provider holds the OpenAI-compatible model provider configuration used for
// both embeddings and answer generation.
type Provider struct {
	BaseURL        string        `mapstructure:"base_url"`
	APIKey         string        `mapstructure:"api_key"`
	ChatModel      string        `mapstructure:"chat_model"`
	EmbeddingModel string        `mapstructure:"embedding_model"`
	Timeout        time.Duration `mapstructure:"timeout"`
}

// Store holds record store configuration.
type Store struct {
	Path      string `mapstructure:"path"`
	ExportDir string `mapstructure:"export_dir"`
}

// Index holds vector index configuration.
type Index struct {
	SnapshotPath string `mapstructure:"snapshot_path"`
	ChunkSize    int    `mapstructure:"chunk_size"`
	ChunkOverlap int    `mapstructure:"chunk_overlap"`
}

// Ingest holds keyword ingestion configuration.
type Ingest struct {
	Workers  int `mapstructure:"workers"`
	DefaultN int `mapstructure:"default_n"`
}

// Defaults returns a Config with sensible default values.
func Defaults() Config {
	return Config{
		Fetch: Fetch{
			Timeout:       60 * time.Second,
			AttemptBudget: 3,
			HostRPS:       0.5, // one request per host every two seconds
			HostBurst:     1,
			BackoffBase:   2 * time.Second,
			SnapshotDir:   "data/html_snapshots",
			UseSnapshots:  false,
			UserAgent:     "shopscout/1.0",
			SearchBaseURL: "https://www.amazon.com",
			SearchPath:    "/s?k=",
		},
		Provider: Provider{
			BaseURL:        "https://dashscope-intl.aliyuncs.com/compatible-mode/v1",
			ChatModel:      "qwen-plus",
			EmbeddingModel: "text-embedding-v4",
			Timeout:        120 * time.Second,
		},
		Store: Store{
			Path:      "data/records.db",
			ExportDir: "data",
		},
		Index: Index{
			SnapshotPath: "data/index.json",
			ChunkSize:    800,
			ChunkOverlap: 120,
		},
		Ingest: Ingest{
			Workers:  4,
			DefaultN: 10,
		},
	}
}
