package config

import (
	"errors"
	"os"

	"gopkg.in/yaml.v3"
)

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Addr             string `yaml:"addr"`
	ReadTimeoutSecs  int    `yaml:"read_timeout_secs"`
	WriteTimeoutSecs int    `yaml:"write_timeout_secs"`
}

// OpenSearchConfig contains connection details for the OpenSearch backend.
// Credentials left empty fall back to OPENSEARCH_USERNAME / OPENSEARCH_PASSWORD.
type OpenSearchConfig struct {
	URL         string `yaml:"url"`
	Index       string `yaml:"index"`
	Username    string `yaml:"username"`
	Password    string `yaml:"password"`
	TimeoutSecs int    `yaml:"timeout_secs"`
}

// IndexConfig selects and configures the search index gateway implementation.
type IndexConfig struct {
	Type       string            `yaml:"type"`
	OpenSearch *OpenSearchConfig `yaml:"opensearch,omitempty"`
}

// ClusterConfig tunes the near-duplicate grouping.
type ClusterConfig struct {
	Threshold     float64 `yaml:"threshold"`
	CandidatePool int     `yaml:"candidate_pool"`
	MaxClusters   int     `yaml:"max_clusters"`
}

// FAQConfig configures the reporting surface.
type FAQConfig struct {
	TopN    int           `yaml:"top_n"`
	Cluster ClusterConfig `yaml:"cluster"`
}

// RetentionConfig configures the background eviction job.
type RetentionConfig struct {
	WindowDays         int `yaml:"window_days"`
	SweepIntervalHours int `yaml:"sweep_interval_hours"`
}

// AnswerConfig points at the optional inference/orchestration endpoint.
type AnswerConfig struct {
	URL         string `yaml:"url"`
	Model       string `yaml:"model"`
	TimeoutSecs int    `yaml:"timeout_secs"`
}

// AppConfig is the root application configuration structure.
type AppConfig struct {
	Server    ServerConfig    `yaml:"server"`
	Index     IndexConfig     `yaml:"index"`
	FAQ       FAQConfig       `yaml:"faq"`
	Retention RetentionConfig `yaml:"retention"`
	Answer    *AnswerConfig   `yaml:"answer,omitempty"`
}

// Load reads a config from a specified path. If the file does not exist,
// returns defaults.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return defaultConfig(), nil
		}
		return nil, err
	}
	var cfg AppConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	applyConfigDefaults(&cfg)
	return &cfg, nil
}

func defaultConfig() *AppConfig {
	cfg := &AppConfig{}
	applyConfigDefaults(cfg)
	return cfg
}

func applyConfigDefaults(cfg *AppConfig) {
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":9100"
	}
	if cfg.Index.Type == "" {
		cfg.Index.Type = "memory"
	}
	if cfg.Index.Type == "opensearch" && cfg.Index.OpenSearch != nil {
		if cfg.Index.OpenSearch.Index == "" {
			cfg.Index.OpenSearch.Index = "faq-queries"
		}
		if cfg.Index.OpenSearch.TimeoutSecs == 0 {
			cfg.Index.OpenSearch.TimeoutSecs = 15
		}
	}
	if cfg.FAQ.TopN == 0 {
		cfg.FAQ.TopN = 5
	}
	if cfg.FAQ.Cluster.Threshold == 0 {
		cfg.FAQ.Cluster.Threshold = 0.6
	}
	if cfg.FAQ.Cluster.CandidatePool == 0 {
		cfg.FAQ.Cluster.CandidatePool = 100
	}
	if cfg.FAQ.Cluster.MaxClusters == 0 {
		cfg.FAQ.Cluster.MaxClusters = 5
	}
	if cfg.Retention.WindowDays == 0 {
		cfg.Retention.WindowDays = 90
	}
	if cfg.Retention.SweepIntervalHours == 0 {
		cfg.Retention.SweepIntervalHours = 24
	}
	if cfg.Answer != nil {
		if cfg.Answer.Model == "" {
			cfg.Answer.Model = "llama3"
		}
		if cfg.Answer.TimeoutSecs == 0 {
			cfg.Answer.TimeoutSecs = 120
		}
	}
}
