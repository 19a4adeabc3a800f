package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	LogFile           string `json:"log_file" yaml:"log_file"`
	LogLevel          string `json:"log_level" yaml:"log_level"`
	Addr              string `json:"addr" yaml:"addr"`
	MaxUploadBytes    int64  `json:"max_upload_bytes" yaml:"max_upload_bytes"`
	FoldExtensionCase bool   `json:"fold_extension_case" yaml:"fold_extension_case"`
	OutputFormat      string `json:"output_format" yaml:"output_format"`
	NcbiApiKey        string `json:"ncbi_api_key" yaml:"ncbi_api_key"`
	NcbiBaseURL       string `json:"ncbi_base_url" yaml:"ncbi_base_url"`
	NcbiCacheTTLSecs  int64  `json:"ncbi_cache_ttl_seconds" yaml:"ncbi_cache_ttl_seconds"`
}

// Defaults used when neither the config file nor the environment set a value.
const (
	DefaultAddr           = ":8080"
	DefaultMaxUploadBytes = 8 << 20
	DefaultOutputFormat   = "text"
)

func defaults() *Config {
	return &Config{
		LogLevel:       "info",
		Addr:           DefaultAddr,
		MaxUploadBytes: DefaultMaxUploadBytes,
		OutputFormat:   DefaultOutputFormat,
	}
}

// LoadConfig loads a config file from the given path. If path is empty, looks
// for ./config.json. Files ending in .yaml or .yml are decoded as YAML, anything
// else as JSON. A missing file is not fatal: defaults are returned.
// A .env file in the working directory is loaded first, and SEQVIEW_*
// environment variables override file values.
func LoadConfig(path string) (*Config, error) {
	_ = godotenv.Load()

	if path == "" {
		path = "config.json"
	}
	c := defaults()
	data, err := os.ReadFile(path)
	if err == nil {
		switch strings.ToLower(filepath.Ext(path)) {
		case ".yaml", ".yml":
			err = yaml.Unmarshal(data, c)
		default:
			err = json.Unmarshal(data, c)
		}
		if err != nil {
			return nil, err
		}
	}
	applyEnv(c)
	return c, nil
}

func applyEnv(c *Config) {
	if v := os.Getenv("SEQVIEW_LOG_FILE"); v != "" {
		c.LogFile = v
	}
	if v := os.Getenv("SEQVIEW_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv("SEQVIEW_ADDR"); v != "" {
		c.Addr = v
	}
	if v := os.Getenv("SEQVIEW_MAX_UPLOAD_BYTES"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
			c.MaxUploadBytes = n
		}
	}
	if v := os.Getenv("SEQVIEW_FOLD_EXTENSION_CASE"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.FoldExtensionCase = b
		}
	}
	if v := os.Getenv("SEQVIEW_OUTPUT_FORMAT"); v != "" {
		c.OutputFormat = v
	}
	// NCBI_API_KEY is the name the E-utilities tooling already uses
	if v := os.Getenv("NCBI_API_KEY"); v != "" {
		c.NcbiApiKey = v
	}
	if v := os.Getenv("SEQVIEW_NCBI_BASE_URL"); v != "" {
		c.NcbiBaseURL = v
	}
}
