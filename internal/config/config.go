// Package config holds operator-level configuration for a motionbot
// process: data directory, KB source, admin token, rate limits, and the
// optional model settings. Set via env vars (MOTIONBOT_*) or a
// motionbot.config.yaml file; env wins.
//
// The knowledge base itself is content, not configuration — it lives in
// its own YAML file (or the embedded default) and is reloaded at runtime
// without touching this package.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// Viper keys. Each maps to an env var with the MOTIONBOT_ prefix
// (e.g. "admin_token" → MOTIONBOT_ADMIN_TOKEN) and to a YAML field in
// motionbot.config.yaml.
const (
	KeyDataDir        = "data_dir"
	KeyKBPath         = "kb_path"
	KeyKBTTLSeconds   = "kb_ttl_seconds"
	KeyAdminToken     = "admin_token"
	KeyCORSOrigins    = "cors_origins"
	KeyRateLimitRPS   = "rate_limit_rps"
	KeyRateLimitBurst = "rate_limit_burst"
	KeyModel          = "model"
	KeyModelEffort    = "model_reasoning_effort"
	KeyModelVerbosity = "model_verbosity"
	KeyModelMaxTokens = "model_max_output_tokens"
	KeyOpenAIAPIKey   = "openai_api_key"
)

// Defaults. The model has no default: an empty model name means the
// heuristic-only path, which is the safe zero-config behavior.
const (
	DefaultKBTTLSeconds   = 300
	DefaultRateLimitRPS   = 5
	DefaultRateLimitBurst = 10
	DefaultModelEffort    = "low"
	DefaultModelVerbosity = "low"
	DefaultModelMaxTokens = 600
)

// Config is the resolved operator configuration for one process.
type Config struct {
	DataDir        string        // base directory for state (~/.motionbot)
	KBPath         string        // knowledge base YAML; "" = embedded default
	KBTTL          time.Duration // KB cache expiry
	AdminToken     string        // bearer token for admin endpoints; "" disables them
	CORSOrigins    []string
	RateLimitRPS   float64
	RateLimitBurst int
	Model          string // model name; "" = heuristic only
	ModelEffort    string
	ModelVerbosity string
	ModelMaxTokens int
	OpenAIAPIKey   string
}

// ModelEnabled reports whether the model path should be wired up.
func (c *Config) ModelEnabled() bool {
	return c.Model != "" && c.OpenAIAPIKey != ""
}

// TranscriptDBPath returns the full path to the transcript SQLite database.
func (c *Config) TranscriptDBPath() string {
	return filepath.Join(c.DataDir, "transcript.db")
}

// EnsureDataDir creates the data directory if it doesn't exist.
func (c *Config) EnsureDataDir() error {
	return os.MkdirAll(c.DataDir, 0o700)
}

func init() {
	viper.SetEnvPrefix("MOTIONBOT")
	viper.AutomaticEnv()
	viper.SetDefault(KeyKBTTLSeconds, DefaultKBTTLSeconds)
	viper.SetDefault(KeyCORSOrigins, []string{"*"})
	viper.SetDefault(KeyRateLimitRPS, DefaultRateLimitRPS)
	viper.SetDefault(KeyRateLimitBurst, DefaultRateLimitBurst)
	viper.SetDefault(KeyModelEffort, DefaultModelEffort)
	viper.SetDefault(KeyModelVerbosity, DefaultModelVerbosity)
	viper.SetDefault(KeyModelMaxTokens, DefaultModelMaxTokens)
}

// Load reads configuration from Viper (env vars, config file, defaults)
// and returns a validated Config.
func Load() (*Config, error) {
	cfg := &Config{
		DataDir:        resolveDataDir(),
		KBPath:         viper.GetString(KeyKBPath),
		KBTTL:          time.Duration(viper.GetInt(KeyKBTTLSeconds)) * time.Second,
		AdminToken:     viper.GetString(KeyAdminToken),
		CORSOrigins:    viper.GetStringSlice(KeyCORSOrigins),
		RateLimitRPS:   viper.GetFloat64(KeyRateLimitRPS),
		RateLimitBurst: viper.GetInt(KeyRateLimitBurst),
		Model:          viper.GetString(KeyModel),
		ModelEffort:    viper.GetString(KeyModelEffort),
		ModelVerbosity: viper.GetString(KeyModelVerbosity),
		ModelMaxTokens: viper.GetInt(KeyModelMaxTokens),
		OpenAIAPIKey:   viper.GetString(KeyOpenAIAPIKey),
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func resolveDataDir() string {
	if dir := viper.GetString(KeyDataDir); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".motionbot"
	}
	return filepath.Join(home, ".motionbot")
}

func (c *Config) validate() error {
	if c.KBTTL <= 0 {
		return fmt.Errorf("kb_ttl_seconds must be positive")
	}
	if c.RateLimitRPS <= 0 {
		return fmt.Errorf("rate_limit_rps must be positive")
	}
	if c.RateLimitBurst <= 0 {
		return fmt.Errorf("rate_limit_burst must be positive")
	}
	if c.Model != "" && c.OpenAIAPIKey == "" {
		return fmt.Errorf("model %q configured without openai_api_key; set MOTIONBOT_OPENAI_API_KEY", c.Model)
	}
	if c.ModelMaxTokens <= 0 {
		return fmt.Errorf("model_max_output_tokens must be positive")
	}
	return nil
}
