package config

import (
	"errors"
	"io/fs"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix is the prefix for environment overrides. Nested keys use a
// double underscore, e.g. ACE_LLM__MODEL=gpt-4o-mini.
const EnvPrefix = "ACE_"

type Config struct {
	Environment string            `koanf:"environment"`
	Server      ServerConfig      `koanf:"server"`
	Log         LogConfig         `koanf:"log"`
	LLM         LLMConfig         `koanf:"llm"`
	Session     SessionConfig     `koanf:"session"`
	Performance PerformanceConfig `koanf:"performance"`
	LiveKit     LiveKitConfig     `koanf:"livekit"`
	Telemetry   TelemetryConfig   `koanf:"telemetry"`
}

type ServerConfig struct {
	Port           int           `koanf:"port"`
	RequestTimeout time.Duration `koanf:"request_timeout"`
	CORSOrigins    []string      `koanf:"cors_origins"`
}

type LogConfig struct {
	Level string `koanf:"level"` // debug, info, warn, error
}

// LLMConfig selects and configures the model provider.
type LLMConfig struct {
	Provider        string        `koanf:"provider"` // gemini, openai, groq, anthropic
	Model           string        `koanf:"model"`
	APIKey          string        `koanf:"api_key"`
	BaseURL         string        `koanf:"base_url"` // Custom API endpoint
	Timeout         time.Duration `koanf:"timeout"`
	MaxPromptTokens int           `koanf:"max_prompt_tokens"`
	MaxOutputTokens int           `koanf:"max_output_tokens"`
	Temperature     float64       `koanf:"temperature"`
}

// SessionConfig bounds the session memory used for caching.
type SessionConfig struct {
	Backend       string        `koanf:"backend"` // memory, redis
	TTL           time.Duration `koanf:"ttl"`
	MaxEntries    int           `koanf:"max_entries"`
	SweepInterval time.Duration `koanf:"sweep_interval"`
	Redis         RedisConfig   `koanf:"redis"`
}

type RedisConfig struct {
	Addr      string `koanf:"addr"`
	Password  string `koanf:"password"`
	DB        int    `koanf:"db"`
	KeyPrefix string `koanf:"key_prefix"`
}

type PerformanceConfig struct {
	// Concurrency is the number of responses analyzed in parallel. 1 keeps
	// analysis strictly sequential.
	Concurrency int `koanf:"concurrency"`
}

type LiveKitConfig struct {
	APIKey    string        `koanf:"api_key"`
	APISecret string        `koanf:"api_secret"`
	WSURL     string        `koanf:"ws_url"`
	APIURL    string        `koanf:"api_url"` // Derived from ws_url when empty
	AgentName string        `koanf:"agent_name"`
	TokenTTL  time.Duration `koanf:"token_ttl"`
}

type TelemetryConfig struct {
	Enabled     bool   `koanf:"enabled"`
	ServiceName string `koanf:"service_name"`
}

var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// Load reads configuration from the YAML file at path (config.yaml when
// empty), then applies ACE_* environment overrides and defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		path = "config.yaml"
	}

	k := koanf.New(".")

	// A missing file is fine, env vars can carry everything
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.Replace(strings.ToLower(strings.TrimPrefix(s, EnvPrefix)), "__", ".", -1)
	}), nil); err != nil {
		return nil, err
	}

	setDefaults(k)

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, err
	}

	cfg.LLM.APIKey = substituteEnvVars(cfg.LLM.APIKey)
	cfg.LiveKit.APIKey = substituteEnvVars(cfg.LiveKit.APIKey)
	cfg.LiveKit.APISecret = substituteEnvVars(cfg.LiveKit.APISecret)
	cfg.Session.Redis.Password = substituteEnvVars(cfg.Session.Redis.Password)
	applyLegacyEnv(&cfg)

	return &cfg, nil
}

func setDefaults(k *koanf.Koanf) {
	defaults := map[string]any{
		"environment":              "development",
		"server.port":              3001,
		"server.request_timeout":   "60s",
		"server.cors_origins":      []string{"http://localhost:5173", "http://localhost:3000"},
		"log.level":                "info",
		"llm.provider":             "gemini",
		"llm.timeout":              "30s",
		"llm.max_prompt_tokens":    8000,
		"llm.max_output_tokens":    2048,
		"llm.temperature":          0.7,
		"session.backend":          "memory",
		"session.ttl":              "2h",
		"session.max_entries":      10000,
		"session.sweep_interval":   "5m",
		"session.redis.addr":       "localhost:6379",
		"session.redis.key_prefix": "ace:session:",
		"performance.concurrency":  1,
		"livekit.agent_name":       "voice-agent",
		"livekit.token_ttl":        "6h",
		"telemetry.service_name":   "ace-interview",
	}
	for key, v := range defaults {
		if !k.Exists(key) {
			k.Set(key, v)
		}
	}
}

// applyLegacyEnv honors the unprefixed variable names used by existing
// deployments when the prefixed configuration leaves a value empty.
func applyLegacyEnv(cfg *Config) {
	fallback := func(dst *string, names ...string) {
		if *dst != "" {
			return
		}
		for _, n := range names {
			if v := os.Getenv(n); v != "" {
				*dst = v
				return
			}
		}
	}

	if os.Getenv(EnvPrefix+"LLM__PROVIDER") == "" {
		if v := os.Getenv("LLM_PROVIDER"); v != "" {
			cfg.LLM.Provider = v
		}
	}
	if os.Getenv(EnvPrefix+"ENVIRONMENT") == "" {
		if v := os.Getenv("ENVIRONMENT"); v != "" {
			cfg.Environment = v
		}
	}

	switch cfg.LLM.Provider {
	case "gemini":
		fallback(&cfg.LLM.APIKey, "GEMINI_API_KEY", "GOOGLE_API_KEY")
	case "openai":
		fallback(&cfg.LLM.APIKey, "OPENAI_API_KEY")
	case "groq":
		fallback(&cfg.LLM.APIKey, "GROQ_API_KEY")
	case "anthropic":
		fallback(&cfg.LLM.APIKey, "ANTHROPIC_API_KEY")
	}

	fallback(&cfg.LiveKit.APIKey, "LIVEKIT_API_KEY")
	fallback(&cfg.LiveKit.APISecret, "LIVEKIT_API_SECRET")
	fallback(&cfg.LiveKit.WSURL, "LIVEKIT_WS_URL", "LIVEKIT_URL")
	if v := os.Getenv("PORT"); v != "" && os.Getenv(EnvPrefix+"SERVER__PORT") == "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("LIVEKIT_AGENT_ID"); v != "" && os.Getenv(EnvPrefix+"LIVEKIT__AGENT_NAME") == "" {
		cfg.LiveKit.AgentName = v
	}
}

func substituteEnvVars(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		// Extract variable name from ${VAR_NAME}
		varName := envVarPattern.FindStringSubmatch(match)[1]
		return os.Getenv(varName)
	})
}
