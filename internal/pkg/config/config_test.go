package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != 3001 {
		t.Errorf("Server.Port = %v, want 3001", cfg.Server.Port)
	}
	if cfg.LLM.Provider != "gemini" {
		t.Errorf("LLM.Provider = %v, want gemini", cfg.LLM.Provider)
	}
	if cfg.LLM.Timeout != 30*time.Second {
		t.Errorf("LLM.Timeout = %v, want 30s", cfg.LLM.Timeout)
	}
	if cfg.Session.TTL != 2*time.Hour {
		t.Errorf("Session.TTL = %v, want 2h", cfg.Session.TTL)
	}
	if cfg.Session.MaxEntries != 10000 {
		t.Errorf("Session.MaxEntries = %v, want 10000", cfg.Session.MaxEntries)
	}
	if cfg.LiveKit.AgentName != "voice-agent" {
		t.Errorf("LiveKit.AgentName = %v, want voice-agent", cfg.LiveKit.AgentName)
	}
}

func TestLoad_FileAndEnvOverride(t *testing.T) {
	t.Setenv("TEST_LLM_KEY", "sk-from-env")
	t.Setenv("ACE_SESSION__BACKEND", "redis")

	path := writeConfig(t, `
server:
  port: 9090
llm:
  provider: openai
  model: gpt-4o-mini
  api_key: ${TEST_LLM_KEY}
  timeout: 5s
session:
  backend: memory
  max_entries: 50
livekit:
  ws_url: wss://example.livekit.cloud
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("Server.Port = %v, want 9090", cfg.Server.Port)
	}
	if cfg.LLM.APIKey != "sk-from-env" {
		t.Errorf("LLM.APIKey = %v, want sk-from-env", cfg.LLM.APIKey)
	}
	if cfg.LLM.Timeout != 5*time.Second {
		t.Errorf("LLM.Timeout = %v, want 5s", cfg.LLM.Timeout)
	}
	if cfg.Session.Backend != "redis" {
		t.Errorf("Session.Backend = %v, want redis (env override)", cfg.Session.Backend)
	}
	if cfg.Session.MaxEntries != 50 {
		t.Errorf("Session.MaxEntries = %v, want 50", cfg.Session.MaxEntries)
	}
	if cfg.LiveKit.WSURL != "wss://example.livekit.cloud" {
		t.Errorf("LiveKit.WSURL = %v", cfg.LiveKit.WSURL)
	}
}

func TestLoad_LegacyEnv(t *testing.T) {
	t.Setenv("LLM_PROVIDER", "groq")
	t.Setenv("GROQ_API_KEY", "gsk-legacy")
	t.Setenv("LIVEKIT_API_KEY", "lk-key")
	t.Setenv("LIVEKIT_API_SECRET", "lk-secret")
	t.Setenv("LIVEKIT_WS_URL", "wss://legacy.livekit.cloud")
	t.Setenv("LIVEKIT_AGENT_ID", "interviewer")
	t.Setenv("PORT", "4000")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	tests := []struct {
		name string
		got  any
		want any
	}{
		{"LLM.Provider", cfg.LLM.Provider, "groq"},
		{"LLM.APIKey", cfg.LLM.APIKey, "gsk-legacy"},
		{"LiveKit.APIKey", cfg.LiveKit.APIKey, "lk-key"},
		{"LiveKit.APISecret", cfg.LiveKit.APISecret, "lk-secret"},
		{"LiveKit.WSURL", cfg.LiveKit.WSURL, "wss://legacy.livekit.cloud"},
		{"LiveKit.AgentName", cfg.LiveKit.AgentName, "interviewer"},
		{"Server.Port", cfg.Server.Port, 4000},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s = %v, want %v", tt.name, tt.got, tt.want)
		}
	}
}

func TestSubstituteEnvVars(t *testing.T) {
	t.Setenv("SUBST_TEST_SECRET", "s3cret")

	if got := substituteEnvVars("key-${SUBST_TEST_SECRET}"); got != "key-s3cret" {
		t.Errorf("substituteEnvVars() = %v, want key-s3cret", got)
	}
	if got := substituteEnvVars("plain"); got != "plain" {
		t.Errorf("substituteEnvVars() = %v, want plain", got)
	}
}
