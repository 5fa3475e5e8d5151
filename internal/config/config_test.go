package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	cfgDir := filepath.Join(dir, "config")
	if err := os.Mkdir(cfgDir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	path := filepath.Join(cfgDir, "test.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(wd); err != nil {
			t.Fatalf("chdir back: %v", err)
		}
	})
	return path
}

const minimalConfig = `
http:
  port: 8080
database:
  addrs: ["localhost:6379"]
openai:
  api_key: test-key
`

func TestLoad_Defaults(t *testing.T) {
	writeConfig(t, minimalConfig)

	cfg, err := Load("test")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.HTTP.ReadTimeoutSec != 10 {
		t.Errorf("ReadTimeoutSec = %d, want 10", cfg.HTTP.ReadTimeoutSec)
	}
	if cfg.HTTP.WriteTimeoutSec != 180 {
		t.Errorf("WriteTimeoutSec = %d, want 180", cfg.HTTP.WriteTimeoutSec)
	}
	if cfg.Retrieval.TopK != 5 {
		t.Errorf("TopK = %d, want 5", cfg.Retrieval.TopK)
	}
	if cfg.Chat.MaxHistoryTurns != 20 {
		t.Errorf("MaxHistoryTurns = %d, want 20", cfg.Chat.MaxHistoryTurns)
	}
	if cfg.Chat.MaxHistoryChars != 4000 {
		t.Errorf("MaxHistoryChars = %d, want 4000", cfg.Chat.MaxHistoryChars)
	}
	if cfg.OpenAI.ChatModel != "gpt-4-1106-preview" {
		t.Errorf("ChatModel = %q, want gpt-4-1106-preview", cfg.OpenAI.ChatModel)
	}
	if cfg.OpenAI.EmbeddingDimensions != 1536 {
		t.Errorf("EmbeddingDimensions = %d, want 1536", cfg.OpenAI.EmbeddingDimensions)
	}
}

func TestLoad_EnvExpansion(t *testing.T) {
	t.Setenv("LEXCHAT_TEST_KEY", "secret-from-env")
	writeConfig(t, `
http:
  port: 8080
database:
  addrs: ["${LEXCHAT_TEST_ADDR:-localhost:6379}"]
openai:
  api_key: ${LEXCHAT_TEST_KEY}
`)

	cfg, err := Load("test")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.OpenAI.APIKey != "secret-from-env" {
		t.Errorf("APIKey = %q, want secret-from-env", cfg.OpenAI.APIKey)
	}
	if len(cfg.Database.Addrs) != 1 || cfg.Database.Addrs[0] != "localhost:6379" {
		t.Errorf("Addrs = %v, want default fallback", cfg.Database.Addrs)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid", func(_ *Config) {}, false},
		{"bad port", func(c *Config) { c.HTTP.Port = 0 }, true},
		{"missing addrs", func(c *Config) { c.Database.Addrs = nil }, true},
		{"missing api key", func(c *Config) { c.OpenAI.APIKey = "" }, true},
		{"temperature out of range", func(c *Config) { c.OpenAI.Temperature = 3 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Config{
				HTTP:     HTTPConfig{Port: 8080},
				Database: DatabaseConfig{Addrs: []string{"localhost:6379"}},
				OpenAI:   OpenAIConfig{APIKey: "k"},
			}
			tt.mutate(&cfg)
			if err := cfg.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() err = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
