package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Whisper.Mode != "api" {
		t.Errorf("mode = %q, want api", cfg.Whisper.Mode)
	}
	if cfg.Local.Model != "large-v3-turbo" {
		t.Errorf("local model = %q", cfg.Local.Model)
	}
	if cfg.Analyze.OpenAIModel != "gpt-4o-mini" {
		t.Errorf("openai model = %q", cfg.Analyze.OpenAIModel)
	}
	if cfg.Analyze.GeminiModel != "gemini-2.5-flash" {
		t.Errorf("gemini model = %q", cfg.Analyze.GeminiModel)
	}
	if cfg.Keystore.Secret != DefaultSecret {
		t.Errorf("secret = %q, want development default", cfg.Keystore.Secret)
	}
	if cfg.Limits.MaxUploadMB != 100 {
		t.Errorf("max upload = %d, want 100", cfg.Limits.MaxUploadMB)
	}
	if cfg.Jobs.TTLMinutes != 60 || cfg.Jobs.SweepMinutes != 10 {
		t.Errorf("job ttl/sweep = %d/%d", cfg.Jobs.TTLMinutes, cfg.Jobs.SweepMinutes)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("WHISPER_MODE", "local")
	t.Setenv("PORT", "9000")
	t.Setenv("LOCAL_DEVICE", "cuda")
	t.Setenv("OPENAI_API_KEY", "sk-env")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Whisper.Mode != "local" {
		t.Errorf("mode = %q, want local", cfg.Whisper.Mode)
	}
	if cfg.Server.Port != 9000 {
		t.Errorf("port = %d, want 9000", cfg.Server.Port)
	}
	if cfg.Local.Device != "cuda" {
		t.Errorf("device = %q, want cuda", cfg.Local.Device)
	}
	if cfg.OpenAIKey != "sk-env" {
		t.Errorf("fallback key = %q", cfg.OpenAIKey)
	}
}

func TestFileWithEnvPrecedence(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	raw := []byte("server:\n  port: 3000\nwhisper:\n  mode: local\n")
	if err := os.WriteFile(path, raw, 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("PORT", "4000")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != 4000 {
		t.Errorf("port = %d, env should win over file", cfg.Server.Port)
	}
	if cfg.Whisper.Mode != "local" {
		t.Errorf("mode = %q, file value should apply", cfg.Whisper.Mode)
	}
}

func TestMissingFileIsFine(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err != nil {
		t.Fatalf("missing file should not error: %v", err)
	}
}

func TestInvalidMode(t *testing.T) {
	t.Setenv("WHISPER_MODE", "cloud")
	if _, err := Load(""); err == nil {
		t.Fatal("expected error for invalid mode")
	}
}

func TestProductionRejectsDefaultSecret(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	if _, err := Load(""); err == nil {
		t.Fatal("production with default secret must fail")
	}

	t.Setenv("STUDY_TOOL_SECRET", "a-real-secret")
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !cfg.IsProduction() {
		t.Error("IsProduction() = false")
	}
}
