package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// DefaultSecret is the development-only keystore passphrase.
const DefaultSecret = "local-dev-secret"

// Config represents the application configuration
type Config struct {
	Server struct {
		Port int    `yaml:"port"`
		Host string `yaml:"host"`
	} `yaml:"server"`

	Whisper struct {
		Mode     string `yaml:"mode"` // "api" or "local"
		APIModel string `yaml:"api_model"`
		Language string `yaml:"language"`
	} `yaml:"whisper"`

	Local struct {
		Model      string `yaml:"model"`
		Device     string `yaml:"device"`
		Compute    string `yaml:"compute"`
		PythonBin  string `yaml:"python_bin"`
		ScriptPath string `yaml:"script_path"`
	} `yaml:"local"`

	Analyze struct {
		OpenAIModel string `yaml:"openai_model"`
		GeminiModel string `yaml:"gemini_model"`
	} `yaml:"analyze"`

	Keystore struct {
		Secret string `yaml:"-"` // env only, never from file
	} `yaml:"-"`

	Storage struct {
		DataDir   string `yaml:"data_dir"`
		TempDir   string `yaml:"temp_dir"`
		OutputDir string `yaml:"output_dir"`
		HistoryDB string `yaml:"history_db"`
	} `yaml:"storage"`

	Jobs struct {
		TTLMinutes   int `yaml:"ttl_minutes"`
		SweepMinutes int `yaml:"sweep_minutes"`
	} `yaml:"jobs"`

	GoogleDrive struct {
		CredentialsFile string `yaml:"credentials_file"`
		TokenFile       string `yaml:"token_file"`
		FolderName      string `yaml:"folder_name"`
	} `yaml:"google_drive"`

	Limits struct {
		MaxUploadMB int `yaml:"max_upload_mb"`
	} `yaml:"limits"`

	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"log"`

	Env string `yaml:"-"`

	// Fallback API keys, env only.
	OpenAIKey string `yaml:"-"`
	GoogleKey string `yaml:"-"`
}

// Load reads the optional YAML config file and applies environment
// overrides and defaults. A missing file is not an error.
func Load(path string) (*Config, error) {
	var cfg Config

	if path != "" {
		raw, err := os.ReadFile(path)
		if err == nil {
			if err := yaml.Unmarshal(raw, &cfg); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", path, err)
			}
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	cfg.applyEnv()
	cfg.applyDefaults()

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyEnv() {
	envInt("PORT", &c.Server.Port)
	envStr("WHISPER_MODE", &c.Whisper.Mode)
	envStr("WHISPER_API_MODEL", &c.Whisper.APIModel)
	envStr("WHISPER_LANGUAGE", &c.Whisper.Language)
	envStr("LOCAL_MODEL", &c.Local.Model)
	envStr("LOCAL_DEVICE", &c.Local.Device)
	envStr("LOCAL_COMPUTE", &c.Local.Compute)
	envStr("PYTHON_BIN", &c.Local.PythonBin)
	envStr("LOCAL_SCRIPT", &c.Local.ScriptPath)
	envStr("OPENAI_MODEL", &c.Analyze.OpenAIModel)
	envStr("GEMINI_MODEL", &c.Analyze.GeminiModel)
	envStr("STUDY_TOOL_SECRET", &c.Keystore.Secret)
	envStr("DATA_DIR", &c.Storage.DataDir)
	envStr("TEMP_DIR", &c.Storage.TempDir)
	envStr("OUTPUT_DIR", &c.Storage.OutputDir)
	envStr("HISTORY_DB", &c.Storage.HistoryDB)
	envInt("JOB_TTL_MINUTES", &c.Jobs.TTLMinutes)
	envInt("JOB_SWEEP_MINUTES", &c.Jobs.SweepMinutes)
	envStr("GDRIVE_CREDENTIALS", &c.GoogleDrive.CredentialsFile)
	envStr("GDRIVE_TOKEN", &c.GoogleDrive.TokenFile)
	envStr("GDRIVE_FOLDER", &c.GoogleDrive.FolderName)
	envInt("MAX_UPLOAD_MB", &c.Limits.MaxUploadMB)
	envStr("LOG_LEVEL", &c.Log.Level)
	envStr("LOG_FORMAT", &c.Log.Format)
	envStr("APP_ENV", &c.Env)
	envStr("OPENAI_API_KEY", &c.OpenAIKey)
	envStr("GOOGLE_API_KEY", &c.GoogleKey)
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.Host == "" {
		c.Server.Host = "0.0.0.0"
	}
	if c.Whisper.Mode == "" {
		c.Whisper.Mode = "api"
	}
	if c.Whisper.APIModel == "" {
		c.Whisper.APIModel = "whisper-1"
	}
	if c.Whisper.Language == "" {
		c.Whisper.Language = "zh"
	}
	if c.Local.Model == "" {
		c.Local.Model = "large-v3-turbo"
	}
	if c.Local.Device == "" {
		c.Local.Device = "cpu"
	}
	if c.Local.Compute == "" {
		c.Local.Compute = "auto"
	}
	if c.Local.PythonBin == "" {
		c.Local.PythonBin = "python"
	}
	if c.Local.ScriptPath == "" {
		c.Local.ScriptPath = "scripts/whisper_local.py"
	}
	if c.Analyze.OpenAIModel == "" {
		c.Analyze.OpenAIModel = "gpt-4o-mini"
	}
	if c.Analyze.GeminiModel == "" {
		c.Analyze.GeminiModel = "gemini-2.5-flash"
	}
	if c.Keystore.Secret == "" {
		c.Keystore.Secret = DefaultSecret
	}
	if c.Storage.DataDir == "" {
		c.Storage.DataDir = "data"
	}
	if c.Storage.TempDir == "" {
		c.Storage.TempDir = "temp"
	}
	if c.Storage.OutputDir == "" {
		c.Storage.OutputDir = "outputs"
	}
	if c.Storage.HistoryDB == "" {
		c.Storage.HistoryDB = "data/history.db"
	}
	if c.Jobs.TTLMinutes == 0 {
		c.Jobs.TTLMinutes = 60
	}
	if c.Jobs.SweepMinutes == 0 {
		c.Jobs.SweepMinutes = 10
	}
	if c.Limits.MaxUploadMB == 0 {
		c.Limits.MaxUploadMB = 100
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "console"
	}
	if c.Env == "" {
		c.Env = "development"
	}
}

func (c *Config) validate() error {
	if c.Whisper.Mode != "api" && c.Whisper.Mode != "local" {
		return fmt.Errorf("invalid whisper mode %q (want api or local)", c.Whisper.Mode)
	}
	if c.IsProduction() && c.Keystore.Secret == DefaultSecret {
		return fmt.Errorf("STUDY_TOOL_SECRET must be set to a non-default value in production")
	}
	return nil
}

// IsProduction reports whether the app runs with APP_ENV=production.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func envStr(key string, dst *string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func envInt(key string, dst *int) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}
