// Package config loads application configuration from a YAML file.
package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Transcription backends.
const (
	TranscriptionDeepgram = "deepgram"
	TranscriptionGroq     = "groq"
)

// Cleanup backends.
const (
	CleanupGroq  = "groq"
	CleanupRules = "rules"
	CleanupNone  = "none"
)

// Config represents the application configuration.
type Config struct {
	Transcription TranscriptionConfig `yaml:"transcription"`
	Cleanup       CleanupConfig       `yaml:"cleanup"`
	Deepgram      DeepgramConfig      `yaml:"deepgram"`
	Groq          GroqConfig          `yaml:"groq"`
	Audio         AudioConfig         `yaml:"audio"`
	Rules         RulesConfig         `yaml:"rules"`
	Session       SessionConfig       `yaml:"session"`
	Paste         PasteConfig         `yaml:"paste"`
	Settings      SettingsConfig      `yaml:"settings"`
	Log           LogConfig           `yaml:"log"`
}

type TranscriptionConfig struct {
	Provider string `yaml:"provider" default:"deepgram" validate:"oneof=deepgram groq"`
}

type CleanupConfig struct {
	Provider string `yaml:"provider" default:"rules" validate:"oneof=groq rules none"`
}

type DeepgramConfig struct {
	APIKey      string `yaml:"api_key"`
	APIBaseURL  string `yaml:"api_base_url" default:"https://api.deepgram.com/v1" validate:"url"`
	Model       string `yaml:"model" default:"nova-2" validate:"required"`
	Language    string `yaml:"language"`
	SmartFormat bool   `yaml:"smart_format" default:"true"`
}

type GroqConfig struct {
	APIKey    string        `yaml:"api_key"`
	BaseURL   string        `yaml:"base_url" default:"https://api.groq.com/openai/v1" validate:"url"`
	STTModel  string        `yaml:"stt_model" default:"whisper-large-v3" validate:"required"`
	ChatModel string        `yaml:"chat_model" default:"llama-3.1-8b-instant" validate:"required"`
	Language  string        `yaml:"language"`
	MaxTokens int           `yaml:"max_tokens" default:"2048" validate:"gte=16,lte=32768"`
	Timeout   time.Duration `yaml:"timeout" default:"60s" validate:"gt=0"`
}

type AudioConfig struct {
	RecorderCommand string `yaml:"ffmpeg_command" default:"ffmpeg" validate:"required"`
	InputFormat     string `yaml:"input_format" default:"pulse" validate:"required"`
	SampleRate      int    `yaml:"sample_rate" default:"16000" validate:"gte=8000,lte=48000"`
	Channels        int    `yaml:"channels" default:"1" validate:"gte=1,lte=2"`
}

type RulesConfig struct {
	Path           string `yaml:"path"`
	IterationLimit int    `yaml:"iteration_limit" default:"30" validate:"gte=1,lte=1000"`
}

// SessionConfig holds the session timing constants.
type SessionConfig struct {
	PollInterval    time.Duration `yaml:"poll_interval" default:"50ms" validate:"gt=0"`
	LevelWindow     int           `yaml:"level_window" default:"32" validate:"gte=1,lte=1024"`
	SpeechThreshold float64       `yaml:"speech_threshold" default:"0.1" validate:"gt=0,lt=1"`
	ResetDelay      time.Duration `yaml:"reset_delay" default:"1s" validate:"gt=0"`
	NotifyQueue     int           `yaml:"notify_queue" default:"64" validate:"gte=1"`
	OverlayTimeout  time.Duration `yaml:"overlay_timeout" default:"500ms" validate:"gt=0"`
}

type PasteConfig struct {
	SettleDelay  time.Duration `yaml:"settle_delay" default:"50ms" validate:"gte=0"`
	RestoreDelay time.Duration `yaml:"restore_delay" default:"100ms" validate:"gte=0"`
}

type SettingsConfig struct {
	Path string `yaml:"path"`
}

// LogConfig mirrors logger.Config.
type LogConfig struct {
	Output string `yaml:"output" default:"stderr"`
	Level  string `yaml:"level" default:"info" validate:"oneof=debug info warn warning error"`
	File   string `yaml:"file"`
}

// Load loads configuration from a YAML file. An empty path or a missing file
// yields the defaults. Environment variables take precedence over file values.
func Load(path string) (*Config, error) {
	var cfg Config
	// Defaults go in first so that an explicit false in the file survives.
	if err := defaults.Set(&cfg); err != nil {
		return nil, errors.Wrap(err, "failed to set defaults")
	}

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, errors.Wrap(err, "failed to read config file")
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, errors.Wrap(err, "failed to parse config file")
			}
		}
	}

	cfg.overrideFromEnv()

	if err := cfg.resolvePaths(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "config validation failed")
	}

	return &cfg, nil
}

// overrideFromEnv overrides config values with environment variables.
func (c *Config) overrideFromEnv() {
	if v := env("DEEPGRAM_API_KEY"); v != "" {
		c.Deepgram.APIKey = v
	}
	if v := env("DEEPGRAM_MODEL"); v != "" {
		c.Deepgram.Model = v
	}
	if v := env("DEEPGRAM_LANGUAGE"); v != "" {
		c.Deepgram.Language = v
	}
	if v := env("GROQ_API_KEY"); v != "" {
		c.Groq.APIKey = v
	}
	if v := env("VOXTYPE_TRANSCRIPTION_PROVIDER"); v != "" {
		c.Transcription.Provider = strings.ToLower(v)
	}
	if v := env("VOXTYPE_CLEANUP_PROVIDER"); v != "" {
		c.Cleanup.Provider = strings.ToLower(v)
	}
	if v := env("VOXTYPE_FFMPEG_COMMAND"); v != "" {
		c.Audio.RecorderCommand = v
	}
	if v := env("VOXTYPE_AUDIO_INPUT_FORMAT"); v != "" {
		c.Audio.InputFormat = v
	}
	if v := env("VOXTYPE_RULES_FILE"); v != "" {
		c.Rules.Path = v
	}
	if v := env("VOXTYPE_SETTINGS_FILE"); v != "" {
		c.Settings.Path = v
	}
	if v := env("VOXTYPE_LOG_LEVEL"); v != "" {
		c.Log.Level = strings.ToLower(v)
	}
}

// resolvePaths fills file locations under ~/.config/voxtype.
func (c *Config) resolvePaths() error {
	if c.Rules.Path != "" && c.Settings.Path != "" {
		return nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return errors.Wrap(err, "could not determine home directory")
	}
	dir := filepath.Join(home, ".config", "voxtype")

	if c.Rules.Path == "" {
		c.Rules.Path = firstExisting(
			filepath.Join(dir, "substitutions.rules"),
			filepath.Join(home, ".config", "hypr", "whisper-substitutions.rules"),
		)
	}
	if c.Settings.Path == "" {
		c.Settings.Path = filepath.Join(dir, "settings.yaml")
	}
	return nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(err, "struct validation failed")
	}
	return nil
}

// MissingCredentials lists the API keys the selected providers need but
// do not have. Missing keys are not fatal; the affected stage fails per call.
func (c *Config) MissingCredentials() []string {
	var missing []string
	if c.Transcription.Provider == TranscriptionDeepgram && c.Deepgram.APIKey == "" {
		missing = append(missing, "DEEPGRAM_API_KEY")
	}
	needGroq := c.Transcription.Provider == TranscriptionGroq || c.Cleanup.Provider == CleanupGroq
	if needGroq && c.Groq.APIKey == "" {
		missing = append(missing, "GROQ_API_KEY")
	}
	return missing
}

func env(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

func firstExisting(paths ...string) string {
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return paths[0]
}
