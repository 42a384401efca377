// Package config loads the briefing YAML configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is the top-level configuration.
type Config struct {
	Site   SiteConfig   `yaml:"site"`
	News   NewsConfig   `yaml:"news"`
	LLM    LLMConfig    `yaml:"llm"`
	TTS    TTSConfig    `yaml:"tts"`
	Server ServerConfig `yaml:"server"`
	Log    LogConfig    `yaml:"log"`

	// DataDir holds the episode index database.
	DataDir string `yaml:"data_dir"`
}

// SiteConfig describes the published site.
type SiteConfig struct {
	// BaseURL is the public base URL of the site, without a trailing
	// slash, e.g. https://example.github.io/boston-briefing. The player
	// and the generated feed both derive their URLs from it.
	BaseURL     string `yaml:"base_url"`
	PublicDir   string `yaml:"public_dir"`
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
	Link        string `yaml:"link"`
	Timezone    string `yaml:"timezone"`
}

// NewsConfig lists the source feeds and fetch limits.
type NewsConfig struct {
	// Sources are the RSS/Atom feeds the briefing is built from.
	Sources []Source `yaml:"sources"`
	// MaxPerSource caps items taken from a single source.
	MaxPerSource int `yaml:"max_per_source"`
	// MaxStories caps the total number of stories in a briefing.
	MaxStories     int `yaml:"max_stories"`
	TimeoutSeconds int `yaml:"timeout_seconds"`
}

// Source is one news feed.
type Source struct {
	Name string `yaml:"name"`
	URL  string `yaml:"url"`
}

// LLMConfig configures the script-writing model.
type LLMConfig struct {
	APIURL       string  `yaml:"api_url"`
	APIKey       string  `yaml:"api_key"`
	Model        string  `yaml:"model"`
	SystemPrompt string  `yaml:"system_prompt"`
	PromptFile   string  `yaml:"prompt_file"`
	MaxTokens    int     `yaml:"max_tokens"`
	Temperature  float64 `yaml:"temperature"`
}

// TTSConfig configures speech synthesis.
type TTSConfig struct {
	Engine     string           `yaml:"engine"`
	ElevenLabs ElevenLabsConfig `yaml:"elevenlabs"`
	Edge       EdgeConfig       `yaml:"edge"`
	// FallbackMP3 is played out as the episode when all engines fail.
	FallbackMP3 string `yaml:"fallback_mp3"`
}

// ElevenLabsConfig holds the ElevenLabs API credentials and voice tuning.
type ElevenLabsConfig struct {
	APIKey  string `yaml:"api_key"`
	VoiceID string `yaml:"voice_id"`
	ModelID string `yaml:"model_id"`
	// SettingsFile optionally points at a voice_settings.json that
	// overrides the tuning values below.
	SettingsFile    string  `yaml:"settings_file"`
	Stability       float64 `yaml:"stability"`
	SimilarityBoost float64 `yaml:"similarity_boost"`
	Style           float64 `yaml:"style"`
	UseSpeakerBoost bool    `yaml:"use_speaker_boost"`
	Speed           float64 `yaml:"speed"`
}

// EdgeConfig configures the free Edge TTS fallback.
type EdgeConfig struct {
	Voice string `yaml:"voice"`
}

// ServerConfig configures the HTTP API server.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// Load reads a YAML config file and returns a Config.
// ${VAR_NAME} references are expanded from the environment.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file %s: %w", path, err)
	}

	// Expand environment variables, e.g. ${ELEVEN_API_KEY}.
	expanded := os.Expand(string(data), func(key string) string {
		return os.Getenv(key)
	})

	cfg := &Config{}
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, fmt.Errorf("parse config file %s: %w", path, err)
	}

	setDefaults(cfg)
	return cfg, nil
}

// setDefaults fills in defaults for unset fields.
func setDefaults(cfg *Config) {
	if cfg.Site.PublicDir == "" {
		cfg.Site.PublicDir = "public"
	}
	if cfg.Site.Title == "" {
		cfg.Site.Title = "Boston Briefing"
	}
	if cfg.Site.Description == "" {
		cfg.Site.Description = "A short daily news briefing for Boston."
	}
	if cfg.Site.Timezone == "" {
		cfg.Site.Timezone = "America/New_York"
	}
	cfg.Site.BaseURL = strings.TrimSuffix(strings.TrimSpace(cfg.Site.BaseURL), "/")
	if cfg.Site.Link == "" {
		cfg.Site.Link = cfg.Site.BaseURL
	}

	if cfg.News.MaxPerSource == 0 {
		cfg.News.MaxPerSource = 6
	}
	if cfg.News.MaxStories == 0 {
		cfg.News.MaxStories = 10
	}
	if cfg.News.TimeoutSeconds == 0 {
		cfg.News.TimeoutSeconds = 10
	}

	if cfg.LLM.APIURL == "" {
		cfg.LLM.APIURL = "https://api.openai.com/v1"
	}
	if cfg.LLM.MaxTokens == 0 {
		cfg.LLM.MaxTokens = 900
	}
	if cfg.LLM.Temperature == 0 {
		cfg.LLM.Temperature = 0.4
	}

	if cfg.TTS.Engine == "" {
		cfg.TTS.Engine = "elevenlabs"
	}
	if cfg.TTS.ElevenLabs.ModelID == "" {
		cfg.TTS.ElevenLabs.ModelID = "eleven_multilingual_v2"
	}
	if cfg.TTS.ElevenLabs.Stability == 0 {
		cfg.TTS.ElevenLabs.Stability = 0.85
	}
	if cfg.TTS.ElevenLabs.SimilarityBoost == 0 {
		cfg.TTS.ElevenLabs.SimilarityBoost = 0.90
	}
	if cfg.TTS.ElevenLabs.Style == 0 {
		cfg.TTS.ElevenLabs.Style = 0.15
	}
	if cfg.TTS.ElevenLabs.Speed == 0 {
		cfg.TTS.ElevenLabs.Speed = 1.0
	}
	if cfg.TTS.Edge.Voice == "" {
		cfg.TTS.Edge.Voice = "en-US-GuyNeural"
	}

	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8000"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}

	if cfg.DataDir == "" {
		home, _ := os.UserHomeDir()
		if home != "" {
			cfg.DataDir = filepath.Join(home, ".briefing")
		} else {
			cfg.DataDir = "./.briefing-data"
		}
	} else if strings.HasPrefix(cfg.DataDir, "~/") {
		// Go does not expand ~ itself.
		home, _ := os.UserHomeDir()
		if home != "" {
			cfg.DataDir = home + cfg.DataDir[1:]
		}
	}

	// Keys often arrive via env expansion with stray whitespace.
	cfg.LLM.APIKey = strings.TrimSpace(cfg.LLM.APIKey)
	cfg.TTS.ElevenLabs.APIKey = strings.TrimSpace(cfg.TTS.ElevenLabs.APIKey)
	cfg.TTS.ElevenLabs.VoiceID = strings.TrimSpace(cfg.TTS.ElevenLabs.VoiceID)
}
