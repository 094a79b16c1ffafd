package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	ListenAddr       string        `mapstructure:"LISTEN_ADDR" validate:"required"`
	ChutesToken      string        `mapstructure:"CHUTES_API_TOKEN"`
	ChutesTokenParam string        `mapstructure:"CHUTES_API_TOKEN_PARAM"`
	ChutesURL        string        `mapstructure:"CHUTES_API_URL" validate:"required,url"`
	HTTPTimeout      time.Duration `mapstructure:"HTTP_TIMEOUT" validate:"gte=0"`
	SessionTTL       time.Duration `mapstructure:"SESSION_TTL" validate:"gt=0"`
	ArchiveBucket    string        `mapstructure:"ARCHIVE_BUCKET"`
	ArchiveDir       string        `mapstructure:"ARCHIVE_DIR"`
	SuggestionsParam string        `mapstructure:"SUGGESTIONS_PARAM"`
	LogLevel         string        `mapstructure:"LOG_LEVEL" validate:"omitempty,oneof=debug info warn warning error"`
}

var defaults = map[string]any{
	"LISTEN_ADDR":            ":8501",
	"CHUTES_API_TOKEN":       "",
	"CHUTES_API_TOKEN_PARAM": "",
	"CHUTES_API_URL":         "https://image.chutes.ai/generate",
	"HTTP_TIMEOUT":           "0s",
	"SESSION_TTL":            "1h",
	"ARCHIVE_BUCKET":         "",
	"ARCHIVE_DIR":            "",
	"SUGGESTIONS_PARAM":      "",
	"LOG_LEVEL":              "info",
}

// EnvFiles lists the .env locations tried by Load: the parent of dir first,
// then dir itself.
func EnvFiles(dir string) []string {
	return []string{
		filepath.Join(dir, "..", ".env"),
		filepath.Join(dir, ".env"),
	}
}

// Load reads the first .env file that exists into the process environment
// and builds a Config from the environment. Variables already set win.
func Load(dir string) (*Config, error) {
	for _, path := range EnvFiles(dir) {
		err := godotenv.Load(path)
		if err == nil {
			break
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadFromWorkingDir is Load relative to the current directory.
func LoadFromWorkingDir() (*Config, error) {
	dir, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	return Load(dir)
}
