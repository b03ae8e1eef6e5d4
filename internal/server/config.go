package server

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/dotback/Gemini-Transparent-Background/internal/chromakey"
)

// Environment variables read by ConfigFromEnv.
const (
	EnvLogLevel  = "CHROMAKEY_MCP_LOG_LEVEL"
	EnvOutputDir = "CHROMAKEY_MCP_OUTPUT_DIR"
	EnvKey       = "CHROMAKEY_MCP_KEY"
	EnvDespill   = "CHROMAKEY_MCP_DESPILL"
	EnvFeather   = "CHROMAKEY_MCP_FEATHER"
)

// Config holds server settings.
type Config struct {
	// LogLevel filters log output written to stderr.
	LogLevel zerolog.Level

	// OutputDir receives keyed images when a tool call gives no output
	// path. Empty writes next to the source image.
	OutputDir string

	// Defaults are the keying parameters tool calls start from before their
	// own arguments are applied.
	Defaults chromakey.Params
}

// DefaultConfig returns the configuration used when no environment is set.
func DefaultConfig() Config {
	return Config{
		LogLevel:  zerolog.InfoLevel,
		OutputDir: os.TempDir(),
		Defaults:  chromakey.DefaultParams(),
	}
}

// ConfigFromEnv builds a Config from environment variables, looked up with
// getenv (usually os.Getenv). Unset variables keep their defaults; malformed
// ones are an error.
//
//	CHROMAKEY_MCP_LOG_LEVEL   debug, info, warn or error
//	CHROMAKEY_MCP_OUTPUT_DIR  directory for keyed images
//	CHROMAKEY_MCP_KEY         default key: green, blue or #RRGGBB
//	CHROMAKEY_MCP_DESPILL     default despill strength in [0,1]
//	CHROMAKEY_MCP_FEATHER     default feather radius in pixels
func ConfigFromEnv(getenv func(string) string) (Config, error) {
	cfg := DefaultConfig()

	if v := strings.TrimSpace(getenv(EnvLogLevel)); v != "" {
		lvl, err := zerolog.ParseLevel(strings.ToLower(v))
		if err != nil || lvl == zerolog.NoLevel {
			return Config{}, fmt.Errorf("%s: invalid log level %q", EnvLogLevel, v)
		}
		cfg.LogLevel = lvl
	}

	if v := strings.TrimSpace(getenv(EnvOutputDir)); v != "" {
		cfg.OutputDir = v
	}

	if v := strings.TrimSpace(getenv(EnvKey)); v != "" {
		key, err := chromakey.ParseKeyColor(v)
		if err != nil {
			return Config{}, fmt.Errorf("%s: %w", EnvKey, err)
		}
		cfg.Defaults.Key = chromakey.Fixed(key)
	}

	if v := strings.TrimSpace(getenv(EnvDespill)); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return Config{}, fmt.Errorf("%s: invalid number %q", EnvDespill, v)
		}
		cfg.Defaults.DespillStrength = f
	}

	if v := strings.TrimSpace(getenv(EnvFeather)); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("%s: invalid integer %q", EnvFeather, v)
		}
		cfg.Defaults.FeatherRadius = n
	}

	if err := cfg.Defaults.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid default parameters: %w", err)
	}
	return cfg, nil
}

// NewLogger returns a console logger writing to w at the given level.
func NewLogger(w io.Writer, level zerolog.Level) zerolog.Logger {
	return zerolog.New(zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339, NoColor: true}).
		Level(level).
		With().
		Timestamp().
		Logger()
}
