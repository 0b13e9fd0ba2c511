package reactor

import (
	"os"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

const (
	EnvLogLevel        = "REACTOR_LOG_LEVEL"
	EnvLogFormat       = "REACTOR_LOG_FORMAT"
	EnvEnforceAffinity = "REACTOR_ENFORCE_AFFINITY"
)

const (
	LogFormatConsole = "console"
	LogFormatJSON    = "json"
)

// Config configures the ambient parts of a world.
type Config struct {
	LogLevel         string `toml:"log_level"`
	LogFormat        string `toml:"log_format"`
	MetricsNamespace string `toml:"metrics_namespace"`
	// fail loudly when the world is used from another goroutine
	EnforceAffinity bool `toml:"enforce_affinity"`
}

func DefaultConfig() Config {
	return Config{
		LogLevel:         "info",
		LogFormat:        LogFormatConsole,
		MetricsNamespace: "reactor",
		EnforceAffinity:  true,
	}
}

// LoadConfig reads a TOML config file on top of the defaults, then applies
// environment overrides.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrapf(err, "config load failed (%s)", path)
	}

	cfg, err := ParseConfig(data)
	if err != nil {
		return Config{}, errors.Wrapf(err, "config parse failed (%s)", path)
	}
	return cfg, nil
}

func ParseConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()
	if _, err := toml.Decode(string(data), &cfg); err != nil {
		return Config{}, errors.Wrap(err, "decode")
	}

	applyEnvOverrides(&cfg)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		cfg.LogLevel = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFormat)); v != "" {
		cfg.LogFormat = v
	}
	if v, err := strconv.ParseBool(strings.TrimSpace(os.Getenv(EnvEnforceAffinity))); err == nil {
		cfg.EnforceAffinity = v
	}
}

func (c Config) Validate() error {
	if _, ok := parseLevel(c.LogLevel); !ok {
		return errors.Errorf("invalid log_level %q", c.LogLevel)
	}

	switch c.LogFormat {
	case LogFormatConsole, LogFormatJSON:
	default:
		return errors.Errorf("invalid log_format %q", c.LogFormat)
	}

	return nil
}

func parseLevel(raw string) (zerolog.Level, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "trace":
		return zerolog.TraceLevel, true
	case "debug":
		return zerolog.DebugLevel, true
	case "", "info":
		return zerolog.InfoLevel, true
	case "warn", "warning":
		return zerolog.WarnLevel, true
	case "error":
		return zerolog.ErrorLevel, true
	case "disabled", "off", "none":
		return zerolog.Disabled, true
	default:
		return zerolog.NoLevel, false
	}
}
